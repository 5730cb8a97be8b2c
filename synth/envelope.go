package synth

import "math"

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

// lerpClamped clamps both interpolation weights independently.
func lerpClamped(a, b, t float64) float64 {
	return a*clamp01(1.0-t) + b*clamp01(t)
}

// popShape holds the anti-pop ramp lengths for one buffer.
type popShape struct {
	attack     float64
	decay      float64
	decayStart float64
}

func newPopShape(sampleRate int, sampleCount int, cfg Config) popShape {
	decay := float64(sampleRate) * cfg.DecayPopFraction
	return popShape{
		attack:     float64(sampleRate) * cfg.AttackPopFraction,
		decay:      decay,
		decayStart: float64(sampleCount-1) - decay,
	}
}

// factor returns attack·decay for sample idx. A zero-length ramp acts as a
// step: t is ±Inf or NaN and is resolved before clamping.
func (p popShape) factor(idx int) float64 {
	x := float64(idx)
	return lerpClamped(0, 1, ratio(x, p.attack)) * lerpClamped(1, 0, ratio(x-p.decayStart, p.decay))
}

func ratio(num, den float64) float64 {
	if den == 0 {
		switch {
		case num > 0:
			return math.Inf(1)
		case num < 0:
			return math.Inf(-1)
		}
		return 1
	}
	return num / den
}

// fadeFactor is the global exponential fade at normalized time t.
func fadeFactor(t, fade float64) float64 {
	return math.Exp(-t * fade)
}
