package synth

import (
	"context"
	"math"

	dspcore "github.com/cwbudde/algo-dsp/dsp/core"
)

// Oscillator evaluates a stage stack at a fixed sample rate. It is immutable
// and safe for concurrent use.
type Oscillator struct {
	sampleRate int
	params     OscillatorParams
}

// NewOscillator binds params to a sample rate. The stage slice is copied.
func NewOscillator(sampleRate int, params OscillatorParams) Oscillator {
	return Oscillator{
		sampleRate: sampleRate,
		params:     params.Clone(),
	}
}

// SampleRate returns the rate the oscillator was built for.
func (o Oscillator) SampleRate() int {
	return o.sampleRate
}

// Params returns a copy of the stage configuration.
func (o Oscillator) Params() OscillatorParams {
	return o.params.Clone()
}

// Sample renders sampleCount values of the stack at frequency.
func (o Oscillator) Sample(sampleCount int, frequency float64) []float64 {
	if sampleCount <= 0 {
		return []float64{}
	}
	out := make([]float64, sampleCount)
	if len(o.params.Waveforms) == 0 {
		return out
	}
	step := frequency / float64(o.sampleRate)
	span := float64(sampleCount - 1)
	for i := range out {
		t := 0.0
		if span > 0 {
			t = float64(i) / span
		}
		cycle := 2 * math.Pi * step * float64(i)
		out[i] = o.value(cycle, t)
	}
	return out
}

// SampleContext is Sample with a cancellation check before rendering.
func (o Oscillator) SampleContext(ctx context.Context, sampleCount int, frequency float64) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return o.Sample(sampleCount, frequency), nil
}

// value folds the stack right to left: each stage receives the output of the
// stage after it as phase offset.
func (o Oscillator) value(cycle float64, t float64) float64 {
	acc := 0.0
	stages := o.params.Waveforms
	for j := len(stages) - 1; j >= 0; j-- {
		s := stages[j]
		v := Evaluate(s.Waveform, cycle*s.Multiplier+acc)
		if s.Feedback != 0 {
			v = dspcore.FlushDenormals(v * math.Exp(-t*s.Feedback))
		}
		acc = v
	}
	return acc
}
