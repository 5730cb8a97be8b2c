package synth

import (
	"context"
	"errors"
	"math"

	"github.com/viterin/vek"
)

// ErrNonFinite is returned in strict mode for NaN or infinite frequencies.
var ErrNonFinite = errors.New("synth: non-finite frequency")

// Sampler renders notes for one instrument at one sample rate. It holds no
// mutable state; concurrent Sample calls are safe.
type Sampler struct {
	id          string
	name        string
	sampleRate  int
	oscillators []Oscillator
	fade        float64
	fadeEnabled bool
	cfg         Config
}

// NewSampler resolves inst against sampleRate. A nil cfg uses
// NewDefaultConfig. sampleRate must be positive.
func NewSampler(inst Instrument, sampleRate int, cfg *Config) *Sampler {
	if sampleRate <= 0 {
		panic("synth: sample rate must be > 0")
	}
	oscs := make([]Oscillator, len(inst.Oscillators))
	for i, p := range inst.Oscillators {
		oscs[i] = NewOscillator(sampleRate, p)
	}
	return &Sampler{
		id:          inst.ID,
		name:        inst.Name,
		sampleRate:  sampleRate,
		oscillators: oscs,
		fade:        inst.Fade,
		fadeEnabled: inst.FadeEnabled,
		cfg:         resolveConfig(cfg),
	}
}

// ID returns the id of the instrument the sampler was built from.
func (s *Sampler) ID() string {
	return s.id
}

func (s *Sampler) Name() string {
	return s.name
}

func (s *Sampler) SampleRate() int {
	return s.sampleRate
}

// Config returns the resolved configuration.
func (s *Sampler) Config() Config {
	return s.cfg
}

// Oscillators returns the number of oscillators mixed per sample.
func (s *Sampler) Oscillators() int {
	return len(s.oscillators)
}

// Frames converts a duration in seconds to a sample count.
func (s *Sampler) Frames(durationSeconds float64) int {
	n := math.Round(durationSeconds * float64(s.sampleRate))
	if !(n > 0) {
		return 0
	}
	return int(n)
}

// Sample renders durationSeconds of audio at frequency.
func (s *Sampler) Sample(durationSeconds float64, frequency float64) []float64 {
	return s.SampleFrames(s.Frames(durationSeconds), frequency)
}

// SampleFrames renders exactly sampleCount samples at frequency. The result
// is empty for sampleCount <= 0 or an instrument without oscillators.
func (s *Sampler) SampleFrames(sampleCount int, frequency float64) []float64 {
	out, _ := s.render(context.Background(), sampleCount, frequency)
	return out
}

// SampleContext is Sample with cancellation, checked between oscillators.
func (s *Sampler) SampleContext(ctx context.Context, durationSeconds float64, frequency float64) ([]float64, error) {
	return s.SampleFramesContext(ctx, s.Frames(durationSeconds), frequency)
}

// SampleFramesContext is SampleFrames with cancellation and, when the config
// is strict, input validation.
func (s *Sampler) SampleFramesContext(ctx context.Context, sampleCount int, frequency float64) ([]float64, error) {
	if s.cfg.Strict && (math.IsNaN(frequency) || math.IsInf(frequency, 0)) {
		return nil, ErrNonFinite
	}
	return s.render(ctx, sampleCount, frequency)
}

func (s *Sampler) render(ctx context.Context, sampleCount int, frequency float64) ([]float64, error) {
	if sampleCount <= 0 || len(s.oscillators) == 0 {
		return []float64{}, nil
	}

	var mix []float64
	for _, osc := range s.oscillators {
		part, err := osc.SampleContext(ctx, sampleCount, frequency)
		if err != nil {
			return nil, err
		}
		if mix == nil {
			mix = part
			continue
		}
		vek.Add_Inplace(mix, part)
	}
	vek.DivNumber_Inplace(mix, float64(len(s.oscillators)))

	if !s.cfg.PopShaping && !s.fadeEnabled {
		return mix, nil
	}
	pop := newPopShape(s.sampleRate, sampleCount, s.cfg)
	span := float64(sampleCount - 1)
	for i := range mix {
		g := 1.0
		if s.cfg.PopShaping {
			g = pop.factor(i)
		}
		if s.fadeEnabled {
			t := 0.0
			if span > 0 {
				t = float64(i) / span
			}
			g *= fadeFactor(t, s.fade)
		}
		mix[i] *= g
	}
	return mix, nil
}
