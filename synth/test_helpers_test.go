package synth

import (
	"math"
	"testing"
)

func stage(kind Waveform, multiplier, feedback float64) WaveformParams {
	return WaveformParams{ID: NewID(), Waveform: kind, Multiplier: multiplier, Feedback: feedback}
}

func stack(stages ...WaveformParams) OscillatorParams {
	return OscillatorParams{ID: NewID(), Waveforms: stages}
}

func instrumentOf(oscs ...OscillatorParams) Instrument {
	return Instrument{ID: NewID(), Name: "test", Oscillators: oscs, Fade: 1.0}
}

func unshapedConfig() *Config {
	cfg := NewDefaultConfig()
	cfg.PopShaping = false
	return cfg
}

func maxAbsDiff(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var d float64
	for i := 0; i < n; i++ {
		if v := math.Abs(a[i] - b[i]); v > d {
			d = v
		}
	}
	return d
}

func assertLen(t *testing.T, got []float64, want int) {
	t.Helper()
	if len(got) != want {
		t.Fatalf("length mismatch: got=%d want=%d", len(got), want)
	}
}
