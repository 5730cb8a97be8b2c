package synth

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"
)

func TestOscillatorSampleLength(t *testing.T) {
	osc := stack(stage(Sine, 1, 1), stage(Cosine, 2.5, 0))
	for _, sr := range []int{1, 500, 22000, 44100, 48000} {
		for _, f := range []float64{0, 10, 432, 20000} {
			for _, n := range []int{0, 1, 2, 1000} {
				got := NewOscillator(sr, osc).Sample(n, f)
				if len(got) != n {
					t.Fatalf("sr=%d f=%g n=%d: got %d values", sr, f, n, len(got))
				}
			}
		}
	}
	if got := NewOscillator(48000, osc).Sample(-5, 440); len(got) != 0 {
		t.Fatalf("negative count should yield empty slice, got %d", len(got))
	}
}

func TestEmptyStackIsSilent(t *testing.T) {
	out := NewOscillator(48000, OscillatorParams{ID: "empty"}).Sample(256, 440)
	assertLen(t, out, 256)
	for i, v := range out {
		if v != 0 {
			t.Fatalf("expected zero at %d, got %g", i, v)
		}
	}
}

func TestZeroFrequencySineIsSilent(t *testing.T) {
	out := NewOscillator(44100, stack(stage(Sine, 1, 1), stage(Sine, 3, 0.5))).Sample(1024, 0)
	for i, v := range out {
		if v != 0 {
			t.Fatalf("0 Hz sine stack should be 0 at %d, got %g", i, v)
		}
	}
}

func TestSingleStageIsPlainSine(t *testing.T) {
	const sr = 48000
	const f = 440.0
	out := NewOscillator(sr, stack(stage(Sine, 1, 0))).Sample(512, f)
	for i, v := range out {
		want := math.Sin(2 * math.Pi * f / sr * float64(i))
		if math.Abs(v-want) > 1e-12 {
			t.Fatalf("sample %d: got=%g want=%g", i, v, want)
		}
	}
}

func TestLaterStagesModulateEarlierOnes(t *testing.T) {
	const sr = 8000
	const f = 100.0
	out := NewOscillator(sr, stack(stage(Sine, 1, 0), stage(Cosine, 2, 0))).Sample(64, f)
	for i, v := range out {
		c := 2 * math.Pi * f / sr * float64(i)
		want := math.Sin(c + math.Cos(2*c))
		if math.Abs(v-want) > 1e-12 {
			t.Fatalf("sample %d: got=%g want=%g", i, v, want)
		}
	}
}

func TestFeedbackDecaysStageOverNote(t *testing.T) {
	const n = 1001
	out := NewOscillator(1000, stack(stage(Cosine, 1, 2))).Sample(n, 0)
	if out[0] != 1 {
		t.Fatalf("expected undecayed start, got %g", out[0])
	}
	if want := math.Exp(-2); math.Abs(out[n-1]-want) > 1e-12 {
		t.Fatalf("expected exp(-2) at the end, got=%g want=%g", out[n-1], want)
	}
	for i := 1; i < n; i++ {
		if out[i] > out[i-1] {
			t.Fatalf("decay not monotonic at %d: %g > %g", i, out[i], out[i-1])
		}
	}
}

func TestStageOrderChangesOutput(t *testing.T) {
	a := stage(Sine, 1, 0)
	b := stage(Sine, 3, 0)
	fwd := NewOscillator(44100, stack(a, b)).Sample(2048, 220)
	rev := NewOscillator(44100, stack(b, a)).Sample(2048, 220)
	if d := maxAbsDiff(fwd, rev); d < 1e-3 {
		t.Fatalf("expected divergent output after swapping stages, max diff %g", d)
	}
}

func TestOscillatorDoesNotAliasParams(t *testing.T) {
	p := stack(stage(Sine, 1, 0))
	osc := NewOscillator(48000, p)
	before := osc.Sample(128, 440)
	p.Waveforms[0].Multiplier = 4
	after := osc.Sample(128, 440)
	if maxAbsDiff(before, after) != 0 {
		t.Fatalf("oscillator output changed after editing the source params")
	}
}

func TestOscillatorAcceptsExtremeParams(t *testing.T) {
	for _, p := range []OscillatorParams{
		stack(stage(Sine, 0.01, 0), stage(Sine, 5, 10)),
		stack(stage(Cosine, 1e6, 1e3)),
		stack(stage(Sine, 1e-9, 0)),
	} {
		t.Run(fmt.Sprintf("%v", p.Waveforms[0].Multiplier), func(t *testing.T) {
			for i, v := range NewOscillator(44100, p).Sample(4096, 440) {
				if math.IsNaN(v) || math.IsInf(v, 0) {
					t.Fatalf("non-finite sample at %d: %v", i, v)
				}
			}
		})
	}
}

func TestOscillatorSampleContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewOscillator(48000, stack(stage(Sine, 1, 0))).SampleContext(ctx, 10, 440)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
