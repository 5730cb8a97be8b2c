package synth

import (
	"fmt"
	"math"
	"strings"
)

// Waveform selects the generator used by one oscillator stage.
type Waveform int

const (
	Sine Waveform = iota
	Cosine

	waveformCount
)

// Waveforms lists every supported kind in declaration order.
func Waveforms() []Waveform {
	out := make([]Waveform, 0, waveformCount)
	for w := Waveform(0); w < waveformCount; w++ {
		out = append(out, w)
	}
	return out
}

// Evaluate maps a phase in radians to the signal value of the given kind.
func Evaluate(kind Waveform, phase float64) float64 {
	switch kind {
	case Sine:
		return math.Sin(phase)
	case Cosine:
		return math.Cos(phase)
	}
	panic(fmt.Sprintf("synth: unhandled waveform %d", int(kind)))
}

// Valid reports whether w is one of the declared kinds.
func (w Waveform) Valid() bool {
	return w >= 0 && w < waveformCount
}

func (w Waveform) String() string {
	switch w {
	case Sine:
		return "sine"
	case Cosine:
		return "cosine"
	}
	return fmt.Sprintf("Waveform(%d)", int(w))
}

// ParseWaveform accepts the names produced by String, plus "sin" and "cos".
func ParseWaveform(name string) (Waveform, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "sine", "sin":
		return Sine, nil
	case "cosine", "cos":
		return Cosine, nil
	}
	return 0, fmt.Errorf("unknown waveform %q", name)
}

// MarshalText encodes the waveform by name so presets stay readable.
func (w Waveform) MarshalText() ([]byte, error) {
	if !w.Valid() {
		return nil, fmt.Errorf("unknown waveform %d", int(w))
	}
	return []byte(w.String()), nil
}

// UnmarshalText is the inverse of MarshalText.
func (w *Waveform) UnmarshalText(b []byte) error {
	v, err := ParseWaveform(string(b))
	if err != nil {
		return err
	}
	*w = v
	return nil
}
