package preset

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/cwbudde/algo-synthesis/synth"
)

// File is the schema of an instrument preset.
type File struct {
	ID          string              `json:"id,omitempty" yaml:"id,omitempty"`
	Name        *string             `json:"name,omitempty" yaml:"name,omitempty"`
	Fade        *float64            `json:"fade,omitempty" yaml:"fade,omitempty"`
	FadeEnabled *bool               `json:"fade_enabled,omitempty" yaml:"fade_enabled,omitempty"`
	Oscillators []OscillatorSetting `json:"oscillators" yaml:"oscillators"`
}

// OscillatorSetting is one oscillator stack in a preset file.
type OscillatorSetting struct {
	ID        string            `json:"id,omitempty" yaml:"id,omitempty"`
	Waveforms []WaveformSetting `json:"waveforms" yaml:"waveforms"`
}

// WaveformSetting is one stage. Omitted fields take the editor defaults.
type WaveformSetting struct {
	ID         string   `json:"id,omitempty" yaml:"id,omitempty"`
	Waveform   string   `json:"waveform,omitempty" yaml:"waveform,omitempty"`
	Multiplier *float64 `json:"multiplier,omitempty" yaml:"multiplier,omitempty"`
	Feedback   *float64 `json:"feedback,omitempty" yaml:"feedback,omitempty"`
}

// LoadFile reads a JSON or YAML preset and applies it on top of a default
// instrument named after the file.
func LoadFile(path string) (synth.Instrument, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return synth.Instrument{}, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return synth.Instrument{}, err
	}
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	inst, err := Decode(b, format, base)
	if err != nil {
		return synth.Instrument{}, fmt.Errorf("%s: %w", path, err)
	}
	return inst, nil
}

// SaveFile writes inst in the format implied by the extension of path.
func SaveFile(path string, inst synth.Instrument) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	b, err := Encode(inst, format)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

// Decode parses a preset. name is used when the file carries none.
func Decode(data []byte, format Format, name string) (synth.Instrument, error) {
	var f File
	if err := unmarshal(data, format, &f); err != nil {
		return synth.Instrument{}, err
	}
	inst := synth.NewInstrument(name)
	if err := ApplyFile(&inst, &f); err != nil {
		return synth.Instrument{}, err
	}
	return inst, nil
}

// Encode serialises inst, ids included, so a reload keeps identity.
func Encode(inst synth.Instrument, format Format) ([]byte, error) {
	return marshal(FromInstrument(inst), format)
}

// FromInstrument converts inst to its file form with every field set.
func FromInstrument(inst synth.Instrument) *File {
	name := inst.Name
	fade := inst.Fade
	enabled := inst.FadeEnabled
	f := &File{
		ID:          inst.ID,
		Name:        &name,
		Fade:        &fade,
		FadeEnabled: &enabled,
		Oscillators: make([]OscillatorSetting, len(inst.Oscillators)),
	}
	for i, o := range inst.Oscillators {
		ws := make([]WaveformSetting, len(o.Waveforms))
		for j, w := range o.Waveforms {
			mult := w.Multiplier
			fb := w.Feedback
			ws[j] = WaveformSetting{
				ID:         w.ID,
				Waveform:   w.Waveform.String(),
				Multiplier: &mult,
				Feedback:   &fb,
			}
		}
		f.Oscillators[i] = OscillatorSetting{ID: o.ID, Waveforms: ws}
	}
	return f
}

// ApplyFile applies a parsed preset onto dst. A present oscillator list
// replaces the existing one; stage values outside what the engine can render
// sensibly are rejected.
func ApplyFile(dst *synth.Instrument, f *File) error {
	if dst == nil {
		return fmt.Errorf("nil destination instrument")
	}
	if f == nil {
		return nil
	}

	out := dst.Clone()
	if f.ID != "" {
		out.ID = strings.TrimSpace(f.ID)
	}
	if f.Name != nil {
		out.Name = *f.Name
	}
	if f.Fade != nil {
		if !isFinite(*f.Fade) || *f.Fade < 0 {
			return fmt.Errorf("fade must be >= 0")
		}
		out.Fade = *f.Fade
	}
	if f.FadeEnabled != nil {
		out.FadeEnabled = *f.FadeEnabled
	}

	if f.Oscillators != nil {
		oscs := make([]synth.OscillatorParams, len(f.Oscillators))
		for i, setting := range f.Oscillators {
			p := synth.OscillatorParams{ID: setting.ID, Waveforms: make([]synth.WaveformParams, len(setting.Waveforms))}
			if p.ID == "" {
				p.ID = synth.NewID()
			}
			for j, ws := range setting.Waveforms {
				w, err := applyWaveform(ws)
				if err != nil {
					return fmt.Errorf("oscillators[%d].waveforms[%d].%w", i, j, err)
				}
				p.Waveforms[j] = w
			}
			oscs[i] = p
		}
		out.Oscillators = oscs
	}
	*dst = out
	return nil
}

func applyWaveform(ws WaveformSetting) (synth.WaveformParams, error) {
	w := synth.NewWaveformParams()
	if ws.ID != "" {
		w.ID = ws.ID
	}
	if ws.Waveform != "" {
		kind, err := synth.ParseWaveform(ws.Waveform)
		if err != nil {
			return w, fmt.Errorf("waveform: %w", err)
		}
		w.Waveform = kind
	}
	if ws.Multiplier != nil {
		if !isFinite(*ws.Multiplier) || *ws.Multiplier <= 0 {
			return w, fmt.Errorf("multiplier must be > 0")
		}
		w.Multiplier = *ws.Multiplier
	}
	if ws.Feedback != nil {
		if !isFinite(*ws.Feedback) || *ws.Feedback < 0 {
			return w, fmt.Errorf("feedback must be >= 0")
		}
		w.Feedback = *ws.Feedback
	}
	return w, nil
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
