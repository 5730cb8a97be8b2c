package synth

import "github.com/google/uuid"

// WaveformParams describes one stage of an oscillator stack.
type WaveformParams struct {
	ID         string
	Waveform   Waveform
	Multiplier float64 // frequency multiplier applied to the fundamental cycle
	Feedback   float64 // decay depth over the note, 0 keeps the stage at full level
}

// OscillatorParams is an ordered stack of stages. Later stages modulate the
// phase of earlier ones.
type OscillatorParams struct {
	ID        string
	Waveforms []WaveformParams
}

// Instrument is the unit the editor manipulates and the library stores.
type Instrument struct {
	ID          string
	Name        string
	Oscillators []OscillatorParams
	Fade        float64
	FadeEnabled bool
}

// NewID returns a fresh opaque identifier.
func NewID() string {
	return uuid.New().String()
}

// NewWaveformParams creates a stage with the editor defaults.
func NewWaveformParams() WaveformParams {
	return WaveformParams{
		ID:         NewID(),
		Waveform:   Sine,
		Multiplier: 1.0,
		Feedback:   1.0,
	}
}

// NewOscillatorParams creates an oscillator holding one default stage.
func NewOscillatorParams() OscillatorParams {
	return OscillatorParams{
		ID:        NewID(),
		Waveforms: []WaveformParams{NewWaveformParams()},
	}
}

// NewInstrument creates an instrument with a single default oscillator.
func NewInstrument(name string) Instrument {
	return Instrument{
		ID:          NewID(),
		Name:        name,
		Oscillators: []OscillatorParams{NewOscillatorParams()},
		Fade:        1.0,
		FadeEnabled: false,
	}
}

// Clone returns a deep copy of the oscillator.
func (o OscillatorParams) Clone() OscillatorParams {
	o.Waveforms = append([]WaveformParams(nil), o.Waveforms...)
	return o
}

// Clone returns a deep copy that shares no slices with inst.
func (inst Instrument) Clone() Instrument {
	oscs := make([]OscillatorParams, len(inst.Oscillators))
	for i, o := range inst.Oscillators {
		oscs[i] = o.Clone()
	}
	inst.Oscillators = oscs
	return inst
}

// Rename returns a copy with a new name.
func (inst Instrument) Rename(name string) Instrument {
	out := inst.Clone()
	out.Name = name
	return out
}

// WithFade returns a copy with the global fade set.
func (inst Instrument) WithFade(fade float64, enabled bool) Instrument {
	out := inst.Clone()
	out.Fade = fade
	out.FadeEnabled = enabled
	return out
}

// AddOscillator appends a default oscillator.
func (inst Instrument) AddOscillator() Instrument {
	out := inst.Clone()
	out.Oscillators = append(out.Oscillators, NewOscillatorParams())
	return out
}

// DeleteOscillator removes the oscillator with the given id.
func (inst Instrument) DeleteOscillator(id string) Instrument {
	out := inst.Clone()
	kept := out.Oscillators[:0]
	for _, o := range out.Oscillators {
		if o.ID != id {
			kept = append(kept, o)
		}
	}
	out.Oscillators = kept
	return out
}

// AddWaveform appends a default stage to the oscillator.
func (inst Instrument) AddWaveform(oscID string) Instrument {
	return inst.updateOscillator(oscID, func(o *OscillatorParams) {
		o.Waveforms = append(o.Waveforms, NewWaveformParams())
	})
}

// RemoveWaveform drops the last stage of the oscillator.
func (inst Instrument) RemoveWaveform(oscID string) Instrument {
	return inst.updateOscillator(oscID, func(o *OscillatorParams) {
		if n := len(o.Waveforms); n > 0 {
			o.Waveforms = o.Waveforms[:n-1]
		}
	})
}

// RemoveWaveformByID drops one specific stage of the oscillator.
func (inst Instrument) RemoveWaveformByID(oscID, waveID string) Instrument {
	return inst.updateOscillator(oscID, func(o *OscillatorParams) {
		kept := o.Waveforms[:0]
		for _, w := range o.Waveforms {
			if w.ID != waveID {
				kept = append(kept, w)
			}
		}
		o.Waveforms = kept
	})
}

// UpdateWaveform replaces the value fields of one stage, keeping its id.
func (inst Instrument) UpdateWaveform(oscID, waveID string, kind Waveform, multiplier, feedback float64) Instrument {
	return inst.updateOscillator(oscID, func(o *OscillatorParams) {
		for i := range o.Waveforms {
			if o.Waveforms[i].ID == waveID {
				o.Waveforms[i].Waveform = kind
				o.Waveforms[i].Multiplier = multiplier
				o.Waveforms[i].Feedback = feedback
			}
		}
	})
}

// ReorderWaveforms moves the stage at index from to index to. Indices out of
// range leave the instrument unchanged.
func (inst Instrument) ReorderWaveforms(oscID string, from, to int) Instrument {
	return inst.updateOscillator(oscID, func(o *OscillatorParams) {
		n := len(o.Waveforms)
		if from < 0 || from >= n || to < 0 || to >= n || from == to {
			return
		}
		moved := o.Waveforms[from]
		rest := append(o.Waveforms[:from:from], o.Waveforms[from+1:]...)
		out := make([]WaveformParams, 0, n)
		out = append(out, rest[:to]...)
		out = append(out, moved)
		out = append(out, rest[to:]...)
		o.Waveforms = out
	})
}

// Oscillator returns the oscillator with the given id.
func (inst Instrument) Oscillator(id string) (OscillatorParams, bool) {
	for _, o := range inst.Oscillators {
		if o.ID == id {
			return o.Clone(), true
		}
	}
	return OscillatorParams{}, false
}

func (inst Instrument) updateOscillator(id string, fn func(*OscillatorParams)) Instrument {
	out := inst.Clone()
	for i := range out.Oscillators {
		if out.Oscillators[i].ID == id {
			fn(&out.Oscillators[i])
		}
	}
	return out
}
