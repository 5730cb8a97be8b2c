package sequencer

import (
	"math"

	"github.com/cwbudde/algo-synthesis/synth"
)

// Pattern is the timing and pitch frame the grid is played against.
type Pattern struct {
	BPM      float64
	Beats    int
	Rows     int
	BaseNote synth.Note
	Octave   int
	// Tuning overrides the sampler's tuning when > 0.
	Tuning synth.Tuning
}

// NewDefaultPattern creates the sequencer's initial pattern.
func NewDefaultPattern() Pattern {
	return Pattern{
		BPM:      130,
		Beats:    8,
		Rows:     12,
		BaseNote: synth.A,
		Octave:   3,
	}
}

// Input is one run of the track: BeatCount beats at Frequency. A zero
// frequency renders the instrument at rest.
type Input struct {
	BeatCount int
	Frequency float64
}

// RowInputs is the input sequence of one pitch row.
type RowInputs struct {
	Row       int
	Frequency float64
	Inputs    []Input
}

// SamplesPerBeat converts tempo to the length of one grid step.
func SamplesPerBeat(bpm float64, sampleRate int) int {
	return int(math.Round((bpm / 60.0) * float64(sampleRate)))
}

// RowFrequency resolves the pitch of a row: row semitones above the base note.
func (p Pattern) RowFrequency(row int, tuning synth.Tuning) float64 {
	if p.Tuning > 0 {
		tuning = p.Tuning
	}
	if tuning <= 0 {
		tuning = synth.DefaultTuning
	}
	return tuning.Frequency(p.BaseNote, p.Octave, row)
}

// Inputs expands the grid into per-row input sequences. Rows without an
// active cell inside the pattern bounds are left out.
func (p Pattern) Inputs(g Grid, tuning synth.Tuning) []RowInputs {
	var out []RowInputs
	for row := 0; row < p.Rows; row++ {
		active := false
		for beat := 0; beat < p.Beats; beat++ {
			if g.Has(Cell{Beat: beat, Row: row}) {
				active = true
				break
			}
		}
		if !active {
			continue
		}
		freq := p.RowFrequency(row, tuning)
		inputs := make([]Input, p.Beats)
		for beat := range inputs {
			f := 0.0
			if g.Has(Cell{Beat: beat, Row: row}) {
				f = freq
			}
			inputs[beat] = Input{BeatCount: 1, Frequency: f}
		}
		out = append(out, RowInputs{Row: row, Frequency: freq, Inputs: inputs})
	}
	return out
}
