package synth

import (
	"fmt"
	"math"
	"strings"
)

// Note is one of the twelve pitch classes.
type Note int

const (
	C Note = iota
	CSharp
	D
	DSharp
	E
	F
	FSharp
	G
	GSharp
	A
	ASharp
	B
)

const (
	stepsPerOctave  = 12
	referenceOctave = 4
	midiA4          = 69
)

// pitchRatio is the equal-tempered semitone ratio 2^(1/12).
var pitchRatio = math.Pow(2.0, 1.0/stepsPerOctave)

var noteNames = [...]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// StepsFromA returns the signed semitone distance from A in the same octave.
func (n Note) StepsFromA() int {
	return int(n) - int(A)
}

// Frequency resolves the note with DefaultTuning. Octave 4 holds A4.
func (n Note) Frequency(octave int, additionalSteps int) float64 {
	return DefaultTuning.Frequency(n, octave, additionalSteps)
}

// MIDI returns the MIDI key number of the note, A4 = 69.
func (n Note) MIDI(octave int, additionalSteps int) int {
	return midiA4 + stepsPerOctave*(octave-referenceOctave) + n.StepsFromA() + additionalSteps
}

func (n Note) String() string {
	if n < C || n > B {
		return fmt.Sprintf("Note(%d)", int(n))
	}
	return noteNames[n]
}

// ParseNote accepts names like "C", "c#", "Db" and "F sharp".
func ParseNote(name string) (Note, error) {
	s := strings.ToUpper(strings.TrimSpace(name))
	s = strings.ReplaceAll(s, " ", "")
	s = strings.Replace(s, "SHARP", "#", 1)
	s = strings.Replace(s, "FLAT", "B", 1)
	if len(s) == 0 {
		return 0, fmt.Errorf("empty note name")
	}
	for i, n := range noteNames {
		if s == n {
			return Note(i), nil
		}
	}
	if len(s) == 2 && s[1] == 'B' {
		for i, n := range noteNames {
			if n == s[:1] {
				return Note((i + stepsPerOctave - 1) % stepsPerOctave), nil
			}
		}
	}
	return 0, fmt.Errorf("unknown note %q", name)
}

// MarshalText encodes the note by name.
func (n Note) MarshalText() ([]byte, error) {
	if n < C || n > B {
		return nil, fmt.Errorf("invalid note %d", int(n))
	}
	return []byte(n.String()), nil
}

// UnmarshalText is the inverse of MarshalText.
func (n *Note) UnmarshalText(b []byte) error {
	v, err := ParseNote(string(b))
	if err != nil {
		return err
	}
	*n = v
	return nil
}

// Tuning is the frequency of A4 in Hz.
type Tuning float64

const (
	// Tuning432 is the reference the app ships with.
	Tuning432 Tuning = 432.0
	// Tuning440 is concert pitch.
	Tuning440 Tuning = 440.0

	DefaultTuning = Tuning432
)

// Frequency returns the equal-tempered frequency of note in octave, shifted
// by additionalSteps semitones.
func (t Tuning) Frequency(note Note, octave int, additionalSteps int) float64 {
	steps := stepsPerOctave*(octave-referenceOctave) + note.StepsFromA() + additionalSteps
	return float64(t) * math.Pow(pitchRatio, float64(steps))
}
