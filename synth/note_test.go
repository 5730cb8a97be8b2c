package synth

import (
	"fmt"
	"math"
	"testing"
)

func TestReferenceAIsExact(t *testing.T) {
	if got := A.Frequency(4, 0); got != float64(Tuning432) {
		t.Fatalf("A4 with default tuning: got=%v want=%v", got, Tuning432)
	}
	if got := Tuning440.Frequency(A, 4, 0); got != 440.0 {
		t.Fatalf("A4 with concert tuning: got=%v want=440", got)
	}
}

func TestOctaveDoubles(t *testing.T) {
	for n := C; n <= B; n++ {
		for octave := 0; octave < 8; octave++ {
			t.Run(fmt.Sprintf("%v%d", n, octave), func(t *testing.T) {
				lo := n.Frequency(octave, 0)
				hi := n.Frequency(octave+1, 0)
				if math.Abs(hi-2*lo) > 1e-9*hi {
					t.Fatalf("octave not doubled: lo=%v hi=%v", lo, hi)
				}
			})
		}
	}
}

func TestAdditionalStepsShiftPitch(t *testing.T) {
	// Rows of the sequencer count semitones upward from the base note.
	got := Tuning440.Frequency(A, 3, 3)
	want := Tuning440.Frequency(C, 4, 0)
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("A3+3 should be C4: got=%v want=%v", got, want)
	}
	if c4 := Tuning440.Frequency(C, 4, 0); math.Abs(c4-261.6256) > 1e-3 {
		t.Fatalf("C4 at 440 tuning: got=%v", c4)
	}
}

func TestNoteMIDIAndParse(t *testing.T) {
	if got := A.MIDI(4, 0); got != 69 {
		t.Fatalf("A4 midi: got=%d want=69", got)
	}
	if got := C.MIDI(4, 0); got != 60 {
		t.Fatalf("C4 midi: got=%d want=60", got)
	}
	cases := map[string]Note{"c": C, "C#": CSharp, "Db": CSharp, "f sharp": FSharp, "Bb": ASharp, "B": B, "Cb": B}
	for in, want := range cases {
		got, err := ParseNote(in)
		if err != nil {
			t.Fatalf("ParseNote(%q): %v", in, err)
		}
		if got != want {
			t.Fatalf("ParseNote(%q): got=%v want=%v", in, got, want)
		}
	}
	if _, err := ParseNote("H"); err == nil {
		t.Fatalf("expected error for unknown note")
	}
}
