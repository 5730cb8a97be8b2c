package sequencer

import (
	"bytes"
	"context"
	"errors"
	"math"
	"testing"

	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/cwbudde/algo-synthesis/synth"
)

func sineSampler(sampleRate int) *synth.Sampler {
	inst := synth.Instrument{
		ID:   "sine",
		Name: "sine",
		Oscillators: []synth.OscillatorParams{{
			ID:        "osc",
			Waveforms: []synth.WaveformParams{{ID: "w", Waveform: synth.Sine, Multiplier: 1, Feedback: 0}},
		}},
	}
	return synth.NewSampler(inst, sampleRate, nil)
}

func TestGridIsImmutableSet(t *testing.T) {
	a := NewGrid(Cell{0, 0}, Cell{0, 0}, Cell{2, 1})
	if a.Len() != 2 {
		t.Fatalf("duplicates should collapse: len=%d", a.Len())
	}
	b := a.With(Cell{3, 3})
	c := b.Without(Cell{0, 0})
	if a.Len() != 2 || !a.Has(Cell{0, 0}) || a.Has(Cell{3, 3}) {
		t.Fatalf("original grid mutated")
	}
	if b.Len() != 3 || c.Len() != 2 || c.Has(Cell{0, 0}) {
		t.Fatalf("unexpected derived grids: b=%v c=%v", b.Cells(), c.Cells())
	}
	var zero Grid
	if zero.Has(Cell{}) || zero.Len() != 0 || zero.With(Cell{1, 1}).Len() != 1 {
		t.Fatalf("zero grid should behave as an empty set")
	}
	cells := NewGrid(Cell{5, 1}, Cell{1, 1}, Cell{0, 2}).Cells()
	if cells[0] != (Cell{1, 1}) || cells[1] != (Cell{5, 1}) || cells[2] != (Cell{0, 2}) {
		t.Fatalf("cells not ordered by row then beat: %v", cells)
	}
}

func TestSamplesPerBeat(t *testing.T) {
	if got := SamplesPerBeat(60, 44100); got != 44100 {
		t.Fatalf("60 bpm: got=%d", got)
	}
	if got := SamplesPerBeat(130, 22000); got != 47667 {
		t.Fatalf("130 bpm at 22 kHz: got=%d want=47667", got)
	}
}

func TestInputsSkipEmptyRows(t *testing.T) {
	p := Pattern{BPM: 120, Beats: 4, Rows: 5, BaseNote: synth.A, Octave: 4, Tuning: synth.Tuning440}
	g := NewGrid(Cell{Beat: 1, Row: 3}, Cell{Beat: 2, Row: 3}, Cell{Beat: 9, Row: 1}, Cell{Beat: 0, Row: 7})
	rows := p.Inputs(g, 0)
	if len(rows) != 1 {
		t.Fatalf("expected only row 3, got %d rows", len(rows))
	}
	r := rows[0]
	want := synth.Tuning440.Frequency(synth.A, 4, 3)
	if r.Row != 3 || r.Frequency != want {
		t.Fatalf("row mismatch: %+v want freq %v", r, want)
	}
	if len(r.Inputs) != 4 {
		t.Fatalf("expected one input per beat, got %d", len(r.Inputs))
	}
	for beat, in := range r.Inputs {
		active := beat == 1 || beat == 2
		if in.BeatCount != 1 || (active && in.Frequency != want) || (!active && in.Frequency != 0) {
			t.Fatalf("beat %d: unexpected input %+v", beat, in)
		}
	}
}

func TestSingleCellTrackIsNoteThenSilence(t *testing.T) {
	const sr = 8000
	s := sineSampler(sr)
	p := Pattern{BPM: 30, Beats: 3, Rows: 2, BaseNote: synth.A, Octave: 2}
	tracks, err := GenerateTracks(context.Background(), p, NewGrid(Cell{Beat: 0, Row: 0}), s, 0)
	if err != nil {
		t.Fatalf("GenerateTracks: %v", err)
	}
	if len(tracks) != 1 {
		t.Fatalf("expected one track, got %d", len(tracks))
	}
	spb := SamplesPerBeat(p.BPM, sr)
	got := tracks[0].Samples
	if len(got) != 3*spb {
		t.Fatalf("track length: got=%d want=%d", len(got), 3*spb)
	}
	want := s.SampleFrames(spb, tracks[0].Frequency)
	for i := 0; i < spb; i++ {
		if got[i] != want[i] {
			t.Fatalf("note sample %d: got=%g want=%g", i, got[i], want[i])
		}
	}
	for i := spb; i < len(got); i++ {
		if got[i] != 0 {
			t.Fatalf("expected silence after the note at %d, got %g", i, got[i])
		}
	}
	var energy float64
	for _, v := range got[:spb] {
		energy += v * v
	}
	if energy == 0 {
		t.Fatalf("active beat rendered silence")
	}
}

func TestZeroFrequencyRunIsSilent(t *testing.T) {
	out, err := GenerateTrack(context.Background(), 120, sineSampler(4000), []Input{{BeatCount: 2, Frequency: 0}})
	if err != nil {
		t.Fatalf("GenerateTrack: %v", err)
	}
	if len(out) != 2*SamplesPerBeat(120, 4000) {
		t.Fatalf("unexpected length %d", len(out))
	}
	for i, v := range out {
		if v != 0 {
			t.Fatalf("0 Hz run should be silent at %d, got %g", i, v)
		}
	}
}

func TestGenerateTracksDeterministicAcrossWorkers(t *testing.T) {
	s := sineSampler(4000)
	p := Pattern{BPM: 90, Beats: 6, Rows: 12, BaseNote: synth.C, Octave: 3}
	g := NewGrid(Cell{0, 0}, Cell{1, 4}, Cell{5, 4}, Cell{2, 7}, Cell{3, 11}, Cell{4, 2})
	serial, err := GenerateTracks(context.Background(), p, g, s, 1)
	if err != nil {
		t.Fatalf("serial: %v", err)
	}
	parallel, err := GenerateTracks(context.Background(), p, g, s, 8)
	if err != nil {
		t.Fatalf("parallel: %v", err)
	}
	wantRows := []int{0, 2, 4, 7, 11}
	if len(serial) != len(wantRows) || len(parallel) != len(wantRows) {
		t.Fatalf("track count: serial=%d parallel=%d want=%d", len(serial), len(parallel), len(wantRows))
	}
	for i, row := range wantRows {
		if serial[i].Row != row || parallel[i].Row != row {
			t.Fatalf("track %d: rows serial=%d parallel=%d want=%d", i, serial[i].Row, parallel[i].Row, row)
		}
		for j := range serial[i].Samples {
			if serial[i].Samples[j] != parallel[i].Samples[j] {
				t.Fatalf("row %d diverged at %d", row, j)
			}
		}
	}
}

func TestGenerateTracksEmptyGrid(t *testing.T) {
	tracks, err := GenerateTracks(context.Background(), NewDefaultPattern(), Grid{}, sineSampler(4000), 0)
	if err != nil || len(tracks) != 0 {
		t.Fatalf("expected no tracks, got %d (err=%v)", len(tracks), err)
	}
}

func TestGenerateTracksCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := GenerateTracks(ctx, NewDefaultPattern(), NewGrid(Cell{0, 0}), sineSampler(4000), 2)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestMixAveragesTracks(t *testing.T) {
	mix := Mix([]Track{
		{Samples: []float64{1, 1, 1}},
		{Samples: []float64{0, 1}},
	})
	want := []float64{0.5, 1, 0.5}
	for i := range want {
		if math.Abs(mix[i]-want[i]) > 1e-15 {
			t.Fatalf("mix[%d]: got=%g want=%g", i, mix[i], want[i])
		}
	}
	if len(Mix(nil)) != 0 {
		t.Fatalf("mix of nothing should be empty")
	}
}

func TestWriteMIDIOneNotePerCell(t *testing.T) {
	p := Pattern{BPM: 120, Beats: 4, Rows: 3, BaseNote: synth.C, Octave: 4}
	g := NewGrid(Cell{0, 0}, Cell{1, 0}, Cell{2, 2}, Cell{9, 0})
	var buf bytes.Buffer
	if err := WriteMIDI(&buf, p, g); err != nil {
		t.Fatalf("WriteMIDI: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("MThd")) {
		t.Fatalf("missing SMF header")
	}
	s, err := smf.ReadFrom(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("ReadFrom: %v", err)
	}
	if len(s.Tracks) != 1 {
		t.Fatalf("expected one track, got %d", len(s.Tracks))
	}
	keys := map[byte]int{}
	for _, ev := range s.Tracks[0] {
		raw := []byte(ev.Message)
		if len(raw) == 3 && raw[0]&0xF0 == 0x90 && raw[2] > 0 {
			keys[raw[1]]++
		}
	}
	if keys[60] != 2 || keys[62] != 1 || len(keys) != 2 {
		t.Fatalf("unexpected note-ons: %v", keys)
	}
}
