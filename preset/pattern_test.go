package preset

import (
	"path/filepath"
	"testing"

	"github.com/cwbudde/algo-synthesis/sequencer"
	"github.com/cwbudde/algo-synthesis/synth"
)

func TestLoadPatternDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "p.json", `{"cells": [{"beat": 0, "row": 0}, {"beat": 3, "row": 5}]}`)
	p, g, err := LoadPattern(path)
	if err != nil {
		t.Fatalf("LoadPattern: %v", err)
	}
	if p != sequencer.NewDefaultPattern() {
		t.Fatalf("pattern mismatch: got=%+v want defaults", p)
	}
	if g.Len() != 2 || !g.Has(sequencer.Cell{Beat: 3, Row: 5}) {
		t.Fatalf("grid mismatch: %+v", g.Cells())
	}
}

func TestLoadPatternYAMLOverrides(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "p.yml", `bpm: 90
beats: 4
rows: 3
base_note: "C#"
octave: 4
tuning: 440
cells:
  - {beat: 1, row: 2}
`)
	p, g, err := LoadPattern(path)
	if err != nil {
		t.Fatalf("LoadPattern: %v", err)
	}
	want := sequencer.Pattern{BPM: 90, Beats: 4, Rows: 3, BaseNote: synth.CSharp, Octave: 4, Tuning: synth.Tuning440}
	if p != want {
		t.Fatalf("pattern mismatch: got=%+v want=%+v", p, want)
	}
	if !g.Has(sequencer.Cell{Beat: 1, Row: 2}) {
		t.Fatalf("missing cell")
	}
}

func TestLoadPatternRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"bpm.json":    `{"bpm": 0}`,
		"beats.json":  `{"beats": 0}`,
		"rows.json":   `{"rows": -1}`,
		"note.json":   `{"base_note": "H"}`,
		"tuning.json": `{"tuning": -432}`,
		"cell.json":   `{"beats": 2, "cells": [{"beat": 2, "row": 0}]}`,
	}
	dir := t.TempDir()
	for name, content := range cases {
		path := writeFile(t, dir, name, content)
		if _, _, err := LoadPattern(path); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestSavePatternRoundTrip(t *testing.T) {
	p := sequencer.NewDefaultPattern()
	p.BPM = 100
	p.Tuning = synth.Tuning440
	g := sequencer.NewGrid(sequencer.Cell{Beat: 7, Row: 11}, sequencer.Cell{Beat: 0, Row: 0})

	for _, ext := range []string{".json", ".yaml"} {
		path := filepath.Join(t.TempDir(), "song"+ext)
		if err := SavePattern(path, p, g); err != nil {
			t.Fatalf("SavePattern(%s): %v", ext, err)
		}
		gotP, gotG, err := LoadPattern(path)
		if err != nil {
			t.Fatalf("LoadPattern(%s): %v", ext, err)
		}
		if gotP != p {
			t.Fatalf("%s: pattern mismatch: got=%+v want=%+v", ext, gotP, p)
		}
		if gotG.Len() != 2 || !gotG.Has(sequencer.Cell{Beat: 7, Row: 11}) {
			t.Fatalf("%s: grid mismatch: %+v", ext, gotG.Cells())
		}
	}
}
