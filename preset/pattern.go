package preset

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/cwbudde/algo-synthesis/sequencer"
	"github.com/cwbudde/algo-synthesis/synth"
)

// PatternFile is the schema of a sequencer pattern: timing, pitch frame and
// the active cells.
type PatternFile struct {
	BPM      *float64         `json:"bpm,omitempty" yaml:"bpm,omitempty"`
	Beats    *int             `json:"beats,omitempty" yaml:"beats,omitempty"`
	Rows     *int             `json:"rows,omitempty" yaml:"rows,omitempty"`
	BaseNote string           `json:"base_note,omitempty" yaml:"base_note,omitempty"`
	Octave   *int             `json:"octave,omitempty" yaml:"octave,omitempty"`
	Tuning   *float64         `json:"tuning,omitempty" yaml:"tuning,omitempty"`
	Cells    []sequencer.Cell `json:"cells" yaml:"cells"`
}

// LoadPattern reads a JSON or YAML pattern and applies it on top of
// sequencer.NewDefaultPattern.
func LoadPattern(path string) (sequencer.Pattern, sequencer.Grid, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return sequencer.Pattern{}, sequencer.Grid{}, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return sequencer.Pattern{}, sequencer.Grid{}, err
	}
	p, g, err := DecodePattern(b, format)
	if err != nil {
		return sequencer.Pattern{}, sequencer.Grid{}, fmt.Errorf("%s: %w", path, err)
	}
	return p, g, nil
}

// SavePattern writes p and g in the format implied by the extension of path.
func SavePattern(path string, p sequencer.Pattern, g sequencer.Grid) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	bpm, beats, rows, octave := p.BPM, p.Beats, p.Rows, p.Octave
	f := PatternFile{
		BPM:      &bpm,
		Beats:    &beats,
		Rows:     &rows,
		BaseNote: p.BaseNote.String(),
		Octave:   &octave,
		Cells:    g.Cells(),
	}
	if p.Tuning > 0 {
		tuning := float64(p.Tuning)
		f.Tuning = &tuning
	}
	b, err := marshal(&f, format)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

// DecodePattern parses and validates a pattern file.
func DecodePattern(data []byte, format Format) (sequencer.Pattern, sequencer.Grid, error) {
	var f PatternFile
	if err := unmarshal(data, format, &f); err != nil {
		return sequencer.Pattern{}, sequencer.Grid{}, err
	}
	p := sequencer.NewDefaultPattern()
	if f.BPM != nil {
		if !isFinite(*f.BPM) || *f.BPM <= 0 {
			return p, sequencer.Grid{}, fmt.Errorf("bpm must be > 0")
		}
		p.BPM = *f.BPM
	}
	if f.Beats != nil {
		if *f.Beats < 1 {
			return p, sequencer.Grid{}, fmt.Errorf("beats must be >= 1")
		}
		p.Beats = *f.Beats
	}
	if f.Rows != nil {
		if *f.Rows < 1 {
			return p, sequencer.Grid{}, fmt.Errorf("rows must be >= 1")
		}
		p.Rows = *f.Rows
	}
	if f.BaseNote != "" {
		n, err := synth.ParseNote(f.BaseNote)
		if err != nil {
			return p, sequencer.Grid{}, fmt.Errorf("base_note: %w", err)
		}
		p.BaseNote = n
	}
	if f.Octave != nil {
		p.Octave = *f.Octave
	}
	if f.Tuning != nil {
		if !isFinite(*f.Tuning) || *f.Tuning <= 0 {
			return p, sequencer.Grid{}, fmt.Errorf("tuning must be > 0")
		}
		p.Tuning = synth.Tuning(*f.Tuning)
	}
	for i, c := range f.Cells {
		if c.Beat < 0 || c.Beat >= p.Beats || c.Row < 0 || c.Row >= p.Rows {
			return p, sequencer.Grid{}, fmt.Errorf("cells[%d] (%d,%d) outside %dx%d grid", i, c.Beat, c.Row, p.Beats, p.Rows)
		}
	}
	return p, sequencer.NewGrid(f.Cells...), nil
}
