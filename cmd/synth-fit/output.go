package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/cwbudde/algo-synthesis/analysis"
	"github.com/cwbudde/algo-synthesis/preset"
	"github.com/cwbudde/algo-synthesis/synth"
)

type runReport struct {
	ReferencePath  string             `json:"reference_path"`
	PresetPath     string             `json:"preset_path,omitempty"`
	OutputPreset   string             `json:"output_preset"`
	SampleRate     int                `json:"sample_rate"`
	FrequencyHz    float64            `json:"frequency_hz"`
	DurationSec    float64            `json:"elapsed_seconds"`
	Evaluations    int                `json:"evaluations"`
	Rounds         int                `json:"rounds"`
	MayflyVariant  string             `json:"mayfly_variant"`
	BestScore      float64            `json:"best_score"`
	BestSimilarity float64            `json:"best_similarity"`
	BestMetrics    analysis.Metrics   `json:"best_metrics"`
	BestKnobs      map[string]float64 `json:"best_knobs"`
	TopCandidates  []topCandidate     `json:"top_candidates,omitempty"`
}

// defaultReportPath puts the report next to the fitted preset.
func defaultReportPath(outputPreset string) string {
	ext := filepath.Ext(outputPreset)
	return strings.TrimSuffix(outputPreset, ext) + ".report.json"
}

func writeOutputs(outputPreset, reportPath string, inst synth.Instrument, report runReport) error {
	if err := preset.SaveFile(outputPreset, inst); err != nil {
		return err
	}
	if reportPath == "" {
		return nil
	}
	b, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(reportPath), 0o755); err != nil {
		return err
	}
	return os.WriteFile(reportPath, append(b, '\n'), 0o644)
}

func knobsMap(defs []knobDef, c candidate) map[string]float64 {
	out := make(map[string]float64, len(defs))
	for i, def := range defs {
		out[def.Name] = c.Vals[i]
	}
	return out
}
