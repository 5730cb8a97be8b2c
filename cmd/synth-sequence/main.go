package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/cwbudde/algo-synthesis/analysis"
	"github.com/cwbudde/algo-synthesis/internal/wavio"
	"github.com/cwbudde/algo-synthesis/preset"
	"github.com/cwbudde/algo-synthesis/sequencer"
	"github.com/cwbudde/algo-synthesis/synth"
)

func main() {
	patternPath := flag.String("pattern", "", "Pattern file (.json/.yaml) with bpm, grid size and active cells")
	presetPath := flag.String("preset", "", "Instrument preset (.json/.yaml)")
	libraryDir := flag.String("library", "", "Directory of presets; pick one with -instrument")
	instrumentName := flag.String("instrument", "", "Instrument name inside -library")
	sampleRate := flag.Int("sample-rate", synth.EditorSampleRate, "Render sample rate in Hz")
	tuning := flag.Float64("tuning", float64(synth.DefaultTuning), "A4 reference frequency in Hz (a tuning in the pattern wins)")
	workers := flag.String("workers", "auto", "Rows rendered in parallel (number or 'auto')")
	output := flag.String("output", "sequence.wav", "Mixed output WAV path (empty disables)")
	stemsDir := flag.String("stems", "", "Optional directory for one WAV per row")
	midiPath := flag.String("midi", "", "Optional Standard MIDI File export path")
	trimDBFS := flag.Float64("trim-dbfs", math.Inf(-1), "Trim trailing mix samples below this level. Disabled by default")
	flag.Parse()

	if *patternPath == "" {
		die("-pattern is required")
	}
	pattern, grid, err := preset.LoadPattern(*patternPath)
	if err != nil {
		die("load pattern: %v", err)
	}
	inst, err := loadInstrument(*presetPath, *libraryDir, *instrumentName)
	if err != nil {
		die("load instrument: %v", err)
	}
	n, err := wavio.ParseWorkers(*workers)
	if err != nil {
		die("invalid workers value: %v", err)
	}
	if *sampleRate <= 0 {
		die("-sample-rate must be > 0")
	}

	if *midiPath != "" {
		if err := writeMIDI(*midiPath, pattern, grid); err != nil {
			die("write midi: %v", err)
		}
		fmt.Printf("Wrote %s\n", *midiPath)
	}

	cfg := synth.NewDefaultConfig()
	cfg.Tuning = synth.Tuning(*tuning)
	sampler := synth.NewSampler(inst, *sampleRate, cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("Rendering %d cells (%d beats x %d rows at %.1f bpm) with %q at %d Hz...\n",
		grid.Len(), pattern.Beats, pattern.Rows, pattern.BPM, inst.Name, *sampleRate)
	start := time.Now()
	tracks, err := sequencer.GenerateTracks(ctx, pattern, grid, sampler, n)
	if err != nil {
		die("render: %v", err)
	}
	fmt.Printf("Rendered %d tracks in %.2fs\n", len(tracks), time.Since(start).Seconds())

	if *stemsDir != "" {
		for _, tr := range tracks {
			path := filepath.Join(*stemsDir, fmt.Sprintf("row%02d_%.2fhz.wav", tr.Row, tr.Frequency))
			if err := wavio.WriteMono(path, tr.Samples, *sampleRate); err != nil {
				die("write stem: %v", err)
			}
		}
		fmt.Printf("Wrote %d stems to %s\n", len(tracks), *stemsDir)
	}

	if *output == "" {
		return
	}
	mix := sequencer.Mix(tracks)
	if !math.IsInf(*trimDBFS, -1) {
		mix = analysis.TrimTrailingSilence(mix, *trimDBFS)
	}
	if err := wavio.WriteMono(*output, mix, *sampleRate); err != nil {
		die("write mix: %v", err)
	}
	fmt.Printf("Successfully wrote %s (%d frames, %.1f dBFS RMS)\n", *output, len(mix), analysis.DBFS(mix))
}

func loadInstrument(presetPath, libraryDir, name string) (synth.Instrument, error) {
	switch {
	case presetPath != "":
		return preset.LoadFile(presetPath)
	case libraryDir != "":
		lib, err := preset.LoadDir(libraryDir)
		if err != nil {
			return synth.Instrument{}, err
		}
		if name == "" {
			list := lib.List()
			if len(list) == 0 {
				return synth.Instrument{}, fmt.Errorf("no presets in %s", libraryDir)
			}
			return list[0], nil
		}
		return lib.FindByName(name)
	}
	return synth.NewInstrument("default"), nil
}

func writeMIDI(path string, p sequencer.Pattern, g sequencer.Grid) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := sequencer.WriteMIDI(f, p, g); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
