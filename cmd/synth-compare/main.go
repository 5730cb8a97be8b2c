package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/cwbudde/algo-synthesis/analysis"
	"github.com/cwbudde/algo-synthesis/internal/wavio"
	"github.com/cwbudde/algo-synthesis/preset"
	"github.com/cwbudde/algo-synthesis/synth"
)

func main() {
	referencePath := flag.String("reference", "reference/a4.wav", "Reference WAV path")
	candidatePath := flag.String("candidate", "", "Candidate WAV path; if empty, render the candidate from -preset")
	presetPath := flag.String("preset", "", "Instrument preset for the rendered candidate (empty = default instrument)")
	noteName := flag.String("note", "A", "Note for the rendered candidate")
	octave := flag.Int("octave", 4, "Octave for the rendered candidate")
	tuning := flag.Float64("tuning", float64(synth.DefaultTuning), "A4 reference frequency in Hz")
	duration := flag.Float64("duration", 0, "Rendered duration in seconds (0 = reference length)")
	sampleRate := flag.Int("sample-rate", 44100, "Analysis sample rate in Hz")
	writeCandidate := flag.String("write-candidate", "", "Optional path to write the rendered candidate WAV")
	bands := flag.Bool("bands", false, "Print per-band spectral levels")
	jsonOut := flag.Bool("json", false, "Print metrics as JSON")
	flag.Parse()

	ref, err := readAt(*referencePath, *sampleRate)
	if err != nil {
		die("failed to read reference: %v", err)
	}

	var cand []float64
	if *candidatePath != "" {
		cand, err = readAt(*candidatePath, *sampleRate)
		if err != nil {
			die("failed to read candidate: %v", err)
		}
	} else {
		inst := synth.NewInstrument("default")
		if *presetPath != "" {
			inst, err = preset.LoadFile(*presetPath)
			if err != nil {
				die("failed to load preset: %v", err)
			}
		}
		note, err := synth.ParseNote(*noteName)
		if err != nil {
			die("invalid -note: %v", err)
		}
		cfg := synth.NewDefaultConfig()
		cfg.Tuning = synth.Tuning(*tuning)
		seconds := *duration
		if seconds <= 0 {
			seconds = float64(len(ref)) / float64(*sampleRate)
		}
		s := synth.NewSampler(inst, *sampleRate, cfg)
		cand = s.Sample(seconds, cfg.Tuning.Frequency(note, *octave, 0))
		if *writeCandidate != "" {
			if err := wavio.WriteMono(*writeCandidate, cand, *sampleRate); err != nil {
				die("failed to write candidate wav: %v", err)
			}
		}
	}

	metrics := analysis.Compare(ref, cand, *sampleRate)
	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(metrics); err != nil {
			die("json encode failed: %v", err)
		}
		return
	}

	fmt.Printf("Reference frames: %d\n", metrics.ReferenceFrames)
	fmt.Printf("Candidate frames: %d\n", metrics.CandidateFrames)
	fmt.Printf("Aligned frames:   %d\n", metrics.AlignedFrames)
	fmt.Printf("Lag:              %d samples (%.3f ms)\n", metrics.LagSamples, 1000.0*float64(metrics.LagSamples)/float64(metrics.SampleRate))
	fmt.Printf("Pitch:            ref=%.2f Hz  cand=%.2f Hz  (%+.1f cents)\n", metrics.RefPitchHz, metrics.CandPitchHz, metrics.PitchErrorCents)
	fmt.Println()
	fmt.Printf("Component        Raw          Norm   Weight  Contribution\n")
	fmt.Printf("─────────────────────────────────────────────────────────\n")
	printComp := func(name string, raw string, norm, weight float64, dominant bool) {
		marker := ""
		if dominant {
			marker = " ◄"
		}
		fmt.Printf("%-16s %-12s %5.1f%%  ×%.2f   → %.4f%s\n", name, raw, norm*100, weight, norm*weight, marker)
	}
	printComp("Time RMSE", fmt.Sprintf("%.6f", metrics.TimeRMSE), metrics.TimeNorm, analysis.WeightTime, metrics.Dominant == "time")
	printComp("Envelope RMSE", fmt.Sprintf("%.1f dB", metrics.EnvelopeRMSEDB), metrics.EnvelopeNorm, analysis.WeightEnvelope, metrics.Dominant == "envelope")
	printComp("Spectral RMSE", fmt.Sprintf("%.1f dB", metrics.SpectralRMSEDB), metrics.SpectralNorm, analysis.WeightSpectral, metrics.Dominant == "spectral")
	printComp("Decay diff", fmt.Sprintf("%.1f dB/s", metrics.DecayDiffDBPerS), metrics.DecayNorm, analysis.WeightDecay, metrics.Dominant == "decay")
	printComp("Pitch error", fmt.Sprintf("%.1f ct", metrics.PitchErrorCents), metrics.PitchNorm, analysis.WeightPitch, metrics.Dominant == "pitch")
	fmt.Printf("─────────────────────────────────────────────────────────\n")
	fmt.Printf("Score:            %.4f  (0 best, 1 worst)\n", metrics.Score)
	fmt.Printf("Similarity:       %.2f%%\n", metrics.Similarity*100.0)
	fmt.Printf("Dominant factor:  %s\n", metrics.Dominant)
	fmt.Printf("\nDecay slopes: ref=%.1f dB/s  cand=%.1f dB/s\n", metrics.RefDecayDBPerS, metrics.CandDecayDBPerS)

	if *bands {
		printBands(ref, cand, *sampleRate)
	}
}

func readAt(path string, sampleRate int) ([]float64, error) {
	x, sr, err := wavio.ReadMono(path)
	if err != nil {
		return nil, err
	}
	return wavio.Resample(x, sr, sampleRate)
}

func printBands(ref, cand []float64, sampleRate int) {
	refSpec, err := analysis.AverageSpectrum(ref, sampleRate, 4096, 2048)
	if err != nil {
		die("reference spectrum: %v", err)
	}
	candSpec, err := analysis.AverageSpectrum(cand, sampleRate, 4096, 2048)
	if err != nil {
		die("candidate spectrum: %v", err)
	}
	refLevels := refSpec.BandLevels(analysis.DefaultBands)
	candLevels := candSpec.BandLevels(analysis.DefaultBands)
	fmt.Printf("\n%-10s %9s %9s %8s\n", "Band", "Ref dB", "Cand dB", "Diff")
	for i, b := range analysis.DefaultBands {
		fmt.Printf("%-10s %9.1f %9.1f %+8.1f\n", b.Name, refLevels[i], candLevels[i], candLevels[i]-refLevels[i])
	}
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
