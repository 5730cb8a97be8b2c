package main

import (
	"flag"
	"fmt"
	"math"
	"os"

	"github.com/cwbudde/algo-synthesis/analysis"
	"github.com/cwbudde/algo-synthesis/internal/wavio"
	"github.com/cwbudde/algo-synthesis/preset"
	"github.com/cwbudde/algo-synthesis/synth"
)

func main() {
	presetPath := flag.String("preset", "", "Instrument preset (.json/.yaml); empty renders the default instrument")
	noteName := flag.String("note", "A", "Note name (C, C#, Db, ...)")
	octave := flag.Int("octave", 4, "Octave (A4 is the tuning reference)")
	steps := flag.Int("steps", 0, "Additional semitone steps")
	tuning := flag.Float64("tuning", float64(synth.DefaultTuning), "A4 reference frequency in Hz")
	frequency := flag.Float64("frequency", 0, "Explicit frequency in Hz; overrides -note/-octave/-steps when > 0")
	duration := flag.Float64("duration", 1.0, "Duration in seconds")
	sampleRate := flag.Int("sample-rate", synth.EditorSampleRate, "Render sample rate in Hz")
	outputRate := flag.Int("output-rate", 0, "Resample to this rate before writing (0 keeps the render rate)")
	mode := flag.String("mode", "note", "Render mode: note|preview|audition")
	noPopShaping := flag.Bool("no-pop-shaping", false, "Disable the anti-pop attack/decay ramps")
	trimDBFS := flag.Float64("trim-dbfs", math.Inf(-1), "Trim trailing samples below this level (e.g. -90). Disabled by default")
	normalize := flag.Float64("normalize", 0, "Scale to this peak before writing (0 keeps the level)")
	output := flag.String("output", "output.wav", "Output WAV file path")
	flag.Parse()

	inst := synth.NewInstrument("default")
	if *presetPath != "" {
		var err error
		inst, err = preset.LoadFile(*presetPath)
		if err != nil {
			die("load preset: %v", err)
		}
	}
	note, err := synth.ParseNote(*noteName)
	if err != nil {
		die("invalid -note: %v", err)
	}
	if *tuning <= 0 {
		die("-tuning must be > 0")
	}
	if *sampleRate <= 0 {
		die("-sample-rate must be > 0")
	}

	cfg := synth.NewDefaultConfig()
	cfg.Tuning = synth.Tuning(*tuning)
	cfg.PopShaping = !*noPopShaping

	var samples []float64
	rate := *sampleRate
	switch *mode {
	case "note":
		freq := *frequency
		if freq <= 0 {
			freq = cfg.Tuning.Frequency(note, *octave, *steps)
		}
		fmt.Printf("Rendering %q at %.3f Hz for %.2f s at %d Hz...\n", inst.Name, freq, *duration, rate)
		samples = synth.NewSampler(inst, rate, cfg).Sample(*duration, freq)
	case "preview":
		rate = synth.PreviewSampleRate
		fmt.Printf("Rendering preview of %q (%d Hz)...\n", inst.Name, rate)
		samples = synth.Preview(inst, cfg)
	case "audition":
		rate = synth.EditorSampleRate
		fmt.Printf("Rendering audition of %q (%d Hz)...\n", inst.Name, rate)
		samples = synth.Audition(inst, cfg)
	default:
		die("unknown -mode %q", *mode)
	}

	if !math.IsInf(*trimDBFS, -1) {
		before := len(samples)
		samples = analysis.TrimTrailingSilence(samples, *trimDBFS)
		fmt.Printf("Trimmed %d trailing frames below %.1f dBFS\n", before-len(samples), *trimDBFS)
	}
	if *normalize > 0 {
		samples = analysis.NormalizePeak(samples, *normalize)
	}
	if *outputRate > 0 && *outputRate != rate {
		samples, err = wavio.Resample(samples, rate, *outputRate)
		if err != nil {
			die("resample: %v", err)
		}
		rate = *outputRate
	}

	if err := wavio.WriteMono(*output, samples, rate); err != nil {
		die("write wav: %v", err)
	}
	fmt.Printf("Successfully wrote %s (%d frames, peak %.1f dBFS)\n", *output, len(samples), analysis.LinearToDB(analysis.Peak(samples)))
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
