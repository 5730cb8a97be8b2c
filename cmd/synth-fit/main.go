package main

import (
	"flag"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/cwbudde/algo-synthesis/internal/wavio"
	"github.com/cwbudde/algo-synthesis/preset"
	"github.com/cwbudde/algo-synthesis/synth"
)

func main() {
	referencePath := flag.String("reference", "reference/a4.wav", "Reference WAV path")
	presetPath := flag.String("preset", "", "Base instrument preset (empty = default instrument)")
	outputPreset := flag.String("output-preset", "out/fitted.json", "Path to write the fitted preset (.json/.yaml)")
	reportPath := flag.String("report", "", "Report JSON path (default: <output-preset>.report.json)")
	fit := flag.String("fit", "multiplier,feedback", "Comma-separated groups to fit: multiplier, feedback, fade")
	integerRatios := flag.Bool("integer-ratios", false, "Restrict stage multipliers to whole numbers")
	noteName := flag.String("note", "A", "Reference note")
	octave := flag.Int("octave", 4, "Reference octave")
	tuning := flag.Float64("tuning", float64(synth.DefaultTuning), "A4 reference frequency in Hz")
	sampleRate := flag.Int("sample-rate", synth.EditorSampleRate, "Render/analysis sample rate")
	duration := flag.Float64("duration", 0, "Seconds of the reference to fit (0 = all, capped at -max-duration)")
	maxDuration := flag.Float64("max-duration", 4.0, "Upper bound for the fitted duration in seconds")
	seed := flag.Int64("seed", 1, "Random seed")
	timeBudget := flag.Float64("time-budget", 60.0, "Optimization time budget in seconds")
	maxEvals := flag.Int("max-evals", 2000, "Maximum objective evaluations")
	reportEvery := flag.Int("report-every", 20, "Print progress every N evaluations")
	topK := flag.Int("top-k", 5, "How many top candidates to keep in report")
	workers := flag.String("workers", "1", "Parallel optimization workers running independent Mayfly rounds (number or 'auto')")
	mayflyVariant := flag.String("mayfly-variant", "desma", "Mayfly variant: ma|desma|olce|eobbma|gsasma|mpma|aoblmoa")
	mayflyPop := flag.Int("mayfly-pop", 10, "Male and female population size per Mayfly run")
	mayflyRoundEvals := flag.Int("mayfly-round-evals", 240, "Target eval budget per Mayfly round")
	flag.Parse()

	groups, err := parseFitGroups(*fit)
	if err != nil {
		die("invalid -fit: %v", err)
	}
	if *outputPreset == "" {
		die("output-preset must not be empty")
	}
	if *maxEvals < 1 {
		die("max-evals must be >= 1")
	}
	if *timeBudget <= 0 {
		die("time-budget must be > 0")
	}
	if *sampleRate <= 0 {
		die("sample-rate must be > 0")
	}
	if *mayflyPop < 2 {
		*mayflyPop = 2
	}
	if *mayflyRoundEvals < *mayflyPop*2 {
		*mayflyRoundEvals = *mayflyPop * 2
	}
	if *topK < 1 {
		*topK = 1
	}
	parsedWorkers, err := wavio.ParseWorkers(*workers)
	if err != nil {
		die("invalid workers value: %v", err)
	}
	if parsedWorkers == 0 {
		parsedWorkers = defaultWorkers()
	}
	note, err := synth.ParseNote(*noteName)
	if err != nil {
		die("invalid -note: %v", err)
	}

	base := synth.NewInstrument("fitted")
	if *presetPath != "" {
		base, err = preset.LoadFile(*presetPath)
		if err != nil {
			die("failed to load preset: %v", err)
		}
	}

	refRaw, refSR, err := wavio.ReadMono(*referencePath)
	if err != nil {
		die("failed to read reference: %v", err)
	}
	ref, err := wavio.Resample(refRaw, refSR, *sampleRate)
	if err != nil {
		die("failed to resample reference: %v", err)
	}
	seconds := *duration
	if seconds <= 0 {
		seconds = float64(len(ref)) / float64(*sampleRate)
	}
	if seconds > *maxDuration {
		seconds = *maxDuration
	}
	if frames := int(seconds * float64(*sampleRate)); frames < len(ref) {
		ref = ref[:frames]
	}

	synthCfg := synth.NewDefaultConfig()
	synthCfg.Tuning = synth.Tuning(*tuning)
	defs, initCand := initCandidate(base, groups, *integerRatios)
	if *reportPath == "" {
		*reportPath = defaultReportPath(*outputPreset)
	}

	cfg := &fitConfig{
		base:             base,
		defs:             defs,
		init:             initCand,
		reference:        ref,
		sampleRate:       *sampleRate,
		frequency:        synthCfg.Tuning.Frequency(note, *octave, 0),
		duration:         seconds,
		synthCfg:         synthCfg,
		seed:             *seed,
		timeBudget:       time.Duration(*timeBudget * float64(time.Second)),
		maxEvals:         *maxEvals,
		reportEvery:      *reportEvery,
		topK:             *topK,
		workers:          parsedWorkers,
		mayflyVariant:    *mayflyVariant,
		mayflyPop:        *mayflyPop,
		mayflyRoundEvals: *mayflyRoundEvals,
	}
	fmt.Printf("Fitting %d knobs of %q to %s (%.2f s at %.2f Hz, %d workers)\n", len(defs), base.Name, *referencePath, seconds, cfg.frequency, parsedWorkers)

	res, err := runFit(cfg)
	if err != nil {
		die("fit failed: %v", err)
	}
	best := applyCandidate(base, defs, res.best)
	report := runReport{
		ReferencePath:  *referencePath,
		PresetPath:     *presetPath,
		OutputPreset:   *outputPreset,
		SampleRate:     *sampleRate,
		FrequencyHz:    cfg.frequency,
		DurationSec:    res.elapsed.Seconds(),
		Evaluations:    res.evals,
		Rounds:         res.rounds,
		MayflyVariant:  *mayflyVariant,
		BestScore:      res.metrics.Score,
		BestSimilarity: res.metrics.Similarity,
		BestMetrics:    res.metrics,
		BestKnobs:      knobsMap(defs, res.best),
		TopCandidates:  res.top,
	}
	if err := writeOutputs(*outputPreset, *reportPath, best, report); err != nil {
		die("failed to write outputs: %v", err)
	}
	fmt.Printf("Done: evals=%d rounds=%d elapsed=%.1fs score=%.4f sim=%.2f%%\n", res.evals, res.rounds, res.elapsed.Seconds(), res.metrics.Score, res.metrics.Similarity*100.0)
	fmt.Printf("Best: %s\n", formatCandidate(defs, res.best))
	fmt.Printf("Wrote %s and %s\n", *outputPreset, *reportPath)
}

func defaultWorkers() int {
	return max(1, runtime.GOMAXPROCS(0))
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
