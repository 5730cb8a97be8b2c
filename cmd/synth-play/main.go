package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/cwbudde/algo-synthesis/internal/wavio"
	"github.com/cwbudde/algo-synthesis/preset"
	"github.com/cwbudde/algo-synthesis/sequencer"
	"github.com/cwbudde/algo-synthesis/synth"
)

func main() {
	presetPath := flag.String("preset", "", "Instrument preset (.json/.yaml); empty plays the default instrument")
	patternPath := flag.String("pattern", "", "Play a sequencer pattern instead of a single note")
	noteName := flag.String("note", "A", "Note name")
	octave := flag.Int("octave", 3, "Octave")
	steps := flag.Int("steps", 0, "Additional semitone steps")
	duration := flag.Float64("duration", 1.0, "Note duration in seconds")
	tuning := flag.Float64("tuning", float64(synth.DefaultTuning), "A4 reference frequency in Hz")
	sampleRate := flag.Int("sample-rate", synth.EditorSampleRate, "Playback sample rate in Hz")
	bufferMs := flag.Int("buffer-ms", 100, "Device buffer size in milliseconds")
	flag.Parse()

	inst := synth.NewInstrument("default")
	if *presetPath != "" {
		var err error
		inst, err = preset.LoadFile(*presetPath)
		if err != nil {
			die("load preset: %v", err)
		}
	}
	if *sampleRate <= 0 {
		die("-sample-rate must be > 0")
	}
	cfg := synth.NewDefaultConfig()
	cfg.Tuning = synth.Tuning(*tuning)
	sampler := synth.NewSampler(inst, *sampleRate, cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var samples []float64
	if *patternPath != "" {
		pattern, grid, err := preset.LoadPattern(*patternPath)
		if err != nil {
			die("load pattern: %v", err)
		}
		tracks, err := sequencer.GenerateTracks(ctx, pattern, grid, sampler, 0)
		if err != nil {
			die("render: %v", err)
		}
		samples = sequencer.Mix(tracks)
		fmt.Printf("Playing %d tracks of %q at %.1f bpm\n", len(tracks), inst.Name, pattern.BPM)
	} else {
		note, err := synth.ParseNote(*noteName)
		if err != nil {
			die("invalid -note: %v", err)
		}
		freq := cfg.Tuning.Frequency(note, *octave, *steps)
		samples, err = sampler.SampleContext(ctx, *duration, freq)
		if err != nil {
			die("render: %v", err)
		}
		fmt.Printf("Playing %q at %.3f Hz for %.2f s\n", inst.Name, freq, *duration)
	}

	if err := play(ctx, samples, *sampleRate, time.Duration(*bufferMs)*time.Millisecond); err != nil {
		die("playback: %v", err)
	}
}

// play streams mono samples as 16-bit PCM to the default output device and
// blocks until playback finishes or ctx is done.
func play(ctx context.Context, samples []float64, sampleRate int, buffer time.Duration) error {
	otoCtx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatSignedInt16LE,
		BufferSize:   buffer,
	})
	if err != nil {
		return err
	}
	<-ready

	player := otoCtx.NewPlayer(bytes.NewReader(wavio.PCM16LE(samples)))
	defer player.Close()
	player.Play()

	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()
	for player.IsPlaying() {
		select {
		case <-ctx.Done():
			player.Pause()
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return player.Err()
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
