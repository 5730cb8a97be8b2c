// Package wavio reads and writes the mono WAV files the command line tools
// exchange.
package wavio

import (
	"fmt"
	"os"
	"path/filepath"

	dspresample "github.com/cwbudde/algo-dsp/dsp/resample"
	"github.com/cwbudde/wav"
	"github.com/go-audio/audio"
)

// BitDepth of every file written by this package.
const BitDepth = 16

// ReadMono decodes a WAV file and downmixes it to mono.
func ReadMono(path string) ([]float64, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()
	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, 0, fmt.Errorf("invalid wav file: %s", path)
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, err
	}
	if buf == nil || buf.Format == nil || buf.Format.NumChannels < 1 {
		return nil, 0, fmt.Errorf("invalid wav buffer: %s", path)
	}
	if buf.Format.SampleRate <= 0 {
		return nil, 0, fmt.Errorf("invalid wav sample-rate: %d", buf.Format.SampleRate)
	}
	ch := buf.Format.NumChannels
	frames := len(buf.Data) / ch
	out := make([]float64, frames)
	for i := range out {
		var sum float64
		for c := 0; c < ch; c++ {
			sum += float64(buf.Data[i*ch+c])
		}
		out[i] = sum / float64(ch)
	}
	return out, buf.Format.SampleRate, nil
}

// WriteMono encodes samples as a 16-bit mono WAV file, creating parent
// directories as needed. Samples outside [-1, 1] are clipped.
func WriteMono(path string, samples []float64, sampleRate int) error {
	if sampleRate <= 0 {
		return fmt.Errorf("invalid sample-rate: %d", sampleRate)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := wav.NewEncoder(f, sampleRate, BitDepth, 1, 1)

	data := make([]float32, len(samples))
	for i, s := range samples {
		data[i] = float32(Clamp(s, -1, 1))
	}
	buf := &audio.Float32Buffer{
		Format: &audio.Format{
			SampleRate:  sampleRate,
			NumChannels: 1,
		},
		Data:           data,
		SourceBitDepth: BitDepth,
	}
	if err := enc.Write(buf); err != nil {
		return err
	}
	return enc.Close()
}

// Resample converts in from one rate to another. Equal rates return in.
func Resample(in []float64, fromRate, toRate int) ([]float64, error) {
	if fromRate <= 0 || toRate <= 0 {
		return nil, fmt.Errorf("invalid resample rates: %d -> %d", fromRate, toRate)
	}
	if fromRate == toRate {
		return in, nil
	}
	r, err := dspresample.NewForRates(
		float64(fromRate),
		float64(toRate),
		dspresample.WithQuality(dspresample.QualityBest),
	)
	if err != nil {
		return nil, err
	}
	return r.Process(in), nil
}
