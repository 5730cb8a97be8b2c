package analysis

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	algofft "github.com/cwbudde/algo-fft"
)

const (
	minFFTSize = 64
	maxFFTSize = 1 << 16
)

// ErrTooShort is returned when a signal has too few samples to analyse.
var ErrTooShort = errors.New("analysis: signal too short")

// Spectrum is a one-sided magnitude spectrum. Magnitudes[k] is the bin at
// k*BinHz.
type Spectrum struct {
	BinHz      float64
	Magnitudes []float64
}

// Band is a frequency range used for coarse spectral summaries.
type Band struct {
	Name string
	LoHz float64
	HiHz float64
}

// DefaultBands split the audible range the way mixing engineers talk about it.
var DefaultBands = []Band{
	{"sub-bass", 20, 100},
	{"bass", 100, 300},
	{"low-mid", 300, 1000},
	{"mid", 1000, 3000},
	{"hi-mid", 3000, 6000},
	{"high", 6000, 12000},
	{"air", 12000, 20000},
}

func hann(n int) []float64 {
	w := make([]float64, n)
	if n == 1 {
		w[0] = 1
		return w
	}
	for i := range w {
		w[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(n-1))
	}
	return w
}

func fftSizeFor(n int) int {
	size := minFFTSize
	for size < n && size < maxFFTSize {
		size <<= 1
	}
	return size
}

// ComputeSpectrum returns the Hann-windowed spectrum of x. The transform size
// is the next power of two holding x, capped at 65536 samples; longer input
// is truncated and shorter input zero padded.
func ComputeSpectrum(x []float64, sampleRate int) (Spectrum, error) {
	if sampleRate <= 0 {
		return Spectrum{}, fmt.Errorf("analysis: invalid sample-rate %d", sampleRate)
	}
	if len(x) < 2 {
		return Spectrum{}, ErrTooShort
	}
	size := fftSizeFor(len(x))
	n := len(x)
	if n > size {
		n = size
	}
	plan, err := algofft.NewPlanReal64(size)
	if err != nil {
		return Spectrum{}, fmt.Errorf("fft plan: %w", err)
	}
	buf := make([]float64, size)
	for i, w := range hann(n) {
		buf[i] = x[i] * w
	}
	spec := make([]complex128, size/2+1)
	plan.Forward(spec, buf)

	mags := make([]float64, len(spec))
	for k, c := range spec {
		mags[k] = cmplx.Abs(c)
	}
	return Spectrum{
		BinHz:      float64(sampleRate) / float64(size),
		Magnitudes: mags,
	}, nil
}

// AverageSpectrum averages the magnitudes of Hann-windowed frames of
// fftSize samples taken every hop samples. Input shorter than one frame is
// analysed as a single zero-padded frame.
func AverageSpectrum(x []float64, sampleRate, fftSize, hop int) (Spectrum, error) {
	if sampleRate <= 0 {
		return Spectrum{}, fmt.Errorf("analysis: invalid sample-rate %d", sampleRate)
	}
	if fftSize < 2 || fftSize&(fftSize-1) != 0 {
		return Spectrum{}, fmt.Errorf("analysis: fft size %d is not a power of two", fftSize)
	}
	if hop < 1 {
		return Spectrum{}, fmt.Errorf("analysis: hop must be >= 1")
	}
	if len(x) < 2 {
		return Spectrum{}, ErrTooShort
	}
	plan, err := algofft.NewPlanReal64(fftSize)
	if err != nil {
		return Spectrum{}, fmt.Errorf("fft plan: %w", err)
	}
	window := hann(fftSize)
	buf := make([]float64, fftSize)
	spec := make([]complex128, fftSize/2+1)
	avg := make([]float64, len(spec))

	frames := 0
	accumulate := func() {
		plan.Forward(spec, buf)
		for k, c := range spec {
			avg[k] += cmplx.Abs(c)
		}
		frames++
	}
	for pos := 0; pos+fftSize <= len(x); pos += hop {
		for i := range buf {
			buf[i] = x[pos+i] * window[i]
		}
		accumulate()
	}
	if frames == 0 {
		w := hann(len(x))
		for i := range buf {
			buf[i] = 0
		}
		for i := range x {
			buf[i] = x[i] * w[i]
		}
		accumulate()
	}
	scale := 1.0 / float64(frames)
	for k := range avg {
		avg[k] *= scale
	}
	return Spectrum{
		BinHz:      float64(sampleRate) / float64(fftSize),
		Magnitudes: avg,
	}, nil
}

// PeakBin returns the index of the strongest bin, skipping DC.
func (s Spectrum) PeakBin() int {
	best := 0
	bestMag := -1.0
	for k := 1; k < len(s.Magnitudes); k++ {
		if s.Magnitudes[k] > bestMag {
			bestMag = s.Magnitudes[k]
			best = k
		}
	}
	return best
}

// PeakFrequency refines PeakBin with parabolic interpolation over the log
// magnitudes of its neighbours.
func (s Spectrum) PeakFrequency() float64 {
	k := s.PeakBin()
	if k <= 0 || k >= len(s.Magnitudes)-1 {
		return float64(k) * s.BinHz
	}
	a := LinearToDB(s.Magnitudes[k-1])
	b := LinearToDB(s.Magnitudes[k])
	c := LinearToDB(s.Magnitudes[k+1])
	den := a - 2*b + c
	offset := 0.0
	if math.Abs(den) > 1e-12 {
		offset = 0.5 * (a - c) / den
	}
	if offset > 0.5 || offset < -0.5 {
		offset = 0
	}
	return (float64(k) + offset) * s.BinHz
}

// BandLevels returns the mean magnitude in dB of each band. Bands outside the
// spectrum report SilenceFloorDB.
func (s Spectrum) BandLevels(bands []Band) []float64 {
	out := make([]float64, len(bands))
	last := len(s.Magnitudes) - 1
	for i, b := range bands {
		out[i] = SilenceFloorDB
		if s.BinHz <= 0 {
			continue
		}
		lo := int(math.Ceil(b.LoHz / s.BinHz))
		hi := int(math.Floor(b.HiHz / s.BinHz))
		if lo < 1 {
			lo = 1
		}
		if hi > last {
			hi = last
		}
		if lo > hi {
			continue
		}
		var sum float64
		for k := lo; k <= hi; k++ {
			sum += s.Magnitudes[k]
		}
		out[i] = LinearToDB(sum / float64(hi-lo+1))
	}
	return out
}

// DominantFrequency estimates the strongest partial of x in Hz.
func DominantFrequency(x []float64, sampleRate int) (float64, error) {
	s, err := ComputeSpectrum(x, sampleRate)
	if err != nil {
		return 0, err
	}
	if Peak(x) <= 1e-12 {
		return 0, nil
	}
	return s.PeakFrequency(), nil
}
