package analysis

import (
	"math"

	algofft "github.com/cwbudde/algo-fft"
)

const (
	envelopeFrame = 256
	envelopeHop   = 128
	spectrumSize  = 4096
	spectrumHop   = 2048
	compareTarget = 0.1
	maxCompareSec = 12
	minAligned    = 256
)

// Weights of the normalised components in Metrics.Score.
const (
	WeightTime     = 0.25
	WeightEnvelope = 0.20
	WeightSpectral = 0.25
	WeightDecay    = 0.10
	WeightPitch    = 0.20
)

// Metrics contains distance and similarity measurements between a reference
// recording and a candidate render.
type Metrics struct {
	SampleRate int `json:"sample_rate"`

	ReferenceFrames int `json:"reference_frames"`
	CandidateFrames int `json:"candidate_frames"`
	AlignedFrames   int `json:"aligned_frames"`
	LagSamples      int `json:"lag_samples"`

	TimeRMSE        float64 `json:"time_rmse"`
	EnvelopeRMSEDB  float64 `json:"envelope_rmse_db"`
	SpectralRMSEDB  float64 `json:"spectral_rmse_db"`
	RefDecayDBPerS  float64 `json:"ref_decay_db_per_s"`
	CandDecayDBPerS float64 `json:"cand_decay_db_per_s"`
	DecayDiffDBPerS float64 `json:"decay_diff_db_per_s"`
	RefPitchHz      float64 `json:"ref_pitch_hz"`
	CandPitchHz     float64 `json:"cand_pitch_hz"`
	PitchErrorCents float64 `json:"pitch_error_cents"`

	TimeNorm     float64 `json:"time_norm"`
	EnvelopeNorm float64 `json:"envelope_norm"`
	SpectralNorm float64 `json:"spectral_norm"`
	DecayNorm    float64 `json:"decay_norm"`
	PitchNorm    float64 `json:"pitch_norm"`
	// Dominant names the component contributing most to Score.
	Dominant string `json:"dominant"`

	// Score is a weighted distance in [0,1]; 0 is identical.
	Score      float64 `json:"score"`
	Similarity float64 `json:"similarity"`
}

func worstMetrics(m Metrics) Metrics {
	m.Dominant = "invalid"
	m.Score = 1.0
	m.Similarity = 0.0
	return m
}

// Compare aligns candidate to reference and returns objective distance
// metrics with a combined score. Both signals are RMS-normalised first, so
// overall gain does not count.
func Compare(reference []float64, candidate []float64, sampleRate int) Metrics {
	m := Metrics{
		SampleRate:      sampleRate,
		ReferenceFrames: len(reference),
		CandidateFrames: len(candidate),
	}
	if sampleRate <= 0 {
		return worstMetrics(m)
	}
	ref := trimLeadingSilence(reference, 1e-6)
	cand := trimLeadingSilence(candidate, 1e-6)
	if len(ref) < minAligned || len(cand) < minAligned {
		return worstMetrics(m)
	}
	limit := sampleRate * maxCompareSec
	if len(ref) > limit {
		ref = ref[:limit]
	}
	if len(cand) > limit {
		cand = cand[:limit]
	}
	ref = normalizeRMS(ref, compareTarget)
	cand = normalizeRMS(cand, compareTarget)

	maxLag := sampleRate / 2
	if maxLag > len(ref)-1 {
		maxLag = len(ref) - 1
	}
	if maxLag > len(cand)-1 {
		maxLag = len(cand) - 1
	}
	lag := estimateLag(ref, cand, maxLag)
	m.LagSamples = lag

	refA, candA := alignByLag(ref, cand, lag)
	n := min(len(refA), len(candA))
	if n < minAligned {
		return worstMetrics(m)
	}
	refA, candA = refA[:n], candA[:n]
	m.AlignedFrames = n

	m.TimeRMSE = rmse(refA, candA)

	refEnv := rmsEnvelope(refA, envelopeFrame, envelopeHop)
	candEnv := rmsEnvelope(candA, envelopeFrame, envelopeHop)
	if envN := min(len(refEnv), len(candEnv)); envN > 0 {
		var sum float64
		for i := 0; i < envN; i++ {
			d := LinearToDB(refEnv[i]) - LinearToDB(candEnv[i])
			sum += d * d
		}
		m.EnvelopeRMSEDB = math.Sqrt(sum / float64(envN))
	}

	refSpec, errR := AverageSpectrum(refA, sampleRate, spectrumSize, spectrumHop)
	candSpec, errC := AverageSpectrum(candA, sampleRate, spectrumSize, spectrumHop)
	if errR == nil && errC == nil {
		m.SpectralRMSEDB = spectralRMSEDB(refSpec, candSpec)
		m.RefPitchHz = refSpec.PeakFrequency()
		m.CandPitchHz = candSpec.PeakFrequency()
		if m.RefPitchHz > 0 && m.CandPitchHz > 0 {
			m.PitchErrorCents = 1200 * math.Log2(m.CandPitchHz/m.RefPitchHz)
		}
	}

	hopSec := float64(envelopeHop) / float64(sampleRate)
	m.RefDecayDBPerS = decaySlopeDBPerS(refEnv, hopSec)
	m.CandDecayDBPerS = decaySlopeDBPerS(candEnv, hopSec)
	if isFinite(m.RefDecayDBPerS) && isFinite(m.CandDecayDBPerS) {
		m.DecayDiffDBPerS = math.Abs(m.RefDecayDBPerS - m.CandDecayDBPerS)
	}
	// Unfittable slopes report 0 so Metrics stays JSON encodable.
	if !isFinite(m.RefDecayDBPerS) {
		m.RefDecayDBPerS = 0
	}
	if !isFinite(m.CandDecayDBPerS) {
		m.CandDecayDBPerS = 0
	}

	m.TimeNorm = clamp01(m.TimeRMSE / 0.25)
	m.EnvelopeNorm = clamp01(m.EnvelopeRMSEDB / 30.0)
	m.SpectralNorm = clamp01(m.SpectralRMSEDB / 30.0)
	m.DecayNorm = clamp01(m.DecayDiffDBPerS / 40.0)
	m.PitchNorm = clamp01(math.Abs(m.PitchErrorCents) / 100.0)

	parts := []struct {
		name    string
		contrib float64
	}{
		{"time", m.TimeNorm * WeightTime},
		{"envelope", m.EnvelopeNorm * WeightEnvelope},
		{"spectral", m.SpectralNorm * WeightSpectral},
		{"decay", m.DecayNorm * WeightDecay},
		{"pitch", m.PitchNorm * WeightPitch},
	}
	var total, best float64
	for _, p := range parts {
		total += p.contrib
		if p.contrib > best {
			best = p.contrib
			m.Dominant = p.name
		}
	}
	m.Score = clamp01(total)
	m.Similarity = clamp01(math.Exp(-4.0 * m.Score))
	return m
}

// estimateLag returns the lag in [-maxLag, maxLag] maximising
// sum(ref[i+lag] * cand[i]). The correlation is computed as an FFT
// convolution against the reversed candidate.
func estimateLag(ref, cand []float64, maxLag int) int {
	if len(ref) == 0 || len(cand) == 0 || maxLag < 1 {
		return 0
	}
	a := make([]float32, len(ref))
	for i, v := range ref {
		a[i] = float32(v)
	}
	b := make([]float32, len(cand))
	for i, v := range cand {
		b[len(cand)-1-i] = float32(v)
	}
	corr := make([]float32, len(a)+len(b)-1)
	if err := algofft.ConvolveReal(corr, a, b); err != nil {
		return 0
	}
	zero := len(cand) - 1
	bestLag := 0
	best := math.Inf(-1)
	for lag := -maxLag; lag <= maxLag; lag++ {
		k := zero + lag
		if k < 0 || k >= len(corr) {
			continue
		}
		if v := float64(corr[k]); v > best {
			best = v
			bestLag = lag
		}
	}
	return bestLag
}

func alignByLag(ref, cand []float64, lag int) ([]float64, []float64) {
	if lag >= 0 {
		if lag >= len(ref) {
			return nil, nil
		}
		return ref[lag:], cand
	}
	o := -lag
	if o >= len(cand) {
		return nil, nil
	}
	return ref, cand[o:]
}

func rmse(a, b []float64) float64 {
	n := min(len(a), len(b))
	if n == 0 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum / float64(n))
}

func spectralRMSEDB(a, b Spectrum) float64 {
	bins := min(len(a.Magnitudes), len(b.Magnitudes)) - 1
	if bins < 2 {
		return 0
	}
	var sum float64
	for k := 1; k < bins; k++ {
		d := LinearToDB(a.Magnitudes[k]) - LinearToDB(b.Magnitudes[k])
		sum += d * d
	}
	return math.Sqrt(sum / float64(bins-1))
}

// decaySlopeDBPerS fits a line to the envelope from its peak down to 60 dB
// below it. NaN means the envelope is too short to fit.
func decaySlopeDBPerS(env []float64, hopSec float64) float64 {
	if len(env) < 8 || hopSec <= 0 {
		return math.NaN()
	}
	peak := math.Inf(-1)
	peakIdx := 0
	for i, v := range env {
		if db := LinearToDB(v); db > peak {
			peak = db
			peakIdx = i
		}
	}
	start := peakIdx + 1
	if start >= len(env)-4 {
		return math.NaN()
	}
	end := len(env)
	for i := start; i < len(env); i++ {
		if LinearToDB(env[i]) < peak-60.0 {
			end = i
			break
		}
	}
	if end-start < 6 {
		return math.NaN()
	}
	var sx, sy, sxx, sxy float64
	n := float64(end - start)
	for i := start; i < end; i++ {
		x := float64(i-start) * hopSec
		y := LinearToDB(env[i])
		sx += x
		sy += y
		sxx += x * x
		sxy += x * y
	}
	den := n*sxx - sx*sx
	if math.Abs(den) < 1e-12 {
		return math.NaN()
	}
	return (n*sxy - sx*sy) / den
}
