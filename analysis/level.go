// Package analysis measures rendered notes: levels, spectra and the distance
// between a candidate render and a reference recording.
package analysis

import (
	"math"

	"github.com/cwbudde/algo-approx"
)

// SilenceFloorDB is the level reported for digital silence.
const SilenceFloorDB = -240.0

// RMS returns the root mean square of x, or 0 for an empty slice.
func RMS(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	var sum float64
	for _, v := range x {
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(x)))
}

// Peak returns the largest absolute sample value.
func Peak(x []float64) float64 {
	var p float64
	for _, v := range x {
		if a := math.Abs(v); a > p {
			p = a
		}
	}
	return p
}

// LinearToDB converts an amplitude to decibels, flooring at SilenceFloorDB.
func LinearToDB(x float64) float64 {
	if x < 1e-12 {
		return SilenceFloorDB
	}
	return 20.0 * math.Log10(x)
}

// DBFS is the RMS level of x in decibels relative to full scale.
func DBFS(x []float64) float64 {
	return LinearToDB(RMS(x))
}

// DBToLinear converts decibels to an amplitude. Accuracy is that of a fast
// exp approximation, enough for thresholds and gains.
func DBToLinear(db float64) float64 {
	if db <= SilenceFloorDB {
		return 0
	}
	return float64(approx.FastExp(float32(db * math.Ln10 / 20.0)))
}

// TrimTrailingSilence drops the tail of x whose samples stay below
// thresholdDB. The returned slice aliases x.
func TrimTrailingSilence(x []float64, thresholdDB float64) []float64 {
	limit := DBToLinear(thresholdDB)
	end := len(x)
	for end > 0 && math.Abs(x[end-1]) <= limit {
		end--
	}
	return x[:end]
}

// NormalizePeak scales a copy of x so its peak equals target. Silent input
// is returned unchanged.
func NormalizePeak(x []float64, target float64) []float64 {
	out := append([]float64(nil), x...)
	p := Peak(x)
	if p <= 1e-12 {
		return out
	}
	g := target / p
	for i := range out {
		out[i] *= g
	}
	return out
}

func trimLeadingSilence(x []float64, threshold float64) []float64 {
	for i, v := range x {
		if math.Abs(v) > threshold {
			return x[i:]
		}
	}
	return nil
}

func normalizeRMS(x []float64, target float64) []float64 {
	r := RMS(x)
	out := append([]float64(nil), x...)
	if r <= 1e-12 {
		return out
	}
	g := target / r
	for i := range out {
		out[i] *= g
	}
	return out
}

func rmsEnvelope(x []float64, frame, hop int) []float64 {
	if frame <= 0 || hop <= 0 || len(x) < frame {
		return nil
	}
	n := 1 + (len(x)-frame)/hop
	out := make([]float64, n)
	for i := range out {
		start := i * hop
		out[i] = RMS(x[start : start+frame])
	}
	return out
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
