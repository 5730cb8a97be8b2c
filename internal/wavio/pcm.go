package wavio

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
)

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// PCM16 converts samples to signed 16-bit values, clipping to [-1, 1].
func PCM16(samples []float64) []int16 {
	out := make([]int16, len(samples))
	for i, s := range samples {
		out[i] = int16(Clamp(s, -1, 1) * 32767)
	}
	return out
}

// PCM16LE is PCM16 packed as little-endian bytes, the layout audio devices
// and raw exports expect.
func PCM16LE(samples []float64) []byte {
	out := make([]byte, 2*len(samples))
	for i, v := range PCM16(samples) {
		binary.LittleEndian.PutUint16(out[2*i:], uint16(v))
	}
	return out
}

// ParseWorkers reads a worker count flag. "auto" yields 0, which callers map
// to GOMAXPROCS.
func ParseWorkers(raw string) (int, error) {
	v := strings.ToLower(strings.TrimSpace(raw))
	if v == "" {
		return 0, fmt.Errorf("empty value (use integer >= 1 or 'auto')")
	}
	if v == "auto" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%q (use integer >= 1 or 'auto')", raw)
	}
	if n < 1 {
		return 0, fmt.Errorf("%d (must be >= 1 or 'auto')", n)
	}
	return n, nil
}
