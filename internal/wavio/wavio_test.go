package wavio

import (
	"encoding/binary"
	"math"
	"path/filepath"
	"testing"
)

func TestPCM16ClipsAndScales(t *testing.T) {
	got := PCM16([]float64{0, 1, -1, 2, -3, 0.5})
	want := []int16{0, 32767, -32767, 32767, -32767, 16383}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("sample %d mismatch: got=%d want=%d", i, got[i], want[i])
		}
	}
}

func TestPCM16LELayout(t *testing.T) {
	b := PCM16LE([]float64{1, -1})
	if len(b) != 4 {
		t.Fatalf("length mismatch: %d", len(b))
	}
	if v := int16(binary.LittleEndian.Uint16(b[0:])); v != 32767 {
		t.Fatalf("first sample mismatch: %d", v)
	}
	if v := int16(binary.LittleEndian.Uint16(b[2:])); v != -32767 {
		t.Fatalf("second sample mismatch: %d", v)
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	const sr = 8000
	in := make([]float64, 800)
	for i := range in {
		in[i] = 0.5 * math.Sin(2*math.Pi*440*float64(i)/sr)
	}
	path := filepath.Join(t.TempDir(), "out", "tone.wav")
	if err := WriteMono(path, in, sr); err != nil {
		t.Fatalf("WriteMono: %v", err)
	}
	got, rate, err := ReadMono(path)
	if err != nil {
		t.Fatalf("ReadMono: %v", err)
	}
	if rate != sr {
		t.Fatalf("rate mismatch: got=%d want=%d", rate, sr)
	}
	if len(got) != len(in) {
		t.Fatalf("length mismatch: got=%d want=%d", len(got), len(in))
	}
	for i := range in {
		if math.Abs(got[i]-in[i]) > 1e-3 {
			t.Fatalf("sample %d mismatch: got=%f want=%f", i, got[i], in[i])
		}
	}
}

func TestWriteMonoRejectsBadRate(t *testing.T) {
	if err := WriteMono(filepath.Join(t.TempDir(), "x.wav"), []float64{0}, 0); err == nil {
		t.Fatalf("expected error")
	}
}

func TestResampleLength(t *testing.T) {
	in := make([]float64, 22000)
	same, err := Resample(in, 22000, 22000)
	if err != nil || len(same) != len(in) {
		t.Fatalf("identity resample failed: len=%d err=%v", len(same), err)
	}
	out, err := Resample(in, 22000, 44000)
	if err != nil {
		t.Fatalf("Resample: %v", err)
	}
	if math.Abs(float64(len(out))-44000) > 4400 {
		t.Fatalf("resampled length mismatch: %d", len(out))
	}
	if _, err := Resample(in, 0, 44000); err == nil {
		t.Fatalf("expected error for zero rate")
	}
}

func TestParseWorkers(t *testing.T) {
	if n, err := ParseWorkers("auto"); err != nil || n != 0 {
		t.Fatalf("auto: n=%d err=%v", n, err)
	}
	if n, err := ParseWorkers(" 4 "); err != nil || n != 4 {
		t.Fatalf("4: n=%d err=%v", n, err)
	}
	for _, raw := range []string{"", "0", "-2", "many"} {
		if _, err := ParseWorkers(raw); err == nil {
			t.Fatalf("%q: expected error", raw)
		}
	}
}
