package wavio

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestRoundTrip(t *testing.T) {
	samples := make([]float64, 4000)
	for i := range samples {
		samples[i] = 0.8 * math.Sin(2*math.Pi*440*float64(i)/8000)
	}

	path := filepath.Join(t.TempDir(), "sweep.wav")

	if err := WriteFile(path, samples, 8000, 16); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	got, rate, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}

	if rate != 8000 {
		t.Fatalf("sample rate = %v, want 8000", rate)
	}

	if len(got) != len(samples) {
		t.Fatalf("length = %d, want %d", len(got), len(samples))
	}

	// 16-bit quantization step is about 3e-5.
	for i := range got {
		if math.Abs(got[i]-samples[i]) > 1e-4 {
			t.Fatalf("sample %d = %v, want %v", i, got[i], samples[i])
		}
	}
}

func TestWriteClipsOutOfRange(t *testing.T) {
	samples := []float64{0, 2, -2, 0.5}
	path := filepath.Join(t.TempDir(), "clip.wav")

	if err := WriteFile(path, samples, 8000, 16); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	got, _, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}

	if got[1] > 1 || got[2] < -1 {
		t.Fatalf("out-of-range samples not clipped: %v", got)
	}

	if math.Abs(got[1]-1) > 1e-3 || math.Abs(got[2]+1) > 1e-3 {
		t.Fatalf("clipped samples = %v, %v, want close to +-1", got[1], got[2])
	}
}

func TestReadRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "noise.bin")
	if err := os.WriteFile(path, []byte("definitely not a RIFF file"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, _, err := ReadFile(path); !errors.Is(err, ErrNotWAV) {
		t.Fatalf("err = %v, want ErrNotWAV", err)
	}
}

func TestReadMissingFile(t *testing.T) {
	if _, _, err := ReadFile(filepath.Join(t.TempDir(), "absent.wav")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestDefaultBitDepth(t *testing.T) {
	samples := []float64{0, 0.25, -0.25, 0.5}
	path := filepath.Join(t.TempDir(), "default.wav")

	if err := WriteFile(path, samples, 48000, 0); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	got, rate, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}

	if rate != 48000 {
		t.Fatalf("sample rate = %v, want 48000", rate)
	}

	// 24-bit quantization: much tighter than 16-bit.
	for i := range got {
		if math.Abs(got[i]-samples[i]) > 1e-6 {
			t.Fatalf("sample %d = %v, want %v", i, got[i], samples[i])
		}
	}
}
