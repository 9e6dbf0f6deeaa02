// Package wavio reads and writes mono measurement signals as WAV
// files. Sweeps and correction impulses leave the pipeline this way,
// and microphone recordings enter it.
package wavio

import (
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// Errors returned by WAV decoding.
var (
	ErrNotWAV = errors.New("wavio: not a valid WAV file")
	ErrEmpty  = errors.New("wavio: file contains no samples")
)

// DefaultBitDepth is used by WriteFile when no depth is given.
const DefaultBitDepth = 24

// ReadFile decodes a WAV file into float64 samples in [-1, 1] and
// returns them with the file's sample rate. Multi-channel files are
// mixed down to mono by averaging, which is what a measurement
// pipeline wants from an accidentally stereo recording.
func ReadFile(path string) ([]float64, float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("wavio: %w", err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, 0, ErrNotWAV
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("wavio: failed to read PCM data: %w", err)
	}

	channels := buf.Format.NumChannels
	if channels <= 0 || len(buf.Data) == 0 {
		return nil, 0, ErrEmpty
	}

	scale := 1 / float64(int64(1)<<(buf.SourceBitDepth-1))
	frames := len(buf.Data) / channels
	samples := make([]float64, frames)

	for i := range samples {
		var sum float64
		for c := 0; c < channels; c++ {
			sum += float64(buf.Data[i*channels+c])
		}

		samples[i] = sum / float64(channels) * scale
	}

	return samples, float64(buf.Format.SampleRate), nil
}

// WriteFile encodes mono float64 samples as a PCM WAV file. Samples
// outside [-1, 1] are clipped. A bitDepth of 0 selects
// DefaultBitDepth.
func WriteFile(path string, samples []float64, sampleRate float64, bitDepth int) error {
	if bitDepth == 0 {
		bitDepth = DefaultBitDepth
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("wavio: %w", err)
	}

	enc := wav.NewEncoder(f, int(sampleRate), bitDepth, 1, 1)

	full := float64(int64(1)<<(bitDepth-1)) - 1
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: int(sampleRate)},
		SourceBitDepth: bitDepth,
		Data:           make([]int, len(samples)),
	}

	for i, v := range samples {
		buf.Data[i] = int(math.Round(clip(v) * full))
	}

	if err := enc.Write(buf); err != nil {
		f.Close()
		return fmt.Errorf("wavio: failed to write PCM data: %w", err)
	}

	if err := enc.Close(); err != nil {
		f.Close()
		return fmt.Errorf("wavio: failed to finalize file: %w", err)
	}

	return f.Close()
}

func clip(v float64) float64 {
	if v > 1 {
		return 1
	}

	if v < -1 {
		return -1
	}

	return v
}
