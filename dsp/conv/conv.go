// Package conv convolves audio with correction kernels.
//
// The kernels produced by this module run to tens of thousands of
// taps, so convolution happens in the frequency domain using the
// overlap-add method: the signal is cut into blocks, each block is
// multiplied with the kernel spectrum, and the overlapping tails are
// summed back together.
package conv

import (
	"errors"
	"fmt"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-roomeq/dsp/core"
)

// Errors returned by convolver construction.
var (
	ErrEmptyKernel = errors.New("conv: kernel must not be empty")
	ErrEmptySignal = errors.New("conv: signal must not be empty")
)

// OverlapAdd convolves arbitrarily long signals with a fixed kernel.
// The zero value is not usable; construct with NewOverlapAdd.
type OverlapAdd struct {
	kernelFFT []complex128
	kernelLen int
	blockSize int
	fftSize   int
	plan      *algofft.Plan[complex128]

	block   []complex128
	spec    []complex128
	scratch []float64
}

// NewOverlapAdd prepares a convolver for the given kernel. A
// blockSize of 0 picks one sized to the kernel.
func NewOverlapAdd(kernel []float64, blockSize int) (*OverlapAdd, error) {
	if len(kernel) == 0 {
		return nil, ErrEmptyKernel
	}

	if blockSize <= 0 {
		blockSize = core.NextPowerOf2(len(kernel))
		if blockSize < 256 {
			blockSize = 256
		}
	}

	// Linear convolution of a block needs blockSize+kernelLen-1 bins.
	fftSize := core.NextPowerOf2(blockSize + len(kernel) - 1)

	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return nil, fmt.Errorf("conv: failed to create FFT plan: %w", err)
	}

	oa := &OverlapAdd{
		kernelFFT: make([]complex128, fftSize),
		kernelLen: len(kernel),
		blockSize: blockSize,
		fftSize:   fftSize,
		plan:      plan,
		block:     make([]complex128, fftSize),
		spec:      make([]complex128, fftSize),
		scratch:   make([]float64, fftSize),
	}

	padded := make([]complex128, fftSize)
	for i, v := range kernel {
		padded[i] = complex(v, 0)
	}

	if err := plan.Forward(oa.kernelFFT, padded); err != nil {
		return nil, fmt.Errorf("conv: kernel FFT failed: %w", err)
	}

	return oa, nil
}

// KernelLen returns the length of the kernel the convolver was built
// for.
func (oa *OverlapAdd) KernelLen() int {
	return oa.kernelLen
}

// Apply convolves the signal with the kernel and returns the full
// result of length len(signal)+kernelLen-1.
func (oa *OverlapAdd) Apply(signal []float64) ([]float64, error) {
	if len(signal) == 0 {
		return nil, ErrEmptySignal
	}

	out := make([]float64, len(signal)+oa.kernelLen-1)

	for start := 0; start < len(signal); start += oa.blockSize {
		end := start + oa.blockSize
		if end > len(signal) {
			end = len(signal)
		}

		for i := range oa.block {
			oa.block[i] = 0
		}

		for i, v := range signal[start:end] {
			oa.block[i] = complex(v, 0)
		}

		if err := oa.plan.Forward(oa.spec, oa.block); err != nil {
			return nil, fmt.Errorf("conv: forward FFT failed: %w", err)
		}

		for i := range oa.spec {
			oa.spec[i] *= oa.kernelFFT[i]
		}

		if err := oa.plan.Inverse(oa.block, oa.spec); err != nil {
			return nil, fmt.Errorf("conv: inverse FFT failed: %w", err)
		}

		// Overlap-add the block's tail into the output.
		n := end - start + oa.kernelLen - 1
		for i := 0; i < n; i++ {
			oa.scratch[i] = real(oa.block[i])
		}

		vecmath.AddBlockInPlace(out[start:start+n], oa.scratch[:n])
	}

	return out, nil
}

// Convolve is a one-shot convenience around OverlapAdd.
func Convolve(signal, kernel []float64) ([]float64, error) {
	oa, err := NewOverlapAdd(kernel, 0)
	if err != nil {
		return nil, err
	}

	return oa.Apply(signal)
}
