// Package window provides tapering windows for impulse response
// truncation and sweep edge fading.
package window

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-vecmath"
)

// Type identifies a window function.
type Type int

const (
	TypeRectangular Type = iota
	TypeHann
	TypeKaiser
	TypeTukey
	TypeGauss
)

// Generate returns symmetric window coefficients of the given length.
//
// The alpha parameter shapes the parametric windows: Kaiser beta,
// Tukey taper fraction, or Gauss width. Fixed windows ignore it.
func Generate(t Type, length int, alpha float64) []float64 {
	if length <= 0 {
		return nil
	}

	out := make([]float64, length)
	for i := range out {
		x := samplePosition(i, length)
		out[i] = evalWindow(t, x, alpha)
	}

	return out
}

// Hann returns Hann window coefficients.
func Hann(size int) ([]float64, error) {
	return Generate(TypeHann, size, 0), validateLength(size)
}

// Kaiser returns Kaiser window coefficients with shape parameter beta.
func Kaiser(size int, beta float64) ([]float64, error) {
	if size <= 0 || beta < 0 {
		return nil, validateKaiser(size, beta)
	}

	return Generate(TypeKaiser, size, beta), nil
}

// Tukey returns Tukey window coefficients with taper fraction alpha.
func Tukey(size int, alpha float64) ([]float64, error) {
	if size <= 0 || alpha < 0 || alpha > 1 {
		return nil, validateTukey(size, alpha)
	}

	return Generate(TypeTukey, size, alpha), nil
}

// Gaussian returns Gaussian window coefficients with width parameter alpha.
func Gaussian(size int, alpha float64) ([]float64, error) {
	if size <= 0 || alpha <= 0 {
		return nil, validateGauss(size, alpha)
	}

	return Generate(TypeGauss, size, alpha), nil
}

// Apply multiplies samples in-place with coefficients.
func Apply(samples, coeffs []float64) error {
	if len(samples) != len(coeffs) {
		return fmt.Errorf("window: samples and coefficients must have same length: %d != %d", len(samples), len(coeffs))
	}

	vecmath.MulBlockInPlace(samples, coeffs)

	return nil
}

// FadeEdges applies raised-cosine fade-in and fade-out ramps of the
// given length to the edges of buf, in place. The ramp length is
// clipped to half the buffer.
func FadeEdges(buf []float64, fade int) {
	if fade <= 0 || len(buf) == 0 {
		return
	}

	if fade > len(buf)/2 {
		fade = len(buf) / 2
	}

	n := len(buf)
	for i := 0; i < fade; i++ {
		g := 0.5 * (1 - math.Cos(math.Pi*float64(i)/float64(fade)))
		buf[i] *= g
		buf[n-1-i] *= g
	}
}

func evalWindow(t Type, x, alpha float64) float64 {
	if x < 0 {
		x = 0
	}

	if x > 1 {
		x = 1
	}

	switch t {
	case TypeRectangular:
		return 1
	case TypeHann:
		return 0.5 * (1 - math.Cos(2*math.Pi*x))
	case TypeKaiser:
		return kaiserAt(x, alpha)
	case TypeTukey:
		return tukeyAt(x, alpha)
	case TypeGauss:
		v := (2*x - 1) * alpha
		return math.Exp(-math.Ln2 * v * v)
	default:
		return 1
	}
}

func samplePosition(n, size int) float64 {
	if size <= 1 {
		return 0
	}

	return float64(n) / float64(size-1)
}

func kaiserAt(x, beta float64) float64 {
	if beta <= 0 {
		return 1
	}

	r := 2*x - 1
	term := math.Sqrt(math.Max(0, 1-r*r))

	return besselI0(beta*term) / besselI0(beta)
}

func tukeyAt(x, alpha float64) float64 {
	if alpha <= 0 {
		return 1
	}

	if alpha >= 1 {
		return 0.5 * (1 - math.Cos(2*math.Pi*x))
	}

	a := alpha / 2
	switch {
	case x < a:
		return 0.5 * (1 + math.Cos(math.Pi*(2*x/alpha-1)))
	case x <= 1-a:
		return 1
	default:
		return 0.5 * (1 + math.Cos(math.Pi*(2*x/alpha-2/alpha+1)))
	}
}

// besselI0 returns a numerical approximation of the modified Bessel function I0.
func besselI0(x float64) float64 {
	ax := math.Abs(x)
	if ax < 3.75 {
		y := x / 3.75
		y *= y

		return 1.0 + y*(3.5156229+y*(3.0899424+y*(1.2067492+y*(0.2659732+y*(0.0360768+y*0.0045813)))))
	}

	y := 3.75 / ax

	return (math.Exp(ax) / math.Sqrt(ax)) *
		(0.39894228 + y*(0.01328592+y*(0.00225319+y*(-0.00157565+y*(0.00916281+y*(-0.02057706+y*(0.02635537+y*(-0.01647633+y*0.00392377))))))))
}

func validateLength(size int) error {
	if size <= 0 {
		return fmt.Errorf("window: size must be > 0: %d", size)
	}

	return nil
}

func validateKaiser(size int, beta float64) error {
	if size <= 0 {
		return validateLength(size)
	}

	if beta < 0 {
		return fmt.Errorf("window: kaiser beta must be >= 0: %f", beta)
	}

	return nil
}

func validateTukey(size int, alpha float64) error {
	if size <= 0 {
		return validateLength(size)
	}

	if alpha < 0 || alpha > 1 {
		return fmt.Errorf("window: tukey alpha must be in [0,1]: %f", alpha)
	}

	return nil
}

func validateGauss(size int, alpha float64) error {
	if size <= 0 {
		return validateLength(size)
	}

	if alpha <= 0 {
		return fmt.Errorf("window: gauss alpha must be > 0: %f", alpha)
	}

	return nil
}
