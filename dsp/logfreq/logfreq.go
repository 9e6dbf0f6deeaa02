// Package logfreq provides log-frequency interpolation and smoothing.
//
// Acoustic correction curves (microphone calibration, target curves)
// and perceptual smoothing both operate on a logarithmic frequency
// axis, where equal distances correspond to equal musical intervals.
// This package is the single log-domain resampling utility shared by
// curve fitting, calibration, and spectrum smoothing.
package logfreq

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Errors returned by logfreq functions.
var (
	ErrNoPoints        = errors.New("logfreq: no control points")
	ErrUnsortedPoints  = errors.New("logfreq: control points must be sorted ascending by frequency")
	ErrInvalidFreq     = errors.New("logfreq: control point frequency must be positive")
	ErrLengthMismatch  = errors.New("logfreq: frequency and value slices must have same length")
	ErrNegativeOctaves = errors.New("logfreq: smoothing width must be >= 0")
)

// Point is a single control point of a correction or target curve:
// a frequency in Hz and a relative level in dB.
type Point struct {
	Freq float64
	DB   float64
}

// ParsePoints reads control points from plain text, one point per
// line as two whitespace-separated numbers: frequency in Hz and level
// in dB. Blank lines, comment lines (# or ;) and unparseable header
// lines are skipped; calibration files exported by measurement
// software routinely carry such preambles.
func ParsePoints(r io.Reader) ([]Point, error) {
	var points []Point

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}

		freq, err1 := strconv.ParseFloat(fields[0], 64)

		db, err2 := strconv.ParseFloat(fields[1], 64)
		if err1 != nil || err2 != nil {
			continue
		}

		points = append(points, Point{Freq: freq, DB: db})
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("logfreq: reading control points: %w", err)
	}

	if len(points) == 0 {
		return nil, ErrNoPoints
	}

	if err := validatePoints(points); err != nil {
		return nil, err
	}

	return points, nil
}

// Resample evaluates the control-point curve at every frequency of
// the target grid using piecewise-linear interpolation in
// log-frequency space. Frequencies below the first or above the last
// control point take the nearest endpoint's value.
func Resample(points []Point, freqHz []float64) ([]float64, error) {
	if len(points) == 0 {
		return nil, ErrNoPoints
	}

	if err := validatePoints(points); err != nil {
		return nil, err
	}

	out := make([]float64, len(freqHz))
	for i, f := range freqHz {
		out[i] = interpolate(points, f)
	}

	return out, nil
}

// Interpolate evaluates the control-point curve at a single frequency.
func Interpolate(points []Point, freqHz float64) (float64, error) {
	if len(points) == 0 {
		return 0, ErrNoPoints
	}

	if err := validatePoints(points); err != nil {
		return 0, err
	}

	return interpolate(points, freqHz), nil
}

func interpolate(points []Point, f float64) float64 {
	if f <= points[0].Freq {
		return points[0].DB
	}

	last := points[len(points)-1]
	if f >= last.Freq {
		return last.DB
	}

	j := sort.Search(len(points), func(k int) bool { return points[k].Freq >= f })
	p0, p1 := points[j-1], points[j]

	t := (math.Log(f) - math.Log(p0.Freq)) / (math.Log(p1.Freq) - math.Log(p0.Freq))

	return p0.DB + t*(p1.DB-p0.DB)
}

func validatePoints(points []Point) error {
	for i, p := range points {
		if p.Freq <= 0 {
			return ErrInvalidFreq
		}

		if i > 0 && points[i].Freq <= points[i-1].Freq {
			return ErrUnsortedPoints
		}
	}

	return nil
}

// SmoothProportional smooths values with a window whose width is
// constant in log-frequency space: each bin at frequency f is
// replaced by a Gaussian-weighted average of the bins within
// [f·2^(-octaves/2), f·2^(octaves/2)]. Low frequencies keep their
// resolution while noisy high-frequency detail is averaged over many
// bins, matching the log-frequency resolution of pitch perception.
//
// An octaves width of 0 returns an unmodified copy.
func SmoothProportional(freqHz, values []float64, octaves float64) ([]float64, error) {
	if len(freqHz) != len(values) {
		return nil, ErrLengthMismatch
	}

	if octaves < 0 {
		return nil, ErrNegativeOctaves
	}

	for i, f := range freqHz {
		if f <= 0 {
			return nil, ErrInvalidFreq
		}

		if i > 0 && freqHz[i] <= freqHz[i-1] {
			return nil, ErrUnsortedPoints
		}
	}

	out := make([]float64, len(values))
	if octaves == 0 {
		copy(out, values)
		return out, nil
	}

	halfBand := math.Exp2(octaves / 2)
	sigma := octaves / 4

	for i, f := range freqHz {
		fLo := f / halfBand
		fHi := f * halfBand

		i0 := sort.Search(len(freqHz), func(k int) bool { return freqHz[k] >= fLo })
		i1 := sort.Search(len(freqHz), func(k int) bool { return freqHz[k] > fHi })

		if i1-i0 < 2 {
			out[i] = values[i]
			continue
		}

		var sum, wsum float64

		logF := math.Log2(f)
		for j := i0; j < i1; j++ {
			d := (math.Log2(freqHz[j]) - logF) / sigma
			w := math.Exp(-0.5 * d * d)
			sum += w * values[j]
			wsum += w
		}

		out[i] = sum / wsum
	}

	return out, nil
}
