// Command roomeq measures the acoustic frequency response of a
// playback chain and derives a correction filter for it.
//
// Usage:
//
//	roomeq sweep [flags]
//	roomeq analyze [flags] recording.wav [recording2.wav ...]
//	roomeq apply [flags] input.wav output.wav
//
// The sweep command writes a logarithmic sine sweep as a WAV file.
// Play it through the system under test while recording with a
// measurement microphone, then feed the recordings to analyze, which
// estimates the response, prints its statistics, and writes the
// correction impulse response as a WAV file. The apply command
// convolves audio with that impulse response.
//
// Examples:
//
//	roomeq sweep -rate 48000 -f0 20 -f1 20000 -duration 5 -out sweep.wav
//	roomeq analyze -f0 20 -f1 20000 -duration 5 -ir-out correction.wav rec.wav
//	roomeq analyze -calibration mic.txt -target house.txt -smooth 0.17 rec1.wav rec2.wav
//	roomeq apply -ir correction.wav music.wav corrected.wav
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/cwbudde/algo-roomeq/dsp/conv"
	"github.com/cwbudde/algo-roomeq/dsp/core"
	"github.com/cwbudde/algo-roomeq/dsp/logfreq"
	"github.com/cwbudde/algo-roomeq/measure/correction"
	"github.com/cwbudde/algo-roomeq/measure/response"
	"github.com/cwbudde/algo-roomeq/measure/store"
	"github.com/cwbudde/algo-roomeq/measure/sweep"
	"github.com/cwbudde/algo-roomeq/stats/frequency"
	"github.com/cwbudde/algo-roomeq/stats/level"
	"github.com/cwbudde/algo-roomeq/wavio"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error

	switch os.Args[1] {
	case "sweep":
		err = runSweep(os.Args[2:])
	case "analyze":
		err = runAnalyze(os.Args[2:])
	case "apply":
		err = runApply(os.Args[2:])
	case "-h", "-help", "--help", "help":
		usage()
		return
	default:
		fmt.Fprintf(os.Stderr, "error: unknown command %q\n\n", os.Args[1])
		usage()
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage:\n")
	fmt.Fprintf(os.Stderr, "  roomeq sweep [flags]\n")
	fmt.Fprintf(os.Stderr, "  roomeq analyze [flags] recording.wav [recording2.wav ...]\n")
	fmt.Fprintf(os.Stderr, "  roomeq apply [flags] input.wav output.wav\n\n")
	fmt.Fprintf(os.Stderr, "Run 'roomeq <command> -h' for command flags.\n")
}

func runSweep(args []string) error {
	fs := flag.NewFlagSet("sweep", flag.ExitOnError)
	f0 := fs.Float64("f0", 20, "sweep start frequency in Hz")
	f1 := fs.Float64("f1", 20000, "sweep end frequency in Hz")
	duration := fs.Float64("duration", 5, "sweep duration in seconds")
	rate := fs.Float64("rate", 48000, "sample rate in Hz")
	amplitude := fs.Float64("amplitude", 0.5, "peak amplitude, 0..1")
	bits := fs.Int("bits", 24, "output bit depth")
	out := fs.String("out", "sweep.wav", "output WAV file")

	if err := fs.Parse(args); err != nil {
		return err
	}

	sw := sweep.New(*f0, *f1, *duration, *rate)
	sw.Amplitude = *amplitude

	samples, err := sw.Generate()
	if err != nil {
		return err
	}

	if err := wavio.WriteFile(*out, samples, *rate, *bits); err != nil {
		return err
	}

	fmt.Printf("wrote %s: %.0f Hz .. %.0f Hz (%.1f octaves) over %.2f s at %.0f Hz (%d samples)\n",
		*out, *f0, *f1, sw.Octaves(), *duration, *rate, len(samples))

	return nil
}

func runAnalyze(args []string) error {
	fs := flag.NewFlagSet("analyze", flag.ExitOnError)
	f0 := fs.Float64("f0", 20, "sweep start frequency in Hz")
	f1 := fs.Float64("f1", 20000, "sweep end frequency in Hz")
	duration := fs.Float64("duration", 5, "sweep duration in seconds")
	calibFile := fs.String("calibration", "", "microphone calibration curve (text: freq dB per line)")
	targetFile := fs.String("target", "", "target curve (text: freq dB per line)")
	smooth := fs.Float64("smooth", 1.0/6, "smoothing bandwidth in octaves, 0 disables")
	rangeDB := fs.Float64("range", 24, "maximum correction depth in dB")
	irDuration := fs.Float64("ir-duration", 0.1, "correction impulse length in seconds")
	irTaperBeta := fs.Float64("ir-beta", 5, "Kaiser taper beta for the impulse edges")
	irOut := fs.String("ir-out", "correction.wav", "correction impulse output WAV file")
	bits := fs.Int("bits", 24, "output bit depth")

	if err := fs.Parse(args); err != nil {
		return err
	}

	recordings := fs.Args()
	if len(recordings) == 0 {
		return fmt.Errorf("analyze: no recording files given")
	}

	calibration, err := loadCurve(*calibFile)
	if err != nil {
		return err
	}

	target, err := loadCurve(*targetFile)
	if err != nil {
		return err
	}

	measurements := store.New()

	var (
		est        *response.Estimator
		sampleRate float64
	)

	for _, path := range recordings {
		samples, rate, err := wavio.ReadFile(path)
		if err != nil {
			return err
		}

		printLevel(path, level.Calculate(samples))

		if est == nil {
			sampleRate = rate
			sw := sweep.New(*f0, *f1, *duration, rate)

			est, err = response.NewEstimator(sw)
			if err != nil {
				return err
			}
		} else if rate != sampleRate {
			return fmt.Errorf("analyze: %s has sample rate %.0f, earlier recordings use %.0f", path, rate, sampleRate)
		}

		offset, err := est.Align(samples)
		if err != nil {
			return fmt.Errorf("analyze: %s: %w", path, err)
		}

		// Same segment length for every recording, so all spectra
		// land on one frequency grid and can be averaged.
		segment := make([]float64, core.NextPowerOf2(len(est.Reference())*5/4))
		copy(segment, samples[offset:])

		spec, err := est.Estimate(segment)
		if err != nil {
			return fmt.Errorf("analyze: %s: %w", path, err)
		}

		spec, err = response.Calibrate(spec, calibration)
		if err != nil {
			return err
		}

		if err := measurements.Add(filepath.Base(path)+"#"+fmt.Sprint(measurements.Len()), spec); err != nil {
			return err
		}
	}

	spec, err := measurements.Average()
	if err != nil {
		return err
	}

	if *smooth > 0 {
		spec, err = response.Smooth(spec, *smooth)
		if err != nil {
			return err
		}
	}

	printResponse(spec)

	factor, err := correction.Synthesize(spec, correction.Options{RangeDB: *rangeDB, Target: target})
	if err != nil {
		return err
	}

	ir, err := correction.Build(factor, correction.BuildOptions{
		Duration: *irDuration,
		Taper:    correction.KaiserTaper(*irTaperBeta),
	})
	if err != nil {
		return err
	}

	if err := wavio.WriteFile(*irOut, ir.Taps, sampleRate, *bits); err != nil {
		return err
	}

	fmt.Printf("wrote %s: %d taps, %.1f ms latency\n", *irOut, len(ir.Taps), ir.Latency()*1000)

	return nil
}

func runApply(args []string) error {
	fs := flag.NewFlagSet("apply", flag.ExitOnError)
	irFile := fs.String("ir", "correction.wav", "correction impulse WAV file")
	bits := fs.Int("bits", 24, "output bit depth")
	keepLatency := fs.Bool("keep-latency", false, "keep the filter latency instead of trimming it")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if fs.NArg() != 2 {
		return fmt.Errorf("apply: need input and output file")
	}

	input, rate, err := wavio.ReadFile(fs.Arg(0))
	if err != nil {
		return err
	}

	kernel, irRate, err := wavio.ReadFile(*irFile)
	if err != nil {
		return err
	}

	if irRate != rate {
		return fmt.Errorf("apply: impulse sample rate %.0f does not match input %.0f", irRate, rate)
	}

	out, err := conv.Convolve(input, kernel)
	if err != nil {
		return err
	}

	if !*keepLatency {
		// A symmetric kernel delays everything by its center tap;
		// dropping that keeps the output aligned with the input.
		out = out[len(kernel)/2:]
		out = out[:len(input)]
	}

	if s := level.Calculate(out); s.Clipped > 0 {
		fmt.Fprintf(os.Stderr, "warning: output clips (%d samples), consider a deeper -range during analyze\n", s.Clipped)
	}

	if err := wavio.WriteFile(fs.Arg(1), out, rate, *bits); err != nil {
		return err
	}

	fmt.Printf("wrote %s: %d samples at %.0f Hz\n", fs.Arg(1), len(out), rate)

	return nil
}

// loadCurve reads a frequency/dB curve from a text file; an empty
// path yields a nil curve.
func loadCurve(path string) ([]logfreq.Point, error) {
	if path == "" {
		return nil, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	points, err := logfreq.ParsePoints(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return points, nil
}

func printLevel(path string, s level.Stats) {
	fmt.Printf("%s: peak %.1f dBFS, RMS %.1f dBFS, DC %.4f", path, s.PeakDB, s.RMSDB, s.DC)

	if s.Clipped > 0 {
		fmt.Printf(", CLIPPED (%d samples)", s.Clipped)
	}

	fmt.Println()
}

func printResponse(spec *response.Spectrum) {
	s := frequency.Calculate(spec.Frequencies(), spec.MagnitudeDB())

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Bins\tMax [dB]\tat [Hz]\tMin [dB]\tat [Hz]\tAvg [dB]\tRange [dB]\tCentroid [Hz]\tFlatness\n")
	fmt.Fprintf(tw, "----\t--------\t-------\t--------\t-------\t--------\t----------\t-------------\t--------\n")
	fmt.Fprintf(tw, "%d\t%.1f\t%.0f\t%.1f\t%.0f\t%.1f\t%.1f\t%.0f\t%.3f\n",
		s.BinCount,
		s.MaxDB,
		s.MaxFreq,
		s.MinDB,
		s.MinFreq,
		s.AverageDB,
		s.RangeDB,
		s.Centroid,
		s.Flatness,
	)

	if err := tw.Flush(); err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to flush output: %v\n", err)
	}
}
