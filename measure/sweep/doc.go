// Package sweep generates the exponential sine-sweep test stimulus
// for acoustic frequency response measurement.
//
// A logarithmic sweep is the preferred excitation signal for room
// and playback-chain measurement:
//
//   - Each octave takes equal time, giving uniform SNR across frequency
//   - All frequencies are excited in sequence with a known phase track
//   - Edge fades avoid spectral leakage from start/stop clicks
//
// # Usage
//
// Generate a sweep, play it through the system under test, and feed
// the recording to a response.Estimator:
//
//	s := sweep.New(20, 20000, 1, 48000)
//	stimulus, _ := s.Generate()
//	// ... play stimulus, record the response ...
package sweep
