// Package correction turns a measured frequency response into a
// correction filter.
//
// Synthesize derives per-bin attenuation that flattens the response
// toward a target curve: the correction is pinned so its loudest bin
// sits at 0 dB and everything else is cut, never boosted, with the
// total depth clamped to a configurable range. Build then renders the
// factor as an odd-length, symmetric (phase-neutral) impulse response
// suitable for convolution.
package correction
