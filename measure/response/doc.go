// Package response extracts complex frequency responses from sweep
// recordings by regularized deconvolution, and provides the
// calibration and proportional-smoothing transforms applied to them.
//
// Every bin of a measured Spectrum carries an explicit reliability
// tag (valid, unmeasured, excluded) so that band edges and degenerate
// divisor bins never leak garbage into averaging or correction
// synthesis. Spectra are immutable; all transforms return new values.
package response
