// Package dynamics provides the vox chain's downward compressor.
//
// The compressor computes gain in the log2 domain with a quadratic soft knee
// that begins at the threshold and reaches the full ratio a knee-width above
// it. There is no makeup gain; level compensation belongs to the output
// stage.
//
// Building with the fastmath tag swaps the log2/exp2 kernels for the
// approximations in github.com/meko-christian/algo-approx.
package dynamics
