// Package effects provides the per-sample stages of the vox chain that do
// not need a package of their own.
//
// Subpackages:
//   - github.com/ALH477/DeMoD-Vox/dsp/effects/dynamics
//   - github.com/ALH477/DeMoD-Vox/dsp/effects/modulation
//   - github.com/ALH477/DeMoD-Vox/dsp/effects/pitch
//
// Effects in this package:
//   - StaticEQ: high-pass, low-pass and peaking filter in series.
//   - BitCrusher: amplitude quantization and sample-and-hold decimation.
//   - Echo: single-tap feedback delay with a 1 ms floor.
//   - BassShelf: one-pole low shelf that is an exact identity at 0 dB.
//
// Every stage owns its state, runs without allocation once constructed and
// clamps control values instead of rejecting them.
package effects
