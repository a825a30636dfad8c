// Package pitch provides streaming, downward-only pitch shifters with a fixed
// processing delay.
//
// Included processors:
//   - GranularShifter: time-domain overlapping grains read back at the pitch
//     ratio and crossfaded.
//   - SpectralShifter: short-time Fourier phase vocoder that scales each bin's
//     instantaneous frequency.
//   - Shifter: shared interface so the two variants are interchangeable.
//
// Neither variant preserves formants. A shift of 0 semitones still runs the
// full grain or frame machinery, so the delay reported by Latency holds for
// every setting.
package pitch
