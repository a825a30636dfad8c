package pitch

import (
	"fmt"
	"math"

	"github.com/ALH477/DeMoD-Vox/dsp/core"
)

const (
	// MinSemitones is the deepest supported shift (one octave down).
	MinSemitones = -12.0
	// MaxSemitones is the shallowest supported shift (no transposition).
	MaxSemitones = 0.0
)

// Shifter is the shared API of the interchangeable pitch shifters.
type Shifter interface {
	SampleRate() float64
	// Latency returns the fixed processing delay in samples.
	Latency() int

	PitchRatio() float64
	PitchSemitones() float64
	SetPitchSemitones(semitones float64)

	ProcessSample(input float64) float64
	ProcessInPlace(buf []float64)
	Reset()
}

var (
	_ Shifter = (*GranularShifter)(nil)
	_ Shifter = (*SpectralShifter)(nil)
)

// Variant selects a Shifter implementation.
type Variant int

const (
	// Granular selects GranularShifter.
	Granular Variant = iota
	// Spectral selects SpectralShifter.
	Spectral
)

// String returns the variant name.
func (v Variant) String() string {
	switch v {
	case Granular:
		return "granular"
	case Spectral:
		return "spectral"
	default:
		return fmt.Sprintf("Variant(%d)", int(v))
	}
}

// ParseVariant maps a variant name back to its Variant.
func ParseVariant(name string) (Variant, error) {
	switch name {
	case "granular":
		return Granular, nil
	case "spectral":
		return Spectral, nil
	default:
		return 0, fmt.Errorf("pitch: unknown variant %q", name)
	}
}

// New constructs the shifter selected by v.
func New(v Variant, sampleRate float64) (Shifter, error) {
	switch v {
	case Granular:
		return NewGranularShifter(sampleRate)
	case Spectral:
		return NewSpectralShifter(sampleRate)
	default:
		return nil, fmt.Errorf("pitch: unknown variant %d", int(v))
	}
}

// RatioFromSemitones converts a shift in semitones to a frequency ratio.
// The input is clamped to [MinSemitones, MaxSemitones], so 0 maps to exactly
// 1 and -12 to exactly 0.5.
func RatioFromSemitones(semitones float64) float64 {
	return math.Exp2(clampSemitones(semitones) / 12)
}

func clampSemitones(semitones float64) float64 {
	if math.IsNaN(semitones) {
		return MaxSemitones
	}

	return core.Clamp(semitones, MinSemitones, MaxSemitones)
}

// wrapPhase maps x to [-pi, pi).
func wrapPhase(x float64) float64 {
	x = math.Mod(x+math.Pi, 2*math.Pi)
	if x < 0 {
		x += 2 * math.Pi
	}

	return x - math.Pi
}
