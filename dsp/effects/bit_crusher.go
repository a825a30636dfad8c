package effects

import (
	"fmt"
	"math"

	"github.com/ALH477/DeMoD-Vox/dsp/core"
)

const (
	defaultBitCrusherBitDepth   = 8.0
	defaultBitCrusherDownsample = 2
	defaultBitCrusherMix        = 0.6
	minBitCrusherBitDepth       = 2.0
	maxBitCrusherBitDepth       = 16.0
	maxBitCrusherDownsample     = 8
)

// BitCrusherOption mutates bit crusher construction parameters.
type BitCrusherOption func(*bitCrusherConfig) error

type bitCrusherConfig struct {
	bitDepth   float64
	downsample int
	mix        float64
}

func defaultBitCrusherConfig() bitCrusherConfig {
	return bitCrusherConfig{
		bitDepth:   defaultBitCrusherBitDepth,
		downsample: defaultBitCrusherDownsample,
		mix:        defaultBitCrusherMix,
	}
}

// WithBitCrusherBitDepth sets the target bit depth for quantization.
// Range: [2, 16].
func WithBitCrusherBitDepth(bitDepth float64) BitCrusherOption {
	return func(cfg *bitCrusherConfig) error {
		if bitDepth < minBitCrusherBitDepth || bitDepth > maxBitCrusherBitDepth || !core.IsFinite(bitDepth) {
			return fmt.Errorf("bit crusher bit depth must be in [%g, %g]: %f",
				minBitCrusherBitDepth, maxBitCrusherBitDepth, bitDepth)
		}
		cfg.bitDepth = bitDepth
		return nil
	}
}

// WithBitCrusherDownsample sets the sample-and-hold divisor.
// Range: [1, 8].
func WithBitCrusherDownsample(factor int) BitCrusherOption {
	return func(cfg *bitCrusherConfig) error {
		if factor < 1 || factor > maxBitCrusherDownsample {
			return fmt.Errorf("bit crusher downsample factor must be in [1, %d]: %d",
				maxBitCrusherDownsample, factor)
		}
		cfg.downsample = factor
		return nil
	}
}

// WithBitCrusherMix sets the dry/wet mix in [0, 1].
func WithBitCrusherMix(mix float64) BitCrusherOption {
	return func(cfg *bitCrusherConfig) error {
		if mix < 0 || mix > 1 || !core.IsFinite(mix) {
			return fmt.Errorf("bit crusher mix must be in [0, 1]: %f", mix)
		}
		cfg.mix = mix
		return nil
	}
}

// BitCrusher reduces amplitude resolution and effective sample rate.
//
//   - Quantization snaps each sample to round(x*steps)/steps with
//     steps = 2^(bits-1). Values outside [-1, 1] are quantized, not clipped.
//   - Decimation runs a counter modulo the divisor N. When the counter is 0
//     the quantized input is captured; the captured value is held for the
//     following N-1 samples.
//
// The wet path is blended against the dry input. Mix 0 returns the input
// unchanged and N = 1 disables decimation.
type BitCrusher struct {
	sampleRate float64
	bitDepth   float64
	downsample int
	mix        float64

	steps float64

	holdCounter int
	holdValue   float64
}

// NewBitCrusher creates a bit crusher with the given sample rate and optional
// configuration overrides.
func NewBitCrusher(sampleRate float64, opts ...BitCrusherOption) (*BitCrusher, error) {
	if err := core.ValidateSampleRate("bit crusher", sampleRate); err != nil {
		return nil, err
	}

	cfg := defaultBitCrusherConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	bc := &BitCrusher{
		sampleRate: sampleRate,
		downsample: cfg.downsample,
		mix:        cfg.mix,
	}
	bc.SetBitDepth(cfg.bitDepth)
	return bc, nil
}

// SetBitDepth sets the quantization bit depth, clamped to [2, 16].
func (bc *BitCrusher) SetBitDepth(bitDepth float64) {
	bc.bitDepth = core.Clamp(bitDepth, minBitCrusherBitDepth, maxBitCrusherBitDepth)
	bc.steps = math.Exp2(bc.bitDepth - 1)
}

// SetDownsample sets the decimation divisor, clamped to [1, 8]. The hold
// counter is wrapped into the new range so the next capture is never
// skipped.
func (bc *BitCrusher) SetDownsample(factor int) {
	bc.downsample = core.ClampInt(factor, 1, maxBitCrusherDownsample)
	bc.holdCounter %= bc.downsample
}

// SetMix sets the dry/wet mix, clamped to [0, 1].
func (bc *BitCrusher) SetMix(mix float64) {
	bc.mix = core.Clamp(mix, 0, 1)
}

// Reset clears the sample-and-hold state.
func (bc *BitCrusher) Reset() {
	bc.holdCounter = 0
	bc.holdValue = 0
}

// ProcessSample processes one sample through the bit crusher.
func (bc *BitCrusher) ProcessSample(input float64) float64 {
	if bc.holdCounter == 0 {
		bc.holdValue = bc.quantize(input)
	}
	bc.holdCounter++
	if bc.holdCounter >= bc.downsample {
		bc.holdCounter = 0
	}

	if bc.mix == 0 {
		return input
	}

	return input*(1-bc.mix) + bc.holdValue*bc.mix
}

// ProcessInPlace applies the bit crusher to buf in place.
func (bc *BitCrusher) ProcessInPlace(buf []float64) {
	for i := range buf {
		buf[i] = bc.ProcessSample(buf[i])
	}
}

// SampleRate returns the sample rate in Hz.
func (bc *BitCrusher) SampleRate() float64 { return bc.sampleRate }

// BitDepth returns the quantization bit depth.
func (bc *BitCrusher) BitDepth() float64 { return bc.bitDepth }

// Steps returns the number of quantization steps per unit amplitude.
func (bc *BitCrusher) Steps() float64 { return bc.steps }

// Downsample returns the decimation divisor.
func (bc *BitCrusher) Downsample() int { return bc.downsample }

// Mix returns the dry/wet mix in [0, 1].
func (bc *BitCrusher) Mix() float64 { return bc.mix }

func (bc *BitCrusher) quantize(sample float64) float64 {
	return math.Round(sample*bc.steps) / bc.steps
}
