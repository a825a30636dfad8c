package modulation

import (
	"fmt"
	"math"

	"github.com/ALH477/DeMoD-Vox/dsp/core"
)

const (
	defaultRingModCarrierHz = 60.0
	defaultRingModMix       = 0.35

	// MinCarrierHz and MaxCarrierHz bound the carrier frequency.
	MinCarrierHz = 1.0
	MaxCarrierHz = 800.0
)

// RingModulatorOption mutates ring modulator construction parameters.
type RingModulatorOption func(*ringModConfig) error

type ringModConfig struct {
	carrierHz float64
	mix       float64
}

func defaultRingModConfig() ringModConfig {
	return ringModConfig{
		carrierHz: defaultRingModCarrierHz,
		mix:       defaultRingModMix,
	}
}

// WithRingModCarrierHz sets the carrier oscillator frequency in [1, 800] Hz.
func WithRingModCarrierHz(carrierHz float64) RingModulatorOption {
	return func(cfg *ringModConfig) error {
		if carrierHz < MinCarrierHz || carrierHz > MaxCarrierHz || !core.IsFinite(carrierHz) {
			return fmt.Errorf("ring modulator carrier frequency must be in [%g, %g]: %f",
				MinCarrierHz, MaxCarrierHz, carrierHz)
		}

		cfg.carrierHz = carrierHz

		return nil
	}
}

// WithRingModMix sets the dry/wet mix in [0, 1], where 0 is fully dry and 1 is fully wet.
func WithRingModMix(mix float64) RingModulatorOption {
	return func(cfg *ringModConfig) error {
		if mix < 0 || mix > 1 || !core.IsFinite(mix) {
			return fmt.Errorf("ring modulator mix must be in [0, 1]: %f", mix)
		}

		cfg.mix = mix

		return nil
	}
}

// RingModulator multiplies the input by a bipolar sine carrier, producing
// the sum and difference frequencies that give the vox its metallic edge.
//
//	wet    = input * sin(2π * phase)
//	output = input * (1 - mix) + wet * mix
//
// The carrier starts at phase 0 when the modulator is created and then runs
// freely: changing the frequency never resets it, only Reset does.
type RingModulator struct {
	sampleRate float64
	carrierHz  float64
	mix        float64

	// phase is in cycles, [0, 1).
	phase    float64
	phaseInc float64
}

// NewRingModulator creates a ring modulator with the given sample rate and
// optional configuration overrides.
func NewRingModulator(sampleRate float64, opts ...RingModulatorOption) (*RingModulator, error) {
	if err := core.ValidateSampleRate("ring modulator", sampleRate); err != nil {
		return nil, err
	}

	cfg := defaultRingModConfig()

	for _, opt := range opts {
		if opt == nil {
			continue
		}

		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	r := &RingModulator{sampleRate: sampleRate, mix: cfg.mix}
	r.SetCarrierHz(cfg.carrierHz)

	return r, nil
}

// SetCarrierHz sets the carrier frequency, clamped to [1, 800] Hz.
func (r *RingModulator) SetCarrierHz(carrierHz float64) {
	r.carrierHz = core.Clamp(carrierHz, MinCarrierHz, MaxCarrierHz)
	r.phaseInc = r.carrierHz / r.sampleRate
}

// SetMix sets the dry/wet mix, clamped to [0, 1].
func (r *RingModulator) SetMix(mix float64) {
	r.mix = core.Clamp(mix, 0, 1)
}

// Reset returns the carrier to phase 0.
func (r *RingModulator) Reset() {
	r.phase = 0
}

// ProcessSample processes one sample through the ring modulator.
func (r *RingModulator) ProcessSample(sample float64) float64 {
	carrier := math.Sin(2 * math.Pi * r.phase)

	r.phase += r.phaseInc
	if r.phase >= 1 {
		r.phase -= 1
	}

	if r.mix == 0 {
		return sample
	}

	return sample*(1-r.mix) + sample*carrier*r.mix
}

// ProcessInPlace applies ring modulation to buf in place.
func (r *RingModulator) ProcessInPlace(buf []float64) {
	for i := range buf {
		buf[i] = r.ProcessSample(buf[i])
	}
}

// SampleRate returns sample rate in Hz.
func (r *RingModulator) SampleRate() float64 { return r.sampleRate }

// CarrierHz returns the carrier oscillator frequency in Hz.
func (r *RingModulator) CarrierHz() float64 { return r.carrierHz }

// Mix returns the dry/wet mix in [0, 1].
func (r *RingModulator) Mix() float64 { return r.mix }

// Phase returns the carrier phase in cycles, [0, 1).
func (r *RingModulator) Phase() float64 { return r.phase }
