package effects

import (
	"fmt"
	"math"

	"github.com/ALH477/DeMoD-Vox/dsp/core"
)

const (
	defaultBassGainDB = 0.0
	defaultBassFreqHz = 120.0
	minBassGainDB     = 0.0
	maxBassGainDB     = 18.0
	minBassFreqHz     = 40.0
	maxBassFreqHz     = 400.0
)

// BassShelfOption mutates bass shelf construction parameters.
type BassShelfOption func(*bassShelfConfig) error

type bassShelfConfig struct {
	gainDB float64
	freqHz float64
}

// WithBassGain sets the shelf boost in dB, range [0, 18].
func WithBassGain(dB float64) BassShelfOption {
	return func(cfg *bassShelfConfig) error {
		if dB < minBassGainDB || dB > maxBassGainDB || !core.IsFinite(dB) {
			return fmt.Errorf("bass shelf gain must be in [%g, %g] dB: %f", minBassGainDB, maxBassGainDB, dB)
		}
		cfg.gainDB = dB
		return nil
	}
}

// WithBassFrequency sets the shelf transition frequency, range [40, 400] Hz.
func WithBassFrequency(hz float64) BassShelfOption {
	return func(cfg *bassShelfConfig) error {
		if hz < minBassFreqHz || hz > maxBassFreqHz || !core.IsFinite(hz) {
			return fmt.Errorf("bass shelf frequency must be in [%g, %g] Hz: %f", minBassFreqHz, maxBassFreqHz, hz)
		}
		cfg.freqHz = hz
		return nil
	}
}

// BassShelf is a first-order low shelf built from a one-pole lowpass L:
//
//	y = x + L(x)*(g - 1),  g = 10^(dB/20)
//
// The response is g at DC and unity well above the transition frequency.
// At 0 dB the output is the input, bit for bit. The lowpass keeps running
// at 0 dB so raising the gain later does not step.
type BassShelf struct {
	sampleRate float64
	gainDB     float64
	freqHz     float64

	gain  float64
	alpha float64
	state float64
}

// NewBassShelf creates a low shelf with the given sample rate and optional
// configuration overrides.
func NewBassShelf(sampleRate float64, opts ...BassShelfOption) (*BassShelf, error) {
	if err := core.ValidateSampleRate("bass shelf", sampleRate); err != nil {
		return nil, err
	}

	cfg := bassShelfConfig{gainDB: defaultBassGainDB, freqHz: defaultBassFreqHz}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	s := &BassShelf{sampleRate: sampleRate}
	s.SetGainDB(cfg.gainDB)
	s.SetFrequency(cfg.freqHz)
	return s, nil
}

// SetGainDB sets the boost in dB, clamped to [0, 18].
func (s *BassShelf) SetGainDB(dB float64) {
	s.gainDB = core.Clamp(dB, minBassGainDB, maxBassGainDB)
	s.gain = core.DBToLinear(s.gainDB)
}

// SetFrequency sets the transition frequency, clamped to [40, 400] Hz.
func (s *BassShelf) SetFrequency(hz float64) {
	s.freqHz = core.Clamp(hz, minBassFreqHz, maxBassFreqHz)
	s.alpha = 1.0 - math.Exp(-2.0*math.Pi*s.freqHz/s.sampleRate)
}

// ProcessSample processes one sample.
func (s *BassShelf) ProcessSample(input float64) float64 {
	s.state = core.FlushDenormals(s.state + s.alpha*(input-s.state))

	if s.gain == 1 {
		return input
	}

	return input + s.state*(s.gain-1)
}

// ProcessInPlace applies the shelf to buf in place.
func (s *BassShelf) ProcessInPlace(buf []float64) {
	for i := range buf {
		buf[i] = s.ProcessSample(buf[i])
	}
}

// Reset clears the lowpass state.
func (s *BassShelf) Reset() {
	s.state = 0
}

// GainDB returns the boost in dB.
func (s *BassShelf) GainDB() float64 { return s.gainDB }

// Frequency returns the transition frequency in Hz.
func (s *BassShelf) Frequency() float64 { return s.freqHz }
