package effects

import (
	"github.com/ALH477/DeMoD-Vox/dsp/core"
	"github.com/ALH477/DeMoD-Vox/dsp/filter/biquad"
	"github.com/ALH477/DeMoD-Vox/dsp/filter/design"
)

const (
	minHighpassHz = 20.0
	maxHighpassHz = 500.0
	minLowpassHz  = 1000.0
	maxLowpassHz  = 12000.0
	minMidGainDB  = 0.0
	maxMidGainDB  = 18.0
	minMidFreqHz  = 500.0
	maxMidFreqHz  = 5000.0
	minMidBWHz    = 100.0
	maxMidBWHz    = 4000.0
)

const (
	eqSectionHighpass = iota
	eqSectionLowpass
	eqSectionPeak
)

// EQSettings is the full control state of a StaticEQ.
type EQSettings struct {
	HighpassHz     float64
	LowpassHz      float64
	MidGainDB      float64
	MidFreqHz      float64
	MidBandwidthHz float64
}

// DefaultEQSettings returns the stock vox voicing.
func DefaultEQSettings() EQSettings {
	return EQSettings{
		HighpassHz:     100,
		LowpassHz:      4500,
		MidGainDB:      6,
		MidFreqHz:      2000,
		MidBandwidthHz: 800,
	}
}

func (s EQSettings) clamped() EQSettings {
	return EQSettings{
		HighpassHz:     core.Clamp(s.HighpassHz, minHighpassHz, maxHighpassHz),
		LowpassHz:      core.Clamp(s.LowpassHz, minLowpassHz, maxLowpassHz),
		MidGainDB:      core.Clamp(s.MidGainDB, minMidGainDB, maxMidGainDB),
		MidFreqHz:      core.Clamp(s.MidFreqHz, minMidFreqHz, maxMidFreqHz),
		MidBandwidthHz: core.Clamp(s.MidBandwidthHz, minMidBWHz, maxMidBWHz),
	}
}

// StaticEQ cascades a Butterworth-Q high-pass, a Butterworth-Q low-pass and
// a peaking filter. Coefficients are redesigned only for the sections whose
// controls changed, and filter state survives every update.
type StaticEQ struct {
	sampleRate float64
	settings   EQSettings
	chain      *biquad.Chain
}

// NewStaticEQ creates the EQ with DefaultEQSettings.
func NewStaticEQ(sampleRate float64) (*StaticEQ, error) {
	if err := core.ValidateSampleRate("static eq", sampleRate); err != nil {
		return nil, err
	}

	eq := &StaticEQ{
		sampleRate: sampleRate,
		chain:      biquad.NewChain(biquad.Identity(), biquad.Identity(), biquad.Identity()),
	}
	eq.settings = DefaultEQSettings()
	eq.redesign(eqSectionHighpass)
	eq.redesign(eqSectionLowpass)
	eq.redesign(eqSectionPeak)
	return eq, nil
}

// Update applies s after clamping each field to its range. It reports
// whether any coefficient changed.
func (eq *StaticEQ) Update(s EQSettings) bool {
	s = s.clamped()
	old := eq.settings
	eq.settings = s

	changed := false
	if s.HighpassHz != old.HighpassHz {
		eq.redesign(eqSectionHighpass)
		changed = true
	}
	if s.LowpassHz != old.LowpassHz {
		eq.redesign(eqSectionLowpass)
		changed = true
	}
	if s.MidGainDB != old.MidGainDB || s.MidFreqHz != old.MidFreqHz || s.MidBandwidthHz != old.MidBandwidthHz {
		eq.redesign(eqSectionPeak)
		changed = true
	}

	return changed
}

// Settings returns the clamped settings in effect.
func (eq *StaticEQ) Settings() EQSettings { return eq.settings }

// Section returns the coefficients of section i (0 high-pass, 1 low-pass,
// 2 peak).
func (eq *StaticEQ) Section(i int) biquad.Coefficients {
	return eq.chain.Section(i).Coefficients
}

// MagnitudeDB returns the combined response of the three sections.
func (eq *StaticEQ) MagnitudeDB(freqHz float64) float64 {
	return eq.chain.MagnitudeDB(freqHz, eq.sampleRate)
}

// ProcessSample processes one sample.
func (eq *StaticEQ) ProcessSample(input float64) float64 {
	return eq.chain.ProcessSample(input)
}

// ProcessInPlace filters buf in place.
func (eq *StaticEQ) ProcessInPlace(buf []float64) {
	eq.chain.ProcessBlock(buf)
}

// Reset clears all filter state.
func (eq *StaticEQ) Reset() {
	eq.chain.Reset()
}

func (eq *StaticEQ) redesign(section int) {
	s := eq.settings
	switch section {
	case eqSectionHighpass:
		eq.chain.SetSection(section, design.Highpass(s.HighpassHz, design.ButterworthQ, eq.sampleRate))
	case eqSectionLowpass:
		eq.chain.SetSection(section, design.Lowpass(s.LowpassHz, design.ButterworthQ, eq.sampleRate))
	case eqSectionPeak:
		eq.chain.SetSection(section, design.PeakBandwidth(s.MidFreqHz, s.MidGainDB, s.MidBandwidthHz, eq.sampleRate))
	}
}
