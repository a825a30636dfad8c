package vox

import (
	"fmt"

	"github.com/ALH477/DeMoD-Vox/dsp/core"
	"github.com/ALH477/DeMoD-Vox/dsp/dither"
)

const (
	minOutputGainDB = -12.0
	maxOutputGainDB = 24.0
)

// OutputStage applies, in order: gain, hard clip to [-1, 1], TPDF dither,
// word-length reduction and the sample-rate gate.
type OutputStage struct {
	gainDB float64
	gain   float64
	gate   float64
	quant  *dither.Quantizer
}

// NewOutputStage returns an output stage at 0 dB with an open gate. The
// options configure its quantizer.
func NewOutputStage(opts ...dither.Option) (*OutputStage, error) {
	q, err := dither.NewQuantizer(opts...)
	if err != nil {
		return nil, fmt.Errorf("vox output stage: %w", err)
	}

	return &OutputStage{gain: 1, gate: 1, quant: q}, nil
}

// SetGainDB sets the output gain, clamped to [-12, 24] dB.
func (o *OutputStage) SetGainDB(dB float64) {
	o.gainDB = core.Clamp(dB, minOutputGainDB, maxOutputGainDB)
	o.gain = core.DBToLinear(o.gainDB)
}

// SetBitDepth sets the word length, snapped to 16, 20 or 24.
func (o *OutputStage) SetBitDepth(bits int) {
	o.quant.SetBitDepth(bits)
}

// SetHostSampleRate opens the gate when hz equals the locked rate and closes
// it otherwise.
func (o *OutputStage) SetHostSampleRate(hz float64) {
	if hz == core.LockedSampleRate {
		o.gate = 1
	} else {
		o.gate = 0
	}
}

// ProcessSample runs one sample through the stage.
func (o *OutputStage) ProcessSample(input float64) float64 {
	x := core.Clamp(input*o.gain, -1, 1)
	return o.quant.ProcessSample(x) * o.gate
}

// ProcessInPlace runs buf through the stage.
func (o *OutputStage) ProcessInPlace(buf []float64) {
	for i, x := range buf {
		buf[i] = o.ProcessSample(x)
	}
}

// GainDB returns the output gain in dB.
func (o *OutputStage) GainDB() float64 { return o.gainDB }

// BitDepth returns the output word length.
func (o *OutputStage) BitDepth() int { return o.quant.BitDepth() }

// Open reports whether the sample-rate gate passes audio.
func (o *OutputStage) Open() bool { return o.gate == 1 }
