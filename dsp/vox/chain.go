package vox

import (
	"fmt"
	"math"
	"sync/atomic"

	"github.com/ALH477/DeMoD-Vox/dsp/core"
	"github.com/ALH477/DeMoD-Vox/dsp/effects"
	"github.com/ALH477/DeMoD-Vox/dsp/effects/dynamics"
	"github.com/ALH477/DeMoD-Vox/dsp/effects/modulation"
	"github.com/ALH477/DeMoD-Vox/dsp/effects/pitch"
	"github.com/ALH477/DeMoD-Vox/dsp/param"
)

// Chain is one mono instance of the vox effect chain. Parameter writes and
// SetHostSampleRate may come from any goroutine; processing calls must not
// run concurrently with each other.
type Chain struct {
	store   *param.Store
	period  int
	variant pitch.Variant

	shifter pitch.Shifter
	eq      *effects.StaticEQ
	crusher *effects.BitCrusher
	ring    *modulation.RingModulator
	echo    *effects.Echo
	bass    *effects.BassShelf
	comp    *dynamics.Compressor
	out     *OutputStage

	hostRate atomic.Uint64

	snap       param.Snapshot
	applied    param.Snapshot
	configured bool
}

// New builds a chain at the locked sample rate.
func New(opts ...Option) (*Chain, error) {
	cfg := defaultConfig()

	for _, opt := range opts {
		if opt == nil {
			continue
		}

		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	proc := core.ApplyProcessorOptions(cfg.procOpts...)
	sr := proc.SampleRate

	c := &Chain{
		store:   cfg.store,
		period:  proc.BlockSize,
		variant: cfg.variant,
	}

	if c.store == nil {
		c.store = param.NewStore()
	}

	var err error

	if c.shifter, err = pitch.New(cfg.variant, sr); err != nil {
		return nil, fmt.Errorf("vox: %w", err)
	}

	if c.eq, err = effects.NewStaticEQ(sr); err != nil {
		return nil, fmt.Errorf("vox: %w", err)
	}

	if c.crusher, err = effects.NewBitCrusher(sr); err != nil {
		return nil, fmt.Errorf("vox: %w", err)
	}

	if c.ring, err = modulation.NewRingModulator(sr); err != nil {
		return nil, fmt.Errorf("vox: %w", err)
	}

	if c.echo, err = effects.NewEcho(sr); err != nil {
		return nil, fmt.Errorf("vox: %w", err)
	}

	if c.bass, err = effects.NewBassShelf(sr); err != nil {
		return nil, fmt.Errorf("vox: %w", err)
	}

	if c.comp, err = dynamics.NewCompressor(sr); err != nil {
		return nil, fmt.Errorf("vox: %w", err)
	}

	if c.out, err = NewOutputStage(cfg.ditherOpts...); err != nil {
		return nil, err
	}

	c.SetHostSampleRate(cfg.hostRate)
	c.applyParams()

	return c, nil
}

// Params returns the parameter store the chain reads from.
func (c *Chain) Params() *param.Store { return c.store }

// Variant returns the pitch shifter variant.
func (c *Chain) Variant() pitch.Variant { return c.variant }

// SampleRate returns the locked processing rate.
func (c *Chain) SampleRate() float64 { return core.LockedSampleRate }

// Latency returns the fixed processing delay in samples.
func (c *Chain) Latency() int { return c.shifter.Latency() }

// ControlPeriod returns the number of samples between parameter snapshots.
func (c *Chain) ControlPeriod() int { return c.period }

// SetHostSampleRate records the rate the host is running at. Any rate other
// than 96000 mutes the output from the next control period on.
func (c *Chain) SetHostSampleRate(hz float64) {
	c.hostRate.Store(math.Float64bits(hz))
}

// HostSampleRate returns the last rate reported by the host.
func (c *Chain) HostSampleRate() float64 {
	return math.Float64frombits(c.hostRate.Load())
}

// GainReduction returns the compressor's current gain reduction in dB.
func (c *Chain) GainReduction() float64 { return c.comp.GainReduction() }

// ProcessBlock processes len(dst) samples. Missing input (src shorter than
// dst, or nil) is treated as silence so stage state keeps advancing.
// Non-finite input samples are replaced by 0. dst and src may alias.
func (c *Chain) ProcessBlock(dst, src []float64) {
	for start := 0; start < len(dst); start += c.period {
		c.applyParams()

		end := min(start+c.period, len(dst))
		for i := start; i < end; i++ {
			var x float64
			if i < len(src) {
				x = core.Sanitize(src[i])
			}

			dst[i] = c.processSample(x)
		}
	}
}

// ProcessInPlace processes buf in place.
func (c *Chain) ProcessInPlace(buf []float64) {
	c.ProcessBlock(buf, buf)
}

// Reset clears every stage's state. Parameters are left untouched.
func (c *Chain) Reset() {
	c.shifter.Reset()
	c.eq.Reset()
	c.crusher.Reset()
	c.ring.Reset()
	c.echo.Reset()
	c.bass.Reset()
	c.comp.Reset()
	c.configured = false
	c.applyParams()
}

func (c *Chain) processSample(x float64) float64 {
	x = c.shifter.ProcessSample(x)
	x = c.eq.ProcessSample(x)
	x = c.crusher.ProcessSample(x)
	x = c.ring.ProcessSample(x)
	x = c.echo.ProcessSample(x)
	x = c.bass.ProcessSample(x)
	x = c.comp.ProcessSample(x)

	return c.out.ProcessSample(x)
}

// applyParams snapshots the store and reconfigures the stages whose
// controls changed since the last snapshot.
func (c *Chain) applyParams() {
	c.store.Snapshot(&c.snap)
	s := &c.snap

	if c.changed(param.Pitch) {
		c.shifter.SetPitchSemitones(s[param.Pitch])
	}

	if c.changed(param.HPFFreq, param.LPFFreq, param.MidDB, param.MidFreq, param.MidBandwidth) {
		c.eq.Update(effects.EQSettings{
			HighpassHz:     s[param.HPFFreq],
			LowpassHz:      s[param.LPFFreq],
			MidGainDB:      s[param.MidDB],
			MidFreqHz:      s[param.MidFreq],
			MidBandwidthHz: s[param.MidBandwidth],
		})
	}

	if c.changed(param.CrushBits) {
		c.crusher.SetBitDepth(s[param.CrushBits])
	}

	if c.changed(param.CrushDownsample) {
		c.crusher.SetDownsample(int(s[param.CrushDownsample]))
	}

	if c.changed(param.CrushMix) {
		c.crusher.SetMix(s[param.CrushMix])
	}

	if c.changed(param.RingFreq) {
		c.ring.SetCarrierHz(s[param.RingFreq])
	}

	if c.changed(param.RingMix) {
		c.ring.SetMix(s[param.RingMix])
	}

	if c.changed(param.EchoMs) {
		c.echo.SetTime(s[param.EchoMs])
	}

	if c.changed(param.EchoMix) {
		c.echo.SetMix(s[param.EchoMix])
	}

	if c.changed(param.EchoFeedback) {
		c.echo.SetFeedback(s[param.EchoFeedback])
	}

	if c.changed(param.BassDB) {
		c.bass.SetGainDB(s[param.BassDB])
	}

	if c.changed(param.BassFreq) {
		c.bass.SetFrequency(s[param.BassFreq])
	}

	if c.changed(param.CompThreshold) {
		c.comp.SetThreshold(s[param.CompThreshold])
	}

	if c.changed(param.CompRatio) {
		c.comp.SetRatio(s[param.CompRatio])
	}

	if c.changed(param.CompAttack) {
		c.comp.SetAttack(s[param.CompAttack])
	}

	if c.changed(param.CompRelease) {
		c.comp.SetRelease(s[param.CompRelease])
	}

	if c.changed(param.OutDB) {
		c.out.SetGainDB(s[param.OutDB])
	}

	if c.changed(param.OutBits) {
		c.out.SetBitDepth(int(s[param.OutBits]))
	}

	c.out.SetHostSampleRate(c.HostSampleRate())

	c.applied = c.snap
	c.configured = true
}

func (c *Chain) changed(ids ...param.ID) bool {
	if !c.configured {
		return true
	}

	for _, id := range ids {
		if c.snap[id] != c.applied[id] {
			return true
		}
	}

	return false
}
