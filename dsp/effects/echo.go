package effects

import (
	"fmt"

	"github.com/ALH477/DeMoD-Vox/dsp/core"
	"github.com/ALH477/DeMoD-Vox/dsp/delay"
)

const (
	defaultEchoTimeMs   = 10.0
	defaultEchoFeedback = 0.15
	defaultEchoMix      = 0.22

	// MinEchoTimeMs keeps the feedback loop longer than one sample.
	MinEchoTimeMs = 1.0
	// MaxEchoTimeMs is the longest configurable echo time.
	MaxEchoTimeMs = 60.0
	// MaxEchoFeedback bounds the loop gain well below 1.
	MaxEchoFeedback = 0.7

	echoMarginSamples = 4
)

// EchoOption mutates echo construction parameters.
type EchoOption func(*echoConfig) error

type echoConfig struct {
	timeMs   float64
	feedback float64
	mix      float64
}

func defaultEchoConfig() echoConfig {
	return echoConfig{
		timeMs:   defaultEchoTimeMs,
		feedback: defaultEchoFeedback,
		mix:      defaultEchoMix,
	}
}

// WithEchoTime sets the echo time in milliseconds, range [1, 60].
func WithEchoTime(ms float64) EchoOption {
	return func(cfg *echoConfig) error {
		if ms < MinEchoTimeMs || ms > MaxEchoTimeMs || !core.IsFinite(ms) {
			return fmt.Errorf("echo time must be in [%g, %g] ms: %f", MinEchoTimeMs, MaxEchoTimeMs, ms)
		}
		cfg.timeMs = ms
		return nil
	}
}

// WithEchoFeedback sets the loop gain, range [0, 0.7].
func WithEchoFeedback(feedback float64) EchoOption {
	return func(cfg *echoConfig) error {
		if feedback < 0 || feedback > MaxEchoFeedback || !core.IsFinite(feedback) {
			return fmt.Errorf("echo feedback must be in [0, %g]: %f", MaxEchoFeedback, feedback)
		}
		cfg.feedback = feedback
		return nil
	}
}

// WithEchoMix sets the wet level, range [0, 1].
func WithEchoMix(mix float64) EchoOption {
	return func(cfg *echoConfig) error {
		if mix < 0 || mix > 1 || !core.IsFinite(mix) {
			return fmt.Errorf("echo mix must be in [0, 1]: %f", mix)
		}
		cfg.mix = mix
		return nil
	}
}

// Echo is a single-tap feedback delay modelling a small resonant cavity:
//
//	delayed  = line(t - D)
//	line(t)  = dry + delayed*feedback
//	output   = dry + delayed*mix
//
// The line is sized once for MaxEchoTimeMs, so changing the time never
// allocates.
type Echo struct {
	sampleRate   float64
	timeMs       float64
	feedback     float64
	mix          float64
	delaySamples float64

	line *delay.Line
}

// NewEcho creates an echo with the given sample rate and optional
// configuration overrides.
func NewEcho(sampleRate float64, opts ...EchoOption) (*Echo, error) {
	if err := core.ValidateSampleRate("echo", sampleRate); err != nil {
		return nil, err
	}

	cfg := defaultEchoConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	capacity := int(core.MsToSamples(MaxEchoTimeMs, sampleRate)) + echoMarginSamples
	line, err := delay.New(capacity)
	if err != nil {
		return nil, fmt.Errorf("echo: %w", err)
	}

	e := &Echo{sampleRate: sampleRate, line: line}
	e.SetTime(cfg.timeMs)
	e.SetFeedback(cfg.feedback)
	e.SetMix(cfg.mix)
	return e, nil
}

// SetTime sets the echo time in milliseconds, clamped to [1, 60].
func (e *Echo) SetTime(ms float64) {
	e.timeMs = core.Clamp(ms, MinEchoTimeMs, MaxEchoTimeMs)
	e.delaySamples = max(1, core.MsToSamples(e.timeMs, e.sampleRate))
}

// SetFeedback sets the loop gain, clamped to [0, 0.7].
func (e *Echo) SetFeedback(feedback float64) {
	e.feedback = core.Clamp(feedback, 0, MaxEchoFeedback)
}

// SetMix sets the wet level, clamped to [0, 1].
func (e *Echo) SetMix(mix float64) {
	e.mix = core.Clamp(mix, 0, 1)
}

// ProcessSample processes one sample.
func (e *Echo) ProcessSample(input float64) float64 {
	delayed := e.line.ReadFractional(e.delaySamples)
	e.line.Write(core.FlushDenormals(input + delayed*e.feedback))

	return input + delayed*e.mix
}

// ProcessInPlace applies the echo to buf in place.
func (e *Echo) ProcessInPlace(buf []float64) {
	for i := range buf {
		buf[i] = e.ProcessSample(buf[i])
	}
}

// Reset clears the delay line.
func (e *Echo) Reset() {
	e.line.Reset()
}

// SampleRate returns the sample rate in Hz.
func (e *Echo) SampleRate() float64 { return e.sampleRate }

// Time returns the echo time in milliseconds.
func (e *Echo) Time() float64 { return e.timeMs }

// DelaySamples returns the echo time in samples.
func (e *Echo) DelaySamples() float64 { return e.delaySamples }

// Feedback returns the loop gain.
func (e *Echo) Feedback() float64 { return e.feedback }

// Mix returns the wet level.
func (e *Echo) Mix() float64 { return e.mix }
