package vox

import (
	"fmt"

	"github.com/ALH477/DeMoD-Vox/dsp/core"
	"github.com/ALH477/DeMoD-Vox/dsp/dither"
	"github.com/ALH477/DeMoD-Vox/dsp/effects/pitch"
	"github.com/ALH477/DeMoD-Vox/dsp/param"
)

type config struct {
	procOpts   []core.ProcessorOption
	variant    pitch.Variant
	hostRate   float64
	store      *param.Store
	ditherOpts []dither.Option
}

func defaultConfig() config {
	return config{
		variant:  pitch.Granular,
		hostRate: core.LockedSampleRate,
	}
}

// Option configures a [Chain].
type Option func(*config) error

// WithShifter selects the pitch shifter variant (default granular).
func WithShifter(v pitch.Variant) Option {
	return func(cfg *config) error {
		if v != pitch.Granular && v != pitch.Spectral {
			return fmt.Errorf("vox: unknown pitch shifter variant: %d", int(v))
		}

		cfg.variant = v

		return nil
	}
}

// WithHostSampleRate sets the host rate the chain starts with (default
// 96000). Any other rate mutes the output.
func WithHostSampleRate(hz float64) Option {
	return func(cfg *config) error {
		cfg.hostRate = hz
		return nil
	}
}

// WithDitherSeeds seeds the two dither streams for reproducible output.
func WithDitherSeeds(a, b uint64) Option {
	return func(cfg *config) error {
		if a == b {
			return fmt.Errorf("vox: dither seeds must differ: %d", a)
		}

		cfg.ditherOpts = append(cfg.ditherOpts, dither.WithSeeds(a, b))

		return nil
	}
}

// WithDither selects the noise added before word-length reduction (default
// [dither.DitherTriangular]).
func WithDither(dt dither.DitherType) Option {
	return func(cfg *config) error {
		if !dt.Valid() {
			return fmt.Errorf("vox: unknown dither type: %d", int(dt))
		}

		cfg.ditherOpts = append(cfg.ditherOpts, dither.WithDitherType(dt))

		return nil
	}
}

// WithStore shares an existing parameter store instead of creating one.
func WithStore(s *param.Store) Option {
	return func(cfg *config) error {
		if s == nil {
			return fmt.Errorf("vox: parameter store must not be nil")
		}

		cfg.store = s

		return nil
	}
}

// WithControlPeriod sets how many samples run between parameter snapshots
// (default 128).
func WithControlPeriod(samples int) Option {
	return func(cfg *config) error {
		if samples <= 0 {
			return fmt.Errorf("vox: control period must be > 0: %d", samples)
		}

		cfg.procOpts = append(cfg.procOpts, core.WithBlockSize(samples))

		return nil
	}
}
