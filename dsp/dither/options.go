package dither

import (
	"fmt"
	"math/rand/v2"
)

const (
	defaultBitDepth   = 16
	defaultDitherType = DitherTriangular
)

// BitDepths lists the supported output word lengths.
var BitDepths = [...]int{16, 20, 24}

type config struct {
	bitDepth   int
	ditherType DitherType
	pcgSeed    uint64
	chachaSeed uint64
	seeded     bool
}

func defaultConfig() config {
	return config{
		bitDepth:   defaultBitDepth,
		ditherType: defaultDitherType,
	}
}

// Option configures a [Quantizer].
type Option func(*config) error

// WithBitDepth sets the word length. The value is snapped to the nearest of
// 16, 20 and 24.
func WithBitDepth(bits int) Option {
	return func(cfg *config) error {
		cfg.bitDepth = SnapBitDepth(float64(bits))
		return nil
	}
}

// WithDitherType sets the dither noise (default [DitherTriangular]).
func WithDitherType(dt DitherType) Option {
	return func(cfg *config) error {
		if !dt.Valid() {
			return fmt.Errorf("dither: invalid dither type: %d", dt)
		}

		cfg.ditherType = dt

		return nil
	}
}

// WithSeeds seeds the two noise streams for reproducible output. The seeds
// must differ.
func WithSeeds(pcgSeed, chachaSeed uint64) Option {
	return func(cfg *config) error {
		if pcgSeed == chachaSeed {
			return fmt.Errorf("dither: noise seeds must differ: %d", pcgSeed)
		}

		cfg.pcgSeed = pcgSeed
		cfg.chachaSeed = chachaSeed
		cfg.seeded = true

		return nil
	}
}

func (cfg *config) seeds() (uint64, uint64) {
	if cfg.seeded {
		return cfg.pcgSeed, cfg.chachaSeed
	}

	a := rand.Uint64()

	b := rand.Uint64()
	for b == a {
		b = rand.Uint64()
	}

	return a, b
}
