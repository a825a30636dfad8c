package dither

import (
	"encoding/binary"
	"fmt"
	"math/rand/v2"
	"strings"
)

// DitherType selects the noise added before rounding.
type DitherType int

const (
	// DitherNone rounds without noise.
	DitherNone DitherType = iota
	// DitherTriangular adds TPDF noise spanning one LSB either side.
	DitherTriangular

	ditherTypeCount // sentinel for validation
)

var ditherTypeNames = [ditherTypeCount]string{"None", "Triangular"}

// String returns the name of the dither type.
func (dt DitherType) String() string {
	if dt.Valid() {
		return ditherTypeNames[dt]
	}

	return fmt.Sprintf("DitherType(%d)", dt)
}

// Valid reports whether dt is a known dither type.
func (dt DitherType) Valid() bool {
	return dt >= 0 && dt < ditherTypeCount
}

// ParseDitherType maps a case-insensitive name to a DitherType. "tpdf" is
// accepted for [DitherTriangular].
func ParseDitherType(name string) (DitherType, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "none":
		return DitherNone, nil
	case "triangular", "tpdf":
		return DitherTriangular, nil
	default:
		return 0, fmt.Errorf("dither: unknown dither type: %q", name)
	}
}

// TPDF generates triangular-PDF dither. One stream is a PCG generator, the
// other ChaCha8; each contributes a uniform value in [-LSB/2, LSB/2) and the
// dither is their difference.
type TPDF struct {
	pcg    *rand.Rand
	chacha *rand.Rand
}

// NewTPDF returns a TPDF generator seeded from pcgSeed and chachaSeed. The
// seeds must differ.
func NewTPDF(pcgSeed, chachaSeed uint64) (*TPDF, error) {
	if pcgSeed == chachaSeed {
		return nil, fmt.Errorf("dither: noise seeds must differ: %d", pcgSeed)
	}

	var key [32]byte
	binary.LittleEndian.PutUint64(key[:8], chachaSeed)
	binary.LittleEndian.PutUint64(key[8:16], ^chachaSeed)

	return &TPDF{
		pcg:    rand.New(rand.NewPCG(pcgSeed, pcgSeed^0x9e3779b97f4a7c15)),
		chacha: rand.New(rand.NewChaCha8(key)),
	}, nil
}

// Next returns one dither value scaled to lsb. Its magnitude is below lsb.
func (d *TPDF) Next(lsb float64) float64 {
	a := (d.pcg.Float64() - 0.5) * lsb
	b := (d.chacha.Float64() - 0.5) * lsb

	return a - b
}
