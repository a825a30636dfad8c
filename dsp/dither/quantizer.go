package dither

import "math"

// SnapBitDepth returns the supported word length nearest to bits. Ties and
// NaN resolve to the shorter word.
func SnapBitDepth(bits float64) int {
	best := BitDepths[0]
	if math.IsNaN(bits) || bits <= float64(best) {
		return best
	}

	if last := BitDepths[len(BitDepths)-1]; bits >= float64(last) {
		return last
	}

	bestDist := math.Abs(bits - float64(best))

	for _, b := range BitDepths[1:] {
		if d := math.Abs(bits - float64(b)); d < bestDist {
			best, bestDist = b, d
		}
	}

	return best
}

// Steps returns the number of quantization steps per unit amplitude,
// 2^(bits-1).
func Steps(bits int) float64 {
	return math.Exp2(float64(bits - 1))
}

// Quantizer reduces word length with optional TPDF dither:
//
//	y = floor((x + d) * steps + 0.5) / steps
//
// Input is expected to be clipped to [-1, 1] already.
type Quantizer struct {
	bitDepth   int
	ditherType DitherType
	noise      *TPDF

	// derived from bitDepth
	steps float64
	lsb   float64
}

// NewQuantizer creates a new Quantizer. The default configuration is 16-bit
// with triangular dither from randomly seeded streams.
func NewQuantizer(opts ...Option) (*Quantizer, error) {
	cfg := defaultConfig()

	for _, opt := range opts {
		if opt == nil {
			continue
		}

		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	a, b := cfg.seeds()

	noise, err := NewTPDF(a, b)
	if err != nil {
		return nil, err
	}

	q := &Quantizer{
		bitDepth:   cfg.bitDepth,
		ditherType: cfg.ditherType,
		noise:      noise,
	}
	q.updateDerived()

	return q, nil
}

func (q *Quantizer) updateDerived() {
	q.steps = Steps(q.bitDepth)
	q.lsb = 1 / q.steps
}

// Dither returns the next dither value, or 0 for [DitherNone].
func (q *Quantizer) Dither() float64 {
	if q.ditherType == DitherNone {
		return 0
	}

	return q.noise.Next(q.lsb)
}

// ProcessSample dithers and quantizes one sample.
func (q *Quantizer) ProcessSample(input float64) float64 {
	return math.Floor((input+q.Dither())*q.steps+0.5) / q.steps
}

// ProcessInPlace quantizes each sample in buf in-place.
func (q *Quantizer) ProcessInPlace(buf []float64) {
	for i, x := range buf {
		buf[i] = q.ProcessSample(x)
	}
}

// BitDepth returns the current word length.
func (q *Quantizer) BitDepth() int { return q.bitDepth }

// Steps returns 2^(BitDepth-1).
func (q *Quantizer) Steps() float64 { return q.steps }

// LSB returns the quantization step size.
func (q *Quantizer) LSB() float64 { return q.lsb }

// DitherType returns the current dither noise type.
func (q *Quantizer) DitherType() DitherType { return q.ditherType }

// SetBitDepth changes the word length, snapped to 16, 20 or 24.
func (q *Quantizer) SetBitDepth(bits int) {
	q.bitDepth = SnapBitDepth(float64(bits))
	q.updateDerived()
}
