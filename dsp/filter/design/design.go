package design

import (
	"math"

	"github.com/ALH477/DeMoD-Vox/dsp/filter/biquad"
)

// ButterworthQ is the quality factor of a maximally flat second-order
// section.
const ButterworthQ = 1 / math.Sqrt2

// Lowpass designs a lowpass biquad at freq (Hz) with quality factor q.
func Lowpass(freq, q, sampleRate float64) biquad.Coefficients {
	w0, ok := normalizedW0(freq, sampleRate)
	if !ok {
		return biquad.Identity()
	}

	cw := math.Cos(w0)
	alpha := math.Sin(w0) / (2 * normalizedQ(q))

	b1 := 1 - cw
	b0 := b1 / 2

	return normalizeBiquad(b0, b1, b0, 1+alpha, -2*cw, 1-alpha)
}

// Highpass designs a highpass biquad at freq (Hz) with quality factor q.
func Highpass(freq, q, sampleRate float64) biquad.Coefficients {
	w0, ok := normalizedW0(freq, sampleRate)
	if !ok {
		return biquad.Identity()
	}

	cw := math.Cos(w0)
	alpha := math.Sin(w0) / (2 * normalizedQ(q))

	b0 := (1 + cw) / 2

	return normalizeBiquad(b0, -(1 + cw), b0, 1+alpha, -2*cw, 1-alpha)
}

// Peak designs a peaking-EQ biquad with gain in dB. A gain of exactly 0 dB
// returns the identity section.
func Peak(freq, gainDB, q, sampleRate float64) biquad.Coefficients {
	if gainDB == 0 {
		return biquad.Identity()
	}

	w0, ok := normalizedW0(freq, sampleRate)
	if !ok || math.IsNaN(gainDB) || math.IsInf(gainDB, 0) {
		return biquad.Identity()
	}

	cw := math.Cos(w0)
	alpha := math.Sin(w0) / (2 * normalizedQ(q))
	a := math.Pow(10, gainDB/40)

	b0 := 1 + alpha*a
	b1 := -2 * cw
	b2 := 1 - alpha*a
	a0 := 1 + alpha/a
	a2 := 1 - alpha/a

	return normalizeBiquad(b0, b1, b2, a0, b1, a2)
}

// PeakBandwidth designs a peaking filter whose width is given in Hz. The
// quality factor is freq/bandwidth.
func PeakBandwidth(freq, gainDB, bandwidthHz, sampleRate float64) biquad.Coefficients {
	return Peak(freq, gainDB, QFromBandwidth(freq, bandwidthHz), sampleRate)
}

// QFromBandwidth converts a centre frequency and bandwidth in Hz to a
// quality factor. Non-positive bandwidths map to ButterworthQ.
func QFromBandwidth(freq, bandwidthHz float64) float64 {
	if bandwidthHz <= 0 || freq <= 0 {
		return ButterworthQ
	}

	return freq / bandwidthHz
}

func normalizedW0(freq, sampleRate float64) (float64, bool) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return 0, false
	}

	nyquist := sampleRate / 2
	if freq <= 0 || freq >= nyquist || math.IsNaN(freq) || math.IsInf(freq, 0) {
		return 0, false
	}

	return 2 * math.Pi * freq / sampleRate, true
}

func normalizedQ(q float64) float64 {
	if q <= 0 || math.IsNaN(q) || math.IsInf(q, 0) {
		return ButterworthQ
	}

	return q
}

func normalizeBiquad(b0, b1, b2, a0, a1, a2 float64) biquad.Coefficients {
	if a0 == 0 || math.IsNaN(a0) || math.IsInf(a0, 0) {
		return biquad.Identity()
	}

	return biquad.Coefficients{
		B0: b0 / a0,
		B1: b1 / a0,
		B2: b2 / a0,
		A1: a1 / a0,
		A2: a2 / a0,
	}
}
