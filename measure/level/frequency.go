package level

import (
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
)

// DominantFrequency returns the frequency in Hz of the strongest non-DC
// spectral peak of signal, refined by parabolic interpolation over the
// neighbouring bin magnitudes. It returns 0 for signals shorter than 4
// samples or with no energy.
func DominantFrequency(signal []float64, sampleRate float64) float64 {
	n := len(signal)
	if n < 4 || sampleRate <= 0 {
		return 0
	}

	fft := fourier.NewFFT(n)
	coeffs := fft.Coefficients(nil, signal)

	best := 0
	bestMag := 0.0

	for k := 1; k < len(coeffs); k++ {
		if mag := cmplx.Abs(coeffs[k]); mag > bestMag {
			best, bestMag = k, mag
		}
	}

	if best == 0 {
		return 0
	}

	bin := float64(best)
	if best > 1 && best < len(coeffs)-1 {
		a := cmplx.Abs(coeffs[best-1])
		b := bestMag
		c := cmplx.Abs(coeffs[best+1])

		if den := a - 2*b + c; den != 0 {
			bin += 0.5 * (a - c) / den
		}
	}

	return bin * fft.Freq(1) * sampleRate
}
