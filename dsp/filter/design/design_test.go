package design

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/ALH477/DeMoD-Vox/dsp/filter/biquad"
)

const sr = 96000.0

func almostEqual(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}

func mag(c biquad.Coefficients, freq float64) float64 {
	return cmplx.Abs(c.Response(freq, sr))
}

func TestPassDesigners_ResponseShape(t *testing.T) {
	lp := Lowpass(4500, ButterworthQ, sr)
	if !almostEqual(mag(lp, 10), 1, 1e-6) {
		t.Fatalf("lowpass DC gain = %v, want 1", mag(lp, 10))
	}
	if db := lp.MagnitudeDB(4500, sr); !almostEqual(db, -3.0103, 0.01) {
		t.Fatalf("lowpass corner = %v dB, want -3.01", db)
	}
	if !(mag(lp, 20000) < 0.1) {
		t.Fatalf("lowpass stopband too high: %v", mag(lp, 20000))
	}

	hp := Highpass(100, ButterworthQ, sr)
	if !almostEqual(mag(hp, 20000), 1, 1e-3) {
		t.Fatalf("highpass passband = %v, want 1", mag(hp, 20000))
	}
	if db := hp.MagnitudeDB(100, sr); !almostEqual(db, -3.0103, 0.01) {
		t.Fatalf("highpass corner = %v dB, want -3.01", db)
	}
	if !(mag(hp, 10) < 0.02) {
		t.Fatalf("highpass stopband too high: %v", mag(hp, 10))
	}
}

func TestPeak_GainAtCentre(t *testing.T) {
	tests := []struct {
		name   string
		gainDB float64
	}{
		{name: "boost", gainDB: 6},
		{name: "max", gainDB: 18},
		{name: "cut", gainDB: -6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := PeakBandwidth(2000, tt.gainDB, 800, sr)
			if db := c.MagnitudeDB(2000, sr); !almostEqual(db, tt.gainDB, 1e-6) {
				t.Fatalf("centre gain = %v dB, want %v", db, tt.gainDB)
			}
			if db := c.MagnitudeDB(40000, sr); math.Abs(db) > 0.5 {
				t.Fatalf("far-band gain = %v dB, want about 0", db)
			}
		})
	}
}

func TestPeak_ZeroDBIsIdentity(t *testing.T) {
	if got := PeakBandwidth(2000, 0, 800, sr); got != biquad.Identity() {
		t.Fatalf("0 dB peak = %#v, want identity", got)
	}
}

func TestQFromBandwidth(t *testing.T) {
	if got := QFromBandwidth(2000, 800); got != 2.5 {
		t.Fatalf("Q = %v, want 2.5", got)
	}
	if got := QFromBandwidth(2000, 0); got != ButterworthQ {
		t.Fatalf("Q = %v, want ButterworthQ", got)
	}
}

func TestDesigners_StableOverParameterRanges(t *testing.T) {
	var coeffs []biquad.Coefficients
	for _, f := range []float64{20, 100, 500} {
		coeffs = append(coeffs, Highpass(f, ButterworthQ, sr))
	}
	for _, f := range []float64{1000, 4500, 12000} {
		coeffs = append(coeffs, Lowpass(f, ButterworthQ, sr))
	}
	for _, f := range []float64{500, 2000, 5000} {
		for _, bw := range []float64{100, 4000} {
			coeffs = append(coeffs, PeakBandwidth(f, 18, bw, sr))
		}
	}

	for _, c := range coeffs {
		assertFiniteCoefficients(t, c)
		assertStableSection(t, c)
	}
}

func TestInvalidInputsYieldIdentity(t *testing.T) {
	for _, c := range []biquad.Coefficients{
		Lowpass(1000, ButterworthQ, 0),
		Highpass(0, ButterworthQ, sr),
		Lowpass(60000, ButterworthQ, sr),
		Peak(math.NaN(), 6, 1, sr),
		Peak(1000, math.Inf(1), 1, sr),
	} {
		if c != biquad.Identity() {
			t.Fatalf("expected identity, got %#v", c)
		}
	}

	_ = Peak(1000, 3, 0, sr) // q<=0 path uses ButterworthQ
}

func assertFiniteCoefficients(t *testing.T, c biquad.Coefficients) {
	t.Helper()
	for i, v := range []float64{c.B0, c.B1, c.B2, c.A1, c.A2} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("invalid coefficient[%d]=%v", i, v)
		}
	}
}

func assertStableSection(t *testing.T, c biquad.Coefficients) {
	t.Helper()
	// Poles of z^2 + A1 z + A2 lie inside the unit circle iff |A2| < 1 and
	// |A1| < 1 + A2.
	if !(math.Abs(c.A2) < 1 && math.Abs(c.A1) < 1+c.A2) {
		t.Fatalf("unstable section: %#v", c)
	}
}
