package window

import (
	"math"
	"testing"
)

func TestGenerate(t *testing.T) {
	for _, typ := range []Type{TypeRectangular, TypeHann, TypeHamming, TypeBlackman} {
		t.Run(typ.String(), func(t *testing.T) {
			w := Generate(typ, 64)
			if len(w) != 64 {
				t.Fatalf("len=%d, want 64", len(w))
			}

			for i, v := range w {
				if math.IsNaN(v) || math.IsInf(v, 0) || v < -1e-12 || v > 1+1e-12 {
					t.Fatalf("coefficient[%d] invalid: %v", i, v)
				}
			}
		})
	}

	if Generate(TypeHann, 0) != nil {
		t.Fatal("zero length should return nil")
	}
}

func TestHannPeriodicVsSymmetric(t *testing.T) {
	sym := Generate(TypeHann, 8)
	per := Generate(TypeHann, 8, WithPeriodic())

	if math.Abs(sym[7]) > 1e-15 {
		t.Fatalf("symmetric last = %v, want 0", sym[7])
	}
	if math.Abs(per[4]-1) > 1e-15 {
		t.Fatalf("periodic centre = %v, want 1", per[4])
	}
	if per[7] <= 0 {
		t.Fatalf("periodic last = %v, want > 0", per[7])
	}
}

func TestOverlapAddGainHannQuarterHop(t *testing.T) {
	w := Generate(TypeHann, 2048, WithPeriodic())

	g, err := OverlapAddGain(w, 512)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(g-1.5) > 1e-12 {
		t.Fatalf("gain = %v, want 1.5", g)
	}

	// Constant at every offset.
	for n := 0; n < 512; n += 37 {
		var sum float64
		for m := n; m < len(w); m += 512 {
			sum += w[m] * w[m]
		}
		if math.Abs(sum-1.5) > 1e-12 {
			t.Fatalf("offset %d: %v, want 1.5", n, sum)
		}
	}

	if _, err := OverlapAddGain(w, 0); err == nil {
		t.Fatal("expected hop error")
	}
	if _, err := OverlapAddGain(nil, 1); err == nil {
		t.Fatal("expected empty error")
	}
}

func TestFadeInIsComplementary(t *testing.T) {
	f := FadeIn(256)
	for i := range f {
		if s := f[i] + f[len(f)-1-i]; math.Abs(s-1) > 1e-12 {
			t.Fatalf("i=%d: sum %v, want 1", i, s)
		}
	}
	if f[0] <= 0 || f[0] > 1e-4 || f[255] >= 1 {
		t.Fatalf("endpoints: %v %v", f[0], f[255])
	}
}

func TestApplyCoefficients(t *testing.T) {
	s := []float64{1, 2, 3}
	c := []float64{0.5, 0.5, 2}
	dst := make([]float64, 3)

	if err := ApplyCoefficients(dst, s, c); err != nil {
		t.Fatal(err)
	}
	if dst[0] != 0.5 || dst[1] != 1 || dst[2] != 6 {
		t.Fatalf("dst = %v", dst)
	}

	if err := ApplyCoefficientsInPlace(s, c); err != nil {
		t.Fatal(err)
	}
	if s[2] != 6 {
		t.Fatalf("s = %v", s)
	}

	if err := ApplyCoefficientsInPlace(s, c[:2]); err == nil {
		t.Fatal("expected length error")
	}

	if err := ApplyCoefficients(dst, s, c[:2]); err == nil {
		t.Fatal("expected length error")
	}
}
