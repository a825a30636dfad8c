package pitch

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/ALH477/DeMoD-Vox/dsp/window"
	"github.com/ALH477/DeMoD-Vox/internal/testutil"
)

const sampleRate = 96000.0

func newShifters(t *testing.T) map[string]Shifter {
	t.Helper()

	out := make(map[string]Shifter, 2)

	for _, v := range []Variant{Granular, Spectral} {
		s, err := New(v, sampleRate)
		if err != nil {
			t.Fatalf("New(%s) error = %v", v, err)
		}

		out[v.String()] = s
	}

	return out
}

func TestRatioFromSemitones(t *testing.T) {
	tests := []struct {
		semitones float64
		want      float64
	}{
		{0, 1},
		{-12, 0.5},
		{3, 1},
		{-30, 0.5},
		{math.NaN(), 1},
	}

	for _, tt := range tests {
		if got := RatioFromSemitones(tt.semitones); got != tt.want {
			t.Fatalf("RatioFromSemitones(%v) = %v, want %v", tt.semitones, got, tt.want)
		}
	}

	if got, want := RatioFromSemitones(-7), math.Pow(2, -7.0/12); math.Abs(got-want) > 1e-15 {
		t.Fatalf("RatioFromSemitones(-7) = %v, want %v", got, want)
	}
}

func TestVariantNames(t *testing.T) {
	for _, v := range []Variant{Granular, Spectral} {
		got, err := ParseVariant(v.String())
		if err != nil || got != v {
			t.Fatalf("ParseVariant(%q) = %v, %v", v.String(), got, err)
		}
	}

	if _, err := ParseVariant("wsola"); err == nil {
		t.Fatal("expected unknown variant error")
	}

	if _, err := New(Variant(9), sampleRate); err == nil {
		t.Fatal("expected error for unknown variant")
	}
}

func TestConstructorsRejectInvalidSampleRate(t *testing.T) {
	for _, sr := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		if _, err := NewGranularShifter(sr); err == nil {
			t.Fatalf("NewGranularShifter(%v) expected error", sr)
		}

		if _, err := NewSpectralShifter(sr); err == nil {
			t.Fatalf("NewSpectralShifter(%v) expected error", sr)
		}
	}
}

func TestSetPitchSemitonesClamps(t *testing.T) {
	for name, s := range newShifters(t) {
		s.SetPitchSemitones(4)
		if s.PitchSemitones() != 0 || s.PitchRatio() != 1 {
			t.Fatalf("%s: +4 st gave %v st ratio %v", name, s.PitchSemitones(), s.PitchRatio())
		}

		s.SetPitchSemitones(-24)
		if s.PitchSemitones() != -12 || s.PitchRatio() != 0.5 {
			t.Fatalf("%s: -24 st gave %v st ratio %v", name, s.PitchSemitones(), s.PitchRatio())
		}
	}
}

func TestLatencyIsConstant(t *testing.T) {
	for name, s := range newShifters(t) {
		for _, st := range []float64{0, -3.5, -12} {
			s.SetPitchSemitones(st)

			if got := s.Latency(); got != 2048 {
				t.Fatalf("%s: Latency() at %v st = %d, want 2048", name, st, got)
			}
		}
	}
}

func TestUnityRatioDelaysInputByLatency(t *testing.T) {
	tests := []struct {
		variant Variant
		tol     float64
	}{
		{Granular, 1e-12},
		{Spectral, 1e-9},
	}

	input := testutil.DeterministicNoise(7, 0.8, 16384)

	for _, tt := range tests {
		t.Run(tt.variant.String(), func(t *testing.T) {
			s, err := New(tt.variant, sampleRate)
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}

			out := make([]float64, len(input))
			copy(out, input)
			s.ProcessInPlace(out)

			lat := s.Latency()
			for i := range lat {
				if math.Abs(out[i]) > tt.tol {
					t.Fatalf("sample %d before latency = %g, want 0", i, out[i])
				}
			}

			for i := lat; i < len(out); i++ {
				if diff := math.Abs(out[i] - input[i-lat]); diff > tt.tol {
					t.Fatalf("sample %d: got=%g want=%g diff=%g", i, out[i], input[i-lat], diff)
				}
			}
		})
	}
}

func TestOctaveDownHalvesFrequency(t *testing.T) {
	const (
		f0    = 1000.0
		start = 8192
		stop  = 40000
		tolHz = 10.0
	)

	input := testutil.DeterministicSine(f0, sampleRate, 0.5, stop)

	for name, s := range newShifters(t) {
		s.SetPitchSemitones(-12)

		out := make([]float64, len(input))
		copy(out, input)
		s.ProcessInPlace(out)

		got := estimateFrequencyAutoCorrelation(out[start:stop], sampleRate, 300, 700)
		if diff := math.Abs(got - f0/2); diff > tolHz {
			t.Fatalf("%s: frequency = %gHz, want %gHz", name, got, f0/2)
		}

		if rms := testutil.RMS(out[start:stop]); rms < 0.1 {
			t.Fatalf("%s: output RMS %g too low", name, rms)
		}
	}
}

func TestPitchScalesVoiceBandTones(t *testing.T) {
	const (
		start     = 8192
		length    = 32768
		tolCents  = 5.0
		spanCents = 300.0
	)

	for _, v := range []Variant{Granular, Spectral} {
		for _, f0 := range []float64{110, 220, 440, 880, 1000} {
			for _, st := range []float64{-3, -7, -12} {
				s, err := New(v, sampleRate)
				if err != nil {
					t.Fatalf("New(%s) error = %v", v, err)
				}

				s.SetPitchSemitones(st)

				buf := testutil.DeterministicSine(f0, sampleRate, 0.5, start+length)
				s.ProcessInPlace(buf)

				want := f0 * math.Exp2(st/12)
				got := spectralPeak(buf[start:], sampleRate, want, spanCents)

				if c := cents(got, want); math.Abs(c) > tolCents {
					t.Fatalf("%s %gHz %+g st: peak %.3fHz, want %.3fHz (%+.2f cents)",
						v, f0, st, got, want, c)
				}
			}
		}
	}
}

func TestGranularGrainStartsStayNearNominal(t *testing.T) {
	const (
		f0     = 220.0
		settle = 8192
	)

	g, err := NewGranularShifter(sampleRate)
	if err != nil {
		t.Fatalf("NewGranularShifter() error = %v", err)
	}

	g.SetPitchSemitones(-7)

	limit := sampleRate/f0/2 + 8
	input := testutil.DeterministicSine(f0, sampleRate, 0.5, 40000)

	grains := 0

	for i, x := range input {
		g.ProcessSample(x)

		if g.pos != 1 || i < settle {
			continue
		}

		grains++

		if off := g.curStart - g.nominalStart(g.curRatio); math.Abs(off) > limit {
			t.Fatalf("sample %d: grain starts %g samples from nominal, limit %g", i, off, limit)
		}
	}

	if grains < 10 {
		t.Fatalf("only %d grain boundaries observed", grains)
	}
}

func TestSilenceStaysSilent(t *testing.T) {
	for name, s := range newShifters(t) {
		s.SetPitchSemitones(-5)

		buf := make([]float64, 8192)
		s.ProcessInPlace(buf)

		for i, v := range buf {
			if v != 0 {
				t.Fatalf("%s: sample %d = %g, want 0", name, i, v)
			}
		}
	}
}

func TestNoiseStaysFiniteAndBounded(t *testing.T) {
	input := testutil.DeterministicNoise(11, 1, 30000)

	for name, s := range newShifters(t) {
		s.SetPitchSemitones(-9)

		out := make([]float64, len(input))
		copy(out, input)
		s.ProcessInPlace(out)

		testutil.RequireFinite(t, out)

		if peak := testutil.Peak(out); peak > 8 {
			t.Fatalf("%s: peak %g exceeds bound", name, peak)
		}
	}
}

func TestResetReproducesOutput(t *testing.T) {
	input := testutil.DeterministicSine(440, sampleRate, 0.6, 12000)

	for name, s := range newShifters(t) {
		s.SetPitchSemitones(-4)

		first := make([]float64, len(input))
		copy(first, input)
		s.ProcessInPlace(first)

		s.Reset()

		second := make([]float64, len(input))
		copy(second, input)
		s.ProcessInPlace(second)

		for i := range first {
			if first[i] != second[i] {
				t.Fatalf("%s: sample %d differs after Reset: %g vs %g", name, i, first[i], second[i])
			}
		}
	}
}

func TestProcessSampleMatchesProcessInPlace(t *testing.T) {
	input := testutil.DeterministicNoise(3, 0.5, 6000)

	for _, v := range []Variant{Granular, Spectral} {
		a, _ := New(v, sampleRate)
		b, _ := New(v, sampleRate)
		a.SetPitchSemitones(-6)
		b.SetPitchSemitones(-6)

		buf := make([]float64, len(input))
		copy(buf, input)
		b.ProcessInPlace(buf)

		for i, x := range input {
			if got := a.ProcessSample(x); got != buf[i] {
				t.Fatalf("%s: sample %d: ProcessSample=%g ProcessInPlace=%g", v, i, got, buf[i])
			}
		}
	}
}

func TestGranularDoesNotAllocate(t *testing.T) {
	g, err := NewGranularShifter(sampleRate)
	if err != nil {
		t.Fatalf("NewGranularShifter() error = %v", err)
	}

	g.SetPitchSemitones(-12)
	buf := testutil.DeterministicNoise(5, 0.5, 512)

	allocs := testing.AllocsPerRun(20, func() {
		g.ProcessInPlace(buf)
	})
	if allocs != 0 {
		t.Fatalf("ProcessInPlace allocated %v times", allocs)
	}
}

func TestWrapPhase(t *testing.T) {
	for _, x := range []float64{0, 1, -1, 3 * math.Pi, -3 * math.Pi, 100} {
		got := wrapPhase(x)
		if got < -math.Pi || got >= math.Pi {
			t.Fatalf("wrapPhase(%v) = %v out of range", x, got)
		}

		if d := math.Remainder(got-x, 2*math.Pi); math.Abs(d) > 1e-12 {
			t.Fatalf("wrapPhase(%v) = %v not congruent", x, got)
		}
	}
}

// spectralPeak returns the frequency of the largest Hann-windowed DFT
// magnitude within spanCents of near.
func spectralPeak(x []float64, sampleRate, near, spanCents float64) float64 {
	w := window.Generate(window.TypeHann, len(x))
	xw := make([]float64, len(x))

	for i, v := range x {
		xw[i] = v * w[i]
	}

	power := func(c float64) float64 {
		f := near * math.Exp2(c/1200)
		rot := cmplx.Rect(1, -2*math.Pi*f/sampleRate)
		z := complex(1, 0)

		var acc complex128

		for _, v := range xw {
			acc += complex(v, 0) * z
			z *= rot
		}

		return real(acc)*real(acc) + imag(acc)*imag(acc)
	}

	search := func(lo, hi, step float64) (float64, float64) {
		best, bestP := lo, math.Inf(-1)

		for c := lo; c <= hi+step/2; c += step {
			if p := power(c); p > bestP {
				best, bestP = c, p
			}
		}

		return best, bestP
	}

	coarse, _ := search(-spanCents, spanCents, 5)

	const step = 0.25

	c, p1 := search(coarse-5, coarse+5, step)
	p0, p2 := power(c-step), power(c+step)

	if den := p0 - 2*p1 + p2; den < 0 {
		c += 0.5 * step * (p0 - p2) / den
	}

	return near * math.Exp2(c/1200)
}

func cents(f, ref float64) float64 {
	return 1200 * math.Log2(f/ref)
}

func estimateFrequencyAutoCorrelation(x []float64, sampleRate, minHz, maxHz float64) float64 {
	lagMin := max(int(math.Floor(sampleRate/maxHz)), 1)
	lagMax := min(int(math.Ceil(sampleRate/minHz)), len(x)-2)

	if lagMax <= lagMin {
		return 0
	}

	mean := 0.0
	for _, v := range x {
		mean += v
	}

	mean /= float64(len(x))

	centered := make([]float64, len(x))
	for i, v := range x {
		centered[i] = v - mean
	}

	bestLag := lagMin
	bestScore := math.Inf(-1)

	for lag := lagMin; lag <= lagMax; lag++ {
		score := normalizedAutocorrelation(centered, lag)
		if score > bestScore {
			bestScore = score
			bestLag = lag
		}
	}

	lag := float64(bestLag)
	if bestLag > lagMin && bestLag < lagMax {
		s0 := normalizedAutocorrelation(centered, bestLag-1)
		s1 := normalizedAutocorrelation(centered, bestLag)
		s2 := normalizedAutocorrelation(centered, bestLag+1)

		den := s0 - 2*s1 + s2
		if math.Abs(den) > 1e-12 {
			lag += 0.5 * (s0 - s2) / den
		}
	}

	return sampleRate / lag
}

func normalizedAutocorrelation(x []float64, lag int) float64 {
	n := len(x) - lag
	if n <= 0 {
		return -1
	}

	var dot, e0, e1 float64

	for i := range n {
		a := x[i]
		b := x[i+lag]
		dot += a * b
		e0 += a * a
		e1 += b * b
	}

	if e0 <= 1e-12 || e1 <= 1e-12 {
		return -1
	}

	return dot / math.Sqrt(e0*e1)
}
