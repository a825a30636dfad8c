package effects

import (
	"math"
	"testing"

	"github.com/ALH477/DeMoD-Vox/internal/testutil"
)

func TestEchoRejectsInvalidConfig(t *testing.T) {
	if _, err := NewEcho(-1); err == nil {
		t.Fatal("expected error for negative sample rate")
	}
	if _, err := NewEcho(testSampleRate, WithEchoTime(0.5)); err == nil {
		t.Fatal("expected error for 0.5 ms")
	}
	if _, err := NewEcho(testSampleRate, WithEchoFeedback(0.9)); err == nil {
		t.Fatal("expected error for feedback 0.9")
	}
	if _, err := NewEcho(testSampleRate, WithEchoMix(2)); err == nil {
		t.Fatal("expected error for mix 2")
	}
}

func TestEchoImpulseResponse(t *testing.T) {
	e, err := NewEcho(testSampleRate, WithEchoTime(1), WithEchoFeedback(0.5), WithEchoMix(1))
	if err != nil {
		t.Fatal(err)
	}

	// 1 ms at 96 kHz is 96 samples.
	if e.DelaySamples() != 96 {
		t.Fatalf("DelaySamples = %v, want 96", e.DelaySamples())
	}

	out := testutil.Impulse(400, 0)
	e.ProcessInPlace(out)

	want := map[int]float64{0: 1, 96: 1, 192: 0.5, 288: 0.25, 384: 0.125}
	for i, v := range out {
		w := want[i]
		if math.Abs(v-w) > 1e-12 {
			t.Fatalf("sample %d: got %v want %v", i, v, w)
		}
	}
}

func TestEchoMixZeroIsPassthrough(t *testing.T) {
	e, _ := NewEcho(testSampleRate, WithEchoMix(0), WithEchoFeedback(0.7))
	in := testutil.DeterministicNoise(3, 1, 4096)
	out := append([]float64(nil), in...)
	e.ProcessInPlace(out)
	testutil.RequireBitExact(t, out, in)
}

func TestEchoStableForWorstCaseSettings(t *testing.T) {
	for _, ms := range []float64{1, 10, 60} {
		for _, g := range []float64{0, 0.35, 0.7} {
			e, err := NewEcho(testSampleRate, WithEchoTime(ms), WithEchoFeedback(g), WithEchoMix(1))
			if err != nil {
				t.Fatal(err)
			}

			// 0.7^60 is about 5e-10, so 60 round trips bound the tail.
			n := int(60*ms*96) + 1
			out := testutil.Impulse(n, 0)
			e.ProcessInPlace(out)

			testutil.RequireFinite(t, out)
			for i, v := range out {
				if math.Abs(v) > 1.0+1e-12 {
					t.Fatalf("ms=%v g=%v sample %d grew to %v", ms, g, i, v)
				}
			}

			var tail float64
			for _, v := range out[n-int(ms*96):] {
				tail = max(tail, math.Abs(v))
			}
			if tail > 1e-6 {
				t.Fatalf("ms=%v g=%v: tail %v did not decay", ms, g, tail)
			}
		}
	}
}

func TestEchoSettersClamp(t *testing.T) {
	e, _ := NewEcho(testSampleRate)

	e.SetTime(0)
	if e.Time() != MinEchoTimeMs || e.DelaySamples() < 1 {
		t.Fatalf("time not clamped to floor: %v ms, %v samples", e.Time(), e.DelaySamples())
	}

	e.SetTime(500)
	if e.Time() != MaxEchoTimeMs {
		t.Fatalf("time not clamped to max: %v", e.Time())
	}

	e.SetFeedback(1.5)
	if e.Feedback() != MaxEchoFeedback {
		t.Fatalf("feedback not clamped: %v", e.Feedback())
	}

	e.SetMix(math.Inf(1))
	if e.Mix() != 1 {
		t.Fatalf("mix not clamped: %v", e.Mix())
	}
}

func TestEchoMaxTimeFitsLine(t *testing.T) {
	e, _ := NewEcho(testSampleRate, WithEchoTime(MaxEchoTimeMs), WithEchoFeedback(0), WithEchoMix(1))

	out := testutil.Impulse(5761, 0)
	e.ProcessInPlace(out)
	if math.Abs(out[5760]-1) > 1e-12 {
		t.Fatalf("60 ms tap = %v, want 1", out[5760])
	}
}

func TestEchoReset(t *testing.T) {
	e, _ := NewEcho(testSampleRate, WithEchoMix(1))
	e.ProcessSample(1)
	e.Reset()
	for i := 0; i < 2000; i++ {
		if v := e.ProcessSample(0); v != 0 {
			t.Fatalf("sample %d after reset: %v", i, v)
		}
	}
}
