package param

import (
	"errors"
	"math"
	"sync"
	"testing"
)

func TestDefaults(t *testing.T) {
	tests := []struct {
		id   ID
		want float64
	}{
		{Pitch, 0},
		{BassDB, 0},
		{BassFreq, 120},
		{HPFFreq, 100},
		{LPFFreq, 4500},
		{MidDB, 6},
		{MidFreq, 2000},
		{MidBandwidth, 800},
		{CrushBits, 8},
		{CrushDownsample, 2},
		{CrushMix, 0.6},
		{RingFreq, 60},
		{RingMix, 0.35},
		{EchoMs, 10},
		{EchoMix, 0.22},
		{EchoFeedback, 0.15},
		{CompThreshold, -18},
		{CompRatio, 8},
		{CompAttack, 5},
		{CompRelease, 60},
		{OutDB, 6},
		{OutBits, 16},
	}

	if len(tests) != int(Count) {
		t.Fatalf("table covers %d parameters, want %d", len(tests), Count)
	}

	s := NewStore()
	for _, tt := range tests {
		if got := s.Get(tt.id); got != tt.want {
			t.Errorf("%s default = %v, want %v", tt.id, got, tt.want)
		}
	}
}

func TestSetClampsAndSnaps(t *testing.T) {
	tests := []struct {
		id   ID
		in   float64
		want float64
	}{
		{Pitch, 5, 0},
		{Pitch, -40, -12},
		{Pitch, -3.7, -3.7},
		{HPFFreq, 1, 20},
		{LPFFreq, 50000, 12000},
		{CrushBits, 7.6, 8},
		{CrushBits, 1, 2},
		{CrushDownsample, 0, 1},
		{CrushDownsample, 3.4, 3},
		{EchoMs, 0, 1},
		{EchoFeedback, 0.99, 0.7},
		{CompRatio, 0.5, 1},
		{OutBits, 17, 16},
		{OutBits, 18, 16},
		{OutBits, 19, 20},
		{OutBits, 23, 24},
		{OutBits, 64, 24},
		{OutBits, math.Inf(1), 24},
		{OutBits, math.Inf(-1), 16},
		{CrushBits, math.Inf(1), 16},
		{Pitch, math.Inf(-1), -12},
		{RingMix, math.NaN(), 0.35},
	}

	s := NewStore()
	for _, tt := range tests {
		s.Set(tt.id, tt.in)

		if got := s.Get(tt.id); got != tt.want {
			t.Errorf("Set(%s, %v) -> %v, want %v", tt.id, tt.in, got, tt.want)
		}
	}
}

func TestSetByName(t *testing.T) {
	s := NewStore()

	if err := s.SetByName("echo_ms", 25); err != nil {
		t.Fatalf("SetByName() error = %v", err)
	}

	v, err := s.Value("echo_ms")
	if err != nil || v != 25 {
		t.Fatalf("Value() = %v, %v", v, err)
	}

	if err := s.SetByName("volume", 1); !errors.Is(err, ErrUnknownParameter) {
		t.Fatalf("SetByName(volume) error = %v, want ErrUnknownParameter", err)
	}

	if _, err := s.Value("volume"); !errors.Is(err, ErrUnknownParameter) {
		t.Fatalf("Value(volume) error = %v, want ErrUnknownParameter", err)
	}
}

func TestNamesRoundTrip(t *testing.T) {
	specs := Specs()
	if len(specs) != int(Count) {
		t.Fatalf("Specs() returned %d entries", len(specs))
	}

	seen := make(map[string]bool)

	for i, sp := range specs {
		if seen[sp.Name] {
			t.Fatalf("duplicate name %q", sp.Name)
		}

		seen[sp.Name] = true

		id, err := Lookup(sp.Name)
		if err != nil || id != ID(i) {
			t.Fatalf("Lookup(%q) = %v, %v", sp.Name, id, err)
		}

		if sp.Default < sp.Min || sp.Default > sp.Max {
			t.Fatalf("%s default %v outside [%v, %v]", sp.Name, sp.Default, sp.Min, sp.Max)
		}

		if sp.Clamp(sp.Default) != sp.Default {
			t.Fatalf("%s default is not a fixed point of Clamp", sp.Name)
		}
	}
}

func TestInvalidID(t *testing.T) {
	s := NewStore()
	s.Set(Count, 3)

	if got := s.Get(Count); got != 0 {
		t.Fatalf("Get(Count) = %v", got)
	}

	if got := ID(-1).String(); got != "ID(-1)" {
		t.Fatalf("String() = %q", got)
	}

	if ID(99).Spec().Name != "" {
		t.Fatal("invalid ID should have a zero Spec")
	}
}

func TestResetRestoresDefaults(t *testing.T) {
	s := NewStore()
	s.Set(MidDB, 0)
	s.Set(OutBits, 24)
	s.Reset()

	if s.Get(MidDB) != 6 || s.Get(OutBits) != 16 {
		t.Fatalf("Reset() left mid_db=%v out_bits=%v", s.Get(MidDB), s.Get(OutBits))
	}
}

func TestSnapshot(t *testing.T) {
	s := NewStore()
	s.Set(RingFreq, 300)

	var snap Snapshot
	s.Snapshot(&snap)

	if snap.Get(RingFreq) != 300 || snap.Get(OutDB) != 6 {
		t.Fatalf("snapshot ring_freq=%v out_db=%v", snap.Get(RingFreq), snap.Get(OutDB))
	}

	allocs := testing.AllocsPerRun(100, func() { s.Snapshot(&snap) })
	if allocs != 0 {
		t.Fatalf("Snapshot allocated %v times", allocs)
	}
}

func TestConcurrentWritesNeverTear(t *testing.T) {
	s := NewStore()

	const n = 10000

	var wg sync.WaitGroup

	wg.Add(1)

	go func() {
		defer wg.Done()

		for i := range n {
			if i%2 == 0 {
				s.Set(CompThreshold, -40)
			} else {
				s.Set(CompThreshold, -0.125)
			}
		}
	}()

	for range n {
		v := s.Get(CompThreshold)
		if v != -40 && v != -0.125 && v != -18 {
			t.Fatalf("torn read: %v", v)
		}
	}

	wg.Wait()
}
