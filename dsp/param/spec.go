package param

import (
	"errors"
	"fmt"
	"math"
)

// ErrUnknownParameter is returned for names that match no parameter.
var ErrUnknownParameter = errors.New("param: unknown parameter")

// ID identifies one parameter.
type ID int

// Parameter IDs in canonical order.
const (
	Pitch ID = iota
	BassDB
	BassFreq
	HPFFreq
	LPFFreq
	MidDB
	MidFreq
	MidBandwidth
	CrushBits
	CrushDownsample
	CrushMix
	RingFreq
	RingMix
	EchoMs
	EchoMix
	EchoFeedback
	CompThreshold
	CompRatio
	CompAttack
	CompRelease
	OutDB
	OutBits

	// Count is the number of parameters.
	Count
)

// Spec describes one parameter. Step > 0 snaps values to Min + k*Step; a
// non-empty Choices list snaps to the nearest entry instead.
type Spec struct {
	Name    string
	Unit    string
	Min     float64
	Max     float64
	Step    float64
	Default float64
	Choices []float64
}

var specs = [Count]Spec{
	Pitch:           {Name: "pitch", Unit: "st", Min: -12, Max: 0, Default: 0},
	BassDB:          {Name: "bass_db", Unit: "dB", Min: 0, Max: 18, Default: 0},
	BassFreq:        {Name: "bass_freq", Unit: "Hz", Min: 40, Max: 400, Default: 120},
	HPFFreq:         {Name: "hpf_freq", Unit: "Hz", Min: 20, Max: 500, Default: 100},
	LPFFreq:         {Name: "lpf_freq", Unit: "Hz", Min: 1000, Max: 12000, Default: 4500},
	MidDB:           {Name: "mid_db", Unit: "dB", Min: 0, Max: 18, Default: 6},
	MidFreq:         {Name: "mid_freq", Unit: "Hz", Min: 500, Max: 5000, Default: 2000},
	MidBandwidth:    {Name: "mid_bw", Unit: "Hz", Min: 100, Max: 4000, Default: 800},
	CrushBits:       {Name: "crush_bits", Unit: "bits", Min: 2, Max: 16, Step: 1, Default: 8},
	CrushDownsample: {Name: "crush_down", Unit: "x", Min: 1, Max: 8, Step: 1, Default: 2},
	CrushMix:        {Name: "crush_mix", Min: 0, Max: 1, Default: 0.6},
	RingFreq:        {Name: "ring_freq", Unit: "Hz", Min: 1, Max: 800, Default: 60},
	RingMix:         {Name: "ring_mix", Min: 0, Max: 1, Default: 0.35},
	EchoMs:          {Name: "echo_ms", Unit: "ms", Min: 1, Max: 60, Default: 10},
	EchoMix:         {Name: "echo_mix", Min: 0, Max: 1, Default: 0.22},
	EchoFeedback:    {Name: "echo_fb", Min: 0, Max: 0.7, Default: 0.15},
	CompThreshold:   {Name: "comp_thresh", Unit: "dB", Min: -40, Max: 0, Default: -18},
	CompRatio:       {Name: "comp_ratio", Unit: ":1", Min: 1, Max: 20, Default: 8},
	CompAttack:      {Name: "comp_attack", Unit: "ms", Min: 0.1, Max: 80, Default: 5},
	CompRelease:     {Name: "comp_release", Unit: "ms", Min: 10, Max: 500, Default: 60},
	OutDB:           {Name: "out_db", Unit: "dB", Min: -12, Max: 24, Default: 6},
	OutBits:         {Name: "out_bits", Unit: "bits", Min: 16, Max: 24, Default: 16, Choices: []float64{16, 20, 24}},
}

var byName = func() map[string]ID {
	m := make(map[string]ID, Count)
	for id := range Count {
		m[specs[id].Name] = id
	}

	return m
}()

// Valid reports whether id names a parameter.
func (id ID) Valid() bool {
	return id >= 0 && id < Count
}

// String returns the canonical parameter name.
func (id ID) String() string {
	if id.Valid() {
		return specs[id].Name
	}

	return fmt.Sprintf("ID(%d)", int(id))
}

// Spec returns the parameter description. Invalid IDs yield a zero Spec.
func (id ID) Spec() Spec {
	if !id.Valid() {
		return Spec{}
	}

	return specs[id]
}

// Lookup returns the ID for a canonical name.
func Lookup(name string) (ID, error) {
	id, ok := byName[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownParameter, name)
	}

	return id, nil
}

// Specs returns all parameter descriptions in canonical order.
func Specs() []Spec {
	out := make([]Spec, Count)
	copy(out, specs[:])

	return out
}

// Clamp limits v to [Min, Max] and snaps it to the step or choice list.
// NaN maps to Default.
func (s Spec) Clamp(v float64) float64 {
	if math.IsNaN(v) {
		return s.Default
	}

	v = max(s.Min, min(s.Max, v))

	if len(s.Choices) > 0 {
		return nearestChoice(s.Choices, v)
	}

	if s.Step > 0 {
		v = s.Min + math.Round((v-s.Min)/s.Step)*s.Step
		v = min(s.Max, v)
	}

	return v
}

// nearestChoice returns the entry closest to v; ties go to the earlier entry.
func nearestChoice(choices []float64, v float64) float64 {
	best := choices[0]
	bestDist := math.Abs(v - best)

	for _, c := range choices[1:] {
		if d := math.Abs(v - c); d < bestDist {
			best, bestDist = c, d
		}
	}

	return best
}
