package pitch

import (
	"fmt"
	"math"

	"github.com/tphakala/simd/f64"

	"github.com/ALH477/DeMoD-Vox/dsp/core"
	"github.com/ALH477/DeMoD-Vox/dsp/delay"
	"github.com/ALH477/DeMoD-Vox/dsp/window"
)

const (
	// DefaultGrainSize is the grain length W in samples.
	DefaultGrainSize = 2048
	// DefaultCrossfade is the crossfade length X in samples.
	DefaultCrossfade = 256

	// searchRadius bounds how far a grain may start from its nominal delay.
	searchRadius = 512
	// matchLength is the number of input samples compared per candidate.
	matchLength = 512
	// searchBias is the score penalty at the edge of the search range.
	searchBias = 0.01
	matchFloor = 1e-12
)

// GranularShifter lowers pitch by reading overlapping grains out of a delay
// line at the pitch ratio. A new grain starts every W-X samples and fades in
// while the previous grain fades out.
//
// Each grain is nominally centred on a delay of W samples: its read head
// starts W(1-r)/2 samples ahead of that point and drifts back through it.
// Before a grain starts, its read position is moved by up to 512 samples to
// the point where the input best matches what the outgoing grain is about to
// read (WSOLA), so the crossfade joins two waveforms in phase. A small bias
// toward the nominal start keeps the average delay at W. At r = 1 the best
// match is always the nominal start and the output is the input delayed by
// exactly W.
//
// The pitch ratio is latched at grain boundaries. This processor is mono and
// not thread-safe.
type GranularShifter struct {
	sampleRate float64
	semitones  float64
	ratio      float64

	grainSize int
	crossfade int
	hop       int

	line *delay.Line
	fade []float64

	// pos is the offset of the current grain; the previous grain is at pos+hop.
	pos       int
	curRatio  float64
	prevRatio float64
	curStart  float64
	prevStart float64

	ref    []float64
	span   []float64
	spanSq []float64
	ones   []float64
	xcorr  []float64
	energy []float64
}

// NewGranularShifter returns a granular shifter with W = 2048 and X = 256.
func NewGranularShifter(sampleRate float64) (*GranularShifter, error) {
	if err := core.ValidateSampleRate("granular pitch shifter", sampleRate); err != nil {
		return nil, err
	}

	g := &GranularShifter{
		sampleRate: sampleRate,
		ratio:      1,
		grainSize:  DefaultGrainSize,
		crossfade:  DefaultCrossfade,
		hop:        DefaultGrainSize - DefaultCrossfade,
		fade:       window.FadeIn(DefaultCrossfade),
		ref:        make([]float64, matchLength),
		span:       make([]float64, 2*searchRadius+matchLength),
		spanSq:     make([]float64, 2*searchRadius+matchLength),
		ones:       make([]float64, matchLength),
		xcorr:      make([]float64, 2*searchRadius+1),
		energy:     make([]float64, 2*searchRadius+1),
	}

	for i := range g.ones {
		g.ones[i] = 1
	}

	// Reads reach 3W/2 plus the search radius at -12 semitones.
	line, err := delay.New(2 * g.grainSize)
	if err != nil {
		return nil, fmt.Errorf("granular pitch shifter: %w", err)
	}

	g.line = line
	g.restart()

	return g, nil
}

// SampleRate returns the sample rate in Hz.
func (g *GranularShifter) SampleRate() float64 { return g.sampleRate }

// Latency returns the processing delay in samples.
func (g *GranularShifter) Latency() int { return g.grainSize }

// GrainSize returns W in samples.
func (g *GranularShifter) GrainSize() int { return g.grainSize }

// Crossfade returns X in samples.
func (g *GranularShifter) Crossfade() int { return g.crossfade }

// PitchRatio returns the target pitch ratio.
func (g *GranularShifter) PitchRatio() float64 { return g.ratio }

// PitchSemitones returns the target shift in semitones.
func (g *GranularShifter) PitchSemitones() float64 { return g.semitones }

// SetPitchSemitones sets the shift, clamped to [MinSemitones, MaxSemitones].
// It takes effect at the next grain boundary.
func (g *GranularShifter) SetPitchSemitones(semitones float64) {
	g.semitones = clampSemitones(semitones)
	g.ratio = RatioFromSemitones(g.semitones)
}

// ProcessSample processes one sample.
func (g *GranularShifter) ProcessSample(input float64) float64 {
	g.line.Write(input)

	if g.pos == 0 {
		g.prevRatio = g.curRatio
		g.prevStart = g.curStart
		g.curRatio = g.ratio
		g.curStart = g.alignGrain()
	}

	var out float64
	if g.pos < g.crossfade {
		out = g.fade[g.pos]*g.readGrain(g.pos, g.curStart, g.curRatio) +
			g.fade[g.crossfade-1-g.pos]*g.readGrain(g.pos+g.hop, g.prevStart, g.prevRatio)
	} else {
		out = g.readGrain(g.pos, g.curStart, g.curRatio)
	}

	g.pos++
	if g.pos >= g.hop {
		g.pos = 0
	}

	return out
}

// ProcessInPlace processes buf in place.
func (g *GranularShifter) ProcessInPlace(buf []float64) {
	for i, x := range buf {
		buf[i] = g.ProcessSample(x)
	}
}

// Reset clears the delay line and returns the grain schedule to its state
// after construction.
func (g *GranularShifter) Reset() {
	g.line.Reset()
	g.restart()
}

func (g *GranularShifter) restart() {
	g.pos = 0
	g.curRatio = 1
	g.prevRatio = 1
	g.curStart = g.nominalStart(1)
	g.prevStart = g.curStart
}

// nominalStart is the start delay that centres a grain played at ratio r on
// a delay of W.
func (g *GranularShifter) nominalStart(r float64) float64 {
	return 0.5 * float64(g.grainSize) * (1 + r)
}

// readGrain reads offset j of a grain that started at delay start and plays
// at ratio r. Delays are measured from the sample just written, which sits at
// line tap 1.
func (g *GranularShifter) readGrain(j int, start, r float64) float64 {
	return g.line.ReadFractional(start + float64(j)*(1-r) + 1)
}

// alignGrain returns the start delay of the grain that begins now. Every
// integer offset within searchRadius of the nominal start is scored by the
// normalized correlation between the input the outgoing grain reads next and
// the input the candidate would read.
func (g *GranularShifter) alignGrain() float64 {
	old := g.prevStart + float64(g.hop)*(1-g.prevRatio) + 1
	oldTap := int(math.Round(old))

	for m := range g.ref {
		g.ref[m] = g.line.Read(oldTap - m)
	}

	top := int(math.Round(g.nominalStart(g.curRatio)+1)) + searchRadius
	for i := range g.span {
		g.span[i] = g.line.Read(top - i)
	}

	f64.ConvolveValid(g.xcorr, g.span, g.ref)
	f64.Mul(g.spanSq, g.span, g.span)
	f64.ConvolveValid(g.energy, g.spanSq, g.ones)

	refEnergy := f64.DotProduct(g.ref, g.ref) + matchFloor

	best := searchRadius
	bestScore := math.Inf(-1)

	for t, dot := range g.xcorr {
		dist := math.Abs(float64(searchRadius-t)) / searchRadius
		score := dot/math.Sqrt(refEnergy*(g.energy[t]+matchFloor)) - searchBias*dist

		if score > bestScore {
			bestScore = score
			best = t
		}
	}

	// Offset by whole samples so the fractional read position carries over.
	return old - 1 + float64(top-best-oldTap)
}
