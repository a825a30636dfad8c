package level

import (
	"math"

	"github.com/tphakala/simd/f64"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Stats holds time-domain signal statistics.
type Stats struct {
	Length        int
	Mean          float64
	Variance      float64 // population variance
	RMS           float64
	RMSDB         float64
	Peak          float64 // max(|max|, |min|)
	PeakDB        float64
	CrestDB       float64 // peak / RMS in dB
	ZeroCrossings int
}

// ampToDB converts an amplitude to dB. Zero maps to -Inf.
func ampToDB(value float64) float64 {
	a := math.Abs(value)
	if a == 0 {
		return math.Inf(-1)
	}

	return 20 * math.Log10(a)
}

func emptyStats() Stats {
	return Stats{
		RMSDB:  math.Inf(-1),
		PeakDB: math.Inf(-1),
	}
}

func finish(n int, sumSq, peak, mean, variance float64, crossings int) Stats {
	rms := math.Sqrt(sumSq / float64(n))

	var crest float64
	if rms > 0 {
		crest = ampToDB(peak / rms)
	}

	return Stats{
		Length:        n,
		Mean:          mean,
		Variance:      variance,
		RMS:           rms,
		RMSDB:         ampToDB(rms),
		Peak:          peak,
		PeakDB:        ampToDB(peak),
		CrestDB:       crest,
		ZeroCrossings: crossings,
	}
}

// Calculate computes all statistics of signal.
func Calculate(signal []float64) Stats {
	n := len(signal)
	if n == 0 {
		return emptyStats()
	}

	mean := f64.Sum(signal) / float64(n)
	variance := stat.PopVariance(signal, nil)
	peak := math.Max(math.Abs(floats.Max(signal)), math.Abs(floats.Min(signal)))

	return finish(n, floats.Dot(signal, signal), peak, mean, variance, ZeroCrossings(signal))
}

// RMS returns the root-mean-square of signal.
func RMS(signal []float64) float64 {
	if len(signal) == 0 {
		return 0
	}

	return math.Sqrt(floats.Dot(signal, signal) / float64(len(signal)))
}

// RMSDB returns the RMS level in dBFS, or -Inf for silence.
func RMSDB(signal []float64) float64 {
	return ampToDB(RMS(signal))
}

// ZeroCrossings counts sign changes between consecutive samples.
func ZeroCrossings(signal []float64) int {
	var count int

	for i := 1; i < len(signal); i++ {
		if signal[i-1]*signal[i] < 0 {
			count++
		}
	}

	return count
}

// Meter accumulates statistics across blocks.
type Meter struct {
	n          int
	sum        float64
	sumSq      float64
	peak       float64
	crossings  int
	lastSample float64
}

// NewMeter returns an empty meter.
func NewMeter() *Meter {
	return &Meter{}
}

// Update adds a block of samples.
func (m *Meter) Update(samples []float64) {
	for _, x := range samples {
		if m.n > 0 && m.lastSample*x < 0 {
			m.crossings++
		}

		m.n++
		m.sum += x
		m.sumSq += x * x
		m.peak = max(m.peak, math.Abs(x))
		m.lastSample = x
	}
}

// Result returns the statistics of everything seen so far.
func (m *Meter) Result() Stats {
	if m.n == 0 {
		return emptyStats()
	}

	nf := float64(m.n)
	mean := m.sum / nf
	variance := max(0, m.sumSq/nf-mean*mean)

	return finish(m.n, m.sumSq, m.peak, mean, variance, m.crossings)
}

// Reset clears all accumulated data.
func (m *Meter) Reset() {
	*m = Meter{}
}
