package dynamics

import (
	"fmt"
	"math"

	"github.com/ALH477/DeMoD-Vox/dsp/core"
)

const (
	defaultCompressorThresholdDB = -18.0
	defaultCompressorRatio       = 8.0
	defaultCompressorKneeDB      = 6.0
	defaultCompressorAttackMs    = 5.0
	defaultCompressorReleaseMs   = 60.0

	minCompressorThresholdDB = -40.0
	maxCompressorThresholdDB = 0.0
	minCompressorRatio       = 1.0
	maxCompressorRatio       = 20.0
	minCompressorAttackMs    = 0.1
	maxCompressorAttackMs    = 80.0
	minCompressorReleaseMs   = 10.0
	maxCompressorReleaseMs   = 500.0
	minCompressorKneeDB      = 3.0
	maxCompressorKneeDB      = 6.0

	// log2Of10Div20 converts dB to log2 units: log2(10) / 20.
	log2Of10Div20 = 0.166096404744
)

// CompressorMetrics holds metering information.
type CompressorMetrics struct {
	InputPeak     float64 // Maximum input level since last reset
	OutputPeak    float64 // Maximum output level since last reset
	GainReduction float64 // Minimum gain (maximum reduction) since last reset
}

// Compressor is a mono feed-forward downward compressor.
//
// A peak follower with separate attack and release time constants tracks
// the input level. The overshoot o above threshold is mapped to an
// effective overshoot
//
//	0            o <= 0
//	o^2 / (2k)   0 < o <= k
//	o - k/2      o > k
//
// where k is the knee width, and the gain is 2^(-eff*(1-1/ratio)) in log2
// units. No makeup gain is applied.
//
// A Compressor is not safe for concurrent use.
type Compressor struct {
	thresholdDB float64
	ratio       float64
	kneeDB      float64
	attackMs    float64
	releaseMs   float64

	sampleRate float64

	peakLevel float64
	lastGain  float64

	attackCoeff      float64
	releaseCoeff     float64
	thresholdLog2    float64
	kneeWidthLog2    float64
	invKneeWidthLog2 float64
	slope            float64

	metrics CompressorMetrics
}

// NewCompressor creates a soft-knee compressor with the vox defaults:
// threshold -18 dB, ratio 8:1, knee 6 dB, attack 5 ms, release 60 ms.
func NewCompressor(sampleRate float64) (*Compressor, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("compressor sample rate must be positive and finite: %f", sampleRate)
	}

	c := &Compressor{
		thresholdDB: defaultCompressorThresholdDB,
		ratio:       defaultCompressorRatio,
		kneeDB:      defaultCompressorKneeDB,
		attackMs:    defaultCompressorAttackMs,
		releaseMs:   defaultCompressorReleaseMs,
		sampleRate:  sampleRate,
	}

	c.updateCoefficients()
	c.Reset()
	return c, nil
}

// SetThreshold sets the threshold in dBFS, clamped to [-40, 0].
func (c *Compressor) SetThreshold(dB float64) {
	c.thresholdDB = core.Clamp(dB, minCompressorThresholdDB, maxCompressorThresholdDB)
	c.updateCoefficients()
}

// SetRatio sets the compression ratio, clamped to [1, 20]. Ratios below 1
// would expand and are never applied.
func (c *Compressor) SetRatio(ratio float64) {
	c.ratio = core.Clamp(ratio, minCompressorRatio, maxCompressorRatio)
	c.updateCoefficients()
}

// SetKnee sets the knee width in dB, clamped to [3, 6].
func (c *Compressor) SetKnee(kneeDB float64) {
	c.kneeDB = core.Clamp(kneeDB, minCompressorKneeDB, maxCompressorKneeDB)
	c.updateCoefficients()
}

// SetAttack sets the attack time in ms, clamped to [0.1, 80].
func (c *Compressor) SetAttack(ms float64) {
	c.attackMs = core.Clamp(ms, minCompressorAttackMs, maxCompressorAttackMs)
	c.updateTimeConstants()
}

// SetRelease sets the release time in ms, clamped to [10, 500].
func (c *Compressor) SetRelease(ms float64) {
	c.releaseMs = core.Clamp(ms, minCompressorReleaseMs, maxCompressorReleaseMs)
	c.updateTimeConstants()
}

// Threshold returns the threshold in dBFS.
func (c *Compressor) Threshold() float64 { return c.thresholdDB }

// Ratio returns the compression ratio.
func (c *Compressor) Ratio() float64 { return c.ratio }

// Knee returns the knee width in dB.
func (c *Compressor) Knee() float64 { return c.kneeDB }

// Attack returns the attack time in ms.
func (c *Compressor) Attack() float64 { return c.attackMs }

// Release returns the release time in ms.
func (c *Compressor) Release() float64 { return c.releaseMs }

// SampleRate returns the sample rate in Hz.
func (c *Compressor) SampleRate() float64 { return c.sampleRate }

// ProcessSample processes one sample through the compressor.
func (c *Compressor) ProcessSample(input float64) float64 {
	inputLevel := math.Abs(input)

	if inputLevel > c.peakLevel {
		c.peakLevel += (inputLevel - c.peakLevel) * c.attackCoeff
	} else {
		c.peakLevel = core.FlushDenormals(inputLevel + (c.peakLevel-inputLevel)*c.releaseCoeff)
	}

	gain := c.calculateGain(c.peakLevel)
	c.lastGain = gain
	output := input * gain

	c.updateMetrics(inputLevel, math.Abs(output), gain)

	return output
}

// ProcessInPlace applies compression to buf in place.
func (c *Compressor) ProcessInPlace(buf []float64) {
	for i := range buf {
		buf[i] = c.ProcessSample(buf[i])
	}
}

// CalculateOutputLevel computes the steady-state output level for a given
// input magnitude.
func (c *Compressor) CalculateOutputLevel(inputMagnitude float64) float64 {
	inputMagnitude = math.Abs(inputMagnitude)
	return inputMagnitude * c.calculateGain(inputMagnitude)
}

// GainReduction returns the reduction applied to the last sample in dB,
// as a non-negative number.
func (c *Compressor) GainReduction() float64 {
	return -core.LinearToDB(c.lastGain)
}

// Reset clears the envelope follower and metrics.
func (c *Compressor) Reset() {
	c.peakLevel = 0
	c.lastGain = 1
	c.ResetMetrics()
}

// Metrics returns current metering values.
func (c *Compressor) Metrics() CompressorMetrics {
	return c.metrics
}

// ResetMetrics clears metering state.
func (c *Compressor) ResetMetrics() {
	c.metrics = CompressorMetrics{GainReduction: 1.0}
}

func (c *Compressor) updateCoefficients() {
	c.thresholdLog2 = c.thresholdDB * log2Of10Div20
	c.kneeWidthLog2 = c.kneeDB * log2Of10Div20
	c.invKneeWidthLog2 = 1.0 / c.kneeWidthLog2
	c.slope = 1.0 - 1.0/c.ratio

	c.updateTimeConstants()
}

func (c *Compressor) updateTimeConstants() {
	// Attack: 1 - exp(-ln2 / (attack_sec * sample_rate))
	c.attackCoeff = 1.0 - math.Exp(-math.Ln2/(c.attackMs*0.001*c.sampleRate))

	// Release: exp(-ln2 / (release_sec * sample_rate))
	c.releaseCoeff = math.Exp(-math.Ln2 / (c.releaseMs * 0.001 * c.sampleRate))
}

func (c *Compressor) calculateGain(peakLevel float64) float64 {
	if peakLevel <= 0 || c.slope == 0 {
		return 1.0
	}

	overshoot := mathLog2(peakLevel) - c.thresholdLog2
	if overshoot <= 0 {
		return 1.0
	}

	var effectiveOvershoot float64
	if overshoot > c.kneeWidthLog2 {
		effectiveOvershoot = overshoot - 0.5*c.kneeWidthLog2
	} else {
		effectiveOvershoot = overshoot * overshoot * 0.5 * c.invKneeWidthLog2
	}

	return mathPower2(-effectiveOvershoot * c.slope)
}

func (c *Compressor) updateMetrics(inputLevel, outputLevel, gain float64) {
	if inputLevel > c.metrics.InputPeak {
		c.metrics.InputPeak = inputLevel
	}
	if outputLevel > c.metrics.OutputPeak {
		c.metrics.OutputPeak = outputLevel
	}
	if gain < c.metrics.GainReduction {
		c.metrics.GainReduction = gain
	}
}
