package pitch

import (
	"fmt"
	"math"

	"github.com/ALH477/DeMoD-Vox/dsp/core"
	"github.com/ALH477/DeMoD-Vox/dsp/window"
	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"
	"github.com/tphakala/simd/f64"
)

const (
	// DefaultFrameSize is the FFT size N in samples.
	DefaultFrameSize = 2048
	// DefaultAnalysisHop is the hop between frames in samples.
	DefaultAnalysisHop = 512
)

// SpectralShifter is a streaming phase vocoder. Every hop samples it
// transforms the last N inputs, moves each bin to k*r with its instantaneous
// frequency scaled by r, resynthesises and overlap-adds the frame.
//
// Analysis and synthesis use the same periodic Hann window, so the output is
// normalised by the constant overlap-add gain of the squared window. The
// processing delay is exactly N samples.
//
// This processor is mono and not thread-safe.
type SpectralShifter struct {
	sampleRate float64
	semitones  float64
	ratio      float64

	frameSize int
	hop       int
	olaScale  float64

	plan   *algofft.Plan[complex128]
	window []float64
	omega  []float64

	// inBuf holds the last N inputs; the newest hop are filled sample by sample.
	inBuf    []float64
	accum    []float64
	outQueue []float64
	fill     int

	prevPhase []float64
	sumPhase  []float64

	frame       []float64
	spectrum    []complex128
	synthesis   []complex128
	timeFrame   []complex128
	re          []float64
	im          []float64
	magnitudes  []float64
	instFreqs   []float64
	shiftedMag  []float64
	shiftedFreq []float64
}

// NewSpectralShifter returns a phase vocoder with N = 2048 and hop 512.
func NewSpectralShifter(sampleRate float64) (*SpectralShifter, error) {
	if err := core.ValidateSampleRate("spectral pitch shifter", sampleRate); err != nil {
		return nil, err
	}

	s := &SpectralShifter{
		sampleRate: sampleRate,
		ratio:      1,
		frameSize:  DefaultFrameSize,
		hop:        DefaultAnalysisHop,
	}

	if err := s.rebuildState(); err != nil {
		return nil, err
	}

	return s, nil
}

// SampleRate returns the sample rate in Hz.
func (s *SpectralShifter) SampleRate() float64 { return s.sampleRate }

// Latency returns the processing delay in samples.
func (s *SpectralShifter) Latency() int { return s.frameSize }

// FrameSize returns N in samples.
func (s *SpectralShifter) FrameSize() int { return s.frameSize }

// AnalysisHop returns the hop between frames in samples.
func (s *SpectralShifter) AnalysisHop() int { return s.hop }

// PitchRatio returns the pitch ratio.
func (s *SpectralShifter) PitchRatio() float64 { return s.ratio }

// PitchSemitones returns the shift in semitones.
func (s *SpectralShifter) PitchSemitones() float64 { return s.semitones }

// SetPitchSemitones sets the shift, clamped to [MinSemitones, MaxSemitones].
// It takes effect at the next frame.
func (s *SpectralShifter) SetPitchSemitones(semitones float64) {
	s.semitones = clampSemitones(semitones)
	s.ratio = RatioFromSemitones(s.semitones)
}

// ProcessSample processes one sample.
func (s *SpectralShifter) ProcessSample(input float64) float64 {
	s.inBuf[s.frameSize-s.hop+s.fill] = input
	out := s.outQueue[s.fill]

	s.fill++
	if s.fill == s.hop {
		s.fill = 0
		s.processFrame()
	}

	return out
}

// ProcessInPlace processes buf in place.
func (s *SpectralShifter) ProcessInPlace(buf []float64) {
	for i, x := range buf {
		buf[i] = s.ProcessSample(x)
	}
}

// Reset clears all frame buffers and phase history.
func (s *SpectralShifter) Reset() {
	clear(s.inBuf)
	clear(s.accum)
	clear(s.outQueue)
	clear(s.prevPhase)
	clear(s.sumPhase)
	s.fill = 0
}

func (s *SpectralShifter) processFrame() {
	n := s.frameSize
	half := n / 2
	hopF := float64(s.hop)
	ratio := s.ratio

	if err := window.ApplyCoefficients(s.frame, s.inBuf, s.window); err != nil {
		s.emitSilence()
		return
	}

	for i, v := range s.frame {
		s.spectrum[i] = complex(v, 0)
	}

	if err := s.plan.Forward(s.spectrum, s.spectrum); err != nil {
		s.emitSilence()
		return
	}

	for k := 0; k <= half; k++ {
		s.re[k] = real(s.spectrum[k])
		s.im[k] = imag(s.spectrum[k])
	}

	vecmath.Magnitude(s.magnitudes, s.re, s.im)

	for k := 0; k <= half; k++ {
		phase := math.Atan2(s.im[k], s.re[k])
		delta := wrapPhase(phase - s.prevPhase[k] - s.omega[k]*hopF)
		s.instFreqs[k] = s.omega[k] + delta/hopF
		s.prevPhase[k] = phase
	}

	for k := 0; k <= half; k++ {
		srcK := float64(k) / ratio
		if srcK > float64(half) {
			s.shiftedMag[k] = 0
			s.shiftedFreq[k] = s.omega[k]

			continue
		}

		lo := int(srcK)
		frac := srcK - float64(lo)
		hi := min(lo+1, half)
		s.shiftedMag[k] = s.magnitudes[lo]*(1-frac) + s.magnitudes[hi]*frac
		s.shiftedFreq[k] = (s.instFreqs[lo]*(1-frac) + s.instFreqs[hi]*frac) * ratio
	}

	for k := 0; k <= half; k++ {
		s.sumPhase[k] = wrapPhase(s.sumPhase[k] + s.shiftedFreq[k]*hopF)
		sin, cos := math.Sincos(s.sumPhase[k])
		s.synthesis[k] = complex(s.shiftedMag[k]*cos, s.shiftedMag[k]*sin)
	}

	// Hermitian mirror so the inverse transform is real.
	s.synthesis[0] = complex(real(s.synthesis[0]), 0)
	s.synthesis[half] = complex(real(s.synthesis[half]), 0)

	for k := 1; k < half; k++ {
		v := s.synthesis[k]
		s.synthesis[n-k] = complex(real(v), -imag(v))
	}

	if err := s.plan.Inverse(s.timeFrame, s.synthesis); err != nil {
		s.emitSilence()
		return
	}

	for i, v := range s.timeFrame {
		s.frame[i] = real(v)
	}

	if err := window.ApplyCoefficientsInPlace(s.frame, s.window); err != nil {
		s.emitSilence()
		return
	}

	vecmath.AddBlockInPlace(s.accum, s.frame)

	s.advance()
}

// advance publishes the first hop of the accumulator and shifts both the
// accumulator and the input window by one hop.
func (s *SpectralShifter) advance() {
	n := s.frameSize
	h := s.hop

	f64.Scale(s.outQueue, s.accum[:h], s.olaScale)

	copy(s.accum, s.accum[h:])
	clear(s.accum[n-h:])
	copy(s.inBuf, s.inBuf[h:])
}

// emitSilence drops the current frame after a transform failure.
func (s *SpectralShifter) emitSilence() {
	clear(s.frame)
	s.advance()
	clear(s.outQueue)
}

func (s *SpectralShifter) rebuildState() error {
	n := s.frameSize
	if n <= 0 || n&(n-1) != 0 {
		return fmt.Errorf("spectral pitch shifter: frame size must be a power of 2: %d", n)
	}

	if s.hop <= 0 || s.hop > n || n%s.hop != 0 {
		return fmt.Errorf("spectral pitch shifter: hop must divide frame size: %d", s.hop)
	}

	plan, err := algofft.NewPlan64(n)
	if err != nil {
		return fmt.Errorf("spectral pitch shifter: failed to create FFT plan: %w", err)
	}

	s.plan = plan
	s.window = window.Generate(window.TypeHann, n, window.WithPeriodic())

	gain, err := window.OverlapAddGain(s.window, s.hop)
	if err != nil {
		return fmt.Errorf("spectral pitch shifter: %w", err)
	}

	s.olaScale = 1 / gain

	bins := n/2 + 1

	s.omega = make([]float64, bins)
	for k := range bins {
		s.omega[k] = 2 * math.Pi * float64(k) / float64(n)
	}

	s.inBuf = make([]float64, n)
	s.accum = make([]float64, n)
	s.outQueue = make([]float64, s.hop)
	s.fill = 0

	s.prevPhase = make([]float64, bins)
	s.sumPhase = make([]float64, bins)

	s.frame = make([]float64, n)
	s.spectrum = make([]complex128, n)
	s.synthesis = make([]complex128, n)
	s.timeFrame = make([]complex128, n)
	s.re = make([]float64, bins)
	s.im = make([]float64, bins)
	s.magnitudes = make([]float64, bins)
	s.instFreqs = make([]float64, bins)
	s.shiftedMag = make([]float64, bins)
	s.shiftedFreq = make([]float64, bins)

	return nil
}
