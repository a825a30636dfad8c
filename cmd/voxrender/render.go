package main

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/ALH477/DeMoD-Vox/dsp/core"
	"github.com/ALH477/DeMoD-Vox/dsp/dither"
	"github.com/ALH477/DeMoD-Vox/dsp/effects/pitch"
	"github.com/ALH477/DeMoD-Vox/dsp/param"
	"github.com/ALH477/DeMoD-Vox/dsp/vox"
	"github.com/ALH477/DeMoD-Vox/measure/level"
)

const renderBlock = 4096

type toneSpec struct {
	freq    float64
	amp     float64
	seconds float64
}

type renderConfig struct {
	input      string
	output     string
	tone       *toneSpec
	variant    pitch.Variant
	dither     dither.DitherType
	settings   settingList
	assumeRate bool
	seedA      uint64
	seedB      uint64
}

type renderResult struct {
	in, out   level.Stats
	outFreq   float64
	hostRate  float64
	bitDepth  int
	latency   int
	reduction float64
}

func render(cfg renderConfig) error {
	clip, err := loadSource(cfg)
	if err != nil {
		return err
	}

	res, out, err := process(cfg, clip)
	if err != nil {
		return err
	}

	container := containerDepth(res.bitDepth)
	if err := writeMonoWAV(cfg.output, out, int(core.LockedSampleRate), container); err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"output":        cfg.output,
		"variant":       cfg.variant.String(),
		"bits":          res.bitDepth,
		"container":     container,
		"latency":       res.latency,
		"in_rms_dbfs":   round2(res.in.RMSDB),
		"out_rms_dbfs":  round2(res.out.RMSDB),
		"out_peak_dbfs": round2(res.out.PeakDB),
		"out_freq_hz":   round2(res.outFreq),
		"gain_red_db":   round2(res.reduction),
	}).Info("Render complete")

	return nil
}

func loadSource(cfg renderConfig) (*monoClip, error) {
	if cfg.tone != nil {
		n := int(cfg.tone.seconds * core.LockedSampleRate)
		if n <= 0 {
			return nil, fmt.Errorf("tone duration must be > 0: %g", cfg.tone.seconds)
		}

		samples := make([]float64, n)
		w := 2 * math.Pi * cfg.tone.freq / core.LockedSampleRate

		for i := range samples {
			samples[i] = cfg.tone.amp * math.Sin(w*float64(i))
		}

		logrus.WithFields(logrus.Fields{
			"freq_hz": cfg.tone.freq,
			"amp":     cfg.tone.amp,
			"samples": n,
		}).Debug("Generated test tone")

		return &monoClip{samples: samples, sampleRate: int(core.LockedSampleRate), bitDepth: 64, channels: 1}, nil
	}

	clip, err := readMonoWAV(cfg.input)
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"input":    cfg.input,
		"rate":     clip.sampleRate,
		"bits":     clip.bitDepth,
		"channels": clip.channels,
		"samples":  len(clip.samples),
	}).Debug("Decoded input")

	if clip.channels > 1 {
		logrus.WithField("channels", clip.channels).Warn("Input is not mono; channels were averaged")
	}

	return clip, nil
}

func process(cfg renderConfig, clip *monoClip) (renderResult, []float64, error) {
	hostRate := float64(clip.sampleRate)
	if cfg.assumeRate {
		hostRate = core.LockedSampleRate
	}

	if hostRate != core.LockedSampleRate {
		logrus.WithFields(logrus.Fields{
			"rate":   clip.sampleRate,
			"locked": core.LockedSampleRate,
		}).Warn("Input rate differs from the locked rate; output will be muted (use -assume-rate to override)")
	}

	opts := []vox.Option{
		vox.WithShifter(cfg.variant),
		vox.WithHostSampleRate(hostRate),
		vox.WithDither(cfg.dither),
	}
	if cfg.seedA != 0 || cfg.seedB != 0 {
		opts = append(opts, vox.WithDitherSeeds(cfg.seedA, cfg.seedB))
	}

	chain, err := vox.New(opts...)
	if err != nil {
		return renderResult{}, nil, err
	}

	if err := cfg.settings.apply(chain.Params()); err != nil {
		return renderResult{}, nil, err
	}

	for _, a := range cfg.settings {
		logrus.WithFields(logrus.Fields{"param": a.name, "value": a.value}).Debug("Parameter set")
	}

	inMeter := level.NewMeter()
	outMeter := level.NewMeter()
	out := make([]float64, len(clip.samples))

	for start := 0; start < len(out); start += renderBlock {
		end := min(start+renderBlock, len(out))
		chain.ProcessBlock(out[start:end], clip.samples[start:end])
		inMeter.Update(clip.samples[start:end])
		outMeter.Update(out[start:end])
	}

	return renderResult{
		in:        inMeter.Result(),
		out:       outMeter.Result(),
		outFreq:   level.DominantFrequency(out, core.LockedSampleRate),
		hostRate:  hostRate,
		bitDepth:  int(chain.Params().Get(param.OutBits)),
		latency:   chain.Latency(),
		reduction: chain.GainReduction(),
	}, out, nil
}

// containerDepth maps an output word length to a WAV sample size; 20-bit
// words are carried in 24-bit samples.
func containerDepth(bits int) int {
	if bits <= 16 {
		return 16
	}

	return 24
}

func round2(x float64) float64 {
	if math.IsInf(x, 0) || math.IsNaN(x) {
		return x
	}

	return math.Round(x*100) / 100
}
