package main

import (
	"fmt"
	"math"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const pcmFormat = 1

// monoClip is a decoded, normalized mono signal.
type monoClip struct {
	samples    []float64
	sampleRate int
	bitDepth   int
	channels   int
}

// readMonoWAV decodes path and averages all channels to mono.
func readMonoWAV(path string) (*monoClip, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer func() { _ = f.Close() }()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("invalid WAV file: %s", path)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}

	channels := buf.Format.NumChannels
	if channels < 1 {
		return nil, fmt.Errorf("invalid channel count %d in %s", channels, path)
	}

	bitDepth := int(dec.BitDepth)
	scale := 1 / fullScale(bitDepth)
	frames := len(buf.Data) / channels

	samples := make([]float64, frames)
	for i := range frames {
		var sum float64
		for ch := range channels {
			sum += float64(buf.Data[i*channels+ch])
		}

		samples[i] = sum / float64(channels) * scale
	}

	return &monoClip{
		samples:    samples,
		sampleRate: buf.Format.SampleRate,
		bitDepth:   bitDepth,
		channels:   channels,
	}, nil
}

// writeMonoWAV encodes samples as PCM at bitDepth. Samples are expected on
// the quantizer grid, so scaling by full scale yields whole numbers.
func writeMonoWAV(path string, samples []float64, sampleRate, bitDepth int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}

	enc := wav.NewEncoder(f, sampleRate, bitDepth, 1, pcmFormat)

	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           toPCM(samples, bitDepth),
		SourceBitDepth: bitDepth,
	}

	if err := enc.Write(buf); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write samples: %w", err)
	}

	if err := enc.Close(); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to finalize WAV: %w", err)
	}

	return f.Close()
}

func fullScale(bitDepth int) float64 {
	return math.Exp2(float64(bitDepth - 1))
}

func toPCM(samples []float64, bitDepth int) []int {
	fs := fullScale(bitDepth)
	lo, hi := -fs, fs-1

	out := make([]int, len(samples))
	for i, x := range samples {
		out[i] = int(max(lo, min(hi, math.Round(x*fs))))
	}

	return out
}
