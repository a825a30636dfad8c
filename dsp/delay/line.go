// Package delay provides the circular delay line shared by the echo and the
// granular pitch shifter.
package delay

import (
	"fmt"
	"math"

	"github.com/ALH477/DeMoD-Vox/dsp/interp"
)

// Line is a circular delay line. Its storage is rounded up to a power of two
// so wrap-around is a mask.
type Line struct {
	buffer   []float64
	mask     int
	writePos int
}

// New returns a delay line that can look back at least size samples.
func New(size int) (*Line, error) {
	if size <= 0 {
		return nil, fmt.Errorf("delay size must be > 0: %d", size)
	}

	n := 1
	for n < size {
		n <<= 1
	}

	return &Line{buffer: make([]float64, n), mask: n - 1}, nil
}

// Len returns the internal buffer size.
func (d *Line) Len() int {
	return len(d.buffer)
}

// Write writes one sample.
func (d *Line) Write(sample float64) {
	d.buffer[d.writePos] = sample
	d.writePos = (d.writePos + 1) & d.mask
}

// Read returns the sample written delay writes ago. Read(1) is the most
// recent write.
func (d *Line) Read(delay int) float64 {
	return d.buffer[(d.writePos-delay)&d.mask]
}

// ReadFractional reads between Read(floor(delay)) and Read(floor(delay)+1)
// with cubic Hermite interpolation. delay is clamped to [1, Len()-2].
func (d *Line) ReadFractional(delay float64) float64 {
	maxDelay := float64(len(d.buffer) - 2)
	if delay < 1 || math.IsNaN(delay) {
		delay = 1
	} else if delay > maxDelay {
		delay = maxDelay
	}

	p := int(delay)
	t := delay - float64(p)

	xm1 := d.Read(max(1, p-1))
	x0 := d.Read(p)
	x1 := d.Read(p + 1)
	x2 := d.Read(p + 2)

	return interp.Hermite4(t, xm1, x0, x1, x2)
}

// Reset clears line state.
func (d *Line) Reset() {
	clear(d.buffer)
	d.writePos = 0
}
