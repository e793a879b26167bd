// Package delay provides the circular sample store shared by every
// delay-like structure in the engine: the echo line, the reverb pre-delay,
// and the comb and allpass sections.
package delay

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-pedal/dsp/core"
	"github.com/cwbudde/algo-pedal/dsp/interp"
)

// Line is a fixed-capacity circular delay line. The write cursor advances
// by exactly one position per written sample; reads address samples behind
// the cursor.
type Line struct {
	buffer   []float64
	writePos int
}

// New returns a delay line of fixed capacity.
func New(capacity int) (*Line, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("delay capacity must be > 0: %d", capacity)
	}
	return &Line{buffer: make([]float64, capacity)}, nil
}

// Len returns the line capacity.
func (d *Line) Len() int {
	return len(d.buffer)
}

// Write writes one sample and advances the cursor.
func (d *Line) Write(sample float64) {
	d.buffer[d.writePos] = sample
	d.writePos++
	if d.writePos >= len(d.buffer) {
		d.writePos = 0
	}
}

// Read reads an integer delay in samples behind the write cursor.
// A delay of 1 returns the most recently written sample.
func (d *Line) Read(delay int) float64 {
	size := len(d.buffer)
	if delay < 1 {
		delay = 1
	}
	if delay > size {
		delay = size
	}
	readPos := (d.writePos - delay + size) % size
	return d.buffer[readPos]
}

// ReadFractional reads a non-integer delay using linear interpolation
// between the two bracketing samples. The delay is clamped to
// [1, capacity-2] so the interpolation neighbor always exists.
func (d *Line) ReadFractional(delay float64) float64 {
	if delay < 1 {
		delay = 1
	}
	maxDelay := float64(len(d.buffer) - 2)
	if delay > maxDelay {
		delay = maxDelay
	}

	p := int(math.Floor(delay))
	t := delay - float64(p)

	return interp.Linear(t, d.Read(p), d.Read(p+1))
}

// ReadFractionalHermite reads a non-integer delay using 4-point Hermite
// interpolation, which stays smoother than linear while the read offset
// is in motion. The delay is clamped to [2, capacity-3] so all four
// neighbors exist.
func (d *Line) ReadFractionalHermite(delay float64) float64 {
	if delay < 2 {
		delay = 2
	}
	maxDelay := float64(len(d.buffer) - 3)
	if delay > maxDelay {
		delay = maxDelay
	}

	p := int(math.Floor(delay))
	t := delay - float64(p)

	return interp.Hermite4(t, d.Read(p-1), d.Read(p), d.Read(p+1), d.Read(p+2))
}

// Reset clears line state.
func (d *Line) Reset() {
	core.Zero(d.buffer)
	d.writePos = 0
}
