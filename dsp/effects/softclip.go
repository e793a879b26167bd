package effects

import (
	"fmt"
	"math"
)

const defaultClipKnee = 0.8

// SoftClip is the output safety stage: exact passthrough below the knee,
// a scaled hyperbolic tangent above it, output magnitude bounded by 1.
// At the knee the gain is exactly unity and the transfer stays C1
// continuous, so the stage is inaudible until the signal actually runs
// hot. Stateless aside from the knee constant.
type SoftClip struct {
	knee float64
}

// NewSoftClip creates a soft clipper. knee must lie in (0, 1).
func NewSoftClip(knee float64) (*SoftClip, error) {
	if knee <= 0 || knee >= 1 || math.IsNaN(knee) {
		return nil, fmt.Errorf("softclip knee must be in (0, 1): %f", knee)
	}
	return &SoftClip{knee: knee}, nil
}

// ProcessSample applies the soft-saturating transfer to one sample.
func (c *SoftClip) ProcessSample(x float64) float64 {
	ax := math.Abs(x)
	if ax <= c.knee {
		return x
	}

	headroom := 1 - c.knee
	y := c.knee + headroom*math.Tanh((ax-c.knee)/headroom)

	// Tanh saturates to exactly 1 in float64 for large arguments; pin the
	// asymptote to the largest value strictly below full scale.
	if y >= 1 {
		y = math.Nextafter(1, 0)
	}

	return math.Copysign(y, x)
}

// ProcessInPlace applies the clipper to buf in place.
func (c *SoftClip) ProcessInPlace(buf []float64) {
	for i := range buf {
		buf[i] = c.ProcessSample(buf[i])
	}
}

// Knee returns the knee level.
func (c *SoftClip) Knee() float64 { return c.knee }
