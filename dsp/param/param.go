// Package param converts raw normalized control values into audio-safe
// parameters: exponential range mapping plus one-pole smoothing advanced
// once per control tick. The smoothing removes zipper noise when a knob
// value steps between ticks.
package param

import (
	"math"

	"github.com/cwbudde/algo-pedal/dsp/core"
)

const minExpRange = 1e-6

// MapExp maps a normalized knob in [0, 1] into [min, max] exponentially:
//
//	value = min * (max/min)^knob
//
// Equal knob travel covers equal musical intervals, which is how delay
// time, decay time, and blend controls are expected to feel. min is
// floored to a small positive value so the ratio is always defined.
func MapExp(knob, min, max float64) float64 {
	knob = core.Clamp01(knob)
	if min < minExpRange {
		min = minExpRange
	}
	if max < min {
		max = min
	}
	return min * math.Pow(max/min, knob)
}

// MapLin maps a normalized knob in [0, 1] linearly into [min, max].
func MapLin(knob, min, max float64) float64 {
	return min + core.Clamp01(knob)*(max-min)
}

// Smoothed is a one-pole smoothed parameter. SetTarget is called by the
// control-rate routine; Tick advances the current value toward the target:
//
//	current += coef * (target - current)
//
// The current value converges monotonically and is never discontinuous
// unless Snap is called explicitly.
type Smoothed struct {
	target  float64
	current float64
	coef    float64
}

// NewSmoothed creates a smoothed parameter starting at initial with the
// given smoothing coefficient in (0, 1].
func NewSmoothed(initial, coef float64) *Smoothed {
	return &Smoothed{
		target:  initial,
		current: initial,
		coef:    core.Clamp(coef, 1e-4, 1),
	}
}

// CoefFromTime derives a smoothing coefficient from a time constant in
// milliseconds and the rate at which Tick is called.
func CoefFromTime(timeConstantMs, tickRateHz float64) float64 {
	if timeConstantMs <= 0 || tickRateHz <= 0 {
		return 1
	}
	return 1 - math.Exp(-1000/(timeConstantMs*tickRateHz))
}

// SetTarget updates the value the parameter converges toward.
func (s *Smoothed) SetTarget(v float64) {
	s.target = v
}

// Snap jumps both target and current to v with no smoothing.
func (s *Smoothed) Snap(v float64) {
	s.target = v
	s.current = v
}

// Tick advances the current value one smoothing step and returns it.
func (s *Smoothed) Tick() float64 {
	s.current += s.coef * (s.target - s.current)
	return s.current
}

// Current returns the present smoothed value without advancing it.
func (s *Smoothed) Current() float64 { return s.current }

// Target returns the value the parameter is converging toward.
func (s *Smoothed) Target() float64 { return s.target }
