// Package onepole implements first-order recursive filters. Every filter
// in the pedal engine is first-order: the feedback tone filter inside the
// echo line, the reverb tail tone filter, the comb damping filters, and
// the smoothing filters used by the tail sweetener.
package onepole

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-pedal/dsp/core"
)

// LowPass is a one-pole low-pass filter:
//
//	y += a * (x - y)
//
// with a in [0, 1]. a = 1 is an exact passthrough, a = 0 holds the
// current state forever.
type LowPass struct {
	sampleRate float64
	coef       float64
	state      float64
}

// NewLowPass creates a low-pass filter. The filter starts fully open
// (passthrough) until a cutoff or coefficient is set.
func NewLowPass(sampleRate float64) (*LowPass, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("onepole sample rate must be > 0: %f", sampleRate)
	}
	return &LowPass{sampleRate: sampleRate, coef: 1}, nil
}

// SetCutoffHz derives the coefficient from a cutoff frequency. Cutoffs at
// or above 0.49 * sampleRate open the filter completely (exact
// passthrough); lower values are clamped to 10 Hz.
func (f *LowPass) SetCutoffHz(cutoff float64) {
	if cutoff >= 0.49*f.sampleRate {
		f.coef = 1
		return
	}
	cutoff = core.Clamp(cutoff, 10, 0.49*f.sampleRate)
	f.coef = 1 - math.Exp(-2*math.Pi*cutoff/f.sampleRate)
}

// SetCoefficient sets the smoothing coefficient directly, clamped to [0, 1].
// Comb damping uses this form: coefficient = 1 - damping.
func (f *LowPass) SetCoefficient(a float64) {
	f.coef = core.Clamp01(a)
}

// Coefficient returns the current smoothing coefficient.
func (f *LowPass) Coefficient() float64 { return f.coef }

// ProcessSample filters one sample.
func (f *LowPass) ProcessSample(x float64) float64 {
	if f.coef >= 1 {
		f.state = x
		return x
	}
	f.state += f.coef * (x - f.state)
	f.state = core.FlushDenormals(f.state)
	return f.state
}

// Reset clears filter state.
func (f *LowPass) Reset() {
	f.state = 0
}

// HighPass is a one-pole high-pass filter realized as the input minus its
// low-passed version.
type HighPass struct {
	lp *LowPass
}

// NewHighPass creates a high-pass filter with the given cutoff.
func NewHighPass(sampleRate, cutoffHz float64) (*HighPass, error) {
	lp, err := NewLowPass(sampleRate)
	if err != nil {
		return nil, err
	}
	lp.SetCutoffHz(cutoffHz)
	return &HighPass{lp: lp}, nil
}

// SetCutoffHz updates the corner frequency.
func (f *HighPass) SetCutoffHz(cutoff float64) {
	f.lp.SetCutoffHz(cutoff)
}

// ProcessSample filters one sample.
func (f *HighPass) ProcessSample(x float64) float64 {
	return x - f.lp.ProcessSample(x)
}

// Reset clears filter state.
func (f *HighPass) Reset() {
	f.lp.Reset()
}
