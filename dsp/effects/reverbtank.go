package effects

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-pedal/dsp/core"
	"github.com/cwbudde/algo-pedal/dsp/delay"
	"github.com/cwbudde/algo-pedal/dsp/filter/onepole"
)

const (
	tankCombCount    = 4
	tankAllpassCount = 2

	// Line lengths in samples at the 44.1 kHz reference rate. The comb
	// lengths are mutually prime-ish so their resonances never coincide.
	tankReferenceRate = 44100.0

	tankAllpassGain = 0.5

	minRT60Seconds = 0.1
	maxRT60Seconds = 10.0

	minCombFeedback = 0.3
	maxCombFeedback = 0.97

	maxPreDelayMs = 50.0

	// Tail tone presets.
	warmCutoffHz   = 2800.0
	brightCutoffHz = 6500.0
)

var (
	tankCombLengths    = [tankCombCount]int{1116, 1277, 1422, 1617}
	tankAllpassLengths = [tankAllpassCount]int{556, 341}
)

// tankComb is a feedback comb filter with a gain derived from a target
// decay time.
type tankComb struct {
	line     *delay.Line
	length   int
	feedback float64
}

func (c *tankComb) process(in float64) float64 {
	out := c.line.Read(c.length)
	c.line.Write(core.FlushDenormals(in + c.feedback*out))
	return out
}

// tankAllpass is a first-order Schroeder allpass:
//
//	y = -g*x + buffered
//	write = x + g*y
type tankAllpass struct {
	line   *delay.Line
	length int
	gain   float64
}

func (a *tankAllpass) process(in float64) float64 {
	buffered := a.line.Read(a.length)
	out := -a.gain*in + buffered
	a.line.Write(core.FlushDenormals(in + a.gain*out))
	return out
}

// ReverbTank is a mono Schroeder reverb: a short pre-delay into four
// parallel combs, two series allpasses, and a one-pole tail tone filter
// switched between a warm and a bright voicing.
type ReverbTank struct {
	sampleRate float64

	pre             *delay.Line
	preDelaySamples int

	combs     [tankCombCount]tankComb
	allpasses [tankAllpassCount]tankAllpass

	tail *onepole.LowPass

	rt60   float64
	bright bool
}

// NewReverbTank creates a reverb tank for the given sample rate. All line
// lengths are scaled from the 44.1 kHz reference tuning.
func NewReverbTank(sampleRate float64) (*ReverbTank, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("reverbtank sample rate must be > 0: %f", sampleRate)
	}

	scale := sampleRate / tankReferenceRate

	r := &ReverbTank{sampleRate: sampleRate}

	preCap := int(math.Ceil(maxPreDelayMs*sampleRate/1000)) + 2

	var err error

	r.pre, err = delay.New(preCap)
	if err != nil {
		return nil, err
	}

	for i := range r.combs {
		length := scaledLineLength(tankCombLengths[i], scale)

		line, err := delay.New(length)
		if err != nil {
			return nil, err
		}

		r.combs[i] = tankComb{line: line, length: length}
	}

	for i := range r.allpasses {
		length := scaledLineLength(tankAllpassLengths[i], scale)

		line, err := delay.New(length)
		if err != nil {
			return nil, err
		}

		r.allpasses[i] = tankAllpass{line: line, length: length, gain: tankAllpassGain}
	}

	r.tail, err = onepole.NewLowPass(sampleRate)
	if err != nil {
		return nil, err
	}

	r.SetPreDelayMs(12)
	r.SetRT60(2)
	r.SetBright(false)

	return r, nil
}

func scaledLineLength(reference int, scale float64) int {
	length := int(math.Round(float64(reference) * scale))
	if length < 2 {
		length = 2
	}
	return length
}

// SetRT60 sets the target decay time in seconds and recomputes every
// comb's feedback gain so each loop loses 60 dB over the decay time:
//
//	fb = 10^(-3 * delaySamples / (RT60 * sampleRate))
//
// Gains are clamped to [0.3, 0.97] so the tank stays bounded for any
// requested decay. Call at control-tick rate, not per sample.
func (r *ReverbTank) SetRT60(seconds float64) {
	r.rt60 = core.Clamp(seconds, minRT60Seconds, maxRT60Seconds)

	for i := range r.combs {
		loopDB := -60 * float64(r.combs[i].length) / (r.rt60 * r.sampleRate)
		r.combs[i].feedback = core.Clamp(core.DBToLinear(loopDB), minCombFeedback, maxCombFeedback)
	}
}

// SetBright switches the tail tone filter between the warm and bright
// voicing presets.
func (r *ReverbTank) SetBright(bright bool) {
	r.bright = bright
	if bright {
		r.tail.SetCutoffHz(brightCutoffHz)
	} else {
		r.tail.SetCutoffHz(warmCutoffHz)
	}
}

// SetPreDelayMs sets the pre-delay in milliseconds, clamped to [0, 50].
func (r *ReverbTank) SetPreDelayMs(ms float64) {
	ms = core.Clamp(ms, 0, maxPreDelayMs)
	r.preDelaySamples = int(math.Round(ms * r.sampleRate / 1000))
}

// ProcessSample runs one sample through the tank and returns the wet
// signal only; dry mixing happens in the Mixer.
func (r *ReverbTank) ProcessSample(in float64) float64 {
	r.pre.Write(in)

	v := in
	if r.preDelaySamples > 0 {
		v = r.pre.Read(r.preDelaySamples)
	}

	var sum float64
	for i := range r.combs {
		sum += r.combs[i].process(v)
	}
	sum /= tankCombCount

	for i := range r.allpasses {
		sum = r.allpasses[i].process(sum)
	}

	return r.tail.ProcessSample(sum)
}

// Reset clears every line and filter in the tank.
func (r *ReverbTank) Reset() {
	r.pre.Reset()
	for i := range r.combs {
		r.combs[i].line.Reset()
	}
	for i := range r.allpasses {
		r.allpasses[i].line.Reset()
	}
	r.tail.Reset()
}

// RT60 returns the target decay time in seconds.
func (r *ReverbTank) RT60() float64 { return r.rt60 }

// Bright reports whether the bright voicing is selected.
func (r *ReverbTank) Bright() bool { return r.bright }
