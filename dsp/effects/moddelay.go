package effects

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-pedal/dsp/core"
	"github.com/cwbudde/algo-pedal/dsp/delay"
	"github.com/cwbudde/algo-pedal/dsp/filter/onepole"
)

const (
	// maxFeedbackGain is the safety ceiling for the repeats control.
	maxFeedbackGain = 0.95

	// holdFeedbackGain is the fixed near-unity gain used while hold is
	// engaged. It stays strictly below 1 so a held buffer always decays
	// eventually.
	holdFeedbackGain = 0.98

	minDelaySamples = 1.0
)

// ModDelay is a fractional delay line with filtered feedback and optional
// triangle-LFO read-offset modulation. The modulation wobbles only the
// read position, so the dry signal path stays in tune.
type ModDelay struct {
	sampleRate float64

	line *delay.Line
	tone *onepole.LowPass

	delaySamples    float64
	feedback        float64
	modEnabled      bool
	modDepthSamples float64
	lfoPhase        float64
	lfoInc          float64
}

// NewModDelay creates a modulated delay line sized for maxDelaySeconds.
// The buffer is allocated once here; no further allocation happens during
// processing.
func NewModDelay(sampleRate, maxDelaySeconds float64) (*ModDelay, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("moddelay sample rate must be > 0: %f", sampleRate)
	}
	if maxDelaySeconds <= 0 {
		return nil, fmt.Errorf("moddelay max delay must be > 0: %f", maxDelaySeconds)
	}

	capacity := int(math.Ceil(maxDelaySeconds*sampleRate)) + 4

	line, err := delay.New(capacity)
	if err != nil {
		return nil, err
	}

	tone, err := onepole.NewLowPass(sampleRate)
	if err != nil {
		return nil, err
	}

	return &ModDelay{
		sampleRate:   sampleRate,
		line:         line,
		tone:         tone,
		delaySamples: minDelaySamples,
	}, nil
}

// SetDelaySamples sets the base delay in samples, clamped to
// [1, capacity-2]. The caller is expected to pass an already-smoothed
// value once per control tick.
func (d *ModDelay) SetDelaySamples(samples float64) {
	d.delaySamples = core.Clamp(samples, minDelaySamples, float64(d.line.Len()-2))
}

// SetFeedback sets the repeats gain, clamped below the stability ceiling.
func (d *ModDelay) SetFeedback(gain float64) {
	d.feedback = core.Clamp(gain, 0, maxFeedbackGain)
}

// SetToneDamping sets the darkness of the feedback path in [0, 1].
// 0 leaves the feedback full-bandwidth (exact passthrough); higher values
// progressively darken each repeat, like tape echo regeneration.
func (d *ModDelay) SetToneDamping(damp float64) {
	d.tone.SetCoefficient(1 - core.Clamp01(damp))
}

// SetModulation enables or disables read-offset modulation and sets its
// depth in samples. Depth only ever adds to the base delay, so the read
// position never crosses the write cursor.
func (d *ModDelay) SetModulation(enabled bool, depthSamples float64) {
	d.modEnabled = enabled
	d.modDepthSamples = core.Clamp(depthSamples, 0, float64(d.line.Len()-2))
}

// SetModRateHz sets the triangle LFO rate.
func (d *ModDelay) SetModRateHz(rateHz float64) {
	d.lfoInc = core.Clamp(rateHz, 0, 20) / d.sampleRate
}

// ProcessSample runs one sample through the delay line.
//
// feed controls whether the input is written into the buffer; the engine
// turns it off while bypassed so stored echoes decay without new energy.
// hold swaps the repeats gain for a fixed near-unity constant; the caller
// must gate hold off whenever the engine is not fully active.
//
// The returned value is the interpolated delayed sample. The feedback
// written back is feedbackGain * tone(read) (+ input when feeding).
func (d *ModDelay) ProcessSample(in float64, feed, hold bool) float64 {
	offset := d.delaySamples
	if d.modEnabled {
		// Triangle in [0, 1]: rises for half the period, falls for the rest.
		tri := 1 - math.Abs(2*d.lfoPhase-1)
		offset += d.modDepthSamples * tri

		d.lfoPhase += d.lfoInc
		if d.lfoPhase >= 1 {
			d.lfoPhase -= 1
		}
	}

	// Linear interpolation is exact for a static offset; under a moving
	// offset the Hermite read avoids the linear kernel's amplitude ripple.
	var wet float64
	if d.modEnabled {
		wet = d.line.ReadFractionalHermite(offset)
	} else {
		wet = d.line.ReadFractional(offset)
	}

	gain := d.feedback
	if hold {
		gain = holdFeedbackGain
	}

	write := gain * d.tone.ProcessSample(wet)
	if feed {
		write += in
	}
	d.line.Write(core.FlushDenormals(write))

	return wet
}

// Reset clears the buffer, the feedback filter, and the LFO phase.
func (d *ModDelay) Reset() {
	d.line.Reset()
	d.tone.Reset()
	d.lfoPhase = 0
}

// DelaySamples returns the current base delay in samples.
func (d *ModDelay) DelaySamples() float64 { return d.delaySamples }

// Feedback returns the current repeats gain.
func (d *ModDelay) Feedback() float64 { return d.feedback }

// Capacity returns the delay buffer capacity in samples.
func (d *ModDelay) Capacity() int { return d.line.Len() }
