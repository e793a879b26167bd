package effects

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-pedal/dsp/core"
	"github.com/cwbudde/algo-pedal/dsp/param"
)

// BypassState classifies the crossfade position. It is derived state used
// for gating and status lights, never for processing correctness.
type BypassState uint8

const (
	// StateBypassed means the crossfade weight is within epsilon of 0.
	StateBypassed BypassState = iota
	// StateTransitioning means the weight is between the extremes.
	StateTransitioning
	// StateActive means the weight is within epsilon of 1.
	StateActive
)

// String returns the state name.
func (s BypassState) String() string {
	switch s {
	case StateBypassed:
		return "bypassed"
	case StateTransitioning:
		return "transitioning"
	case StateActive:
		return "active"
	default:
		return "unknown"
	}
}

const (
	// maxBlend caps each wet blend weight at 0.5 so the two wet branches
	// can never sum past unity regardless of knob positions.
	maxBlend = 0.5

	xfadeEpsilon = 1e-3

	xfadeTimeMs = 10.0
)

// Mixer blends dry, delay-wet, and reverb-wet signals and manages the
// active/bypassed crossfade. The crossfade weight is one-pole smoothed
// per sample toward a binary target, so engaging or releasing the effect
// never steps the output.
type Mixer struct {
	delayBlend  float64
	reverbBlend float64

	xfade     float64
	xfadeCoef float64
	target    float64

	tails bool
	state BypassState
}

// NewMixer creates a mixer starting fully bypassed with tails enabled.
func NewMixer(sampleRate float64) (*Mixer, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("mixer sample rate must be > 0: %f", sampleRate)
	}

	return &Mixer{
		xfadeCoef: param.CoefFromTime(xfadeTimeMs, sampleRate),
		tails:     true,
		state:     StateBypassed,
	}, nil
}

// SetBlends sets the delay and reverb wet weights, each clamped to
// [0, 0.5]. The caller passes already-smoothed values per control tick.
func (m *Mixer) SetBlends(delayBlend, reverbBlend float64) {
	m.delayBlend = core.Clamp(delayBlend, 0, maxBlend)
	m.reverbBlend = core.Clamp(reverbBlend, 0, maxBlend)
}

// SetTails selects the bypass behavior: with tails the wet signal fades
// and keeps decaying; without, bypassing zeroes the wet path immediately.
func (m *Mixer) SetTails(tails bool) {
	m.tails = tails
}

// SetActive sets the crossfade target: true fades the wet path in, false
// fades it out. With tails disabled, deactivating snaps instead of fading.
func (m *Mixer) SetActive(active bool) {
	if active {
		m.target = 1
		return
	}

	m.target = 0
	if !m.tails {
		m.xfade = 0
		m.state = StateBypassed
	}
}

// Snap jumps the crossfade weight to its target. Used at initialization so
// the engine starts exactly at its configured state instead of fading in
// from silence.
func (m *Mixer) Snap() {
	m.xfade = m.target
	m.updateState()
}

// Mix advances the crossfade one sample and combines the three signals:
//
//	out = dry + xfade * (delayBlend*delayWet + reverbBlend*reverbWet)
//
// Dry always passes at unity, so with the wet path silent the mixer is an
// exact passthrough.
func (m *Mixer) Mix(dry, delayWet, reverbWet float64) float64 {
	m.xfade += m.xfadeCoef * (m.target - m.xfade)
	m.updateState()

	return dry + m.xfade*(m.delayBlend*delayWet+m.reverbBlend*reverbWet)
}

func (m *Mixer) updateState() {
	switch {
	case m.xfade <= xfadeEpsilon && m.target == 0:
		m.state = StateBypassed
	case m.xfade >= 1-xfadeEpsilon && m.target == 1:
		m.state = StateActive
	default:
		m.state = StateTransitioning
	}
}

// TargetActive reports whether the crossfade target is the active state.
func (m *Mixer) TargetActive() bool { return m.target == 1 }

// FullyActive reports whether the crossfade has settled at active.
func (m *Mixer) FullyActive() bool { return m.state == StateActive }

// FullyBypassed reports whether the crossfade has settled at bypassed.
func (m *Mixer) FullyBypassed() bool { return m.state == StateBypassed }

// State returns the current crossfade classification.
func (m *Mixer) State() BypassState { return m.state }

// CrossfadeWeight returns the current wet weight in [0, 1].
func (m *Mixer) CrossfadeWeight() float64 { return m.xfade }
