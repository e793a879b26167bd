package effects

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-pedal/dsp/core"
	"github.com/cwbudde/algo-pedal/dsp/filter/onepole"
	"github.com/cwbudde/algo-pedal/dsp/param"
)

// Mode selects the tail sweetening algorithm. It is decoded from the two
// mode toggle bits and changes only at control-tick rate.
type Mode uint8

const (
	// ModeSpring amplitude-modulates the tail with a slow sine tremolo.
	ModeSpring Mode = iota
	// ModeModulated adds chorus-like jitter to the tail.
	ModeModulated
	// ModeShimmer feeds a harmonic-energy proxy of the pre-reverb signal
	// into the tail. This approximates octave-up shimmer; it is not a
	// pitch shifter.
	ModeShimmer
	// ModeBrightShimmer is ModeShimmer with a stronger send and the
	// bright reverb voicing.
	ModeBrightShimmer
)

// ModeFromBits decodes the two mode toggle bits.
func ModeFromBits(a, b bool) Mode {
	switch {
	case !a && !b:
		return ModeSpring
	case a && !b:
		return ModeModulated
	case !a && b:
		return ModeShimmer
	default:
		return ModeBrightShimmer
	}
}

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeSpring:
		return "spring"
	case ModeModulated:
		return "modulated"
	case ModeShimmer:
		return "shimmer"
	case ModeBrightShimmer:
		return "bright-shimmer"
	default:
		return "unknown"
	}
}

const (
	springDepth  = 0.35
	jitterAmount = 0.4

	shimmerSend       = 0.35
	brightShimmerSend = 0.6

	// Per-mode LFO rate windows in Hz, all driven by the one shared
	// rate/morph control.
	springRateMinHz  = 0.8
	springRateMaxHz  = 8.0
	jitterRateMinHz  = 0.05
	jitterRateMaxHz  = 1.2
	shimmerRateMinHz = 0.1
	shimmerRateMaxHz = 2.0

	jitterLPCutoffHz = 800.0
	brightHPCutoffHz = 2000.0
)

// Sweetener post-processes the reverb tail differently per mode. Switching
// modes changes only which branch runs; no buffers are reset, so a mode
// change never clicks.
type Sweetener struct {
	sampleRate float64

	mode     Mode
	rateKnob float64

	lfoPhase float64
	lfoInc   float64

	jitterLP *onepole.LowPass
	brightHP *onepole.HighPass
}

// NewSweetener creates a sweetener in ModeSpring with the rate control
// centered.
func NewSweetener(sampleRate float64) (*Sweetener, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("sweetener sample rate must be > 0: %f", sampleRate)
	}

	jitterLP, err := onepole.NewLowPass(sampleRate)
	if err != nil {
		return nil, err
	}
	jitterLP.SetCutoffHz(jitterLPCutoffHz)

	brightHP, err := onepole.NewHighPass(sampleRate, brightHPCutoffHz)
	if err != nil {
		return nil, err
	}

	s := &Sweetener{
		sampleRate: sampleRate,
		jitterLP:   jitterLP,
		brightHP:   brightHP,
		rateKnob:   0.5,
	}
	s.updateRate()

	return s, nil
}

// SetMode selects the sweetening variant and re-derives the LFO increment
// for the new mode's frequency window.
func (s *Sweetener) SetMode(m Mode) {
	if m > ModeBrightShimmer {
		m = ModeSpring
	}
	s.mode = m
	s.updateRate()
}

// SetRate maps the shared normalized rate/morph control into the current
// mode's frequency window.
func (s *Sweetener) SetRate(knob float64) {
	s.rateKnob = core.Clamp01(knob)
	s.updateRate()
}

func (s *Sweetener) updateRate() {
	var hz float64
	switch s.mode {
	case ModeSpring:
		hz = param.MapExp(s.rateKnob, springRateMinHz, springRateMaxHz)
	case ModeModulated:
		hz = param.MapExp(s.rateKnob, jitterRateMinHz, jitterRateMaxHz)
	default:
		hz = param.MapExp(s.rateKnob, shimmerRateMinHz, shimmerRateMaxHz)
	}
	s.lfoInc = hz / s.sampleRate
}

// ProcessSample sweetens one tail sample. preInput is the signal entering
// the reverb tank this sample; the shimmer variants derive their harmonic
// proxy from it.
func (s *Sweetener) ProcessSample(tail, preInput float64) float64 {
	lfo := 0.5 * (1 + math.Sin(2*math.Pi*s.lfoPhase))

	s.lfoPhase += s.lfoInc
	if s.lfoPhase >= 1 {
		s.lfoPhase -= 1
	}

	switch s.mode {
	case ModeSpring:
		gain := (1 - springDepth) + springDepth*lfo
		return tail * gain

	case ModeModulated:
		jitter := (tail - s.jitterLP.ProcessSample(tail)) * (2*lfo - 1) * jitterAmount
		return tail + jitter

	default:
		// Harmonic-energy proxy: the rectified pre-reverb signal minus its
		// high-passed version. An approximation of octave-up content, not
		// a pitch shift.
		mag := math.Abs(preInput)
		proxy := mag - s.brightHP.ProcessSample(mag)

		send := shimmerSend
		if s.mode == ModeBrightShimmer {
			send = brightShimmerSend
		}

		return tail + send*(0.75+0.25*lfo)*proxy
	}
}

// Reset clears the internal filters and the LFO phase.
func (s *Sweetener) Reset() {
	s.jitterLP.Reset()
	s.brightHP.Reset()
	s.lfoPhase = 0
}

// Mode returns the active sweetening variant.
func (s *Sweetener) Mode() Mode { return s.mode }
