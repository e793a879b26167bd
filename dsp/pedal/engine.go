package pedal

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-pedal/dsp/effects"
	"github.com/cwbudde/algo-pedal/dsp/param"
)

const (
	defaultBlockSize       = 48
	defaultMaxDelaySeconds = 1.3
	defaultLimiterKnee     = 0.8

	// Knob ranges.
	minDelayMs   = 40.0
	maxDelayMs   = 1200.0
	maxRepeats   = 0.95
	minBlend     = 0.005
	maxBlend     = 0.5
	minDecaySecs = 0.3
	maxDecaySecs = 8.0
	minModRateHz = 0.25
	maxModRateHz = 3.0

	// Below this knob position a blend control means "off", so silent
	// paths cost nothing audible.
	blendOffThreshold = 0.02

	// Repeats positions above this knee progressively darken the
	// feedback path, like worn tape.
	dampingKneeKnob = 0.55
	maxToneDamping  = 0.6

	// Read-offset modulation depth presets in milliseconds.
	lightModDepthMs = 2.0
	deepModDepthMs  = 7.0

	// Smoothing time constants at control-tick rate.
	tonalSmoothingMs = 80.0
	fastSmoothingMs  = 25.0
)

type engineConfig struct {
	blockSize       int
	tails           bool
	maxDelaySeconds float64
	limiterKnee     float64
}

// Option configures an Engine at construction time.
type Option func(*engineConfig)

// WithBlockSize sets the control-tick block size in samples.
func WithBlockSize(samples int) Option {
	return func(cfg *engineConfig) {
		if samples > 0 {
			cfg.blockSize = samples
		}
	}
}

// WithTails selects the bypass behavior: with tails (the default) stored
// echoes and reverb decay audibly after bypassing; without, bypass mutes
// the wet path immediately.
func WithTails(tails bool) Option {
	return func(cfg *engineConfig) {
		cfg.tails = tails
	}
}

// WithMaxDelaySeconds sets the delay buffer size. It must cover the
// longest delay time plus modulation depth.
func WithMaxDelaySeconds(seconds float64) Option {
	return func(cfg *engineConfig) {
		if seconds > 0 {
			cfg.maxDelaySeconds = seconds
		}
	}
}

// WithLimiterKnee sets the output soft-clipper knee in (0, 1).
func WithLimiterKnee(knee float64) Option {
	return func(cfg *engineConfig) {
		cfg.limiterKnee = knee
	}
}

// Engine is the complete pedal: modulated delay into reverb tank into
// sweetener, blended by the mixer and bounded by the output clipper.
//
// The engine is not safe for concurrent use; call SetControls and the
// process methods from the audio goroutine.
type Engine struct {
	sampleRate float64
	blockSize  int

	mod   *effects.ModDelay
	tank  *effects.ReverbTank
	sweet *effects.Sweetener
	mixer *effects.Mixer
	clip  *effects.SoftClip

	delaySamples *param.Smoothed
	feedback     *param.Smoothed
	toneDamp     *param.Smoothed
	decay        *param.Smoothed
	delayBlend   *param.Smoothed
	reverbBlend  *param.Smoothed
	rate         *param.Smoothed

	controls   Controls
	holdActive bool

	firstTick     bool
	sampleCounter int
}

// New creates an engine for the given sample rate. The default
// configuration matches the hardware target: 48-sample blocks, tails-on
// bypass, 1.3 s of delay memory, and a 0.8 clipper knee.
func New(sampleRate float64, opts ...Option) (*Engine, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("engine sample rate must be > 0: %f", sampleRate)
	}

	cfg := engineConfig{
		blockSize:       defaultBlockSize,
		tails:           true,
		maxDelaySeconds: defaultMaxDelaySeconds,
		limiterKnee:     defaultLimiterKnee,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	neededSeconds := maxDelayMs/1000 + deepModDepthMs/1000
	if cfg.maxDelaySeconds < neededSeconds {
		return nil, fmt.Errorf("engine delay memory %.3fs too small for %.3fs maximum delay",
			cfg.maxDelaySeconds, neededSeconds)
	}

	mod, err := effects.NewModDelay(sampleRate, cfg.maxDelaySeconds)
	if err != nil {
		return nil, err
	}

	tank, err := effects.NewReverbTank(sampleRate)
	if err != nil {
		return nil, err
	}

	sweet, err := effects.NewSweetener(sampleRate)
	if err != nil {
		return nil, err
	}

	mixer, err := effects.NewMixer(sampleRate)
	if err != nil {
		return nil, err
	}
	mixer.SetTails(cfg.tails)

	clip, err := effects.NewSoftClip(cfg.limiterKnee)
	if err != nil {
		return nil, err
	}

	tickRate := sampleRate / float64(cfg.blockSize)
	tonalCoef := param.CoefFromTime(tonalSmoothingMs, tickRate)
	fastCoef := param.CoefFromTime(fastSmoothingMs, tickRate)

	return &Engine{
		sampleRate: sampleRate,
		blockSize:  cfg.blockSize,

		mod:   mod,
		tank:  tank,
		sweet: sweet,
		mixer: mixer,
		clip:  clip,

		delaySamples: param.NewSmoothed(minDelayMs*sampleRate/1000, tonalCoef),
		feedback:     param.NewSmoothed(0, tonalCoef),
		toneDamp:     param.NewSmoothed(0, tonalCoef),
		decay:        param.NewSmoothed(minDecaySecs, tonalCoef),
		delayBlend:   param.NewSmoothed(0, fastCoef),
		reverbBlend:  param.NewSmoothed(0, fastCoef),
		rate:         param.NewSmoothed(0.5, fastCoef),

		firstTick: true,
	}, nil
}

// SetControls installs a control snapshot. It takes effect at the next
// control tick, so values may be written at any rate without zipper
// noise.
func (e *Engine) SetControls(c Controls) {
	e.controls = c
}

// mapBlend converts a blend knob into a wet weight, exponential with a
// hard "off" region at the bottom of the travel.
func mapBlend(knob float64) float64 {
	if knob <= blendOffThreshold {
		return 0
	}
	return param.MapExp(knob, minBlend, maxBlend)
}

// controlTick maps the installed control snapshot into block parameters
// and advances every smoother one step. On the first tick all smoothers
// and the bypass crossfade snap directly to their targets, so the engine
// starts in its configured state instead of fading in.
func (e *Engine) controlTick() {
	c := e.controls
	mode := effects.ModeFromBits(c.ModeA, c.ModeB)

	e.delaySamples.SetTarget(param.MapExp(c.DelayTime, minDelayMs, maxDelayMs) * e.sampleRate / 1000)
	e.feedback.SetTarget(param.MapLin(c.Repeats, 0, maxRepeats))

	damp := 0.0
	if c.Repeats > dampingKneeKnob {
		damp = (c.Repeats - dampingKneeKnob) / (1 - dampingKneeKnob) * maxToneDamping
	}
	e.toneDamp.SetTarget(damp)

	e.decay.SetTarget(param.MapExp(c.Decay, minDecaySecs, maxDecaySecs))
	e.delayBlend.SetTarget(mapBlend(c.DelayBlend))
	e.reverbBlend.SetTarget(mapBlend(c.ReverbBlend))
	e.rate.SetTarget(c.Rate)

	if e.firstTick {
		e.delaySamples.Snap(e.delaySamples.Target())
		e.feedback.Snap(e.feedback.Target())
		e.toneDamp.Snap(e.toneDamp.Target())
		e.decay.Snap(e.decay.Target())
		e.delayBlend.Snap(e.delayBlend.Target())
		e.reverbBlend.Snap(e.reverbBlend.Target())
		e.rate.Snap(e.rate.Target())
	}

	e.mod.SetDelaySamples(e.delaySamples.Tick())
	e.mod.SetFeedback(e.feedback.Tick())
	e.mod.SetToneDamping(e.toneDamp.Tick())

	depthMs := lightModDepthMs
	if mode == effects.ModeModulated {
		depthMs = deepModDepthMs
	}
	e.mod.SetModulation(c.Modulate, depthMs*e.sampleRate/1000)

	rate := e.rate.Tick()
	e.mod.SetModRateHz(param.MapExp(rate, minModRateHz, maxModRateHz))

	e.tank.SetRT60(e.decay.Tick())
	e.tank.SetBright(c.Bright || mode == effects.ModeBrightShimmer)

	e.sweet.SetMode(mode)
	e.sweet.SetRate(rate)

	e.mixer.SetBlends(e.delayBlend.Tick(), e.reverbBlend.Tick())
	e.mixer.SetActive(c.Active)

	if e.firstTick {
		e.mixer.Snap()
		e.firstTick = false
	}

	// Hold only engages once the crossfade has settled at active, so a
	// footswitch held through the engage fade cannot freeze a half-faded
	// buffer.
	e.holdActive = c.Hold && e.mixer.FullyActive()
}

// ProcessSample runs one sample through the full chain. Control ticks
// happen automatically every block-size samples.
func (e *Engine) ProcessSample(in float64) float64 {
	if e.sampleCounter == 0 {
		e.controlTick()
	}
	e.sampleCounter++
	if e.sampleCounter >= e.blockSize {
		e.sampleCounter = 0
	}

	// While bypassed the delay stops accepting input but keeps reading,
	// so stored repeats decay through their own feedback path.
	feed := e.mixer.TargetActive()

	delayWet := e.mod.ProcessSample(in, feed, e.holdActive)

	reverbWet := e.tank.ProcessSample(delayWet)
	reverbWet = e.sweet.ProcessSample(reverbWet, delayWet)

	out := e.mixer.Mix(in, delayWet, reverbWet)

	// A settled bypass is bit-exact passthrough for any input level, so
	// the output limiter only runs while any wet signal is audible.
	if e.mixer.FullyBypassed() {
		return out
	}

	return e.clip.ProcessSample(out)
}

// ProcessInPlace runs buf through the chain in place.
func (e *Engine) ProcessInPlace(buf []float64) {
	for i := range buf {
		buf[i] = e.ProcessSample(buf[i])
	}
}

// Reset clears all audio state. Control targets are kept; the next tick
// snaps smoothers back to them.
func (e *Engine) Reset() {
	e.mod.Reset()
	e.tank.Reset()
	e.sweet.Reset()
	e.sampleCounter = 0
	e.firstTick = true
	e.holdActive = false
}

// HoldActive reports whether the hold latch is currently engaged.
func (e *Engine) HoldActive() bool { return e.holdActive }

// EffectActive reports whether the crossfade has settled fully active.
func (e *Engine) EffectActive() bool { return e.mixer.FullyActive() }

// Bypassed reports whether the crossfade has settled fully bypassed.
func (e *Engine) Bypassed() bool { return e.mixer.FullyBypassed() }

// Mode returns the sweetening mode decoded from the current controls.
func (e *Engine) Mode() effects.Mode {
	return effects.ModeFromBits(e.controls.ModeA, e.controls.ModeB)
}

// SampleRate returns the engine sample rate.
func (e *Engine) SampleRate() float64 { return e.sampleRate }

// BlockSize returns the control-tick block size in samples.
func (e *Engine) BlockSize() int { return e.blockSize }
