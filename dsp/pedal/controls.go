// Package pedal assembles the delay, reverb tank, sweetener, mixer, and
// output clipper into the complete effect. The engine reads a control
// snapshot once per block, smooths the continuous parameters, and runs
// the audio path sample by sample with no allocation.
package pedal

// Controls is a snapshot of the pedal's physical interface. Continuous
// controls are normalized knob positions in [0, 1]; the engine maps them
// into musical ranges and smooths them, so callers can pass raw ADC
// readings directly.
type Controls struct {
	// DelayTime sets the base echo time, 40 ms to 1.2 s, exponential.
	DelayTime float64
	// Repeats sets the echo regeneration, 0 to 0.95 linear. The top of
	// the range also darkens each repeat.
	Repeats float64
	// DelayBlend sets the echo level against the dry signal.
	DelayBlend float64
	// Decay sets the reverb RT60, 0.3 s to 8 s, exponential.
	Decay float64
	// ReverbBlend sets the reverb tail level against the dry signal.
	ReverbBlend float64
	// Rate is the shared modulation rate/morph control. It drives both
	// the delay read-offset LFO and the sweetener.
	Rate float64

	// ModeA and ModeB select the tail sweetening mode (see ModeFromBits).
	ModeA bool
	ModeB bool
	// Modulate enables delay read-offset modulation.
	Modulate bool
	// Bright selects the bright reverb voicing regardless of mode.
	Bright bool
	// Hold freezes the delay buffer at near-unity regeneration. Ignored
	// unless the effect is fully active.
	Hold bool
	// Active engages the effect; releasing it starts the bypass fade.
	Active bool
}
