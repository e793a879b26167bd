// Package effects implements the processing stages of the pedal engine:
// the modulated echo line, the Schroeder reverb tank, the mode-dependent
// tail sweetener, the dry/wet mixer with soft bypass, and the output
// soft clipper.
//
// All stages process one sample at a time through ProcessSample and hold
// no hidden allocation in the audio path; buffers are sized once at
// construction. Parameter setters are designed to be called at control
// rate and clamp silently instead of returning errors, because an audio
// effect must keep producing sound.
package effects
