// Package ir estimates reverberation decay metrics from an impulse
// response using Schroeder backward integration. The reverb tank tests
// use it to verify that the RT60-to-comb-gain derivation produces the
// requested decay time.
package ir
