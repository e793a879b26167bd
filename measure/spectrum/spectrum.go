// Package spectrum computes magnitude spectra and simple spectral
// statistics. The voicing tests use it to verify that the bright reverb
// preset actually shifts tail energy upward.
package spectrum

import (
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"
	vecmath "github.com/cwbudde/algo-vecmath"
)

// Analyzer computes Hann-windowed magnitude spectra of real signals.
type Analyzer struct {
	size   int
	plan   *algofft.Plan[complex128]
	window []float64

	winBuf []float64
	input  []complex128
	freq   []complex128
	re, im []float64
	mags   []float64
}

// NewAnalyzer creates an analyzer for the given FFT size, which must be a
// power of two and at least 8.
func NewAnalyzer(size int) (*Analyzer, error) {
	if size < 8 || size&(size-1) != 0 {
		return nil, fmt.Errorf("spectrum: fft size must be a power of two >= 8: %d", size)
	}

	plan, err := algofft.NewPlan64(size)
	if err != nil {
		return nil, fmt.Errorf("spectrum: create FFT plan: %w", err)
	}

	window := make([]float64, size)
	for i := range window {
		window[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(size-1)))
	}

	return &Analyzer{
		size:   size,
		plan:   plan,
		window: window,
		winBuf: make([]float64, size),
		input:  make([]complex128, size),
		freq:   make([]complex128, size),
		re:     make([]float64, size),
		im:     make([]float64, size),
		mags:   make([]float64, size),
	}, nil
}

// Size returns the FFT size.
func (a *Analyzer) Size() int { return a.size }

// Magnitude computes the single-sided magnitude spectrum (size/2+1 bins)
// of the first Size samples of the input.
func (a *Analyzer) Magnitude(samples []float64) ([]float64, error) {
	if len(samples) < a.size {
		return nil, fmt.Errorf("spectrum: need at least %d samples, got %d", a.size, len(samples))
	}

	vecmath.MulBlock(a.winBuf, samples[:a.size], a.window)

	for i, v := range a.winBuf {
		a.input[i] = complex(v, 0)
	}

	if err := a.plan.Forward(a.freq, a.input); err != nil {
		return nil, fmt.Errorf("spectrum: forward FFT: %w", err)
	}

	for i, c := range a.freq {
		a.re[i] = real(c)
		a.im[i] = imag(c)
	}

	vecmath.Magnitude(a.mags, a.re, a.im)

	out := make([]float64, a.size/2+1)
	copy(out, a.mags[:len(out)])

	return out, nil
}

// Centroid returns the spectral centroid in Hz of a single-sided
// magnitude spectrum produced by Magnitude.
func (a *Analyzer) Centroid(mags []float64, sampleRate float64) float64 {
	binWidth := sampleRate / float64(a.size)

	var num, den float64
	for i, m := range mags {
		num += float64(i) * binWidth * m
		den += m
	}

	if den == 0 {
		return 0
	}

	return num / den
}
