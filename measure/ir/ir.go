package ir

import (
	"errors"
	"math"
)

// Errors returned by IR analysis functions.
var (
	ErrEmptyIR           = errors.New("ir: impulse response is empty")
	ErrInvalidSampleRate = errors.New("ir: sample rate must be positive")
	ErrNoDecay           = errors.New("ir: insufficient decay for RT calculation")
)

// Analyzer computes decay metrics from impulse response data.
type Analyzer struct {
	SampleRate float64
}

// NewAnalyzer creates an IR analyzer with the given sample rate.
func NewAnalyzer(sampleRate float64) *Analyzer {
	return &Analyzer{SampleRate: sampleRate}
}

// SchroederIntegral computes the backward integration of the squared
// impulse response, normalized and expressed in dB:
//
//	S(t) = 10*log10( ∫_t^∞ h²(τ) dτ / ∫_0^∞ h²(τ) dτ )
//
// The curve decays smoothly even for noisy IRs, which makes it suitable
// for reverberation time estimation.
func (a *Analyzer) SchroederIntegral(impulseResponse []float64) ([]float64, error) {
	if len(impulseResponse) == 0 {
		return nil, ErrEmptyIR
	}

	return a.schroederIntegral(impulseResponse), nil
}

func (a *Analyzer) schroederIntegral(impulseResponse []float64) []float64 {
	n := len(impulseResponse)
	curve := make([]float64, n)

	var cumSum float64
	for i := n - 1; i >= 0; i-- {
		cumSum += impulseResponse[i] * impulseResponse[i]
		curve[i] = cumSum
	}

	total := curve[0]
	if total <= 0 {
		return curve
	}

	for i := range curve {
		ratio := curve[i] / total
		if ratio <= 0 {
			curve[i] = -200 // dB floor
		} else {
			curve[i] = 10 * math.Log10(ratio)
		}
	}

	return curve
}

// RT60 estimates the time for reverberant energy to decay 60 dB. It fits
// the -5..-35 dB region of the Schroeder curve (T30) and extrapolates,
// falling back to the -5..-25 dB region (T20) when the response is too
// short to reach -35 dB.
func (a *Analyzer) RT60(impulseResponse []float64) (float64, error) {
	if len(impulseResponse) == 0 {
		return 0, ErrEmptyIR
	}

	if a.SampleRate <= 0 {
		return 0, ErrInvalidSampleRate
	}

	curve := a.schroederIntegral(impulseResponse)

	if rt := a.decaySlopeRT(curve, -5, -35); rt > 0 {
		return rt, nil
	}

	if rt := a.decaySlopeRT(curve, -5, -25); rt > 0 {
		return rt, nil
	}

	return 0, ErrNoDecay
}

// decaySlopeRT fits a line to the Schroeder curve between startDB and
// endDB and extrapolates the slope to a full -60 dB decay.
func (a *Analyzer) decaySlopeRT(curve []float64, startDB, endDB float64) float64 {
	startIdx, endIdx := -1, -1

	for i, v := range curve {
		if startIdx < 0 && v <= startDB {
			startIdx = i
		}

		if startIdx >= 0 && v <= endDB {
			endIdx = i
			break
		}
	}

	if startIdx < 0 || endIdx <= startIdx {
		return 0
	}

	n := endIdx - startIdx + 1
	if n < 2 {
		return 0
	}

	var sumX, sumY, sumXX, sumXY float64
	for i := startIdx; i <= endIdx; i++ {
		x := float64(i - startIdx)
		y := curve[i]
		sumX += x
		sumY += y
		sumXX += x * x
		sumXY += x * y
	}

	nf := float64(n)

	denom := nf*sumXX - sumX*sumX
	if denom == 0 {
		return 0
	}

	slope := (nf*sumXY - sumX*sumY) / denom
	if slope >= 0 {
		return 0
	}

	rt := -60.0 / (slope * a.SampleRate)
	if rt < 0 {
		return 0
	}

	return rt
}

// DecayedBy returns the first sample index at which the Schroeder curve
// has fallen to db (a negative value) below its initial energy, or -1 if
// it never does.
func (a *Analyzer) DecayedBy(impulseResponse []float64, db float64) (int, error) {
	if len(impulseResponse) == 0 {
		return -1, ErrEmptyIR
	}

	curve := a.schroederIntegral(impulseResponse)
	for i, v := range curve {
		if v <= db {
			return i, nil
		}
	}

	return -1, nil
}

// FindPeak returns the index of the absolute maximum of the response.
func (a *Analyzer) FindPeak(impulseResponse []float64) int {
	peakIdx := 0
	peakVal := 0.0

	for i, v := range impulseResponse {
		av := math.Abs(v)
		if av > peakVal {
			peakVal = av
			peakIdx = i
		}
	}

	return peakIdx
}
