package effects

import (
	"math"
	"testing"
)

func newTestSweetener(t *testing.T) *Sweetener {
	t.Helper()

	s, err := NewSweetener(48000)
	if err != nil {
		t.Fatalf("NewSweetener: %v", err)
	}
	return s
}

func TestModeFromBits(t *testing.T) {
	tests := []struct {
		a, b bool
		want Mode
	}{
		{false, false, ModeSpring},
		{true, false, ModeModulated},
		{false, true, ModeShimmer},
		{true, true, ModeBrightShimmer},
	}

	for _, tt := range tests {
		if got := ModeFromBits(tt.a, tt.b); got != tt.want {
			t.Errorf("ModeFromBits(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestModeString(t *testing.T) {
	tests := []struct {
		mode Mode
		want string
	}{
		{ModeSpring, "spring"},
		{ModeModulated, "modulated"},
		{ModeShimmer, "shimmer"},
		{ModeBrightShimmer, "bright-shimmer"},
		{Mode(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.mode.String(); got != tt.want {
			t.Errorf("Mode(%d).String() = %q, want %q", tt.mode, got, tt.want)
		}
	}
}

func TestSpringTremoloStaysWithinDepth(t *testing.T) {
	s := newTestSweetener(t)
	s.SetMode(ModeSpring)
	s.SetRate(1)

	// Constant tail: the tremolo gain bounds the output to
	// [(1-depth)*tail, tail].
	const tail = 0.5
	lo, hi := tail*(1-springDepth), tail

	for i := 0; i < 96000; i++ {
		out := s.ProcessSample(tail, 0)
		if out < lo-1e-12 || out > hi+1e-12 {
			t.Fatalf("sample %d: spring output %v outside [%v, %v]", i, out, lo, hi)
		}
	}
}

func TestSpringTremoloActuallyModulates(t *testing.T) {
	s := newTestSweetener(t)
	s.SetMode(ModeSpring)
	s.SetRate(1)

	minOut, maxOut := math.Inf(1), math.Inf(-1)
	for i := 0; i < 96000; i++ {
		out := s.ProcessSample(1, 0)
		minOut = math.Min(minOut, out)
		maxOut = math.Max(maxOut, out)
	}

	if maxOut-minOut < 0.5*springDepth {
		t.Errorf("tremolo swing %v too small for depth %v", maxOut-minOut, springDepth)
	}
}

func TestShimmerAddsEnergyFromPreInput(t *testing.T) {
	energy := func(mode Mode) float64 {
		s := newTestSweetener(t)
		s.SetMode(mode)

		var sum float64
		for i := 0; i < 48000; i++ {
			// Steady tail plus a strong pre-reverb input.
			pre := math.Sin(2 * math.Pi * 220 * float64(i) / 48000)
			out := s.ProcessSample(0.1, pre)
			sum += out * out
		}
		return sum
	}

	base := newTestSweetener(t)
	base.SetMode(ModeSpring)

	var springEnergy float64
	for i := 0; i < 48000; i++ {
		pre := math.Sin(2 * math.Pi * 220 * float64(i) / 48000)
		out := base.ProcessSample(0.1, pre)
		springEnergy += out * out
	}

	shimmer := energy(ModeShimmer)
	brightShimmer := energy(ModeBrightShimmer)

	if shimmer <= springEnergy {
		t.Errorf("shimmer energy %v not above spring energy %v", shimmer, springEnergy)
	}

	if brightShimmer <= shimmer {
		t.Errorf("bright shimmer energy %v not above shimmer energy %v", brightShimmer, shimmer)
	}
}

func TestModulatedJitterPreservesDC(t *testing.T) {
	s := newTestSweetener(t)
	s.SetMode(ModeModulated)

	// The jitter branch modulates only the high-passed residue; a settled
	// DC tail passes nearly untouched.
	var out float64
	for i := 0; i < 96000; i++ {
		out = s.ProcessSample(0.5, 0)
	}

	if math.Abs(out-0.5) > 0.02 {
		t.Errorf("settled DC output = %v, want ~0.5", out)
	}
}

func TestModeSwitchDoesNotDiscontinue(t *testing.T) {
	s := newTestSweetener(t)
	s.SetMode(ModeModulated)

	const tail = 0.3
	var before float64
	for i := 0; i < 48000; i++ {
		before = s.ProcessSample(tail, 0)
	}

	// Switching modes keeps all filter state; the first post-switch spring
	// sample stays within the tremolo envelope of the running tail.
	s.SetMode(ModeSpring)
	after := s.ProcessSample(tail, 0)

	if math.Abs(after-before) > tail*springDepth+0.01 {
		t.Errorf("mode switch stepped output from %v to %v", before, after)
	}
}

func TestSweetenerRateClamped(t *testing.T) {
	s := newTestSweetener(t)

	s.SetRate(2)
	inc := s.lfoInc
	s.SetRate(1)
	if inc != s.lfoInc {
		t.Error("rate above 1 should clamp to 1")
	}

	s.SetRate(-1)
	inc = s.lfoInc
	s.SetRate(0)
	if inc != s.lfoInc {
		t.Error("rate below 0 should clamp to 0")
	}
}

func TestNewSweetenerRejectsBadSampleRate(t *testing.T) {
	for _, sr := range []float64{0, -48000, math.NaN()} {
		if _, err := NewSweetener(sr); err == nil {
			t.Errorf("NewSweetener(%v) should fail", sr)
		}
	}
}
