package effects

import (
	"math"
	"math/rand"
	"testing"

	"github.com/cwbudde/algo-pedal/measure/ir"
	"github.com/cwbudde/algo-pedal/measure/spectrum"
)

func newTestTank(t *testing.T, sampleRate float64) *ReverbTank {
	t.Helper()

	r, err := NewReverbTank(sampleRate)
	if err != nil {
		t.Fatalf("NewReverbTank: %v", err)
	}
	return r
}

func tankImpulseResponse(r *ReverbTank, samples int) []float64 {
	out := make([]float64, samples)
	for i := range out {
		in := 0.0
		if i == 0 {
			in = 1
		}
		out[i] = r.ProcessSample(in)
	}
	return out
}

func TestReverbTankRT60MatchesTarget(t *testing.T) {
	const sampleRate = 48000.0

	tests := []struct {
		name string
		rt60 float64
	}{
		{"short", 0.5},
		{"medium", 1.0},
		{"long", 2.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestTank(t, sampleRate)
			r.SetRT60(tt.rt60)
			r.SetPreDelayMs(0)

			response := tankImpulseResponse(r, int(sampleRate*tt.rt60*1.8))

			got, err := ir.NewAnalyzer(sampleRate).RT60(response)
			if err != nil {
				t.Fatalf("RT60: %v", err)
			}

			if math.Abs(got-tt.rt60) > 0.3*tt.rt60 {
				t.Errorf("measured RT60 = %v, want %v ±30%%", got, tt.rt60)
			}
		})
	}
}

func TestReverbTankEnergyDecaysSixtyDB(t *testing.T) {
	// Concrete scenario: RT60 = 2.0 s at 48 kHz; impulse energy should be
	// 60 dB down around sample 96000.
	const (
		sampleRate = 48000.0
		rt60       = 2.0
	)

	r := newTestTank(t, sampleRate)
	r.SetRT60(rt60)

	response := tankImpulseResponse(r, int(sampleRate*3.5))

	idx, err := ir.NewAnalyzer(sampleRate).DecayedBy(response, -60)
	if err != nil {
		t.Fatalf("DecayedBy: %v", err)
	}
	if idx < 0 {
		t.Fatal("response never decayed 60 dB")
	}

	want := rt60 * sampleRate
	if math.Abs(float64(idx)-want) > 0.35*want {
		t.Errorf("-60 dB at sample %d, want ~%v", idx, want)
	}
}

func TestReverbTankBoundedForExtremeDecay(t *testing.T) {
	const sampleRate = 48000.0

	r := newTestTank(t, sampleRate)
	r.SetRT60(100) // clamps to the maximum; comb gains clamp to 0.97

	rng := rand.New(rand.NewSource(42))

	peak := 0.0
	for i := 0; i < 96000; i++ {
		out := r.ProcessSample(rng.Float64()*2 - 1)
		if math.Abs(out) > peak {
			peak = math.Abs(out)
		}
	}

	// Comb gain ceiling keeps the tank bounded even under sustained noise.
	if peak > 40 {
		t.Errorf("tank peak = %v under sustained noise, expected bounded output", peak)
	}
	if math.IsNaN(peak) || math.IsInf(peak, 0) {
		t.Fatalf("tank produced non-finite output: %v", peak)
	}
}

func TestReverbTankPreDelayPostponesOnset(t *testing.T) {
	const sampleRate = 48000.0

	withPre := newTestTank(t, sampleRate)
	withPre.SetPreDelayMs(40)

	noPre := newTestTank(t, sampleRate)
	noPre.SetPreDelayMs(0)

	onset := func(r *ReverbTank) int {
		for i := 0; i < 48000; i++ {
			in := 0.0
			if i == 0 {
				in = 1
			}
			if math.Abs(r.ProcessSample(in)) > 1e-12 {
				return i
			}
		}
		return -1
	}

	a := onset(noPre)
	b := onset(withPre)

	if a < 0 || b < 0 {
		t.Fatalf("no onset found: noPre=%d withPre=%d", a, b)
	}

	wantShift := int(40 * sampleRate / 1000)
	if b-a < wantShift-2 {
		t.Errorf("pre-delay shifted onset by %d samples, want ~%d", b-a, wantShift)
	}
}

func TestReverbTankBrightVoicingRaisesCentroid(t *testing.T) {
	const (
		sampleRate = 48000.0
		fftSize    = 4096
	)

	respond := func(bright bool) []float64 {
		r := newTestTank(t, sampleRate)
		r.SetRT60(1.5)
		r.SetBright(bright)

		// Skip the onset; analyze a tail segment.
		full := tankImpulseResponse(r, 24000)
		return full[8000 : 8000+fftSize]
	}

	a, err := spectrum.NewAnalyzer(fftSize)
	if err != nil {
		t.Fatalf("NewAnalyzer: %v", err)
	}

	warmMags, err := a.Magnitude(respond(false))
	if err != nil {
		t.Fatalf("Magnitude(warm): %v", err)
	}

	brightMags, err := a.Magnitude(respond(true))
	if err != nil {
		t.Fatalf("Magnitude(bright): %v", err)
	}

	warm := a.Centroid(warmMags, sampleRate)
	bright := a.Centroid(brightMags, sampleRate)

	if bright <= warm {
		t.Errorf("bright centroid %v Hz not above warm centroid %v Hz", bright, warm)
	}
}

func TestReverbTankResetSilences(t *testing.T) {
	r := newTestTank(t, 48000)

	for i := 0; i < 4800; i++ {
		r.ProcessSample(1)
	}
	r.Reset()

	for i := 0; i < 4800; i++ {
		if out := r.ProcessSample(0); out != 0 {
			t.Fatalf("sample %d after Reset = %v, want 0", i, out)
		}
	}
}

func TestNewReverbTankRejectsBadSampleRate(t *testing.T) {
	for _, sr := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		if _, err := NewReverbTank(sr); err == nil {
			t.Errorf("NewReverbTank(%v) should fail", sr)
		}
	}
}
