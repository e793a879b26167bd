// Command pedaldemo auditions the pedal engine. It synthesizes a
// repeating guitar-like pluck, runs it through the full effect chain,
// and plays the result on the default audio device.
//
// Usage:
//
//	pedaldemo [flags]
//
// Examples:
//
//	pedaldemo -delay 0.6 -repeats 0.7 -delayblend 0.8
//	pedaldemo -mode shimmer -decay 0.9 -reverbblend 0.8
//	pedaldemo -analyze -decay 0.7
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"time"

	"github.com/hajimehoshi/oto"

	"github.com/cwbudde/algo-pedal/dsp/core"
	"github.com/cwbudde/algo-pedal/dsp/pedal"
	"github.com/cwbudde/algo-pedal/dsp/signal"
	"github.com/cwbudde/algo-pedal/measure/ir"
	"github.com/cwbudde/algo-pedal/measure/spectrum"
)

const (
	sampleRate      = 48000
	channelNum      = 1
	bitDepthInBytes = 2

	bufferSizeInBytes = 4096

	pluckPeriodSeconds = 1.5
	pluckFreqHz        = 196.0 // G3
)

func main() {
	duration := flag.Duration("duration", 12*time.Second, "playback length")

	delay := flag.Float64("delay", 0.5, "delay time knob [0,1]")
	repeats := flag.Float64("repeats", 0.5, "repeats knob [0,1]")
	delayBlend := flag.Float64("delayblend", 0.6, "delay blend knob [0,1]")
	decay := flag.Float64("decay", 0.5, "reverb decay knob [0,1]")
	reverbBlend := flag.Float64("reverbblend", 0.5, "reverb blend knob [0,1]")
	rate := flag.Float64("rate", 0.5, "modulation rate/morph knob [0,1]")

	mode := flag.String("mode", "spring", "sweetening mode: spring, modulated, shimmer, bright-shimmer")
	modulate := flag.Bool("modulate", false, "enable delay read-offset modulation")
	bright := flag.Bool("bright", false, "bright reverb voicing")

	analyze := flag.Bool("analyze", false, "print impulse-response metrics instead of playing audio")
	flag.Parse()

	modeA, modeB, err := modeBits(*mode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	controls := pedal.Controls{
		DelayTime:   *delay,
		Repeats:     *repeats,
		DelayBlend:  *delayBlend,
		Decay:       *decay,
		ReverbBlend: *reverbBlend,
		Rate:        *rate,
		ModeA:       modeA,
		ModeB:       modeB,
		Modulate:    *modulate,
		Bright:      *bright,
		Active:      true,
	}

	engine, err := pedal.New(sampleRate)
	if err != nil {
		log.Fatalf("create engine: %v", err)
	}
	engine.SetControls(controls)

	if *analyze {
		if err := printAnalysis(engine); err != nil {
			log.Fatalf("analyze: %v", err)
		}
		return
	}

	if err := play(engine, *duration); err != nil {
		log.Fatalf("playback: %v", err)
	}
}

func modeBits(name string) (a, b bool, err error) {
	switch name {
	case "spring":
		return false, false, nil
	case "modulated":
		return true, false, nil
	case "shimmer":
		return false, true, nil
	case "bright-shimmer":
		return true, true, nil
	default:
		return false, false, fmt.Errorf("unknown mode %q", name)
	}
}

// printAnalysis feeds an impulse through the engine with both blends wide
// open and reports the measured decay and tail spectrum.
func printAnalysis(engine *pedal.Engine) error {
	gen := signal.NewGenerator(core.WithSampleRate(sampleRate))

	buf, err := gen.Impulse(sampleRate * 6)
	if err != nil {
		return err
	}
	engine.ProcessInPlace(buf)

	// Remove the dry impulse so only the wet response is measured.
	buf[0] = 0

	analyzer := ir.NewAnalyzer(sampleRate)

	rt, err := analyzer.RT60(buf)
	if err != nil {
		return fmt.Errorf("decay time: %w", err)
	}

	peakIdx := analyzer.FindPeak(buf)
	peakDB := core.LinearToDB(math.Abs(buf[peakIdx]))

	const fftSize = 4096
	an, err := spectrum.NewAnalyzer(fftSize)
	if err != nil {
		return err
	}
	mags, err := an.Magnitude(buf[sampleRate/4:])
	if err != nil {
		return err
	}

	fmt.Printf("wet RT60:          %.2f s\n", rt)
	fmt.Printf("wet peak:          %.1f dBFS at sample %d\n", peakDB, peakIdx)
	fmt.Printf("tail centroid:     %.0f Hz\n", an.Centroid(mags, sampleRate))
	return nil
}

// streamer generates the demo pluck, processes it through the engine, and
// serializes 16-bit little-endian mono for the audio device.
type streamer struct {
	engine *pedal.Engine
	pluck  []float64

	pos       int
	remaining int
}

var _ io.Reader = (*streamer)(nil)

func newStreamer(engine *pedal.Engine, duration time.Duration) (*streamer, error) {
	gen := signal.NewGenerator(core.WithSampleRate(sampleRate))

	pluck, err := gen.Pluck(pluckFreqHz, 0.6, 0.4, int(pluckPeriodSeconds*sampleRate))
	if err != nil {
		return nil, err
	}

	return &streamer{
		engine:    engine,
		pluck:     pluck,
		remaining: int(duration.Seconds() * sampleRate),
	}, nil
}

func (s *streamer) Read(buf []byte) (int, error) {
	if s.remaining <= 0 {
		return 0, io.EOF
	}

	frames := len(buf) / bitDepthInBytes
	if frames > s.remaining {
		frames = s.remaining
	}

	for i := 0; i < frames; i++ {
		out := s.engine.ProcessSample(s.pluck[s.pos])

		s.pos++
		if s.pos >= len(s.pluck) {
			s.pos = 0
		}

		v := int16(out * 32767)
		buf[2*i] = byte(v)
		buf[2*i+1] = byte(v >> 8)
	}

	s.remaining -= frames
	return frames * bitDepthInBytes, nil
}

func play(engine *pedal.Engine, duration time.Duration) error {
	ctx, err := oto.NewContext(sampleRate, channelNum, bitDepthInBytes, bufferSizeInBytes)
	if err != nil {
		return fmt.Errorf("open audio device: %w", err)
	}
	defer ctx.Close()

	s, err := newStreamer(engine, duration)
	if err != nil {
		return err
	}

	p := ctx.NewPlayer()
	defer func() {
		if err := p.Close(); err != nil {
			log.Printf("close player: %v", err)
		}
	}()

	log.Printf("playing %s of processed audio...", duration)
	if _, err := io.CopyBuffer(p, s, make([]byte, bufferSizeInBytes)); err != nil {
		return err
	}
	return nil
}
