// Package signal implements the two reference signal primitives spec §4.4
// names: a band-limited-style Oscillator and a curve-shaped ADSR
// Envelope. Both are grounded on original_source/core/src/generators.rs's
// KahanSum phase accumulator and 3x3 curve-coefficient solve.
package signal

import (
	"math"

	"github.com/schollz/collidertracker/internal/coretypes"
)

// Waveform selects the oscillator's output shape. PulseWidth's duty
// cycle is a separate field on Oscillator (Go has no associated-data
// enum variants), read only when Waveform is PulseWidth.
type Waveform int

const (
	WaveformNone Waveform = iota
	WaveformSine
	WaveformSquare
	WaveformPulseWidth
	WaveformTriangle
	WaveformSawtooth
	WaveformNoise
	WaveformDebugZero
	WaveformDebugMax
	WaveformDebugMin
)

// Oscillator produces a BipolarNormal lazy sequence via per-tick phase
// advance. Cycle-position math uses Kahan compensated summation because
// phase error accumulates over thousands of ticks and becomes an
// audible artifact.
type Oscillator struct {
	waveform   Waveform
	pulseWidth coretypes.Normal // duty cycle, used only for WaveformPulseWidth

	baseFrequency coretypes.FrequencyHz
	tune          float64 // multiplicative tuning factor, default 1.0
	fm            float64 // octave-range exponential FM modulation, [-1,1]
	linearFm      float64 // additive FM modulation

	sampleRate coretypes.SampleRate

	cyclePosition float64
	kahanC        float64 // Kahan compensation term
	shouldSync    bool    // set when cyclePosition wraps past 1.0

	noiseA, noiseB uint32 // xorshift-like 32-bit state pair
}

// NewOscillator constructs a zero-frequency, zero-phase oscillator at the given
// sample rate with tune=1.0.
func NewOscillator(waveform Waveform, sampleRate coretypes.SampleRate) *Oscillator {
	return &Oscillator{
		waveform:   waveform,
		pulseWidth: coretypes.NewNormal(0.5),
		tune:       1.0,
		sampleRate: sampleRate,
		noiseA:     0x9e3779b9,
		noiseB:     0x85ebca6b,
	}
}

func (o *Oscillator) SetWaveform(w Waveform)             { o.waveform = w }
func (o *Oscillator) SetPulseWidth(d coretypes.Normal)   { o.pulseWidth = d }
func (o *Oscillator) SetFrequency(f coretypes.FrequencyHz) { o.baseFrequency = f }
func (o *Oscillator) SetTune(t float64)                  { o.tune = t }
func (o *Oscillator) SetFm(fm float64)                   { o.fm = clampUnit(fm) }
func (o *Oscillator) SetLinearFm(v float64)              { o.linearFm = v }

// UpdateSampleRate implements entity.Configurable.
func (o *Oscillator) UpdateSampleRate(sr coretypes.SampleRate) { o.sampleRate = sr }

// AdjustedFrequency is base * tune * (2^fm + linearFm), per spec §4.4.
func (o *Oscillator) AdjustedFrequency() coretypes.FrequencyHz {
	return coretypes.FrequencyHz(o.baseFrequency.Value() * o.tune * (math.Pow(2, o.fm) + o.linearFm))
}

// ShouldSync reports whether the most recent Tick wrapped the cycle
// position past 1.0; downstream oscillators may use this to reset phase.
func (o *Oscillator) ShouldSync() bool { return o.shouldSync }

// Reset zeroes the phase accumulator and its Kahan compensation term.
func (o *Oscillator) Reset() {
	o.cyclePosition = 0
	o.kahanC = 0
	o.shouldSync = false
}

// Tick advances the phase by one sample and returns the waveform value
// at the new cycle position.
func (o *Oscillator) Tick() coretypes.BipolarNormal {
	sr := float64(o.sampleRate.Value())
	if sr <= 0 {
		return 0
	}
	delta := o.AdjustedFrequency().Value() / sr
	o.advancePhaseKahan(delta)
	return coretypes.NewBipolarNormal(o.valueAt(o.cyclePosition))
}

// advancePhaseKahan adds delta to cyclePosition using Kahan compensated
// summation, then wraps at 1.0.
func (o *Oscillator) advancePhaseKahan(delta float64) {
	y := delta - o.kahanC
	t := o.cyclePosition + y
	o.kahanC = (t - o.cyclePosition) - y
	o.cyclePosition = t

	if o.cyclePosition >= 1.0 {
		o.cyclePosition -= 1.0
		o.shouldSync = true
	} else {
		o.shouldSync = false
	}
}

func (o *Oscillator) valueAt(p float64) float64 {
	switch o.waveform {
	case WaveformNone:
		return 0
	case WaveformSine:
		return math.Sin(2 * math.Pi * p)
	case WaveformSquare:
		return -signNonZero(p - 0.5)
	case WaveformPulseWidth:
		return -signNonZero(p - o.pulseWidth.Value())
	case WaveformTriangle:
		return 4*math.Abs(p-math.Floor(p+0.5)) - 1
	case WaveformSawtooth:
		return 2 * (p - math.Floor(p+0.5))
	case WaveformNoise:
		return o.nextNoise()
	case WaveformDebugZero:
		return 0
	case WaveformDebugMax:
		return 1
	case WaveformDebugMin:
		return -1
	default:
		return 0
	}
}

// nextNoise advances a two-register xorshift32 pair and returns a
// bipolar uniform sample.
func (o *Oscillator) nextNoise() float64 {
	a := o.noiseA
	a ^= a << 13
	a ^= a >> 17
	a ^= a << 5
	o.noiseA = a

	b := o.noiseB
	b ^= b << 5
	b ^= b >> 7
	b ^= b << 22
	o.noiseB = b

	combined := a ^ b
	return (float64(combined)/float64(math.MaxUint32))*2 - 1
}

// signNonZero returns 1 for x >= 0 and -1 for x < 0. Unlike math.Signbit
// semantics, it never returns 0, so square/pulse waveforms always emit
// a full-amplitude sample (spec §8's "every sample is ±1" invariant).
func signNonZero(x float64) float64 {
	if x >= 0 {
		return 1
	}
	return -1
}

func clampUnit(v float64) float64 {
	if v < -1 {
		return -1
	}
	if v > 1 {
		return 1
	}
	return v
}
