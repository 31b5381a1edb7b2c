package signal

import (
	"testing"

	"github.com/schollz/collidertracker/internal/coretypes"
	"github.com/stretchr/testify/assert"
)

func TestOscillatorSineBalance(t *testing.T) {
	sr := coretypes.NewSampleRate(44100)
	osc := NewOscillator(WaveformSine, sr)
	osc.SetFrequency(1.0)

	positive, negative, zero := 0, 0, 0
	const zeroEpsilon = 1e-9
	for i := 0; i < sr.Value(); i++ {
		v := osc.Tick().Value()
		switch {
		case v > zeroEpsilon:
			positive++
		case v < -zeroEpsilon:
			negative++
		default:
			zero++
		}
	}

	assert.Equal(t, positive, negative, "one period of a sine should balance positive and negative samples")
	assert.Equal(t, 2, zero, "one period of a sine crosses zero exactly twice")
}

func TestOscillatorSquareAlwaysFullAmplitude(t *testing.T) {
	sr := coretypes.NewSampleRate(44100)
	for _, freq := range []coretypes.FrequencyHz{1, 100, 440, 1000, 10000, 20000} {
		osc := NewOscillator(WaveformSquare, sr)
		osc.SetFrequency(freq)
		for i := 0; i < 2000; i++ {
			v := osc.Tick().Value()
			assert.True(t, v == 1 || v == -1, "freq=%v sample=%v", freq, v)
		}
	}
}

func TestOscillatorPulseWidthFullAmplitude(t *testing.T) {
	sr := coretypes.NewSampleRate(44100)
	osc := NewOscillator(WaveformPulseWidth, sr)
	osc.SetFrequency(220)
	osc.SetPulseWidth(coretypes.NewNormal(0.25))
	for i := 0; i < 1000; i++ {
		v := osc.Tick().Value()
		assert.True(t, v == 1 || v == -1)
	}
}

func TestOscillatorTriangleAndSawtoothBounded(t *testing.T) {
	sr := coretypes.NewSampleRate(44100)
	for _, wf := range []Waveform{WaveformTriangle, WaveformSawtooth} {
		osc := NewOscillator(wf, sr)
		osc.SetFrequency(440)
		for i := 0; i < 1000; i++ {
			v := osc.Tick().Value()
			assert.GreaterOrEqual(t, v, -1.0)
			assert.LessOrEqual(t, v, 1.0)
		}
	}
}

func TestOscillatorAdjustedFrequency(t *testing.T) {
	sr := coretypes.NewSampleRate(44100)
	osc := NewOscillator(WaveformSine, sr)
	osc.SetFrequency(440)
	osc.SetTune(2.0)
	osc.SetFm(1.0)    // +1 octave
	osc.SetLinearFm(0) // no additive offset
	assert.InDelta(t, 440*2*2, osc.AdjustedFrequency().Value(), 1e-9)
}

func TestOscillatorShouldSyncOnWrap(t *testing.T) {
	sr := coretypes.NewSampleRate(100)
	osc := NewOscillator(WaveformSine, sr)
	osc.SetFrequency(1) // wraps once per 100 ticks
	synced := false
	for i := 0; i < 100; i++ {
		osc.Tick()
		if osc.ShouldSync() {
			synced = true
		}
	}
	assert.True(t, synced, "phase should wrap and set shouldSync within one period")
}

func TestOscillatorNoiseIsBoundedAndVaries(t *testing.T) {
	sr := coretypes.NewSampleRate(44100)
	osc := NewOscillator(WaveformNoise, sr)
	osc.SetFrequency(100)
	seen := map[float64]bool{}
	for i := 0; i < 200; i++ {
		v := osc.Tick().Value()
		assert.GreaterOrEqual(t, v, -1.0)
		assert.LessOrEqual(t, v, 1.0)
		seen[v] = true
	}
	assert.Greater(t, len(seen), 1, "noise should not repeat the same value every tick")
}
