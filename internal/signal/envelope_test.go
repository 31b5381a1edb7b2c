package signal

import (
	"testing"

	"github.com/schollz/collidertracker/internal/coretypes"
	"github.com/stretchr/testify/assert"
)

func TestEnvelopeIdleInvariant(t *testing.T) {
	e := NewEnvelope(coretypes.NewSampleRate(44100))
	assert.True(t, e.IsIdle())
	for i := 0; i < 1000; i++ {
		assert.Equal(t, 0.0, e.Tick())
	}
	assert.True(t, e.IsIdle())
}

func TestEnvelopePeakOnAttack(t *testing.T) {
	sr := coretypes.NewSampleRate(44100)
	e := NewEnvelope(sr)
	e.SetAttack(coretypes.NewNormal(0.5)) // 15 seconds
	e.SetSustain(coretypes.NewNormal(1.0))
	e.TriggerAttack()

	first := e.Tick()
	assert.Greater(t, first, 0.0)

	attackSeconds := 0.5 * MaxStageSeconds
	samples := int(attackSeconds * float64(sr.Value()))
	var last float64
	for i := 1; i < samples; i++ {
		last = e.Tick()
	}
	_ = last
	assert.InDelta(t, 1.0, e.Amplitude(), 1e-9)
}

func TestEnvelopeZeroAtEndOfRelease(t *testing.T) {
	sr := coretypes.NewSampleRate(44100)
	e := NewEnvelope(sr)
	e.SetAttack(coretypes.NewNormal(0))
	e.SetDecay(coretypes.NewNormal(0))
	e.SetSustain(coretypes.NewNormal(1.0))
	e.SetRelease(coretypes.NewNormal(0.25)) // 7.5s scaled by start amplitude

	e.TriggerAttack()
	e.Tick()
	assert.Equal(t, StageSustain, e.Stage())
	assert.InDelta(t, 1.0, e.Amplitude(), 1e-9)

	e.TriggerRelease()
	releaseSeconds := 0.25 * 1.0 * MaxStageSeconds
	samples := int(releaseSeconds*float64(sr.Value())) + 2
	for i := 0; i < samples; i++ {
		e.Tick()
	}

	assert.True(t, e.IsIdle())
	assert.Equal(t, 0.0, e.Amplitude())
}

func TestEnvelopeZeroDurationAttackJumpsToDecay(t *testing.T) {
	e := NewEnvelope(coretypes.NewSampleRate(44100))
	e.SetAttack(coretypes.NewNormal(0))
	e.SetDecay(coretypes.NewNormal(0))
	e.SetSustain(coretypes.NewNormal(0.3))

	e.TriggerAttack()

	assert.Equal(t, StageSustain, e.Stage())
	assert.InDelta(t, 0.3, e.Amplitude(), 1e-9)
}

func TestEnvelopeZeroDurationDecaySetsImmediately(t *testing.T) {
	e := NewEnvelope(coretypes.NewSampleRate(44100))
	e.SetAttack(coretypes.NewNormal(0.1))
	e.SetDecay(coretypes.NewNormal(0))
	e.SetSustain(coretypes.NewNormal(0.6))
	e.TriggerAttack()

	attackSeconds := 0.1 * MaxStageSeconds
	samples := int(attackSeconds*44100) + 2
	for i := 0; i < samples; i++ {
		e.Tick()
	}

	assert.Equal(t, StageSustain, e.Stage())
	assert.InDelta(t, 0.6, e.Amplitude(), 1e-9)
}

func TestEnvelopeZeroDurationReleaseGoesIdleImmediately(t *testing.T) {
	e := NewEnvelope(coretypes.NewSampleRate(44100))
	e.SetSustain(coretypes.NewNormal(1.0))
	e.SetRelease(coretypes.NewNormal(0))
	e.TriggerAttack()
	e.Tick()

	e.TriggerRelease()

	assert.True(t, e.IsIdle())
	assert.Equal(t, 0.0, e.Amplitude())
}

func TestEnvelopeRetriggerMidReleaseStartsFromCurrentAmplitude(t *testing.T) {
	sr := coretypes.NewSampleRate(44100)
	e := NewEnvelope(sr)
	e.SetAttack(coretypes.NewNormal(0))
	e.SetDecay(coretypes.NewNormal(0))
	e.SetSustain(coretypes.NewNormal(1.0))
	e.SetRelease(coretypes.NewNormal(0.5))
	e.TriggerAttack()
	e.Tick()

	e.TriggerRelease()
	for i := 0; i < 1000; i++ {
		e.Tick()
	}
	midAmplitude := e.Amplitude()
	assert.Greater(t, midAmplitude, 0.0)
	assert.Less(t, midAmplitude, 1.0)

	e.TriggerAttack()
	next := e.Tick()
	assert.GreaterOrEqual(t, next, midAmplitude, "retrigger should not jump downward, avoiding a click")
}

func TestEnvelopeShutdownRampsToZeroQuickly(t *testing.T) {
	sr := coretypes.NewSampleRate(44100)
	e := NewEnvelope(sr)
	e.SetSustain(coretypes.NewNormal(1.0))
	e.TriggerAttack()
	e.Tick()

	e.TriggerShutdown()
	samples := int(ShutdownSeconds*float64(sr.Value())) + 2
	for i := 0; i < samples; i++ {
		e.Tick()
	}

	assert.True(t, e.IsIdle())
	assert.Equal(t, 0.0, e.Amplitude())
}
