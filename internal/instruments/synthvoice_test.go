package instruments

import (
	"testing"

	"github.com/schollz/collidertracker/internal/coretypes"
	"github.com/schollz/collidertracker/internal/midiwire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSynthVoiceSilentUntilTriggered(t *testing.T) {
	v := NewSynthVoice("voice", coretypes.NewSampleRate(44100))
	buf := make([]coretypes.StereoSample, 64)
	v.Generate(buf)
	for _, s := range buf {
		assert.True(t, s.IsSilent())
	}
}

func TestSynthVoiceNoteOnProducesSound(t *testing.T) {
	v := NewSynthVoice("voice", coretypes.NewSampleRate(44100))
	msg := midiwire.NoteOn(0, 69, 100)
	v.HandleMidiMessage(0, msg, func(midiwire.Channel, midiwire.Message) {})

	buf := make([]coretypes.StereoSample, 64)
	v.Generate(buf)

	nonSilent := false
	for _, s := range buf {
		if !s.IsSilent() {
			nonSilent = true
			break
		}
	}
	assert.True(t, nonSilent, "a triggered voice should produce audible output")
}

func TestSynthVoiceNoteOffReleases(t *testing.T) {
	v := NewSynthVoice("voice", coretypes.NewSampleRate(44100))
	v.env.SetSustain(coretypes.NewNormal(1.0))
	v.env.SetRelease(coretypes.NewNormal(0.1))

	v.HandleMidiMessage(0, midiwire.NoteOn(0, 60, 100), nil)
	buf := make([]coretypes.StereoSample, 4)
	v.Generate(buf)
	require.False(t, v.env.IsIdle())

	v.HandleMidiMessage(0, midiwire.NoteOff(0, 60), nil)
	assert.False(t, v.noteHeld)
}

func TestSynthVoiceControllableGain(t *testing.T) {
	v := NewSynthVoice("voice", coretypes.NewSampleRate(44100))
	assert.Equal(t, 5, v.ControlIndexCount())
	assert.Equal(t, "gain", v.ControlNameForIndex(ControlGain))

	v.ControlSetParamByIndex(ControlGain, coretypes.NewControlValue(0.25))
	assert.InDelta(t, 0.25, v.gain.Value(), 1e-9)
}

func TestSynthVoiceSerializeRoundTrip(t *testing.T) {
	v := NewSynthVoice("voice", coretypes.NewSampleRate(44100))
	v.ControlSetParamByIndex(ControlGain, coretypes.NewControlValue(0.4))

	data, err := v.MarshalState()
	require.NoError(t, err)

	v2 := NewSynthVoice("voice2", coretypes.NewSampleRate(44100))
	require.NoError(t, v2.UnmarshalState(data))
	assert.InDelta(t, 0.4, v2.gain.Value(), 1e-9)
}
