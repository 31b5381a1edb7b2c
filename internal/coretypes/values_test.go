package coretypes

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalClamps(t *testing.T) {
	assert.Equal(t, 0.0, NewNormal(-1).Value())
	assert.Equal(t, 1.0, NewNormal(2).Value())
	assert.Equal(t, 0.5, NewNormal(0.5).Value())
}

func TestBipolarNormalClamps(t *testing.T) {
	assert.Equal(t, -1.0, NewBipolarNormal(-5).Value())
	assert.Equal(t, 1.0, NewBipolarNormal(5).Value())
	assert.Equal(t, 0.0, NewBipolarNormal(0).Value())
}

func TestControlValueClamps(t *testing.T) {
	assert.Equal(t, 0.0, NewControlValue(-1).Value())
	assert.Equal(t, 1.0, NewControlValue(5).Value())
}

func TestStereoSampleAddAndScale(t *testing.T) {
	a := StereoSample{Left: 0.5, Right: -0.25}
	b := StereoSample{Left: 0.25, Right: 0.25}
	sum := a.Add(b)
	assert.InDelta(t, 0.75, float64(sum.Left), 1e-12)
	assert.InDelta(t, 0.0, float64(sum.Right), 1e-12)

	scaled := a.Scale(2)
	assert.InDelta(t, 1.0, float64(scaled.Left), 1e-12)

	assert.True(t, SilenceStereo.IsSilent())
	assert.False(t, a.IsSilent())
}

func TestFrequencyFromMidiKey(t *testing.T) {
	assert.InDelta(t, 440.0, FrequencyFromMidiKey(69).Value(), 1e-9)
	assert.InDelta(t, 220.0, FrequencyFromMidiKey(57).Value(), 1e-9)
	assert.InDelta(t, 880.0, FrequencyFromMidiKey(81).Value(), 1e-9)
}

func TestNewNoteValidation(t *testing.T) {
	_, err := NewNote(69, NewFromBeats(1), NewFromBeats(0))
	assert.Error(t, err)

	_, err = NewNote(128, NewFromBeats(0), NewFromBeats(1))
	assert.Error(t, err)

	_, err = NewNote(-1, NewFromBeats(0), NewFromBeats(1))
	assert.Error(t, err)

	n, err := NewNote(69, NewFromBeats(0), NewFromBeats(1))
	assert.NoError(t, err)
	assert.Equal(t, 69, n.Key)
}
