package coretypes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeSignatureConstruction(t *testing.T) {
	validBottoms := []int{1, 2, 4, 8, 16, 32, 64, 128, 256, 512}
	for _, b := range validBottoms {
		ts, err := NewTimeSignature(4, b)
		require.NoError(t, err, "bottom=%d", b)
		assert.Equal(t, 4, ts.Top)
		assert.Equal(t, b, ts.Bottom)
	}

	invalidBottoms := []int{0, 3, 5, 6, 7, 9, 513, -4}
	for _, b := range invalidBottoms {
		_, err := NewTimeSignature(4, b)
		assert.Error(t, err, "bottom=%d", b)
	}

	_, err := NewTimeSignature(0, 4)
	assert.Error(t, err)

	_, err = NewTimeSignature(-1, 4)
	assert.Error(t, err)
}

func TestCommonAndCutTime(t *testing.T) {
	assert.Equal(t, TimeSignature{Top: 4, Bottom: 4}, CommonTime)
	assert.Equal(t, TimeSignature{Top: 2, Bottom: 2}, CutTime)
}

func TestMusicalTimeRoundTripFrames(t *testing.T) {
	tempo := NewTempo(128)
	sr := NewSampleRate(32768)

	for bar := uint64(0); bar <= 64; bar++ {
		for beat := uint64(0); beat < 4; beat++ {
			for part := uint64(0); part < 16; part++ {
				mt := NewWithBarBeatPart(CommonTime, bar, beat, part, 0)
				frames := mt.AsFrames(tempo, sr)
				roundTripped := NewWithFrames(tempo, sr, frames)
				assert.Equal(t, mt.Units(), roundTripped.Units(), "bar=%d beat=%d part=%d", bar, beat, part)
			}
		}
	}
}

func TestMusicalTimeArithmeticSaturates(t *testing.T) {
	a := NewFromBeats(1)
	b := NewFromBeats(2)
	assert.Equal(t, NewFromBeats(3), a.Add(b))
	assert.Equal(t, MusicalTime(0), a.Sub(b), "subtracting past zero saturates at zero")
	assert.Equal(t, NewFromBeats(4), a.Mul(4))
	assert.Equal(t, NewFromBeats(0), MusicalTime(0).Div(4))
}

func TestRangeContainsAndIntersects(t *testing.T) {
	r := NewRange(NewFromBeats(0), NewFromBeats(4))
	assert.True(t, r.Contains(NewFromBeats(0)))
	assert.True(t, r.Contains(NewFromBeats(3)))
	assert.False(t, r.Contains(NewFromBeats(4)))

	overlap := NewRange(NewFromBeats(3), NewFromBeats(5))
	assert.True(t, r.Intersects(overlap))

	disjoint := NewRange(NewFromBeats(4), NewFromBeats(5))
	assert.False(t, r.Intersects(disjoint))
}

func TestTempoClamp(t *testing.T) {
	assert.Equal(t, MaxTempo, NewTempo(2000).Value())
	assert.Equal(t, MinTempo, NewTempo(-10).Value())
	assert.Equal(t, 128.0, DefaultTempo.Value())
	assert.Equal(t, "128.00 BPM", DefaultTempo.String())
}

func TestTempoControlValueMapping(t *testing.T) {
	assert.InDelta(t, MinTempo, TempoFromControlValue(0).Value(), 1e-9)
	assert.InDelta(t, MaxTempo, TempoFromControlValue(1).Value(), 1e-9)
	mid := TempoFromControlValue(0.5)
	assert.InDelta(t, (MinTempo+MaxTempo)/2, mid.Value(), 1e-9)
	assert.InDelta(t, 0.5, ControlValueFromTempo(mid).Value(), 1e-9)
}

func TestSampleRateDefaultsOnZero(t *testing.T) {
	assert.Equal(t, DefaultSampleRateHz, NewSampleRate(0).Value())
	assert.Equal(t, 48000, NewSampleRate(48000).Value())
}
