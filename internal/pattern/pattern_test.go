package pattern

import (
	"testing"

	"github.com/schollz/collidertracker/internal/coretypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmptyPatternIsOneBar(t *testing.T) {
	p := NewPattern(coretypes.CommonTime)
	assert.Equal(t, coretypes.NewFromBeats(4), p.Duration())
}

func TestPatternDurationRoundsUpToNextBar(t *testing.T) {
	p := NewPattern(coretypes.CommonTime)
	n, err := coretypes.NewNote(60, coretypes.Zero, coretypes.NewFromUnits(coretypes.UnitsPerBeat*5))
	require.NoError(t, err)
	p.AddNote(n)

	// a note ending mid-way through bar 2 (beat 5) rounds up to 2 bars
	assert.Equal(t, coretypes.NewFromBeats(8), p.Duration())
}

func TestPatternDurationExactBarBoundaryDoesNotExtend(t *testing.T) {
	p := NewPattern(coretypes.CommonTime)
	n, err := coretypes.NewNote(60, coretypes.Zero, coretypes.NewFromBeats(4))
	require.NoError(t, err)
	p.AddNote(n)

	assert.Equal(t, coretypes.NewFromBeats(4), p.Duration())
}

func TestNoteEventsSortedAndPaired(t *testing.T) {
	p := NewPattern(coretypes.CommonTime)
	n1, _ := coretypes.NewNote(60, coretypes.NewFromBeats(1), coretypes.NewFromBeats(2))
	n2, _ := coretypes.NewNote(64, coretypes.Zero, coretypes.NewFromBeats(1))
	p.AddNote(n1)
	p.AddNote(n2)

	events := p.NoteEvents()
	require.Len(t, events, 4)
	assert.Equal(t, coretypes.Zero, events[0].Time)
	assert.True(t, events[0].IsNoteOn)
	assert.Equal(t, 64, events[0].Key)

	// at beat 1: n2's note-off and n1's note-on land at the same
	// instant; note-off must sort first.
	assert.Equal(t, coretypes.NewFromBeats(1), events[1].Time)
	assert.False(t, events[1].IsNoteOn)
	assert.Equal(t, coretypes.NewFromBeats(1), events[2].Time)
	assert.True(t, events[2].IsNoteOn)
}

func TestArrangementEndFor(t *testing.T) {
	a := Arrangement{Start: coretypes.NewFromBeats(2)}
	end := a.EndFor(coretypes.NewFromBeats(4))
	assert.Equal(t, coretypes.NewFromBeats(6), end)
}
