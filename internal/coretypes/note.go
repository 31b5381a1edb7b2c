package coretypes

import (
	"fmt"

	"github.com/schollz/collidertracker/internal/engineerr"
)

// Note is a single MIDI key held over a half-open MusicalTime range. It
// becomes two MIDI events: NoteOn at Range.Start (velocity 127) and
// NoteOff at Range.End.
type Note struct {
	Key   int   `json:"key"`
	Range Range `json:"range"`
}

// DefaultVelocity is the fixed velocity used for NoteOn events emitted
// from a Pattern.
const DefaultVelocity = 127

// NewNote validates 0 <= key <= 127 and start < end.
func NewNote(key int, start, end MusicalTime) (Note, error) {
	if key < 0 || key > 127 {
		return Note{}, fmt.Errorf("midi key %d out of range [0,127]: %w", key, engineerr.InvalidArgument)
	}
	if !(start < end) {
		return Note{}, fmt.Errorf("note start %d must be before end %d: %w", start, end, engineerr.InvalidArgument)
	}
	return Note{Key: key, Range: NewRange(start, end)}, nil
}
