// Package pattern holds the Note/Pattern/Arrangement timeline types
// (spec §3) and the bottom-up pattern-duration calculation.
package pattern

import (
	"sort"

	"github.com/schollz/collidertracker/internal/coretypes"
	"github.com/schollz/collidertracker/internal/midiwire"
)

// Pattern is a time-signature-scoped set of notes. Duration is always
// derived from the notes rather than stored, so it can never drift out
// of sync with them.
type Pattern struct {
	TimeSignature coretypes.TimeSignature
	Notes         []coretypes.Note
}

// NewPattern returns an empty pattern (one bar, no notes) in ts.
func NewPattern(ts coretypes.TimeSignature) *Pattern {
	return &Pattern{TimeSignature: ts}
}

// AddNote appends a note. Notes need not be added in time order.
func (p *Pattern) AddNote(n coretypes.Note) {
	p.Notes = append(p.Notes, n)
}

func (p *Pattern) barUnits() uint64 {
	bar := uint64(p.TimeSignature.Top) * coretypes.UnitsPerBeat
	if bar == 0 {
		bar = coretypes.UnitsPerBeat
	}
	return bar
}

// Duration rounds up to the next whole bar containing the latest
// note-off minus one unit, so a note ending exactly on a bar boundary
// does not extend the pattern into an otherwise-empty extra bar. An
// empty pattern is exactly one bar.
func (p *Pattern) Duration() coretypes.MusicalTime {
	bar := p.barUnits()

	var latestEnd uint64
	for _, n := range p.Notes {
		if end := n.Range.End.Units(); end > latestEnd {
			latestEnd = end
		}
	}
	if latestEnd == 0 {
		return coretypes.NewFromUnits(bar)
	}

	adjusted := latestEnd - 1
	bars := adjusted/bar + 1
	return coretypes.NewFromUnits(bars * bar)
}

// NoteEvent is a pattern-local MIDI-shaped event: a note's start becomes
// a NoteOn, its end a NoteOff (spec §3).
type NoteEvent struct {
	Time     coretypes.MusicalTime
	Key      int
	IsNoteOn bool
}

// NoteEvents returns every note's on/off pair, sorted by pattern-local
// time (note-offs before note-ons at the same instant, so a note ending
// exactly when another begins doesn't appear to overlap).
func (p *Pattern) NoteEvents() []NoteEvent {
	events := make([]NoteEvent, 0, len(p.Notes)*2)
	for _, n := range p.Notes {
		events = append(events, NoteEvent{Time: n.Range.Start, Key: n.Key, IsNoteOn: true})
		events = append(events, NoteEvent{Time: n.Range.End, Key: n.Key, IsNoteOn: false})
	}
	sort.Slice(events, func(i, j int) bool {
		if events[i].Time != events[j].Time {
			return events[i].Time < events[j].Time
		}
		return !events[i].IsNoteOn && events[j].IsNoteOn
	})
	return events
}

// Arrangement places one pattern on one track at a start position.
// Channel is an optional per-arrangement MIDI channel override; nil
// means the composer falls back to channel 0 (spec §4.8).
type Arrangement struct {
	Track   coretypes.TrackUid
	Pattern coretypes.PatternUid
	Start   coretypes.MusicalTime
	Channel *midiwire.Channel
}

// EndFor computes this arrangement's end time given its pattern's
// duration.
func (a Arrangement) EndFor(patternDuration coretypes.MusicalTime) coretypes.MusicalTime {
	return a.Start.Add(patternDuration)
}
