// Package composer owns patterns, arrangements, and per-track
// arrangement lists, and implements entity.Controller: on Work, it
// emits MidiForTrack events for every arrangement intersecting the
// current time range (spec §4.8).
package composer

import (
	"fmt"
	"sync"

	"github.com/schollz/collidertracker/internal/coretypes"
	"github.com/schollz/collidertracker/internal/engineerr"
	"github.com/schollz/collidertracker/internal/entity"
	"github.com/schollz/collidertracker/internal/midiwire"
	"github.com/schollz/collidertracker/internal/pattern"
)

// Composer is the render tick's source of pattern-driven MIDI events.
type Composer struct {
	mu sync.Mutex

	patternUids     *coretypes.PatternUidFactory
	arrangementUids *coretypes.ArrangementUidFactory

	patterns          map[coretypes.PatternUid]*pattern.Pattern
	arrangements      map[coretypes.ArrangementUid]pattern.Arrangement
	trackArrangements map[coretypes.TrackUid][]coretypes.ArrangementUid

	currentRange coretypes.Range
	performing   bool

	cachedExtent    coretypes.MusicalTime
	cacheValid      bool
}

// New returns a composer with no patterns or arrangements.
func New() *Composer {
	return &Composer{
		patternUids:       coretypes.NewPatternUidFactory(),
		arrangementUids:   coretypes.NewArrangementUidFactory(),
		patterns:          make(map[coretypes.PatternUid]*pattern.Pattern),
		arrangements:      make(map[coretypes.ArrangementUid]pattern.Arrangement),
		trackArrangements: make(map[coretypes.TrackUid][]coretypes.ArrangementUid),
	}
}

// AddPattern stores p and assigns it a fresh PatternUid, unless explicit
// is non-nil, in which case that uid is used (and must not already be
// taken by the caller's own bookkeeping).
func (c *Composer) AddPattern(p *pattern.Pattern, explicit *coretypes.PatternUid) coretypes.PatternUid {
	c.mu.Lock()
	defer c.mu.Unlock()

	var id coretypes.PatternUid
	if explicit != nil {
		id = *explicit
	} else {
		id = c.patternUids.Next()
	}
	c.patterns[id] = p
	c.invalidateCacheLocked()
	return id
}

// ArrangePattern places patternUid on track at position, failing with
// engineerr.NotFound if the pattern doesn't exist.
func (c *Composer) ArrangePattern(track coretypes.TrackUid, patternUid coretypes.PatternUid, position coretypes.MusicalTime) (coretypes.ArrangementUid, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.patterns[patternUid]; !ok {
		return 0, fmt.Errorf("%w: pattern %d", engineerr.NotFound, patternUid)
	}

	id := c.arrangementUids.Next()
	c.arrangements[id] = pattern.Arrangement{Track: track, Pattern: patternUid, Start: position}
	c.trackArrangements[track] = append(c.trackArrangements[track], id)
	c.invalidateCacheLocked()
	return id, nil
}

// NotifyPatternChange invalidates caches derived from pattern contents
// (currently just the cached Extent) after an in-place edit to a
// pattern's notes.
func (c *Composer) NotifyPatternChange() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidateCacheLocked()
}

func (c *Composer) invalidateCacheLocked() {
	c.cacheValid = false
}

// Extent returns the latest arrangement-end across every track, used to
// auto-stop the transport when exporting.
func (c *Composer) Extent() coretypes.MusicalTime {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.extentLocked()
}

func (c *Composer) extentLocked() coretypes.MusicalTime {
	if c.cacheValid {
		return c.cachedExtent
	}
	var latest coretypes.MusicalTime
	for _, arr := range c.arrangements {
		p, ok := c.patterns[arr.Pattern]
		if !ok {
			continue
		}
		end := arr.EndFor(p.Duration())
		if end.Units() > latest.Units() {
			latest = end
		}
	}
	c.cachedExtent = latest
	c.cacheValid = true
	return latest
}

// UpdateTimeRange implements entity.Controller.
func (c *Composer) UpdateTimeRange(r coretypes.Range) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.currentRange = r
}

// Play, Stop, SkipToStart, IsPerforming implement entity.Controller.
func (c *Composer) Play()  { c.mu.Lock(); c.performing = true; c.mu.Unlock() }
func (c *Composer) Stop()  { c.mu.Lock(); c.performing = false; c.mu.Unlock() }
func (c *Composer) SkipToStart() {
	c.mu.Lock()
	c.currentRange = coretypes.Range{}
	c.mu.Unlock()
}
func (c *Composer) IsPerforming() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.performing
}

// IsFinished reports whether playback has passed every arrangement.
func (c *Composer) IsFinished() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentRange.Start.Units() >= c.extentLocked().Units()
}

// Work emits a MidiForTrack event for every note-on/off that falls
// within the current time range, for every arrangement whose span
// intersects it. Channel defaults to 0 unless the arrangement carries a
// channel override.
func (c *Composer) Work(emit entity.EmitFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.performing {
		return
	}
	r := c.currentRange

	for _, arr := range c.arrangements {
		p, ok := c.patterns[arr.Pattern]
		if !ok {
			continue
		}
		arrRange := coretypes.NewRange(arr.Start, arr.EndFor(p.Duration()))
		if !arrRange.Intersects(r) {
			continue
		}

		channel := midiwire.Channel(0)
		if arr.Channel != nil {
			channel = *arr.Channel
		}

		for _, ev := range p.NoteEvents() {
			t := arr.Start.Add(coretypes.NewFromUnits(ev.Time.Units()))
			if !r.Contains(t) {
				continue
			}
			var msg midiwire.Message
			if ev.IsNoteOn {
				msg = midiwire.NoteOn(channel, uint8(ev.Key), coretypes.DefaultVelocity)
			} else {
				msg = midiwire.NoteOff(channel, uint8(ev.Key))
			}
			emit(entity.MidiForTrack(arr.Track, channel, msg))
		}
	}
}

var _ entity.Controller = (*Composer)(nil)

// Patterns returns a shallow copy of every stored pattern, keyed by uid,
// for serialization.
func (c *Composer) Patterns() map[coretypes.PatternUid]*pattern.Pattern {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[coretypes.PatternUid]*pattern.Pattern, len(c.patterns))
	for id, p := range c.patterns {
		out[id] = p
	}
	return out
}

// Arrangements returns a shallow copy of every stored arrangement, keyed
// by uid, for serialization.
func (c *Composer) Arrangements() map[coretypes.ArrangementUid]pattern.Arrangement {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[coretypes.ArrangementUid]pattern.Arrangement, len(c.arrangements))
	for id, a := range c.arrangements {
		out[id] = a
	}
	return out
}

// RestorePattern installs p under a previously-persisted uid, advancing
// the pattern uid factory past it so later AddPattern calls never
// collide with restored state.
func (c *Composer) RestorePattern(id coretypes.PatternUid, p *pattern.Pattern) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.patterns[id] = p
	c.patternUids.AdvancePast(id)
	c.invalidateCacheLocked()
}

// RestoreArrangement installs arr under a previously-persisted uid,
// advancing the arrangement uid factory past it.
func (c *Composer) RestoreArrangement(id coretypes.ArrangementUid, arr pattern.Arrangement) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.arrangements[id] = arr
	c.trackArrangements[arr.Track] = append(c.trackArrangements[arr.Track], id)
	c.arrangementUids.AdvancePast(id)
	c.invalidateCacheLocked()
}
