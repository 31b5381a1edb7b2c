// Package trackgraph holds the per-track ordered controller/instrument/
// effect Uid lists and the entity->track back-reference map (spec
// §4.9). Tracks never own entities (the entity store does); a track
// only references Uids, and an entity belongs to at most one track at a
// time.
package trackgraph

import (
	"fmt"
	"sync"

	"github.com/schollz/collidertracker/internal/coretypes"
	"github.com/schollz/collidertracker/internal/engineerr"
	"github.com/schollz/collidertracker/internal/entity"
)

// TrackKind distinguishes a normal (MIDI-addressable) track from an aux
// bus, which has effects but no instruments and receives audio only via
// sends (spec's glossary "Aux track" entry, named explicitly as a
// Track.Kind field per this engine's supplemented feature set).
type TrackKind int

const (
	TrackKindMidi TrackKind = iota
	TrackKindAux
)

// Track is an ordered view onto the entities assigned to it. An entity
// may appear in more than one list (e.g. an entity that is both a
// controller and an instrument).
type Track struct {
	Uid         coretypes.TrackUid
	Name        string
	Kind        TrackKind
	Controllers []coretypes.Uid
	Instruments []coretypes.Uid
	Effects     []coretypes.Uid
}

// Graph owns every track and the entity->track back-reference map.
type Graph struct {
	mu sync.Mutex

	trackUids  *coretypes.TrackUidFactory
	tracks     map[coretypes.TrackUid]*Track
	trackOrder []coretypes.TrackUid
	backref    map[coretypes.Uid]coretypes.TrackUid
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{
		trackUids: coretypes.NewTrackUidFactory(),
		tracks:    make(map[coretypes.TrackUid]*Track),
		backref:   make(map[coretypes.Uid]coretypes.TrackUid),
	}
}

// AddTrack creates a new, empty track and returns its Uid.
func (g *Graph) AddTrack(name string, kind TrackKind) coretypes.TrackUid {
	g.mu.Lock()
	defer g.mu.Unlock()

	id := g.trackUids.Next()
	g.tracks[id] = &Track{Uid: id, Name: name, Kind: kind}
	g.trackOrder = append(g.trackOrder, id)
	return id
}

// RestoreTrack installs a fully-formed track (as produced by a prior
// Tracks() snapshot) under its persisted Uid, rebuilding the back-
// reference map from its Controllers/Instruments/Effects lists and
// advancing the track uid factory past it.
func (g *Graph) RestoreTrack(t Track) {
	g.mu.Lock()
	defer g.mu.Unlock()

	stored := copyTrack(&t)
	g.tracks[t.Uid] = &stored
	g.trackOrder = append(g.trackOrder, t.Uid)
	g.trackUids.AdvancePast(t.Uid)

	for _, uid := range stored.Controllers {
		g.backref[uid] = t.Uid
	}
	for _, uid := range stored.Instruments {
		g.backref[uid] = t.Uid
	}
	for _, uid := range stored.Effects {
		g.backref[uid] = t.Uid
	}
}

// Track returns a snapshot copy of the track's current lists.
func (g *Graph) Track(uid coretypes.TrackUid) (Track, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	t, ok := g.tracks[uid]
	if !ok {
		return Track{}, false
	}
	return copyTrack(t), true
}

// Tracks returns every track in creation order.
func (g *Graph) Tracks() []Track {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]Track, 0, len(g.trackOrder))
	for _, id := range g.trackOrder {
		out = append(out, copyTrack(g.tracks[id]))
	}
	return out
}

// TrackOf reports which track an entity currently belongs to.
func (g *Graph) TrackOf(uid coretypes.Uid) (coretypes.TrackUid, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	t, ok := g.backref[uid]
	return t, ok
}

// AddEntity inserts e's Uid into track's controller/instrument/effect
// lists, one per capability e implements, and records the back-
// reference. An entity already assigned to any track (this one
// included) is rejected: an entity belongs to exactly one track.
func (g *Graph) AddEntity(track coretypes.TrackUid, e entity.Entity) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	t, ok := g.tracks[track]
	if !ok {
		return fmt.Errorf("track %d: %w", track, engineerr.NotFound)
	}
	if existing, ok := g.backref[e.Uid()]; ok {
		return fmt.Errorf("entity %d already on track %d: %w", e.Uid(), existing, engineerr.InvalidArgument)
	}

	g.insertLocked(t, e)
	g.backref[e.Uid()] = track
	return nil
}

func (g *Graph) insertLocked(t *Track, e entity.Entity) {
	if _, ok := entity.AsController(e); ok {
		t.Controllers = append(t.Controllers, e.Uid())
	}
	if _, ok := entity.AsInstrument(e); ok {
		t.Instruments = append(t.Instruments, e.Uid())
	}
	if _, ok := entity.AsEffect(e); ok {
		t.Effects = append(t.Effects, e.Uid())
	}
}

// RemoveEntity removes uid from every list of whichever track holds it,
// and clears the back-reference. Returns the track it was removed from.
func (g *Graph) RemoveEntity(uid coretypes.Uid) (coretypes.TrackUid, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.removeLocked(uid)
}

func (g *Graph) removeLocked(uid coretypes.Uid) (coretypes.TrackUid, bool) {
	track, ok := g.backref[uid]
	if !ok {
		return 0, false
	}
	t := g.tracks[track]
	t.Controllers = removeUid(t.Controllers, uid)
	t.Instruments = removeUid(t.Instruments, uid)
	t.Effects = removeUid(t.Effects, uid)
	delete(g.backref, uid)
	return track, true
}

// MoveEntity removes e from its current track (if any) and re-adds it
// to newTrack, re-deriving its list membership from its capabilities so
// it never ends up duplicated or stale after the move.
func (g *Graph) MoveEntity(e entity.Entity, newTrack coretypes.TrackUid) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	t, ok := g.tracks[newTrack]
	if !ok {
		return fmt.Errorf("track %d: %w", newTrack, engineerr.NotFound)
	}

	g.removeLocked(e.Uid())
	g.insertLocked(t, e)
	g.backref[e.Uid()] = newTrack
	return nil
}

// ReorderEffect moves uid to newIndex within track's effect chain,
// where position matters (left-to-right processing order). Out-of-
// range newIndex clamps to the end of the chain.
func (g *Graph) ReorderEffect(track coretypes.TrackUid, uid coretypes.Uid, newIndex int) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	t, ok := g.tracks[track]
	if !ok {
		return fmt.Errorf("track %d: %w", track, engineerr.NotFound)
	}

	filtered := removeUid(t.Effects, uid)
	if newIndex < 0 || newIndex > len(filtered) {
		newIndex = len(filtered)
	}
	out := make([]coretypes.Uid, 0, len(filtered)+1)
	out = append(out, filtered[:newIndex]...)
	out = append(out, uid)
	out = append(out, filtered[newIndex:]...)
	t.Effects = out
	return nil
}

func removeUid(uids []coretypes.Uid, target coretypes.Uid) []coretypes.Uid {
	out := uids[:0:0]
	for _, u := range uids {
		if u != target {
			out = append(out, u)
		}
	}
	return out
}

func copyTrack(t *Track) Track {
	return Track{
		Uid:         t.Uid,
		Name:        t.Name,
		Kind:        t.Kind,
		Controllers: append([]coretypes.Uid(nil), t.Controllers...),
		Instruments: append([]coretypes.Uid(nil), t.Instruments...),
		Effects:     append([]coretypes.Uid(nil), t.Effects...),
	}
}
