package project

import (
	"sync"

	"github.com/schollz/collidertracker/internal/coretypes"
	"github.com/schollz/collidertracker/internal/entity"
	"github.com/schollz/collidertracker/internal/mixer"
	"github.com/schollz/collidertracker/internal/trackgraph"
)

// Orchestrator is the combined Track Graph + Entity Store spec §3 calls
// "orchestrator": it exclusively owns every entity via a Uid->entity
// map and the per-track Uid lists trackgraph.Graph maintains. It
// implements midirouter.EntityStore and controlrouter.EntityStore via
// Lookup.
type Orchestrator struct {
	mu       sync.Mutex
	tracks   *trackgraph.Graph
	entities map[coretypes.Uid]entity.Entity
}

// NewOrchestrator returns an orchestrator with no tracks or entities.
func NewOrchestrator() *Orchestrator {
	return &Orchestrator{
		tracks:   trackgraph.New(),
		entities: make(map[coretypes.Uid]entity.Entity),
	}
}

// AddTrack creates a new track and returns its Uid.
func (o *Orchestrator) AddTrack(name string, kind trackgraph.TrackKind) coretypes.TrackUid {
	return o.tracks.AddTrack(name, kind)
}

// AllTracks returns every track in creation order.
func (o *Orchestrator) AllTracks() []trackgraph.Track {
	return o.tracks.Tracks()
}

// TrackGraph exposes the underlying graph for callers (e.g. the mixer's
// AddSend, which needs to check track kinds) that need more than
// AddTrack/AllTracks.
func (o *Orchestrator) TrackGraph() *trackgraph.Graph { return o.tracks }

// AddEntity registers e in the entity store and links it into track's
// capability lists. On failure (unknown track, entity already
// assigned), the entity is not added to the store either.
func (o *Orchestrator) AddEntity(track coretypes.TrackUid, e entity.Entity) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.tracks.AddEntity(track, e); err != nil {
		return err
	}
	o.entities[e.Uid()] = e
	return nil
}

// RestoreTrack installs a previously-persisted track verbatim (uid,
// name, kind, and entity-uid lists already populated) without allocating
// a fresh Uid.
func (o *Orchestrator) RestoreTrack(t trackgraph.Track) {
	o.tracks.RestoreTrack(t)
}

// RestoreEntity installs e, which must already carry its persisted Uid,
// directly into the entity store without touching track membership
// (the owning track's lists are restored separately via RestoreTrack).
func (o *Orchestrator) RestoreEntity(e entity.Entity) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.entities[e.Uid()] = e
}

// RemoveEntity removes uid from the store and from its track's lists.
func (o *Orchestrator) RemoveEntity(uid coretypes.Uid) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.tracks.RemoveEntity(uid)
	delete(o.entities, uid)
}

// Lookup implements midirouter.EntityStore and controlrouter.EntityStore.
func (o *Orchestrator) Lookup(uid coretypes.Uid) (entity.Entity, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	e, ok := o.entities[uid]
	return e, ok
}

// Entities returns a snapshot of every registered entity.
func (o *Orchestrator) Entities() []entity.Entity {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]entity.Entity, 0, len(o.entities))
	for _, e := range o.entities {
		out = append(out, e)
	}
	return out
}

// UpdateSampleRate, UpdateTempo, UpdateTimeSignature fan a changed
// global value out to every Configurable entity.
func (o *Orchestrator) UpdateSampleRate(sr coretypes.SampleRate) {
	for _, e := range o.Entities() {
		if c, ok := entity.AsConfigurable(e); ok {
			c.UpdateSampleRate(sr)
		}
	}
}

func (o *Orchestrator) UpdateTempo(tempo coretypes.Tempo) {
	for _, e := range o.Entities() {
		if c, ok := entity.AsConfigurable(e); ok {
			c.UpdateTempo(tempo)
		}
	}
}

func (o *Orchestrator) UpdateTimeSignature(ts coretypes.TimeSignature) {
	for _, e := range o.Entities() {
		if c, ok := entity.AsConfigurable(e); ok {
			c.UpdateTimeSignature(ts)
		}
	}
}

// UpdateTimeRange fans the render tick's time range out to every
// Controller entity.
func (o *Orchestrator) UpdateTimeRange(r coretypes.Range) {
	for _, e := range o.Entities() {
		if c, ok := entity.AsController(e); ok {
			c.UpdateTimeRange(r)
		}
	}
}

// Play and Stop fan out to every Controller entity.
func (o *Orchestrator) Play() {
	for _, e := range o.Entities() {
		if c, ok := entity.AsController(e); ok {
			c.Play()
		}
	}
}

func (o *Orchestrator) Stop() {
	for _, e := range o.Entities() {
		if c, ok := entity.AsController(e); ok {
			c.Stop()
		}
	}
}

func (o *Orchestrator) SkipToStart() {
	for _, e := range o.Entities() {
		if c, ok := entity.AsController(e); ok {
			c.SkipToStart()
		}
	}
}

// IsFinished reports whether every Controller entity has finished.
func (o *Orchestrator) IsFinished() bool {
	for _, e := range o.Entities() {
		if c, ok := entity.AsController(e); ok {
			if !c.IsFinished() {
				return false
			}
		}
	}
	return true
}

// GenerateInstruments zeroes buf, then additively calls Generate on
// every Instrument assigned to track (spec §4.11 step 4/6).
func (o *Orchestrator) GenerateInstruments(track coretypes.TrackUid, buf []coretypes.StereoSample) {
	for i := range buf {
		buf[i] = coretypes.SilenceStereo
	}
	snap, ok := o.tracks.Track(track)
	if !ok {
		return
	}
	for _, uid := range snap.Instruments {
		e, ok := o.Lookup(uid)
		if !ok {
			continue
		}
		if inst, ok := entity.AsInstrument(e); ok {
			inst.Generate(buf)
		}
	}
}

// ApplyEffects runs track's effect chain over buf in order, blending
// each effect's wet output against its pre-effect input by the mixer's
// humidity for that effect Uid.
func (o *Orchestrator) ApplyEffects(track coretypes.TrackUid, buf []coretypes.StereoSample, mx *mixer.Mixer) {
	snap, ok := o.tracks.Track(track)
	if !ok {
		return
	}
	for _, uid := range snap.Effects {
		e, ok := o.Lookup(uid)
		if !ok {
			continue
		}
		fx, ok := entity.AsEffect(e)
		if !ok {
			continue
		}
		for i := range buf {
			dry := buf[i]
			wet := fx.TransformAudio(dry)
			buf[i] = mx.Blend(uid, dry, wet)
		}
	}
}
