// Package midirouter delivers MIDI channel-voice messages to the
// entities subscribed on a channel, one router per track (spec §4.5).
// MIDI messages never cross tracks: a message routed on one track's
// Router is only ever seen by that track's subscribers, even if a
// subscriber emits further MIDI during handling.
package midirouter

import (
	"fmt"
	"sync"

	"github.com/schollz/collidertracker/internal/coretypes"
	"github.com/schollz/collidertracker/internal/engineerr"
	"github.com/schollz/collidertracker/internal/entity"
	"github.com/schollz/collidertracker/internal/midiwire"
)

// EntityStore is the lookup surface the router needs from the entity
// registry: resolve a Uid to its live entity.
type EntityStore interface {
	Lookup(uid coretypes.Uid) (entity.Entity, bool)
}

// Router is one track's MidiChannel -> subscriber-Uid-list map.
type Router struct {
	mu       sync.RWMutex
	channels map[midiwire.Channel][]coretypes.Uid
}

// New returns an empty router.
func New() *Router {
	return &Router{channels: make(map[midiwire.Channel][]coretypes.Uid)}
}

// SetReceiverChannel subscribes uid to channel, first removing it from
// every channel on this router so an entity is only ever subscribed
// once. A nil channel just removes it.
func (r *Router) SetReceiverChannel(uid coretypes.Uid, channel *midiwire.Channel) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for ch, uids := range r.channels {
		r.channels[ch] = removeUid(uids, uid)
	}
	if channel != nil {
		r.channels[*channel] = append(r.channels[*channel], uid)
	}
}

// Subscribers returns a snapshot of the Uids subscribed to channel.
func (r *Router) Subscribers(channel midiwire.Channel) []coretypes.Uid {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]coretypes.Uid(nil), r.channels[channel]...)
}

// AllSubscriptions returns a shallow copy of the whole channel ->
// subscriber-Uid-list map, for serialization.
func (r *Router) AllSubscriptions() map[midiwire.Channel][]coretypes.Uid {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[midiwire.Channel][]coretypes.Uid, len(r.channels))
	for ch, uids := range r.channels {
		out[ch] = append([]coretypes.Uid(nil), uids...)
	}
	return out
}

type queuedMessage struct {
	channel midiwire.Channel
	message midiwire.Message
}

// Route delivers message to every subscriber on channel, draining any
// further MIDI those subscribers emit. A subscriber that emits back on
// the same channel it was handling sets the loop flag and the emission
// is discarded rather than requeued, so a same-channel reflection cannot
// spin forever; Route still finishes delivering everything already
// queued, then returns engineerr.Cycle.
func (r *Router) Route(store EntityStore, channel midiwire.Channel, message midiwire.Message) error {
	queue := []queuedMessage{{channel: channel, message: message}}
	loopDetected := false

	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]

		for _, uid := range r.Subscribers(item.channel) {
			e, ok := store.Lookup(uid)
			if !ok {
				continue
			}
			handler, ok := entity.AsHandlesMidi(e)
			if !ok {
				continue
			}
			processingChannel := item.channel
			handler.HandleMidiMessage(item.channel, item.message, func(ch midiwire.Channel, m midiwire.Message) {
				if ch == processingChannel {
					loopDetected = true
					return
				}
				queue = append(queue, queuedMessage{channel: ch, message: m})
			})
		}
	}

	if loopDetected {
		return fmt.Errorf("%w: same-channel reflection", engineerr.Cycle)
	}
	return nil
}

func removeUid(uids []coretypes.Uid, target coretypes.Uid) []coretypes.Uid {
	out := uids[:0]
	for _, u := range uids {
		if u != target {
			out = append(out, u)
		}
	}
	return out
}

// MultiRouter owns one Router per track and is how external MIDI input
// reaches every track at once (spec §4.5: "external MIDI input is
// delivered to every track's router with the incoming channel").
type MultiRouter struct {
	mu      sync.Mutex
	routers map[coretypes.TrackUid]*Router
}

func NewMultiRouter() *MultiRouter {
	return &MultiRouter{routers: make(map[coretypes.TrackUid]*Router)}
}

// RouterForTrack returns the track's router, creating it on first use.
func (m *MultiRouter) RouterForTrack(track coretypes.TrackUid) *Router {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.routers[track]
	if !ok {
		r = New()
		m.routers[track] = r
	}
	return r
}

// Tracks returns the Uids of every track that has a router, for
// serialization.
func (m *MultiRouter) Tracks() []coretypes.TrackUid {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]coretypes.TrackUid, 0, len(m.routers))
	for t := range m.routers {
		out = append(out, t)
	}
	return out
}

// RouteExternal delivers message to every track's router. It returns
// the first error encountered (if any) but always routes to every
// track, so one track's loop detection never blocks another's delivery.
func (m *MultiRouter) RouteExternal(store EntityStore, channel midiwire.Channel, message midiwire.Message) error {
	m.mu.Lock()
	tracks := make([]coretypes.TrackUid, 0, len(m.routers))
	for t := range m.routers {
		tracks = append(tracks, t)
	}
	m.mu.Unlock()

	var firstErr error
	for _, t := range tracks {
		if err := m.RouterForTrack(t).Route(store, channel, message); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
