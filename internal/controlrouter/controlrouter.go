// Package controlrouter dispatches control-automation values to target
// entities' indexed parameters via two independent link tables (spec
// §4.6): entity links (source Uid -> []ControlLink) and path links
// (PathUid -> []ControlLink, driven by a SignalPath's timed control
// events). Control and MIDI dispatch are always kept on separate paths.
package controlrouter

import (
	"sync"

	"github.com/schollz/collidertracker/internal/coretypes"
	"github.com/schollz/collidertracker/internal/entity"
)

// EntityStore is the lookup surface the router needs from the entity
// registry.
type EntityStore interface {
	Lookup(uid coretypes.Uid) (entity.Entity, bool)
}

// NotFoundFunc is invoked once per link whose target could not be
// routed to, either because the Uid does not resolve or because the
// resolved entity isn't Controllable. This is how a caller can handle
// transport-parameter routing (target Uid = coretypes.TransportUid)
// without the router itself knowing anything about the transport.
type NotFoundFunc func(link coretypes.ControlLink)

// Router holds the two link tables.
type Router struct {
	mu          sync.RWMutex
	entityLinks map[coretypes.Uid][]coretypes.ControlLink
	pathLinks   map[coretypes.PathUid][]coretypes.ControlLink
}

// New returns an empty router.
func New() *Router {
	return &Router{
		entityLinks: make(map[coretypes.Uid][]coretypes.ControlLink),
		pathLinks:   make(map[coretypes.PathUid][]coretypes.ControlLink),
	}
}

// Link adds an entity-link: when source emits a control value, it also
// routes to link's target/param.
func (r *Router) Link(source coretypes.Uid, link coretypes.ControlLink) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entityLinks[source] = append(r.entityLinks[source], link)
}

// LinkPath adds a path-link: control events timed to the SignalPath
// identified by path route to link's target/param.
func (r *Router) LinkPath(path coretypes.PathUid, link coretypes.ControlLink) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pathLinks[path] = append(r.pathLinks[path], link)
}

// Unlink removes the (source, target, param) triple's link, if present,
// and returns it so a caller can e.g. display what was removed.
func (r *Router) Unlink(source coretypes.Uid, target coretypes.Uid, param coretypes.ControlIndex) (coretypes.ControlLink, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	links := r.entityLinks[source]
	for i, l := range links {
		if l.TargetUid == target && l.Param == param {
			removed := l
			r.entityLinks[source] = append(links[:i:i], links[i+1:]...)
			return removed, true
		}
	}
	return coretypes.ControlLink{}, false
}

// UnlinkPath is Unlink's path-table counterpart.
func (r *Router) UnlinkPath(path coretypes.PathUid, target coretypes.Uid, param coretypes.ControlIndex) (coretypes.ControlLink, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	links := r.pathLinks[path]
	for i, l := range links {
		if l.TargetUid == target && l.Param == param {
			removed := l
			r.pathLinks[path] = append(links[:i:i], links[i+1:]...)
			return removed, true
		}
	}
	return coretypes.ControlLink{}, false
}

// Route dispatches value to every link registered under source. A link
// whose target doesn't resolve, or whose resolved entity isn't
// Controllable, is reported to notFound instead of silently dropped.
func (r *Router) Route(store EntityStore, source coretypes.Uid, value coretypes.ControlValue, notFound NotFoundFunc) {
	r.mu.RLock()
	links := append([]coretypes.ControlLink(nil), r.entityLinks[source]...)
	r.mu.RUnlock()
	r.dispatch(store, links, value, notFound)
}

// RoutePath dispatches value to every link registered under path.
func (r *Router) RoutePath(store EntityStore, path coretypes.PathUid, value coretypes.ControlValue, notFound NotFoundFunc) {
	r.mu.RLock()
	links := append([]coretypes.ControlLink(nil), r.pathLinks[path]...)
	r.mu.RUnlock()
	r.dispatch(store, links, value, notFound)
}

// EntityLinks returns a shallow copy of the entity-link table, keyed by
// source Uid, for serialization.
func (r *Router) EntityLinks() map[coretypes.Uid][]coretypes.ControlLink {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[coretypes.Uid][]coretypes.ControlLink, len(r.entityLinks))
	for src, links := range r.entityLinks {
		out[src] = append([]coretypes.ControlLink(nil), links...)
	}
	return out
}

// PathLinks returns a shallow copy of the path-link table, keyed by
// PathUid, for serialization.
func (r *Router) PathLinks() map[coretypes.PathUid][]coretypes.ControlLink {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[coretypes.PathUid][]coretypes.ControlLink, len(r.pathLinks))
	for path, links := range r.pathLinks {
		out[path] = append([]coretypes.ControlLink(nil), links...)
	}
	return out
}

func (r *Router) dispatch(store EntityStore, links []coretypes.ControlLink, value coretypes.ControlValue, notFound NotFoundFunc) {
	for _, link := range links {
		e, ok := store.Lookup(link.TargetUid)
		if !ok {
			if notFound != nil {
				notFound(link)
			}
			continue
		}
		controllable, ok := entity.AsControllable(e)
		if !ok {
			if notFound != nil {
				notFound(link)
			}
			continue
		}
		controllable.ControlSetParamByIndex(link.Param, value)
	}
}
