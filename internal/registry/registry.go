// Package registry implements the entity registry (spec §4.2): a
// string-keyed table of zero-argument entity factories, open for
// registration and then sealed into an immutable, thread-shareable value.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/schollz/collidertracker/internal/coretypes"
	"github.com/schollz/collidertracker/internal/engineerr"
	"github.com/schollz/collidertracker/internal/entity"
)

// FactoryFunc constructs a fresh, un-identified entity. The registry
// assigns its Uid from the shared UidFactory at construction time.
type FactoryFunc func() entity.Entity

// Registry is the open, mutable phase: registrations may still fail with
// engineerr.DuplicateKey but otherwise accumulate freely.
type Registry struct {
	mu         sync.Mutex
	uidFactory *coretypes.UidFactory
	factories  map[string]FactoryFunc
	sealed     bool
}

func New(uidFactory *coretypes.UidFactory) *Registry {
	return &Registry{
		uidFactory: uidFactory,
		factories:  make(map[string]FactoryFunc),
	}
}

// Register adds a factory under key. Fails with engineerr.DuplicateKey
// if key is already present, or if the registry has been sealed.
func (r *Registry) Register(key string, f FactoryFunc) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sealed {
		return fmt.Errorf("registry sealed, cannot register %q: %w", key, engineerr.DuplicateKey)
	}
	if _, exists := r.factories[key]; exists {
		return fmt.Errorf("key %q already registered: %w", key, engineerr.DuplicateKey)
	}
	r.factories[key] = f
	return nil
}

// Seal stops accepting registrations and returns the immutable,
// concurrency-safe view used for the rest of the process's lifetime.
func (r *Registry) Seal() *Sealed {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sealed = true

	factories := make(map[string]FactoryFunc, len(r.factories))
	keys := make([]string, 0, len(r.factories))
	for k, f := range r.factories {
		factories[k] = f
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return &Sealed{
		uidFactory: r.uidFactory,
		factories:  factories,
		keys:       keys,
	}
}

// Sealed is an immutable registry view: safe to share across goroutines
// without further locking, since nothing in it mutates after Seal.
type Sealed struct {
	uidFactory *coretypes.UidFactory
	factories  map[string]FactoryFunc
	keys       []string
}

// Keys returns the registered kind keys in sorted order.
func (s *Sealed) Keys() []string {
	out := make([]string, len(s.keys))
	copy(out, s.keys)
	return out
}

// NewEntity constructs a fresh entity for key, assigning it a Uid from
// the registry's factory. Returns (nil, false) for an unknown key.
func (s *Sealed) NewEntity(key string) (entity.Entity, bool) {
	f, ok := s.factories[key]
	if !ok {
		return nil, false
	}
	e := f()
	e.SetUid(s.uidFactory.Next())
	return e, true
}
