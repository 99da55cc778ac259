package tether

import (
	"maps"
	"sync"

	"github.com/editkit/tether/engine"
)

// Publication is the externally observable tuple reflecting a mounted
// editor after a committed initialization, update, or swap. Subscribers
// always see a complete, consistent value, never a partial one.
type Publication struct {
	// View is the live view handle, or nil before initialization
	// completes.
	View *engine.View

	// Value is the current document text.
	Value string

	// Extensions is the active top-level extension list.
	Extensions []engine.Extension

	// Documents maps document identity to its stored state snapshot.
	Documents map[string][]byte
}

// Store is a shared observable holding the latest Publication. It may be
// read and subscribed to by arbitrarily many parties but is written only
// by the owning editor; each write replaces the whole value.
type Store struct {
	mu      sync.RWMutex
	current Publication
	subs    map[uint64]func(Publication)
	nextID  uint64
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{subs: make(map[uint64]func(Publication))}
}

// Get returns the latest publication.
func (s *Store) Get() Publication {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// StoreSubscription is an active store subscription.
type StoreSubscription struct {
	once  sync.Once
	store *Store
	id    uint64
}

// Unsubscribe removes the subscription. Safe to call more than once.
func (ss *StoreSubscription) Unsubscribe() {
	ss.once.Do(func() {
		ss.store.mu.Lock()
		delete(ss.store.subs, ss.id)
		ss.store.mu.Unlock()
	})
}

// Subscribe registers fn and immediately delivers the current publication
// to it, matching store semantics hosts expect from observable values.
func (s *Store) Subscribe(fn func(Publication)) *StoreSubscription {
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.subs[id] = fn
	cur := s.current
	s.mu.Unlock()

	fn(cur)
	return &StoreSubscription{store: s, id: id}
}

// publish replaces the current value and fans it out. Called only by the
// owning editor after a commit.
func (s *Store) publish(p Publication) {
	s.mu.Lock()
	s.current = p
	fns := make([]func(Publication), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(p)
	}
}

// snapshotDocuments copies the snapshot map for publication so later swaps
// cannot mutate an already-published value.
func snapshotDocuments(m map[string][]byte) map[string][]byte {
	if len(m) == 0 {
		return nil
	}
	return maps.Clone(m)
}
