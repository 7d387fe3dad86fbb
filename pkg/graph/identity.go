package graph

import "sync"

// registry is the bidirectional mapping between opaque keys and dense
// internal node ids. Ids are allocated once per distinct key and never
// reused; the reverse direction is a dense slice indexed by id.
type registry[K comparable] struct {
	mu      sync.RWMutex
	keyToID map[K]NodeID
	idToKey []K
}

func newRegistry[K comparable]() *registry[K] {
	return &registry[K]{keyToID: make(map[K]NodeID)}
}

// lookup resolves key without allocating.
func (r *registry[K]) lookup(key K) (NodeID, bool) {
	r.mu.RLock()
	id, ok := r.keyToID[key]
	r.mu.RUnlock()
	return id, ok
}

// ensure resolves key, allocating the next id under the write lock if the
// key is new. The double-check makes concurrent first-insertions of the
// same key converge on a single id.
func (r *registry[K]) ensure(key K) (NodeID, bool) {
	if id, ok := r.lookup(key); ok {
		return id, false
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if id, ok := r.keyToID[key]; ok {
		return id, false
	}
	id := NodeID(len(r.idToKey))
	r.keyToID[key] = id
	r.idToKey = append(r.idToKey, key)
	return id, true
}

// keyOf is the reverse lookup.
func (r *registry[K]) keyOf(id NodeID) (K, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if int(id) >= len(r.idToKey) {
		var zero K
		return zero, false
	}
	return r.idToKey[id], true
}

func (r *registry[K]) count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.idToKey)
}
