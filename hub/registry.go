package hub

import "sync"

type entry struct {
	consumer Consumer
	fwd      *forwarder
}

// registry maps consumer IDs to their active forwarders. Entries hold strong
// references; explicit Detach is the sole removal path, so a caller that
// drops a consumer without detaching leaks its backend registration by
// contract.
type registry struct {
	mu      sync.RWMutex
	entries map[string]*entry
}

func newRegistry() *registry {
	return &registry{entries: make(map[string]*entry)}
}

// register stores the consumer/forwarder pair, enforcing at most one entry
// per consumer.
func (r *registry) register(c Consumer, fwd *forwarder) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[c.ID()]; exists {
		return ErrAlreadyAttached
	}
	r.entries[c.ID()] = &entry{consumer: c, fwd: fwd}
	return nil
}

// unregister removes and returns the entry for id. Removing an absent id is
// a no-op.
func (r *registry) unregister(id string) (*entry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ent, exists := r.entries[id]
	if exists {
		delete(r.entries, id)
	}
	return ent, exists
}

func (r *registry) lookup(id string) (*entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ent, exists := r.entries[id]
	return ent, exists
}

// consumers returns a snapshot independent of concurrent mutation.
func (r *registry) consumers() []Consumer {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snapshot := make([]Consumer, 0, len(r.entries))
	for _, ent := range r.entries {
		snapshot = append(snapshot, ent.consumer)
	}
	return snapshot
}

// drain removes and returns every entry, for hub teardown.
func (r *registry) drain() []*entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	drained := make([]*entry, 0, len(r.entries))
	for _, ent := range r.entries {
		drained = append(drained, ent)
	}
	r.entries = make(map[string]*entry)
	return drained
}
