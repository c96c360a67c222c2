// Package generation discards responses from superseded async requests.
package generation

import "sync"

// Tracker hands out increasing request generations and keeps only the value
// produced by the newest one. A response from an older generation is dropped
// even if it arrives last.
type Tracker[T any] struct {
	mu      sync.Mutex
	issued  uint64
	applied uint64
	value   T
	has     bool
}

// Begin issues a new generation, superseding every earlier one
func (t *Tracker[T]) Begin() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.issued++
	return t.issued
}

// Apply stores v if gen is still the latest issued generation. It reports
// whether the value was kept.
func (t *Tracker[T]) Apply(gen uint64, v T) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if gen != t.issued || gen <= t.applied {
		return false
	}
	t.applied = gen
	t.value = v
	t.has = true
	return true
}

// NewerThan returns the applied value if it came from a generation issued
// after gen. NewerThan(0) returns whatever has been applied.
func (t *Tracker[T]) NewerThan(gen uint64) (T, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.has || t.applied <= gen {
		var zero T
		return zero, false
	}
	return t.value, true
}

// Keyed tracks generations independently per key. A key's tracker lives only
// while a request for it is in flight, so idle keys hold no memory.
type Keyed[T any] struct {
	mu      sync.Mutex
	entries map[string]*keyedEntry[T]
}

type keyedEntry[T any] struct {
	tracker  Tracker[T]
	inflight int
}

// NewKeyed creates an empty keyed tracker
func NewKeyed[T any]() *Keyed[T] {
	return &Keyed[T]{entries: make(map[string]*keyedEntry[T])}
}

// Begin issues a generation for key. Every Begin must be paired with Done
// once the request has applied or discarded its result.
func (k *Keyed[T]) Begin(key string) (*Tracker[T], uint64) {
	k.mu.Lock()
	defer k.mu.Unlock()

	e, ok := k.entries[key]
	if !ok {
		e = &keyedEntry[T]{}
		k.entries[key] = e
	}
	e.inflight++
	return &e.tracker, e.tracker.Begin()
}

// Done ends one request for key and drops the tracker when none remain
func (k *Keyed[T]) Done(key string) {
	k.mu.Lock()
	defer k.mu.Unlock()

	e, ok := k.entries[key]
	if !ok {
		return
	}
	e.inflight--
	if e.inflight <= 0 {
		delete(k.entries, key)
	}
}

// Len is the number of keys with requests in flight
func (k *Keyed[T]) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()

	return len(k.entries)
}
