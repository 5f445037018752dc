// Package keylock provides mutual exclusion keyed by aggregate identifier.
// At most one goroutine holds the lock for a given key at a time; goroutines
// working on different keys never block each other.
package keylock

import "sync"

// KeyLock serializes access per key. The zero value is not usable; create
// instances with NewKeyLock.
type KeyLock struct {
	mu    sync.Mutex
	locks map[string]*entry
}

type entry struct {
	mu   sync.Mutex
	refs int
}

// NewKeyLock creates an empty KeyLock.
func NewKeyLock() *KeyLock {
	return &KeyLock{locks: make(map[string]*entry)}
}

// Lock acquires the mutex for key, blocking until it is available.
// Every successful Lock must be paired with exactly one Unlock for the same key.
func (k *KeyLock) Lock(key string) {
	k.mu.Lock()
	e, ok := k.locks[key]
	if !ok {
		e = &entry{}
		k.locks[key] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()
}

// Unlock releases the mutex for key. The entry is removed from the map once
// no goroutine is waiting on it, so the map does not grow with the number of
// aggregates ever touched.
func (k *KeyLock) Unlock(key string) {
	k.mu.Lock()
	e, ok := k.locks[key]
	if ok {
		e.refs--
		if e.refs == 0 {
			delete(k.locks, key)
		}
	}
	k.mu.Unlock()

	if ok {
		e.mu.Unlock()
	}
}
