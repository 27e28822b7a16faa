package skiplist

import "sync"

// MutexSkipList is the multi-writer variant. A single coarse lock
// serializes every call, Find included; the structural algorithms are the
// sequential ones. Blocked callers wait on the mutex in whatever order
// the runtime hands it out.
type MutexSkipList[K comparable, V any] struct {
	mu   sync.Mutex
	list *SkipList[K, V]
}

// NewMutexSkipList returns a mutex-protected skip list with the given
// tower height. It panics with ErrInvalidHeight if height is below 1.
func NewMutexSkipList[K comparable, V any](height int, less Less[K]) *MutexSkipList[K, V] {
	return &MutexSkipList[K, V]{
		list: NewSkipList[K, V](height, less),
	}
}

// Upsert inserts key with value, or overwrites its value if key is
// already present.
func (l *MutexSkipList[K, V]) Upsert(key K, value V) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.list.Upsert(key, value)
}

// Find returns the value stored for key. The boolean is true if the key
// exists, false otherwise.
func (l *MutexSkipList[K, V]) Find(key K) (V, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.list.Find(key)
}

// Clear severs every level's forward chain and resets the index to empty.
func (l *MutexSkipList[K, V]) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.list.Clear()
}

// Len returns the number of distinct keys in the index.
func (l *MutexSkipList[K, V]) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.list.Len()
}

// Height returns the tower height the index was constructed with.
func (l *MutexSkipList[K, V]) Height() int {
	return l.list.Height()
}
