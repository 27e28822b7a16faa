package skiplist

import "sync/atomic"

// AtomicSkipList is the single-writer / multi-reader variant. At most one
// goroutine may call Upsert at a time; any number of goroutines may call
// Find concurrently with each other and with that writer. Clear requires
// all readers and the writer to be quiesced. Find
// never blocks and never retries: it performs a bounded number of atomic
// loads. Violating the single-writer precondition is undefined behavior.
//
// Insertion of a new key becomes visible at the atomic store that links
// the bottom-level node; promotions become visible at their own stores,
// strictly after the bottom one. Updates overwrite each level's value
// cell independently, so a concurrent reader observes either the old or
// the new value at whichever level it matches on.
type AtomicSkipList[K comparable, V any] struct {
	heads  []*anode[K, V]
	less   Less[K]
	rng    *rng
	length atomic.Int64
}

// NewAtomicSkipList returns an atomic skip list with the given tower
// height. It panics with ErrInvalidHeight if height is below 1.
func NewAtomicSkipList[K comparable, V any](height int, less Less[K]) *AtomicSkipList[K, V] {
	return &AtomicSkipList[K, V]{
		heads: newAtomicTower[K, V](height),
		less:  less,
		rng:   newRNG(),
	}
}

// findInLevel walks one level forward until the next node's key would
// exceed key. Every link is chased with an atomic load, so a reader
// either observes a fully published node or misses it entirely.
func (l *AtomicSkipList[K, V]) findInLevel(current *anode[K, V], key K) *anode[K, V] {
	next := current.next.Load()
	for next != nil && !l.less(key, next.key) {
		current = next
		next = current.next.Load()
	}
	return current
}

// Upsert inserts key with value, or overwrites its value if key is
// already present. Only one goroutine may call Upsert at a time.
func (l *AtomicSkipList[K, V]) Upsert(key K, value V) {
	l.upsert(l.heads[0], key, value)
}

func (l *AtomicSkipList[K, V]) upsert(current *anode[K, V], key K, value V) *anode[K, V] {
	if current == nil {
		return nil
	}
	anchor := l.findInLevel(current, key)

	// update case
	if !anchor.sentinel && anchor.key == key {
		anchor.val.Store(&value)
		l.upsert(anchor.down, key, value)
		return nil
	}

	// the key is absent here; insert at the leaf level
	if anchor.down == nil {
		n := &anode[K, V]{key: key}
		n.val.Store(&value)
		l.chain(anchor, n)
		l.length.Add(1)
		return n
	}

	child := l.upsert(anchor.down, key, value)
	if child == nil {
		return nil
	}

	// extend the column at this level with p=0.5
	if l.rng.coin() {
		n := &anode[K, V]{key: key, down: child}
		n.val.Store(&value)
		l.chain(anchor, n)
		return n
	}
	return nil
}

// chain splices n into the level directly after prev. The first store
// targets a node no reader can reach yet; the second store publishes it.
// A reader that observes prev.next == n therefore observes n's key,
// value, down and next as well.
func (l *AtomicSkipList[K, V]) chain(prev, n *anode[K, V]) {
	n.next.Store(prev.next.Load())
	if beforePublishHook != nil {
		beforePublishHook()
	}
	prev.next.Store(n)
}

// Find returns the value stored for key. The boolean is true if the key
// exists, false otherwise. Find is safe to call from any number of
// goroutines concurrently with the writer. A reader that races with an
// in-flight insert either observes the new node or misses it on upper
// levels and settles the question at the bottom level.
func (l *AtomicSkipList[K, V]) Find(key K) (V, bool) {
	m := l.findInLevel(l.heads[0], key)
	for m.down != nil {
		if !m.sentinel && m.key == key {
			return *m.val.Load(), true
		}
		m = l.findInLevel(m.down, key)
	}
	if m.sentinel || m.key != key {
		var zero V
		return zero, false
	}
	return *m.val.Load(), true
}

// Clear severs every level's forward chain and resets the index to empty.
// It is not safe against concurrent readers or writers; callers must
// quiesce first.
func (l *AtomicSkipList[K, V]) Clear() {
	for _, head := range l.heads {
		current := head.next.Load()
		head.next.Store(nil)
		for current != nil {
			next := current.next.Load()
			current.next.Store(nil)
			current.down = nil
			current = next
		}
	}
	l.length.Store(0)
}

// Len returns the number of distinct keys in the index. It may be called
// concurrently with the writer.
func (l *AtomicSkipList[K, V]) Len() int {
	return int(l.length.Load())
}

// Height returns the tower height the index was constructed with.
func (l *AtomicSkipList[K, V]) Height() int {
	return len(l.heads)
}
