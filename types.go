package skiplist

import "errors"

// Less is a function that returns true if a is less than b.
type Less[K comparable] func(a, b K) bool

// ErrInvalidHeight is the panic value used when a skip list is constructed
// with a height below one. The tower height is fixed at construction and
// must hold at least the bottom level.
var ErrInvalidHeight = errors.New("skiplist: height must be at least 1")

// Index is the operation surface shared by all skip list variants.
// It lets harnesses and tests run the same workload against any variant.
type Index[K comparable, V any] interface {
	// Upsert inserts a new key-value pair into the index.
	// If the key already exists, the value is updated.
	Upsert(key K, value V)

	// Find returns the value for a key.
	// The boolean is true if the key exists, false otherwise.
	Find(key K) (V, bool)

	// Clear releases every node. Not safe against concurrent use.
	Clear()

	// Len returns the number of distinct keys in the index.
	Len() int

	// Height returns the tower height the index was constructed with.
	Height() int
}

var (
	_ Index[int, int] = (*SkipList[int, int])(nil)
	_ Index[int, int] = (*AtomicSkipList[int, int])(nil)
	_ Index[int, int] = (*MutexSkipList[int, int])(nil)
)
