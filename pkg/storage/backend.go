// Package storage implements the append-only persistent map: a
// Map[K,V] abstraction over a durable key-value table, fronted by a
// bounded read-through cache, that guarantees a key is never silently
// overwritten once set.
package storage

import "io"

// Backend is the durable table an AppendOnlyMap is built over. Keys
// and values are opaque bytes — the map's K,V encode/decode functions
// are the only place that gives them meaning.
type Backend interface {
	// Get returns the stored value for key and true, or nil and false
	// if no row exists.
	Get(key []byte) ([]byte, bool, error)
	// Put writes key/value unconditionally. Callers enforce the
	// write-once discipline; the backend itself does not.
	Put(key, value []byte) error
	// Batch runs fn against a single durable transaction: every Get
	// fn performs sees a consistent snapshot, and fn's Puts commit
	// together or not at all. A non-nil return from fn rolls the
	// transaction back with nothing written. This is what the
	// uniqueness provider's commit needs: read every input, decide,
	// and write every input, as one crash-atomic unit.
	Batch(fn func(tx BatchTx) error) error
	io.Closer
}

// BatchTx is the read/write handle Backend.Batch hands to fn.
type BatchTx interface {
	Get(key []byte) ([]byte, bool, error)
	Put(key, value []byte) error
}
