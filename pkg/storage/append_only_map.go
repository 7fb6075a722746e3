package storage

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru"
	"go.uber.org/zap"
)

// cacheEntry records what the front cache knows about a key: either a
// confirmed value, or a confirmed absence. A cached absence is the
// only entry that ever transitions — to a confirmed presence, the
// first time a later Set/AddIfAbsent observes the row.
type cacheEntry[V any] struct {
	present bool
	value   V
}

// AppendOnlyMap is a Map[K,V] over a durable Backend, guaranteeing a
// key is never silently overwritten: Set is the strict variant that
// refuses to touch an already-present key, AddIfAbsent is the safe
// variant that reports whether it actually inserted.
type AppendOnlyMap[K comparable, V any] struct {
	backend Backend
	cache   *lru.Cache
	log     *zap.Logger

	encodeKey   func(K) []byte
	encodeValue func(V) []byte
	decodeValue func([]byte) (V, error)
}

// NewAppendOnlyMap builds a map fronted by an LRU cache of cacheSize
// entries. encodeKey/encodeValue/decodeValue give meaning to the
// backend's opaque bytes; this package has no serialization codec of
// its own.
func NewAppendOnlyMap[K comparable, V any](
	backend Backend,
	cacheSize int,
	log *zap.Logger,
	encodeKey func(K) []byte,
	encodeValue func(V) []byte,
	decodeValue func([]byte) (V, error),
) (*AppendOnlyMap[K, V], error) {
	cache, err := lru.New(cacheSize)
	if err != nil {
		return nil, fmt.Errorf("storage: building cache: %w", err)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &AppendOnlyMap[K, V]{
		backend:     backend,
		cache:       cache,
		log:         log,
		encodeKey:   encodeKey,
		encodeValue: encodeValue,
		decodeValue: decodeValue,
	}, nil
}

// Get consults the cache first; on miss it reads the backend row and
// populates the cache with either the found value or a confirmed
// absence, so a repeated miss does not hit the backend again.
func (m *AppendOnlyMap[K, V]) Get(key K) (V, bool, error) {
	var zero V
	if cached, ok := m.cache.Get(key); ok {
		entry := cached.(cacheEntry[V])
		return entry.value, entry.present, nil
	}

	raw, found, err := m.backend.Get(m.encodeKey(key))
	if err != nil {
		return zero, false, err
	}
	if !found {
		m.cache.Add(key, cacheEntry[V]{present: false})
		return zero, false, nil
	}

	v, err := m.decodeValue(raw)
	if err != nil {
		return zero, false, fmt.Errorf("storage: decoding value: %w", err)
	}
	m.cache.Add(key, cacheEntry[V]{present: true, value: v})
	return v, true, nil
}

// Set is the strict variant: it fails if key is already cached
// present. It does not itself check the backend, so a key that is
// present in the backend but has never been read through this map
// instance is not detected — callers are responsible for ensuring
// uniqueness; duplicate insertion beyond that is undefined behaviour.
func (m *AppendOnlyMap[K, V]) Set(key K, value V) error {
	if cached, ok := m.cache.Get(key); ok {
		if cached.(cacheEntry[V]).present {
			return fmt.Errorf("storage: key already set")
		}
	}
	if err := m.backend.Put(m.encodeKey(key), m.encodeValue(value)); err != nil {
		return err
	}
	m.cache.Add(key, cacheEntry[V]{present: true, value: value})
	return nil
}

// AddIfAbsent is the safe variant: it atomically checks the backend
// and, if the row is absent, persists value and caches it; if present,
// it leaves the stored value unchanged, logs a warning, and returns
// false.
func (m *AppendOnlyMap[K, V]) AddIfAbsent(key K, value V) (bool, error) {
	encKey := m.encodeKey(key)
	var existing []byte
	var found bool
	err := m.backend.Batch(func(tx BatchTx) error {
		raw, ok, err := tx.Get(encKey)
		if err != nil || ok {
			existing, found = raw, ok
			return err
		}
		return tx.Put(encKey, m.encodeValue(value))
	})
	if err != nil {
		return false, err
	}
	if found {
		m.log.Warn("AddIfAbsent: key already present, leaving stored value unchanged",
			zap.Any("key", key))
		v, decErr := m.decodeValue(existing)
		if decErr == nil {
			m.cache.Add(key, cacheEntry[V]{present: true, value: v})
		}
		return false, nil
	}
	m.cache.Add(key, cacheEntry[V]{present: true, value: value})
	return true, nil
}

// Clear empties the front cache. It is not thread-safe with respect
// to concurrent writers and exists only for administrative reset; the
// backend's durable rows are untouched.
func (m *AppendOnlyMap[K, V]) Clear() {
	m.cache.Purge()
}

// CommitBatch evaluates every (keys[i], values[i]) pair inside one
// durable backend transaction: it reads each key fresh from the
// backend, and isConflict decides whether an already-present value
// blocks values[i] from being written. If any key conflicts, nothing
// is written and the conflicting existing values are returned keyed by
// their index into keys; a key already present but not in conflict
// (idempotent retry) is simply left alone. Otherwise every absent key
// is written in that same transaction, and the cache is updated only
// once the transaction has durably committed. This is the read-then-
// multi-write primitive a caller needing all-or-nothing atomicity
// across several keys builds on, rather than looping Get/AddIfAbsent.
func (m *AppendOnlyMap[K, V]) CommitBatch(keys []K, values []V, isConflict func(existing, candidate V) bool) (map[int]V, error) {
	if len(keys) != len(values) {
		return nil, fmt.Errorf("storage: CommitBatch got %d keys but %d values", len(keys), len(values))
	}

	conflicts := make(map[int]V)
	err := m.backend.Batch(func(tx BatchTx) error {
		found := make([]bool, len(keys))
		for i, k := range keys {
			raw, ok, err := tx.Get(m.encodeKey(k))
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
			found[i] = true
			existing, err := m.decodeValue(raw)
			if err != nil {
				return fmt.Errorf("storage: decoding value: %w", err)
			}
			if isConflict(existing, values[i]) {
				conflicts[i] = existing
			}
		}
		if len(conflicts) > 0 {
			return nil
		}
		for i, k := range keys {
			if found[i] {
				continue
			}
			if err := tx.Put(m.encodeKey(k), m.encodeValue(values[i])); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(conflicts) > 0 {
		return conflicts, nil
	}

	for i, k := range keys {
		m.cache.Add(k, cacheEntry[V]{present: true, value: values[i]})
	}
	return nil, nil
}
