package storage

import "sync"

// MemoryBackend is an in-memory Backend, useful for tests and for the
// notary's short-lived scratch state. It is safe for concurrent use.
type MemoryBackend struct {
	mtx  sync.RWMutex
	rows map[string][]byte
}

// NewMemoryBackend returns an empty MemoryBackend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{rows: make(map[string][]byte)}
}

func (m *MemoryBackend) Get(key []byte) ([]byte, bool, error) {
	m.mtx.RLock()
	defer m.mtx.RUnlock()

	v, ok := m.rows[string(key)]
	if !ok {
		return nil, false, nil
	}
	cp := make([]byte, len(v))
	copy(cp, v)
	return cp, true, nil
}

func (m *MemoryBackend) Put(key, value []byte) error {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	cp := make([]byte, len(value))
	copy(cp, value)
	m.rows[string(key)] = cp
	return nil
}

// Batch holds the single mutex for fn's whole duration and stages
// every Put in memory; the staged rows are only merged into m.rows
// once fn returns successfully, so an fn that errors after writing
// something leaves the backend exactly as it found it, same as the
// durable backends rolling back a transaction.
func (m *MemoryBackend) Batch(fn func(tx BatchTx) error) error {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	tx := &memoryBatchTx{m: m, pending: make(map[string][]byte)}
	if err := fn(tx); err != nil {
		return err
	}
	for k, v := range tx.pending {
		m.rows[k] = v
	}
	return nil
}

type memoryBatchTx struct {
	m       *MemoryBackend
	pending map[string][]byte
}

func (t *memoryBatchTx) Get(key []byte) ([]byte, bool, error) {
	if v, ok := t.pending[string(key)]; ok {
		cp := make([]byte, len(v))
		copy(cp, v)
		return cp, true, nil
	}
	v, ok := t.m.rows[string(key)]
	if !ok {
		return nil, false, nil
	}
	cp := make([]byte, len(v))
	copy(cp, v)
	return cp, true, nil
}

func (t *memoryBatchTx) Put(key, value []byte) error {
	cp := make([]byte, len(value))
	copy(cp, value)
	t.pending[string(key)] = cp
	return nil
}

func (m *MemoryBackend) Close() error { return nil }
