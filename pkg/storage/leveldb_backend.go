package storage

import (
	"github.com/syndtr/goleveldb/leveldb"
)

// LevelDBBackend is a Backend over a LevelDB table on disk.
type LevelDBBackend struct {
	db *leveldb.DB
}

// NewLevelDBBackend opens (creating if absent) a LevelDB table at path.
func NewLevelDBBackend(path string) (*LevelDBBackend, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, err
	}
	return &LevelDBBackend{db: db}, nil
}

func (b *LevelDBBackend) Get(key []byte) ([]byte, bool, error) {
	v, err := b.db.Get(key, nil)
	if err == leveldb.ErrNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

func (b *LevelDBBackend) Put(key, value []byte) error {
	return b.db.Put(key, value, nil)
}

// Batch runs fn inside a single leveldb.Transaction: leveldb discards
// the transaction (nothing committed) if fn returns an error,
// otherwise every write fn performed commits together.
func (b *LevelDBBackend) Batch(fn func(tx BatchTx) error) error {
	ltx, err := b.db.OpenTransaction()
	if err != nil {
		return err
	}
	if err := fn(leveldbBatchTx{ltx}); err != nil {
		ltx.Discard()
		return err
	}
	return ltx.Commit()
}

type leveldbBatchTx struct {
	tx *leveldb.Transaction
}

func (t leveldbBatchTx) Get(key []byte) ([]byte, bool, error) {
	v, err := t.tx.Get(key, nil)
	if err == leveldb.ErrNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

func (t leveldbBatchTx) Put(key, value []byte) error {
	return t.tx.Put(key, value, nil)
}

func (b *LevelDBBackend) Close() error {
	return b.db.Close()
}
