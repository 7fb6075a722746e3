package storage

import (
	"time"

	bolt "go.etcd.io/bbolt"
)

var rowsBucket = []byte("rows")

// BoltBackend is a Backend over a single-file bbolt table. Used for
// the uniqueness provider's durable commit log, where a single
// ACID-transactional write per commit matters more than raw
// throughput.
type BoltBackend struct {
	db *bolt.DB
}

// NewBoltBackend opens (creating if absent) a bbolt table at path.
func NewBoltBackend(path string) (*BoltBackend, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(rowsBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &BoltBackend{db: db}, nil
}

func (b *BoltBackend) Get(key []byte) ([]byte, bool, error) {
	var v []byte
	var found bool
	err := b.db.View(func(tx *bolt.Tx) error {
		row := tx.Bucket(rowsBucket).Get(key)
		if row == nil {
			return nil
		}
		found = true
		v = make([]byte, len(row))
		copy(v, row)
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return v, found, nil
}

func (b *BoltBackend) Put(key, value []byte) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(rowsBucket).Put(key, value)
	})
}

// Batch runs fn inside a single durable bbolt transaction: bolt rolls
// the transaction back automatically if fn returns an error, so a
// reader that decides mid-fn not to write anything costs nothing.
func (b *BoltBackend) Batch(fn func(tx BatchTx) error) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		return fn(boltBatchTx{tx.Bucket(rowsBucket)})
	})
}

type boltBatchTx struct {
	bucket *bolt.Bucket
}

func (t boltBatchTx) Get(key []byte) ([]byte, bool, error) {
	row := t.bucket.Get(key)
	if row == nil {
		return nil, false, nil
	}
	cp := make([]byte, len(row))
	copy(cp, row)
	return cp, true, nil
}

func (t boltBatchTx) Put(key, value []byte) error {
	return t.bucket.Put(key, value)
}

func (b *BoltBackend) Close() error {
	return b.db.Close()
}
