package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelDBBackendPutGet(t *testing.T) {
	dir := t.TempDir()
	b, err := NewLevelDBBackend(filepath.Join(dir, "rows"))
	require.NoError(t, err)
	defer b.Close()

	_, found, err := b.Get([]byte("missing"))
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, b.Put([]byte("k"), []byte("v")))
	v, found, err := b.Get([]byte("k"))
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []byte("v"), v)
}

func TestLevelDBBackendBatchRollsBackOnError(t *testing.T) {
	dir := t.TempDir()
	b, err := NewLevelDBBackend(filepath.Join(dir, "rows"))
	require.NoError(t, err)
	defer b.Close()

	err = b.Batch(func(tx BatchTx) error {
		if err := tx.Put([]byte("a"), []byte("1")); err != nil {
			return err
		}
		return assert.AnError
	})
	require.Error(t, err)

	_, found, err := b.Get([]byte("a"))
	require.NoError(t, err)
	assert.False(t, found, "a failed batch must not leave a partial write behind")
}
