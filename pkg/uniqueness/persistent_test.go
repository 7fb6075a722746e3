package uniqueness

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vegetish/ledgernotary/pkg/storage"
	"github.com/vegetish/ledgernotary/pkg/util"
)

func newTestProvider(t *testing.T) *PersistentProvider {
	t.Helper()
	p, err := NewPersistentProvider(storage.NewMemoryBackend(), 64, nil)
	require.NoError(t, err)
	return p
}

func testHash(t *testing.T, seed byte) util.SecureHash {
	t.Helper()
	var b [32]byte
	for i := range b {
		b[i] = seed + byte(i)
	}
	h, err := util.SecureHashFromBytes(b[:])
	require.NoError(t, err)
	return h
}

// S4: commit(H1,0) under T,R twice is Ok both times; committing the
// same ref under a different tx T' conflicts naming the original.
func TestScenarioS4CommitIdempotentThenConflicts(t *testing.T) {
	p := newTestProvider(t)
	h1 := testHash(t, 1)
	txT := testHash(t, 10)
	txTPrime := testHash(t, 20)
	ref := util.StateRef{TxID: h1, Index: 0}

	require.NoError(t, p.Commit([]util.StateRef{ref}, txT, "R"))
	require.NoError(t, p.Commit([]util.StateRef{ref}, txT, "R"))

	err := p.Commit([]util.StateRef{ref}, txTPrime, "R-prime")
	require.Error(t, err)
	var uerr *UniquenessError
	require.ErrorAs(t, err, &uerr)
	require.Contains(t, uerr.Conflict, ref)
	assert.True(t, uerr.Conflict[ref].TxID.Equals(txT))
	assert.Equal(t, uint32(0), uerr.Conflict[ref].InputIndex)
}

// Invariant 8: if a commit observes that one input among several is
// already spent by a different tx, none of the others are recorded.
func TestCommitAtomicOnPartialConflict(t *testing.T) {
	p := newTestProvider(t)
	a := util.StateRef{TxID: testHash(t, 1), Index: 0}
	b := util.StateRef{TxID: testHash(t, 2), Index: 0}
	c := util.StateRef{TxID: testHash(t, 3), Index: 0}

	txFirst := testHash(t, 100)
	require.NoError(t, p.Commit([]util.StateRef{b}, txFirst, "first"))

	txSecond := testHash(t, 200)
	err := p.Commit([]util.StateRef{a, b, c}, txSecond, "second")
	require.Error(t, err)

	_, foundA, err := p.ledger.Get(a)
	require.NoError(t, err)
	assert.False(t, foundA, "a must not be recorded when b conflicted")

	_, foundC, err := p.ledger.Get(c)
	require.NoError(t, err)
	assert.False(t, foundC, "c must not be recorded when b conflicted")
}

func TestCommitPublishesEventOnSuccess(t *testing.T) {
	p := newTestProvider(t)
	ref := util.StateRef{TxID: testHash(t, 1), Index: 0}
	tx := testHash(t, 2)

	require.NoError(t, p.Commit([]util.StateRef{ref}, tx, "R"))

	select {
	case ev := <-p.Subscribe():
		assert.True(t, ev.TxID.Equals(tx))
		assert.Equal(t, []util.StateRef{ref}, ev.Inputs)
	case <-time.After(time.Second):
		t.Fatal("expected a commit event")
	}
}
