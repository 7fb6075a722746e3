package notary

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/vegetish/ledgernotary/internal/fakeclock"
	"github.com/vegetish/ledgernotary/pkg/crypto/keys"
	mio "github.com/vegetish/ledgernotary/pkg/io"
	"github.com/vegetish/ledgernotary/pkg/merkletx"
	"github.com/vegetish/ledgernotary/pkg/storage"
	"github.com/vegetish/ledgernotary/pkg/uniqueness"
	"github.com/vegetish/ledgernotary/pkg/util"
)

func testKey(t *testing.T, seed byte) *keys.PrivateKey {
	t.Helper()
	var b [32]byte
	for i := range b {
		b[i] = seed + byte(i)
	}
	k, err := keys.NewPrivateKeyFromBytes(b[:])
	require.NoError(t, err)
	return k
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

func stateRefBytes(t *testing.T, ref util.StateRef) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := mio.NewBinWriterFromIO(&buf)
	w.WriteHash(ref.TxID)
	w.WriteU32LE(ref.Index)
	require.NoError(t, w.Flush())
	return buf.Bytes()
}

func decodeStateRef(b []byte) (util.StateRef, error) {
	r := mio.NewBinReaderFromIO(bytes.NewReader(b))
	txID := r.ReadHash()
	idx := r.ReadU32LE()
	if r.Err != nil {
		return util.StateRef{}, r.Err
	}
	return util.StateRef{TxID: txID, Index: idx}, nil
}

func buildNotarizedTx(t *testing.T, salt *util.SecureHash, notary *keys.PublicKey, input util.StateRef, tw *TimeWindow) *merkletx.Transaction {
	t.Helper()
	groups := []merkletx.ComponentGroup{
		{GroupIndex: merkletx.InputsGroup, Components: [][]byte{stateRefBytes(t, input)}},
		{GroupIndex: merkletx.NotaryGroup, Components: [][]byte{notary.Bytes()}},
	}
	if tw != nil {
		groups = append(groups, merkletx.ComponentGroup{
			GroupIndex: merkletx.TimeWindowGroup,
			Components: [][]byte{EncodeTimeWindow(tw)},
		})
	}
	tx, err := merkletx.Build(groups, salt, nil)
	require.NoError(t, err)
	return tx
}

func filterFull(t *testing.T, tx *merkletx.Transaction, predicate merkletx.Predicate) *merkletx.FilteredTransaction {
	t.Helper()
	return tx.Filter(predicate)
}

func revealAll(uint16, int, []byte) bool { return true }

func newBackend(t *testing.T, identity *keys.PrivateKey) *PersistentSigningBackend {
	t.Helper()
	provider, err := uniqueness.NewPersistentProvider(storage.NewMemoryBackend(), 32, zaptest.NewLogger(t))
	require.NoError(t, err)
	return &PersistentSigningBackend{Provider: provider, Identity: identity}
}

func TestNonValidatingServiceCommitsAndSigns(t *testing.T) {
	notaryKey := testKey(t, 1)
	salt := &util.SecureHash{}
	*salt = testHash(t, 9)
	input := util.StateRef{TxID: testHash(t, 20), Index: 0}

	tx := buildNotarizedTx(t, salt, notaryKey.PublicKey(), input, nil)
	ft := filterFull(t, tx, revealAll)

	backend := newBackend(t, notaryKey)
	svc := &NonValidatingService{
		Identity:       notaryKey.PublicKey(),
		Backend:        backend,
		DecodeStateRef: decodeStateRef,
		Log:            zaptest.NewLogger(t),
	}

	sig, err := svc.Process(ft, "alice")
	require.NoError(t, err)
	assert.True(t, notaryKey.PublicKey().Verify(sig, ft.ID.Bytes()))
}

func TestNonValidatingServiceRejectsWrongNotary(t *testing.T) {
	notaryKey := testKey(t, 1)
	otherKey := testKey(t, 2)
	salt := &util.SecureHash{}
	*salt = testHash(t, 9)
	input := util.StateRef{TxID: testHash(t, 20), Index: 0}

	tx := buildNotarizedTx(t, salt, otherKey.PublicKey(), input, nil)
	ft := filterFull(t, tx, revealAll)

	backend := newBackend(t, notaryKey)
	svc := &NonValidatingService{
		Identity:       notaryKey.PublicKey(),
		Backend:        backend,
		DecodeStateRef: decodeStateRef,
		Log:            zaptest.NewLogger(t),
	}

	_, err := svc.Process(ft, "alice")
	require.Error(t, err)
	var wrongNotary *WrongNotaryError
	assert.ErrorAs(t, err, &wrongNotary)
}

func TestNonValidatingServiceRejectsExpiredWindow(t *testing.T) {
	notaryKey := testKey(t, 1)
	salt := &util.SecureHash{}
	*salt = testHash(t, 9)
	input := util.StateRef{TxID: testHash(t, 20), Index: 0}

	past := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	tw := &TimeWindow{To: &past, ToInclusive: true}
	tx := buildNotarizedTx(t, salt, notaryKey.PublicKey(), input, tw)
	ft := filterFull(t, tx, revealAll)

	backend := newBackend(t, notaryKey)
	svc := &NonValidatingService{
		Identity:       notaryKey.PublicKey(),
		Backend:        backend,
		Clock:          fakeclock.New(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)),
		DecodeStateRef: decodeStateRef,
		Log:            zaptest.NewLogger(t),
	}

	_, err := svc.Process(ft, "alice")
	require.Error(t, err)
	var twErr *TimeWindowInvalidError
	assert.ErrorAs(t, err, &twErr)
}

func TestNonValidatingServiceReportsConflict(t *testing.T) {
	notaryKey := testKey(t, 1)
	salt := &util.SecureHash{}
	*salt = testHash(t, 9)
	input := util.StateRef{TxID: testHash(t, 20), Index: 0}

	backend := newBackend(t, notaryKey)
	svc := &NonValidatingService{
		Identity:       notaryKey.PublicKey(),
		Backend:        backend,
		DecodeStateRef: decodeStateRef,
		Log:            zaptest.NewLogger(t),
	}

	tx1 := buildNotarizedTx(t, salt, notaryKey.PublicKey(), input, nil)
	ft1 := filterFull(t, tx1, revealAll)
	_, err := svc.Process(ft1, "alice")
	require.NoError(t, err)

	salt2 := &util.SecureHash{}
	*salt2 = testHash(t, 77)
	tx2 := buildNotarizedTx(t, salt2, notaryKey.PublicKey(), input, nil)
	ft2 := filterFull(t, tx2, revealAll)
	_, err = svc.Process(ft2, "bob")
	require.Error(t, err)
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Len(t, conflict.Conflict, 1)
}

func TestValidatingServiceChecksRequiredSignaturesAndContracts(t *testing.T) {
	notaryKey := testKey(t, 1)
	signerKey := testKey(t, 3)
	salt := &util.SecureHash{}
	*salt = testHash(t, 9)
	input := util.StateRef{TxID: testHash(t, 20), Index: 0}

	tx := buildNotarizedTx(t, salt, notaryKey.PublicKey(), input, nil)

	backend := newBackend(t, notaryKey)
	contractCalls := 0
	svc := &ValidatingService{
		Identity:       notaryKey.PublicKey(),
		Backend:        backend,
		DecodeStateRef: decodeStateRef,
		VerifyContracts: func(tx *merkletx.Transaction, resolve DependencyResolver) error {
			contractCalls++
			return nil
		},
		Log: zaptest.NewLogger(t),
	}

	sig := signerKey.Sign(tx.ID().Bytes())
	required := []RequiredSignature{{Signer: signerKey.PublicKey(), Signature: sig}}

	out, err := svc.Process(tx, required, "alice")
	require.NoError(t, err)
	assert.True(t, notaryKey.PublicKey().Verify(out, tx.ID().Bytes()))
	assert.Equal(t, 1, contractCalls)
}

func TestValidatingServiceRejectsMissingSignature(t *testing.T) {
	notaryKey := testKey(t, 1)
	signerKey := testKey(t, 3)
	salt := &util.SecureHash{}
	*salt = testHash(t, 9)
	input := util.StateRef{TxID: testHash(t, 20), Index: 0}

	tx := buildNotarizedTx(t, salt, notaryKey.PublicKey(), input, nil)
	backend := newBackend(t, notaryKey)
	svc := &ValidatingService{
		Identity:       notaryKey.PublicKey(),
		Backend:        backend,
		DecodeStateRef: decodeStateRef,
		Log:            zaptest.NewLogger(t),
	}

	required := []RequiredSignature{{Signer: signerKey.PublicKey(), Signature: nil}}
	_, err := svc.Process(tx, required, "alice")
	require.Error(t, err)
	var missing *SignaturesMissingError
	require.ErrorAs(t, err, &missing)
	assert.Len(t, missing.Missing, 1)
}

func TestValidatingServiceRejectsContractFailure(t *testing.T) {
	notaryKey := testKey(t, 1)
	salt := &util.SecureHash{}
	*salt = testHash(t, 9)
	input := util.StateRef{TxID: testHash(t, 20), Index: 0}

	tx := buildNotarizedTx(t, salt, notaryKey.PublicKey(), input, nil)
	backend := newBackend(t, notaryKey)
	svc := &ValidatingService{
		Identity:       notaryKey.PublicKey(),
		Backend:        backend,
		DecodeStateRef: decodeStateRef,
		VerifyContracts: func(tx *merkletx.Transaction, resolve DependencyResolver) error {
			return assertErr
		},
		Log: zaptest.NewLogger(t),
	}

	_, err := svc.Process(tx, nil, "alice")
	require.Error(t, err)
	var invalid *TransactionInvalidError
	require.ErrorAs(t, err, &invalid)
}

var assertErr = &contractError{"contract rejected spend"}

type contractError struct{ msg string }

func (e *contractError) Error() string { return e.msg }

func TestDependencyCacheFetchesOnceForSharedTxID(t *testing.T) {
	cache, err := NewDependencyCache(8)
	require.NoError(t, err)

	salt := &util.SecureHash{}
	*salt = testHash(t, 42)
	dep, err := merkletx.Build([]merkletx.ComponentGroup{
		{GroupIndex: merkletx.OutputsGroup, Components: [][]byte{[]byte("out")}},
	}, salt, nil)
	require.NoError(t, err)

	fetches := 0
	fetch := func(util.SecureHash) (*merkletx.Transaction, error) {
		fetches++
		return dep, nil
	}

	got1, err := cache.Resolve(dep.ID(), fetch)
	require.NoError(t, err)
	got2, err := cache.Resolve(dep.ID(), fetch)
	require.NoError(t, err)

	assert.Same(t, got1, got2)
	assert.Equal(t, 1, fetches)
}

func TestTimeWindowEncodeDecodeRoundTrip(t *testing.T) {
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	w := &TimeWindow{From: &from, FromInclusive: true, To: &to, ToInclusive: false}

	decoded, err := DecodeTimeWindow(EncodeTimeWindow(w))
	require.NoError(t, err)
	assert.True(t, decoded.From.Equal(from))
	assert.True(t, decoded.FromInclusive)
	assert.True(t, decoded.To.Equal(to))
	assert.False(t, decoded.ToInclusive)
}

func TestTimeWindowExclusiveBoundary(t *testing.T) {
	bound := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	w := &TimeWindow{From: &bound, FromInclusive: false}

	assert.Error(t, w.Evaluate(bound))
	assert.NoError(t, w.Evaluate(bound.Add(time.Second)))
}

func TestTimeWindowInclusiveBoundary(t *testing.T) {
	bound := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	w := &TimeWindow{To: &bound, ToInclusive: true}

	assert.NoError(t, w.Evaluate(bound))
	assert.Error(t, w.Evaluate(bound.Add(time.Second)))
}

func TestSessionStateMachineTransitions(t *testing.T) {
	sess := newSession(zaptest.NewLogger(t))
	assert.Equal(t, stateIdle, sess.state)
	sess.transition(stateVerifying)
	assert.Equal(t, stateVerifying, sess.state)
	sess.transition(stateSendSig)
	assert.Equal(t, stateSendSig, sess.state)
}
