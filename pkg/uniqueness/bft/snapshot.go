package bft

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"github.com/pierrec/lz4"

	"github.com/vegetish/ledgernotary/pkg/uniqueness"
	"github.com/vegetish/ledgernotary/pkg/util"
)

// snapshotStore keeps an lz4-compressed audit blob per committed
// input, keyed by "txId:index" — a secondary record a replica can
// replay or ship to an auditor independently of its append-only
// ledger, compressed since replicas retain every commit forever.
type snapshotStore struct {
	mtx   sync.RWMutex
	blobs map[string][]byte
}

func newSnapshotStore() *snapshotStore {
	return &snapshotStore{blobs: make(map[string][]byte)}
}

func snapshotKey(ref util.StateRef) string {
	return fmt.Sprintf("%s:%d", ref.TxID, ref.Index)
}

func (s *snapshotStore) Put(ref util.StateRef, entry uniqueness.ConsumingTx) error {
	raw := encodeConsumingTxForSnapshot(entry)

	var buf bytes.Buffer
	w := lz4.NewWriter(&buf)
	if _, err := w.Write(raw); err != nil {
		return fmt.Errorf("bft: compressing snapshot entry: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("bft: closing snapshot writer: %w", err)
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()
	s.blobs[snapshotKey(ref)] = buf.Bytes()
	return nil
}

func (s *snapshotStore) Get(ref util.StateRef) (uniqueness.ConsumingTx, bool, error) {
	s.mtx.RLock()
	compressed, ok := s.blobs[snapshotKey(ref)]
	s.mtx.RUnlock()
	if !ok {
		return uniqueness.ConsumingTx{}, false, nil
	}

	r := lz4.NewReader(bytes.NewReader(compressed))
	raw, err := io.ReadAll(r)
	if err != nil {
		return uniqueness.ConsumingTx{}, false, fmt.Errorf("bft: decompressing snapshot entry: %w", err)
	}
	entry, err := decodeConsumingTxForSnapshot(raw)
	if err != nil {
		return uniqueness.ConsumingTx{}, false, err
	}
	return entry, true, nil
}
