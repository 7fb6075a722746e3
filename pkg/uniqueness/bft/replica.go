package bft

import (
	"github.com/vegetish/ledgernotary/pkg/storage"
	"github.com/vegetish/ledgernotary/pkg/uniqueness"
)

// Replica runs the same append-only uniqueness map as the persistent
// provider, applied deterministically to each request the cluster
// agrees on. One replica corresponds to one notary identity's share
// of the cluster.
type Replica struct {
	Index  int
	id     *privateKey
	ledger *uniqueness.PersistentProvider
	blobs  *snapshotStore
	faulty bool
}

// NewReplica builds a replica backed by its own durable ledger.
func NewReplica(index int, identity *privateKey, backend storage.Backend, cacheSize int) (*Replica, error) {
	ledger, err := uniqueness.NewPersistentProvider(backend, cacheSize, nil)
	if err != nil {
		return nil, err
	}
	return &Replica{
		Index:  index,
		id:     identity,
		ledger: ledger,
		blobs:  newSnapshotStore(),
	}, nil
}

// SetFaulty marks the replica as Byzantine for test scenarios: it
// still applies the command to its own ledger (so its local state
// stays legitimate) but signs an unrelated message, producing a
// signature that will fail verification at the coordinator.
func (r *Replica) SetFaulty(faulty bool) {
	r.faulty = faulty
}

// Evaluate applies a replica-to-replica encoded commitRequest to this
// replica's local state and, on success, returns its partial
// signature over the transaction id. Time-window validation (when a
// TIMEWINDOW group accompanies the request) happens before this, at
// the notary layer that proposes the command — the replica's only
// job here is uniqueness.
func (r *Replica) Evaluate(reqBytes []byte) ([]byte, error) {
	req, err := decodeCommitRequest(reqBytes)
	if err != nil {
		return nil, err
	}

	if err := r.ledger.Commit(req.Inputs, req.TxID, req.Requester); err != nil {
		return nil, err
	}
	for i, in := range req.Inputs {
		_ = r.blobs.Put(in, uniqueness.ConsumingTx{
			TxID:       req.TxID,
			InputIndex: uint32(i),
			Requester:  req.Requester,
		})
	}

	if r.faulty {
		return r.id.Sign(append([]byte("not-the-tx-id"), req.TxID.Bytes()...))
	}
	return r.id.Sign(req.TxID.Bytes())
}
