package bft

import (
	"bytes"
	"errors"
	"fmt"
	"sort"

	mio "github.com/vegetish/ledgernotary/pkg/io"
	"github.com/vegetish/ledgernotary/pkg/uniqueness"
	"github.com/vegetish/ledgernotary/pkg/util"
)

// QuorumSignature stands in for a single aggregated/threshold
// signature: the set of at least 2f+1 independently-verified replica
// signatures over the same transaction id. See DESIGN.md for why this
// module does not attempt true BLS/threshold aggregation.
type QuorumSignature struct {
	TxID       util.SecureHash
	Signatures map[int][]byte
}

// EncodeQuorumSignature serializes sig as a list of (replica index,
// signature bytes) pairs in ascending replica-index order, the form a notary client ships to a
// counterparty alongside the transaction.
func EncodeQuorumSignature(sig *QuorumSignature) []byte {
	var buf bytes.Buffer
	w := mio.NewBinWriterFromIO(&buf)
	w.WriteHash(sig.TxID)
	w.WriteVarUint(uint64(len(sig.Signatures)))
	indices := make([]int, 0, len(sig.Signatures))
	for idx := range sig.Signatures {
		indices = append(indices, idx)
	}
	sort.Ints(indices)
	for _, idx := range indices {
		w.WriteVarUint(uint64(idx))
		w.WriteVarBytes(sig.Signatures[idx])
	}
	_ = w.Flush()
	return buf.Bytes()
}

// DecodeQuorumSignature is the mirror of EncodeQuorumSignature.
func DecodeQuorumSignature(b []byte) (*QuorumSignature, error) {
	r := mio.NewBinReaderFromIO(bytes.NewReader(b))
	txID := r.ReadHash()
	n := r.ReadVarUint()
	sigs := make(map[int][]byte, n)
	for i := uint64(0); i < n; i++ {
		idx := r.ReadVarUint()
		s := r.ReadVarBytes()
		sigs[int(idx)] = s
	}
	if r.Err != nil {
		return nil, r.Err
	}
	return &QuorumSignature{TxID: txID, Signatures: sigs}, nil
}

// Verify reports whether sig carries at least cluster.Quorum() valid,
// distinct-replica signatures over sig.TxID.
func (sig *QuorumSignature) Verify(cluster *Cluster) bool {
	valid := 0
	for idx, s := range sig.Signatures {
		if idx < 0 || idx >= len(cluster.Peers) {
			continue
		}
		if cluster.Peers[idx].PublicKey.Verify(s, sig.TxID.Bytes()) {
			valid++
		}
	}
	return valid >= cluster.Quorum()
}

// CommitCoordinator drives one commit round against every replica in
// a Cluster and assembles the client-visible QuorumSignature. It owns
// no network transport of its own — Replicas are evaluated directly,
// which is sufficient for a single-process cluster and for tests that
// simulate a faulty member; a real deployment replaces this with RPC
// calls to each peer's (host, port).
type CommitCoordinator struct {
	cluster  *Cluster
	replicas []*Replica
}

// NewCommitCoordinator builds a coordinator driving replicas, which
// must be listed in the same order as cluster.Peers.
func NewCommitCoordinator(cluster *Cluster, replicas []*Replica) (*CommitCoordinator, error) {
	if len(replicas) != len(cluster.Peers) {
		return nil, fmt.Errorf("bft: %d replicas does not match cluster of %d peers", len(replicas), len(cluster.Peers))
	}
	return &CommitCoordinator{cluster: cluster, replicas: replicas}, nil
}

// Commit runs the commit round: every replica independently evaluates
// the request against its own ledger (deterministic given the same
// command, so non-faulty replicas agree), and the coordinator verifies
// each returned signature against the replica's known public key.
// Fewer than 2f+1 matching signatures fails the round with no
// client-visible decision, unless at least 2f+1 replicas instead agree
// on the same rejection — a genuine conflict is then aggregated into a
// single *uniqueness.UniquenessError exactly as a single-node provider
// would report it, so the client cannot tell the two apart (spec.md
// invariant 9, "BFT equivalence").
func (c *CommitCoordinator) Commit(inputs []util.StateRef, txID util.SecureHash, requester string) (*QuorumSignature, error) {
	req := commitRequest{TxID: txID, Inputs: inputs, Requester: requester}
	reqBytes := encodeCommitRequest(req)

	sigs := make(map[int][]byte, len(c.replicas))
	conflict := make(uniqueness.Conflict)
	conflicting := 0
	for _, r := range c.replicas {
		sig, err := r.Evaluate(reqBytes)
		if err != nil {
			var uerr *uniqueness.UniquenessError
			if errors.As(err, &uerr) {
				conflicting++
				for ref, tx := range uerr.Conflict {
					conflict[ref] = tx
				}
			}
			continue
		}
		peer := c.cluster.Peers[r.Index]
		if !peer.PublicKey.Verify(sig, txID.Bytes()) {
			continue
		}
		sigs[r.Index] = sig
	}

	if len(sigs) >= c.cluster.Quorum() {
		return &QuorumSignature{TxID: txID, Signatures: sigs}, nil
	}
	if conflicting >= c.cluster.Quorum() {
		return nil, &uniqueness.UniquenessError{Conflict: conflict}
	}
	return nil, fmt.Errorf("bft: only %d of %d required signatures gathered", len(sigs), c.cluster.Quorum())
}
