package notary

import (
	"github.com/vegetish/ledgernotary/pkg/uniqueness/bft"
	"github.com/vegetish/ledgernotary/pkg/util"
)

// BFTSigningBackend commits against a replicated uniqueness cluster
// and returns the encoded QuorumSignature as the client-visible
// notary signature, instead of a single ECDSA signature.
//
// When at least a quorum of replicas independently reject the same
// commit as a conflict, CommitCoordinator.Commit surfaces that as a
// *uniqueness.UniquenessError, same as the persistent provider, so
// errors.As-based ConflictError mapping in nonvalidating.go/validating.go
// works unchanged regardless of backend. A round that fails to reach
// quorum for any other reason (replicas unreachable, disagreement below
// quorum) surfaces as a plain error instead.
type BFTSigningBackend struct {
	Coordinator *bft.CommitCoordinator
}

func (b *BFTSigningBackend) Commit(inputs []util.StateRef, txID util.SecureHash, requester string) ([]byte, error) {
	sig, err := b.Coordinator.Commit(inputs, txID, requester)
	if err != nil {
		return nil, err
	}
	return bft.EncodeQuorumSignature(sig), nil
}
