// Package uniqueness implements the uniqueness provider: the append-
// only StateRef -> ConsumingTx ledger that guarantees every prior
// output is spent at most once, in both a single-node persistent form
// and a BFT-replicated form (see the bft subpackage).
package uniqueness

import (
	"fmt"

	"github.com/vegetish/ledgernotary/pkg/util"
)

// ConsumingTx records the transaction that first spent a StateRef.
type ConsumingTx struct {
	TxID       util.SecureHash
	InputIndex uint32
	Requester  string
}

// Conflict lists, for each StateRef a commit attempt could not claim,
// the transaction that already holds it.
type Conflict map[util.StateRef]ConsumingTx

// UniquenessError reports that one or more inputs of a commit attempt
// were already spent by a different transaction. Nothing from the
// attempt was recorded.
type UniquenessError struct {
	Conflict Conflict
}

func (e *UniquenessError) Error() string {
	return fmt.Sprintf("uniqueness: %d input(s) already spent by a different transaction", len(e.Conflict))
}

// CommitEvent is emitted once a commit succeeds, for subscribers that
// want to observe newly-spent StateRefs without being on the commit's
// critical path.
type CommitEvent struct {
	TxID      util.SecureHash
	Inputs    []util.StateRef
	Requester string
}

// Provider is the uniqueness contract the persistent single-node
// implementation satisfies: commit a set of inputs against a
// transaction id and requester, atomically. The BFT subpackage's
// CommitCoordinator does not implement Provider; its own Commit makes
// the same decisions and returns a QuorumSignature.
type Provider interface {
	// Commit records every input of inputs as consumed by (txID,
	// requester), at their respective positions. If any input is
	// already recorded against a different txID, it fails with
	// *UniquenessError and records nothing new. Re-committing the
	// same (txID, inputs) after a prior success is a no-op success.
	Commit(inputs []util.StateRef, txID util.SecureHash, requester string) error

	// Subscribe returns a channel of CommitEvent for every successful
	// commit. The channel is bounded; under back-pressure the oldest
	// unconsumed event is dropped rather than blocking commits.
	Subscribe() <-chan CommitEvent
}
