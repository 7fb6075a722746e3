package notarychange

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/vegetish/ledgernotary/pkg/crypto/keys"
	"github.com/vegetish/ledgernotary/pkg/merkletx"
	"github.com/vegetish/ledgernotary/pkg/notary"
	"github.com/vegetish/ledgernotary/pkg/util"
)

// StateReplacementError reports that one or more participants refused
// to sign a notary-change transaction.
type StateReplacementError struct {
	Refused []string
}

func (e *StateReplacementError) Error() string {
	return fmt.Sprintf("notarychange: %d participant(s) refused the state replacement", len(e.Refused))
}

// SignatureGatherer asks participant to sign tx, or returns an error
// to record a refusal.
type SignatureGatherer func(tx *merkletx.Transaction, participant *keys.PublicKey) ([]byte, error)

// Protocol drives one notary-change round: every participant of the
// state being replaced must sign, then the change transaction is
// committed through the old notary's own uniqueness provider, exactly
// as any other transaction it notarises.
type Protocol struct {
	Participants   []*keys.PublicKey
	Gather         SignatureGatherer
	Backend        notary.SigningBackend
	DecodeStateRef func([]byte) (util.StateRef, error)
	Log            *zap.Logger
}

// Run gathers every participant's signature over tx and, if all of
// them sign, commits tx's INPUTS against Backend and returns the old
// notary's signature. Any refusal aborts with *StateReplacementError
// before anything is committed.
func (p *Protocol) Run(tx *merkletx.Transaction, requester string) ([]byte, error) {
	log := p.Log
	if log == nil {
		log = zap.NewNop()
	}

	var refused []string
	for _, participant := range p.Participants {
		sig, err := p.Gather(tx, participant)
		if err != nil || len(sig) == 0 || !participant.Verify(sig, tx.ID().Bytes()) {
			log.Warn("participant refused notary-change", zap.String("participant", participant.String()))
			refused = append(refused, participant.String())
			continue
		}
	}
	if len(refused) > 0 {
		return nil, &StateReplacementError{Refused: refused}
	}

	comps, ok := tx.Components(merkletx.InputsGroup)
	if !ok {
		return nil, fmt.Errorf("notarychange: change transaction carries no INPUTS group")
	}
	inputs := make([]util.StateRef, 0, len(comps))
	for _, c := range comps {
		ref, err := p.DecodeStateRef(c)
		if err != nil {
			return nil, fmt.Errorf("notarychange: decoding input: %w", err)
		}
		inputs = append(inputs, ref)
	}

	return p.Backend.Commit(inputs, tx.ID(), requester)
}
