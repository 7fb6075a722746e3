package notary

import (
	"errors"

	"go.uber.org/zap"

	"github.com/vegetish/ledgernotary/pkg/crypto/keys"
	"github.com/vegetish/ledgernotary/pkg/merkletx"
	"github.com/vegetish/ledgernotary/pkg/uniqueness"
	"github.com/vegetish/ledgernotary/pkg/util"
)

// NonValidatingService implements the non-validating notary mode: it
// sees only a FilteredTransaction, never the contract logic behind
// it, relying entirely on the selective-disclosure proof to establish
// that the inputs and notary/time-window declarations are authentic.
type NonValidatingService struct {
	Identity       *keys.PublicKey
	Backend        SigningBackend
	Clock          Clock
	DecodeStateRef func([]byte) (util.StateRef, error)
	Log            *zap.Logger
}

// Process runs a FilteredTransaction through the request state
// machine: verify, check notary and time window, commit, sign.
func (s *NonValidatingService) Process(ft *merkletx.FilteredTransaction, requester string) ([]byte, error) {
	sess := newSession(s.Log)
	clock := s.Clock
	if clock == nil {
		clock = SystemClock{}
	}

	sess.transition(stateVerifying)
	if err := ft.Verify(); err != nil {
		sess.transition(stateSendErr)
		return nil, &TransactionInvalidError{Cause: err}
	}
	for _, g := range []uint16{merkletx.InputsGroup, merkletx.NotaryGroup, merkletx.TimeWindowGroup} {
		if err := ft.CheckAllComponentsVisible(g); err != nil {
			sess.transition(stateSendErr)
			return nil, &TransactionInvalidError{Cause: err}
		}
	}

	notaryComp, ok := singletonComponent(ft, merkletx.NotaryGroup)
	if !ok {
		sess.transition(stateSendErr)
		return nil, &WrongNotaryError{Declared: "<absent>", Actual: s.Identity.String()}
	}
	if err := identityMatches(notaryComp, s.Identity); err != nil {
		sess.transition(stateSendErr)
		return nil, err
	}

	inputs, err := decodeInputs(ft, s.DecodeStateRef)
	if err != nil {
		sess.transition(stateSendErr)
		return nil, err
	}

	if twComp, hasWindow := singletonComponent(ft, merkletx.TimeWindowGroup); hasWindow {
		tw, err := DecodeTimeWindow(twComp)
		if err != nil {
			sess.transition(stateSendErr)
			return nil, &TransactionInvalidError{Cause: err}
		}
		if err := tw.Evaluate(clock.Now()); err != nil {
			sess.transition(stateSendErr)
			return nil, &TimeWindowInvalidError{Reason: err.Error()}
		}
	}

	sess.transition(stateCommitting)
	sig, err := s.Backend.Commit(inputs, ft.ID, requester)
	if err != nil {
		sess.transition(stateSendErr)
		var uerr *uniqueness.UniquenessError
		if errors.As(err, &uerr) {
			return nil, &ConflictError{Conflict: uerr.Conflict}
		}
		return nil, err
	}

	sess.transition(stateSigning)
	sess.transition(stateSendSig)
	return sig, nil
}

// singletonComponent returns the lone revealed component of a
// singleton well-known group, if it was disclosed.
func singletonComponent(ft *merkletx.FilteredTransaction, groupIndex uint16) ([]byte, bool) {
	for _, g := range ft.Groups {
		if g.GroupIndex == groupIndex && len(g.RevealedComponents) == 1 {
			return g.RevealedComponents[0], true
		}
	}
	return nil, false
}
