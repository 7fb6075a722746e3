package notary

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/vegetish/ledgernotary/pkg/crypto/keys"
	"github.com/vegetish/ledgernotary/pkg/merkletx"
	"github.com/vegetish/ledgernotary/pkg/uniqueness"
	"github.com/vegetish/ledgernotary/pkg/util"
)

// SigningBackend commits a set of inputs and, on success, returns the
// client-visible notary signature: a single ECDSA signature for a
// persistent provider, or an encoded QuorumSignature for a BFT
// cluster. Conflicts are reported as *uniqueness.UniquenessError.
type SigningBackend interface {
	Commit(inputs []util.StateRef, txID util.SecureHash, requester string) ([]byte, error)
}

// PersistentSigningBackend commits against a single-node
// PersistentProvider and signs with the notary's own identity key.
type PersistentSigningBackend struct {
	Provider *uniqueness.PersistentProvider
	Identity *keys.PrivateKey
}

func (b *PersistentSigningBackend) Commit(inputs []util.StateRef, txID util.SecureHash, requester string) ([]byte, error) {
	if err := b.Provider.Commit(inputs, txID, requester); err != nil {
		return nil, err
	}
	return b.Identity.Sign(txID.Bytes()), nil
}

// requestState names the stages of the per-request state machine
// described in SPEC_FULL.md: suspension points only ever occur
// between these, and the uniqueness mutex is held during neither
// verifying nor signing.
type requestState int

const (
	stateIdle requestState = iota
	stateVerifying
	stateCommitting
	stateSigning
	stateSendSig
	stateSendErr
)

func (s requestState) String() string {
	switch s {
	case stateIdle:
		return "idle"
	case stateVerifying:
		return "verifying"
	case stateCommitting:
		return "committing"
	case stateSigning:
		return "signing"
	case stateSendSig:
		return "send_sig"
	case stateSendErr:
		return "send_err"
	default:
		return "unknown"
	}
}

// session tracks one request's progress through the state machine and
// logs every transition, so a crash mid-request leaves a trail of
// which stage it reached — committing is the only stage a retry must
// treat specially, and it is safe to retry because the uniqueness
// provider treats a repeated commit of the same txID as a no-op success.
type session struct {
	log   *zap.Logger
	state requestState
}

func newSession(log *zap.Logger) *session {
	if log == nil {
		log = zap.NewNop()
	}
	return &session{log: log, state: stateIdle}
}

func (s *session) transition(to requestState) {
	s.log.Debug("notary request state transition",
		zap.String("from", s.state.String()), zap.String("to", to.String()))
	s.state = to
}

// identityMatches decodes a NOTARY component — a compressed secp256k1
// public key, the same encoding keys.PublicKey.Bytes() produces — and
// returns a *WrongNotaryError if it does not name identity.
func identityMatches(notaryComponent []byte, identity *keys.PublicKey) error {
	declared, err := keys.DecodePublicKeyBytes(notaryComponent)
	if err != nil {
		return &TransactionInvalidError{Cause: fmt.Errorf("decoding notary identity: %w", err)}
	}
	if !declared.Equals(identity) {
		return &WrongNotaryError{Declared: declared.String(), Actual: identity.String()}
	}
	return nil
}

// decodeInputs turns the INPUTS group's opaque components into
// StateRefs, using this core's own state-reference wire encoding.
func decodeInputs(ft *merkletx.FilteredTransaction, decodeStateRef func([]byte) (util.StateRef, error)) ([]util.StateRef, error) {
	for _, g := range ft.Groups {
		if g.GroupIndex != merkletx.InputsGroup {
			continue
		}
		refs := make([]util.StateRef, 0, len(g.RevealedComponents))
		for _, c := range g.RevealedComponents {
			ref, err := decodeStateRef(c)
			if err != nil {
				return nil, &TransactionInvalidError{Cause: fmt.Errorf("decoding input: %w", err)}
			}
			refs = append(refs, ref)
		}
		return refs, nil
	}
	return nil, nil
}
