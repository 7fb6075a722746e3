package notary

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/vegetish/ledgernotary/pkg/crypto/keys"
	"github.com/vegetish/ledgernotary/pkg/merkletx"
	"github.com/vegetish/ledgernotary/pkg/uniqueness"
	"github.com/vegetish/ledgernotary/pkg/util"
)

// ContractVerifier re-executes tx's contracts, resolving any
// dependency transaction it needs through resolve. It is the
// validating notary's only domain-specific hook: this core has no
// opinion on what a "contract" is, only on the notarization protocol
// around it.
type ContractVerifier func(tx *merkletx.Transaction, resolve DependencyResolver) error

// RequiredSignature pairs a signer whose signature the transaction
// must carry with the signature bytes it actually supplied, if any.
type RequiredSignature struct {
	Signer    *keys.PublicKey
	Signature []byte
}

// ValidatingService implements the validating notary mode: it holds
// the fully-resolved transaction, not just a selective-disclosure
// view of it, so it re-executes contract logic against the
// transitive dependency graph and checks every required signature
// except its own before committing. See SPEC_FULL.md's validating
// mode description and DESIGN.md's Open Question decision on
// dependency re-verification.
type ValidatingService struct {
	Identity          *keys.PublicKey
	Backend           SigningBackend
	Clock             Clock
	DecodeStateRef    func([]byte) (util.StateRef, error)
	VerifyContracts   ContractVerifier
	ResolveDependency DependencyResolver
	DepCache          *DependencyCache
	Log               *zap.Logger
}

// Process runs tx through the validating request state machine:
// verify identity and signatures, re-execute contracts over the
// dependency graph, check the time window, commit, sign.
func (s *ValidatingService) Process(tx *merkletx.Transaction, required []RequiredSignature, requester string) ([]byte, error) {
	sess := newSession(s.Log)
	clock := s.Clock
	if clock == nil {
		clock = SystemClock{}
	}

	sess.transition(stateVerifying)

	notaryComps, ok := tx.Components(merkletx.NotaryGroup)
	if !ok || len(notaryComps) != 1 {
		sess.transition(stateSendErr)
		return nil, &WrongNotaryError{Declared: "<absent>", Actual: s.Identity.String()}
	}
	if err := identityMatches(notaryComps[0], s.Identity); err != nil {
		sess.transition(stateSendErr)
		return nil, err
	}

	if err := checkRequiredSignatures(tx.ID(), required); err != nil {
		sess.transition(stateSendErr)
		return nil, err
	}

	resolve := s.resolveWithCache()
	if s.VerifyContracts != nil {
		if err := s.VerifyContracts(tx, resolve); err != nil {
			sess.transition(stateSendErr)
			return nil, &TransactionInvalidError{Cause: fmt.Errorf("contract verification: %w", err)}
		}
	}

	inputs, err := decodeTransactionInputs(tx, s.DecodeStateRef)
	if err != nil {
		sess.transition(stateSendErr)
		return nil, err
	}

	if twComps, hasWindow := tx.Components(merkletx.TimeWindowGroup); hasWindow && len(twComps) == 1 {
		tw, err := DecodeTimeWindow(twComps[0])
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
	sig, err := s.Backend.Commit(inputs, tx.ID(), requester)
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

// resolveWithCache wraps ResolveDependency with DepCache when one is
// configured, so that a dependency shared by multiple validating
// requests is fetched once.
func (s *ValidatingService) resolveWithCache() DependencyResolver {
	if s.DepCache == nil {
		return s.ResolveDependency
	}
	return func(txID util.SecureHash) (*merkletx.Transaction, error) {
		return s.DepCache.Resolve(txID, s.ResolveDependency)
	}
}

// checkRequiredSignatures verifies every required signer actually
// supplied a signature over txID, reporting every identity that
// didn't together in one SignaturesMissingError.
func checkRequiredSignatures(txID util.SecureHash, required []RequiredSignature) error {
	var missing []string
	for _, r := range required {
		if len(r.Signature) == 0 || !r.Signer.Verify(r.Signature, txID.Bytes()) {
			missing = append(missing, r.Signer.String())
		}
	}
	if len(missing) > 0 {
		return &SignaturesMissingError{Missing: missing}
	}
	return nil
}

// decodeTransactionInputs is the full-transaction counterpart of
// decodeInputs: it reads the INPUTS group straight off tx rather than
// off a filtered view.
func decodeTransactionInputs(tx *merkletx.Transaction, decodeStateRef func([]byte) (util.StateRef, error)) ([]util.StateRef, error) {
	comps, ok := tx.Components(merkletx.InputsGroup)
	if !ok {
		return nil, nil
	}
	refs := make([]util.StateRef, 0, len(comps))
	for _, c := range comps {
		ref, err := decodeStateRef(c)
		if err != nil {
			return nil, &TransactionInvalidError{Cause: fmt.Errorf("decoding input: %w", err)}
		}
		refs = append(refs, ref)
	}
	return refs, nil
}
