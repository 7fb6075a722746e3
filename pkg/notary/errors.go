// Package notary implements the notary service: given a transaction
// declaring this identity as its notary, verify uniqueness and the
// time window and return a signature over the transaction id, or a
// typed error a caller can act on.
package notary

import (
	"fmt"

	"github.com/vegetish/ledgernotary/pkg/uniqueness"
)

// WrongNotaryError reports that the transaction's declared notary is
// not this service.
type WrongNotaryError struct {
	Declared string
	Actual   string
}

func (e *WrongNotaryError) Error() string {
	return fmt.Sprintf("notary: transaction declares notary %s, this service is %s", e.Declared, e.Actual)
}

// TimeWindowInvalidError reports that the notary's clock reading fell
// outside the transaction's declared time window.
type TimeWindowInvalidError struct {
	Reason string
}

func (e *TimeWindowInvalidError) Error() string {
	return fmt.Sprintf("notary: time window invalid: %s", e.Reason)
}

// TransactionInvalidError reports that a validating notary's re-
// execution of contracts, missing-signature check, or dependency
// resolution failed.
type TransactionInvalidError struct {
	Cause error
}

func (e *TransactionInvalidError) Error() string {
	return fmt.Sprintf("notary: transaction invalid: %v", e.Cause)
}

func (e *TransactionInvalidError) Unwrap() error { return e.Cause }

// ConflictError reports that one or more inputs are already spent by
// a different transaction. It carries the uniqueness provider's own
// conflict map verbatim.
type ConflictError struct {
	Conflict uniqueness.Conflict
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("notary: %d input(s) already spent by a different transaction", len(e.Conflict))
}

// SignaturesMissingError reports that the submitted transaction lacks
// a signature required of one of the listed identities.
type SignaturesMissingError struct {
	Missing []string
}

func (e *SignaturesMissingError) Error() string {
	return fmt.Sprintf("notary: missing %d required signature(s)", len(e.Missing))
}
