package merkletx

import "fmt"

// MalformedTransactionError reports a structural invariant violation
// detected at Build time. Never retried by a caller — the transaction
// must be rebuilt.
type MalformedTransactionError struct {
	Reason string
}

func (e *MalformedTransactionError) Error() string {
	return fmt.Sprintf("merkletx: malformed transaction: %s", e.Reason)
}

// FilteredTransactionVerificationError reports that a FilteredTransaction
// failed Verify: its proofs do not authenticate against its own id.
type FilteredTransactionVerificationError struct {
	ID     string
	Reason string
}

func (e *FilteredTransactionVerificationError) Error() string {
	return fmt.Sprintf("merkletx: filtered transaction %s failed verification: %s", e.ID, e.Reason)
}

// ComponentVisibilityError reports that a visibility check
// (CheckAllComponentsVisible, CheckCommandVisibility) failed.
type ComponentVisibilityError struct {
	ID     string
	Reason string
}

func (e *ComponentVisibilityError) Error() string {
	return fmt.Sprintf("merkletx: transaction %s component visibility check failed: %s", e.ID, e.Reason)
}

func malformed(format string, args ...any) error {
	return &MalformedTransactionError{Reason: fmt.Sprintf(format, args...)}
}
