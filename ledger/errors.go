package ledger

import "errors"

// Error kinds surfaced by the ledger core and its callers. Handlers map
// these to HTTP status codes; everything else wraps them with %w so the
// offending record id stays attached for audit.
var (
	// ErrGroupNotFound means the group id does not resolve.
	ErrGroupNotFound = errors.New("group not found")

	// ErrInvalidLedgerState means an expense's contributions do not sum to
	// the expense amount within one minor unit. This is a data-integrity
	// error: computations abort, nothing is silently corrected.
	ErrInvalidLedgerState = errors.New("invalid ledger state")

	// ErrUnbalancedLedger means a balance map does not sum to zero. It
	// should be unreachable when ErrInvalidLedgerState is checked upstream,
	// but the simplifier verifies it anyway rather than emit a misleading
	// partial settlement.
	ErrUnbalancedLedger = errors.New("unbalanced ledger")

	// ErrInvalidTransition means a contribution status change that the
	// PENDING -> SETTLED state machine does not allow.
	ErrInvalidTransition = errors.New("invalid contribution status transition")

	// ErrStoreUnavailable means the ledger store could not be reached.
	// This is the only kind a caller may reasonably retry.
	ErrStoreUnavailable = errors.New("ledger store unavailable")

	// ErrPermissionDenied is surfaced unchanged from the directory service.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrInvalidAmount means an amount string could not be parsed into
	// minor units, or was out of range for the operation.
	ErrInvalidAmount = errors.New("invalid amount")
)
