package multisig

import "errors"

// Precondition failures. Every one of them aborts the whole call and leaves
// the ledger unchanged. Call sites wrap them with context, so match with
// errors.Is.
var (
	// ErrNotAuthorized: the caller is not in the roster.
	ErrNotAuthorized = errors.New("caller is not a voter")

	// ErrDuplicateVote: the caller already voted for this exact identity.
	ErrDuplicateVote = errors.New("caller already voted for this action")

	// ErrInvalidQuorum: quorum below the minimum, above the roster size, or
	// (coarse epochs only) unchanged.
	ErrInvalidQuorum = errors.New("invalid quorum")

	// ErrInvalidRosterChange: adding an existing voter, removing a
	// non-voter, or removing below the quorum.
	ErrInvalidRosterChange = errors.New("invalid roster change")

	// ErrDomainPrecondition: an operation-specific check failed.
	ErrDomainPrecondition = errors.New("domain precondition failed")
)

// Ledger lifecycle errors.
var (
	ErrNotInitialized     = errors.New("ledger not initialized")
	ErrAlreadyInitialized = errors.New("ledger already initialized")
	ErrCorruptState       = errors.New("corrupt ledger state")
)
