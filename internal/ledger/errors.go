// internal/ledger/errors.go
package ledger

import "errors"

// Sentinel errors forming the ledger's failure taxonomy. Operations wrap
// these with context; callers classify with errors.Is and map them to
// user-facing responses. Every mutating operation fails atomically.
var (
	// ErrUnauthorized - wrong caller for the operation.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidState - operation not valid for the product's current state.
	ErrInvalidState = errors.New("invalid state")

	// ErrInsufficientQuantity - requested amount is zero or exceeds available.
	ErrInsufficientQuantity = errors.New("insufficient quantity")

	// ErrAlreadyRegistered - actor claim collision on a wallet address.
	ErrAlreadyRegistered = errors.New("already registered")

	// ErrInvalidDestination - target address unregistered or wrong role.
	ErrInvalidDestination = errors.New("invalid destination")

	// ErrNotFound - id has no record.
	ErrNotFound = errors.New("not found")
)
