package domain

import "errors"

// Sentinel errors for the booking core. Callers match with errors.Is;
// services wrap them with fmt.Errorf("%w: ...") for context.
var (
	// ErrInvalidRequest covers malformed input and mismatched references.
	// Not retryable.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrNotFound is returned when a referenced entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrNotAcceptable is returned when a quote is not in an acceptable
	// state (already accepted, refused, or expired in storage).
	ErrNotAcceptable = errors.New("quote not acceptable")

	// ErrNotCancellable is returned when a booking is in a state that
	// does not allow cancellation.
	ErrNotCancellable = errors.New("booking not cancellable")

	// ErrExpired is returned when a quote is past its expiry timestamp,
	// even if its stored status has not been swept yet.
	ErrExpired = errors.New("quote expired")

	// ErrConflict is returned when a conditional status update lost a
	// race to another actor. The target is resolved; do not retry it.
	ErrConflict = errors.New("conflict")

	// ErrAlreadyExists is returned on uniqueness violations, e.g. a
	// second booking for the same quote or a second refund record for
	// the same booking.
	ErrAlreadyExists = errors.New("already exists")

	// ErrTransientFailure is returned when a transaction aborted for a
	// non-domain reason. All mutations are idempotent, so callers may
	// retry with backoff.
	ErrTransientFailure = errors.New("transient failure")
)
