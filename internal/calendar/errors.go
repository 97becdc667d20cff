package calendar

import "errors"

var (
	// ErrStoreUnavailable covers connectivity and backend failures. The
	// operation is recoverable by manual re-invocation; nothing is
	// retried automatically.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrStoreTimeout is returned when a store call exceeds the
	// configured deadline. Distinct from ErrStoreUnavailable so callers
	// can tell a slow backend from a dead one.
	ErrStoreTimeout = errors.New("store call timed out")

	// ErrMutationInFlight rejects a second concurrent mutation against
	// an appointment id that already has one pending.
	ErrMutationInFlight = errors.New("another mutation for this appointment is in flight")

	// ErrOverlappingInterval rejects a create or edit that would
	// double-book the clinician.
	ErrOverlappingInterval = errors.New("interval overlaps an existing appointment")

	// ErrUnknownView is returned for an unrecognized view type.
	ErrUnknownView = errors.New("unknown calendar view")
)
