package usecase

import (
	"errors"
)

// Error taxonomy for the booking core. Handlers map these onto HTTP statuses
// with errors.Is; services wrap them with context via fmt.Errorf("%w: ...").
var (
	// ErrValidation marks malformed input. Never retried.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound marks an absent package, slot or booking. No side effects
	// were performed.
	ErrNotFound = errors.New("not found")

	// ErrCapacityExceeded is a business rejection; safe to retry after state
	// changes (e.g. a cancellation frees seats).
	ErrCapacityExceeded = errors.New("capacity exceeded")

	// ErrMinimumPerson is a business rejection of a party below the slot's
	// minimum-person floor.
	ErrMinimumPerson = errors.New("minimum person requirement not met")

	// ErrBookingCutoff marks a request inside the booking cutoff window.
	ErrBookingCutoff = errors.New("booking window closed")

	// ErrConflict marks a lost optimistic/predicate write; callers should
	// retry the whole operation a bounded number of times.
	ErrConflict = errors.New("concurrent modification conflict")

	// ErrInvalidSignature marks a webhook whose signature did not verify.
	ErrInvalidSignature = errors.New("invalid webhook signature")
)
