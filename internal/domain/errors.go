package domain

import "errors"

var (
	// ErrNotFound is returned when the requested resource does not exist.
	ErrNotFound = errors.New("resource not found")
	// ErrUnauthorized means no verified principal was presented.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden means the principal lacks the role the operation needs.
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidInput = errors.New("invalid input")
	// ErrConflict covers state preconditions that no longer hold, such as
	// reviewing a commission that already left pending.
	ErrConflict             = errors.New("conflict")
	ErrInvalidEnvelope      = errors.New("invalid event envelope")
	ErrUnsupportedEventType = errors.New("unsupported event type")
)
