package domain

import "errors"

// Sentinel errors shared across repositories and services. Repositories map
// driver errors onto these; the HTTP layer maps them onto status codes.
var (
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("conflicting state")
	ErrCapacityExhausted = errors.New("capacity exhausted")
	ErrInvalidInput      = errors.New("invalid input")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
)
