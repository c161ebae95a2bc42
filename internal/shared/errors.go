package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrValidation indicates missing or malformed input; no writes were attempted.
	ErrValidation = errors.New("validation failed")
	// ErrInsufficientStock indicates a movement would drive an item's stock
	// negative; no writes take effect.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrConflict indicates a concurrent mutation invalidated a passed pre-check.
	ErrConflict = errors.New("conflict on commit")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrForbidden indicates the acting user lacks the required role.
	ErrForbidden = errors.New("forbidden")
)
