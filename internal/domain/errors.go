package domain

import "errors"

// Error kinds returned across the core. Callers match them with errors.Is;
// the wrapped message carries the detail.
var (
	// ErrValidation indicates malformed input. Nothing was written.
	ErrValidation = errors.New("validation failed")
	// ErrProfileIncomplete indicates the user has no height yet.
	ErrProfileIncomplete = errors.New("profile incomplete")
	// ErrNotFound indicates an unknown user or measurement id.
	ErrNotFound = errors.New("not found")
	// ErrConflict indicates a uniqueness violation that could not be reconciled.
	ErrConflict = errors.New("conflict")
	// ErrIdentityProvider indicates the external identity exchange failed.
	ErrIdentityProvider = errors.New("identity provider error")
)
