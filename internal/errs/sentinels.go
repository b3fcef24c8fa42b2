// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Common sentinels across repo/service layers.
var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrEmailTaken indicates a registration conflict (email already in use).
	ErrEmailTaken = errors.New("email already taken")

	// ErrInvalidCredentials indicates an email/password mismatch on login.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrNoSession indicates there is no valid logged-in session.
	ErrNoSession = errors.New("not logged in")

	// ErrTooManyAttempts indicates temporary login lock due to rate limiting.
	ErrTooManyAttempts = errors.New("too many attempts")
)
