// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Repository-level sentinels.
var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates a unique constraint violation (e.g., username taken).
	ErrAlreadyExists = errors.New("already exists")
)

// Service-level sentinels surfaced to transports.
var (
	// ErrInvalidInput indicates malformed or missing fields, detected before any store access.
	ErrInvalidInput = errors.New("invalid input")

	// ErrAccountLocked indicates the account is inside its lockout window.
	ErrAccountLocked = errors.New("account locked")

	// ErrUnknownUser indicates no account matches the username.
	ErrUnknownUser = errors.New("unknown user")

	// ErrInvalidCredentials indicates a wrong password or an inactive account.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrDuplicateUsername indicates registration of a username that already exists.
	ErrDuplicateUsername = errors.New("duplicate username")

	// ErrItemNotFound indicates a stock operation against an unknown item code.
	ErrItemNotFound = errors.New("item not found")

	// ErrDuplicateItem indicates creation of an item code that already exists.
	ErrDuplicateItem = errors.New("duplicate item code")

	// ErrForbidden indicates the caller's role lacks the required capability.
	ErrForbidden = errors.New("forbidden")

	// ErrStore wraps any underlying persistence failure.
	ErrStore = errors.New("store error")
)
