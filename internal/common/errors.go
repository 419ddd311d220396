// Package common defines sentinel errors and shared constants used across
// the rabetweb server and admin tooling. Callers match errors with errors.Is.
package common

import "errors"

var (
	// Request-level errors.
	ErrValidation      = errors.New("validation error")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrTooManyAttempts = errors.New("too many attempts, try again later")

	// Collaborator failures (identity provider, document store, object storage).
	ErrUpstream = errors.New("upstream failure")

	// Session errors.
	ErrNoSession      = errors.New("no session found")
	ErrInvalidSession = errors.New("invalid session")

	// Identity provider errors.
	ErrInvalidToken       = errors.New("invalid token")
	ErrAlreadyExists      = errors.New("email address is already in use by another account")
	ErrInvalidCredentials = errors.New("incorrect email or password")
	ErrAccountDisabled    = errors.New("account disabled")
)
