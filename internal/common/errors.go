// Package common defines shared constants and sentinel errors used across
// the interface-vdc components. Callers should use errors.Is to match
// these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrInternal     = errors.New("internal error")
	ErrUnauthorized = errors.New("unauthorized")

	// Sync engine errors.
	ErrSyncInProgress = errors.New("sync cycle already running")

	// Auth errors (invalid or malformed token, disabled API key).
	ErrInvalidToken   = errors.New("invalid token")
	ErrAPIKeyInactive = errors.New("api key is inactive")
)
