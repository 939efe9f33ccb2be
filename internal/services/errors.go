package services

import (
	"errors"
	"strings"
)

// Sentinel errors the handlers map to HTTP status codes.
var (
	// ErrNotFound means the requested record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrUserExists means a unique field (email or username) is already taken.
	ErrUserExists = errors.New("user already exists")
	// ErrInvalidCredentials covers both unknown email and password mismatch,
	// so callers cannot probe which emails are registered.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// isUniqueViolation reports whether err is a SQLite UNIQUE constraint
// failure. The modernc driver exposes no typed error for this, so the
// message is matched.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
