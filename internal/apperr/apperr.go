// Package apperr defines the service error taxonomy. Handlers map these
// onto HTTP statuses; services never panic or throw past this boundary.
package apperr

import (
	stderrors "errors"

	"github.com/pkg/errors"
)

var (
	// ErrNotAuthenticated means no session is active for the request.
	ErrNotAuthenticated = stderrors.New("not authenticated")
	// ErrForbidden means the actor's role does not permit the operation.
	ErrForbidden = stderrors.New("forbidden")
	// ErrInvalidCredentials is returned on a failed login.
	ErrInvalidCredentials = stderrors.New("invalid credentials")
	// ErrNotFound means the referenced record does not exist.
	ErrNotFound = stderrors.New("not found")
	// ErrInvalidTransition means the requested status change breaks the
	// repair lifecycle.
	ErrInvalidTransition = stderrors.New("invalid status transition")
)

// kind discriminates the wrapped error classes below.
type kind int

const (
	kindFetch kind = iota
	kindWrite
	kindProfile
)

type classified struct {
	k   kind
	err error
}

func (c *classified) Error() string { return c.err.Error() }
func (c *classified) Unwrap() error { return c.err }

// Fetch wraps a query failure. Fetch errors are retried a fixed number of
// times before being surfaced.
func Fetch(err error, msg string) error {
	if err == nil {
		return nil
	}
	return &classified{k: kindFetch, err: errors.Wrap(err, msg)}
}

// Write wraps a mutation failure. Write errors are never retried.
func Write(err error, msg string) error {
	if err == nil {
		return nil
	}
	return &classified{k: kindWrite, err: errors.Wrap(err, msg)}
}

// Profile wraps a profile resolution failure. Non-fatal: callers fall back
// to the sample profile set.
func Profile(err error, msg string) error {
	if err == nil {
		return nil
	}
	return &classified{k: kindProfile, err: errors.Wrap(err, msg)}
}

func is(err error, k kind) bool {
	var c *classified
	if stderrors.As(err, &c) {
		return c.k == k
	}
	return false
}

func IsFetch(err error) bool   { return is(err, kindFetch) }
func IsWrite(err error) bool   { return is(err, kindWrite) }
func IsProfile(err error) bool { return is(err, kindProfile) }
