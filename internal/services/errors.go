// Package services holds the marketplace business logic: accounts, startups,
// pitches, talent, Q&A threads, billing, support and admin workflows.
//
// This file centralizes service-level error values. Handlers translate them
// into HTTP status codes with errors.Is; messages attached through
// detailError are safe to show to users.
package services

import (
	"errors"
	"fmt"

	"github.com/caerus-app/caerus-backend/internal/entitlement"
	"github.com/caerus-app/caerus-backend/internal/repo"
)

var (
	// ErrUnauthenticated indicates a missing, expired or unknown credential.
	ErrUnauthenticated = errors.New("authentication required")

	// ErrForbidden indicates that the caller's role or admin claim does not
	// permit the action. It is the entitlement sentinel, so role errors from
	// the guard match it too.
	ErrForbidden = entitlement.ErrForbidden

	// ErrPaymentRequired indicates a subscription or purchase is needed.
	ErrPaymentRequired = entitlement.ErrPaymentRequired

	// ErrNotFound indicates the resource does not exist or is not visible to
	// the caller. The two cases are deliberately indistinguishable.
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates the request clashes with the current state.
	ErrConflict = errors.New("conflict")

	// ErrInvalidInput indicates a malformed or out-of-range request value.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUpstream indicates an outbound dependency failed.
	ErrUpstream = errors.New("upstream failure")
)

// detailError pairs a sentinel with a user-facing message.
type detailError struct {
	kind error
	msg  string
}

func (e *detailError) Error() string { return e.msg }
func (e *detailError) Unwrap() error { return e.kind }

func invalidf(format string, args ...any) error {
	return &detailError{kind: ErrInvalidInput, msg: fmt.Sprintf(format, args...)}
}

func conflictf(format string, args ...any) error {
	return &detailError{kind: ErrConflict, msg: fmt.Sprintf(format, args...)}
}

func notFoundf(format string, args ...any) error {
	return &detailError{kind: ErrNotFound, msg: fmt.Sprintf(format, args...)}
}

func forbiddenf(format string, args ...any) error {
	return &detailError{kind: ErrForbidden, msg: fmt.Sprintf(format, args...)}
}

func upstreamf(format string, args ...any) error {
	return &detailError{kind: ErrUpstream, msg: fmt.Sprintf(format, args...)}
}

// notFound maps repo.ErrNotFound to a described ErrNotFound and passes every
// other error through.
func notFound(err error, what string) error {
	if errors.Is(err, repo.ErrNotFound) {
		return notFoundf("%s not found", what)
	}
	return err
}
