// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by the store implementations and the HTTP layer.
// Handlers translate them to status codes; the remote client translates
// status codes back into them.
var (
	// ErrNotFound covers unknown ids and tokens, and closed polls reached
	// through their public token.
	ErrNotFound = errors.New("not found")

	// ErrAuth covers missing, expired, and mismatched credentials.
	ErrAuth = errors.New("invalid credential")

	// ErrState marks an operation that is not valid in the poll's current
	// lifecycle state, e.g. voting on a closed poll.
	ErrState = errors.New("invalid poll state")

	// ErrExists marks a uniqueness conflict (duplicate username).
	ErrExists = errors.New("already exists")

	// ErrTransport marks a backend that could not be reached. It is the
	// only error kind a caller may retry.
	ErrTransport = errors.New("backend unreachable")
)

// ValidationError reports malformed input: empty title, bad date count,
// unknown selection dates, and the like. The message is safe to show to
// the caller.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// Validationf builds a ValidationError from a format string.
func Validationf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
