// Marquee - Movie Streaming Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package recommend

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a user or reference item does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnauthenticated is returned when a mode that needs a user gets none.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrInvalidRequest is returned for malformed requests (unknown mode, bad limit).
	ErrInvalidRequest = errors.New("invalid request")
)

// StoreError wraps a failed read against a collaborator store.
// It is never retried inside the engine.
type StoreError struct {
	// Op names the failed read, e.g. "get user activity".
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// storeErr classifies a store error. Not-found passes through unchanged so
// callers can match it with errors.Is; anything else becomes a StoreError.
func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return &StoreError{Op: op, Err: err}
}

// IsStoreFailure reports whether err came from a failing store read.
func IsStoreFailure(err error) bool {
	var se *StoreError
	return errors.As(err, &se)
}
