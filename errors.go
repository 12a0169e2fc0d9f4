// Copyright 2016 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

package wamsg

import (
	"errors"
	"fmt"
)

// ErrSessionClosed is returned when attempting to send on a closed session.
var ErrSessionClosed = errors.New("wamsg: session closed")

// UsageError is returned when a caller violates the preconditions of an
// operation, for instance by passing an inbound node that is missing an
// attribute required to address the reply, or by registering a request under
// an id that is already pending.
// The session state is never changed when a UsageError is returned.
type UsageError struct {
	Op  string
	Err error
}

// Error satisfies the error interface.
func (e *UsageError) Error() string {
	return fmt.Sprintf("wamsg: %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *UsageError) Unwrap() error {
	return e.Err
}

func usage(op string, err error) error {
	if err == nil {
		return nil
	}
	return &UsageError{Op: op, Err: err}
}
