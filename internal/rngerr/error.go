// Copyright (c) 2025 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package rngerr defines the error kinds shared by the random generators along
// with the unrecoverable fault channel used for integrity violations.
package rngerr

// ErrorKind identifies a kind of error.  It has full support for errors.Is and
// errors.As, so the caller can directly check against an error kind when
// determining the reason for an error.
type ErrorKind string

// These constants are used to identify a specific Error.
const (
	// ErrInvalidArgument indicates a caller supplied a nil buffer, a buffer
	// of the wrong length, or an otherwise unusable parameter.
	ErrInvalidArgument = ErrorKind("ErrInvalidArgument")

	// ErrNotSupported indicates the requested operation is not available
	// for the active generator or configuration.
	ErrNotSupported = ErrorKind("ErrNotSupported")

	// ErrNotInitialized indicates an operation that requires prior
	// initialization was attempted before it happened.
	ErrNotInitialized = ErrorKind("ErrNotInitialized")

	// ErrSeedFile indicates the seed file could not be read, locked or
	// written.
	ErrSeedFile = ErrorKind("ErrSeedFile")

	// ErrDaemon indicates the randomness daemon could not be reached or
	// returned a malformed or failed response.
	ErrDaemon = ErrorKind("ErrDaemon")

	// ErrSelfTest indicates one or more known-answer tests failed.
	ErrSelfTest = ErrorKind("ErrSelfTest")

	// ErrResource indicates an allocation or system resource could not be
	// obtained during a cleanly reportable setup step.
	ErrResource = ErrorKind("ErrResource")
)

// Error satisfies the error interface and prints human-readable errors.
func (e ErrorKind) Error() string {
	return string(e)
}

// Error identifies a recoverable error raised by one of the generators.  It has
// full support for errors.Is and errors.As, so the caller can ascertain the
// specific reason for the error by checking the underlying error.
type Error struct {
	Err         error
	Description string
}

// Error satisfies the error interface and prints human-readable errors.
func (e Error) Error() string {
	return e.Description
}

// Unwrap returns the underlying wrapped error.
func (e Error) Unwrap() error {
	return e.Err
}

// New creates an Error given a set of arguments.
func New(kind ErrorKind, desc string) Error {
	return Error{Err: kind, Description: desc}
}

// Wrap creates an Error of the given kind whose description is desc and which
// also carries err in its chain.
func Wrap(kind ErrorKind, desc string, err error) Error {
	return Error{Err: wrapped{kind: kind, err: err}, Description: desc}
}

// wrapped lets an Error match both its kind and the error that caused it.
type wrapped struct {
	kind ErrorKind
	err  error
}

func (w wrapped) Error() string {
	return w.kind.Error() + ": " + w.err.Error()
}

func (w wrapped) Unwrap() []error {
	return []error{w.kind, w.err}
}
