// Copyright (c) 2025 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package random

import "github.com/decred/rngcore/internal/rngerr"

// ErrorKind identifies a kind of error.  It has full support for errors.Is
// and errors.As, so the caller can directly check against an error kind when
// determining the reason for an error.
type ErrorKind = rngerr.ErrorKind

// Error identifies an error related to random number generation.  It has
// full support for errors.Is and errors.As, so the caller can ascertain the
// specific reason for the error by checking the underlying error.
type Error = rngerr.Error

// Fault is the value the generators panic with on unrecoverable conditions.
type Fault = rngerr.Fault

// These constants are used to identify a specific Error.
const (
	ErrInvalidArgument = rngerr.ErrInvalidArgument
	ErrNotSupported    = rngerr.ErrNotSupported
	ErrNotInitialized  = rngerr.ErrNotInitialized
	ErrSeedFile        = rngerr.ErrSeedFile
	ErrDaemon          = rngerr.ErrDaemon
	ErrSelfTest        = rngerr.ErrSelfTest
	ErrResource        = rngerr.ErrResource
)
