// Copyright (c) 2025 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package rngerr

import (
	"fmt"

	"github.com/decred/slog"
)

// Fault is the value a generator panics with when it detects a condition it
// must not continue from: memory corruption of a generator context, a
// duplicated output block, use of parent state after a fork, an inconsistent
// lock state, or an unreachable entropy source.
//
// Library code never recovers a Fault.  The process is expected to terminate.
type Fault struct {
	Subsystem   string
	Description string
}

// Error satisfies the error interface so a recovered Fault can be reported.
func (f Fault) Error() string {
	return fmt.Sprintf("fatal %s fault: %s", f.Subsystem, f.Description)
}

// Fatalf logs the described fault at the critical level using the provided
// logger and then panics with a Fault.  It never returns.
func Fatalf(log slog.Logger, subsystem, format string, args ...any) {
	f := Fault{
		Subsystem:   subsystem,
		Description: fmt.Sprintf(format, args...),
	}
	log.Criticalf("%v", f)
	panic(f)
}
