// Copyright (c) 2025 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package random provides cryptographically secure random bytes at three
quality levels.

Two generators are available and exactly one of them serves a process:

  - PoolMode, the default, uses a continuously seeded entropy pool that is
    mixed with RIPEMD-160 and fed by the operating system, cheap fast polls,
    caller supplied entropy and an optional seed file.  Requests can
    optionally be delegated to a randomness daemon.
  - BlockMode uses a deterministic AES-128 based generator in the style of
    ANSI X9.31 with a known answer self-test and conformance test contexts.

The mode and other settings are applied once with Configure before the
package is first used.  All functions are safe for concurrent access and
initialize the selected generator on first use.

# Errors

Recoverable errors are of type Error and can be matched against the
ErrorKind constants with errors.Is.  Conditions a generator can not safely
continue from, such as a detected fork, a duplicated output block or an
unreachable entropy source, raise a Fault panic which is never recovered by
this package.
*/
package random
