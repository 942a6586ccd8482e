// Copyright (c) 2025 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package poolrng implements the continuously seeded entropy pool generator.

Entropy gathered from the operating system, the fast poller, callers and an
optional seed file is XORed into a 600 byte pool which is diffused with a
RIPEMD-160 based mixing pass each time the write cursor wraps.  Output is
never read from the pool directly.  Every extraction derives a scratch copy
of the freshly mixed pool, mixes both again, copies the requested bytes out of
the scratch copy at a rotating offset and then wipes the scratch copy.

Requests for very strong output additionally block until the slow gatherer
has contributed at least as many fresh bytes as are being extracted, tracked
by a conservative entropy balance.

Nonces are produced by a separate small hash chain so they never drain the
pool.

# Errors

Recoverable errors, such as invalid arguments or seed file problems, are
returned as rngerr.Error values.  Failure to reach any entropy source and
integrity violations are fatal and raise an rngerr.Fault panic.
*/
package poolrng
