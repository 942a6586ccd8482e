// Copyright (c) 2025 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package blockrng implements a deterministic random bit generator in the style
of ANSI X9.31 Appendix A.2.4 using AES-128.

Three independent generator contexts are kept: one for nonces, one for weak
and strong requests and one for very strong requests.  Each context is keyed
and seeded from the slow entropy gatherer on first use, except the nonce
context which is keyed and seeded from the output of the standard context.
Seeds are renewed after SeedTTL blocks.

Every block is built from a date/time vector DT, the seed V and the key K:

	I  = E(K, DT)
	R  = E(K, I xor V)
	V' = E(K, R xor I)

R is the output block.  The first block of every context only primes a
continuous test and is never returned.  A block equal to its predecessor, a
context used by a forked process and corruption of a context are fatal
conditions that raise an rngerr.Fault panic.

Caller supplied entropy is never mixed into this generator.
*/
package blockrng
