// Copyright (c) 2025 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package primitive

import (
	"hash"

	"github.com/decred/dcrd/crypto/ripemd160"
)

const (
	// DigestLen is the size in bytes of a digest.
	DigestLen = ripemd160.Size

	// BlockLen is the size in bytes of the hash function's input block.
	BlockLen = 64
)

// Hash computes the digest of in and stores it in out.  in and out may
// overlap since the whole input is consumed before out is written.
func Hash(out *[DigestLen]byte, in []byte) {
	h := ripemd160.New()
	h.Write(in)
	var sum [DigestLen]byte
	h.Sum(sum[:0])
	*out = sum
}

// NewHasher returns a new incremental hasher.  Sum reads the digest of
// everything written so far without changing the running state, which allows
// the caller to keep writing afterwards.
func NewHasher() hash.Hash {
	return ripemd160.New()
}
