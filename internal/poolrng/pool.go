// Copyright (c) 2025 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package poolrng

import (
	"encoding/binary"

	"github.com/decred/rngcore/internal/primitive"
)

const (
	// DigestLen is the length of a digest written back into the pool.
	DigestLen = primitive.DigestLen

	// BlockLen is the length of the window hashed for every digest.
	BlockLen = primitive.BlockLen

	// PoolBlocks is the number of digest sized windows in a pool.
	PoolBlocks = 30

	// PoolSize is the size in bytes of the entropy pool, the extraction pool
	// and the seed file.
	PoolSize = PoolBlocks * DigestLen

	// addValue is added to every 32-bit word of the pool when deriving the
	// extraction pool.
	addValue = 0xa5a5a5a5
)

// mixPool performs one diffusion pass over pool.
//
// The pool is treated as PoolBlocks overlapping windows of BlockLen bytes that
// slide by DigestLen.  Each window hashed consists of the digest produced for
// the previous window followed by the next BlockLen-DigestLen pool bytes,
// wrapping around the end of the pool.  The resulting digest overwrites the
// first DigestLen bytes of the window.  A single hash state carries across the
// entire pass so every digest depends on everything hashed before it.
//
// When failsafe is not nil it is XORed into the first window right after that
// window is rewritten so that every later window depends on it.
func mixPool(pool []byte, failsafe *[DigestLen]byte) {
	if len(pool) != PoolSize {
		panic("mixPool: bad pool size")
	}

	var hashbuf [BlockLen]byte
	var digest [DigestLen]byte
	h := primitive.NewHasher()

	// The first window is prefixed by the final DigestLen bytes of the pool.
	copy(hashbuf[:DigestLen], pool[PoolSize-DigestLen:])
	copy(hashbuf[DigestLen:], pool[:BlockLen-DigestLen])
	h.Write(hashbuf[:])
	h.Sum(digest[:0])
	copy(pool[:DigestLen], digest[:])
	if failsafe != nil {
		for i := range failsafe {
			pool[i] ^= failsafe[i]
		}
	}

	for n := 1; n < PoolBlocks; n++ {
		p := (n - 1) * DigestLen
		copy(hashbuf[:DigestLen], pool[p:p+DigestLen])
		p += DigestLen
		src := p + DigestLen
		for i := DigestLen; i < BlockLen; i++ {
			if src >= PoolSize {
				src = 0
			}
			hashbuf[i] = pool[src]
			src++
		}
		h.Write(hashbuf[:])
		h.Sum(digest[:0])
		copy(pool[p:p+DigestLen], digest[:])
	}

	clear(hashbuf[:])
	clear(digest[:])
}

// deriveExtractionPool sets every 32-bit word of dst to the corresponding word
// of src plus addValue.
func deriveExtractionPool(dst, src []byte) {
	for i := 0; i < PoolSize; i += 4 {
		w := binary.LittleEndian.Uint32(src[i:])
		binary.LittleEndian.PutUint32(dst[i:], w+addValue)
	}
}
