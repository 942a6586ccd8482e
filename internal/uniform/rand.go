// Copyright (c) 2024-2025 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package uniform derives unbiased integers and durations from a stream of
// random bytes such as random.Reader.
//
// Random sources are required to never error; any errors reading the random
// source will result in a panic.
package uniform

import (
	"encoding/binary"
	"fmt"
	"io"
	"math/bits"
	"time"
)

func read(rand io.Reader, buf []byte) {
	_, err := io.ReadFull(rand, buf)
	if err != nil {
		panic(fmt.Errorf("uniform: read of random source errored: %w", err))
	}
}

// Uint64 returns a uniform random uint64.
func Uint64(rand io.Reader) uint64 {
	var b [8]byte
	read(rand, b[:])
	return binary.LittleEndian.Uint64(b[:])
}

// Uint64n returns a random uint64 in range [0,n) without modulo bias.  Values
// above the smallest covering power of two are rejected and redrawn.
// Panics if n == 0.
func Uint64n(rand io.Reader, n uint64) uint64 {
	if n == 0 {
		panic("uniform: invalid argument to Uint64n")
	}
	if n == 1 {
		return 0
	}
	n--
	mask := ^uint64(0) >> bits.LeadingZeros64(n)
	for {
		v := Uint64(rand) & mask
		if v <= n {
			return v
		}
	}
}

// Int64n returns, as an int64, a random 63-bit non-negative integer in [0,n)
// without modulo bias.
// Panics if n <= 0.
func Int64n(rand io.Reader, n int64) int64 {
	if n <= 0 {
		panic("uniform: invalid argument to Int64n")
	}
	return int64(Uint64n(rand, uint64(n)))
}

// Duration returns a random duration in [0,n).
// Panics if n <= 0.
func Duration(rand io.Reader, n time.Duration) time.Duration {
	return time.Duration(Int64n(rand, int64(n)))
}

// Jitter returns d adjusted by a random amount in [-d/div, d/div).  d is
// returned unchanged when the spread is zero.
func Jitter(rand io.Reader, d time.Duration, div int64) time.Duration {
	if div <= 0 {
		panic("uniform: invalid argument to Jitter")
	}
	spread := d / time.Duration(div)
	if spread <= 0 {
		return d
	}
	return d - spread + Duration(rand, 2*spread)
}
