// Copyright (c) 2025 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package primitive adapts the block cipher and hash function consumed by the
// random generators.
//
// The generators only ever need a keyed 16-byte block encryption and a
// 20-byte digest with both a one-shot and an incremental interface.  AES-128
// from crypto/aes provides the former and RIPEMD-160 the latter.
package primitive
