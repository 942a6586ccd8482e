// Copyright (c) 2025 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

//go:build rngcore_insecure_fallback

package entropy

import (
	"os"
	"sync"
	"time"

	"github.com/decred/dcrd/crypto/blake256"
	"golang.org/x/crypto/chacha20"
)

// InsecureFallbackAvailable reports whether the insecure gatherer was compiled
// in.
const InsecureFallbackAvailable = true

// insecureGatherer emits a ChaCha20 keystream keyed only from the clock and
// process ids.  Its output is predictable by anyone who can guess those.
type insecureGatherer struct {
	mu     sync.Mutex
	cipher *chacha20.Cipher
}

// NewInsecureGatherer returns the insecure fallback gatherer.
func NewInsecureGatherer() Gatherer {
	h := blake256.NewHasher256()
	h.WriteUint64BE(uint64(time.Now().UnixNano()))
	h.WriteUint32LE(uint32(os.Getpid()))
	h.WriteUint32LE(uint32(os.Getppid()))
	key := h.Sum256()
	nonce := make([]byte, chacha20.NonceSize)

	// never errors with correct key and nonce sizes
	c, _ := chacha20.NewUnauthenticatedCipher(key[:], nonce)
	clear(key[:])

	log.Criticalf("WARNING: using insecure random number generator!!")
	return &insecureGatherer{cipher: c}
}

// Gather delivers n keystream bytes.
func (g *insecureGatherer) Gather(add AddFunc, origin Origin, n int, level Level) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	log.Criticalf("insecure random number generator used for %d bytes "+
		"(%v); output is NOT suitable for cryptographic use", n, origin)

	var buf [maxChunk]byte
	for n > 0 {
		chunk := buf[:min(n, len(buf))]
		clear(chunk)
		g.cipher.XORKeyStream(chunk, chunk)
		add(chunk, origin)
		n -= len(chunk)
	}
	clear(buf[:])
	return nil
}
