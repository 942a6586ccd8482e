// Copyright (c) 2025 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package poolrng

import (
	"encoding/binary"
	"sync"
	"time"

	"github.com/decred/rngcore/internal/entropy"
	"github.com/decred/rngcore/internal/primitive"
)

// noncePrivateLen is the number of secret bytes appended to the nonce digest.
const noncePrivateLen = 8

// nonceState is the hash chain used to produce nonces.  The first DigestLen
// bytes hold the current digest and the rest is private weak random data that
// is replaced whenever the process id changes.
type nonceState struct {
	mu          sync.Mutex
	buf         [DigestLen + noncePrivateLen]byte
	initialized bool
	pid         int
}

// CreateNonce fills buf with unpredictable bytes suitable as nonces.  Nonces
// are cheap to produce and never drain the entropy pool.
//
// The nonce lock is always taken before the pool lock.
func (g *Generator) CreateNonce(buf []byte) {
	if len(buf) == 0 {
		return
	}

	if g.daemonEnabled.Load() {
		err := g.daemon.CreateNonce(buf)
		if err == nil {
			return
		}
		g.disableDaemon(err)
	}

	g.Initialize(true)

	n := &g.nonce
	n.mu.Lock()
	defer n.mu.Unlock()

	pid := g.getpid()
	switch {
	case !n.initialized:
		n.pid = pid
		binary.LittleEndian.PutUint32(n.buf[0:4], uint32(pid))
		now := time.Now()
		binary.LittleEndian.PutUint64(n.buf[4:12], uint64(now.Unix()))
		binary.LittleEndian.PutUint32(n.buf[12:16],
			uint32(now.Nanosecond()))
		g.randomize(n.buf[DigestLen:], entropy.Weak)
		n.initialized = true

	case n.pid != pid:
		g.randomize(n.buf[DigestLen:], entropy.Weak)
		n.pid = pid
	}

	var digest [DigestLen]byte
	for len(buf) > 0 {
		primitive.Hash(&digest, n.buf[:])
		copy(n.buf[:DigestLen], digest[:])
		c := copy(buf, digest[:])
		buf = buf[c:]
	}
	clear(digest[:])
}
