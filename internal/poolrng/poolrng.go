// Copyright (c) 2025 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package poolrng

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"

	"github.com/decred/rngcore/internal/entropy"
	"github.com/decred/rngcore/internal/primitive"
	"github.com/decred/rngcore/internal/rngerr"
)

const (
	// subsystem tags faults raised by this package.
	subsystem = "POOL"

	// minQuality is the minimum quality for caller supplied entropy to be
	// added to the pool.  Lower quality additions are ignored.
	minQuality = 10

	// defaultQuality is the quality assumed when a caller passes -1.
	defaultQuality = 35
)

// Daemon requests random bytes from an external randomness daemon.
type Daemon interface {
	Randomize(buf []byte, level entropy.Level) error
	CreateNonce(buf []byte) error
}

// Config specifies the collaborators of a Generator.  All fields are optional.
type Config struct {
	// Slow is the mandatory blocking gatherer.  When nil the platform slow
	// gatherer is used, falling back to the insecure gatherer only when it
	// was compiled in and the platform has no entropy source.
	Slow entropy.Gatherer

	// Fast is the non-blocking gatherer polled before every extraction.
	// When nil a new entropy.FastPoller is used unless NoFastPoll is set.
	Fast entropy.Gatherer

	// NoFastPoll disables the fast gatherer.
	NoFastPoll bool

	// SeedFile is the path of the seed file.  Empty disables it.
	SeedFile string

	// Daemon, when set, is asked for output before the local pool.  The
	// first failure disables it for the lifetime of the Generator.
	Daemon Daemon

	// QuickTest downgrades very strong requests to strong to speed up test
	// suites.  It must not be used in production.
	QuickTest bool

	// Getpid returns the current process id.  Defaults to os.Getpid.
	Getpid func() int
}

// Generator is the entropy pool generator.  All methods are safe for
// concurrent access.
type Generator struct {
	// mu protects all fields below it.
	mu     sync.Mutex
	locked bool

	slow entropy.Gatherer
	fast entropy.Gatherer

	// rndpool is the entropy pool and keypool the extraction pool.  Both
	// are nil until eager initialization.
	rndpool []byte
	keypool []byte

	writePos  int
	readPos   int
	justMixed bool

	// filled is set once at least PoolSize bytes of slow poll quality
	// entropy, or a valid seed file, went into the pool.
	filled        bool
	filledCounter int

	// balance estimates the fresh entropy bytes not yet extracted.
	balance             int
	didInitialExtraPoll bool

	pid    int
	pidSet bool

	seedFile        string
	allowSeedUpdate bool

	stats Stats

	// These fields are immutable after New.
	cfg       Config
	getpid    func() int
	quickTest bool

	daemon        Daemon
	daemonEnabled atomic.Bool

	nonce nonceState
}

// New returns a Generator using the provided configuration.  No entropy is
// gathered until the generator is first used or eagerly initialized.
func New(cfg Config) *Generator {
	g := &Generator{
		cfg:       cfg,
		getpid:    cfg.Getpid,
		quickTest: cfg.QuickTest,
		seedFile:  cfg.SeedFile,
		daemon:    cfg.Daemon,
	}
	if g.getpid == nil {
		g.getpid = os.Getpid
	}
	if g.daemon != nil {
		g.daemonEnabled.Store(true)
	}
	return g
}

// Initialize prepares the generator.  When eager is set both pools are
// allocated and the gatherers are bound.  Calling Initialize again has no
// effect on an initialized generator.
//
// A missing slow gatherer is fatal.
func (g *Generator) Initialize(eager bool) {
	if !eager {
		return
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.rndpool != nil {
		return
	}

	g.slow = g.cfg.Slow
	if g.slow == nil {
		slow, err := entropy.NewSlowGatherer()
		switch {
		case err == nil:
			g.slow = slow

		case errors.Is(err, entropy.ErrNoSource) &&
			entropy.InsecureFallbackAvailable:
			log.Criticalf("No entropy gathering module detected; " +
				"falling back to the INSECURE generator")
			g.slow = entropy.NewInsecureGatherer()

		default:
			rngerr.Fatalf(log, subsystem, "no entropy gathering "+
				"module detected: %v", err)
		}
	}
	g.fast = g.cfg.Fast
	if g.fast == nil && !g.cfg.NoFastPoll {
		g.fast = entropy.NewFastPoller()
	}

	g.rndpool = make([]byte, PoolSize)
	g.keypool = make([]byte, PoolSize)
	log.Debugf("Entropy pool initialized (%d bytes, fast poll %v)",
		PoolSize, g.fast != nil)
}

// lock acquires the pool lock and records that it is held.
func (g *Generator) lock() {
	g.mu.Lock()
	g.locked = true
}

// unlock releases the pool lock.
func (g *Generator) unlock() {
	g.locked = false
	g.mu.Unlock()
}

// assertLocked raises a fault when the pool lock is not held by the caller's
// code path.
func (g *Generator) assertLocked(where string) {
	if !g.locked {
		rngerr.Fatalf(log, subsystem, "%s called without the pool lock",
			where)
	}
}

// addRandomness XORs buf into the pool at the write cursor, mixing the pool
// every time the cursor wraps.
//
// This function MUST be called with the pool lock held.
func (g *Generator) addRandomness(buf []byte, origin entropy.Origin) {
	g.assertLocked("addRandomness")

	g.stats.AddBytes += uint64(len(buf))
	g.stats.NAddBytes++

	// Only slow gatherer output counts toward the initial fill so that
	// cheap fast polls and caller input can never mark the pool as filled.
	if origin >= entropy.OriginSlowPoll && !g.filled {
		g.filledCounter += len(buf)
		if g.filledCounter >= PoolSize {
			g.filled = true
		}
	}

	// The pool only counts as freshly mixed when a wrap consumed the last
	// byte.
	if len(buf) > 0 {
		g.justMixed = false
	}
	for i, b := range buf {
		g.rndpool[g.writePos] ^= b
		g.writePos++
		if g.writePos >= PoolSize {
			g.writePos = 0
			g.mixRndPool()
			g.justMixed = i == len(buf)-1
		}
	}
}

// addPid adds the process id to the pool.
//
// This function MUST be called with the pool lock held.
func (g *Generator) addPid(pid int) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], uint32(pid))
	g.addRandomness(b[:], entropy.OriginInit)
}

// mixRndPool mixes the entropy pool including the failsafe digest of its
// current content.
//
// This function MUST be called with the pool lock held.
func (g *Generator) mixRndPool() {
	var failsafe [DigestLen]byte
	primitive.Hash(&failsafe, g.rndpool)
	mixPool(g.rndpool, &failsafe)
	clear(failsafe[:])
	g.stats.MixRnd++
}

// mixKeyPool mixes the extraction pool.
//
// This function MUST be called with the pool lock held.
func (g *Generator) mixKeyPool() {
	mixPool(g.keypool, nil)
	g.stats.MixKey++
}

// gather reads n bytes of the given level from the slow gatherer into the
// pool.  Failing to do so is fatal since there is no safe way to continue.
//
// This function MUST be called with the pool lock held.
func (g *Generator) gather(origin entropy.Origin, n int, level entropy.Level) {
	err := g.slow.Gather(g.addRandomness, origin, n, level)
	if err != nil {
		rngerr.Fatalf(log, subsystem, "no way to gather entropy for "+
			"the RNG: %v", err)
	}
}

// slowPoll performs a regular slow gatherer poll.
//
// This function MUST be called with the pool lock held.
func (g *Generator) slowPoll() {
	g.stats.SlowPolls++
	g.gather(entropy.OriginSlowPoll, PoolSize/5, entropy.Strong)
}

// fastPoll performs a fast gatherer poll when one is bound.  Fast poll
// failures are not critical and only logged.
//
// This function MUST be called with the pool lock held.
func (g *Generator) fastPoll() {
	if g.fast == nil {
		return
	}
	g.stats.FastPolls++
	err := g.fast.Gather(g.addRandomness, entropy.OriginFastPoll, 0,
		entropy.Weak)
	if err != nil {
		log.Debugf("Fast poll failed: %v", err)
	}
}

// FastPoll runs a fast poll outside of an extraction.
func (g *Generator) FastPoll() {
	g.Initialize(true)
	g.lock()
	defer g.unlock()
	g.fastPoll()
}

// validateLevel returns an error for levels outside the defined range.
func validateLevel(level entropy.Level) error {
	if level < entropy.Weak || level > entropy.VeryStrong {
		str := fmt.Sprintf("invalid random quality level %d", level)
		return rngerr.New(rngerr.ErrInvalidArgument, str)
	}
	return nil
}

// Fill fills buf with random bytes of the requested level.  It blocks until
// enough entropy is available.  An invalid level is the only error.
func (g *Generator) Fill(buf []byte, level entropy.Level) error {
	if err := validateLevel(level); err != nil {
		return err
	}
	if len(buf) == 0 {
		return nil
	}

	if g.daemonEnabled.Load() {
		err := g.daemon.Randomize(buf, level)
		if err == nil {
			return nil
		}
		g.disableDaemon(err)
	}

	g.randomize(buf, level)
	return nil
}

// disableDaemon permanently switches off daemon delegation.
func (g *Generator) disableDaemon(err error) {
	if g.daemonEnabled.CompareAndSwap(true, false) {
		log.Warnf("Randomness daemon unavailable, using the local pool "+
			"from now on: %v", err)
	}
}

// randomize fills buf from the local pool.
func (g *Generator) randomize(buf []byte, level entropy.Level) {
	g.Initialize(true)

	if g.quickTest && level > entropy.Strong {
		level = entropy.Strong
	}

	g.lock()
	defer g.unlock()

	if level >= entropy.VeryStrong {
		g.stats.GetBytes2 += uint64(len(buf))
		g.stats.NGetBytes2++
	} else {
		g.stats.GetBytes1 += uint64(len(buf))
		g.stats.NGetBytes1++
	}

	for len(buf) > 0 {
		n := min(len(buf), PoolSize)
		g.readPool(buf[:n], level)
		buf = buf[n:]
	}
}

// readPool extracts len(buf) bytes, at most PoolSize, from the pool.
//
// This function MUST be called with the pool lock held.
func (g *Generator) readPool(buf []byte, level entropy.Level) {
	g.assertLocked("readPool")
	if len(buf) > PoolSize {
		rngerr.Fatalf(log, subsystem, "too many random bytes requested")
	}

	for {
		// Detect a fork by comparing process ids.  A child starts with
		// the very same pool as its parent, so the new pid is folded in
		// and the pool is forced to be mixed again.
		pid := g.getpid()
		if !g.pidSet {
			g.pid, g.pidSet = pid, true
		}
		if g.pid != pid {
			g.pid = pid
			g.addPid(pid)
			g.justMixed = false
		}

		// Very strong requests always get an initial extra seeding of at
		// least half the pool and afterwards block until the balance
		// covers the request.
		if level == entropy.VeryStrong && !g.didInitialExtraPoll {
			g.balance = 0
			needed := max(len(buf), PoolSize/2)
			g.gather(entropy.OriginExtraPoll, needed, entropy.VeryStrong)
			g.balance += needed
			g.didInitialExtraPoll = true
		}
		if level == entropy.VeryStrong && g.balance < len(buf) {
			if g.balance < 0 {
				g.balance = 0
			}
			needed := len(buf) - g.balance
			g.gather(entropy.OriginExtraPoll, needed, entropy.VeryStrong)
			g.balance += needed
		}

		if !g.filled && g.readSeedFile() {
			g.filled = true
		}
		for !g.filled {
			g.slowPoll()
		}

		g.fastPoll()

		// Mix the pid in so that a child can never emit the same output
		// as its parent.
		g.addPid(g.pid)

		if !g.justMixed {
			g.mixRndPool()
		}

		deriveExtractionPool(g.keypool, g.rndpool)
		g.mixRndPool()
		g.mixKeyPool()
		g.justMixed = false

		for i := range buf {
			buf[i] = g.keypool[g.readPos]
			g.readPos++
			if g.readPos >= PoolSize {
				g.readPos = 0
			}
			g.balance--
		}
		if g.balance < 0 {
			g.balance = 0
		}
		clear(g.keypool)

		// A fork while extracting means the output may equal the
		// parent's, so fold in the new pid and extract again.
		if now := g.getpid(); now != pid {
			g.pid = now
			g.addPid(now)
			g.justMixed = false
			continue
		}
		return
	}
}

// AddEntropy adds caller supplied bytes of the given quality, 0 to 100, to
// the pool.  A quality of -1 selects a default.  Low quality input is ignored.
func (g *Generator) AddEntropy(buf []byte, quality int) error {
	if buf == nil {
		return rngerr.New(rngerr.ErrInvalidArgument, "entropy buffer "+
			"must not be nil")
	}
	switch {
	case quality == -1:
		quality = defaultQuality
	case quality > 100:
		quality = 100
	case quality < 0:
		quality = 0
	}
	if len(buf) == 0 || quality < minQuality {
		return nil
	}

	g.Initialize(true)
	g.lock()
	defer g.unlock()
	for len(buf) > 0 {
		n := min(len(buf), PoolSize)
		g.addRandomness(buf[:n], entropy.OriginExternal)
		buf = buf[n:]
	}
	return nil
}

// IsFaked reports whether the generator runs in quick test mode.
func (g *Generator) IsFaked() bool {
	return g.quickTest
}

// SelfTest runs the generator's self tests.  The pool generator has no
// known-answer tests, so it always succeeds.
func (g *Generator) SelfTest() error {
	return nil
}
