// Copyright (c) 2025 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockrng

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/decred/rngcore/internal/entropy"
	"github.com/decred/rngcore/internal/primitive"
	"github.com/decred/rngcore/internal/rngerr"
)

// subsystem tags faults raised by this package.
const subsystem = "BRNG"

// Config specifies the collaborators of a Generator.  All fields are optional.
type Config struct {
	// Slow provides the keys and seeds.  When nil the platform slow
	// gatherer is used.
	Slow entropy.Gatherer

	// Getpid returns the current process id.  Defaults to os.Getpid.
	Getpid func() int

	// Now returns the current time for the date/time vector.  Defaults to
	// time.Now.
	Now func() time.Time
}

// Generator is the block cipher based generator.  All methods are safe for
// concurrent access.
type Generator struct {
	// mu protects all fields below it including the contexts of open test
	// contexts.
	mu     sync.Mutex
	locked bool

	slow   entropy.Gatherer
	nonce  *context
	std    *context
	strong *context

	dt dtState

	// scratch holds I, the XOR temporary and R of the block step.  It is
	// zero whenever the lock is not held.
	scratch [3 * BlockSize]byte

	cfg    Config
	getpid func() int
	now    func() time.Time
}

// New returns a Generator using the provided configuration.
func New(cfg Config) *Generator {
	g := &Generator{
		cfg:    cfg,
		getpid: cfg.Getpid,
		now:    cfg.Now,
	}
	if g.getpid == nil {
		g.getpid = os.Getpid
	}
	if g.now == nil {
		g.now = time.Now
	}
	return g
}

// Initialize prepares the generator.  When eager is set the three contexts
// are allocated and the slow gatherer is bound.  Keys and seeds are only
// created on first use of a context.  Calling Initialize again has no effect.
func (g *Generator) Initialize(eager bool) {
	if !eager {
		return
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.std != nil {
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

	g.nonce = newContext("nonce")
	g.std = newContext("std")
	g.strong = newContext("strong")
	log.Debugf("Block generator contexts initialized")
}

// lock acquires the generator lock and records that it is held.
func (g *Generator) lock() {
	g.mu.Lock()
	g.locked = true
}

// unlock releases the generator lock.
func (g *Generator) unlock() {
	g.locked = false
	g.mu.Unlock()
}

// assertLocked raises a fault when the generator lock is not held.
func (g *Generator) assertLocked(where string) {
	if !g.locked {
		rngerr.Fatalf(log, subsystem, "%s called without the RNG lock",
			where)
	}
}

// getEntropy returns n fresh bytes from the slow gatherer.
//
// This function MUST be called with the generator lock held.
func (g *Generator) getEntropy(n int) []byte {
	g.assertLocked("getEntropy")

	buf := make([]byte, 0, n)
	add := func(b []byte, origin entropy.Origin) {
		buf = append(buf, b[:min(len(b), n-len(buf))]...)
	}
	err := g.slow.Gather(add, entropy.OriginInit, n, entropy.VeryStrong)
	if err != nil || len(buf) != n {
		clear(buf)
		rngerr.Fatalf(log, subsystem, "error getting entropy data for "+
			"the RNG: %v (got %d of %d bytes)", err, len(buf), n)
	}
	return buf
}

// generateKey keys c.  The nonce context takes its key from the standard
// context and all others from the slow gatherer.
//
// This function MUST be called with the generator lock held.
func (g *Generator) generateKey(c *context) {
	var key []byte
	if c == g.nonce {
		key = make([]byte, primitive.CipherKeySize)
		g.getRandom(g.std, key)
	} else {
		key = g.getEntropy(primitive.CipherKeySize)
	}
	defer clear(key)

	cipher, err := primitive.NewAES128(key)
	if err != nil {
		rngerr.Fatalf(log, subsystem, "unable to create the RNG "+
			"cipher: %v", err)
	}
	c.cipher = cipher
	c.keyPid = g.getpid()
}

// reseed renews the seed vector of c.  The nonce context takes its seed from
// the standard context and all others from the slow gatherer.
//
// This function MUST be called with the generator lock held.
func (g *Generator) reseed(c *context) {
	if c == g.nonce {
		g.getRandom(g.std, c.seed[:])
	} else {
		seed := g.getEntropy(BlockSize)
		copy(c.seed[:], seed)
		clear(seed)
	}
	c.isSeeded = true
	c.seedPid = g.getpid()
}

// getRandom fills buf from context c, keying and seeding it first if needed.
//
// This function MUST be called with the generator lock held.
func (g *Generator) getRandom(c *context, buf []byte) {
	g.assertLocked("getRandom")
	c.checkGuards()

	if c.cipher == nil {
		g.generateKey(c)
	}
	if !c.isSeeded {
		g.reseed(c)
	}

	pid := g.getpid()
	if c.keyPid != pid || c.seedPid != pid {
		rngerr.Fatalf(log, subsystem, "fork without proper "+
			"re-initialization detected in RNG")
	}

	g.driver(c, buf)
	c.checkGuards()
}

// driver fills buf with output blocks of c.
//
// This function MUST be called with the generator lock held.
func (g *Generator) driver(c *context, buf []byte) {
	var dt, result [BlockSize]byte
	defer clear(result[:])

	for len(buf) > 0 {
		if c.useCounter > SeedTTL {
			g.reseed(c)
			c.useCounter = 0
			c.reseeds++
		}

		if c.testDT != nil {
			c.nextTestDT(&dt)
		} else {
			g.dt.next(&dt, g.now(), g.getpid())
		}
		g.step(c, &result, &dt)
		c.useCounter++
		c.blocks++

		if !c.noDupCheck {
			// The first block only primes the continuous test.
			if !c.compareValueValid {
				c.compareValue = result
				c.compareValueValid = true
				continue
			}
			if c.compareValue == result {
				rngerr.Fatalf(log, subsystem, "duplicate %d-bit "+
					"block returned by RNG context %s",
					BlockSize*8, c.name)
			}
			c.compareValue = result
		}

		n := copy(buf, result[:])
		buf = buf[n:]
	}
}

// step computes one output block from dt and the seed of c and updates the
// seed:
//
//	I  = E(K, DT)
//	R  = E(K, I xor V)
//	V' = E(K, R xor I)
//
// This function MUST be called with the generator lock held.
func (g *Generator) step(c *context, result, dt *[BlockSize]byte) {
	g.assertLocked("step")

	i := (*[BlockSize]byte)(g.scratch[0:BlockSize])
	temp := (*[BlockSize]byte)(g.scratch[BlockSize : 2*BlockSize])
	r := (*[BlockSize]byte)(g.scratch[2*BlockSize:])

	c.cipher.EncryptBlock(i, dt)
	for j := range temp {
		temp[j] = i[j] ^ c.seed[j]
	}
	c.cipher.EncryptBlock(r, temp)
	for j := range temp {
		temp[j] = r[j] ^ i[j]
	}
	c.cipher.EncryptBlock(&c.seed, temp)

	*result = *r
	clear(g.scratch[:])
}

// validateLevel returns an error for levels outside the defined range.
func validateLevel(level entropy.Level) error {
	if level < entropy.Weak || level > entropy.VeryStrong {
		str := fmt.Sprintf("invalid random quality level %d", level)
		return rngerr.New(rngerr.ErrInvalidArgument, str)
	}
	return nil
}

// Fill fills buf with random bytes.  Very strong requests are served by a
// context of their own.
func (g *Generator) Fill(buf []byte, level entropy.Level) error {
	if err := validateLevel(level); err != nil {
		return err
	}
	if len(buf) == 0 {
		return nil
	}

	g.Initialize(true)
	g.lock()
	defer g.unlock()
	if level == entropy.VeryStrong {
		g.getRandom(g.strong, buf)
	} else {
		g.getRandom(g.std, buf)
	}
	return nil
}

// CreateNonce fills buf with bytes from the nonce context.
func (g *Generator) CreateNonce(buf []byte) {
	if len(buf) == 0 {
		return
	}

	g.Initialize(true)
	g.lock()
	defer g.unlock()
	g.getRandom(g.nonce, buf)
}

// AddEntropy accepts caller supplied entropy and discards it.
func (g *Generator) AddEntropy(buf []byte, quality int) error {
	return nil
}

// IsFaked always returns false.
func (g *Generator) IsFaked() bool {
	return false
}
