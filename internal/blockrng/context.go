// Copyright (c) 2025 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockrng

import (
	"encoding/binary"

	"github.com/decred/rngcore/internal/primitive"
	"github.com/decred/rngcore/internal/rngerr"
)

const (
	// BlockSize is the size of a single output block.
	BlockSize = primitive.CipherBlockSize

	// SeedTTL is the number of blocks a context may produce before it must
	// be reseeded.
	SeedTTL = 1000
)

// Guard values placed between the fields of a context.
const (
	guard0Value = 17
	guard1Value = 42
	guard2Value = 137
	guard3Value = 252
)

// context is the state of a single generator.
type context struct {
	guard0 byte

	// cipher is nil until the context has been keyed.
	cipher primitive.Cipher

	guard1 byte

	// seed is the seed vector V.
	seed     [BlockSize]byte
	isSeeded bool

	guard2 byte

	// compareValue holds the previous block for the continuous test.
	compareValue      [BlockSize]byte
	compareValueValid bool

	guard3 byte

	// useCounter is the number of blocks produced since the last seeding.
	useCounter int

	// keyPid and seedPid are the process ids at keying and seeding time.
	keyPid  int
	seedPid int

	// testDT, when set, replaces the date/time vector.  The last four bytes
	// are taken from testDTCounter which is incremented for every block.
	testDT        *[BlockSize]byte
	testDTCounter uint32
	noDupCheck    bool

	name    string
	blocks  uint64
	reseeds uint64
}

// newContext returns an unkeyed context with its guards in place.
func newContext(name string) *context {
	return &context{
		guard0: guard0Value,
		guard1: guard1Value,
		guard2: guard2Value,
		guard3: guard3Value,
		name:   name,
	}
}

// checkGuards raises a fault when any of the guards was overwritten.
func (c *context) checkGuards() {
	if c.guard0 != guard0Value || c.guard1 != guard1Value ||
		c.guard2 != guard2Value || c.guard3 != guard3Value {

		rngerr.Fatalf(log, subsystem, "memory corruption detected in "+
			"RNG context %s (%d %d %d %d)", c.name, c.guard0, c.guard1,
			c.guard2, c.guard3)
	}
}

// setTestDT makes the context use a deterministic date/time vector.
func (c *context) setTestDT(dt []byte) {
	var v [BlockSize]byte
	copy(v[:], dt)
	c.testDT = &v
	c.testDTCounter = binary.BigEndian.Uint32(v[12:])
}

// nextTestDT writes the next deterministic date/time vector to dt.
func (c *context) nextTestDT(dt *[BlockSize]byte) {
	*dt = *c.testDT
	binary.BigEndian.PutUint32(dt[12:], c.testDTCounter)
	c.testDTCounter++
}

// wipe clears the key material of the context.
func (c *context) wipe() {
	c.cipher = nil
	clear(c.seed[:])
	clear(c.compareValue[:])
	c.isSeeded = false
	c.compareValueValid = false
	if c.testDT != nil {
		clear(c.testDT[:])
		c.testDT = nil
	}
}
