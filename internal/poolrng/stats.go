// Copyright (c) 2025 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package poolrng

import "fmt"

// Stats holds usage counters of a Generator.
type Stats struct {
	PoolSize   int
	MixRnd     uint64
	MixKey     uint64
	SlowPolls  uint64
	FastPolls  uint64
	AddBytes   uint64
	NAddBytes  uint64
	GetBytes1  uint64
	NGetBytes1 uint64
	GetBytes2  uint64
	NGetBytes2 uint64
	Quick      bool
}

// String returns the counters in a single human readable line.
func (s Stats) String() string {
	var quick string
	if s.Quick {
		quick = " (quick)"
	}
	return fmt.Sprintf("random usage: poolsize=%d mixed=%d polls=%d/%d "+
		"added=%d/%d outmix=%d getlvl1=%d/%d getlvl2=%d/%d%s",
		s.PoolSize, s.MixRnd, s.SlowPolls, s.FastPolls, s.NAddBytes,
		s.AddBytes, s.MixKey, s.NGetBytes1, s.GetBytes1, s.NGetBytes2,
		s.GetBytes2, quick)
}

// DumpStats returns a snapshot of the usage counters.
func (g *Generator) DumpStats() Stats {
	g.mu.Lock()
	s := g.stats
	g.mu.Unlock()

	s.PoolSize = PoolSize
	s.Quick = g.quickTest
	return s
}
