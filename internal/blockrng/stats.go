// Copyright (c) 2025 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockrng

import "fmt"

// ContextStats holds the counters of a single context.
type ContextStats struct {
	Blocks  uint64
	Reseeds uint64
}

// Stats holds the counters of the three generator contexts.
type Stats struct {
	Nonce  ContextStats
	Std    ContextStats
	Strong ContextStats
}

// String returns the counters in a single human readable line.
func (s Stats) String() string {
	return fmt.Sprintf("block rng usage: nonce=%d/%d std=%d/%d "+
		"strong=%d/%d", s.Nonce.Blocks, s.Nonce.Reseeds, s.Std.Blocks,
		s.Std.Reseeds, s.Strong.Blocks, s.Strong.Reseeds)
}

// DumpStats returns a snapshot of the per context counters as blocks
// produced and reseeds.
func (g *Generator) DumpStats() Stats {
	g.mu.Lock()
	defer g.mu.Unlock()

	var s Stats
	if g.std == nil {
		return s
	}
	s.Nonce = ContextStats{g.nonce.blocks, g.nonce.reseeds}
	s.Std = ContextStats{g.std.blocks, g.std.reseeds}
	s.Strong = ContextStats{g.strong.blocks, g.strong.reseeds}
	return s
}
