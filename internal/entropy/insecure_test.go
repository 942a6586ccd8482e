// Copyright (c) 2025 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

//go:build rngcore_insecure_fallback

package entropy

import "testing"

// TestInsecureGatherer ensures the insecure gatherer delivers the requested
// amount when compiled in.
func TestInsecureGatherer(t *testing.T) {
	if !InsecureFallbackAvailable {
		t.Fatal("insecure fallback not reported as available")
	}
	var c collector
	g := NewInsecureGatherer()
	if err := g.Gather(c.add, OriginSlowPoll, 1000, Strong); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.buf.Len() != 1000 {
		t.Fatalf("got %d bytes", c.buf.Len())
	}
}
