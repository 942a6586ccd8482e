// Copyright (c) 2025 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package entropy

import (
	"bytes"
	"errors"
	"testing"
)

// collector accumulates gathered bytes and the number of deliveries.
type collector struct {
	buf     bytes.Buffer
	calls   int
	origins map[Origin]int
}

func (c *collector) add(b []byte, origin Origin) {
	if c.origins == nil {
		c.origins = make(map[Origin]int)
	}
	c.buf.Write(b)
	c.calls++
	c.origins[origin] += len(b)
}

// TestSlowGatherer ensures the platform slow gatherer delivers exactly the
// requested number of bytes tagged with the requested origin.
func TestSlowGatherer(t *testing.T) {
	g, err := NewSlowGatherer()
	if err != nil {
		t.Fatalf("NewSlowGatherer: %v", err)
	}

	tests := []int{1, 16, maxChunk, maxChunk + 1, 600}
	t.Logf("Running %d tests", len(tests))
	for _, n := range tests {
		var c collector
		if err := g.Gather(c.add, OriginSlowPoll, n, Strong); err != nil {
			t.Fatalf("n=%d: unexpected error: %v", n, err)
		}
		if c.buf.Len() != n {
			t.Fatalf("n=%d: got %d bytes", n, c.buf.Len())
		}
		if c.origins[OriginSlowPoll] != n {
			t.Fatalf("n=%d: unexpected origins %v", n, c.origins)
		}
		if n > maxChunk && c.calls < 2 {
			t.Fatalf("n=%d: expected chunked delivery, got %d calls", n,
				c.calls)
		}
	}
}

// errReader always fails.
type errReader struct{}

func (errReader) Read([]byte) (int, error) {
	return 0, errors.New("device gone")
}

// TestReaderGathererError ensures read failures are reported instead of
// delivering partial data silently.
func TestReaderGathererError(t *testing.T) {
	var c collector
	g := readerGatherer{r: errReader{}}
	if err := g.Gather(c.add, OriginSlowPoll, 32, Strong); err == nil {
		t.Fatal("expected error")
	}
	if c.buf.Len() != 0 {
		t.Fatalf("unexpected delivery of %d bytes", c.buf.Len())
	}
}

// TestFastPoller ensures the fast poller never fails, always delivers a
// digest, and that consecutive polls differ.
func TestFastPoller(t *testing.T) {
	p := NewFastPoller()
	var first, second collector
	if err := p.Gather(first.add, OriginFastPoll, 0, Weak); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := p.Gather(second.add, OriginFastPoll, 0, Weak); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.buf.Len() != 32 || second.buf.Len() != 32 {
		t.Fatalf("unexpected lengths %d/%d", first.buf.Len(),
			second.buf.Len())
	}
	if bytes.Equal(first.buf.Bytes(), second.buf.Bytes()) {
		t.Fatal("consecutive fast polls returned identical data")
	}
	if first.origins[OriginFastPoll] != 32 {
		t.Fatalf("unexpected origins %v", first.origins)
	}
}

// TestStringers ensures the enum stringers produce the expected names.
func TestStringers(t *testing.T) {
	tests := []struct {
		in   interface{ String() string }
		want string
	}{
		{OriginInit, "init"},
		{OriginExternal, "external"},
		{OriginFastPoll, "fastpoll"},
		{OriginSlowPoll, "slowpoll"},
		{OriginExtraPoll, "extrapoll"},
		{Origin(9), "Origin(9)"},
		{Weak, "weak"},
		{Strong, "strong"},
		{VeryStrong, "very-strong"},
		{Level(7), "Level(7)"},
	}

	t.Logf("Running %d tests", len(tests))
	for i, test := range tests {
		if got := test.in.String(); got != test.want {
			t.Errorf("#%d: got %s, want %s", i, got, test.want)
		}
	}
}
