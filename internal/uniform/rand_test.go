// Copyright (c) 2025 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package uniform

import (
	"bytes"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/decred/dcrd/crypto/rand"
)

// TestUint64nBounds ensures results stay in range for a variety of bounds.
func TestUint64nBounds(t *testing.T) {
	tests := []uint64{1, 2, 3, 7, 8, 1000, 1<<63 + 1, ^uint64(0)}

	t.Logf("Running %d tests", len(tests))
	for i, n := range tests {
		for trial := 0; trial < 100; trial++ {
			v := Uint64n(rand.Reader(), n)
			if v >= n {
				t.Fatalf("#%d: got %d, want < %d", i, v, n)
			}
		}
	}
}

// TestUint64nRejection ensures values outside the range are redrawn rather
// than reduced.
func TestUint64nRejection(t *testing.T) {
	// With n = 5 the mask is 7, so the first draw of 6 is rejected and the
	// second draw of 2 is returned.
	src := bytes.NewReader([]byte{
		6, 0, 0, 0, 0, 0, 0, 0,
		2, 0, 0, 0, 0, 0, 0, 0,
	})
	if v := Uint64n(src, 5); v != 2 {
		t.Fatalf("got %d, want 2", v)
	}
	if src.Len() != 0 {
		t.Fatalf("%d unread bytes", src.Len())
	}
}

// TestJitter ensures jittered durations stay within the spread.
func TestJitter(t *testing.T) {
	const d = time.Hour
	for trial := 0; trial < 100; trial++ {
		got := Jitter(rand.Reader(), d, 10)
		if got < d-d/10 || got >= d+d/10 {
			t.Fatalf("jittered duration %v out of range", got)
		}
	}
	if got := Jitter(rand.Reader(), 5, 10); got != 5 {
		t.Fatalf("zero spread changed duration to %v", got)
	}
}

// TestPanics ensures invalid arguments and failing sources panic.
func TestPanics(t *testing.T) {
	tests := []struct {
		name string
		f    func()
	}{
		{"Uint64n zero", func() { Uint64n(rand.Reader(), 0) }},
		{"Int64n negative", func() { Int64n(rand.Reader(), -1) }},
		{"Duration zero", func() { Duration(rand.Reader(), 0) }},
		{"Jitter zero div", func() { Jitter(rand.Reader(), time.Second, 0) }},
		{"short source", func() { Uint64(bytes.NewReader([]byte{1})) }},
	}

	t.Logf("Running %d tests", len(tests))
	for _, test := range tests {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("%s: did not panic", test.name)
				}
			}()
			test.f()
		}()
	}
}

// TestReadErrorWrapped ensures the source error is carried by the panic.
func TestReadErrorWrapped(t *testing.T) {
	defer func() {
		err, _ := recover().(error)
		if !errors.Is(err, io.ErrUnexpectedEOF) {
			t.Fatalf("unexpected panic value %v", err)
		}
	}()
	Uint64(bytes.NewReader([]byte{1, 2, 3}))
}
