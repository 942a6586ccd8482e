// Copyright (c) 2025 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package daemon

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/decred/rngcore/internal/entropy"
	"github.com/decred/rngcore/internal/rngerr"
)

// patternHandler answers with bytes derived from the request kind.
type patternHandler struct {
	mu    sync.Mutex
	fail  bool
	calls int
}

func (h *patternHandler) Fill(buf []byte, level entropy.Level) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls++
	if h.fail {
		return errors.New("generator unavailable")
	}
	for i := range buf {
		buf[i] = byte(level) + 1
	}
	return nil
}

func (h *patternHandler) CreateNonce(buf []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls++
	for i := range buf {
		buf[i] = 0xee
	}
}

// startServer serves h on a fresh unix socket and returns its path.  The
// server is stopped when the test ends.
func startServer(t *testing.T, h Handler, stats *ServerStats) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "s")
	l, err := net.Listen("unix", path)
	if err != nil {
		t.Fatalf("unable to listen: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Serve(ctx, l, h, stats) }()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			if err != nil {
				t.Errorf("serve: unexpected error: %v", err)
			}
		case <-time.After(5 * time.Second):
			t.Error("server did not shut down")
		}
	})
	return path
}

// TestReadRequest ensures requests are decoded and validated.
func TestReadRequest(t *testing.T) {
	tests := []struct {
		name    string
		wire    []byte
		want    request
		wantErr error
	}{
		{"weak", []byte{3, 0, 1}, request{level: entropy.Weak, length: 1}, nil},
		{"strong", []byte{3, 1, 255}, request{level: entropy.Strong, length: 255}, nil},
		{"very strong", []byte{3, 2, 16}, request{level: entropy.VeryStrong, length: 16}, nil},
		{"nonce", []byte{3, 10, 8}, request{nonce: true, length: 8}, nil},
		{"bad op", []byte{4, 0, 1}, request{}, errBadRequest},
		{"bad quality", []byte{3, 3, 1}, request{}, errBadRequest},
		{"zero length", []byte{3, 1, 0}, request{}, errBadRequest},
		{"short", []byte{3, 1}, request{}, io.ErrUnexpectedEOF},
	}

	t.Logf("Running %d tests", len(tests))
	for _, test := range tests {
		got, err := readRequest(bytes.NewReader(test.wire))
		if !errors.Is(err, test.wantErr) {
			t.Errorf("%s: unexpected error: got %v, want %v", test.name,
				err, test.wantErr)
			continue
		}
		if err != nil {
			continue
		}
		if got != test.want {
			t.Errorf("%s: got %+v, want %+v", test.name, got, test.want)
			continue
		}
		wire := encodeRequest(got)
		if !bytes.Equal(wire[:], test.wire) {
			t.Errorf("%s: re-encoded as %x", test.name, wire)
		}
	}
}

// TestRoundTrip ensures long requests are split and served.
func TestRoundTrip(t *testing.T) {
	h := &patternHandler{}
	var stats ServerStats
	c := &Client{Socket: startServer(t, h, &stats)}

	buf := make([]byte, 600)
	if err := c.Randomize(buf, entropy.Strong); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(buf, bytes.Repeat([]byte{2}, 600)) {
		t.Fatal("unexpected data for strong request")
	}

	nonce := make([]byte, 12)
	if err := c.CreateNonce(nonce); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(nonce, bytes.Repeat([]byte{0xee}, 12)) {
		t.Fatal("unexpected data for nonce request")
	}

	if err := c.Randomize(nil, entropy.Weak); err != nil {
		t.Fatalf("unexpected error for empty request: %v", err)
	}

	if got := stats.Requests.Load(); got != 4 {
		t.Fatalf("requests: got %d, want 4", got)
	}
	if got := stats.Bytes.Load(); got != 612 {
		t.Fatalf("bytes: got %d, want 612", got)
	}
	if got := stats.Conns.Load(); got != 2 {
		t.Fatalf("connections: got %d, want 2", got)
	}
}

// TestMalformedRequest ensures a malformed request is answered with an error
// status and the connection is closed.
func TestMalformedRequest(t *testing.T) {
	var stats ServerStats
	path := startServer(t, &patternHandler{}, &stats)

	conn, err := net.Dial("unix", path)
	if err != nil {
		t.Fatalf("unable to dial: %v", err)
	}
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(5 * time.Second))

	if _, err := conn.Write([]byte{7, 0, 1}); err != nil {
		t.Fatalf("unable to write: %v", err)
	}
	var resp [2]byte
	if _, err := io.ReadFull(conn, resp[:]); err != nil {
		t.Fatalf("unable to read response: %v", err)
	}
	if resp != [2]byte{StatusBadRequest, 0} {
		t.Fatalf("unexpected response %x", resp)
	}
	if _, err := conn.Read(resp[:]); !errors.Is(err, io.EOF) {
		t.Fatalf("connection not closed: %v", err)
	}
	if got := stats.Rejected.Load(); got != 1 {
		t.Fatalf("rejected: got %d, want 1", got)
	}
}

// TestHandlerFailure ensures generator failures reach the client as daemon
// errors.
func TestHandlerFailure(t *testing.T) {
	c := &Client{Socket: startServer(t, &patternHandler{fail: true}, nil)}
	err := c.Randomize(make([]byte, 16), entropy.VeryStrong)
	if !errors.Is(err, rngerr.ErrDaemon) {
		t.Fatalf("unexpected error: got %v, want %v", err, rngerr.ErrDaemon)
	}
}

// TestNoDaemon ensures a missing daemon is reported as a daemon error.
func TestNoDaemon(t *testing.T) {
	c := &Client{
		Socket:  filepath.Join(t.TempDir(), "missing"),
		Timeout: time.Second,
	}
	err := c.Randomize(make([]byte, 16), entropy.Weak)
	if !errors.Is(err, rngerr.ErrDaemon) {
		t.Fatalf("unexpected error: got %v, want %v", err, rngerr.ErrDaemon)
	}
	if err := c.CreateNonce(make([]byte, 8)); !errors.Is(err, rngerr.ErrDaemon) {
		t.Fatalf("unexpected nonce error: %v", err)
	}
}

// TestServeListenerFailure ensures Serve reports a listener that fails
// without cancellation.
func TestServeListenerFailure(t *testing.T) {
	l, err := net.Listen("unix", filepath.Join(t.TempDir(), "s"))
	if err != nil {
		t.Fatalf("unable to listen: %v", err)
	}
	l.Close()
	err = Serve(context.Background(), l, &patternHandler{}, nil)
	if err == nil {
		t.Fatal("Serve succeeded on a closed listener")
	}
}
