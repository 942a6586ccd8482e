// Copyright (c) 2025 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package poolrng

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/decred/rngcore/internal/entropy"
	"github.com/decred/rngcore/internal/rngerr"
)

// TestSeedFileRoundTrip ensures a written seed file is picked up by a new
// generator in place of the initial slow polls.
func TestSeedFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "random_seed")

	g, _ := newTestGenerator(Config{SeedFile: path})
	if err := g.Fill(make([]byte, 32), entropy.Strong); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := g.UpdateSeedFile(); err != nil {
		t.Fatalf("unable to update seed file: %v", err)
	}
	if !isZero(g.keypool) {
		t.Fatal("extraction pool not wiped after seed update")
	}

	fi, err := os.Stat(path)
	if err != nil {
		t.Fatalf("seed file not written: %v", err)
	}
	if fi.Size() != PoolSize {
		t.Fatalf("seed file size: got %d, want %d", fi.Size(), PoolSize)
	}
	if perm := fi.Mode().Perm(); perm&0077 != 0 {
		t.Fatalf("seed file is accessible by others: %v", perm)
	}
	seed, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("unable to read seed file: %v", err)
	}

	g2, gath := newTestGenerator(Config{SeedFile: path})
	if err := g2.Fill(make([]byte, 32), entropy.Strong); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := gath.requested(entropy.OriginSlowPoll); got != 0 {
		t.Fatalf("slow polls despite seed file: %d bytes", got)
	}
	if got := gath.requested(entropy.OriginInit); got != seedFileWeakBytes {
		t.Fatalf("weak bytes after seed file: got %d, want %d", got,
			seedFileWeakBytes)
	}

	// The next update must write a different seed.
	if err := g2.UpdateSeedFile(); err != nil {
		t.Fatalf("unable to update seed file: %v", err)
	}
	seed2, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("unable to read seed file: %v", err)
	}
	if len(seed2) != PoolSize || bytes.Equal(seed, seed2) {
		t.Fatal("seed file was not replaced")
	}
}

// TestSeedFileAfterExtraPoll ensures a very strong first request runs its
// extra poll before the seed file is read.
func TestSeedFileAfterExtraPoll(t *testing.T) {
	path := filepath.Join(t.TempDir(), "random_seed")
	if err := os.WriteFile(path, bytes.Repeat([]byte{0x5a}, PoolSize), 0600); err != nil {
		t.Fatalf("unable to write seed file: %v", err)
	}

	g, gath := newTestGenerator(Config{SeedFile: path})
	if err := g.Fill(make([]byte, 32), entropy.VeryStrong); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(gath.calls) < 2 {
		t.Fatalf("unexpected gatherer calls %+v", gath.calls)
	}
	if gath.calls[0].origin != entropy.OriginExtraPoll {
		t.Fatalf("first gather: got %v, want %v", gath.calls[0].origin,
			entropy.OriginExtraPoll)
	}
	if gath.calls[1].origin != entropy.OriginInit {
		t.Fatalf("second gather: got %v, want %v", gath.calls[1].origin,
			entropy.OriginInit)
	}
	if got := gath.requested(entropy.OriginSlowPoll); got != 0 {
		t.Fatalf("slow polls despite seed file: %d bytes", got)
	}
}

// TestSeedFileStates ensures the seed file is only used and updated when it
// is in a valid state.
func TestSeedFileStates(t *testing.T) {
	tests := []struct {
		name      string
		content   []byte
		wantUsed  bool
		wantAllow bool
		wantSize  int64
	}{
		{"missing", nil, false, true, PoolSize},
		{"empty", []byte{}, false, true, PoolSize},
		{"short", make([]byte, 100), false, false, 100},
		{"long", make([]byte, PoolSize+1), false, false, PoolSize + 1},
		{"valid", bytes.Repeat([]byte{0x5a}, PoolSize), true, true, PoolSize},
	}

	t.Logf("Running %d tests", len(tests))
	for _, test := range tests {
		path := filepath.Join(t.TempDir(), "random_seed")
		if test.content != nil {
			if err := os.WriteFile(path, test.content, 0600); err != nil {
				t.Fatalf("%s: unable to write seed file: %v", test.name,
					err)
			}
		}

		g, gath := newTestGenerator(Config{SeedFile: path})
		if err := g.Fill(make([]byte, 16), entropy.Weak); err != nil {
			t.Fatalf("%s: unexpected error: %v", test.name, err)
		}
		used := gath.requested(entropy.OriginSlowPoll) == 0
		if used != test.wantUsed {
			t.Errorf("%s: seed used: got %v, want %v", test.name, used,
				test.wantUsed)
			continue
		}
		if g.allowSeedUpdate != test.wantAllow {
			t.Errorf("%s: update allowed: got %v, want %v", test.name,
				g.allowSeedUpdate, test.wantAllow)
			continue
		}

		if err := g.UpdateSeedFile(); err != nil {
			t.Errorf("%s: unexpected update error: %v", test.name, err)
			continue
		}
		fi, err := os.Stat(path)
		if err != nil {
			t.Errorf("%s: unable to stat seed file: %v", test.name, err)
			continue
		}
		if fi.Size() != test.wantSize {
			t.Errorf("%s: size: got %d, want %d", test.name, fi.Size(),
				test.wantSize)
		}
	}
}

// TestUpdateSeedFileNoop ensures updates are skipped before the pool is
// initialized and filled or when no seed file is configured.
func TestUpdateSeedFileNoop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "random_seed")
	g, _ := newTestGenerator(Config{SeedFile: path})
	if err := g.UpdateSeedFile(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	g.Initialize(true)
	if err := g.UpdateSeedFile(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("seed file written before the pool was filled: %v", err)
	}

	g2, _ := newTestGenerator(Config{})
	if err := g2.Fill(make([]byte, 16), entropy.Weak); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := g2.UpdateSeedFile(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// TestUpdateSeedFileError ensures an unwritable seed file is reported.
func TestUpdateSeedFileError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "random_seed")
	g, _ := newTestGenerator(Config{SeedFile: path})
	if err := g.Fill(make([]byte, 16), entropy.Weak); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err := g.UpdateSeedFile()
	if !errors.Is(err, rngerr.ErrSeedFile) {
		t.Fatalf("unexpected error: got %v, want %v", err,
			rngerr.ErrSeedFile)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("cause not preserved: %v", err)
	}
}

// TestSetSeedFile ensures the seed file can only be set once.
func TestSetSeedFile(t *testing.T) {
	g, _ := newTestGenerator(Config{})
	if err := g.SetSeedFile("a"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err := g.SetSeedFile("b")
	if !errors.Is(err, rngerr.ErrNotSupported) {
		t.Fatalf("unexpected error: %v", err)
	}
}
