// Copyright (c) 2025 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package random

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/decred/rngcore/internal/daemon"
	"github.com/decred/rngcore/internal/entropy"
	"github.com/decred/rngcore/internal/poolrng"
	"github.com/decred/slog"
)

// reset forgets the generator selection so every test starts unconfigured.
func reset() {
	global.mu.Lock()
	global.cfg = Config{}
	global.gen = nil
	global.pool = nil
	global.block = nil
	global.configured = false
	global.mu.Unlock()
}

// hexToBytes converts the passed hex string into bytes and will panic if
// there is an error.  This is only provided for the hard-coded constants so
// errors in the source code can be detected. It will only (and must only) be
// called with hard-coded values.
func hexToBytes(s string) []byte {
	b, err := hex.DecodeString(s)
	if err != nil {
		panic("invalid hex in source file: " + s)
	}
	return b
}

// TestModeStringer tests the stringized output and parsing of modes.
func TestModeStringer(t *testing.T) {
	tests := []struct {
		in   Mode
		want string
	}{
		{PoolMode, "pool"},
		{BlockMode, "block"},
		{Mode(9), "Mode(9)"},
	}

	t.Logf("Running %d tests", len(tests))
	for i, test := range tests {
		result := test.in.String()
		if result != test.want {
			t.Errorf("#%d: got: %s want: %s", i, result, test.want)
			continue
		}
		mode, err := ParseMode(result)
		if test.in > BlockMode {
			if !errors.Is(err, ErrInvalidArgument) {
				t.Errorf("#%d: unexpected parse error %v", i, err)
			}
			continue
		}
		if err != nil || mode != test.in {
			t.Errorf("#%d: parsed %v (%v), want %v", i, mode, err, test.in)
		}
	}
}

// TestDefaultMode ensures the pool generator is used without configuration.
func TestDefaultMode(t *testing.T) {
	reset()
	for _, level := range []Level{Weak, Strong, VeryStrong} {
		buf := make([]byte, 32)
		if err := Fill(buf, level); err != nil {
			t.Fatalf("%v: unexpected error: %v", level, err)
		}
		if bytes.Equal(buf, make([]byte, 32)) {
			t.Fatalf("%v: zero output", level)
		}
	}
	if mode := ComplianceMode(); mode != PoolMode {
		t.Fatalf("mode: got %v, want %v", mode, PoolMode)
	}
	if IsFaked() {
		t.Fatal("quick test mode reported without being configured")
	}
	stats := DumpStats()
	if !strings.HasPrefix(stats, "random usage: poolsize=600 ") {
		t.Fatalf("unexpected stats %q", stats)
	}
	if err := RunSelfTest(nil); err != nil {
		t.Fatalf("unexpected self-test error: %v", err)
	}
	if err := AddEntropy([]byte("caller entropy"), 50); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := UpdateSeedFile(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// TestConfigure ensures the configuration can only be applied once and
// before first use.
func TestConfigure(t *testing.T) {
	reset()
	if err := Configure(Config{Mode: Mode(5)}); !errors.Is(err,
		ErrInvalidArgument) {

		t.Fatalf("unexpected error for invalid mode: %v", err)
	}
	if err := Configure(Config{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := Configure(Config{}); !errors.Is(err, ErrNotSupported) {
		t.Fatalf("unexpected error for second configure: %v", err)
	}

	reset()
	CreateNonce(make([]byte, 8))
	err := Configure(Config{Mode: BlockMode})
	if !errors.Is(err, ErrNotSupported) {
		t.Fatalf("unexpected error for configure after use: %v", err)
	}
	if mode := ComplianceMode(); mode != PoolMode {
		t.Fatalf("mode switched after use: %v", mode)
	}
}

// TestBlockMode ensures all operations are routed to the block generator.
func TestBlockMode(t *testing.T) {
	reset()
	if err := Configure(Config{Mode: BlockMode, Eager: true}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := RunSelfTest(func(what, errtext string) {
		t.Errorf("unexpected report %s: %s", what, errtext)
	}); err != nil {
		t.Fatalf("self-test failed: %v", err)
	}

	buf := Bytes(48, VeryStrong)
	if len(buf) != 48 {
		t.Fatalf("unexpected length %d", len(buf))
	}
	CreateNonce(make([]byte, 8))
	if err := AddEntropy([]byte{1}, 100); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := UpdateSeedFile(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	stats := DumpStats()
	if !strings.HasPrefix(stats, "block rng usage: ") {
		t.Fatalf("unexpected stats %q", stats)
	}

	tc, err := OpenTestContext(
		hexToBytes("b9ca7fd6a0f5d342196d8491761c3bbe"),
		hexToBytes("52178d29a2d584129d899a458202f777"),
		hexToBytes("48b2829868c280000000281800002500"),
		TestNoDupCheck)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := make([]byte, 16)
	if err := RunTest(tc, out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := hexToBytes("24eeccaf73fd699fecd0c2b7adda2ea6")
	if !bytes.Equal(out, want) {
		t.Fatalf("got %x, want %x", out, want)
	}
	if err := CloseTestContext(tc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := RunTest(nil, out); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("unexpected error for nil context: %v", err)
	}
}

// TestPoolModeTestContexts ensures test contexts are refused in pool mode.
func TestPoolModeTestContexts(t *testing.T) {
	reset()
	good := make([]byte, 16)
	_, err := OpenTestContext(good, good, good, 0)
	if !errors.Is(err, ErrNotSupported) {
		t.Fatalf("unexpected open error: %v", err)
	}
	if err := RunTest(&TestContext{}, good); !errors.Is(err, ErrNotSupported) {
		t.Fatalf("unexpected run error: %v", err)
	}
	if err := CloseTestContext(&TestContext{}); !errors.Is(err, ErrNotSupported) {
		t.Fatalf("unexpected close error: %v", err)
	}
}

// TestSeedFile ensures the configured seed file is written on update.
func TestSeedFile(t *testing.T) {
	reset()
	path := filepath.Join(t.TempDir(), "random_seed")
	err := Configure(Config{SeedFile: path, QuickTest: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !IsFaked() {
		t.Fatal("quick test mode not reported")
	}
	if _, err := io.ReadFull(Reader, make([]byte, 64)); err != nil {
		t.Fatalf("unexpected read error: %v", err)
	}
	if err := UpdateSeedFile(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	fi, err := os.Stat(path)
	if err != nil {
		t.Fatalf("seed file not written: %v", err)
	}
	if fi.Size() != 600 {
		t.Fatalf("seed file size %d", fi.Size())
	}
}

// TestBytesInvalidLevel ensures Bytes panics on an invalid level.
func TestBytesInvalidLevel(t *testing.T) {
	reset()
	defer func() {
		err, _ := recover().(error)
		if !errors.Is(err, ErrInvalidArgument) {
			t.Fatalf("unexpected panic value %v", err)
		}
	}()
	Bytes(8, Level(42))
}

// TestDaemonDelegation ensures a configured daemon serves the requests.
func TestDaemonDelegation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s")
	l, err := net.Listen("unix", path)
	if err != nil {
		t.Fatalf("unable to listen: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var stats daemon.ServerStats
	served := poolrng.New(poolrng.Config{QuickTest: true})
	go daemon.Serve(ctx, l, served, &stats)

	reset()
	if err := Configure(Config{DaemonSocket: path}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	buf := make([]byte, 300)
	if err := Fill(buf, Strong); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	CreateNonce(make([]byte, 8))
	if got := stats.Requests.Load(); got != 3 {
		t.Fatalf("daemon requests: got %d, want 3", got)
	}
	if got := stats.Bytes.Load(); got != 308 {
		t.Fatalf("daemon bytes: got %d, want 308", got)
	}
}

// nopGatherer never adds anything.
type nopGatherer struct{}

func (nopGatherer) Gather(entropy.AddFunc, entropy.Origin, int, entropy.Level) error {
	return nil
}

// TestUseLoggerScope ensures setting the package logger leaves the logger of
// the pool generator untouched.
func TestUseLoggerScope(t *testing.T) {
	var poolBuf, randBuf bytes.Buffer
	poolLog := slog.NewBackend(&poolBuf).Logger("POOL")
	poolLog.SetLevel(slog.LevelDebug)
	randLog := slog.NewBackend(&randBuf).Logger("RAND")
	randLog.SetLevel(slog.LevelDebug)
	t.Cleanup(func() {
		poolrng.UseLogger(slog.Disabled)
		UseLogger(slog.Disabled)
	})

	poolrng.UseLogger(poolLog)
	UseLogger(randLog)

	g := poolrng.New(poolrng.Config{Slow: nopGatherer{}, NoFastPoll: true})
	g.Initialize(true)

	if !strings.Contains(poolBuf.String(), "POOL: Entropy pool initialized") {
		t.Fatalf("pool logger not used, got %q", poolBuf.String())
	}
	if randBuf.Len() != 0 {
		t.Fatalf("pool generator logged through the package logger: %q",
			randBuf.String())
	}
}
