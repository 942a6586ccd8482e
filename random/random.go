// Copyright (c) 2025 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package random

import (
	"fmt"
	"io"
	"sync"

	"github.com/decred/rngcore/internal/blockrng"
	"github.com/decred/rngcore/internal/daemon"
	"github.com/decred/rngcore/internal/entropy"
	"github.com/decred/rngcore/internal/poolrng"
	"github.com/decred/rngcore/internal/rngerr"
)

// Level is the quality level of requested random bytes.
type Level = entropy.Level

// These constants define the quality levels.
const (
	// Weak is suitable for session keys and nonces.
	Weak = entropy.Weak

	// Strong is suitable for most long term keys.
	Strong = entropy.Strong

	// VeryStrong is for long term keys that must resist an attacker who
	// learns the generator output of a related request.
	VeryStrong = entropy.VeryStrong
)

// Mode selects the generator serving the process.
type Mode int

// These constants define the generator modes.
const (
	// PoolMode selects the entropy pool generator.
	PoolMode Mode = iota

	// BlockMode selects the block cipher based generator.
	BlockMode
)

// String returns the name of the mode.
func (m Mode) String() string {
	switch m {
	case PoolMode:
		return "pool"
	case BlockMode:
		return "block"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode returns the mode with the given name.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "pool":
		return PoolMode, nil
	case "block":
		return BlockMode, nil
	}
	str := fmt.Sprintf("unknown generator mode %q", s)
	return 0, rngerr.New(ErrInvalidArgument, str)
}

// TestFlags modify the behavior of a test context.
type TestFlags = blockrng.TestFlags

// TestNoDupCheck makes a test context return its very first block.
const TestNoDupCheck = blockrng.TestNoDupCheck

// Config holds the process wide settings.  The zero value selects the pool
// generator without seed file or daemon.
type Config struct {
	// Mode selects the generator.
	Mode Mode

	// Eager initializes the generator as part of Configure instead of on
	// first use.
	Eager bool

	// SeedFile is the path of the pool generator seed file.
	SeedFile string

	// DaemonSocket is the unix socket of a randomness daemon the pool
	// generator delegates to.  Empty disables delegation.
	DaemonSocket string

	// QuickTest downgrades very strong requests to strong.  It must only be
	// used by test suites.
	QuickTest bool
}

// generator is implemented by both generators.
type generator interface {
	Initialize(eager bool)
	Fill(buf []byte, level entropy.Level) error
	CreateNonce(buf []byte)
	AddEntropy(buf []byte, quality int) error
	SelfTest() error
	IsFaked() bool
}

// state is the process wide generator selection.
type state struct {
	mu  sync.Mutex
	cfg Config

	// gen is nil until first use.  Exactly one of pool and block is set
	// along with it.
	gen   generator
	pool  *poolrng.Generator
	block *blockrng.Generator

	configured bool
}

var global state

// Configure applies cfg.  It must be called at most once and before any
// other function of this package is used.
func Configure(cfg Config) error {
	global.mu.Lock()
	if global.configured || global.gen != nil {
		global.mu.Unlock()
		return rngerr.New(ErrNotSupported, "random generator is already "+
			"configured")
	}
	if cfg.Mode != PoolMode && cfg.Mode != BlockMode {
		global.mu.Unlock()
		str := fmt.Sprintf("invalid generator mode %d", cfg.Mode)
		return rngerr.New(ErrInvalidArgument, str)
	}
	global.cfg = cfg
	global.configured = true
	global.mu.Unlock()

	log.Debugf("Random generator configured (mode %v)", cfg.Mode)
	if cfg.Eager {
		Initialize(true)
	}
	return nil
}

// active returns the selected generator, creating it on first use.
func active() generator {
	global.mu.Lock()
	defer global.mu.Unlock()
	if global.gen != nil {
		return global.gen
	}

	cfg := global.cfg
	global.configured = true
	switch cfg.Mode {
	case BlockMode:
		global.block = blockrng.New(blockrng.Config{})
		global.gen = global.block

	default:
		pcfg := poolrng.Config{
			SeedFile:  cfg.SeedFile,
			QuickTest: cfg.QuickTest,
		}
		if cfg.DaemonSocket != "" {
			pcfg.Daemon = &daemon.Client{Socket: cfg.DaemonSocket}
		}
		global.pool = poolrng.New(pcfg)
		global.gen = global.pool
	}
	log.Debugf("Using the %v generator", cfg.Mode)
	return global.gen
}

// Initialize initializes the generator.  Allocation and binding of entropy
// sources is deferred until first use unless eager is set.
func Initialize(eager bool) {
	active().Initialize(eager)
}

// Fill fills buf with random bytes of the given level.  It blocks until
// enough entropy is available.
func Fill(buf []byte, level Level) error {
	return active().Fill(buf, level)
}

// Bytes returns n random bytes of the given level.  It panics when level is
// invalid.
func Bytes(n int, level Level) []byte {
	buf := make([]byte, n)
	if err := Fill(buf, level); err != nil {
		panic(err)
	}
	return buf
}

// CreateNonce fills buf with unpredictable bytes for use as nonces.
func CreateNonce(buf []byte) {
	active().CreateNonce(buf)
}

// AddEntropy adds caller supplied entropy of the given quality, 0 to 100 or
// -1 for a default, to the generator.  The block generator ignores it.
func AddEntropy(buf []byte, quality int) error {
	return active().AddEntropy(buf, quality)
}

// UpdateSeedFile writes a fresh seed file.  It does nothing unless the pool
// generator is used with a seed file and has been filled.
func UpdateSeedFile() error {
	active()
	if global.pool == nil {
		return nil
	}
	return global.pool.UpdateSeedFile()
}

// DumpStats returns the usage counters of the generator as a single line.
func DumpStats() string {
	active()
	if global.pool != nil {
		return global.pool.DumpStats().String()
	}
	return global.block.DumpStats().String()
}

// RunSelfTest runs the self-test of the generator.  Failures are passed to
// report, when not nil, before being returned.
func RunSelfTest(report func(what, errtext string)) error {
	err := active().SelfTest()
	if err != nil && report != nil {
		report("random", err.Error())
	}
	return err
}

// IsFaked reports whether the generator runs in quick test mode.
func IsFaked() bool {
	return active().IsFaked()
}

// ComplianceMode returns the selected generator mode.
func ComplianceMode() Mode {
	global.mu.Lock()
	defer global.mu.Unlock()
	return global.cfg.Mode
}

// TestContext is a block generator context with fixed key, seed and
// date/time vector.
type TestContext struct {
	tc *blockrng.TestContext
}

// blockGenerator returns the block generator or an error in pool mode.
func blockGenerator() (*blockrng.Generator, error) {
	active()
	if global.block == nil {
		return nil, rngerr.New(ErrNotSupported, "test contexts require "+
			"the block generator")
	}
	return global.block, nil
}

// OpenTestContext returns a conformance test context using the 16-byte key,
// seed and date/time vector.  It is only supported in BlockMode.
func OpenTestContext(key, seed, dt []byte, flags TestFlags) (*TestContext, error) {
	g, err := blockGenerator()
	if err != nil {
		return nil, err
	}
	tc, err := g.OpenTestContext(key, seed, dt, flags)
	if err != nil {
		return nil, err
	}
	return &TestContext{tc: tc}, nil
}

// RunTest fills buf from the test context.
func RunTest(tc *TestContext, buf []byte) error {
	g, err := blockGenerator()
	if err != nil {
		return err
	}
	if tc == nil {
		return rngerr.New(ErrInvalidArgument, "invalid test context")
	}
	return g.RunTest(tc.tc, buf)
}

// CloseTestContext releases the test context.
func CloseTestContext(tc *TestContext) error {
	g, err := blockGenerator()
	if err != nil {
		return err
	}
	if tc == nil {
		return rngerr.New(ErrInvalidArgument, "invalid test context")
	}
	return g.CloseTestContext(tc.tc)
}

// Reader is a shared instance of a reader of strong random bytes.
var Reader io.Reader = reader{}

type reader struct{}

// Read fills b with strong random bytes.  It never fails.
func (reader) Read(b []byte) (int, error) {
	if err := Fill(b, Strong); err != nil {
		return 0, err
	}
	return len(b), nil
}
