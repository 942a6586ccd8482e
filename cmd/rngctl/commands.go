// Copyright (c) 2025 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/decred/base58"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/rngcore/internal/uniform"
	"github.com/decred/rngcore/random"
	"golang.org/x/term"
)

// maxCount bounds the number of bytes a single command generates.
const maxCount = 1 << 20

var errTerminal = errors.New("refusing to write raw bytes to a terminal")

// writeOutput writes buf to w in the given encoding.  Text encodings are
// terminated by a newline.
func writeOutput(w io.Writer, buf []byte, encoding string) error {
	var s string
	switch encoding {
	case "hex":
		s = hex.EncodeToString(buf)
	case "base58":
		s = base58.Encode(buf)
	case "raw":
		if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
			return errTerminal
		}
		_, err := w.Write(buf)
		return err
	default:
		return fmt.Errorf("unknown encoding %q", encoding)
	}
	_, err := fmt.Fprintln(w, s)
	return err
}

// parseLevel returns the quality level with the given name.
func parseLevel(s string) (random.Level, error) {
	for _, level := range []random.Level{random.Weak, random.Strong,
		random.VeryStrong} {

		if level.String() == s {
			return level, nil
		}
	}
	return 0, fmt.Errorf("unknown level %q", s)
}

func checkCount(n int) error {
	if n < 0 || n > maxCount {
		return fmt.Errorf("count %d out of range [0,%d]", n, maxCount)
	}
	return nil
}

type fillCommand struct {
	app *app

	Level string `short:"l" long:"level" description:"Quality level" choice:"weak" choice:"strong" choice:"very-strong" default:"strong"`
	Args  struct {
		Count int `positional-arg-name:"count"`
	} `positional-args:"yes" required:"yes"`
}

func (c *fillCommand) Execute(_ []string) error {
	if err := checkCount(c.Args.Count); err != nil {
		return err
	}
	level, err := parseLevel(c.Level)
	if err != nil {
		return err
	}
	buf := make([]byte, c.Args.Count)
	defer clear(buf)
	if err := random.Fill(buf, level); err != nil {
		return err
	}
	return writeOutput(c.app.out, buf, c.app.opts.Encoding)
}

type nonceCommand struct {
	app *app

	Args struct {
		Count int `positional-arg-name:"count"`
	} `positional-args:"yes" required:"yes"`
}

func (c *nonceCommand) Execute(_ []string) error {
	if err := checkCount(c.Args.Count); err != nil {
		return err
	}
	buf := make([]byte, c.Args.Count)
	random.CreateNonce(buf)
	return writeOutput(c.app.out, buf, c.app.opts.Encoding)
}

type intCommand struct {
	app *app

	Args struct {
		N uint64 `positional-arg-name:"n"`
	} `positional-args:"yes" required:"yes"`
}

func (c *intCommand) Execute(_ []string) error {
	if c.Args.N == 0 {
		return errors.New("n must be positive")
	}
	v := uniform.Uint64n(random.Reader, c.Args.N)
	_, err := fmt.Fprintln(c.app.out, strconv.FormatUint(v, 10))
	return err
}

type addEntropyCommand struct {
	app *app

	Quality int `short:"q" long:"quality" description:"Estimated quality 0-100, -1 for the default" default:"-1"`
	Args    struct {
		Hex string `positional-arg-name:"hexbytes"`
	} `positional-args:"yes" required:"yes"`
}

func (c *addEntropyCommand) Execute(_ []string) error {
	buf, err := hex.DecodeString(c.Args.Hex)
	if err != nil {
		return fmt.Errorf("invalid entropy: %w", err)
	}
	return random.AddEntropy(buf, c.Quality)
}

type statsCommand struct {
	app *app
}

func (c *statsCommand) Execute(_ []string) error {
	_, err := fmt.Fprintln(c.app.out, random.DumpStats())
	return err
}

type selfTestCommand struct {
	app *app
}

func (c *selfTestCommand) Execute(_ []string) error {
	err := random.RunSelfTest(func(what, errtext string) {
		fmt.Fprintf(os.Stderr, "%s: %s\n", what, errtext)
	})
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(c.app.out, "self-test of the %v generator passed\n",
		random.ComplianceMode())
	return err
}

type updateSeedCommand struct {
	app *app
}

func (c *updateSeedCommand) Execute(_ []string) error {
	if c.app.opts.SeedFile == "" {
		return errors.New("no seed file specified")
	}
	if random.ComplianceMode() != random.PoolMode {
		return errors.New("seed files require the pool generator")
	}

	// The seed file is only written once the pool has been filled.
	var buf [16]byte
	if err := random.Fill(buf[:], random.Strong); err != nil {
		return err
	}
	clear(buf[:])
	return random.UpdateSeedFile()
}

// levelReader reads random bytes of a fixed level.
type levelReader random.Level

func (l levelReader) Read(b []byte) (int, error) {
	if err := random.Fill(b, random.Level(l)); err != nil {
		return 0, err
	}
	return len(b), nil
}

// newPrivateKey returns a secp256k1 private key read from r.  Candidates that
// are zero or not below the group order are discarded rather than reduced so
// every valid key is equally likely.
func newPrivateKey(r io.Reader) (*secp256k1.PrivateKey, error) {
	var b [32]byte
	defer clear(b[:])
	for {
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return nil, err
		}
		var s secp256k1.ModNScalar
		overflow := s.SetByteSlice(b[:])
		if overflow || s.IsZero() {
			continue
		}
		return secp256k1.NewPrivateKey(&s), nil
	}
}

type genKeyCommand struct {
	app *app
}

func (c *genKeyCommand) Execute(_ []string) error {
	priv, err := newPrivateKey(levelReader(random.VeryStrong))
	if err != nil {
		return err
	}
	defer priv.Zero()
	privBytes := priv.Serialize()
	defer clear(privBytes)

	w := c.app.out
	fmt.Fprint(w, "private key: ")
	if err := writeOutput(w, privBytes, c.app.opts.Encoding); err != nil {
		return err
	}
	fmt.Fprint(w, "public key: ")
	return writeOutput(w, priv.PubKey().SerializeCompressed(),
		c.app.opts.Encoding)
}

type katCommand struct {
	app *app

	Key        string `short:"k" long:"key" description:"Hex encoded 16-byte key" required:"yes"`
	Seed       string `short:"s" long:"seed" description:"Hex encoded 16-byte seed" required:"yes"`
	DT         string `long:"dt" description:"Hex encoded 16-byte date/time vector" required:"yes"`
	NoDupCheck bool   `long:"nodupcheck" description:"Return the first block instead of priming the duplicate check with it"`
	Args       struct {
		Count int `positional-arg-name:"count"`
	} `positional-args:"yes" required:"yes"`
}

func (c *katCommand) Execute(_ []string) error {
	if err := checkCount(c.Args.Count); err != nil {
		return err
	}
	var vals [3][]byte
	for i, s := range []string{c.Key, c.Seed, c.DT} {
		b, err := hex.DecodeString(s)
		if err != nil {
			return fmt.Errorf("invalid hex %q: %w", s, err)
		}
		vals[i] = b
	}
	var flags random.TestFlags
	if c.NoDupCheck {
		flags |= random.TestNoDupCheck
	}

	tc, err := random.OpenTestContext(vals[0], vals[1], vals[2], flags)
	if err != nil {
		return err
	}
	defer random.CloseTestContext(tc)

	buf := make([]byte, c.Args.Count)
	if err := random.RunTest(tc, buf); err != nil {
		return err
	}
	return writeOutput(c.app.out, buf, c.app.opts.Encoding)
}
