// Copyright (c) 2025 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/decred/rngcore/internal/version"
	"github.com/decred/rngcore/random"
	flags "github.com/jessevdk/go-flags"
)

// app ties the parsed options to the output of the commands.
type app struct {
	opts options
	out  io.Writer
}

// newParser returns a parser for the global options with every command
// registered.
func newParser(a *app) *flags.Parser {
	parser := flags.NewParser(&a.opts, flags.Default)
	parser.Usage = "[OPTIONS] <command>"

	type command struct {
		name, short, long string
		data              flags.Commander
	}
	commands := []command{
		{"fill", "Generate random bytes",
			"Generate count random bytes of the requested level.",
			&fillCommand{app: a}},
		{"nonce", "Generate a nonce",
			"Generate count unpredictable bytes from the nonce generator.",
			&nonceCommand{app: a}},
		{"int", "Generate a uniform integer",
			"Print a random integer in [0,n) without modulo bias.",
			&intCommand{app: a}},
		{"addentropy", "Mix caller entropy into the pool",
			"Mix the hex encoded bytes into the pool generator with the " +
				"given quality.",
			&addEntropyCommand{app: a}},
		{"stats", "Show usage statistics",
			"Print the usage counters of the generator.",
			&statsCommand{app: a}},
		{"selftest", "Run the generator self-test",
			"Run the self-test of the generator and report failures.",
			&selfTestCommand{app: a}},
		{"updateseed", "Rewrite the seed file",
			"Fill the pool and write a fresh seed file.",
			&updateSeedCommand{app: a}},
		{"genkey", "Generate a secp256k1 key pair",
			"Generate a secp256k1 private key from very strong random " +
				"bytes and print it with its compressed public key.",
			&genKeyCommand{app: a}},
		{"kat", "Pull bytes from a conformance test context",
			"Generate count bytes from a block generator test context " +
				"built from the hex encoded key, seed and date/time " +
				"vector.",
			&katCommand{app: a}},
	}
	for _, c := range commands {
		_, err := parser.AddCommand(c.name, c.short, c.long, c.data)
		if err != nil {
			panic(err)
		}
	}

	parser.CommandHandler = func(cmd flags.Commander, args []string) error {
		if cmd == nil {
			return errors.New("no command specified")
		}
		mode, err := random.ParseMode(a.opts.Mode)
		if err != nil {
			return err
		}
		if _, ok := cmd.(*katCommand); ok {
			mode = random.BlockMode
		}
		useLoggers(a.opts.DebugLevel)
		err = random.Configure(random.Config{
			Mode:         mode,
			SeedFile:     cleanAndExpandPath(a.opts.SeedFile),
			DaemonSocket: cleanAndExpandPath(a.opts.Daemon),
		})
		if err != nil {
			return err
		}
		return cmd.Execute(args)
	}
	return parser
}

// run parses args and executes the selected command.
func run(out io.Writer, args []string) error {
	a := &app{opts: defaultOptions(), out: out}
	parser := newParser(a)
	if err := loadConfigFile(parser, &a.opts, args); err != nil {
		return err
	}
	_, err := parser.ParseArgs(args)
	return err
}

func main() {
	a := &app{opts: defaultOptions(), out: os.Stdout}
	parser := newParser(a)

	// The version flag is honored without a command.
	preParser := flags.NewParser(&a.opts, flags.HelpFlag|flags.IgnoreUnknown)
	preParser.ParseArgs(os.Args[1:])
	if a.opts.ShowVersion {
		fmt.Printf("rngctl version %s (Go version %s %s/%s)\n",
			version.String(), runtime.Version(), runtime.GOOS,
			runtime.GOARCH)
		os.Exit(0)
	}
	a.opts = defaultOptions()

	if err := loadConfigFile(parser, &a.opts, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	// Errors, including those returned by commands, are printed by the
	// parser.
	_, err := parser.ParseArgs(os.Args[1:])
	if err != nil {
		var e *flags.Error
		if errors.As(err, &e) && e.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}
}
