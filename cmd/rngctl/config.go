// Copyright (c) 2013-2015 The btcsuite developers
// Copyright (c) 2015-2025 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/decred/dcrd/dcrutil/v4"
	"github.com/decred/rngcore/internal/blockrng"
	"github.com/decred/rngcore/internal/daemon"
	"github.com/decred/rngcore/internal/entropy"
	"github.com/decred/rngcore/internal/poolrng"
	"github.com/decred/rngcore/random"
	"github.com/decred/rngcore/sampleconfig"
	"github.com/decred/slog"
	flags "github.com/jessevdk/go-flags"
)

const defaultConfigFilename = "rngctl.conf"

var (
	rngdHomeDir       = dcrutil.AppDataDir("rngd", false)
	defaultConfigFile = filepath.Join(rngdHomeDir, defaultConfigFilename)
)

// options holds the settings shared by every command.
type options struct {
	ConfigFile  string `short:"C" long:"configfile" description:"Path to configuration file"`
	ShowVersion bool   `short:"V" long:"version" description:"Display version information and exit"`
	Mode        string `long:"mode" description:"Generator used when no daemon serves the request" choice:"pool" choice:"block"`
	SeedFile    string `long:"seedfile" description:"Seed file of the pool generator"`
	Daemon      string `long:"daemon" description:"Unix socket of a running rngd to delegate requests to"`
	Encoding    string `short:"e" long:"encoding" description:"Encoding of generated bytes" choice:"hex" choice:"base58" choice:"raw"`
	DebugLevel  string `short:"d" long:"debuglevel" description:"Logging level {trace, debug, info, warn, error, critical}"`
}

func defaultOptions() options {
	return options{
		ConfigFile: defaultConfigFile,
		Mode:       "pool",
		Encoding:   "hex",
		DebugLevel: "warn",
	}
}

// cleanAndExpandPath expands environment variables and a leading ~ in the
// passed path and cleans the result.
func cleanAndExpandPath(path string) string {
	if path == "" {
		return path
	}
	path = os.ExpandEnv(path)
	if strings.HasPrefix(path, "~") {
		homeDir := filepath.Dir(rngdHomeDir)
		path = strings.Replace(path, "~", homeDir, 1)
	}
	return filepath.Clean(path)
}

// loadConfigFile applies the config file named on the command line, or the
// default one, to opts.  The default config file is created from the sample
// when it does not exist.  A missing config file is not an error.
func loadConfigFile(parser *flags.Parser, opts *options, args []string) error {
	preOpts := defaultOptions()
	preParser := flags.NewParser(&preOpts, flags.HelpFlag|flags.IgnoreUnknown)
	preParser.ParseArgs(args)

	configFile := cleanAndExpandPath(preOpts.ConfigFile)
	if preOpts.ConfigFile == defaultConfigFile {
		if _, err := os.Stat(configFile); os.IsNotExist(err) {
			err := os.MkdirAll(filepath.Dir(configFile), 0700)
			if err == nil {
				err = os.WriteFile(configFile,
					[]byte(sampleconfig.Rngctl()), 0600)
			}
			if err != nil {
				fmt.Fprintf(os.Stderr, "Unable to create default "+
					"config file: %v\n", err)
			}
		}
	}

	err := flags.NewIniParser(parser).ParseFile(configFile)
	if err != nil {
		var e *os.PathError
		if !errors.As(err, &e) {
			return fmt.Errorf("error parsing config file: %w", err)
		}
	}
	return nil
}

// backendLog writes library log messages to standard error so they never mix
// with generated output.
var backendLog = slog.NewBackend(os.Stderr)

// useLoggers hands a logger at the given level to the random package and
// every generator it drives.  Invalid levels default to info.
func useLoggers(level string) {
	lvl, _ := slog.LevelFromString(level)
	logger := func(subsystem string) slog.Logger {
		l := backendLog.Logger(subsystem)
		l.SetLevel(lvl)
		return l
	}
	random.UseLogger(logger("RAND"))
	poolrng.UseLogger(logger("POOL"))
	blockrng.UseLogger(logger("BRNG"))
	entropy.UseLogger(logger("ENTR"))
	daemon.UseLogger(logger("DMON"))
}
