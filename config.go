// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2025 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/decred/dcrd/dcrutil/v4"
	"github.com/decred/rngcore/internal/version"
	"github.com/decred/rngcore/random"
	"github.com/decred/rngcore/sampleconfig"
	flags "github.com/jessevdk/go-flags"
)

const (
	defaultConfigFilename     = "rngd.conf"
	defaultDataDirname        = "data"
	defaultLogLevel           = "info"
	defaultLogDirname         = "logs"
	defaultLogFilename        = "rngd.log"
	defaultSocketFilename     = "rngd.sock"
	defaultSeedFilename       = "random_seed"
	defaultMode               = "pool"
	defaultSeedUpdateInterval = time.Hour
	defaultStatsInterval      = 10 * time.Minute

	// minSeedUpdateInterval bounds how often the seed file is rewritten.
	minSeedUpdateInterval = time.Minute
)

var (
	defaultAppDataDir = dcrutil.AppDataDir("rngd", false)
	defaultConfigFile = filepath.Join(defaultAppDataDir, defaultConfigFilename)
	defaultDataDir    = filepath.Join(defaultAppDataDir, defaultDataDirname)
	defaultLogDir     = filepath.Join(defaultAppDataDir, defaultLogDirname)
)

// config defines the configuration options for rngd.
//
// See loadConfig for details on the configuration load process.
type config struct {
	// General application behavior.
	AppDataDir  string `short:"A" long:"appdata" description:"Path to application home directory"`
	ConfigFile  string `short:"C" long:"configfile" description:"Path to configuration file"`
	DataDir     string `short:"b" long:"datadir" description:"Directory to store the seed file and socket"`
	ShowVersion bool   `short:"V" long:"version" description:"Display version information and exit"`

	// Generator settings.
	Mode       string `long:"mode" description:"Generator serving requests {pool, block}"`
	NoSeedFile bool   `long:"noseedfile" description:"Do not read or write a seed file (pool mode only)"`
	SeedFile   string `long:"seedfile" description:"Path to the seed file (default: random_seed in the data directory)"`

	// Serving settings.
	Socket             string        `long:"socket" description:"Path of the unix socket to serve requests on (default: rngd.sock in the data directory)"`
	SeedUpdateInterval time.Duration `long:"seedupdateinterval" description:"How often the seed file is refreshed while running (minimum 1m)"`
	StatsInterval      time.Duration `long:"statsinterval" description:"How often usage statistics are logged (0 to disable)"`

	// Debugging settings.
	Profile string `long:"profile" description:"Enable HTTP profiling on given [addr:]port -- NOTE: only loopback addresses with a port between 1024 and 65535 are permitted"`

	// Logging settings.
	LogDir        string `long:"logdir" description:"Directory to log output"`
	NoFileLogging bool   `long:"nofilelogging" description:"Disable file logging"`
	DebugLevel    string `short:"d" long:"debuglevel" description:"Logging level for all subsystems {trace, debug, info, warn, error, critical} -- You may also specify <subsystem>=<level>,<subsystem2>=<level>,... to set the log level for individual subsystems -- Use show to list available subsystems"`

	mode random.Mode
}

// errSuppressUsage signifies that an error that happened during the initial
// configuration phase should suppress the usage output since it was not caused
// by the user.
type errSuppressUsage string

// Error implements the error interface.
func (e errSuppressUsage) Error() string {
	return string(e)
}

// cleanAndExpandPath expands environment variables and leading ~ in the
// passed path, cleans the result, and returns it.
func cleanAndExpandPath(path string) string {
	// Nothing to do when no path is given.
	if path == "" {
		return path
	}

	// NOTE: The os.ExpandEnv doesn't work with Windows cmd.exe-style
	// %VARIABLE%, but the variables can still be expanded via POSIX-style
	// $VARIABLE.
	path = os.ExpandEnv(path)

	if !strings.HasPrefix(path, "~") {
		return filepath.Clean(path)
	}

	// Expand initial ~ to the current user's home directory, or ~otheruser to
	// otheruser's home directory.  On Windows, both forward and backward
	// slashes can be used.
	path = path[1:]

	var pathSeparators string
	if runtime.GOOS == "windows" {
		pathSeparators = string(os.PathSeparator) + "/"
	} else {
		pathSeparators = string(os.PathSeparator)
	}

	userName := ""
	if i := strings.IndexAny(path, pathSeparators); i != -1 {
		userName = path[:i]
		path = path[i:]
	}

	homeDir := ""
	var u *user.User
	var err error
	if userName == "" {
		u, err = user.Current()
	} else {
		u, err = user.Lookup(userName)
	}
	if err == nil {
		homeDir = u.HomeDir
	}
	// Fallback to CWD if user lookup fails or user has no home directory.
	if homeDir == "" {
		homeDir = "."
	}

	return filepath.Join(homeDir, path)
}

// createDefaultConfigFile creates the passed config file populated with the
// commented sample configuration.  The directory is created when needed.
func createDefaultConfigFile(destPath string) error {
	err := os.MkdirAll(filepath.Dir(destPath), 0700)
	if err != nil {
		return err
	}
	return os.WriteFile(destPath, []byte(sampleconfig.Rngd()), 0600)
}

// newConfigParser returns a new command line flags parser.
func newConfigParser(cfg *config, options flags.Options) *flags.Parser {
	return flags.NewParser(cfg, options)
}

// loadConfig initializes and parses the config using a config file and command
// line options.
//
// The configuration proceeds as follows:
//  1. Start with a default config with sane settings
//  2. Pre-parse the command line to check for an alternative config file
//  3. Load configuration file overwriting defaults with any specified options
//  4. Parse CLI options and overwrite/add any specified options
//
// The above results in rngd functioning properly without any config settings
// while still allowing the user to override settings with config files and
// command line options.  Command line options always take precedence.
func loadConfig(appName string, args []string) (*config, []string, error) {
	// Default config.
	cfg := config{
		AppDataDir:         defaultAppDataDir,
		ConfigFile:         defaultConfigFile,
		DataDir:            defaultDataDir,
		LogDir:             defaultLogDir,
		DebugLevel:         defaultLogLevel,
		Mode:               defaultMode,
		SeedUpdateInterval: defaultSeedUpdateInterval,
		StatsInterval:      defaultStatsInterval,
	}

	// Pre-parse the command line options to see if an alternative config
	// file or the version flag was specified.  Any errors aside from the
	// help message error can be ignored here since they will be caught by
	// the final parse below.
	preCfg := cfg
	preParser := newConfigParser(&preCfg, flags.HelpFlag)
	_, err := preParser.ParseArgs(args)
	if err != nil {
		var e *flags.Error
		if errors.As(err, &e) && e.Type == flags.ErrHelp {
			fmt.Fprintln(os.Stdout, err)
			return nil, nil, err
		}
	}

	// Show the version and exit if the version flag was specified.
	if preCfg.ShowVersion {
		fmt.Printf("%s version %s (Go version %s %s/%s)\n", appName,
			version.String(), runtime.Version(), runtime.GOOS,
			runtime.GOARCH)
		os.Exit(0)
	}

	// Update the application data directory when it was changed on the
	// command line and update the paths derived from it accordingly unless
	// they were also overridden.
	appDataDir := cleanAndExpandPath(preCfg.AppDataDir)
	configFileSet := preCfg.ConfigFile != defaultConfigFile
	if appDataDir != defaultAppDataDir {
		cfg.AppDataDir = appDataDir
		if !configFileSet {
			cfg.ConfigFile = filepath.Join(appDataDir, defaultConfigFilename)
		}
		cfg.DataDir = filepath.Join(appDataDir, defaultDataDirname)
		cfg.LogDir = filepath.Join(appDataDir, defaultLogDirname)
	}
	if configFileSet {
		cfg.ConfigFile = cleanAndExpandPath(preCfg.ConfigFile)
	}

	// Create a default config file when one does not exist and the user did
	// not specify an override.
	if !configFileSet {
		if _, err := os.Stat(cfg.ConfigFile); os.IsNotExist(err) {
			err := createDefaultConfigFile(cfg.ConfigFile)
			if err != nil {
				str := "%s: failed to create default config file: %v"
				err := errSuppressUsage(fmt.Sprintf(str, appName, err))
				return nil, nil, err
			}
		}
	}

	// Load additional config from file.
	var configFileError error
	parser := newConfigParser(&cfg, flags.Default)
	err = flags.NewIniParser(parser).ParseFile(cfg.ConfigFile)
	if err != nil {
		var e *os.PathError
		if !errors.As(err, &e) {
			err := fmt.Errorf("error parsing config file: %w", err)
			return nil, nil, err
		}
		configFileError = err
	}

	// Parse command line options again to ensure they take precedence.
	remainingArgs, err := parser.ParseArgs(args)
	if err != nil {
		return nil, nil, err
	}

	// Special show command to list supported subsystems and exit.
	if cfg.DebugLevel == "show" {
		fmt.Println("Supported subsystems", supportedSubsystems())
		os.Exit(0)
	}

	// Parse, validate, and set debug log level(s).
	if err := parseAndSetDebugLevels(cfg.DebugLevel); err != nil {
		return nil, nil, fmt.Errorf("%s: %w", appName, err)
	}

	cfg.mode, err = random.ParseMode(cfg.Mode)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", appName, err)
	}

	if cfg.SeedUpdateInterval < minSeedUpdateInterval {
		str := "%s: the seed update interval may not be less than %v -- " +
			"parsed [%v]"
		return nil, nil, fmt.Errorf(str, appName, minSeedUpdateInterval,
			cfg.SeedUpdateInterval)
	}
	if cfg.StatsInterval < 0 {
		str := "%s: the stats interval may not be negative -- parsed [%v]"
		return nil, nil, fmt.Errorf(str, appName, cfg.StatsInterval)
	}

	if cfg.Profile != "" {
		cfg.Profile = portToLocalHostAddr(cfg.Profile)
		if err := validateProfileAddr(cfg.Profile); err != nil {
			return nil, nil, fmt.Errorf("%s: profile: %w", appName, err)
		}
	}

	// The seed file belongs to the pool generator.
	if cfg.NoSeedFile && cfg.SeedFile != "" {
		str := "%s: the noseedfile and seedfile options may not be " +
			"specified together"
		return nil, nil, fmt.Errorf(str, appName)
	}

	cfg.DataDir = cleanAndExpandPath(cfg.DataDir)
	cfg.LogDir = cleanAndExpandPath(cfg.LogDir)
	switch {
	case cfg.NoSeedFile || cfg.mode != random.PoolMode:
		cfg.SeedFile = ""
	case cfg.SeedFile == "":
		cfg.SeedFile = filepath.Join(cfg.DataDir, defaultSeedFilename)
	default:
		cfg.SeedFile = cleanAndExpandPath(cfg.SeedFile)
	}
	if cfg.Socket == "" {
		cfg.Socket = filepath.Join(cfg.DataDir, defaultSocketFilename)
	} else {
		cfg.Socket = cleanAndExpandPath(cfg.Socket)
	}

	// Create the data directory which holds the seed file and the socket.
	if err := os.MkdirAll(cfg.DataDir, 0700); err != nil {
		str := "%s: failed to create data directory: %v"
		return nil, nil, errSuppressUsage(fmt.Sprintf(str, appName, err))
	}

	// Initialize log rotation.  After log rotation has been initialized, the
	// logger variables may be used.
	if !cfg.NoFileLogging {
		logFile := filepath.Join(cfg.LogDir, defaultLogFilename)
		if err := initLogRotator(logFile); err != nil {
			return nil, nil, errSuppressUsage(err.Error())
		}
	}

	// Warn about missing config file only after all other configuration is
	// done.  This prevents the warning on help messages and invalid
	// options.  Note this should go directly before the return.
	if configFileError != nil {
		rngdLog.Warnf("%v", configFileError)
	}

	return &cfg, remainingArgs, nil
}
