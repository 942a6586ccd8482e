// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2025 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
rngd is a randomness daemon that serves random bytes and nonces to local
processes over a unix socket.

The daemon runs either the entropy pool generator, which keeps a seed file
across restarts, or the block cipher based generator.  Programs using the
random package delegate to it by configuring the daemon socket.

The long form of all of the options (except -C) can be specified in a
configuration file that is automatically parsed when rngd starts up.  By
default, the configuration file is located at ~/.rngd/rngd.conf on POSIX-style
operating systems and %LOCALAPPDATA%\rngd\rngd.conf on Windows.  The -C
(--configfile) flag, as shown below, can be used to override this location.

Usage:

	rngd [OPTIONS]

Application Options:

	-A, --appdata=             Path to application home directory
	-C, --configfile=          Path to configuration file
	-b, --datadir=             Directory to store the seed file and socket
	-V, --version              Display version information and exit
	    --mode=                Generator serving requests {pool, block}
	    --noseedfile           Do not read or write a seed file (pool mode
	                           only)
	    --seedfile=            Path to the seed file (default: random_seed in
	                           the data directory)
	    --socket=              Path of the unix socket to serve requests on
	                           (default: rngd.sock in the data directory)
	    --seedupdateinterval=  How often the seed file is refreshed while
	                           running (minimum 1m)
	    --statsinterval=       How often usage statistics are logged (0 to
	                           disable)
	    --logdir=              Directory to log output
	    --nofilelogging        Disable file logging
	-d, --debuglevel=          Logging level for all subsystems {trace, debug,
	                           info, warn, error, critical} -- You may also
	                           specify <subsystem>=<level>,<subsystem2>=<level>,...
	                           to set the log level for individual subsystems --
	                           Use show to list available subsystems

Help Options:

	-h, --help                 Show this help message

The request protocol is documented in internal/daemon.  The rngctl utility in
cmd/rngctl talks to a running daemon and exercises the generators directly.
*/
package main
