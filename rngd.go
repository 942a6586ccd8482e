// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2025 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/decred/rngcore/internal/daemon"
	"github.com/decred/rngcore/internal/uniform"
	"github.com/decred/rngcore/internal/version"
	"github.com/decred/rngcore/random"
)

var cfg *config

// randomHandler serves daemon requests from the process wide generator.
type randomHandler struct{}

func (randomHandler) Fill(buf []byte, level random.Level) error {
	return random.Fill(buf, level)
}

func (randomHandler) CreateNonce(buf []byte) {
	random.CreateNonce(buf)
}

// listenSocket listens on the unix socket at path.  A socket file left behind
// by a previous instance is removed first, while one that still accepts
// connections means another daemon is running.
func listenSocket(path string) (net.Listener, error) {
	fi, err := os.Lstat(path)
	switch {
	case errors.Is(err, os.ErrNotExist):

	case err != nil:
		return nil, err

	case fi.Mode()&os.ModeSocket == 0:
		return nil, fmt.Errorf("%s exists and is not a socket", path)

	default:
		conn, err := net.DialTimeout("unix", path, time.Second)
		if err == nil {
			conn.Close()
			return nil, fmt.Errorf("another instance is serving %s", path)
		}
		rngdLog.Debugf("Removing stale socket %s", path)
		if err := os.Remove(path); err != nil {
			return nil, err
		}
	}

	return net.Listen("unix", path)
}

// updateSeedFile writes a fresh seed file and logs failures.
func updateSeedFile() {
	if err := random.UpdateSeedFile(); err != nil {
		rngdLog.Errorf("Unable to update seed file: %v", err)
	}
}

// seedUpdater refreshes the seed file roughly every interval until the
// context is canceled.  The interval is jittered so several daemons sharing a
// host do not write in lockstep.
func seedUpdater(ctx context.Context, interval time.Duration) {
	for {
		wait := uniform.Jitter(random.Reader, interval, 10)
		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
			rngdLog.Debug("Refreshing seed file")
			updateSeedFile()
		}
	}
}

// statsLogger periodically logs the generator and server usage counters
// until the context is canceled.
func statsLogger(ctx context.Context, interval time.Duration, stats *daemon.ServerStats) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			logStats(stats)
		}
	}
}

func logStats(stats *daemon.ServerStats) {
	rngdLog.Info(random.DumpStats())
	rngdLog.Infof("served: conns=%d requests=%d bytes=%d rejected=%d",
		stats.Conns.Load(), stats.Requests.Load(), stats.Bytes.Load(),
		stats.Rejected.Load())
}

// rngdMain is the real main function for rngd.  It is necessary to work around
// the fact that deferred functions do not run when os.Exit() is called.
func rngdMain() error {
	// Load configuration and parse command line.  This function also
	// initializes logging and configures it accordingly.
	appName := filepath.Base(os.Args[0])
	appName = strings.TrimSuffix(appName, filepath.Ext(appName))
	tcfg, _, err := loadConfig(appName, os.Args[1:])
	if err != nil {
		usageMessage := fmt.Sprintf("Use %s -h to show usage", appName)
		fmt.Fprintln(os.Stderr, err)
		var e errSuppressUsage
		if !errors.As(err, &e) {
			fmt.Fprintln(os.Stderr, usageMessage)
		}
		return err
	}
	cfg = tcfg
	defer func() {
		if logRotator != nil {
			logRotator.Close()
		}
	}()

	// Get a context that will be canceled when a shutdown signal has been
	// triggered either from an OS signal such as SIGINT (Ctrl+C) or from
	// the request server failing.
	ctx := shutdownListener()
	defer rngdLog.Info("Shutdown complete")

	// Show version and home dir at startup.
	rngdLog.Infof("Version %s (Go version %s %s/%s)", version.String(),
		runtime.Version(), runtime.GOOS, runtime.GOARCH)
	rngdLog.Infof("Home dir: %s", cfg.AppDataDir)
	if cfg.NoFileLogging {
		rngdLog.Info("File logging disabled")
	}

	// Enable http profile server if requested.
	var profiler profileServer
	defer profiler.Stop()
	if cfg.Profile != "" {
		if err := profiler.Start(cfg.Profile); err != nil {
			rngdLog.Errorf("Unable to start profile server: %v", err)
			return err
		}
	}

	// Select and initialize the generator.  The daemon never delegates to
	// another daemon.
	err = random.Configure(random.Config{
		Mode:     cfg.mode,
		Eager:    true,
		SeedFile: cfg.SeedFile,
	})
	if err != nil {
		rngdLog.Errorf("Unable to configure generator: %v", err)
		return err
	}
	rngdLog.Infof("Generator mode: %v", random.ComplianceMode())
	if cfg.SeedFile != "" {
		rngdLog.Infof("Seed file: %s", cfg.SeedFile)
	}
	err = random.RunSelfTest(func(what, errtext string) {
		rngdLog.Criticalf("Self-test of %s failed: %s", what, errtext)
	})
	if err != nil {
		return err
	}

	// Return now if a shutdown signal was triggered.
	if shutdownRequested(ctx) {
		return nil
	}

	l, err := listenSocket(cfg.Socket)
	if err != nil {
		rngdLog.Errorf("Unable to listen on %s: %v", cfg.Socket, err)
		return err
	}

	var stats daemon.ServerStats
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := daemon.Serve(ctx, l, randomHandler{}, &stats); err != nil {
			rngdLog.Errorf("Request server failed: %v", err)
			requestShutdown()
		}
	}()
	if cfg.SeedFile != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			seedUpdater(ctx, cfg.SeedUpdateInterval)
		}()
	}
	if cfg.StatsInterval > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			statsLogger(ctx, cfg.StatsInterval, &stats)
		}()
	}

	// Block until shutdown is requested, then persist the pool state one last
	// time once nothing is being served anymore.
	<-ctx.Done()
	wg.Wait()
	os.Remove(cfg.Socket)
	if cfg.SeedFile != "" {
		rngdLog.Info("Writing seed file...")
		updateSeedFile()
	}
	logStats(&stats)
	return nil
}

func main() {
	// Work around defer not working after os.Exit()
	if err := rngdMain(); err != nil {
		os.Exit(1)
	}
}
