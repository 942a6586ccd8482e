// Copyright (c) 2021-2025 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.
//
//go:build unix || windows

package main

import (
	"syscall"
)

func init() {
	// SIGHUP is treated as a shutdown request so the seed file is written
	// when the controlling terminal goes away.
	interruptSignals = append(interruptSignals, syscall.SIGTERM, syscall.SIGHUP)
}
