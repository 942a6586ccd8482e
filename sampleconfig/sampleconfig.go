// Copyright (c) 2017-2025 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package sampleconfig provides the commented example configuration files
// written by rngd and rngctl when no configuration exists.
package sampleconfig

import (
	_ "embed"
)

// sampleRngdConf is a string containing the commented example config for rngd.
//
//go:embed sample-rngd.conf
var sampleRngdConf string

// sampleRngctlConf is a string containing the commented example config for
// rngctl.
//
//go:embed sample-rngctl.conf
var sampleRngctlConf string

// Rngd returns a string containing the commented example config for rngd.
func Rngd() string {
	return sampleRngdConf
}

// Rngctl returns a string containing the commented example config for rngctl.
func Rngctl() string {
	return sampleRngctlConf
}
