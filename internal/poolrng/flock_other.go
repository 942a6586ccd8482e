// Copyright (c) 2025 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

//go:build !unix

package poolrng

import "os"

// lockFile is a no-op on platforms without advisory file locks.
func lockFile(f *os.File, write bool) error {
	return nil
}
