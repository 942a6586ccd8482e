// Copyright (c) 2025 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

//go:build !linux

package entropy

import (
	cryptorand "crypto/rand"
	"fmt"
)

// NewSlowGatherer returns the platform slow gatherer, which reads the
// operating system source behind crypto/rand.
func NewSlowGatherer() (Gatherer, error) {
	var probe [1]byte
	if _, err := cryptorand.Read(probe[:]); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoSource, err)
	}
	return readerGatherer{r: cryptorand.Reader}, nil
}
