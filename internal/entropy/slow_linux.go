// Copyright (c) 2025 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

//go:build linux

package entropy

import (
	cryptorand "crypto/rand"
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

// getrandomGatherer reads the kernel CSPRNG through getrandom(2), which blocks
// until the kernel pool has been initialized.
type getrandomGatherer struct{}

// Gather delivers n bytes from getrandom(2).
func (getrandomGatherer) Gather(add AddFunc, origin Origin, n int, level Level) error {
	var buf [maxChunk]byte
	defer clear(buf[:])
	for n > 0 {
		chunk := buf[:min(n, len(buf))]
		got, err := unix.Getrandom(chunk, 0)
		if err != nil {
			if errors.Is(err, unix.EINTR) {
				continue
			}
			return fmt.Errorf("getrandom: %w", err)
		}
		add(chunk[:got], origin)
		n -= got
	}
	return nil
}

// NewSlowGatherer returns the platform slow gatherer.  Kernels without
// getrandom(2) fall back to the device files read by crypto/rand.
func NewSlowGatherer() (Gatherer, error) {
	var probe [1]byte
	_, err := unix.Getrandom(probe[:], unix.GRND_NONBLOCK)
	switch {
	case err == nil, errors.Is(err, unix.EAGAIN), errors.Is(err, unix.EINTR):
		return getrandomGatherer{}, nil
	case errors.Is(err, unix.ENOSYS):
		log.Debugf("getrandom(2) is unavailable, reading device files")
		if _, err := cryptorand.Read(probe[:]); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrNoSource, err)
		}
		return readerGatherer{r: cryptorand.Reader}, nil
	}
	return nil, fmt.Errorf("%w: %v", ErrNoSource, err)
}
