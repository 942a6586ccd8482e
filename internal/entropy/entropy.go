// Copyright (c) 2025 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package entropy

import (
	"errors"
	"fmt"
	"io"
)

// Origin identifies where bytes added to a pool came from.
type Origin int

const (
	// OriginInit marks bytes added while initializing, such as the seed
	// file contents or the process id.
	OriginInit Origin = iota

	// OriginExternal marks bytes supplied by a caller.
	OriginExternal

	// OriginFastPoll marks bytes from the non-blocking fast poller.
	OriginFastPoll

	// OriginSlowPoll marks bytes from a regular slow gatherer poll.
	OriginSlowPoll

	// OriginExtraPoll marks bytes from an additional slow gatherer poll
	// requested for very strong output.
	OriginExtraPoll
)

// String returns the origin as a human-readable name.
func (o Origin) String() string {
	switch o {
	case OriginInit:
		return "init"
	case OriginExternal:
		return "external"
	case OriginFastPoll:
		return "fastpoll"
	case OriginSlowPoll:
		return "slowpoll"
	case OriginExtraPoll:
		return "extrapoll"
	}
	return fmt.Sprintf("Origin(%d)", int(o))
}

// Level is the quality level of a request.
type Level int

const (
	// Weak is the default level, suitable for nonces and session keys.
	Weak Level = iota

	// Strong is suitable for long lived keys.
	Strong

	// VeryStrong requests additional fresh entropy for each request.
	VeryStrong
)

// String returns the level as a human-readable name.
func (l Level) String() string {
	switch l {
	case Weak:
		return "weak"
	case Strong:
		return "strong"
	case VeryStrong:
		return "very-strong"
	}
	return fmt.Sprintf("Level(%d)", int(l))
}

// AddFunc receives gathered bytes.  It may be invoked several times per
// gather call, each time with a partial amount.  The buffer is only valid for
// the duration of the call.
type AddFunc func(buf []byte, origin Origin)

// Gatherer delivers n bytes of entropy of the given level to add, tagging them
// with origin.  Implementations may block.
type Gatherer interface {
	Gather(add AddFunc, origin Origin, n int, level Level) error
}

// ErrNoSource is returned by NewSlowGatherer when the platform offers no
// entropy mechanism at all.
var ErrNoSource = errors.New("no entropy source available")

// maxChunk bounds the size of a single delivery to the callback.
const maxChunk = 256

// readerGatherer adapts an io.Reader backed by the operating system.
type readerGatherer struct {
	r io.Reader
}

// Gather reads n bytes from the underlying reader and delivers them in chunks.
func (g readerGatherer) Gather(add AddFunc, origin Origin, n int, level Level) error {
	var buf [maxChunk]byte
	defer clear(buf[:])
	for n > 0 {
		chunk := buf[:min(n, len(buf))]
		if _, err := io.ReadFull(g.r, chunk); err != nil {
			return fmt.Errorf("read entropy: %w", err)
		}
		add(chunk, origin)
		n -= len(chunk)
	}
	return nil
}
