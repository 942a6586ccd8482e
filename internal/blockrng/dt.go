// Copyright (c) 2025 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockrng

import (
	"encoding/binary"
	"os"
	"time"
)

// dtState produces date/time vectors that differ on every call, even when the
// clock does not advance between calls.
type dtState struct {
	initialized bool
	counter1    uint32
	counter2    uint32
	lastSec     uint32
	lastUsec    uint32
}

// next writes the next date/time vector to dt.  The layout is the seconds,
// the first counter, the microseconds and the second counter, each a big
// endian 32-bit value.
func (s *dtState) next(dt *[BlockSize]byte, now time.Time, pid int) {
	if !s.initialized {
		s.counter1 = uint32(pid)
		s.counter2 = uint32(os.Getppid())
		s.initialized = true
	}

	sec := uint32(now.Unix())
	usec := uint32(now.Nanosecond() / 1000)
	if sec == s.lastSec && usec == s.lastUsec {
		s.counter1++
	}
	s.lastSec, s.lastUsec = sec, usec

	binary.BigEndian.PutUint32(dt[0:4], sec)
	binary.BigEndian.PutUint32(dt[4:8], s.counter1)
	binary.BigEndian.PutUint32(dt[8:12], usec)
	binary.BigEndian.PutUint32(dt[12:16], s.counter2)
	s.counter2++
}
