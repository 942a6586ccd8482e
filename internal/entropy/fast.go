// Copyright (c) 2025 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package entropy

import (
	"math"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/decred/dcrd/crypto/blake256"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/load"
	"github.com/shirou/gopsutil/v4/mem"
)

// counterInterval is the minimum time between two samples of the host
// resource counters.  Timestamps are contributed on every poll.
const counterInterval = 100 * time.Millisecond

// FastPoller is a non-blocking gatherer that contributes timing information
// and host resource counters.  None of it is independently security critical;
// it only adds unpredictability on top of the slow gatherer.
//
// FastPoller is safe for concurrent access.
type FastPoller struct {
	mu          sync.Mutex
	start       time.Time
	polls       uint64
	lastCounter time.Time
}

// NewFastPoller returns a new fast poller.
func NewFastPoller() *FastPoller {
	return &FastPoller{start: time.Now()}
}

// Gather delivers a digest of the current timing and, at most once per
// counterInterval, resource counter state.  The requested length and level are
// ignored since the poller can not vouch for any amount of entropy.
func (p *FastPoller) Gather(add AddFunc, origin Origin, n int, level Level) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := time.Now()
	p.polls++

	h := blake256.NewHasher256()
	h.WriteUint64BE(uint64(now.UnixNano()))
	h.WriteUint64BE(uint64(now.Sub(p.start)))
	h.WriteUint64BE(p.polls)
	h.WriteUint32LE(uint32(os.Getpid()))
	h.WriteUint32LE(uint32(runtime.NumGoroutine()))

	if now.Sub(p.lastCounter) >= counterInterval {
		p.lastCounter = now
		writeCounters(h)
	}

	sum := h.Sum256()
	add(sum[:], origin)
	clear(sum[:])
	return nil
}

// writeCounters mixes host resource counters into h.  Counters that can not
// be read on this platform are skipped.
func writeCounters(h *blake256.Hasher256) {
	writeFloat := func(f float64) {
		h.WriteUint64BE(math.Float64bits(f))
	}

	if times, err := cpu.Times(false); err == nil {
		for _, t := range times {
			writeFloat(t.User)
			writeFloat(t.System)
			writeFloat(t.Idle)
			writeFloat(t.Iowait)
			writeFloat(t.Irq)
			writeFloat(t.Softirq)
		}
	} else {
		log.Tracef("cpu times unavailable: %v", err)
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		h.WriteUint64BE(vm.Available)
		h.WriteUint64BE(vm.Used)
		h.WriteUint64BE(vm.Free)
		h.WriteUint64BE(vm.Buffers)
		h.WriteUint64BE(vm.Cached)
	} else {
		log.Tracef("memory stats unavailable: %v", err)
	}

	if avg, err := load.Avg(); err == nil {
		writeFloat(avg.Load1)
		writeFloat(avg.Load5)
		writeFloat(avg.Load15)
	} else {
		log.Tracef("load averages unavailable: %v", err)
	}
}
