// Copyright (c) 2025 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package poolrng

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/decred/rngcore/internal/entropy"
	"github.com/decred/rngcore/internal/rngerr"
)

// seedFileWeakBytes is the amount of weak entropy mixed in after the seed
// file content so that two processes starting from the same file diverge.
const seedFileWeakBytes = 16

// SetSeedFile sets the path of the seed file.  It must be called before the
// first extraction and may only be called once.
func (g *Generator) SetSeedFile(path string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.seedFile != "" {
		return rngerr.New(rngerr.ErrNotSupported, "seed file already set")
	}
	g.seedFile = path
	return nil
}

// readSeedFile adds the content of the seed file to the pool.  It returns
// true when the file was used, which counts as the first fill of the pool.
// A missing or empty file only permits later updates.
//
// This function MUST be called with the pool lock held.
func (g *Generator) readSeedFile() bool {
	g.assertLocked("readSeedFile")
	if g.seedFile == "" {
		return false
	}

	f, err := os.Open(g.seedFile)
	if errors.Is(err, fs.ErrNotExist) {
		g.allowSeedUpdate = true
		return false
	}
	if err != nil {
		log.Infof("Can't open seed file %q: %v", g.seedFile, err)
		return false
	}
	defer f.Close()

	if err := lockFile(f, false); err != nil {
		log.Infof("Can't lock seed file %q: %v", g.seedFile, err)
		return false
	}

	fi, err := f.Stat()
	if err != nil {
		log.Infof("Can't stat seed file %q: %v", g.seedFile, err)
		return false
	}
	if !fi.Mode().IsRegular() {
		log.Infof("Seed file %q is not a regular file - not used",
			g.seedFile)
		return false
	}
	if fi.Size() == 0 {
		g.allowSeedUpdate = true
		return false
	}
	if fi.Size() != PoolSize {
		log.Warnf("Seed file %q has invalid size %d - not used",
			g.seedFile, fi.Size())
		return false
	}

	buf := make([]byte, PoolSize)
	defer clear(buf)
	if _, err := io.ReadFull(f, buf); err != nil {
		log.Infof("Can't read seed file %q: %v", g.seedFile, err)
		return false
	}

	g.addRandomness(buf, entropy.OriginInit)

	// The same seed file may be used by several processes, so make sure
	// each of them ends up with a different pool.
	var extra [12]byte
	binary.LittleEndian.PutUint32(extra[0:4], uint32(g.getpid()))
	binary.LittleEndian.PutUint64(extra[4:12],
		uint64(time.Now().UnixNano()))
	g.addRandomness(extra[:], entropy.OriginInit)
	g.gather(entropy.OriginInit, seedFileWeakBytes, entropy.Weak)

	g.allowSeedUpdate = true
	log.Debugf("Seeded entropy pool from %q", g.seedFile)
	return true
}

// UpdateSeedFile writes a fresh seed derived from the pool to the seed file.
// Nothing is written unless a seed file is configured and the pool has been
// initialized and filled.
func (g *Generator) UpdateSeedFile() error {
	g.lock()
	defer g.unlock()

	if g.seedFile == "" || g.rndpool == nil || !g.filled {
		return nil
	}
	if !g.allowSeedUpdate {
		log.Warnf("Can't update seed file %q - not allowed", g.seedFile)
		return nil
	}

	deriveExtractionPool(g.keypool, g.rndpool)
	g.mixRndPool()
	g.mixKeyPool()
	defer clear(g.keypool)

	f, err := os.OpenFile(g.seedFile, os.O_WRONLY|os.O_CREATE, 0600)
	if err != nil {
		str := fmt.Sprintf("can't create seed file %q", g.seedFile)
		return rngerr.Wrap(rngerr.ErrSeedFile, str, err)
	}
	if err := g.writeSeed(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		str := fmt.Sprintf("can't close seed file %q", g.seedFile)
		return rngerr.Wrap(rngerr.ErrSeedFile, str, err)
	}
	log.Debugf("Updated seed file %q", g.seedFile)
	return nil
}

// writeSeed replaces the content of f with the extraction pool.
//
// This function MUST be called with the pool lock held.
func (g *Generator) writeSeed(f *os.File) error {
	if err := lockFile(f, true); err != nil {
		str := fmt.Sprintf("can't lock seed file %q", g.seedFile)
		return rngerr.Wrap(rngerr.ErrSeedFile, str, err)
	}
	if err := f.Truncate(0); err != nil {
		str := fmt.Sprintf("can't truncate seed file %q", g.seedFile)
		return rngerr.Wrap(rngerr.ErrSeedFile, str, err)
	}
	if _, err := f.Write(g.keypool); err != nil {
		str := fmt.Sprintf("can't write seed file %q", g.seedFile)
		return rngerr.Wrap(rngerr.ErrSeedFile, str, err)
	}
	return nil
}
