// Copyright (c) 2025 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package daemon

import (
	"context"
	"errors"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/decred/rngcore/internal/entropy"
)

// errBadRequest identifies malformed requests.
var errBadRequest = errors.New("malformed request")

// idleTimeout is how long a connection may stay silent between requests.
const idleTimeout = 2 * time.Minute

// Handler produces the bytes served by the daemon.
type Handler interface {
	Fill(buf []byte, level entropy.Level) error
	CreateNonce(buf []byte)
}

// ServerStats holds the counters of a server.
type ServerStats struct {
	Conns    atomic.Uint64
	Requests atomic.Uint64
	Bytes    atomic.Uint64
	Rejected atomic.Uint64
}

// Serve answers requests on connections accepted from l until ctx is
// canceled.  The listener is closed when Serve returns.  Stats, when not
// nil, is updated as requests are served.
func Serve(ctx context.Context, l net.Listener, h Handler, stats *ServerStats) error {
	if stats == nil {
		stats = new(ServerStats)
	}

	parent := ctx
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	var mtx sync.Mutex
	conns := make(map[net.Conn]struct{})

	wg.Add(1)
	go func() {
		defer wg.Done()
		<-ctx.Done()
		l.Close()
		mtx.Lock()
		for conn := range conns {
			conn.Close()
		}
		mtx.Unlock()
	}()

	log.Infof("Serving randomness requests on %s", l.Addr())
	var err error
	for {
		var conn net.Conn
		conn, err = l.Accept()
		if err != nil {
			break
		}

		mtx.Lock()
		if ctx.Err() != nil {
			mtx.Unlock()
			conn.Close()
			continue
		}
		conns[conn] = struct{}{}
		mtx.Unlock()
		stats.Conns.Add(1)

		wg.Add(1)
		go func() {
			defer wg.Done()
			serveConn(conn, h, stats)
			mtx.Lock()
			delete(conns, conn)
			mtx.Unlock()
		}()
	}

	cancel()
	wg.Wait()

	// Accept only fails without cancellation when the listener broke.
	if parent.Err() == nil {
		return err
	}
	log.Infof("Stopped serving randomness requests on %s", l.Addr())
	return nil
}

// serveConn answers requests on a single connection until the peer goes
// away or sends a malformed request.
func serveConn(conn net.Conn, h Handler, stats *ServerStats) {
	defer conn.Close()

	buf := make([]byte, MaxRequest)
	defer clear(buf)
	for {
		if err := conn.SetReadDeadline(time.Now().Add(idleTimeout)); err != nil {
			return
		}
		req, err := readRequest(conn)
		if errors.Is(err, errBadRequest) {
			stats.Rejected.Add(1)
			log.Debugf("Rejecting request: %v", err)
			writeResponse(conn, StatusBadRequest, nil)
			return
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				log.Tracef("Connection closed: %v", err)
			}
			return
		}

		out := buf[:req.length]
		if req.nonce {
			h.CreateNonce(out)
		} else if err := h.Fill(out, req.level); err != nil {
			log.Errorf("Unable to serve request: %v", err)
			writeResponse(conn, StatusFailure, nil)
			return
		}
		stats.Requests.Add(1)
		stats.Bytes.Add(uint64(req.length))

		err = writeResponse(conn, StatusOK, out)
		clear(out)
		if err != nil {
			return
		}
	}
}
