// Copyright (c) 2025 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package daemon

import (
	"fmt"
	"io"
	"net"
	"time"

	"github.com/decred/rngcore/internal/entropy"
	"github.com/decred/rngcore/internal/rngerr"
)

// defaultTimeout bounds a whole client exchange.
const defaultTimeout = 30 * time.Second

// Client requests random bytes from a daemon listening on a unix socket.
type Client struct {
	// Socket is the path of the daemon socket.
	Socket string

	// Timeout bounds a single exchange.  Zero selects a default.
	Timeout time.Duration
}

// Randomize fills buf with bytes of the given level from the daemon.
func (c *Client) Randomize(buf []byte, level entropy.Level) error {
	return c.get(buf, request{level: level})
}

// CreateNonce fills buf with nonce bytes from the daemon.
func (c *Client) CreateNonce(buf []byte) error {
	return c.get(buf, request{nonce: true})
}

// get performs as many requests as needed to fill buf over a single
// connection.
func (c *Client) get(buf []byte, req request) error {
	if len(buf) == 0 {
		return nil
	}

	timeout := c.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	conn, err := net.DialTimeout("unix", c.Socket, timeout)
	if err != nil {
		return rngerr.Wrap(rngerr.ErrDaemon, "can't connect to "+
			"randomness daemon", err)
	}
	defer conn.Close()
	if err := conn.SetDeadline(time.Now().Add(timeout)); err != nil {
		return rngerr.Wrap(rngerr.ErrDaemon, "can't set daemon deadline",
			err)
	}

	for len(buf) > 0 {
		req.length = min(len(buf), MaxRequest)
		if err := c.exchange(conn, req, buf[:req.length]); err != nil {
			return err
		}
		buf = buf[req.length:]
	}
	return nil
}

// exchange sends a single request and reads its response into buf.
func (c *Client) exchange(conn net.Conn, req request, buf []byte) error {
	wire := encodeRequest(req)
	if _, err := conn.Write(wire[:]); err != nil {
		return rngerr.Wrap(rngerr.ErrDaemon, "can't send request to "+
			"randomness daemon", err)
	}

	var hdr [2]byte
	if _, err := io.ReadFull(conn, hdr[:]); err != nil {
		return rngerr.Wrap(rngerr.ErrDaemon, "can't read response from "+
			"randomness daemon", err)
	}
	if hdr[0] != StatusOK {
		str := fmt.Sprintf("randomness daemon returned status %d", hdr[0])
		return rngerr.New(rngerr.ErrDaemon, str)
	}
	if int(hdr[1]) != len(buf) {
		str := fmt.Sprintf("randomness daemon returned %d bytes, "+
			"want %d", hdr[1], len(buf))
		return rngerr.New(rngerr.ErrDaemon, str)
	}
	if _, err := io.ReadFull(conn, buf); err != nil {
		return rngerr.Wrap(rngerr.ErrDaemon, "can't read data from "+
			"randomness daemon", err)
	}
	return nil
}
