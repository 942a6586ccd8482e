// Copyright (c) 2025 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package daemon implements the request/response protocol used to delegate
random number generation to a separate process over a local socket.

A request is three bytes: the operation, the quality and the number of bytes
wanted.  The quality is the level of the request, or NonceQuality for nonces.
A response is a status byte, the number of bytes that follow and the data
itself.  At most MaxRequest bytes can be transferred per request, so longer
requests are split by the client.
*/
package daemon

import (
	"fmt"
	"io"

	"github.com/decred/rngcore/internal/entropy"
)

const (
	// OpGetRandom is the only defined operation.
	OpGetRandom = 3

	// NonceQuality is the quality byte of nonce requests.
	NonceQuality = 10

	// MaxRequest is the maximum number of bytes per request.
	MaxRequest = 255
)

// Response status codes.
const (
	StatusOK = iota
	StatusBadRequest
	StatusFailure
)

// request is a decoded request.
type request struct {
	nonce  bool
	level  entropy.Level
	length int
}

// encodeRequest returns the wire form of a request.
func encodeRequest(r request) [3]byte {
	quality := byte(r.level)
	if r.nonce {
		quality = NonceQuality
	}
	return [3]byte{OpGetRandom, quality, byte(r.length)}
}

// readRequest reads and validates a request.  A malformed request is
// reported with errBadRequest wrapped around a description.
func readRequest(rd io.Reader) (request, error) {
	var b [3]byte
	if _, err := io.ReadFull(rd, b[:]); err != nil {
		return request{}, err
	}

	var r request
	if b[0] != OpGetRandom {
		return r, fmt.Errorf("%w: unknown operation %d", errBadRequest, b[0])
	}
	switch {
	case b[1] == NonceQuality:
		r.nonce = true
	case b[1] <= byte(entropy.VeryStrong):
		r.level = entropy.Level(b[1])
	default:
		return r, fmt.Errorf("%w: unknown quality %d", errBadRequest, b[1])
	}
	if b[2] == 0 {
		return r, fmt.Errorf("%w: zero length", errBadRequest)
	}
	r.length = int(b[2])
	return r, nil
}

// writeResponse writes a response carrying data.
func writeResponse(w io.Writer, status byte, data []byte) error {
	buf := make([]byte, 2+len(data))
	buf[0] = status
	buf[1] = byte(len(data))
	copy(buf[2:], data)
	_, err := w.Write(buf)
	clear(buf)
	return err
}
