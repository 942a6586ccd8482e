// Copyright (c) 2025 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package primitive

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"

	"github.com/decred/rngcore/internal/rngerr"
)

const (
	// CipherBlockSize is the size in bytes of a cipher block.
	CipherBlockSize = aes.BlockSize

	// CipherKeySize is the size in bytes of a cipher key.
	CipherKeySize = 16
)

// Cipher encrypts single fixed-size blocks under a secret key.
type Cipher interface {
	// EncryptBlock encrypts src into dst.  dst and src may alias.
	EncryptBlock(dst, src *[CipherBlockSize]byte)
}

// aesCipher implements Cipher with AES-128.
type aesCipher struct {
	block cipher.Block
}

// NewAES128 returns a Cipher keyed with the given 16-byte key.
func NewAES128(key []byte) (Cipher, error) {
	if len(key) != CipherKeySize {
		str := fmt.Sprintf("cipher key must be %d bytes, got %d",
			CipherKeySize, len(key))
		return nil, rngerr.New(rngerr.ErrInvalidArgument, str)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, rngerr.Wrap(rngerr.ErrResource, "aes key schedule", err)
	}
	return &aesCipher{block: block}, nil
}

// EncryptBlock encrypts a single block.
func (c *aesCipher) EncryptBlock(dst, src *[CipherBlockSize]byte) {
	c.block.Encrypt(dst[:], src[:])
}
