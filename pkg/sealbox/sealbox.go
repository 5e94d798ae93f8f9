// Package sealbox implements passphrase-based authenticated encryption
// for message payloads.
//
// Keys are derived with PBKDF2-SHA256 and payloads are sealed with
// AES-256-GCM. The construction is interoperable with the WebCrypto
// API: a payload sealed here opens in a browser with the same
// passphrase, salt, and IV, and vice versa.
package sealbox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"errors"
	"fmt"

	"golang.org/x/crypto/pbkdf2"

	"github.com/swissmarley/secure-snap/pkg/token"
)

const (
	// SaltSize is the PBKDF2 salt length in bytes.
	SaltSize = 16

	// IVSize is the AES-GCM nonce length in bytes.
	IVSize = 12

	// KeySize is the derived AES key length in bytes.
	KeySize = 32

	// Iterations is the PBKDF2 iteration count.
	Iterations = 100000
)

// ErrDecryptFailed indicates the payload could not be opened. A wrong
// passphrase and a tampered payload are indistinguishable.
var ErrDecryptFailed = errors.New("sealbox: decryption failed")

// Box holds a sealed payload together with the public parameters
// needed to open it. The passphrase is never part of a Box.
type Box struct {
	Ciphertext []byte
	Salt       []byte
	IV         []byte
}

// Seal encrypts plaintext under a key derived from the passphrase.
// Salt and IV are drawn fresh for every call.
func Seal(plaintext []byte, passphrase string) (*Box, error) {
	salt, err := token.GenerateBytes(SaltSize)
	if err != nil {
		return nil, fmt.Errorf("sealbox: generate salt: %w", err)
	}
	iv, err := token.GenerateBytes(IVSize)
	if err != nil {
		return nil, fmt.Errorf("sealbox: generate iv: %w", err)
	}

	aead, err := newAEAD(passphrase, salt)
	if err != nil {
		return nil, err
	}

	return &Box{
		Ciphertext: aead.Seal(nil, iv, plaintext, nil),
		Salt:       salt,
		IV:         iv,
	}, nil
}

// Open decrypts a sealed payload. It returns ErrDecryptFailed when the
// passphrase is wrong or the payload was modified.
func Open(box *Box, passphrase string) ([]byte, error) {
	if box == nil {
		return nil, errors.New("sealbox: nil box")
	}
	if len(box.Salt) != SaltSize {
		return nil, fmt.Errorf("sealbox: salt length %d, want %d", len(box.Salt), SaltSize)
	}
	if len(box.IV) != IVSize {
		return nil, fmt.Errorf("sealbox: iv length %d, want %d", len(box.IV), IVSize)
	}

	aead, err := newAEAD(passphrase, box.Salt)
	if err != nil {
		return nil, err
	}

	plaintext, err := aead.Open(nil, box.IV, box.Ciphertext, nil)
	if err != nil {
		return nil, ErrDecryptFailed
	}
	return plaintext, nil
}

// newAEAD derives the AES-GCM cipher for a passphrase and salt.
func newAEAD(passphrase string, salt []byte) (cipher.AEAD, error) {
	key := pbkdf2.Key([]byte(passphrase), salt, Iterations, KeySize, sha256.New)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("sealbox: new cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("sealbox: new gcm: %w", err)
	}
	return aead, nil
}
