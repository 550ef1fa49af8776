// Package cryptoutil seals small values with AES-256-GCM for storage at rest.
package cryptoutil

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
)

// ErrNotSealed is returned by Open when the input carries no known version prefix.
var ErrNotSealed = errors.New("value is not sealed")

// Sealer encrypts and decrypts opaque values.
type Sealer interface {
	Seal(plaintext []byte) ([]byte, error)
	Open(sealed []byte) ([]byte, error)
}

var (
	// Versioned prefix so the algorithm or key can rotate without rewriting state.
	prefixV1   = []byte("v1:")
	prefixNoop = []byte("noop:")
)

// AESGCM implements Sealer using AES-256-GCM.
type AESGCM struct {
	aead cipher.AEAD
}

var _ Sealer = (*AESGCM)(nil)

// NewAESGCM constructs an AESGCM sealer. Key must be 32 bytes.
func NewAESGCM(key []byte) (*AESGCM, error) {
	if len(key) != 32 {
		return nil, fmt.Errorf("aes-gcm key must be 32 bytes, got %d", len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &AESGCM{aead: aead}, nil
}

// NewAESGCMFromPassphrase derives the key from a configured secret. A 64-character hex
// string is used as the raw key; anything else is hashed with SHA-256.
func NewAESGCMFromPassphrase(secret string) (*AESGCM, error) {
	if secret == "" {
		return nil, errors.New("encryption key is required")
	}
	if decoded, err := hex.DecodeString(secret); err == nil && len(decoded) == 32 {
		return NewAESGCM(decoded)
	}
	sum := sha256.Sum256([]byte(secret))
	return NewAESGCM(sum[:])
}

// Seal encrypts plaintext under a random nonce and returns "v1:" + base64(nonce||ciphertext).
func (e *AESGCM) Seal(plaintext []byte) ([]byte, error) {
	nonce := make([]byte, e.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	raw := e.aead.Seal(nonce, nonce, plaintext, nil)
	return encode(prefixV1, raw), nil
}

// Open reverses Seal. Values written by Noop are accepted too.
func (e *AESGCM) Open(sealed []byte) ([]byte, error) {
	if bytes.HasPrefix(sealed, prefixNoop) {
		return Noop{}.Open(sealed)
	}
	if !bytes.HasPrefix(sealed, prefixV1) {
		return nil, ErrNotSealed
	}
	raw, err := decode(sealed[len(prefixV1):])
	if err != nil {
		return nil, err
	}
	n := e.aead.NonceSize()
	if len(raw) < n {
		return nil, errors.New("ciphertext too short")
	}
	return e.aead.Open(nil, raw[:n], raw[n:], nil)
}

// Noop marks values without encrypting them.
type Noop struct{}

var _ Sealer = Noop{}

func (Noop) Seal(plaintext []byte) ([]byte, error) {
	return encode(prefixNoop, plaintext), nil
}

func (Noop) Open(sealed []byte) ([]byte, error) {
	if !bytes.HasPrefix(sealed, prefixNoop) {
		return nil, ErrNotSealed
	}
	return decode(sealed[len(prefixNoop):])
}

func encode(prefix, raw []byte) []byte {
	out := make([]byte, len(prefix)+base64.StdEncoding.EncodedLen(len(raw)))
	copy(out, prefix)
	base64.StdEncoding.Encode(out[len(prefix):], raw)
	return out
}

func decode(b64 []byte) ([]byte, error) {
	out := make([]byte, base64.StdEncoding.DecodedLen(len(b64)))
	n, err := base64.StdEncoding.Decode(out, b64)
	if err != nil {
		return nil, fmt.Errorf("decode sealed value: %w", err)
	}
	return out[:n], nil
}
