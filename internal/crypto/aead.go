package crypto

import (
	"errors"

	"golang.org/x/crypto/chacha20poly1305"
)

const (
	KeySize   = chacha20poly1305.KeySize
	NonceSize = chacha20poly1305.NonceSize
	TagSize   = chacha20poly1305.Overhead
)

// ErrDecryptionFailed is the only error Open ever returns. Tag mismatch,
// wrong key, truncated input and malformed envelopes are indistinguishable
// on purpose: anything more specific is an oracle.
var ErrDecryptionFailed = errors.New("crypto: decryption failed")

// Envelope is one authenticated encryption result. Nonce is unique per seal
// under a given key, never reused.
type Envelope struct {
	Ciphertext []byte
	Nonce      []byte
	Tag        []byte
}

// Seal encrypts plaintext under a 32-byte key with ChaCha20-Poly1305 and a
// fresh random nonce. The tag is split off the combined output.
func Seal(key, plaintext, aad []byte) (*Envelope, error) {
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, ErrInvalidInput
	}
	nonce, err := RandomBytes(NonceSize)
	if err != nil {
		return nil, err
	}
	sealed := aead.Seal(nil, nonce, plaintext, aad)
	split := len(sealed) - TagSize
	return &Envelope{
		Ciphertext: sealed[:split],
		Nonce:      nonce,
		Tag:        sealed[split:],
	}, nil
}

// Open decrypts and authenticates an envelope sealed with the same key and
// AAD. Every failure maps to ErrDecryptionFailed.
func Open(env *Envelope, key, aad []byte) ([]byte, error) {
	if env == nil || len(env.Nonce) != NonceSize || len(env.Tag) != TagSize {
		return nil, ErrDecryptionFailed
	}
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	combined := make([]byte, 0, len(env.Ciphertext)+TagSize)
	combined = append(combined, env.Ciphertext...)
	combined = append(combined, env.Tag...)
	pt, err := aead.Open(nil, env.Nonce, combined, aad)
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	return pt, nil
}
