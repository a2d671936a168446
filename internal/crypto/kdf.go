package crypto

import (
	"errors"

	"golang.org/x/crypto/argon2"

	"vault-engine/internal/secmem"
)

// ErrInvalidInput marks malformed derivation inputs (caller error).
var ErrInvalidInput = errors.New("crypto: invalid input")

const (
	// SaltSize is the required derivation salt length.
	SaltSize = 32

	// Argon2id parameters, tuned for roughly 300ms on commodity hardware.
	// These are a frozen security contract, not configuration: weakening
	// them requires an explicit review, so they are deliberately not
	// exposed as tunables.
	kdfTime    = 3
	kdfMemory  = 64 * 1024 // KiB
	kdfThreads = 4
	kdfKeyLen  = 64
)

// RootKeyPair is the result of one unlock. EncryptionKey wraps per-record
// keys; AuthKey is handed to the authentication collaborator and is never
// used for encryption. Both are wiped together.
type RootKeyPair struct {
	EncryptionKey *secmem.SecretBuffer
	AuthKey       *secmem.SecretBuffer
	Salt          []byte
}

// Wipe releases both halves of the pair.
func (k *RootKeyPair) Wipe() {
	if k == nil {
		return
	}
	if k.EncryptionKey != nil {
		k.EncryptionKey.Wipe()
	}
	if k.AuthKey != nil {
		k.AuthKey.Wipe()
	}
}

// DeriveRootKeys stretches a low-entropy secret into the root key pair using
// argon2id. The 64-byte output splits into encryption key (first 32 bytes)
// and auth key (last 32 bytes).
func DeriveRootKeys(secret string, salt []byte) (*RootKeyPair, error) {
	if secret == "" || len(salt) != SaltSize {
		return nil, ErrInvalidInput
	}
	key := argon2.IDKey([]byte(secret), salt, kdfTime, kdfMemory, kdfThreads, kdfKeyLen)

	pair := &RootKeyPair{
		// FromBytes wipes each half of the derived output as it copies.
		EncryptionKey: secmem.FromBytes(key[:32]),
		AuthKey:       secmem.FromBytes(key[32:]),
		Salt:          append([]byte(nil), salt...),
	}
	return pair, nil
}

// GenerateSalt returns a fresh 32-byte derivation salt. Per-account salt
// uniqueness is a security invariant: reused salts enable cross-account
// dictionary attacks.
func GenerateSalt() ([]byte, error) {
	return RandomBytes(SaltSize)
}
