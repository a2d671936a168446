package vault

import (
	"vault-engine/internal/crypto"
	"vault-engine/internal/secmem"
)

// Two-layer envelope encryption: every record gets its own 32-byte key,
// sealed over the payload; the record key is then wrapped under the root
// encryption key. Re-keying only ever touches the small wrapped key, never
// the payload ciphertext.

const recordKeySize = crypto.KeySize

// AAD labels bind each envelope to its role so a wrapped key can never be
// fed to the payload layer and vice versa.
var (
	aadPayload    = []byte("item")
	aadWrappedKey = []byte("item-key")
)

// WrappedRecord pairs a payload envelope with its wrapped record key.
type WrappedRecord struct {
	Payload    *crypto.Envelope
	WrappedKey *crypto.Envelope
}

// EncryptRecord seals plaintext under a fresh record key and wraps that key
// under the root encryption key. The record key material is wiped before
// returning on every path.
func EncryptRecord(plaintext []byte, rootKey *secmem.SecretBuffer) (*WrappedRecord, error) {
	rootBytes, err := rootKey.Bytes()
	if err != nil {
		return nil, err
	}

	recordKey, err := crypto.RandomBytes(recordKeySize)
	if err != nil {
		return nil, err
	}
	defer secmem.WipeBytes(recordKey)

	payload, err := crypto.Seal(recordKey, plaintext, aadPayload)
	if err != nil {
		return nil, err
	}
	wrapped, err := crypto.Seal(rootBytes, recordKey, aadWrappedKey)
	if err != nil {
		return nil, err
	}
	return &WrappedRecord{Payload: payload, WrappedKey: wrapped}, nil
}

// DecryptRecord recovers the record key under the root key, opens the
// payload, and wipes the recovered key material regardless of outcome.
func DecryptRecord(rec *WrappedRecord, rootKey *secmem.SecretBuffer) ([]byte, error) {
	rootBytes, err := rootKey.Bytes()
	if err != nil {
		return nil, err
	}
	recordKey, err := crypto.Open(rec.WrappedKey, rootBytes, aadWrappedKey)
	if err != nil {
		return nil, err
	}
	defer secmem.WipeBytes(recordKey)

	return crypto.Open(rec.Payload, recordKey, aadPayload)
}

// RewrapKey re-wraps a record's key from the old root key to the new one.
// The payload envelope is carried over untouched.
func RewrapKey(rec *WrappedRecord, oldRoot, newRoot *secmem.SecretBuffer) (*WrappedRecord, error) {
	oldBytes, err := oldRoot.Bytes()
	if err != nil {
		return nil, err
	}
	newBytes, err := newRoot.Bytes()
	if err != nil {
		return nil, err
	}
	recordKey, err := crypto.Open(rec.WrappedKey, oldBytes, aadWrappedKey)
	if err != nil {
		return nil, err
	}
	defer secmem.WipeBytes(recordKey)

	wrapped, err := crypto.Seal(newBytes, recordKey, aadWrappedKey)
	if err != nil {
		return nil, err
	}
	return &WrappedRecord{Payload: rec.Payload, WrappedKey: wrapped}, nil
}
