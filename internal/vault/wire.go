package vault

import (
	"encoding/base64"
	"encoding/json"

	"vault-engine/internal/crypto"
)

// Wire format handed to the storage collaborator. Every binary field is
// base64 of raw bytes, no compression or framing. The wrapped key envelope
// is serialized as nonce||ciphertext||tag inside a single field.

// StoredItem is one persisted vault entry: payload envelope fields in the
// clear (as base64), plus the separately encrypted metadata projection. The
// id is the only plaintext identifier.
type StoredItem struct {
	ID                string `json:"id"`
	Ciphertext        string `json:"ciphertext"`
	WrappedKey        string `json:"wrappedKey"`
	Nonce             string `json:"nonce"`
	Tag               string `json:"tag"`
	EncryptedMetadata string `json:"encryptedMetadata,omitempty"`
}

type wireEnvelope struct {
	Ciphertext string `json:"ciphertext"`
	WrappedKey string `json:"wrappedKey"`
	Nonce      string `json:"nonce"`
	Tag        string `json:"tag"`
}

func packKeyEnvelope(env *crypto.Envelope) string {
	raw := make([]byte, 0, len(env.Nonce)+len(env.Ciphertext)+len(env.Tag))
	raw = append(raw, env.Nonce...)
	raw = append(raw, env.Ciphertext...)
	raw = append(raw, env.Tag...)
	return base64.StdEncoding.EncodeToString(raw)
}

func unpackKeyEnvelope(s string) (*crypto.Envelope, error) {
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil || len(raw) < crypto.NonceSize+crypto.TagSize {
		return nil, crypto.ErrDecryptionFailed
	}
	split := len(raw) - crypto.TagSize
	return &crypto.Envelope{
		Nonce:      raw[:crypto.NonceSize],
		Ciphertext: raw[crypto.NonceSize:split],
		Tag:        raw[split:],
	}, nil
}

func packWrapped(rec *WrappedRecord) wireEnvelope {
	return wireEnvelope{
		Ciphertext: base64.StdEncoding.EncodeToString(rec.Payload.Ciphertext),
		WrappedKey: packKeyEnvelope(rec.WrappedKey),
		Nonce:      base64.StdEncoding.EncodeToString(rec.Payload.Nonce),
		Tag:        base64.StdEncoding.EncodeToString(rec.Payload.Tag),
	}
}

// unpackWrapped rebuilds the two envelopes from wire fields. Malformed
// encodings map to the generic decryption failure: the wire layer must not
// become a second, more talkative oracle.
func unpackWrapped(w wireEnvelope) (*WrappedRecord, error) {
	ct, err1 := base64.StdEncoding.DecodeString(w.Ciphertext)
	nonce, err2 := base64.StdEncoding.DecodeString(w.Nonce)
	tag, err3 := base64.StdEncoding.DecodeString(w.Tag)
	if err1 != nil || err2 != nil || err3 != nil {
		return nil, crypto.ErrDecryptionFailed
	}
	wrappedKey, err := unpackKeyEnvelope(w.WrappedKey)
	if err != nil {
		return nil, err
	}
	return &WrappedRecord{
		Payload:    &crypto.Envelope{Ciphertext: ct, Nonce: nonce, Tag: tag},
		WrappedKey: wrappedKey,
	}, nil
}

func packMetadataEnvelope(rec *WrappedRecord) (string, error) {
	b, err := json.Marshal(packWrapped(rec))
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

func unpackMetadataEnvelope(s string) (*WrappedRecord, error) {
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, crypto.ErrDecryptionFailed
	}
	var w wireEnvelope
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, crypto.ErrDecryptionFailed
	}
	return unpackWrapped(w)
}
