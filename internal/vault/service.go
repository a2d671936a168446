package vault

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"vault-engine/internal/audit"
	"vault-engine/internal/crypto"
	"vault-engine/internal/secmem"
)

// ErrEngineLocked marks operations attempted after Release or before a key
// was derived.
var ErrEngineLocked = errors.New("vault: engine locked")

// Service orchestrates the codec over typed records. It is the single owner
// of the session's root encryption key; the engine performs no locking, so
// concurrent callers within one process must serialize or hold independent
// derived keys.
type Service struct {
	rootKey *secmem.SecretBuffer
	log     zerolog.Logger
	audit   *audit.Log
}

// NewService takes ownership of the root encryption key for the session.
func NewService(rootKey *secmem.SecretBuffer, logger zerolog.Logger) *Service {
	return &Service{
		rootKey: rootKey,
		log:     logger,
		audit:   audit.New(),
	}
}

// Audit exposes the operation trail for inspection.
func (s *Service) Audit() *audit.Log { return s.audit }

func (s *Service) key() (*secmem.SecretBuffer, error) {
	if s.rootKey == nil {
		return nil, ErrEngineLocked
	}
	if _, err := s.rootKey.Bytes(); err != nil {
		return nil, ErrEngineLocked
	}
	return s.rootKey, nil
}

// EncryptItem encrypts a record and its metadata projection. The returned
// StoredItem is plaintext-free apart from the id.
func (s *Service) EncryptItem(rec *Record) (*StoredItem, error) {
	root, err := s.key()
	if err != nil {
		return nil, err
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}

	pt, err := EncodeRecord(rec)
	if err != nil {
		return nil, err
	}
	wrapped, err := EncryptRecord(pt, root)
	secmem.WipeBytes(pt)
	if err != nil {
		return nil, err
	}

	mpt, err := encodeMetadata(rec.Projection())
	if err != nil {
		return nil, err
	}
	metaWrapped, err := EncryptRecord(mpt, root)
	secmem.WipeBytes(mpt)
	if err != nil {
		return nil, err
	}
	metaField, err := packMetadataEnvelope(metaWrapped)
	if err != nil {
		return nil, err
	}

	w := packWrapped(wrapped)
	item := &StoredItem{
		ID:                rec.ID,
		Ciphertext:        w.Ciphertext,
		WrappedKey:        w.WrappedKey,
		Nonce:             w.Nonce,
		Tag:               w.Tag,
		EncryptedMetadata: metaField,
	}
	s.audit.Appendf("encrypt:%s", rec.ID)
	s.log.Debug().Str("id", rec.ID).Msg("item encrypted")
	return item, nil
}

// DecryptItem reconstitutes a record from its stored form.
func (s *Service) DecryptItem(item *StoredItem) (*Record, error) {
	root, err := s.key()
	if err != nil {
		return nil, err
	}
	wrapped, err := unpackWrapped(item.wireEnvelope())
	if err != nil {
		return nil, fmt.Errorf("item %s: %w", item.ID, err)
	}
	pt, err := DecryptRecord(wrapped, root)
	if err != nil {
		return nil, fmt.Errorf("item %s: %w", item.ID, err)
	}
	defer secmem.WipeBytes(pt)
	return DecodeRecord(pt)
}

// DecryptItems is the batch form of DecryptItem. The first failure
// propagates; partial results are discarded.
func (s *Service) DecryptItems(items []*StoredItem) ([]*Record, error) {
	if _, err := s.key(); err != nil {
		return nil, err
	}
	out := make([]*Record, 0, len(items))
	for _, item := range items {
		rec, err := s.DecryptItem(item)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	s.log.Debug().Int("count", len(out)).Msg("batch decrypted")
	return out, nil
}

// DecryptMetadataOnly recovers the listing projection without paying for
// full-record decryption. Items persisted without a metadata envelope fall
// back to decrypting the whole record.
func (s *Service) DecryptMetadataOnly(item *StoredItem) (Metadata, error) {
	root, err := s.key()
	if err != nil {
		return Metadata{}, err
	}
	if item.EncryptedMetadata == "" {
		rec, err := s.DecryptItem(item)
		if err != nil {
			return Metadata{}, err
		}
		return rec.Projection(), nil
	}
	wrapped, err := unpackMetadataEnvelope(item.EncryptedMetadata)
	if err != nil {
		return Metadata{}, fmt.Errorf("item %s: %w", item.ID, err)
	}
	pt, err := DecryptRecord(wrapped, root)
	if err != nil {
		return Metadata{}, fmt.Errorf("item %s: %w", item.ID, err)
	}
	defer secmem.WipeBytes(pt)
	return decodeMetadata(pt)
}

// RekeyAll re-wraps every item's record key under newRoot, leaving payload
// ciphertext untouched. On success the service adopts newRoot and wipes the
// old key; on any failure the old key stays live and newRoot is untouched.
func (s *Service) RekeyAll(newRoot *secmem.SecretBuffer, items []*StoredItem) ([]*StoredItem, error) {
	oldRoot, err := s.key()
	if err != nil {
		return nil, err
	}
	if _, err := newRoot.Bytes(); err != nil {
		return nil, err
	}

	out := make([]*StoredItem, 0, len(items))
	for _, item := range items {
		wrapped, err := unpackWrapped(item.wireEnvelope())
		if err != nil {
			return nil, fmt.Errorf("item %s: %w", item.ID, err)
		}
		rewrapped, err := RewrapKey(wrapped, oldRoot, newRoot)
		if err != nil {
			return nil, fmt.Errorf("item %s: %w", item.ID, err)
		}

		next := &StoredItem{ID: item.ID}
		w := packWrapped(rewrapped)
		next.Ciphertext, next.WrappedKey, next.Nonce, next.Tag = w.Ciphertext, w.WrappedKey, w.Nonce, w.Tag

		if item.EncryptedMetadata != "" {
			metaWrapped, err := unpackMetadataEnvelope(item.EncryptedMetadata)
			if err != nil {
				return nil, fmt.Errorf("item %s metadata: %w", item.ID, err)
			}
			metaRewrapped, err := RewrapKey(metaWrapped, oldRoot, newRoot)
			if err != nil {
				return nil, fmt.Errorf("item %s metadata: %w", item.ID, err)
			}
			next.EncryptedMetadata, err = packMetadataEnvelope(metaRewrapped)
			if err != nil {
				return nil, err
			}
		}
		out = append(out, next)
	}

	s.rootKey.Wipe()
	s.rootKey = newRoot
	s.audit.Appendf("rekey:%d", len(out))
	s.log.Info().Int("count", len(out)).Msg("vault re-keyed")
	return out, nil
}

// WrapRecoveryKey seals the held root encryption key under a recovery key,
// producing an opaque token the account-recovery collaborator can store.
func (s *Service) WrapRecoveryKey(recoveryKey *secmem.SecretBuffer) (string, error) {
	root, err := s.key()
	if err != nil {
		return "", err
	}
	rootBytes, err := root.Bytes()
	if err != nil {
		return "", ErrEngineLocked
	}
	recBytes, err := recoveryKey.Bytes()
	if err != nil {
		return "", err
	}
	env, err := crypto.Seal(recBytes, rootBytes, aadRecovery)
	if err != nil {
		return "", err
	}
	s.audit.Append("recovery-wrap")
	return packKeyEnvelope(env), nil
}

var aadRecovery = []byte("recovery-wrap")

// UnwrapRecoveryKey recovers a root encryption key from a recovery token.
// It is a package function: recovery happens while no session is unlocked.
func UnwrapRecoveryKey(token string, recoveryKey *secmem.SecretBuffer) (*secmem.SecretBuffer, error) {
	recBytes, err := recoveryKey.Bytes()
	if err != nil {
		return nil, err
	}
	env, err := unpackKeyEnvelope(token)
	if err != nil {
		return nil, err
	}
	rootBytes, err := crypto.Open(env, recBytes, aadRecovery)
	if err != nil {
		return nil, err
	}
	return secmem.FromBytes(rootBytes), nil
}

// Release wipes the held root key. Every subsequent operation fails with
// ErrEngineLocked.
func (s *Service) Release() {
	if s.rootKey != nil {
		s.rootKey.Wipe()
	}
	s.audit.Append("release")
	s.log.Info().Msg("engine locked")
}

func (i *StoredItem) wireEnvelope() wireEnvelope {
	return wireEnvelope{
		Ciphertext: i.Ciphertext,
		WrappedKey: i.WrappedKey,
		Nonce:      i.Nonce,
		Tag:        i.Tag,
	}
}
