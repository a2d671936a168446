package vault

import (
	"fmt"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
)

// Kind tags the record union.
type Kind string

const (
	KindLogin    Kind = "login"
	KindCard     Kind = "card"
	KindNote     Kind = "note"
	KindIdentity Kind = "identity"
	KindFileRef  Kind = "fileref"
	KindTOTP     Kind = "totp"
	KindAPIKey   Kind = "apikey"
	KindLicense  Kind = "license"
)

// Record is a vault entry in plaintext form. It only ever exists inside the
// engine boundary: callers hand it in, the codec encrypts it before anything
// leaves, and it is never logged. Exactly one kind payload is set.
type Record struct {
	ID        string    `cbor:"id"`
	OwnerID   string    `cbor:"owner_id,omitempty"`
	Kind      Kind      `cbor:"kind"`
	Name      string    `cbor:"name"`
	Favorite  bool      `cbor:"favorite,omitempty"`
	Tags      []string  `cbor:"tags,omitempty"`
	CreatedAt time.Time `cbor:"created_at"`
	UpdatedAt time.Time `cbor:"updated_at"`

	Login    *LoginData    `cbor:"login,omitempty"`
	Card     *CardData     `cbor:"card,omitempty"`
	Note     *NoteData     `cbor:"note,omitempty"`
	Identity *IdentityData `cbor:"identity,omitempty"`
	FileRef  *FileRefData  `cbor:"fileref,omitempty"`
	TOTP     *TOTPData     `cbor:"totp,omitempty"`
	APIKey   *APIKeyData   `cbor:"apikey,omitempty"`
	License  *LicenseData  `cbor:"license,omitempty"`
}

type LoginData struct {
	Site     string `cbor:"site,omitempty"`
	Username string `cbor:"username,omitempty"`
	Password string `cbor:"password"`
	Notes    string `cbor:"notes,omitempty"`

	// PasswordChangedAt records the last rotation; the analyzer falls back
	// to UpdatedAt when unset. Compromised is an externally supplied flag,
	// the engine never performs breach lookups itself.
	PasswordChangedAt *time.Time `cbor:"password_changed_at,omitempty"`
	Compromised       bool       `cbor:"compromised,omitempty"`
}

type CardData struct {
	Holder   string `cbor:"holder,omitempty"`
	Number   string `cbor:"number"`
	Brand    string `cbor:"brand,omitempty"`
	ExpMonth int    `cbor:"exp_month,omitempty"`
	ExpYear  int    `cbor:"exp_year,omitempty"`
	CVV      string `cbor:"cvv,omitempty"`
}

type NoteData struct {
	Text string `cbor:"text"`
}

type IdentityData struct {
	FullName string `cbor:"full_name,omitempty"`
	Email    string `cbor:"email,omitempty"`
	Phone    string `cbor:"phone,omitempty"`
	Address  string `cbor:"address,omitempty"`
}

type FileRefData struct {
	FileName    string `cbor:"file_name"`
	Size        int64  `cbor:"size,omitempty"`
	ContentHash string `cbor:"content_hash,omitempty"`
	StorageRef  string `cbor:"storage_ref,omitempty"`
}

type TOTPData struct {
	Issuer    string `cbor:"issuer,omitempty"`
	Account   string `cbor:"account,omitempty"`
	Secret    string `cbor:"secret"`
	Algorithm string `cbor:"algorithm,omitempty"`
	Digits    int    `cbor:"digits,omitempty"`
	Period    int    `cbor:"period,omitempty"`
}

type APIKeyData struct {
	Service   string     `cbor:"service,omitempty"`
	KeyID     string     `cbor:"key_id,omitempty"`
	Secret    string     `cbor:"secret"`
	ExpiresAt *time.Time `cbor:"expires_at,omitempty"`
}

type LicenseData struct {
	Product    string     `cbor:"product,omitempty"`
	LicensedTo string     `cbor:"licensed_to,omitempty"`
	Key        string     `cbor:"key"`
	ExpiresAt  *time.Time `cbor:"expires_at,omitempty"`
}

// NewRecord stamps a fresh record with id and timestamps. The caller fills
// in the kind payload before encryption.
func NewRecord(kind Kind, ownerID, name string) *Record {
	now := time.Now().UTC()
	return &Record{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Kind:      kind,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Metadata is the reduced, separately encrypted projection of a record used
// for listing and search without full-record decryption.
type Metadata struct {
	ID        string            `cbor:"id"`
	Kind      Kind              `cbor:"kind"`
	Name      string            `cbor:"name"`
	Favorite  bool              `cbor:"favorite,omitempty"`
	Tags      []string          `cbor:"tags,omitempty"`
	UpdatedAt time.Time         `cbor:"updated_at"`
	Index     map[string]string `cbor:"index,omitempty"`
}

// Projection builds the searchable metadata for a record. Index fields stay
// deliberately coarse: enough to list and find, nothing secret.
func (r *Record) Projection() Metadata {
	m := Metadata{
		ID:        r.ID,
		Kind:      r.Kind,
		Name:      r.Name,
		Favorite:  r.Favorite,
		Tags:      r.Tags,
		UpdatedAt: r.UpdatedAt,
		Index:     map[string]string{},
	}
	switch {
	case r.Login != nil:
		m.Index["site"] = r.Login.Site
		m.Index["username"] = r.Login.Username
	case r.Card != nil:
		m.Index["brand"] = r.Card.Brand
		if n := r.Card.Number; len(n) >= 4 {
			m.Index["last4"] = n[len(n)-4:]
		}
	case r.Identity != nil:
		m.Index["email"] = r.Identity.Email
	case r.FileRef != nil:
		m.Index["file_name"] = r.FileRef.FileName
	case r.TOTP != nil:
		m.Index["issuer"] = r.TOTP.Issuer
		m.Index["account"] = r.TOTP.Account
	case r.APIKey != nil:
		m.Index["service"] = r.APIKey.Service
	case r.License != nil:
		m.Index["product"] = r.License.Product
	}
	return m
}

// EncodeRecord serializes a record for encryption. Callers wipe the returned
// buffer after sealing it.
func EncodeRecord(r *Record) ([]byte, error) {
	b, err := cbor.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("vault: encode record: %w", err)
	}
	return b, nil
}

// DecodeRecord reverses EncodeRecord.
func DecodeRecord(b []byte) (*Record, error) {
	var r Record
	if err := cbor.Unmarshal(b, &r); err != nil {
		return nil, fmt.Errorf("vault: decode record: %w", err)
	}
	return &r, nil
}

func encodeMetadata(m Metadata) ([]byte, error) {
	b, err := cbor.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("vault: encode metadata: %w", err)
	}
	return b, nil
}

func decodeMetadata(b []byte) (Metadata, error) {
	var m Metadata
	if err := cbor.Unmarshal(b, &m); err != nil {
		return Metadata{}, fmt.Errorf("vault: decode metadata: %w", err)
	}
	return m, nil
}
