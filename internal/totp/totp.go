// Package totp implements RFC 6238 time-based one-time passwords with the
// RFC 4226 truncation, plus provisioning-URI and backup-code handling.
package totp

import (
	"crypto/hmac"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/base32"
	"encoding/binary"
	"errors"
	"fmt"
	"hash"
	"strings"
	"time"

	"vault-engine/internal/crypto"
	"vault-engine/internal/secmem"
)

type Algorithm string

const (
	AlgSHA1   Algorithm = "SHA1"
	AlgSHA256 Algorithm = "SHA256"
	AlgSHA512 Algorithm = "SHA512"
)

const (
	DefaultDigits = 6
	DefaultPeriod = 30
	secretSize    = 20 // 160-bit secret
)

var ErrInvalidParams = errors.New("totp: invalid parameters")

// Params describe one TOTP credential. Secret is base32 (RFC 4648, no
// padding); zero-valued Algorithm/Digits/Period mean the defaults.
type Params struct {
	Secret    string
	Algorithm Algorithm
	Digits    int
	Period    int
}

func (p Params) withDefaults() Params {
	if p.Algorithm == "" {
		p.Algorithm = AlgSHA1
	}
	if p.Digits == 0 {
		p.Digits = DefaultDigits
	}
	if p.Period == 0 {
		p.Period = DefaultPeriod
	}
	return p
}

func (p Params) validate() error {
	if p.Secret == "" || p.Period <= 0 {
		return ErrInvalidParams
	}
	if p.Digits != 6 && p.Digits != 8 {
		return ErrInvalidParams
	}
	switch p.Algorithm {
	case AlgSHA1, AlgSHA256, AlgSHA512:
		return nil
	}
	return ErrInvalidParams
}

func (p Params) hasher() func() hash.Hash {
	switch p.Algorithm {
	case AlgSHA256:
		return sha256.New
	case AlgSHA512:
		return sha512.New
	default:
		return sha1.New
	}
}

// Generate computes the code for the given instant.
func Generate(p Params, at time.Time) (string, error) {
	p = p.withDefaults()
	if err := p.validate(); err != nil {
		return "", err
	}
	secret, err := DecodeSecret(p.Secret)
	if err != nil {
		return "", ErrInvalidParams
	}
	defer secmem.WipeBytes(secret)

	counter := at.Unix() / int64(p.Period)
	if counter < 0 {
		return "", ErrInvalidParams
	}
	return hotp(secret, uint64(counter), p), nil
}

// Verify checks a code at the given instant, tolerating clock drift of
// window periods in either direction.
func Verify(code string, p Params, window int, at time.Time) bool {
	p = p.withDefaults()
	if err := p.validate(); err != nil {
		return false
	}
	code = strings.TrimSpace(code)
	if len(code) != p.Digits {
		return false
	}
	secret, err := DecodeSecret(p.Secret)
	if err != nil {
		return false
	}
	defer secmem.WipeBytes(secret)

	counter := at.Unix() / int64(p.Period)
	for i := -int64(window); i <= int64(window); i++ {
		cur := counter + i
		if cur < 0 {
			continue
		}
		if subtle.ConstantTimeCompare([]byte(hotp(secret, uint64(cur), p)), []byte(code)) == 1 {
			return true
		}
	}
	return false
}

// hotp is the RFC 4226 core: HMAC over an 8-byte big-endian counter,
// dynamic truncation, modulo 10^digits, left-zero-padded.
func hotp(secret []byte, counter uint64, p Params) string {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], counter)

	mac := hmac.New(p.hasher(), secret)
	mac.Write(buf[:])
	sum := mac.Sum(nil)

	offset := sum[len(sum)-1] & 0x0F
	trunc := binary.BigEndian.Uint32(sum[offset:offset+4]) & 0x7FFFFFFF

	mod := uint32(1000000)
	if p.Digits == 8 {
		mod = 100000000
	}
	return fmt.Sprintf("%0*d", p.Digits, trunc%mod)
}

// GenerateSecret returns a fresh 160-bit secret, base32 without padding.
func GenerateSecret() (string, error) {
	secret, err := crypto.RandomBytes(secretSize)
	if err != nil {
		return "", err
	}
	defer secmem.WipeBytes(secret)
	return EncodeSecret(secret), nil
}

// EncodeSecret encodes raw secret bytes as unpadded base32.
func EncodeSecret(b []byte) string {
	return base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(b)
}

// DecodeSecret decodes a base32 secret, case-insensitively, rejecting
// invalid characters.
func DecodeSecret(secret string) ([]byte, error) {
	secret = strings.ToUpper(strings.TrimSpace(secret))
	secret = strings.TrimRight(secret, "=")
	return base32.StdEncoding.WithPadding(base32.NoPadding).DecodeString(secret)
}

const backupCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// BackupCodes generates one-time recovery codes, each 8 random alphanumeric
// characters displayed as two 4-character groups.
func BackupCodes(count int) ([]string, error) {
	if count <= 0 {
		count = 10
	}
	codes := make([]string, 0, count)
	for i := 0; i < count; i++ {
		var sb strings.Builder
		for j := 0; j < 8; j++ {
			if j == 4 {
				sb.WriteByte('-')
			}
			idx, err := crypto.RandomIndex(len(backupCodeAlphabet))
			if err != nil {
				return nil, err
			}
			sb.WriteByte(backupCodeAlphabet[idx])
		}
		codes = append(codes, sb.String())
	}
	return codes, nil
}
