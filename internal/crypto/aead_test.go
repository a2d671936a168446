package crypto

import (
	"bytes"
	"crypto/rand"
	"errors"
	"testing"
)

func randBytes(t *testing.T, n int) []byte {
	t.Helper()
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		t.Fatalf("rand.Read: %v", err)
	}
	return b
}

func TestSealOpenRoundTrip(t *testing.T) {
	key := randBytes(t, KeySize)
	pt := randBytes(t, 4096)
	aad := []byte("context")
	env, err := Seal(key, pt, aad)
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	if len(env.Nonce) != NonceSize || len(env.Tag) != TagSize {
		t.Fatalf("unexpected envelope shape: nonce=%d tag=%d", len(env.Nonce), len(env.Tag))
	}
	out, err := Open(env, key, aad)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if !bytes.Equal(pt, out) {
		t.Fatal("plaintext mismatch")
	}
}

func TestSealOpenEmptyPlaintext(t *testing.T) {
	key := randBytes(t, KeySize)
	env, err := Seal(key, nil, nil)
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	out, err := Open(env, key, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if len(out) != 0 {
		t.Fatal("expected empty plaintext")
	}
}

func TestSealOpenAADMismatch(t *testing.T) {
	key := randBytes(t, KeySize)
	env, err := Seal(key, []byte("secret-data"), []byte("aad-1"))
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	if _, err := Open(env, key, []byte("aad-2")); !errors.Is(err, ErrDecryptionFailed) {
		t.Fatalf("expected ErrDecryptionFailed with mismatched AAD, got %v", err)
	}
}

func TestOpenWrongKey(t *testing.T) {
	key := randBytes(t, KeySize)
	env, err := Seal(key, []byte("hello"), nil)
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	other := randBytes(t, KeySize)
	if _, err := Open(env, other, nil); !errors.Is(err, ErrDecryptionFailed) {
		t.Fatalf("expected ErrDecryptionFailed, got %v", err)
	}
}

// Flipping any single bit of ciphertext, nonce or tag must fail generically,
// never return altered plaintext.
func TestOpenTamperAnyField(t *testing.T) {
	key := randBytes(t, KeySize)
	pt := randBytes(t, 64)
	env, err := Seal(key, pt, nil)
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	fields := map[string][]byte{
		"ciphertext": env.Ciphertext,
		"nonce":      env.Nonce,
		"tag":        env.Tag,
	}
	for name, field := range fields {
		for i := range field {
			for bit := 0; bit < 8; bit++ {
				field[i] ^= 1 << bit
				_, err := Open(env, key, nil)
				field[i] ^= 1 << bit
				if !errors.Is(err, ErrDecryptionFailed) {
					t.Fatalf("%s byte %d bit %d: expected ErrDecryptionFailed, got %v", name, i, bit, err)
				}
			}
		}
	}
}

func TestOpenMalformedEnvelope(t *testing.T) {
	key := randBytes(t, KeySize)
	env, err := Seal(key, []byte("x"), nil)
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	cases := []*Envelope{
		nil,
		{Ciphertext: env.Ciphertext, Nonce: env.Nonce[:NonceSize-1], Tag: env.Tag},
		{Ciphertext: env.Ciphertext, Nonce: env.Nonce, Tag: env.Tag[:TagSize-1]},
		{Ciphertext: nil, Nonce: env.Nonce, Tag: env.Tag},
	}
	for i, c := range cases {
		if _, err := Open(c, key, nil); !errors.Is(err, ErrDecryptionFailed) {
			t.Fatalf("case %d: expected ErrDecryptionFailed, got %v", i, err)
		}
	}
}

func TestSealFreshNoncePerCall(t *testing.T) {
	key := randBytes(t, KeySize)
	seen := make(map[string]bool)
	for i := 0; i < 256; i++ {
		env, err := Seal(key, []byte("same plaintext"), nil)
		if err != nil {
			t.Fatalf("seal: %v", err)
		}
		if seen[string(env.Nonce)] {
			t.Fatal("nonce repeated across seals")
		}
		seen[string(env.Nonce)] = true
	}
}

func TestSealBadKeySize(t *testing.T) {
	if _, err := Seal(make([]byte, 16), []byte("x"), nil); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for short key, got %v", err)
	}
}
