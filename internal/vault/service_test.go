package vault

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"vault-engine/internal/crypto"
)

func testService(t *testing.T) *Service {
	t.Helper()
	return NewService(testRootKey(t), zerolog.Nop())
}

func loginRecord(name, site, user, pass string) *Record {
	rec := NewRecord(KindLogin, "owner-1", name)
	rec.Tags = []string{"work"}
	rec.Login = &LoginData{Site: site, Username: user, Password: pass}
	return rec
}

func TestEncryptDecryptItem(t *testing.T) {
	s := testService(t)
	rec := loginRecord("example", "example.com", "alice", "secret")

	item, err := s.EncryptItem(rec)
	if err != nil {
		t.Fatalf("encrypt item: %v", err)
	}
	if item.ID != rec.ID {
		t.Fatal("stored item id mismatch")
	}
	if item.Ciphertext == "" || item.WrappedKey == "" || item.Nonce == "" || item.Tag == "" {
		t.Fatal("incomplete wire envelope")
	}
	if item.EncryptedMetadata == "" {
		t.Fatal("missing metadata envelope")
	}

	got, err := s.DecryptItem(item)
	if err != nil {
		t.Fatalf("decrypt item: %v", err)
	}
	if got.Kind != KindLogin || got.Login == nil {
		t.Fatal("kind payload lost in roundtrip")
	}
	if got.Login.Password != "secret" || got.Login.Site != "example.com" {
		t.Fatal("login fields mismatch")
	}
	if got.Name != "example" || len(got.Tags) != 1 {
		t.Fatal("common fields mismatch")
	}
}

func TestDecryptItemsBatch(t *testing.T) {
	s := testService(t)
	items := make([]*StoredItem, 0, 3)
	for _, name := range []string{"a", "b", "c"} {
		item, err := s.EncryptItem(loginRecord(name, name+".com", "u", "p"))
		if err != nil {
			t.Fatalf("encrypt: %v", err)
		}
		items = append(items, item)
	}
	recs, err := s.DecryptItems(items)
	if err != nil {
		t.Fatalf("batch decrypt: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("expected 3 records, got %d", len(recs))
	}

	items[1].Tag = items[0].Tag // corrupt one entry
	if _, err := s.DecryptItems(items); !errors.Is(err, crypto.ErrDecryptionFailed) {
		t.Fatalf("expected ErrDecryptionFailed from batch, got %v", err)
	}
}

func TestDecryptMetadataOnly(t *testing.T) {
	s := testService(t)
	rec := loginRecord("mail", "mail.example.com", "bob", "hunter2")
	item, err := s.EncryptItem(rec)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	meta, err := s.DecryptMetadataOnly(item)
	if err != nil {
		t.Fatalf("metadata: %v", err)
	}
	if meta.Name != "mail" || meta.Kind != KindLogin {
		t.Fatal("metadata projection mismatch")
	}
	if meta.Index["site"] != "mail.example.com" || meta.Index["username"] != "bob" {
		t.Fatal("index fields mismatch")
	}
	if _, ok := meta.Index["password"]; ok {
		t.Fatal("password leaked into metadata index")
	}
}

func TestDecryptMetadataFallback(t *testing.T) {
	s := testService(t)
	item, err := s.EncryptItem(loginRecord("legacy", "old.example.com", "bob", "pw"))
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	item.EncryptedMetadata = "" // pre-metadata item
	meta, err := s.DecryptMetadataOnly(item)
	if err != nil {
		t.Fatalf("fallback metadata: %v", err)
	}
	if meta.Name != "legacy" || meta.Index["site"] != "old.example.com" {
		t.Fatal("fallback projection mismatch")
	}
}

func TestRekeyAllKeepsPayloadBytes(t *testing.T) {
	s := testService(t)
	items := make([]*StoredItem, 0, 4)
	for _, name := range []string{"a", "b", "c", "d"} {
		item, err := s.EncryptItem(loginRecord(name, name+".com", "u", "p"))
		if err != nil {
			t.Fatalf("encrypt: %v", err)
		}
		items = append(items, item)
	}

	newRoot := testRootKey(t)
	rekeyed, err := s.RekeyAll(newRoot, items)
	if err != nil {
		t.Fatalf("rekey: %v", err)
	}
	for i := range items {
		if rekeyed[i].Ciphertext != items[i].Ciphertext ||
			rekeyed[i].Nonce != items[i].Nonce ||
			rekeyed[i].Tag != items[i].Tag {
			t.Fatalf("item %d: payload envelope changed during rekey", i)
		}
		if rekeyed[i].WrappedKey == items[i].WrappedKey {
			t.Fatalf("item %d: wrapped key unchanged", i)
		}
	}

	// service now holds the new key and must decrypt the rekeyed items
	recs, err := s.DecryptItems(rekeyed)
	if err != nil {
		t.Fatalf("decrypt after rekey: %v", err)
	}
	if len(recs) != 4 {
		t.Fatalf("expected 4 records, got %d", len(recs))
	}
	if _, err := s.DecryptItem(items[0]); !errors.Is(err, crypto.ErrDecryptionFailed) {
		t.Fatal("old wrapped key still opens under new root")
	}
}

func TestReleaseLocksEverything(t *testing.T) {
	s := testService(t)
	item, err := s.EncryptItem(loginRecord("x", "x.com", "u", "p"))
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	s.Release()

	if _, err := s.EncryptItem(loginRecord("y", "y.com", "u", "p")); !errors.Is(err, ErrEngineLocked) {
		t.Fatalf("encrypt after release: expected ErrEngineLocked, got %v", err)
	}
	if _, err := s.DecryptItem(item); !errors.Is(err, ErrEngineLocked) {
		t.Fatalf("decrypt after release: expected ErrEngineLocked, got %v", err)
	}
	if _, err := s.DecryptMetadataOnly(item); !errors.Is(err, ErrEngineLocked) {
		t.Fatalf("metadata after release: expected ErrEngineLocked, got %v", err)
	}
	if _, err := s.RekeyAll(testRootKey(t), nil); !errors.Is(err, ErrEngineLocked) {
		t.Fatalf("rekey after release: expected ErrEngineLocked, got %v", err)
	}
	if _, err := s.ExportBundle(nil); !errors.Is(err, ErrEngineLocked) {
		t.Fatalf("export after release: expected ErrEngineLocked, got %v", err)
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	s := testService(t)
	item, err := s.EncryptItem(loginRecord("keep", "keep.com", "u", "p"))
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	blob, err := s.ExportBundle([]*StoredItem{item})
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	items, err := s.ImportBundle(blob)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if len(items) != 1 || items[0].ID != item.ID {
		t.Fatal("imported items mismatch")
	}
	rec, err := s.DecryptItem(items[0])
	if err != nil {
		t.Fatalf("decrypt imported: %v", err)
	}
	if rec.Login.Password != "p" {
		t.Fatal("imported record mismatch")
	}
}

func TestImportRejectsUnknownVersion(t *testing.T) {
	s := testService(t)
	if _, err := s.ImportBundle([]byte(`{"version":2,"exportedAt":"2026-01-01T00:00:00Z","items":[]}`)); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
	if _, err := s.ImportBundle([]byte(`not json`)); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("malformed document: expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestRecoveryKeyWrapping(t *testing.T) {
	root := testRootKey(t)
	rootCopy, err := root.Duplicate()
	if err != nil {
		t.Fatalf("duplicate: %v", err)
	}
	s := NewService(root, zerolog.Nop())

	item, err := s.EncryptItem(loginRecord("r", "r.com", "u", "p"))
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}

	recovery := testRootKey(t)
	token, err := s.WrapRecoveryKey(recovery)
	if err != nil {
		t.Fatalf("wrap recovery: %v", err)
	}
	s.Release()

	recovered, err := UnwrapRecoveryKey(token, recovery)
	if err != nil {
		t.Fatalf("unwrap recovery: %v", err)
	}
	defer recovered.Wipe()

	a, _ := rootCopy.Bytes()
	b, _ := recovered.Bytes()
	if string(a) != string(b) {
		t.Fatal("recovered root key differs from original")
	}
	rootCopy.Wipe()

	s2 := NewService(recovered, zerolog.Nop())
	rec, err := s2.DecryptItem(item)
	if err != nil {
		t.Fatalf("decrypt with recovered key: %v", err)
	}
	if rec.Login.Password != "p" {
		t.Fatal("record mismatch after recovery")
	}

	wrong := testRootKey(t)
	if _, err := UnwrapRecoveryKey(token, wrong); !errors.Is(err, crypto.ErrDecryptionFailed) {
		t.Fatalf("expected ErrDecryptionFailed with wrong recovery key, got %v", err)
	}
}

func TestAuditTrail(t *testing.T) {
	s := testService(t)
	if _, err := s.EncryptItem(loginRecord("a", "a.com", "u", "p")); err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	s.Release()
	if err := s.Audit().Verify(); err != nil {
		t.Fatalf("audit verify: %v", err)
	}
	if len(s.Audit().Entries()) < 2 {
		t.Fatal("expected audit entries for encrypt and release")
	}
}
