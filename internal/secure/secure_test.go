package secure

import (
	"bytes"
	"crypto/cipher"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/crypto/chacha20poly1305"
)

func testAEAD(t *testing.T) (cipher.AEAD, cipher.AEAD) {
	t.Helper()
	key := bytes.Repeat([]byte{0x42}, chacha20poly1305.KeySize)
	first, err := DeriveAEAD(key, []byte("salt"), []byte("test"))
	if err != nil {
		t.Fatalf("DeriveAEAD: %v", err)
	}
	second, err := DeriveAEAD(key, []byte("salt"), []byte("test"))
	if err != nil {
		t.Fatalf("DeriveAEAD: %v", err)
	}
	return first, second
}

func TestSealOpenRoundTrip(t *testing.T) {
	aead, peer := testAEAD(t)
	aad := []byte("token/v1")
	plaintext := []byte("eyJhbGciOiJSUzI1NiJ9.payload.sig")

	sealed, err := Seal(aead, plaintext, aad)
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	if bytes.Contains(sealed, plaintext) {
		t.Fatal("sealed output contains the plaintext")
	}

	// A freshly derived cipher from the same inputs must open it.
	opened, err := Open(peer, sealed, aad)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if !bytes.Equal(opened, plaintext) {
		t.Errorf("opened = %q, want %q", opened, plaintext)
	}
}

func TestOpenRejectsTampering(t *testing.T) {
	aead, _ := testAEAD(t)
	aad := []byte("token/v1")

	sealed, err := Seal(aead, []byte("secret"), aad)
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}

	flipped := append([]byte(nil), sealed...)
	flipped[len(flipped)-1] ^= 0x01
	if _, err := Open(aead, flipped, aad); err == nil {
		t.Error("Open accepted a tampered ciphertext")
	}

	if _, err := Open(aead, sealed, []byte("token/v2")); err == nil {
		t.Error("Open accepted mismatched associated data")
	}

	if _, err := Open(aead, sealed[:aead.NonceSize()], aad); err == nil {
		t.Error("Open accepted a truncated input")
	}
}

func TestDeriveAEADIsDeterministicPerInfo(t *testing.T) {
	key := bytes.Repeat([]byte{0x07}, chacha20poly1305.KeySize)

	a, err := DeriveAEAD(key, nil, []byte("context-a"))
	if err != nil {
		t.Fatalf("DeriveAEAD: %v", err)
	}
	b, err := DeriveAEAD(key, nil, []byte("context-b"))
	if err != nil {
		t.Fatalf("DeriveAEAD: %v", err)
	}

	sealed, err := Seal(a, []byte("payload"), nil)
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	if _, err := Open(b, sealed, nil); err == nil {
		t.Error("cipher derived under a different info opened the ciphertext")
	}
}

func TestLoadOrCreateMasterKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "master.key")

	created, err := LoadOrCreateMasterKey(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(created) != chacha20poly1305.KeySize {
		t.Fatalf("key size = %d, want %d", len(created), chacha20poly1305.KeySize)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("key file mode = %o, want 0600", perm)
	}

	loaded, err := LoadOrCreateMasterKey(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !bytes.Equal(created, loaded) {
		t.Error("second call regenerated the key")
	}
}

func TestLoadOrCreateMasterKeyRejectsWrongSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "master.key")
	if err := os.WriteFile(path, []byte("short"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadOrCreateMasterKey(path); err == nil {
		t.Error("undersized key file accepted")
	}
}
