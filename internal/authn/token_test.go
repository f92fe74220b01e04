package authn

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/RunjeethNikam/braintrain/internal/config"
)

func tempStorage(t *testing.T) *FileTokenStorage {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	if runtime.GOOS != "linux" {
		t.Skip("config dir override relies on XDG_CONFIG_HOME")
	}
	storage, err := NewFileTokenStorage()
	if err != nil {
		t.Fatalf("NewFileTokenStorage: %v", err)
	}
	return storage
}

func TestFileTokenStorageRoundTrip(t *testing.T) {
	storage := tempStorage(t)

	if tok, err := storage.Load(); err != nil || tok != "" {
		t.Fatalf("Load on empty slot = (%q, %v), want empty", tok, err)
	}

	if err := storage.Save("bearer-abc"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	tok, err := storage.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if tok != "bearer-abc" {
		t.Errorf("Load = %q, want bearer-abc", tok)
	}

	// Overwrite replaces the slot.
	if err := storage.Save("bearer-def"); err != nil {
		t.Fatalf("Save overwrite: %v", err)
	}
	if tok, _ := storage.Load(); tok != "bearer-def" {
		t.Errorf("Load after overwrite = %q, want bearer-def", tok)
	}

	if err := storage.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if tok, _ := storage.Load(); tok != "" {
		t.Errorf("Load after Clear = %q, want empty", tok)
	}

	// Clearing an already empty slot is not an error.
	if err := storage.Clear(); err != nil {
		t.Errorf("Clear on empty slot: %v", err)
	}
}

func TestTokenNotStoredInPlaintext(t *testing.T) {
	storage := tempStorage(t)

	if err := storage.Save("super-secret-token"); err != nil {
		t.Fatalf("Save: %v", err)
	}

	dir, err := config.GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir: %v", err)
	}
	raw, err := os.ReadFile(filepath.Join(dir, config.TokenFile))
	if err != nil {
		t.Fatalf("read token file: %v", err)
	}
	if strings.Contains(string(raw), "super-secret-token") {
		t.Error("token present in plaintext on disk")
	}
}

func TestPeekClaims(t *testing.T) {
	// Unsigned token with sub, email, exp claims; signature is ignored.
	token := "eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9." +
		"eyJzdWIiOiJ1MSIsImVtYWlsIjoia2ltQGV4YW1wbGUuY29tIiwiZXhwIjo0MTAyNDQ0ODAwfQ." +
		"c2lnbmF0dXJl"

	claims, err := PeekClaims(token)
	if err != nil {
		t.Fatalf("PeekClaims: %v", err)
	}
	if claims.Subject != "u1" {
		t.Errorf("Subject = %q, want u1", claims.Subject)
	}
	if claims.Email != "kim@example.com" {
		t.Errorf("Email = %q", claims.Email)
	}
	if claims.ExpiresAt.IsZero() {
		t.Error("ExpiresAt not decoded")
	}
}

func TestPeekClaimsRejectsGarbage(t *testing.T) {
	if _, err := PeekClaims("not-a-token"); err == nil {
		t.Error("PeekClaims accepted garbage")
	}
}
