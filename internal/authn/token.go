package authn

import (
	"crypto/cipher"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/RunjeethNikam/braintrain/internal/config"
	"github.com/RunjeethNikam/braintrain/internal/secure"
)

// TokenStorage is the durable, process-wide single slot for the bearer token.
type TokenStorage interface {
	Load() (string, error)
	Save(token string) error
	Clear() error
}

// tokenRecord is the on-disk shape of the token slot.
type tokenRecord struct {
	SealedToken string    `json:"sealed_token"`
	IssuedAt    time.Time `json:"issued_at"`
}

var tokenAAD = []byte("braintrain/auth_token")

// FileTokenStorage persists the sealed token under the user config directory.
type FileTokenStorage struct {
	path string
	aead cipher.AEAD
}

// NewFileTokenStorage opens the token slot in the config dir, creating the
// directory and master key on first use.
func NewFileTokenStorage() (*FileTokenStorage, error) {
	dir, err := config.GetConfigDir()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	key, err := secure.LoadOrCreateMasterKey(filepath.Join(dir, config.MasterKeyFile))
	if err != nil {
		return nil, err
	}
	aead, err := secure.DeriveAEAD(key, nil, tokenAAD)
	if err != nil {
		return nil, err
	}

	return &FileTokenStorage{
		path: filepath.Join(dir, config.TokenFile),
		aead: aead,
	}, nil
}

// Load reads and unseals the stored token. A missing file yields an empty
// token and no error.
func (f *FileTokenStorage) Load() (string, error) {
	file, err := os.Open(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("failed to open token file: %w", err)
	}
	defer file.Close()

	var record tokenRecord
	if err := json.NewDecoder(file).Decode(&record); err != nil {
		return "", fmt.Errorf("failed to decode token file: %w", err)
	}

	sealed, err := base64.StdEncoding.DecodeString(record.SealedToken)
	if err != nil {
		return "", fmt.Errorf("failed to decode sealed token: %w", err)
	}
	plaintext, err := secure.Open(f.aead, sealed, tokenAAD)
	if err != nil {
		return "", fmt.Errorf("failed to unseal token: %w", err)
	}
	return string(plaintext), nil
}

// Save seals and writes the token, replacing any previous one.
func (f *FileTokenStorage) Save(token string) error {
	sealed, err := secure.Seal(f.aead, []byte(token), tokenAAD)
	if err != nil {
		return fmt.Errorf("failed to seal token: %w", err)
	}

	record := tokenRecord{
		SealedToken: base64.StdEncoding.EncodeToString(sealed),
		IssuedAt:    time.Now(),
	}

	file, err := os.Create(f.path)
	if err != nil {
		return fmt.Errorf("failed to create token file: %w", err)
	}
	defer file.Close()

	// Set restrictive permissions on the token file (best-effort on Windows)
	if err := file.Chmod(0600); err != nil && runtime.GOOS != "windows" {
		return fmt.Errorf("failed to set file permissions: %w", err)
	}

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(&record); err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}
	return nil
}

// Clear removes the stored token. Clearing an empty slot is not an error.
func (f *FileTokenStorage) Clear() error {
	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove token file: %w", err)
	}
	return nil
}

// MemoryTokenStorage is an in-process token slot for tests and ephemeral use.
type MemoryTokenStorage struct {
	mu    sync.Mutex
	token string
}

func (m *MemoryTokenStorage) Load() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, nil
}

func (m *MemoryTokenStorage) Save(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	return nil
}

func (m *MemoryTokenStorage) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	return nil
}
