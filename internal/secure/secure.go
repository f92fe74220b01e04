package secure

import (
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"
	"os"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

// Seal encrypts plaintext using the provided AEAD cipher and associated data.
func Seal(aead cipher.AEAD, plaintext, aad []byte) ([]byte, error) {
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	ciphertext := aead.Seal(nil, nonce, plaintext, aad)
	return append(nonce, ciphertext...), nil
}

// Open expects nonce-prefixed ciphertext and returns plaintext or an error.
func Open(aead cipher.AEAD, in, aad []byte) ([]byte, error) {
	ns := aead.NonceSize()
	minLen := ns + aead.Overhead()
	if len(in) < minLen {
		return nil, fmt.Errorf("ciphertext too short: got %d bytes, need at least %d", len(in), minLen)
	}

	nonce, ciphertext := in[:ns], in[ns:]

	plaintext, err := aead.Open(nil, nonce, ciphertext, aad)
	if err != nil {
		return nil, fmt.Errorf("aead.Open failed: %w", err)
	}

	return plaintext, nil
}

// DeriveAEAD derives an AEAD cipher from a master key using HKDF.
func DeriveAEAD(key, salt, info []byte) (cipher.AEAD, error) {
	// HKDF-SHA256 to produce a 32-byte AEAD key
	hk := hkdf.New(sha256.New, key, salt, info)
	aeadKey := make([]byte, chacha20poly1305.KeySize)
	if _, err := io.ReadFull(hk, aeadKey); err != nil {
		return nil, err
	}

	// XChaCha20-Poly1305 (NewX) so random nonces are safe
	return chacha20poly1305.NewX(aeadKey)
}

// LoadOrCreateMasterKey reads the 32-byte master key at path, generating and
// persisting one with 0600 permissions if it does not exist yet.
func LoadOrCreateMasterKey(path string) ([]byte, error) {
	key, err := os.ReadFile(path)
	if err == nil {
		if len(key) != chacha20poly1305.KeySize {
			return nil, fmt.Errorf("master key at %s has wrong size: %d", path, len(key))
		}
		return key, nil
	}
	if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read master key: %w", err)
	}

	key = make([]byte, chacha20poly1305.KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("failed to generate master key: %w", err)
	}
	if err := os.WriteFile(path, key, 0600); err != nil {
		return nil, fmt.Errorf("failed to write master key: %w", err)
	}
	return key, nil
}
