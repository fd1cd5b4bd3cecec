package securestore

import (
	"encoding/base64"
	"fmt"
	"strings"

	"consulting-os/internal/keymanager"
	"consulting-os/internal/vault"

	"github.com/google/uuid"
)

// SecureStore encrypts session notes at rest with per-engagement keys.
// Ciphertext is stored as base64(nonce) + "." + base64(ciphertext) with
// the engagement ID bound as additional authenticated data, so notes
// cannot be moved between engagements.
type SecureStore struct {
	keyManager *keymanager.KeyManager
}

// NewSecureStore creates a new SecureStore instance
func NewSecureStore(keyManager *keymanager.KeyManager) *SecureStore {
	return &SecureStore{keyManager: keyManager}
}

// Seal encrypts plaintext for the given engagement
func (ss *SecureStore) Seal(engagementID uuid.UUID, plaintext string) (string, error) {
	key, err := ss.keyManager.KeyFor(engagementID)
	if err != nil {
		return "", fmt.Errorf("key lookup failed: %w", err)
	}

	ciphertext, nonce, err := vault.EncryptLocal([]byte(plaintext), key, engagementID[:])
	if err != nil {
		return "", fmt.Errorf("encryption failed: %w", err)
	}

	return base64.StdEncoding.EncodeToString(nonce) + "." + base64.StdEncoding.EncodeToString(ciphertext), nil
}

// Open decrypts a sealed value for the given engagement
func (ss *SecureStore) Open(engagementID uuid.UUID, sealed string) (string, error) {
	parts := strings.SplitN(sealed, ".", 2)
	if len(parts) != 2 {
		return "", fmt.Errorf("malformed sealed value")
	}

	nonce, err := base64.StdEncoding.DecodeString(parts[0])
	if err != nil {
		return "", fmt.Errorf("malformed nonce: %w", err)
	}
	ciphertext, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return "", fmt.Errorf("malformed ciphertext: %w", err)
	}

	key, err := ss.keyManager.KeyFor(engagementID)
	if err != nil {
		return "", fmt.Errorf("key lookup failed: %w", err)
	}

	plaintext, err := vault.DecryptLocal(ciphertext, key, nonce, engagementID[:])
	if err != nil {
		return "", fmt.Errorf("decryption failed: %w", err)
	}

	return string(plaintext), nil
}
