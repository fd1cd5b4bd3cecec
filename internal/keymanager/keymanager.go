package keymanager

import (
	"fmt"
	"sync"

	"consulting-os/internal/models"
	"consulting-os/internal/repository"
	"consulting-os/internal/vault"

	"github.com/google/uuid"
)

// transitKeyName is the Vault transit key that wraps engagement data keys
const transitKeyName = "engagement-notes"

// KeyManager hands out per-engagement data encryption keys. Each
// engagement gets its own 256-bit DEK, wrapped by Vault's transit key
// and stored alongside the engagement. When Vault is disabled the DEK
// is derived deterministically from the application master secret.
type KeyManager struct {
	vaultClient  *vault.Client // nil when Vault is disabled
	keyRepo      *repository.EngagementKeyRepository
	masterSecret []byte

	mu    sync.Mutex
	cache map[uuid.UUID][]byte
}

// NewKeyManager creates a new key manager. vaultClient may be nil.
func NewKeyManager(vaultClient *vault.Client, keyRepo *repository.EngagementKeyRepository, masterSecret string) (*KeyManager, error) {
	km := &KeyManager{
		vaultClient:  vaultClient,
		keyRepo:      keyRepo,
		masterSecret: []byte(masterSecret),
		cache:        make(map[uuid.UUID][]byte),
	}

	if vaultClient != nil {
		if err := vaultClient.CreateKey(transitKeyName, "aes256-gcm96"); err != nil {
			return nil, fmt.Errorf("failed to ensure transit key: %w", err)
		}
	}

	return km, nil
}

// KeyFor returns the data encryption key for an engagement, creating
// and persisting a wrapped key on first use.
func (km *KeyManager) KeyFor(engagementID uuid.UUID) ([]byte, error) {
	km.mu.Lock()
	if key, ok := km.cache[engagementID]; ok {
		km.mu.Unlock()
		return key, nil
	}
	km.mu.Unlock()

	key, err := km.loadOrCreate(engagementID)
	if err != nil {
		return nil, err
	}

	km.mu.Lock()
	km.cache[engagementID] = key
	km.mu.Unlock()

	return key, nil
}

func (km *KeyManager) loadOrCreate(engagementID uuid.UUID) ([]byte, error) {
	if km.vaultClient == nil {
		// Deterministic derivation keeps notes readable across restarts
		// without a wrapped key on disk.
		return vault.DeriveKey(km.masterSecret, engagementID[:], transitKeyName, 32), nil
	}

	stored, err := km.keyRepo.Get(engagementID)
	if err != nil {
		return nil, err
	}

	if stored != nil {
		plaintext, err := km.vaultClient.Decrypt(transitKeyName, stored.WrappedKey)
		if err != nil {
			return nil, fmt.Errorf("failed to unwrap engagement key: %w", err)
		}
		return plaintext, nil
	}

	plaintext, wrapped, err := km.vaultClient.GenerateDataKey(transitKeyName, 256)
	if err != nil {
		return nil, fmt.Errorf("failed to generate engagement key: %w", err)
	}

	if err := km.keyRepo.Save(&models.EngagementKey{
		EngagementID: engagementID,
		WrappedKey:   wrapped,
	}); err != nil {
		return nil, err
	}

	// A concurrent writer may have won the insert; reload to stay
	// consistent with the persisted key.
	stored, err = km.keyRepo.Get(engagementID)
	if err != nil {
		return nil, err
	}
	if stored != nil && stored.WrappedKey != wrapped {
		return km.vaultClient.Decrypt(transitKeyName, stored.WrappedKey)
	}

	return plaintext, nil
}
