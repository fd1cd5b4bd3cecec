package vault

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/hashicorp/vault/api"
)

// Client wraps HashiCorp Vault's transit engine for key wrapping
type Client struct {
	client       *api.Client
	transitMount string
}

// Config holds Vault configuration
type Config struct {
	Address      string
	Token        string
	TransitMount string
}

// NewClient creates a new Vault client and ensures the transit engine is mounted
func NewClient(cfg *Config) (*Client, error) {
	config := api.DefaultConfig()
	config.Address = cfg.Address

	client, err := api.NewClient(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create vault client: %w", err)
	}

	client.SetToken(cfg.Token)

	vaultClient := &Client{
		client:       client,
		transitMount: cfg.TransitMount,
	}

	if err := vaultClient.initTransitEngine(); err != nil {
		return nil, fmt.Errorf("failed to initialize transit engine: %w", err)
	}

	return vaultClient, nil
}

// initTransitEngine enables the transit secrets engine if not already enabled
func (c *Client) initTransitEngine() error {
	ctx := context.Background()

	mounts, err := c.client.Sys().ListMountsWithContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to list mounts: %w", err)
	}

	if _, exists := mounts[c.transitMount+"/"]; exists {
		return nil
	}

	err = c.client.Sys().MountWithContext(ctx, c.transitMount, &api.MountInput{
		Type:        "transit",
		Description: "Transit encryption for session notes",
		Config: api.MountConfigInput{
			DefaultLeaseTTL: "768h",
			MaxLeaseTTL:     "8760h",
		},
	})
	if err != nil {
		return fmt.Errorf("failed to mount transit engine: %w", err)
	}

	return nil
}

// CreateKey creates a transit encryption key if it does not already exist
func (c *Client) CreateKey(keyName, keyType string) error {
	ctx := context.Background()

	path := fmt.Sprintf("%s/keys/%s", c.transitMount, keyName)
	data := map[string]interface{}{
		"type":       keyType,
		"exportable": false,
	}

	if _, err := c.client.Logical().WriteWithContext(ctx, path, data); err != nil {
		return fmt.Errorf("failed to create key %s: %w", keyName, err)
	}

	return nil
}

// Encrypt encrypts data using Vault's transit engine
func (c *Client) Encrypt(keyName string, plaintext []byte) (string, error) {
	ctx := context.Background()

	path := fmt.Sprintf("%s/encrypt/%s", c.transitMount, keyName)
	data := map[string]interface{}{
		"plaintext": base64.StdEncoding.EncodeToString(plaintext),
	}

	secret, err := c.client.Logical().WriteWithContext(ctx, path, data)
	if err != nil {
		return "", fmt.Errorf("failed to encrypt: %w", err)
	}

	ciphertext, ok := secret.Data["ciphertext"].(string)
	if !ok {
		return "", fmt.Errorf("invalid ciphertext response")
	}

	return ciphertext, nil
}

// Decrypt decrypts data using Vault's transit engine
func (c *Client) Decrypt(keyName, ciphertext string) ([]byte, error) {
	ctx := context.Background()

	path := fmt.Sprintf("%s/decrypt/%s", c.transitMount, keyName)
	data := map[string]interface{}{
		"ciphertext": ciphertext,
	}

	secret, err := c.client.Logical().WriteWithContext(ctx, path, data)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt: %w", err)
	}

	encodedPlaintext, ok := secret.Data["plaintext"].(string)
	if !ok {
		return nil, fmt.Errorf("invalid plaintext response")
	}

	plaintext, err := base64.StdEncoding.DecodeString(encodedPlaintext)
	if err != nil {
		return nil, fmt.Errorf("failed to decode plaintext: %w", err)
	}

	return plaintext, nil
}

// GenerateDataKey generates a new data encryption key wrapped by the named transit key
func (c *Client) GenerateDataKey(keyName string, bits int) (plaintext []byte, ciphertext string, err error) {
	ctx := context.Background()

	path := fmt.Sprintf("%s/datakey/plaintext/%s", c.transitMount, keyName)
	data := map[string]interface{}{
		"bits": bits,
	}

	secret, err := c.client.Logical().WriteWithContext(ctx, path, data)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate data key: %w", err)
	}

	plaintextB64, ok := secret.Data["plaintext"].(string)
	if !ok {
		return nil, "", fmt.Errorf("invalid plaintext in response")
	}

	plaintext, err = base64.StdEncoding.DecodeString(plaintextB64)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode plaintext: %w", err)
	}

	ciphertext, ok = secret.Data["ciphertext"].(string)
	if !ok {
		return nil, "", fmt.Errorf("invalid ciphertext in response")
	}

	return plaintext, ciphertext, nil
}

// Health checks Vault health status
func (c *Client) Health() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	health, err := c.client.Sys().HealthWithContext(ctx)
	if err != nil {
		return fmt.Errorf("vault health check failed: %w", err)
	}

	if !health.Initialized {
		return fmt.Errorf("vault is not initialized")
	}
	if health.Sealed {
		return fmt.Errorf("vault is sealed")
	}

	return nil
}

// EncryptLocal performs AES-256-GCM encryption with a locally held key
func EncryptLocal(plaintext, key, additionalData []byte) (ciphertext, nonce []byte, err error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, nil, fmt.Errorf("cipher creation failed: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, nil, fmt.Errorf("GCM creation failed: %w", err)
	}

	nonce = make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, nil, fmt.Errorf("nonce generation failed: %w", err)
	}

	ciphertext = gcm.Seal(nil, nonce, plaintext, additionalData)
	return ciphertext, nonce, nil
}

// DecryptLocal performs AES-256-GCM decryption with a locally held key
func DecryptLocal(ciphertext, key, nonce, additionalData []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("cipher creation failed: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("GCM creation failed: %w", err)
	}

	plaintext, err := gcm.Open(nil, nonce, ciphertext, additionalData)
	if err != nil {
		return nil, fmt.Errorf("decryption failed: %w", err)
	}

	return plaintext, nil
}

// DeriveKey derives a fixed-length key from a master secret and context info
func DeriveKey(masterKey, salt []byte, info string, length int) []byte {
	h := sha256.New()
	h.Write(masterKey)
	if salt != nil {
		h.Write(salt)
	}
	h.Write([]byte(info))
	hash := h.Sum(nil)

	if length <= len(hash) {
		return hash[:length]
	}

	result := make([]byte, length)
	copy(result, hash)
	for i := len(hash); i < length; i++ {
		result[i] = hash[i%len(hash)]
	}

	return result
}
