package auth

import (
	"testing"
	"time"

	"consulting-os/internal/config"

	"github.com/google/uuid"
)

func testConfig() *config.JWTConfig {
	return &config.JWTConfig{
		Secret:            "test-secret",
		Expiration:        24 * time.Hour,
		RefreshExpiration: 168 * time.Hour,
	}
}

func TestHashPassword(t *testing.T) {
	svc := NewService(testConfig())

	password := "testpassword123"
	hash, err := svc.HashPassword(password)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}

	if hash == "" {
		t.Error("Hash should not be empty")
	}

	if hash == password {
		t.Error("Hash should not equal the original password")
	}
}

func TestVerifyPassword(t *testing.T) {
	svc := NewService(testConfig())

	password := "testpassword123"
	hash, err := svc.HashPassword(password)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}

	// Test correct password
	err = svc.VerifyPassword(hash, password)
	if err != nil {
		t.Errorf("Should verify correct password, got error: %v", err)
	}

	// Test incorrect password
	err = svc.VerifyPassword(hash, "wrongpassword")
	if err == nil {
		t.Error("Should not verify incorrect password")
	}
}

func TestGenerateToken(t *testing.T) {
	svc := NewService(testConfig())

	token, jti, err := svc.GenerateToken(uuid.New(), "test@example.com", "consultant")
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}

	if token == "" {
		t.Error("Token should not be empty")
	}
	if jti == "" {
		t.Error("JTI should not be empty")
	}
}

func TestValidateToken(t *testing.T) {
	svc := NewService(testConfig())

	userID := uuid.New()
	email := "test@example.com"

	token, _, err := svc.GenerateToken(userID, email, "client")
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}

	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("Failed to validate token: %v", err)
	}

	if claims.UserID != userID {
		t.Errorf("Expected user ID %s, got %s", userID, claims.UserID)
	}

	if claims.Email != email {
		t.Errorf("Expected email %s, got %s", email, claims.Email)
	}

	if claims.Role != "client" {
		t.Errorf("Expected role client, got %s", claims.Role)
	}
}

func TestValidateExpiredToken(t *testing.T) {
	cfg := testConfig()
	cfg.Expiration = -1 * time.Hour // Already expired
	svc := NewService(cfg)

	token, _, err := svc.GenerateToken(uuid.New(), "test@example.com", "consultant")
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}

	if _, err := svc.ValidateToken(token); err == nil {
		t.Error("Should not validate an expired token")
	}
}

func TestValidateInvalidToken(t *testing.T) {
	svc := NewService(testConfig())

	if _, err := svc.ValidateToken("not-a-token"); err == nil {
		t.Error("Should not validate a malformed token")
	}
}

func TestExtractJTI(t *testing.T) {
	cfg := testConfig()
	cfg.Expiration = -1 * time.Hour
	svc := NewService(cfg)

	token, jti, err := svc.GenerateToken(uuid.New(), "test@example.com", "consultant")
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}

	// JTI extraction must work even for expired tokens
	extracted, err := svc.ExtractJTI(token)
	if err != nil {
		t.Fatalf("Failed to extract JTI: %v", err)
	}

	if extracted != jti {
		t.Errorf("Expected JTI %s, got %s", jti, extracted)
	}
}

func TestGenerateRandomToken(t *testing.T) {
	a, err := GenerateRandomToken(16)
	if err != nil {
		t.Fatalf("Failed to generate random token: %v", err)
	}
	b, err := GenerateRandomToken(16)
	if err != nil {
		t.Fatalf("Failed to generate random token: %v", err)
	}

	if a == b {
		t.Error("Two random tokens should not be equal")
	}
}
