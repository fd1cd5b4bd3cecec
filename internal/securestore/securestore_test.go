package securestore

import (
	"strings"
	"testing"

	"consulting-os/internal/keymanager"

	"github.com/google/uuid"
)

func newTestStore(t *testing.T) *SecureStore {
	t.Helper()
	km, err := keymanager.NewKeyManager(nil, nil, "test-master-secret")
	if err != nil {
		t.Fatalf("Failed to create key manager: %v", err)
	}
	return NewSecureStore(km)
}

func TestSealOpenRoundTrip(t *testing.T) {
	store := newTestStore(t)
	engagementID := uuid.New()

	plaintext := "Discussed pricing strategy. Client hesitant about phase two scope."
	sealed, err := store.Seal(engagementID, plaintext)
	if err != nil {
		t.Fatalf("Failed to seal: %v", err)
	}

	if sealed == plaintext || strings.Contains(sealed, "pricing") {
		t.Error("Sealed value should not contain plaintext")
	}

	opened, err := store.Open(engagementID, sealed)
	if err != nil {
		t.Fatalf("Failed to open: %v", err)
	}

	if opened != plaintext {
		t.Errorf("Expected %q, got %q", plaintext, opened)
	}
}

func TestOpenWithWrongEngagement(t *testing.T) {
	store := newTestStore(t)

	sealed, err := store.Seal(uuid.New(), "confidential notes")
	if err != nil {
		t.Fatalf("Failed to seal: %v", err)
	}

	// A different engagement has a different key and AAD
	if _, err := store.Open(uuid.New(), sealed); err == nil {
		t.Error("Should not open notes sealed for another engagement")
	}
}

func TestOpenMalformedValue(t *testing.T) {
	store := newTestStore(t)

	for _, sealed := range []string{"", "no-dot", "a.!!!not-base64!!!"} {
		if _, err := store.Open(uuid.New(), sealed); err == nil {
			t.Errorf("Should reject malformed value %q", sealed)
		}
	}
}

func TestSealProducesFreshNonce(t *testing.T) {
	store := newTestStore(t)
	engagementID := uuid.New()

	a, err := store.Seal(engagementID, "same input")
	if err != nil {
		t.Fatalf("Failed to seal: %v", err)
	}
	b, err := store.Seal(engagementID, "same input")
	if err != nil {
		t.Fatalf("Failed to seal: %v", err)
	}

	if a == b {
		t.Error("Two seals of the same input should differ")
	}
}
