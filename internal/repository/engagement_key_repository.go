package repository

import (
	"database/sql"
	"fmt"

	"consulting-os/internal/models"

	"github.com/google/uuid"
)

// EngagementKeyRepository stores wrapped data keys for engagements
type EngagementKeyRepository struct {
	db *sql.DB
}

// NewEngagementKeyRepository creates a new engagement key repository
func NewEngagementKeyRepository(db *sql.DB) *EngagementKeyRepository {
	return &EngagementKeyRepository{db: db}
}

// Get returns the wrapped key for an engagement, or nil when none exists
func (r *EngagementKeyRepository) Get(engagementID uuid.UUID) (*models.EngagementKey, error) {
	query := `SELECT engagement_id, wrapped_key, created_at FROM engagement_keys WHERE engagement_id = $1`

	key := &models.EngagementKey{}
	err := r.db.QueryRow(query, engagementID).Scan(&key.EngagementID, &key.WrappedKey, &key.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get engagement key: %w", err)
	}
	return key, nil
}

// Save stores the wrapped key for an engagement. Keys are immutable
// once written, so conflicts keep the existing row.
func (r *EngagementKeyRepository) Save(key *models.EngagementKey) error {
	query := `
		INSERT INTO engagement_keys (engagement_id, wrapped_key)
		VALUES ($1, $2)
		ON CONFLICT (engagement_id) DO NOTHING
	`

	if _, err := r.db.Exec(query, key.EngagementID, key.WrappedKey); err != nil {
		return fmt.Errorf("failed to save engagement key: %w", err)
	}
	return nil
}
