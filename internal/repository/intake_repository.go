package repository

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"consulting-os/internal/models"

	"github.com/google/uuid"
)

var ErrIntakeFormNotFound = errors.New("intake form not found")

// IntakeRepository handles intake form database operations.
// Responses are stored as a JSONB array to preserve question order.
type IntakeRepository struct {
	db *sql.DB
}

// NewIntakeRepository creates a new intake repository
func NewIntakeRepository(db *sql.DB) *IntakeRepository {
	return &IntakeRepository{db: db}
}

func scanIntakeRow(scan func(dest ...any) error) (*models.IntakeForm, error) {
	form := &models.IntakeForm{}
	var responses []byte
	err := scan(
		&form.ID,
		&form.ClientID,
		&responses,
		&form.Status,
		&form.CompletedAt,
		&form.CreatedAt,
		&form.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(responses, &form.Responses); err != nil {
		return nil, fmt.Errorf("failed to decode intake responses: %w", err)
	}
	return form, nil
}

// Create creates a new intake form
func (r *IntakeRepository) Create(form *models.IntakeForm) error {
	responses, err := json.Marshal(form.Responses)
	if err != nil {
		return fmt.Errorf("failed to encode intake responses: %w", err)
	}

	query := `
		INSERT INTO intake_forms (client_id, responses, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	now := time.Now()
	if form.Status == "" {
		form.Status = "pending"
	}
	if err := r.db.QueryRow(query, form.ClientID, responses, form.Status, now, now).Scan(&form.ID); err != nil {
		return fmt.Errorf("failed to create intake form: %w", err)
	}

	form.CreatedAt = now
	form.UpdatedAt = now
	return nil
}

// GetByID retrieves an intake form by ID
func (r *IntakeRepository) GetByID(id uuid.UUID) (*models.IntakeForm, error) {
	query := `
		SELECT id, client_id, responses, status, completed_at, created_at, updated_at
		FROM intake_forms
		WHERE id = $1
	`
	form, err := scanIntakeRow(r.db.QueryRow(query, id).Scan)
	if err == sql.ErrNoRows {
		return nil, ErrIntakeFormNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get intake form: %w", err)
	}
	return form, nil
}

// GetLatestByClient retrieves the client's most recent intake form, or nil
func (r *IntakeRepository) GetLatestByClient(clientID uuid.UUID) (*models.IntakeForm, error) {
	query := `
		SELECT id, client_id, responses, status, completed_at, created_at, updated_at
		FROM intake_forms
		WHERE client_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`
	form, err := scanIntakeRow(r.db.QueryRow(query, clientID).Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get intake form: %w", err)
	}
	return form, nil
}

// UpdateResponses replaces the stored answers
func (r *IntakeRepository) UpdateResponses(form *models.IntakeForm) error {
	responses, err := json.Marshal(form.Responses)
	if err != nil {
		return fmt.Errorf("failed to encode intake responses: %w", err)
	}

	query := `UPDATE intake_forms SET responses = $1, updated_at = $2 WHERE id = $3`
	now := time.Now()
	result, err := r.db.Exec(query, responses, now, form.ID)
	if err != nil {
		return fmt.Errorf("failed to update intake form: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return ErrIntakeFormNotFound
	}

	form.UpdatedAt = now
	return nil
}

// MarkCompleted stamps the form as completed
func (r *IntakeRepository) MarkCompleted(id uuid.UUID) error {
	query := `UPDATE intake_forms SET status = 'completed', completed_at = $1, updated_at = $1 WHERE id = $2`
	result, err := r.db.Exec(query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to complete intake form: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return ErrIntakeFormNotFound
	}
	return nil
}
