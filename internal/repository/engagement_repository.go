package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"consulting-os/internal/models"

	"github.com/google/uuid"
)

var ErrEngagementNotFound = errors.New("engagement not found")

// EngagementParties identifies who may act on an engagement
type EngagementParties struct {
	EngagementID     uuid.UUID
	ClientID         uuid.UUID
	ConsultantUserID uuid.UUID
	ClientUserID     *uuid.UUID
}

// EngagementRepository handles engagement database operations
type EngagementRepository struct {
	db *sql.DB
}

// NewEngagementRepository creates a new engagement repository
func NewEngagementRepository(db *sql.DB) *EngagementRepository {
	return &EngagementRepository{db: db}
}

const engagementColumns = `id, client_id, title, COALESCE(description, ''), status, start_date, end_date, created_at, updated_at`

func scanEngagementRow(scan func(dest ...any) error) (*models.Engagement, error) {
	e := &models.Engagement{}
	err := scan(
		&e.ID,
		&e.ClientID,
		&e.Title,
		&e.Description,
		&e.Status,
		&e.StartDate,
		&e.EndDate,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// Create creates a new engagement
func (r *EngagementRepository) Create(engagement *models.Engagement) error {
	query := `
		INSERT INTO engagements (client_id, title, description, status, start_date, end_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	now := time.Now()
	if engagement.Status == "" {
		engagement.Status = "proposal"
	}
	err := r.db.QueryRow(
		query,
		engagement.ClientID,
		engagement.Title,
		engagement.Description,
		engagement.Status,
		engagement.StartDate,
		engagement.EndDate,
		now,
		now,
	).Scan(&engagement.ID)

	if err != nil {
		return fmt.Errorf("failed to create engagement: %w", err)
	}

	engagement.CreatedAt = now
	engagement.UpdatedAt = now
	return nil
}

// GetByID retrieves an engagement by ID
func (r *EngagementRepository) GetByID(id uuid.UUID) (*models.Engagement, error) {
	query := `SELECT ` + engagementColumns + ` FROM engagements WHERE id = $1`
	engagement, err := scanEngagementRow(r.db.QueryRow(query, id).Scan)
	if err == sql.ErrNoRows {
		return nil, ErrEngagementNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get engagement: %w", err)
	}
	return engagement, nil
}

// GetParties returns the consultant and client users attached to an engagement
func (r *EngagementRepository) GetParties(id uuid.UUID) (*EngagementParties, error) {
	query := `
		SELECT e.id, e.client_id, c.consultant_id, c.user_id
		FROM engagements e
		JOIN clients c ON c.id = e.client_id
		WHERE e.id = $1
	`

	parties := &EngagementParties{}
	err := r.db.QueryRow(query, id).Scan(
		&parties.EngagementID,
		&parties.ClientID,
		&parties.ConsultantUserID,
		&parties.ClientUserID,
	)
	if err == sql.ErrNoRows {
		return nil, ErrEngagementNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get engagement parties: %w", err)
	}
	return parties, nil
}

// ListByConsultant lists engagements across all of a consultant's clients
func (r *EngagementRepository) ListByConsultant(consultantID uuid.UUID) ([]models.EngagementWithClient, error) {
	query := `
		SELECT e.id, e.client_id, e.title, COALESCE(e.description, ''), e.status, e.start_date, e.end_date,
		       e.created_at, e.updated_at,
		       c.id, c.consultant_id, c.user_id, c.company_name, c.contact_name, COALESCE(c.industry, ''),
		       c.status, c.onboarded_at, c.created_at, c.updated_at
		FROM engagements e
		JOIN clients c ON c.id = e.client_id
		WHERE c.consultant_id = $1
		ORDER BY e.created_at DESC
	`
	return r.listWithClient(query, consultantID)
}

// ListByClientUser lists engagements visible to a client portal user
func (r *EngagementRepository) ListByClientUser(userID uuid.UUID) ([]models.EngagementWithClient, error) {
	query := `
		SELECT e.id, e.client_id, e.title, COALESCE(e.description, ''), e.status, e.start_date, e.end_date,
		       e.created_at, e.updated_at,
		       c.id, c.consultant_id, c.user_id, c.company_name, c.contact_name, COALESCE(c.industry, ''),
		       c.status, c.onboarded_at, c.created_at, c.updated_at
		FROM engagements e
		JOIN clients c ON c.id = e.client_id
		WHERE c.user_id = $1
		ORDER BY e.created_at DESC
	`
	return r.listWithClient(query, userID)
}

func (r *EngagementRepository) listWithClient(query string, arg any) ([]models.EngagementWithClient, error) {
	rows, err := r.db.Query(query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to list engagements: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("Failed to close rows", "error", err)
		}
	}()

	var engagements []models.EngagementWithClient
	for rows.Next() {
		var e models.EngagementWithClient
		if err := rows.Scan(
			&e.ID,
			&e.ClientID,
			&e.Title,
			&e.Description,
			&e.Status,
			&e.StartDate,
			&e.EndDate,
			&e.CreatedAt,
			&e.UpdatedAt,
			&e.Client.ID,
			&e.Client.ConsultantID,
			&e.Client.UserID,
			&e.Client.CompanyName,
			&e.Client.ContactName,
			&e.Client.Industry,
			&e.Client.Status,
			&e.Client.OnboardedAt,
			&e.Client.CreatedAt,
			&e.Client.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan engagement: %w", err)
		}
		engagements = append(engagements, e)
	}

	return engagements, rows.Err()
}

// Update updates an engagement's editable fields
func (r *EngagementRepository) Update(engagement *models.Engagement) error {
	query := `
		UPDATE engagements
		SET title = $1, description = $2, status = $3, start_date = $4, end_date = $5, updated_at = $6
		WHERE id = $7
	`

	now := time.Now()
	result, err := r.db.Exec(
		query,
		engagement.Title,
		engagement.Description,
		engagement.Status,
		engagement.StartDate,
		engagement.EndDate,
		now,
		engagement.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update engagement: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return ErrEngagementNotFound
	}

	engagement.UpdatedAt = now
	return nil
}

// UpdateStatus transitions an engagement to a new lifecycle status
func (r *EngagementRepository) UpdateStatus(id uuid.UUID, status string) error {
	query := `UPDATE engagements SET status = $1, updated_at = $2 WHERE id = $3`
	result, err := r.db.Exec(query, status, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update engagement status: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return ErrEngagementNotFound
	}
	return nil
}

// Delete removes an engagement and its dependent records
func (r *EngagementRepository) Delete(id uuid.UUID) error {
	result, err := r.db.Exec(`DELETE FROM engagements WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete engagement: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return ErrEngagementNotFound
	}
	return nil
}
