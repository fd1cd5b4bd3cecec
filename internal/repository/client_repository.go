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

var ErrClientNotFound = errors.New("client not found")

// ClientRepository handles client database operations
type ClientRepository struct {
	db *sql.DB
}

// NewClientRepository creates a new client repository
func NewClientRepository(db *sql.DB) *ClientRepository {
	return &ClientRepository{db: db}
}

const clientColumns = `id, consultant_id, user_id, company_name, contact_name, COALESCE(industry, ''),
	       status, onboarded_at, created_at, updated_at`

func scanClientRow(scan func(dest ...any) error) (*models.Client, error) {
	client := &models.Client{}
	err := scan(
		&client.ID,
		&client.ConsultantID,
		&client.UserID,
		&client.CompanyName,
		&client.ContactName,
		&client.Industry,
		&client.Status,
		&client.OnboardedAt,
		&client.CreatedAt,
		&client.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// Create creates a new client
func (r *ClientRepository) Create(client *models.Client) error {
	query := `
		INSERT INTO clients (consultant_id, user_id, company_name, contact_name, industry, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	now := time.Now()
	if client.Status == "" {
		client.Status = "prospect"
	}
	err := r.db.QueryRow(
		query,
		client.ConsultantID,
		client.UserID,
		client.CompanyName,
		client.ContactName,
		client.Industry,
		client.Status,
		now,
		now,
	).Scan(&client.ID)

	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	client.CreatedAt = now
	client.UpdatedAt = now
	return nil
}

// GetByID retrieves a client by ID
func (r *ClientRepository) GetByID(id uuid.UUID) (*models.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE id = $1`
	client, err := scanClientRow(r.db.QueryRow(query, id).Scan)
	if err == sql.ErrNoRows {
		return nil, ErrClientNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get client: %w", err)
	}
	return client, nil
}

// GetByUserID retrieves the client record linked to a portal user
func (r *ClientRepository) GetByUserID(userID uuid.UUID) (*models.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE user_id = $1`
	client, err := scanClientRow(r.db.QueryRow(query, userID).Scan)
	if err == sql.ErrNoRows {
		return nil, ErrClientNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get client: %w", err)
	}
	return client, nil
}

// ListByConsultant lists all clients of one consultant, newest first
func (r *ClientRepository) ListByConsultant(consultantID uuid.UUID) ([]models.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE consultant_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.Query(query, consultantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("Failed to close rows", "error", err)
		}
	}()

	var clients []models.Client
	for rows.Next() {
		client, err := scanClientRow(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan client: %w", err)
		}
		clients = append(clients, *client)
	}

	return clients, rows.Err()
}

// Update updates a client's editable fields
func (r *ClientRepository) Update(client *models.Client) error {
	query := `
		UPDATE clients
		SET company_name = $1, contact_name = $2, industry = $3, status = $4, user_id = $5, updated_at = $6
		WHERE id = $7
	`

	now := time.Now()
	result, err := r.db.Exec(
		query,
		client.CompanyName,
		client.ContactName,
		client.Industry,
		client.Status,
		client.UserID,
		now,
		client.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update client: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return ErrClientNotFound
	}

	client.UpdatedAt = now
	return nil
}

// MarkOnboarded stamps the client's onboarding time and activates the account
func (r *ClientRepository) MarkOnboarded(id uuid.UUID) error {
	query := `UPDATE clients SET status = 'active', onboarded_at = $1, updated_at = $1 WHERE id = $2`
	result, err := r.db.Exec(query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to mark client onboarded: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return ErrClientNotFound
	}
	return nil
}

// Delete removes a client and, via cascades, its engagements
func (r *ClientRepository) Delete(id uuid.UUID) error {
	result, err := r.db.Exec(`DELETE FROM clients WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete client: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return ErrClientNotFound
	}
	return nil
}
