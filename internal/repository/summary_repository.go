package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"consulting-os/internal/models"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

var ErrSummaryNotFound = errors.New("session summary not found")

// SummaryRepository handles session summary database operations
type SummaryRepository struct {
	db *sql.DB
}

// NewSummaryRepository creates a new summary repository
func NewSummaryRepository(db *sql.DB) *SummaryRepository {
	return &SummaryRepository{db: db}
}

const summaryColumns = `id, session_id, content, key_takeaways, next_steps, status, generated, ai_generated_at, approved_by, approved_at, published_at, created_at, updated_at`

func scanSummaryRow(scan func(dest ...any) error) (*models.SessionSummary, error) {
	summary := &models.SessionSummary{}
	err := scan(
		&summary.ID,
		&summary.SessionID,
		&summary.Content,
		pq.Array(&summary.KeyTakeaways),
		pq.Array(&summary.NextSteps),
		&summary.Status,
		&summary.Generated,
		&summary.AIGeneratedAt,
		&summary.ApprovedBy,
		&summary.ApprovedAt,
		&summary.PublishedAt,
		&summary.CreatedAt,
		&summary.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return summary, nil
}

// Create creates a new session summary
func (r *SummaryRepository) Create(summary *models.SessionSummary) error {
	query := `
		INSERT INTO session_summaries (session_id, content, key_takeaways, next_steps, status, generated, ai_generated_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`

	now := time.Now()
	if summary.Status == "" {
		summary.Status = "draft"
	}
	err := r.db.QueryRow(
		query,
		summary.SessionID,
		summary.Content,
		pq.Array(summary.KeyTakeaways),
		pq.Array(summary.NextSteps),
		summary.Status,
		summary.Generated,
		summary.AIGeneratedAt,
		now,
		now,
	).Scan(&summary.ID)

	if err != nil {
		return fmt.Errorf("failed to create session summary: %w", err)
	}

	summary.CreatedAt = now
	summary.UpdatedAt = now
	return nil
}

// GetByID retrieves a summary by ID
func (r *SummaryRepository) GetByID(id uuid.UUID) (*models.SessionSummary, error) {
	query := `SELECT ` + summaryColumns + ` FROM session_summaries WHERE id = $1`
	summary, err := scanSummaryRow(r.db.QueryRow(query, id).Scan)
	if err == sql.ErrNoRows {
		return nil, ErrSummaryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session summary: %w", err)
	}
	return summary, nil
}

// ListBySession lists all summaries of a session, newest first
func (r *SummaryRepository) ListBySession(sessionID uuid.UUID) ([]models.SessionSummary, error) {
	query := `SELECT ` + summaryColumns + ` FROM session_summaries WHERE session_id = $1 ORDER BY created_at DESC`
	return r.list(query, sessionID)
}

// ListPublishedBySession lists only published summaries of a session
func (r *SummaryRepository) ListPublishedBySession(sessionID uuid.UUID) ([]models.SessionSummary, error) {
	query := `SELECT ` + summaryColumns + ` FROM session_summaries WHERE session_id = $1 AND status = 'published' ORDER BY created_at DESC`
	return r.list(query, sessionID)
}

func (r *SummaryRepository) list(query string, arg any) ([]models.SessionSummary, error) {
	rows, err := r.db.Query(query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to list session summaries: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("Failed to close rows", "error", err)
		}
	}()

	var summaries []models.SessionSummary
	for rows.Next() {
		summary, err := scanSummaryRow(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session summary: %w", err)
		}
		summaries = append(summaries, *summary)
	}

	return summaries, rows.Err()
}

// UpdateContent replaces the summary body while it's still editable
func (r *SummaryRepository) UpdateContent(summary *models.SessionSummary) error {
	query := `
		UPDATE session_summaries
		SET content = $1, key_takeaways = $2, next_steps = $3, updated_at = $4
		WHERE id = $5
	`

	now := time.Now()
	result, err := r.db.Exec(
		query,
		summary.Content,
		pq.Array(summary.KeyTakeaways),
		pq.Array(summary.NextSteps),
		now,
		summary.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update session summary: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return ErrSummaryNotFound
	}

	summary.UpdatedAt = now
	return nil
}

// MarkApproved transitions a draft summary to approved, recording who
// approved it
func (r *SummaryRepository) MarkApproved(id, approvedBy uuid.UUID) error {
	query := `UPDATE session_summaries SET status = 'approved', approved_by = $1, approved_at = $2, updated_at = $2 WHERE id = $3`
	result, err := r.db.Exec(query, approvedBy, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to approve session summary: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return ErrSummaryNotFound
	}
	return nil
}

// MarkPublished transitions an approved summary to published
func (r *SummaryRepository) MarkPublished(id uuid.UUID) error {
	query := `UPDATE session_summaries SET status = 'published', published_at = $1, updated_at = $1 WHERE id = $2`
	result, err := r.db.Exec(query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to publish session summary: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return ErrSummaryNotFound
	}
	return nil
}

// Delete removes a summary
func (r *SummaryRepository) Delete(id uuid.UUID) error {
	result, err := r.db.Exec(`DELETE FROM session_summaries WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete session summary: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return ErrSummaryNotFound
	}
	return nil
}
