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

var ErrSessionNotFound = errors.New("session not found")

// SessionRepository handles consulting session database operations
type SessionRepository struct {
	db *sql.DB
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

const sessionColumns = `id, engagement_id, session_number, title, scheduled_at, duration_minutes, status, created_at, updated_at`

func scanSessionRow(scan func(dest ...any) error) (*models.Session, error) {
	session := &models.Session{}
	err := scan(
		&session.ID,
		&session.EngagementID,
		&session.SessionNumber,
		&session.Title,
		&session.ScheduledAt,
		&session.DurationMinutes,
		&session.Status,
		&session.CreatedAt,
		&session.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return session, nil
}

// Create creates a new session with the next sequential number for
// its engagement
func (r *SessionRepository) Create(session *models.Session) error {
	query := `
		INSERT INTO sessions (engagement_id, session_number, title, scheduled_at, duration_minutes, status, created_at, updated_at)
		VALUES ($1,
		        (SELECT COALESCE(MAX(session_number), 0) + 1 FROM sessions WHERE engagement_id = $1),
		        $2, $3, $4, $5, $6, $7)
		RETURNING id, session_number
	`

	now := time.Now()
	if session.Status == "" {
		session.Status = "scheduled"
	}
	if session.DurationMinutes == 0 {
		session.DurationMinutes = 60
	}
	err := r.db.QueryRow(
		query,
		session.EngagementID,
		session.Title,
		session.ScheduledAt,
		session.DurationMinutes,
		session.Status,
		now,
		now,
	).Scan(&session.ID, &session.SessionNumber)

	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	session.CreatedAt = now
	session.UpdatedAt = now
	return nil
}

// GetByID retrieves a session by ID. Notes are fetched separately
// because they are stored encrypted.
func (r *SessionRepository) GetByID(id uuid.UUID) (*models.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE id = $1`
	session, err := scanSessionRow(r.db.QueryRow(query, id).Scan)
	if err == sql.ErrNoRows {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return session, nil
}

// ListByEngagement lists all sessions of an engagement, most recent first
func (r *SessionRepository) ListByEngagement(engagementID uuid.UUID) ([]models.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE engagement_id = $1 ORDER BY scheduled_at DESC`

	rows, err := r.db.Query(query, engagementID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("Failed to close rows", "error", err)
		}
	}()

	var sessions []models.Session
	for rows.Next() {
		session, err := scanSessionRow(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, *session)
	}

	return sessions, rows.Err()
}

// ListUpcoming lists scheduled sessions starting within the given window,
// joined with the engagement parties needed for reminder emails.
func (r *SessionRepository) ListUpcoming(from, until time.Time) ([]models.Session, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM sessions
		WHERE status = 'scheduled' AND scheduled_at >= $1 AND scheduled_at < $2
		ORDER BY scheduled_at ASC
	`

	rows, err := r.db.Query(query, from, until)
	if err != nil {
		return nil, fmt.Errorf("failed to list upcoming sessions: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("Failed to close rows", "error", err)
		}
	}()

	var sessions []models.Session
	for rows.Next() {
		session, err := scanSessionRow(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, *session)
	}

	return sessions, rows.Err()
}

// Update updates a session's editable fields
func (r *SessionRepository) Update(session *models.Session) error {
	query := `
		UPDATE sessions
		SET title = $1, scheduled_at = $2, duration_minutes = $3, status = $4, updated_at = $5
		WHERE id = $6
	`

	now := time.Now()
	result, err := r.db.Exec(
		query,
		session.Title,
		session.ScheduledAt,
		session.DurationMinutes,
		session.Status,
		now,
		session.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return ErrSessionNotFound
	}

	session.UpdatedAt = now
	return nil
}

// GetNotesCiphertext returns the encrypted session notes, or empty when unset
func (r *SessionRepository) GetNotesCiphertext(id uuid.UUID) (string, error) {
	var ciphertext sql.NullString
	err := r.db.QueryRow(`SELECT notes_ciphertext FROM sessions WHERE id = $1`, id).Scan(&ciphertext)
	if err == sql.ErrNoRows {
		return "", ErrSessionNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get session notes: %w", err)
	}
	return ciphertext.String, nil
}

// UpdateNotesCiphertext stores the encrypted session notes
func (r *SessionRepository) UpdateNotesCiphertext(id uuid.UUID, ciphertext string) error {
	query := `UPDATE sessions SET notes_ciphertext = $1, updated_at = $2 WHERE id = $3`
	result, err := r.db.Exec(query, ciphertext, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update session notes: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// Delete removes a session
func (r *SessionRepository) Delete(id uuid.UUID) error {
	result, err := r.db.Exec(`DELETE FROM sessions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return ErrSessionNotFound
	}
	return nil
}
