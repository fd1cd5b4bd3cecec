package repository

import (
	"database/sql"
	"fmt"
	"time"

	"consulting-os/internal/models"

	"github.com/google/uuid"
)

// AuthSessionRepository handles auth session database operations
type AuthSessionRepository struct {
	db *sql.DB
}

// NewAuthSessionRepository creates a new auth session repository
func NewAuthSessionRepository(db *sql.DB) *AuthSessionRepository {
	return &AuthSessionRepository{db: db}
}

// Create persists a new session row for an issued token
func (r *AuthSessionRepository) Create(session *models.AuthSession) error {
	query := `
		INSERT INTO auth_sessions (user_id, session_id, jti, token_type, expires_at, last_activity_at, ip_address, user_agent)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`

	err := r.db.QueryRow(
		query,
		session.UserID,
		session.SessionID,
		session.JTI,
		session.TokenType,
		session.ExpiresAt,
		time.Now(),
		session.IPAddress,
		session.UserAgent,
	).Scan(&session.ID, &session.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create auth session: %w", err)
	}
	return nil
}

// GetByJTI retrieves an unexpired session by token JTI
func (r *AuthSessionRepository) GetByJTI(jti string) (*models.AuthSession, error) {
	query := `
		SELECT id, user_id, session_id, jti, token_type, expires_at, last_activity_at, created_at,
		       COALESCE(ip_address, ''), COALESCE(user_agent, '')
		FROM auth_sessions
		WHERE jti = $1 AND expires_at > NOW()
	`

	session := &models.AuthSession{}
	err := r.db.QueryRow(query, jti).Scan(
		&session.ID,
		&session.UserID,
		&session.SessionID,
		&session.JTI,
		&session.TokenType,
		&session.ExpiresAt,
		&session.LastActivityAt,
		&session.CreatedAt,
		&session.IPAddress,
		&session.UserAgent,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get auth session: %w", err)
	}

	return session, nil
}

// UpdateActivity stamps the session's last activity time
func (r *AuthSessionRepository) UpdateActivity(jti string) error {
	query := `UPDATE auth_sessions SET last_activity_at = NOW() WHERE jti = $1`
	if _, err := r.db.Exec(query, jti); err != nil {
		return fmt.Errorf("failed to update session activity: %w", err)
	}
	return nil
}

// DeleteByJTI removes a single session, invalidating its token
func (r *AuthSessionRepository) DeleteByJTI(jti string) error {
	if _, err := r.db.Exec(`DELETE FROM auth_sessions WHERE jti = $1`, jti); err != nil {
		return fmt.Errorf("failed to delete auth session: %w", err)
	}
	return nil
}

// DeleteBySessionID removes all sessions from one login (access and refresh pair)
func (r *AuthSessionRepository) DeleteBySessionID(sessionID string) error {
	if _, err := r.db.Exec(`DELETE FROM auth_sessions WHERE session_id = $1`, sessionID); err != nil {
		return fmt.Errorf("failed to delete auth sessions: %w", err)
	}
	return nil
}

// DeleteByUserID removes all of a user's sessions
func (r *AuthSessionRepository) DeleteByUserID(userID uuid.UUID) error {
	if _, err := r.db.Exec(`DELETE FROM auth_sessions WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("failed to delete user sessions: %w", err)
	}
	return nil
}

// DeleteExpired purges expired sessions and returns the number removed
func (r *AuthSessionRepository) DeleteExpired() (int64, error) {
	result, err := r.db.Exec(`DELETE FROM auth_sessions WHERE expires_at <= NOW()`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	return result.RowsAffected()
}
