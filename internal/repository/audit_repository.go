package repository

import (
	"database/sql"
	"fmt"
	"log/slog"

	"consulting-os/internal/models"
)

// AuditRepository handles audit log database operations
type AuditRepository struct {
	db *sql.DB
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(db *sql.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// Create inserts an audit log entry
func (r *AuditRepository) Create(entry *models.AuditLog) error {
	query := `
		INSERT INTO audit_logs (user_id, user_email, action, resource, details, ip_address, user_agent)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`

	err := r.db.QueryRow(
		query,
		entry.UserID,
		entry.UserEmail,
		entry.Action,
		entry.Resource,
		entry.Details,
		entry.IPAddress,
		entry.UserAgent,
	).Scan(&entry.ID, &entry.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create audit log: %w", err)
	}
	return nil
}

// ListRecent returns the most recent audit entries, newest first
func (r *AuditRepository) ListRecent(limit int) ([]models.AuditLog, error) {
	query := `
		SELECT id, user_id, user_email, action, resource, COALESCE(details, ''),
		       COALESCE(ip_address, ''), COALESCE(user_agent, ''), created_at
		FROM audit_logs
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit logs: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("Failed to close rows", "error", err)
		}
	}()

	var entries []models.AuditLog
	for rows.Next() {
		var entry models.AuditLog
		if err := rows.Scan(
			&entry.ID,
			&entry.UserID,
			&entry.UserEmail,
			&entry.Action,
			&entry.Resource,
			&entry.Details,
			&entry.IPAddress,
			&entry.UserAgent,
			&entry.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan audit log: %w", err)
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}
