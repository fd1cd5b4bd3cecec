package repository

import (
	"database/sql"
	"fmt"
	"log/slog"

	"consulting-os/internal/models"

	"github.com/google/uuid"
)

// MessageRepository handles engagement message database operations
type MessageRepository struct {
	db *sql.DB
}

// NewMessageRepository creates a new message repository
func NewMessageRepository(db *sql.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// Create persists a new message
func (r *MessageRepository) Create(message *models.Message) error {
	query := `
		INSERT INTO messages (engagement_id, sender_id, body)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	err := r.db.QueryRow(
		query,
		message.EngagementID,
		message.SenderID,
		message.Body,
	).Scan(&message.ID, &message.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}
	return nil
}

// ListByEngagement lists the engagement thread in chronological order
func (r *MessageRepository) ListByEngagement(engagementID uuid.UUID) ([]models.MessageWithSender, error) {
	query := `
		SELECT m.id, m.engagement_id, m.sender_id, m.body, m.read_at, m.created_at,
		       u.full_name, u.role
		FROM messages m
		JOIN users u ON u.id = m.sender_id
		WHERE m.engagement_id = $1
		ORDER BY m.created_at ASC
	`

	rows, err := r.db.Query(query, engagementID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("Failed to close rows", "error", err)
		}
	}()

	var messages []models.MessageWithSender
	for rows.Next() {
		var m models.MessageWithSender
		if err := rows.Scan(
			&m.ID,
			&m.EngagementID,
			&m.SenderID,
			&m.Body,
			&m.ReadAt,
			&m.CreatedAt,
			&m.SenderName,
			&m.SenderRole,
		); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, m)
	}

	return messages, rows.Err()
}

// MarkRead marks all messages in the thread not sent by the reader as read
func (r *MessageRepository) MarkRead(engagementID, readerID uuid.UUID) (int64, error) {
	query := `
		UPDATE messages
		SET read_at = NOW()
		WHERE engagement_id = $1 AND sender_id <> $2 AND read_at IS NULL
	`

	result, err := r.db.Exec(query, engagementID, readerID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark messages read: %w", err)
	}
	return result.RowsAffected()
}

// CountUnread counts unread messages addressed to the given user on an engagement
func (r *MessageRepository) CountUnread(engagementID, userID uuid.UUID) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM messages
		WHERE engagement_id = $1 AND sender_id <> $2 AND read_at IS NULL
	`

	var count int
	if err := r.db.QueryRow(query, engagementID, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count unread messages: %w", err)
	}
	return count, nil
}

// UnreadCount holds per-user unread message totals for the digest job
type UnreadCount struct {
	UserID uuid.UUID
	Email  string
	Name   string
	Count  int
}

// ListUnreadTotals aggregates unread messages per recipient across all
// engagements. Each thread has exactly two parties, so the recipient is
// whichever engagement user did not send the message.
func (r *MessageRepository) ListUnreadTotals() ([]UnreadCount, error) {
	query := `
		SELECT u.id, u.email, u.full_name, COUNT(*)
		FROM messages m
		JOIN engagements e ON e.id = m.engagement_id
		JOIN clients c ON c.id = e.client_id
		JOIN users u ON u.id = CASE WHEN m.sender_id = c.consultant_id THEN c.user_id ELSE c.consultant_id END
		WHERE m.read_at IS NULL
		GROUP BY u.id, u.email, u.full_name
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list unread totals: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("Failed to close rows", "error", err)
		}
	}()

	var totals []UnreadCount
	for rows.Next() {
		var t UnreadCount
		if err := rows.Scan(&t.UserID, &t.Email, &t.Name, &t.Count); err != nil {
			return nil, fmt.Errorf("failed to scan unread total: %w", err)
		}
		totals = append(totals, t)
	}

	return totals, rows.Err()
}
