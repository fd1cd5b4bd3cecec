package repository

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"consulting-os/internal/models"

	"github.com/google/uuid"
)

// UsageRepository handles AI usage log database operations
type UsageRepository struct {
	db *sql.DB
}

// NewUsageRepository creates a new usage repository
func NewUsageRepository(db *sql.DB) *UsageRepository {
	return &UsageRepository{db: db}
}

// Create appends a usage log entry
func (r *UsageRepository) Create(entry *models.AIUsageLog) error {
	query := `
		INSERT INTO ai_usage_logs (user_id, engagement_id, kind, model, input_tokens, output_tokens, cost_usd)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`

	err := r.db.QueryRow(
		query,
		entry.UserID,
		entry.EngagementID,
		entry.Kind,
		entry.Model,
		entry.InputTokens,
		entry.OutputTokens,
		entry.CostUSD,
	).Scan(&entry.ID, &entry.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create usage log: %w", err)
	}
	return nil
}

// ListByUser lists a user's usage entries within a time range, newest first
func (r *UsageRepository) ListByUser(userID uuid.UUID, from, to time.Time) ([]models.AIUsageLog, error) {
	query := `
		SELECT id, user_id, engagement_id, kind, model, input_tokens, output_tokens, cost_usd, created_at
		FROM ai_usage_logs
		WHERE user_id = $1 AND created_at >= $2 AND created_at < $3
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(query, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list usage logs: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("Failed to close rows", "error", err)
		}
	}()

	var entries []models.AIUsageLog
	for rows.Next() {
		var entry models.AIUsageLog
		if err := rows.Scan(
			&entry.ID,
			&entry.UserID,
			&entry.EngagementID,
			&entry.Kind,
			&entry.Model,
			&entry.InputTokens,
			&entry.OutputTokens,
			&entry.CostUSD,
			&entry.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan usage log: %w", err)
		}
		entry.TotalTokens = entry.InputTokens + entry.OutputTokens
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

// UsageTotal aggregates token counts and cost for one generation kind
type UsageTotal struct {
	Kind         string  `json:"kind"`
	Requests     int     `json:"requests"`
	InputTokens  int     `json:"input_tokens"`
	OutputTokens int     `json:"output_tokens"`
	TotalTokens  int     `json:"total_tokens"`
	CostUSD      float64 `json:"cost_usd"`
}

// SummarizeByUser aggregates a user's usage per kind within a time range
func (r *UsageRepository) SummarizeByUser(userID uuid.UUID, from, to time.Time) ([]UsageTotal, error) {
	query := `
		SELECT kind, COUNT(*), COALESCE(SUM(input_tokens), 0), COALESCE(SUM(output_tokens), 0), COALESCE(SUM(input_tokens + output_tokens), 0), COALESCE(SUM(cost_usd), 0)
		FROM ai_usage_logs
		WHERE user_id = $1 AND created_at >= $2 AND created_at < $3
		GROUP BY kind
		ORDER BY kind
	`

	rows, err := r.db.Query(query, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize usage: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("Failed to close rows", "error", err)
		}
	}()

	var totals []UsageTotal
	for rows.Next() {
		var t UsageTotal
		if err := rows.Scan(&t.Kind, &t.Requests, &t.InputTokens, &t.OutputTokens, &t.TotalTokens, &t.CostUSD); err != nil {
			return nil, fmt.Errorf("failed to scan usage total: %w", err)
		}
		totals = append(totals, t)
	}

	return totals, rows.Err()
}
