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

var ErrGoalNotFound = errors.New("goal not found")

// GoalRepository handles goal database operations
type GoalRepository struct {
	db *sql.DB
}

// NewGoalRepository creates a new goal repository
func NewGoalRepository(db *sql.DB) *GoalRepository {
	return &GoalRepository{db: db}
}

const goalColumns = `id, engagement_id, title, COALESCE(description, ''), status, target_value, current_value, unit, due_date, created_at, updated_at`

func scanGoalRow(scan func(dest ...any) error) (*models.Goal, error) {
	goal := &models.Goal{}
	err := scan(
		&goal.ID,
		&goal.EngagementID,
		&goal.Title,
		&goal.Description,
		&goal.Status,
		&goal.TargetValue,
		&goal.CurrentValue,
		&goal.Unit,
		&goal.DueDate,
		&goal.CreatedAt,
		&goal.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return goal, nil
}

// Create creates a new goal
func (r *GoalRepository) Create(goal *models.Goal) error {
	query := `
		INSERT INTO goals (engagement_id, title, description, status, target_value, current_value, unit, due_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`

	now := time.Now()
	if goal.Status == "" {
		goal.Status = "active"
	}
	err := r.db.QueryRow(
		query,
		goal.EngagementID,
		goal.Title,
		goal.Description,
		goal.Status,
		goal.TargetValue,
		goal.CurrentValue,
		goal.Unit,
		goal.DueDate,
		now,
		now,
	).Scan(&goal.ID)

	if err != nil {
		return fmt.Errorf("failed to create goal: %w", err)
	}

	goal.CreatedAt = now
	goal.UpdatedAt = now
	return nil
}

// GetByID retrieves a goal by ID
func (r *GoalRepository) GetByID(id uuid.UUID) (*models.Goal, error) {
	query := `SELECT ` + goalColumns + ` FROM goals WHERE id = $1`
	goal, err := scanGoalRow(r.db.QueryRow(query, id).Scan)
	if err == sql.ErrNoRows {
		return nil, ErrGoalNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get goal: %w", err)
	}
	return goal, nil
}

// ListByEngagement lists all goals of an engagement, oldest first
func (r *GoalRepository) ListByEngagement(engagementID uuid.UUID) ([]models.Goal, error) {
	query := `SELECT ` + goalColumns + ` FROM goals WHERE engagement_id = $1 ORDER BY created_at ASC`

	rows, err := r.db.Query(query, engagementID)
	if err != nil {
		return nil, fmt.Errorf("failed to list goals: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("Failed to close rows", "error", err)
		}
	}()

	var goals []models.Goal
	for rows.Next() {
		goal, err := scanGoalRow(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan goal: %w", err)
		}
		goals = append(goals, *goal)
	}

	return goals, rows.Err()
}

// Update updates a goal's editable fields
func (r *GoalRepository) Update(goal *models.Goal) error {
	query := `
		UPDATE goals
		SET title = $1, description = $2, status = $3, target_value = $4, current_value = $5, unit = $6, due_date = $7, updated_at = $8
		WHERE id = $9
	`

	now := time.Now()
	result, err := r.db.Exec(
		query,
		goal.Title,
		goal.Description,
		goal.Status,
		goal.TargetValue,
		goal.CurrentValue,
		goal.Unit,
		goal.DueDate,
		now,
		goal.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update goal: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return ErrGoalNotFound
	}

	goal.UpdatedAt = now
	return nil
}

// UpdateProgress sets the goal's current value
func (r *GoalRepository) UpdateProgress(id uuid.UUID, currentValue float64) error {
	query := `UPDATE goals SET current_value = $1, updated_at = $2 WHERE id = $3`
	result, err := r.db.Exec(query, currentValue, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update goal progress: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return ErrGoalNotFound
	}
	return nil
}

// Delete removes a goal
func (r *GoalRepository) Delete(id uuid.UUID) error {
	result, err := r.db.Exec(`DELETE FROM goals WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete goal: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return ErrGoalNotFound
	}
	return nil
}
