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

var ErrActionNotFound = errors.New("action not found")

// ActionRepository handles action item database operations
type ActionRepository struct {
	db *sql.DB
}

// NewActionRepository creates a new action repository
func NewActionRepository(db *sql.DB) *ActionRepository {
	return &ActionRepository{db: db}
}

const actionColumns = `id, engagement_id, goal_id, session_id, title, COALESCE(description, ''), status, assigned_to, due_date, completed_at, created_at, updated_at`

func scanActionRow(scan func(dest ...any) error) (*models.Action, error) {
	action := &models.Action{}
	err := scan(
		&action.ID,
		&action.EngagementID,
		&action.GoalID,
		&action.SessionID,
		&action.Title,
		&action.Description,
		&action.Status,
		&action.AssignedTo,
		&action.DueDate,
		&action.CompletedAt,
		&action.CreatedAt,
		&action.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return action, nil
}

// Create creates a new action
func (r *ActionRepository) Create(action *models.Action) error {
	query := `
		INSERT INTO actions (engagement_id, goal_id, session_id, title, description, status, assigned_to, due_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`

	now := time.Now()
	if action.Status == "" {
		action.Status = "pending"
	}
	if action.AssignedTo == "" {
		action.AssignedTo = "client"
	}
	err := r.db.QueryRow(
		query,
		action.EngagementID,
		action.GoalID,
		action.SessionID,
		action.Title,
		action.Description,
		action.Status,
		action.AssignedTo,
		action.DueDate,
		now,
		now,
	).Scan(&action.ID)

	if err != nil {
		return fmt.Errorf("failed to create action: %w", err)
	}

	action.CreatedAt = now
	action.UpdatedAt = now
	return nil
}

// GetByID retrieves an action by ID
func (r *ActionRepository) GetByID(id uuid.UUID) (*models.Action, error) {
	query := `SELECT ` + actionColumns + ` FROM actions WHERE id = $1`
	action, err := scanActionRow(r.db.QueryRow(query, id).Scan)
	if err == sql.ErrNoRows {
		return nil, ErrActionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get action: %w", err)
	}
	return action, nil
}

// ListByEngagement lists all actions of an engagement, due soonest
// first with undated actions last
func (r *ActionRepository) ListByEngagement(engagementID uuid.UUID) ([]models.Action, error) {
	query := `SELECT ` + actionColumns + ` FROM actions WHERE engagement_id = $1 ORDER BY due_date ASC NULLS LAST, created_at ASC`
	return r.list(query, engagementID)
}

// ListByGoal lists actions linked to a goal
func (r *ActionRepository) ListByGoal(goalID uuid.UUID) ([]models.Action, error) {
	query := `SELECT ` + actionColumns + ` FROM actions WHERE goal_id = $1 ORDER BY created_at ASC`
	return r.list(query, goalID)
}

func (r *ActionRepository) list(query string, arg any) ([]models.Action, error) {
	rows, err := r.db.Query(query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to list actions: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("Failed to close rows", "error", err)
		}
	}()

	var actions []models.Action
	for rows.Next() {
		action, err := scanActionRow(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan action: %w", err)
		}
		actions = append(actions, *action)
	}

	return actions, rows.Err()
}

// Update updates an action's editable fields
func (r *ActionRepository) Update(action *models.Action) error {
	query := `
		UPDATE actions
		SET title = $1, description = $2, assigned_to = $3, goal_id = $4, due_date = $5, updated_at = $6
		WHERE id = $7
	`

	now := time.Now()
	result, err := r.db.Exec(
		query,
		action.Title,
		action.Description,
		action.AssignedTo,
		action.GoalID,
		action.DueDate,
		now,
		action.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update action: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return ErrActionNotFound
	}

	action.UpdatedAt = now
	return nil
}

// SetStatus transitions an action between pending and completed.
// completed_at is set whenever the status is completed and cleared otherwise.
func (r *ActionRepository) SetStatus(id uuid.UUID, status string, completedAt *time.Time) error {
	query := `UPDATE actions SET status = $1, completed_at = $2, updated_at = $3 WHERE id = $4`
	result, err := r.db.Exec(query, status, completedAt, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to set action status: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return ErrActionNotFound
	}
	return nil
}

// Delete removes an action
func (r *ActionRepository) Delete(id uuid.UUID) error {
	result, err := r.db.Exec(`DELETE FROM actions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete action: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return ErrActionNotFound
	}
	return nil
}
