package service

import (
	"fmt"
	"time"

	"consulting-os/internal/models"
	"consulting-os/internal/repository"

	"github.com/google/uuid"
)

// ActionService handles action item business logic
type ActionService struct {
	actionRepo     *repository.ActionRepository
	engagementRepo *repository.EngagementRepository
	publisher      Publisher
}

// NewActionService creates a new action service
func NewActionService(
	actionRepo *repository.ActionRepository,
	engagementRepo *repository.EngagementRepository,
	publisher Publisher,
) *ActionService {
	return &ActionService{
		actionRepo:     actionRepo,
		engagementRepo: engagementRepo,
		publisher:      publisher,
	}
}

// CreateAction adds an action to an engagement. Either party may create
// actions for themselves or the other side.
func (s *ActionService) CreateAction(userID uuid.UUID, action *models.Action) (*models.Action, error) {
	if action.Title == "" {
		return nil, fmt.Errorf("title is required")
	}
	switch action.AssignedTo {
	case "consultant", "client":
	default:
		return nil, fmt.Errorf("invalid assignee: %s", action.AssignedTo)
	}
	if _, err := authorizeEngagement(s.engagementRepo, action.EngagementID, userID); err != nil {
		return nil, err
	}

	action.Status = "pending"

	if err := s.actionRepo.Create(action); err != nil {
		return nil, fmt.Errorf("failed to create action: %w", err)
	}

	publish(s.publisher, action.EngagementID, "action.created", action)

	return action, nil
}

// ListActions lists an engagement's actions for either party
func (s *ActionService) ListActions(userID, engagementID uuid.UUID) ([]models.Action, error) {
	if _, err := authorizeEngagement(s.engagementRepo, engagementID, userID); err != nil {
		return nil, err
	}
	return s.actionRepo.ListByEngagement(engagementID)
}

// ToggleStatus flips an action between pending and completed. Completing
// stamps completed_at; reopening clears it. Either party may toggle.
func (s *ActionService) ToggleStatus(userID, actionID uuid.UUID) (*models.Action, error) {
	action, err := s.actionRepo.GetByID(actionID)
	if err != nil {
		return nil, err
	}
	if _, err := authorizeEngagement(s.engagementRepo, action.EngagementID, userID); err != nil {
		return nil, err
	}

	newStatus, completedAt := ToggledActionStatus(action.Status, time.Now())

	if err := s.actionRepo.SetStatus(actionID, newStatus, completedAt); err != nil {
		return nil, fmt.Errorf("failed to toggle action: %w", err)
	}

	action.Status = newStatus
	action.CompletedAt = completedAt

	publish(s.publisher, action.EngagementID, "action.updated", action)

	return action, nil
}

// ToggledActionStatus computes the toggle result: completed reopens to
// pending with no completion time, anything else completes now.
func ToggledActionStatus(current string, now time.Time) (string, *time.Time) {
	if current == "completed" {
		return "pending", nil
	}
	return "completed", &now
}

// UpdateAction updates an action's fields. Either party may edit.
func (s *ActionService) UpdateAction(userID uuid.UUID, updated *models.Action) (*models.Action, error) {
	action, err := s.actionRepo.GetByID(updated.ID)
	if err != nil {
		return nil, err
	}
	if _, err := authorizeEngagement(s.engagementRepo, action.EngagementID, userID); err != nil {
		return nil, err
	}

	action.Title = updated.Title
	action.Description = updated.Description
	action.DueDate = updated.DueDate
	action.GoalID = updated.GoalID
	if updated.AssignedTo != "" {
		switch updated.AssignedTo {
		case "consultant", "client":
			action.AssignedTo = updated.AssignedTo
		default:
			return nil, fmt.Errorf("invalid assignee: %s", updated.AssignedTo)
		}
	}

	if err := s.actionRepo.Update(action); err != nil {
		return nil, fmt.Errorf("failed to update action: %w", err)
	}

	publish(s.publisher, action.EngagementID, "action.updated", action)

	return action, nil
}

// DeleteAction removes an action. Either party may delete.
func (s *ActionService) DeleteAction(userID, actionID uuid.UUID) error {
	action, err := s.actionRepo.GetByID(actionID)
	if err != nil {
		return err
	}
	if _, err := authorizeEngagement(s.engagementRepo, action.EngagementID, userID); err != nil {
		return err
	}
	return s.actionRepo.Delete(actionID)
}
