package service

import (
	"fmt"

	"consulting-os/internal/models"
	"consulting-os/internal/repository"

	"github.com/google/uuid"
)

// GoalService handles goal business logic
type GoalService struct {
	goalRepo       *repository.GoalRepository
	engagementRepo *repository.EngagementRepository
	publisher      Publisher
}

// NewGoalService creates a new goal service
func NewGoalService(
	goalRepo *repository.GoalRepository,
	engagementRepo *repository.EngagementRepository,
	publisher Publisher,
) *GoalService {
	return &GoalService{
		goalRepo:       goalRepo,
		engagementRepo: engagementRepo,
		publisher:      publisher,
	}
}

// CreateGoal adds a goal to an engagement (consultant only)
func (s *GoalService) CreateGoal(consultantID uuid.UUID, goal *models.Goal) (*models.Goal, error) {
	if goal.Title == "" {
		return nil, fmt.Errorf("title is required")
	}
	if _, err := authorizeConsultant(s.engagementRepo, goal.EngagementID, consultantID); err != nil {
		return nil, err
	}

	goal.Status = "active"

	if err := s.goalRepo.Create(goal); err != nil {
		return nil, fmt.Errorf("failed to create goal: %w", err)
	}

	publish(s.publisher, goal.EngagementID, "goal.created", goal)

	return goal, nil
}

// ListGoals lists an engagement's goals for either party
func (s *GoalService) ListGoals(userID, engagementID uuid.UUID) ([]models.Goal, error) {
	if _, err := authorizeEngagement(s.engagementRepo, engagementID, userID); err != nil {
		return nil, err
	}
	return s.goalRepo.ListByEngagement(engagementID)
}

// UpdateGoal updates a goal's fields (consultant only)
func (s *GoalService) UpdateGoal(consultantID uuid.UUID, updated *models.Goal) (*models.Goal, error) {
	goal, err := s.goalRepo.GetByID(updated.ID)
	if err != nil {
		return nil, err
	}
	if _, err := authorizeConsultant(s.engagementRepo, goal.EngagementID, consultantID); err != nil {
		return nil, err
	}

	goal.Title = updated.Title
	goal.Description = updated.Description
	goal.TargetValue = updated.TargetValue
	goal.CurrentValue = updated.CurrentValue
	goal.Unit = updated.Unit
	goal.DueDate = updated.DueDate
	if updated.Status != "" {
		switch updated.Status {
		case "active", "achieved", "abandoned":
			goal.Status = updated.Status
		default:
			return nil, fmt.Errorf("invalid goal status: %s", updated.Status)
		}
	}

	if err := s.goalRepo.Update(goal); err != nil {
		return nil, fmt.Errorf("failed to update goal: %w", err)
	}

	publish(s.publisher, goal.EngagementID, "goal.updated", goal)

	return goal, nil
}

// UpdateProgress records the goal's current measured value. Either party
// may report progress.
func (s *GoalService) UpdateProgress(userID, goalID uuid.UUID, currentValue float64) (*models.Goal, error) {
	goal, err := s.goalRepo.GetByID(goalID)
	if err != nil {
		return nil, err
	}
	if _, err := authorizeEngagement(s.engagementRepo, goal.EngagementID, userID); err != nil {
		return nil, err
	}

	if err := s.goalRepo.UpdateProgress(goalID, currentValue); err != nil {
		return nil, fmt.Errorf("failed to update progress: %w", err)
	}
	goal.CurrentValue = &currentValue

	publish(s.publisher, goal.EngagementID, "goal.updated", goal)

	return goal, nil
}

// DeleteGoal removes a goal (consultant only)
func (s *GoalService) DeleteGoal(consultantID, goalID uuid.UUID) error {
	goal, err := s.goalRepo.GetByID(goalID)
	if err != nil {
		return err
	}
	if _, err := authorizeConsultant(s.engagementRepo, goal.EngagementID, consultantID); err != nil {
		return err
	}
	return s.goalRepo.Delete(goalID)
}
