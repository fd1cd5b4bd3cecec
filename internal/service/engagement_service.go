package service

import (
	"fmt"
	"log/slog"

	"consulting-os/internal/models"
	"consulting-os/internal/repository"

	"github.com/google/uuid"
)

// Publisher pushes realtime events to connected clients. State transitions
// never depend on delivery; a nil-safe no-op implementation is acceptable.
type Publisher interface {
	Publish(engagementID uuid.UUID, event string, data any)
}

// EngagementService handles engagement business logic
type EngagementService struct {
	engagementRepo *repository.EngagementRepository
	clientRepo     *repository.ClientRepository
	goalRepo       *repository.GoalRepository
	actionRepo     *repository.ActionRepository
	sessionRepo    *repository.SessionRepository
	auditRepo      *repository.AuditRepository
}

// NewEngagementService creates a new engagement service
func NewEngagementService(
	engagementRepo *repository.EngagementRepository,
	clientRepo *repository.ClientRepository,
	goalRepo *repository.GoalRepository,
	actionRepo *repository.ActionRepository,
	sessionRepo *repository.SessionRepository,
	auditRepo *repository.AuditRepository,
) *EngagementService {
	return &EngagementService{
		engagementRepo: engagementRepo,
		clientRepo:     clientRepo,
		goalRepo:       goalRepo,
		actionRepo:     actionRepo,
		sessionRepo:    sessionRepo,
		auditRepo:      auditRepo,
	}
}

// CreateEngagement opens a new engagement for one of the consultant's
// clients. New engagements start in the proposal stage.
func (s *EngagementService) CreateEngagement(consultantID uuid.UUID, engagement *models.Engagement) (*models.Engagement, error) {
	if engagement.Title == "" {
		return nil, fmt.Errorf("title is required")
	}

	client, err := s.clientRepo.GetByID(engagement.ClientID)
	if err != nil {
		return nil, err
	}
	if client.ConsultantID != consultantID {
		return nil, fmt.Errorf("permission denied: client belongs to another consultant")
	}

	engagement.Status = "proposal"

	if err := s.engagementRepo.Create(engagement); err != nil {
		return nil, fmt.Errorf("failed to create engagement: %w", err)
	}

	s.audit(&consultantID, "create", "engagement", fmt.Sprintf("Created engagement %s for client %s", engagement.ID, engagement.ClientID))

	return engagement, nil
}

// GetEngagement returns an engagement with its working set. Both parties
// may read it.
func (s *EngagementService) GetEngagement(userID, engagementID uuid.UUID) (*models.EngagementDetail, error) {
	parties, err := authorizeEngagement(s.engagementRepo, engagementID, userID)
	if err != nil {
		return nil, err
	}

	engagement, err := s.engagementRepo.GetByID(engagementID)
	if err != nil {
		return nil, err
	}
	client, err := s.clientRepo.GetByID(parties.ClientID)
	if err != nil {
		return nil, err
	}

	detail := &models.EngagementDetail{
		Engagement: *engagement,
		Client:     *client,
	}

	if detail.Goals, err = s.goalRepo.ListByEngagement(engagementID); err != nil {
		return nil, err
	}
	if detail.Actions, err = s.actionRepo.ListByEngagement(engagementID); err != nil {
		return nil, err
	}
	if detail.Sessions, err = s.sessionRepo.ListByEngagement(engagementID); err != nil {
		return nil, err
	}

	return detail, nil
}

// ListEngagements lists engagements visible to the user based on role
func (s *EngagementService) ListEngagements(userID uuid.UUID, role string) ([]models.EngagementWithClient, error) {
	if role == "client" {
		return s.engagementRepo.ListByClientUser(userID)
	}
	return s.engagementRepo.ListByConsultant(userID)
}

// UpdateEngagement updates the engagement's descriptive fields
func (s *EngagementService) UpdateEngagement(consultantID uuid.UUID, updated *models.Engagement) (*models.Engagement, error) {
	if _, err := authorizeConsultant(s.engagementRepo, updated.ID, consultantID); err != nil {
		return nil, err
	}

	engagement, err := s.engagementRepo.GetByID(updated.ID)
	if err != nil {
		return nil, err
	}

	engagement.Title = updated.Title
	engagement.Description = updated.Description
	engagement.StartDate = updated.StartDate
	engagement.EndDate = updated.EndDate

	if err := s.engagementRepo.Update(engagement); err != nil {
		return nil, fmt.Errorf("failed to update engagement: %w", err)
	}
	return engagement, nil
}

// UpdateStatus transitions an engagement's lifecycle status
func (s *EngagementService) UpdateStatus(consultantID, engagementID uuid.UUID, newStatus string) (*models.Engagement, error) {
	if _, err := authorizeConsultant(s.engagementRepo, engagementID, consultantID); err != nil {
		return nil, err
	}

	engagement, err := s.engagementRepo.GetByID(engagementID)
	if err != nil {
		return nil, err
	}

	if err := validateEngagementTransition(engagement.Status, newStatus); err != nil {
		return nil, err
	}

	if err := s.engagementRepo.UpdateStatus(engagementID, newStatus); err != nil {
		return nil, fmt.Errorf("failed to update status: %w", err)
	}

	s.audit(&consultantID, "update_status", "engagement",
		fmt.Sprintf("Engagement %s status changed: %s -> %s", engagementID, engagement.Status, newStatus))

	engagement.Status = newStatus
	return engagement, nil
}

// DeleteEngagement removes an engagement and everything under it
func (s *EngagementService) DeleteEngagement(consultantID, engagementID uuid.UUID) error {
	if _, err := authorizeConsultant(s.engagementRepo, engagementID, consultantID); err != nil {
		return err
	}
	if err := s.engagementRepo.Delete(engagementID); err != nil {
		return err
	}
	s.audit(&consultantID, "delete", "engagement", fmt.Sprintf("Deleted engagement %s", engagementID))
	return nil
}

// validateEngagementTransition validates if a status transition is allowed
func validateEngagementTransition(fromStatus, toStatus string) error {
	allowedTransitions := map[string][]string{
		"proposal":  {"active", "cancelled"},
		"active":    {"paused", "completed", "cancelled"},
		"paused":    {"active", "completed", "cancelled"},
		"completed": {},
		"cancelled": {},
	}

	allowed, ok := allowedTransitions[fromStatus]
	if !ok {
		return fmt.Errorf("invalid current status: %s", fromStatus)
	}

	for _, validStatus := range allowed {
		if toStatus == validStatus {
			return nil
		}
	}

	return fmt.Errorf("cannot transition from %s to %s status", fromStatus, toStatus)
}

func (s *EngagementService) audit(userID *uuid.UUID, action, resource, details string) {
	if s.auditRepo == nil {
		return
	}
	if err := s.auditRepo.Create(&models.AuditLog{
		UserID:   userID,
		Action:   action,
		Resource: resource,
		Details:  details,
	}); err != nil {
		slog.Warn("Failed to write audit log", "action", action, "error", err)
	}
}
