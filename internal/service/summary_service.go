package service

import (
	"fmt"
	"log/slog"

	"consulting-os/internal/models"
	"consulting-os/internal/repository"

	"github.com/google/uuid"
)

// SummaryService handles the session summary lifecycle: draft, approve,
// publish. Only published summaries ever reach the client.
type SummaryService struct {
	summaryRepo    *repository.SummaryRepository
	sessionRepo    *repository.SessionRepository
	engagementRepo *repository.EngagementRepository
	notifRepo      *repository.NotificationRepository
	publisher      Publisher
}

// NewSummaryService creates a new summary service
func NewSummaryService(
	summaryRepo *repository.SummaryRepository,
	sessionRepo *repository.SessionRepository,
	engagementRepo *repository.EngagementRepository,
	notifRepo *repository.NotificationRepository,
	publisher Publisher,
) *SummaryService {
	return &SummaryService{
		summaryRepo:    summaryRepo,
		sessionRepo:    sessionRepo,
		engagementRepo: engagementRepo,
		notifRepo:      notifRepo,
		publisher:      publisher,
	}
}

// CreateSummary writes a manual draft summary for a session
func (s *SummaryService) CreateSummary(consultantID uuid.UUID, summary *models.SessionSummary) (*models.SessionSummary, error) {
	if summary.Content == "" {
		return nil, fmt.Errorf("content is required")
	}
	if _, _, err := s.authorizeSession(consultantID, summary.SessionID); err != nil {
		return nil, err
	}

	summary.Status = "draft"
	summary.Generated = false

	if err := s.summaryRepo.Create(summary); err != nil {
		return nil, fmt.Errorf("failed to create summary: %w", err)
	}
	return summary, nil
}

// UpdateSummary edits a summary while it is still a draft. Content
// freezes at approval.
func (s *SummaryService) UpdateSummary(consultantID uuid.UUID, updated *models.SessionSummary) (*models.SessionSummary, error) {
	summary, err := s.summaryRepo.GetByID(updated.ID)
	if err != nil {
		return nil, err
	}
	if _, _, err := s.authorizeSession(consultantID, summary.SessionID); err != nil {
		return nil, err
	}
	if summary.Status != "draft" {
		return nil, fmt.Errorf("only draft summaries can be edited (status: %s)", summary.Status)
	}

	summary.Content = updated.Content
	summary.KeyTakeaways = updated.KeyTakeaways
	summary.NextSteps = updated.NextSteps

	if err := s.summaryRepo.UpdateContent(summary); err != nil {
		return nil, err
	}
	return summary, nil
}

// Approve transitions a draft summary to approved
func (s *SummaryService) Approve(consultantID, summaryID uuid.UUID) (*models.SessionSummary, error) {
	summary, err := s.summaryRepo.GetByID(summaryID)
	if err != nil {
		return nil, err
	}
	if _, _, err := s.authorizeSession(consultantID, summary.SessionID); err != nil {
		return nil, err
	}
	if summary.Status != "draft" {
		return nil, fmt.Errorf("only draft summaries can be approved (status: %s)", summary.Status)
	}

	if err := s.summaryRepo.MarkApproved(summaryID, consultantID); err != nil {
		return nil, err
	}

	return s.summaryRepo.GetByID(summaryID)
}

// Publish shares an approved summary with the client
func (s *SummaryService) Publish(consultantID, summaryID uuid.UUID) (*models.SessionSummary, error) {
	summary, err := s.summaryRepo.GetByID(summaryID)
	if err != nil {
		return nil, err
	}
	session, parties, err := s.authorizeSession(consultantID, summary.SessionID)
	if err != nil {
		return nil, err
	}
	if summary.Status != "approved" {
		return nil, fmt.Errorf("only approved summaries can be published (status: %s)", summary.Status)
	}

	if err := s.summaryRepo.MarkPublished(summaryID); err != nil {
		return nil, err
	}

	published, err := s.summaryRepo.GetByID(summaryID)
	if err != nil {
		return nil, err
	}

	if parties.ClientUserID != nil {
		if err := s.notifRepo.Create(&models.Notification{
			UserID:       *parties.ClientUserID,
			Type:         "summary_published",
			Title:        "Session summary available",
			Body:         fmt.Sprintf("The summary for %q is ready to read.", session.Title),
			EngagementID: &session.EngagementID,
		}); err != nil {
			slog.Warn("Failed to create notification", "type", "summary_published", "error", err)
		}
	}

	publish(s.publisher, session.EngagementID, "summary.published", published)

	return published, nil
}

// DeleteSummary removes a draft summary
func (s *SummaryService) DeleteSummary(consultantID, summaryID uuid.UUID) error {
	summary, err := s.summaryRepo.GetByID(summaryID)
	if err != nil {
		return err
	}
	if _, _, err := s.authorizeSession(consultantID, summary.SessionID); err != nil {
		return err
	}
	if summary.Status != "draft" {
		return fmt.Errorf("only draft summaries can be deleted (status: %s)", summary.Status)
	}
	return s.summaryRepo.Delete(summaryID)
}

func (s *SummaryService) authorizeSession(consultantID, sessionID uuid.UUID) (*models.Session, *repository.EngagementParties, error) {
	session, err := s.sessionRepo.GetByID(sessionID)
	if err != nil {
		return nil, nil, err
	}
	parties, err := authorizeConsultant(s.engagementRepo, session.EngagementID, consultantID)
	if err != nil {
		return nil, nil, err
	}
	return session, parties, nil
}
