package service

import (
	"fmt"
	"time"

	"consulting-os/internal/models"
	"consulting-os/internal/repository"
	"consulting-os/internal/securestore"

	"github.com/google/uuid"
)

// SessionService handles consulting session business logic. Consultant
// notes are sealed through the secure store and never leave the consultant's
// side of the API.
type SessionService struct {
	sessionRepo    *repository.SessionRepository
	summaryRepo    *repository.SummaryRepository
	engagementRepo *repository.EngagementRepository
	secureStore    *securestore.SecureStore
}

// NewSessionService creates a new session service
func NewSessionService(
	sessionRepo *repository.SessionRepository,
	summaryRepo *repository.SummaryRepository,
	engagementRepo *repository.EngagementRepository,
	secureStore *securestore.SecureStore,
) *SessionService {
	return &SessionService{
		sessionRepo:    sessionRepo,
		summaryRepo:    summaryRepo,
		engagementRepo: engagementRepo,
		secureStore:    secureStore,
	}
}

// CreateSession schedules a session on an engagement (consultant only)
func (s *SessionService) CreateSession(consultantID uuid.UUID, session *models.Session) (*models.Session, error) {
	if session.Title == "" {
		return nil, fmt.Errorf("title is required")
	}
	if session.ScheduledAt.IsZero() {
		return nil, fmt.Errorf("scheduled time is required")
	}
	if session.DurationMinutes <= 0 {
		session.DurationMinutes = 60
	}
	if _, err := authorizeConsultant(s.engagementRepo, session.EngagementID, consultantID); err != nil {
		return nil, err
	}

	session.Status = "scheduled"

	if err := s.sessionRepo.Create(session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return session, nil
}

// ListSessions lists an engagement's sessions for either party. Notes are
// never included in listings.
func (s *SessionService) ListSessions(userID, engagementID uuid.UUID) ([]models.Session, error) {
	if _, err := authorizeEngagement(s.engagementRepo, engagementID, userID); err != nil {
		return nil, err
	}
	return s.sessionRepo.ListByEngagement(engagementID)
}

// GetSession returns a session with its summaries. Clients only see
// published summaries for past sessions.
func (s *SessionService) GetSession(userID uuid.UUID, role string, sessionID uuid.UUID) (*models.SessionWithSummaries, error) {
	session, err := s.sessionRepo.GetByID(sessionID)
	if err != nil {
		return nil, err
	}
	if _, err := authorizeEngagement(s.engagementRepo, session.EngagementID, userID); err != nil {
		return nil, err
	}

	result := &models.SessionWithSummaries{Session: *session}

	if role == "client" {
		summaries, err := s.summaryRepo.ListPublishedBySession(sessionID)
		if err != nil {
			return nil, err
		}
		for _, summary := range summaries {
			if SummaryVisibleToClient(session, &summary) {
				result.Summaries = append(result.Summaries, summary)
			}
		}
	} else {
		if result.Summaries, err = s.summaryRepo.ListBySession(sessionID); err != nil {
			return nil, err
		}
	}

	return result, nil
}

// UpdateSession updates scheduling fields (consultant only)
func (s *SessionService) UpdateSession(consultantID uuid.UUID, updated *models.Session) (*models.Session, error) {
	session, err := s.sessionRepo.GetByID(updated.ID)
	if err != nil {
		return nil, err
	}
	if _, err := authorizeConsultant(s.engagementRepo, session.EngagementID, consultantID); err != nil {
		return nil, err
	}

	session.Title = updated.Title
	if !updated.ScheduledAt.IsZero() {
		session.ScheduledAt = updated.ScheduledAt
	}
	if updated.DurationMinutes > 0 {
		session.DurationMinutes = updated.DurationMinutes
	}
	if updated.Status != "" {
		switch updated.Status {
		case "scheduled", "completed", "cancelled":
			session.Status = updated.Status
		default:
			return nil, fmt.Errorf("invalid session status: %s", updated.Status)
		}
	}

	if err := s.sessionRepo.Update(session); err != nil {
		return nil, fmt.Errorf("failed to update session: %w", err)
	}
	return session, nil
}

// SaveNotes seals the consultant's raw notes and stores the ciphertext
func (s *SessionService) SaveNotes(consultantID, sessionID uuid.UUID, notes string) error {
	session, err := s.sessionRepo.GetByID(sessionID)
	if err != nil {
		return err
	}
	if _, err := authorizeConsultant(s.engagementRepo, session.EngagementID, consultantID); err != nil {
		return err
	}

	sealed := ""
	if notes != "" {
		sealed, err = s.secureStore.Seal(session.EngagementID, notes)
		if err != nil {
			return fmt.Errorf("failed to seal notes: %w", err)
		}
	}

	return s.sessionRepo.UpdateNotesCiphertext(sessionID, sealed)
}

// GetNotes decrypts and returns the consultant's notes
func (s *SessionService) GetNotes(consultantID, sessionID uuid.UUID) (string, error) {
	session, err := s.sessionRepo.GetByID(sessionID)
	if err != nil {
		return "", err
	}
	if _, err := authorizeConsultant(s.engagementRepo, session.EngagementID, consultantID); err != nil {
		return "", err
	}

	return s.decryptNotes(session)
}

// DeleteSession removes a session (consultant only)
func (s *SessionService) DeleteSession(consultantID, sessionID uuid.UUID) error {
	session, err := s.sessionRepo.GetByID(sessionID)
	if err != nil {
		return err
	}
	if _, err := authorizeConsultant(s.engagementRepo, session.EngagementID, consultantID); err != nil {
		return err
	}
	return s.sessionRepo.Delete(sessionID)
}

func (s *SessionService) decryptNotes(session *models.Session) (string, error) {
	sealed, err := s.sessionRepo.GetNotesCiphertext(session.ID)
	if err != nil {
		return "", err
	}
	if sealed == "" {
		return "", nil
	}
	notes, err := s.secureStore.Open(session.EngagementID, sealed)
	if err != nil {
		return "", fmt.Errorf("failed to open notes: %w", err)
	}
	return notes, nil
}

// SummaryVisibleToClient reports whether a summary may be shown to the
// client: the session must be over (completed, or its scheduled time has
// passed) and the summary published with non-empty content.
func SummaryVisibleToClient(session *models.Session, summary *models.SessionSummary) bool {
	if summary.Status != "published" || summary.Content == "" {
		return false
	}
	if session.Status == "completed" {
		return true
	}
	return session.ScheduledAt.Before(time.Now())
}
