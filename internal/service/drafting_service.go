package service

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"consulting-os/internal/ai"
	"consulting-os/internal/models"
	"consulting-os/internal/repository"
	"consulting-os/internal/securestore"

	"github.com/google/uuid"
)

// ErrDraftingUnavailable is returned when generation requires the model
// provider and it is not configured or not reachable. The caller can retry
// or fall back to manual entry.
var ErrDraftingUnavailable = errors.New("drafting is unavailable, write the document manually or try again later")

const (
	proposalMaxTokens = 4000
	summaryMaxTokens  = 2000
	progressMaxTokens = 1500
)

// DraftingService orchestrates model-assisted drafting: it assembles the
// context, builds the prompt, calls the provider, persists the draft and
// meters usage.
type DraftingService struct {
	aiClient       *ai.Client
	proposalRepo   *repository.ProposalRepository
	summaryRepo    *repository.SummaryRepository
	sessionRepo    *repository.SessionRepository
	engagementRepo *repository.EngagementRepository
	clientRepo     *repository.ClientRepository
	goalRepo       *repository.GoalRepository
	actionRepo     *repository.ActionRepository
	intakeRepo     *repository.IntakeRepository
	usageRepo      *repository.UsageRepository
	secureStore    *securestore.SecureStore
}

// NewDraftingService creates a new drafting service
func NewDraftingService(
	aiClient *ai.Client,
	proposalRepo *repository.ProposalRepository,
	summaryRepo *repository.SummaryRepository,
	sessionRepo *repository.SessionRepository,
	engagementRepo *repository.EngagementRepository,
	clientRepo *repository.ClientRepository,
	goalRepo *repository.GoalRepository,
	actionRepo *repository.ActionRepository,
	intakeRepo *repository.IntakeRepository,
	usageRepo *repository.UsageRepository,
	secureStore *securestore.SecureStore,
) *DraftingService {
	return &DraftingService{
		aiClient:       aiClient,
		proposalRepo:   proposalRepo,
		summaryRepo:    summaryRepo,
		sessionRepo:    sessionRepo,
		engagementRepo: engagementRepo,
		clientRepo:     clientRepo,
		goalRepo:       goalRepo,
		actionRepo:     actionRepo,
		intakeRepo:     intakeRepo,
		usageRepo:      usageRepo,
		secureStore:    secureStore,
	}
}

// GenerateProposal drafts a proposal from the client's intake responses.
// Without a configured provider the placeholder document is used instead,
// clearly marked as such, so the flow can be exercised in development.
func (s *DraftingService) GenerateProposal(consultantID, engagementID uuid.UUID) (*models.Proposal, error) {
	if _, err := authorizeConsultant(s.engagementRepo, engagementID, consultantID); err != nil {
		return nil, err
	}

	engagement, err := s.engagementRepo.GetByID(engagementID)
	if err != nil {
		return nil, err
	}
	client, err := s.clientRepo.GetByID(engagement.ClientID)
	if err != nil {
		return nil, err
	}

	input := ai.ProposalInput{
		ClientName:            client.ContactName,
		CompanyName:           client.CompanyName,
		Industry:              client.Industry,
		EngagementTitle:       engagement.Title,
		EngagementDescription: engagement.Description,
	}
	if form, err := s.intakeRepo.GetLatestByClient(client.ID); err == nil && form != nil {
		input.Responses = form.Responses
	}

	content, modelUsed, generated := "", "", true
	var aiGeneratedAt *time.Time
	if s.aiClient.Enabled() {
		prompt := ai.BuildProposalPrompt(input)
		text, usage, err := s.aiClient.Complete(ai.SystemPrompt, prompt, proposalMaxTokens)
		if err != nil {
			slog.Error("Proposal generation failed, falling back to placeholder",
				"engagement_id", engagementID, "error", err)
			content = ai.MockProposal(input)
			generated = false
		} else {
			content = text
			modelUsed = s.aiClient.Model()
			now := time.Now()
			aiGeneratedAt = &now
			s.logUsage(consultantID, &engagementID, "proposal", usage)
		}
	} else {
		content = ai.MockProposal(input)
		generated = false
	}

	// An existing draft is replaced in place, provenance fields included;
	// after a terminal client decision a new row is created so history is
	// preserved.
	proposals, err := s.proposalRepo.ListByEngagement(engagementID)
	if err != nil {
		return nil, err
	}
	for i := range proposals {
		if proposals[i].Status == "draft" {
			if err := s.proposalRepo.UpdateGeneration(proposals[i].ID, content, generated, modelUsed, aiGeneratedAt); err != nil {
				return nil, err
			}
			return s.proposalRepo.GetByID(proposals[i].ID)
		}
	}

	proposal := &models.Proposal{
		EngagementID:  engagementID,
		Content:       content,
		Status:        "draft",
		Generated:     generated,
		ModelUsed:     modelUsed,
		AIGeneratedAt: aiGeneratedAt,
	}
	if err := s.proposalRepo.Create(proposal); err != nil {
		return nil, fmt.Errorf("failed to save generated proposal: %w", err)
	}
	return proposal, nil
}

// GenerateSummary drafts a session summary from the consultant's sealed
// notes. Action items the model proposes are inserted as pending actions
// on the engagement. There is no placeholder for summaries; without a
// provider this returns ErrDraftingUnavailable.
func (s *DraftingService) GenerateSummary(consultantID, sessionID uuid.UUID) (*models.SessionSummary, error) {
	session, err := s.sessionRepo.GetByID(sessionID)
	if err != nil {
		return nil, err
	}
	parties, err := authorizeConsultant(s.engagementRepo, session.EngagementID, consultantID)
	if err != nil {
		return nil, err
	}

	if !s.aiClient.Enabled() {
		return nil, ErrDraftingUnavailable
	}

	sealed, err := s.sessionRepo.GetNotesCiphertext(sessionID)
	if err != nil {
		return nil, err
	}
	if sealed == "" {
		return nil, fmt.Errorf("session has no notes to summarize")
	}
	notes, err := s.secureStore.Open(session.EngagementID, sealed)
	if err != nil {
		return nil, fmt.Errorf("failed to open notes: %w", err)
	}

	engagement, err := s.engagementRepo.GetByID(session.EngagementID)
	if err != nil {
		return nil, err
	}
	client, err := s.clientRepo.GetByID(parties.ClientID)
	if err != nil {
		return nil, err
	}

	scheduledAt := session.ScheduledAt
	input := ai.SummaryInput{
		SessionNumber:   session.SessionNumber,
		ClientName:      client.ContactName,
		EngagementTitle: engagement.Title,
		ScheduledAt:     &scheduledAt,
		DurationMinutes: session.DurationMinutes,
		Notes:           notes,
	}

	text, usage, err := s.aiClient.Complete(ai.SystemPrompt, ai.BuildSessionSummaryPrompt(input), summaryMaxTokens)
	if err != nil {
		slog.Error("Summary generation failed", "session_id", sessionID, "error", err)
		return nil, ErrDraftingUnavailable
	}
	s.logUsage(consultantID, &session.EngagementID, "session_summary", usage)

	// A malformed or missing action block yields no actions, never an error
	for _, draft := range ai.ExtractActions(text) {
		action := &models.Action{
			EngagementID: session.EngagementID,
			SessionID:    &sessionID,
			Title:        draft.Title,
			Description:  draft.Description,
			Status:       "pending",
			AssignedTo:   normalizeAssignee(draft.AssignedTo),
			DueDate:      draft.DueDate,
		}
		if err := s.actionRepo.Create(action); err != nil {
			slog.Warn("Failed to create extracted action", "session_id", sessionID, "error", err)
		}
	}

	generatedAt := time.Now()
	summary := &models.SessionSummary{
		SessionID:     sessionID,
		Content:       ai.StripActionBlock(text),
		Status:        "draft",
		Generated:     true,
		AIGeneratedAt: &generatedAt,
	}
	if err := s.summaryRepo.Create(summary); err != nil {
		return nil, fmt.Errorf("failed to save generated summary: %w", err)
	}
	return summary, nil
}

// GenerateProgressUpdate drafts a progress update from the engagement's
// goal and action state. The text is returned for the consultant to edit
// and share; nothing is persisted.
func (s *DraftingService) GenerateProgressUpdate(consultantID, engagementID uuid.UUID) (string, error) {
	parties, err := authorizeConsultant(s.engagementRepo, engagementID, consultantID)
	if err != nil {
		return "", err
	}

	if !s.aiClient.Enabled() {
		return "", ErrDraftingUnavailable
	}

	engagement, err := s.engagementRepo.GetByID(engagementID)
	if err != nil {
		return "", err
	}
	client, err := s.clientRepo.GetByID(parties.ClientID)
	if err != nil {
		return "", err
	}
	goals, err := s.goalRepo.ListByEngagement(engagementID)
	if err != nil {
		return "", err
	}
	actions, err := s.actionRepo.ListByEngagement(engagementID)
	if err != nil {
		return "", err
	}

	recentSessions := 0
	if sessions, err := s.sessionRepo.ListByEngagement(engagementID); err == nil {
		cutoff := time.Now().AddDate(0, -1, 0)
		for _, sess := range sessions {
			if sess.Status == "completed" && sess.ScheduledAt.After(cutoff) {
				recentSessions++
			}
		}
	}

	input := ai.ProgressInput{
		ClientName:      client.ContactName,
		EngagementTitle: engagement.Title,
		RecentSessions:  recentSessions,
		Goals:           goals,
		Actions:         actions,
	}

	text, usage, err := s.aiClient.Complete(ai.SystemPrompt, ai.BuildProgressUpdatePrompt(input), progressMaxTokens)
	if err != nil {
		slog.Error("Progress update generation failed", "engagement_id", engagementID, "error", err)
		return "", ErrDraftingUnavailable
	}
	s.logUsage(consultantID, &engagementID, "progress_update", usage)

	return text, nil
}

// UsageReport aggregates the consultant's model usage per kind along with
// the recent raw entries.
func (s *DraftingService) UsageReport(userID uuid.UUID, from, to time.Time) ([]repository.UsageTotal, []models.AIUsageLog, error) {
	totals, err := s.usageRepo.SummarizeByUser(userID, from, to)
	if err != nil {
		return nil, nil, err
	}
	entries, err := s.usageRepo.ListByUser(userID, from, to)
	if err != nil {
		return nil, nil, err
	}
	return totals, entries, nil
}

// logUsage meters a model invocation. Failures are logged, never surfaced:
// metering must not break the drafting flow.
func (s *DraftingService) logUsage(userID uuid.UUID, engagementID *uuid.UUID, kind string, usage ai.Usage) {
	entry := &models.AIUsageLog{
		UserID:       userID,
		EngagementID: engagementID,
		Kind:         kind,
		Model:        s.aiClient.Model(),
		InputTokens:  usage.InputTokens,
		OutputTokens: usage.OutputTokens,
		TotalTokens:  usage.InputTokens + usage.OutputTokens,
		CostUSD:      ai.CalculateCost(usage.InputTokens, usage.OutputTokens),
	}
	if err := s.usageRepo.Create(entry); err != nil {
		slog.Warn("Failed to log model usage", "kind", kind, "error", err)
	}
}

func normalizeAssignee(assignedTo string) string {
	// The actions schema knows two assignees; "both" lands with the client
	// since they own the follow-through.
	if assignedTo == "consultant" {
		return "consultant"
	}
	return "client"
}
