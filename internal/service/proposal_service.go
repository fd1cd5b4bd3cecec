package service

import (
	"fmt"
	"log/slog"
	"strings"

	"consulting-os/internal/email"
	"consulting-os/internal/models"
	"consulting-os/internal/repository"

	"github.com/google/uuid"
)

// ProposalService handles the proposal lifecycle: draft, approve-and-send,
// and the client's accept or reject decision.
type ProposalService struct {
	proposalRepo   *repository.ProposalRepository
	engagementRepo *repository.EngagementRepository
	clientRepo     *repository.ClientRepository
	userRepo       *repository.UserRepository
	notifRepo      *repository.NotificationRepository
	auditRepo      *repository.AuditRepository
	emailSvc       *email.Service
	publisher      Publisher
}

// NewProposalService creates a new proposal service
func NewProposalService(
	proposalRepo *repository.ProposalRepository,
	engagementRepo *repository.EngagementRepository,
	clientRepo *repository.ClientRepository,
	userRepo *repository.UserRepository,
	notifRepo *repository.NotificationRepository,
	auditRepo *repository.AuditRepository,
	emailSvc *email.Service,
	publisher Publisher,
) *ProposalService {
	return &ProposalService{
		proposalRepo:   proposalRepo,
		engagementRepo: engagementRepo,
		clientRepo:     clientRepo,
		userRepo:       userRepo,
		notifRepo:      notifRepo,
		auditRepo:      auditRepo,
		emailSvc:       emailSvc,
		publisher:      publisher,
	}
}

// SaveDraft writes proposal content. An existing draft is updated in
// place; otherwise a new draft row is created, so revising after a client
// decision always yields a fresh proposal.
func (s *ProposalService) SaveDraft(consultantID, engagementID uuid.UUID, content string) (*models.Proposal, error) {
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("content is required")
	}
	if _, err := authorizeConsultant(s.engagementRepo, engagementID, consultantID); err != nil {
		return nil, err
	}

	draft, err := s.findDraft(engagementID)
	if err != nil {
		return nil, err
	}
	if draft != nil {
		if err := s.proposalRepo.UpdateContent(draft.ID, content); err != nil {
			return nil, err
		}
		draft.Content = content
		return draft, nil
	}

	proposal := &models.Proposal{
		EngagementID: engagementID,
		Content:      content,
		Status:       "draft",
	}
	if err := s.proposalRepo.Create(proposal); err != nil {
		return nil, fmt.Errorf("failed to create proposal: %w", err)
	}
	return proposal, nil
}

// ListProposals returns an engagement's full proposal history (consultant)
func (s *ProposalService) ListProposals(consultantID, engagementID uuid.UUID) ([]models.Proposal, error) {
	if _, err := authorizeConsultant(s.engagementRepo, engagementID, consultantID); err != nil {
		return nil, err
	}
	return s.proposalRepo.ListByEngagement(engagementID)
}

// GetCurrent returns the proposal the client should see. Drafts are never
// visible here. Returns nil when nothing has been sent yet.
func (s *ProposalService) GetCurrent(userID, engagementID uuid.UUID) (*models.Proposal, error) {
	if _, err := authorizeEngagement(s.engagementRepo, engagementID, userID); err != nil {
		return nil, err
	}
	return s.proposalRepo.GetCurrent(engagementID)
}

// Send approves a draft and sends it to the client in a single step. The
// client is notified by email and in-app.
func (s *ProposalService) Send(consultantID, proposalID uuid.UUID) (*models.Proposal, error) {
	proposal, err := s.proposalRepo.GetByID(proposalID)
	if err != nil {
		return nil, err
	}
	parties, err := authorizeConsultant(s.engagementRepo, proposal.EngagementID, consultantID)
	if err != nil {
		return nil, err
	}
	if proposal.Status != "draft" {
		return nil, fmt.Errorf("only draft proposals can be sent (status: %s)", proposal.Status)
	}

	sent, err := s.proposalRepo.MarkSent(proposalID, consultantID)
	if err != nil {
		return nil, err
	}

	engagement, err := s.engagementRepo.GetByID(proposal.EngagementID)
	if err != nil {
		return nil, err
	}

	s.notifyClient(parties, sent.EngagementID, "proposal_sent",
		"Proposal ready for review",
		fmt.Sprintf("A proposal for %q is waiting for your review.", engagement.Title))

	if parties.ClientUserID != nil {
		if clientUser, err := s.userRepo.GetByID(*parties.ClientUserID); err == nil && clientUser != nil {
			if err := s.emailSvc.SendProposalEmail(clientUser.Email, clientUser.FullName, engagement.Title); err != nil {
				slog.Error("Failed to send proposal email", "proposal_id", proposalID, "error", err)
			}
		}
	}

	publish(s.publisher, sent.EngagementID, "proposal.sent", sent)
	s.audit(&consultantID, "send", "proposal", fmt.Sprintf("Sent proposal %s", proposalID))

	return sent, nil
}

// Accept records the client's acceptance. The engagement moves to active.
func (s *ProposalService) Accept(clientUserID, proposalID uuid.UUID) (*models.Proposal, error) {
	proposal, parties, err := s.getForClientDecision(clientUserID, proposalID)
	if err != nil {
		return nil, err
	}

	accepted, err := s.proposalRepo.MarkAccepted(proposalID)
	if err != nil {
		if err == repository.ErrProposalNotFound {
			return nil, fmt.Errorf("proposal is not awaiting a response (status: %s)", proposal.Status)
		}
		return nil, err
	}

	if err := s.engagementRepo.UpdateStatus(accepted.EngagementID, "active"); err != nil {
		slog.Error("Failed to activate engagement after acceptance",
			"engagement_id", accepted.EngagementID, "error", err)
	}

	s.notifyConsultantOfResponse(parties, accepted, true, "")
	publish(s.publisher, accepted.EngagementID, "proposal.accepted", accepted)
	s.audit(&clientUserID, "accept", "proposal", fmt.Sprintf("Accepted proposal %s", proposalID))

	return accepted, nil
}

// Reject records the client's rejection. The reason is required and
// nothing is persisted without one.
func (s *ProposalService) Reject(clientUserID, proposalID uuid.UUID, reason string) (*models.Proposal, error) {
	reason, err := ValidateRejectionReason(reason)
	if err != nil {
		return nil, err
	}

	proposal, parties, err := s.getForClientDecision(clientUserID, proposalID)
	if err != nil {
		return nil, err
	}

	rejected, err := s.proposalRepo.MarkRejected(proposalID, reason)
	if err != nil {
		if err == repository.ErrProposalNotFound {
			return nil, fmt.Errorf("proposal is not awaiting a response (status: %s)", proposal.Status)
		}
		return nil, err
	}

	s.notifyConsultantOfResponse(parties, rejected, false, reason)
	publish(s.publisher, rejected.EngagementID, "proposal.rejected", rejected)
	s.audit(&clientUserID, "reject", "proposal", fmt.Sprintf("Rejected proposal %s", proposalID))

	return rejected, nil
}

// DeleteDraft removes a draft proposal (consultant only)
func (s *ProposalService) DeleteDraft(consultantID, proposalID uuid.UUID) error {
	proposal, err := s.proposalRepo.GetByID(proposalID)
	if err != nil {
		return err
	}
	if _, err := authorizeConsultant(s.engagementRepo, proposal.EngagementID, consultantID); err != nil {
		return err
	}
	return s.proposalRepo.Delete(proposalID)
}

// SelectCurrentProposal returns the proposal a client should see from a
// list: the most recently sent among sent, accepted, rejected and legacy
// approved rows. Nil sent_at sorts last; created_at breaks ties. Drafts
// are never selected. Keep in sync with ProposalRepository.GetCurrent.
func SelectCurrentProposal(proposals []models.Proposal) *models.Proposal {
	var current *models.Proposal
	for i := range proposals {
		p := &proposals[i]
		switch p.Status {
		case "approved", "sent", "accepted", "rejected":
		default:
			continue
		}
		if current == nil || proposalSortsAfter(p, current) {
			current = p
		}
	}
	return current
}

func proposalSortsAfter(a, b *models.Proposal) bool {
	switch {
	case a.SentAt != nil && b.SentAt == nil:
		return true
	case a.SentAt == nil && b.SentAt != nil:
		return false
	case a.SentAt != nil && b.SentAt != nil && !a.SentAt.Equal(*b.SentAt):
		return a.SentAt.After(*b.SentAt)
	default:
		return a.CreatedAt.After(b.CreatedAt)
	}
}

// ValidateRejectionReason trims the reason and rejects blank input
func ValidateRejectionReason(reason string) (string, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return "", fmt.Errorf("a reason is required to decline a proposal")
	}
	return reason, nil
}

func (s *ProposalService) findDraft(engagementID uuid.UUID) (*models.Proposal, error) {
	proposals, err := s.proposalRepo.ListByEngagement(engagementID)
	if err != nil {
		return nil, err
	}
	for i := range proposals {
		if proposals[i].Status == "draft" {
			return &proposals[i], nil
		}
	}
	return nil, nil
}

func (s *ProposalService) getForClientDecision(clientUserID, proposalID uuid.UUID) (*models.Proposal, *repository.EngagementParties, error) {
	proposal, err := s.proposalRepo.GetByID(proposalID)
	if err != nil {
		return nil, nil, err
	}
	parties, err := s.engagementRepo.GetParties(proposal.EngagementID)
	if err != nil {
		return nil, nil, err
	}
	if !isClientParty(parties, clientUserID) {
		return nil, nil, fmt.Errorf("permission denied: only the client can respond to a proposal")
	}
	return proposal, parties, nil
}

func (s *ProposalService) notifyClient(parties *repository.EngagementParties, engagementID uuid.UUID, kind, title, body string) {
	if parties.ClientUserID == nil {
		return
	}
	if err := s.notifRepo.Create(&models.Notification{
		UserID:       *parties.ClientUserID,
		Type:         kind,
		Title:        title,
		Body:         body,
		EngagementID: &engagementID,
	}); err != nil {
		slog.Warn("Failed to create notification", "type", kind, "error", err)
	}
}

func (s *ProposalService) notifyConsultantOfResponse(parties *repository.EngagementParties, proposal *models.Proposal, accepted bool, reason string) {
	engagement, err := s.engagementRepo.GetByID(proposal.EngagementID)
	if err != nil {
		slog.Error("Failed to load engagement for response notification", "error", err)
		return
	}
	client, err := s.clientRepo.GetByID(parties.ClientID)
	if err != nil {
		slog.Error("Failed to load client for response notification", "error", err)
		return
	}

	kind := "proposal_accepted"
	title := "Proposal accepted"
	body := fmt.Sprintf("%s accepted your proposal for %q.", client.ContactName, engagement.Title)
	if !accepted {
		kind = "proposal_rejected"
		title = "Proposal declined"
		body = fmt.Sprintf("%s declined your proposal for %q: %s", client.ContactName, engagement.Title, reason)
	}

	if err := s.notifRepo.Create(&models.Notification{
		UserID:       parties.ConsultantUserID,
		Type:         kind,
		Title:        title,
		Body:         body,
		EngagementID: &proposal.EngagementID,
	}); err != nil {
		slog.Warn("Failed to create notification", "type", kind, "error", err)
	}

	consultant, err := s.userRepo.GetByID(parties.ConsultantUserID)
	if err != nil || consultant == nil {
		slog.Error("Failed to load consultant for response email", "error", err)
		return
	}
	if err := s.emailSvc.SendProposalResponseEmail(consultant.Email, client.ContactName, engagement.Title, accepted, reason); err != nil {
		slog.Error("Failed to send proposal response email", "proposal_id", proposal.ID, "error", err)
	}
}

func (s *ProposalService) audit(userID *uuid.UUID, action, resource, details string) {
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
