package service

import (
	"fmt"
	"log/slog"
	"time"

	"consulting-os/internal/auth"
	"consulting-os/internal/email"
	"consulting-os/internal/models"
	"consulting-os/internal/repository"

	"github.com/google/uuid"
)

// DefaultIntakeQuestions seed every new intake form. The consultant can
// replace them per client before sending the form out.
var DefaultIntakeQuestions = []string{
	"What is the biggest challenge your business is facing right now?",
	"What does success look like for you in the next 12 months?",
	"What have you already tried to address this challenge?",
	"Who else is involved in making decisions about this work?",
	"What is your budget range for this engagement?",
}

// ClientService handles client account business logic
type ClientService struct {
	clientRepo *repository.ClientRepository
	userRepo   *repository.UserRepository
	intakeRepo *repository.IntakeRepository
	auditRepo  *repository.AuditRepository
	authSvc    *auth.Service
	emailSvc   *email.Service
}

// NewClientService creates a new client service
func NewClientService(
	clientRepo *repository.ClientRepository,
	userRepo *repository.UserRepository,
	intakeRepo *repository.IntakeRepository,
	auditRepo *repository.AuditRepository,
	authSvc *auth.Service,
	emailSvc *email.Service,
) *ClientService {
	return &ClientService{
		clientRepo: clientRepo,
		userRepo:   userRepo,
		intakeRepo: intakeRepo,
		auditRepo:  auditRepo,
		authSvc:    authSvc,
		emailSvc:   emailSvc,
	}
}

// CreateClient creates a client record owned by the consultant
func (s *ClientService) CreateClient(consultantID uuid.UUID, companyName, contactName, industry string) (*models.Client, error) {
	if contactName == "" {
		return nil, fmt.Errorf("contact name is required")
	}

	client := &models.Client{
		ConsultantID: consultantID,
		CompanyName:  companyName,
		ContactName:  contactName,
		Industry:     industry,
		Status:       "prospect",
	}

	if err := s.clientRepo.Create(client); err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	s.audit(&consultantID, "create", "client", fmt.Sprintf("Created client %s", client.ID))

	return client, nil
}

// InviteClient creates a portal user for the client and emails them a
// temporary password. A client can only be invited once.
func (s *ClientService) InviteClient(consultantID, clientID uuid.UUID, emailAddr string) (*models.User, error) {
	client, err := s.getOwnedClient(consultantID, clientID)
	if err != nil {
		return nil, err
	}
	if client.UserID != nil {
		return nil, fmt.Errorf("client already has a portal account")
	}

	exists, err := s.userRepo.EmailExists(emailAddr)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, ErrEmailTaken
	}

	tempPassword, err := auth.GenerateRandomToken(12)
	if err != nil {
		return nil, fmt.Errorf("failed to generate password: %w", err)
	}

	passwordHash, err := s.authSvc.HashPassword(tempPassword)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:        emailAddr,
		PasswordHash: passwordHash,
		FullName:     client.ContactName,
		Role:         "client",
		IsActive:     true,
	}

	if err := s.userRepo.Create(user); err != nil {
		return nil, fmt.Errorf("failed to create portal user: %w", err)
	}

	client.UserID = &user.ID
	if err := s.clientRepo.Update(client); err != nil {
		return nil, fmt.Errorf("failed to link portal user: %w", err)
	}

	if err := s.emailSvc.SendWelcomeEmail(emailAddr, client.ContactName, tempPassword); err != nil {
		// The consultant can resend credentials manually
		slog.Error("Failed to send welcome email", "client_id", clientID, "error", err)
	}

	s.audit(&consultantID, "invite", "client", fmt.Sprintf("Invited client %s as %s", clientID, emailAddr))

	return user, nil
}

// GetClient retrieves a client with its linked portal user
func (s *ClientService) GetClient(consultantID, clientID uuid.UUID) (*models.ClientWithUser, error) {
	client, err := s.getOwnedClient(consultantID, clientID)
	if err != nil {
		return nil, err
	}

	result := &models.ClientWithUser{Client: *client}
	if client.UserID != nil {
		user, err := s.userRepo.GetByID(*client.UserID)
		if err == nil {
			result.User = user
		}
	}
	return result, nil
}

// ListClients lists all clients owned by the consultant
func (s *ClientService) ListClients(consultantID uuid.UUID) ([]models.Client, error) {
	return s.clientRepo.ListByConsultant(consultantID)
}

// UpdateClient updates a client's profile fields
func (s *ClientService) UpdateClient(consultantID uuid.UUID, updated *models.Client) (*models.Client, error) {
	client, err := s.getOwnedClient(consultantID, updated.ID)
	if err != nil {
		return nil, err
	}

	client.CompanyName = updated.CompanyName
	client.ContactName = updated.ContactName
	client.Industry = updated.Industry
	if updated.Status != "" {
		switch updated.Status {
		case "prospect", "active", "inactive":
			client.Status = updated.Status
		default:
			return nil, fmt.Errorf("invalid client status: %s", updated.Status)
		}
	}

	if err := s.clientRepo.Update(client); err != nil {
		return nil, fmt.Errorf("failed to update client: %w", err)
	}
	return client, nil
}

// DeleteClient removes a client and everything under it
func (s *ClientService) DeleteClient(consultantID, clientID uuid.UUID) error {
	if _, err := s.getOwnedClient(consultantID, clientID); err != nil {
		return err
	}
	if err := s.clientRepo.Delete(clientID); err != nil {
		return err
	}
	s.audit(&consultantID, "delete", "client", fmt.Sprintf("Deleted client %s", clientID))
	return nil
}

// CreateIntakeForm opens an intake form for a client. Custom questions
// replace the defaults when provided.
func (s *ClientService) CreateIntakeForm(consultantID, clientID uuid.UUID, questions []string) (*models.IntakeForm, error) {
	if _, err := s.getOwnedClient(consultantID, clientID); err != nil {
		return nil, err
	}

	if len(questions) == 0 {
		questions = DefaultIntakeQuestions
	}

	responses := make([]models.IntakeResponse, len(questions))
	for i, q := range questions {
		responses[i] = models.IntakeResponse{Question: q}
	}

	form := &models.IntakeForm{
		ClientID:  clientID,
		Responses: responses,
		Status:    "pending",
	}

	if err := s.intakeRepo.Create(form); err != nil {
		return nil, fmt.Errorf("failed to create intake form: %w", err)
	}

	s.audit(&consultantID, "create", "intake_form", fmt.Sprintf("Opened intake form %s for client %s", form.ID, clientID))

	return form, nil
}

// GetLatestIntake returns the most recent intake form for a client. The
// caller must either own the client or be its portal user.
func (s *ClientService) GetLatestIntake(userID uuid.UUID, clientID uuid.UUID) (*models.IntakeForm, error) {
	client, err := s.clientRepo.GetByID(clientID)
	if err != nil {
		return nil, err
	}
	if client.ConsultantID != userID && (client.UserID == nil || *client.UserID != userID) {
		return nil, fmt.Errorf("permission denied: cannot view this intake form")
	}
	return s.intakeRepo.GetLatestByClient(clientID)
}

// SubmitIntakeResponses records a client's answers and completes the form.
// Answers map positionally onto the form's questions.
func (s *ClientService) SubmitIntakeResponses(userID, formID uuid.UUID, answers []string) (*models.IntakeForm, error) {
	form, err := s.intakeRepo.GetByID(formID)
	if err != nil {
		return nil, err
	}

	client, err := s.clientRepo.GetByID(form.ClientID)
	if err != nil {
		return nil, err
	}
	if client.UserID == nil || *client.UserID != userID {
		return nil, fmt.Errorf("permission denied: only the client can submit this form")
	}

	if form.Status == "completed" {
		return nil, fmt.Errorf("intake form already completed")
	}
	if len(answers) != len(form.Responses) {
		return nil, fmt.Errorf("expected %d answers, got %d", len(form.Responses), len(answers))
	}

	for i := range form.Responses {
		form.Responses[i].Answer = answers[i]
	}

	if err := s.intakeRepo.UpdateResponses(form); err != nil {
		return nil, fmt.Errorf("failed to save responses: %w", err)
	}
	if err := s.intakeRepo.MarkCompleted(form.ID); err != nil {
		return nil, fmt.Errorf("failed to complete intake form: %w", err)
	}

	now := time.Now()
	form.Status = "completed"
	form.CompletedAt = &now

	// First completed intake marks the client as onboarded
	if client.OnboardedAt == nil {
		if err := s.clientRepo.MarkOnboarded(client.ID); err != nil {
			slog.Warn("Failed to mark client onboarded", "client_id", client.ID, "error", err)
		}
	}

	s.audit(&userID, "submit", "intake_form", fmt.Sprintf("Submitted intake form %s", form.ID))

	return form, nil
}

func (s *ClientService) getOwnedClient(consultantID, clientID uuid.UUID) (*models.Client, error) {
	client, err := s.clientRepo.GetByID(clientID)
	if err != nil {
		return nil, err
	}
	if client.ConsultantID != consultantID {
		return nil, fmt.Errorf("permission denied: client belongs to another consultant")
	}
	return client, nil
}

func (s *ClientService) audit(userID *uuid.UUID, action, resource, details string) {
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
