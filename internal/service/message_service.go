package service

import (
	"fmt"
	"strings"

	"consulting-os/internal/models"
	"consulting-os/internal/repository"

	"github.com/google/uuid"
)

// MessageService handles engagement thread messaging
type MessageService struct {
	messageRepo    *repository.MessageRepository
	engagementRepo *repository.EngagementRepository
	publisher      Publisher
}

// NewMessageService creates a new message service
func NewMessageService(
	messageRepo *repository.MessageRepository,
	engagementRepo *repository.EngagementRepository,
	publisher Publisher,
) *MessageService {
	return &MessageService{
		messageRepo:    messageRepo,
		engagementRepo: engagementRepo,
		publisher:      publisher,
	}
}

// Send posts a message on the engagement thread. Blank messages are
// rejected before any persistence.
func (s *MessageService) Send(senderID, engagementID uuid.UUID, body string) (*models.Message, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, fmt.Errorf("message body is required")
	}
	if _, err := authorizeEngagement(s.engagementRepo, engagementID, senderID); err != nil {
		return nil, err
	}

	message := &models.Message{
		EngagementID: engagementID,
		SenderID:     senderID,
		Body:         body,
	}

	if err := s.messageRepo.Create(message); err != nil {
		return nil, fmt.Errorf("failed to send message: %w", err)
	}

	// Delivery to connected clients is best effort; the write already
	// succeeded.
	publish(s.publisher, engagementID, "message.created", message)

	return message, nil
}

// List returns the engagement thread in chronological order and marks
// messages addressed to the reader as read.
func (s *MessageService) List(userID, engagementID uuid.UUID) ([]models.MessageWithSender, error) {
	if _, err := authorizeEngagement(s.engagementRepo, engagementID, userID); err != nil {
		return nil, err
	}

	messages, err := s.messageRepo.ListByEngagement(engagementID)
	if err != nil {
		return nil, err
	}

	if _, err := s.messageRepo.MarkRead(engagementID, userID); err != nil {
		return nil, fmt.Errorf("failed to mark messages read: %w", err)
	}

	return messages, nil
}

// UnreadCount returns how many messages await the user on an engagement
func (s *MessageService) UnreadCount(userID, engagementID uuid.UUID) (int, error) {
	if _, err := authorizeEngagement(s.engagementRepo, engagementID, userID); err != nil {
		return 0, err
	}
	return s.messageRepo.CountUnread(engagementID, userID)
}

// AuthorizeFeed verifies the user may subscribe to the engagement's
// realtime feed.
func (s *MessageService) AuthorizeFeed(userID, engagementID uuid.UUID) error {
	_, err := authorizeEngagement(s.engagementRepo, engagementID, userID)
	return err
}
