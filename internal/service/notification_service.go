package service

import (
	"consulting-os/internal/models"
	"consulting-os/internal/repository"

	"github.com/google/uuid"
)

const defaultNotificationLimit = 50

// NotificationService handles in-app notifications
type NotificationService struct {
	notifRepo *repository.NotificationRepository
}

// NewNotificationService creates a new notification service
func NewNotificationService(notifRepo *repository.NotificationRepository) *NotificationService {
	return &NotificationService{notifRepo: notifRepo}
}

// List returns the user's most recent notifications
func (s *NotificationService) List(userID uuid.UUID, limit int) ([]models.Notification, error) {
	if limit <= 0 || limit > 200 {
		limit = defaultNotificationLimit
	}
	return s.notifRepo.ListByUser(userID, limit)
}

// CountUnread returns the user's unread notification count
func (s *NotificationService) CountUnread(userID uuid.UUID) (int, error) {
	return s.notifRepo.CountUnread(userID)
}

// MarkRead marks a single notification as read. Scoped to the owner so
// one user cannot touch another's notifications.
func (s *NotificationService) MarkRead(userID, notificationID uuid.UUID) error {
	return s.notifRepo.MarkRead(notificationID, userID)
}

// MarkAllRead marks all of the user's notifications as read
func (s *NotificationService) MarkAllRead(userID uuid.UUID) (int64, error) {
	return s.notifRepo.MarkAllRead(userID)
}
