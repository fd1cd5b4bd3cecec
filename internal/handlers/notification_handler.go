package handlers

import (
	"net/http"
	"strconv"

	"consulting-os/internal/middleware"
	"consulting-os/internal/service"
)

// NotificationHandler handles notification HTTP requests
type NotificationHandler struct {
	notificationService *service.NotificationService
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(notificationService *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// List returns the user's notifications, newest first
// @Summary List notifications
// @Description Retrieve the caller's notifications
// @Tags Notifications
// @Security BearerAuth
// @Param limit query int false "Maximum entries (default 50, cap 200)"
// @Success 200 {array} models.Notification
// @Failure 401 {object} map[string]string "Unauthorized"
// @Router /notifications [get]
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUserIDNotFound)
		return
	}

	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil {
			limit = parsed
		}
	}

	notifications, err := h.notificationService.List(userID, limit)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, notifications)
}

// CountUnread returns the user's unread notification count
// @Summary Count unread notifications
// @Description Count the caller's unread notifications
// @Tags Notifications
// @Security BearerAuth
// @Success 200 {object} map[string]int
// @Failure 401 {object} map[string]string "Unauthorized"
// @Router /notifications/unread [get]
func (h *NotificationHandler) CountUnread(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUserIDNotFound)
		return
	}

	count, err := h.notificationService.CountUnread(userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]int{
		"unread": count,
	})
}

// MarkRead marks a single notification as read
// @Summary Mark notification read
// @Description Mark one of the caller's notifications as read
// @Tags Notifications
// @Security BearerAuth
// @Param notificationId path string true "Notification ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string "Not found"
// @Router /notifications/{notificationId}/read [put]
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	notificationID, ok := pathUUID(w, r, "notificationId", "Invalid notification ID")
	if !ok {
		return
	}

	userID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUserIDNotFound)
		return
	}

	if err := h.notificationService.MarkRead(userID, notificationID); err != nil {
		respondServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{
		"message": "Notification marked as read",
	})
}

// MarkAllRead marks every unread notification as read
// @Summary Mark all notifications read
// @Description Mark all of the caller's notifications as read
// @Tags Notifications
// @Security BearerAuth
// @Success 200 {object} map[string]int64
// @Failure 401 {object} map[string]string "Unauthorized"
// @Router /notifications/read-all [put]
func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUserIDNotFound)
		return
	}

	updated, err := h.notificationService.MarkAllRead(userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]int64{
		"updated": updated,
	})
}
