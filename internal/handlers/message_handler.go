package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"consulting-os/internal/middleware"
	"consulting-os/internal/realtime"
	"consulting-os/internal/service"
)

// MessageHandler handles engagement messaging HTTP requests
type MessageHandler struct {
	messageService *service.MessageService
	hub            *realtime.Hub
}

// NewMessageHandler creates a new message handler
func NewMessageHandler(messageService *service.MessageService, hub *realtime.Hub) *MessageHandler {
	return &MessageHandler{
		messageService: messageService,
		hub:            hub,
	}
}

// SendMessageRequest represents a new message
type SendMessageRequest struct {
	Body string `json:"body"`
}

// Send posts a message on an engagement thread
// @Summary Send message
// @Description Post a message visible to both engagement parties
// @Tags Messages
// @Security BearerAuth
// @Param id path string true "Engagement ID"
// @Param request body SendMessageRequest true "Message body"
// @Success 201 {object} models.Message
// @Failure 400 {object} map[string]string "Blank message"
// @Failure 403 {object} map[string]string "Permission denied"
// @Router /engagements/{id}/messages [post]
func (h *MessageHandler) Send(w http.ResponseWriter, r *http.Request) {
	engagementID, ok := pathUUID(w, r, "id", ErrMsgInvalidEngagementID)
	if !ok {
		return
	}

	userID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUserIDNotFound)
		return
	}

	var req SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidRequestBody)
		return
	}

	message, err := h.messageService.Send(userID, engagementID, req.Body)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, message)
}

// List returns the engagement's message thread and marks it read
// @Summary List messages
// @Description Retrieve the engagement's messages; the caller's unread messages are marked read
// @Tags Messages
// @Security BearerAuth
// @Param id path string true "Engagement ID"
// @Success 200 {array} models.MessageWithSender
// @Failure 403 {object} map[string]string "Permission denied"
// @Router /engagements/{id}/messages [get]
func (h *MessageHandler) List(w http.ResponseWriter, r *http.Request) {
	engagementID, ok := pathUUID(w, r, "id", ErrMsgInvalidEngagementID)
	if !ok {
		return
	}

	userID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUserIDNotFound)
		return
	}

	messages, err := h.messageService.List(userID, engagementID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, messages)
}

// UnreadCount returns the caller's unread message count on an engagement
// @Summary Get unread count
// @Description Count messages from the other party not yet read by the caller
// @Tags Messages
// @Security BearerAuth
// @Param id path string true "Engagement ID"
// @Success 200 {object} map[string]int
// @Failure 403 {object} map[string]string "Permission denied"
// @Router /engagements/{id}/messages/unread [get]
func (h *MessageHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	engagementID, ok := pathUUID(w, r, "id", ErrMsgInvalidEngagementID)
	if !ok {
		return
	}

	userID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUserIDNotFound)
		return
	}

	count, err := h.messageService.UnreadCount(userID, engagementID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]int{
		"unread": count,
	})
}

// Feed upgrades the connection to a websocket scoped to the engagement
// @Summary Subscribe to engagement events
// @Description Open a websocket that streams messages, goal, action, proposal and summary events
// @Tags Messages
// @Security BearerAuth
// @Param id path string true "Engagement ID"
// @Success 101 {string} string "Switching protocols"
// @Failure 403 {object} map[string]string "Permission denied"
// @Router /engagements/{id}/events [get]
func (h *MessageHandler) Feed(w http.ResponseWriter, r *http.Request) {
	engagementID, ok := pathUUID(w, r, "id", ErrMsgInvalidEngagementID)
	if !ok {
		return
	}

	userID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUserIDNotFound)
		return
	}

	if err := h.messageService.AuthorizeFeed(userID, engagementID); err != nil {
		if strings.Contains(err.Error(), "permission denied") {
			respondWithError(w, http.StatusForbidden, err.Error())
		} else {
			respondWithError(w, http.StatusNotFound, err.Error())
		}
		return
	}

	h.hub.Serve(w, r, engagementID)
}
