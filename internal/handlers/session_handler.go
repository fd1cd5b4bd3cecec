package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"consulting-os/internal/middleware"
	"consulting-os/internal/models"
	"consulting-os/internal/service"
	"consulting-os/pkg/validator"
)

// SessionHandler handles coaching session HTTP requests
type SessionHandler struct {
	sessionService *service.SessionService
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessionService *service.SessionService) *SessionHandler {
	return &SessionHandler{sessionService: sessionService}
}

// SessionRequest represents session creation and update fields
type SessionRequest struct {
	Title           string    `json:"title" validate:"required"`
	ScheduledAt     time.Time `json:"scheduled_at" validate:"required"`
	DurationMinutes int       `json:"duration_minutes"`
	Status          string    `json:"status"`
}

// SaveNotesRequest represents a private notes update
type SaveNotesRequest struct {
	Notes string `json:"notes"`
}

// CreateSession schedules a session on an engagement
// @Summary Create session
// @Description Schedule a session on an engagement (consultant only)
// @Tags Sessions
// @Security BearerAuth
// @Param id path string true "Engagement ID"
// @Param request body SessionRequest true "Session details"
// @Success 201 {object} models.Session
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 403 {object} map[string]string "Permission denied"
// @Router /engagements/{id}/sessions [post]
func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	engagementID, ok := pathUUID(w, r, "id", ErrMsgInvalidEngagementID)
	if !ok {
		return
	}

	userID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUserIDNotFound)
		return
	}

	var req SessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidRequestBody)
		return
	}

	if err := validator.ValidateStruct(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	session, err := h.sessionService.CreateSession(userID, &models.Session{
		EngagementID:    engagementID,
		Title:           req.Title,
		ScheduledAt:     req.ScheduledAt,
		DurationMinutes: req.DurationMinutes,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, session)
}

// ListSessions returns the sessions on an engagement
// @Summary List sessions
// @Description Retrieve all sessions on an engagement
// @Tags Sessions
// @Security BearerAuth
// @Param id path string true "Engagement ID"
// @Success 200 {array} models.Session
// @Failure 403 {object} map[string]string "Permission denied"
// @Router /engagements/{id}/sessions [get]
func (h *SessionHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	engagementID, ok := pathUUID(w, r, "id", ErrMsgInvalidEngagementID)
	if !ok {
		return
	}

	userID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUserIDNotFound)
		return
	}

	sessions, err := h.sessionService.ListSessions(userID, engagementID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, sessions)
}

// GetSession returns a session with its summaries
// @Summary Get session
// @Description Retrieve a session; clients only see published summaries
// @Tags Sessions
// @Security BearerAuth
// @Param sessionId path string true "Session ID"
// @Success 200 {object} models.SessionWithSummaries
// @Failure 403 {object} map[string]string "Permission denied"
// @Failure 404 {object} map[string]string "Not found"
// @Router /sessions/{sessionId} [get]
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := pathUUID(w, r, "sessionId", ErrMsgInvalidSessionID)
	if !ok {
		return
	}

	userID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUserIDNotFound)
		return
	}

	role, _ := middleware.GetUserRole(r)

	session, err := h.sessionService.GetSession(userID, role, sessionID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, session)
}

// UpdateSession updates a session
// @Summary Update session
// @Description Update a session's schedule and status (consultant only)
// @Tags Sessions
// @Security BearerAuth
// @Param sessionId path string true "Session ID"
// @Param request body SessionRequest true "Session fields"
// @Success 200 {object} models.Session
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 403 {object} map[string]string "Permission denied"
// @Router /sessions/{sessionId} [put]
func (h *SessionHandler) UpdateSession(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := pathUUID(w, r, "sessionId", ErrMsgInvalidSessionID)
	if !ok {
		return
	}

	userID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUserIDNotFound)
		return
	}

	var req SessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidRequestBody)
		return
	}

	if err := validator.ValidateStruct(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	session, err := h.sessionService.UpdateSession(userID, &models.Session{
		ID:              sessionID,
		Title:           req.Title,
		ScheduledAt:     req.ScheduledAt,
		DurationMinutes: req.DurationMinutes,
		Status:          req.Status,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, session)
}

// GetNotes returns the consultant's private notes for a session
// @Summary Get session notes
// @Description Retrieve decrypted private notes (consultant only)
// @Tags Sessions
// @Security BearerAuth
// @Param sessionId path string true "Session ID"
// @Success 200 {object} map[string]string
// @Failure 403 {object} map[string]string "Permission denied"
// @Router /sessions/{sessionId}/notes [get]
func (h *SessionHandler) GetNotes(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := pathUUID(w, r, "sessionId", ErrMsgInvalidSessionID)
	if !ok {
		return
	}

	userID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUserIDNotFound)
		return
	}

	notes, err := h.sessionService.GetNotes(userID, sessionID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{
		"notes": notes,
	})
}

// SaveNotes stores the consultant's private notes for a session
// @Summary Save session notes
// @Description Encrypt and store private notes (consultant only)
// @Tags Sessions
// @Security BearerAuth
// @Param sessionId path string true "Session ID"
// @Param request body SaveNotesRequest true "Notes"
// @Success 200 {object} map[string]string
// @Failure 403 {object} map[string]string "Permission denied"
// @Router /sessions/{sessionId}/notes [put]
func (h *SessionHandler) SaveNotes(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := pathUUID(w, r, "sessionId", ErrMsgInvalidSessionID)
	if !ok {
		return
	}

	userID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUserIDNotFound)
		return
	}

	var req SaveNotesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidRequestBody)
		return
	}

	if err := h.sessionService.SaveNotes(userID, sessionID, req.Notes); err != nil {
		respondServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{
		"message": "Notes saved successfully",
	})
}

// DeleteSession removes a session
// @Summary Delete session
// @Description Delete a session and its summaries (consultant only)
// @Tags Sessions
// @Security BearerAuth
// @Param sessionId path string true "Session ID"
// @Success 200 {object} map[string]string
// @Failure 403 {object} map[string]string "Permission denied"
// @Router /sessions/{sessionId} [delete]
func (h *SessionHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := pathUUID(w, r, "sessionId", ErrMsgInvalidSessionID)
	if !ok {
		return
	}

	userID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUserIDNotFound)
		return
	}

	if err := h.sessionService.DeleteSession(userID, sessionID); err != nil {
		respondServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{
		"message": "Session deleted successfully",
	})
}
