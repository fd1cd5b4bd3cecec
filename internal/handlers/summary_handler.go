package handlers

import (
	"encoding/json"
	"net/http"

	"consulting-os/internal/middleware"
	"consulting-os/internal/models"
	"consulting-os/internal/service"
	"consulting-os/pkg/validator"
)

// SummaryHandler handles session summary HTTP requests
type SummaryHandler struct {
	summaryService *service.SummaryService
}

// NewSummaryHandler creates a new summary handler
func NewSummaryHandler(summaryService *service.SummaryService) *SummaryHandler {
	return &SummaryHandler{summaryService: summaryService}
}

// SummaryRequest represents summary creation and update fields
type SummaryRequest struct {
	Content      string   `json:"content" validate:"required"`
	KeyTakeaways []string `json:"key_takeaways"`
	NextSteps    []string `json:"next_steps"`
}

// CreateSummary creates a manual draft summary for a session
// @Summary Create summary
// @Description Write a draft summary by hand (consultant only)
// @Tags Summaries
// @Security BearerAuth
// @Param sessionId path string true "Session ID"
// @Param request body SummaryRequest true "Summary content"
// @Success 201 {object} models.SessionSummary
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 403 {object} map[string]string "Permission denied"
// @Router /sessions/{sessionId}/summaries [post]
func (h *SummaryHandler) CreateSummary(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := pathUUID(w, r, "sessionId", ErrMsgInvalidSessionID)
	if !ok {
		return
	}

	userID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUserIDNotFound)
		return
	}

	var req SummaryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidRequestBody)
		return
	}

	if err := validator.ValidateStruct(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	summary, err := h.summaryService.CreateSummary(userID, &models.SessionSummary{
		SessionID:    sessionID,
		Content:      req.Content,
		KeyTakeaways: req.KeyTakeaways,
		NextSteps:    req.NextSteps,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, summary)
}

// UpdateSummary edits a draft summary
// @Summary Update summary
// @Description Edit a summary that is still in draft (consultant only)
// @Tags Summaries
// @Security BearerAuth
// @Param summaryId path string true "Summary ID"
// @Param request body SummaryRequest true "Summary content"
// @Success 200 {object} models.SessionSummary
// @Failure 400 {object} map[string]string "Not a draft"
// @Failure 403 {object} map[string]string "Permission denied"
// @Router /summaries/{summaryId} [put]
func (h *SummaryHandler) UpdateSummary(w http.ResponseWriter, r *http.Request) {
	summaryID, ok := pathUUID(w, r, "summaryId", "Invalid summary ID")
	if !ok {
		return
	}

	userID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUserIDNotFound)
		return
	}

	var req SummaryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidRequestBody)
		return
	}

	if err := validator.ValidateStruct(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	summary, err := h.summaryService.UpdateSummary(userID, &models.SessionSummary{
		ID:           summaryID,
		Content:      req.Content,
		KeyTakeaways: req.KeyTakeaways,
		NextSteps:    req.NextSteps,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, summary)
}

// Approve marks a draft summary as approved
// @Summary Approve summary
// @Description Approve a draft summary ahead of publishing (consultant only)
// @Tags Summaries
// @Security BearerAuth
// @Param summaryId path string true "Summary ID"
// @Success 200 {object} models.SessionSummary
// @Failure 400 {object} map[string]string "Not a draft"
// @Failure 403 {object} map[string]string "Permission denied"
// @Router /summaries/{summaryId}/approve [post]
func (h *SummaryHandler) Approve(w http.ResponseWriter, r *http.Request) {
	summaryID, ok := pathUUID(w, r, "summaryId", "Invalid summary ID")
	if !ok {
		return
	}

	userID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUserIDNotFound)
		return
	}

	summary, err := h.summaryService.Approve(userID, summaryID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, summary)
}

// Publish makes an approved summary visible to the client
// @Summary Publish summary
// @Description Publish an approved summary to the client portal (consultant only)
// @Tags Summaries
// @Security BearerAuth
// @Param summaryId path string true "Summary ID"
// @Success 200 {object} models.SessionSummary
// @Failure 400 {object} map[string]string "Not approved"
// @Failure 403 {object} map[string]string "Permission denied"
// @Router /summaries/{summaryId}/publish [post]
func (h *SummaryHandler) Publish(w http.ResponseWriter, r *http.Request) {
	summaryID, ok := pathUUID(w, r, "summaryId", "Invalid summary ID")
	if !ok {
		return
	}

	userID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUserIDNotFound)
		return
	}

	summary, err := h.summaryService.Publish(userID, summaryID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, summary)
}

// DeleteSummary removes a draft summary
// @Summary Delete summary
// @Description Delete a summary that is still in draft (consultant only)
// @Tags Summaries
// @Security BearerAuth
// @Param summaryId path string true "Summary ID"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string "Not a draft"
// @Failure 403 {object} map[string]string "Permission denied"
// @Router /summaries/{summaryId} [delete]
func (h *SummaryHandler) DeleteSummary(w http.ResponseWriter, r *http.Request) {
	summaryID, ok := pathUUID(w, r, "summaryId", "Invalid summary ID")
	if !ok {
		return
	}

	userID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUserIDNotFound)
		return
	}

	if err := h.summaryService.DeleteSummary(userID, summaryID); err != nil {
		respondServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{
		"message": "Summary deleted successfully",
	})
}
