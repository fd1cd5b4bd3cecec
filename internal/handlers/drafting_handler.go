package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"consulting-os/internal/middleware"
	"consulting-os/internal/service"
)

// DraftingHandler handles AI drafting and usage metering HTTP requests
type DraftingHandler struct {
	draftingService *service.DraftingService
}

// NewDraftingHandler creates a new drafting handler
func NewDraftingHandler(draftingService *service.DraftingService) *DraftingHandler {
	return &DraftingHandler{draftingService: draftingService}
}

// GenerateProposal drafts a proposal from the engagement and intake context
// @Summary Generate proposal draft
// @Description Draft a proposal with AI; falls back to a mock document when generation is unavailable
// @Tags Drafting
// @Security BearerAuth
// @Param id path string true "Engagement ID"
// @Success 200 {object} models.Proposal
// @Failure 403 {object} map[string]string "Permission denied"
// @Router /engagements/{id}/proposal/generate [post]
func (h *DraftingHandler) GenerateProposal(w http.ResponseWriter, r *http.Request) {
	engagementID, ok := pathUUID(w, r, "id", ErrMsgInvalidEngagementID)
	if !ok {
		return
	}

	userID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUserIDNotFound)
		return
	}

	proposal, err := h.draftingService.GenerateProposal(userID, engagementID)
	if err != nil {
		slog.Error("Proposal generation failed", "error", err, "engagement_id", engagementID)
		respondServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, proposal)
}

// GenerateSummary drafts a session summary from the session notes
// @Summary Generate session summary
// @Description Draft a summary from the encrypted session notes and extract action items
// @Tags Drafting
// @Security BearerAuth
// @Param sessionId path string true "Session ID"
// @Success 200 {object} models.SessionSummary
// @Failure 400 {object} map[string]string "No notes to summarize"
// @Failure 403 {object} map[string]string "Permission denied"
// @Failure 503 {object} map[string]string "Drafting unavailable"
// @Router /sessions/{sessionId}/summaries/generate [post]
func (h *DraftingHandler) GenerateSummary(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := pathUUID(w, r, "sessionId", ErrMsgInvalidSessionID)
	if !ok {
		return
	}

	userID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUserIDNotFound)
		return
	}

	summary, err := h.draftingService.GenerateSummary(userID, sessionID)
	if err != nil {
		if errors.Is(err, service.ErrDraftingUnavailable) {
			respondWithError(w, http.StatusServiceUnavailable, "AI drafting is currently unavailable")
			return
		}
		slog.Error("Summary generation failed", "error", err, "session_id", sessionID)
		respondServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, summary)
}

// GenerateProgressUpdate drafts a client-facing progress note
// @Summary Generate progress update
// @Description Draft a progress update from the engagement's goals and actions
// @Tags Drafting
// @Security BearerAuth
// @Param id path string true "Engagement ID"
// @Success 200 {object} map[string]string
// @Failure 403 {object} map[string]string "Permission denied"
// @Failure 503 {object} map[string]string "Drafting unavailable"
// @Router /engagements/{id}/progress-update [post]
func (h *DraftingHandler) GenerateProgressUpdate(w http.ResponseWriter, r *http.Request) {
	engagementID, ok := pathUUID(w, r, "id", ErrMsgInvalidEngagementID)
	if !ok {
		return
	}

	userID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUserIDNotFound)
		return
	}

	text, err := h.draftingService.GenerateProgressUpdate(userID, engagementID)
	if err != nil {
		if errors.Is(err, service.ErrDraftingUnavailable) {
			respondWithError(w, http.StatusServiceUnavailable, "AI drafting is currently unavailable")
			return
		}
		slog.Error("Progress update generation failed", "error", err, "engagement_id", engagementID)
		respondServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{
		"content": text,
	})
}

// UsageReport returns AI usage totals and recent log entries
// @Summary Get AI usage report
// @Description Retrieve token and cost totals per drafting kind for a date range
// @Tags Drafting
// @Security BearerAuth
// @Param from query string false "Range start (RFC3339), defaults to 30 days ago"
// @Param to query string false "Range end (RFC3339), defaults to now"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]string "Unauthorized"
// @Router /usage [get]
func (h *DraftingHandler) UsageReport(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUserIDNotFound)
		return
	}

	to := time.Now()
	from := to.AddDate(0, 0, -30)
	if fromStr := r.URL.Query().Get("from"); fromStr != "" {
		if parsed, err := time.Parse(time.RFC3339, fromStr); err == nil {
			from = parsed
		}
	}
	if toStr := r.URL.Query().Get("to"); toStr != "" {
		if parsed, err := time.Parse(time.RFC3339, toStr); err == nil {
			to = parsed
		}
	}

	totals, logs, err := h.draftingService.UsageReport(userID, from, to)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"from":   from,
		"to":     to,
		"totals": totals,
		"logs":   logs,
	})
}
