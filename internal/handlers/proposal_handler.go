package handlers

import (
	"encoding/json"
	"net/http"

	"consulting-os/internal/middleware"
	"consulting-os/internal/service"
)

// ProposalHandler handles proposal lifecycle HTTP requests
type ProposalHandler struct {
	proposalService *service.ProposalService
}

// NewProposalHandler creates a new proposal handler
func NewProposalHandler(proposalService *service.ProposalService) *ProposalHandler {
	return &ProposalHandler{proposalService: proposalService}
}

// SaveDraftRequest represents proposal draft content
type SaveDraftRequest struct {
	Content string `json:"content"`
}

// RejectProposalRequest represents a client's rejection with reason
type RejectProposalRequest struct {
	Reason string `json:"reason"`
}

// SaveDraft creates or updates the draft proposal on an engagement
// @Summary Save proposal draft
// @Description Create a draft proposal, or overwrite the existing draft's content
// @Tags Proposals
// @Security BearerAuth
// @Param id path string true "Engagement ID"
// @Param request body SaveDraftRequest true "Proposal content"
// @Success 200 {object} models.Proposal
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 403 {object} map[string]string "Permission denied"
// @Router /engagements/{id}/proposal [put]
func (h *ProposalHandler) SaveDraft(w http.ResponseWriter, r *http.Request) {
	engagementID, ok := pathUUID(w, r, "id", ErrMsgInvalidEngagementID)
	if !ok {
		return
	}

	userID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUserIDNotFound)
		return
	}

	var req SaveDraftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidRequestBody)
		return
	}

	proposal, err := h.proposalService.SaveDraft(userID, engagementID, req.Content)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, proposal)
}

// GetCurrent returns the most recent proposal on an engagement
// @Summary Get current proposal
// @Description Retrieve the engagement's latest proposal, if any
// @Tags Proposals
// @Security BearerAuth
// @Param id path string true "Engagement ID"
// @Success 200 {object} models.Proposal
// @Failure 403 {object} map[string]string "Permission denied"
// @Router /engagements/{id}/proposal [get]
func (h *ProposalHandler) GetCurrent(w http.ResponseWriter, r *http.Request) {
	engagementID, ok := pathUUID(w, r, "id", ErrMsgInvalidEngagementID)
	if !ok {
		return
	}

	userID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUserIDNotFound)
		return
	}

	proposal, err := h.proposalService.GetCurrent(userID, engagementID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if proposal == nil {
		respondWithError(w, http.StatusNotFound, "no proposal found for this engagement")
		return
	}

	respondWithJSON(w, http.StatusOK, proposal)
}

// ListProposals returns every proposal revision on an engagement
// @Summary List proposals
// @Description Retrieve the full proposal history (consultant only)
// @Tags Proposals
// @Security BearerAuth
// @Param id path string true "Engagement ID"
// @Success 200 {array} models.Proposal
// @Failure 403 {object} map[string]string "Permission denied"
// @Router /engagements/{id}/proposals [get]
func (h *ProposalHandler) ListProposals(w http.ResponseWriter, r *http.Request) {
	engagementID, ok := pathUUID(w, r, "id", ErrMsgInvalidEngagementID)
	if !ok {
		return
	}

	userID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUserIDNotFound)
		return
	}

	proposals, err := h.proposalService.ListProposals(userID, engagementID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, proposals)
}

// Send approves a draft proposal and delivers it to the client
// @Summary Send proposal
// @Description Approve and send the draft proposal to the client
// @Tags Proposals
// @Security BearerAuth
// @Param proposalId path string true "Proposal ID"
// @Success 200 {object} models.Proposal
// @Failure 400 {object} map[string]string "Not a draft"
// @Failure 403 {object} map[string]string "Permission denied"
// @Router /proposals/{proposalId}/send [post]
func (h *ProposalHandler) Send(w http.ResponseWriter, r *http.Request) {
	proposalID, ok := pathUUID(w, r, "proposalId", "Invalid proposal ID")
	if !ok {
		return
	}

	userID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUserIDNotFound)
		return
	}

	proposal, err := h.proposalService.Send(userID, proposalID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, proposal)
}

// Accept records the client's acceptance of a sent proposal
// @Summary Accept proposal
// @Description Accept a sent proposal and activate the engagement (client only)
// @Tags Proposals
// @Security BearerAuth
// @Param proposalId path string true "Proposal ID"
// @Success 200 {object} models.Proposal
// @Failure 400 {object} map[string]string "Not awaiting a response"
// @Failure 403 {object} map[string]string "Permission denied"
// @Router /proposals/{proposalId}/accept [post]
func (h *ProposalHandler) Accept(w http.ResponseWriter, r *http.Request) {
	proposalID, ok := pathUUID(w, r, "proposalId", "Invalid proposal ID")
	if !ok {
		return
	}

	userID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUserIDNotFound)
		return
	}

	proposal, err := h.proposalService.Accept(userID, proposalID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, proposal)
}

// Reject records the client's rejection of a sent proposal
// @Summary Reject proposal
// @Description Decline a sent proposal with a reason (client only)
// @Tags Proposals
// @Security BearerAuth
// @Param proposalId path string true "Proposal ID"
// @Param request body RejectProposalRequest true "Rejection reason"
// @Success 200 {object} models.Proposal
// @Failure 400 {object} map[string]string "Reason required"
// @Failure 403 {object} map[string]string "Permission denied"
// @Router /proposals/{proposalId}/reject [post]
func (h *ProposalHandler) Reject(w http.ResponseWriter, r *http.Request) {
	proposalID, ok := pathUUID(w, r, "proposalId", "Invalid proposal ID")
	if !ok {
		return
	}

	userID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUserIDNotFound)
		return
	}

	var req RejectProposalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidRequestBody)
		return
	}

	proposal, err := h.proposalService.Reject(userID, proposalID, req.Reason)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, proposal)
}

// DeleteDraft removes a draft proposal
// @Summary Delete draft proposal
// @Description Delete a proposal that is still in draft (consultant only)
// @Tags Proposals
// @Security BearerAuth
// @Param proposalId path string true "Proposal ID"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string "Not a draft"
// @Failure 403 {object} map[string]string "Permission denied"
// @Router /proposals/{proposalId} [delete]
func (h *ProposalHandler) DeleteDraft(w http.ResponseWriter, r *http.Request) {
	proposalID, ok := pathUUID(w, r, "proposalId", "Invalid proposal ID")
	if !ok {
		return
	}

	userID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUserIDNotFound)
		return
	}

	if err := h.proposalService.DeleteDraft(userID, proposalID); err != nil {
		respondServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{
		"message": "Proposal draft deleted successfully",
	})
}
