package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"consulting-os/internal/middleware"
	"consulting-os/internal/models"
	"consulting-os/internal/service"
	"consulting-os/pkg/validator"

	"github.com/google/uuid"
)

// EngagementHandler handles engagement HTTP requests
type EngagementHandler struct {
	engagementService *service.EngagementService
}

// NewEngagementHandler creates a new engagement handler
func NewEngagementHandler(engagementService *service.EngagementService) *EngagementHandler {
	return &EngagementHandler{engagementService: engagementService}
}

// CreateEngagementRequest represents an engagement creation request
type CreateEngagementRequest struct {
	ClientID    uuid.UUID  `json:"client_id" validate:"required"`
	Title       string     `json:"title" validate:"required"`
	Description string     `json:"description"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
}

// UpdateEngagementRequest represents an engagement update request
type UpdateEngagementRequest struct {
	Title       string     `json:"title" validate:"required"`
	Description string     `json:"description"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
}

// UpdateEngagementStatusRequest represents a status transition request
type UpdateEngagementStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// CreateEngagement creates a new engagement in proposal status
// @Summary Create engagement
// @Description Create a new engagement for a client
// @Tags Engagements
// @Security BearerAuth
// @Param request body CreateEngagementRequest true "Engagement details"
// @Success 201 {object} models.Engagement
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 403 {object} map[string]string "Permission denied"
// @Router /engagements [post]
func (h *EngagementHandler) CreateEngagement(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUserIDNotFound)
		return
	}

	var req CreateEngagementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidRequestBody)
		return
	}

	if err := validator.ValidateStruct(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	engagement, err := h.engagementService.CreateEngagement(userID, &models.Engagement{
		ClientID:    req.ClientID,
		Title:       req.Title,
		Description: req.Description,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, engagement)
}

// ListEngagements returns the engagements visible to the user
// @Summary List engagements
// @Description Consultants see their own engagements, clients see engagements they are party to
// @Tags Engagements
// @Security BearerAuth
// @Success 200 {array} models.EngagementWithClient
// @Failure 401 {object} map[string]string "Unauthorized"
// @Router /engagements [get]
func (h *EngagementHandler) ListEngagements(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUserIDNotFound)
		return
	}

	role, ok := middleware.GetUserRole(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User role not found")
		return
	}

	engagements, err := h.engagementService.ListEngagements(userID, role)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, engagements)
}

// GetEngagement returns an engagement with its goals, actions and sessions
// @Summary Get engagement
// @Description Retrieve an engagement detail view
// @Tags Engagements
// @Security BearerAuth
// @Param id path string true "Engagement ID"
// @Success 200 {object} models.EngagementDetail
// @Failure 403 {object} map[string]string "Permission denied"
// @Failure 404 {object} map[string]string "Not found"
// @Router /engagements/{id} [get]
func (h *EngagementHandler) GetEngagement(w http.ResponseWriter, r *http.Request) {
	engagementID, ok := pathUUID(w, r, "id", ErrMsgInvalidEngagementID)
	if !ok {
		return
	}

	userID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUserIDNotFound)
		return
	}

	detail, err := h.engagementService.GetEngagement(userID, engagementID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, detail)
}

// UpdateEngagement updates an engagement's details
// @Summary Update engagement
// @Description Update title, description and dates
// @Tags Engagements
// @Security BearerAuth
// @Param id path string true "Engagement ID"
// @Param request body UpdateEngagementRequest true "Engagement fields"
// @Success 200 {object} models.Engagement
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 403 {object} map[string]string "Permission denied"
// @Router /engagements/{id} [put]
func (h *EngagementHandler) UpdateEngagement(w http.ResponseWriter, r *http.Request) {
	engagementID, ok := pathUUID(w, r, "id", ErrMsgInvalidEngagementID)
	if !ok {
		return
	}

	userID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUserIDNotFound)
		return
	}

	var req UpdateEngagementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidRequestBody)
		return
	}

	if err := validator.ValidateStruct(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	engagement, err := h.engagementService.UpdateEngagement(userID, &models.Engagement{
		ID:          engagementID,
		Title:       req.Title,
		Description: req.Description,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, engagement)
}

// UpdateStatus transitions an engagement to a new lifecycle status
// @Summary Update engagement status
// @Description Transition the engagement through its lifecycle
// @Tags Engagements
// @Security BearerAuth
// @Param id path string true "Engagement ID"
// @Param request body UpdateEngagementStatusRequest true "Target status"
// @Success 200 {object} models.Engagement
// @Failure 400 {object} map[string]string "Invalid transition"
// @Failure 403 {object} map[string]string "Permission denied"
// @Router /engagements/{id}/status [put]
func (h *EngagementHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	engagementID, ok := pathUUID(w, r, "id", ErrMsgInvalidEngagementID)
	if !ok {
		return
	}

	userID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUserIDNotFound)
		return
	}

	var req UpdateEngagementStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidRequestBody)
		return
	}

	engagement, err := h.engagementService.UpdateStatus(userID, engagementID, req.Status)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, engagement)
}

// DeleteEngagement removes an engagement
// @Summary Delete engagement
// @Description Delete an engagement and its dependent records
// @Tags Engagements
// @Security BearerAuth
// @Param id path string true "Engagement ID"
// @Success 200 {object} map[string]string
// @Failure 403 {object} map[string]string "Permission denied"
// @Router /engagements/{id} [delete]
func (h *EngagementHandler) DeleteEngagement(w http.ResponseWriter, r *http.Request) {
	engagementID, ok := pathUUID(w, r, "id", ErrMsgInvalidEngagementID)
	if !ok {
		return
	}

	userID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUserIDNotFound)
		return
	}

	if err := h.engagementService.DeleteEngagement(userID, engagementID); err != nil {
		respondServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{
		"message": "Engagement deleted successfully",
	})
}
