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

// ActionHandler handles action item HTTP requests
type ActionHandler struct {
	actionService *service.ActionService
}

// NewActionHandler creates a new action handler
func NewActionHandler(actionService *service.ActionService) *ActionHandler {
	return &ActionHandler{actionService: actionService}
}

// ActionRequest represents action creation and update fields
type ActionRequest struct {
	Title       string     `json:"title" validate:"required"`
	Description string     `json:"description"`
	AssignedTo  string     `json:"assigned_to" validate:"required"`
	GoalID      *uuid.UUID `json:"goal_id"`
	DueDate     *time.Time `json:"due_date"`
}

// CreateAction creates an action item on an engagement
// @Summary Create action
// @Description Create an action item assigned to the consultant or the client
// @Tags Actions
// @Security BearerAuth
// @Param id path string true "Engagement ID"
// @Param request body ActionRequest true "Action details"
// @Success 201 {object} models.Action
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 403 {object} map[string]string "Permission denied"
// @Router /engagements/{id}/actions [post]
func (h *ActionHandler) CreateAction(w http.ResponseWriter, r *http.Request) {
	engagementID, ok := pathUUID(w, r, "id", ErrMsgInvalidEngagementID)
	if !ok {
		return
	}

	userID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUserIDNotFound)
		return
	}

	var req ActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidRequestBody)
		return
	}

	if err := validator.ValidateStruct(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	action, err := h.actionService.CreateAction(userID, &models.Action{
		EngagementID: engagementID,
		GoalID:       req.GoalID,
		Title:        req.Title,
		Description:  req.Description,
		AssignedTo:   req.AssignedTo,
		DueDate:      req.DueDate,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, action)
}

// ListActions returns the action items on an engagement
// @Summary List actions
// @Description Retrieve all action items on an engagement
// @Tags Actions
// @Security BearerAuth
// @Param id path string true "Engagement ID"
// @Success 200 {array} models.Action
// @Failure 403 {object} map[string]string "Permission denied"
// @Router /engagements/{id}/actions [get]
func (h *ActionHandler) ListActions(w http.ResponseWriter, r *http.Request) {
	engagementID, ok := pathUUID(w, r, "id", ErrMsgInvalidEngagementID)
	if !ok {
		return
	}

	userID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUserIDNotFound)
		return
	}

	actions, err := h.actionService.ListActions(userID, engagementID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, actions)
}

// ToggleStatus flips an action between pending and completed
// @Summary Toggle action status
// @Description Mark an action completed, or reopen it
// @Tags Actions
// @Security BearerAuth
// @Param actionId path string true "Action ID"
// @Success 200 {object} models.Action
// @Failure 403 {object} map[string]string "Permission denied"
// @Router /actions/{actionId}/toggle [put]
func (h *ActionHandler) ToggleStatus(w http.ResponseWriter, r *http.Request) {
	actionID, ok := pathUUID(w, r, "actionId", "Invalid action ID")
	if !ok {
		return
	}

	userID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUserIDNotFound)
		return
	}

	action, err := h.actionService.ToggleStatus(userID, actionID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, action)
}

// UpdateAction updates an action item
// @Summary Update action
// @Description Update an action's details
// @Tags Actions
// @Security BearerAuth
// @Param actionId path string true "Action ID"
// @Param request body ActionRequest true "Action fields"
// @Success 200 {object} models.Action
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 403 {object} map[string]string "Permission denied"
// @Router /actions/{actionId} [put]
func (h *ActionHandler) UpdateAction(w http.ResponseWriter, r *http.Request) {
	actionID, ok := pathUUID(w, r, "actionId", "Invalid action ID")
	if !ok {
		return
	}

	userID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUserIDNotFound)
		return
	}

	var req ActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidRequestBody)
		return
	}

	if err := validator.ValidateStruct(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	action, err := h.actionService.UpdateAction(userID, &models.Action{
		ID:          actionID,
		GoalID:      req.GoalID,
		Title:       req.Title,
		Description: req.Description,
		AssignedTo:  req.AssignedTo,
		DueDate:     req.DueDate,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, action)
}

// DeleteAction removes an action item
// @Summary Delete action
// @Description Delete an action item (consultant only)
// @Tags Actions
// @Security BearerAuth
// @Param actionId path string true "Action ID"
// @Success 200 {object} map[string]string
// @Failure 403 {object} map[string]string "Permission denied"
// @Router /actions/{actionId} [delete]
func (h *ActionHandler) DeleteAction(w http.ResponseWriter, r *http.Request) {
	actionID, ok := pathUUID(w, r, "actionId", "Invalid action ID")
	if !ok {
		return
	}

	userID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUserIDNotFound)
		return
	}

	if err := h.actionService.DeleteAction(userID, actionID); err != nil {
		respondServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{
		"message": "Action deleted successfully",
	})
}
