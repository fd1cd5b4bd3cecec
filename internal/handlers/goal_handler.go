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

// GoalHandler handles goal HTTP requests
type GoalHandler struct {
	goalService *service.GoalService
}

// NewGoalHandler creates a new goal handler
func NewGoalHandler(goalService *service.GoalService) *GoalHandler {
	return &GoalHandler{goalService: goalService}
}

// GoalRequest represents goal creation and update fields
type GoalRequest struct {
	Title        string     `json:"title" validate:"required"`
	Description  string     `json:"description"`
	Status       string     `json:"status"`
	TargetValue  *float64   `json:"target_value"`
	CurrentValue *float64   `json:"current_value"`
	Unit         *string    `json:"unit"`
	DueDate      *time.Time `json:"due_date"`
}

// UpdateProgressRequest represents a progress update
type UpdateProgressRequest struct {
	CurrentValue float64 `json:"current_value"`
}

// CreateGoal creates a goal on an engagement
// @Summary Create goal
// @Description Create a goal on an engagement (consultant only)
// @Tags Goals
// @Security BearerAuth
// @Param id path string true "Engagement ID"
// @Param request body GoalRequest true "Goal details"
// @Success 201 {object} models.Goal
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 403 {object} map[string]string "Permission denied"
// @Router /engagements/{id}/goals [post]
func (h *GoalHandler) CreateGoal(w http.ResponseWriter, r *http.Request) {
	engagementID, ok := pathUUID(w, r, "id", ErrMsgInvalidEngagementID)
	if !ok {
		return
	}

	userID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUserIDNotFound)
		return
	}

	var req GoalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidRequestBody)
		return
	}

	if err := validator.ValidateStruct(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	goal, err := h.goalService.CreateGoal(userID, &models.Goal{
		EngagementID: engagementID,
		Title:        req.Title,
		Description:  req.Description,
		TargetValue:  req.TargetValue,
		CurrentValue: req.CurrentValue,
		Unit:         req.Unit,
		DueDate:      req.DueDate,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, goal)
}

// ListGoals returns the goals on an engagement
// @Summary List goals
// @Description Retrieve all goals on an engagement
// @Tags Goals
// @Security BearerAuth
// @Param id path string true "Engagement ID"
// @Success 200 {array} models.Goal
// @Failure 403 {object} map[string]string "Permission denied"
// @Router /engagements/{id}/goals [get]
func (h *GoalHandler) ListGoals(w http.ResponseWriter, r *http.Request) {
	engagementID, ok := pathUUID(w, r, "id", ErrMsgInvalidEngagementID)
	if !ok {
		return
	}

	userID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUserIDNotFound)
		return
	}

	goals, err := h.goalService.ListGoals(userID, engagementID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, goals)
}

// UpdateGoal updates a goal
// @Summary Update goal
// @Description Update a goal's details and status (consultant only)
// @Tags Goals
// @Security BearerAuth
// @Param goalId path string true "Goal ID"
// @Param request body GoalRequest true "Goal fields"
// @Success 200 {object} models.Goal
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 403 {object} map[string]string "Permission denied"
// @Router /goals/{goalId} [put]
func (h *GoalHandler) UpdateGoal(w http.ResponseWriter, r *http.Request) {
	goalID, ok := pathUUID(w, r, "goalId", "Invalid goal ID")
	if !ok {
		return
	}

	userID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUserIDNotFound)
		return
	}

	var req GoalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidRequestBody)
		return
	}

	if err := validator.ValidateStruct(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	goal, err := h.goalService.UpdateGoal(userID, &models.Goal{
		ID:           goalID,
		Title:        req.Title,
		Description:  req.Description,
		Status:       req.Status,
		TargetValue:  req.TargetValue,
		CurrentValue: req.CurrentValue,
		Unit:         req.Unit,
		DueDate:      req.DueDate,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, goal)
}

// UpdateProgress records progress toward a goal's target value
// @Summary Update goal progress
// @Description Update the goal's current value (either party)
// @Tags Goals
// @Security BearerAuth
// @Param goalId path string true "Goal ID"
// @Param request body UpdateProgressRequest true "Current value"
// @Success 200 {object} models.Goal
// @Failure 403 {object} map[string]string "Permission denied"
// @Router /goals/{goalId}/progress [put]
func (h *GoalHandler) UpdateProgress(w http.ResponseWriter, r *http.Request) {
	goalID, ok := pathUUID(w, r, "goalId", "Invalid goal ID")
	if !ok {
		return
	}

	userID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUserIDNotFound)
		return
	}

	var req UpdateProgressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidRequestBody)
		return
	}

	goal, err := h.goalService.UpdateProgress(userID, goalID, req.CurrentValue)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, goal)
}

// DeleteGoal removes a goal
// @Summary Delete goal
// @Description Delete a goal (consultant only)
// @Tags Goals
// @Security BearerAuth
// @Param goalId path string true "Goal ID"
// @Success 200 {object} map[string]string
// @Failure 403 {object} map[string]string "Permission denied"
// @Router /goals/{goalId} [delete]
func (h *GoalHandler) DeleteGoal(w http.ResponseWriter, r *http.Request) {
	goalID, ok := pathUUID(w, r, "goalId", "Invalid goal ID")
	if !ok {
		return
	}

	userID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUserIDNotFound)
		return
	}

	if err := h.goalService.DeleteGoal(userID, goalID); err != nil {
		respondServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{
		"message": "Goal deleted successfully",
	})
}
