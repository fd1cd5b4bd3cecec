package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"consulting-os/internal/middleware"
	"consulting-os/internal/models"
	"consulting-os/internal/service"
	"consulting-os/pkg/validator"
)

// ClientHandler handles client and intake form HTTP requests
type ClientHandler struct {
	clientService *service.ClientService
}

// NewClientHandler creates a new client handler
func NewClientHandler(clientService *service.ClientService) *ClientHandler {
	return &ClientHandler{clientService: clientService}
}

// CreateClientRequest represents a client creation request
type CreateClientRequest struct {
	CompanyName string `json:"company_name" validate:"required"`
	ContactName string `json:"contact_name" validate:"required"`
	Industry    string `json:"industry"`
}

// UpdateClientRequest represents a client update request
type UpdateClientRequest struct {
	CompanyName string `json:"company_name" validate:"required"`
	ContactName string `json:"contact_name" validate:"required"`
	Industry    string `json:"industry"`
	Status      string `json:"status" validate:"required"`
}

// InviteClientRequest represents a portal invitation request
type InviteClientRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// CreateIntakeRequest represents an intake form creation request
type CreateIntakeRequest struct {
	Questions []string `json:"questions"`
}

// SubmitIntakeRequest represents intake form answers
type SubmitIntakeRequest struct {
	Answers []string `json:"answers" validate:"required"`
}

// CreateClient creates a new client record
// @Summary Create client
// @Description Create a new client for the authenticated consultant
// @Tags Clients
// @Security BearerAuth
// @Param request body CreateClientRequest true "Client details"
// @Success 201 {object} models.Client
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Router /clients [post]
func (h *ClientHandler) CreateClient(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUserIDNotFound)
		return
	}

	var req CreateClientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidRequestBody)
		return
	}

	if err := validator.ValidateStruct(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	client, err := h.clientService.CreateClient(userID, req.CompanyName, req.ContactName, req.Industry)
	if err != nil {
		slog.Error("Failed to create client", "error", err, "user_id", userID)
		respondServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, client)
}

// ListClients returns the consultant's clients
// @Summary List clients
// @Description Retrieve all clients belonging to the authenticated consultant
// @Tags Clients
// @Security BearerAuth
// @Success 200 {array} models.Client
// @Failure 401 {object} map[string]string "Unauthorized"
// @Router /clients [get]
func (h *ClientHandler) ListClients(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUserIDNotFound)
		return
	}

	clients, err := h.clientService.ListClients(userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, clients)
}

// GetClient returns a single client with portal account info
// @Summary Get client
// @Description Retrieve a client by ID
// @Tags Clients
// @Security BearerAuth
// @Param id path string true "Client ID"
// @Success 200 {object} models.ClientWithUser
// @Failure 403 {object} map[string]string "Permission denied"
// @Failure 404 {object} map[string]string "Not found"
// @Router /clients/{id} [get]
func (h *ClientHandler) GetClient(w http.ResponseWriter, r *http.Request) {
	clientID, ok := pathUUID(w, r, "id", ErrMsgInvalidClientID)
	if !ok {
		return
	}

	userID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUserIDNotFound)
		return
	}

	client, err := h.clientService.GetClient(userID, clientID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, client)
}

// UpdateClient updates a client record
// @Summary Update client
// @Description Update a client's details and status
// @Tags Clients
// @Security BearerAuth
// @Param id path string true "Client ID"
// @Param request body UpdateClientRequest true "Client fields"
// @Success 200 {object} models.Client
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 403 {object} map[string]string "Permission denied"
// @Router /clients/{id} [put]
func (h *ClientHandler) UpdateClient(w http.ResponseWriter, r *http.Request) {
	clientID, ok := pathUUID(w, r, "id", ErrMsgInvalidClientID)
	if !ok {
		return
	}

	userID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUserIDNotFound)
		return
	}

	var req UpdateClientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidRequestBody)
		return
	}

	if err := validator.ValidateStruct(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	client, err := h.clientService.UpdateClient(userID, &models.Client{
		ID:          clientID,
		CompanyName: req.CompanyName,
		ContactName: req.ContactName,
		Industry:    req.Industry,
		Status:      req.Status,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, client)
}

// DeleteClient removes a client record
// @Summary Delete client
// @Description Delete a client and its dependent records
// @Tags Clients
// @Security BearerAuth
// @Param id path string true "Client ID"
// @Success 200 {object} map[string]string
// @Failure 403 {object} map[string]string "Permission denied"
// @Router /clients/{id} [delete]
func (h *ClientHandler) DeleteClient(w http.ResponseWriter, r *http.Request) {
	clientID, ok := pathUUID(w, r, "id", ErrMsgInvalidClientID)
	if !ok {
		return
	}

	userID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUserIDNotFound)
		return
	}

	if err := h.clientService.DeleteClient(userID, clientID); err != nil {
		respondServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{
		"message": "Client deleted successfully",
	})
}

// InviteClient creates a portal account for the client and emails credentials
// @Summary Invite client to portal
// @Description Create a portal account with a temporary password and send a welcome email
// @Tags Clients
// @Security BearerAuth
// @Param id path string true "Client ID"
// @Param request body InviteClientRequest true "Client email"
// @Success 201 {object} models.User
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 403 {object} map[string]string "Permission denied"
// @Failure 409 {object} map[string]string "Already invited"
// @Router /clients/{id}/invite [post]
func (h *ClientHandler) InviteClient(w http.ResponseWriter, r *http.Request) {
	clientID, ok := pathUUID(w, r, "id", ErrMsgInvalidClientID)
	if !ok {
		return
	}

	userID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUserIDNotFound)
		return
	}

	var req InviteClientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidRequestBody)
		return
	}

	if err := validator.ValidateStruct(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	portalUser, err := h.clientService.InviteClient(userID, clientID, req.Email)
	if err != nil {
		slog.Error("Failed to invite client", "error", err, "client_id", clientID)
		respondServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, portalUser)
}

// CreateIntakeForm creates an intake form for a client
// @Summary Create intake form
// @Description Create an intake form with custom or default questions
// @Tags Clients
// @Security BearerAuth
// @Param id path string true "Client ID"
// @Param request body CreateIntakeRequest true "Questions (empty for defaults)"
// @Success 201 {object} models.IntakeForm
// @Failure 403 {object} map[string]string "Permission denied"
// @Router /clients/{id}/intake [post]
func (h *ClientHandler) CreateIntakeForm(w http.ResponseWriter, r *http.Request) {
	clientID, ok := pathUUID(w, r, "id", ErrMsgInvalidClientID)
	if !ok {
		return
	}

	userID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUserIDNotFound)
		return
	}

	var req CreateIntakeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidRequestBody)
		return
	}

	form, err := h.clientService.CreateIntakeForm(userID, clientID, req.Questions)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, form)
}

// GetLatestIntake returns the most recent intake form for a client
// @Summary Get latest intake form
// @Description Retrieve the client's most recent intake form
// @Tags Clients
// @Security BearerAuth
// @Param id path string true "Client ID"
// @Success 200 {object} models.IntakeForm
// @Failure 403 {object} map[string]string "Permission denied"
// @Failure 404 {object} map[string]string "Not found"
// @Router /clients/{id}/intake [get]
func (h *ClientHandler) GetLatestIntake(w http.ResponseWriter, r *http.Request) {
	clientID, ok := pathUUID(w, r, "id", ErrMsgInvalidClientID)
	if !ok {
		return
	}

	userID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUserIDNotFound)
		return
	}

	form, err := h.clientService.GetLatestIntake(userID, clientID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, form)
}

// SubmitIntakeResponses records the client's answers on an intake form
// @Summary Submit intake responses
// @Description Submit answers for a pending intake form (client portal only)
// @Tags Clients
// @Security BearerAuth
// @Param formId path string true "Intake form ID"
// @Param request body SubmitIntakeRequest true "Answers in question order"
// @Success 200 {object} models.IntakeForm
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 403 {object} map[string]string "Permission denied"
// @Router /intake/{formId}/responses [put]
func (h *ClientHandler) SubmitIntakeResponses(w http.ResponseWriter, r *http.Request) {
	formID, ok := pathUUID(w, r, "formId", "Invalid intake form ID")
	if !ok {
		return
	}

	userID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUserIDNotFound)
		return
	}

	var req SubmitIntakeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidRequestBody)
		return
	}

	form, err := h.clientService.SubmitIntakeResponses(userID, formID, req.Answers)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, form)
}
