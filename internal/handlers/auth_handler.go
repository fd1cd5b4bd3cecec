package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"consulting-os/internal/config"
	"consulting-os/internal/middleware"
	"consulting-os/internal/service"
	"consulting-os/pkg/validator"
)

// AuthHandler handles authentication requests
type AuthHandler struct {
	authService *service.AuthService
	auditMw     *middleware.AuditMiddleware
	config      *config.Config
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService, auditMw *middleware.AuditMiddleware, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		auditMw:     auditMw,
		config:      cfg,
	}
}

// RegisterRequest represents a consultant registration request
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	FullName string `json:"full_name" validate:"required"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UpdateProfileRequest represents a profile update request
type UpdateProfileRequest struct {
	FullName string `json:"full_name" validate:"required"`
}

// ChangePasswordRequest represents a password change request
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
}

// Register handles consultant registration
// @Summary Register a new consultant
// @Description Create a new consultant account
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Registration details"
// @Success 201 {object} map[string]interface{} "Registration successful"
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 409 {object} map[string]string "Email already registered"
// @Router /auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidRequestBody)
		return
	}

	if err := validator.ValidateStruct(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.authService.Register(req.Email, req.Password, req.FullName)
	if err != nil {
		slog.Error("Registration failed", "email", req.Email, "error", err)
		_ = h.auditMw.LogAction(nil, "user.register.error", "users", "Registration failed for "+req.Email+": "+err.Error(), getIP(r), r.UserAgent())
		if errors.Is(err, service.ErrEmailTaken) {
			respondWithError(w, http.StatusConflict, err.Error())
		} else {
			respondWithError(w, http.StatusBadRequest, err.Error())
		}
		return
	}

	slog.Info("User registered", "user_id", user.ID, "email", user.Email)
	_ = h.auditMw.LogAction(&user.ID, "user.register", "users", "User registered", getIP(r), r.UserAgent())

	respondWithJSON(w, http.StatusCreated, map[string]interface{}{
		"user": user,
	})
}

// Login handles user login
// @Summary User login
// @Description Authenticate user and return JWT tokens
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} map[string]interface{} "Login successful with tokens"
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 401 {object} map[string]string "Invalid credentials"
// @Router /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidRequestBody)
		return
	}

	if err := validator.ValidateStruct(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	accessToken, refreshToken, accessJTI, refreshJTI, user, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		slog.Warn("Login failed", "email", req.Email, "error", err, "ip", getIP(r))
		_ = h.auditMw.LogAction(nil, "user.login.failed", "users", "Failed login attempt for "+req.Email, getIP(r), r.UserAgent())
		if errors.Is(err, service.ErrUserInactive) {
			respondWithError(w, http.StatusForbidden, "Account is deactivated")
			return
		}
		respondWithError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	slog.Info("User logged in", "user_id", user.ID, "email", user.Email, "ip", getIP(r))
	_ = h.auditMw.LogAction(&user.ID, "user.login", "users", "User logged in", getIP(r), r.UserAgent())

	// Session ID links the access and refresh tokens from this login
	sessionID, err := h.authService.GenerateSessionID()
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to generate session ID")
		return
	}

	if err := h.authService.CreateSession(user.ID, sessionID, refreshJTI, "refresh", getIP(r), r.UserAgent(), time.Now().Add(7*24*time.Hour)); err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to create session")
		return
	}
	_ = h.authService.CreateSession(user.ID, sessionID, accessJTI, "access", getIP(r), r.UserAgent(), time.Now().Add(24*time.Hour))

	http.SetCookie(w, &http.Cookie{
		Name:     "refresh_token",
		Value:    refreshToken,
		Path:     AuthAPIBasePath,
		MaxAge:   7 * 24 * 60 * 60, // 7 days
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteStrictMode,
	})

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"access_token":  accessToken,
		"refresh_token": refreshToken,
		"token_type":    "Bearer",
		"expires_in":    86400, // 24 hours in seconds
		"user":          user,
	})
}

// RefreshToken handles token refresh requests
// @Summary Refresh access token
// @Description Get a new access token using refresh token from cookie
// @Tags Authentication
// @Accept json
// @Produce json
// @Success 200 {object} map[string]string "New access token"
// @Failure 401 {object} map[string]string "Invalid refresh token"
// @Router /auth/refresh [post]
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie("refresh_token")
	if err != nil {
		respondWithError(w, http.StatusUnauthorized, "Refresh token not found")
		return
	}

	accessToken, newRefreshToken, user, err := h.authService.RefreshToken(cookie.Value, getIP(r), r.UserAgent())
	if err != nil {
		_ = h.auditMw.LogAction(nil, "user.token.refresh.error", "users", "Token refresh failed: "+err.Error(), getIP(r), r.UserAgent())
		// Clear invalid cookie
		http.SetCookie(w, &http.Cookie{
			Name:     "refresh_token",
			Value:    "",
			Path:     AuthAPIBasePath,
			MaxAge:   -1,
			HttpOnly: true,
		})
		respondWithError(w, http.StatusUnauthorized, "Invalid refresh token")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "refresh_token",
		Value:    newRefreshToken,
		Path:     AuthAPIBasePath,
		MaxAge:   7 * 24 * 60 * 60, // 7 days
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteStrictMode,
	})

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"access_token":  accessToken,
		"refresh_token": newRefreshToken,
		"token_type":    "Bearer",
		"expires_in":    86400, // 24 hours in seconds
		"user":          user,
	})
}

// Logout handles user logout
// @Summary User logout
// @Description Clear refresh token cookie and invalidate session
// @Tags Authentication
// @Accept json
// @Produce json
// @Success 200 {object} map[string]string "Logout successful"
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	userID, hasUserID := middleware.GetUserID(r)

	cookie, err := r.Cookie("refresh_token")
	if err == nil && cookie.Value != "" {
		// Invalidate only the current session (access + refresh tokens from this login)
		if err := h.authService.InvalidateCurrentSession(cookie.Value); err != nil {
			slog.Error("Failed to invalidate session during logout", "error", err)
		}
	}

	if hasUserID {
		slog.Info("User logged out", "user_id", userID, "ip", getIP(r))
		_ = h.auditMw.LogAction(&userID, "user.logout", "users", "User logged out", getIP(r), r.UserAgent())
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "refresh_token",
		Value:    "",
		Path:     AuthAPIBasePath,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteStrictMode,
	})

	respondWithJSON(w, http.StatusOK, map[string]string{
		"message": "Logged out successfully",
	})
}

// GetProfile returns the authenticated user's profile
// @Summary Get profile
// @Description Retrieve the authenticated user's profile
// @Tags Authentication
// @Security BearerAuth
// @Success 200 {object} models.User
// @Failure 401 {object} map[string]string "Unauthorized"
// @Router /auth/me [get]
func (h *AuthHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUserIDNotFound)
		return
	}

	user, err := h.authService.GetUserByID(userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, user)
}

// UpdateProfile updates the authenticated user's profile
// @Summary Update profile
// @Description Update the authenticated user's display name
// @Tags Authentication
// @Security BearerAuth
// @Param request body UpdateProfileRequest true "Profile fields"
// @Success 200 {object} models.User
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Router /auth/me [put]
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUserIDNotFound)
		return
	}

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidRequestBody)
		return
	}

	if err := validator.ValidateStruct(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.authService.UpdateProfile(userID, req.FullName); err != nil {
		respondServiceError(w, err)
		return
	}

	user, err := h.authService.GetUserByID(userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, user)
}

// ChangePassword changes the authenticated user's password
// @Summary Change password
// @Description Change password and revoke all existing sessions
// @Tags Authentication
// @Security BearerAuth
// @Param request body ChangePasswordRequest true "Current and new password"
// @Success 200 {object} map[string]string "Password changed"
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Router /auth/change-password [post]
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUserIDNotFound)
		return
	}

	var req ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidRequestBody)
		return
	}

	if err := validator.ValidateStruct(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.authService.ChangePassword(userID, req.CurrentPassword, req.NewPassword); err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			respondWithError(w, http.StatusUnauthorized, "Current password is incorrect")
			return
		}
		respondServiceError(w, err)
		return
	}

	_ = h.auditMw.LogAction(&userID, "user.password.changed", "users", "Password changed, all sessions revoked", getIP(r), r.UserAgent())

	respondWithJSON(w, http.StatusOK, map[string]string{
		"message": "Password changed successfully",
	})
}
