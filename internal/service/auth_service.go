package service

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"consulting-os/internal/auth"
	"consulting-os/internal/email"
	"consulting-os/internal/models"
	"consulting-os/internal/repository"

	"github.com/google/uuid"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserInactive       = errors.New("user account is inactive")
	ErrEmailTaken         = errors.New("email already registered")
)

// AuthService handles authentication business logic
type AuthService struct {
	userRepo    *repository.UserRepository
	sessionRepo *repository.AuthSessionRepository
	auditRepo   *repository.AuditRepository
	authSvc     *auth.Service
	emailSvc    *email.Service
}

// NewAuthService creates a new authentication service
func NewAuthService(
	userRepo *repository.UserRepository,
	sessionRepo *repository.AuthSessionRepository,
	auditRepo *repository.AuditRepository,
	authSvc *auth.Service,
	emailSvc *email.Service,
) *AuthService {
	return &AuthService{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		auditRepo:   auditRepo,
		authSvc:     authSvc,
		emailSvc:    emailSvc,
	}
}

// Register creates a consultant account. Client accounts are created by
// their consultant through the client invite flow instead.
func (s *AuthService) Register(emailAddr, password, fullName string) (*models.User, error) {
	exists, err := s.userRepo.EmailExists(emailAddr)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, ErrEmailTaken
	}

	passwordHash, err := s.authSvc.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:        emailAddr,
		PasswordHash: passwordHash,
		FullName:     fullName,
		Role:         "consultant",
		IsActive:     true,
	}

	if err := s.userRepo.Create(user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.audit(&user.ID, "register", "user", fmt.Sprintf("Registered consultant %s", user.Email))

	return user, nil
}

// Login authenticates a user and returns JWT tokens with their JTIs
func (s *AuthService) Login(emailAddr, password string) (accessToken, refreshToken, accessJTI, refreshJTI string, user *models.User, err error) {
	user, err = s.userRepo.GetByEmail(emailAddr)
	if err != nil {
		return "", "", "", "", nil, ErrInvalidCredentials
	}

	if err := s.authSvc.VerifyPassword(user.PasswordHash, password); err != nil {
		return "", "", "", "", nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		return "", "", "", "", nil, ErrUserInactive
	}

	accessToken, accessJTI, err = s.authSvc.GenerateToken(user.ID, user.Email, user.Role)
	if err != nil {
		return "", "", "", "", nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, refreshJTI, err = s.authSvc.GenerateRefreshToken(user.ID, user.Email, user.Role)
	if err != nil {
		return "", "", "", "", nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	_ = s.userRepo.UpdateLastLogin(user.ID)

	return accessToken, refreshToken, accessJTI, refreshJTI, user, nil
}

// CreateSession creates a session for a token JTI
func (s *AuthService) CreateSession(userID uuid.UUID, sessionID, jti, tokenType, ipAddress, userAgent string, expiresAt time.Time) error {
	session := &models.AuthSession{
		UserID:         userID,
		SessionID:      sessionID, // Links access and refresh tokens from same login
		JTI:            jti,
		TokenType:      tokenType,
		ExpiresAt:      expiresAt,
		LastActivityAt: time.Now(),
		IPAddress:      ipAddress,
		UserAgent:      userAgent,
	}

	return s.sessionRepo.Create(session)
}

// GenerateSessionID generates a unique session identifier
func (s *AuthService) GenerateSessionID() (string, error) {
	return auth.GenerateRandomToken(16)
}

// RefreshToken rotates a refresh token and returns a fresh token pair
func (s *AuthService) RefreshToken(refreshToken, ipAddress, userAgent string) (accessToken, newRefreshToken string, user *models.User, err error) {
	claims, err := s.authSvc.ValidateToken(refreshToken)
	if err != nil {
		return "", "", nil, fmt.Errorf("invalid refresh token: %w", err)
	}

	if claims.ID == "" {
		return "", "", nil, errors.New("token missing JTI")
	}

	session, err := s.sessionRepo.GetByJTI(claims.ID)
	if err != nil || session == nil {
		return "", "", nil, errors.New("session not found or expired")
	}

	if session.UserID != claims.UserID {
		return "", "", nil, errors.New("session user mismatch")
	}

	if session.TokenType != "refresh" {
		return "", "", nil, errors.New("invalid token type")
	}

	user, err = s.userRepo.GetByID(claims.UserID)
	if err != nil {
		return "", "", nil, fmt.Errorf("user not found: %w", err)
	}

	// Drop the whole login session, access and refresh tokens alike
	_ = s.sessionRepo.DeleteBySessionID(session.SessionID)

	newSessionID, err := auth.GenerateRandomToken(16)
	if err != nil {
		return "", "", nil, fmt.Errorf("failed to generate session ID: %w", err)
	}

	accessToken, accessJTI, err := s.authSvc.GenerateToken(user.ID, user.Email, user.Role)
	if err != nil {
		return "", "", nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	var refreshJTI string
	newRefreshToken, refreshJTI, err = s.authSvc.GenerateRefreshToken(user.ID, user.Email, user.Role)
	if err != nil {
		return "", "", nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	if err := s.CreateSession(user.ID, newSessionID, refreshJTI, "refresh", ipAddress, userAgent, time.Now().Add(7*24*time.Hour)); err != nil {
		return "", "", nil, fmt.Errorf("failed to create refresh session: %w", err)
	}

	if err := s.CreateSession(user.ID, newSessionID, accessJTI, "access", ipAddress, userAgent, time.Now().Add(24*time.Hour)); err != nil {
		// Access tokens still work without session tracking
		slog.Warn("Failed to create access token session", "error", err)
	}

	return accessToken, newRefreshToken, user, nil
}

// InvalidateCurrentSession invalidates only the current login session.
// This deletes both the access and refresh tokens from the same login.
// JTI extraction skips validation so logout works with expired tokens.
func (s *AuthService) InvalidateCurrentSession(token string) error {
	jti, err := s.authSvc.ExtractJTI(token)
	if err != nil {
		return fmt.Errorf("failed to extract JTI: %w", err)
	}

	session, err := s.sessionRepo.GetByJTI(jti)
	if err != nil {
		return fmt.Errorf("failed to get session: %w", err)
	}
	if session == nil {
		return nil
	}

	return s.sessionRepo.DeleteBySessionID(session.SessionID)
}

// InvalidateAllUserSessions invalidates all sessions for a user
func (s *AuthService) InvalidateAllUserSessions(userID uuid.UUID) error {
	return s.sessionRepo.DeleteByUserID(userID)
}

// GetUserByID retrieves a user by their ID
func (s *AuthService) GetUserByID(userID uuid.UUID) (*models.User, error) {
	return s.userRepo.GetByID(userID)
}

// UpdateProfile changes a user's display name
func (s *AuthService) UpdateProfile(userID uuid.UUID, fullName string) error {
	return s.userRepo.UpdateProfile(userID, fullName)
}

// ChangePassword verifies the current password and sets a new one. All
// other sessions are revoked so stolen tokens stop working.
func (s *AuthService) ChangePassword(userID uuid.UUID, currentPassword, newPassword string) error {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return fmt.Errorf("user not found: %w", err)
	}

	if err := s.authSvc.VerifyPassword(user.PasswordHash, currentPassword); err != nil {
		return ErrInvalidCredentials
	}

	passwordHash, err := s.authSvc.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.userRepo.UpdatePassword(userID, passwordHash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	if err := s.sessionRepo.DeleteByUserID(userID); err != nil {
		slog.Warn("Failed to revoke sessions after password change", "user_id", userID, "error", err)
	}

	s.audit(&userID, "change_password", "user", "Password changed")

	return nil
}

func (s *AuthService) audit(userID *uuid.UUID, action, resource, details string) {
	if s.auditRepo == nil {
		return
	}
	if err := s.auditRepo.Create(&models.AuditLog{
		UserID:   userID,
		Action:   action,
		Resource: resource,
		Details:  details,
	}); err != nil {
		slog.Warn("Failed to write audit log", "action", action, "error", err)
	}
}
