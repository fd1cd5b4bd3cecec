package middleware

import (
	"net/http"

	"consulting-os/internal/models"
	"consulting-os/internal/repository"

	"github.com/google/uuid"
)

// AuditMiddleware logs security-related actions
type AuditMiddleware struct {
	auditRepo *repository.AuditRepository
}

// NewAuditMiddleware creates a new audit middleware
func NewAuditMiddleware(auditRepo *repository.AuditRepository) *AuditMiddleware {
	return &AuditMiddleware{
		auditRepo: auditRepo,
	}
}

// Log records an audit entry after the wrapped handler runs
func (m *AuditMiddleware) Log(action, resource, details string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r)

			var userID *uuid.UUID
			if id, ok := GetUserID(r); ok {
				userID = &id
			}

			entry := &models.AuditLog{
				UserID:    userID,
				Action:    action,
				Resource:  resource,
				Details:   details,
				IPAddress: clientIP(r),
				UserAgent: r.UserAgent(),
			}

			// Audit failures must not block the request
			_ = m.auditRepo.Create(entry)
		})
	}
}

// LogAction records a single audit entry outside the middleware chain
func (m *AuditMiddleware) LogAction(userID *uuid.UUID, action, resource, details, ipAddress, userAgent string) error {
	entry := &models.AuditLog{
		UserID:    userID,
		Action:    action,
		Resource:  resource,
		Details:   details,
		IPAddress: ipAddress,
		UserAgent: userAgent,
	}

	return m.auditRepo.Create(entry)
}
