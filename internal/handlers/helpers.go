package handlers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
)

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.WriteHeader(code)
	if err := JSONResponse(w, payload); err != nil {
		w.Write([]byte(`{"error":"Internal server error"}`))
	}
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

// respondServiceError maps service error messages to HTTP status codes.
// Services phrase their errors consistently, so string matching is enough.
func respondServiceError(w http.ResponseWriter, err error) {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "permission denied"):
		respondWithError(w, http.StatusForbidden, msg)
	case strings.Contains(msg, "not found"):
		respondWithError(w, http.StatusNotFound, msg)
	case strings.Contains(msg, "already"):
		respondWithError(w, http.StatusConflict, msg)
	case strings.Contains(msg, "required"),
		strings.Contains(msg, "invalid"),
		strings.Contains(msg, "cannot"),
		strings.Contains(msg, "must"),
		strings.Contains(msg, "blank"),
		strings.Contains(msg, "only"),
		strings.Contains(msg, "not awaiting"),
		strings.Contains(msg, "no notes"):
		respondWithError(w, http.StatusBadRequest, msg)
	default:
		respondWithError(w, http.StatusInternalServerError, msg)
	}
}

// pathUUID parses a UUID path parameter, writing a 400 response on failure
func pathUUID(w http.ResponseWriter, r *http.Request, name, errMsg string) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, errMsg)
		return uuid.Nil, false
	}
	return id, true
}

func getIP(r *http.Request) string {
	forwarded := r.Header.Get("X-Forwarded-For")
	if forwarded != "" {
		return forwarded
	}
	realIP := r.Header.Get("X-Real-IP")
	if realIP != "" {
		return realIP
	}
	return r.RemoteAddr
}
