package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-api-authsession/internal/domain"
)

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// LoginEnvelope wraps a successful login.
type LoginEnvelope struct {
	Token     string          `json:"token"`
	TokenType string          `json:"token_type"`
	ExpiresAt time.Time       `json:"expires_at"`
	Profile   *domain.Profile `json:"profile"`
}

// ProfileEnvelope wraps profile responses.
type ProfileEnvelope struct {
	Profile *domain.Profile `json:"profile"`
}

// InfoEnvelope wraps the masked account summary.
type InfoEnvelope struct {
	Info *domain.AccountInfo `json:"info"`
}

// AvatarEnvelope wraps the stored avatar URL.
type AvatarEnvelope struct {
	Avatar string `json:"avatar"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Error: msg})
}

// writeServiceError maps a service error to its HTTP status. Authentication
// failures and infrastructure errors never expose their underlying cause.
func writeServiceError(w http.ResponseWriter, err error) {
	status, msg := httpError(err)
	if status >= http.StatusInternalServerError {
		slog.Error("request failed", "status", status, "err", err)
	}
	writeError(w, status, msg)
}

func httpError(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, domain.ErrInvalidCredentials.Error()
	case errors.Is(err, domain.ErrUnauthenticated),
		errors.Is(err, domain.ErrInvalidToken),
		errors.Is(err, domain.ErrNoToken):
		return http.StatusUnauthorized, domain.ErrUnauthenticated.Error()
	case errors.Is(err, domain.ErrThrottled):
		return http.StatusTooManyRequests, domain.ErrThrottled.Error()
	case errors.Is(err, domain.ErrCodeExpired):
		return http.StatusBadRequest, domain.ErrCodeExpired.Error()
	case errors.Is(err, domain.ErrCodeMismatch):
		return http.StatusBadRequest, domain.ErrCodeMismatch.Error()
	case errors.Is(err, domain.ErrBadRequest):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, err.Error()
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, domain.ErrNotFound.Error()
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict, err.Error()
	case errors.Is(err, domain.ErrDispatchFailed):
		return http.StatusBadGateway, domain.ErrDispatchFailed.Error()
	case errors.Is(err, domain.ErrStoreUnavailable):
		return http.StatusServiceUnavailable, "service temporarily unavailable"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}
