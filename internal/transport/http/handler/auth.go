package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-api-authsession/internal/application/account"
	"github.com/go-api-authsession/internal/application/auth"
	"github.com/go-api-authsession/internal/domain"
	"github.com/go-api-authsession/internal/pkg/validate"
)

// AuthHandler handles the public /auth endpoints.
type AuthHandler struct {
	auth     auth.Service
	accounts account.Service
}

func NewAuthHandler(authSvc auth.Service, accountSvc account.Service) *AuthHandler {
	return &AuthHandler{auth: authSvc, accounts: accountSvc}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	sess, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, LoginEnvelope{
		Token:     sess.Token,
		TokenType: "Bearer",
		ExpiresAt: sess.ExpiresAt,
		Profile:   sess.Profile,
	})
}

// Logout reads the token straight from the header: a superseded token that
// still verifies may log its account out.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.auth.Logout(r.Context(), r.Header.Get("Authorization")); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "logged out"})
}

func (h *AuthHandler) SendRegisterCode(w http.ResponseWriter, r *http.Request) {
	q := struct {
		Email string `json:"email" validate:"required,email"`
	}{Email: r.URL.Query().Get("email")}
	if err := validate.Struct(q); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.accounts.SendRegisterCode(r.Context(), q.Email); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "code sent"})
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	p, err := h.accounts.Register(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, ProfileEnvelope{Profile: p})
}
