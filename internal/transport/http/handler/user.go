package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-api-authsession/internal/application/account"
	"github.com/go-api-authsession/internal/domain"
	"github.com/go-api-authsession/internal/pkg/validate"
)

// multipartOverhead is the slack allowed on top of the avatar limit for
// multipart boundaries and headers.
const multipartOverhead = 1 << 20

// UserHandler serves the /user endpoints. Every method receives the
// authenticated principal from the middleware.Authed gate.
type UserHandler struct {
	svc            account.Service
	avatarMaxBytes int64
}

func NewUserHandler(svc account.Service, avatarMaxBytes int64) *UserHandler {
	return &UserHandler{svc: svc, avatarMaxBytes: avatarMaxBytes}
}

func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request, p *domain.Account) {
	writeJSON(w, http.StatusOK, ProfileEnvelope{Profile: h.svc.GetProfile(r.Context(), p)})
}

func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request, p *domain.Account) {
	var req domain.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	profile, err := h.svc.UpdateProfile(r.Context(), p, req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ProfileEnvelope{Profile: profile})
}

func (h *UserHandler) Info(w http.ResponseWriter, r *http.Request, p *domain.Account) {
	writeJSON(w, http.StatusOK, InfoEnvelope{Info: h.svc.Info(r.Context(), p)})
}

func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request, p *domain.Account) {
	var req domain.ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.svc.ChangePassword(r.Context(), p, req); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "password changed"})
}

func (h *UserHandler) UploadAvatar(w http.ResponseWriter, r *http.Request, p *domain.Account) {
	r.Body = http.MaxBytesReader(w, r.Body, h.avatarMaxBytes+multipartOverhead)
	if err := r.ParseMultipartForm(h.avatarMaxBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	f, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer f.Close()

	url, err := h.svc.UploadAvatar(r.Context(), p, account.AvatarUpload{
		Reader:   f,
		Filename: header.Filename,
		Size:     header.Size,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, AvatarEnvelope{Avatar: url})
}

func (h *UserHandler) SendVerifyEmail(w http.ResponseWriter, r *http.Request, p *domain.Account) {
	if err := h.svc.SendVerifyEmail(r.Context(), p); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "code sent"})
}

func (h *UserHandler) VerifyEmail(w http.ResponseWriter, r *http.Request, p *domain.Account) {
	var req domain.VerifyEmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.svc.VerifyEmail(r.Context(), p, req); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "email verified"})
}
