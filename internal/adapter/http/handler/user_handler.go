package handler

import (
	"net/http"

	"github.com/Abdurahmanit/GroupProject/classifieds/internal/adapter/http/middleware"
	"github.com/Abdurahmanit/GroupProject/classifieds/internal/domain"
	"github.com/Abdurahmanit/GroupProject/classifieds/internal/platform/logger"
	"go.uber.org/zap"
)

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserHandler serves authentication and profiles.
type UserHandler struct {
	users  domain.UserService
	logger *logger.Logger
}

func NewUserHandler(users domain.UserService, log *logger.Logger) *UserHandler {
	return &UserHandler{users: users, logger: log.Named("UserHTTPHandler")}
}

func (h *UserHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, h.logger, "Authenticate", err)
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, h.logger, "Authenticate", invalid("email and password are required"))
		return
	}
	resp, err := h.users.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, h.logger, "Authenticate", err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, resp)
}

// avatar returns the optional "avatar" upload.
func avatar(r *http.Request) (*domain.ImageUpload, error) {
	if !isMultipart(r) {
		return nil, nil
	}
	uploads, err := formFiles(r, "avatar")
	if err != nil || len(uploads) == 0 {
		return nil, err
	}
	return &uploads[0], nil
}

func (h *UserHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var payload domain.RegistrationPayload
	if err := decodeBody(r, &payload); err != nil {
		writeError(w, h.logger, "RegisterUser", err)
		return
	}
	av, err := avatar(r)
	if err != nil {
		writeError(w, h.logger, "RegisterUser", err)
		return
	}
	resp, err := h.users.RegisterUser(r.Context(), payload, av)
	if err != nil {
		writeError(w, h.logger, "RegisterUser", err)
		return
	}
	h.logger.Info("User registered via HTTP", zap.Int64("user_id", resp.ID))
	writeJSON(w, h.logger, http.StatusCreated, resp)
}

func (h *UserHandler) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, h.logger, "GetUserProfile", err)
		return
	}
	resp, err := h.users.GetUserProfile(r.Context(), id, middleware.TokenFromContext(r.Context()))
	if err != nil {
		writeError(w, h.logger, "GetUserProfile", err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, resp)
}

func (h *UserHandler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var payload domain.ProfilePayload
	if err := decodeBody(r, &payload); err != nil {
		writeError(w, h.logger, "UpdateUserProfile", err)
		return
	}
	av, err := avatar(r)
	if err != nil {
		writeError(w, h.logger, "UpdateUserProfile", err)
		return
	}
	resp, err := h.users.UpdateUserProfile(r.Context(), payload, av, middleware.TokenFromContext(r.Context()))
	if err != nil {
		writeError(w, h.logger, "UpdateUserProfile", err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, resp)
}
