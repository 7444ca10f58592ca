package handlers

import (
	"net/http"

	"github.com/nikhil/teamtasks/internal/logger"
	"github.com/nikhil/teamtasks/internal/response"
	authService "github.com/nikhil/teamtasks/internal/service/auth"
)

type AuthHandler struct {
	Service *authService.AuthService
	Log     *logger.Logger
}

// NewAuthHandler creates a new instance of AuthHandler
func NewAuthHandler(service *authService.AuthService, log *logger.Logger) *AuthHandler {
	return &AuthHandler{Service: service, Log: log}
}

// Signup handles the user registration request
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req authService.RegisterRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		response.Error(w, r, h.Log, err)
		return
	}

	user, err := h.Service.Register(r.Context(), req)
	if err != nil {
		response.Error(w, r, h.Log, err)
		return
	}
	response.JSON(w, http.StatusCreated, user)
}

// Login handles the user authentication request
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req authService.LoginRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		response.Error(w, r, h.Log, err)
		return
	}

	session, err := h.Service.Authenticate(r.Context(), req)
	if err != nil {
		response.Error(w, r, h.Log, err)
		return
	}
	response.JSON(w, http.StatusOK, session)
}

