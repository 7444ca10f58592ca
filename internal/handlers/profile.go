package handlers

import (
	"net/http"

	"github.com/nikhil/teamtasks/internal/logger"
	"github.com/nikhil/teamtasks/internal/response"
	profileService "github.com/nikhil/teamtasks/internal/service/users"
)

type ProfileHandler struct {
	Service *profileService.ProfileService
	Log     *logger.Logger
}

func NewProfileHandler(service *profileService.ProfileService, log *logger.Logger) *ProfileHandler {
	return &ProfileHandler{Service: service, Log: log}
}

// GetUserProfile handles GET /users/me
func (h *ProfileHandler) GetUserProfile(w http.ResponseWriter, r *http.Request) {
	caller, err := principal(r)
	if err != nil {
		response.Error(w, r, h.Log, err)
		return
	}
	user, err := h.Service.GetUserProfile(r.Context(), caller.UserID)
	if err != nil {
		response.Error(w, r, h.Log, err)
		return
	}
	response.JSON(w, http.StatusOK, user)
}

// UpdateUserProfile handles PUT /users/me
func (h *ProfileHandler) UpdateUserProfile(w http.ResponseWriter, r *http.Request) {
	caller, err := principal(r)
	if err != nil {
		response.Error(w, r, h.Log, err)
		return
	}
	var req profileService.UpdateProfileRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		response.Error(w, r, h.Log, err)
		return
	}

	user, err := h.Service.UpdateUserProfile(r.Context(), caller.UserID, req)
	if err != nil {
		response.Error(w, r, h.Log, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]interface{}{
		"message": "User details updated successfully",
		"user":    user,
	})
}
