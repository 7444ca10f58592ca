package handlers

import (
	"net/http"

	"github.com/nikhil/teamtasks/internal/logger"
	"github.com/nikhil/teamtasks/internal/response"
	teamService "github.com/nikhil/teamtasks/internal/service/team"
)

const (
	msgMemberAdded   = "User added to team successfully"
	msgMemberRemoved = "User deleted"
)

type TeamHandler struct {
	Service *teamService.TeamService
	Log     *logger.Logger
}

func NewTeamHandler(service *teamService.TeamService, log *logger.Logger) *TeamHandler {
	return &TeamHandler{Service: service, Log: log}
}

// CreateTeam handles POST /teams
func (h *TeamHandler) CreateTeam(w http.ResponseWriter, r *http.Request) {
	caller, err := principal(r)
	if err != nil {
		response.Error(w, r, h.Log, err)
		return
	}
	var req teamService.CreateTeamRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		response.Error(w, r, h.Log, err)
		return
	}

	team, err := h.Service.CreateTeam(r.Context(), caller.UserID, req)
	if err != nil {
		response.Error(w, r, h.Log, err)
		return
	}
	response.JSON(w, http.StatusCreated, team)
}

// GetUserTeams handles GET /teams/my-teams
func (h *TeamHandler) GetUserTeams(w http.ResponseWriter, r *http.Request) {
	caller, err := principal(r)
	if err != nil {
		response.Error(w, r, h.Log, err)
		return
	}
	teams, err := h.Service.GetUserTeams(r.Context(), caller.UserID)
	if err != nil {
		response.Error(w, r, h.Log, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]interface{}{"teams": teams})
}

// GetTeam handles GET /teams/{id}
func (h *TeamHandler) GetTeam(w http.ResponseWriter, r *http.Request) {
	caller, err := principal(r)
	if err != nil {
		response.Error(w, r, h.Log, err)
		return
	}
	teamID, err := pathID(r, "id")
	if err != nil {
		response.Error(w, r, h.Log, err)
		return
	}

	team, err := h.Service.GetTeam(r.Context(), caller.UserID, teamID)
	if err != nil {
		response.Error(w, r, h.Log, err)
		return
	}
	response.JSON(w, http.StatusOK, team)
}

// UpdateTeam handles PUT /teams/{id}
func (h *TeamHandler) UpdateTeam(w http.ResponseWriter, r *http.Request) {
	caller, err := principal(r)
	if err != nil {
		response.Error(w, r, h.Log, err)
		return
	}
	teamID, err := pathID(r, "id")
	if err != nil {
		response.Error(w, r, h.Log, err)
		return
	}
	var req teamService.UpdateTeamRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		response.Error(w, r, h.Log, err)
		return
	}

	team, err := h.Service.UpdateTeam(r.Context(), caller.UserID, teamID, req)
	if err != nil {
		response.Error(w, r, h.Log, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]interface{}{"teamUpdated": team})
}

// AddMember handles POST /teams/{id}/members
func (h *TeamHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	caller, err := principal(r)
	if err != nil {
		response.Error(w, r, h.Log, err)
		return
	}
	teamID, err := pathID(r, "id")
	if err != nil {
		response.Error(w, r, h.Log, err)
		return
	}
	var req teamService.MemberRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		response.Error(w, r, h.Log, err)
		return
	}

	member, err := h.Service.AddMember(r.Context(), caller.UserID, teamID, req.UserID)
	if err != nil {
		response.Error(w, r, h.Log, err)
		return
	}
	response.JSON(w, http.StatusCreated, map[string]interface{}{
		"message": msgMemberAdded,
		"member":  member,
	})
}

// RemoveMember handles DELETE /teams/{teamId}. The member is named in the
// body.
func (h *TeamHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	caller, err := principal(r)
	if err != nil {
		response.Error(w, r, h.Log, err)
		return
	}
	teamID, err := pathID(r, "teamId")
	if err != nil {
		response.Error(w, r, h.Log, err)
		return
	}
	var req teamService.MemberRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		response.Error(w, r, h.Log, err)
		return
	}

	reassigned, err := h.Service.RemoveMember(r.Context(), caller.UserID, teamID, req.UserID)
	if err != nil {
		response.Error(w, r, h.Log, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]interface{}{
		"message":          msgMemberRemoved,
		"tasks_reassigned": reassigned,
	})
}
