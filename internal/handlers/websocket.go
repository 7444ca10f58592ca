package handlers

import (
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/nikhil/teamtasks/internal/apperror"
	"github.com/nikhil/teamtasks/internal/logger"
	"github.com/nikhil/teamtasks/internal/policy"
	"github.com/nikhil/teamtasks/internal/realtime"
	"github.com/nikhil/teamtasks/internal/response"
	"github.com/nikhil/teamtasks/internal/validator"
)

// WebSocketHandler subscribes team members to their team's event feed
type WebSocketHandler struct {
	hub        *realtime.Hub
	membership policy.Membership
	upgrader   websocket.Upgrader
	log        *logger.Logger
}

// NewWebSocketHandler creates a new WebSocket handler. allowedOrigin "*"
// accepts any origin.
func NewWebSocketHandler(hub *realtime.Hub, membership policy.Membership, allowedOrigin string, log *logger.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		hub:        hub,
		membership: membership,
		log:        log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return allowedOrigin == "*" || origin == "" || origin == allowedOrigin
			},
		},
	}
}

// HandleWebSocket handles GET /ws?team_id=
func (h *WebSocketHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	caller, err := principal(r)
	if err != nil {
		response.Error(w, r, h.log, err)
		return
	}
	teamID := r.URL.Query().Get("team_id")
	if err := validator.UUID("team_id", teamID); err != nil {
		response.Error(w, r, h.log, err)
		return
	}

	isMember, err := h.membership.IsTeamMember(r.Context(), teamID, caller.UserID)
	if err != nil {
		response.Error(w, r, h.log, apperror.Internal(err))
		return
	}
	if !isMember {
		response.Error(w, r, h.log, apperror.NotFound("Team not found or user not in team"))
		return
	}

	// Upgrade writes its own error response on failure.
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithContext(r.Context()).Warn("Error upgrading connection", "error", err)
		return
	}
	h.hub.Attach(conn, teamID, caller.UserID)
}
