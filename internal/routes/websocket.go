package routes

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/nikhil/teamtasks/internal/handlers"
	"github.com/nikhil/teamtasks/internal/middleware"
	"github.com/nikhil/teamtasks/internal/policy"
)

// websocketRoutes registers the team event feed when realtime is enabled.
func websocketRoutes(router *mux.Router, d *Deps) {
	if d.Hub == nil {
		return
	}
	wsHandler := handlers.NewWebSocketHandler(d.Hub, d.Store, d.AllowedOrigin, d.Log)

	wsRouter := router.PathPrefix("/ws").Subrouter()
	wsRouter.Use(
		middleware.WebSocketAuthMiddleware(d.Tokens, d.Log),
		middleware.Authorize(d.Policy, d.Log),
	)
	wsRouter.HandleFunc("", wsHandler.HandleWebSocket).Methods(http.MethodGet).Name(policy.RealtimeConnect)
}
