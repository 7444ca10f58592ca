package routes

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/nikhil/teamtasks/internal/handlers"
	"github.com/nikhil/teamtasks/internal/policy"
)

func teamRoutes(router *mux.Router, d *Deps) {
	teamHandler := handlers.NewTeamHandler(d.Teams, d.Log)

	protectedRouter := router.PathPrefix("/teams").Subrouter()
	protectedRouter.Use(d.protected()...)
	protectedRouter.HandleFunc("", teamHandler.CreateTeam).Methods(http.MethodPost).Name(policy.TeamsCreate)
	// Registered before /{id} so "my-teams" is not taken for an id.
	protectedRouter.HandleFunc("/my-teams", teamHandler.GetUserTeams).Methods(http.MethodGet).Name(policy.TeamsMine)
	protectedRouter.HandleFunc("/{id}", teamHandler.GetTeam).Methods(http.MethodGet).Name(policy.TeamsShow)
	protectedRouter.HandleFunc("/{id}", teamHandler.UpdateTeam).Methods(http.MethodPut).Name(policy.TeamsUpdate)
	protectedRouter.HandleFunc("/{id}/members", teamHandler.AddMember).Methods(http.MethodPost).Name(policy.TeamsMembersAdd)
	protectedRouter.HandleFunc("/{teamId}", teamHandler.RemoveMember).Methods(http.MethodDelete).Name(policy.TeamsMembersRemove)
}
