package routes

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/nikhil/teamtasks/internal/handlers"
	"github.com/nikhil/teamtasks/internal/policy"
)

func taskRoutes(router *mux.Router, d *Deps) {
	taskHandler := handlers.NewTaskHandler(d.Tasks, d.Log)

	protectedRouter := router.PathPrefix("/tasks").Subrouter()
	protectedRouter.Use(d.protected()...)
	protectedRouter.HandleFunc("", taskHandler.GetMyTasks).Methods(http.MethodGet).Name(policy.TasksMine)
	protectedRouter.HandleFunc("/team/{teamId}", taskHandler.GetTeamTasks).Methods(http.MethodGet).Name(policy.TasksTeam)
	protectedRouter.HandleFunc("/{teamId}", taskHandler.CreateTask).Methods(http.MethodPost).Name(policy.TasksCreate)
	protectedRouter.HandleFunc("/{taskId}", taskHandler.UpdateTask).Methods(http.MethodPut).Name(policy.TasksUpdate)
	protectedRouter.HandleFunc("/{taskId}/assign", taskHandler.AssignTask).Methods(http.MethodPatch).Name(policy.TasksAssign)
	protectedRouter.HandleFunc("/{taskId}/status", taskHandler.UpdateStatus).Methods(http.MethodPatch).Name(policy.TasksStatus)
	protectedRouter.HandleFunc("/{taskId}/history", taskHandler.GetHistory).Methods(http.MethodGet).Name(policy.TasksHistory)
}
