package handlers

import (
	"net/http"

	"github.com/nikhil/teamtasks/internal/logger"
	"github.com/nikhil/teamtasks/internal/response"
	taskService "github.com/nikhil/teamtasks/internal/service/task"
)

type TaskHandler struct {
	Service *taskService.TaskService
	Log     *logger.Logger
}

func NewTaskHandler(service *taskService.TaskService, log *logger.Logger) *TaskHandler {
	return &TaskHandler{Service: service, Log: log}
}

// CreateTask handles POST /tasks/{teamId}
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
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
	var req taskService.CreateTaskRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		response.Error(w, r, h.Log, err)
		return
	}

	task, err := h.Service.CreateTask(r.Context(), caller.UserID, teamID, req)
	if err != nil {
		response.Error(w, r, h.Log, err)
		return
	}
	response.JSON(w, http.StatusCreated, map[string]interface{}{
		"message":     taskService.MessageTaskCreated,
		"taskCreated": task,
	})
}

// GetMyTasks handles GET /tasks
func (h *TaskHandler) GetMyTasks(w http.ResponseWriter, r *http.Request) {
	caller, err := principal(r)
	if err != nil {
		response.Error(w, r, h.Log, err)
		return
	}
	tasks, err := h.Service.ListMine(r.Context(), caller.UserID)
	if err != nil {
		response.Error(w, r, h.Log, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]interface{}{"tasks": tasks})
}

// GetTeamTasks handles GET /tasks/team/{teamId}
func (h *TaskHandler) GetTeamTasks(w http.ResponseWriter, r *http.Request) {
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

	tasks, err := h.Service.ListTeam(r.Context(), caller.UserID, teamID)
	if err != nil {
		response.Error(w, r, h.Log, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]interface{}{"tasks": tasks})
}

// UpdateTask handles PUT /tasks/{taskId}
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	caller, err := principal(r)
	if err != nil {
		response.Error(w, r, h.Log, err)
		return
	}
	taskID, err := pathID(r, "taskId")
	if err != nil {
		response.Error(w, r, h.Log, err)
		return
	}
	var req taskService.UpdateTaskRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		response.Error(w, r, h.Log, err)
		return
	}

	task, err := h.Service.UpdateTask(r.Context(), caller.UserID, taskID, req)
	if err != nil {
		response.Error(w, r, h.Log, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]interface{}{
		"message": taskService.MessageTaskUpdated,
		"task":    task,
	})
}

// AssignTask handles PATCH /tasks/{taskId}/assign
func (h *TaskHandler) AssignTask(w http.ResponseWriter, r *http.Request) {
	caller, err := principal(r)
	if err != nil {
		response.Error(w, r, h.Log, err)
		return
	}
	taskID, err := pathID(r, "taskId")
	if err != nil {
		response.Error(w, r, h.Log, err)
		return
	}
	var req taskService.AssignRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		response.Error(w, r, h.Log, err)
		return
	}

	if _, err := h.Service.Reassign(r.Context(), caller.UserID, taskID, req.UserID); err != nil {
		response.Error(w, r, h.Log, err)
		return
	}
	response.Message(w, http.StatusOK, taskService.MessageTaskAssigned)
}

// UpdateStatus handles PATCH /tasks/{taskId}/status
func (h *TaskHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	caller, err := principal(r)
	if err != nil {
		response.Error(w, r, h.Log, err)
		return
	}
	taskID, err := pathID(r, "taskId")
	if err != nil {
		response.Error(w, r, h.Log, err)
		return
	}
	var req taskService.StatusRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		response.Error(w, r, h.Log, err)
		return
	}

	if _, err := h.Service.ApplyStatus(r.Context(), caller.UserID, taskID, req.Status); err != nil {
		response.Error(w, r, h.Log, err)
		return
	}
	response.Message(w, http.StatusOK, taskService.MessageStatusUpdated)
}

// GetHistory handles GET /tasks/{taskId}/history
func (h *TaskHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	caller, err := principal(r)
	if err != nil {
		response.Error(w, r, h.Log, err)
		return
	}
	taskID, err := pathID(r, "taskId")
	if err != nil {
		response.Error(w, r, h.Log, err)
		return
	}

	history, err := h.Service.History(r.Context(), caller.UserID, taskID)
	if err != nil {
		response.Error(w, r, h.Log, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]interface{}{"history": history})
}
