package taskService

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nikhil/teamtasks/internal/apperror"
	"github.com/nikhil/teamtasks/internal/lifecycle"
	"github.com/nikhil/teamtasks/internal/logger"
	"github.com/nikhil/teamtasks/internal/models"
	"github.com/nikhil/teamtasks/internal/policy"
	"github.com/nikhil/teamtasks/internal/realtime"
	"github.com/nikhil/teamtasks/internal/repository"
)

const (
	msgTeamNotFound         = "Team not found"
	msgTeamNotVisible       = "Team not found or user not in team"
	msgTaskNotFound         = "Task not found"
	msgTaskNotVisible       = "Task not found or user not in team"
	msgNotTeamMember        = "This user does not belong to this team"
	msgMustBePending        = "This task must be pending"
	msgSameAssignee         = "This task is already assigned to this user"
	msgCompletedNotEditable = "Completed tasks cannot be edited"
	msgConcurrentStatus     = "Task status was changed by another request"
	msgConcurrentAssignment = "Task was changed by another request"
)

// Success messages returned by the HTTP layer.
const (
	MessageTaskCreated   = "Task created with success"
	MessageTaskUpdated   = "Task updated successfully"
	MessageTaskAssigned  = "Task assigned to a new user"
	MessageStatusUpdated = "Status updated successfully"
)

// TaskService handles task-related operations
type TaskService struct {
	Store     *repository.Store
	Publisher realtime.Publisher
	Log       *logger.Logger
	now       func() time.Time
}

// CreateTaskRequest represents the request body for task creation. The
// assignee defaults to the creator.
type CreateTaskRequest struct {
	Title        string              `json:"title" validate:"required,min=3,max=255"`
	Description  string              `json:"description" validate:"max=2000"`
	Priority     models.TaskPriority `json:"priority" validate:"required,oneof=high medium low"`
	AssignedToID string              `json:"assigned_to_id" validate:"omitempty,uuid"`
}

// UpdateTaskRequest represents a partial edit of a task's fields
type UpdateTaskRequest struct {
	Title       *string              `json:"title" validate:"omitempty,min=3,max=255"`
	Description *string              `json:"description" validate:"omitempty,max=2000"`
	Priority    *models.TaskPriority `json:"priority" validate:"omitempty,oneof=high medium low"`
}

// StatusRequest represents the request body for a status transition
type StatusRequest struct {
	Status models.TaskStatus `json:"status" validate:"required,oneof=pending in_progress completed"`
}

// AssignRequest carries the new assignee. An empty user id assigns the task
// to the caller.
type AssignRequest struct {
	UserID string `json:"user_id" validate:"omitempty,uuid"`
}

// NewTaskService initializes a new task service
func NewTaskService(store *repository.Store, publisher realtime.Publisher, log *logger.Logger) *TaskService {
	return &TaskService{
		Store:     store,
		Publisher: publisher,
		Log:       log,
		now:       time.Now,
	}
}

// CreateTask adds a pending task to a team the actor administers.
func (s *TaskService) CreateTask(ctx context.Context, actorID, teamID string, req CreateTaskRequest) (*models.Task, error) {
	assignee := req.AssignedToID
	if assignee == "" {
		assignee = actorID
	}

	currentTime := s.now().Unix()
	task := &models.Task{
		ID:           uuid.NewString(),
		Title:        strings.TrimSpace(req.Title),
		Description:  req.Description,
		Priority:     req.Priority,
		Status:       models.StatusPending,
		TeamID:       teamID,
		AssignedToID: assignee,
		CreatedAt:    currentTime,
		UpdatedAt:    currentTime,
	}

	err := s.Store.ExecTx(ctx, func(q *repository.Queries) error {
		if _, err := q.GetTeam(ctx, teamID); err != nil {
			return notFoundOr(err, msgTeamNotFound)
		}
		isAdmin, err := q.IsTeamAdmin(ctx, teamID, actorID)
		if err != nil {
			return err
		}
		if !isAdmin {
			return apperror.NotFound(msgTeamNotFound)
		}
		isMember, err := q.IsTeamMember(ctx, teamID, assignee)
		if err != nil {
			return err
		}
		if !isMember {
			return apperror.NotFound(msgNotTeamMember)
		}
		return q.CreateTask(ctx, task)
	})
	if err != nil {
		return nil, apperror.From(err)
	}

	s.Log.WithContext(ctx).Info("Task created", "task_id", task.ID, "team_id", teamID, "assigned_to", assignee)
	s.Publisher.Publish(realtime.Event{
		Type:    realtime.EventTaskCreated,
		TeamID:  teamID,
		ActorID: actorID,
		UserID:  assignee,
		Payload: task,
	})
	return task, nil
}

// ApplyStatus moves a task along its workflow and records the transition.
// Only the assignee or an admin of the task's team can see the task here.
func (s *TaskService) ApplyStatus(ctx context.Context, actorID, taskID string, requested models.TaskStatus) (*models.Task, error) {
	var task *models.Task
	var entry models.TaskHistory

	err := s.Store.ExecTx(ctx, func(q *repository.Queries) error {
		var err error
		task, err = q.GetTask(ctx, taskID)
		if err != nil {
			return notFoundOr(err, msgTaskNotVisible)
		}
		isTeamAdmin, err := q.IsTeamAdmin(ctx, task.TeamID, actorID)
		if err != nil {
			return err
		}
		if !policy.CanChangeStatus(task, actorID, isTeamAdmin) {
			return apperror.NotFound(msgTaskNotVisible)
		}

		if err := lifecycle.Transition(task.Status, requested); err != nil {
			return err
		}

		currentTime := s.now().Unix()
		swapped, err := q.SetTaskStatus(ctx, task.ID, task.Status, requested, currentTime)
		if err != nil {
			return err
		}
		if !swapped {
			return apperror.Conflict(msgConcurrentStatus)
		}

		entry = models.TaskHistory{
			ID:        uuid.NewString(),
			TaskID:    task.ID,
			OldStatus: task.Status,
			NewStatus: requested,
			ChangedBy: actorID,
			ChangedAt: currentTime,
		}
		if err := q.InsertTaskHistory(ctx, &entry); err != nil {
			return err
		}
		task.Status = requested
		task.UpdatedAt = currentTime
		return nil
	})
	if err != nil {
		return nil, apperror.From(err)
	}

	s.Log.WithContext(ctx).Audit("Task status changed",
		"task_id", task.ID,
		"old_status", entry.OldStatus,
		"new_status", entry.NewStatus,
		"changed_by", actorID,
	)
	s.Publisher.Publish(realtime.Event{
		Type:    realtime.EventTaskStatusChanged,
		TeamID:  task.TeamID,
		ActorID: actorID,
		UserID:  task.AssignedToID,
		Payload: entry,
	})
	return task, nil
}

// Reassign hands a pending task to another member of its team. It writes no
// history.
func (s *TaskService) Reassign(ctx context.Context, actorID, taskID, assigneeID string) (*models.Task, error) {
	if assigneeID == "" {
		assigneeID = actorID
	}

	var task *models.Task
	var previous string
	err := s.Store.ExecTx(ctx, func(q *repository.Queries) error {
		var err error
		task, err = q.GetTask(ctx, taskID)
		if err != nil {
			return notFoundOr(err, msgTaskNotFound)
		}
		isTeamAdmin, err := q.IsTeamAdmin(ctx, task.TeamID, actorID)
		if err != nil {
			return err
		}
		if !isTeamAdmin {
			return apperror.NotFound(msgTaskNotFound)
		}

		isMember, err := q.IsTeamMember(ctx, task.TeamID, assigneeID)
		if err != nil {
			return err
		}
		if !isMember {
			return apperror.NotFound(msgNotTeamMember)
		}
		if task.Status != models.StatusPending {
			return apperror.Conflict(msgMustBePending)
		}
		if task.AssignedToID == assigneeID {
			return apperror.Conflict(msgSameAssignee)
		}

		currentTime := s.now().Unix()
		swapped, err := q.UpdateTaskAssignee(ctx, task.ID, task.AssignedToID, assigneeID, currentTime)
		if err != nil {
			return err
		}
		if !swapped {
			return apperror.Conflict(msgConcurrentAssignment)
		}
		previous = task.AssignedToID
		task.AssignedToID = assigneeID
		task.UpdatedAt = currentTime
		return nil
	})
	if err != nil {
		return nil, apperror.From(err)
	}

	s.Log.WithContext(ctx).Audit("Task reassigned",
		"task_id", task.ID,
		"from", previous,
		"to", assigneeID,
		"assigned_by", actorID,
	)
	s.Publisher.Publish(realtime.Event{
		Type:    realtime.EventTaskAssigned,
		TeamID:  task.TeamID,
		ActorID: actorID,
		UserID:  assigneeID,
		Payload: map[string]string{"task_id": task.ID, "previous_assignee": previous},
	})
	return task, nil
}

// UpdateTask edits title, description or priority. Only the assignee may
// edit, and never once the task is completed.
func (s *TaskService) UpdateTask(ctx context.Context, actorID, taskID string, req UpdateTaskRequest) (*models.Task, error) {
	var task *models.Task
	err := s.Store.ExecTx(ctx, func(q *repository.Queries) error {
		var err error
		task, err = q.GetTask(ctx, taskID)
		if err != nil {
			return notFoundOr(err, msgTaskNotFound)
		}
		if !policy.IsAssignee(task, actorID) {
			return apperror.NotFound(msgTaskNotFound)
		}
		if task.Status == models.StatusCompleted {
			return apperror.Conflict(msgCompletedNotEditable)
		}

		if req.Title != nil {
			task.Title = strings.TrimSpace(*req.Title)
		}
		if req.Description != nil {
			task.Description = *req.Description
		}
		if req.Priority != nil {
			task.Priority = *req.Priority
		}
		task.UpdatedAt = s.now().Unix()
		return q.UpdateTaskFields(ctx, task)
	})
	if err != nil {
		return nil, apperror.From(err)
	}

	s.Log.WithContext(ctx).Info("Task updated", "task_id", task.ID, "updated_by", actorID)
	return task, nil
}

// ListMine returns the caller's assigned tasks across all teams.
func (s *TaskService) ListMine(ctx context.Context, actorID string) ([]models.TaskWithTeam, error) {
	tasks, err := s.Store.ListTasksByAssignee(ctx, actorID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return tasks, nil
}

// ListTeam returns every task of a team the caller belongs to.
func (s *TaskService) ListTeam(ctx context.Context, actorID, teamID string) ([]models.Task, error) {
	isMember, err := s.Store.IsTeamMember(ctx, teamID, actorID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if !isMember {
		return nil, apperror.NotFound(msgTeamNotVisible)
	}
	tasks, err := s.Store.ListTasksByTeam(ctx, teamID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return tasks, nil
}

// History lists the status transitions of a task in the caller's team.
func (s *TaskService) History(ctx context.Context, actorID, taskID string) ([]models.TaskHistory, error) {
	task, err := s.Store.GetTask(ctx, taskID)
	if err != nil {
		return nil, apperror.From(notFoundOr(err, msgTaskNotFound))
	}
	isMember, err := s.Store.IsTeamMember(ctx, task.TeamID, actorID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if !isMember {
		return nil, apperror.NotFound(msgTaskNotFound)
	}
	history, err := s.Store.ListTaskHistory(ctx, task.ID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return history, nil
}

func notFoundOr(err error, message string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperror.NotFound(message)
	}
	return err
}
