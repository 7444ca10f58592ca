package models

type TaskStatus string

const (
	StatusPending    TaskStatus = "pending"
	StatusInProgress TaskStatus = "in_progress"
	StatusCompleted  TaskStatus = "completed"
)

// Statuses lists every status in workflow order.
var Statuses = []TaskStatus{StatusPending, StatusInProgress, StatusCompleted}

type TaskPriority string

const (
	PriorityHigh   TaskPriority = "high"
	PriorityMedium TaskPriority = "medium"
	PriorityLow    TaskPriority = "low"
)

type Task struct {
	ID           string       `json:"id"`
	Title        string       `json:"title"`
	Description  string       `json:"description"`
	Priority     TaskPriority `json:"priority"`
	Status       TaskStatus   `json:"status"`
	TeamID       string       `json:"team_id"`
	AssignedToID string       `json:"assigned_to_id"`
	CreatedAt    int64        `json:"created_at"`
	UpdatedAt    int64        `json:"updated_at"`
}

// TaskWithTeam is a task joined with the owning team's public fields,
// returned by the "my tasks" listing.
type TaskWithTeam struct {
	Task
	Team TeamSummary `json:"team"`
}

type TeamSummary struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// TaskHistory is an append-only record of one accepted status transition.
type TaskHistory struct {
	ID        string     `json:"id"`
	TaskID    string     `json:"task_id"`
	OldStatus TaskStatus `json:"old_status"`
	NewStatus TaskStatus `json:"new_status"`
	ChangedBy string     `json:"changed_by"`
	ChangedAt int64      `json:"changed_at"`
}
