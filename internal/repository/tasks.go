package repository

import (
	"context"
	"database/sql"

	"github.com/nikhil/teamtasks/internal/models"
)

const taskColumns = `t.id, t.title, t.description, t.priority, t.status, t.team_id, t.assigned_to_id, t.created_at, t.updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(row scanner, extra ...any) (*models.Task, error) {
	var t models.Task
	var description sql.NullString
	var priority, status string
	dest := []any{&t.ID, &t.Title, &description, &priority, &status, &t.TeamID, &t.AssignedToID, &t.CreatedAt, &t.UpdatedAt}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	t.Description = description.String
	t.Priority = models.TaskPriority(priority)
	t.Status = models.TaskStatus(status)
	return &t, nil
}

func (q *Queries) CreateTask(ctx context.Context, t *models.Task) error {
	query := `
		INSERT INTO tasks (id, title, description, priority, status, team_id, assigned_to_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := q.db.ExecContext(ctx, query,
		t.ID, t.Title, t.Description, string(t.Priority), string(t.Status),
		t.TeamID, t.AssignedToID, t.CreatedAt, t.UpdatedAt,
	)
	return wrapExec("create task", err)
}

func (q *Queries) GetTask(ctx context.Context, id string) (*models.Task, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks t WHERE t.id = ?`, id)
	t, err := scanTask(row)
	if err != nil {
		return nil, wrapRow("get task", err)
	}
	return t, nil
}

// UpdateTaskFields writes title, description and priority. Status and
// assignee have their own guarded updates.
func (q *Queries) UpdateTaskFields(ctx context.Context, t *models.Task) error {
	query := `UPDATE tasks SET title = ?, description = ?, priority = ?, updated_at = ? WHERE id = ?`
	_, err := q.db.ExecContext(ctx, query, t.Title, t.Description, string(t.Priority), t.UpdatedAt, t.ID)
	return wrapExec("update task", err)
}

// UpdateTaskAssignee moves a pending task from one assignee to another. It
// reports false when the task was no longer pending or no longer held by
// from.
func (q *Queries) UpdateTaskAssignee(ctx context.Context, taskID, from, to string, now int64) (bool, error) {
	query := `
		UPDATE tasks SET assigned_to_id = ?, updated_at = ?
		WHERE id = ? AND assigned_to_id = ? AND status = ?
	`
	res, err := q.db.ExecContext(ctx, query, to, now, taskID, from, string(models.StatusPending))
	return affectedOne("reassign task", res, err)
}

// SetTaskStatus is a compare-and-set on the status column. It reports false
// when the stored status no longer equals from.
func (q *Queries) SetTaskStatus(ctx context.Context, taskID string, from, to models.TaskStatus, now int64) (bool, error) {
	query := `UPDATE tasks SET status = ?, updated_at = ? WHERE id = ? AND status = ?`
	res, err := q.db.ExecContext(ctx, query, string(to), now, taskID, string(from))
	return affectedOne("set task status", res, err)
}

// ListTasksByAssignee returns every task assigned to userID with the owning
// team's name and description.
func (q *Queries) ListTasksByAssignee(ctx context.Context, userID string) ([]models.TaskWithTeam, error) {
	query := `
		SELECT ` + taskColumns + `, tm.name, tm.description
		FROM tasks t
		JOIN teams tm ON tm.id = t.team_id
		WHERE t.assigned_to_id = ?
		ORDER BY t.created_at DESC, t.id
	`
	rows, err := q.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, wrapRow("list tasks by assignee", err)
	}
	defer rows.Close()

	tasks := []models.TaskWithTeam{}
	for rows.Next() {
		var teamName string
		var teamDescription sql.NullString
		t, err := scanTask(rows, &teamName, &teamDescription)
		if err != nil {
			return nil, wrapRow("scan task", err)
		}
		tasks = append(tasks, models.TaskWithTeam{
			Task: *t,
			Team: models.TeamSummary{Name: teamName, Description: teamDescription.String},
		})
	}
	if err := rows.Err(); err != nil {
		return nil, wrapRow("iterate tasks", err)
	}
	return tasks, nil
}

func (q *Queries) ListTasksByTeam(ctx context.Context, teamID string) ([]models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks t WHERE t.team_id = ? ORDER BY t.created_at DESC, t.id`
	rows, err := q.db.QueryContext(ctx, query, teamID)
	if err != nil {
		return nil, wrapRow("list tasks by team", err)
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, wrapRow("scan task", err)
		}
		tasks = append(tasks, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapRow("iterate tasks", err)
	}
	return tasks, nil
}

// ReassignTeamTasks hands every task of from within teamID over to to and
// returns how many tasks moved. from and to must differ.
func (q *Queries) ReassignTeamTasks(ctx context.Context, teamID, from, to string, now int64) (int64, error) {
	query := `UPDATE tasks SET assigned_to_id = ?, updated_at = ? WHERE team_id = ? AND assigned_to_id = ?`
	res, err := q.db.ExecContext(ctx, query, to, now, teamID, from)
	if err != nil {
		return 0, wrapExec("reassign team tasks", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, wrapExec("reassign team tasks", err)
	}
	return n, nil
}

func affectedOne(op string, res sql.Result, err error) (bool, error) {
	if err != nil {
		return false, wrapExec(op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, wrapExec(op, err)
	}
	return n == 1, nil
}
