package repository

import (
	"context"

	"github.com/nikhil/teamtasks/internal/models"
)

func (q *Queries) InsertTaskHistory(ctx context.Context, h *models.TaskHistory) error {
	query := `
		INSERT INTO task_history (id, task_id, old_status, new_status, changed_by, changed_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := q.db.ExecContext(ctx, query,
		h.ID, h.TaskID, string(h.OldStatus), string(h.NewStatus), h.ChangedBy, h.ChangedAt,
	)
	return wrapExec("insert task history", err)
}

// ListTaskHistory returns the transitions of a task oldest first. Rows written
// within the same second are ordered by workflow position.
func (q *Queries) ListTaskHistory(ctx context.Context, taskID string) ([]models.TaskHistory, error) {
	query := `
		SELECT id, task_id, old_status, new_status, changed_by, changed_at
		FROM task_history
		WHERE task_id = ?
		ORDER BY changed_at,
			CASE old_status WHEN 'pending' THEN 0 WHEN 'in_progress' THEN 1 ELSE 2 END
	`
	rows, err := q.db.QueryContext(ctx, query, taskID)
	if err != nil {
		return nil, wrapRow("list task history", err)
	}
	defer rows.Close()

	history := []models.TaskHistory{}
	for rows.Next() {
		var h models.TaskHistory
		var oldStatus, newStatus string
		if err := rows.Scan(&h.ID, &h.TaskID, &oldStatus, &newStatus, &h.ChangedBy, &h.ChangedAt); err != nil {
			return nil, wrapRow("scan task history", err)
		}
		h.OldStatus = models.TaskStatus(oldStatus)
		h.NewStatus = models.TaskStatus(newStatus)
		history = append(history, h)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapRow("iterate task history", err)
	}
	return history, nil
}
