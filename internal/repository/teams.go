package repository

import (
	"context"
	"database/sql"

	"github.com/nikhil/teamtasks/internal/models"
)

func (q *Queries) CreateTeam(ctx context.Context, t *models.Team) error {
	query := `
		INSERT INTO teams (id, name, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`
	_, err := q.db.ExecContext(ctx, query, t.ID, t.Name, t.Description, t.CreatedAt, t.UpdatedAt)
	return wrapExec("create team", err)
}

func (q *Queries) GetTeam(ctx context.Context, id string) (*models.Team, error) {
	var t models.Team
	var description sql.NullString
	query := `SELECT id, name, description, created_at, updated_at FROM teams WHERE id = ?`
	err := q.db.QueryRowContext(ctx, query, id).Scan(&t.ID, &t.Name, &description, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, wrapRow("get team", err)
	}
	t.Description = description.String
	return &t, nil
}

func (q *Queries) UpdateTeam(ctx context.Context, t *models.Team) error {
	query := `UPDATE teams SET name = ?, description = ?, updated_at = ? WHERE id = ?`
	_, err := q.db.ExecContext(ctx, query, t.Name, t.Description, t.UpdatedAt, t.ID)
	return wrapExec("update team", err)
}

// ListTeamsByMember returns the teams userID belongs to, newest first.
func (q *Queries) ListTeamsByMember(ctx context.Context, userID string) ([]models.Team, error) {
	query := `
		SELECT t.id, t.name, t.description, t.created_at, t.updated_at
		FROM teams t
		JOIN team_members tm ON t.id = tm.team_id
		WHERE tm.user_id = ?
		ORDER BY t.created_at DESC, t.name
	`
	rows, err := q.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, wrapRow("list teams", err)
	}
	defer rows.Close()

	teams := []models.Team{}
	for rows.Next() {
		var t models.Team
		var description sql.NullString
		if err := rows.Scan(&t.ID, &t.Name, &description, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, wrapRow("scan team", err)
		}
		t.Description = description.String
		teams = append(teams, t)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapRow("iterate teams", err)
	}
	return teams, nil
}

func (q *Queries) AddTeamMember(ctx context.Context, m *models.TeamMember) error {
	query := `
		INSERT INTO team_members (id, team_id, user_id, joined_at)
		VALUES (?, ?, ?, ?)
	`
	_, err := q.db.ExecContext(ctx, query, m.ID, m.TeamID, m.UserID, m.JoinedAt)
	return wrapExec("add team member", err)
}

func (q *Queries) GetTeamMember(ctx context.Context, teamID, userID string) (*models.TeamMember, error) {
	var m models.TeamMember
	query := `SELECT id, team_id, user_id, joined_at FROM team_members WHERE team_id = ? AND user_id = ?`
	err := q.db.QueryRowContext(ctx, query, teamID, userID).Scan(&m.ID, &m.TeamID, &m.UserID, &m.JoinedAt)
	if err != nil {
		return nil, wrapRow("get team member", err)
	}
	return &m, nil
}

func (q *Queries) ListTeamMembers(ctx context.Context, teamID string) ([]models.TeamMember, error) {
	query := `SELECT id, team_id, user_id, joined_at FROM team_members WHERE team_id = ? ORDER BY joined_at, user_id`
	rows, err := q.db.QueryContext(ctx, query, teamID)
	if err != nil {
		return nil, wrapRow("list team members", err)
	}
	defer rows.Close()

	members := []models.TeamMember{}
	for rows.Next() {
		var m models.TeamMember
		if err := rows.Scan(&m.ID, &m.TeamID, &m.UserID, &m.JoinedAt); err != nil {
			return nil, wrapRow("scan team member", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapRow("iterate team members", err)
	}
	return members, nil
}

// DeleteTeamMember returns the number of membership rows removed.
func (q *Queries) DeleteTeamMember(ctx context.Context, teamID, userID string) (int64, error) {
	res, err := q.db.ExecContext(ctx, `DELETE FROM team_members WHERE team_id = ? AND user_id = ?`, teamID, userID)
	if err != nil {
		return 0, wrapExec("delete team member", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, wrapExec("delete team member", err)
	}
	return n, nil
}

func (q *Queries) IsTeamMember(ctx context.Context, teamID, userID string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM team_members WHERE team_id = ? AND user_id = ?)`
	if err := q.db.QueryRowContext(ctx, query, teamID, userID).Scan(&exists); err != nil {
		return false, wrapRow("check team membership", err)
	}
	return exists, nil
}

// IsTeamAdmin reports whether userID is a member of teamID whose account role
// is admin.
func (q *Queries) IsTeamAdmin(ctx context.Context, teamID, userID string) (bool, error) {
	var exists bool
	query := `
		SELECT EXISTS(
			SELECT 1 FROM team_members tm
			JOIN users u ON u.id = tm.user_id
			WHERE tm.team_id = ? AND tm.user_id = ? AND u.role = ?
		)
	`
	if err := q.db.QueryRowContext(ctx, query, teamID, userID, string(models.RoleAdmin)).Scan(&exists); err != nil {
		return false, wrapRow("check team admin", err)
	}
	return exists, nil
}
