package repository

import (
	"context"

	"github.com/nikhil/teamtasks/internal/models"
)

const userColumns = `id, name, email, password, role, created_at, updated_at`

func scanUser(row scanner) (*models.User, error) {
	var u models.User
	var role string
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &role, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	u.Role = models.Role(role)
	return &u, nil
}

func (q *Queries) CreateUser(ctx context.Context, u *models.User) error {
	query := `
		INSERT INTO users (id, name, email, password, role, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := q.db.ExecContext(ctx, query, u.ID, u.Name, u.Email, u.PasswordHash, string(u.Role), u.CreatedAt, u.UpdatedAt)
	return wrapExec("create user", err)
}

func (q *Queries) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	u, err := scanUser(row)
	if err != nil {
		return nil, wrapRow("get user by email", err)
	}
	return u, nil
}

func (q *Queries) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if err != nil {
		return nil, wrapRow("get user", err)
	}
	return u, nil
}

// SetUserRoleByEmail reports whether a user with that email exists.
func (q *Queries) SetUserRoleByEmail(ctx context.Context, email string, role models.Role, now int64) (bool, error) {
	var exists bool
	err := q.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE email = ?)`, email).Scan(&exists)
	if err != nil {
		return false, wrapRow("check user", err)
	}
	if !exists {
		return false, nil
	}
	_, err = q.db.ExecContext(ctx,
		`UPDATE users SET role = ?, updated_at = ? WHERE email = ?`, string(role), now, email)
	if err != nil {
		return false, wrapExec("set user role", err)
	}
	return true, nil
}

func (q *Queries) UpdateUserName(ctx context.Context, id, name string, now int64) error {
	_, err := q.db.ExecContext(ctx, `UPDATE users SET name = ?, updated_at = ? WHERE id = ?`, name, now, id)
	return wrapExec("update user name", err)
}
