// Package testutil provides a migrated throwaway database and fixtures for
// package tests.
package testutil

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/nikhil/teamtasks/internal/auth"
	"github.com/nikhil/teamtasks/internal/config"
	"github.com/nikhil/teamtasks/internal/database"
	"github.com/nikhil/teamtasks/internal/models"
	"github.com/nikhil/teamtasks/internal/repository"
	"github.com/nikhil/teamtasks/pkg/utils"
)

// Password is the plain-text password of every fixture user.
const Password = "password123"

const TokenSecret = "test-secret"

// NewDB opens a migrated SQLite database in a temp dir.
func NewDB(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()
	db, err := database.Open(ctx, config.DBConfig{
		Driver:     config.DriverSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "test.db"),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := database.Migrate(ctx, db); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

func NewStore(t *testing.T) *repository.Store {
	t.Helper()
	return repository.NewStore(NewDB(t))
}

func NewTokenManager(t *testing.T) *auth.TokenManager {
	t.Helper()
	tm, err := auth.NewTokenManager(TokenSecret, time.Hour)
	if err != nil {
		t.Fatalf("token manager: %v", err)
	}
	return tm
}

// Token issues a bearer token for u.
func Token(t *testing.T, tm *auth.TokenManager, u *models.User) string {
	t.Helper()
	token, err := tm.Issue(u.ID, u.Role)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return token
}

func CreateUser(t *testing.T, store *repository.Store, name, email string, role models.Role) *models.User {
	t.Helper()
	hash, err := utils.HashPassword(Password, bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	now := time.Now().Unix()
	u := &models.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := store.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	return u
}

// CreateTeam inserts a team with the given members.
func CreateTeam(t *testing.T, store *repository.Store, name string, members ...*models.User) *models.Team {
	t.Helper()
	ctx := context.Background()
	now := time.Now().Unix()
	team := &models.Team{ID: uuid.NewString(), Name: name, CreatedAt: now, UpdatedAt: now}
	if err := store.CreateTeam(ctx, team); err != nil {
		t.Fatalf("create team %s: %v", name, err)
	}
	for _, u := range members {
		AddMember(t, store, team, u)
	}
	return team
}

func AddMember(t *testing.T, store *repository.Store, team *models.Team, u *models.User) {
	t.Helper()
	m := &models.TeamMember{ID: uuid.NewString(), TeamID: team.ID, UserID: u.ID, JoinedAt: time.Now().Unix()}
	if err := store.AddTeamMember(context.Background(), m); err != nil {
		t.Fatalf("add %s to %s: %v", u.Email, team.Name, err)
	}
}

// CreateTask inserts a task in the given status.
func CreateTask(t *testing.T, store *repository.Store, team *models.Team, assignee *models.User, title string, status models.TaskStatus) *models.Task {
	t.Helper()
	now := time.Now().Unix()
	task := &models.Task{
		ID:           uuid.NewString(),
		Title:        title,
		Priority:     models.PriorityMedium,
		Status:       status,
		TeamID:       team.ID,
		AssignedToID: assignee.ID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := store.CreateTask(context.Background(), task); err != nil {
		t.Fatalf("create task %s: %v", title, err)
	}
	return task
}
