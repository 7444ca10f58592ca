package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"

	"github.com/nikhil/teamtasks/internal/config"
)

// Open connects to the configured database and verifies the connection.
func Open(ctx context.Context, cfg config.DBConfig) (*sql.DB, error) {
	db, err := sql.Open(cfg.Driver, cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Driver, err)
	}

	switch cfg.Driver {
	case config.DriverMySQL:
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(25)
		db.SetConnMaxLifetime(5 * time.Minute)
	case config.DriverSQLite:
		// SQLite allows one writer; a second pooled connection gets SQLITE_BUSY
		// instead of waiting its turn.
		db.SetMaxOpenConns(1)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", cfg.Driver, err)
	}
	return db, nil
}

// The DDL sticks to types both MySQL and SQLite accept. Ids are UUID strings
// and timestamps are unix seconds.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id VARCHAR(36) NOT NULL PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		email VARCHAR(255) NOT NULL UNIQUE,
		password VARCHAR(255) NOT NULL,
		role VARCHAR(16) NOT NULL DEFAULT 'member',
		created_at BIGINT NOT NULL,
		updated_at BIGINT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS teams (
		id VARCHAR(36) NOT NULL PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		description TEXT,
		created_at BIGINT NOT NULL,
		updated_at BIGINT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS team_members (
		id VARCHAR(36) NOT NULL PRIMARY KEY,
		team_id VARCHAR(36) NOT NULL,
		user_id VARCHAR(36) NOT NULL,
		joined_at BIGINT NOT NULL,
		UNIQUE (team_id, user_id),
		FOREIGN KEY (team_id) REFERENCES teams(id) ON DELETE CASCADE,
		FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS tasks (
		id VARCHAR(36) NOT NULL PRIMARY KEY,
		title VARCHAR(255) NOT NULL,
		description TEXT,
		priority VARCHAR(16) NOT NULL,
		status VARCHAR(16) NOT NULL DEFAULT 'pending',
		team_id VARCHAR(36) NOT NULL,
		assigned_to_id VARCHAR(36) NOT NULL,
		created_at BIGINT NOT NULL,
		updated_at BIGINT NOT NULL,
		FOREIGN KEY (team_id) REFERENCES teams(id),
		FOREIGN KEY (assigned_to_id) REFERENCES users(id)
	)`,
	`CREATE TABLE IF NOT EXISTS task_history (
		id VARCHAR(36) NOT NULL PRIMARY KEY,
		task_id VARCHAR(36) NOT NULL,
		old_status VARCHAR(16) NOT NULL,
		new_status VARCHAR(16) NOT NULL,
		changed_by VARCHAR(36) NOT NULL,
		changed_at BIGINT NOT NULL,
		FOREIGN KEY (task_id) REFERENCES tasks(id),
		FOREIGN KEY (changed_by) REFERENCES users(id)
	)`,
}

// Migrate applies the schema. Every statement is idempotent.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, m := range migrations {
		if _, err := db.ExecContext(ctx, m); err != nil {
			return fmt.Errorf("exec migration: %w", err)
		}
	}
	return nil
}
