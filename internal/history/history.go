// Package history keeps a SQLite ledger of the mutating operations this
// tool has run (create, restore, cleanup), for the `ckpt history` command.
// The ledger is diagnostic; a history failure never blocks a backup.
package history

import (
	"database/sql"
	"fmt"
	"time"

	"ckpt-go/internal/history/migrations"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Operation statuses.
const (
	StatusRunning = "running"
	StatusSuccess = "success"
	StatusError   = "error"
)

// Operation is one recorded CLI invocation.
type Operation struct {
	ID         int64
	Operation  string
	Parameters string
	StartedAt  time.Time
	FinishedAt sql.NullTime
	Status     string
}

// Log is the operation ledger backed by a SQLite database.
type Log struct {
	db *sql.DB
}

// Open opens (creating if needed) the history database at path and brings
// its schema up to date. path can be ":memory:" for tests.
func Open(path string) (*Log, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}

	if err := migrations.MigrateUp(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating history database: %w", err)
	}
	return &Log{db: db}, nil
}

// OpenConnection opens and configures a SQLite connection with appropriate
// PRAGMAs. Exported for tools and tests that need a raw connection.
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	// Enable foreign key constraints (SQLite default is OFF for backward compatibility)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	return db, nil
}

// Begin records the start of an operation and returns its id.
func (l *Log) Begin(operation, parameters string, startedAt time.Time) (int64, error) {
	res, err := l.db.Exec(
		"INSERT INTO operations (operation, parameters, started_at, status) VALUES (?, ?, ?, ?)",
		operation, parameters, startedAt, StatusRunning,
	)
	if err != nil {
		return 0, fmt.Errorf("recording operation start: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading operation id: %w", err)
	}
	return id, nil
}

// Finish records the end of an operation with its final status.
func (l *Log) Finish(id int64, status string, finishedAt time.Time) error {
	_, err := l.db.Exec(
		"UPDATE operations SET finished_at = ?, status = ? WHERE id = ?",
		finishedAt, status, id,
	)
	if err != nil {
		return fmt.Errorf("recording operation finish: %w", err)
	}
	return nil
}

// Recent returns the most recent operations, newest first.
func (l *Log) Recent(limit int) ([]*Operation, error) {
	rows, err := l.db.Query(
		"SELECT id, operation, parameters, started_at, finished_at, status FROM operations ORDER BY id DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying operations: %w", err)
	}
	defer rows.Close()

	var ops []*Operation
	for rows.Next() {
		op := &Operation{}
		if err := rows.Scan(&op.ID, &op.Operation, &op.Parameters, &op.StartedAt, &op.FinishedAt, &op.Status); err != nil {
			return nil, fmt.Errorf("scanning operation: %w", err)
		}
		ops = append(ops, op)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading operations: %w", err)
	}
	return ops, nil
}

// Close closes the underlying database.
func (l *Log) Close() error {
	return l.db.Close()
}
