// Package sqlite stores runs and skill records in a local SQLite file using
// the pure-Go modernc driver.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/jakechorley/ward-rota/pkg/db"
)

// SchemaVersion is the latest schema version supported by the migrator
const SchemaVersion = 2

// Fixed-width so timestamps sort lexically
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// DB provides run and skill record storage on SQLite
type DB struct {
	db *sql.DB
}

var _ db.Database = (*DB)(nil)

// NewDB opens the database file at dsn (":memory:" for a throwaway database)
func NewDB(ctx context.Context, dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite serialises writers; a single connection also keeps ":memory:" alive
	conn.SetMaxOpenConns(1)

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := conn.ExecContext(ctx, `PRAGMA foreign_keys = ON;`); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return &DB{db: conn}, nil
}

// Close closes the database
func (d *DB) Close() {
	_ = d.db.Close()
}

// RunMigrations upgrades the schema to SchemaVersion. Each version is applied
// in its own transaction.
func (d *DB) RunMigrations(ctx context.Context) error {
	_, err := d.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (version INTEGER PRIMARY KEY);`)
	if err != nil {
		return fmt.Errorf("migrate: create schema_migrations: %w", err)
	}

	var current int
	err = d.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations;`).Scan(&current)
	if err != nil {
		return fmt.Errorf("migrate: read current version: %w", err)
	}

	for version := current + 1; version <= SchemaVersion; version++ {
		if err := d.migrate(ctx, version, migrations[version-1]); err != nil {
			return err
		}
	}

	return nil
}

func (d *DB) migrate(ctx context.Context, version int, statements []string) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("migrate: begin transaction for version %d: %w", version, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: apply version %d: %w", version, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations (version) VALUES (?);`, version); err != nil {
		return fmt.Errorf("migrate: record schema version %d: %w", version, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("migrate: commit version %d: %w", version, err)
	}

	return nil
}

// migrations[i] upgrades the schema to version i+1
var migrations = [][]string{
	{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			created_at TEXT NOT NULL,
			policy TEXT NOT NULL,
			period_length_weeks INTEGER NOT NULL CHECK (period_length_weeks > 0),
			horizon_weeks INTEGER NOT NULL CHECK (horizon_weeks > 0)
		);`,
		`CREATE TABLE IF NOT EXISTS schedule_entries (
			run_id TEXT NOT NULL REFERENCES runs (id) ON DELETE CASCADE,
			seq INTEGER NOT NULL,
			team TEXT NOT NULL,
			nurse TEXT NOT NULL,
			period_index INTEGER NOT NULL,
			start_week INTEGER NOT NULL,
			end_week INTEGER NOT NULL,
			group_index INTEGER NOT NULL,
			group_label TEXT NOT NULL,
			special INTEGER NOT NULL DEFAULT 0,
			ward TEXT NOT NULL,
			status TEXT NOT NULL,
			PRIMARY KEY (run_id, seq)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_schedule_entries_nurse ON schedule_entries (run_id, nurse);`,
	},
	{
		`CREATE TABLE IF NOT EXISTS skill_records (
			id TEXT PRIMARY KEY,
			batch_id TEXT NOT NULL,
			nurse TEXT NOT NULL,
			ward TEXT NOT NULL,
			source TEXT NOT NULL,
			imported_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_skill_records_batch ON skill_records (batch_id);`,
	},
}
