package db

import (
	"context"

	"github.com/jakechorley/ward-rota/pkg/core/rotation"
)

// RunStore persists simulation runs and their schedules
type RunStore interface {
	InsertRun(ctx context.Context, run *Run, entries []rotation.Entry) error
	GetRuns(ctx context.Context) ([]Run, error)
	GetRun(ctx context.Context, runID string) (*Run, error)
	GetRunEntries(ctx context.Context, runID string) ([]rotation.Entry, error)
}

// SkillRecordStore persists ingested skill records
type SkillRecordStore interface {
	InsertSkillRecords(ctx context.Context, records []SkillRecord) error
	GetSkillRecords(ctx context.Context) ([]SkillRecord, error)
}

// Database defines the interface for all database operations.
// Both postgres.DB and sqlite.DB implement this interface.
type Database interface {
	RunStore
	SkillRecordStore
	RunMigrations(ctx context.Context) error
	Close()
}
