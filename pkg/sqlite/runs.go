package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jakechorley/ward-rota/pkg/core/model"
	"github.com/jakechorley/ward-rota/pkg/core/rotation"
	"github.com/jakechorley/ward-rota/pkg/db"
)

// InsertRun stores a run and all of its entries in one transaction
func (d *DB) InsertRun(ctx context.Context, run *db.Run, entries []rotation.Entry) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, created_at, policy, period_length_weeks, horizon_weeks)
		VALUES (?, ?, ?, ?, ?)
	`, run.ID, run.CreatedAt.UTC().Format(timeLayout), run.Policy, run.PeriodLengthWeeks, run.HorizonWeeks)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO schedule_entries (run_id, seq, team, nurse, period_index, start_week, end_week,
			group_index, group_label, special, ward, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare schedule entry insert: %w", err)
	}
	defer stmt.Close()

	for i, e := range entries {
		_, err := stmt.ExecContext(ctx, run.ID, i, e.Team, e.Nurse, e.PeriodIndex, e.StartWeek, e.EndWeek,
			e.GroupIndex, e.GroupLabel, e.Special, string(e.Ward), string(e.Status))
		if err != nil {
			return fmt.Errorf("failed to insert schedule entry %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

const runColumns = `r.id, r.created_at, r.policy, r.period_length_weeks, r.horizon_weeks,
	(SELECT COUNT(*) FROM schedule_entries e WHERE e.run_id = r.id)`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (db.Run, error) {
	var r db.Run
	var createdAt string
	if err := row.Scan(&r.ID, &createdAt, &r.Policy, &r.PeriodLengthWeeks, &r.HorizonWeeks, &r.EntryCount); err != nil {
		return r, err
	}

	var err error
	r.CreatedAt, err = time.Parse(timeLayout, createdAt)
	if err != nil {
		return r, fmt.Errorf("failed to parse created_at for run %s: %w", r.ID, err)
	}
	return r, nil
}

// GetRuns retrieves all runs, newest first
func (d *DB) GetRuns(ctx context.Context) ([]db.Run, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT `+runColumns+` FROM runs r ORDER BY r.created_at DESC, r.id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []db.Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}

	return runs, nil
}

// GetRun retrieves a single run
func (d *DB) GetRun(ctx context.Context, runID string) (*db.Run, error) {
	r, err := scanRun(d.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs r WHERE r.id = ?`, runID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", db.ErrRunNotFound, runID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query run: %w", err)
	}
	return &r, nil
}

// GetRunEntries retrieves a run's schedule in its original order
func (d *DB) GetRunEntries(ctx context.Context, runID string) ([]rotation.Entry, error) {
	if _, err := d.GetRun(ctx, runID); err != nil {
		return nil, err
	}

	rows, err := d.db.QueryContext(ctx, `
		SELECT team, nurse, period_index, start_week, end_week, group_index, group_label, special, ward, status
		FROM schedule_entries
		WHERE run_id = ?
		ORDER BY seq
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query schedule entries: %w", err)
	}
	defer rows.Close()

	entries := []rotation.Entry{}
	for rows.Next() {
		var e rotation.Entry
		var ward, status string
		if err := rows.Scan(&e.Team, &e.Nurse, &e.PeriodIndex, &e.StartWeek, &e.EndWeek,
			&e.GroupIndex, &e.GroupLabel, &e.Special, &ward, &status); err != nil {
			return nil, fmt.Errorf("failed to scan schedule entry: %w", err)
		}
		e.Ward = model.Ward(ward)
		e.Status = model.StatusTag(status)
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating schedule entries: %w", err)
	}

	return entries, nil
}
