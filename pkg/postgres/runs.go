package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jakechorley/ward-rota/pkg/core/model"
	"github.com/jakechorley/ward-rota/pkg/core/rotation"
	"github.com/jakechorley/ward-rota/pkg/db"
)

var entryColumns = []string{
	"run_id", "seq", "team", "nurse", "period_index", "start_week", "end_week",
	"group_index", "group_label", "special", "ward", "status",
}

// InsertRun stores a run and all of its entries in one transaction
func (d *DB) InsertRun(ctx context.Context, run *db.Run, entries []rotation.Entry) error {
	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO runs (id, created_at, policy, period_length_weeks, horizon_weeks)
		VALUES ($1, $2, $3, $4, $5)
	`, run.ID, run.CreatedAt.UTC(), run.Policy, run.PeriodLengthWeeks, run.HorizonWeeks)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	if len(entries) > 0 {
		rows := make([][]any, len(entries))
		for i, e := range entries {
			rows[i] = []any{
				run.ID, i, e.Team, e.Nurse, e.PeriodIndex, e.StartWeek, e.EndWeek,
				e.GroupIndex, e.GroupLabel, e.Special, string(e.Ward), string(e.Status),
			}
		}

		if _, err := tx.CopyFrom(ctx, pgx.Identifier{"schedule_entries"}, entryColumns, pgx.CopyFromRows(rows)); err != nil {
			return fmt.Errorf("failed to insert schedule entries: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetRuns retrieves all runs, newest first
func (d *DB) GetRuns(ctx context.Context) ([]db.Run, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT r.id, r.created_at, r.policy, r.period_length_weeks, r.horizon_weeks, COUNT(e.seq)
		FROM runs r
		LEFT JOIN schedule_entries e ON e.run_id = r.id
		GROUP BY r.id
		ORDER BY r.created_at DESC, r.id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []db.Run
	for rows.Next() {
		var r db.Run
		if err := rows.Scan(&r.ID, &r.CreatedAt, &r.Policy, &r.PeriodLengthWeeks, &r.HorizonWeeks, &r.EntryCount); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		r.CreatedAt = r.CreatedAt.UTC()
		runs = append(runs, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}

	return runs, nil
}

// GetRun retrieves a single run
func (d *DB) GetRun(ctx context.Context, runID string) (*db.Run, error) {
	var r db.Run
	err := d.pool.QueryRow(ctx, `
		SELECT r.id, r.created_at, r.policy, r.period_length_weeks, r.horizon_weeks,
			(SELECT COUNT(*) FROM schedule_entries e WHERE e.run_id = r.id)
		FROM runs r
		WHERE r.id = $1
	`, runID).Scan(&r.ID, &r.CreatedAt, &r.Policy, &r.PeriodLengthWeeks, &r.HorizonWeeks, &r.EntryCount)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", db.ErrRunNotFound, runID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query run: %w", err)
	}
	r.CreatedAt = r.CreatedAt.UTC()

	return &r, nil
}

// GetRunEntries retrieves a run's schedule in its original order
func (d *DB) GetRunEntries(ctx context.Context, runID string) ([]rotation.Entry, error) {
	if _, err := d.GetRun(ctx, runID); err != nil {
		return nil, err
	}

	rows, err := d.pool.Query(ctx, `
		SELECT team, nurse, period_index, start_week, end_week, group_index, group_label, special, ward, status
		FROM schedule_entries
		WHERE run_id = $1
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
