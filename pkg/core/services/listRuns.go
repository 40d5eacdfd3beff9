package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jakechorley/ward-rota/pkg/core/rotation"
	"github.com/jakechorley/ward-rota/pkg/db"
)

// LatestRunID selects the most recent run in GetRunSchedule
const LatestRunID = "latest"

// RunSchedule is a stored run with its schedule
type RunSchedule struct {
	Run      *db.Run
	Schedule rotation.Schedule
}

// ListRuns returns stored runs, newest first
func ListRuns(ctx context.Context, store db.RunStore, logger *zap.Logger) ([]db.Run, error) {
	runs, err := store.GetRuns(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch runs: %w", err)
	}

	logger.Debug("Fetched runs", zap.Int("count", len(runs)))
	return runs, nil
}

// GetRunSchedule loads a stored run's schedule. runID may be LatestRunID.
func GetRunSchedule(ctx context.Context, store db.RunStore, logger *zap.Logger, runID string) (*RunSchedule, error) {
	if runID == LatestRunID {
		runs, err := ListRuns(ctx, store, logger)
		if err != nil {
			return nil, err
		}
		if len(runs) == 0 {
			return nil, fmt.Errorf("%w: no runs saved yet", db.ErrRunNotFound)
		}
		runID = runs[0].ID
		logger.Debug("Resolved latest run", zap.String("run_id", runID))
	}

	run, err := store.GetRun(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch run: %w", err)
	}

	entries, err := store.GetRunEntries(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch schedule for run %s: %w", runID, err)
	}

	return &RunSchedule{Run: run, Schedule: rotation.Schedule(entries)}, nil
}
