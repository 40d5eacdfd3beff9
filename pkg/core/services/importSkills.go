package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jakechorley/ward-rota/internal/config"
	"github.com/jakechorley/ward-rota/pkg/core/model"
	"github.com/jakechorley/ward-rota/pkg/core/skills"
	"github.com/jakechorley/ward-rota/pkg/db"
	"github.com/jakechorley/ward-rota/pkg/ingest"
)

// ImportResult represents the outcome of importing a table of skill records
type ImportResult struct {
	BatchID   string
	Source    string
	Resolved  ingest.Result
	Persisted bool
}

// ImportSkills resolves rows against the configured roster and stores the
// matched pairs as one batch. The batch is checked against a scratch
// accumulator first so a bad pair stores nothing. Zero matches is reported,
// not treated as an error.
func ImportSkills(ctx context.Context, store db.SkillRecordStore, cfg *config.Config, logger *zap.Logger, rows []ingest.Row, source string, dryRun bool) (*ImportResult, error) {
	roster := model.Roster(cfg.TeamModels())
	names := make([]string, len(roster))
	for i, n := range roster {
		names[i] = n.Name
	}

	logger.Debug("Resolving skill rows",
		zap.Int("rows", len(rows)),
		zap.Int("roster", len(names)),
		zap.String("source", source))

	resolved := ingest.Resolve(names, rows)

	if err := ingest.Apply(skills.NewAccumulator(roster...), resolved); err != nil {
		return nil, fmt.Errorf("failed to validate resolved skills: %w", err)
	}

	result := &ImportResult{
		BatchID:  uuid.New().String(),
		Source:   source,
		Resolved: resolved,
	}

	for _, u := range resolved.Unmatched {
		logger.Debug("Unmatched row",
			zap.Int("line", u.Row.Line),
			zap.String("name", u.Row.Name),
			zap.String("ward", u.Row.Ward),
			zap.String("reason", u.Reason))
	}

	if resolved.Matched == 0 {
		logger.Warn("No rows matched a rostered nurse", zap.Int("rows", len(rows)))
		return result, nil
	}

	if dryRun || store == nil {
		logger.Info("Import resolved (not saved)",
			zap.Int("matched", resolved.Matched),
			zap.Int("unmatched", len(resolved.Unmatched)))
		return result, nil
	}

	now := time.Now().UTC()
	records := make([]db.SkillRecord, len(resolved.Pairs))
	for i, p := range resolved.Pairs {
		records[i] = db.SkillRecord{
			ID:         uuid.New().String(),
			BatchID:    result.BatchID,
			Nurse:      p.Nurse,
			Ward:       p.Ward,
			Source:     source,
			ImportedAt: now,
		}
	}

	if err := store.InsertSkillRecords(ctx, records); err != nil {
		return nil, fmt.Errorf("failed to save skill records: %w", err)
	}
	result.Persisted = true

	logger.Info("Imported skill records",
		zap.String("batch_id", result.BatchID),
		zap.Int("matched", resolved.Matched),
		zap.Int("unmatched", len(resolved.Unmatched)))

	return result, nil
}
