package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jakechorley/ward-rota/internal/config"
	"github.com/jakechorley/ward-rota/pkg/core/model"
	"github.com/jakechorley/ward-rota/pkg/core/recommend"
	"github.com/jakechorley/ward-rota/pkg/core/rotation"
	"github.com/jakechorley/ward-rota/pkg/core/skills"
	"github.com/jakechorley/ward-rota/pkg/db"
)

// SimulateStore is the storage a simulation reads ingested skills from and
// persists runs to
type SimulateStore interface {
	GetSkillRecords(ctx context.Context) ([]db.SkillRecord, error)
	InsertRun(ctx context.Context, run *db.Run, entries []rotation.Entry) error
}

// TeamSchedule is one team's structure and schedule
type TeamSchedule struct {
	Team      string
	Structure *rotation.Structure
	Schedule  rotation.Schedule
}

// SimulationResult holds everything a run produced
type SimulationResult struct {
	Run       *db.Run
	Persisted bool

	Roster   []model.Nurse
	Teams    []TeamSchedule
	Schedule rotation.Schedule
	Skills   *skills.Accumulator

	// ReplayedRecords counts stored skill records applied before scheduling;
	// SkippedRecords counts those naming nurses no longer on the roster
	ReplayedRecords int
	SkippedRecords  int

	// PeriodStarts holds one date per period when the config sets startDate
	PeriodStarts []time.Time
}

// Wards returns every ward across all teams in structure order
func (r *SimulationResult) Wards() []model.Ward {
	structures := make([]*rotation.Structure, len(r.Teams))
	for i, t := range r.Teams {
		structures[i] = t.Structure
	}
	return rotation.AllWardsInOrderOf(structures...)
}

// Engine returns a recommendation engine over the simulated state
func (r *SimulationResult) Engine() *recommend.Engine {
	return recommend.NewEngine(r.Roster, r.Skills, r.Schedule)
}

// Simulate builds each team's structure and schedules every team in config
// order against one shared skill accumulator. Stored skill records are
// replayed into the accumulator first. Unless dryRun is set the run is
// persisted with all of its entries.
func Simulate(ctx context.Context, store SimulateStore, cfg *config.Config, logger *zap.Logger, dryRun bool) (*SimulationResult, error) {
	policy, err := rotation.ParsePolicy(cfg.WardPolicy)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve ward policy: %w", err)
	}

	logger.Debug("Starting simulation",
		zap.String("policy", policy.Name()),
		zap.Int("period_length_weeks", cfg.PeriodLengthWeeks),
		zap.Int("horizon_weeks", cfg.HorizonWeeks),
		zap.Int("teams", len(cfg.Teams)),
		zap.Bool("dry_run", dryRun))

	// Build every structure before scheduling so a bad team aborts the run
	// before any skills are recorded
	teams := cfg.TeamModels()
	structures := make([]*rotation.Structure, len(cfg.Teams))
	for i, tc := range cfg.Teams {
		structure, err := rotation.NewStructure(tc.Name, tc.GroupSpecs())
		if err != nil {
			return nil, fmt.Errorf("failed to build structure for team %q: %w", tc.Name, err)
		}
		structures[i] = structure
	}

	roster := model.Roster(teams)
	acc := skills.NewAccumulator(roster...)

	result := &SimulationResult{
		Roster:   roster,
		Skills:   acc,
		Schedule: rotation.Schedule{},
	}

	if store != nil {
		replayed, skipped, err := replaySkillRecords(ctx, store, acc, logger)
		if err != nil {
			return nil, err
		}
		result.ReplayedRecords = replayed
		result.SkippedRecords = skipped
	}

	scheduler := rotation.NewScheduler(policy, acc)
	for i, team := range teams {
		schedule, err := scheduler.Schedule(team.Name, team.Nurses, structures[i], cfg.PeriodLengthWeeks, cfg.HorizonWeeks)
		if err != nil {
			return nil, fmt.Errorf("failed to schedule team %q: %w", team.Name, err)
		}

		logger.Debug("Scheduled team",
			zap.String("team", team.Name),
			zap.Int("nurses", len(team.Nurses)),
			zap.Int("groups", structures[i].GroupCount()),
			zap.Int("entries", len(schedule)))

		result.Teams = append(result.Teams, TeamSchedule{Team: team.Name, Structure: structures[i], Schedule: schedule})
		result.Schedule = append(result.Schedule, schedule...)
	}

	if start, ok := cfg.ParsedStartDate(); ok {
		result.PeriodStarts, err = rotation.PeriodCalendar(start, cfg.PeriodLengthWeeks, result.Schedule.Periods())
		if err != nil {
			return nil, fmt.Errorf("failed to build period calendar: %w", err)
		}
	}

	result.Run = &db.Run{
		ID:                uuid.New().String(),
		CreatedAt:         time.Now().UTC(),
		Policy:            policy.Name(),
		PeriodLengthWeeks: cfg.PeriodLengthWeeks,
		HorizonWeeks:      cfg.HorizonWeeks,
		EntryCount:        len(result.Schedule),
	}

	if dryRun || store == nil {
		logger.Info("Simulation complete (not saved)",
			zap.Int("entries", len(result.Schedule)),
			zap.Int("periods", result.Schedule.Periods()))
		return result, nil
	}

	if err := store.InsertRun(ctx, result.Run, result.Schedule); err != nil {
		return nil, fmt.Errorf("failed to save run: %w", err)
	}
	result.Persisted = true

	logger.Info("Simulation saved",
		zap.String("run_id", result.Run.ID),
		zap.Int("entries", len(result.Schedule)),
		zap.Int("periods", result.Schedule.Periods()))

	return result, nil
}

// replaySkillRecords applies stored records for nurses still on the roster
// in one batch
func replaySkillRecords(ctx context.Context, store SimulateStore, acc *skills.Accumulator, logger *zap.Logger) (int, int, error) {
	records, err := store.GetSkillRecords(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to fetch skill records: %w", err)
	}

	pairs := make([]skills.Pair, 0, len(records))
	skipped := 0
	for _, r := range records {
		if !acc.Has(r.Nurse) {
			skipped++
			logger.Debug("Skipping skill record for nurse not on roster",
				zap.String("record_id", r.ID),
				zap.String("nurse", r.Nurse),
				zap.String("ward", string(r.Ward)))
			continue
		}
		pairs = append(pairs, skills.Pair{Nurse: r.Nurse, Ward: r.Ward})
	}

	if err := acc.RecordIngested(pairs); err != nil {
		return 0, 0, fmt.Errorf("failed to replay skill records: %w", err)
	}

	if skipped > 0 {
		logger.Warn("Some stored skill records name nurses not on the roster", zap.Int("skipped", skipped))
	}

	return len(pairs), skipped, nil
}
