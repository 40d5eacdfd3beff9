package commands

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jakechorley/ward-rota/internal/config"
	"github.com/jakechorley/ward-rota/pkg/core/services"
	"github.com/jakechorley/ward-rota/pkg/db"
	"github.com/jakechorley/ward-rota/pkg/postgres"
	"github.com/jakechorley/ward-rota/pkg/sqlite"
)

// AppContext holds the application dependencies shared across all commands
type AppContext struct {
	Cfg      *config.Config
	Database db.Database
	Logger   *zap.Logger
	Ctx      context.Context
	Env      string

	// sim is the last simulation of this process, reused by query commands
	// within an interactive session
	sim *services.SimulationResult
}

// Simulation returns the current simulation, running an unsaved one (with
// stored skill records replayed) if none exists yet
func (a *AppContext) Simulation() (*services.SimulationResult, error) {
	if a.sim != nil {
		return a.sim, nil
	}

	sim, err := services.Simulate(a.Ctx, a.Database, a.Cfg, a.Logger, true)
	if err != nil {
		return nil, err
	}
	a.sim = sim
	return sim, nil
}

func (a *AppContext) setSimulation(sim *services.SimulationResult) {
	a.sim = sim
}

// resetSimulation forces the next query to re-simulate, e.g. after an import
func (a *AppContext) resetSimulation() {
	a.sim = nil
}

// OpenDatabase connects to the configured backend
func OpenDatabase(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (db.Database, error) {
	logger.Info("Connecting to database", zap.String("driver", cfg.Driver))

	switch cfg.Driver {
	case "postgres":
		database, err := postgres.NewDB(ctx, cfg.DSN)
		if err != nil {
			return nil, err
		}
		return database, nil
	case "sqlite":
		database, err := sqlite.NewDB(ctx, cfg.DSN)
		if err != nil {
			return nil, err
		}
		return database, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}
