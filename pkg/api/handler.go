// Package api exposes a finished simulation over HTTP. Queries share a read
// lock; ingestion takes the write lock so readers never observe a partially
// applied batch.
package api

import (
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/jakechorley/ward-rota/internal/config"
	"github.com/jakechorley/ward-rota/pkg/core/model"
	"github.com/jakechorley/ward-rota/pkg/core/services"
	"github.com/jakechorley/ward-rota/pkg/db"
)

type Handler struct {
	validate *validator.Validate
	config   *config.Config
	store    db.SkillRecordStore
	logger   *zap.Logger

	mu     sync.RWMutex
	sim    *services.SimulationResult
	nurses map[string]model.Nurse
	teams  map[string]string

	Mux *chi.Mux
}

// NewHandler serves sim. store may be nil, in which case ingested rows are
// applied in memory only.
func NewHandler(cfg *config.Config, sim *services.SimulationResult, store db.SkillRecordStore, logger *zap.Logger) *Handler {
	nurses := make(map[string]model.Nurse, len(sim.Roster))
	for _, n := range sim.Roster {
		nurses[n.Name] = n
	}
	teams := make(map[string]string, len(sim.Roster))
	for _, t := range cfg.Teams {
		for _, n := range t.Nurses {
			teams[n.Name] = t.Name
		}
	}

	return &Handler{
		validate: validator.New(validator.WithRequiredStructEnabled()),
		config:   cfg,
		store:    store,
		logger:   logger,
		sim:      sim,
		nurses:   nurses,
		teams:    teams,
		Mux:      chi.NewRouter(),
	}
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.requestLogger)
	h.Mux.Use(h.recoverer)

	h.Mux.Get("/health", h.Health)

	h.Mux.Route("/schedule", func(r chi.Router) {
		r.Get("/", h.GetSchedule)
		r.Get("/{nurse}", h.GetNurseSchedule)
	})

	h.Mux.Route("/skills", func(r chi.Router) {
		r.Get("/", h.GetAllSkills)
		r.Get("/{nurse}", h.GetNurseSkills)
	})

	h.Mux.Get("/recommend", h.GetRecommendations)
	h.Mux.Get("/coverage", h.GetCoverage)
	h.Mux.Post("/ingest", h.Ingest)
}
