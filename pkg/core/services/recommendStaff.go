package services

import (
	"go.uber.org/zap"

	"github.com/jakechorley/ward-rota/pkg/core/model"
	"github.com/jakechorley/ward-rota/pkg/core/recommend"
	"github.com/jakechorley/ward-rota/pkg/core/rotation"
)

// RecommendStaff ranks nurses qualified for ward as of period asOf (nil for
// the whole horizon). A negative period is rejected.
func RecommendStaff(sim *SimulationResult, logger *zap.Logger, ward model.Ward, asOf *int) ([]recommend.Recommendation, error) {
	if err := checkAsOf(asOf); err != nil {
		return nil, err
	}

	recs := sim.Engine().Recommend(ward, asOf)
	logger.Debug("Recommended staff",
		zap.String("ward", string(ward)),
		zap.Int("qualified", len(recs)))

	return recs, nil
}

// CoverageReport is the ward coverage matrix plus summary metrics
type CoverageReport struct {
	Coverage recommend.Coverage `json:"coverage"`
	Overall  float64            `json:"overall"`
	Veterans int                `json:"veterans"`
	Acquired int                `json:"acquired"`
}

// BuildCoverageReport computes coverage across every ward of the simulation
func BuildCoverageReport(sim *SimulationResult, logger *zap.Logger, asOf *int) (*CoverageReport, error) {
	if err := checkAsOf(asOf); err != nil {
		return nil, err
	}

	coverage := sim.Engine().Coverage(sim.Wards(), asOf)
	report := &CoverageReport{
		Coverage: coverage,
		Overall:  coverage.Overall(),
		Veterans: coverage.Count(model.TierVeteran),
		Acquired: coverage.Count(model.TierAcquired),
	}

	logger.Debug("Built coverage report",
		zap.Int("wards", len(coverage.Wards)),
		zap.Int("nurses", len(coverage.Rows)),
		zap.Float64("overall", report.Overall))

	return report, nil
}

func checkAsOf(asOf *int) error {
	if asOf != nil && *asOf < 0 {
		return &rotation.InvalidParameterError{Parameter: "asOf", Value: *asOf, Reason: "must not be negative"}
	}
	return nil
}
