package recommend

import (
	"github.com/jakechorley/ward-rota/pkg/core/model"
)

// Cell is the qualification of one nurse for one ward
type Cell struct {
	Ward  model.Ward `json:"ward"`
	Tier  model.Tier `json:"tier"`
	Level float64    `json:"level"`
}

// CoverageRow is one nurse's line of the coverage matrix
type CoverageRow struct {
	Nurse string `json:"nurse"`
	Cells []Cell `json:"cells"`
}

// Coverage is the nurse x ward qualification matrix
type Coverage struct {
	Wards []model.Ward  `json:"wards"`
	Rows  []CoverageRow `json:"rows"`
}

// Level maps a tier onto the matrix scale: veteran 1, acquired 0.5, none 0
func Level(t model.Tier) float64 {
	return float64(t.Score()) / float64(model.TierVeteran.Score())
}

// Coverage builds the matrix for the engine's roster over the given ward axis
func (e *Engine) Coverage(wards []model.Ward, asOf *int) Coverage {
	cov := Coverage{
		Wards: append([]model.Ward(nil), wards...),
		Rows:  make([]CoverageRow, 0, len(e.roster)),
	}

	for _, n := range e.roster {
		row := CoverageRow{Nurse: n.Name, Cells: make([]Cell, 0, len(wards))}
		for _, w := range wards {
			tier, _ := e.Qualify(n.Name, w, asOf)
			row.Cells = append(row.Cells, Cell{Ward: w, Tier: tier, Level: Level(tier)})
		}
		cov.Rows = append(cov.Rows, row)
	}

	return cov
}

// WardRatio returns the fraction of nurses qualified (any tier) for the ward
func (c Coverage) WardRatio(ward model.Ward) float64 {
	if len(c.Rows) == 0 {
		return 0
	}
	qualified := 0
	for _, row := range c.Rows {
		for _, cell := range row.Cells {
			if cell.Ward == ward && cell.Tier != model.TierNone {
				qualified++
				break
			}
		}
	}
	return float64(qualified) / float64(len(c.Rows))
}

// Overall returns the fraction of wards on the axis with at least one
// qualified nurse
func (c Coverage) Overall() float64 {
	if len(c.Wards) == 0 {
		return 0
	}
	covered := 0
	for _, w := range c.Wards {
		if c.WardRatio(w) > 0 {
			covered++
		}
	}
	return float64(covered) / float64(len(c.Wards))
}

// Count returns how many cells of the matrix carry the given tier
func (c Coverage) Count(tier model.Tier) int {
	count := 0
	for _, row := range c.Rows {
		for _, cell := range row.Cells {
			if cell.Tier == tier {
				count++
			}
		}
	}
	return count
}
