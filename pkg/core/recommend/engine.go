package recommend

import (
	"sort"

	"github.com/jakechorley/ward-rota/pkg/core/model"
	"github.com/jakechorley/ward-rota/pkg/core/rotation"
)

// SkillReader is the read side of the skill accumulator
type SkillReader interface {
	Snapshot(nurse string) model.WardSet
	Ingested(nurse string) model.WardSet
	IsVeteran(nurse string, ward model.Ward) bool
}

// Evidence sources
const (
	SourceBaseHistory = "base-history"
	SourceSchedule    = "schedule"
	SourceIngested    = "ingested"
)

// Evidence explains why a nurse qualifies for a ward
type Evidence struct {
	Source string `json:"source"`

	// PeriodIndex is the earliest period the nurse was rotated onto the ward.
	// Only set when Source is SourceSchedule.
	PeriodIndex *int `json:"periodIndex,omitempty"`
}

// Recommendation is one qualified nurse for a ward
type Recommendation struct {
	Nurse    string     `json:"nurse"`
	Tier     model.Tier `json:"tier"`
	Score    int        `json:"score"`
	Evidence Evidence   `json:"evidence"`
}

// Engine answers qualification queries over a finished run. It holds
// snapshots taken at construction, so queries never observe later writes
// and repeated queries return identical results.
type Engine struct {
	roster   []model.Nurse
	reader   SkillReader
	skills   map[string]model.WardSet
	ingested map[string]model.WardSet
	schedule rotation.Schedule
}

// NewEngine snapshots the skill sets of every rostered nurse
func NewEngine(roster []model.Nurse, reader SkillReader, schedule rotation.Schedule) *Engine {
	snapshots := make(map[string]model.WardSet, len(roster))
	ingested := make(map[string]model.WardSet, len(roster))
	for _, n := range roster {
		snapshots[n.Name] = reader.Snapshot(n.Name)
		ingested[n.Name] = reader.Ingested(n.Name)
	}
	return &Engine{
		roster:   roster,
		reader:   reader,
		skills:   snapshots,
		ingested: ingested,
		schedule: schedule,
	}
}

// Qualify returns the nurse's tier for the ward and the evidence for it.
// With asOf set, a ward acquired through scheduling only counts once its
// period has been reached.
func (e *Engine) Qualify(nurse string, ward model.Ward, asOf *int) (model.Tier, Evidence) {
	if e.reader.IsVeteran(nurse, ward) {
		return model.TierVeteran, Evidence{Source: SourceBaseHistory}
	}
	if !e.skills[nurse].Has(ward) {
		return model.TierNone, Evidence{}
	}

	// Ingested wards predate every period, even if the run later
	// schedules the nurse onto the same ward
	if e.ingested[nurse].Has(ward) {
		return model.TierAcquired, Evidence{Source: SourceIngested}
	}

	period, scheduled := e.schedule.FirstAcquired(nurse, ward)
	if !scheduled {
		// Recorded outside the run with no entry to bound it
		return model.TierAcquired, Evidence{Source: SourceIngested}
	}
	if asOf != nil && period > *asOf {
		return model.TierNone, Evidence{}
	}
	return model.TierAcquired, Evidence{Source: SourceSchedule, PeriodIndex: &period}
}

// Recommend lists the nurses qualified for the ward, veterans first, then
// acquired; ties keep roster order. A nil asOf disables time-bounding.
// An empty (non-nil) result means nobody is qualified.
func (e *Engine) Recommend(ward model.Ward, asOf *int) []Recommendation {
	out := make([]Recommendation, 0)
	for _, n := range e.roster {
		tier, evidence := e.Qualify(n.Name, ward, asOf)
		if tier == model.TierNone {
			continue
		}
		out = append(out, Recommendation{
			Nurse:    n.Name,
			Tier:     tier,
			Score:    tier.Score(),
			Evidence: evidence,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})

	return out
}
