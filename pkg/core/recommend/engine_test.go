package recommend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakechorley/ward-rota/pkg/core/model"
	"github.com/jakechorley/ward-rota/pkg/core/rotation"
	"github.com/jakechorley/ward-rota/pkg/core/skills"
)

func intPtr(i int) *int { return &i }

type fixture struct {
	roster   []model.Nurse
	acc      *skills.Accumulator
	schedule rotation.Schedule
}

// scenario: G1=[A,B], G2=[C]; N1 starts at G1 with no history, N2 starts at
// G2 and already knows C; two rounds
func scenario(t *testing.T) fixture {
	t.Helper()

	structure, err := rotation.NewStructure("General", []rotation.GroupSpec{
		{Label: "G1", Wards: []model.Ward{"A", "B"}},
		{Label: "G2", Wards: []model.Ward{"C"}},
	})
	require.NoError(t, err)

	roster := []model.Nurse{
		{Name: "N1", BaseHistory: model.NewWardSet(), StartOffset: intPtr(0)},
		{Name: "N2", BaseHistory: model.NewWardSet("C"), StartOffset: intPtr(1)},
	}
	acc := skills.NewAccumulator(roster...)

	schedule, err := rotation.NewScheduler(rotation.FirstWardPolicy{}, acc).Schedule("General", roster, structure, 2, 4)
	require.NoError(t, err)

	return fixture{roster: roster, acc: acc, schedule: schedule}
}

func names(recs []Recommendation) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.Nurse
	}
	return out
}

func TestRecommend_ScenarioTimeBounded(t *testing.T) {
	f := scenario(t)
	engine := NewEngine(f.roster, f.acc, f.schedule)

	atOne := engine.Recommend("C", intPtr(1))
	require.Len(t, atOne, 2)
	assert.Equal(t, Recommendation{Nurse: "N2", Tier: model.TierVeteran, Score: 100, Evidence: Evidence{Source: SourceBaseHistory}}, atOne[0])
	assert.Equal(t, "N1", atOne[1].Nurse)
	assert.Equal(t, model.TierAcquired, atOne[1].Tier)
	assert.Equal(t, 50, atOne[1].Score)
	assert.Equal(t, SourceSchedule, atOne[1].Evidence.Source)
	require.NotNil(t, atOne[1].Evidence.PeriodIndex)
	assert.Equal(t, 1, *atOne[1].Evidence.PeriodIndex)

	atZero := engine.Recommend("C", intPtr(0))
	assert.Equal(t, []string{"N2"}, names(atZero))
	assert.Equal(t, model.TierVeteran, atZero[0].Tier)

	unbounded := engine.Recommend("C", nil)
	assert.Equal(t, []string{"N2", "N1"}, names(unbounded))
}

func TestRecommend_OrderingVeteransFirstThenRoster(t *testing.T) {
	roster := []model.Nurse{
		{Name: "P1"},
		{Name: "P2", BaseHistory: model.NewWardSet("W")},
		{Name: "P3"},
		{Name: "P4", BaseHistory: model.NewWardSet("W")},
		{Name: "P5"},
	}
	acc := skills.NewAccumulator(roster...)
	require.NoError(t, acc.Record("P3", "W"))
	require.NoError(t, acc.Record("P1", "W"))

	recs := NewEngine(roster, acc, nil).Recommend("W", nil)

	assert.Equal(t, []string{"P2", "P4", "P1", "P3"}, names(recs))
	for _, r := range recs[2:] {
		assert.Equal(t, SourceIngested, r.Evidence.Source)
	}
}

func TestRecommend_NoQualifiedStaff(t *testing.T) {
	f := scenario(t)
	recs := NewEngine(f.roster, f.acc, f.schedule).Recommend("ICU", nil)

	assert.NotNil(t, recs)
	assert.Empty(t, recs)
}

func TestRecommend_Completeness(t *testing.T) {
	f := scenario(t)
	engine := NewEngine(f.roster, f.acc, f.schedule)

	for _, ward := range []model.Ward{"A", "B", "C"} {
		got := make(map[string]model.Tier)
		for _, r := range engine.Recommend(ward, nil) {
			got[r.Nurse] = r.Tier
		}

		want := make(map[string]model.Tier)
		for _, n := range f.roster {
			switch {
			case n.BaseHistory.Has(ward):
				want[n.Name] = model.TierVeteran
			case f.acc.Snapshot(n.Name).Has(ward):
				want[n.Name] = model.TierAcquired
			}
		}

		assert.Equal(t, want, got, "ward %s", ward)
	}
}

func TestRecommend_TimeBoundNeverIncludesFuturePeriods(t *testing.T) {
	f := scenario(t)
	engine := NewEngine(f.roster, f.acc, f.schedule)

	for k := 0; k < f.schedule.Periods(); k++ {
		for _, ward := range []model.Ward{"A", "B", "C"} {
			for _, r := range engine.Recommend(ward, intPtr(k)) {
				if r.Tier != model.TierAcquired || r.Evidence.Source != SourceSchedule {
					continue
				}
				assert.LessOrEqual(t, *r.Evidence.PeriodIndex, k)
			}
		}
	}
}

func TestRecommend_IsPureAndIdempotent(t *testing.T) {
	f := scenario(t)
	engine := NewEngine(f.roster, f.acc, f.schedule)

	first := engine.Recommend("A", intPtr(1))
	second := engine.Recommend("A", intPtr(1))
	assert.Equal(t, first, second)

	// Writes after construction are not observed
	require.NoError(t, f.acc.Record("N2", "B"))
	assert.Empty(t, engine.Recommend("B", nil))
	assert.Equal(t, []string{"N2"}, names(NewEngine(f.roster, f.acc, f.schedule).Recommend("B", nil)))
}

func TestQualify_IngestedBeforeRunIsNotTimeBounded(t *testing.T) {
	roster := []model.Nurse{{Name: "N1"}}
	acc := skills.NewAccumulator(roster...)
	require.NoError(t, acc.RecordIngested([]skills.Pair{{Nurse: "N1", Ward: "MICU"}}))

	tier, evidence := NewEngine(roster, acc, rotation.Schedule{}).Qualify("N1", "MICU", intPtr(0))
	assert.Equal(t, model.TierAcquired, tier)
	assert.Equal(t, SourceIngested, evidence.Source)
	assert.Nil(t, evidence.PeriodIndex)
}

func TestQualify_IngestedThenScheduledLater(t *testing.T) {
	structure, err := rotation.NewStructure("General", []rotation.GroupSpec{
		{Label: "G1", Wards: []model.Ward{"A"}},
		{Label: "G2", Wards: []model.Ward{"C"}},
	})
	require.NoError(t, err)

	roster := []model.Nurse{{Name: "N1", StartOffset: intPtr(0)}}
	acc := skills.NewAccumulator(roster...)
	require.NoError(t, acc.RecordIngested([]skills.Pair{{Nurse: "N1", Ward: "C"}}))

	schedule, err := rotation.NewScheduler(rotation.FirstWardPolicy{}, acc).Schedule("General", roster, structure, 2, 4)
	require.NoError(t, err)
	period, ok := schedule.FirstAcquired("N1", "C")
	require.True(t, ok)
	require.Equal(t, 1, period)

	engine := NewEngine(roster, acc, schedule)

	recs := engine.Recommend("C", intPtr(0))
	require.Len(t, recs, 1)
	assert.Equal(t, "N1", recs[0].Nurse)
	assert.Equal(t, model.TierAcquired, recs[0].Tier)
	assert.Equal(t, SourceIngested, recs[0].Evidence.Source)
	assert.Nil(t, recs[0].Evidence.PeriodIndex)

	// A ward reached only by scheduling keeps its schedule evidence
	tier, evidence := engine.Qualify("N1", "A", intPtr(0))
	assert.Equal(t, model.TierAcquired, tier)
	assert.Equal(t, SourceSchedule, evidence.Source)
}

func TestNewEngine_IgnoresLaterIngestion(t *testing.T) {
	f := scenario(t)
	engine := NewEngine(f.roster, f.acc, f.schedule)

	require.NoError(t, f.acc.RecordIngested([]skills.Pair{{Nurse: "N1", Ward: "C"}}))

	tier, _ := engine.Qualify("N1", "C", intPtr(0))
	assert.Equal(t, model.TierNone, tier)
}
