package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jakechorley/ward-rota/internal/config"
	"github.com/jakechorley/ward-rota/pkg/core/rotation"
	"github.com/jakechorley/ward-rota/pkg/db"
)

type mockStore struct {
	runs          []db.Run
	entries       map[string][]rotation.Entry
	skillRecords  []db.SkillRecord
	insertedRuns  []db.Run
	insertedSkill []db.SkillRecord

	getRunsErr      error
	insertRunErr    error
	getSkillsErr    error
	insertSkillsErr error
}

func (m *mockStore) InsertRun(ctx context.Context, run *db.Run, entries []rotation.Entry) error {
	if m.insertRunErr != nil {
		return m.insertRunErr
	}
	m.insertedRuns = append(m.insertedRuns, *run)
	if m.entries == nil {
		m.entries = make(map[string][]rotation.Entry)
	}
	m.entries[run.ID] = append([]rotation.Entry(nil), entries...)
	return nil
}

func (m *mockStore) GetRuns(ctx context.Context) ([]db.Run, error) {
	if m.getRunsErr != nil {
		return nil, m.getRunsErr
	}
	return m.runs, nil
}

func (m *mockStore) GetRun(ctx context.Context, runID string) (*db.Run, error) {
	for _, r := range m.runs {
		if r.ID == runID {
			run := r
			return &run, nil
		}
	}
	return nil, db.ErrRunNotFound
}

func (m *mockStore) GetRunEntries(ctx context.Context, runID string) ([]rotation.Entry, error) {
	if _, err := m.GetRun(ctx, runID); err != nil {
		return nil, err
	}
	return m.entries[runID], nil
}

func (m *mockStore) InsertSkillRecords(ctx context.Context, records []db.SkillRecord) error {
	if m.insertSkillsErr != nil {
		return m.insertSkillsErr
	}
	m.insertedSkill = append(m.insertedSkill, records...)
	return nil
}

func (m *mockStore) GetSkillRecords(ctx context.Context) ([]db.SkillRecord, error) {
	if m.getSkillsErr != nil {
		return nil, m.getSkillsErr
	}
	return m.skillRecords, nil
}

var errStore = errors.New("store unavailable")

func intPtr(i int) *int { return &i }

// scenarioConfig: G1=[A,B], G2=[C]; N1 starts at G1, N2 starts at G2 and
// already knows C; period 2, horizon 4
func scenarioConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := &config.Config{
		PeriodLengthWeeks: 2,
		HorizonWeeks:      4,
		WardPolicy:        rotation.PolicyFirstWard,
		Database:          config.DatabaseConfig{Driver: "sqlite", DSN: ":memory:"},
		Teams: []config.TeamConfig{
			{
				Name: "General",
				Groups: []config.GroupConfig{
					{Label: "G1", Wards: []string{"A", "B"}},
					{Label: "G2", Wards: []string{"C"}},
				},
				Nurses: []config.NurseConfig{
					{Name: "N1", StartOffset: intPtr(0)},
					{Name: "N2", History: []string{"C"}, StartOffset: intPtr(1)},
				},
			},
		},
	}
	require.NoError(t, config.Validate(cfg))
	return cfg
}
