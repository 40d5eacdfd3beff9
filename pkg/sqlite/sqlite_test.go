package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakechorley/ward-rota/pkg/core/model"
	"github.com/jakechorley/ward-rota/pkg/core/rotation"
	"github.com/jakechorley/ward-rota/pkg/db"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	ctx := context.Background()

	d, err := NewDB(ctx, filepath.Join(t.TempDir(), "ward_rota.db"))
	require.NoError(t, err)
	t.Cleanup(d.Close)

	require.NoError(t, d.RunMigrations(ctx))
	return d
}

func testEntries() []rotation.Entry {
	return []rotation.Entry{
		{Team: "General", Nurse: "N1", PeriodIndex: 0, StartWeek: 1, EndWeek: 2, GroupIndex: 0, GroupLabel: "G1", Ward: "A", Status: model.StatusNewlyAcquired},
		{Team: "General", Nurse: "N1", PeriodIndex: 1, StartWeek: 3, EndWeek: 4, GroupIndex: 1, GroupLabel: "G2", Special: true, Ward: "C", Status: model.StatusNewlyAcquired},
		{Team: "General", Nurse: "N2", PeriodIndex: 0, StartWeek: 1, EndWeek: 2, GroupIndex: 1, GroupLabel: "G2", Special: true, Ward: "C", Status: model.StatusVeteran},
	}
}

func TestRunMigrations_Idempotent(t *testing.T) {
	d := newTestDB(t)
	ctx := context.Background()

	require.NoError(t, d.RunMigrations(ctx))

	var version int
	require.NoError(t, d.db.QueryRowContext(ctx, `SELECT MAX(version) FROM schema_migrations`).Scan(&version))
	assert.Equal(t, SchemaVersion, version)
}

func TestRuns_RoundTrip(t *testing.T) {
	d := newTestDB(t)
	ctx := context.Background()

	older := &db.Run{ID: "run-1", CreatedAt: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC), Policy: rotation.PolicyFirstWard, PeriodLengthWeeks: 2, HorizonWeeks: 4}
	newer := &db.Run{ID: "run-2", CreatedAt: time.Date(2025, 3, 1, 9, 0, 0, 500, time.UTC), Policy: rotation.PolicyCircuit, PeriodLengthWeeks: 4, HorizonWeeks: 24}

	require.NoError(t, d.InsertRun(ctx, older, testEntries()))
	require.NoError(t, d.InsertRun(ctx, newer, nil))

	runs, err := d.GetRuns(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-2", runs[0].ID)
	assert.Equal(t, 0, runs[0].EntryCount)
	assert.Equal(t, "run-1", runs[1].ID)
	assert.Equal(t, 3, runs[1].EntryCount)
	assert.True(t, older.CreatedAt.Equal(runs[1].CreatedAt))

	run, err := d.GetRun(ctx, "run-2")
	require.NoError(t, err)
	assert.Equal(t, rotation.PolicyCircuit, run.Policy)
	assert.Equal(t, 24, run.HorizonWeeks)

	entries, err := d.GetRunEntries(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, testEntries(), entries)

	entries, err = d.GetRunEntries(ctx, "run-2")
	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}

func TestInsertRun_DuplicateRollsBack(t *testing.T) {
	d := newTestDB(t)
	ctx := context.Background()

	run := &db.Run{ID: "run-1", CreatedAt: time.Now(), Policy: rotation.PolicyFirstWard, PeriodLengthWeeks: 2, HorizonWeeks: 4}
	require.NoError(t, d.InsertRun(ctx, run, testEntries()[:1]))

	err := d.InsertRun(ctx, run, testEntries())
	require.Error(t, err)

	entries, err := d.GetRunEntries(ctx, "run-1")
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestGetRun_NotFound(t *testing.T) {
	d := newTestDB(t)

	_, err := d.GetRun(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, db.ErrRunNotFound))

	_, err = d.GetRunEntries(context.Background(), "missing")
	assert.True(t, errors.Is(err, db.ErrRunNotFound))
}

func TestSkillRecords_RoundTrip(t *testing.T) {
	d := newTestDB(t)
	ctx := context.Background()

	first := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	second := first.Add(time.Hour)

	require.NoError(t, d.InsertSkillRecords(ctx, []db.SkillRecord{
		{ID: "r3", BatchID: "b2", Nurse: "Kim", Ward: "OR", Source: db.SourceSheets, ImportedAt: second},
	}))
	require.NoError(t, d.InsertSkillRecords(ctx, []db.SkillRecord{
		{ID: "r1", BatchID: "b1", Nurse: "Kim", Ward: "71W", Source: db.SourceCSV, ImportedAt: first},
		{ID: "r2", BatchID: "b1", Nurse: "Lee", Ward: "MICU", Source: db.SourceCSV, ImportedAt: first},
	}))
	require.NoError(t, d.InsertSkillRecords(ctx, nil))

	records, err := d.GetSkillRecords(ctx)
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, "r1", records[0].ID)
	assert.Equal(t, "r2", records[1].ID)
	assert.Equal(t, "r3", records[2].ID)
	assert.Equal(t, model.Ward("MICU"), records[1].Ward)
	assert.Equal(t, db.SourceSheets, records[2].Source)
	assert.True(t, second.Equal(records[2].ImportedAt))
}

func TestInsertSkillRecords_AllOrNothing(t *testing.T) {
	d := newTestDB(t)
	ctx := context.Background()

	now := time.Now()
	err := d.InsertSkillRecords(ctx, []db.SkillRecord{
		{ID: "dup", BatchID: "b1", Nurse: "Kim", Ward: "71W", Source: db.SourceCSV, ImportedAt: now},
		{ID: "dup", BatchID: "b1", Nurse: "Lee", Ward: "92W", Source: db.SourceCSV, ImportedAt: now},
	})
	require.Error(t, err)

	records, err := d.GetSkillRecords(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestNewDB_InMemory(t *testing.T) {
	ctx := context.Background()
	d, err := NewDB(ctx, ":memory:")
	require.NoError(t, err)
	defer d.Close()

	require.NoError(t, d.RunMigrations(ctx))
	runs, err := d.GetRuns(ctx)
	require.NoError(t, err)
	assert.Empty(t, runs)
}
