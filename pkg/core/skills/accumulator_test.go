package skills

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakechorley/ward-rota/pkg/core/model"
)

func newTestAccumulator() *Accumulator {
	return NewAccumulator(
		model.Nurse{Name: "Alice", BaseHistory: model.NewWardSet("71W", "92W")},
		model.Nurse{Name: "Bob", BaseHistory: model.NewWardSet("101W")},
		model.Nurse{Name: "Cara"},
	)
}

func TestNewAccumulator_SeedsBaseHistory(t *testing.T) {
	acc := newTestAccumulator()

	assert.Equal(t, []model.Ward{"71W", "92W"}, acc.Snapshot("Alice").Sorted())
	assert.Equal(t, []model.Ward{"101W"}, acc.Snapshot("Bob").Sorted())
	assert.Empty(t, acc.Snapshot("Cara"))
	assert.True(t, acc.Has("Cara"))
	assert.False(t, acc.Has("Dan"))
}

func TestRecord_Idempotent(t *testing.T) {
	acc := newTestAccumulator()

	require.NoError(t, acc.Record("Cara", "52W"))
	require.NoError(t, acc.Record("Cara", "52W"))
	require.NoError(t, acc.Record("Alice", "71W"))

	assert.Equal(t, []model.Ward{"52W"}, acc.Snapshot("Cara").Sorted())
	assert.Equal(t, []model.Ward{"71W", "92W"}, acc.Snapshot("Alice").Sorted())
}

func TestRecord_Errors(t *testing.T) {
	acc := newTestAccumulator()

	err := acc.Record("Dan", "52W")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownNurse))

	err = acc.Record("Alice", "  ")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrEmptyWard))
}

func TestIsVeteran_InvariantUnderRecording(t *testing.T) {
	acc := newTestAccumulator()

	assert.False(t, acc.IsVeteran("Cara", "52W"))
	assert.True(t, acc.IsVeteran("Alice", "71W"))

	for i := 0; i < 5; i++ {
		require.NoError(t, acc.Record("Cara", "52W"))
		require.NoError(t, acc.Record("Alice", "71W"))
	}

	assert.False(t, acc.IsVeteran("Cara", "52W"))
	assert.True(t, acc.IsVeteran("Alice", "71W"))
	assert.False(t, acc.IsVeteran("Dan", "71W"))
}

func TestRecordBatch_AllOrNothing(t *testing.T) {
	acc := newTestAccumulator()

	err := acc.RecordBatch([]Pair{
		{Nurse: "Alice", Ward: "61W"},
		{Nurse: "Bob", Ward: "62W"},
		{Nurse: "Nobody", Ward: "63W"},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownNurse))
	assert.Contains(t, err.Error(), "pair 2")

	assert.False(t, acc.Snapshot("Alice").Has("61W"))
	assert.False(t, acc.Snapshot("Bob").Has("62W"))

	require.NoError(t, acc.RecordBatch([]Pair{
		{Nurse: "Alice", Ward: "61W"},
		{Nurse: "Bob", Ward: "62W"},
	}))
	assert.True(t, acc.Snapshot("Alice").Has("61W"))
	assert.True(t, acc.Snapshot("Bob").Has("62W"))
}

func TestSnapshot_IsACopy(t *testing.T) {
	acc := newTestAccumulator()

	snap := acc.Snapshot("Alice")
	snap.Add("999W")
	all := acc.SnapshotAll()
	all["Bob"].Add("999W")

	assert.False(t, acc.Snapshot("Alice").Has("999W"))
	assert.False(t, acc.Snapshot("Bob").Has("999W"))
	assert.Empty(t, acc.Snapshot("Unknown"))
}

func TestNewAccumulator_DuplicateNameKeepsFirstBaseHistory(t *testing.T) {
	acc := NewAccumulator(
		model.Nurse{Name: "Bob", BaseHistory: model.NewWardSet("101W")},
		model.Nurse{Name: "Bob", BaseHistory: model.NewWardSet("MICU")},
	)

	assert.True(t, acc.IsVeteran("Bob", "101W"))
	assert.False(t, acc.IsVeteran("Bob", "MICU"))
	assert.Equal(t, []model.Ward{"101W"}, acc.Snapshot("Bob").Sorted())
}

func TestNewAccumulator_BaseHistoryIsCopied(t *testing.T) {
	history := model.NewWardSet("101W")
	acc := NewAccumulator(model.Nurse{Name: "Bob", BaseHistory: history})

	history.Add("MICU")

	assert.False(t, acc.IsVeteran("Bob", "MICU"))
	assert.False(t, acc.Snapshot("Bob").Has("MICU"))
}

func TestRecordIngested(t *testing.T) {
	acc := newTestAccumulator()

	require.NoError(t, acc.RecordIngested([]Pair{
		{Nurse: "Cara", Ward: "MICU"},
		{Nurse: "Alice", Ward: "71W"},
	}))
	require.NoError(t, acc.Record("Cara", "52W"))

	assert.Equal(t, []model.Ward{"52W", "MICU"}, acc.Snapshot("Cara").Sorted())
	assert.Equal(t, []model.Ward{"MICU"}, acc.Ingested("Cara").Sorted())
	assert.True(t, acc.Ingested("Alice").Has("71W"))
	assert.False(t, acc.IsVeteran("Cara", "MICU"))
	assert.Empty(t, acc.Ingested("Unknown"))
}

func TestRecordIngested_AllOrNothing(t *testing.T) {
	acc := newTestAccumulator()

	err := acc.RecordIngested([]Pair{
		{Nurse: "Cara", Ward: "MICU"},
		{Nurse: "Nobody", Ward: "OR"},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownNurse))

	assert.False(t, acc.Snapshot("Cara").Has("MICU"))
	assert.Empty(t, acc.Ingested("Cara"))
}

func TestAccumulator_ConcurrentReadsAndWrites(t *testing.T) {
	acc := newTestAccumulator()
	wards := []model.Ward{"41W", "51W", "61W", "71W", "81W"}

	var wg sync.WaitGroup
	for _, w := range wards {
		wg.Add(2)
		go func(w model.Ward) {
			defer wg.Done()
			assert.NoError(t, acc.Record("Cara", w))
		}(w)
		go func() {
			defer wg.Done()
			_ = acc.Snapshot("Cara")
			_ = acc.IsVeteran("Alice", "71W")
		}()
	}
	wg.Wait()

	assert.Len(t, acc.Snapshot("Cara"), len(wards))
}
