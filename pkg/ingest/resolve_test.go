package ingest

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakechorley/ward-rota/pkg/core/model"
	"github.com/jakechorley/ward-rota/pkg/core/skills"
)

func TestResolve(t *testing.T) {
	roster := []string{"김민지", "민지", "Lee"}

	res := Resolve(roster, []Row{
		{Line: 2, Name: " 김민지 간호사 ", Ward: " 71W "},
		{Line: 3, Name: "민지", Ward: "MICU"},
		{Line: 4, Name: "Park", Ward: "92W"},
		{Line: 5, Name: "Lee", Ward: ""},
		{Line: 6, Name: "", Ward: "101W"},
		{Line: 7, Name: "Dr Lee", Ward: "OR"},
	})

	assert.Equal(t, 3, res.Matched)
	assert.Equal(t, []skills.Pair{
		{Nurse: "김민지", Ward: "71W"},
		{Nurse: "민지", Ward: "MICU"},
		{Nurse: "Lee", Ward: "OR"},
	}, res.Pairs)

	require.Len(t, res.Unmatched, 3)
	assert.Equal(t, 4, res.Unmatched[0].Row.Line)
	assert.Equal(t, ReasonNoMatch, res.Unmatched[0].Reason)
	assert.Equal(t, ReasonBlank, res.Unmatched[1].Reason)
	assert.Equal(t, ReasonBlank, res.Unmatched[2].Reason)
}

func TestResolve_FirstMatchWinsInRosterOrder(t *testing.T) {
	// Both names are substrings of the fragment; roster order decides
	res := Resolve([]string{"Ann", "Anna"}, []Row{{Name: "Anna K", Ward: "A"}})
	require.Len(t, res.Pairs, 1)
	assert.Equal(t, "Ann", res.Pairs[0].Nurse)

	res = Resolve([]string{"Anna", "Ann"}, []Row{{Name: "Anna K", Ward: "A"}})
	assert.Equal(t, "Anna", res.Pairs[0].Nurse)
}

func TestResolve_ZeroMatchesIsNotAnError(t *testing.T) {
	res := Resolve([]string{"", "Kim"}, []Row{{Name: "Park", Ward: "A"}})

	assert.Equal(t, 0, res.Matched)
	assert.NotNil(t, res.Pairs)
	assert.Empty(t, res.Pairs)
	assert.Len(t, res.Unmatched, 1)
}

type failingRecorder struct{ calls int }

func (f *failingRecorder) RecordIngested([]skills.Pair) error {
	f.calls++
	return errors.New("boom")
}

func TestApply(t *testing.T) {
	acc := skills.NewAccumulator(model.Nurse{Name: "Kim"}, model.Nurse{Name: "Lee"})

	res := Resolve([]string{"Kim", "Lee"}, []Row{
		{Name: "Kim", Ward: "71W"},
		{Name: "Lee", Ward: "92W"},
	})
	require.NoError(t, Apply(acc, res))

	assert.True(t, acc.Snapshot("Kim").Has("71W"))
	assert.True(t, acc.Snapshot("Lee").Has("92W"))
}

func TestApply_AtomicOnFailure(t *testing.T) {
	acc := skills.NewAccumulator(model.Nurse{Name: "Kim"})

	// Park resolves against a wider roster than the accumulator knows
	res := Resolve([]string{"Kim", "Park"}, []Row{
		{Name: "Kim", Ward: "71W"},
		{Name: "Park", Ward: "92W"},
	})

	err := Apply(acc, res)
	require.Error(t, err)
	assert.True(t, errors.Is(err, skills.ErrUnknownNurse))
	assert.False(t, acc.Snapshot("Kim").Has("71W"))
}

func TestApply_NothingResolved(t *testing.T) {
	rec := &failingRecorder{}
	require.NoError(t, Apply(rec, Result{}))
	assert.Equal(t, 0, rec.calls)
}
