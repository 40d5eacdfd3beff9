package rotation

import (
	"fmt"

	"github.com/jakechorley/ward-rota/pkg/core/model"
	"github.com/jakechorley/ward-rota/pkg/core/skills"
)

// Recorder receives the skills produced by scheduling. The batch must be
// applied atomically.
type Recorder interface {
	RecordBatch(pairs []skills.Pair) error
}

// Entry is one nurse's assignment for one period
type Entry struct {
	Team        string          `json:"team"`
	Nurse       string          `json:"nurse"`
	PeriodIndex int             `json:"periodIndex"`
	StartWeek   int             `json:"startWeek"`
	EndWeek     int             `json:"endWeek"`
	GroupIndex  int             `json:"groupIndex"`
	GroupLabel  string          `json:"group"`
	Special     bool            `json:"special"`
	Ward        model.Ward      `json:"ward"`
	Status      model.StatusTag `json:"status"`
}

// PeriodLabel renders the week range covered by the entry, e.g. "1~2"
func (e Entry) PeriodLabel() string {
	return fmt.Sprintf("%d~%d", e.StartWeek, e.EndWeek)
}

// Schedule is the ordered list of entries: nurses in roster order, rounds ascending
type Schedule []Entry

// ForNurse returns the nurse's entries in round order
func (s Schedule) ForNurse(nurse string) Schedule {
	var out Schedule
	for _, e := range s {
		if e.Nurse == nurse {
			out = append(out, e)
		}
	}
	return out
}

// Periods returns the number of rounds covered by the schedule
func (s Schedule) Periods() int {
	periods := 0
	for _, e := range s {
		if e.PeriodIndex+1 > periods {
			periods = e.PeriodIndex + 1
		}
	}
	return periods
}

// FirstAcquired returns the earliest period in which the nurse was scheduled on the ward
func (s Schedule) FirstAcquired(nurse string, ward model.Ward) (int, bool) {
	first, found := 0, false
	for _, e := range s {
		if e.Nurse != nurse || e.Ward != ward {
			continue
		}
		if !found || e.PeriodIndex < first {
			first, found = e.PeriodIndex, true
		}
	}
	return first, found
}

// Scheduler computes rotation schedules with a single ward-selection policy
type Scheduler struct {
	policy   WardPolicy
	recorder Recorder
}

// NewScheduler creates a scheduler. A nil policy selects FirstWardPolicy.
func NewScheduler(policy WardPolicy, recorder Recorder) *Scheduler {
	if policy == nil {
		policy = FirstWardPolicy{}
	}
	return &Scheduler{policy: policy, recorder: recorder}
}

// Rounds returns how many rounds a horizon yields on a structure:
// ceil(horizon / periodLength) capped at one full lap of the structure
func Rounds(groupCount, periodLengthWeeks, horizonWeeks int) int {
	steps := (horizonWeeks + periodLengthWeeks - 1) / periodLengthWeeks
	return min(steps, groupCount)
}

// Schedule assigns every nurse a ward for each round of the horizon.
//
// A nurse at roster position i starts at group i, unless the nurse carries a
// StartOffset preference. In round r the nurse visits group
// (offset + r) mod GroupCount and the policy picks the ward inside it.
//
// Every produced entry is recorded with the recorder in one batch after all
// validation has passed, so either the whole schedule is recorded or none of it.
//
// Errors:
//   - InvalidParameterError if periodLengthWeeks <= 0, horizonWeeks <= 0 or a
//     StartOffset is negative
//   - ConfigurationError if the structure is nil
//   - the recorder's error if it rejects the batch (e.g. unknown nurse)
func (s *Scheduler) Schedule(team string, nurses []model.Nurse, structure *Structure, periodLengthWeeks, horizonWeeks int) (Schedule, error) {
	if periodLengthWeeks <= 0 {
		return nil, &InvalidParameterError{Parameter: "periodLengthWeeks", Value: periodLengthWeeks, Reason: "must be positive"}
	}
	if horizonWeeks <= 0 {
		return nil, &InvalidParameterError{Parameter: "horizonWeeks", Value: horizonWeeks, Reason: "must be positive"}
	}
	if structure == nil {
		return nil, &ConfigurationError{Track: team, Reason: "structure is nil"}
	}
	for _, n := range nurses {
		if n.StartOffset != nil && *n.StartOffset < 0 {
			return nil, &InvalidParameterError{Parameter: "startOffset[" + n.Name + "]", Value: *n.StartOffset, Reason: "must not be negative"}
		}
	}

	if len(nurses) == 0 {
		return Schedule{}, nil
	}

	if t, ok := s.policy.(StructureTransformer); ok {
		structure = t.Transform(structure)
	}

	groupCount := structure.GroupCount()
	rounds := Rounds(groupCount, periodLengthWeeks, horizonWeeks)

	schedule := make(Schedule, 0, len(nurses)*rounds)
	pairs := make([]skills.Pair, 0, len(nurses)*rounds)

	for i, nurse := range nurses {
		offset := i
		if nurse.StartOffset != nil {
			offset = *nurse.StartOffset
		}
		offset %= groupCount

		for r := 0; r < rounds; r++ {
			groupIndex := (offset + r) % groupCount
			group := structure.groups[groupIndex]
			ward := s.policy.SelectWard(group, r)

			status := model.StatusNewlyAcquired
			if nurse.BaseHistory.Has(ward) {
				status = model.StatusVeteran
			}

			schedule = append(schedule, Entry{
				Team:        team,
				Nurse:       nurse.Name,
				PeriodIndex: r,
				StartWeek:   r*periodLengthWeeks + 1,
				EndWeek:     min((r+1)*periodLengthWeeks, horizonWeeks),
				GroupIndex:  groupIndex,
				GroupLabel:  group.label,
				Special:     group.special,
				Ward:        ward,
				Status:      status,
			})
			pairs = append(pairs, skills.Pair{Nurse: nurse.Name, Ward: ward})
		}
	}

	if s.recorder != nil {
		if err := s.recorder.RecordBatch(pairs); err != nil {
			return nil, fmt.Errorf("failed to record scheduled skills: %w", err)
		}
	}

	return schedule, nil
}
