package skills

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/jakechorley/ward-rota/pkg/core/model"
)

var (
	ErrUnknownNurse = errors.New("unknown nurse")
	ErrEmptyWard    = errors.New("empty ward")
)

// Pair is a single (nurse, ward) skill observation
type Pair struct {
	Nurse string     `json:"nurse"`
	Ward  model.Ward `json:"ward"`
}

// Accumulator tracks the wards each nurse has worked.
//
// Every skill set starts as the nurse's base history and only grows. Veteran
// status is answered from the base history alone, so it never changes no
// matter how many wards are recorded.
//
// Wards that arrive through ingestion are also kept apart from scheduled
// ones, since they predate the run.
//
// Writes take an exclusive lock and reads a shared lock, so an ingestion
// feed may record while queries run.
type Accumulator struct {
	mu       sync.RWMutex
	base     map[string]model.WardSet
	skills   map[string]model.WardSet
	ingested map[string]model.WardSet
}

// NewAccumulator creates an accumulator seeded with the nurses' base histories
func NewAccumulator(nurses ...model.Nurse) *Accumulator {
	acc := &Accumulator{
		base:     make(map[string]model.WardSet, len(nurses)),
		skills:   make(map[string]model.WardSet, len(nurses)),
		ingested: make(map[string]model.WardSet, len(nurses)),
	}
	for _, n := range nurses {
		acc.register(n)
	}
	return acc
}

// register seeds a nurse once; a repeated name keeps its first base history
func (a *Accumulator) register(nurse model.Nurse) {
	if _, ok := a.base[nurse.Name]; ok {
		return
	}
	a.base[nurse.Name] = nurse.BaseHistory.Clone()
	a.skills[nurse.Name] = nurse.BaseHistory.Clone()
	a.ingested[nurse.Name] = make(model.WardSet)
}

// Has reports whether the nurse is known to the accumulator
func (a *Accumulator) Has(nurse string) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	_, ok := a.skills[nurse]
	return ok
}

// Record adds the ward to the nurse's skill set. Recording a ward twice is a no-op.
func (a *Accumulator) Record(nurse string, ward model.Ward) error {
	return a.RecordBatch([]Pair{{Nurse: nurse, Ward: ward}})
}

// RecordBatch records every pair or none of them. All pairs are validated
// before the first one is applied.
func (a *Accumulator) RecordBatch(pairs []Pair) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.check(pairs); err != nil {
		return err
	}
	for _, p := range pairs {
		a.skills[p.Nurse].Add(p.Ward)
	}
	return nil
}

// RecordIngested records pairs taken from outside the run (imported
// records), all or none. They count as skills like RecordBatch pairs and
// are also remembered as ingested.
func (a *Accumulator) RecordIngested(pairs []Pair) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.check(pairs); err != nil {
		return err
	}
	for _, p := range pairs {
		a.skills[p.Nurse].Add(p.Ward)
		a.ingested[p.Nurse].Add(p.Ward)
	}
	return nil
}

// check must be called with the write lock held
func (a *Accumulator) check(pairs []Pair) error {
	for i, p := range pairs {
		if _, ok := a.skills[p.Nurse]; !ok {
			return fmt.Errorf("pair %d: %w: %q", i, ErrUnknownNurse, p.Nurse)
		}
		if strings.TrimSpace(string(p.Ward)) == "" {
			return fmt.Errorf("pair %d for %q: %w", i, p.Nurse, ErrEmptyWard)
		}
	}
	return nil
}

// Snapshot returns a copy of the nurse's current skill set. Unknown nurses
// yield an empty set.
func (a *Accumulator) Snapshot(nurse string) model.WardSet {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.skills[nurse].Clone()
}

// SnapshotAll returns a copy of every nurse's skill set
func (a *Accumulator) SnapshotAll() map[string]model.WardSet {
	a.mu.RLock()
	defer a.mu.RUnlock()

	out := make(map[string]model.WardSet, len(a.skills))
	for nurse, set := range a.skills {
		out[nurse] = set.Clone()
	}
	return out
}

// Ingested returns a copy of the wards recorded for the nurse through
// RecordIngested
func (a *Accumulator) Ingested(nurse string) model.WardSet {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.ingested[nurse].Clone()
}

// IsVeteran reports whether the ward was in the nurse's base history
func (a *Accumulator) IsVeteran(nurse string, ward model.Ward) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.base[nurse].Has(ward)
}
