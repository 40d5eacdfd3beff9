package model

import "sort"

// Ward identifies a physical hospital unit. Two wards are the same ward iff
// their identifiers are equal.
type Ward string

// WardSet is a set of wards
type WardSet map[Ward]struct{}

// NewWardSet builds a set from the given wards, ignoring duplicates
func NewWardSet(wards ...Ward) WardSet {
	set := make(WardSet, len(wards))
	for _, w := range wards {
		set[w] = struct{}{}
	}
	return set
}

// Has reports whether the ward is in the set. A nil set contains nothing.
func (s WardSet) Has(w Ward) bool {
	_, ok := s[w]
	return ok
}

// Add inserts the ward and reports whether it was newly added
func (s WardSet) Add(w Ward) bool {
	if _, ok := s[w]; ok {
		return false
	}
	s[w] = struct{}{}
	return true
}

// Clone returns an independent copy of the set
func (s WardSet) Clone() WardSet {
	out := make(WardSet, len(s))
	for w := range s {
		out[w] = struct{}{}
	}
	return out
}

// Sorted returns the wards in lexical order
func (s WardSet) Sorted() []Ward {
	out := make([]Ward, 0, len(s))
	for w := range s {
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Nurse is a member of the roster
type Nurse struct {
	// Name is unique within the roster
	Name string

	// BaseHistory holds the wards worked before the simulation starts.
	// It is the ground truth for veteran status and never changes during a run.
	BaseHistory WardSet

	// StartOffset is the user-chosen index into the team's rotation groups.
	// nil means the positional default (roster index).
	StartOffset *int
}

// Team is an ordered roster rotating through one structure
type Team struct {
	Name   string
	Nurses []Nurse
}

// StatusTag marks whether a scheduled ward was already known to the nurse
type StatusTag string

const (
	StatusVeteran       StatusTag = "Veteran"
	StatusNewlyAcquired StatusTag = "NewlyAcquired"
)

// Tier is the qualification level of a nurse for a ward
type Tier string

const (
	TierVeteran  Tier = "Veteran"
	TierAcquired Tier = "Acquired"
	TierNone     Tier = "None"
)

// Score returns the ranking score for the tier
func (t Tier) Score() int {
	switch t {
	case TierVeteran:
		return 100
	case TierAcquired:
		return 50
	default:
		return 0
	}
}

// Roster flattens teams into a single ordered roster (team order, then
// nurse order within a team)
func Roster(teams []Team) []Nurse {
	var out []Nurse
	for _, team := range teams {
		out = append(out, team.Nurses...)
	}
	return out
}
