package rotation

import (
	"fmt"
	"strings"

	"github.com/jakechorley/ward-rota/pkg/core/model"
)

// SpecialMarker flags a group label as belonging to the special track
const SpecialMarker = "✨"

// GroupSpec is the raw configuration of one rotation group
type GroupSpec struct {
	Label string
	Wards []model.Ward

	// Special forces the special-track flag. When false the flag is still
	// derived from SpecialMarker in the label.
	Special bool
}

// Group is an immutable ordered list of wards visited as one rotation stop
type Group struct {
	label   string
	wards   []model.Ward
	special bool
}

// Label returns the group identifier
func (g Group) Label() string { return g.label }

// IsSpecialTrack reports whether the group belongs to the special track
func (g Group) IsSpecialTrack() bool { return g.special }

// Size returns the number of wards in the group
func (g Group) Size() int { return len(g.wards) }

// WardAt returns the ward at position i modulo the group size
func (g Group) WardAt(i int) model.Ward {
	n := len(g.wards)
	return g.wards[((i%n)+n)%n]
}

// Wards returns a copy of the group's wards
func (g Group) Wards() []model.Ward {
	return append([]model.Ward(nil), g.wards...)
}

// Structure is the ordered catalogue of groups one team rotates through.
// Position i is visited at relative step i.
type Structure struct {
	track  string
	groups []Group
}

// NewStructure validates the raw configuration and builds an immutable structure.
//
// Invalid configurations (ConfigurationError):
//   - no groups
//   - a group with a blank label
//   - a group with no wards, or a blank ward identifier
func NewStructure(track string, specs []GroupSpec) (*Structure, error) {
	if len(specs) == 0 {
		return nil, &ConfigurationError{Track: track, Reason: "structure has no groups"}
	}

	groups := make([]Group, 0, len(specs))
	for i, spec := range specs {
		label := strings.TrimSpace(spec.Label)
		if label == "" {
			return nil, &ConfigurationError{Track: track, Reason: fmt.Sprintf("group %d has no label", i)}
		}
		if len(spec.Wards) == 0 {
			return nil, &ConfigurationError{Track: track, Reason: fmt.Sprintf("group %q has no wards", label)}
		}

		wards := make([]model.Ward, len(spec.Wards))
		for j, w := range spec.Wards {
			trimmed := model.Ward(strings.TrimSpace(string(w)))
			if trimmed == "" {
				return nil, &ConfigurationError{Track: track, Reason: fmt.Sprintf("group %q has a blank ward at position %d", label, j)}
			}
			wards[j] = trimmed
		}

		groups = append(groups, Group{
			label:   label,
			wards:   wards,
			special: spec.Special || strings.Contains(label, SpecialMarker),
		})
	}

	return &Structure{track: track, groups: groups}, nil
}

// Track returns the team/track name
func (s *Structure) Track() string { return s.track }

// GroupCount returns the number of groups (the length of one lap)
func (s *Structure) GroupCount() int { return len(s.groups) }

// GroupAt returns the group at the given index
func (s *Structure) GroupAt(index int) (Group, error) {
	if index < 0 || index >= len(s.groups) {
		return Group{}, fmt.Errorf("group index %d out of range [0, %d)", index, len(s.groups))
	}
	return s.groups[index], nil
}

// AllWardsInOrder flattens the groups into a de-duplicated ward list in
// first-occurrence order. Used for analytics axes only, never for scheduling.
func (s *Structure) AllWardsInOrder() []model.Ward {
	return AllWardsInOrderOf(s)
}

// AllWardsInOrderOf concatenates the ward axes of several structures,
// keeping the first occurrence of every ward
func AllWardsInOrderOf(structures ...*Structure) []model.Ward {
	seen := make(model.WardSet)
	var out []model.Ward
	for _, s := range structures {
		if s == nil {
			continue
		}
		for _, g := range s.groups {
			for _, w := range g.wards {
				if seen.Add(w) {
					out = append(out, w)
				}
			}
		}
	}
	return out
}

// Circuit derives the zig-zag circuit of the structure: wards are taken
// round by round, one from each group that still has wards left, and each
// becomes a single-ward stop carrying its source group's label and flag.
//
// Example: G1=[A,B,C], G2=[D], G3=[E,F] gives A, D, E, B, F, C.
func (s *Structure) Circuit() *Structure {
	var stops []Group
	for k := 0; ; k++ {
		extracted := false
		for _, g := range s.groups {
			if k < len(g.wards) {
				stops = append(stops, Group{
					label:   g.label,
					wards:   []model.Ward{g.wards[k]},
					special: g.special,
				})
				extracted = true
			}
		}
		if !extracted {
			break
		}
	}
	return &Structure{track: s.track, groups: stops}
}
