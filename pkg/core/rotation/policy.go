package rotation

import (
	"fmt"

	"github.com/jakechorley/ward-rota/pkg/core/model"
)

// Policy names accepted by ParsePolicy
const (
	PolicyFirstWard  = "first-ward"
	PolicyRoundRobin = "round-robin"
	PolicyCircuit    = "circuit"
)

// WardPolicy chooses which ward of a group a nurse occupies in a given round.
// A scheduler uses exactly one policy for every nurse and group it schedules.
type WardPolicy interface {
	// Name returns the policy identifier used in configuration
	Name() string

	// SelectWard returns the ward assigned when the group is visited in round r
	SelectWard(group Group, round int) model.Ward
}

// StructureTransformer is implemented by policies that reshape the structure
// before scheduling (e.g. the circuit policy). The scheduler applies it once
// per call, before any round is computed.
type StructureTransformer interface {
	Transform(s *Structure) *Structure
}

// FirstWardPolicy always assigns the group's first ward. Used when a track
// models the choice of a starting group rather than rotation inside a group.
type FirstWardPolicy struct{}

func (FirstWardPolicy) Name() string { return PolicyFirstWard }

func (FirstWardPolicy) SelectWard(group Group, round int) model.Ward {
	return group.WardAt(0)
}

// RoundRobinPolicy cycles through the group's wards by round number
type RoundRobinPolicy struct{}

func (RoundRobinPolicy) Name() string { return PolicyRoundRobin }

func (RoundRobinPolicy) SelectWard(group Group, round int) model.Ward {
	return group.WardAt(round)
}

// CircuitPolicy schedules over the zig-zag circuit of the structure
// (see Structure.Circuit). Every circuit stop holds exactly one ward, so one
// lap visits every ward of the structure once.
type CircuitPolicy struct{}

func (CircuitPolicy) Name() string { return PolicyCircuit }

func (CircuitPolicy) SelectWard(group Group, round int) model.Ward {
	return group.WardAt(0)
}

func (CircuitPolicy) Transform(s *Structure) *Structure {
	return s.Circuit()
}

// ParsePolicy resolves a policy by name. An empty name selects the default
// first-ward policy.
func ParsePolicy(name string) (WardPolicy, error) {
	switch name {
	case "", PolicyFirstWard:
		return FirstWardPolicy{}, nil
	case PolicyRoundRobin:
		return RoundRobinPolicy{}, nil
	case PolicyCircuit:
		return CircuitPolicy{}, nil
	default:
		return nil, fmt.Errorf("unknown ward policy %q (expected %s, %s or %s)",
			name, PolicyFirstWard, PolicyRoundRobin, PolicyCircuit)
	}
}
