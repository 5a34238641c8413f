// Package rules evaluates the requirement conditions attached to scene
// choices and event handlers.
package rules

import (
	"github.com/nathoo/shadowcore/engine/state"
	"github.com/nathoo/shadowcore/types"
)

// EvalCondition evaluates a single condition against the current state.
func EvalCondition(c types.Condition, s *types.State) bool {
	switch c.Type {
	case "min_level":
		return s.Player.Level >= c.Value

	case "min_light":
		return s.Player.LightPoints >= c.Value

	case "min_shadow":
		return s.Player.ShadowPoints >= c.Value

	case "min_energy":
		return s.Player.Energy >= c.Value

	case "min_trust":
		return s.Trust >= c.Value

	case "flag_set":
		return state.GetFlag(s, c.Flag)

	case "not":
		if c.Inner == nil {
			return true
		}
		return !EvalCondition(*c.Inner, s)

	default:
		return false
	}
}

// EvalAllConditions returns true if all conditions pass (AND logic).
// An empty condition list is vacuously true.
func EvalAllConditions(conditions []types.Condition, s *types.State) bool {
	for _, c := range conditions {
		if !EvalCondition(c, s) {
			return false
		}
	}
	return true
}

// AvailableChoices returns the indexes of the scene's choices whose
// requirements hold.
func AvailableChoices(sc types.SceneDef, s *types.State) []int {
	var out []int
	for i, ch := range sc.Choices {
		if EvalAllConditions(ch.Requires, s) {
			out = append(out, i)
		}
	}
	return out
}
