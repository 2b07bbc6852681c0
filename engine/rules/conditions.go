// Package rules evaluates the conditions that gate common events.
package rules

import (
	"github.com/nathoo/regioncore/engine/state"
	"github.com/nathoo/regioncore/types"
)

// EvalCondition evaluates a single condition against the current state.
func EvalCondition(c types.Condition, s *types.State) bool {
	switch c.Type {
	case "switch_on":
		return state.GetSwitch(s, ToInt(c.Params["switch"]))

	case "switch_off":
		return !state.GetSwitch(s, ToInt(c.Params["switch"]))

	case "var_gt":
		return state.GetVariable(s, ToInt(c.Params["variable"])) > ToInt(c.Params["value"])

	case "var_lt":
		return state.GetVariable(s, ToInt(c.Params["variable"])) < ToInt(c.Params["value"])

	case "var_is":
		return state.GetVariable(s, ToInt(c.Params["variable"])) == ToInt(c.Params["value"])

	case "in_region":
		return s.RegionID == ToInt(c.Params["region"])

	case "on_terrain":
		return s.TerrainTagID == ToInt(c.Params["terrain"])

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

// ToInt converts an any value to int, handling float64 from JSON/Lua.
func ToInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case float64:
		return int(n)
	case int64:
		return int(n)
	default:
		return 0
	}
}
