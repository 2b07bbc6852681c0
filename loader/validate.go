package loader

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/nathoo/regioncore/ctxlog"
	"github.com/nathoo/regioncore/engine/grid"
	"github.com/nathoo/regioncore/engine/region"
	"github.com/nathoo/regioncore/engine/state"
	"github.com/nathoo/regioncore/types"
)

// ValidationError collects all validation errors and warnings.
type ValidationError struct {
	Errors   []string
	Warnings []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed with %d error(s):\n  %s",
		len(e.Errors), strings.Join(e.Errors, "\n  "))
}

func (e *ValidationError) errorf(format string, args ...any) {
	e.Errors = append(e.Errors, fmt.Sprintf(format, args...))
}

func (e *ValidationError) warnf(format string, args ...any) {
	e.Warnings = append(e.Warnings, fmt.Sprintf(format, args...))
}

// Known effect types.
var validEffectTypes = map[string]bool{
	"say":         true,
	"set_switch":  true,
	"set_var":     true,
	"add_var":     true,
	"change_text": true,
	"transfer":    true,
	"heal":        true,
	"stop":        true,
}

// Known condition types.
var validConditionTypes = map[string]bool{
	"switch_on":  true,
	"switch_off": true,
	"var_gt":     true,
	"var_lt":     true,
	"var_is":     true,
	"in_region":  true,
	"on_terrain": true,
	"not":        true,
}

// validate checks defs, logs warnings, and returns a *ValidationError if
// anything is fatal.
func validate(ctx context.Context, defs *state.Defs) error {
	ve := check(defs)

	logger := ctxlog.FromContext(ctx)
	for _, w := range ve.Warnings {
		logger.Warn("content warning", "detail", w)
	}

	if len(ve.Errors) > 0 {
		return ve
	}
	return nil
}

// check runs every validation and returns the collected problems.
func check(defs *state.Defs) *ValidationError {
	ve := &ValidationError{}

	if defs.Game.Title == "" {
		ve.errorf("Game.title is required")
	}

	checkStart(defs, ve)
	for _, id := range sortedKeys(defs.Maps) {
		checkMap(defs.Maps[id], defs, ve)
	}
	checkRules("region", defs.Regions, defs, ve)
	checkRules("terrain tag", defs.TerrainTags, defs, ve)

	for _, id := range sortedKeys(defs.CommonEvents) {
		ce := defs.CommonEvents[id]
		where := fmt.Sprintf("common event %d", id)
		checkConditions(where, ce.Conditions, ve)
		checkEffects(where, ce.Effects, defs, ve)
	}

	seen := map[string]bool{}
	for _, df := range defs.DataFiles {
		switch {
		case df.Property == "":
			ve.errorf("data file %q has no property name", df.File)
		case df.File == "":
			ve.errorf("data file for property %q has no file name", df.Property)
		case seen[df.Property]:
			ve.errorf("data file property %q is declared twice", df.Property)
		}
		seen[df.Property] = true
	}

	return ve
}

func checkStart(defs *state.Defs, ve *ValidationError) {
	g := defs.Game
	m, ok := defs.Maps[g.StartMap]
	if !ok {
		ve.errorf("start map %d not found in defined maps", g.StartMap)
		return
	}
	if g.StartX < 0 || g.StartY < 0 || g.StartX >= m.Width || g.StartY >= m.Height {
		ve.errorf("start position (%d,%d) is outside map %d (%dx%d)", g.StartX, g.StartY, m.ID, m.Width, m.Height)
		return
	}
	if !grid.New(m).IsPassable(g.StartX, g.StartY, types.DirDown) {
		ve.warnf("start position (%d,%d) on map %d is a wall tile", g.StartX, g.StartY, m.ID)
	}
	if g.MaxHP < 0 {
		ve.errorf("Game.hp must not be negative, got %d", g.MaxHP)
	}
}

func checkMap(m types.MapDef, defs *state.Defs, ve *ValidationError) {
	if m.Width <= 0 || m.Height <= 0 {
		ve.errorf("map %d has no size (%dx%d)", m.ID, m.Width, m.Height)
		return
	}
	if len(m.Tiles) > 0 {
		if len(m.Tiles) != m.Height {
			ve.errorf("map %d has %d tile rows, want %d", m.ID, len(m.Tiles), m.Height)
		}
		for y, row := range m.Tiles {
			if len(row) != m.Width {
				ve.errorf("map %d tile row %d has width %d, want %d", m.ID, y, len(row), m.Width)
			}
		}
	}

	regionIDs := knownIDs(defs.Regions)
	terrainIDs := knownIDs(defs.TerrainTags)
	checkLayer(m, "regions", m.Regions, regionIDs, ve)
	checkLayer(m, "terrain", m.Terrain, terrainIDs, ve)

	eventIDs := map[int]bool{}
	for _, ev := range m.Events {
		if ev.ID <= 0 {
			ve.errorf("map %d has an event with id %d", m.ID, ev.ID)
		}
		if eventIDs[ev.ID] {
			ve.errorf("map %d event id %d is used twice", m.ID, ev.ID)
		}
		eventIDs[ev.ID] = true
		if ev.X < 0 || ev.Y < 0 || ev.X >= m.Width || ev.Y >= m.Height {
			ve.errorf("map %d event %d at (%d,%d) is outside the map", m.ID, ev.ID, ev.X, ev.Y)
		}
		if bad := strings.Trim(ev.Route, "UDLRudlr?"); bad != "" {
			ve.errorf("map %d event %d route %q has unknown steps", m.ID, ev.ID, ev.Route)
		}
	}
}

func checkLayer(m types.MapDef, name string, layer [][]int, known map[int]bool, ve *ValidationError) {
	if len(layer) > m.Height {
		ve.errorf("map %d %s layer has %d rows, map height is %d", m.ID, name, len(layer), m.Height)
	}
	unknown := map[int]bool{}
	for y, row := range layer {
		if len(row) > m.Width {
			ve.errorf("map %d %s row %d has width %d, map width is %d", m.ID, name, y, len(row), m.Width)
		}
		for _, id := range row {
			switch {
			case id < 0:
				ve.errorf("map %d %s layer has negative id %d", m.ID, name, id)
			case id > 0 && !known[id]:
				unknown[id] = true
			}
		}
	}
	for _, id := range sortedKeys(unknown) {
		ve.warnf("map %d %s layer paints id %d which has no rules", m.ID, name, id)
	}
}

func checkRules(kind string, configs []types.RawRuleConfig, defs *state.Defs, ve *ValidationError) {
	seen := map[int]bool{}
	for _, rc := range configs {
		if rc.ID <= 0 {
			ve.warnf("%s with id %d is ignored", kind, rc.ID)
			continue
		}
		if seen[rc.ID] {
			ve.warnf("%s %d is defined more than once; the last definition wins", kind, rc.ID)
		}
		seen[rc.ID] = true

		for _, s := range append(append([]string{}, rc.CollisionForPlayer...), rc.CollisionForEvent...) {
			if !region.IsKnownCollision(s) {
				ve.warnf("%s %d: unknown collision %q", kind, rc.ID, s)
			}
		}
		for _, s := range rc.TileAttribute {
			if !region.IsKnownAttribute(s) {
				ve.warnf("%s %d: unknown tile attribute %q", kind, rc.ID, s)
			}
		}
		for _, ev := range rc.CommonEvent {
			if ev.Trigger < types.TriggerOnEnter || ev.Trigger > types.TriggerOnLeave {
				ve.warnf("%s %d: common event %d has unknown trigger %d", kind, rc.ID, ev.ID, ev.Trigger)
			}
			if _, ok := defs.CommonEvents[ev.ID]; !ok && ev.ID > 0 {
				ve.errorf("%s %d references undefined common event %d", kind, rc.ID, ev.ID)
			}
		}
		if rc.SwitchID < 0 {
			ve.errorf("%s %d has negative switch %d", kind, rc.ID, rc.SwitchID)
		}
		if rc.TraitsID > 0 {
			if _, ok := defs.Classes[rc.TraitsID]; !ok {
				ve.warnf("%s %d references undefined class %d; it grants no traits", kind, rc.ID, rc.TraitsID)
			}
		}
	}
}

func checkConditions(where string, conditions []types.Condition, ve *ValidationError) {
	for _, c := range conditions {
		if !validConditionTypes[c.Type] {
			ve.errorf("%s: unknown condition type %q", where, c.Type)
			continue
		}
		if c.Type == "not" && c.Inner != nil {
			checkConditions(where, []types.Condition{*c.Inner}, ve)
		}
	}
}

func checkEffects(where string, effects []types.Effect, defs *state.Defs, ve *ValidationError) {
	for _, eff := range effects {
		if !validEffectTypes[eff.Type] {
			ve.errorf("%s: unknown effect type %q", where, eff.Type)
			continue
		}
		if eff.Type != "transfer" {
			continue
		}
		mapID, _ := eff.Params["map"].(int)
		m, ok := defs.Maps[mapID]
		if !ok {
			ve.errorf("%s: transfer to undefined map %v", where, eff.Params["map"])
			continue
		}
		x, _ := eff.Params["x"].(int)
		y, _ := eff.Params["y"].(int)
		if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
			ve.errorf("%s: transfer target (%d,%d) is outside map %d", where, x, y, mapID)
		}
	}
}

func knownIDs(configs []types.RawRuleConfig) map[int]bool {
	ids := make(map[int]bool, len(configs))
	for _, rc := range configs {
		if rc.ID > 0 {
			ids[rc.ID] = true
		}
	}
	return ids
}

func sortedKeys[V any](m map[int]V) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
