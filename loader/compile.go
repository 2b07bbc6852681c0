// Package loader loads Lua game content into Go structs at compile time.
// The Lua VM is discarded after loading, so no Lua runs during play
// except sandboxed text scripts.
package loader

import (
	"fmt"
	"sort"
	"strings"

	"github.com/nathoo/regioncore/engine/state"
	"github.com/nathoo/regioncore/types"
	lua "github.com/yuin/gopher-lua"
)

// rawRecord holds an id-keyed constructor table before compilation.
type rawRecord struct {
	id    lua.LValue
	table *lua.LTable
}

// rawText holds a Text "id" "body" declaration.
type rawText struct {
	id   string
	text string
}

// rawDataFile holds a DataFile declaration.
type rawDataFile struct {
	property string
	file     string
}

// getString returns a string field from a Lua table, or "" if missing.
func getString(tbl *lua.LTable, key string) string {
	v := tbl.RawGetString(key)
	if s, ok := v.(lua.LString); ok {
		return string(s)
	}
	return ""
}

// getBool returns a bool field from a Lua table, or the default if missing.
func getBool(tbl *lua.LTable, key string, def bool) bool {
	v := tbl.RawGetString(key)
	if b, ok := v.(lua.LBool); ok {
		return bool(b)
	}
	return def
}

// getNumber returns a numeric field from a Lua table, or 0 if missing.
func getNumber(tbl *lua.LTable, key string) float64 {
	v := tbl.RawGetString(key)
	if n, ok := v.(lua.LNumber); ok {
		return float64(n)
	}
	return 0
}

// getInt returns an int field from a Lua table, or 0 if missing.
func getInt(tbl *lua.LTable, key string) int {
	return int(getNumber(tbl, key))
}

// getTable returns a table field from a Lua table, or nil if missing.
func getTable(tbl *lua.LTable, key string) *lua.LTable {
	v := tbl.RawGetString(key)
	if t, ok := v.(*lua.LTable); ok {
		return t
	}
	return nil
}

// toGoValue converts a Lua value to a Go value recursively.
func toGoValue(v lua.LValue) any {
	switch val := v.(type) {
	case lua.LBool:
		return bool(val)
	case lua.LNumber:
		f := float64(val)
		if f == float64(int(f)) {
			return int(f)
		}
		return f
	case *lua.LNilType:
		return nil
	case lua.LString:
		return string(val)
	case *lua.LTable:
		// Check if it's an array (sequential integer keys starting at 1).
		maxN := val.MaxN()
		if maxN > 0 {
			arr := make([]any, 0, maxN)
			for i := 1; i <= maxN; i++ {
				arr = append(arr, toGoValue(val.RawGetInt(i)))
			}
			return arr
		}
		m := map[string]any{}
		val.ForEach(func(k, v lua.LValue) {
			if ks, ok := k.(lua.LString); ok {
				m[string(ks)] = toGoValue(v)
			}
		})
		return m
	default:
		return nil
	}
}

// arrayTables returns the table elements of an array-like table, in order.
func arrayTables(tbl *lua.LTable) []*lua.LTable {
	if tbl == nil {
		return nil
	}
	var out []*lua.LTable
	for i := 1; i <= tbl.MaxN(); i++ {
		if t, ok := tbl.RawGetInt(i).(*lua.LTable); ok {
			out = append(out, t)
		}
	}
	return out
}

// stringList returns the string elements of an array-like table. A bare
// string is accepted as a one-element list.
func stringList(tbl *lua.LTable, key string) []string {
	switch v := tbl.RawGetString(key).(type) {
	case lua.LString:
		return []string{string(v)}
	case *lua.LTable:
		var out []string
		for i := 1; i <= v.MaxN(); i++ {
			if s, ok := v.RawGetInt(i).(lua.LString); ok {
				out = append(out, string(s))
			}
		}
		return out
	}
	return nil
}

// intGrid converts a table of rows of numbers into [y][x] ints.
func intGrid(tbl *lua.LTable) [][]int {
	if tbl == nil {
		return nil
	}
	rows := make([][]int, 0, tbl.MaxN())
	for i := 1; i <= tbl.MaxN(); i++ {
		rowTbl, _ := tbl.RawGetInt(i).(*lua.LTable)
		var row []int
		if rowTbl != nil {
			row = make([]int, 0, rowTbl.MaxN())
			for j := 1; j <= rowTbl.MaxN(); j++ {
				n, _ := rowTbl.RawGetInt(j).(lua.LNumber)
				row = append(row, int(n))
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// recordID converts a constructor id to an int. Non-numeric ids are an error.
func recordID(kind string, v lua.LValue) (int, error) {
	n, ok := v.(lua.LNumber)
	if !ok || float64(n) != float64(int(n)) {
		return 0, fmt.Errorf("%s id must be an integer, got %s", kind, v.String())
	}
	return int(n), nil
}

func compile(coll *collector) (*state.Defs, error) {
	defs := &state.Defs{
		Classes:      map[int]types.TraitSet{},
		CommonEvents: map[int]types.CommonEventDef{},
		Maps:         map[int]types.MapDef{},
	}

	if coll.game == nil {
		return nil, fmt.Errorf("no Game{} definition found")
	}
	defs.Game = compileGame(coll.game)

	for _, raw := range coll.regions {
		rc, err := compileRuleConfig("region", raw)
		if err != nil {
			return nil, err
		}
		defs.Regions = append(defs.Regions, rc)
	}
	for _, raw := range coll.terrainTags {
		rc, err := compileRuleConfig("terrain tag", raw)
		if err != nil {
			return nil, err
		}
		defs.TerrainTags = append(defs.TerrainTags, rc)
	}

	for _, raw := range coll.classes {
		id, err := recordID("class", raw.id)
		if err != nil {
			return nil, err
		}
		if _, dup := defs.Classes[id]; dup {
			return nil, fmt.Errorf("duplicate class %d", id)
		}
		defs.Classes[id] = compileClass(id, raw.table)
	}

	for _, raw := range coll.commonEvents {
		id, err := recordID("common event", raw.id)
		if err != nil {
			return nil, err
		}
		if _, dup := defs.CommonEvents[id]; dup {
			return nil, fmt.Errorf("duplicate common event %d", id)
		}
		defs.CommonEvents[id] = types.CommonEventDef{
			ID:         id,
			Name:       getString(raw.table, "name"),
			Conditions: compileConditions(getTable(raw.table, "conditions")),
			Effects:    compileEffects(getTable(raw.table, "effects")),
		}
	}

	for _, raw := range coll.maps {
		id, err := recordID("map", raw.id)
		if err != nil {
			return nil, err
		}
		if _, dup := defs.Maps[id]; dup {
			return nil, fmt.Errorf("duplicate map %d", id)
		}
		defs.Maps[id] = compileMap(id, raw.table)
	}

	seenText := map[string]bool{}
	for _, raw := range coll.texts {
		if seenText[raw.id] {
			return nil, fmt.Errorf("duplicate text %q", raw.id)
		}
		seenText[raw.id] = true
		defs.Texts = append(defs.Texts, types.TextDef{ID: raw.id, Text: raw.text})
	}

	for _, raw := range coll.dataFiles {
		defs.DataFiles = append(defs.DataFiles, types.DataFileDef{Property: raw.property, File: raw.file})
	}

	return defs, nil
}

func compileGame(tbl *lua.LTable) types.GameDef {
	return types.GameDef{
		Title:    getString(tbl, "title"),
		Author:   getString(tbl, "author"),
		Version:  getString(tbl, "version"),
		StartMap: getInt(tbl, "start_map"),
		StartX:   getInt(tbl, "start_x"),
		StartY:   getInt(tbl, "start_y"),
		StartDir: compileDirection(tbl.RawGetString("start_dir")),
		MaxHP:    getInt(tbl, "hp"),
		Intro:    getString(tbl, "intro"),
	}
}

// compileDirection accepts a numpad code, a direction name, or one of
// the collision constants (UP, DOWN, ...).
func compileDirection(v lua.LValue) types.Direction {
	switch val := v.(type) {
	case lua.LNumber:
		switch d := types.Direction(int(val)); d {
		case types.DirDown, types.DirLeft, types.DirRight, types.DirUp:
			return d
		}
	case lua.LString:
		return types.ParseDirection(strings.TrimPrefix(string(val), "collision_"))
	}
	return types.DirNone
}

func compileRuleConfig(kind string, raw rawRecord) (types.RawRuleConfig, error) {
	id, err := recordID(kind, raw.id)
	if err != nil {
		return types.RawRuleConfig{}, err
	}
	tbl := raw.table
	rc := types.RawRuleConfig{
		ID:                 id,
		Name:               getString(tbl, "name"),
		CollisionForPlayer: stringList(tbl, "collision_player"),
		CollisionForEvent:  stringList(tbl, "collision_event"),
		Through:            getBool(tbl, "through", false),
		TileAttribute:      stringList(tbl, "attributes"),
		SwitchID:           getInt(tbl, "switch"),
		TraitsID:           getInt(tbl, "traits"),
		Note:               getString(tbl, "note"),
	}
	for _, ev := range arrayTables(getTable(tbl, "common_events")) {
		rc.CommonEvent = append(rc.CommonEvent, types.CommonEventRef{
			ID:      getInt(ev, "id"),
			Trigger: types.Trigger(getInt(ev, "trigger")),
		})
	}
	return rc, nil
}

func compileClass(id int, tbl *lua.LTable) types.TraitSet {
	ts := types.TraitSet{ID: id, Name: getString(tbl, "name")}
	for _, t := range arrayTables(getTable(tbl, "traits")) {
		ts.Traits = append(ts.Traits, types.Trait{
			Code:   getString(t, "code"),
			DataID: getInt(t, "data_id"),
			Value:  getNumber(t, "value"),
		})
	}
	return ts
}

// compileMap derives width and height from the tile rows unless given.
func compileMap(id int, tbl *lua.LTable) types.MapDef {
	m := types.MapDef{
		ID:      id,
		Name:    getString(tbl, "name"),
		Width:   getInt(tbl, "width"),
		Height:  getInt(tbl, "height"),
		Tiles:   stringList(tbl, "tiles"),
		Regions: intGrid(getTable(tbl, "regions")),
		Terrain: intGrid(getTable(tbl, "terrain")),
	}
	if m.Height == 0 {
		m.Height = len(m.Tiles)
	}
	if m.Width == 0 {
		for _, row := range m.Tiles {
			m.Width = max(m.Width, len(row))
		}
	}
	for _, ev := range arrayTables(getTable(tbl, "events")) {
		m.Events = append(m.Events, types.MapEventDef{
			ID:    getInt(ev, "id"),
			Name:  getString(ev, "name"),
			X:     getInt(ev, "x"),
			Y:     getInt(ev, "y"),
			Route: getString(ev, "route"),
		})
	}
	return m
}

func compileConditions(tbl *lua.LTable) []types.Condition {
	var conditions []types.Condition
	for _, condTbl := range arrayTables(tbl) {
		conditions = append(conditions, compileCondition(condTbl))
	}
	return conditions
}

func compileCondition(tbl *lua.LTable) types.Condition {
	condType := getString(tbl, "type")

	if condType == "not" {
		if innerTbl := getTable(tbl, "inner"); innerTbl != nil {
			inner := compileCondition(innerTbl)
			return types.Condition{
				Type:   "not",
				Negate: true,
				Inner:  &inner,
			}
		}
	}

	return types.Condition{
		Type:   condType,
		Params: compileParams(tbl),
	}
}

func compileEffects(tbl *lua.LTable) []types.Effect {
	var effects []types.Effect
	for _, effTbl := range arrayTables(tbl) {
		effects = append(effects, types.Effect{
			Type:   getString(effTbl, "type"),
			Params: compileParams(effTbl),
		})
	}
	return effects
}

// compileParams collects every string-keyed field except "type".
func compileParams(tbl *lua.LTable) map[string]any {
	params := map[string]any{}
	tbl.ForEach(func(k, v lua.LValue) {
		if ks, ok := k.(lua.LString); ok && string(ks) != "type" {
			params[string(ks)] = toGoValue(v)
		}
	})
	return params
}

// sortedLuaFiles returns .lua files in a directory, with game.lua first
// and the rest sorted alphabetically.
func sortedLuaFiles(files []string) []string {
	var gameFile string
	var others []string
	for _, f := range files {
		if f == "game.lua" {
			gameFile = f
		} else {
			others = append(others, f)
		}
	}
	sort.Strings(others)
	if gameFile != "" {
		return append([]string{gameFile}, others...)
	}
	return others
}
