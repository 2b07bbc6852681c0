// Package state manages the mutable game state and lookups into the
// immutable definitions loaded from Lua.
package state

import (
	"sort"

	"github.com/nathoo/regioncore/types"
)

// Defs holds the immutable game definitions loaded from Lua.
type Defs struct {
	Game         types.GameDef
	Regions      []types.RawRuleConfig
	TerrainTags  []types.RawRuleConfig
	Classes      map[int]types.TraitSet
	CommonEvents map[int]types.CommonEventDef
	Maps         map[int]types.MapDef
	Texts        []types.TextDef
	DataFiles    []types.DataFileDef
}

// NewState creates a fresh game state from definitions.
func NewState(defs *Defs) *types.State {
	dir := defs.Game.StartDir
	if dir == types.DirNone {
		dir = types.DirDown
	}
	return &types.State{
		Player: types.Player{
			MapID:     defs.Game.StartMap,
			X:         defs.Game.StartX,
			Y:         defs.Game.StartY,
			Direction: dir,
			HP:        defs.Game.MaxHP,
		},
		Switches:      map[int]bool{},
		Variables:     map[int]int{},
		TextOverrides: map[string]string{},
		Events:        map[int]types.EventState{},
		CommandLog:    []string{},
	}
}

// GetSwitch returns the value of a switch. Unset switches are off.
func GetSwitch(s *types.State, id int) bool {
	return s.Switches[id]
}

// SetSwitch sets a switch value.
func SetSwitch(s *types.State, id int, value bool) {
	if s.Switches == nil {
		s.Switches = map[int]bool{}
	}
	s.Switches[id] = value
}

// GetVariable returns the value of a variable. Unset variables are 0.
func GetVariable(s *types.State, id int) int {
	return s.Variables[id]
}

// OnSwitches returns the ids of all switches that are on, sorted.
func OnSwitches(s *types.State) []int {
	var ids []int
	for id, on := range s.Switches {
		if on {
			ids = append(ids, id)
		}
	}
	sort.Ints(ids)
	return ids
}

// CurrentMap returns the definition of the map the player is on.
func CurrentMap(s *types.State, defs *Defs) (types.MapDef, bool) {
	m, ok := defs.Maps[s.Player.MapID]
	return m, ok
}

// TraitLookup returns a lookup over the class table for rule compilation.
func TraitLookup(defs *Defs) func(id int) (*types.TraitSet, bool) {
	return func(id int) (*types.TraitSet, bool) {
		ts, ok := defs.Classes[id]
		if !ok {
			return nil, false
		}
		return &ts, true
	}
}

// EventPosition returns the effective position of a map event: the runtime
// position if it has moved, else its placement on the map.
func EventPosition(s *types.State, ev types.MapEventDef) (int, int) {
	if es, ok := s.Events[ev.ID]; ok {
		return es.X, es.Y
	}
	return ev.X, ev.Y
}

// EventAt returns the id of the map event standing on (x, y), or 0.
func EventAt(s *types.State, m types.MapDef, x, y int) int {
	for _, ev := range m.Events {
		ex, ey := EventPosition(s, ev)
		if ex == x && ey == y {
			return ev.ID
		}
	}
	return 0
}
