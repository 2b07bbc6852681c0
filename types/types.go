// Package types defines the shared data structures for the regioncore engine.
// This package contains only type definitions and their trivial helpers.
package types

import "strings"

// Direction uses the host's numeric-keypad encoding.
type Direction int

const (
	DirNone  Direction = 0
	DirDown  Direction = 2
	DirLeft  Direction = 4
	DirRight Direction = 6
	DirUp    Direction = 8
)

// Reverse returns the opposite direction.
func (d Direction) Reverse() Direction {
	if d == DirNone {
		return DirNone
	}
	return 10 - d
}

// Delta returns the grid offset of one step in direction d.
func (d Direction) Delta() (dx, dy int) {
	switch d {
	case DirDown:
		return 0, 1
	case DirLeft:
		return -1, 0
	case DirRight:
		return 1, 0
	case DirUp:
		return 0, -1
	}
	return 0, 0
}

func (d Direction) String() string {
	switch d {
	case DirDown:
		return "down"
	case DirLeft:
		return "left"
	case DirRight:
		return "right"
	case DirUp:
		return "up"
	}
	return "none"
}

// ParseDirection accepts compass names, screen names and their one-letter
// forms. "l" is reserved for look.
func ParseDirection(s string) Direction {
	switch strings.ToLower(s) {
	case "n", "north", "u", "up":
		return DirUp
	case "s", "south", "d", "down":
		return DirDown
	case "e", "east", "r", "right":
		return DirRight
	case "w", "west", "left":
		return DirLeft
	}
	return DirNone
}

// CollisionFlag restricts passability of a tile.
type CollisionFlag string

const (
	CollisionAll   CollisionFlag = "collision_all"
	CollisionUp    CollisionFlag = "collision_up"
	CollisionRight CollisionFlag = "collision_right"
	CollisionDown  CollisionFlag = "collision_down"
	CollisionLeft  CollisionFlag = "collision_left"
)

// TileAttribute is a special tile behavior.
type TileAttribute string

const (
	AttrLadder      TileAttribute = "ladder"
	AttrBush        TileAttribute = "bush"
	AttrCounter     TileAttribute = "counter"
	AttrDamageFloor TileAttribute = "damage_floor"
)

// Trigger selects when a record's common event fires.
type Trigger int

const (
	TriggerOnEnter     Trigger = 0
	TriggerWhileInside Trigger = 1
	TriggerOnLeave     Trigger = 2
)

// CommonEventRef links a rule record to a common event.
type CommonEventRef struct {
	ID      int
	Trigger Trigger
}

// Trait is a single gameplay modifier.
type Trait struct {
	Code   string
	DataID int
	Value  float64
}

// TraitSet is a named group of traits, keyed by the class table id.
type TraitSet struct {
	ID     int
	Name   string
	Traits []Trait
}

// RawRuleConfig is one region or terrain tag entry as authored.
// Fields are loose: unknown strings are dropped during compilation.
type RawRuleConfig struct {
	ID                 int
	Name               string
	CollisionForPlayer []string
	CollisionForEvent  []string
	Through            bool
	TileAttribute      []string
	CommonEvent        []CommonEventRef
	SwitchID           int
	TraitsID           int
	Note               string
}

// RuleRecord is a compiled region or terrain tag rule.
type RuleRecord struct {
	ID                 int
	Name               string
	CollisionForPlayer []CollisionFlag
	CollisionForEvent  []CollisionFlag
	Through            bool
	TileAttribute      []TileAttribute
	CommonEvent        []CommonEventRef
	SwitchID           int
	TraitsID           int
	Traits             *TraitSet // nil when TraitsID is unset or unresolved
	Note               string
	Meta               map[string]any
}

// Subject identifies who is asking for passability.
type Subject int

const (
	SubjectPlayer Subject = iota
	SubjectEvent
)

// PlayerRegionState is the player's region tracking between movement stops.
type PlayerRegionState struct {
	Region         *RuleRecord
	PrevRegion     *RuleRecord
	TerrainTag     *RuleRecord
	PrevTerrainTag *RuleRecord
}

// Effect is a single atomic state mutation instruction.
type Effect struct {
	Type   string
	Params map[string]any
}

// Event is emitted after effects are applied.
type Event struct {
	Type string
	Data map[string]any
}

// Result is the output of a single game step.
type Result struct {
	Effects []Effect
	Events  []Event
	Output  []string
}

// Condition is a predicate that must be true for a common event to run.
type Condition struct {
	Type   string         // "switch_on", "switch_off", "var_gt", "var_lt", "var_is", "not"
	Params map[string]any // condition-specific parameters
	Negate bool           // true if wrapped in Not()
	Inner  *Condition     // for Not(): the negated inner condition
}

// CommonEventDef is a reusable effect list invoked by rule records.
type CommonEventDef struct {
	ID         int
	Name       string
	Conditions []Condition
	Effects    []Effect
}

// MapEventDef is a character placed on a map with an optional move route.
type MapEventDef struct {
	ID    int
	Name  string
	X     int
	Y     int
	Route string // "U", "D", "L", "R" steps and "?" for a random step; repeats
}

// MapDef is a tile map. Rows are indexed [y][x].
type MapDef struct {
	ID      int
	Name    string
	Width   int
	Height  int
	Tiles   []string
	Regions [][]int
	Terrain [][]int
	Events  []MapEventDef
}

// DataFileDef names an auxiliary JSON file and the property it is stored under.
type DataFileDef struct {
	Property string
	File     string
}

// TextDef is a registered text macro.
type TextDef struct {
	ID   string
	Text string
}

// GameDef holds game metadata from Lua.
type GameDef struct {
	Title    string
	Author   string
	Version  string
	StartMap int
	StartX   int
	StartY   int
	StartDir Direction
	MaxHP    int
	Intro    string
}

// Player holds the player's runtime state.
type Player struct {
	MapID     int
	X         int
	Y         int
	Direction Direction
	HP        int
}

// EventState holds the runtime position of a map event.
type EventState struct {
	X         int
	Y         int
	RouteStep int
}

// State is the complete mutable game state.
type State struct {
	Player        Player
	Switches      map[int]bool
	Variables     map[int]int
	TextOverrides map[string]string
	Events        map[int]EventState // by map event id on the current map
	RegionID      int                // last region id seen at a movement stop
	TerrainTagID  int                // last terrain tag id seen at a movement stop
	TurnCount     int
	RNGSeed       int64
	RNGPosition   int64
	CommandLog    []string
}
