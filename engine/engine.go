// Package engine provides the Step() orchestrator that wires together the
// tile grid, region rules, region tracking, common events and effects into
// a single turn.
package engine

import (
	"fmt"
	"log/slog"

	"github.com/nathoo/regioncore/engine/effects"
	"github.com/nathoo/regioncore/engine/events"
	"github.com/nathoo/regioncore/engine/grid"
	"github.com/nathoo/regioncore/engine/meta"
	"github.com/nathoo/regioncore/engine/parser"
	"github.com/nathoo/regioncore/engine/region"
	"github.com/nathoo/regioncore/engine/state"
	"github.com/nathoo/regioncore/engine/textbase"
	"github.com/nathoo/regioncore/types"
)

// DefaultDamageFloorAmount is the HP lost when stopping on a damage floor.
const DefaultDamageFloorAmount = 10

// Engine holds the game definitions and mutable state.
type Engine struct {
	Defs  *state.Defs
	State *types.State
	RNG   *RNG
	Text  *textbase.Base
	Data  map[string]any // auxiliary data files by property

	tables   *region.Tables
	grid     *grid.Map
	resolver *region.Resolver
	tracker  *region.Tracker
	queue    events.Queue

	log          *slog.Logger
	allowScripts bool
	damageFloor  int
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithScripts enables \JS evaluation in displayed text.
func WithScripts(allow bool) Option {
	return func(e *Engine) { e.allowScripts = allow }
}

// WithDamageFloor sets the HP lost on a damage floor stop.
func WithDamageFloor(amount int) Option {
	return func(e *Engine) { e.damageFloor = amount }
}

// WithData attaches loaded auxiliary data files.
func WithData(data map[string]any) Option {
	return func(e *Engine) { e.Data = data }
}

// WithSeed seeds the RNG that drives random event movement.
func WithSeed(seed int64) Option {
	return func(e *Engine) {
		e.State.RNGSeed = seed
		e.RNG = NewRNG(seed)
	}
}

// New creates a new engine from definitions and places the player at the
// start position. Region tables are compiled once for all maps.
func New(defs *state.Defs, opts ...Option) *Engine {
	s := state.NewState(defs)
	e := &Engine{
		Defs:        defs,
		State:       s,
		RNG:         NewRNG(s.RNGSeed),
		Data:        map[string]any{},
		log:         slog.New(slog.DiscardHandler),
		damageFloor: DefaultDamageFloorAmount,
	}
	for _, opt := range opts {
		opt(e)
	}

	e.tables = region.Build(defs.Regions, defs.TerrainTags, state.TraitLookup(defs), meta.Extract)
	e.tracker = region.NewTracker(switchSink{e}, &e.queue, e.log)
	e.bindText()
	e.enterMap(s.Player.MapID)
	e.log.Debug("engine ready",
		"regions", e.tables.Regions.Len(),
		"terrain_tags", e.tables.TerrainTags.Len(),
		"maps", len(defs.Maps))
	return e
}

// bindText rebuilds the text base over the current state's overrides.
func (e *Engine) bindText() {
	e.Text = textbase.New(e.Defs.Texts,
		textbase.WithHost(hostView{e}),
		textbase.WithOverrides(e.State.TextOverrides),
		textbase.WithScripts(e.allowScripts),
		textbase.WithLogger(e.log))
	e.State.TextOverrides = e.Text.Overrides()
}

// enterMap points the grid and resolver at mapID. An unknown map leaves an
// empty grid so every query answers "nothing here".
func (e *Engine) enterMap(mapID int) {
	def, ok := e.Defs.Maps[mapID]
	if !ok {
		def = types.MapDef{ID: mapID}
	}
	e.grid = grid.New(def)
	e.resolver = region.NewResolver(e.tables, e.grid)
}

// Resolver returns the rule resolver for the active map.
func (e *Engine) Resolver() *region.Resolver {
	return e.resolver
}

// Grid returns the active map grid.
func (e *Engine) Grid() *grid.Map {
	return e.grid
}

// Tracker returns the player's region tracker.
func (e *Engine) Tracker() *region.Tracker {
	return e.tracker
}

// ScriptsEnabled reports whether \JS codes are evaluated.
func (e *Engine) ScriptsEnabled() bool {
	return e.allowScripts
}

// Restore re-creates derived runtime state after the State has been
// replaced, e.g. by loading a save. Region tracking is seeded from the
// saved ids so that standing still does not count as entering.
func (e *Engine) Restore() {
	e.RNG = RestoreRNG(e.State.RNGSeed, e.State.RNGPosition)
	e.queue.Clear()
	e.bindText()
	e.enterMap(e.State.Player.MapID)
	e.tracker.Restore(e.tables, e.State.RegionID, e.State.TerrainTagID)
}

// CanMove reports whether subject may step from (x, y) in direction d.
// The tile being left must be passable in d and the target tile in the
// reverse direction.
func (e *Engine) CanMove(subject types.Subject, x, y int, d types.Direction) bool {
	dx, dy := d.Delta()
	if dx == 0 && dy == 0 {
		return false
	}
	x2, y2 := x+dx, y+dy
	if !e.grid.InBounds(x2, y2) {
		return false
	}
	return e.resolver.IsPassable(x, y, d, subject) &&
		e.resolver.IsPassable(x2, y2, d.Reverse(), subject)
}

// HasTileAttribute reports whether the tile carries attr, either from its
// own glyph or from region and terrain tag rules.
func (e *Engine) HasTileAttribute(x, y int, attr types.TileAttribute) bool {
	return e.grid.HasTileFlag(x, y, attr) || e.resolver.HasAttribute(x, y, attr)
}

// Traits returns the trait sets active at the player's tile.
func (e *Engine) Traits() []types.TraitSet {
	p := e.State.Player
	return e.resolver.CollectActiveTraits(p.MapID, p.X, p.Y)
}

// GameOver reports whether the player has collapsed.
func (e *Engine) GameOver() bool {
	return e.Defs.Game.MaxHP > 0 && e.State.Player.HP <= 0
}

// Step processes one player command and returns the result.
func (e *Engine) Step(input string) types.Result {
	var result types.Result

	// 0. Game over blocks all gameplay commands.
	if e.GameOver() {
		result.Output = append(result.Output, "You have collapsed. Use /load to restore a save or /quit to exit.")
		return result
	}

	// 1. Log the command.
	e.State.CommandLog = append(e.State.CommandLog, input)

	// 2. Parse.
	cmd := parser.Parse(input)
	if cmd.Verb == "" {
		result.Output = append(result.Output, "What do you want to do?")
		return result
	}

	// 3. Dispatch.
	switch cmd.Verb {
	case "go":
		if cmd.Dir == types.DirNone {
			result.Output = append(result.Output, "Go which way?")
			return result
		}
		e.movePlayer(cmd.Dir, &result)
	case "look":
		result.Output = append(result.Output, e.Describe()...)
	case "wait":
		result.Output = append(result.Output, "Time passes.")
		e.stop(&result)
	case "traits":
		result.Output = append(result.Output, e.DescribeTraits()...)
	case "read":
		result.Output = append(result.Output, e.read(cmd.Arg)...)
	case "expand":
		result.Output = append(result.Output, e.expand(cmd.Arg)...)
	case "face":
		if cmd.Dir == types.DirNone {
			result.Output = append(result.Output, "Turn which way?")
			break
		}
		e.State.Player.Direction = cmd.Dir
		result.Output = append(result.Output, "You turn "+cmd.Dir.String()+".")
	default:
		result.Output = append(result.Output, fmt.Sprintf("I don't know how to %q.", cmd.Verb))
		return result
	}

	// 4. Map events take their turn.
	e.advanceEvents()

	// 5. Track RNG position for save/load.
	e.State.RNGPosition = e.RNG.Position()

	// 6. Increment turn count.
	e.State.TurnCount++

	return result
}

func (e *Engine) movePlayer(d types.Direction, result *types.Result) {
	p := &e.State.Player
	p.Direction = d
	if !e.CanMove(types.SubjectPlayer, p.X, p.Y, d) {
		result.Output = append(result.Output, "Something blocks your way.")
		return
	}
	dx, dy := d.Delta()
	m, _ := state.CurrentMap(e.State, e.Defs)
	if id := state.EventAt(e.State, m, p.X+dx, p.Y+dy); id != 0 {
		result.Output = append(result.Output, e.eventName(m, id)+" is in the way.")
		return
	}
	p.X += dx
	p.Y += dy
	result.Events = append(result.Events, types.Event{
		Type: "player_moved",
		Data: map[string]any{"x": p.X, "y": p.Y, "direction": int(d)},
	})
	e.stop(result)
}

// stop runs everything that happens when the player comes to rest on a tile.
func (e *Engine) stop(result *types.Result) {
	p := e.State.Player
	e.tracker.OnPlayerStoppedAt(e.resolver, p.X, p.Y)
	e.State.RegionID = recordID(e.tracker.State().Region)
	e.State.TerrainTagID = recordID(e.tracker.State().TerrainTag)

	if e.damageFloor > 0 && e.HasTileAttribute(p.X, p.Y, types.AttrDamageFloor) {
		e.applyEffects([]types.Effect{
			{Type: "heal", Params: map[string]any{"amount": -e.damageFloor}},
		}, result)
		result.Output = append(result.Output, fmt.Sprintf("The floor burns you. (-%d HP)", e.damageFloor))
	}

	e.runCommonEvents(result)
}

// runCommonEvents drains queued common events once. Each event applies its
// own effect list, so a stop only ends the event that ran it. A transfer
// clears the queue and drops the events still waiting.
func (e *Engine) runCommonEvents(result *types.Result) {
	if e.queue.Len() == 0 {
		return
	}
	e.log.Debug("dispatching common events", "ids", e.queue.Pending())
	unknown := events.Dispatch(&e.queue, e.State, e.Defs, func(id int, effs []types.Effect) {
		e.log.Debug("common event", "id", id, "effects", len(effs))
		e.applyEffects(effs, result)
	})
	for _, id := range unknown {
		e.log.Warn("unknown common event", "id", id)
	}
}

func (e *Engine) applyEffects(effs []types.Effect, result *types.Result) {
	if len(effs) == 0 {
		return
	}
	ctx := effects.Context{Text: e.Text, MaxHP: e.Defs.Game.MaxHP}
	evts, output := effects.Apply(e.State, effs, ctx)
	result.Effects = append(result.Effects, effs...)
	result.Events = append(result.Events, evts...)
	result.Output = append(result.Output, output...)

	for _, ev := range evts {
		if ev.Type != "player_transferred" {
			continue
		}
		mapID, _ := ev.Data["map"].(int)
		x, _ := ev.Data["x"].(int)
		y, _ := ev.Data["y"].(int)
		if err := e.Transfer(mapID, x, y); err != nil {
			e.log.Warn("transfer failed", "error", err)
			result.Output = append(result.Output, "["+err.Error()+"]")
			continue
		}
		result.Output = append(result.Output, e.Describe()...)
	}
}

// Transfer moves the player to (x, y) on mapID. Region tracking starts
// over on the new map; the arrival tile is evaluated at the next stop.
func (e *Engine) Transfer(mapID, x, y int) error {
	m, ok := e.Defs.Maps[mapID]
	if !ok {
		return fmt.Errorf("transfer: unknown map %d", mapID)
	}
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return fmt.Errorf("transfer: (%d,%d) is outside map %d", x, y, mapID)
	}
	e.log.Debug("transfer", "from", e.State.Player.MapID, "to", mapID, "x", x, "y", y)
	e.State.Player.MapID = mapID
	e.State.Player.X = x
	e.State.Player.Y = y
	e.State.Events = map[int]types.EventState{}
	e.State.RegionID = 0
	e.State.TerrainTagID = 0
	e.tracker.Reset()
	e.queue.Clear()
	e.enterMap(mapID)
	return nil
}

// advanceEvents moves every map event one step along its route. Events use
// their own collision rules and never walk onto the player or each other.
func (e *Engine) advanceEvents() {
	m, ok := state.CurrentMap(e.State, e.Defs)
	if !ok {
		return
	}
	for _, ev := range m.Events {
		if ev.Route == "" {
			continue
		}
		x, y := state.EventPosition(e.State, ev)
		es := e.State.Events[ev.ID]
		es.X, es.Y = x, y

		d := e.routeDirection(ev.Route[es.RouteStep%len(ev.Route)])
		es.RouteStep++

		if d != types.DirNone && e.CanMove(types.SubjectEvent, x, y, d) {
			dx, dy := d.Delta()
			tx, ty := x+dx, y+dy
			playerThere := e.State.Player.X == tx && e.State.Player.Y == ty
			if !playerThere && state.EventAt(e.State, m, tx, ty) == 0 {
				es.X, es.Y = tx, ty
			}
		}
		e.State.Events[ev.ID] = es
	}
}

func (e *Engine) routeDirection(c byte) types.Direction {
	switch c {
	case 'U', 'u':
		return types.DirUp
	case 'D', 'd':
		return types.DirDown
	case 'L', 'l':
		return types.DirLeft
	case 'R', 'r':
		return types.DirRight
	case '?':
		return e.RNG.Direction()
	}
	return types.DirNone
}

// switchSink writes tracker switch changes into the live state.
type switchSink struct{ e *Engine }

func (s switchSink) SetSwitch(id int, value bool) {
	s.e.log.Debug("switch changed", "switch", id, "value", value)
	state.SetSwitch(s.e.State, id, value)
}

// hostView gives the text base read access to the live state.
type hostView struct{ e *Engine }

func (h hostView) Switch(id int) bool  { return state.GetSwitch(h.e.State, id) }
func (h hostView) Variable(id int) int { return state.GetVariable(h.e.State, id) }

func recordID(rec *types.RuleRecord) int {
	if rec == nil {
		return 0
	}
	return rec.ID
}
