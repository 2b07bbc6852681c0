package region

import (
	"log/slog"

	"github.com/nathoo/regioncore/types"
)

// SwitchStore receives switch side effects.
type SwitchStore interface {
	SetSwitch(id int, value bool)
}

// Dispatcher queues common events for execution.
type Dispatcher interface {
	Enqueue(commonEventID int)
}

// Tracker owns the player's region state and fires enter, inside and leave
// side effects at movement stops. It is not safe for concurrent use.
type Tracker struct {
	state    types.PlayerRegionState
	switches SwitchStore
	dispatch Dispatcher
	log      *slog.Logger
}

// NewTracker creates a tracker that writes to switches and dispatch.
func NewTracker(switches SwitchStore, dispatch Dispatcher, log *slog.Logger) *Tracker {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Tracker{switches: switches, dispatch: dispatch, log: log}
}

// State returns a copy of the current tracking state.
func (t *Tracker) State() types.PlayerRegionState {
	return t.state
}

// Reset clears all tracking. Call it when the active map changes.
func (t *Tracker) Reset() {
	t.state = types.PlayerRegionState{}
}

// Restore seeds the previous records from saved ids so that the next stop
// on the same tile does not count as an enter.
func (t *Tracker) Restore(tables *Tables, regionID, terrainTagID int) {
	t.Reset()
	if tables == nil {
		return
	}
	t.state.PrevRegion = tables.Regions.Get(regionID)
	t.state.Region = t.state.PrevRegion
	t.state.PrevTerrainTag = tables.TerrainTags.Get(terrainTagID)
	t.state.TerrainTag = t.state.PrevTerrainTag
}

// OnPlayerStoppedAt re-evaluates the tile the player stopped on. The
// region axis is processed before the terrain tag axis.
func (t *Tracker) OnPlayerStoppedAt(r *Resolver, x, y int) {
	t.state.Region = r.FindCurrentRegion(x, y)
	t.update("region", t.state.Region, t.state.PrevRegion)
	t.state.PrevRegion = t.state.Region

	t.state.TerrainTag = r.FindCurrentTerrainTag(x, y)
	t.update("terrain_tag", t.state.TerrainTag, t.state.PrevTerrainTag)
	t.state.PrevTerrainTag = t.state.TerrainTag
}

func (t *Tracker) update(axis string, current, prev *types.RuleRecord) {
	changed := recordID(current) != recordID(prev)
	if changed {
		t.log.Debug("region transition", "axis", axis, "from", recordID(prev), "to", recordID(current))
	}
	t.fireCommonEvents(current, prev, changed)
	if changed {
		t.toggleSwitches(current, prev)
	}
}

func (t *Tracker) fireCommonEvents(current, prev *types.RuleRecord, changed bool) {
	if t.dispatch == nil {
		return
	}
	if current != nil {
		for _, ev := range current.CommonEvent {
			switch {
			case ev.Trigger == types.TriggerOnEnter && changed,
				ev.Trigger == types.TriggerWhileInside:
				t.dispatch.Enqueue(ev.ID)
			}
		}
	}
	if prev != nil && changed {
		for _, ev := range prev.CommonEvent {
			if ev.Trigger == types.TriggerOnLeave {
				t.dispatch.Enqueue(ev.ID)
			}
		}
	}
}

func (t *Tracker) toggleSwitches(current, prev *types.RuleRecord) {
	if t.switches == nil {
		return
	}
	if current != nil && current.SwitchID > 0 {
		t.switches.SetSwitch(current.SwitchID, true)
	}
	if prev != nil && prev.SwitchID > 0 {
		t.switches.SetSwitch(prev.SwitchID, false)
	}
}

// recordID returns 0 for an absent record.
func recordID(rec *types.RuleRecord) int {
	if rec == nil {
		return 0
	}
	return rec.ID
}
