package engine

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/nathoo/regioncore/engine/state"
	"github.com/nathoo/regioncore/types"
)

var allAttributes = []types.TileAttribute{
	types.AttrLadder, types.AttrBush, types.AttrCounter, types.AttrDamageFloor,
}

// Describe produces the standard output for the player's tile. It does
// not take a turn.
func (e *Engine) Describe() []string {
	p := e.State.Player
	m, ok := state.CurrentMap(e.State, e.Defs)
	if !ok {
		return []string{"You are somewhere unknown."}
	}

	output := []string{fmt.Sprintf("%s (%d,%d), facing %s.", m.Name, p.X, p.Y, p.Direction)}

	if rec := e.resolver.FindCurrentRegion(p.X, p.Y); rec != nil {
		output = append(output, "Region: "+recordLabel(rec)+".")
	}
	if rec := e.resolver.FindCurrentTerrainTag(p.X, p.Y); rec != nil {
		output = append(output, "Terrain: "+recordLabel(rec)+".")
	}

	var attrs []string
	for _, a := range allAttributes {
		if e.HasTileAttribute(p.X, p.Y, a) {
			attrs = append(attrs, string(a))
		}
	}
	if len(attrs) > 0 {
		output = append(output, "Underfoot: "+strings.Join(attrs, ", ")+".")
	}

	var dirs []string
	for _, d := range []types.Direction{types.DirUp, types.DirDown, types.DirLeft, types.DirRight} {
		if e.CanMove(types.SubjectPlayer, p.X, p.Y, d) {
			dirs = append(dirs, d.String())
		}
	}
	if len(dirs) > 0 {
		output = append(output, "You can move: "+strings.Join(dirs, ", ")+".")
	} else {
		output = append(output, "You are boxed in.")
	}

	var nearby []string
	for _, ev := range m.Events {
		ex, ey := state.EventPosition(e.State, ev)
		if abs(ex-p.X)+abs(ey-p.Y) <= 2 {
			nearby = append(nearby, fmt.Sprintf("%s (%d,%d)", eventLabel(ev), ex, ey))
		}
	}
	if len(nearby) > 0 {
		sort.Strings(nearby)
		output = append(output, "Nearby: "+strings.Join(nearby, ", ")+".")
	}

	return output
}

// DescribeTraits lists the trait sets active at the player's tile.
func (e *Engine) DescribeTraits() []string {
	sets := e.Traits()
	if len(sets) == 0 {
		return []string{"Nothing here affects you."}
	}
	var output []string
	for _, ts := range sets {
		parts := make([]string, 0, len(ts.Traits))
		for _, t := range ts.Traits {
			parts = append(parts, fmt.Sprintf("%s[%d]=%s", t.Code, t.DataID, strconv.FormatFloat(t.Value, 'g', -1, 64)))
		}
		name := ts.Name
		if name == "" {
			name = fmt.Sprintf("#%d", ts.ID)
		}
		output = append(output, fmt.Sprintf("%s: %s", name, strings.Join(parts, ", ")))
	}
	return output
}

func (e *Engine) read(id string) []string {
	if id == "" {
		return []string{"Read what?"}
	}
	raw, err := e.Text.Get(id)
	if err != nil {
		return []string{fmt.Sprintf("There is no text %q.", id)}
	}
	return e.expand(raw)
}

func (e *Engine) expand(text string) []string {
	if text == "" {
		return []string{"Expand what?"}
	}
	out, err := e.Text.Expand(text)
	if err != nil {
		e.log.Debug("text expansion failed", "error", err)
		return []string{"[" + err.Error() + "]", out}
	}
	return []string{out}
}

func (e *Engine) eventName(m types.MapDef, id int) string {
	for _, ev := range m.Events {
		if ev.ID == id {
			return eventLabel(ev)
		}
	}
	return "Someone"
}

func eventLabel(ev types.MapEventDef) string {
	if ev.Name != "" {
		return ev.Name
	}
	return fmt.Sprintf("Event %d", ev.ID)
}

func recordLabel(rec *types.RuleRecord) string {
	if rec.Name != "" {
		return fmt.Sprintf("%s [%d]", rec.Name, rec.ID)
	}
	return fmt.Sprintf("#%d", rec.ID)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
