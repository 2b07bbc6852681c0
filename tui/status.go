package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/nathoo/regioncore/engine/state"
	"github.com/nathoo/regioncore/types"
)

// Map panel size in tiles. Larger maps scroll with the player.
const (
	mapViewWidth  = 21
	mapViewHeight = 11
)

// recordName is the short status-bar label for a region or terrain tag.
func recordName(rec *types.RuleRecord) string {
	switch {
	case rec == nil:
		return "-"
	case rec.Name != "":
		return rec.Name
	default:
		return fmt.Sprintf("#%d", rec.ID)
	}
}

// renderStatusBar produces a full-width inverted status line. Region and
// terrain come from the tracker, so they show what the last stop recorded
// rather than whatever lies under the player's feet.
func (m Model) renderStatusBar() string {
	eng := m.cmds.Engine
	s := eng.State
	p := s.Player
	tracked := eng.Tracker().State()

	mapName := eng.Grid().Name()
	if mapName == "" {
		mapName = fmt.Sprintf("Map %d", p.MapID)
	}

	left := fmt.Sprintf(" %s (%d,%d) | Region: %s", mapName, p.X, p.Y, recordName(tracked.Region))
	withTerrain := left + " | Terrain: " + recordName(tracked.TerrainTag)

	right := fmt.Sprintf("T:%d ", s.TurnCount)
	if maxHP := m.cmds.Defs.Game.MaxHP; maxHP > 0 {
		hp := fmt.Sprintf("HP:%d/%d", p.HP, maxHP)
		if m.hpDelta != 0 {
			hp += fmt.Sprintf(" (%+d)", m.hpDelta)
		}
		right = hp + " | " + right
	}

	// Drop the terrain column first when the bar is too narrow.
	if lipgloss.Width(withTerrain)+lipgloss.Width(right)+2 < m.width {
		left = withTerrain
	}

	gap := max(m.width-lipgloss.Width(left)-lipgloss.Width(right), 0)
	return styleStatusBar.Width(m.width).Render(left + strings.Repeat(" ", gap) + right)
}

// renderMapPanel draws the tiles around the player. Region tiles are
// tinted by region id and the tracked region is underlined. The player is
// '@' and map events show the first letter of their name.
func (m Model) renderMapPanel() string {
	eng := m.cmds.Engine
	g := eng.Grid()
	if g.Width() == 0 || g.Height() == 0 {
		return ""
	}
	s := eng.State
	p := s.Player
	current := recordID(eng.Tracker().State().Region)

	w, h := min(mapViewWidth, g.Width()), min(mapViewHeight, g.Height())
	x0 := clamp(p.X-w/2, 0, g.Width()-w)
	y0 := clamp(p.Y-h/2, 0, g.Height()-h)

	marks := make(map[[2]int]string)
	for _, ev := range g.Def().Events {
		ex, ey := state.EventPosition(s, ev)
		marks[[2]int{ex, ey}] = eventGlyph(ev)
	}

	rows := make([]string, 0, h)
	for y := y0; y < y0+h; y++ {
		var b strings.Builder
		for x := x0; x < x0+w; x++ {
			if x == p.X && y == p.Y {
				b.WriteString(stylePlayerMarker.Render("@"))
				continue
			}
			if mark, ok := marks[[2]int{x, y}]; ok {
				b.WriteString(styleEventMarker.Render(mark))
				continue
			}
			glyph := string(g.Glyph(x, y))
			switch id := g.RegionID(x, y); {
			case id > 0 && id == current:
				b.WriteString(regionStyle(id).Underline(true).Render(glyph))
			case id > 0:
				b.WriteString(regionStyle(id).Render(glyph))
			default:
				b.WriteString(styleTile.Render(glyph))
			}
		}
		rows = append(rows, b.String())
	}
	return styleMapPanel.Render(strings.Join(rows, "\n"))
}

func eventGlyph(ev types.MapEventDef) string {
	if ev.Name == "" {
		return "E"
	}
	return strings.ToUpper(ev.Name[:1])
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
