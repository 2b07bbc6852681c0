// Package grid wraps a map definition as the tile surface the region
// resolver reads from.
package grid

import "github.com/nathoo/regioncore/types"

// Tile glyphs understood by the base passability check.
const (
	GlyphWall    = '#'
	GlyphFloor   = '.'
	GlyphLadder  = 'H'
	GlyphBush    = '"'
	GlyphCounter = '='
	GlyphDamage  = '^'
	GlyphWater   = '~' // impassable like a wall, but drawn differently
)

// Map is a read-only tile grid. Coordinates outside the map are
// impassable and carry no region or terrain tag.
type Map struct {
	def types.MapDef
}

// New wraps a map definition.
func New(def types.MapDef) *Map {
	return &Map{def: def}
}

// ID returns the map id.
func (m *Map) ID() int { return m.def.ID }

// Name returns the display name of the map.
func (m *Map) Name() string { return m.def.Name }

// Width returns the map width in tiles.
func (m *Map) Width() int { return m.def.Width }

// Height returns the map height in tiles.
func (m *Map) Height() int { return m.def.Height }

// Def returns the underlying definition.
func (m *Map) Def() types.MapDef { return m.def }

// InBounds reports whether (x, y) lies on the map.
func (m *Map) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < m.def.Width && y < m.def.Height
}

// Glyph returns the tile glyph at (x, y). Missing cells read as floor and
// out-of-bounds cells as wall.
func (m *Map) Glyph(x, y int) byte {
	if !m.InBounds(x, y) {
		return GlyphWall
	}
	if y >= len(m.def.Tiles) || x >= len(m.def.Tiles[y]) {
		return GlyphFloor
	}
	return m.def.Tiles[y][x]
}

// RegionID returns the region painted on the tile, or 0.
func (m *Map) RegionID(x, y int) int {
	return cell(m.def.Regions, x, y, m.InBounds(x, y))
}

// TerrainTag returns the terrain tag of the tile, or 0.
func (m *Map) TerrainTag(x, y int) int {
	return cell(m.def.Terrain, x, y, m.InBounds(x, y))
}

func cell(layer [][]int, x, y int, inBounds bool) int {
	if !inBounds || y >= len(layer) || x >= len(layer[y]) {
		return 0
	}
	return layer[y][x]
}

// IsPassable is the map's own passability for leaving or entering (x, y)
// in direction d, before any region rules apply.
func (m *Map) IsPassable(x, y int, _ types.Direction) bool {
	switch m.Glyph(x, y) {
	case GlyphWall, GlyphWater:
		return false
	}
	return true
}

// HasTileFlag reports whether the tile glyph itself carries attr.
func (m *Map) HasTileFlag(x, y int, attr types.TileAttribute) bool {
	switch m.Glyph(x, y) {
	case GlyphLadder:
		return attr == types.AttrLadder
	case GlyphBush:
		return attr == types.AttrBush
	case GlyphCounter:
		return attr == types.AttrCounter
	case GlyphDamage:
		return attr == types.AttrDamageFloor
	}
	return false
}
