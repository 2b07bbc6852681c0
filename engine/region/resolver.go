package region

import "github.com/nathoo/regioncore/types"

// TileGrid is the map surface the resolver reads tile classifiers from.
type TileGrid interface {
	RegionID(x, y int) int
	TerrainTag(x, y int) int
	IsPassable(x, y int, d types.Direction) bool
}

// Resolver answers per-tile rule queries. It never writes to its tables
// and is safe for concurrent readers.
type Resolver struct {
	tables *Tables
	grid   TileGrid
}

// NewResolver creates a resolver over tables and grid. A nil tables value
// behaves like empty tables.
func NewResolver(tables *Tables, grid TileGrid) *Resolver {
	if tables == nil {
		tables = &Tables{}
	}
	return &Resolver{tables: tables, grid: grid}
}

// Tables returns the underlying rule tables.
func (r *Resolver) Tables() *Tables {
	return r.tables
}

// Grid returns the tile grid the resolver reads from.
func (r *Resolver) Grid() TileGrid {
	return r.grid
}

// FindCurrentRegion returns the region record for the tile, or nil.
func (r *Resolver) FindCurrentRegion(x, y int) *types.RuleRecord {
	if r.grid == nil {
		return nil
	}
	return r.tables.Regions.Get(r.grid.RegionID(x, y))
}

// FindCurrentTerrainTag returns the terrain tag record for the tile, or nil.
func (r *Resolver) FindCurrentTerrainTag(x, y int) *types.RuleRecord {
	if r.grid == nil {
		return nil
	}
	return r.tables.TerrainTags.Get(r.grid.TerrainTag(x, y))
}

// CombinedCollision returns the region's collision flags for subject
// followed by the terrain tag's.
func (r *Resolver) CombinedCollision(x, y int, subject types.Subject) []types.CollisionFlag {
	pick := func(rec *types.RuleRecord) []types.CollisionFlag {
		if rec == nil {
			return nil
		}
		if subject == types.SubjectPlayer {
			return rec.CollisionForPlayer
		}
		return rec.CollisionForEvent
	}
	return combine(r.FindCurrentRegion(x, y), r.FindCurrentTerrainTag(x, y), pick)
}

// CombinedTileAttribute returns the region's tile attributes followed by
// the terrain tag's.
func (r *Resolver) CombinedTileAttribute(x, y int) []types.TileAttribute {
	pick := func(rec *types.RuleRecord) []types.TileAttribute {
		if rec == nil {
			return nil
		}
		return rec.TileAttribute
	}
	return combine(r.FindCurrentRegion(x, y), r.FindCurrentTerrainTag(x, y), pick)
}

// combine concatenates a list field of the region and terrain records.
// The result is never nil.
func combine[T any](region, terrain *types.RuleRecord, field func(*types.RuleRecord) []T) []T {
	out := []T{}
	out = append(out, field(region)...)
	out = append(out, field(terrain)...)
	return out
}

// FirstThrough returns the region's through flag when it is set, else the
// terrain tag's.
func (r *Resolver) FirstThrough(x, y int) bool {
	if rec := r.FindCurrentRegion(x, y); rec != nil && rec.Through {
		return true
	}
	if rec := r.FindCurrentTerrainTag(x, y); rec != nil && rec.Through {
		return true
	}
	return false
}

// IsCollided reports whether subject is blocked at the tile when moving
// in direction d.
func (r *Resolver) IsCollided(x, y int, d types.Direction, subject types.Subject) bool {
	for _, f := range r.CombinedCollision(x, y, subject) {
		switch {
		case f == types.CollisionAll,
			f == types.CollisionUp && d == types.DirUp,
			f == types.CollisionRight && d == types.DirRight,
			f == types.CollisionLeft && d == types.DirLeft,
			f == types.CollisionDown && d == types.DirDown:
			return true
		}
	}
	return false
}

// IsThrough reports whether the tile is forced passable.
func (r *Resolver) IsThrough(x, y int) bool {
	return r.FirstThrough(x, y)
}

// IsPassable layers the rules over the grid's own passability. Collision
// always wins; through only applies when nothing collides.
func (r *Resolver) IsPassable(x, y int, d types.Direction, subject types.Subject) bool {
	passable := false
	if r.grid != nil {
		passable = r.grid.IsPassable(x, y, d)
	}
	if r.IsCollided(x, y, d, subject) {
		return false
	}
	if r.IsThrough(x, y) {
		return true
	}
	return passable
}

// HasAttribute reports whether the combined tile attributes contain attr.
func (r *Resolver) HasAttribute(x, y int, attr types.TileAttribute) bool {
	for _, a := range r.CombinedTileAttribute(x, y) {
		if a == attr {
			return true
		}
	}
	return false
}

// CollectActiveTraits returns the trait sets of the tile's region and
// terrain tag, in that order. It returns an empty list when no map is
// active (mapID <= 0).
func (r *Resolver) CollectActiveTraits(mapID, x, y int) []types.TraitSet {
	traits := []types.TraitSet{}
	if mapID <= 0 || r.grid == nil {
		return traits
	}
	if rec := r.FindCurrentRegion(x, y); rec != nil && rec.Traits != nil {
		traits = append(traits, *rec.Traits)
	}
	if rec := r.FindCurrentTerrainTag(x, y); rec != nil && rec.Traits != nil {
		traits = append(traits, *rec.Traits)
	}
	return traits
}
