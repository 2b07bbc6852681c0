// Package region implements the region and terrain tag rule database:
// table construction, per-tile rule resolution and the player's
// enter/leave tracking.
package region

import (
	"strings"

	"github.com/nathoo/regioncore/types"
)

// TraitLookup resolves a trait set id. It reports false for unknown ids.
type TraitLookup func(id int) (*types.TraitSet, bool)

// MetaExtractor parses a record note into a key/value bag.
type MetaExtractor func(note string) map[string]any

// Table maps configured ids to rule records. Ids never configured are
// absent, however large the configured ids are.
type Table map[int]*types.RuleRecord

// Get returns the record configured for id, or nil.
func (t Table) Get(id int) *types.RuleRecord {
	return t[id]
}

// Len returns the number of configured records.
func (t Table) Len() int {
	return len(t)
}

// Tables holds the two independent rule tables. Tables are not modified
// after Build returns.
type Tables struct {
	Regions     Table
	TerrainTags Table
}

// Build compiles both configured lists into lookup tables.
func Build(regions, terrainTags []types.RawRuleConfig, traits TraitLookup, extract MetaExtractor) *Tables {
	return &Tables{
		Regions:     BuildTable(regions, traits, extract),
		TerrainTags: BuildTable(terrainTags, traits, extract),
	}
}

// BuildTable compiles one configured list. Entries with a non-positive id
// are skipped; a later entry with the same id replaces the earlier one.
func BuildTable(configs []types.RawRuleConfig, traits TraitLookup, extract MetaExtractor) Table {
	table := make(Table, len(configs))
	for _, c := range configs {
		if c.ID <= 0 {
			continue
		}
		table[c.ID] = compileRecord(c, traits, extract)
	}
	return table
}

func compileRecord(c types.RawRuleConfig, traits TraitLookup, extract MetaExtractor) *types.RuleRecord {
	rec := &types.RuleRecord{
		ID:                 c.ID,
		Name:               c.Name,
		CollisionForPlayer: parseCollisions(c.CollisionForPlayer),
		CollisionForEvent:  parseCollisions(c.CollisionForEvent),
		Through:            c.Through,
		TileAttribute:      parseAttributes(c.TileAttribute),
		CommonEvent:        parseCommonEvents(c.CommonEvent),
		SwitchID:           c.SwitchID,
		TraitsID:           c.TraitsID,
		Note:               c.Note,
	}

	if c.TraitsID > 0 && traits != nil {
		if ts, ok := traits(c.TraitsID); ok && ts != nil {
			rec.Traits = ts
		}
	}

	rec.Meta = extractMeta(extract, c.Note)
	return rec
}

// extractMeta never fails: a nil extractor or a panicking one yields an
// empty bag.
func extractMeta(extract MetaExtractor, note string) (bag map[string]any) {
	bag = map[string]any{}
	if extract == nil {
		return bag
	}
	defer func() {
		if recover() != nil {
			bag = map[string]any{}
		}
	}()
	if m := extract(note); m != nil {
		bag = m
	}
	return bag
}

var collisionNames = map[string]types.CollisionFlag{
	"collision_all":   types.CollisionAll,
	"collision_up":    types.CollisionUp,
	"collision_right": types.CollisionRight,
	"collision_down":  types.CollisionDown,
	"collision_left":  types.CollisionLeft,
	"all":             types.CollisionAll,
	"up":              types.CollisionUp,
	"right":           types.CollisionRight,
	"down":            types.CollisionDown,
	"left":            types.CollisionLeft,
}

func parseCollisions(raw []string) []types.CollisionFlag {
	flags := []types.CollisionFlag{}
	for _, s := range raw {
		if f, ok := collisionNames[strings.ToLower(strings.TrimSpace(s))]; ok {
			flags = append(flags, f)
		}
	}
	return flags
}

var attributeNames = map[string]types.TileAttribute{
	"ladder":       types.AttrLadder,
	"bush":         types.AttrBush,
	"counter":      types.AttrCounter,
	"damage_floor": types.AttrDamageFloor,
}

func parseAttributes(raw []string) []types.TileAttribute {
	attrs := []types.TileAttribute{}
	for _, s := range raw {
		if a, ok := attributeNames[strings.ToLower(strings.TrimSpace(s))]; ok {
			attrs = append(attrs, a)
		}
	}
	return attrs
}

func parseCommonEvents(raw []types.CommonEventRef) []types.CommonEventRef {
	refs := make([]types.CommonEventRef, 0, len(raw))
	for _, ref := range raw {
		if ref.ID <= 0 {
			continue
		}
		switch ref.Trigger {
		case types.TriggerOnEnter, types.TriggerWhileInside, types.TriggerOnLeave:
			refs = append(refs, ref)
		}
	}
	return refs
}

// IsKnownCollision reports whether s names a collision flag.
func IsKnownCollision(s string) bool {
	_, ok := collisionNames[strings.ToLower(strings.TrimSpace(s))]
	return ok
}

// IsKnownAttribute reports whether s names a tile attribute.
func IsKnownAttribute(s string) bool {
	_, ok := attributeNames[strings.ToLower(strings.TrimSpace(s))]
	return ok
}
