package grid

import (
	"testing"

	"github.com/nathoo/regioncore/types"
)

func testMap() *Map {
	return New(types.MapDef{
		ID: 1, Name: "Test", Width: 4, Height: 3,
		Tiles: []string{
			"#..H",
			".~\"=",
			"^.",
		},
		Regions: [][]int{
			{0, 1, 1, 0},
			{0, 0, 2},
		},
		Terrain: [][]int{
			{3, 0, 0, 0},
		},
	})
}

func TestMap_Passability(t *testing.T) {
	m := testMap()

	tests := []struct {
		x, y int
		want bool
	}{
		{0, 0, false}, // wall
		{1, 0, true},
		{1, 1, false}, // water
		{3, 0, true},  // ladder
		{3, 2, true},  // short row reads as floor
		{-1, 0, false},
		{4, 0, false},
		{0, 3, false},
	}
	for _, tt := range tests {
		if got := m.IsPassable(tt.x, tt.y, types.DirUp); got != tt.want {
			t.Errorf("IsPassable(%d,%d) = %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestMap_Layers(t *testing.T) {
	m := testMap()

	if m.RegionID(1, 0) != 1 || m.RegionID(2, 1) != 2 {
		t.Error("painted regions not read")
	}
	if m.RegionID(3, 1) != 0 || m.RegionID(0, 2) != 0 {
		t.Error("short or missing region rows should read as 0")
	}
	if m.TerrainTag(0, 0) != 3 || m.TerrainTag(0, 1) != 0 {
		t.Error("terrain tags not read")
	}
	if m.RegionID(-1, 0) != 0 || m.TerrainTag(9, 9) != 0 {
		t.Error("out of bounds should read as 0")
	}
}

func TestMap_TileFlags(t *testing.T) {
	m := testMap()

	if !m.HasTileFlag(3, 0, types.AttrLadder) {
		t.Error("H should be a ladder")
	}
	if !m.HasTileFlag(2, 1, types.AttrBush) {
		t.Error("\" should be a bush")
	}
	if !m.HasTileFlag(3, 1, types.AttrCounter) {
		t.Error("= should be a counter")
	}
	if !m.HasTileFlag(0, 2, types.AttrDamageFloor) {
		t.Error("^ should be a damage floor")
	}
	if m.HasTileFlag(1, 0, types.AttrLadder) {
		t.Error("floor has no flags")
	}
}
