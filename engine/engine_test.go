package engine

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/nathoo/regioncore/engine/save"
	"github.com/nathoo/regioncore/engine/state"
	"github.com/nathoo/regioncore/types"
)

// testDefs builds a small test game.
//
//	map 1 (Meadow)     regions           terrain
//	######             . . 3 3 7 9       row 3: . . 1 1
//	#P...#             . . . 8 . .
//	#.^..#             . 11 . . . .
//	#...G#
//	######
func testDefs() *state.Defs {
	return &state.Defs{
		Game: types.GameDef{
			Title:    "Test Game",
			Version:  "1.0",
			StartMap: 1,
			StartX:   1,
			StartY:   1,
			MaxHP:    30,
		},
		Regions: []types.RawRuleConfig{
			{
				ID:       3,
				Name:     "Marsh",
				SwitchID: 5,
				TraitsID: 1,
				CommonEvent: []types.CommonEventRef{
					{ID: 21, Trigger: types.TriggerOnEnter},
					{ID: 22, Trigger: types.TriggerWhileInside},
					{ID: 23, Trigger: types.TriggerOnLeave},
				},
			},
			{
				ID:          7,
				Name:        "Stones",
				SwitchID:    6,
				CommonEvent: []types.CommonEventRef{{ID: 24, Trigger: types.TriggerOnEnter}},
			},
			{ID: 8, Name: "Fence", CollisionForPlayer: []string{"all"}},
			{ID: 9, Name: "Gap", Through: true},
			{
				ID:          11,
				Name:        "Trapdoor",
				CommonEvent: []types.CommonEventRef{{ID: 25, Trigger: types.TriggerOnEnter}},
			},
		},
		TerrainTags: []types.RawRuleConfig{
			{ID: 1, Name: "Mud", TileAttribute: []string{"bush"}, TraitsID: 2},
		},
		Classes: map[int]types.TraitSet{
			1: {ID: 1, Name: "Marsh air", Traits: []types.Trait{{Code: "param_rate", DataID: 2, Value: 0.9}}},
			2: {ID: 2, Name: "Mud", Traits: []types.Trait{{Code: "speed", Value: -1}}},
		},
		CommonEvents: map[int]types.CommonEventDef{
			21: {ID: 21, Effects: []types.Effect{{Type: "say", Params: map[string]any{"text": "You wade into the marsh."}}}},
			22: {ID: 22, Effects: []types.Effect{{Type: "add_var", Params: map[string]any{"variable": 1, "amount": 1}}}},
			23: {ID: 23, Effects: []types.Effect{{Type: "say", Params: map[string]any{"text": "You leave the marsh."}}}},
			24: {ID: 24, Effects: []types.Effect{{Type: "say", Params: map[string]any{"text": "Stones."}}}},
			25: {ID: 25, Effects: []types.Effect{{Type: "transfer", Params: map[string]any{"map": 2, "x": 1, "y": 1}}}},
		},
		Maps: map[int]types.MapDef{
			1: {
				ID: 1, Name: "Meadow", Width: 6, Height: 5,
				Tiles: []string{"######", "#....#", "#.^..#", "#....#", "######"},
				Regions: [][]int{
					{0, 0, 0, 0, 0, 0},
					{0, 0, 3, 3, 7, 9},
					{0, 0, 0, 8, 0, 0},
					{0, 11, 0, 0, 0, 0},
				},
				Terrain: [][]int{{}, {}, {}, {0, 0, 1, 1, 0, 0}},
				Events:  []types.MapEventDef{{ID: 1, Name: "Guard", X: 4, Y: 3}},
			},
			2: {
				ID: 2, Name: "Cellar", Width: 3, Height: 3,
				Events: []types.MapEventDef{{ID: 1, Name: "Rat", X: 2, Y: 2, Route: "LR"}},
			},
			3: {
				ID: 3, Name: "Cave", Width: 5, Height: 5,
				Events: []types.MapEventDef{{ID: 1, Name: "Bat", X: 2, Y: 2, Route: "?"}},
			},
		},
		Texts: []types.TextDef{{ID: "sign", Text: "Marsh level: \\V[1]"}},
	}
}

func outputContains(output []string, substr string) bool {
	for _, line := range output {
		if strings.Contains(line, substr) {
			return true
		}
	}
	return false
}

func TestNew_PlacesPlayerAtStart(t *testing.T) {
	e := New(testDefs())

	p := e.State.Player
	if p.MapID != 1 || p.X != 1 || p.Y != 1 || p.HP != 30 {
		t.Errorf("player = %+v", p)
	}
	if p.Direction != types.DirDown {
		t.Errorf("default direction = %v, want down", p.Direction)
	}
	if e.Grid().Name() != "Meadow" {
		t.Errorf("grid = %q", e.Grid().Name())
	}
}

func TestStep_EnterRegion_FiresEnterAndInside(t *testing.T) {
	e := New(testDefs())
	result := e.Step("east")

	if e.State.Player.X != 2 {
		t.Fatalf("expected player at x=2, got %d", e.State.Player.X)
	}
	if !outputContains(result.Output, "You wade into the marsh.") {
		t.Errorf("expected enter event, got %v", result.Output)
	}
	if !e.State.Switches[5] {
		t.Error("region switch 5 should be on")
	}
	if e.State.Variables[1] != 1 {
		t.Errorf("while-inside counter = %d, want 1", e.State.Variables[1])
	}
	if e.State.RegionID != 3 {
		t.Errorf("RegionID = %d, want 3", e.State.RegionID)
	}
}

func TestStep_StopEndsOnlyItsOwnCommonEvent(t *testing.T) {
	defs := testDefs()
	defs.CommonEvents[21] = types.CommonEventDef{ID: 21, Effects: []types.Effect{
		{Type: "set_switch", Params: map[string]any{"switch": 10, "value": true}},
		{Type: "stop"},
		{Type: "say", Params: map[string]any{"text": "never shown"}},
	}}
	e := New(defs)
	result := e.Step("east")

	if !e.State.Switches[10] {
		t.Error("switch 10 should be set before the stop")
	}
	if outputContains(result.Output, "never shown") {
		t.Errorf("effects after stop should not run, got %v", result.Output)
	}
	if e.State.Variables[1] != 1 {
		t.Errorf("while-inside counter = %d, want 1 after the enter event stopped", e.State.Variables[1])
	}
}

func TestStep_CommonEventSeesEarlierEventOnSameStop(t *testing.T) {
	defs := testDefs()
	defs.CommonEvents[21] = types.CommonEventDef{ID: 21, Effects: []types.Effect{
		{Type: "set_switch", Params: map[string]any{"switch": 10, "value": true}},
	}}
	inside := defs.CommonEvents[22]
	inside.Conditions = []types.Condition{{Type: "switch_on", Params: map[string]any{"switch": 10}}}
	defs.CommonEvents[22] = inside
	e := New(defs)
	e.Step("east")

	if e.State.Variables[1] != 1 {
		t.Errorf("while-inside counter = %d, want 1 once the enter event set switch 10", e.State.Variables[1])
	}
}

func TestStep_StayInsideRegion_OnlyWhileInside(t *testing.T) {
	e := New(testDefs())
	e.Step("east")
	result := e.Step("east")

	if outputContains(result.Output, "wade") {
		t.Errorf("enter event should not repeat, got %v", result.Output)
	}
	if e.State.Variables[1] != 2 {
		t.Errorf("while-inside counter = %d, want 2", e.State.Variables[1])
	}
}

func TestStep_RegionTransition_EnterThenLeave(t *testing.T) {
	e := New(testDefs())
	e.Step("east")
	e.Step("east")
	result := e.Step("east")

	want := []string{"Stones.", "You leave the marsh."}
	if diff := cmp.Diff(want, result.Output); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
	if e.State.Switches[5] || !e.State.Switches[6] {
		t.Errorf("switches = %v, want 5 off and 6 on", e.State.Switches)
	}
}

func TestStep_ThroughRegionOverridesWall(t *testing.T) {
	e := New(testDefs())
	for i := 0; i < 4; i++ {
		e.Step("east")
	}
	if e.State.Player.X != 5 {
		t.Fatalf("expected to pass through the wall gap to x=5, got %d", e.State.Player.X)
	}

	result := e.Step("east")
	if e.State.Player.X != 5 || !outputContains(result.Output, "blocks") {
		t.Errorf("moving off the map should be blocked, x=%d out=%v", e.State.Player.X, result.Output)
	}
}

func TestStep_WallBlocks(t *testing.T) {
	e := New(testDefs())
	result := e.Step("go north")

	if e.State.Player.Y != 1 {
		t.Errorf("expected player to stay at y=1, got %d", e.State.Player.Y)
	}
	if !outputContains(result.Output, "Something blocks your way.") {
		t.Errorf("expected blocked message, got %v", result.Output)
	}
	if e.State.Player.Direction != types.DirUp {
		t.Errorf("player should face up after bumping, got %v", e.State.Player.Direction)
	}
}

func TestCanMove_CollisionBySubject(t *testing.T) {
	e := New(testDefs())

	if e.CanMove(types.SubjectPlayer, 3, 1, types.DirDown) {
		t.Error("player should not enter the fence region")
	}
	if !e.CanMove(types.SubjectEvent, 3, 1, types.DirDown) {
		t.Error("events are not restricted by the fence region")
	}
	if e.CanMove(types.SubjectPlayer, 1, 1, types.DirNone) {
		t.Error("no direction means no move")
	}
}

func TestStep_DamageFloor(t *testing.T) {
	e := New(testDefs())
	e.Step("east")
	result := e.Step("south")

	if e.State.Player.HP != 20 {
		t.Errorf("HP = %d, want 20", e.State.Player.HP)
	}
	if !outputContains(result.Output, "-10 HP") {
		t.Errorf("expected damage message, got %v", result.Output)
	}
}

func TestStep_DamageFloorAmountOption(t *testing.T) {
	e := New(testDefs(), WithDamageFloor(3))
	e.Step("east")
	e.Step("south")

	if e.State.Player.HP != 27 {
		t.Errorf("HP = %d, want 27", e.State.Player.HP)
	}
}

func TestStep_WaitIsAStop(t *testing.T) {
	e := New(testDefs())
	e.Step("east")
	result := e.Step("wait")

	if !outputContains(result.Output, "Time passes.") {
		t.Errorf("output = %v", result.Output)
	}
	if outputContains(result.Output, "wade") {
		t.Error("waiting should not re-enter the region")
	}
	if e.State.Variables[1] != 2 {
		t.Errorf("while-inside counter = %d, want 2", e.State.Variables[1])
	}
}

func TestStep_Traits(t *testing.T) {
	e := New(testDefs())

	result := e.Step("traits")
	if !outputContains(result.Output, "Nothing here") {
		t.Errorf("expected no traits at start, got %v", result.Output)
	}

	e.Step("east")
	result = e.Step("traits")
	if !outputContains(result.Output, "Marsh air: param_rate[2]=0.9") {
		t.Errorf("expected marsh traits, got %v", result.Output)
	}
}

func TestTraits_RegionThenTerrain(t *testing.T) {
	e := New(testDefs())
	if err := e.Transfer(1, 2, 3); err != nil {
		t.Fatal(err)
	}
	got := e.Traits()
	if len(got) != 1 || got[0].Name != "Mud" {
		t.Errorf("traits = %+v, want Mud only", got)
	}
}

func TestHasTileAttribute_GlyphOrRule(t *testing.T) {
	e := New(testDefs())

	if !e.HasTileAttribute(2, 2, types.AttrDamageFloor) {
		t.Error("damage glyph should count")
	}
	if !e.HasTileAttribute(2, 3, types.AttrBush) {
		t.Error("mud terrain should make the tile a bush")
	}
	if e.HasTileAttribute(1, 1, types.AttrBush) {
		t.Error("plain floor is not a bush")
	}
}

func TestStep_TransferViaCommonEvent(t *testing.T) {
	e := New(testDefs())
	e.Step("south")
	result := e.Step("south")

	p := e.State.Player
	if p.MapID != 2 || p.X != 1 || p.Y != 1 {
		t.Fatalf("player = %+v, want map 2 at (1,1)", p)
	}
	if !outputContains(result.Output, "Cellar") {
		t.Errorf("expected arrival description, got %v", result.Output)
	}
	if e.State.RegionID != 0 || e.Tracker().State() != (types.PlayerRegionState{}) {
		t.Error("region tracking should reset on transfer")
	}
}

func TestTransfer_Errors(t *testing.T) {
	e := New(testDefs())

	if err := e.Transfer(42, 0, 0); err == nil {
		t.Error("expected error for unknown map")
	}
	if err := e.Transfer(2, 3, 0); err == nil {
		t.Error("expected error for out-of-bounds target")
	}
	if e.State.Player.MapID != 1 {
		t.Error("failed transfer should not move the player")
	}
}

func TestStep_EventBlocksPlayer(t *testing.T) {
	e := New(testDefs())
	if err := e.Transfer(1, 4, 2); err != nil {
		t.Fatal(err)
	}
	result := e.Step("south")

	if e.State.Player.Y != 2 {
		t.Errorf("player should be blocked by the guard, y=%d", e.State.Player.Y)
	}
	if !outputContains(result.Output, "Guard is in the way.") {
		t.Errorf("output = %v", result.Output)
	}
}

func TestStep_EventRoute(t *testing.T) {
	e := New(testDefs())
	if err := e.Transfer(2, 0, 0); err != nil {
		t.Fatal(err)
	}

	e.Step("wait")
	if es := e.State.Events[1]; es.X != 1 || es.Y != 2 {
		t.Errorf("after step 1 rat at (%d,%d), want (1,2)", es.X, es.Y)
	}
	e.Step("wait")
	if es := e.State.Events[1]; es.X != 2 || es.Y != 2 {
		t.Errorf("after step 2 rat at (%d,%d), want (2,2)", es.X, es.Y)
	}
}

func TestStep_EventDoesNotWalkOntoPlayer(t *testing.T) {
	e := New(testDefs())
	if err := e.Transfer(2, 1, 2); err != nil {
		t.Fatal(err)
	}

	e.Step("wait")
	es := e.State.Events[1]
	if es.X != 2 || es.Y != 2 {
		t.Errorf("rat at (%d,%d), want it to stay at (2,2)", es.X, es.Y)
	}
	if es.RouteStep != 1 {
		t.Errorf("route step = %d, want 1", es.RouteStep)
	}
}

func TestStep_RandomRouteDeterministic(t *testing.T) {
	run := func() []types.EventState {
		e := New(testDefs(), WithSeed(99))
		if err := e.Transfer(3, 0, 0); err != nil {
			t.Fatal(err)
		}
		var trail []types.EventState
		for i := 0; i < 10; i++ {
			e.Step("wait")
			trail = append(trail, e.State.Events[1])
		}
		return trail
	}

	if diff := cmp.Diff(run(), run()); diff != "" {
		t.Errorf("same seed should give the same route (-first +second):\n%s", diff)
	}
}

func TestStep_ReadAndExpand(t *testing.T) {
	e := New(testDefs())
	e.Step("east")

	result := e.Step("read sign")
	if !outputContains(result.Output, "Marsh level: 1") {
		t.Errorf("read output = %v", result.Output)
	}

	result = e.Step("read nothing")
	if !outputContains(result.Output, `no text "nothing"`) {
		t.Errorf("read missing output = %v", result.Output)
	}

	result = e.Step(`expand Switch five is \S[5]`)
	if !outputContains(result.Output, "Switch five is ON") {
		t.Errorf("expand output = %v", result.Output)
	}
}

func TestStep_ExpandScriptsGated(t *testing.T) {
	e := New(testDefs())
	result := e.Step(`expand \JS<1 + 1>`)
	if !outputContains(result.Output, "disabled") {
		t.Errorf("expected scripts disabled, got %v", result.Output)
	}

	e = New(testDefs(), WithScripts(true))
	result = e.Step(`expand \JS<1 + 1>`)
	if !outputContains(result.Output, "2") {
		t.Errorf("expected script result, got %v", result.Output)
	}
}

func TestStep_Look(t *testing.T) {
	e := New(testDefs())
	e.Step("east")
	result := e.Step("look")

	for _, want := range []string{"Meadow (2,1)", "Region: Marsh [3]", "You can move:"} {
		if !outputContains(result.Output, want) {
			t.Errorf("look output missing %q: %v", want, result.Output)
		}
	}
}

func TestStep_GameOver(t *testing.T) {
	e := New(testDefs())
	e.State.Player.HP = 0

	result := e.Step("east")
	if !outputContains(result.Output, "collapsed") {
		t.Errorf("output = %v", result.Output)
	}
	if e.State.Player.X != 1 {
		t.Error("no movement after game over")
	}
}

func TestStep_EmptyAndUnknown(t *testing.T) {
	e := New(testDefs())

	result := e.Step("   ")
	if !outputContains(result.Output, "What do you want to do?") {
		t.Errorf("output = %v", result.Output)
	}
	result = e.Step("dance")
	if !outputContains(result.Output, "don't know how") {
		t.Errorf("output = %v", result.Output)
	}
	if e.State.TurnCount != 0 {
		t.Errorf("turn count = %d, want 0", e.State.TurnCount)
	}
	if len(e.State.CommandLog) != 2 {
		t.Errorf("command log = %v", e.State.CommandLog)
	}
}

func TestStep_TurnCountIncrements(t *testing.T) {
	e := New(testDefs())
	e.Step("east")
	e.Step("look")
	if e.State.TurnCount != 2 {
		t.Errorf("turn count = %d, want 2", e.State.TurnCount)
	}
}

func TestSaveLoad_DoesNotRefireEnter(t *testing.T) {
	e := New(testDefs())
	e.Step("east")

	data, err := save.Save(e.State, e.Defs)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	sd, err := save.Load(data)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	e2 := New(testDefs())
	save.ApplySave(e2.State, sd)
	e2.Restore()

	result := e2.Step("wait")
	if outputContains(result.Output, "wade") {
		t.Errorf("enter event re-fired after load: %v", result.Output)
	}
	if e2.State.Variables[1] != 2 {
		t.Errorf("while-inside counter = %d, want 2", e2.State.Variables[1])
	}
	if !e2.State.Switches[5] {
		t.Error("region switch should survive the load")
	}
}

func TestRestore_TextOverridesFollowState(t *testing.T) {
	e := New(testDefs())
	e.State = state.NewState(e.Defs)
	e.State.TextOverrides["sign"] = "Closed."
	e.Restore()

	result := e.Step("read sign")
	if !outputContains(result.Output, "Closed.") {
		t.Errorf("output = %v", result.Output)
	}
}

func TestStep_FaceTurnsInPlace(t *testing.T) {
	e := New(testDefs())

	result := e.Step("turn right")
	if e.State.Player.Direction != types.DirRight {
		t.Errorf("direction = %v, want right", e.State.Player.Direction)
	}
	if e.State.Player.X != 1 || e.State.Player.Y != 1 {
		t.Errorf("facing should not move the player, at (%d,%d)", e.State.Player.X, e.State.Player.Y)
	}
	if !outputContains(result.Output, "You turn right.") {
		t.Errorf("output = %v", result.Output)
	}

	result = e.Step("face sideways")
	if !outputContains(result.Output, "Turn which way?") {
		t.Errorf("output = %v", result.Output)
	}
}

func TestStep_GoWithoutDirectionTakesNoTurn(t *testing.T) {
	e := New(testDefs())

	result := e.Step("go")
	if !outputContains(result.Output, "Go which way?") {
		t.Errorf("output = %v", result.Output)
	}
	if e.State.TurnCount != 0 {
		t.Errorf("turn count = %d, want 0", e.State.TurnCount)
	}
}
