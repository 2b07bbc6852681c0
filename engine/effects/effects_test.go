package effects

import (
	"strings"
	"testing"

	"github.com/nathoo/regioncore/engine/state"
	"github.com/nathoo/regioncore/engine/textbase"
	"github.com/nathoo/regioncore/types"
)

func testSetup() (*types.State, Context) {
	defs := &state.Defs{Game: types.GameDef{StartMap: 1, MaxHP: 30}}
	s := state.NewState(defs)
	s.Player.HP = 10
	tb := textbase.New([]types.TextDef{{ID: "sign", Text: "Beware."}},
		textbase.WithOverrides(s.TextOverrides))
	return s, Context{Text: tb, MaxHP: 30}
}

func TestApply_Say(t *testing.T) {
	s, ctx := testSetup()

	_, output := Apply(s, []types.Effect{
		{Type: "say", Params: map[string]any{"text": "The sign reads: \\TX[sign]"}},
	}, ctx)

	if len(output) != 1 || output[0] != "The sign reads: Beware." {
		t.Errorf("output = %v", output)
	}
}

func TestApply_SayExpansionError(t *testing.T) {
	s, ctx := testSetup()

	_, output := Apply(s, []types.Effect{
		{Type: "say", Params: map[string]any{"text": "\\TX[missing]"}},
	}, ctx)

	if len(output) != 2 || !strings.Contains(output[0], "text not found") {
		t.Errorf("output = %v, want error line then text", output)
	}
}

func TestApply_SetSwitch(t *testing.T) {
	s, ctx := testSetup()

	events, _ := Apply(s, []types.Effect{
		{Type: "set_switch", Params: map[string]any{"switch": 4, "value": true}},
	}, ctx)

	if !s.Switches[4] {
		t.Error("switch 4 should be on")
	}
	if len(events) != 1 || events[0].Type != "switch_changed" {
		t.Fatalf("events = %+v", events)
	}
	if events[0].Data["switch"] != 4 || events[0].Data["value"] != true {
		t.Errorf("event data = %v", events[0].Data)
	}
}

func TestApply_Variables(t *testing.T) {
	s, ctx := testSetup()

	Apply(s, []types.Effect{
		{Type: "set_var", Params: map[string]any{"variable": 2, "value": 5}},
		{Type: "add_var", Params: map[string]any{"variable": 2, "amount": 3}},
		{Type: "add_var", Params: map[string]any{"variable": 7, "amount": -1.0}},
	}, ctx)

	if s.Variables[2] != 8 {
		t.Errorf("variable 2 = %d, want 8", s.Variables[2])
	}
	if s.Variables[7] != -1 {
		t.Errorf("variable 7 = %d, want -1", s.Variables[7])
	}
}

func TestApply_ChangeTextPersistsInState(t *testing.T) {
	s, ctx := testSetup()

	Apply(s, []types.Effect{
		{Type: "change_text", Params: map[string]any{"id": "sign", "text": "Welcome."}},
	}, ctx)

	if s.TextOverrides["sign"] != "Welcome." {
		t.Errorf("override = %q", s.TextOverrides["sign"])
	}
	if got, _ := ctx.Text.Get("sign"); got != "Welcome." {
		t.Errorf("Get(sign) = %q", got)
	}
}

func TestApply_ChangeTextWithoutBase(t *testing.T) {
	s, _ := testSetup()

	Apply(s, []types.Effect{
		{Type: "change_text", Params: map[string]any{"id": "sign", "text": "x"}},
	}, Context{})

	if s.TextOverrides["sign"] != "x" {
		t.Errorf("override = %q", s.TextOverrides["sign"])
	}
}

func TestApply_HealClamps(t *testing.T) {
	s, ctx := testSetup()

	Apply(s, []types.Effect{{Type: "heal", Params: map[string]any{"amount": 100}}}, ctx)
	if s.Player.HP != 30 {
		t.Errorf("HP = %d, want clamp to 30", s.Player.HP)
	}

	Apply(s, []types.Effect{{Type: "heal", Params: map[string]any{"amount": -100}}}, ctx)
	if s.Player.HP != 0 {
		t.Errorf("HP = %d, want floor at 0", s.Player.HP)
	}
}

func TestApply_TransferEmitsEvent(t *testing.T) {
	s, ctx := testSetup()

	events, _ := Apply(s, []types.Effect{
		{Type: "transfer", Params: map[string]any{"map": 2, "x": 3, "y": 4}},
	}, ctx)

	if len(events) != 1 || events[0].Type != "player_transferred" {
		t.Fatalf("events = %+v", events)
	}
	if events[0].Data["map"] != 2 || events[0].Data["x"] != 3 || events[0].Data["y"] != 4 {
		t.Errorf("event data = %v", events[0].Data)
	}
	if s.Player.MapID != 1 {
		t.Error("transfer is performed by the engine, not by Apply")
	}
}

func TestApply_StopHaltsList(t *testing.T) {
	s, ctx := testSetup()

	_, output := Apply(s, []types.Effect{
		{Type: "say", Params: map[string]any{"text": "one"}},
		{Type: "stop"},
		{Type: "say", Params: map[string]any{"text": "two"}},
	}, ctx)

	if len(output) != 1 || output[0] != "one" {
		t.Errorf("output = %v, want [one]", output)
	}
}

func TestApply_UnknownIgnored(t *testing.T) {
	s, ctx := testSetup()
	events, output := Apply(s, []types.Effect{{Type: "launch_rocket"}}, ctx)
	if len(events) != 0 || len(output) != 0 {
		t.Errorf("events=%v output=%v", events, output)
	}
}
