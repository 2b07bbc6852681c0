// Package effects implements centralized state mutation via the Apply function.
// Every effect type is one atomic operation. No logic in effects.
package effects

import (
	"github.com/nathoo/regioncore/engine/rules"
	"github.com/nathoo/regioncore/engine/state"
	"github.com/nathoo/regioncore/engine/textbase"
	"github.com/nathoo/regioncore/types"
)

// Context carries what effects need beyond the state itself.
type Context struct {
	Text  *textbase.Base // expands control codes in say text; may be nil
	MaxHP int            // clamp for heal; 0 means no clamp
}

// Apply applies a list of effects to the game state, mutating it.
// Returns events emitted and output text collected.
func Apply(s *types.State, effects []types.Effect, ctx Context) ([]types.Event, []string) {
	var events []types.Event
	var output []string

	for _, eff := range effects {
		switch eff.Type {
		case "say":
			text, _ := eff.Params["text"].(string)
			if ctx.Text != nil {
				expanded, err := ctx.Text.Expand(text)
				if err != nil {
					output = append(output, "["+err.Error()+"]")
				}
				text = expanded
			}
			output = append(output, text)

		case "set_switch":
			id := rules.ToInt(eff.Params["switch"])
			value, _ := eff.Params["value"].(bool)
			state.SetSwitch(s, id, value)
			events = append(events, types.Event{
				Type: "switch_changed",
				Data: map[string]any{"switch": id, "value": value},
			})

		case "set_var":
			id := rules.ToInt(eff.Params["variable"])
			s.Variables[id] = rules.ToInt(eff.Params["value"])

		case "add_var":
			id := rules.ToInt(eff.Params["variable"])
			s.Variables[id] += rules.ToInt(eff.Params["amount"])

		case "change_text":
			id, _ := eff.Params["id"].(string)
			text, _ := eff.Params["text"].(string)
			if ctx.Text != nil {
				ctx.Text.Set(id, text)
			} else {
				s.TextOverrides[id] = text
			}

		case "heal":
			amount := rules.ToInt(eff.Params["amount"])
			s.Player.HP += amount
			if ctx.MaxHP > 0 && s.Player.HP > ctx.MaxHP {
				s.Player.HP = ctx.MaxHP
			}
			if s.Player.HP < 0 {
				s.Player.HP = 0
			}
			events = append(events, types.Event{
				Type: "player_healed",
				Data: map[string]any{"amount": amount, "current": s.Player.HP},
			})

		case "transfer":
			mapID := rules.ToInt(eff.Params["map"])
			x := rules.ToInt(eff.Params["x"])
			y := rules.ToInt(eff.Params["y"])
			events = append(events, types.Event{
				Type: "player_transferred",
				Data: map[string]any{"map": mapID, "x": x, "y": y},
			})

		case "stop":
			return events, output

		default:
			// Unknown effect types are ignored.
		}
	}

	return events, output
}
