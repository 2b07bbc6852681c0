package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/nathoo/regioncore/engine"
	"github.com/nathoo/regioncore/engine/save"
	"github.com/nathoo/regioncore/engine/state"
	"github.com/nathoo/regioncore/types"
)

// Reply is the outcome of a slash command. Notes are system messages,
// Lines are game text shown after them.
type Reply struct {
	Notes []string
	Lines []string
	Quit  bool
}

func note(format string, args ...any) Reply {
	return Reply{Notes: []string{fmt.Sprintf(format, args...)}}
}

// Commands runs the slash commands shared by the line and full-screen
// frontends. Trace is toggled by /trace and read by the frontend.
type Commands struct {
	Engine  *engine.Engine
	Defs    *state.Defs
	SaveDir string
	Trace   bool
	Log     *slog.Logger
}

// NewCommands returns commands bound to eng. Saves go to saveDir.
func NewCommands(eng *engine.Engine, defs *state.Defs, saveDir string) *Commands {
	return &Commands{
		Engine:  eng,
		Defs:    defs,
		SaveDir: saveDir,
		Log:     slog.New(slog.DiscardHandler),
	}
}

// Run executes one slash command line such as "/save slot1".
func (c *Commands) Run(input string) Reply {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return Reply{}
	}
	var arg string
	if len(parts) > 1 {
		arg = parts[1]
	}

	switch parts[0] {
	case "/quit", "/exit":
		r := note("Goodbye.")
		r.Quit = true
		return r
	case "/save":
		return c.save(arg)
	case "/load":
		return c.load(arg)
	case "/help":
		return Reply{Lines: helpLines}
	case "/state":
		return Reply{Notes: c.stateLines()}
	case "/switches":
		if on := state.OnSwitches(c.Engine.State); len(on) > 0 {
			return note("Switches on: %v", on)
		}
		return note("No switches are on.")
	case "/traits":
		return Reply{Lines: c.Engine.DescribeTraits()}
	case "/trace":
		c.Trace = !c.Trace
		if c.Trace {
			return note("Trace output enabled.")
		}
		return note("Trace output disabled.")
	default:
		return note("Unknown command: %s. Type /help for available commands.", parts[0])
	}
}

func slotName(name string) string {
	if name == "" {
		return "quicksave"
	}
	return name
}

func (c *Commands) savePath(name string) string {
	return filepath.Join(c.SaveDir, slotName(name)+".json")
}

func (c *Commands) save(name string) Reply {
	data, err := save.Save(c.Engine.State, c.Defs)
	if err == nil {
		err = os.MkdirAll(c.SaveDir, 0o755)
	}
	path := c.savePath(name)
	if err == nil {
		err = os.WriteFile(path, data, 0o644)
	}
	if err != nil {
		c.Log.Warn("save failed", "path", path, "error", err)
		return note("Save failed: %v", err)
	}
	c.Log.Info("game saved", "path", path, "turn", c.Engine.State.TurnCount)
	return note("Game saved to %s.", slotName(name))
}

func (c *Commands) load(name string) Reply {
	path := c.savePath(name)
	sd, err := c.readSave(path)
	if err != nil {
		c.Log.Warn("load failed", "path", path, "error", err)
		return note("Load failed: %v", err)
	}

	save.ApplySave(c.Engine.State, sd)
	c.Engine.Restore()
	c.Log.Info("game loaded", "path", path, "turn", sd.Turn)
	r := note("Game loaded from %s (turn %d).", slotName(name), sd.Turn)
	r.Lines = c.Engine.Describe()
	return r
}

func (c *Commands) readSave(path string) (*save.SaveData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	sd, err := save.Load(data)
	if err != nil {
		return nil, err
	}
	if err := save.Validate(sd, c.Defs); err != nil {
		return nil, err
	}
	return sd, nil
}

var helpLines = []string{
	"System:",
	"  /save [name]  Save game (default: quicksave)",
	"  /load [name]  Load game (default: quicksave)",
	"  /quit         Exit game",
	"  /help         Show this help",
	"  /state        Debug: dump current state",
	"  /switches     Debug: list switches that are on",
	"  /traits       Show traits active on your tile",
	"  /map          Toggle the map panel (full-screen mode)",
	"  /trace        Toggle debug trace output",
	"",
	"Game commands:",
	"  look (l)              Describe where you stand",
	"  go/walk <dir>         Move (or just type n/s/e/w, up/down/left/right)",
	"  face <dir>            Turn without moving",
	"  wait (z)              Stay put and let time pass",
	"  traits                Show traits active on your tile",
	"  read <text id>        Show a registered text",
	"  expand <text>         Expand control codes in text",
	"  again (g)             Repeat your last command",
}

func (c *Commands) stateLines() []string {
	s := c.Engine.State
	lines := []string{
		fmt.Sprintf("Turn: %d", s.TurnCount),
		fmt.Sprintf("Map: %d %s", s.Player.MapID, c.Engine.Grid().Name()),
		fmt.Sprintf("Position: (%d,%d) facing %s", s.Player.X, s.Player.Y, s.Player.Direction),
	}
	if c.Defs.Game.MaxHP > 0 {
		lines = append(lines, fmt.Sprintf("HP: %d/%d", s.Player.HP, c.Defs.Game.MaxHP))
	}
	lines = append(lines, fmt.Sprintf("Region: %d  Terrain: %d", s.RegionID, s.TerrainTagID))
	if on := state.OnSwitches(s); len(on) > 0 {
		lines = append(lines, fmt.Sprintf("Switches on: %v", on))
	}
	if len(s.Variables) > 0 {
		ids := make([]int, 0, len(s.Variables))
		for id := range s.Variables {
			ids = append(ids, id)
		}
		sort.Ints(ids)
		parts := make([]string, 0, len(ids))
		for _, id := range ids {
			parts = append(parts, fmt.Sprintf("%d=%d", id, s.Variables[id]))
		}
		lines = append(lines, "Variables: "+strings.Join(parts, " "))
	}
	if len(s.TextOverrides) > 0 {
		lines = append(lines, fmt.Sprintf("Text overrides: %d", len(s.TextOverrides)))
	}
	return lines
}

// TraceLines renders the effects and events of one turn for /trace.
func TraceLines(result types.Result) []string {
	var lines []string
	if len(result.Effects) > 0 {
		lines = append(lines, fmt.Sprintf("[trace] Effects: %d", len(result.Effects)))
		for _, e := range result.Effects {
			lines = append(lines, fmt.Sprintf("[trace]   %s %v", e.Type, e.Params))
		}
	}
	if len(result.Events) > 0 {
		lines = append(lines, fmt.Sprintf("[trace] Events: %d", len(result.Events)))
		for _, e := range result.Events {
			lines = append(lines, fmt.Sprintf("[trace]   %s %v", e.Type, e.Data))
		}
	}
	return lines
}
