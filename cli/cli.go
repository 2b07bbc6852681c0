// Package cli provides terminal I/O, output formatting, and meta-command
// dispatch for the region engine.
package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/nathoo/regioncore/engine"
	"github.com/nathoo/regioncore/engine/state"
)

// CLI handles line-oriented interaction with the player. Slash commands
// and their settings come from the embedded Commands.
type CLI struct {
	Commands
	In        io.Reader
	Out       io.Writer
	EchoInput bool   // echo each input line after the prompt (for script playback)
	lastCmd   string // for "again"/"g" repeat
}

// New creates a CLI wired to the given engine. Saves go to saveDir.
func New(eng *engine.Engine, defs *state.Defs, saveDir string) *CLI {
	return &CLI{
		Commands: *NewCommands(eng, defs, saveDir),
		In:       os.Stdin,
		Out:      os.Stdout,
	}
}

// Run starts the game loop. It shows the intro, describes the starting
// tile, then loops reading commands until input ends or /quit.
func (c *CLI) Run() {
	if c.Defs.Game.Intro != "" {
		c.printLine(c.Defs.Game.Intro)
		c.printLine("")
	}
	c.printLines(c.Engine.Describe())

	scanner := bufio.NewScanner(c.In)
	for {
		c.print("> ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		// Comment lines in script files.
		if strings.HasPrefix(input, "#") {
			continue
		}
		if c.EchoInput {
			c.printLine(input)
		}

		if strings.HasPrefix(input, "/") {
			r := c.Commands.Run(input)
			for _, n := range r.Notes {
				c.printSystem(n)
			}
			c.printLines(r.Lines)
			if r.Quit {
				return
			}
			continue
		}

		lower := strings.ToLower(input)
		if lower == "again" || lower == "g" {
			if c.lastCmd == "" {
				c.printLine("Nothing to repeat.")
				continue
			}
			input = c.lastCmd
		} else {
			c.lastCmd = input
		}

		result := c.Engine.Step(input)
		c.printLines(result.Output)

		if c.Trace {
			for _, line := range TraceLines(result) {
				c.printSystem(line)
			}
		}
	}
}

func (c *CLI) printLines(lines []string) {
	for _, line := range lines {
		c.printLine(line)
	}
}

func (c *CLI) printLine(text string) {
	fmt.Fprintln(c.Out, text)
}

func (c *CLI) print(text string) {
	fmt.Fprint(c.Out, text)
}

func (c *CLI) printSystem(text string) {
	fmt.Fprintf(c.Out, "[%s]\n", text)
}
