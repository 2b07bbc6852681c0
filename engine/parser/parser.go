// Package parser converts command strings into Command structs.
// Intentionally dumb: no NLP, just pattern matching.
package parser

import (
	"strings"

	"github.com/nathoo/regioncore/types"
)

// Command is one parsed player command.
type Command struct {
	Verb string          // canonical verb; "go" for movement
	Dir  types.Direction // for go and face
	Arg  string          // remainder with its original case
}

var verbAliases = map[string]string{
	// Look
	"l":       "look",
	"x":       "look",
	"examine": "look",
	"survey":  "look",

	// Movement
	"walk": "go",
	"run":  "go",
	"move": "go",
	"head": "go",
	"step": "go",

	// Turning in place
	"turn": "face",

	// Waiting is a stop on the current tile.
	"z":    "wait",
	"stay": "wait",
	"rest": "wait",

	// Text
	"show": "read",
}

// Parse converts a raw command string into a Command.
func Parse(input string) Command {
	input = strings.TrimSpace(input)
	if input == "" {
		return Command{}
	}

	verb, rest, _ := strings.Cut(input, " ")
	verb = strings.ToLower(verb)
	rest = strings.TrimSpace(rest)

	// Direction shortcut: bare "n", "south", "left" etc. → go <direction>
	if d := types.ParseDirection(verb); d != types.DirNone {
		return Command{Verb: "go", Dir: d, Arg: rest}
	}

	verb, rest = expandMultiWordVerbs(verb, rest)

	if alias, ok := verbAliases[verb]; ok {
		verb = alias
	}

	cmd := Command{Verb: verb, Arg: rest}
	if verb == "go" || verb == "face" {
		first, _, _ := strings.Cut(rest, " ")
		cmd.Dir = types.ParseDirection(first)
	}
	return cmd
}

// expandMultiWordVerbs handles "look around", "stand still" and the like.
func expandMultiWordVerbs(verb, rest string) (string, string) {
	first, tail, _ := strings.Cut(rest, " ")
	switch verb {
	case "look":
		if strings.EqualFold(first, "around") || strings.EqualFold(first, "here") {
			return "look", strings.TrimSpace(tail)
		}
	case "stand":
		if strings.EqualFold(first, "still") {
			return "wait", strings.TrimSpace(tail)
		}
	case "show":
		if strings.EqualFold(first, "traits") {
			return "traits", strings.TrimSpace(tail)
		}
	}
	return verb, rest
}
