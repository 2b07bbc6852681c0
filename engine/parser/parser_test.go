package parser

import (
	"testing"

	"github.com/nathoo/regioncore/types"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Command
	}{
		// Empty / whitespace
		{name: "empty string", input: "", want: Command{}},
		{name: "whitespace only", input: "   ", want: Command{}},

		// Bare directions
		{name: "n", input: "n", want: Command{Verb: "go", Dir: types.DirUp}},
		{name: "south", input: "south", want: Command{Verb: "go", Dir: types.DirDown}},
		{name: "left", input: "LEFT", want: Command{Verb: "go", Dir: types.DirLeft}},
		{name: "r", input: "r", want: Command{Verb: "go", Dir: types.DirRight}},

		// Movement verbs
		{name: "go east", input: "go east", want: Command{Verb: "go", Dir: types.DirRight, Arg: "east"}},
		{name: "walk w", input: "walk w", want: Command{Verb: "go", Dir: types.DirLeft, Arg: "w"}},
		{name: "go nowhere", input: "go nowhere", want: Command{Verb: "go", Arg: "nowhere"}},
		{name: "go alone", input: "go", want: Command{Verb: "go"}},

		// Verb aliases
		{name: "l → look", input: "l", want: Command{Verb: "look"}},
		{name: "look around", input: "look around", want: Command{Verb: "look"}},
		{name: "z → wait", input: "z", want: Command{Verb: "wait"}},
		{name: "stand still", input: "stand still", want: Command{Verb: "wait"}},
		{name: "turn up → face up", input: "turn up", want: Command{Verb: "face", Dir: types.DirUp, Arg: "up"}},
		{name: "show traits", input: "show traits", want: Command{Verb: "traits"}},
		{name: "show sign → read sign", input: "show sign", want: Command{Verb: "read", Arg: "sign"}},

		// Arguments keep their case
		{name: "read", input: "READ Sign", want: Command{Verb: "read", Arg: "Sign"}},
		{
			name:  "expand",
			input: "expand Level \\V[1]  ",
			want:  Command{Verb: "expand", Arg: "Level \\V[1]"},
		},

		// Unknown verbs pass through
		{name: "dance", input: "dance wildly", want: Command{Verb: "dance", Arg: "wildly"}},
		{name: "direction with trailing words", input: "n please", want: Command{Verb: "go", Dir: types.DirUp, Arg: "please"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.input)
			if got != tt.want {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}
