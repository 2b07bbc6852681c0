package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// Styles used throughout the TUI.
var (
	styleStatusBar = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("252")).
			Bold(true)

	styleInputPrompt = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))

	styleNarration = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	styleLabel = lipgloss.NewStyle().
			Bold(true)

	styleMoves = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	styleDialogue = lipgloss.NewStyle().
			Foreground(lipgloss.Color("228"))

	styleSystem = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	styleError = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	stylePlayerInput = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))

	styleTrace = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	styleMapPanel = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	styleTile = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	stylePlayerMarker = lipgloss.NewStyle().
				Foreground(lipgloss.Color("46")).
				Bold(true)

	styleEventMarker = lipgloss.NewStyle().
				Foreground(lipgloss.Color("214")).
				Bold(true)

	styleEnter = lipgloss.NewStyle().
			Foreground(lipgloss.Color("78")).
			Italic(true)

	styleLeave = lipgloss.NewStyle().
			Foreground(lipgloss.Color("137")).
			Italic(true)

	styleNotice = lipgloss.NewStyle().
			Foreground(lipgloss.Color("110"))
)

// regionPalette tints region tiles on the map panel, cycling by region id.
var regionPalette = []lipgloss.Color{"24", "58", "89", "22", "94", "54", "30", "95"}

func regionStyle(id int) lipgloss.Style {
	return styleTile.Background(regionPalette[id%len(regionPalette)])
}

// lineKind identifies the type of an output line for styling.
type lineKind int

const (
	kindNarration lineKind = iota
	kindLabeled
	kindMoves
	kindDialogue
	kindSystem
	kindError
	kindTrace
	kindInput
	kindEnter  // tracked region or terrain entered
	kindLeave  // tracked region or terrain left
	kindNotice // switch or transfer made by a common event
)

var kindStyles = map[lineKind]lipgloss.Style{
	kindNarration: styleNarration,
	kindMoves:     styleMoves,
	kindDialogue:  styleDialogue,
	kindSystem:    styleSystem,
	kindError:     styleError,
	kindTrace:     styleTrace,
	kindInput:     stylePlayerInput,
	kindEnter:     styleEnter,
	kindLeave:     styleLeave,
	kindNotice:    styleNotice,
}

// entry is one unstyled line of the turn log.
type entry struct {
	text string
	kind lineKind
}

func echo(input string) entry {
	return entry{text: "> " + input, kind: kindInput}
}

func system(text string) entry {
	return entry{text: "[" + text + "]", kind: kindSystem}
}

// narration classifies engine output lines.
func narration(lines []string) []entry {
	es := make([]entry, len(lines))
	for i, line := range lines {
		es[i] = entry{text: line, kind: classifyLine(line)}
	}
	return es
}

// render wraps the entry to width and styles it.
func (e entry) render(width int) string {
	if e.text == "" {
		return ""
	}
	wrapped := ansi.Wordwrap(e.text, width, "")
	if e.kind == kindLabeled {
		return styledLabeled(wrapped)
	}
	return kindStyles[e.kind].Render(wrapped)
}

var labelPrefixes = []string{"Region: ", "Terrain: ", "Underfoot: "}

// classifyLine determines what kind of output line this is.
func classifyLine(line string) lineKind {
	switch {
	case strings.HasPrefix(line, "[trace]"):
		return kindTrace
	case strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]"):
		return kindSystem
	case labelPrefix(line) != "":
		return kindLabeled
	case strings.HasPrefix(line, "You can move:"),
		strings.HasPrefix(line, "Nearby:"),
		line == "You are boxed in.":
		return kindMoves
	case strings.HasPrefix(line, "Something blocks"),
		strings.HasSuffix(line, " is in the way."),
		strings.HasPrefix(line, "I don't know how to"),
		strings.HasPrefix(line, "The floor burns you."),
		strings.HasPrefix(line, "You have collapsed."):
		return kindError
	case containsQuotedSpeech(line):
		return kindDialogue
	default:
		return kindNarration
	}
}

func labelPrefix(line string) string {
	for _, p := range labelPrefixes {
		if strings.HasPrefix(line, p) {
			return p
		}
	}
	return ""
}

// containsQuotedSpeech checks if a line contains dialogue in single quotes.
func containsQuotedSpeech(line string) bool {
	inQuote := false
	quoteLen := 0
	for _, r := range line {
		if r == '\'' {
			if inQuote && quoteLen > 5 {
				return true
			}
			inQuote = !inQuote
			quoteLen = 0
		} else if inQuote {
			quoteLen++
		}
	}
	return false
}

// styledLabeled renders "Region: Marsh [3]." with the value bold.
func styledLabeled(line string) string {
	prefix := labelPrefix(line)
	if prefix == "" {
		return styleNarration.Render(line)
	}
	return styleNarration.Render(prefix) + styleLabel.Render(line[len(prefix):])
}
