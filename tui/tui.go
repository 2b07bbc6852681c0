// Package tui is the full-screen frontend for the region engine: a turn log
// beside a map panel, a status bar fed by region tracking, and a command
// line. Slash commands are shared with the line frontend through
// cli.Commands.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nathoo/regioncore/cli"
	"github.com/nathoo/regioncore/types"
)

// The map panel is shown beside the turn log once the terminal is large
// enough to hold it.
const (
	mapPanelWidth        = mapViewWidth + 4  // border and padding
	mapPanelHeight       = mapViewHeight + 2 // border
	minMapTerminalWidth  = 64
	minMapTerminalHeight = mapPanelHeight + 2
	recallLimit          = 100
)

type keyMap struct {
	Submit key.Binding
	Quit   key.Binding
	Older  key.Binding
	Newer  key.Binding
}

var keys = keyMap{
	Submit: key.NewBinding(key.WithKeys("enter")),
	Quit:   key.NewBinding(key.WithKeys("ctrl+c")),
	Older:  key.NewBinding(key.WithKeys("up")),
	Newer:  key.NewBinding(key.WithKeys("down")),
}

// scrollKeys leaves Up/Down to command recall.
func scrollKeys() viewport.KeyMap {
	return viewport.KeyMap{
		PageDown:     key.NewBinding(key.WithKeys("pgdown")),
		PageUp:       key.NewBinding(key.WithKeys("pgup")),
		HalfPageDown: key.NewBinding(key.WithKeys("ctrl+d")),
		HalfPageUp:   key.NewBinding(key.WithKeys("ctrl+u")),
		Up:           key.NewBinding(key.WithDisabled()),
		Down:         key.NewBinding(key.WithDisabled()),
	}
}

// Model is the Bubble Tea model for the region engine.
type Model struct {
	cmds *cli.Commands

	log     []entry // unstyled, re-wrapped on resize
	recall  *recall
	lastCmd string
	hpDelta int // HP change of the last game turn

	viewport viewport.Model
	input    textinput.Model
	width    int
	height   int
	ready    bool
	showMap  bool
	quitting bool
}

// logMsg appends entries to the turn log.
type logMsg []entry

// New returns a model driving cmds.Engine. cmds.Trace decides whether
// turns are followed by trace output from the start.
func New(cmds *cli.Commands) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.PromptStyle = styleInputPrompt
	ti.CharLimit = 256
	ti.Focus()

	return Model{
		cmds:    cmds,
		recall:  newRecall(recallLimit),
		input:   ti,
		showMap: true,
	}
}

// Run starts the Bubble Tea program and blocks until the player quits.
func Run(cmds *cli.Commands) error {
	_, err := tea.NewProgram(New(cmds), tea.WithAltScreen(), tea.WithMouseCellMotion()).Run()
	return err
}

// Init queues the title, intro and starting tile.
func (m Model) Init() tea.Cmd {
	intro := m.introEntries()
	return tea.Batch(textinput.Blink, func() tea.Msg { return logMsg(intro) })
}

func (m Model) introEntries() []entry {
	g := m.cmds.Defs.Game
	es := []entry{{text: fmt.Sprintf("%s v%s by %s", g.Title, g.Version, g.Author)}, {}}
	if g.Intro != "" {
		es = append(es, entry{text: g.Intro}, entry{})
	}
	return append(es, narration(m.cmds.Engine.Describe())...)
}

// Update handles resizes, keys and log messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.layout()
		return m, nil

	case logMsg:
		m.push(msg...)
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, keys.Submit):
			return m.submit()
		case key.Matches(msg, keys.Older):
			if line, ok := m.recall.older(m.input.Value()); ok {
				m.setInput(line)
			}
			return m, nil
		case key.Matches(msg, keys.Newer):
			if line, ok := m.recall.newer(); ok {
				m.setInput(line)
			}
			return m, nil
		case m.ready && key.Matches(msg, m.viewport.KeyMap.PageUp, m.viewport.KeyMap.PageDown,
			m.viewport.KeyMap.HalfPageUp, m.viewport.KeyMap.HalfPageDown):
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) setInput(line string) {
	m.input.SetValue(line)
	m.input.CursorEnd()
}

// layout sizes the viewport for the terminal and the map panel.
func (m *Model) layout() {
	h := max(m.height-2, 1) // status bar and input line
	if !m.ready {
		m.viewport = viewport.New(m.narrativeWidth(), h)
		m.viewport.KeyMap = scrollKeys()
		m.ready = true
	} else {
		m.viewport.Width = m.narrativeWidth()
		m.viewport.Height = h
	}
	m.render()
}

// submit runs the input line as a slash command or a game command.
func (m Model) submit() (tea.Model, tea.Cmd) {
	line := strings.TrimSpace(m.input.Value())
	m.input.Reset()
	if line == "" {
		return m, nil
	}
	m.recall.add(line)

	if strings.HasPrefix(line, "/") {
		return m.runSlash(line)
	}

	if lower := strings.ToLower(line); lower == "again" || lower == "g" {
		if m.lastCmd == "" {
			m.push(echo(line), system("Nothing to repeat."), entry{})
			return m, nil
		}
		line = m.lastCmd
	}
	m.lastCmd = line
	m.push(m.playTurn(line)...)
	return m, nil
}

// runSlash handles /map locally and hands everything else to cli.Commands.
func (m Model) runSlash(line string) (tea.Model, tea.Cmd) {
	es := []entry{echo(line)}
	var quit bool
	if strings.Fields(line)[0] == "/map" {
		es = append(es, system(m.toggleMap()))
	} else {
		r := m.cmds.Run(line)
		for _, n := range r.Notes {
			es = append(es, system(n))
		}
		es = append(es, narration(r.Lines)...)
		quit = r.Quit
		m.hpDelta = 0
	}
	m.push(append(es, entry{})...)

	if quit {
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) toggleMap() string {
	m.showMap = !m.showMap
	if m.ready {
		m.layout()
	}
	if m.showMap {
		return "Map panel shown."
	}
	return "Map panel hidden."
}

// playTurn steps the engine and converts the turn into log entries: the
// command, the engine's output, region and terrain transitions seen by the
// tracker, switch and transfer notices from the result events, then trace.
func (m *Model) playTurn(line string) []entry {
	eng := m.cmds.Engine
	before, hp := eng.Tracker().State(), eng.State.Player.HP
	result := eng.Step(line)
	after := eng.Tracker().State()
	m.hpDelta = eng.State.Player.HP - hp

	es := []entry{echo(line)}
	es = append(es, narration(result.Output)...)
	es = append(es, transitions("region", before.Region, after.Region)...)
	es = append(es, transitions("terrain", before.TerrainTag, after.TerrainTag)...)
	es = append(es, eventNotices(result.Events)...)
	if m.cmds.Trace {
		for _, t := range cli.TraceLines(result) {
			es = append(es, entry{text: t, kind: kindTrace})
		}
	}
	return append(es, entry{})
}

// transitions reports a change of tracked record on one axis, leave first.
func transitions(axis string, from, to *types.RuleRecord) []entry {
	if recordID(from) == recordID(to) {
		return nil
	}
	var es []entry
	if from != nil {
		es = append(es, entry{text: transitionText("Left", axis, from, false), kind: kindLeave})
	}
	if to != nil {
		es = append(es, entry{text: transitionText("Entered", axis, to, true), kind: kindEnter})
	}
	return es
}

func transitionText(verb, axis string, rec *types.RuleRecord, on bool) string {
	text := fmt.Sprintf("%s %s %s.", verb, axis, recordName(rec))
	if rec.SwitchID > 0 {
		text += fmt.Sprintf(" Switch %d %s.", rec.SwitchID, onOff(on))
	}
	return text
}

// eventNotices surfaces switch changes and transfers made by common events.
func eventNotices(evts []types.Event) []entry {
	var es []entry
	for _, ev := range evts {
		switch ev.Type {
		case "switch_changed":
			id, _ := ev.Data["switch"].(int)
			on, _ := ev.Data["value"].(bool)
			es = append(es, entry{text: fmt.Sprintf("Switch %d %s.", id, onOff(on)), kind: kindNotice})
		case "player_transferred":
			mapID, _ := ev.Data["map"].(int)
			x, _ := ev.Data["x"].(int)
			y, _ := ev.Data["y"].(int)
			es = append(es, entry{text: fmt.Sprintf("Transferred to map %d at (%d,%d).", mapID, x, y), kind: kindNotice})
		}
	}
	return es
}

func onOff(on bool) string {
	if on {
		return "on"
	}
	return "off"
}

func recordID(rec *types.RuleRecord) int {
	if rec == nil {
		return 0
	}
	return rec.ID
}

func (m *Model) push(es ...entry) {
	m.log = append(m.log, es...)
	m.render()
}

// render re-wraps the whole log at the current width.
func (m *Model) render() {
	if !m.ready {
		return
	}
	width := max(m.narrativeWidth(), 10)
	lines := make([]string, len(m.log))
	for i, e := range m.log {
		lines[i] = e.render(width)
	}
	m.viewport.SetContent(strings.Join(lines, "\n"))
	m.viewport.GotoBottom()
}

// mapVisible reports whether the map panel fits beside the log.
func (m Model) mapVisible() bool {
	return m.showMap && m.width >= minMapTerminalWidth && m.height >= minMapTerminalHeight
}

func (m Model) narrativeWidth() int {
	if m.mapVisible() {
		return m.width - mapPanelWidth
	}
	return m.width
}

// View lays out the log and map panel, the status bar and the input line.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Loading..."
	}

	body := m.viewport.View()
	if m.mapVisible() {
		body = lipgloss.JoinHorizontal(lipgloss.Top, body, m.renderMapPanel())
	}
	return body + "\n" + m.renderStatusBar() + "\n" + m.input.View()
}
