// Package textbase is a database of registered texts and scripts that can
// be referenced from any displayed string through control codes:
//
//	\TX[id]         the registered text
//	\JS[id,a,b]     the registered text evaluated as a script, args = {a, b}
//	\JS<expr>       an inline script expression (&lt; and &gt; for < and >)
//	\V[n], \S[n]    variable n, switch n (ON/OFF)
//
// Scripts run in a fresh sandboxed Lua state and only when enabled.
package textbase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/nathoo/regioncore/engine/sandbox"
	"github.com/nathoo/regioncore/types"
	lua "github.com/yuin/gopher-lua"
)

var (
	// ErrTextNotFound is returned when neither an id nor an index matches.
	ErrTextNotFound = errors.New("text not found")
	// ErrScriptsDisabled is returned when a script code is expanded while
	// script evaluation is off.
	ErrScriptsDisabled = errors.New("script evaluation is disabled")
)

// DefaultScriptTimeout bounds a single script evaluation.
const DefaultScriptTimeout = 100 * time.Millisecond

// Host exposes the read-only game values scripts and codes may query.
type Host interface {
	Switch(id int) bool
	Variable(id int) int
}

// Base holds the configured texts and the per-save overrides.
type Base struct {
	texts        []types.TextDef
	byID         map[string]string
	overrides    map[string]string
	host         Host
	allowScripts bool
	timeout      time.Duration
	log          *slog.Logger
}

// Option configures a Base.
type Option func(*Base)

// WithScripts enables \JS evaluation.
func WithScripts(allow bool) Option {
	return func(b *Base) { b.allowScripts = allow }
}

// WithHost sets the source of switch and variable values.
func WithHost(h Host) Option {
	return func(b *Base) { b.host = h }
}

// WithOverrides shares an override map, typically the save state's, so
// that Set is persisted with the game.
func WithOverrides(m map[string]string) Option {
	return func(b *Base) {
		if m != nil {
			b.overrides = m
		}
	}
}

// WithTimeout bounds each script evaluation.
func WithTimeout(d time.Duration) Option {
	return func(b *Base) { b.timeout = d }
}

// WithLogger sets the logger for script failures.
func WithLogger(l *slog.Logger) Option {
	return func(b *Base) { b.log = l }
}

// New creates a text base over the configured texts.
func New(texts []types.TextDef, opts ...Option) *Base {
	b := &Base{
		texts:     texts,
		byID:      make(map[string]string, len(texts)),
		overrides: map[string]string{},
		timeout:   DefaultScriptTimeout,
		log:       slog.New(slog.DiscardHandler),
	}
	for _, t := range texts {
		if _, dup := b.byID[t.ID]; !dup && t.ID != "" {
			b.byID[t.ID] = t.Text
		}
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// ScriptsEnabled reports whether \JS codes are evaluated.
func (b *Base) ScriptsEnabled() bool {
	return b.allowScripts
}

// Get returns the text for id: a non-empty override set with Set, else the
// text registered under id, else the text at 1-based index id.
func (b *Base) Get(id string) (string, error) {
	if t := b.overrides[id]; t != "" {
		return t, nil
	}
	if t, ok := b.byID[id]; ok {
		return t, nil
	}
	if n, err := strconv.Atoi(strings.TrimSpace(id)); err == nil && n >= 1 && n <= len(b.texts) {
		return b.texts[n-1].Text, nil
	}
	return "", fmt.Errorf("text %q: %w", id, ErrTextNotFound)
}

// Set replaces the text for id until the override is cleared by a new game.
func (b *Base) Set(id, text string) {
	b.overrides[id] = text
}

// Overrides returns the live override map.
func (b *Base) Overrides() map[string]string {
	return b.overrides
}

var (
	textCode     = regexp.MustCompile(`(?i)\\TX\[(.+?)\]`)
	variableCode = regexp.MustCompile(`(?i)\\V\[(\d+)\]`)
	switchCode   = regexp.MustCompile(`(?i)\\S\[(\d+)\]`)
	scriptCode   = regexp.MustCompile(`(?i)\\JS\[(.+?)\]`)
	inlineCode   = regexp.MustCompile(`(?i)\\JS<(.+?)>`)
)

// Expand replaces every control code in text. The first failure stops
// further script evaluation and is returned alongside the partial result.
func (b *Base) Expand(text string) (string, error) {
	var firstErr error
	fail := func(err error) {
		if firstErr == nil {
			firstErr = err
		}
	}

	text = textCode.ReplaceAllStringFunc(text, func(m string) string {
		id := textCode.FindStringSubmatch(m)[1]
		t, err := b.Get(id)
		if err != nil {
			fail(err)
			return ""
		}
		return t
	})

	text = b.convertVariables(text)

	text = scriptCode.ReplaceAllStringFunc(text, func(m string) string {
		if firstErr != nil {
			return ""
		}
		parts := strings.Split(scriptCode.FindStringSubmatch(m)[1], ",")
		script, err := b.Get(strings.TrimSpace(parts[0]))
		if err != nil {
			fail(err)
			return ""
		}
		out, err := b.Eval(b.convertVariables(script), parseArgs(parts[1:]))
		if err != nil {
			fail(err)
			return ""
		}
		return out
	})

	text = inlineCode.ReplaceAllStringFunc(text, func(m string) string {
		if firstErr != nil {
			return ""
		}
		out, err := b.Eval(unescapeXML(inlineCode.FindStringSubmatch(m)[1]), nil)
		if err != nil {
			fail(err)
			return ""
		}
		return out
	})

	return text, firstErr
}

func (b *Base) convertVariables(text string) string {
	text = variableCode.ReplaceAllStringFunc(text, func(m string) string {
		n, _ := strconv.Atoi(variableCode.FindStringSubmatch(m)[1])
		if b.host == nil {
			return "0"
		}
		return strconv.Itoa(b.host.Variable(n))
	})
	return switchCode.ReplaceAllStringFunc(text, func(m string) string {
		n, _ := strconv.Atoi(switchCode.FindStringSubmatch(m)[1])
		if b.host != nil && b.host.Switch(n) {
			return "ON"
		}
		return "OFF"
	})
}

// parseArgs converts script arguments: numbers become numbers, everything
// else stays a string.
func parseArgs(raw []string) []any {
	args := make([]any, 0, len(raw))
	for _, a := range raw {
		a = strings.TrimSpace(a)
		if f, err := strconv.ParseFloat(a, 64); err == nil {
			args = append(args, f)
			continue
		}
		args = append(args, a)
	}
	return args
}

func unescapeXML(s string) string {
	return strings.NewReplacer("&lt;", "<", "&gt;", ">", "&amp;", "&").Replace(s)
}

// Eval runs script with args bound to the global args table and returns
// its result as a string. A script that is a bare expression is evaluated
// as one; otherwise the value of its return statement is used.
func (b *Base) Eval(script string, args []any) (string, error) {
	if !b.allowScripts {
		return "", ErrScriptsDisabled
	}

	L := sandbox.New()
	defer L.Close()

	ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
	defer cancel()
	L.SetContext(ctx)

	L.SetGlobal("args", argsTable(L, args))
	L.SetGlobal("game", b.gameTable(L))

	fn, err := L.LoadString("return " + script)
	if err != nil {
		fn, err = L.LoadString(script)
	}
	if err != nil {
		return "", fmt.Errorf("script syntax: %s: %w", script, err)
	}

	top := L.GetTop()
	L.Push(fn)
	if err := L.PCall(0, lua.MultRet, nil); err != nil {
		b.log.Warn("script failed", "script", script, "error", err)
		return "", fmt.Errorf("script error: %s: %w", script, err)
	}
	if L.GetTop() == top {
		return "", nil
	}
	return luaString(L.Get(top + 1)), nil
}

func argsTable(L *lua.LState, args []any) *lua.LTable {
	tbl := L.NewTable()
	for _, a := range args {
		switch v := a.(type) {
		case float64:
			tbl.Append(lua.LNumber(v))
		case string:
			tbl.Append(lua.LString(v))
		}
	}
	return tbl
}

// gameTable exposes read-only accessors: game.switch(id), game.variable(id).
func (b *Base) gameTable(L *lua.LState) *lua.LTable {
	tbl := L.NewTable()
	tbl.RawSetString("switch", L.NewFunction(func(L *lua.LState) int {
		id := L.CheckInt(1)
		L.Push(lua.LBool(b.host != nil && b.host.Switch(id)))
		return 1
	}))
	tbl.RawSetString("variable", L.NewFunction(func(L *lua.LState) int {
		id := L.CheckInt(1)
		v := 0
		if b.host != nil {
			v = b.host.Variable(id)
		}
		L.Push(lua.LNumber(v))
		return 1
	}))
	return tbl
}

func luaString(v lua.LValue) string {
	switch val := v.(type) {
	case *lua.LNilType:
		return ""
	case lua.LNumber:
		f := float64(val)
		if f == float64(int64(f)) {
			return strconv.FormatInt(int64(f), 10)
		}
		return strconv.FormatFloat(f, 'f', -1, 64)
	default:
		return val.String()
	}
}
