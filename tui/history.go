package tui

import "slices"

// recall keeps submitted command lines for Up/Down browsing. Repeating a
// line moves it to the newest slot instead of storing it twice, so walking
// back and forth over the same tiles does not flood the list. The line being
// typed when browsing starts is kept as the draft and comes back once
// browsing passes the newest entry.
type recall struct {
	lines []string
	limit int
	pos   int // len(lines) while not browsing
	draft string
}

func newRecall(limit int) *recall {
	return &recall{limit: limit}
}

// add records a submitted line and ends browsing.
func (r *recall) add(line string) {
	if i := slices.Index(r.lines, line); i >= 0 {
		r.lines = slices.Delete(r.lines, i, i+1)
	}
	r.lines = append(r.lines, line)
	if over := len(r.lines) - r.limit; over > 0 {
		r.lines = slices.Delete(r.lines, 0, over)
	}
	r.pos = len(r.lines)
	r.draft = ""
}

// older steps back one line. current is saved as the draft when browsing
// starts. It reports false at the oldest line.
func (r *recall) older(current string) (string, bool) {
	if r.pos == 0 {
		return "", false
	}
	if r.pos == len(r.lines) {
		r.draft = current
	}
	r.pos--
	return r.lines[r.pos], true
}

// newer steps forward one line, ending on the draft. It reports false when
// not browsing.
func (r *recall) newer() (string, bool) {
	if r.pos >= len(r.lines) {
		return "", false
	}
	r.pos++
	if r.pos == len(r.lines) {
		return r.draft, true
	}
	return r.lines[r.pos], true
}
