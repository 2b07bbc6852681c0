// Package events queues common events requested by region tracking and
// runs them in request order. Effects produced by a common event do not
// enqueue further common events.
package events

import (
	"github.com/nathoo/regioncore/engine/rules"
	"github.com/nathoo/regioncore/engine/state"
	"github.com/nathoo/regioncore/types"
)

// Queue holds pending common event ids in request order.
type Queue struct {
	pending []int
}

// Enqueue requests that common event id run at the next Dispatch.
// Non-positive ids are ignored.
func (q *Queue) Enqueue(id int) {
	if id <= 0 {
		return
	}
	q.pending = append(q.pending, id)
}

// Len returns the number of pending requests.
func (q *Queue) Len() int {
	return len(q.pending)
}

// Pending returns a copy of the pending ids.
func (q *Queue) Pending() []int {
	return append([]int(nil), q.pending...)
}

// Clear drops every pending request.
func (q *Queue) Clear() {
	q.pending = q.pending[:0]
}

// Next removes and returns the oldest pending id.
func (q *Queue) Next() (int, bool) {
	if len(q.pending) == 0 {
		return 0, false
	}
	id := q.pending[0]
	q.pending = q.pending[1:]
	return id, true
}

// Dispatch runs pending common events one at a time, in request order.
// Each event's conditions are checked against s just before run receives
// its effects, so an earlier event can enable or disable a later one.
// Dispatch returns once the queue is empty, including when run clears it.
// Unknown ids are returned so the caller can report them.
func Dispatch(q *Queue, s *types.State, defs *state.Defs, run func(id int, effects []types.Effect)) (unknown []int) {
	for {
		id, ok := q.Next()
		if !ok {
			return unknown
		}
		ce, ok := defs.CommonEvents[id]
		if !ok {
			unknown = append(unknown, id)
			continue
		}
		if !rules.EvalAllConditions(ce.Conditions, s) {
			continue
		}
		run(id, ce.Effects)
	}
}
