// Package schedule turns a trigger's schedule into a lazy sequence of
// future fire times with second granularity.
package schedule

import (
	"container/heap"
	"fmt"
	"time"

	"github.com/adhocore/gronx"

	"github.com/cronbackhq/cronback/internal/models"
)

// Iterator walks the UTC timepoints a schedule will fire at, strictly
// after the reference instant it was built from. Peek never consumes;
// Next consumes the tick and the remaining budget; Skip consumes the
// tick but, for recurring schedules, leaves the budget untouched.
type Iterator struct {
	recurring bool

	// Recurring state. current is the instant the next tick is computed
	// after, held in the schedule's timezone.
	cron    string
	loc     *time.Location
	current time.Time
	next    *time.Time

	// RunAt state.
	timepoints *timepointHeap

	remaining *uint64
}

// New builds an iterator for the trigger's schedule. lastRanAt anchors
// the sequence: ticks at or before it are never produced. Callers pass
// nil to start from now (also how fast-forward skips missed runs).
func New(sched *models.Schedule, lastRanAt *time.Time, now time.Time) (*Iterator, error) {
	if sched == nil {
		return nil, fmt.Errorf("trigger has no schedule")
	}

	reference := now
	if lastRanAt != nil {
		reference = *lastRanAt
	}

	switch sched.Type {
	case models.ScheduleTypeRecurring:
		return newRecurring(sched, reference)
	case models.ScheduleTypeRunAt:
		return newRunAt(sched, reference), nil
	default:
		return nil, fmt.Errorf("unknown schedule type: %s", sched.Type)
	}
}

func newRecurring(sched *models.Schedule, reference time.Time) (*Iterator, error) {
	if !gronx.New().IsValid(sched.Cron) {
		return nil, fmt.Errorf("invalid cron expression: %s", sched.Cron)
	}
	loc, err := time.LoadLocation(sched.EffectiveTimezone())
	if err != nil {
		return nil, fmt.Errorf("unrecognized timezone %q: %w", sched.EffectiveTimezone(), err)
	}

	remaining := sched.Remaining
	if remaining == nil && sched.Limit != nil {
		limit := *sched.Limit
		remaining = &limit
	}
	if remaining != nil {
		r := *remaining
		remaining = &r
	}

	it := &Iterator{
		recurring: true,
		cron:      sched.Cron,
		loc:       loc,
		current:   reference.In(loc),
		remaining: remaining,
	}
	it.computeNext()
	return it, nil
}

func newRunAt(sched *models.Schedule, reference time.Time) *Iterator {
	h := &timepointHeap{}
	for _, tp := range sched.Timepoints {
		if tp.After(reference) {
			h.points = append(h.points, tp.UTC())
		}
	}
	heap.Init(h)
	remaining := uint64(len(h.points))
	return &Iterator{timepoints: h, remaining: &remaining}
}

func (it *Iterator) computeNext() {
	next, err := gronx.NextTickAfter(it.cron, it.current, false)
	if err != nil {
		it.next = nil
		return
	}
	utc := next.UTC()
	it.next = &utc
}

func (it *Iterator) exhausted() bool {
	return it.remaining != nil && *it.remaining == 0
}

// Peek returns the next fire instant without consuming it.
func (it *Iterator) Peek() (time.Time, bool) {
	if it.exhausted() {
		return time.Time{}, false
	}
	if it.recurring {
		if it.next == nil {
			return time.Time{}, false
		}
		return *it.next, true
	}
	if len(it.timepoints.points) == 0 {
		return time.Time{}, false
	}
	return it.timepoints.points[0], true
}

// Next consumes the next fire instant, decrementing the remaining
// budget when one is tracked.
func (it *Iterator) Next() (time.Time, bool) {
	tick, ok := it.pop()
	if !ok {
		return time.Time{}, false
	}
	if it.remaining != nil && *it.remaining > 0 {
		*it.remaining--
	}
	return tick, true
}

// Skip consumes the next fire instant without touching the remaining
// budget of a recurring schedule. A skipped explicit timepoint is gone
// either way, so run_at budgets still shrink.
func (it *Iterator) Skip() (time.Time, bool) {
	tick, ok := it.pop()
	if !ok {
		return time.Time{}, false
	}
	if !it.recurring && it.remaining != nil && *it.remaining > 0 {
		*it.remaining--
	}
	return tick, true
}

func (it *Iterator) pop() (time.Time, bool) {
	if it.exhausted() {
		return time.Time{}, false
	}
	if it.recurring {
		if it.next == nil {
			return time.Time{}, false
		}
		tick := *it.next
		it.current = tick.In(it.loc)
		it.computeNext()
		return tick, true
	}
	if len(it.timepoints.points) == 0 {
		return time.Time{}, false
	}
	tick := heap.Pop(it.timepoints).(time.Time)
	return tick, true
}

// Remaining reports the outstanding run budget, nil when unbounded.
func (it *Iterator) Remaining() *uint64 {
	if it.remaining == nil {
		return nil
	}
	r := *it.remaining
	return &r
}

// timepointHeap is a min-heap of explicit fire instants.
type timepointHeap struct {
	points []time.Time
}

func (h *timepointHeap) Len() int           { return len(h.points) }
func (h *timepointHeap) Less(i, j int) bool { return h.points[i].Before(h.points[j]) }
func (h *timepointHeap) Swap(i, j int)      { h.points[i], h.points[j] = h.points[j], h.points[i] }

func (h *timepointHeap) Push(x any) {
	h.points = append(h.points, x.(time.Time))
}

func (h *timepointHeap) Pop() any {
	old := h.points
	n := len(old)
	point := old[n-1]
	h.points = old[:n-1]
	return point
}
