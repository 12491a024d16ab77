package tracing

import (
	"sort"
	"sync"

	"github.com/sarchlab/dmaemul/sim"
)

type interval struct {
	start, end sim.VTimeInSec
}

// BusyTimeTracer measures how long a domain spends on a kind of task. Time
// covered by several overlapping tasks is only counted once.
type BusyTimeTracer struct {
	timeTeller sim.TimeTeller
	filter     TaskFilter

	lock          sync.Mutex
	inflightTasks map[string]sim.VTimeInSec
	finished      []interval
	busyTime      sim.VTimeInSec
}

// NewBusyTimeTracer creates a new BusyTimeTracer
func NewBusyTimeTracer(
	timeTeller sim.TimeTeller,
	filter TaskFilter,
) *BusyTimeTracer {
	return &BusyTimeTracer{
		timeTeller:    timeTeller,
		filter:        filter,
		inflightTasks: make(map[string]sim.VTimeInSec),
	}
}

// BusyTime returns the time covered by the finished tasks, plus the time of
// the tasks still in flight up to now.
func (t *BusyTimeTracer) BusyTime() sim.VTimeInSec {
	t.lock.Lock()
	defer t.lock.Unlock()

	now := t.timeTeller.CurrentTime()
	intervals := append([]interval(nil), t.finished...)
	for _, start := range t.inflightTasks {
		intervals = append(intervals, interval{start: start, end: now})
	}

	return t.busyTime + coveredTime(intervals)
}

// StartTask records the task start time
func (t *BusyTimeTracer) StartTask(task Task) {
	if t.filter != nil && !t.filter(task) {
		return
	}

	now := t.timeTeller.CurrentTime()

	t.lock.Lock()
	t.inflightTasks[task.ID] = now
	t.lock.Unlock()
}

// StepTask does nothing
func (t *BusyTimeTracer) StepTask(_ Task) {
	// Do nothing
}

// EndTask records the end of the task
func (t *BusyTimeTracer) EndTask(task Task) {
	now := t.timeTeller.CurrentTime()

	t.lock.Lock()
	defer t.lock.Unlock()

	start, ok := t.inflightTasks[task.ID]
	if !ok {
		return
	}

	delete(t.inflightTasks, task.ID)
	t.finished = append(t.finished, interval{start: start, end: now})

	t.collapse()
}

// collapse folds the finished intervals into busyTime once no task is in
// flight. Tasks started later cannot overlap them.
func (t *BusyTimeTracer) collapse() {
	if len(t.inflightTasks) > 0 {
		return
	}

	t.busyTime += coveredTime(t.finished)
	t.finished = t.finished[:0]
}

func coveredTime(intervals []interval) sim.VTimeInSec {
	if len(intervals) == 0 {
		return 0
	}

	sort.Slice(intervals, func(i, j int) bool {
		return intervals[i].start < intervals[j].start
	})

	total := sim.VTimeInSec(0)
	current := intervals[0]

	for _, iv := range intervals[1:] {
		if iv.start <= current.end {
			if iv.end > current.end {
				current.end = iv.end
			}

			continue
		}

		total += current.end - current.start
		current = iv
	}

	return total + current.end - current.start
}
