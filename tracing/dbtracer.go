package tracing

import (
	"sync"

	"github.com/sarchlab/dmaemul/datarecording"
	"github.com/sarchlab/dmaemul/sim"
	"github.com/tebeka/atexit"
)

type taskTableEntry struct {
	ID        string
	ParentID  string
	Kind      string
	What      string
	Location  string
	StartTime float64
	EndTime   float64
	NumSteps  uint64
	Completed bool
}

// DBTracer is a tracer that can store tasks into a database.
type DBTracer struct {
	mu         sync.Mutex
	timeTeller sim.TimeTeller
	backend    datarecording.DataRecorder
	tableName  string

	tracingTasks map[string]Task
	stepCounts   map[string]uint64
}

// NewDBTracer creates a new DBTracer that records tasks into the "trace"
// table of dataRecorder.
func NewDBTracer(
	timeTeller sim.TimeTeller,
	dataRecorder datarecording.DataRecorder,
) *DBTracer {
	t := &DBTracer{
		timeTeller:   timeTeller,
		backend:      dataRecorder,
		tableName:    "trace",
		tracingTasks: make(map[string]Task),
		stepCounts:   make(map[string]uint64),
	}

	dataRecorder.CreateTable(t.tableName, taskTableEntry{})

	atexit.Register(func() {
		t.Terminate()
	})

	return t
}

// StartTask marks the start of a task.
func (t *DBTracer) StartTask(task Task) {
	startingTaskMustBeValid(task)

	t.mu.Lock()
	defer t.mu.Unlock()

	task.StartTime = t.timeTeller.CurrentTime()
	t.tracingTasks[task.ID] = task
}

func startingTaskMustBeValid(task Task) {
	if task.ID == "" {
		panic("task ID must be set")
	}

	if task.Kind == "" {
		panic("task kind must be set")
	}

	if task.What == "" {
		panic("task what must be set")
	}

	if task.Where == "" {
		panic("task location must be set")
	}
}

// StepTask counts a step of a task.
func (t *DBTracer) StepTask(task Task) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.tracingTasks[task.ID]; ok {
		t.stepCounts[task.ID]++
	}
}

// EndTask marks the end of a task and records it.
func (t *DBTracer) EndTask(task Task) {
	t.mu.Lock()
	defer t.mu.Unlock()

	originalTask, ok := t.tracingTasks[task.ID]
	if !ok {
		return
	}

	originalTask.EndTime = t.timeTeller.CurrentTime()
	t.writeTask(originalTask, true)
}

// Terminate records the unfinished tasks as ending now and flushes the
// backend.
func (t *DBTracer) Terminate() {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.timeTeller.CurrentTime()
	for _, task := range t.tracingTasks {
		task.EndTime = now
		t.writeTask(task, false)
	}

	t.backend.Flush()
}

func (t *DBTracer) writeTask(task Task, completed bool) {
	t.backend.InsertData(t.tableName, taskTableEntry{
		ID:        task.ID,
		ParentID:  task.ParentID,
		Kind:      task.Kind,
		What:      task.What,
		Location:  task.Where,
		StartTime: float64(task.StartTime),
		EndTime:   float64(task.EndTime),
		NumSteps:  t.stepCounts[task.ID],
		Completed: completed,
	})

	delete(t.tracingTasks, task.ID)
	delete(t.stepCounts, task.ID)
}
