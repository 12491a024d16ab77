package tracing

// A Tracer receives the tasks of the domains it is attached to. The methods
// are called on the goroutine that runs the task, so a tracer shared between
// domains must be safe for concurrent use.
type Tracer interface {
	// StartTask is called once when a task begins.
	StartTask(task Task)

	// StepTask is called for every step. Only the latest step is attached.
	StepTask(task Task)

	// EndTask is called once when a task ends. The task carries the ID only.
	EndTask(task Task)
}
