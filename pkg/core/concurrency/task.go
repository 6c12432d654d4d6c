package concurrency

import "context"

// Task is a unit of work executed by an Executor.
type Task interface {
	// Execute performs the work. ctx carries cancellation from the executor.
	Execute(ctx context.Context) error

	// Name identifies the task in logs.
	Name() string
}

// TaskFunc adapts a function to the Task interface.
type TaskFunc func(ctx context.Context) error

func (f TaskFunc) Execute(ctx context.Context) error { return f(ctx) }

func (f TaskFunc) Name() string { return "TaskFunc" }

// NamedTask wraps a TaskFunc with a descriptive name.
type NamedTask struct {
	name string
	task TaskFunc
}

func NewNamedTask(name string, task TaskFunc) *NamedTask {
	return &NamedTask{name: name, task: task}
}

func (nt *NamedTask) Execute(ctx context.Context) error { return nt.task(ctx) }

func (nt *NamedTask) Name() string { return nt.name }
