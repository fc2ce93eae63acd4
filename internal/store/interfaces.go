package store

import (
	"context"
	"errors"
)

// ErrNotFound is matched (via errors.Is) by collaborator errors for a missing task or execution.
var ErrNotFound = errors.New("not found")

// TaskStore handles the persistence of task definitions.
type TaskStore interface {
	// ListTasks returns all tasks in the order the store keeps them.
	ListTasks(ctx context.Context) ([]ScheduledTask, error)

	// GetTask returns a task by its ID.
	GetTask(ctx context.Context, id string) (*ScheduledTask, error)

	// CreateTask inserts a new task and returns it with server-assigned fields.
	CreateTask(ctx context.Context, draft TaskDraft) (*ScheduledTask, error)

	// UpdateTask replaces the writable fields of an existing task.
	UpdateTask(ctx context.Context, id string, draft TaskDraft) (*ScheduledTask, error)

	// DeleteTask removes a task together with its execution history.
	DeleteTask(ctx context.Context, id string) error
}

// Scheduler triggers executions on demand. It also creates executions on its
// own cadence; those are only observed through ExecutionStore.
type Scheduler interface {
	// RunTask requests an immediate execution of the task.
	RunTask(ctx context.Context, taskID string) (*Execution, error)
}

// ExecutionStore exposes execution history.
type ExecutionStore interface {
	// ListExecutions returns a task's executions in server order (newest first).
	ListExecutions(ctx context.Context, taskID string) ([]Execution, error)

	// GetExecution returns a single execution.
	GetExecution(ctx context.Context, taskID, executionID string) (*Execution, error)
}

// LogStore exposes execution logs.
type LogStore interface {
	// ListLogs returns the log artifacts recorded for a task.
	ListLogs(ctx context.Context, taskID string) ([]LogItem, error)

	// FetchLog returns the raw log text of an execution.
	FetchLog(ctx context.Context, taskID, executionID string) (string, error)
}
