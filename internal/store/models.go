// Package store contains the domain model and the contracts of the external
// task, scheduler, execution and log services.
package store

import "time"

// ScheduledTask represents a recurring background job owned by the Task Store.
type ScheduledTask struct {
	ID           string
	DisplayName  string
	FunctionName string // callable the scheduler invokes
	Cron         string // five-field schedule
	Enabled      bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
	LastRun      *time.Time
}

// TaskDraft is the writable part of a ScheduledTask.
type TaskDraft struct {
	DisplayName  string
	FunctionName string
	Cron         string
	Enabled      bool
	// TaskID requests a specific id on create. Ignored on update.
	TaskID string
}

// Execution represents a single observed run of a task.
// Executions are append-only; nothing on this side mutates them.
type Execution struct {
	ID         string
	TaskID     string
	Status     ExecutionStatus
	StartedAt  time.Time
	FinishedAt *time.Time // nil while running
	LogPath    string
}

// ExecutionStatus is defined by the scheduler. Unknown values are kept verbatim.
type ExecutionStatus string

const (
	ExecutionStatusPending ExecutionStatus = "pending"
	ExecutionStatusRunning ExecutionStatus = "running"
	ExecutionStatusSuccess ExecutionStatus = "success"
	ExecutionStatusFailed  ExecutionStatus = "failed"
)

// Finished reports whether the scheduler has recorded a final status.
func (s ExecutionStatus) Finished() bool {
	return s == ExecutionStatusSuccess || s == ExecutionStatusFailed
}

// LogItem references the log artifact of one execution.
type LogItem struct {
	ExecutionID string
	LogPath     string
}
