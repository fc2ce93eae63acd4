// Package console is the view-model for scheduled tasks: the task registry
// with its selection and edit form, the execution tracker and log retrieval
// for the selected task.
//
// All state changes go through Reduce. Remote calls run asynchronously and
// their responses are applied only while they are still current: each query
// carries an in-flight token, and responses for a task that is no longer
// selected are discarded.
package console

import (
	"strings"

	"taskplane/internal/cronexpr"
	"taskplane/internal/store"
)

// LogPlaceholder is shown instead of log text when the log cannot be fetched.
const LogPlaceholder = "Unable to load log."

// Form is the create/edit form.
type Form struct {
	// EditingID is the task being edited; empty when creating.
	EditingID    string
	DisplayName  string
	FunctionName string
	Cron         string
	Enabled      bool
	// TaskID optionally pins the id of a new task.
	TaskID string
}

// EmptyForm is the reset state of the form.
func EmptyForm() Form {
	return Form{Enabled: true}
}

// Draft converts the form into the store's writable fields.
func (f Form) Draft() store.TaskDraft {
	return store.TaskDraft{
		DisplayName:  strings.TrimSpace(f.DisplayName),
		FunctionName: strings.TrimSpace(f.FunctionName),
		Cron:         f.Cron,
		Enabled:      f.Enabled,
		TaskID:       strings.TrimSpace(f.TaskID),
	}
}

// ApplyPreset replaces the cron field with the compiled preset.
func (f Form) ApplyPreset(p cronexpr.Preset) Form {
	f.Cron = cronexpr.Build(p)
	return f
}

// ValidateForm checks the required fields and the cron shape.
func ValidateForm(f Form) error {
	if strings.TrimSpace(f.DisplayName) == "" {
		return &ValidationError{Field: "display_name", Message: "Display name is required."}
	}
	if strings.TrimSpace(f.FunctionName) == "" {
		return &ValidationError{Field: "function_name", Message: "Function name is required."}
	}
	if err := cronexpr.Validate(f.Cron); err != nil {
		return &ValidationError{Field: "cron", Message: "Enter a valid 5-field cron string."}
	}
	return nil
}

// State is a snapshot of the view-model.
type State struct {
	// Tasks in the order the Task Store returned them.
	Tasks []store.ScheduledTask

	// SelectedID refers into Tasks; empty when nothing is selected.
	SelectedID string

	// Executions and Logs belong to SelectedID.
	Executions []store.Execution
	Logs       []store.LogItem

	// LogText is the displayed log of LogExecutionID.
	LogText        string
	LogExecutionID string
	// LogExecution is the store's record of LogExecutionID, when it could be read.
	LogExecution *store.Execution

	Form Form

	// SavedID is the task last created or updated through the form.
	SavedID string

	// Err is the last operation failure, a *ValidationError or *TransportError.
	Err error

	tokens tokens
}

// tokens identify the latest request per query.
type tokens struct {
	tasks      uint64
	task       uint64
	executions uint64
	logs       uint64
	logText    uint64
}

type query int

const (
	queryTasks query = iota
	queryTask
	queryExecutions
	queryLogs
	queryLogText
)

func (q query) String() string {
	switch q {
	case queryTasks:
		return "tasks"
	case queryTask:
		return "task"
	case queryExecutions:
		return "executions"
	case queryLogs:
		return "logs"
	case queryLogText:
		return "log_text"
	default:
		return "unknown"
	}
}

// InitialState is the state before the first refresh.
func InitialState() State {
	return State{Form: EmptyForm()}
}

// Selected returns the selected task.
func (s State) Selected() (store.ScheduledTask, bool) {
	if s.SelectedID == "" {
		return store.ScheduledTask{}, false
	}
	return s.task(s.SelectedID)
}

func (s State) task(id string) (store.ScheduledTask, bool) {
	for _, t := range s.Tasks {
		if t.ID == id {
			return t, true
		}
	}
	return store.ScheduledTask{}, false
}

// current reports whether a response to q issued with token for taskID may still be applied.
func (s State) current(q query, token uint64, taskID string) bool {
	switch q {
	case queryTasks:
		return token == s.tokens.tasks
	case queryTask:
		return token == s.tokens.task && taskID == s.SelectedID
	case queryExecutions:
		return token == s.tokens.executions && taskID == s.SelectedID
	case queryLogs:
		return token == s.tokens.logs && taskID == s.SelectedID
	case queryLogText:
		return token == s.tokens.logText && taskID == s.SelectedID
	default:
		return false
	}
}

func (s State) clone() State {
	c := s
	c.Tasks = append([]store.ScheduledTask(nil), s.Tasks...)
	c.Executions = append([]store.Execution(nil), s.Executions...)
	c.Logs = append([]store.LogItem(nil), s.Logs...)
	if s.LogExecution != nil {
		e := *s.LogExecution
		c.LogExecution = &e
	}
	return c
}
