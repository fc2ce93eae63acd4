package console

import (
	"taskplane/internal/store"
)

// Event is an input to Reduce.
type Event interface {
	event()
}

// RefreshRequested marks Token as the current task list query.
type RefreshRequested struct{ Token uint64 }

// TasksLoaded carries the task list returned for Token.
type TasksLoaded struct {
	Token uint64
	Tasks []store.ScheduledTask
}

// TaskRequested marks Token as the current single-task query.
// It is ignored unless TaskID is still selected.
type TaskRequested struct {
	Token  uint64
	TaskID string
}

// TaskLoaded carries the store's current record of the selected task. It
// replaces the task's row in place and never adds one.
type TaskLoaded struct {
	Token uint64
	Task  store.ScheduledTask
}

// TaskSelected selects ID and marks the dependent queries issued for it.
type TaskSelected struct {
	ID              string
	ExecutionsToken uint64
	LogsToken       uint64
}

// SelectionCleared drops the selection and everything loaded for it.
type SelectionCleared struct{}

// ExecutionsRequested marks Token as the current execution list query.
// It is ignored unless TaskID is still selected.
type ExecutionsRequested struct {
	Token  uint64
	TaskID string
}

// ExecutionsLoaded carries the execution list of TaskID returned for Token.
type ExecutionsLoaded struct {
	Token      uint64
	TaskID     string
	Executions []store.Execution
}

// LogsRequested marks Token as the current log list query.
// It is ignored unless TaskID is still selected.
type LogsRequested struct {
	Token  uint64
	TaskID string
}

// LogsLoaded carries the log list of TaskID returned for Token.
type LogsLoaded struct {
	Token  uint64
	TaskID string
	Logs   []store.LogItem
}

// LogTextRequested marks Token as the current log text query for ExecutionID.
// It is ignored unless TaskID is still selected.
type LogTextRequested struct {
	Token       uint64
	TaskID      string
	ExecutionID string
}

// LogTextLoaded carries log text, or LogPlaceholder when the fetch failed.
// Execution is nil when the execution record could not be read.
type LogTextLoaded struct {
	Token       uint64
	TaskID      string
	ExecutionID string
	Text        string
	Execution   *store.Execution
}

// FormChanged replaces the form with user input.
type FormChanged struct{ Form Form }

// EditStarted loads Task into the form.
type EditStarted struct{ Task store.ScheduledTask }

// FormReset clears the form and the last error.
type FormReset struct{}

// TaskSaved records the id of a created or updated task. The list itself is
// only replaced by TasksLoaded.
type TaskSaved struct{ ID string }

// TaskRemoved drops ID after a delete, or after the store reported it missing.
type TaskRemoved struct{ ID string }

// OperationFailed records a failed operation.
type OperationFailed struct{ Err error }

// ErrorDismissed clears the last error.
type ErrorDismissed struct{}

func (RefreshRequested) event() {}
func (TasksLoaded) event() {}
func (TaskRequested) event() {}
func (TaskLoaded) event() {}
func (TaskSelected) event() {}
func (SelectionCleared) event() {}
func (ExecutionsRequested) event() {}
func (ExecutionsLoaded) event() {}
func (LogsRequested) event() {}
func (LogsLoaded) event() {}
func (LogTextRequested) event() {}
func (LogTextLoaded) event() {}
func (FormChanged) event() {}
func (EditStarted) event() {}
func (FormReset) event() {}
func (TaskSaved) event() {}
func (TaskRemoved) event() {}
func (OperationFailed) event() {}
func (ErrorDismissed) event() {}

// Reduce returns the state after ev. It does not modify s.
func Reduce(s State, ev Event) State {
	s = s.clone()

	switch e := ev.(type) {
	case RefreshRequested:
		s.tokens.tasks = e.Token

	case TasksLoaded:
		if !s.current(queryTasks, e.Token, "") {
			return s
		}
		s.Tasks = dedupe(e.Tasks)
		if _, ok := s.Selected(); s.SelectedID != "" && !ok {
			s = clearSelection(s)
		}
		if id := s.Form.EditingID; id != "" {
			if _, ok := s.task(id); !ok {
				s.Form = EmptyForm()
			}
		}

	case TaskRequested:
		if e.TaskID == s.SelectedID {
			s.tokens.task = e.Token
		}

	case TaskLoaded:
		if !s.current(queryTask, e.Token, e.Task.ID) {
			return s
		}
		for i := range s.Tasks {
			if s.Tasks[i].ID == e.Task.ID {
				s.Tasks[i] = e.Task
				break
			}
		}

	case TaskSelected:
		if e.ID != s.SelectedID {
			s = clearSelection(s)
		}
		s.SelectedID = e.ID
		s.LogText = ""
		s.LogExecutionID = ""
		s.LogExecution = nil
		s.tokens.logText = 0
		s.tokens.task = 0
		s.tokens.executions = e.ExecutionsToken
		s.tokens.logs = e.LogsToken

	case SelectionCleared:
		s = clearSelection(s)

	case ExecutionsRequested:
		if e.TaskID == s.SelectedID {
			s.tokens.executions = e.Token
		}

	case ExecutionsLoaded:
		if s.current(queryExecutions, e.Token, e.TaskID) {
			s.Executions = append([]store.Execution(nil), e.Executions...)
		}

	case LogsRequested:
		if e.TaskID == s.SelectedID {
			s.tokens.logs = e.Token
		}

	case LogsLoaded:
		if s.current(queryLogs, e.Token, e.TaskID) {
			s.Logs = append([]store.LogItem(nil), e.Logs...)
		}

	case LogTextRequested:
		if e.TaskID == s.SelectedID {
			s.tokens.logText = e.Token
			s.LogExecutionID = e.ExecutionID
			s.LogText = ""
			s.LogExecution = nil
		}

	case LogTextLoaded:
		if s.current(queryLogText, e.Token, e.TaskID) {
			s.LogExecutionID = e.ExecutionID
			s.LogText = e.Text
			s.LogExecution = e.Execution
		}

	case FormChanged:
		s.Form = e.Form

	case EditStarted:
		s.Form = Form{
			EditingID:    e.Task.ID,
			DisplayName:  e.Task.DisplayName,
			FunctionName: e.Task.FunctionName,
			Cron:         e.Task.Cron,
			Enabled:      e.Task.Enabled,
		}

	case FormReset:
		s.Form = EmptyForm()
		s.Err = nil

	case TaskSaved:
		s.SavedID = e.ID
		s.Form = EmptyForm()
		s.Err = nil

	case TaskRemoved:
		s.Tasks = remove(s.Tasks, e.ID)
		if s.SelectedID == e.ID {
			s = clearSelection(s)
		}
		if s.Form.EditingID == e.ID {
			s.Form = EmptyForm()
		}

	case OperationFailed:
		s.Err = e.Err

	case ErrorDismissed:
		s.Err = nil
	}
	return s
}

func clearSelection(s State) State {
	s.SelectedID = ""
	s.Executions = nil
	s.Logs = nil
	s.LogText = ""
	s.LogExecutionID = ""
	s.LogExecution = nil
	return s
}

// dedupe keeps the first occurrence of every id.
func dedupe(tasks []store.ScheduledTask) []store.ScheduledTask {
	seen := make(map[string]struct{}, len(tasks))
	out := make([]store.ScheduledTask, 0, len(tasks))
	for _, t := range tasks {
		if _, ok := seen[t.ID]; ok {
			continue
		}
		seen[t.ID] = struct{}{}
		out = append(out, t)
	}
	return out
}

func remove(tasks []store.ScheduledTask, id string) []store.ScheduledTask {
	out := tasks[:0]
	for _, t := range tasks {
		if t.ID != id {
			out = append(out, t)
		}
	}
	return out
}
