package console

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
)

// LoadLogs reloads the log file list of the selected task.
func (c *Console) LoadLogs(ctx context.Context) error {
	id, err := c.selected()
	if err != nil {
		return err
	}
	token, ok := c.issueFor(id, func(t uint64) Event { return LogsRequested{Token: t, TaskID: id} })
	if !ok {
		return ErrNoSelection
	}
	ctx, span := startOperation(ctx, "console.load_logs", attribute.String("task.id", id))
	c.spawn(func() {
		defer span.End()
		c.loadLogs(ctx, id, token)
	})
	return nil
}

// FetchLog loads the log text of an execution of the selected task, along
// with the execution record when the store still has it. A failed fetch shows
// LogPlaceholder rather than an error.
func (c *Console) FetchLog(ctx context.Context, executionID string) error {
	id, err := c.selected()
	if err != nil {
		return err
	}
	token, ok := c.issueFor(id, func(t uint64) Event {
		return LogTextRequested{Token: t, TaskID: id, ExecutionID: executionID}
	})
	if !ok {
		return ErrNoSelection
	}
	ctx, span := startOperation(ctx, "console.fetch_log",
		attribute.String("task.id", id),
		attribute.String("execution.id", executionID),
	)
	c.spawn(func() {
		defer span.End()
		c.fetchLog(ctx, id, executionID, token)
	})
	return nil
}

func (c *Console) loadLogs(ctx context.Context, taskID string, token uint64) {
	logs, err := c.backend.ListLogs(ctx, taskID)
	if err != nil {
		if isNotFound(err) {
			c.vanishedFor(ctx, queryLogs, token, taskID)
			return
		}
		c.failFor(ctx, queryLogs, token, taskID, newTransportError("list_logs", "Unable to load log files", err, false))
		return
	}
	c.logFor(ctx).Debug("logs loaded", "task_id", taskID, "count", len(logs))
	c.applyFor(ctx, queryLogs, token, taskID, LogsLoaded{Token: token, TaskID: taskID, Logs: logs})
}

func (c *Console) fetchLog(ctx context.Context, taskID, executionID string, token uint64) {
	text, err := c.backend.FetchLog(ctx, taskID, executionID)
	if err != nil {
		c.logFor(ctx).Warn("log fetch failed", "task_id", taskID, "execution_id", executionID, "error", err)
		text = LogPlaceholder
	}
	exec, err := c.backend.GetExecution(ctx, taskID, executionID)
	if err != nil {
		c.logFor(ctx).Debug("execution lookup failed", "task_id", taskID, "execution_id", executionID, "error", err)
		exec = nil
	}
	c.applyFor(ctx, queryLogText, token, taskID, LogTextLoaded{
		Token:       token,
		TaskID:      taskID,
		ExecutionID: executionID,
		Text:        text,
		Execution:   exec,
	})
}
