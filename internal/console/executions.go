package console

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
)

// LoadExecutions reloads the execution history of the selected task.
func (c *Console) LoadExecutions(ctx context.Context) error {
	id, err := c.selected()
	if err != nil {
		return err
	}
	token, ok := c.issueFor(id, func(t uint64) Event { return ExecutionsRequested{Token: t, TaskID: id} })
	if !ok {
		return ErrNoSelection
	}
	ctx, span := startOperation(ctx, "console.load_executions", attribute.String("task.id", id))
	c.spawn(func() {
		defer span.End()
		c.loadExecutions(ctx, id, token)
	})
	return nil
}

// RunNow asks the scheduler to run the selected task, then reloads its
// executions and log files and fetches the log of the new execution, in that
// order. The steps after the run are skipped once the task is deselected.
func (c *Console) RunNow(ctx context.Context) error {
	id, err := c.selected()
	if err != nil {
		return err
	}

	ctx, span := startOperation(ctx, "console.run_now", attribute.String("task.id", id))
	c.spawn(func() {
		defer span.End()
		exec, err := c.backend.RunTask(ctx, id)
		if err != nil {
			if isNotFound(err) {
				c.vanished(ctx, id)
				return
			}
			c.fail(ctx, newTransportError("run_task", "Unable to run task", err, false))
			return
		}
		c.logFor(ctx).Info("task run requested", "task_id", id, "execution_id", exec.ID, "status", exec.Status)
		span.SetAttributes(attribute.String("execution.id", exec.ID))

		token, ok := c.issueFor(id, func(t uint64) Event { return ExecutionsRequested{Token: t, TaskID: id} })
		if !ok {
			return
		}
		c.loadExecutions(ctx, id, token)

		token, ok = c.issueFor(id, func(t uint64) Event { return LogsRequested{Token: t, TaskID: id} })
		if !ok {
			return
		}
		c.loadLogs(ctx, id, token)

		token, ok = c.issueFor(id, func(t uint64) Event {
			return LogTextRequested{Token: t, TaskID: id, ExecutionID: exec.ID}
		})
		if !ok {
			return
		}
		c.fetchLog(ctx, id, exec.ID, token)
	})
	return nil
}

func (c *Console) loadExecutions(ctx context.Context, taskID string, token uint64) {
	execs, err := c.backend.ListExecutions(ctx, taskID)
	if err != nil {
		if isNotFound(err) {
			c.vanishedFor(ctx, queryExecutions, token, taskID)
			return
		}
		c.failFor(ctx, queryExecutions, token, taskID, newTransportError("list_executions", "Unable to load executions", err, false))
		return
	}
	c.logFor(ctx).Debug("executions loaded", "task_id", taskID, "count", len(execs))
	c.applyFor(ctx, queryExecutions, token, taskID, ExecutionsLoaded{Token: token, TaskID: taskID, Executions: execs})
}
