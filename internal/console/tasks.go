package console

import (
	"context"
	"fmt"

	"taskplane/internal/store"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

// Confirmation is a pending delete. Pass Token to ConfirmDelete to proceed.
type Confirmation struct {
	Token  string
	TaskID string
	Prompt string
}

// SetForm replaces the form with user input.
func (c *Console) SetForm(f Form) {
	c.dispatch(FormChanged{Form: f})
}

// Edit loads the task into the form for editing.
func (c *Console) Edit(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	t, ok := c.state.task(id)
	if !ok {
		return store.ErrNotFound
	}
	c.state = Reduce(c.state, EditStarted{Task: t})
	return nil
}

// ResetForm clears the form and the last error.
func (c *Console) ResetForm() {
	c.dispatch(FormReset{})
}

// Submit creates or updates from the current form, depending on whether a
// task is being edited.
func (c *Console) Submit(ctx context.Context) error {
	f := c.State().Form
	if f.EditingID != "" {
		return c.Update(ctx, f.EditingID, f)
	}
	return c.Create(ctx, f)
}

// Create validates f and creates a task from it. A *ValidationError is
// returned synchronously and keeps f in the form. On success the form is
// reset and the list reloaded.
func (c *Console) Create(ctx context.Context, f Form) error {
	f.EditingID = ""
	if err := c.validate(f); err != nil {
		return err
	}

	ctx, span := startOperation(ctx, "console.create")
	c.spawn(func() {
		defer span.End()
		task, err := c.backend.CreateTask(ctx, f.Draft())
		if err != nil {
			c.fail(ctx, newTransportError("create_task", "Unable to create task", err, true))
			return
		}
		c.logFor(ctx).Info("task created", "task_id", task.ID)
		c.dispatch(TaskSaved{ID: task.ID})
		c.Refresh(ctx)
	})
	return nil
}

// Update validates f and replaces the writable fields of task id.
func (c *Console) Update(ctx context.Context, id string, f Form) error {
	f.EditingID = id
	if err := c.validate(f); err != nil {
		return err
	}

	ctx, span := startOperation(ctx, "console.update", attribute.String("task.id", id))
	c.spawn(func() {
		defer span.End()
		draft := f.Draft()
		draft.TaskID = ""
		task, err := c.backend.UpdateTask(ctx, id, draft)
		if err != nil {
			if isNotFound(err) {
				c.dispatch(FormReset{})
				c.vanished(ctx, id)
				return
			}
			c.fail(ctx, newTransportError("update_task", "Unable to update task", err, true))
			return
		}
		c.logFor(ctx).Info("task updated", "task_id", task.ID)
		c.dispatch(TaskSaved{ID: task.ID})
		c.Refresh(ctx)
	})
	return nil
}

func (c *Console) validate(f Form) error {
	err := ValidateForm(f)
	if err == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = Reduce(c.state, FormChanged{Form: f})
	c.state = Reduce(c.state, OperationFailed{Err: err})
	return err
}

// RequestDelete starts the two-step delete of task id. Nothing is deleted
// until the returned token is passed to ConfirmDelete.
func (c *Console) RequestDelete(id string) (Confirmation, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	t, ok := c.state.task(id)
	if !ok {
		return Confirmation{}, store.ErrNotFound
	}
	token := uuid.NewString()
	c.pending[token] = id
	return Confirmation{
		Token:  token,
		TaskID: id,
		Prompt: fmt.Sprintf("Delete task %s?", t.DisplayName),
	}, nil
}

// CancelDelete discards a pending confirmation.
func (c *Console) CancelDelete(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.pending, token)
}

// ConfirmDelete deletes the task bound to token. Each token is accepted once.
// Deleting the selected task clears the selection with its executions and logs.
func (c *Console) ConfirmDelete(ctx context.Context, token string) error {
	c.mu.Lock()
	id, ok := c.pending[token]
	delete(c.pending, token)
	c.mu.Unlock()
	if !ok {
		return ErrUnknownConfirmation
	}

	ctx, span := startOperation(ctx, "console.delete", attribute.String("task.id", id))
	c.spawn(func() {
		defer span.End()
		err := c.backend.DeleteTask(ctx, id)
		if err != nil && !isNotFound(err) {
			c.fail(ctx, newTransportError("delete_task", "Unable to delete task", err, false))
			return
		}
		c.logFor(ctx).Info("task deleted", "task_id", id)
		c.dispatch(TaskRemoved{ID: id})
		c.Refresh(ctx)
	})
	return nil
}

// ReloadTask reads the selected task from the store and replaces its row,
// then reloads its executions and log files. A task the store no longer has
// is dropped from the view.
func (c *Console) ReloadTask(ctx context.Context) error {
	id, err := c.selected()
	if err != nil {
		return err
	}
	token, ok := c.issueFor(id, func(t uint64) Event { return TaskRequested{Token: t, TaskID: id} })
	if !ok {
		return ErrNoSelection
	}

	ctx, span := startOperation(ctx, "console.reload_task", attribute.String("task.id", id))
	c.spawn(func() {
		defer span.End()
		task, err := c.backend.GetTask(ctx, id)
		if err != nil {
			if isNotFound(err) {
				c.vanishedFor(ctx, queryTask, token, id)
				return
			}
			c.failFor(ctx, queryTask, token, id, newTransportError("get_task", "Unable to load task", err, false))
			return
		}
		if !c.applyFor(ctx, queryTask, token, id, TaskLoaded{Token: token, Task: *task}) {
			return
		}

		execToken, ok := c.issueFor(id, func(t uint64) Event { return ExecutionsRequested{Token: t, TaskID: id} })
		if !ok {
			return
		}
		c.loadExecutions(ctx, id, execToken)

		logsToken, ok := c.issueFor(id, func(t uint64) Event { return LogsRequested{Token: t, TaskID: id} })
		if !ok {
			return
		}
		c.loadLogs(ctx, id, logsToken)
	})
	return nil
}
