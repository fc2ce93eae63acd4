package client

import (
	"context"
	"net/http"

	"taskplane/internal/store"
	"taskplane/pkg/api"
)

// ListTasks sends GET /scheduled-tasks.
func (c *TaskClient) ListTasks(ctx context.Context) ([]store.ScheduledTask, error) {
	var result api.ListTasksResponse
	if err := c.doJSON(ctx, "list_tasks", http.MethodGet, "/scheduled-tasks", nil, &result); err != nil {
		return nil, err
	}

	tasks := make([]store.ScheduledTask, len(result.Tasks))
	for i, t := range result.Tasks {
		tasks[i] = toTask(t)
	}
	return tasks, nil
}

// GetTask sends GET /scheduled-tasks/{id}.
func (c *TaskClient) GetTask(ctx context.Context, id string) (*store.ScheduledTask, error) {
	var result api.ScheduledTask
	if err := c.doJSON(ctx, "get_task", http.MethodGet, taskPath(id), nil, &result); err != nil {
		return nil, err
	}
	task := toTask(result)
	return &task, nil
}

// CreateTask sends POST /scheduled-tasks.
func (c *TaskClient) CreateTask(ctx context.Context, draft store.TaskDraft) (*store.ScheduledTask, error) {
	var result api.ScheduledTask
	if err := c.doJSON(ctx, "create_task", http.MethodPost, "/scheduled-tasks", toPayload(draft, true), &result); err != nil {
		return nil, err
	}
	task := toTask(result)
	return &task, nil
}

// UpdateTask sends PUT /scheduled-tasks/{id}.
func (c *TaskClient) UpdateTask(ctx context.Context, id string, draft store.TaskDraft) (*store.ScheduledTask, error) {
	var result api.ScheduledTask
	if err := c.doJSON(ctx, "update_task", http.MethodPut, taskPath(id), toPayload(draft, false), &result); err != nil {
		return nil, err
	}
	task := toTask(result)
	return &task, nil
}

// DeleteTask sends DELETE /scheduled-tasks/{id}.
func (c *TaskClient) DeleteTask(ctx context.Context, id string) error {
	return c.doJSON(ctx, "delete_task", http.MethodDelete, taskPath(id), nil, nil)
}

// RunTask sends POST /scheduled-tasks/{id}/run to trigger an immediate execution.
func (c *TaskClient) RunTask(ctx context.Context, taskID string) (*store.Execution, error) {
	var result api.Execution
	if err := c.doJSON(ctx, "run_task", http.MethodPost, taskPath(taskID, "run"), nil, &result); err != nil {
		return nil, err
	}
	execution := toExecution(result)
	return &execution, nil
}

func toPayload(draft store.TaskDraft, create bool) api.TaskPayload {
	p := api.TaskPayload{
		DisplayName:  draft.DisplayName,
		FunctionName: draft.FunctionName,
		Cron:         draft.Cron,
		Enabled:      draft.Enabled,
	}
	if create {
		p.TaskID = draft.TaskID
	}
	return p
}

func toTask(t api.ScheduledTask) store.ScheduledTask {
	task := store.ScheduledTask{
		ID:           t.ID,
		DisplayName:  t.DisplayName,
		FunctionName: t.FunctionName,
		Cron:         t.Cron,
		Enabled:      t.Enabled,
		CreatedAt:    t.CreatedAt.Time,
		UpdatedAt:    t.UpdatedAt.Time,
	}
	if t.LastRun != nil && !t.LastRun.IsZero() {
		lastRun := t.LastRun.Time
		task.LastRun = &lastRun
	}
	return task
}
