package client

import (
	"context"
	"net/http"
	"net/url"

	"taskplane/internal/store"
	"taskplane/pkg/api"
)

// ListExecutions sends GET /scheduled-tasks/{id}/executions.
// The order of the response is kept as-is.
func (c *TaskClient) ListExecutions(ctx context.Context, taskID string) ([]store.Execution, error) {
	var result api.ListExecutionsResponse
	if err := c.doJSON(ctx, "list_executions", http.MethodGet, taskPath(taskID, "executions"), nil, &result); err != nil {
		return nil, err
	}

	executions := make([]store.Execution, len(result.Executions))
	for i, e := range result.Executions {
		executions[i] = toExecution(e)
	}
	return executions, nil
}

// GetExecution sends GET /scheduled-tasks/{id}/executions/{execution_id}.
func (c *TaskClient) GetExecution(ctx context.Context, taskID, executionID string) (*store.Execution, error) {
	var result api.Execution
	path := taskPath(taskID, "executions", url.PathEscape(executionID))
	if err := c.doJSON(ctx, "get_execution", http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	execution := toExecution(result)
	return &execution, nil
}

func toExecution(e api.Execution) store.Execution {
	execution := store.Execution{
		ID:        e.ID,
		TaskID:    e.TaskID,
		Status:    store.ExecutionStatus(e.Status),
		StartedAt: e.StartedAt.Time,
		LogPath:   e.LogPath,
	}
	if e.FinishedAt != nil && !e.FinishedAt.IsZero() {
		finishedAt := e.FinishedAt.Time
		execution.FinishedAt = &finishedAt
	}
	return execution
}
