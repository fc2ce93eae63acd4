package client

import (
	"context"
	"net/http"
	"net/url"

	"taskplane/internal/store"
	"taskplane/pkg/api"
)

// ListLogs sends GET /scheduled-tasks/{id}/logs.
func (c *TaskClient) ListLogs(ctx context.Context, taskID string) ([]store.LogItem, error) {
	var result api.ListLogsResponse
	if err := c.doJSON(ctx, "list_logs", http.MethodGet, taskPath(taskID, "logs"), nil, &result); err != nil {
		return nil, err
	}

	logs := make([]store.LogItem, len(result.Logs))
	for i, l := range result.Logs {
		logs[i] = store.LogItem{ExecutionID: l.ExecutionID, LogPath: l.LogPath}
	}
	return logs, nil
}

// FetchLog sends GET /scheduled-tasks/{id}/executions/{execution_id}/log.
// The body is plain text and returned unchanged.
func (c *TaskClient) FetchLog(ctx context.Context, taskID, executionID string) (string, error) {
	path := taskPath(taskID, "executions", url.PathEscape(executionID), "log")
	body, err := c.do(ctx, "fetch_log", http.MethodGet, path, nil)
	if err != nil {
		return "", err
	}
	return string(body), nil
}
