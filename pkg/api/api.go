// Package api contains shared JSON request/response structs.
// These mirror the scheduled-task service's HTTP contract.
package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// TaskPayload is the request body for creating or updating a scheduled task.
type TaskPayload struct {
	DisplayName  string `json:"display_name"`
	FunctionName string `json:"function_name"`
	Cron         string `json:"cron"`
	Enabled      bool   `json:"enabled"`
	// TaskID optionally pins the id on create. The server rejects duplicates with 409.
	TaskID string `json:"task_id,omitempty"`
}

// ScheduledTask represents a task in API responses.
type ScheduledTask struct {
	ID           string     `json:"id"`
	DisplayName  string     `json:"display_name"`
	FunctionName string     `json:"function_name"`
	Cron         string     `json:"cron"`
	Enabled      bool       `json:"enabled"`
	CreatedAt    Timestamp  `json:"created_at"`
	UpdatedAt    Timestamp  `json:"updated_at"`
	LastRun      *Timestamp `json:"last_run,omitempty"`
}

// ListTasksResponse is the response body for GET /scheduled-tasks.
type ListTasksResponse struct {
	Tasks []ScheduledTask `json:"tasks"`
}

// Execution represents one run attempt of a task.
type Execution struct {
	ID         string     `json:"id"`
	TaskID     string     `json:"task_id"`
	Status     string     `json:"status"`
	StartedAt  Timestamp  `json:"started_at"`
	FinishedAt *Timestamp `json:"finished_at,omitempty"`
	LogPath    string     `json:"log_path"`
}

// ListExecutionsResponse is the response body for GET /scheduled-tasks/{id}/executions.
type ListExecutionsResponse struct {
	Executions []Execution `json:"executions"`
}

// LogItem points at the log artifact of one execution.
type LogItem struct {
	ExecutionID string `json:"execution_id"`
	LogPath     string `json:"log_path"`
}

// ListLogsResponse is the response body for GET /scheduled-tasks/{id}/logs.
type ListLogsResponse struct {
	Logs []LogItem `json:"logs"`
}

// ErrorResponse is the error body format of the service.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// Timestamp accepts both RFC 3339 and the zone-less "2006-01-02T15:04:05"
// form the service emits.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*t = Timestamp{}
		return nil
	}

	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}
	if raw == "" {
		*t = Timestamp{}
		return nil
	}

	for _, layout := range timestampLayouts {
		if parsed, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("unrecognized timestamp %q", raw)
}

// MarshalJSON implements json.Marshaler.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Format(time.RFC3339Nano))
}
