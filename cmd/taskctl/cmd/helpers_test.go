package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"taskplane/pkg/api"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// resetViper clears viper config and command flags between tests for isolation
func resetViper(t *testing.T) {
	t.Helper()
	viper.Reset()
	viper.SetEnvPrefix("TASKPLANE")
	viper.AutomaticEnv()
	t.Setenv("HOME", t.TempDir())
	cfgFile = ""
	resetFlags(rootCmd)
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

// execute runs taskctl with args against url and returns everything it printed.
func execute(t *testing.T, url, stdin string, args ...string) string {
	t.Helper()
	viper.Set("url", url)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return out.String()
}

// taskService is an in-memory stand-in for the scheduled-task HTTP API.
type taskService struct {
	t *testing.T

	mu         sync.Mutex
	tasks      []api.ScheduledTask
	executions map[string][]api.Execution
	logText    map[string]string
	requests   []string
	traces     []string
	seq        int

	// failures maps "METHOD path" to a status code to answer with.
	failures map[string]int
}

func newTaskService(t *testing.T, tasks ...api.ScheduledTask) (*taskService, *httptest.Server) {
	t.Helper()
	svc := &taskService{
		t:          t,
		tasks:      tasks,
		executions: make(map[string][]api.Execution),
		logText:    make(map[string]string),
		failures:   make(map[string]int),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /scheduled-tasks", svc.listTasks)
	mux.HandleFunc("POST /scheduled-tasks", svc.createTask)
	mux.HandleFunc("GET /scheduled-tasks/{id}", svc.getTask)
	mux.HandleFunc("PUT /scheduled-tasks/{id}", svc.updateTask)
	mux.HandleFunc("DELETE /scheduled-tasks/{id}", svc.deleteTask)
	mux.HandleFunc("POST /scheduled-tasks/{id}/run", svc.runTask)
	mux.HandleFunc("GET /scheduled-tasks/{id}/executions", svc.listExecutions)
	mux.HandleFunc("GET /scheduled-tasks/{id}/executions/{eid}", svc.getExecution)
	mux.HandleFunc("GET /scheduled-tasks/{id}/logs", svc.listLogs)
	mux.HandleFunc("GET /scheduled-tasks/{id}/executions/{eid}/log", svc.fetchLog)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.Path
		svc.mu.Lock()
		svc.requests = append(svc.requests, key)
		svc.traces = append(svc.traces, r.Header.Get("traceparent"))
		status, fail := svc.failures[key]
		svc.mu.Unlock()

		if fail {
			writeDetail(w, status, http.StatusText(status))
			return
		}
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(server.Close)
	return svc, server
}

func (s *taskService) fail(method, path string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method+" "+path] = status
}

func (s *taskService) addExecution(e api.Execution, log string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.executions[e.TaskID] = append([]api.Execution{e}, s.executions[e.TaskID]...)
	s.logText[e.ID] = log
}

func (s *taskService) received(key string) bool {
	return s.count(key) > 0
}

func (s *taskService) count(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, r := range s.requests {
		if r == key {
			n++
		}
	}
	return n
}

// traceparents returns the trace context header of every request, in order.
func (s *taskService) traceparents() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.traces...)
}

func (s *taskService) task(id string) (api.ScheduledTask, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.tasks {
		if t.ID == id {
			return t, true
		}
	}
	return api.ScheduledTask{}, false
}

func (s *taskService) indexOf(id string) int {
	for i, t := range s.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (s *taskService) listTasks(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, api.ListTasksResponse{Tasks: s.tasks})
}

func (s *taskService) getTask(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(r.PathValue("id"))
	if i < 0 {
		writeDetail(w, http.StatusNotFound, "Task not found")
		return
	}
	writeJSON(w, http.StatusOK, s.tasks[i])
}

func (s *taskService) createTask(w http.ResponseWriter, r *http.Request) {
	var payload api.TaskPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if len(strings.Fields(payload.Cron)) != 5 {
		writeDetail(w, http.StatusBadRequest, "Invalid cron expression")
		return
	}
	id := payload.TaskID
	if id == "" {
		s.seq++
		id = fmt.Sprintf("task-%d", s.seq)
	}
	if s.indexOf(id) >= 0 {
		writeDetail(w, http.StatusConflict, "Task id already exists")
		return
	}

	now := api.Timestamp{Time: time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)}
	task := api.ScheduledTask{
		ID:           id,
		DisplayName:  payload.DisplayName,
		FunctionName: payload.FunctionName,
		Cron:         payload.Cron,
		Enabled:      payload.Enabled,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.tasks = append(s.tasks, task)
	writeJSON(w, http.StatusOK, task)
}

func (s *taskService) updateTask(w http.ResponseWriter, r *http.Request) {
	var payload api.TaskPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if payload.TaskID != "" {
		s.t.Errorf("update must not send task_id, got %q", payload.TaskID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(r.PathValue("id"))
	if i < 0 {
		writeDetail(w, http.StatusNotFound, "Task not found")
		return
	}
	task := s.tasks[i]
	task.DisplayName = payload.DisplayName
	task.FunctionName = payload.FunctionName
	task.Cron = payload.Cron
	task.Enabled = payload.Enabled
	s.tasks[i] = task
	writeJSON(w, http.StatusOK, task)
}

func (s *taskService) deleteTask(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := r.PathValue("id")
	i := s.indexOf(id)
	if i < 0 {
		writeDetail(w, http.StatusNotFound, "Task not found")
		return
	}
	s.tasks = append(s.tasks[:i:i], s.tasks[i+1:]...)
	delete(s.executions, id)
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *taskService) runTask(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := r.PathValue("id")
	if s.indexOf(id) < 0 {
		writeDetail(w, http.StatusNotFound, "Task not found")
		return
	}

	s.seq++
	started := time.Date(2024, 5, 1, 9, 0, s.seq, 0, time.UTC)
	finished := api.Timestamp{Time: started.Add(1500 * time.Millisecond)}
	exec := api.Execution{
		ID:         fmt.Sprintf("exec-%d", s.seq),
		TaskID:     id,
		Status:     "success",
		StartedAt:  api.Timestamp{Time: started},
		FinishedAt: &finished,
		LogPath:    fmt.Sprintf("logs/%s/exec-%d.log", id, s.seq),
	}
	s.executions[id] = append([]api.Execution{exec}, s.executions[id]...)
	s.logText[exec.ID] = "hello from " + id
	writeJSON(w, http.StatusOK, exec)
}

func (s *taskService) listExecutions(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := r.PathValue("id")
	if s.indexOf(id) < 0 {
		writeDetail(w, http.StatusNotFound, "Task not found")
		return
	}
	execs := s.executions[id]
	if execs == nil {
		execs = []api.Execution{}
	}
	writeJSON(w, http.StatusOK, api.ListExecutionsResponse{Executions: execs})
}

func (s *taskService) getExecution(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	eid := r.PathValue("eid")
	for _, e := range s.executions[r.PathValue("id")] {
		if e.ID == eid {
			writeJSON(w, http.StatusOK, e)
			return
		}
	}
	writeDetail(w, http.StatusNotFound, "Execution not found")
}

func (s *taskService) listLogs(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := r.PathValue("id")
	if s.indexOf(id) < 0 {
		writeDetail(w, http.StatusNotFound, "Task not found")
		return
	}
	logs := []api.LogItem{}
	for _, e := range s.executions[id] {
		logs = append(logs, api.LogItem{ExecutionID: e.ID, LogPath: e.LogPath})
	}
	writeJSON(w, http.StatusOK, api.ListLogsResponse{Logs: logs})
}

func (s *taskService) fetchLog(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	text, ok := s.logText[r.PathValue("eid")]
	if !ok {
		writeDetail(w, http.StatusNotFound, "Log not found")
		return
	}
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(text))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, api.ErrorResponse{Detail: detail})
}

func sampleTask(id, name, cron string) api.ScheduledTask {
	created := api.Timestamp{Time: time.Date(2024, 4, 1, 12, 0, 0, 0, time.UTC)}
	return api.ScheduledTask{
		ID:           id,
		DisplayName:  name,
		FunctionName: "jobs." + id,
		Cron:         cron,
		Enabled:      true,
		CreatedAt:    created,
		UpdatedAt:    created,
	}
}
