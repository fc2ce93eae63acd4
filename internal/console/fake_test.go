package console

import (
	"context"
	"fmt"
	"sync"
	"time"

	"taskplane/internal/store"

	"go.opentelemetry.io/otel/trace"
)

// fakeBackend is an in-memory Backend. Calls can be held back with gates and
// made to fail with errs, both keyed by "op" or "op:taskID".
type fakeBackend struct {
	mu         sync.Mutex
	tasks      []store.ScheduledTask
	executions map[string][]store.Execution
	logs       map[string][]store.LogItem
	logText    map[string]string
	errs       map[string]error
	gates      map[string][]chan struct{}
	calls      []string
	traces     map[string]trace.TraceID
	seq        int
}

var _ Backend = (*fakeBackend)(nil)

func newFakeBackend(tasks ...store.ScheduledTask) *fakeBackend {
	return &fakeBackend{
		tasks:      tasks,
		executions: make(map[string][]store.Execution),
		logs:       make(map[string][]store.LogItem),
		logText:    make(map[string]string),
		errs:       make(map[string]error),
		gates:      make(map[string][]chan struct{}),
		traces:     make(map[string]trace.TraceID),
	}
}

// hold makes the next call with key block until the returned func is called.
func (f *fakeBackend) hold(key string) (release func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan struct{})
	f.gates[key] = append(f.gates[key], ch)
	var once sync.Once
	return func() { once.Do(func() { close(ch) }) }
}

func (f *fakeBackend) failWith(key string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[key] = err
}

func (f *fakeBackend) setTasks(tasks ...store.ScheduledTask) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks = tasks
}

func (f *fakeBackend) setExecutions(taskID string, execs ...store.Execution) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.executions[taskID] = execs
}

func (f *fakeBackend) setLogs(taskID string, logs ...store.LogItem) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logs[taskID] = logs
}

func (f *fakeBackend) callLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// traceOf returns the trace id the last call with key ran under.
func (f *fakeBackend) traceOf(key string) trace.TraceID {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.traces[key]
}

// enter records the call and returns its gate and configured error.
// Callers hold f.mu.
func (f *fakeBackend) enter(ctx context.Context, key string) (chan struct{}, error) {
	f.calls = append(f.calls, key)
	f.traces[key] = trace.SpanContextFromContext(ctx).TraceID()
	var gate chan struct{}
	if q := f.gates[key]; len(q) > 0 {
		gate = q[0]
		f.gates[key] = q[1:]
	}
	return gate, f.errs[key]
}

func wait(ctx context.Context, gate chan struct{}) error {
	if gate == nil {
		return nil
	}
	select {
	case <-gate:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *fakeBackend) ListTasks(ctx context.Context) ([]store.ScheduledTask, error) {
	f.mu.Lock()
	gate, err := f.enter(ctx, "list_tasks")
	tasks := append([]store.ScheduledTask(nil), f.tasks...)
	f.mu.Unlock()

	if werr := wait(ctx, gate); werr != nil {
		return nil, werr
	}
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

func (f *fakeBackend) GetTask(ctx context.Context, id string) (*store.ScheduledTask, error) {
	f.mu.Lock()
	gate, err := f.enter(ctx, "get_task:" + id)
	var found *store.ScheduledTask
	for _, t := range f.tasks {
		if t.ID == id {
			found = &t
			break
		}
	}
	f.mu.Unlock()

	if werr := wait(ctx, gate); werr != nil {
		return nil, werr
	}
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, store.ErrNotFound
	}
	return found, nil
}

func (f *fakeBackend) CreateTask(ctx context.Context, draft store.TaskDraft) (*store.ScheduledTask, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, err := f.enter(ctx, "create_task"); err != nil {
		return nil, err
	}
	f.seq++
	id := draft.TaskID
	if id == "" {
		id = fmt.Sprintf("task-%d", f.seq)
	}
	now := time.Date(2024, 1, 1, 0, 0, f.seq, 0, time.UTC)
	t := store.ScheduledTask{
		ID:           id,
		DisplayName:  draft.DisplayName,
		FunctionName: draft.FunctionName,
		Cron:         draft.Cron,
		Enabled:      draft.Enabled,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	f.tasks = append(f.tasks, t)
	return &t, nil
}

func (f *fakeBackend) UpdateTask(ctx context.Context, id string, draft store.TaskDraft) (*store.ScheduledTask, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, err := f.enter(ctx, "update_task:" + id); err != nil {
		return nil, err
	}
	for i, t := range f.tasks {
		if t.ID != id {
			continue
		}
		t.DisplayName = draft.DisplayName
		t.FunctionName = draft.FunctionName
		t.Cron = draft.Cron
		t.Enabled = draft.Enabled
		f.tasks[i] = t
		return &t, nil
	}
	return nil, store.ErrNotFound
}

func (f *fakeBackend) DeleteTask(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, err := f.enter(ctx, "delete_task:" + id); err != nil {
		return err
	}
	for i, t := range f.tasks {
		if t.ID == id {
			f.tasks = append(f.tasks[:i:i], f.tasks[i+1:]...)
			delete(f.executions, id)
			delete(f.logs, id)
			return nil
		}
	}
	return store.ErrNotFound
}

func (f *fakeBackend) RunTask(ctx context.Context, taskID string) (*store.Execution, error) {
	f.mu.Lock()
	gate, err := f.enter(ctx, "run_task:" + taskID)
	f.mu.Unlock()

	if werr := wait(ctx, gate); werr != nil {
		return nil, werr
	}
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	exec := store.Execution{
		ID:        fmt.Sprintf("exec-%d", f.seq),
		TaskID:    taskID,
		Status:    store.ExecutionStatusRunning,
		StartedAt: time.Date(2024, 1, 2, 0, 0, f.seq, 0, time.UTC),
		LogPath:   fmt.Sprintf("logs/%s/exec-%d.log", taskID, f.seq),
	}
	f.executions[taskID] = append([]store.Execution{exec}, f.executions[taskID]...)
	f.logs[taskID] = append([]store.LogItem{{ExecutionID: exec.ID, LogPath: exec.LogPath}}, f.logs[taskID]...)
	f.logText[exec.ID] = "started " + taskID
	return &exec, nil
}

func (f *fakeBackend) ListExecutions(ctx context.Context, taskID string) ([]store.Execution, error) {
	f.mu.Lock()
	gate, err := f.enter(ctx, "list_executions:" + taskID)
	execs := append([]store.Execution(nil), f.executions[taskID]...)
	f.mu.Unlock()

	if werr := wait(ctx, gate); werr != nil {
		return nil, werr
	}
	if err != nil {
		return nil, err
	}
	return execs, nil
}

func (f *fakeBackend) GetExecution(ctx context.Context, taskID, executionID string) (*store.Execution, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, err := f.enter(ctx, "get_execution:" + taskID); err != nil {
		return nil, err
	}
	for _, e := range f.executions[taskID] {
		if e.ID == executionID {
			return &e, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeBackend) ListLogs(ctx context.Context, taskID string) ([]store.LogItem, error) {
	f.mu.Lock()
	gate, err := f.enter(ctx, "list_logs:" + taskID)
	logs := append([]store.LogItem(nil), f.logs[taskID]...)
	f.mu.Unlock()

	if werr := wait(ctx, gate); werr != nil {
		return nil, werr
	}
	if err != nil {
		return nil, err
	}
	return logs, nil
}

func (f *fakeBackend) FetchLog(ctx context.Context, taskID, executionID string) (string, error) {
	f.mu.Lock()
	gate, err := f.enter(ctx, "fetch_log:" + taskID)
	text, ok := f.logText[executionID]
	f.mu.Unlock()

	if werr := wait(ctx, gate); werr != nil {
		return "", werr
	}
	if err != nil {
		return "", err
	}
	if !ok {
		return "", store.ErrNotFound
	}
	return text, nil
}

func task(id, name string) store.ScheduledTask {
	return store.ScheduledTask{
		ID:           id,
		DisplayName:  name,
		FunctionName: "jobs." + id,
		Cron:         "*/5 * * * *",
		Enabled:      true,
	}
}

func execution(taskID, id string, status store.ExecutionStatus) store.Execution {
	return store.Execution{
		ID:        id,
		TaskID:    taskID,
		Status:    status,
		StartedAt: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
		LogPath:   "logs/" + taskID + "/" + id + ".log",
	}
}
