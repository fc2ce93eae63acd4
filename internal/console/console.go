package console

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"taskplane/internal/logger"
	"taskplane/internal/observability"
	"taskplane/internal/store"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "taskplane-console"

// Backend is the set of collaborators the console drives.
type Backend interface {
	store.TaskStore
	store.Scheduler
	store.ExecutionStore
	store.LogStore
}

// Console holds the view state for scheduled tasks. Operations return
// immediately; remote calls complete in the background and update the state.
// Use Wait to block until they have settled.
type Console struct {
	backend Backend
	log     *slog.Logger
	metrics *observability.Metrics

	mu      sync.Mutex
	state   State
	seq     uint64
	pending map[string]string // confirmation token -> task id

	wg sync.WaitGroup
}

// Option configures a Console.
type Option func(*Console)

// WithLogger sets the console logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Console) { c.log = l }
}

// WithMetrics counts discarded stale responses in m.
func WithMetrics(m *observability.Metrics) Option {
	return func(c *Console) { c.metrics = m }
}

// New creates a console over backend. Call Refresh to load the task list.
func New(backend Backend, opts ...Option) *Console {
	c := &Console{
		backend: backend,
		log:     logger.Discard(),
		state:   InitialState(),
		pending: make(map[string]string),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns a snapshot of the current state.
func (c *Console) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// Wait blocks until every operation started so far, including the follow-up
// calls it triggers, has completed.
func (c *Console) Wait() {
	c.wg.Wait()
}

// Refresh reloads the task list. A selection whose task is gone is dropped.
func (c *Console) Refresh(ctx context.Context) {
	token := c.issue(func(t uint64) Event { return RefreshRequested{Token: t} })
	ctx, span := startOperation(ctx, "console.refresh")

	c.spawn(func() {
		defer span.End()
		tasks, err := c.backend.ListTasks(ctx)
		if err != nil {
			c.failFor(ctx, queryTasks, token, "", newTransportError("list_tasks", "Unable to load tasks", err, false))
			return
		}
		c.logFor(ctx).Debug("tasks loaded", "count", len(tasks))
		c.applyFor(ctx, queryTasks, token, "", TasksLoaded{Token: token, Tasks: tasks})
	})
}

// Select makes id the selected task and loads its executions and log files.
// It returns store.ErrNotFound when id is not in the task list.
func (c *Console) Select(ctx context.Context, id string) error {
	c.mu.Lock()
	if _, ok := c.state.task(id); !ok {
		c.mu.Unlock()
		return store.ErrNotFound
	}
	execToken := c.next()
	logsToken := c.next()
	c.state = Reduce(c.state, TaskSelected{ID: id, ExecutionsToken: execToken, LogsToken: logsToken})
	c.mu.Unlock()

	ctx, span := startOperation(ctx, "console.select", attribute.String("task.id", id))
	c.spawn(func() {
		defer span.End()
		var loads sync.WaitGroup
		loads.Add(2)
		go func() {
			defer loads.Done()
			c.loadExecutions(ctx, id, execToken)
		}()
		go func() {
			defer loads.Done()
			c.loadLogs(ctx, id, logsToken)
		}()
		loads.Wait()
	})
	return nil
}

// DismissError clears the last operation error.
func (c *Console) DismissError() {
	c.dispatch(ErrorDismissed{})
}

// ClearSelection drops the selection and its executions, logs and log text.
func (c *Console) ClearSelection() {
	c.dispatch(SelectionCleared{})
}

// selected returns the selected task id.
func (c *Console) selected() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.SelectedID == "" {
		return "", ErrNoSelection
	}
	return c.state.SelectedID, nil
}

// next allocates a token. Callers hold c.mu.
func (c *Console) next() uint64 {
	c.seq++
	return c.seq
}

// issue allocates a token and applies the request event built from it.
func (c *Console) issue(mk func(token uint64) Event) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	token := c.next()
	c.state = Reduce(c.state, mk(token))
	return token
}

// issueFor is issue for a query of taskID. It reports false when taskID is no
// longer selected, in which case the request should not be sent.
func (c *Console) issueFor(taskID string, mk func(token uint64) Event) (uint64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.SelectedID != taskID {
		return 0, false
	}
	token := c.next()
	c.state = Reduce(c.state, mk(token))
	return token, true
}

func (c *Console) dispatch(ev Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = Reduce(c.state, ev)
}

// applyFor applies ev only while the response to q is current.
func (c *Console) applyFor(ctx context.Context, q query, token uint64, taskID string, ev Event) bool {
	c.mu.Lock()
	current := c.state.current(q, token, taskID)
	if current {
		c.state = Reduce(c.state, ev)
	}
	c.mu.Unlock()

	if !current {
		c.metrics.ObserveStale(ctx, q.String())
		c.logFor(ctx).Debug("stale response discarded", "query", q.String(), "task_id", taskID, "token", token)
	}
	return current
}

// fail records err as the operation error.
func (c *Console) fail(ctx context.Context, err *TransportError) {
	c.report(ctx, err)
	c.dispatch(OperationFailed{Err: err})
}

// failFor records err only while the response to q is current.
func (c *Console) failFor(ctx context.Context, q query, token uint64, taskID string, err *TransportError) {
	if c.applyFor(ctx, q, token, taskID, OperationFailed{Err: err}) {
		c.report(ctx, err)
	}
}

func (c *Console) report(ctx context.Context, err *TransportError) {
	c.logFor(ctx).Warn("operation failed", "op", err.Op, "error", err.Cause())
	span := trace.SpanFromContext(ctx)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Message)
}

// vanished handles a task the store no longer knows: it is dropped from the
// view and the list is reloaded.
func (c *Console) vanished(ctx context.Context, taskID string) {
	c.logFor(ctx).Debug("task no longer exists", "task_id", taskID)
	c.dispatch(TaskRemoved{ID: taskID})
	c.Refresh(ctx)
}

// vanishedFor is vanished for a response that must still be current.
func (c *Console) vanishedFor(ctx context.Context, q query, token uint64, taskID string) {
	c.mu.Lock()
	current := c.state.current(q, token, taskID)
	c.mu.Unlock()
	if !current {
		c.metrics.ObserveStale(ctx, q.String())
		return
	}
	c.vanished(ctx, taskID)
}

func (c *Console) spawn(fn func()) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		fn()
	}()
}

func (c *Console) logFor(ctx context.Context) *slog.Logger {
	return logger.FromContext(ctx, c.log)
}

// startOperation starts the span of one console operation. The remote calls
// of the operation, including its follow-ups, run under it. Its trace id
// doubles as the request id in logs.
func startOperation(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, name, trace.WithAttributes(attrs...))
	if logger.RequestIDFromContext(ctx) != "" {
		return ctx, span
	}
	requestID := uuid.NewString()
	if sc := span.SpanContext(); sc.HasTraceID() {
		requestID = sc.TraceID().String()
	}
	return logger.WithRequestID(ctx, requestID), span
}

func isNotFound(err error) bool {
	return errors.Is(err, store.ErrNotFound)
}
