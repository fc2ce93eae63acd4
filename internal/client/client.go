// Package client implements the store contracts against the task service's HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"taskplane/internal/logger"
	"taskplane/internal/observability"
	"taskplane/internal/store"
	"taskplane/pkg/api"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

// TaskClient handles API calls to the task service.
// It satisfies store.TaskStore, store.Scheduler, store.ExecutionStore and store.LogStore.
type TaskClient struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client

	limiter *rate.Limiter
	metrics *observability.Metrics
	log     *slog.Logger
}

// Option configures a TaskClient.
type Option func(*TaskClient)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *TaskClient) { c.HTTPClient.Timeout = d }
}

// WithRateLimit throttles outgoing requests. A limit of 0 means unlimited.
func WithRateLimit(limit float64, burst int) Option {
	return func(c *TaskClient) {
		if limit <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(limit), burst)
	}
}

// WithMetrics records every call in m.
func WithMetrics(m *observability.Metrics) Option {
	return func(c *TaskClient) { c.metrics = m }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *slog.Logger) Option {
	return func(c *TaskClient) { c.log = l }
}

// New creates a new client with the given base URL and token.
func New(baseURL, token string, opts ...Option) *TaskClient {
	c := &TaskClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: logger.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// APIError represents an error response from the API.
type APIError struct {
	StatusCode int
	Message    string

	detail string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (%d): %s", e.StatusCode, e.Message)
}

// Detail returns the {"detail": ...} message of the response, if it had one.
func (e *APIError) Detail() string {
	return e.detail
}

// Is lets errors.Is(err, store.ErrNotFound) match 404 responses.
func (e *APIError) Is(target error) bool {
	return target == store.ErrNotFound && e.StatusCode == http.StatusNotFound
}

// newAPIError prefers the service's {"detail": "..."} body over the raw text.
func newAPIError(status int, body []byte) *APIError {
	var resp api.ErrorResponse
	if err := json.Unmarshal(body, &resp); err == nil && resp.Detail != "" {
		return &APIError{StatusCode: status, Message: resp.Detail, detail: resp.Detail}
	}
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		msg = http.StatusText(status)
	}
	return &APIError{StatusCode: status, Message: msg}
}

// do sends a request and returns the response body of a 2xx reply.
// Every call is a client span; its trace context travels in the request headers.
func (c *TaskClient) do(ctx context.Context, op, method, path string, payload any) (respBody []byte, err error) {
	ctx, span := otel.Tracer("taskplane-client").Start(ctx, op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			semconv.HTTPRequestMethodKey.String(method),
			semconv.URLPath(path),
		),
	)
	start := time.Now()
	defer func() {
		c.metrics.ObserveRequest(ctx, op, err, time.Since(start))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	var body io.Reader
	if payload != nil {
		bodyBytes, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(bodyBytes)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	requestID := logger.RequestIDFromContext(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	httpReq.Header.Add("X-Request-ID", requestID)
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(httpReq.Header))
	if c.Token != "" {
		httpReq.Header.Add("Authorization", fmt.Sprintf("Bearer %s", c.Token))
	}
	if payload != nil {
		httpReq.Header.Add("Content-Type", "application/json")
	}

	log := logger.FromContext(logger.WithRequestID(ctx, requestID), c.log)
	log.Debug("request", "op", op, "method", method, "path", path)

	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		log.Debug("request failed", "op", op, "error", err)
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	log.Debug("response", "op", op, "status", resp.StatusCode, "elapsed", time.Since(start))
	span.SetAttributes(semconv.HTTPResponseStatusCode(resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newAPIError(resp.StatusCode, respBody)
	}
	return respBody, nil
}

func (c *TaskClient) doJSON(ctx context.Context, op, method, path string, payload, out any) error {
	respBody, err := c.do(ctx, op, method, path, payload)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func taskPath(taskID string, rest ...string) string {
	parts := append([]string{"/scheduled-tasks", url.PathEscape(taskID)}, rest...)
	return strings.Join(parts, "/")
}
