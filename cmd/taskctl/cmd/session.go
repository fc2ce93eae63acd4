package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"taskplane/internal/client"
	"taskplane/internal/config"
	"taskplane/internal/console"
	"taskplane/internal/logger"
	"taskplane/internal/observability"
	"taskplane/internal/store"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// shutdownTracer flushes the spans of the running command.
var shutdownTracer func(context.Context) error

// newConsole builds a console over the HTTP client from the current configuration.
// m may be nil.
func newConsole(cmd *cobra.Command, m *observability.Metrics) (*console.Console, error) {
	cfg, err := config.FromViper(viper.GetViper(), cfgFile)
	if err != nil {
		return nil, err
	}

	shutdown, err := observability.InitTracer(commandContext(cmd), "taskctl", cfg.OTLPEndpoint)
	if err != nil {
		return nil, err
	}
	shutdownTracer = shutdown

	log := logger.NewWithWriter(cmd.ErrOrStderr(), cfg.LogLevel)
	tc := client.New(cfg.URL, cfg.Token,
		client.WithTimeout(cfg.Timeout),
		client.WithRateLimit(cfg.RateLimit, cfg.RateBurst),
		client.WithMetrics(m),
		client.WithLogger(log),
	)
	return console.New(tc, console.WithLogger(log), console.WithMetrics(m)), nil
}

func stopTracing() {
	if shutdownTracer == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	shutdownTracer(ctx)
	shutdownTracer = nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func printError(cmd *cobra.Command, err error) {
	var te *console.TransportError
	if errors.As(err, &te) {
		cmd.Printf("Error: %s\n", te.Cause())
		return
	}
	cmd.Printf("Error: %v\n", err)
}

// failed prints the console's operation error, if any.
func failed(cmd *cobra.Command, c *console.Console) bool {
	if err := c.State().Err; err != nil {
		printError(cmd, err)
		return true
	}
	return false
}

// refresh loads the task list and waits for it.
func refresh(ctx context.Context, cmd *cobra.Command, c *console.Console) bool {
	c.Refresh(ctx)
	c.Wait()
	return !failed(cmd, c)
}

// selectTask loads the task list, selects taskID and waits for its
// executions and log files.
func selectTask(ctx context.Context, cmd *cobra.Command, c *console.Console, taskID string) bool {
	if !refresh(ctx, cmd, c) {
		return false
	}
	if err := c.Select(ctx, taskID); err != nil {
		cmd.Printf("Error: %s\n", notFound(taskID))
		return false
	}
	c.Wait()
	if _, ok := c.State().Selected(); !ok {
		cmd.Printf("Error: %s\n", notFound(taskID))
		return false
	}
	return !failed(cmd, c)
}

// reloadTask rereads the selected task and waits for its executions and log files.
func reloadTask(ctx context.Context, cmd *cobra.Command, c *console.Console, taskID string) bool {
	if err := c.ReloadTask(ctx); err != nil {
		printError(cmd, err)
		return false
	}
	c.Wait()
	if _, ok := c.State().Selected(); !ok {
		if c.State().Err == nil {
			cmd.Printf("Error: %s\n", notFound(taskID))
		}
		return false
	}
	return !failed(cmd, c)
}

func findTask(tasks []store.ScheduledTask, id string) store.ScheduledTask {
	for _, t := range tasks {
		if t.ID == id {
			return t
		}
	}
	return store.ScheduledTask{ID: id}
}

func notFound(taskID string) string {
	return fmt.Sprintf("task %s not found", taskID)
}
