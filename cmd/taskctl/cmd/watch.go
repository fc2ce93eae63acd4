package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"taskplane/internal/console"
	"taskplane/internal/observability"
	"taskplane/internal/store"

	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch [task_id]",
	Short: "Follow the executions of a task",
	Long: `Poll a task's execution history and print every new execution and status
change, including the runs the scheduler starts on its own. The first poll
loads the task list; later polls reread only the watched task.

Example:
  taskctl watch heartbeat --interval 10s
  taskctl watch heartbeat --metrics-addr :9090`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		taskID := args[0]
		flags := cmd.Flags()
		interval, _ := flags.GetDuration("interval")
		count, _ := flags.GetInt("count")
		addr, _ := flags.GetString("metrics-addr")

		if interval <= 0 {
			cmd.Println("Error: --interval must be positive")
			return
		}

		// Trap Ctrl+C to exit gracefully
		ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
		defer stop()

		var metrics *observability.Metrics
		if addr != "" {
			m, handler, err := observability.InitMetrics()
			if err != nil {
				printError(cmd, err)
				return
			}
			metrics = m
			srv := serveMetrics(cmd, addr, handler)
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				srv.Shutdown(shutdownCtx)
				m.Shutdown(shutdownCtx)
			}()
			cmd.Printf("Metrics listening on %s/metrics\n", addr)
		}

		c, err := newConsole(cmd, metrics)
		if err != nil {
			printError(cmd, err)
			return
		}

		cmd.Printf("Watching %s every %s. Press Ctrl+C to stop.\n", taskID, interval)
		seen := make(map[string]store.ExecutionStatus)
		for i := 0; count == 0 || i < count; i++ {
			if i > 0 {
				select {
				case <-ctx.Done():
					return
				case <-time.After(interval):
				}
			}

			c.DismissError()
			poll := selectTask
			if _, ok := c.State().Selected(); ok {
				poll = reloadTask
			}
			if !poll(ctx, cmd, c, taskID) {
				if _, ok := c.State().Selected(); !ok && c.State().Err == nil {
					return
				}
				continue
			}
			printChanges(cmd, c.State(), seen)
		}
	},
}

// printChanges prints executions that are new or changed status since the last poll, oldest first.
func printChanges(cmd *cobra.Command, s console.State, seen map[string]store.ExecutionStatus) {
	for i := len(s.Executions) - 1; i >= 0; i-- {
		e := s.Executions[i]
		prev, ok := seen[e.ID]
		if ok && prev == e.Status {
			continue
		}
		seen[e.ID] = e.Status
		if e.Status.Finished() {
			cmd.Printf("%s  %s  %s  finished %s\n", formatTime(&e.StartedAt), e.ID, colorizeStatus(e.Status), formatFinished(e))
			continue
		}
		cmd.Printf("%s  %s  %s\n", formatTime(&e.StartedAt), e.ID, colorizeStatus(e.Status))
	}
}

func serveMetrics(cmd *cobra.Command, addr string, handler http.Handler) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", handler)
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			cmd.PrintErrf("Metrics server stopped: %v\n", err)
		}
	}()
	return srv
}

func init() {
	flags := watchCmd.Flags()
	flags.Duration("interval", 5*time.Second, "Polling interval")
	flags.Int("count", 0, "Stop after N polls (0 polls until interrupted)")
	flags.String("metrics-addr", "", "Serve Prometheus metrics on this address, e.g. :9090")

	rootCmd.AddCommand(watchCmd)
}
