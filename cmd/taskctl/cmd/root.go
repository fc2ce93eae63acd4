package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "taskctl",
	Short: "Taskctl is a command line tool for managing scheduled tasks",
	Long: `taskctl is the command-line interface for the taskplane scheduled-task service.

A scheduled task names a function and a five-field cron schedule. The service's
scheduler fires enabled tasks on their schedule and records every run as an
execution with its own log file. taskctl manages the task definitions, triggers
runs on demand and inspects execution history and logs.

Common workflows:

  List tasks:
    taskctl list

  Create a task from a recurrence preset:
    taskctl create --name "Nightly report" --function reports.nightly --daily 02:30

  Run a task now and print its log:
    taskctl run <task-id>

  Inspect execution history:
    taskctl executions <task-id>

  Preview a schedule:
    taskctl cron build --weekly MON@09:00 --preview 3

Configuration:
  Settings are read from flags, environment variables, a .env file and
  $HOME/.taskctl.yaml, in that order of precedence:
    TASKPLANE_URL         Service endpoint (default: http://localhost:8000)
    TASKPLANE_TOKEN       Optional bearer token
    TASKPLANE_TIMEOUT     Per-request timeout (default: 30s)
    TASKPLANE_RATE_LIMIT  Max requests per second, 0 for unlimited
    TASKPLANE_LOG_LEVEL   debug, info, warn or error
    TASKPLANE_OTLP_ENDPOINT  OTLP/gRPC collector for client traces`,
	SilenceUsage: true,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		stopTracing()
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.taskctl.yaml)")

	rootCmd.PersistentFlags().String("url", "http://localhost:8000", "Task service URL")
	viper.BindPFlag("url", rootCmd.PersistentFlags().Lookup("url"))

	rootCmd.PersistentFlags().StringP("token", "t", "", "API token for authentication (optional)")
	viper.BindPFlag("token", rootCmd.PersistentFlags().Lookup("token"))

	rootCmd.PersistentFlags().Duration("timeout", 0, "Per-request timeout (default 30s)")
	viper.BindPFlag("timeout", rootCmd.PersistentFlags().Lookup("timeout"))

	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error (default warn)")
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))

	rootCmd.PersistentFlags().String("otlp-endpoint", "", "Export client traces to this OTLP/gRPC collector, e.g. localhost:4317")
	viper.BindPFlag("otlp_endpoint", rootCmd.PersistentFlags().Lookup("otlp-endpoint"))
}
