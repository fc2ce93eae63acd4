package cmd

import (
	"github.com/spf13/cobra"
)

var executionsCmd = &cobra.Command{
	Use:     "executions [task_id]",
	Aliases: []string{"history"},
	Short:   "Show the execution history and log files of a task",
	Args:    cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		taskID := args[0]

		c, err := newConsole(cmd, nil)
		if err != nil {
			printError(cmd, err)
			return
		}
		if !selectTask(commandContext(cmd), cmd, c, taskID) {
			return
		}

		s := c.State()
		task, _ := s.Selected()
		cmd.Printf("%s%s%s (%s) %s%s%s\n", colorBold, task.DisplayName, colorReset, task.ID, colorDim, task.Cron, colorReset)
		cmd.Println("──────────────────────────────")

		if len(s.Executions) == 0 {
			cmd.Println("No executions yet.")
		} else {
			printExecutions(cmd.OutOrStdout(), s.Executions)
		}

		cmd.Println()
		if len(s.Logs) == 0 {
			cmd.Println("No log files.")
			return
		}
		printLogItems(cmd.OutOrStdout(), s.Logs)
	},
}

func init() {
	rootCmd.AddCommand(executionsCmd)
}
