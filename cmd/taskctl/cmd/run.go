package cmd

import (
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run [task_id]",
	Short: "Run a task now",
	Long:  `Ask the scheduler to run a task immediately, then show the refreshed execution history and the new execution's log.`,
	Args:  cobra.ExactArgs(1),
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

		if err := c.RunNow(commandContext(cmd)); err != nil {
			printError(cmd, err)
			return
		}
		c.Wait()
		if failed(cmd, c) {
			return
		}

		s := c.State()
		if s.SelectedID == "" {
			cmd.Printf("Error: %s\n", notFound(taskID))
			return
		}

		cmd.Printf("🚀 Execution started!\nID: %s\n", s.LogExecutionID)
		if e := s.LogExecution; e != nil {
			cmd.Printf("Status: %s\n", colorizeStatus(e.Status))
		}

		cmd.Println()
		printExecutions(cmd.OutOrStdout(), s.Executions)

		cmd.Println()
		cmd.Printf("%sLog:%s\n", colorDim, colorReset)
		printLogText(cmd, s.LogText)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}
