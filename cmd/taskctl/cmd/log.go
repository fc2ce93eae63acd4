package cmd

import (
	"github.com/spf13/cobra"
)

var logCmd = &cobra.Command{
	Use:   "log [task_id] [execution_id]",
	Short: "Print the log of an execution",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		taskID, executionID := args[0], args[1]

		c, err := newConsole(cmd, nil)
		if err != nil {
			printError(cmd, err)
			return
		}
		if !selectTask(commandContext(cmd), cmd, c, taskID) {
			return
		}

		if err := c.FetchLog(commandContext(cmd), executionID); err != nil {
			printError(cmd, err)
			return
		}
		c.Wait()

		s := c.State()
		if e := s.LogExecution; e != nil {
			cmd.Printf("%sExecution %s  %s  started %s  finished %s%s\n",
				colorDim, e.ID, e.Status, formatTime(&e.StartedAt), formatFinished(*e), colorReset)
		}
		printLogText(cmd, s.LogText)
	},
}

func printLogText(cmd *cobra.Command, text string) {
	if text == "" {
		return
	}
	cmd.Print(text)
	if text[len(text)-1] != '\n' {
		cmd.Println()
	}
}

func init() {
	rootCmd.AddCommand(logCmd)
}
