package cmd

import (
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List scheduled tasks",
	Run: func(cmd *cobra.Command, args []string) {
		c, err := newConsole(cmd, nil)
		if err != nil {
			printError(cmd, err)
			return
		}
		if !refresh(commandContext(cmd), cmd, c) {
			return
		}

		tasks := c.State().Tasks
		if len(tasks) == 0 {
			cmd.Println("No scheduled tasks found.")
			return
		}
		printTasks(cmd.OutOrStdout(), tasks)
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
