package cmd

import (
	"bufio"
	"strings"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete [task_id]",
	Short: "Delete a scheduled task and its execution history",
	Long: `Delete a scheduled task. You are asked to confirm unless --yes is given.

Example:
  taskctl delete heartbeat
  taskctl delete heartbeat --yes`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		taskID := args[0]
		yes, _ := cmd.Flags().GetBool("yes")

		c, err := newConsole(cmd, nil)
		if err != nil {
			printError(cmd, err)
			return
		}
		if !refresh(commandContext(cmd), cmd, c) {
			return
		}

		confirmation, err := c.RequestDelete(taskID)
		if err != nil {
			cmd.Printf("Error: %s\n", notFound(taskID))
			return
		}

		if !yes {
			cmd.Printf("%s [y/N]: ", confirmation.Prompt)
			answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			switch strings.ToLower(strings.TrimSpace(answer)) {
			case "y", "yes":
			default:
				c.CancelDelete(confirmation.Token)
				cmd.Println("Aborted.")
				return
			}
		}

		if err := c.ConfirmDelete(commandContext(cmd), confirmation.Token); err != nil {
			printError(cmd, err)
			return
		}
		c.Wait()
		if failed(cmd, c) {
			return
		}
		cmd.Printf("✓ Task %s deleted.\n", taskID)
	},
}

func init() {
	deleteCmd.Flags().BoolP("yes", "y", false, "Delete without asking for confirmation")
	rootCmd.AddCommand(deleteCmd)
}
