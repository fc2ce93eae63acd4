package cmd

import (
	"github.com/spf13/cobra"
)

var updateCmd = &cobra.Command{
	Use:   "update [task_id]",
	Short: "Update a scheduled task",
	Long: `Update a scheduled task. Fields that are not given keep their current value.

Example:
  taskctl update heartbeat --every 10
  taskctl update nightly-report --name "Nightly report (v2)" --disabled`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		taskID := args[0]
		flags := cmd.Flags()

		cron, cronSet, err := scheduleFromFlags(cmd)
		if err != nil {
			printError(cmd, err)
			return
		}

		c, err := newConsole(cmd, nil)
		if err != nil {
			printError(cmd, err)
			return
		}
		if !refresh(commandContext(cmd), cmd, c) {
			return
		}
		if err := c.Edit(taskID); err != nil {
			cmd.Printf("Error: %s\n", notFound(taskID))
			return
		}

		form := c.State().Form
		if flags.Changed("name") {
			form.DisplayName, _ = flags.GetString("name")
		}
		if flags.Changed("function") {
			form.FunctionName, _ = flags.GetString("function")
		}
		if cronSet {
			form.Cron = cron
		}
		form.Enabled = enabledFromFlags(cmd, form.Enabled)

		c.SetForm(form)
		if err := c.Submit(commandContext(cmd)); err != nil {
			printError(cmd, err)
			return
		}
		c.Wait()
		if failed(cmd, c) {
			return
		}

		s := c.State()
		if s.SavedID != taskID {
			cmd.Printf("Error: %s\n", notFound(taskID))
			return
		}
		task := findTask(s.Tasks, taskID)
		cmd.Printf("✓ Task updated!\nID: %s\nName: %s\nCron: %s\nEnabled: %s\n",
			task.ID, task.DisplayName, task.Cron, formatEnabled(task.Enabled))
	},
}

func init() {
	addTaskFlags(updateCmd)
	rootCmd.AddCommand(updateCmd)
}
