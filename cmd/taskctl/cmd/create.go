package cmd

import (
	"taskplane/internal/console"

	"github.com/spf13/cobra"
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new scheduled task",
	Long: `Create a new scheduled task. The schedule is given either as a raw cron
expression or as one of the recurrence presets.

Example:
  taskctl create --name "Heartbeat" --function heartbeat --every 5
  taskctl create --name "Nightly report" --function reports.nightly --cron "30 2 * * *"
  taskctl create --name "Weekly cleanup" --function cleanup.run --weekly SUN@03:00 --disabled`,
	Run: func(cmd *cobra.Command, args []string) {
		flags := cmd.Flags()
		name, _ := flags.GetString("name")
		function, _ := flags.GetString("function")
		id, _ := flags.GetString("id")

		cron, ok, err := scheduleFromFlags(cmd)
		if err != nil {
			printError(cmd, err)
			return
		}
		if !ok {
			cmd.Println("Error: a schedule is required (--cron, --every, --hourly, --daily, --weekly or --monthly)")
			return
		}

		c, err := newConsole(cmd, nil)
		if err != nil {
			printError(cmd, err)
			return
		}

		form := console.Form{
			DisplayName:  name,
			FunctionName: function,
			Cron:         cron,
			Enabled:      enabledFromFlags(cmd, true),
			TaskID:       id,
		}
		if err := c.Create(commandContext(cmd), form); err != nil {
			printError(cmd, err)
			return
		}
		c.Wait()
		if failed(cmd, c) {
			return
		}

		s := c.State()
		cmd.Printf("✓ Task created!\nID: %s\nName: %s\nCron: %s\n", s.SavedID, form.DisplayName, form.Cron)
	},
}

func addTaskFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringP("name", "n", "", "Display name of the task")
	flags.StringP("function", "f", "", "Function the scheduler invokes")
	flags.Bool("enabled", true, "Whether the scheduler fires the task")
	flags.Bool("disabled", false, "Shorthand for --enabled=false")
	addScheduleFlags(cmd)
}

// enabledFromFlags returns the enabled state requested by --enabled/--disabled,
// or current when neither was given.
func enabledFromFlags(cmd *cobra.Command, current bool) bool {
	flags := cmd.Flags()
	if flags.Changed("disabled") {
		disabled, _ := flags.GetBool("disabled")
		return !disabled
	}
	if flags.Changed("enabled") {
		enabled, _ := flags.GetBool("enabled")
		return enabled
	}
	return current
}

func init() {
	addTaskFlags(createCmd)
	createCmd.Flags().String("id", "", "Request a specific task id (optional)")

	rootCmd.AddCommand(createCmd)
}
