package cmd

import (
	"fmt"
	"strings"
	"time"

	"taskplane/internal/cronexpr"

	"github.com/spf13/cobra"
)

// scheduleFlags are mutually exclusive ways to give a task's schedule.
var scheduleFlags = []string{"cron", "every", "hourly", "daily", "weekly", "monthly"}

func addScheduleFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.String("cron", "", "Five-field cron expression, e.g. \"*/5 * * * *\"")
	flags.String("every", "", "Run every N minutes (1-59)")
	flags.String("hourly", "", "Run hourly at minute M (0-59)")
	flags.String("daily", "", "Run daily at HH:MM")
	flags.String("weekly", "", "Run weekly at DAY@HH:MM, e.g. MON@09:00")
	flags.String("monthly", "", "Run monthly at D@HH:MM, e.g. 1@00:00")
}

// scheduleFromFlags returns the cron expression given by the schedule flags.
// ok is false when none of them was set. Preset values outside their range
// fall back to the preset's floor, as the builder does.
func scheduleFromFlags(cmd *cobra.Command) (expr string, ok bool, err error) {
	flags := cmd.Flags()

	var set []string
	for _, name := range scheduleFlags {
		if flags.Changed(name) {
			set = append(set, name)
		}
	}
	switch len(set) {
	case 0:
		return "", false, nil
	case 1:
	default:
		return "", false, fmt.Errorf("only one of --%s may be set", strings.Join(scheduleFlags, ", --"))
	}

	name := set[0]
	raw, _ := flags.GetString(name)
	if name == "cron" {
		return raw, true, nil
	}

	kind, fields, err := presetFields(name, raw)
	if err != nil {
		return "", false, err
	}
	preset, err := cronexpr.ParsePreset(kind, fields)
	if err != nil {
		return "", false, err
	}
	return cronexpr.Build(preset), true, nil
}

func presetFields(name, raw string) (cronexpr.Kind, cronexpr.Fields, error) {
	switch name {
	case "every":
		return cronexpr.KindInterval, cronexpr.Fields{Minutes: raw}, nil
	case "hourly":
		return cronexpr.KindHourly, cronexpr.Fields{Minute: raw}, nil
	case "daily":
		hour, minute := splitClock(raw)
		return cronexpr.KindDaily, cronexpr.Fields{Hour: hour, Minute: minute}, nil
	case "weekly":
		day, clock, found := strings.Cut(raw, "@")
		if !found {
			return "", cronexpr.Fields{}, fmt.Errorf("invalid --weekly %q: expected DAY@HH:MM", raw)
		}
		hour, minute := splitClock(clock)
		return cronexpr.KindWeekly, cronexpr.Fields{Weekday: day, Hour: hour, Minute: minute}, nil
	case "monthly":
		day, clock, found := strings.Cut(raw, "@")
		if !found {
			return "", cronexpr.Fields{}, fmt.Errorf("invalid --monthly %q: expected D@HH:MM", raw)
		}
		hour, minute := splitClock(clock)
		return cronexpr.KindMonthly, cronexpr.Fields{Day: day, Hour: hour, Minute: minute}, nil
	default:
		return "", cronexpr.Fields{}, fmt.Errorf("unknown schedule flag --%s", name)
	}
}

func splitClock(raw string) (hour, minute string) {
	hour, minute, _ = strings.Cut(strings.TrimSpace(raw), ":")
	return hour, minute
}

var cronCmd = &cobra.Command{
	Use:   "cron",
	Short: "Build and check cron schedules",
	Long:  `Compile recurrence presets into five-field cron expressions and check expressions before using them in a task.`,
}

var cronBuildCmd = &cobra.Command{
	Use:   "build",
	Short: "Compile a recurrence preset into a cron expression",
	Long: `Compile a recurrence preset into a five-field cron expression.

Example:
  taskctl cron build --every 15
  taskctl cron build --weekly FRI@17:30 --preview 3`,
	Run: func(cmd *cobra.Command, args []string) {
		expr, ok, err := scheduleFromFlags(cmd)
		if err != nil {
			printError(cmd, err)
			return
		}
		if !ok {
			cmd.Printf("Error: one of --%s is required\n", strings.Join(scheduleFlags, ", --"))
			return
		}

		cmd.Println(expr)

		n, _ := cmd.Flags().GetInt("preview")
		printPreview(cmd, expr, n)
	},
}

var cronValidateCmd = &cobra.Command{
	Use:   "validate [expression]",
	Short: "Check that an expression has exactly five fields",
	Long: `Check that an expression has exactly five whitespace-separated fields.
Field contents are not checked here; the service's scheduler owns cron semantics.

Example:
  taskctl cron validate "0 9 * * MON"`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		expr := args[0]
		if !cronexpr.Valid(expr) {
			cmd.Printf("%s %q: Enter a valid 5-field cron string.\n", statusIcon("failed"), expr)
			return
		}
		cmd.Printf("%s %q is valid\n", statusIcon("success"), expr)

		n, _ := cmd.Flags().GetInt("preview")
		printPreview(cmd, expr, n)
	},
}

func printPreview(cmd *cobra.Command, expr string, n int) {
	if n <= 0 {
		return
	}
	times, err := cronexpr.Preview(expr, time.Now(), n)
	if err != nil {
		cmd.Printf("%sNo preview: %v%s\n", colorDim, err, colorReset)
		return
	}
	cmd.Println("Next runs:")
	for _, t := range times {
		cmd.Printf("  %s\n", t.Format("Mon, 02 Jan 2006 15:04 MST"))
	}
}

func init() {
	addScheduleFlags(cronBuildCmd)
	cronBuildCmd.Flags().Int("preview", 0, "Also list the next N fire times")
	cronValidateCmd.Flags().Int("preview", 0, "Also list the next N fire times")

	cronCmd.AddCommand(cronBuildCmd)
	cronCmd.AddCommand(cronValidateCmd)
	rootCmd.AddCommand(cronCmd)
}
