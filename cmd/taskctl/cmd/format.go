package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"taskplane/internal/store"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorBold   = "\033[1m"
	colorDim    = "\033[2m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
)

func statusIcon(status store.ExecutionStatus) string {
	switch status {
	case store.ExecutionStatusSuccess:
		return colorGreen + "✓" + colorReset
	case store.ExecutionStatusFailed:
		return colorRed + "✗" + colorReset
	case store.ExecutionStatusRunning:
		return colorYellow + "⏳" + colorReset
	case store.ExecutionStatusPending:
		return colorCyan + "◯" + colorReset
	default:
		return "•"
	}
}

func colorizeStatus(status store.ExecutionStatus) string {
	icon := statusIcon(status)
	switch status {
	case store.ExecutionStatusSuccess:
		return icon + " " + colorGreen + string(status) + colorReset
	case store.ExecutionStatusFailed:
		return icon + " " + colorRed + string(status) + colorReset
	case store.ExecutionStatusRunning:
		return icon + " " + colorYellow + string(status) + colorReset
	case store.ExecutionStatusPending:
		return icon + " " + colorCyan + string(status) + colorReset
	default:
		return string(status)
	}
}

func formatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02 15:04:05")
}

func relativeTime(t time.Time) string {
	duration := time.Since(t)

	if duration < time.Minute {
		return fmt.Sprintf("%ds", int(duration.Seconds()))
	} else if duration < time.Hour {
		return fmt.Sprintf("%dm", int(duration.Minutes()))
	} else if duration < 24*time.Hour {
		return fmt.Sprintf("%dh", int(duration.Hours()))
	} else {
		days := int(duration.Hours() / 24)
		if days == 1 {
			return "1 day"
		}
		return fmt.Sprintf("%d days", days)
	}
}

func formatLastRun(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "never"
	}
	return fmt.Sprintf("%s (%s ago)", formatTime(t), relativeTime(*t))
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	} else if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	} else if d < time.Hour {
		return fmt.Sprintf("%dm %ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh %dm", int(d.Hours()), int(d.Minutes())%60)
}

func formatEnabled(enabled bool) string {
	if enabled {
		return "yes"
	}
	return "no"
}

func printTasks(out io.Writer, tasks []store.ScheduledTask) {
	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tFUNCTION\tCRON\tENABLED\tLAST RUN")
	for _, t := range tasks {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			t.ID,
			t.DisplayName,
			t.FunctionName,
			t.Cron,
			formatEnabled(t.Enabled),
			formatLastRun(t.LastRun),
		)
	}
	w.Flush()
}

func printExecutions(out io.Writer, executions []store.Execution) {
	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "EXECUTION ID\tSTATUS\tSTARTED\tFINISHED\tLOG")
	for _, e := range executions {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			e.ID,
			e.Status,
			formatTime(&e.StartedAt),
			formatFinished(e),
			e.LogPath,
		)
	}
	w.Flush()
}

func formatFinished(e store.Execution) string {
	if e.FinishedAt == nil {
		return "-"
	}
	if e.StartedAt.IsZero() {
		return formatTime(e.FinishedAt)
	}
	return fmt.Sprintf("%s (%s)", formatTime(e.FinishedAt), formatDuration(e.FinishedAt.Sub(e.StartedAt)))
}

func printLogItems(out io.Writer, logs []store.LogItem) {
	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "EXECUTION ID\tLOG PATH")
	for _, l := range logs {
		fmt.Fprintf(w, "%s\t%s\n", l.ExecutionID, l.LogPath)
	}
	w.Flush()
}
