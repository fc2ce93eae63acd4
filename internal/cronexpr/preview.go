package cronexpr

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// Preview returns the next n fire times of expr after from.
// It is informational only; an expression can pass Validate and still fail here.
// n <= 0 yields no times.
func Preview(expr string, from time.Time, n int) ([]time.Time, error) {
	if err := Validate(expr); err != nil {
		return nil, err
	}
	if n <= 0 {
		return []time.Time{}, nil
	}

	schedule, err := cron.ParseStandard(expr)
	if err != nil {
		return nil, fmt.Errorf("cannot preview %q: %w", expr, err)
	}

	times := make([]time.Time, 0, n)
	next := from
	for i := 0; i < n; i++ {
		next = schedule.Next(next)
		if next.IsZero() {
			break
		}
		times = append(times, next)
	}
	return times, nil
}
