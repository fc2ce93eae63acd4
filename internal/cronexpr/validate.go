package cronexpr

import (
	"errors"
	"fmt"
	"strings"
)

// FieldCount is the number of fields in a standard cron expression.
const FieldCount = 5

// ErrInvalid is wrapped by every error returned from Validate.
var ErrInvalid = errors.New("invalid cron expression")

// Validate checks that expr consists of exactly five whitespace-separated
// fields with no leading or trailing whitespace. Field contents are not
// interpreted: "99 99 99 * *" passes.
func Validate(expr string) error {
	if expr == "" {
		return fmt.Errorf("%w: empty", ErrInvalid)
	}
	if strings.TrimSpace(expr) != expr {
		return fmt.Errorf("%w: surrounding whitespace", ErrInvalid)
	}
	if n := len(strings.Fields(expr)); n != FieldCount {
		return fmt.Errorf("%w: expected %d fields, got %d", ErrInvalid, FieldCount, n)
	}
	return nil
}

// Valid reports whether Validate accepts expr.
func Valid(expr string) bool {
	return Validate(expr) == nil
}
