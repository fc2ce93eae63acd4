package console

import (
	"errors"
	"fmt"
)

var (
	// ErrNoSelection is returned by operations that need a selected task.
	ErrNoSelection = errors.New("no task selected")

	// ErrUnknownConfirmation is returned for a delete token that was never issued,
	// was already used or was cancelled.
	ErrUnknownConfirmation = errors.New("unknown or expired delete confirmation")
)

// ValidationError blocks a create or update submission. The form keeps the
// user's input so it can be corrected.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// TransportError is an operation-scoped failure talking to a collaborator.
// Error returns the short user-facing message; the cause is available via Unwrap.
type TransportError struct {
	Op      string
	Message string
	Err     error
}

func (e *TransportError) Error() string {
	return e.Message
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Cause formats the message together with the underlying error.
func (e *TransportError) Cause() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

// detailer is implemented by collaborator errors that carry a server-provided message.
type detailer interface {
	Detail() string
}

func newTransportError(op, fallback string, err error, useDetail bool) *TransportError {
	msg := fallback
	var d detailer
	if useDetail && errors.As(err, &d) && d.Detail() != "" {
		msg = d.Detail()
	}
	return &TransportError{Op: op, Message: msg, Err: err}
}
