package sequencer

import (
	"errors"
	"fmt"

	"github.com/druarnfield/archie/internal/exec"
)

// InputError reports operator input that failed a step's validation.
type InputError struct {
	Reason string
}

func (e *InputError) Error() string {
	return "invalid input: " + e.Reason
}

// InvalidInput returns an *InputError with the formatted reason.
func InvalidInput(format string, args ...any) error {
	return &InputError{Reason: fmt.Sprintf(format, args...)}
}

// AbortError is returned by Run when a step fails fatally. The persisted
// state still points at the failed step.
type AbortError struct {
	Index int
	Step  string
	Err   error
}

func (e *AbortError) Error() string {
	return fmt.Sprintf("step %d %q failed: %v", e.Index, e.Step, e.Err)
}

func (e *AbortError) Unwrap() error { return e.Err }

// Retryable reports whether err may go away if the operator tries again:
// an external command failure or rejected input. File and state errors are
// never retryable.
func Retryable(err error) bool {
	var cerr *exec.CommandError
	var ierr *InputError
	return errors.As(err, &cerr) || errors.As(err, &ierr)
}

func commandFailed(err error) bool {
	var cerr *exec.CommandError
	return errors.As(err, &cerr)
}
