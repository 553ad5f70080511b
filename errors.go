package whaleopt

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is returned (wrapped with detail) when an optimizer is
// constructed with bad bounds, a non-positive population size, or a
// non-positive iteration budget.
var ErrInvalidConfig = errors.New("invalid configuration")

// EvalError reports a failed objective evaluation.  The run that hit it is
// aborted immediately; there is no retry and no partial-result salvage.
type EvalError struct {
	// Index is the position of the failing point within the evaluated batch.
	Index int
	Err   error
}

func (e *EvalError) Error() string {
	return fmt.Sprintf("objective evaluation failed for point %v: %v", e.Index, e.Err)
}

func (e *EvalError) Unwrap() error { return e.Err }
