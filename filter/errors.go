package filter

import (
	"errors"
	"fmt"
)

// ErrUnknownPreset is returned when a named filter was never registered
var ErrUnknownPreset = errors.New("unknown filter preset")

type (
	// CompilationError indicates a filter expression could not be compiled
	CompilationError struct {
		Expression string
		Reason     string
		Position   int // -1 if position is unknown
		Err        error
	}

	// EvaluationError indicates a filter failed at runtime on a transaction
	EvaluationError struct {
		Expression    string
		TransactionID string
		Err           error
	}
)

func (e *CompilationError) Error() string {
	if e.Position >= 0 {
		return fmt.Sprintf("compilation error at position %d in '%s': %s", e.Position, e.Expression, e.Reason)
	}
	return fmt.Sprintf("compilation error in '%s': %s", e.Expression, e.Reason)
}

func (e *CompilationError) Unwrap() error {
	return e.Err
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("evaluation error for '%s' on transaction %s: %v", e.Expression, e.TransactionID, e.Err)
}

func (e *EvaluationError) Unwrap() error {
	return e.Err
}
