package review

import (
	"errors"
	"fmt"
)

// Common review simulation errors
var (
	// ErrSimulationFailed is returned when the code-analysis collaborator
	// fails or returns an unusable response. Prior results are unaffected.
	ErrSimulationFailed = errors.New("code review simulation failed")

	// ErrEmptyDiff is returned when no diff text was provided to review.
	ErrEmptyDiff = errors.New("diff text is required")

	// ErrMissingAPIKey is returned when the OpenAI API key is not configured.
	ErrMissingAPIKey = errors.New("OPENAI_API_KEY environment variable is required")
)

// SimulationError wraps errors with context about a failed simulation run.
type SimulationError struct {
	// Op is the operation that failed (e.g., "Review").
	Op string

	// Err is the underlying error.
	Err error

	// Details provides additional context about the failure.
	Details string
}

// Error implements the error interface.
func (e *SimulationError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("review: %s failed: %s: %v", e.Op, e.Details, e.Err)
	}
	return fmt.Sprintf("review: %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *SimulationError) Unwrap() error {
	return e.Err
}

// Is implements error matching for Go 1.13+ error handling.
func (e *SimulationError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// WrapSimulationError wraps an error as a SimulationError if it isn't already one.
func WrapSimulationError(op string, err error, details string) error {
	if err == nil {
		return nil
	}

	var simErr *SimulationError
	if errors.As(err, &simErr) {
		return err
	}

	return &SimulationError{Op: op, Err: err, Details: details}
}
