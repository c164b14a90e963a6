package capture

import (
	"errors"
	"fmt"
)

// Common capture errors
var (
	// ErrExtractionFailed is returned when the image-analysis collaborator
	// fails or returns unusable content.
	ErrExtractionFailed = errors.New("bill extraction failed")

	// ErrEmptyExtraction is returned when the collaborator responded but no
	// bill fields could be recovered from the response.
	ErrEmptyExtraction = errors.New("no bill data extracted from image")

	// ErrInvalidPayload is returned when the capture payload is not a
	// decodable image (bad data URI, bad base64, unknown format).
	ErrInvalidPayload = errors.New("invalid capture payload")

	// ErrMissingAPIKey is returned when the OpenAI API key is not configured.
	ErrMissingAPIKey = errors.New("OPENAI_API_KEY environment variable is required")

	// ErrInvalidConfiguration is returned when the Document AI backend
	// configuration is incomplete.
	ErrInvalidConfiguration = errors.New("invalid Document AI configuration")

	// ErrProcessingFailed is returned when Document AI processing fails.
	ErrProcessingFailed = errors.New("document AI processing failed")
)

// ExtractionError wraps errors with context about a failed capture. Its
// message is the user-visible notice for the failed action.
type ExtractionError struct {
	// Op is the operation that failed (e.g., "Capture", "ExtractBill").
	Op string

	// Err is the underlying error.
	Err error

	// Details provides additional context about the failure.
	Details string
}

// Error implements the error interface.
func (e *ExtractionError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("capture: %s failed: %s: %v", e.Op, e.Details, e.Err)
	}
	return fmt.Sprintf("capture: %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// Is implements error matching for Go 1.13+ error handling.
func (e *ExtractionError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// WrapExtractionError wraps an error as an ExtractionError if it isn't already one.
func WrapExtractionError(op string, err error, details string) error {
	if err == nil {
		return nil
	}

	var extractionErr *ExtractionError
	if errors.As(err, &extractionErr) {
		return err
	}

	return &ExtractionError{Op: op, Err: err, Details: details}
}
