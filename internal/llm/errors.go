package llm

import "fmt"

// TimeoutError represents a backend call that exceeded its bounded timeout.
// It is deliberately distinct from parse failures: a timed-out call may be
// retried, a malformed response may not.
type TimeoutError struct {
	Operation string
	Cause     error
}

func (e *TimeoutError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("backend timeout during %s: %v", e.Operation, e.Cause)
	}
	return fmt.Sprintf("backend timeout during %s", e.Operation)
}

func (e *TimeoutError) Unwrap() error {
	return e.Cause
}

// UploadError represents a rejected shared-context upload. Fatal for the
// session attempt; no retry policy is implied.
type UploadError struct {
	Message string
	Cause   error
}

func (e *UploadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("context upload failed: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("context upload failed: %s", e.Message)
}

func (e *UploadError) Unwrap() error {
	return e.Cause
}

// APICallError represents a general backend API failure
type APICallError struct {
	Message string
	Cause   error
}

func (e *APICallError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("API call failed: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("API call failed: %s", e.Message)
}

func (e *APICallError) Unwrap() error {
	return e.Cause
}
