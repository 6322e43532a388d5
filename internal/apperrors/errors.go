package apperrors

import "fmt"

// ErrNotFound represents an error when a requested resource is not found.
type ErrNotFound struct {
	Resource string
	ID       interface{}
}

// Error implements the error interface.
func (e *ErrNotFound) Error() string {
	if e.ID != nil {
		return fmt.Sprintf("%s with ID %v not found", e.Resource, e.ID)
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// Is allows for error checking with errors.Is().
func (e *ErrNotFound) Is(target error) bool {
	_, ok := target.(*ErrNotFound)
	return ok
}

// NewNotFoundError creates a new ErrNotFound.
func NewNotFoundError(resource string, id interface{}) *ErrNotFound {
	return &ErrNotFound{
		Resource: resource,
		ID:       id,
	}
}

// NewCaptionsNotFoundError creates a specific error for a video without any caption track.
func NewCaptionsNotFoundError(videoID string) *ErrNotFound {
	return &ErrNotFound{
		Resource: "captions for video",
		ID:       videoID,
	}
}

// ErrValidation is returned when a request is rejected before any I/O happens,
// e.g. no caption or no format was selected.
type ErrValidation struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ErrValidation) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// Is allows for error checking with errors.Is().
func (e *ErrValidation) Is(target error) bool {
	_, ok := target.(*ErrValidation)
	return ok
}

// NewValidationError creates a new ErrValidation.
func NewValidationError(field, message string) *ErrValidation {
	return &ErrValidation{Field: field, Message: message}
}

// ErrNetwork is returned when an upstream call fails or answers with a non-success status.
type ErrNetwork struct {
	URL        string
	StatusCode int
	Err        error
}

// Error implements the error interface.
func (e *ErrNetwork) Error() string {
	switch {
	case e.StatusCode != 0:
		return fmt.Sprintf("request to %s returned status %d", e.URL, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("request to %s failed: %v", e.URL, e.Err)
	default:
		return fmt.Sprintf("request to %s failed", e.URL)
	}
}

// Unwrap exposes the transport error, if any.
func (e *ErrNetwork) Unwrap() error {
	return e.Err
}

// Is allows for error checking with errors.Is().
func (e *ErrNetwork) Is(target error) bool {
	_, ok := target.(*ErrNetwork)
	return ok
}

// ErrConfig is returned when a required setting such as the API key is missing.
// It is fatal for the whole operation.
type ErrConfig struct {
	Key string
}

// Error implements the error interface.
func (e *ErrConfig) Error() string {
	return fmt.Sprintf("required configuration %q is not set", e.Key)
}

// Is allows for error checking with errors.Is().
func (e *ErrConfig) Is(target error) bool {
	_, ok := target.(*ErrConfig)
	return ok
}

// ErrInvalidTransition is returned when a download item is asked to move
// to a state its lifecycle does not allow.
type ErrInvalidTransition struct {
	From string
	To   string
}

// Error implements the error interface.
func (e *ErrInvalidTransition) Error() string {
	return fmt.Sprintf("invalid download item transition from %s to %s", e.From, e.To)
}

// Is allows for error checking with errors.Is().
func (e *ErrInvalidTransition) Is(target error) bool {
	_, ok := target.(*ErrInvalidTransition)
	return ok
}

// ErrBatchRunning is returned when a batch is started while another one is still running.
type ErrBatchRunning struct {
	JobID string
}

// Error implements the error interface.
func (e *ErrBatchRunning) Error() string {
	return fmt.Sprintf("batch %s is still running", e.JobID)
}

// Is allows for error checking with errors.Is().
func (e *ErrBatchRunning) Is(target error) bool {
	_, ok := target.(*ErrBatchRunning)
	return ok
}
