package schema

import "fmt"

// Error codes for structured error reporting at the tool boundaries.
// The extraction and layout cores never return errors; malformed input
// degrades to empty or partial output instead.
const (
	ErrCodeValidation = "VALIDATION_ERROR"
	ErrCodeQuery      = "QUERY_ERROR"
	ErrCodeRender     = "RENDER_ERROR"
	ErrCodeNotFound   = "NOT_FOUND"
	ErrCodeSchedule   = "SCHEDULE_ERROR"
)

// FlowlensError is the structured error type for all flowlens boundaries.
type FlowlensError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
	Cause   error          `json:"-"`
}

func (e *FlowlensError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *FlowlensError) Unwrap() error {
	return e.Cause
}

// NewError creates a new FlowlensError.
func NewError(code, message string) *FlowlensError {
	return &FlowlensError{Code: code, Message: message}
}

// NewErrorf creates a new FlowlensError with a formatted message.
func NewErrorf(code, format string, args ...any) *FlowlensError {
	return &FlowlensError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WithCause attaches an underlying cause.
func (e *FlowlensError) WithCause(err error) *FlowlensError {
	e.Cause = err
	return e
}

// WithDetails attaches key-value details.
func (e *FlowlensError) WithDetails(details map[string]any) *FlowlensError {
	e.Details = details
	return e
}
