package speech

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyInput is returned by Speak for blank text.
	ErrEmptyInput = errors.New("text to speak is empty")

	// ErrBusy is returned when parameters are changed while speaking.
	ErrBusy = errors.New("parameters cannot change while speaking")

	// ErrVoiceNotFound is returned when selecting an unknown voice.
	ErrVoiceNotFound = errors.New("requested voice not found")

	// ErrNoEngine is returned when a controller is built without an engine.
	ErrNoEngine = errors.New("no speech engine configured")
)

// ErrorCode identifies specific error types.
type ErrorCode string

const (
	ErrorCodeEngineFailure     ErrorCode = "ENGINE_FAILURE"
	ErrorCodeEngineUnavailable ErrorCode = "ENGINE_UNAVAILABLE"
	ErrorCodeInvalidInput      ErrorCode = "INVALID_INPUT"
	ErrorCodeStaleCallback     ErrorCode = "STALE_CALLBACK"
)

// EngineError describes a failure reported by, or while talking to, the
// synthesis engine.
type EngineError struct {
	Code      ErrorCode
	Message   string
	RequestID uint64
	Cause     error
}

// Error implements the error interface.
func (e *EngineError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *EngineError) Unwrap() error {
	return e.Cause
}

// NewEngineError creates an engine error for the given request.
func NewEngineError(code ErrorCode, message string, requestID uint64, cause error) *EngineError {
	return &EngineError{
		Code:      code,
		Message:   message,
		RequestID: requestID,
		Cause:     cause,
	}
}
