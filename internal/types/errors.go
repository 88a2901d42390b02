package types

import (
	"errors"
	"fmt"
)

// ErrorCode represents a namespaced error code for pipeline errors.
type ErrorCode string

// Configuration error codes
const (
	CONFIG_LOAD_FAILED       ErrorCode = "CONFIG_LOAD_FAILED"
	CONFIG_PARSE_FAILED      ErrorCode = "CONFIG_PARSE_FAILED"
	CONFIG_VALIDATION_FAILED ErrorCode = "CONFIG_VALIDATION_FAILED"
)

// Language-model error codes
const (
	LLM_PROVIDER_INIT_FAILED ErrorCode = "LLM_PROVIDER_INIT_FAILED"
	LLM_COMPLETION_FAILED    ErrorCode = "LLM_COMPLETION_FAILED"
	LLM_NO_JSON_FOUND        ErrorCode = "LLM_NO_JSON_FOUND"
	LLM_EMPTY_RESPONSE       ErrorCode = "LLM_EMPTY_RESPONSE"
)

// Mission pipeline error codes
const (
	MISSION_GENERATION_FAILED ErrorCode = "MISSION_GENERATION_FAILED"
	MISSION_INVALID           ErrorCode = "MISSION_INVALID"
	MISSION_NOT_PENDING       ErrorCode = "MISSION_NOT_PENDING"
	MISSION_SEGMENT_FAILED    ErrorCode = "MISSION_SEGMENT_FAILED"
)

// Flight interface error codes
const (
	FLIGHT_CONNECT_FAILED  ErrorCode = "FLIGHT_CONNECT_FAILED"
	FLIGHT_NOT_READY       ErrorCode = "FLIGHT_NOT_READY"
	FLIGHT_COMMAND_FAILED  ErrorCode = "FLIGHT_COMMAND_FAILED"
	FLIGHT_COMMAND_TIMEOUT ErrorCode = "FLIGHT_COMMAND_TIMEOUT"
)

// POI registry error codes
const (
	POI_LOAD_FAILED ErrorCode = "POI_LOAD_FAILED"
	POI_NOT_FOUND   ErrorCode = "POI_NOT_FOUND"
)

// PilotError represents a structured error with error code, message, and
// optional cause. It supports error wrapping and retryability hints.
type PilotError struct {
	Code      ErrorCode
	Message   string
	Retryable bool
	Cause     error
}

// Error implements the error interface.
// Format: "[CODE] message" or "[CODE] message: cause" when a cause exists.
func (e *PilotError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/errors.As chains.
func (e *PilotError) Unwrap() error {
	return e.Cause
}

// Is matches another PilotError by error code.
func (e *PilotError) Is(target error) bool {
	var pilotErr *PilotError
	if errors.As(target, &pilotErr) {
		return e.Code == pilotErr.Code
	}
	return false
}

// NewError creates a new non-retryable PilotError.
func NewError(code ErrorCode, message string) *PilotError {
	return &PilotError{
		Code:    code,
		Message: message,
	}
}

// NewRetryableError creates a new retryable PilotError. Use this for
// transient failures that may succeed on retry.
func NewRetryableError(code ErrorCode, message string) *PilotError {
	return &PilotError{
		Code:      code,
		Message:   message,
		Retryable: true,
	}
}

// WrapError creates a non-retryable PilotError that wraps an existing error.
func WrapError(code ErrorCode, message string, cause error) *PilotError {
	return &PilotError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}
