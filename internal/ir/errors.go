package ir

import "fmt"

// Configuration error codes
const (
	ErrCodeStateRange    = "STATE_RANGE"
	ErrCodeEventRange    = "EVENT_RANGE"
	ErrCodeBadUnit       = "BAD_UNIT"
	ErrCodeDimension     = "DIMENSION"
	ErrCodePassSelf      = "PASS_SELF"
	ErrCodePassChain     = "PASS_CHAIN"
	ErrCodePassTimeout   = "PASS_TIMEOUT"
	ErrCodePassBound     = "PASS_BOUND"
	ErrCodeTimeoutExists = "TIMEOUT_EXISTS"
	ErrCodeInnerBound    = "INNER_BOUND"
	ErrCodeInnerNotFound = "INNER_NOT_FOUND"
	ErrCodeNoTimer       = "NO_TIMER"
	ErrCodeBadDuration   = "BAD_DURATION"
)

// Runtime error codes
const (
	ErrCodeNotRunning      = "NOT_RUNNING"
	ErrCodeAlreadyRunning  = "ALREADY_RUNNING"
	ErrCodeTimeoutNotArmed = "TIMEOUT_NOT_ARMED"
)

// ConfigError reports a malformed setup call: bad index, conflicting
// descriptor combination, duplicate assignment. It always surfaces
// synchronously from the offending configuration call.
type ConfigError struct {
	Code    string
	Message string
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	return fmt.Sprintf("configuration error: [%s] %s", e.Code, e.Message)
}

func newConfigError(code, message string) *ConfigError {
	return &ConfigError{Code: code, Message: message}
}

func configErrorf(code, format string, args ...any) *ConfigError {
	return &ConfigError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// RuntimeError reports misuse of the runtime API: double start, event
// processed before start, invalid runtime event index. It is distinct from
// ConfigError so callers can tell "my setup is wrong" from "I am driving
// the machine incorrectly".
type RuntimeError struct {
	Code    string
	Message string
}

// Error implements the error interface
func (e *RuntimeError) Error() string {
	return fmt.Sprintf("runtime error: [%s] %s", e.Code, e.Message)
}

// NewRuntimeError builds a RuntimeError with the given code.
func NewRuntimeError(code, message string) *RuntimeError {
	return &RuntimeError{Code: code, Message: message}
}

// RuntimeErrorf builds a RuntimeError with a formatted message.
func RuntimeErrorf(code, format string, args ...any) *RuntimeError {
	return &RuntimeError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// NewConfigError builds a ConfigError with the given code.
func NewConfigError(code, message string) *ConfigError {
	return newConfigError(code, message)
}
