package gridfsm

import "github.com/gridfsm/gridfsm/internal/ir"

// Re-export non-generic types from internal/ir for the public API
type (
	// StateID is a dense state index; index 0 is the initial state
	StateID = ir.StateID
	// EventID is a dense external-event index
	EventID = ir.EventID
	// Unit is the time unit of a timeout duration
	Unit = ir.Unit
	// TimerDescriptor is the per-state timeout descriptor
	TimerDescriptor = ir.TimerDescriptor
	// InnerTransition is a signal-driven transition descriptor
	InnerTransition = ir.InnerTransition
	// StateDescriptor groups the per-state descriptors
	StateDescriptor = ir.StateDescriptor
	// Snapshot is a serializable copy of a configuration
	Snapshot = ir.Snapshot
	// ConfigError reports a malformed setup call
	ConfigError = ir.ConfigError
	// RuntimeError reports misuse of the runtime API
	RuntimeError = ir.RuntimeError
	// Warning is a non-fatal validation finding
	Warning = ir.Warning
)

// Re-export constants
const (
	Millisecond = ir.Millisecond
	Second      = ir.Second
	Minute      = ir.Minute

	ErrCodeStateRange    = ir.ErrCodeStateRange
	ErrCodeEventRange    = ir.ErrCodeEventRange
	ErrCodeBadUnit       = ir.ErrCodeBadUnit
	ErrCodeDimension     = ir.ErrCodeDimension
	ErrCodePassSelf      = ir.ErrCodePassSelf
	ErrCodePassChain     = ir.ErrCodePassChain
	ErrCodePassTimeout   = ir.ErrCodePassTimeout
	ErrCodePassBound     = ir.ErrCodePassBound
	ErrCodeTimeoutExists = ir.ErrCodeTimeoutExists
	ErrCodeInnerBound    = ir.ErrCodeInnerBound
	ErrCodeInnerNotFound = ir.ErrCodeInnerNotFound
	ErrCodeNoTimer       = ir.ErrCodeNoTimer
	ErrCodeBadDuration   = ir.ErrCodeBadDuration

	ErrCodeNotRunning      = ir.ErrCodeNotRunning
	ErrCodeAlreadyRunning  = ir.ErrCodeAlreadyRunning
	ErrCodeTimeoutNotArmed = ir.ErrCodeTimeoutNotArmed

	WarnUnreachable       = ir.WarnUnreachable
	WarnDeadEnd           = ir.WarnDeadEnd
	WarnDescriptorDropped = ir.WarnDescriptorDropped
)

// ParseUnit parses the short unit names "ms", "sec" and "min".
func ParseUnit(s string) (Unit, error) { return ir.ParseUnit(s) }

// Callback is a per-state entry action. It receives the argument stored
// for the state, which persists across runs until reassigned.
type Callback[T any] func(arg T)
