// Package ir holds the internal representation of a machine configuration:
// the dense transition and allowed matrices, per-state descriptors, display
// names, and the validation rules that run before a machine starts.
package ir

import (
	"fmt"
	"time"
)

// StateID is a dense state index in 0..StateCount-1. Index 0 is the
// initial state.
type StateID int

// EventID is a dense external-event index in 0..EventCount-1, distinct
// from the state index domain.
type EventID int

// Unit is the time unit of a timeout duration.
type Unit int

const (
	// Millisecond timeout unit
	Millisecond Unit = iota
	// Second timeout unit
	Second
	// Minute timeout unit
	Minute
)

// String returns the short name used in dumps and dot files.
func (u Unit) String() string {
	switch u {
	case Millisecond:
		return "ms"
	case Second:
		return "sec"
	case Minute:
		return "min"
	default:
		return "unknown"
	}
}

// Duration converts a count of units to a time.Duration.
func (u Unit) Duration(n int) time.Duration {
	switch u {
	case Millisecond:
		return time.Duration(n) * time.Millisecond
	case Minute:
		return time.Duration(n) * time.Minute
	default:
		return time.Duration(n) * time.Second
	}
}

// ParseUnit parses the short unit names "ms", "sec" and "min".
func ParseUnit(s string) (Unit, error) {
	switch s {
	case "ms":
		return Millisecond, nil
	case "sec":
		return Second, nil
	case "min":
		return Minute, nil
	}
	return 0, newConfigError(ErrCodeBadUnit, fmt.Sprintf("invalid time unit %q", s))
}

// TimerDescriptor is the optional per-state timeout: after Duration Units
// in the state, the machine moves to Next. At most one per state.
type TimerDescriptor struct {
	Enabled  bool
	Duration int
	Unit     Unit
	Next     StateID
}

// InnerTransition is a signal-driven transition descriptor attached to a
// state. It is latched Active by an out-of-band signal and consumed at
// most once.
type InnerTransition struct {
	Event  EventID
	Next   StateID
	Active bool
}

// StateDescriptor groups the per-state configuration that does not live in
// the matrices.
type StateDescriptor struct {
	Timeout    TimerDescriptor
	Pass       bool
	PassTarget StateID
	Inner      []InnerTransition
}

func defaultStateName(i int) string { return fmt.Sprintf("St-%d", i) }

func defaultEventName(i int) string { return fmt.Sprintf("Ev-%d", i) }

// Display names of the two pseudo events used in dumps and telemetry.
const (
	TimeoutTagName = "*Timeout*"
	PassTagName    = "*  AAT  *"
)
