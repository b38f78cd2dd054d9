package ir

import "fmt"

// Warning codes
const (
	WarnUnreachable       = "UNREACHABLE"
	WarnDeadEnd           = "DEAD_END"
	WarnDescriptorDropped = "DESCRIPTOR_DROPPED"
)

// Warning is a non-fatal validation finding. Warnings are reported but
// never block Start.
type Warning struct {
	Code    string
	State   StateID
	Message string
}

// String returns a human-readable representation of the warning
func (w Warning) String() string {
	return fmt.Sprintf("[%s] %s", w.Code, w.Message)
}

// Validate walks the configuration store and returns non-fatal warnings
// (unreachable states, dead ends) plus a fatal ConfigError for
// mutually-exclusive descriptor conflicts. It runs once, inside Start,
// before the initial state action executes.
func Validate(c *Config) ([]Warning, error) {
	for st := 0; st < c.stateCount; st++ {
		sd := c.states[st]
		if !sd.Pass {
			continue
		}
		if sd.PassTarget == StateID(st) {
			return nil, configErrorf(ErrCodePassSelf, "pass-state %d cannot lead to itself", st)
		}
		if c.states[sd.PassTarget].Pass {
			return nil, configErrorf(ErrCodePassChain, "pass-state %d cannot be followed by another pass-state %d", st, sd.PassTarget)
		}
		if sd.Timeout.Enabled {
			return nil, configErrorf(ErrCodePassTimeout, "state %d cannot have both a timeout and a pass-state flag", st)
		}
	}

	var warns []Warning

	// State 0 is the initial state and therefore always reachable.
	unreachable := make(map[StateID]bool)
	for st := 1; st < c.stateCount; st++ {
		if !c.isReachable(StateID(st)) {
			unreachable[StateID(st)] = true
			warns = append(warns, Warning{
				Code:    WarnUnreachable,
				State:   StateID(st),
				Message: fmt.Sprintf("state %d (%s) is unreachable", st, c.stateNames[st]),
			})
		}
	}

	for st := 0; st < c.stateCount; st++ {
		if c.hasExit(StateID(st)) {
			continue
		}
		// A state that cannot be reached does not need an exit; one
		// warning is enough.
		if unreachable[StateID(st)] {
			continue
		}
		warns = append(warns, Warning{
			Code:    WarnDeadEnd,
			State:   StateID(st),
			Message: fmt.Sprintf("state %d (%s) is a dead-end", st, c.stateNames[st]),
		})
	}

	return warns, nil
}

// isReachable reports whether some other state can land on st through an
// allowed external transition, a timeout, a pass-state link or an inner
// transition.
func (c *Config) isReachable(st StateID) bool {
	for i := 0; i < c.stateCount; i++ {
		if StateID(i) == st {
			continue
		}
		for ev := 0; ev < c.eventCount; ev++ {
			if c.allowed[ev][i] && c.transition[ev][i] == st {
				return true
			}
		}
		sd := c.states[i]
		if sd.Timeout.Enabled && sd.Timeout.Next == st {
			return true
		}
		if sd.Pass && sd.PassTarget == st {
			return true
		}
		for _, it := range sd.Inner {
			if it.Next == st {
				return true
			}
		}
	}
	return false
}

// hasExit reports whether st can ever be left: an enabled timeout, a
// pass-state link, or an allowed transition (external or inner) leading
// to a different state.
func (c *Config) hasExit(st StateID) bool {
	sd := c.states[st]
	if sd.Timeout.Enabled {
		return true
	}
	if sd.Pass {
		return true
	}
	for ev := 0; ev < c.eventCount; ev++ {
		if c.allowed[ev][st] && c.transition[ev][st] != st {
			return true
		}
	}
	for _, it := range sd.Inner {
		if it.Next != st {
			return true
		}
	}
	return false
}
