package ir

import "fmt"

// Config is the configuration store of a machine: the transition and
// allowed matrices (rows are events, columns are states), the per-state
// descriptors and the display names. All mutation goes through methods so
// that index ranges and descriptor exclusivity are checked once, at
// configuration time.
type Config struct {
	stateCount int
	eventCount int

	// transition[event][state] is the destination when the event is
	// honored in the state. Initialized to state 0 everywhere.
	transition [][]StateID
	// allowed[event][state] gates whether the event is honored at all.
	// Initialized to all false: every event is ignored until allowed.
	allowed [][]bool

	states []StateDescriptor

	stateNames []string
	// eventNames has two extra slots for the timeout and pass-state
	// pseudo events, used only in dumps and telemetry.
	eventNames []string

	defaultUnit Unit
}

// NewConfig creates a configuration store for the given state and event
// counts. At least two states are required; a machine with a single state
// cannot transition anywhere.
func NewConfig(stateCount, eventCount int) (*Config, error) {
	if stateCount < 2 {
		return nil, configErrorf(ErrCodeDimension, "need at least two states, got %d", stateCount)
	}
	if eventCount < 0 {
		return nil, configErrorf(ErrCodeDimension, "negative event count %d", eventCount)
	}

	c := &Config{
		stateCount:  stateCount,
		eventCount:  eventCount,
		transition:  make([][]StateID, eventCount),
		allowed:     make([][]bool, eventCount),
		states:      make([]StateDescriptor, stateCount),
		stateNames:  make([]string, stateCount),
		eventNames:  make([]string, eventCount+2),
		defaultUnit: Second,
	}
	for ev := 0; ev < eventCount; ev++ {
		c.transition[ev] = make([]StateID, stateCount)
		c.allowed[ev] = make([]bool, stateCount)
	}
	for i := range c.stateNames {
		c.stateNames[i] = defaultStateName(i)
	}
	for i := 0; i < eventCount; i++ {
		c.eventNames[i] = defaultEventName(i)
	}
	c.eventNames[eventCount] = TimeoutTagName
	c.eventNames[eventCount+1] = PassTagName
	return c, nil
}

// StateCount returns the number of states.
func (c *Config) StateCount() int { return c.stateCount }

// EventCount returns the number of external events.
func (c *Config) EventCount() int { return c.eventCount }

// TimeoutTag is the pseudo-event index used to record timeout-triggered
// transitions in telemetry.
func (c *Config) TimeoutTag() int { return c.eventCount }

// PassTag is the pseudo-event index used to record pass-state transitions
// in telemetry.
func (c *Config) PassTag() int { return c.eventCount + 1 }

// DefaultUnit returns the unit applied when a timeout is assigned without
// an explicit one.
func (c *Config) DefaultUnit() Unit { return c.defaultUnit }

// SetDefaultUnit changes the default timeout unit.
func (c *Config) SetDefaultUnit(u Unit) { c.defaultUnit = u }

func (c *Config) checkState(st StateID) error {
	if st < 0 || int(st) >= c.stateCount {
		return configErrorf(ErrCodeStateRange, "state index %d out of range [0,%d)", st, c.stateCount)
	}
	return nil
}

// CheckState validates a state index.
func (c *Config) CheckState(st StateID) error { return c.checkState(st) }

// CheckEvent validates an event index.
func (c *Config) CheckEvent(ev EventID) error { return c.checkEvent(ev) }

func (c *Config) checkEvent(ev EventID) error {
	if ev < 0 || int(ev) >= c.eventCount {
		return configErrorf(ErrCodeEventRange, "event index %d out of range [0,%d)", ev, c.eventCount)
	}
	return nil
}

// AssignTransition allows event ev in state from and routes it to state
// to. It fails if from has been marked as a pass-state: a pass-state is
// vacated before any external event can be honored there.
func (c *Config) AssignTransition(from StateID, ev EventID, to StateID) error {
	if err := c.checkState(from); err != nil {
		return err
	}
	if err := c.checkState(to); err != nil {
		return err
	}
	if err := c.checkEvent(ev); err != nil {
		return err
	}
	if c.states[from].Pass {
		return configErrorf(ErrCodePassBound, "state %d is a pass-state, external transitions would never fire", from)
	}
	c.transition[ev][from] = to
	c.allowed[ev][from] = true
	return nil
}

// AssignPassState marks from as a pass-state leading to to: the state is
// entered and immediately vacated in the same execution step. Any timeout
// or inner transitions previously configured on from are dropped; the
// returned warnings name what was removed.
func (c *Config) AssignPassState(from, to StateID) ([]Warning, error) {
	if err := c.checkState(from); err != nil {
		return nil, err
	}
	if err := c.checkState(to); err != nil {
		return nil, err
	}
	if from == to {
		return nil, configErrorf(ErrCodePassSelf, "pass-state %d cannot lead to itself", from)
	}

	var warns []Warning
	sd := &c.states[from]
	if sd.Timeout.Enabled {
		warns = append(warns, Warning{
			Code:    WarnDescriptorDropped,
			State:   from,
			Message: fmt.Sprintf("state %d: timeout descriptor dropped by pass-state assignment", from),
		})
		sd.Timeout = TimerDescriptor{}
	}
	if len(sd.Inner) > 0 {
		warns = append(warns, Warning{
			Code:    WarnDescriptorDropped,
			State:   from,
			Message: fmt.Sprintf("state %d: %d inner transition(s) dropped by pass-state assignment", from, len(sd.Inner)),
		})
		sd.Inner = nil
	}
	sd.Pass = true
	sd.PassTarget = to
	return warns, nil
}

// AssignTransitionAlways routes event ev to state to from every state. It
// fails if the event is governed by an inner transition anywhere; the two
// mechanisms are mutually exclusive on a (state, event) pair.
func (c *Config) AssignTransitionAlways(ev EventID, to StateID) error {
	if err := c.checkEvent(ev); err != nil {
		return err
	}
	if err := c.checkState(to); err != nil {
		return err
	}
	for st := 0; st < c.stateCount; st++ {
		if c.innerGoverned(StateID(st), ev) {
			return configErrorf(ErrCodeInnerBound, "event %d on state %d is governed by an inner transition", ev, st)
		}
	}
	for st := 0; st < c.stateCount; st++ {
		c.transition[ev][st] = to
		c.allowed[ev][st] = true
	}
	return nil
}

// AllowEvent toggles whether event ev is honored in state st. It touches
// only the allowed matrix; the transition target is left as configured.
func (c *Config) AllowEvent(st StateID, ev EventID, enabled bool) error {
	if err := c.checkState(st); err != nil {
		return err
	}
	if err := c.checkEvent(ev); err != nil {
		return err
	}
	if c.innerGoverned(st, ev) {
		return configErrorf(ErrCodeInnerBound, "event %d on state %d is governed by an inner transition", ev, st)
	}
	c.allowed[ev][st] = enabled
	return nil
}

// AllowAllEvents honors every event in every state, except on cells
// governed by an inner transition.
func (c *Config) AllowAllEvents() {
	for ev := 0; ev < c.eventCount; ev++ {
		for st := 0; st < c.stateCount; st++ {
			if !c.innerGoverned(StateID(st), EventID(ev)) {
				c.allowed[ev][st] = true
			}
		}
	}
}

// AssignTimeout configures the timeout descriptor of state st: after dur
// units the machine moves to next. A pass-state cannot carry a timeout.
func (c *Config) AssignTimeout(st StateID, dur int, unit Unit, next StateID) error {
	if err := c.checkState(st); err != nil {
		return err
	}
	if err := c.checkState(next); err != nil {
		return err
	}
	if dur < 0 {
		return configErrorf(ErrCodeBadDuration, "negative timeout duration %d", dur)
	}
	if c.states[st].Pass {
		return configErrorf(ErrCodePassTimeout, "state %d cannot have both a timeout and a pass-state flag", st)
	}
	c.states[st].Timeout = TimerDescriptor{Enabled: true, Duration: dur, Unit: unit, Next: next}
	return nil
}

// AssignGlobalTimeout applies the same timeout to every state except
// final. It fails, without mutating anything, if any target state already
// has a timeout or is a pass-state.
func (c *Config) AssignGlobalTimeout(dur int, unit Unit, final StateID) error {
	if err := c.checkState(final); err != nil {
		return err
	}
	if dur < 0 {
		return configErrorf(ErrCodeBadDuration, "negative timeout duration %d", dur)
	}
	for st := 0; st < c.stateCount; st++ {
		if StateID(st) == final {
			continue
		}
		if c.states[st].Timeout.Enabled {
			return configErrorf(ErrCodeTimeoutExists, "state %d already has a timeout configured", st)
		}
		if c.states[st].Pass {
			return configErrorf(ErrCodePassTimeout, "state %d cannot have both a timeout and a pass-state flag", st)
		}
	}
	for st := 0; st < c.stateCount; st++ {
		if StateID(st) == final {
			continue
		}
		c.states[st].Timeout = TimerDescriptor{Enabled: true, Duration: dur, Unit: unit, Next: final}
	}
	return nil
}

// AssignInnerTransition attaches an inner-transition descriptor to from:
// when the signal for ev arrives while from is active, the machine moves
// to to. Assigning an inner transition clears a pass-state flag on from.
// Adding an identical descriptor twice is a no-op.
func (c *Config) AssignInnerTransition(from StateID, ev EventID, to StateID) error {
	if err := c.checkState(from); err != nil {
		return err
	}
	if err := c.checkState(to); err != nil {
		return err
	}
	if err := c.checkEvent(ev); err != nil {
		return err
	}
	sd := &c.states[from]
	sd.Pass = false
	sd.PassTarget = 0
	for _, it := range sd.Inner {
		if it.Event == ev && it.Next == to {
			return nil
		}
	}
	sd.Inner = append(sd.Inner, InnerTransition{Event: ev, Next: to})
	c.allowed[ev][from] = false
	return nil
}

// BroadcastInnerTransition attaches the same inner-transition descriptor
// to every state except to, skipping states that already hold an
// identical one.
func (c *Config) BroadcastInnerTransition(ev EventID, to StateID) error {
	if err := c.checkState(to); err != nil {
		return err
	}
	if err := c.checkEvent(ev); err != nil {
		return err
	}
	for st := 0; st < c.stateCount; st++ {
		if StateID(st) == to {
			continue
		}
		if err := c.AssignInnerTransition(StateID(st), ev, to); err != nil {
			return err
		}
	}
	return nil
}

// DisableInnerTransition removes the inner-transition descriptor for ev
// from state from. It fails if no such descriptor exists.
func (c *Config) DisableInnerTransition(ev EventID, from StateID) error {
	if err := c.checkState(from); err != nil {
		return err
	}
	if err := c.checkEvent(ev); err != nil {
		return err
	}
	sd := &c.states[from]
	for i, it := range sd.Inner {
		if it.Event == ev {
			sd.Inner = append(sd.Inner[:i], sd.Inner[i+1:]...)
			return nil
		}
	}
	return configErrorf(ErrCodeInnerNotFound, "state %d has no inner transition for event %d", from, ev)
}

// AssignEventMatrix replaces the whole allowed matrix. The matrix must be
// eventCount rows of stateCount columns.
func (c *Config) AssignEventMatrix(mat [][]bool) error {
	if len(mat) != c.eventCount {
		return configErrorf(ErrCodeDimension, "allowed matrix has %d rows, want %d", len(mat), c.eventCount)
	}
	for ev, row := range mat {
		if len(row) != c.stateCount {
			return configErrorf(ErrCodeDimension, "allowed matrix row %d has %d columns, want %d", ev, len(row), c.stateCount)
		}
	}
	for ev, row := range mat {
		copy(c.allowed[ev], row)
	}
	return nil
}

// AssignTransitionMatrix replaces the whole transition matrix. Dimensions
// and every destination index are checked before anything is mutated.
func (c *Config) AssignTransitionMatrix(mat [][]StateID) error {
	if len(mat) != c.eventCount {
		return configErrorf(ErrCodeDimension, "transition matrix has %d rows, want %d", len(mat), c.eventCount)
	}
	for ev, row := range mat {
		if len(row) != c.stateCount {
			return configErrorf(ErrCodeDimension, "transition matrix row %d has %d columns, want %d", ev, len(row), c.stateCount)
		}
		for st, next := range row {
			if err := c.checkState(next); err != nil {
				return configErrorf(ErrCodeStateRange, "transition matrix cell [%d][%d]: destination %d out of range", ev, st, next)
			}
		}
	}
	for ev, row := range mat {
		copy(c.transition[ev], row)
	}
	return nil
}

// SetStateName assigns a display name to a state.
func (c *Config) SetStateName(st StateID, name string) error {
	if err := c.checkState(st); err != nil {
		return err
	}
	c.stateNames[st] = name
	return nil
}

// SetEventName assigns a display name to an event.
func (c *Config) SetEventName(ev EventID, name string) error {
	if err := c.checkEvent(ev); err != nil {
		return err
	}
	c.eventNames[ev] = name
	return nil
}

// StateName returns the display name of a state.
func (c *Config) StateName(st StateID) string {
	if st < 0 || int(st) >= c.stateCount {
		return fmt.Sprintf("St-?%d", st)
	}
	return c.stateNames[st]
}

// EventName returns the display name of an event or pseudo-event tag.
func (c *Config) EventName(tag int) string {
	if tag < 0 || tag >= len(c.eventNames) {
		return fmt.Sprintf("Ev-?%d", tag)
	}
	return c.eventNames[tag]
}

// IsAllowed reports whether event ev is honored in state st.
func (c *Config) IsAllowed(ev EventID, st StateID) bool {
	return c.allowed[ev][st]
}

// Target returns the destination of event ev in state st. Only meaningful
// when IsAllowed(ev, st) is true.
func (c *Config) Target(ev EventID, st StateID) StateID {
	return c.transition[ev][st]
}

// Descriptor returns a copy of the per-state descriptor of st.
func (c *Config) Descriptor(st StateID) StateDescriptor {
	sd := c.states[st]
	if len(sd.Inner) > 0 {
		inner := make([]InnerTransition, len(sd.Inner))
		copy(inner, sd.Inner)
		sd.Inner = inner
	}
	return sd
}

// Timeout returns the timeout descriptor of state st.
func (c *Config) Timeout(st StateID) TimerDescriptor {
	return c.states[st].Timeout
}

// PassState returns the pass-state destination of st, if any.
func (c *Config) PassState(st StateID) (StateID, bool) {
	sd := c.states[st]
	return sd.PassTarget, sd.Pass
}

func (c *Config) innerGoverned(st StateID, ev EventID) bool {
	for _, it := range c.states[st].Inner {
		if it.Event == ev {
			return true
		}
	}
	return false
}

// LatchInner flags as active every inner-transition descriptor bound to
// ev, across all states, and returns how many were latched.
func (c *Config) LatchInner(ev EventID) int {
	n := 0
	for st := range c.states {
		inner := c.states[st].Inner
		for i := range inner {
			if inner[i].Event == ev && !inner[i].Active {
				inner[i].Active = true
				n++
			}
		}
	}
	return n
}

// ConsumeInner finds the first active inner-transition descriptor on st,
// in declaration order, clears its latch and returns its destination.
// Only one descriptor is consumed per call even if several are latched.
func (c *Config) ConsumeInner(st StateID) (StateID, EventID, bool) {
	inner := c.states[st].Inner
	for i := range inner {
		if inner[i].Active {
			inner[i].Active = false
			return inner[i].Next, inner[i].Event, true
		}
	}
	return 0, 0, false
}

// CopyFrom adopts the whole configuration of src. Both stores must have
// been created with the same state and event counts.
func (c *Config) CopyFrom(src *Config) error {
	if src.stateCount != c.stateCount || src.eventCount != c.eventCount {
		return configErrorf(ErrCodeDimension, "source is %dx%d states x events, want %dx%d",
			src.stateCount, src.eventCount, c.stateCount, c.eventCount)
	}
	for ev := 0; ev < c.eventCount; ev++ {
		copy(c.transition[ev], src.transition[ev])
		copy(c.allowed[ev], src.allowed[ev])
	}
	for st := range c.states {
		c.states[st] = src.Descriptor(StateID(st))
	}
	copy(c.stateNames, src.stateNames)
	copy(c.eventNames, src.eventNames)
	c.defaultUnit = src.defaultUnit
	return nil
}
