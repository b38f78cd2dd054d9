package ir

// Snapshot is a serializable copy of a configuration store. Callbacks are
// not part of a snapshot; they are bound to a machine instance, not to its
// transition structure.
type Snapshot struct {
	StateCount  int             `yaml:"states"`
	EventCount  int             `yaml:"events"`
	DefaultUnit string          `yaml:"default_unit"`
	Transitions [][]StateID     `yaml:"transitions"`
	Allowed     [][]bool        `yaml:"allowed"`
	Descriptors []StateSnapshot `yaml:"state_info"`
	StateNames  []string        `yaml:"state_names,omitempty"`
	EventNames  []string        `yaml:"event_names,omitempty"`
}

// StateSnapshot is the serializable form of a per-state descriptor.
type StateSnapshot struct {
	Timeout *TimeoutSnapshot `yaml:"timeout,omitempty"`
	Pass    *PassSnapshot    `yaml:"pass,omitempty"`
	Inner   []InnerSnapshot  `yaml:"inner,omitempty"`
}

// TimeoutSnapshot is the serializable form of a timeout descriptor.
type TimeoutSnapshot struct {
	Duration int     `yaml:"duration"`
	Unit     string  `yaml:"unit"`
	Next     StateID `yaml:"next"`
}

// PassSnapshot is the serializable form of a pass-state descriptor.
type PassSnapshot struct {
	Next StateID `yaml:"next"`
}

// InnerSnapshot is the serializable form of an inner-transition
// descriptor. Activation latches are runtime state and are not captured.
type InnerSnapshot struct {
	Event EventID `yaml:"event"`
	Next  StateID `yaml:"next"`
}

// Snapshot exports the whole configuration.
func (c *Config) Snapshot() *Snapshot {
	s := &Snapshot{
		StateCount:  c.stateCount,
		EventCount:  c.eventCount,
		DefaultUnit: c.defaultUnit.String(),
		Transitions: make([][]StateID, c.eventCount),
		Allowed:     make([][]bool, c.eventCount),
		Descriptors: make([]StateSnapshot, c.stateCount),
		StateNames:  append([]string(nil), c.stateNames...),
		EventNames:  append([]string(nil), c.eventNames[:c.eventCount]...),
	}
	for ev := 0; ev < c.eventCount; ev++ {
		s.Transitions[ev] = append([]StateID(nil), c.transition[ev]...)
		s.Allowed[ev] = append([]bool(nil), c.allowed[ev]...)
	}
	for st := 0; st < c.stateCount; st++ {
		sd := c.states[st]
		var ss StateSnapshot
		if sd.Timeout.Enabled {
			ss.Timeout = &TimeoutSnapshot{
				Duration: sd.Timeout.Duration,
				Unit:     sd.Timeout.Unit.String(),
				Next:     sd.Timeout.Next,
			}
		}
		if sd.Pass {
			ss.Pass = &PassSnapshot{Next: sd.PassTarget}
		}
		for _, it := range sd.Inner {
			ss.Inner = append(ss.Inner, InnerSnapshot{Event: it.Event, Next: it.Next})
		}
		s.Descriptors[st] = ss
	}
	return s
}

// Restore replaces the configuration with the snapshot contents. The
// snapshot dimensions must match; every index is validated before the
// store is touched.
func (c *Config) Restore(s *Snapshot) error {
	if s.StateCount != c.stateCount || s.EventCount != c.eventCount {
		return configErrorf(ErrCodeDimension, "snapshot is %dx%d states x events, want %dx%d",
			s.StateCount, s.EventCount, c.stateCount, c.eventCount)
	}

	fresh, err := NewConfig(c.stateCount, c.eventCount)
	if err != nil {
		return err
	}
	if err := fresh.AssignTransitionMatrix(s.Transitions); err != nil {
		return err
	}
	if err := fresh.AssignEventMatrix(s.Allowed); err != nil {
		return err
	}
	if s.DefaultUnit != "" {
		u, err := ParseUnit(s.DefaultUnit)
		if err != nil {
			return err
		}
		fresh.defaultUnit = u
	}
	if len(s.Descriptors) != c.stateCount {
		return configErrorf(ErrCodeDimension, "snapshot has %d state descriptors, want %d", len(s.Descriptors), c.stateCount)
	}
	for st, ss := range s.Descriptors {
		if ss.Pass != nil {
			if _, err := fresh.AssignPassState(StateID(st), ss.Pass.Next); err != nil {
				return err
			}
		}
		if ss.Timeout != nil {
			u, err := ParseUnit(ss.Timeout.Unit)
			if err != nil {
				return err
			}
			if err := fresh.AssignTimeout(StateID(st), ss.Timeout.Duration, u, ss.Timeout.Next); err != nil {
				return err
			}
		}
		for _, it := range ss.Inner {
			if err := fresh.AssignInnerTransition(StateID(st), it.Event, it.Next); err != nil {
				return err
			}
		}
	}
	for st, name := range s.StateNames {
		if err := fresh.SetStateName(StateID(st), name); err != nil {
			return err
		}
	}
	for ev, name := range s.EventNames {
		if err := fresh.SetEventName(EventID(ev), name); err != nil {
			return err
		}
	}

	return c.CopyFrom(fresh)
}
