package gridfsm

import (
	"fmt"
	"reflect"

	"github.com/gridfsm/gridfsm/internal/ir"
	"github.com/gridfsm/gridfsm/internal/parser"
)

// Def marks a struct as a machine declaration. The tag may set the
// default timeout unit:
//
//	gridfsm.Def `fsm:"unit=ms"`
type Def struct{}

// State declares one state of a struct-defined machine. The field name is
// the state name, field order is the state index (the first State field
// is the initial state), and the tag lists the state's clauses:
//
//	Red gridfsm.State `fsm:"timeout=600>Green,on=WarningOn>Warning"`
//
// Supported clauses are "on=Event>Target", "timeout=dur[unit]>Target",
// "pass>Target" and "inner=Event>Target". Event indices are assigned in
// the order the names first appear.
type State struct{}

// FromStruct builds a machine from a struct declaration. The zero value
// of the struct type is enough; only its type is inspected.
func FromStruct[T any](proto any, opts ...Option[T]) (*FSM[T], error) {
	schema, err := parser.ParseMachineStruct(reflect.TypeOf(proto))
	if err != nil {
		return nil, fmt.Errorf("parse machine declaration: %w", err)
	}

	f, err := New[T](len(schema.States), len(schema.Events), opts...)
	if err != nil {
		return nil, err
	}
	if schema.DefaultUnit != "" {
		u, err := ir.ParseUnit(schema.DefaultUnit)
		if err != nil {
			return nil, err
		}
		f.SetDefaultUnit(u)
	}

	for i, ss := range schema.States {
		if err := f.SetStateName(StateID(i), ss.Name); err != nil {
			return nil, err
		}
	}
	for i, name := range schema.Events {
		if err := f.SetEventName(EventID(i), name); err != nil {
			return nil, err
		}
	}

	state := func(name string) StateID {
		i, _ := schema.StateIndex(name)
		return StateID(i)
	}
	event := func(name string) EventID {
		i, _ := schema.EventIndex(name)
		return EventID(i)
	}

	for i, ss := range schema.States {
		from := StateID(i)
		if ss.Pass != "" {
			if err := f.AssignPassState(from, state(ss.Pass)); err != nil {
				return nil, fmt.Errorf("state %s: %w", ss.Name, err)
			}
		}
		for _, ts := range ss.On {
			if err := f.AssignTransition(from, event(ts.Event), state(ts.Target)); err != nil {
				return nil, fmt.Errorf("state %s: %w", ss.Name, err)
			}
		}
		for _, ts := range ss.Inner {
			if err := f.AssignInnerTransition(from, event(ts.Event), state(ts.Target)); err != nil {
				return nil, fmt.Errorf("state %s: %w", ss.Name, err)
			}
		}
		if ss.Timeout != nil {
			unit := f.cfg.DefaultUnit()
			if ss.Timeout.Unit != "" {
				if unit, err = ir.ParseUnit(ss.Timeout.Unit); err != nil {
					return nil, fmt.Errorf("state %s: %w", ss.Name, err)
				}
			}
			if err := f.AssignTimeoutUnit(from, ss.Timeout.Duration, unit, state(ss.Timeout.Target)); err != nil {
				return nil, fmt.Errorf("state %s: %w", ss.Name, err)
			}
		}
	}

	return f, nil
}

// StateByName resolves a display name to a state index.
func (f *FSM[T]) StateByName(name string) (StateID, bool) {
	for st := 0; st < f.cfg.StateCount(); st++ {
		if f.cfg.StateName(StateID(st)) == name {
			return StateID(st), true
		}
	}
	return 0, false
}

// EventByName resolves a display name to an event index.
func (f *FSM[T]) EventByName(name string) (EventID, bool) {
	for ev := 0; ev < f.cfg.EventCount(); ev++ {
		if f.cfg.EventName(ev) == name {
			return EventID(ev), true
		}
	}
	return 0, false
}
