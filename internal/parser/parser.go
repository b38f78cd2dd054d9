// Package parser provides reflection-based parsing for struct-defined
// machine declarations. Each marker field declares one state; field order
// fixes the state indexing and event names are numbered in the order they
// first appear in a tag.
package parser

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// TransitionSchema is a parsed transition clause: event name and target
// state name.
type TransitionSchema struct {
	Event  string
	Target string
}

// TimeoutSchema is a parsed timeout clause. Unit is empty when the clause
// did not carry one; the builder falls back to the machine's default.
type TimeoutSchema struct {
	Duration int
	Unit     string
	Target   string
}

// StateSchema is one parsed state declaration.
type StateSchema struct {
	Name    string
	Timeout *TimeoutSchema
	Pass    string
	On      []TransitionSchema
	Inner   []TransitionSchema
}

// MachineSchema is the complete parsed machine declaration.
type MachineSchema struct {
	DefaultUnit string
	States      []StateSchema
	Events      []string
}

// Marker type names for detection.
const (
	MarkerDef   = "Def"
	MarkerState = "State"
)

// ParseMachineStruct parses a struct type into a MachineSchema. The
// struct must embed a Def marker; every field of the State marker type
// declares a state named after the field. Other fields are ignored, so a
// declaration can carry payload data alongside its states.
func ParseMachineStruct(t reflect.Type) (*MachineSchema, error) {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("expected struct, got %s", t.Kind())
	}

	schema := &MachineSchema{}

	found := false
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if isMarkerType(field.Type, MarkerDef) {
			if err := parseDefTag(field.Tag, schema); err != nil {
				return nil, fmt.Errorf("field %s: %w", field.Name, err)
			}
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("struct %s must embed the Def marker", t.Name())
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !isMarkerType(field.Type, MarkerState) {
			continue
		}
		ss, err := parseStateTag(field.Name, field.Tag, schema)
		if err != nil {
			return nil, fmt.Errorf("state %s: %w", field.Name, err)
		}
		schema.States = append(schema.States, ss)
	}
	if len(schema.States) < 2 {
		return nil, fmt.Errorf("struct %s declares %d states, need at least two", t.Name(), len(schema.States))
	}

	return schema, validateTargets(schema)
}

func isMarkerType(t reflect.Type, name string) bool {
	return t.Kind() == reflect.Struct && t.Name() == name
}

func parseDefTag(tag reflect.StructTag, schema *MachineSchema) error {
	raw := tag.Get("fsm")
	if raw == "" {
		return nil
	}
	for _, clause := range strings.Split(raw, ",") {
		clause = strings.TrimSpace(clause)
		switch {
		case strings.HasPrefix(clause, "unit="):
			schema.DefaultUnit = strings.TrimPrefix(clause, "unit=")
		default:
			return fmt.Errorf("unknown machine clause %q", clause)
		}
	}
	return nil
}

func parseStateTag(name string, tag reflect.StructTag, schema *MachineSchema) (StateSchema, error) {
	ss := StateSchema{Name: name}
	raw := tag.Get("fsm")
	if raw == "" {
		return ss, nil
	}
	for _, clause := range strings.Split(raw, ",") {
		clause = strings.TrimSpace(clause)
		switch {
		case strings.HasPrefix(clause, "on="):
			ts, err := parseArrow(strings.TrimPrefix(clause, "on="))
			if err != nil {
				return ss, err
			}
			ss.On = append(ss.On, ts)
			schema.addEvent(ts.Event)
		case strings.HasPrefix(clause, "inner="):
			ts, err := parseArrow(strings.TrimPrefix(clause, "inner="))
			if err != nil {
				return ss, err
			}
			ss.Inner = append(ss.Inner, ts)
			schema.addEvent(ts.Event)
		case strings.HasPrefix(clause, "timeout="):
			to, err := parseTimeout(strings.TrimPrefix(clause, "timeout="))
			if err != nil {
				return ss, err
			}
			ss.Timeout = to
		case strings.HasPrefix(clause, "pass>"):
			ss.Pass = strings.TrimPrefix(clause, "pass>")
			if ss.Pass == "" {
				return ss, fmt.Errorf("pass clause is missing a target")
			}
		default:
			return ss, fmt.Errorf("unknown clause %q", clause)
		}
	}
	return ss, nil
}

// parseArrow splits an "Event>Target" clause.
func parseArrow(s string) (TransitionSchema, error) {
	ev, target, ok := strings.Cut(s, ">")
	if !ok || ev == "" || target == "" {
		return TransitionSchema{}, fmt.Errorf("malformed transition clause %q, want Event>Target", s)
	}
	return TransitionSchema{Event: ev, Target: target}, nil
}

// parseTimeout splits a "600ms>Target" clause. The unit suffix is
// optional.
func parseTimeout(s string) (*TimeoutSchema, error) {
	raw, target, ok := strings.Cut(s, ">")
	if !ok || target == "" {
		return nil, fmt.Errorf("malformed timeout clause %q, want duration>Target", s)
	}
	i := 0
	for i < len(raw) && raw[i] >= '0' && raw[i] <= '9' {
		i++
	}
	if i == 0 {
		return nil, fmt.Errorf("timeout clause %q has no duration", s)
	}
	dur, err := strconv.Atoi(raw[:i])
	if err != nil {
		return nil, fmt.Errorf("timeout clause %q: %w", s, err)
	}
	return &TimeoutSchema{Duration: dur, Unit: raw[i:], Target: target}, nil
}

func (schema *MachineSchema) addEvent(name string) {
	for _, ev := range schema.Events {
		if ev == name {
			return
		}
	}
	schema.Events = append(schema.Events, name)
}

// StateIndex resolves a state name to its field-order index.
func (schema *MachineSchema) StateIndex(name string) (int, bool) {
	for i, ss := range schema.States {
		if ss.Name == name {
			return i, true
		}
	}
	return 0, false
}

// EventIndex resolves an event name to its first-appearance index.
func (schema *MachineSchema) EventIndex(name string) (int, bool) {
	for i, ev := range schema.Events {
		if ev == name {
			return i, true
		}
	}
	return 0, false
}

func validateTargets(schema *MachineSchema) error {
	check := func(state, target string) error {
		if _, ok := schema.StateIndex(target); !ok {
			return fmt.Errorf("state %s references unknown state %q", state, target)
		}
		return nil
	}
	for _, ss := range schema.States {
		for _, ts := range ss.On {
			if err := check(ss.Name, ts.Target); err != nil {
				return err
			}
		}
		for _, ts := range ss.Inner {
			if err := check(ss.Name, ts.Target); err != nil {
				return err
			}
		}
		if ss.Timeout != nil {
			if err := check(ss.Name, ss.Timeout.Target); err != nil {
				return err
			}
		}
		if ss.Pass != "" {
			if err := check(ss.Name, ss.Pass); err != nil {
				return err
			}
		}
	}
	return nil
}
