package parser

import (
	"reflect"
	"strings"
	"testing"
)

// Local marker types; detection is by type name.
type Def struct{}
type State struct{}

type trafficLight struct {
	Def     `fsm:"unit=ms"`
	Red     State `fsm:"timeout=600>Green,on=WarningOn>Warning"`
	Green   State `fsm:"timeout=600>Orange,on=WarningOn>Warning"`
	Orange  State `fsm:"timeout=200>Red,on=WarningOn>Warning"`
	Warning State `fsm:"on=WarningOff>Red"`
}

func TestParseMachineStruct(t *testing.T) {
	schema, err := ParseMachineStruct(reflect.TypeOf(trafficLight{}))
	if err != nil {
		t.Fatalf("ParseMachineStruct: %v", err)
	}

	if schema.DefaultUnit != "ms" {
		t.Errorf("default unit = %q", schema.DefaultUnit)
	}
	if len(schema.States) != 4 {
		t.Fatalf("expected 4 states, got %d", len(schema.States))
	}
	if schema.States[0].Name != "Red" || schema.States[3].Name != "Warning" {
		t.Errorf("state order broken: %v", schema.States)
	}
	// Events are numbered by first appearance.
	if !reflect.DeepEqual(schema.Events, []string{"WarningOn", "WarningOff"}) {
		t.Errorf("events = %v", schema.Events)
	}

	red := schema.States[0]
	if red.Timeout == nil || red.Timeout.Duration != 600 || red.Timeout.Target != "Green" {
		t.Errorf("Red timeout = %+v", red.Timeout)
	}
	if red.Timeout.Unit != "" {
		t.Errorf("Red timeout unit should fall back to the default, got %q", red.Timeout.Unit)
	}
	if len(red.On) != 1 || red.On[0].Event != "WarningOn" || red.On[0].Target != "Warning" {
		t.Errorf("Red transitions = %v", red.On)
	}
}

func TestParseMachineStruct_PointerAndExtras(t *testing.T) {
	type withPayload struct {
		Def
		counter int // ignored
		A       State `fsm:"on=Go>B"`
		B       State `fsm:"pass>A"`
	}
	schema, err := ParseMachineStruct(reflect.TypeOf(&withPayload{}))
	if err != nil {
		t.Fatalf("ParseMachineStruct: %v", err)
	}
	if len(schema.States) != 2 {
		t.Fatalf("expected 2 states, got %d", len(schema.States))
	}
	if schema.States[1].Pass != "A" {
		t.Errorf("pass target = %q", schema.States[1].Pass)
	}
}

func TestParseMachineStruct_ExplicitUnit(t *testing.T) {
	type m struct {
		Def
		A State `fsm:"timeout=2sec>B"`
		B State `fsm:"inner=Quit>A"`
	}

	schema, err := ParseMachineStruct(reflect.TypeOf(m{}))
	if err != nil {
		t.Fatalf("ParseMachineStruct: %v", err)
	}
	if to := schema.States[0].Timeout; to.Duration != 2 || to.Unit != "sec" {
		t.Errorf("timeout = %+v", to)
	}
	if inner := schema.States[1].Inner; len(inner) != 1 || inner[0].Event != "Quit" {
		t.Errorf("inner = %v", schema.States[1].Inner)
	}
}

func TestParseMachineStruct_Errors(t *testing.T) {
	type noDef struct {
		A State
		B State
	}
	if _, err := ParseMachineStruct(reflect.TypeOf(noDef{})); err == nil {
		t.Error("expected error for a missing Def marker")
	}

	type oneState struct {
		Def
		A State
	}
	if _, err := ParseMachineStruct(reflect.TypeOf(oneState{})); err == nil {
		t.Error("expected error for a single-state declaration")
	}

	type badTarget struct {
		Def
		A State `fsm:"on=Go>Nowhere"`
		B State
	}
	_, err := ParseMachineStruct(reflect.TypeOf(badTarget{}))
	if err == nil || !strings.Contains(err.Error(), "Nowhere") {
		t.Errorf("expected unknown-target error, got: %v", err)
	}

	type badClause struct {
		Def
		A State `fsm:"frob=1"`
		B State
	}
	if _, err := ParseMachineStruct(reflect.TypeOf(badClause{})); err == nil {
		t.Error("expected error for an unknown clause")
	}

	if _, err := ParseMachineStruct(reflect.TypeOf(42)); err == nil {
		t.Error("expected error for a non-struct type")
	}
}
