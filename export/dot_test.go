package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gridfsm/gridfsm/internal/ir"
)

func buildConfig(t *testing.T) *ir.Config {
	t.Helper()
	c, err := ir.NewConfig(4, 2)
	if err != nil {
		t.Fatalf("NewConfig: %v", err)
	}
	if err := c.AssignTransition(0, 0, 1); err != nil {
		t.Fatalf("AssignTransition: %v", err)
	}
	if err := c.AssignTimeout(1, 500, ir.Millisecond, 2); err != nil {
		t.Fatalf("AssignTimeout: %v", err)
	}
	if _, err := c.AssignPassState(2, 0); err != nil {
		t.Fatalf("AssignPassState: %v", err)
	}
	if err := c.AssignInnerTransition(0, 1, 3); err != nil {
		t.Fatalf("AssignInnerTransition: %v", err)
	}
	if err := c.SetStateName(0, "boot"); err != nil {
		t.Fatalf("SetStateName: %v", err)
	}
	if err := c.SetEventName(0, "go"); err != nil {
		t.Fatalf("SetEventName: %v", err)
	}
	return c
}

func TestDot_Structure(t *testing.T) {
	out := Dot(buildConfig(t), DefaultDotOptions())

	for _, want := range []string{
		"digraph G {",
		"rankdir=LR;",
		`0 [label="S0",shape="doublecircle"];`,
		`0 -> 1 [label="E0"];`,
		`1 -> 2 [label="TO:500ms"];`,
		`2 -> 0 [label="AAT"];`,
		`0 -> 3 [label="IN:E1",style="dashed"];`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestDot_UseNames(t *testing.T) {
	opts := DefaultDotOptions()
	opts.UseNames = true
	out := Dot(buildConfig(t), opts)

	if !strings.Contains(out, `label="boot"`) {
		t.Errorf("state name not used:\n%s", out)
	}
	if !strings.Contains(out, `label="go"`) {
		t.Errorf("event name not used:\n%s", out)
	}
}

func TestDot_HighlightActive(t *testing.T) {
	opts := DefaultDotOptions()
	opts.HighlightActive = true
	opts.Active = 1
	out := Dot(buildConfig(t), opts)

	if !strings.Contains(out, `1 [label="S1",style="filled",fillcolor="lightblue"];`) {
		t.Errorf("active state not highlighted:\n%s", out)
	}
}

func TestDot_PassStateSuppressesExternalEdges(t *testing.T) {
	c := buildConfig(t)
	out := Dot(c, DefaultDotOptions())

	// State 2 is a pass-state: its only outgoing edge is the AAT link.
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, "2 -> ") && !strings.Contains(line, "AAT") {
			t.Errorf("unexpected edge from pass-state: %s", line)
		}
	}
}

func TestWriteDotFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "machine.dot")
	if err := WriteDotFile(path, buildConfig(t), DefaultDotOptions()); err != nil {
		t.Fatalf("WriteDotFile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.HasPrefix(string(data), "digraph G {") {
		t.Errorf("unexpected file contents: %s", data)
	}
}
