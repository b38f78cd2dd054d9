// Package export provides exporters for rendering machine configurations
// as directed graphs (Graphviz dot format) for diagnostics tooling.
package export

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gridfsm/gridfsm/internal/ir"
)

// DotOptions configures the graph rendering.
type DotOptions struct {
	// Name is the graph name (default: "G").
	Name string

	// RankDir is the Graphviz layout direction (default: "LR").
	RankDir string

	// HighlightActive fills the Active state's node.
	HighlightActive bool

	// Active is the state to highlight when HighlightActive is set.
	Active ir.StateID

	// UseNames labels nodes and edges with display names instead of
	// bare indices.
	UseNames bool
}

// DefaultDotOptions returns options with sensible defaults.
func DefaultDotOptions() DotOptions {
	return DotOptions{Name: "G", RankDir: "LR"}
}

// Dot renders the configuration as a Graphviz digraph: one node per
// state (the initial state drawn as a double circle), solid edges for
// allowed external transitions labelled by event, "TO:" edges for
// timeouts, "AAT" edges for pass-states and dashed edges for inner
// transitions.
func Dot(cfg *ir.Config, opts DotOptions) string {
	name := opts.Name
	if name == "" {
		name = "G"
	}
	rankdir := opts.RankDir
	if rankdir == "" {
		rankdir = "LR"
	}

	label := func(st ir.StateID) string {
		if opts.UseNames {
			return cfg.StateName(st)
		}
		return fmt.Sprintf("S%d", st)
	}
	eventLabel := func(ev ir.EventID) string {
		if opts.UseNames {
			return cfg.EventName(int(ev))
		}
		return fmt.Sprintf("E%d", ev)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "digraph %s {\n", name)
	fmt.Fprintf(&b, "rankdir=%s;\n", rankdir)

	for st := 0; st < cfg.StateCount(); st++ {
		attrs := []string{fmt.Sprintf("label=%q", label(ir.StateID(st)))}
		if st == 0 {
			attrs = append(attrs, `shape="doublecircle"`)
		}
		if opts.HighlightActive && ir.StateID(st) == opts.Active {
			attrs = append(attrs, `style="filled"`, `fillcolor="lightblue"`)
		}
		fmt.Fprintf(&b, "%d [%s];\n", st, strings.Join(attrs, ","))
	}

	for ev := 0; ev < cfg.EventCount(); ev++ {
		for st := 0; st < cfg.StateCount(); st++ {
			if !cfg.IsAllowed(ir.EventID(ev), ir.StateID(st)) {
				continue
			}
			if _, pass := cfg.PassState(ir.StateID(st)); pass {
				continue
			}
			fmt.Fprintf(&b, "%d -> %d [label=%q];\n",
				st, cfg.Target(ir.EventID(ev), ir.StateID(st)), eventLabel(ir.EventID(ev)))
		}
	}

	for st := 0; st < cfg.StateCount(); st++ {
		if next, pass := cfg.PassState(ir.StateID(st)); pass {
			fmt.Fprintf(&b, "%d -> %d [label=\"AAT\"];\n", st, next)
			continue
		}
		if td := cfg.Timeout(ir.StateID(st)); td.Enabled {
			fmt.Fprintf(&b, "%d -> %d [label=\"TO:%d%s\"];\n", st, td.Next, td.Duration, td.Unit)
		}
	}

	for st := 0; st < cfg.StateCount(); st++ {
		for _, it := range cfg.Descriptor(ir.StateID(st)).Inner {
			fmt.Fprintf(&b, "%d -> %d [label=%q,style=\"dashed\"];\n",
				st, it.Next, "IN:"+eventLabel(it.Event))
		}
	}

	b.WriteString("}\n")
	return b.String()
}

// WriteDot renders the configuration to w.
func WriteDot(w io.Writer, cfg *ir.Config, opts DotOptions) error {
	_, err := io.WriteString(w, Dot(cfg, opts))
	return err
}

// WriteDotFile renders the configuration to a file, suitable for feeding
// straight into Graphviz.
func WriteDotFile(path string, cfg *ir.Config, opts DotOptions) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create dot file: %w", err)
	}
	defer func() { _ = f.Close() }()
	if err := WriteDot(f, cfg, opts); err != nil {
		return fmt.Errorf("write dot file: %w", err)
	}
	return nil
}
