package gridfsm

import (
	"fmt"
	"io"
	"strings"
)

// DumpConfig writes a human-readable rendering of the transition and
// allowed matrices and the per-state descriptors. The format is for
// operator eyes only; nothing parses it.
func (f *FSM[T]) DumpConfig(w io.Writer) error {
	cfg := f.cfg
	nStates := cfg.StateCount()
	nEvents := cfg.EventCount()

	maxlen := 0
	for tag := 0; tag < nEvents+2; tag++ {
		if n := len(cfg.EventName(tag)); n > maxlen {
			maxlen = n
		}
	}

	var b strings.Builder
	b.WriteString("Transition table:\n")
	fmt.Fprintf(&b, "%s        STATES:\n", strings.Repeat(" ", maxlen))
	fmt.Fprintf(&b, "%s      ", strings.Repeat(" ", maxlen))
	for st := 0; st < nStates; st++ {
		fmt.Fprintf(&b, "%-3d", st)
	}
	b.WriteByte('\n')
	fmt.Fprintf(&b, "%s|%s\n", strings.Repeat("-", maxlen+6), strings.Repeat("-", 3*nStates))

	for ev := 0; ev < nEvents; ev++ {
		fmt.Fprintf(&b, "%-*s %2d | ", maxlen, cfg.EventName(ev), ev)
		for st := 0; st < nStates; st++ {
			if cfg.IsAllowed(EventID(ev), StateID(st)) {
				fmt.Fprintf(&b, "%-3d", cfg.Target(EventID(ev), StateID(st)))
			} else {
				b.WriteString(".  ")
			}
		}
		b.WriteByte('\n')
	}

	fmt.Fprintf(&b, "%-*s TO | ", maxlen, cfg.EventName(cfg.TimeoutTag()))
	for st := 0; st < nStates; st++ {
		if td := cfg.Timeout(StateID(st)); td.Enabled {
			fmt.Fprintf(&b, "%-3d", td.Next)
		} else {
			b.WriteString(".  ")
		}
	}
	b.WriteByte('\n')

	fmt.Fprintf(&b, "%-*s PS | ", maxlen, cfg.EventName(cfg.PassTag()))
	for st := 0; st < nStates; st++ {
		if next, ok := cfg.PassState(StateID(st)); ok {
			fmt.Fprintf(&b, "%-3d", next)
		} else {
			b.WriteString(".  ")
		}
	}
	b.WriteByte('\n')

	namelen := 0
	for st := 0; st < nStates; st++ {
		if n := len(cfg.StateName(StateID(st))); n > namelen {
			namelen = n
		}
	}

	b.WriteString("\nState info:\n")
	for st := 0; st < nStates; st++ {
		sd := cfg.Descriptor(StateID(st))
		fmt.Fprintf(&b, "%d:%-*s | ", st, namelen, cfg.StateName(StateID(st)))
		switch {
		case sd.Timeout.Enabled:
			fmt.Fprintf(&b, "%d %s => %d (%s)", sd.Timeout.Duration, sd.Timeout.Unit,
				sd.Timeout.Next, cfg.StateName(sd.Timeout.Next))
		case sd.Pass:
			fmt.Fprintf(&b, "AAT => %d (%s)", sd.PassTarget, cfg.StateName(sd.PassTarget))
		default:
			b.WriteByte('-')
		}
		for _, it := range sd.Inner {
			fmt.Fprintf(&b, " [inner %s => %d]", cfg.EventName(int(it.Event)), it.Next)
		}
		b.WriteByte('\n')
	}

	_, err := io.WriteString(w, b.String())
	return err
}
