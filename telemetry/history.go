// Package telemetry provides sinks implementing the engine's Recorder
// contract: an in-memory counter/history recorder and a Prometheus
// collector.
package telemetry

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/gridfsm/gridfsm/internal/ir"
)

// PrintFlags selects which sections Print renders.
type PrintFlags int

const (
	// StateCounts prints the per-state visit counters
	StateCounts PrintFlags = 1 << iota
	// EventCounts prints the per-event counters, pseudo events included
	EventCounts
	// RunHistory prints the timestamped transition history
	RunHistory
	// All prints every section
	All = StateCounts | EventCounts | RunHistory
)

// Entry is one recorded transition: the destination state, the event tag
// that produced it (event index or pseudo tag) and the elapsed time since
// the recorder was created or last reset.
type Entry struct {
	Elapsed time.Duration
	Tag     int
	State   ir.StateID
}

// History is an in-memory Recorder: per-state and per-event counters plus
// a timestamped transition history. Safe for use from the timer's
// delivery goroutine.
type History struct {
	mu         sync.Mutex
	stateCount []uint64
	eventCount []uint64 // two extra slots for the timeout and pass tags
	ignored    []uint64
	entries    []Entry
	start      time.Time

	stateName func(ir.StateID) string
	eventName func(int) string
}

// HistoryOption configures a History recorder.
type HistoryOption func(*History)

// WithNames supplies display-name lookups used by Print. Without them,
// bare indices are printed.
func WithNames(stateName func(ir.StateID) string, eventName func(int) string) HistoryOption {
	return func(h *History) {
		h.stateName = stateName
		h.eventName = eventName
	}
}

// NewHistory creates an empty recorder. Counter slices are allocated by
// InitCounters when the recorder is attached to a machine.
func NewHistory(opts ...HistoryOption) *History {
	h := &History{start: time.Now()}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// InitCounters implements the Recorder contract.
func (h *History) InitCounters(stateCount, eventCount int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stateCount = make([]uint64, stateCount)
	h.eventCount = make([]uint64, eventCount+2)
	h.ignored = make([]uint64, eventCount)
	h.entries = nil
	h.start = time.Now()
}

// RecordStart implements the Recorder contract.
func (h *History) RecordStart(st ir.StateID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if int(st) < len(h.stateCount) {
		h.stateCount[st]++
	}
}

// RecordTransition implements the Recorder contract.
func (h *History) RecordTransition(st ir.StateID, eventTag int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if int(st) < len(h.stateCount) {
		h.stateCount[st]++
	}
	if eventTag >= 0 && eventTag < len(h.eventCount) {
		h.eventCount[eventTag]++
	}
	h.entries = append(h.entries, Entry{
		Elapsed: time.Since(h.start),
		Tag:     eventTag,
		State:   st,
	})
}

// RecordIgnored implements the Recorder contract.
func (h *History) RecordIgnored(ev ir.EventID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if int(ev) < len(h.ignored) {
		h.ignored[ev]++
	}
}

// StateVisits returns how often state st was entered.
func (h *History) StateVisits(st ir.StateID) uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	if int(st) >= len(h.stateCount) {
		return 0
	}
	return h.stateCount[st]
}

// EventHits returns how often the event tag produced a transition.
func (h *History) EventHits(tag int) uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	if tag < 0 || tag >= len(h.eventCount) {
		return 0
	}
	return h.eventCount[tag]
}

// IgnoredCount returns how often event ev was ignored.
func (h *History) IgnoredCount(ev ir.EventID) uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	if int(ev) >= len(h.ignored) {
		return 0
	}
	return h.ignored[ev]
}

// Entries returns a copy of the transition history.
func (h *History) Entries() []Entry {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]Entry(nil), h.entries...)
}

// Reset clears counters and history. Counters are never cleared
// implicitly; a stopped and restarted machine keeps accumulating until
// Reset is called.
func (h *History) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i := range h.stateCount {
		h.stateCount[i] = 0
	}
	for i := range h.eventCount {
		h.eventCount[i] = 0
	}
	for i := range h.ignored {
		h.ignored[i] = 0
	}
	h.entries = nil
	h.start = time.Now()
}

// Print writes the selected sections as semicolon-separated records.
func (h *History) Print(w io.Writer, flags PrintFlags) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	stateName := h.stateName
	if stateName == nil {
		stateName = func(st ir.StateID) string { return fmt.Sprintf("%d", st) }
	}
	eventName := h.eventName
	if eventName == nil {
		eventName = func(tag int) string { return fmt.Sprintf("%d", tag) }
	}

	if flags&StateCounts != 0 {
		if _, err := fmt.Fprintln(w, "# State counters:"); err != nil {
			return err
		}
		for st, n := range h.stateCount {
			if _, err := fmt.Fprintf(w, "%d;%s;%d\n", st, stateName(ir.StateID(st)), n); err != nil {
				return err
			}
		}
	}
	if flags&EventCounts != 0 {
		if _, err := fmt.Fprintln(w, "# Event counters:"); err != nil {
			return err
		}
		for tag, n := range h.eventCount {
			if _, err := fmt.Fprintf(w, "%d;%s;%d\n", tag, eventName(tag), n); err != nil {
				return err
			}
		}
	}
	if flags&RunHistory != 0 {
		if _, err := fmt.Fprintln(w, "# Run history:\n#time;event;state"); err != nil {
			return err
		}
		for _, e := range h.entries {
			if _, err := fmt.Fprintf(w, "%.6f;%s;%s\n",
				e.Elapsed.Seconds(), eventName(e.Tag), stateName(e.State)); err != nil {
				return err
			}
		}
	}
	return nil
}
