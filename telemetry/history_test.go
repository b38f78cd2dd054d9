package telemetry

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridfsm/gridfsm/internal/ir"
)

func TestHistoryCounters(t *testing.T) {
	h := NewHistory()
	h.InitCounters(3, 2)

	h.RecordStart(0)
	h.RecordTransition(1, 0)
	h.RecordTransition(2, 2) // timeout tag
	h.RecordTransition(0, 3) // pass tag
	h.RecordIgnored(1)
	h.RecordIgnored(1)

	assert.Equal(t, uint64(2), h.StateVisits(0))
	assert.Equal(t, uint64(1), h.StateVisits(1))
	assert.Equal(t, uint64(1), h.StateVisits(2))
	assert.Equal(t, uint64(1), h.EventHits(0))
	assert.Equal(t, uint64(0), h.EventHits(1))
	assert.Equal(t, uint64(1), h.EventHits(2))
	assert.Equal(t, uint64(1), h.EventHits(3))
	assert.Equal(t, uint64(2), h.IgnoredCount(1))

	// Out-of-range lookups are zero, not a panic.
	assert.Equal(t, uint64(0), h.StateVisits(99))
	assert.Equal(t, uint64(0), h.EventHits(-1))
}

func TestHistoryEntries(t *testing.T) {
	h := NewHistory()
	h.InitCounters(2, 1)

	h.RecordTransition(1, 0)
	h.RecordTransition(0, 1)

	entries := h.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, ir.StateID(1), entries[0].State)
	assert.Equal(t, 0, entries[0].Tag)
	assert.Equal(t, ir.StateID(0), entries[1].State)
	assert.GreaterOrEqual(t, entries[1].Elapsed, entries[0].Elapsed)

	// The returned slice is a copy.
	entries[0].Tag = 42
	assert.Equal(t, 0, h.Entries()[0].Tag)
}

func TestHistoryReset(t *testing.T) {
	h := NewHistory()
	h.InitCounters(2, 1)
	h.RecordStart(0)
	h.RecordTransition(1, 0)
	h.RecordIgnored(0)

	h.Reset()

	assert.Equal(t, uint64(0), h.StateVisits(0))
	assert.Equal(t, uint64(0), h.EventHits(0))
	assert.Equal(t, uint64(0), h.IgnoredCount(0))
	assert.Empty(t, h.Entries())
}

func TestHistoryPrint(t *testing.T) {
	h := NewHistory(WithNames(
		func(st ir.StateID) string { return "state-" + string(rune('A'+st)) },
		func(tag int) string { return "event-" + string(rune('a'+tag)) },
	))
	h.InitCounters(2, 1)
	h.RecordStart(0)
	h.RecordTransition(1, 0)

	var b strings.Builder
	require.NoError(t, h.Print(&b, All))
	out := b.String()

	assert.Contains(t, out, "# State counters:")
	assert.Contains(t, out, "0;state-A;1")
	assert.Contains(t, out, "1;state-B;1")
	assert.Contains(t, out, "# Event counters:")
	assert.Contains(t, out, "0;event-a;1")
	assert.Contains(t, out, "# Run history:")
	assert.Contains(t, out, ";event-a;state-B")

	// Sections honor the flags.
	b.Reset()
	require.NoError(t, h.Print(&b, StateCounts))
	assert.NotContains(t, b.String(), "# Run history:")
}
