package gridfsm

// Recorder is the telemetry sink contract. The engine calls it as a side
// effect of every state change; a nil recorder disables telemetry.
//
// RecordTransition receives the destination state and an event tag: the
// triggering event index, or one of two pseudo tags past the event range
// (EventCount for timeout-triggered transitions, EventCount+1 for
// pass-state transitions).
type Recorder interface {
	// InitCounters sizes the counters. Called once at construction.
	InitCounters(stateCount, eventCount int)
	// RecordStart notes the initial state visit when the machine starts.
	RecordStart(st StateID)
	// RecordTransition notes a transition into st.
	RecordTransition(st StateID, eventTag int)
	// RecordIgnored notes an event that was not honored in the current
	// state.
	RecordIgnored(ev EventID)
}
