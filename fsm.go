// Package gridfsm implements a finite-state-machine execution engine
// driven by dense transition matrices. States and events are declared as
// integer index ranges at construction; transitions, timeouts, pass-states
// and inner (signal-driven) transitions are configured before Start and
// validated once when the machine starts.
package gridfsm

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/gridfsm/gridfsm/internal/ir"
)

// FSM is the transition engine. T is the type of the argument handed to
// state-entry callbacks.
//
// All configuration calls and all runtime calls except Start's blocking
// handoff execute synchronously on the caller's goroutine. Runtime entry
// points are safe to invoke from the timer's delivery context, but
// callbacks must not call runtime methods of the same machine.
type FSM[T any] struct {
	cfg *ir.Config

	callbacks []Callback[T]
	args      []T
	ignored   func(EventID)

	timer    Timer[T]
	recorder Recorder
	log      zerolog.Logger

	// mu serializes runtime operations; current is additionally kept
	// in an atomic so timer ports can read it from inside Start's
	// locked region without re-entering the lock.
	mu       sync.Mutex
	current  atomic.Int64
	running  bool
	warnings []Warning
}

// Option configures an FSM at construction.
type Option[T any] func(*FSM[T])

// WithTimer selects the timer port. The default is NoTimer, which rejects
// timeout assignments.
func WithTimer[T any](t Timer[T]) Option[T] {
	return func(f *FSM[T]) { f.timer = t }
}

// WithRecorder attaches a telemetry sink.
func WithRecorder[T any](r Recorder) Option[T] {
	return func(f *FSM[T]) { f.recorder = r }
}

// WithLogger sets the logger. The default logger is disabled.
func WithLogger[T any](l zerolog.Logger) Option[T] {
	return func(f *FSM[T]) { f.log = l }
}

// WithIgnoredEventHook registers a hook fired whenever an event is
// ignored because it is not allowed in the current state.
func WithIgnoredEventHook[T any](fn func(EventID)) Option[T] {
	return func(f *FSM[T]) { f.ignored = fn }
}

// New creates a machine with the given state and event counts. At least
// two states are required. The machine starts in state 0 once Start is
// called.
func New[T any](stateCount, eventCount int, opts ...Option[T]) (*FSM[T], error) {
	cfg, err := ir.NewConfig(stateCount, eventCount)
	if err != nil {
		return nil, err
	}
	f := &FSM[T]{
		cfg:       cfg,
		callbacks: make([]Callback[T], stateCount),
		args:      make([]T, stateCount),
		timer:     NoTimer[T]{},
		log:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.recorder != nil {
		f.recorder.InitCounters(stateCount, eventCount)
	}
	return f, nil
}

// Config exposes the configuration store for diagnostics tooling such as
// the export package.
func (f *FSM[T]) Config() *ir.Config { return f.cfg }

// StateCount returns the number of states.
func (f *FSM[T]) StateCount() int { return f.cfg.StateCount() }

// EventCount returns the number of external events.
func (f *FSM[T]) EventCount() int { return f.cfg.EventCount() }

// CurrentState returns the active state.
func (f *FSM[T]) CurrentState() StateID {
	return StateID(f.current.Load())
}

func (f *FSM[T]) setCurrent(st StateID) {
	f.current.Store(int64(st))
}

// Running reports whether the machine has been started and not stopped.
func (f *FSM[T]) Running() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.running
}

// Warnings returns the findings of the last Start-time validation.
func (f *FSM[T]) Warnings() []Warning {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.warnings
}

// TimeoutDuration returns the timeout delay configured on st, or zero if
// none. Timer ports use it when arming a one-shot delay.
func (f *FSM[T]) TimeoutDuration(st StateID) time.Duration {
	td := f.cfg.Timeout(st)
	if !td.Enabled {
		return 0
	}
	return td.Unit.Duration(td.Duration)
}

// --- Configuration phase ---

// AssignTransition allows event ev in state from and routes it to to.
func (f *FSM[T]) AssignTransition(from StateID, ev EventID, to StateID) error {
	return f.cfg.AssignTransition(from, ev, to)
}

// AssignPassState marks from as a pass-state leading to to. Entering from
// runs its callback and immediately moves on to to in the same execution
// step. Previously configured timeout or inner transitions on from are
// dropped with a logged warning.
func (f *FSM[T]) AssignPassState(from, to StateID) error {
	warns, err := f.cfg.AssignPassState(from, to)
	for _, w := range warns {
		f.log.Warn().Str("code", w.Code).Msg(w.Message)
	}
	return err
}

// AssignTransitionAlways routes event ev to state to from every state.
func (f *FSM[T]) AssignTransitionAlways(ev EventID, to StateID) error {
	return f.cfg.AssignTransitionAlways(ev, to)
}

// AllowEvent toggles whether ev is honored in st without touching the
// transition target.
func (f *FSM[T]) AllowEvent(st StateID, ev EventID, enabled bool) error {
	return f.cfg.AllowEvent(st, ev, enabled)
}

// AllowAllEvents honors every event in every state.
func (f *FSM[T]) AllowAllEvents() { f.cfg.AllowAllEvents() }

// SetDefaultUnit changes the unit used by AssignTimeout.
func (f *FSM[T]) SetDefaultUnit(u Unit) { f.cfg.SetDefaultUnit(u) }

// AssignTimeout configures a timeout on st using the default unit: after
// dur units in st the machine moves to next.
func (f *FSM[T]) AssignTimeout(st StateID, dur int, next StateID) error {
	return f.AssignTimeoutUnit(st, dur, f.cfg.DefaultUnit(), next)
}

// AssignTimeoutUnit configures a timeout on st with an explicit unit.
func (f *FSM[T]) AssignTimeoutUnit(st StateID, dur int, unit Unit, next StateID) error {
	if err := f.requireTimer(); err != nil {
		return err
	}
	return f.cfg.AssignTimeout(st, dur, unit, next)
}

// AssignGlobalTimeout applies the same timeout to every state except
// final. It fails, naming the state, if any target state already has a
// timeout configured.
func (f *FSM[T]) AssignGlobalTimeout(dur int, unit Unit, final StateID) error {
	if err := f.requireTimer(); err != nil {
		return err
	}
	return f.cfg.AssignGlobalTimeout(dur, unit, final)
}

func (f *FSM[T]) requireTimer() error {
	if _, none := f.timer.(NoTimer[T]); none || f.timer == nil {
		return ir.NewConfigError(ErrCodeNoTimer, "machine was built without a timer")
	}
	return nil
}

// AssignInnerTransition attaches an inner-transition descriptor to from.
func (f *FSM[T]) AssignInnerTransition(from StateID, ev EventID, to StateID) error {
	return f.cfg.AssignInnerTransition(from, ev, to)
}

// BroadcastInnerTransition attaches the same inner-transition descriptor
// to every state except to. Already-present identical descriptors are
// skipped.
func (f *FSM[T]) BroadcastInnerTransition(ev EventID, to StateID) error {
	return f.cfg.BroadcastInnerTransition(ev, to)
}

// DisableInnerTransition removes the inner-transition descriptor for ev
// on state from.
func (f *FSM[T]) DisableInnerTransition(ev EventID, from StateID) error {
	return f.cfg.DisableInnerTransition(ev, from)
}

// AssignEventMatrix replaces the whole allowed matrix.
func (f *FSM[T]) AssignEventMatrix(mat [][]bool) error {
	return f.cfg.AssignEventMatrix(mat)
}

// AssignTransitionMatrix replaces the whole transition matrix.
func (f *FSM[T]) AssignTransitionMatrix(mat [][]StateID) error {
	return f.cfg.AssignTransitionMatrix(mat)
}

// AssignCallback sets the entry callback of st and its stored argument.
func (f *FSM[T]) AssignCallback(st StateID, fn Callback[T], arg T) error {
	if err := f.cfg.CheckState(st); err != nil {
		return err
	}
	f.callbacks[st] = fn
	f.args[st] = arg
	return nil
}

// AssignGlobalCallback sets the same entry callback on every state. The
// per-state arguments are left untouched.
func (f *FSM[T]) AssignGlobalCallback(fn Callback[T]) {
	for st := range f.callbacks {
		f.callbacks[st] = fn
	}
}

// AssignCallbackValue updates only the stored argument of st, leaving the
// callback untouched.
func (f *FSM[T]) AssignCallbackValue(st StateID, arg T) error {
	if err := f.cfg.CheckState(st); err != nil {
		return err
	}
	f.args[st] = arg
	return nil
}

// SetStateName assigns a display name to a state.
func (f *FSM[T]) SetStateName(st StateID, name string) error {
	return f.cfg.SetStateName(st, name)
}

// SetEventName assigns a display name to an event.
func (f *FSM[T]) SetEventName(ev EventID, name string) error {
	return f.cfg.SetEventName(ev, name)
}

// StateName returns the display name of a state.
func (f *FSM[T]) StateName(st StateID) string { return f.cfg.StateName(st) }

// EventName returns the display name of an event.
func (f *FSM[T]) EventName(ev EventID) string { return f.cfg.EventName(int(ev)) }

// AssignConfig adopts the whole configuration of another machine with the
// same state and event counts, including callbacks and their arguments.
func (f *FSM[T]) AssignConfig(src *FSM[T]) error {
	if err := f.cfg.CopyFrom(src.cfg); err != nil {
		return err
	}
	copy(f.callbacks, src.callbacks)
	copy(f.args, src.args)
	return nil
}

// Snapshot exports the configuration. Callbacks are not part of a
// snapshot.
func (f *FSM[T]) Snapshot() *Snapshot { return f.cfg.Snapshot() }

// Restore replaces the configuration with the snapshot contents.
func (f *FSM[T]) Restore(s *Snapshot) error { return f.cfg.Restore(s) }

// --- Runtime phase ---

// Start validates the configuration, runs the initial state's action and
// hands control to the timer port's Init call. With a blocking timer port
// this call occupies the goroutine until the machine stops; with NoTimer
// or a non-blocking port it returns immediately.
//
// Validation warnings are logged and kept (see Warnings); only descriptor
// conflicts abort the start.
func (f *FSM[T]) Start() error {
	f.mu.Lock()
	if f.running {
		f.mu.Unlock()
		return ir.NewRuntimeError(ErrCodeAlreadyRunning, "machine is already running")
	}

	warns, err := ir.Validate(f.cfg)
	if err != nil {
		f.mu.Unlock()
		return err
	}
	f.warnings = warns
	for _, w := range warns {
		f.log.Warn().Str("code", w.Code).Int("state", int(w.State)).Msg(w.Message)
	}

	f.running = true
	f.setCurrent(0)
	if f.recorder != nil {
		f.recorder.RecordStart(0)
	}
	f.log.Debug().Int("state", 0).Msg("machine started")
	f.runAction()
	f.mu.Unlock()

	return f.timer.Init(f)
}

// Stop cancels any pending timer, releases the timer port and clears the
// running flag.
func (f *FSM[T]) Stop() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.running {
		return ir.NewRuntimeError(ErrCodeNotRunning, "machine is not running")
	}
	f.timer.Cancel()
	f.timer.Kill()
	f.running = false
	f.log.Debug().Msg("machine stopped")
	return nil
}

// ProcessEvent applies an external event. An event that is not allowed in
// the current state is ignored, not an error: the ignored counter is
// bumped, the ignored-event hook fires, and the state is unchanged.
func (f *FSM[T]) ProcessEvent(ev EventID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.running {
		return ir.NewRuntimeError(ErrCodeNotRunning, "event processed before start")
	}
	if ev < 0 || int(ev) >= f.cfg.EventCount() {
		return ir.RuntimeErrorf(ErrCodeEventRange, "event index %d out of range [0,%d)", ev, f.cfg.EventCount())
	}

	cur := f.CurrentState()
	if !f.cfg.IsAllowed(ev, cur) {
		f.log.Debug().Int("event", int(ev)).Int("state", int(cur)).Msg("event ignored")
		if f.recorder != nil {
			f.recorder.RecordIgnored(ev)
		}
		if f.ignored != nil {
			f.ignored(ev)
		}
		return nil
	}

	if f.cfg.Timeout(cur).Enabled {
		f.timer.Cancel()
	}
	next := f.cfg.Target(ev, cur)
	f.setCurrent(next)
	f.record(next, int(ev))
	f.log.Debug().Int("event", int(ev)).Int("state", int(next)).Msg("transition")
	f.runAction()
	return nil
}

// ProcessTimeout is invoked by the timer port when a previously armed
// delay fires. A delivery for a state whose timeout is not enabled means
// the port failed to cancel a stale timer; it is rejected, not applied.
func (f *FSM[T]) ProcessTimeout() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.running {
		return ir.NewRuntimeError(ErrCodeNotRunning, "timeout processed before start")
	}
	cur := f.CurrentState()
	td := f.cfg.Timeout(cur)
	if !td.Enabled {
		return ir.RuntimeErrorf(ErrCodeTimeoutNotArmed, "state %d has no timeout armed", cur)
	}
	f.setCurrent(td.Next)
	f.record(td.Next, f.cfg.TimeoutTag())
	f.log.Debug().Int("state", int(td.Next)).Msg("timeout transition")
	f.runAction()
	return nil
}

// RaiseInnerEvent latches every inner-transition descriptor bound to ev
// and notifies the timer port's signal channel when it has one. Ports
// without signal support leave delivery to the caller, who invokes
// ProcessInnerEvent directly.
func (f *FSM[T]) RaiseInnerEvent(ev EventID) error {
	f.mu.Lock()
	if ev < 0 || int(ev) >= f.cfg.EventCount() {
		f.mu.Unlock()
		return ir.RuntimeErrorf(ErrCodeEventRange, "event index %d out of range [0,%d)", ev, f.cfg.EventCount())
	}
	n := f.cfg.LatchInner(ev)
	f.mu.Unlock()

	f.log.Debug().Int("event", int(ev)).Int("latched", n).Msg("inner event raised")
	if n == 0 {
		return nil
	}
	if sr, ok := f.timer.(SignalRaiser); ok {
		sr.Raise()
	}
	return nil
}

// ProcessInnerEvent consumes one latched inner transition on the current
// state, or vacates a pass-state. It is invoked by the signal-delivery
// mechanism; only one inner transition is consumed per call even if
// several are latched.
func (f *FSM[T]) ProcessInnerEvent() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.running {
		return ir.NewRuntimeError(ErrCodeNotRunning, "inner event processed before start")
	}

	cur := f.CurrentState()
	if next, ok := f.cfg.PassState(cur); ok {
		f.setCurrent(next)
		f.record(next, f.cfg.PassTag())
		f.runAction()
		return nil
	}

	next, ev, ok := f.cfg.ConsumeInner(cur)
	if !ok {
		f.log.Debug().Int("state", int(cur)).Msg("no latched inner transition")
		return nil
	}
	if f.cfg.Timeout(cur).Enabled {
		f.timer.Cancel()
	}
	f.setCurrent(next)
	f.record(next, int(ev))
	f.log.Debug().Int("event", int(ev)).Int("state", int(next)).Msg("inner transition")
	f.runAction()
	return nil
}

func (f *FSM[T]) record(st StateID, tag int) {
	if f.recorder != nil {
		f.recorder.RecordTransition(st, tag)
	}
}

// runAction performs the destination state's action: arm the timeout (the
// callback may be slow, so the timer goes first), then invoke the
// callback with the stored argument. A pass-state cascades one hop into
// its destination's action; validation guarantees the destination is not
// itself a pass-state, so the cascade cannot loop.
func (f *FSM[T]) runAction() {
	cur := f.CurrentState()
	f.doJob(cur)
	if next, ok := f.cfg.PassState(cur); ok {
		f.setCurrent(next)
		f.record(next, f.cfg.PassTag())
		f.log.Debug().Int("state", int(next)).Msg("pass-state transition")
		f.doJob(next)
	}
}

func (f *FSM[T]) doJob(st StateID) {
	if f.cfg.Timeout(st).Enabled {
		f.timer.Start(f)
	}
	if cb := f.callbacks[st]; cb != nil {
		cb(f.args[st])
	}
}
