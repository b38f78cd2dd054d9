package gridfsm

import (
	"sync"
	"time"
)

// Timer is the port the engine drives for time-based transitions. Start
// arms a one-shot delay of TimeoutDuration(CurrentState()) and must call
// ProcessTimeout on expiry unless cancelled first. Cancel and Kill must
// be safe to call when nothing is pending.
type Timer[T any] interface {
	// Init is called once from Start and may block to run an event
	// loop. Machines driven by an external loop use a port whose Init
	// returns immediately.
	Init(f *FSM[T]) error
	// Start arms a one-shot delay for the machine's current state.
	Start(f *FSM[T])
	// Cancel drops any pending delay. Idempotent.
	Cancel()
	// Kill releases timer resources permanently. Called by Stop.
	Kill()
}

// SignalRaiser is the optional capability a timer port implements to
// deliver inner-event notifications. Raise posts to the port's mailbox;
// the port's loop consumes it and calls ProcessInnerEvent.
type SignalRaiser interface {
	Raise()
}

// NoTimer is the default timer port for machines without time-based
// transitions. All operations are no-ops; assigning a timeout to a
// machine built with NoTimer is a configuration error.
type NoTimer[T any] struct{}

// Init implements Timer
func (NoTimer[T]) Init(*FSM[T]) error { return nil }

// Start implements Timer
func (NoTimer[T]) Start(*FSM[T]) {}

// Cancel implements Timer
func (NoTimer[T]) Cancel() {}

// Kill implements Timer
func (NoTimer[T]) Kill() {}

// ClockTimer is a Timer backed by the runtime clock: Start arms a
// time.AfterFunc one-shot. Inner-event signals go through a single-slot
// mailbox consumed by the Init loop, so delivery is serialized with at
// most one notification in flight.
type ClockTimer[T any] struct {
	mu   sync.Mutex
	ptr  *time.Timer
	gen  uint64
	fsm  *FSM[T]
	mail chan struct{}
	quit chan struct{}
	kill sync.Once

	blocking bool
}

// ClockTimerOption configures a ClockTimer.
type ClockTimerOption func(*clockTimerSettings)

type clockTimerSettings struct {
	blocking bool
}

// NonBlocking makes Init return immediately, running the signal-delivery
// loop on its own goroutine. Use it when the caller owns the main loop.
func NonBlocking() ClockTimerOption {
	return func(s *clockTimerSettings) { s.blocking = false }
}

// NewClockTimer creates a clock-backed timer port. By default Init blocks
// until Kill, mirroring an embedded event loop.
func NewClockTimer[T any](opts ...ClockTimerOption) *ClockTimer[T] {
	s := clockTimerSettings{blocking: true}
	for _, opt := range opts {
		opt(&s)
	}
	return &ClockTimer[T]{
		mail:     make(chan struct{}, 1),
		quit:     make(chan struct{}),
		blocking: s.blocking,
	}
}

// Init implements Timer. In blocking mode it runs the signal-delivery
// loop inline until Kill; in non-blocking mode the loop runs on its own
// goroutine and Init returns immediately.
func (t *ClockTimer[T]) Init(f *FSM[T]) error {
	t.mu.Lock()
	t.fsm = f
	t.mu.Unlock()
	if t.blocking {
		t.loop()
		return nil
	}
	go t.loop()
	return nil
}

func (t *ClockTimer[T]) loop() {
	for {
		select {
		case <-t.quit:
			return
		case <-t.mail:
			t.mu.Lock()
			f := t.fsm
			t.mu.Unlock()
			if f != nil {
				_ = f.ProcessInnerEvent()
			}
		}
	}
}

// Start implements Timer. A previously armed delay is replaced. The
// generation counter keeps a cancelled one-shot that already fired from
// delivering a stale timeout.
func (t *ClockTimer[T]) Start(f *FSM[T]) {
	d := f.TimeoutDuration(f.CurrentState())

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.ptr != nil {
		t.ptr.Stop()
	}
	t.gen++
	g := t.gen
	t.ptr = time.AfterFunc(d, func() {
		t.mu.Lock()
		live := t.gen == g
		t.mu.Unlock()
		if live {
			_ = f.ProcessTimeout()
		}
	})
}

// Cancel implements Timer
func (t *ClockTimer[T]) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.gen++
	if t.ptr != nil {
		t.ptr.Stop()
		t.ptr = nil
	}
}

// Kill implements Timer. It stops the signal-delivery loop; the port
// cannot be reused afterwards.
func (t *ClockTimer[T]) Kill() {
	t.Cancel()
	t.kill.Do(func() { close(t.quit) })
}

// Raise implements SignalRaiser. The mailbox holds one slot; raising
// while a notification is already pending is a no-op, matching the
// at-most-one-in-flight delivery model.
func (t *ClockTimer[T]) Raise() {
	select {
	case t.mail <- struct{}{}:
	default:
	}
}
