package gridfsm_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridfsm/gridfsm"
	"github.com/gridfsm/gridfsm/telemetry"
)

func TestClockTimerFires(t *testing.T) {
	f, err := gridfsm.New[string](2, 1,
		gridfsm.WithTimer[string](gridfsm.NewClockTimer[string](gridfsm.NonBlocking())))
	require.NoError(t, err)
	require.NoError(t, f.AssignTimeoutUnit(0, 20, gridfsm.Millisecond, 1))
	require.NoError(t, f.AssignTransition(1, 0, 0))

	entered := make(chan struct{}, 1)
	require.NoError(t, f.AssignCallback(1, func(string) { entered <- struct{}{} }, ""))

	require.NoError(t, f.Start())
	defer f.Stop()

	select {
	case <-entered:
	case <-time.After(2 * time.Second):
		t.Fatal("timeout transition never fired")
	}
	assert.Equal(t, gridfsm.StateID(1), f.CurrentState())
}

func TestClockTimerCancelledByEvent(t *testing.T) {
	hist := telemetry.NewHistory()
	f, err := gridfsm.New[string](3, 1,
		gridfsm.WithTimer[string](gridfsm.NewClockTimer[string](gridfsm.NonBlocking())),
		gridfsm.WithRecorder[string](hist))
	require.NoError(t, err)
	require.NoError(t, f.AssignTimeoutUnit(0, 40, gridfsm.Millisecond, 2))
	require.NoError(t, f.AssignTransition(0, 0, 1))
	require.NoError(t, f.AssignTransition(1, 0, 0))
	require.NoError(t, f.AllowEvent(2, 0, true))

	require.NoError(t, f.Start())
	defer f.Stop()

	// Leave state 0 before its delay expires; the pending one-shot must
	// not deliver a stale timeout.
	require.NoError(t, f.ProcessEvent(0))
	time.Sleep(150 * time.Millisecond)

	assert.Equal(t, gridfsm.StateID(1), f.CurrentState())
	assert.Equal(t, uint64(0), hist.EventHits(f.EventCount()))
	assert.Equal(t, uint64(0), hist.StateVisits(2))
}

func TestClockTimerBlockingInit(t *testing.T) {
	hist := telemetry.NewHistory()
	f, err := gridfsm.New[string](3, 1,
		gridfsm.WithTimer[string](gridfsm.NewClockTimer[string]()),
		gridfsm.WithRecorder[string](hist))
	require.NoError(t, err)
	require.NoError(t, f.AssignTimeoutUnit(0, 10, gridfsm.Millisecond, 1))
	require.NoError(t, f.AssignTimeoutUnit(1, 10, gridfsm.Millisecond, 2))
	require.NoError(t, f.AssignTimeoutUnit(2, 10, gridfsm.Millisecond, 0))

	done := make(chan error, 1)
	go func() { done <- f.Start() }()

	require.Eventually(t, func() bool {
		return hist.StateVisits(2) >= 2
	}, 5*time.Second, 5*time.Millisecond)

	require.NoError(t, f.Stop())
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return after Stop")
	}
}

func TestClockTimerSignalDelivery(t *testing.T) {
	const quit gridfsm.EventID = 0

	f, err := gridfsm.New[string](2, 1,
		gridfsm.WithTimer[string](gridfsm.NewClockTimer[string](gridfsm.NonBlocking())))
	require.NoError(t, err)
	require.NoError(t, f.BroadcastInnerTransition(quit, 1))

	require.NoError(t, f.Start())
	defer f.Stop()

	require.NoError(t, f.RaiseInnerEvent(quit))
	require.Eventually(t, func() bool {
		return f.CurrentState() == 1
	}, 2*time.Second, time.Millisecond)
}
