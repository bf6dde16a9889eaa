package lifecycle

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logrus.SetLevel(logrus.FatalLevel)
	m.Run()
}

// counter counts its steps and misbehaves on request.
type counter struct {
	steps  atomic.Int64
	closed atomic.Bool
	fail   bool
	panics bool
}

func (c *counter) Close_() { c.closed.Store(true) }

func (*counter) String() string { return "COUNTER" }

func (c *counter) Step(stopCh <-chan struct{}) error {
	select {
	case <-stopCh:
		return &BreakError{}
	case <-time.After(time.Millisecond):
	}
	n := c.steps.Add(1)
	if c.panics && n%2 == 1 {
		panic("odd step")
	}
	if c.fail {
		return errors.New("step failed")
	}
	return nil
}

func TestFailsafeAsyncStart(t *testing.T) {
	t.Parallel()

	inst := &counter{}
	manager := NewFailSafeAsyncManager(inst)
	require.NoError(t, manager.Start(func(*counter) error { return nil }))
	require.Eventually(t, func() bool { return inst.steps.Load() > 2 }, time.Second, time.Millisecond)
	manager.Close()
	require.True(t, inst.closed.Load())
}

func TestFailsafeAsyncErrorStart(t *testing.T) {
	t.Parallel()

	manager := NewFailSafeAsyncManager(&counter{})
	require.NoError(t, manager.Start(func(*counter) error { return errors.New("") }))
	select {
	case <-manager.Done():
		t.FailNow()
	default:
	}
	manager.Close()
}

func TestFailsafeAsyncStartAfterStart(t *testing.T) {
	t.Parallel()

	manager := NewFailSafeAsyncManager(&counter{})
	require.NoError(t, manager.Start(func(*counter) error { return nil }))
	err := manager.Start(func(*counter) error { return nil })
	targetError := &StartedAlreadyError{}
	require.ErrorAs(t, err, &targetError)
	manager.Close()
}

func TestFailsafeAsyncStartAfterClose(t *testing.T) {
	t.Parallel()

	inst := &counter{}
	manager := NewFailSafeAsyncManager(inst)
	manager.Close()
	err := manager.Start(func(*counter) error { return nil })
	targetError := &StartedAfterCloseError{}
	require.ErrorAs(t, err, &targetError)
	require.True(t, inst.closed.Load())
	<-manager.Done()
}

func TestFailsafeAsyncSurvivesErrorsAndPanics(t *testing.T) {
	t.Parallel()

	for _, inst := range []*counter{{fail: true}, {panics: true}} {
		manager := NewFailSafeAsyncManager(inst)
		require.NoError(t, manager.Start(func(*counter) error { return nil }))
		require.Eventually(t, func() bool { return inst.steps.Load() > 4 }, time.Second, time.Millisecond)
		select {
		case <-manager.Done():
			t.FailNow()
		default:
		}
		manager.Close()
		<-manager.Done()
	}
}
