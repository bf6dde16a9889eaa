package lifecycle

import (
	"errors"
	"runtime/debug"
	"sync"

	"github.com/ugparu/mp4edts/utils/logger"
)

// failsafeAsyncLifecycleManager keeps stepping through errors and panics;
// only *BreakError or Close stops it.
type failsafeAsyncLifecycleManager[T AsyncInstance] struct {
	instance             T
	stopChan, doneChan   chan struct{}
	startOnce, closeOnce sync.Once
}

func NewFailSafeAsyncManager[T AsyncInstance](instance T) AsyncManager[T] {
	return &failsafeAsyncLifecycleManager[T]{
		instance: instance,
		stopChan: make(chan struct{}),
		doneChan: make(chan struct{}),
	}
}

func (m *failsafeAsyncLifecycleManager[T]) Start(startFunc func(T) error) (err error) {
	select {
	case <-m.stopChan:
		return &StartedAfterCloseError{}
	default:
		err = &StartedAlreadyError{}
	}
	m.startOnce.Do(func() {
		err = nil
		logger.Debug(m.instance, "Starting failsafe async")
		if startErr := startFunc(m.instance); startErr != nil {
			logger.Warningf(m.instance, "Detected error on start: %s", startErr.Error())
		}
		go m.process()
	})
	return err
}

func (m *failsafeAsyncLifecycleManager[T]) step() (running bool) {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf(m.instance, "Panic detected! Recovering from: %v", r)
			logger.Errorf(m.instance, "%s", debug.Stack())
			running = true
		}
	}()
	if err := m.instance.Step(m.stopChan); err != nil {
		if errors.As(err, &errBreak) {
			return false
		}
		logger.Warningf(m.instance, "Detected error: %s", err.Error())
	}
	return true
}

func (m *failsafeAsyncLifecycleManager[T]) process() {
	logger.Debug(m.instance, "Entering main loop")
	defer close(m.doneChan)
	for m.step() {
	}
}

func (m *failsafeAsyncLifecycleManager[T]) Close() {
	m.closeOnce.Do(func() {
		close(m.stopChan)
		m.startOnce.Do(func() {
			close(m.doneChan)
		})
		<-m.doneChan
		m.instance.Close_()
	})
}

func (m *failsafeAsyncLifecycleManager[T]) Done() <-chan struct{} {
	return m.doneChan
}
