// Package lifecycle runs long-lived goroutines that step until told to stop.
package lifecycle

type Instance interface {
	Close_()
	String() string
}

type AsyncInstance interface {
	Instance
	// Step does one unit of work. Returning *BreakError ends the loop.
	Step(stopChan <-chan struct{}) error
}

type AsyncManager[T AsyncInstance] interface {
	Start(func(T) error) error
	Close()
	Done() <-chan struct{}
}

type BreakError struct{}

func (*BreakError) Error() string {
	return "break"
}

type StartedAlreadyError struct{}

func (*StartedAlreadyError) Error() string {
	return "started already"
}

type StartedAfterCloseError struct{}

func (*StartedAfterCloseError) Error() string {
	return "start after close"
}

var errBreak = &BreakError{}
