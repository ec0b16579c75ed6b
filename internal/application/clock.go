package application

import "time"

// Clock abstracts wall time and one-shot scheduling so the timer registry
// and time announcements can run against a fake clock in tests.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, fn func()) TimerHandle
}

// TimerHandle is a cancellable scheduled task.
type TimerHandle interface {
	// Stop cancels the pending call, reporting whether it was prevented
	// from running.
	Stop() bool
}

type realClock struct{}

// NewRealClock returns a Clock backed by the system clock.
func NewRealClock() Clock { return realClock{} }

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, fn func()) TimerHandle {
	return time.AfterFunc(d, fn)
}
