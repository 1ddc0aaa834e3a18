package ports

import "time"

// CancelFunc stops a scheduled callback. It reports whether the callback was still pending.
type CancelFunc func() bool

// Scheduler runs a callback once after a delay.
type Scheduler interface {
	AfterFunc(delay time.Duration, fn func()) CancelFunc
}

type SystemScheduler struct{}

func (SystemScheduler) AfterFunc(delay time.Duration, fn func()) CancelFunc {
	return time.AfterFunc(delay, fn).Stop
}
