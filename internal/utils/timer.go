package utils

import "time"

// Timer measures the wall-clock time of one operation. It starts when
// created.
type Timer struct {
	start    time.Time
	duration time.Duration
}

func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// Stop records and returns the time elapsed since creation.
func (t *Timer) Stop() time.Duration {
	t.duration = time.Since(t.start)
	return t.duration
}

// GetDuration returns the duration recorded by the last Stop, or zero.
func (t *Timer) GetDuration() time.Duration {
	return t.duration
}
