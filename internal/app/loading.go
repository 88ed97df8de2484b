package app

import (
	"sync/atomic"
)

// Loading tracks in-flight operations for a busy indicator. The flag is
// cleared on every exit path of the tracked call.
type Loading struct {
	active atomic.Int32
}

// Track runs fn with the loading flag raised.
func (l *Loading) Track(fn func() error) error {
	l.active.Add(1)
	defer l.active.Add(-1)
	return fn()
}

// Active reports whether any tracked call is running.
func (l *Loading) Active() bool {
	return l.active.Load() > 0
}
