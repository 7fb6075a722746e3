// Package fakeclock provides a notary.Clock implementation with a
// settable, non-advancing time, for deterministic time-window tests.
package fakeclock

import (
	"sync"
	"time"
)

// Clock is a notary.Clock whose Now() reading is set explicitly and
// only ever changes when Set is called.
type Clock struct {
	mtx sync.RWMutex
	now time.Time
}

// New returns a Clock fixed at now.
func New(now time.Time) *Clock {
	return &Clock{now: now}
}

// Now implements notary.Clock.
func (c *Clock) Now() time.Time {
	c.mtx.RLock()
	defer c.mtx.RUnlock()
	return c.now
}

// Set moves the clock's reading to now.
func (c *Clock) Set(now time.Time) {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	c.now = now
}
