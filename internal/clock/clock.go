// Package clock lets date-stamping code run against a controllable time source.
package clock

import (
	"sync"
	"time"
)

type Clock interface {
	Now() time.Time
}

// System reads the wall clock in the process's local zone.
type System struct{}

func (System) Now() time.Time { return time.Now() }

// Fake only moves when told to.
type Fake struct {
	mu sync.RWMutex
	t  time.Time
}

func NewFake(start time.Time) *Fake {
	return &Fake{t: start}
}

func (c *Fake) Now() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.t
}

func (c *Fake) Set(t time.Time) {
	c.mu.Lock()
	c.t = t
	c.mu.Unlock()
}

func (c *Fake) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

// Date formats the clock's current local day with layout.
func Date(c Clock, layout string) string {
	return c.Now().Local().Format(layout)
}
