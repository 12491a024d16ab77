package sim

import (
	"sync"
	"time"
)

// VTimeInSec is the time in seconds since the clock was started.
type VTimeInSec float64

// TimeTeller can be used to get the current time.
type TimeTeller interface {
	CurrentTime() VTimeInSec
}

// WallClock is a TimeTeller that follows real time. The emulated controller
// has no virtual clock, so traces are stamped with the elapsed wall time.
type WallClock struct {
	once  sync.Once
	start time.Time
}

// NewWallClock creates a WallClock that starts counting now.
func NewWallClock() *WallClock {
	c := &WallClock{}
	c.once.Do(func() { c.start = time.Now() })

	return c
}

// CurrentTime returns the seconds elapsed since the clock was created.
func (c *WallClock) CurrentTime() VTimeInSec {
	c.once.Do(func() { c.start = time.Now() })

	return VTimeInSec(time.Since(c.start).Seconds())
}
