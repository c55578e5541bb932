package vm

import (
	"time"

	"github.com/thoriumlang/thm/memmap"
)

// Clock is the periodic interrupt source: a single long-lived worker that
// triggers INT_CLOCK every interval. Grounded on the original clock.rs
// (a daemon thread sleeping and triggering the PIC); here a goroutine
// stopped cooperatively via a done channel rather than killed, since Go
// has no thread-kill primitive and the PIC must not be touched after the
// VM shuts down (spec §4.9, §5).
type Clock struct {
	pic      *PIC
	interval time.Duration
	done     chan struct{}
}

// NewClock creates a Clock that will trigger memmap.IntClock on pic every
// interval once Start is called.
func NewClock(pic *PIC, interval time.Duration) *Clock {
	return &Clock{pic: pic, interval: interval, done: make(chan struct{})}
}

// Start launches the clock goroutine. It returns immediately; the clock
// keeps running until Stop is called.
func (c *Clock) Start() {
	go func() {
		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()
		for {
			select {
			case <-c.done:
				return
			case <-ticker.C:
				c.pic.Trigger(memmap.IntClock)
			}
		}
	}()
}

// Stop terminates the clock goroutine. It must be called before the VM
// discards its PIC.
func (c *Clock) Stop() {
	close(c.done)
}
