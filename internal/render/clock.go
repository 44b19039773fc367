package render

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"
)

// ErrInvalidFrequency is returned when a pacing frequency is zero or negative.
var ErrInvalidFrequency = errors.New("frequency must be positive")

const (
	// sleepSlice bounds a single sleep so overshoot stays near the polling
	// granularity of the monotonic clock.
	sleepSlice = time.Millisecond
	// spinWindow is the tail of each period spent yielding instead of sleeping.
	spinWindow = 200 * time.Microsecond
)

// FrameClock paces a loop to a target frequency.
//
// Each call to Tick returns no sooner than one period after the previous
// return. The next deadline is computed from the actual wake time rather
// than from the intended tick boundary, so a late frame never causes a burst
// of catch-up frames; under sustained scheduler pressure the effective rate
// drifts slightly below the nominal one.
type FrameClock struct {
	mu       sync.Mutex
	last     time.Time
	anchored bool
}

// NewFrameClock creates a FrameClock. The first Tick anchors it.
func NewFrameClock() *FrameClock {
	return &FrameClock{}
}

// Tick blocks until 1/hz seconds have elapsed since the previous return of
// Tick on this clock. The first call returns immediately.
func (c *FrameClock) Tick(hz int) error {
	if hz <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidFrequency, hz)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.anchored {
		c.last = time.Now()
		c.anchored = true
		return nil
	}

	deadline := c.last.Add(time.Second / time.Duration(hz))
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			break
		}
		if remaining > spinWindow {
			step := remaining - spinWindow
			if step > sleepSlice {
				step = sleepSlice
			}
			time.Sleep(step)
			continue
		}
		runtime.Gosched()
	}

	c.last = time.Now()
	return nil
}

// Reset forgets the anchor so the next Tick returns immediately.
func (c *FrameClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.anchored = false
}

// Last returns the time of the most recent Tick return.
func (c *FrameClock) Last() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last
}
