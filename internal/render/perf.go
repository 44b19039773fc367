package render

import (
	"math"
	"sync/atomic"
	"time"
)

// FPSFromDelta converts the interval between two presented frames into a
// rounded frames-per-second sample. Non-positive deltas yield zero.
func FPSFromDelta(delta time.Duration) int {
	if delta <= 0 {
		return 0
	}
	return int(math.Round(float64(time.Second) / float64(delta)))
}

// PresentStats tracks presentation timing. All methods are safe for
// concurrent use; the presenter writes and any goroutine may read.
type PresentStats struct {
	frames       atomic.Int64
	failures     atomic.Int64
	fps          atomic.Int64
	lastInterval atomic.Int64 // nanoseconds
	minInterval  atomic.Int64
	maxInterval  atomic.Int64
	totalTime    atomic.Int64
	intervals    atomic.Int64
}

// NewPresentStats creates an empty PresentStats.
func NewPresentStats() *PresentStats {
	ps := &PresentStats{}
	ps.minInterval.Store(int64(time.Hour))
	return ps
}

// RecordPresent counts one presented frame.
func (ps *PresentStats) RecordPresent() {
	ps.frames.Add(1)
}

// RecordFailure counts one failed iteration.
func (ps *PresentStats) RecordFailure() {
	ps.failures.Add(1)
}

// RecordInterval stores the time between two consecutive presentation
// iterations and updates the FPS sample.
func (ps *PresentStats) RecordInterval(delta time.Duration) {
	nanos := delta.Nanoseconds()
	ps.lastInterval.Store(nanos)
	ps.totalTime.Add(nanos)
	ps.intervals.Add(1)
	ps.fps.Store(int64(FPSFromDelta(delta)))

	for {
		cur := ps.minInterval.Load()
		if nanos >= cur || ps.minInterval.CompareAndSwap(cur, nanos) {
			break
		}
	}
	for {
		cur := ps.maxInterval.Load()
		if nanos <= cur || ps.maxInterval.CompareAndSwap(cur, nanos) {
			break
		}
	}
}

// Frames returns the number of presented frames.
func (ps *PresentStats) Frames() int64 { return ps.frames.Load() }

// Failures returns the number of failed iterations.
func (ps *PresentStats) Failures() int64 { return ps.failures.Load() }

// FPS returns the latest frames-per-second sample.
func (ps *PresentStats) FPS() int { return int(ps.fps.Load()) }

// LastInterval returns the most recent frame interval.
func (ps *PresentStats) LastInterval() time.Duration {
	return time.Duration(ps.lastInterval.Load())
}

// MinInterval returns the shortest frame interval, or zero if none.
func (ps *PresentStats) MinInterval() time.Duration {
	if ps.intervals.Load() == 0 {
		return 0
	}
	return time.Duration(ps.minInterval.Load())
}

// MaxInterval returns the longest frame interval.
func (ps *PresentStats) MaxInterval() time.Duration {
	return time.Duration(ps.maxInterval.Load())
}

// AverageInterval returns the mean frame interval.
func (ps *PresentStats) AverageInterval() time.Duration {
	n := ps.intervals.Load()
	if n == 0 {
		return 0
	}
	return time.Duration(ps.totalTime.Load() / n)
}

// Reset clears all counters.
func (ps *PresentStats) Reset() {
	ps.frames.Store(0)
	ps.failures.Store(0)
	ps.fps.Store(0)
	ps.lastInterval.Store(0)
	ps.minInterval.Store(int64(time.Hour))
	ps.maxInterval.Store(0)
	ps.totalTime.Store(0)
	ps.intervals.Store(0)
}
