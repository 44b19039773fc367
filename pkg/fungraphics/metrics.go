package fungraphics

import (
	"expvar"
	"sync/atomic"
	"time"
)

// Metrics collects operational counters of a FunGraphics instance and of
// the Lua scenes driving it. It uses Go's expvar package for exposition,
// which can be accessed via the /debug/vars HTTP endpoint when an HTTP
// server is running.
//
// Thread-safe for concurrent use.
//
// Example usage:
//
//	metrics := fungraphics.NewMetrics()
//	metrics.RegisterExpvar()
//	opts := fungraphics.DefaultOptions()
//	opts.Metrics = metrics
type Metrics struct {
	// Counters
	starts           atomic.Int64
	stops            atomic.Int64
	drawCalls        atomic.Int64
	outOfBounds      atomic.Int64
	screenshots      atomic.Int64
	logicTicks       atomic.Int64
	presentFailures  atomic.Int64
	errorsTotal      atomic.Int64
	errorsByCategory [numCategories]atomic.Int64
	scriptExecutions atomic.Int64
	scriptErrors     atomic.Int64
	scriptReloads    atomic.Int64

	// Latency tracking (stored as nanoseconds)
	scriptLatencyNs    atomic.Int64
	scriptLatencyCount atomic.Int64

	// Current state gauges
	currentlyRunning atomic.Int32
	fps              atomic.Int32

	registered atomic.Bool
}

// NewMetrics creates a new Metrics instance.
// Call RegisterExpvar() to expose metrics via the /debug/vars endpoint.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// RegisterExpvar registers all metrics with Go's expvar package under the
// fungraphics_ prefix. Only the first call per instance has an effect;
// registering two instances panics, as expvar names are global.
func (m *Metrics) RegisterExpvar() {
	if !m.registered.CompareAndSwap(false, true) {
		return
	}

	counters := map[string]*atomic.Int64{
		"fungraphics_starts_total":            &m.starts,
		"fungraphics_stops_total":             &m.stops,
		"fungraphics_draw_calls_total":        &m.drawCalls,
		"fungraphics_out_of_bounds_total":     &m.outOfBounds,
		"fungraphics_screenshots_total":       &m.screenshots,
		"fungraphics_logic_ticks_total":       &m.logicTicks,
		"fungraphics_present_failures_total":  &m.presentFailures,
		"fungraphics_errors_total":            &m.errorsTotal,
		"fungraphics_script_executions_total": &m.scriptExecutions,
		"fungraphics_script_errors_total":     &m.scriptErrors,
		"fungraphics_script_reloads_total":    &m.scriptReloads,
	}
	for name, c := range counters {
		c := c
		expvar.Publish(name, expvar.Func(func() any { return c.Load() }))
	}

	expvar.Publish("fungraphics_errors_by_category", expvar.Func(func() any {
		return m.errorCounts()
	}))
	expvar.Publish("fungraphics_running", expvar.Func(func() any { return m.currentlyRunning.Load() }))
	expvar.Publish("fungraphics_fps", expvar.Func(func() any { return m.fps.Load() }))
	expvar.Publish("fungraphics_script_latency_avg_ms", expvar.Func(func() any {
		count := m.scriptLatencyCount.Load()
		if count == 0 {
			return float64(0)
		}
		return float64(m.scriptLatencyNs.Load()) / float64(count) / 1e6
	}))
}

func (m *Metrics) errorCounts() map[string]int64 {
	out := make(map[string]int64, numCategories)
	for i := range m.errorsByCategory {
		if n := m.errorsByCategory[i].Load(); n > 0 {
			out[ErrorCategory(i).String()] = n
		}
	}
	return out
}

// Snapshot returns a point-in-time copy of all metrics.
func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		Starts:           m.starts.Load(),
		Stops:            m.stops.Load(),
		DrawCalls:        m.drawCalls.Load(),
		OutOfBounds:      m.outOfBounds.Load(),
		Screenshots:      m.screenshots.Load(),
		LogicTicks:       m.logicTicks.Load(),
		PresentFailures:  m.presentFailures.Load(),
		ErrorsTotal:      m.errorsTotal.Load(),
		ErrorsByCategory: m.errorCounts(),
		ScriptExecutions: m.scriptExecutions.Load(),
		ScriptErrors:     m.scriptErrors.Load(),
		ScriptReloads:    m.scriptReloads.Load(),

		Running: m.currentlyRunning.Load() > 0,
		FPS:     int(m.fps.Load()),

		ScriptLatencyAvg: safeDivide(m.scriptLatencyNs.Load(), m.scriptLatencyCount.Load()),
	}
}

// MetricsSnapshot is a point-in-time copy of all metrics.
type MetricsSnapshot struct {
	// Counters
	Starts           int64
	Stops            int64
	DrawCalls        int64
	OutOfBounds      int64
	Screenshots      int64
	LogicTicks       int64
	PresentFailures  int64
	ErrorsTotal      int64
	ErrorsByCategory map[string]int64
	ScriptExecutions int64
	ScriptErrors     int64
	ScriptReloads    int64

	// Gauges
	Running bool
	FPS     int

	ScriptLatencyAvg time.Duration
}

// IncrementStarts records a presenter start.
func (m *Metrics) IncrementStarts() { m.starts.Add(1) }

// IncrementStops records a presenter stop.
func (m *Metrics) IncrementStops() { m.stops.Add(1) }

// IncrementDrawCalls records one drawing operation.
func (m *Metrics) IncrementDrawCalls() { m.drawCalls.Add(1) }

// IncrementOutOfBounds records a drawing operation ignored for being
// outside the frame.
func (m *Metrics) IncrementOutOfBounds() { m.outOfBounds.Add(1) }

// IncrementScreenshots records a saved screenshot.
func (m *Metrics) IncrementScreenshots() { m.screenshots.Add(1) }

// IncrementLogicTicks records one SyncGameLogic period.
func (m *Metrics) IncrementLogicTicks() { m.logicTicks.Add(1) }

// IncrementPresentFailures records a failed presenter iteration.
func (m *Metrics) IncrementPresentFailures() { m.presentFailures.Add(1) }

// RecordError counts err under its category.
func (m *Metrics) RecordError(err error) {
	m.errorsTotal.Add(1)
	c := CategoryOf(err)
	if c < 0 || c >= numCategories {
		c = ErrorCategoryUnknown
	}
	m.errorsByCategory[c].Add(1)
}

// IncrementScriptExecutions records a Lua callback execution.
func (m *Metrics) IncrementScriptExecutions() { m.scriptExecutions.Add(1) }

// IncrementScriptErrors records a failed Lua callback.
func (m *Metrics) IncrementScriptErrors() { m.scriptErrors.Add(1) }

// IncrementScriptReloads records a scene hot reload.
func (m *Metrics) IncrementScriptReloads() { m.scriptReloads.Add(1) }

// RecordScriptLatency records the duration of a Lua callback.
func (m *Metrics) RecordScriptLatency(d time.Duration) {
	m.scriptLatencyNs.Add(d.Nanoseconds())
	m.scriptLatencyCount.Add(1)
}

// SetRunning updates the running state gauge.
func (m *Metrics) SetRunning(running bool) {
	if running {
		m.currentlyRunning.Store(1)
	} else {
		m.currentlyRunning.Store(0)
	}
}

// SetFPS updates the presented frame rate gauge.
func (m *Metrics) SetFPS(fps int) { m.fps.Store(int32(fps)) }

// Reset clears all metrics. Useful for testing.
func (m *Metrics) Reset() {
	for _, c := range []*atomic.Int64{
		&m.starts, &m.stops, &m.drawCalls, &m.outOfBounds, &m.screenshots,
		&m.logicTicks, &m.presentFailures, &m.errorsTotal, &m.scriptExecutions,
		&m.scriptErrors, &m.scriptReloads, &m.scriptLatencyNs, &m.scriptLatencyCount,
	} {
		c.Store(0)
	}
	for i := range m.errorsByCategory {
		m.errorsByCategory[i].Store(0)
	}
	m.currentlyRunning.Store(0)
	m.fps.Store(0)
}

// safeDivide performs safe division, returning 0 for divide by zero.
func safeDivide(total, count int64) time.Duration {
	if count == 0 {
		return 0
	}
	return time.Duration(total / count)
}

var defaultMetrics = NewMetrics()

// DefaultMetrics returns the global default Metrics instance, used when
// Options.Metrics is nil.
func DefaultMetrics() *Metrics {
	return defaultMetrics
}
