package profiling

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"
)

// Sample is one reading of the Go heap and scheduler.
type Sample struct {
	Time        time.Time
	HeapAlloc   uint64
	HeapObjects uint64
	Goroutines  int
	NumGC       uint32
}

// ReadSample reads the current heap and goroutine counts.
func ReadSample() Sample {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return Sample{
		Time:        time.Now(),
		HeapAlloc:   ms.HeapAlloc,
		HeapObjects: ms.HeapObjects,
		Goroutines:  runtime.NumGoroutine(),
		NumGC:       ms.NumGC,
	}
}

// Growth compares the oldest and newest samples in a HeapWatch window.
type Growth struct {
	Span           time.Duration
	HeapDelta      int64
	ObjectDelta    int64
	GoroutineDelta int
	BytesPerSecond float64
	Suspicious     bool
	Reason         string
}

// String formats g for a log line.
func (g Growth) String() string {
	s := fmt.Sprintf("heap %+d B (%.1f KB/s), objects %+d, goroutines %+d over %s",
		g.HeapDelta, g.BytesPerSecond/1024, g.ObjectDelta, g.GoroutineDelta, g.Span.Round(time.Millisecond))
	if g.Suspicious {
		s += ": " + g.Reason
	}
	return s
}

// HeapWatchConfig tunes a HeapWatch.
type HeapWatchConfig struct {
	// Interval between samples. Default: 5 seconds
	Interval time.Duration
	// Window is the number of samples kept. Default: 60
	Window int
	// MaxBytesPerSecond is the sustained heap growth reported as
	// suspicious. Default: 1 MiB/s
	MaxBytesPerSecond int64
	// MaxGoroutineGrowth is the goroutine increase reported as
	// suspicious. Default: 10
	MaxGoroutineGrowth int
}

// DefaultHeapWatchConfig returns a HeapWatchConfig with sensible defaults.
func DefaultHeapWatchConfig() HeapWatchConfig {
	return HeapWatchConfig{
		Interval:           5 * time.Second,
		Window:             60,
		MaxBytesPerSecond:  1 << 20,
		MaxGoroutineGrowth: 10,
	}
}

// HeapWatch samples the heap while a scene runs and reports sustained
// growth, which usually means a script or drawable list keeps
// allocating without releasing.
type HeapWatch struct {
	config  HeapWatchConfig
	onGrow  func(Growth)
	mu      sync.Mutex
	samples []Sample
	stop    chan struct{}
	done    chan struct{}
}

// NewHeapWatch creates a watch. onGrow, if set, is called from the
// sampling goroutine whenever the window looks suspicious.
func NewHeapWatch(config HeapWatchConfig, onGrow func(Growth)) *HeapWatch {
	def := DefaultHeapWatchConfig()
	if config.Interval <= 0 {
		config.Interval = def.Interval
	}
	if config.Window < 2 {
		config.Window = def.Window
	}
	if config.MaxBytesPerSecond <= 0 {
		config.MaxBytesPerSecond = def.MaxBytesPerSecond
	}
	if config.MaxGoroutineGrowth <= 0 {
		config.MaxGoroutineGrowth = def.MaxGoroutineGrowth
	}
	return &HeapWatch{config: config, onGrow: onGrow}
}

// Add appends a sample to the window, dropping the oldest when full.
func (w *HeapWatch) Add(s Sample) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.samples = append(w.samples, s)
	if over := len(w.samples) - w.config.Window; over > 0 {
		w.samples = append(w.samples[:0], w.samples[over:]...)
	}
}

// Samples returns a copy of the window.
func (w *HeapWatch) Samples() []Sample {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]Sample(nil), w.samples...)
}

// Growth analyses the window. ok is false with fewer than two samples
// or a zero time span.
func (w *HeapWatch) Growth() (g Growth, ok bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if len(w.samples) < 2 {
		return Growth{}, false
	}
	first, last := w.samples[0], w.samples[len(w.samples)-1]
	span := last.Time.Sub(first.Time)
	if span <= 0 {
		return Growth{}, false
	}

	g = Growth{
		Span:           span,
		HeapDelta:      int64(last.HeapAlloc) - int64(first.HeapAlloc),
		ObjectDelta:    int64(last.HeapObjects) - int64(first.HeapObjects),
		GoroutineDelta: last.Goroutines - first.Goroutines,
	}
	g.BytesPerSecond = float64(g.HeapDelta) / span.Seconds()

	switch {
	case g.BytesPerSecond > float64(w.config.MaxBytesPerSecond):
		g.Suspicious = true
		g.Reason = fmt.Sprintf("heap grows faster than %d B/s", w.config.MaxBytesPerSecond)
	case g.GoroutineDelta > w.config.MaxGoroutineGrowth:
		g.Suspicious = true
		g.Reason = fmt.Sprintf("goroutines grew by more than %d", w.config.MaxGoroutineGrowth)
	}
	return g, true
}

// Start samples in a goroutine until Stop.
func (w *HeapWatch) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stop != nil {
		return errors.New("heap watch is already running")
	}
	w.stop = make(chan struct{})
	w.done = make(chan struct{})
	go w.loop(w.stop, w.done)
	return nil
}

// Stop ends sampling and waits for the goroutine to exit.
func (w *HeapWatch) Stop() {
	w.mu.Lock()
	stop, done := w.stop, w.done
	w.stop, w.done = nil, nil
	w.mu.Unlock()

	if stop == nil {
		return
	}
	close(stop)
	<-done
}

func (w *HeapWatch) loop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()

	w.Add(ReadSample())
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			w.Add(ReadSample())
			if g, ok := w.Growth(); ok && g.Suspicious && w.onGrow != nil {
				w.onGrow(g)
			}
		}
	}
}
