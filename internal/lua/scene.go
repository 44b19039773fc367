package lua

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	rt "github.com/arnodel/golua/runtime"

	"github.com/opd-ai/go-fungraphics/pkg/fungraphics"
)

// maxQueuedEvents bounds the input events held between two frames.
const maxQueuedEvents = 256

// SceneConfig configures a Scene.
type SceneConfig struct {
	// Runtime sets the resource limits of every callback.
	Runtime RuntimeConfig
	// Breaker tunes when a failing frame() is suspended.
	Breaker BreakerConfig
	// Logger receives load, reload and failure messages. Default: discard.
	Logger fungraphics.Logger
	// Metrics receives script execution counters. Default: the process-wide set.
	Metrics *fungraphics.Metrics
}

// frontLocker is implemented by surfaces that can run a group of drawing
// operations as one composition, such as *fungraphics.FunGraphics.
type frontLocker interface {
	WithFrontLock(fn func(g fungraphics.Graphics))
}

// sceneInstance is one loaded copy of a script.
type sceneInstance struct {
	runtime  *Runtime
	bindings *Bindings
	hooks    *HookManager
}

func (si *sceneInstance) close() {
	if si != nil {
		si.runtime.Close()
	}
}

// Scene runs a Lua script against a drawing surface. The script defines
// global callbacks:
//
//	setup(width, height)          after every load
//	frame(dt, n)                  every logic tick; required
//	on_key(key, char, pressed)    for keyboard input
//	on_mouse(x, y, button, kind)  for mouse input; kind is "press",
//	                              "release", "move" or "drag"
//	teardown()                    before the script is unloaded
//
// frame() runs while holding the surface's composition lock when the
// surface supports it, so a frame is presented completely or not at all.
// Input events are queued and delivered on the goroutine calling Frame.
// A failing on_key or on_mouse call is counted by FailedEvents and
// reported by Frame; the remaining events and frame() still run. Only
// frame() failures count toward suspending the scene.
type Scene struct {
	g       fungraphics.Graphics
	config  SceneConfig
	logger  fungraphics.Logger
	metrics *fungraphics.Metrics
	breaker *breaker

	mu    sync.Mutex
	cur   *sceneInstance
	path  string
	name  string
	code  string
	ticks int64
	last  time.Time
	// failed counts input callbacks that returned an error.
	failed int64

	evMu    sync.Mutex
	events  []func(*sceneInstance) error
	dropped int64
}

// NewScene creates an empty scene drawing on g.
func NewScene(g fungraphics.Graphics, config SceneConfig) (*Scene, error) {
	if g == nil {
		return nil, ErrNilGraphics
	}
	if config.Logger == nil {
		config.Logger = fungraphics.NopLogger()
	}
	if config.Metrics == nil {
		config.Metrics = fungraphics.DefaultMetrics()
	}

	s := &Scene{
		g:       g,
		config:  config,
		logger:  config.Logger,
		metrics: config.Metrics,
	}
	userHook := config.Breaker.OnStateChange
	config.Breaker.OnStateChange = func(from, to BreakerState) {
		s.logger.Warn("scene breaker changed state", "from", from.String(), "to", to.String())
		if userHook != nil {
			userHook(from, to)
		}
	}
	s.breaker = newBreaker(config.Breaker)
	return s, nil
}

// LoadFile loads the script at path, replacing the current one. Relative
// image paths in the script resolve against the script's directory.
func (s *Scene) LoadFile(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	content, err := os.ReadFile(path)
	if err != nil {
		return s.fail(fmt.Errorf("failed to read scene %s: %w", path, err), fungraphics.ErrorCategoryIO)
	}
	if err := s.swap(path, string(content), filepath.Dir(path)); err != nil {
		return err
	}
	s.path = path
	return nil
}

// LoadString loads a script from memory, replacing the current one.
func (s *Scene) LoadString(name, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.swap(name, code, ""); err != nil {
		return err
	}
	s.path = ""
	return nil
}

// Reload loads the scene file again. On failure the previous script
// keeps running.
func (s *Scene) Reload() error {
	s.mu.Lock()
	path := s.path
	s.mu.Unlock()

	if path == "" {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.cur == nil {
			return errors.New("no scene loaded")
		}
		if err := s.swap(s.name, s.code, ""); err != nil {
			return err
		}
	} else if err := s.LoadFile(path); err != nil {
		return err
	}

	s.metrics.IncrementScriptReloads()
	s.logger.Info("scene reloaded", "scene", s.Name())
	return nil
}

// swap compiles code into a fresh runtime, runs its body and setup(),
// then tears down the previous instance. s.mu must be held.
func (s *Scene) swap(name, code, dir string) error {
	next, err := s.instantiate(name, code, dir)
	if err != nil {
		return s.fail(err, fungraphics.ErrorCategoryScript)
	}

	if s.cur != nil {
		prev := s.cur
		if _, err := s.locked(prev, func() (rt.Value, error) { return prev.hooks.Call(HookTeardown) }); err != nil {
			s.logger.Warn("scene teardown failed", "scene", s.name, "error", err)
		}
		s.cur.close()
	}

	s.cur = next
	s.name = name
	s.code = code
	s.ticks = 0
	s.last = time.Time{}
	s.breaker.Reset()
	s.logger.Info("scene loaded", "scene", name, "hooks", len(next.hooks.RegisteredHooks()))
	return nil
}

func (s *Scene) instantiate(name, code, dir string) (*sceneInstance, error) {
	runtime, err := New(s.config.Runtime)
	if err != nil {
		return nil, err
	}
	si := &sceneInstance{runtime: runtime}

	if si.bindings, err = NewBindings(runtime, s.g); err != nil {
		si.close()
		return nil, err
	}
	si.bindings.SetBaseDir(dir)
	if si.hooks, err = NewHookManager(runtime); err != nil {
		si.close()
		return nil, err
	}

	closure, err := runtime.LoadString(name, code)
	if err != nil {
		si.close()
		return nil, err
	}
	if err := s.timed(func() error {
		_, err := s.locked(si, func() (rt.Value, error) { return runtime.Execute(closure) })
		return err
	}); err != nil {
		si.close()
		return nil, err
	}

	si.hooks.AutoRegisterHooks()
	if !si.hooks.IsRegistered(HookFrame) {
		si.close()
		return nil, fmt.Errorf("%s: %w", name, ErrNoFrameFunction)
	}

	w, h := int64(s.g.FrameWidth()), int64(s.g.FrameHeight())
	if err := s.timed(func() error {
		_, err := s.locked(si, func() (rt.Value, error) {
			return si.hooks.Call(HookSetup, rt.IntValue(w), rt.IntValue(h))
		})
		return err
	}); err != nil {
		si.close()
		return nil, err
	}
	return si, nil
}

// Frame delivers queued input events and calls frame(dt, n), where dt is
// the seconds since the previous call (0 on the first) and n counts from 1.
// Every queued event is delivered even if an earlier one fails; the
// returned error joins all input and frame() failures of the tick.
func (s *Scene) Frame() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cur == nil {
		return errors.New("no scene loaded")
	}
	si := s.cur

	now := time.Now()
	dt := 0.0
	if !s.last.IsZero() {
		dt = now.Sub(s.last).Seconds()
	}
	s.last = now

	var errs []error
	for _, ev := range s.drainEvents() {
		if err := s.timed(func() error { return ev(si) }); err != nil {
			s.failed++
			s.metrics.IncrementScriptErrors()
			errs = append(errs, err)
		}
	}

	err := s.breaker.Execute(func() error {
		s.ticks++
		n := s.ticks
		return s.timed(func() error {
			_, err := s.locked(si, func() (rt.Value, error) {
				return si.hooks.Call(HookFrame, rt.FloatValue(dt), rt.IntValue(n))
			})
			return err
		})
	})
	switch {
	case errors.Is(err, ErrSceneSuspended):
		// Input failures take precedence; BreakerState still reports the suspension.
		if len(errs) == 0 {
			return err
		}
	case err != nil:
		s.metrics.IncrementScriptErrors()
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return nil
	}
	return s.categorize(errors.Join(errs...), fungraphics.ErrorCategoryScript)
}

// locked runs call with the bindings drawing on a lock-free view of the
// surface inside one composition, when the surface supports it.
func (s *Scene) locked(si *sceneInstance, call func() (rt.Value, error)) (rt.Value, error) {
	fl, ok := s.g.(frontLocker)
	if !ok {
		return call()
	}

	var (
		v   rt.Value
		err error
	)
	fl.WithFrontLock(func(g fungraphics.Graphics) {
		prev := si.bindings.SetTarget(g)
		defer si.bindings.SetTarget(prev)
		v, err = call()
	})
	return v, err
}

// timed runs fn and records it as one script execution.
func (s *Scene) timed(fn func() error) error {
	start := time.Now()
	err := fn()
	s.metrics.IncrementScriptExecutions()
	s.metrics.RecordScriptLatency(time.Since(start))
	return err
}

func (s *Scene) fail(err error, category fungraphics.ErrorCategory) error {
	if category == fungraphics.ErrorCategoryScript {
		s.metrics.IncrementScriptErrors()
	}
	return s.categorize(err, category)
}

// categorize wraps err with the scene name and records it.
func (s *Scene) categorize(err error, category fungraphics.ErrorCategory) error {
	ce := fungraphics.NewCategorizedError(err, category, fungraphics.SeverityError)
	if s.name != "" {
		ce = ce.WithContext("scene", s.name)
	}
	s.metrics.RecordError(ce)
	return ce
}

// Close calls teardown() and releases the script.
func (s *Scene) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cur == nil {
		return nil
	}
	_, err := s.locked(s.cur, func() (rt.Value, error) { return s.cur.hooks.Call(HookTeardown) })
	s.cur.close()
	s.cur = nil
	return err
}

// Name returns the file path or name of the loaded script.
func (s *Scene) Name() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.name
}

// Path returns the file the scene was loaded from, or "".
func (s *Scene) Path() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.path
}

// Ticks returns how many times frame() ran since the last load.
func (s *Scene) Ticks() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ticks
}

// Output returns what the script printed since it was loaded.
func (s *Scene) Output() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cur == nil {
		return ""
	}
	return s.cur.runtime.Output()
}

// BreakerState reports whether frame() is currently suspended.
func (s *Scene) BreakerState() BreakerState { return s.breaker.State() }

// FailedEvents returns how many on_key and on_mouse calls failed.
func (s *Scene) FailedEvents() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failed
}

// DroppedEvents returns how many input events overflowed the queue.
func (s *Scene) DroppedEvents() int64 {
	s.evMu.Lock()
	defer s.evMu.Unlock()
	return s.dropped
}

// --- Input ---

func (s *Scene) enqueue(ev func(*sceneInstance) error) {
	s.evMu.Lock()
	defer s.evMu.Unlock()
	if len(s.events) >= maxQueuedEvents {
		s.dropped++
		return
	}
	s.events = append(s.events, ev)
}

func (s *Scene) drainEvents() []func(*sceneInstance) error {
	s.evMu.Lock()
	defer s.evMu.Unlock()
	evs := s.events
	s.events = nil
	return evs
}

func (s *Scene) keyEvent(e fungraphics.KeyEvent, pressed bool) {
	s.enqueue(func(si *sceneInstance) error {
		var char rt.Value = rt.NilValue
		if e.Rune != 0 {
			char = rt.StringValue(string(e.Rune))
		}
		_, err := s.locked(si, func() (rt.Value, error) {
			return si.hooks.Call(HookKey, rt.StringValue(e.Key), char, rt.BoolValue(pressed))
		})
		return err
	})
}

func (s *Scene) mouseEvent(e fungraphics.MouseEvent, kind string) {
	s.enqueue(func(si *sceneInstance) error {
		_, err := s.locked(si, func() (rt.Value, error) {
			return si.hooks.Call(HookMouse,
				rt.IntValue(int64(e.X)),
				rt.IntValue(int64(e.Y)),
				rt.StringValue(e.Button.String()),
				rt.StringValue(kind),
			)
		})
		return err
	})
}

// KeyPressed implements fungraphics.KeyListener.
func (s *Scene) KeyPressed(e fungraphics.KeyEvent) { s.keyEvent(e, true) }

// KeyReleased implements fungraphics.KeyListener.
func (s *Scene) KeyReleased(e fungraphics.KeyEvent) { s.keyEvent(e, false) }

// MousePressed implements fungraphics.MouseListener.
func (s *Scene) MousePressed(e fungraphics.MouseEvent) { s.mouseEvent(e, "press") }

// MouseReleased implements fungraphics.MouseListener.
func (s *Scene) MouseReleased(e fungraphics.MouseEvent) { s.mouseEvent(e, "release") }

// MouseMoved implements fungraphics.MouseMotionListener.
func (s *Scene) MouseMoved(e fungraphics.MouseEvent) { s.mouseEvent(e, "move") }

// MouseDragged implements fungraphics.MouseMotionListener.
func (s *Scene) MouseDragged(e fungraphics.MouseEvent) { s.mouseEvent(e, "drag") }

var (
	_ fungraphics.KeyListener         = (*Scene)(nil)
	_ fungraphics.MouseListener       = (*Scene)(nil)
	_ fungraphics.MouseMotionListener = (*Scene)(nil)
)
