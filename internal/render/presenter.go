package render

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"image/draw"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

// ErrAlreadyRunning is returned when Start is called on a running presenter.
var ErrAlreadyRunning = errors.New("presenter already running")

// ErrorHandler is a function type for handling errors raised while presenting.
type ErrorHandler func(err error)

// DefaultErrorHandler writes errors to stderr.
func DefaultErrorHandler(err error) {
	fmt.Fprintf(os.Stderr, "present error: %v\n", err)
}

// fpsColor is the color of the frame rate readout.
var fpsColor = color.RGBA{A: 255}

// PresenterConfig configures a Presenter.
type PresenterConfig struct {
	// RefreshRate is the presentation rate in Hz. It must be positive;
	// use ResolveRefreshRate to obtain one.
	RefreshRate int
	// ShowFPS enables the frame rate readout.
	ShowFPS bool
	// ErrorHandler receives per-iteration failures. Nil uses
	// DefaultErrorHandler.
	ErrorHandler ErrorHandler
	// Fonts renders the readout. It must be the manager used by the
	// buffer's painters, or one not shared at all.
	Fonts *FontManager
}

// ResolveRefreshRate picks the presentation rate: configured when positive,
// else the rate reported by detect, else DefaultRefreshRate. The detection
// error is returned alongside the fallback so callers can report it.
func ResolveRefreshRate(configured int, detect func() (int, error)) (int, error) {
	if configured > 0 {
		return configured, nil
	}
	if detect == nil {
		return DefaultRefreshRate, nil
	}
	rate, err := detect()
	if err != nil {
		return DefaultRefreshRate, err
	}
	if rate <= 0 {
		return DefaultRefreshRate, fmt.Errorf("%w: detected %d", ErrInvalidFrequency, rate)
	}
	return rate, nil
}

// Presenter is the background presentation loop. Once started it
// repeatedly composites the double buffer onto a frame from the display,
// presents it and paces itself to the refresh rate.
type Presenter struct {
	buf          *DoubleBuffer
	display      Display
	clock        *FrameClock
	stats        *PresentStats
	fonts        *FontManager
	refreshRate  int
	errorHandler ErrorHandler
	showFPS      atomic.Bool

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewPresenter creates a stopped presenter.
func NewPresenter(buf *DoubleBuffer, display Display, cfg PresenterConfig) (*Presenter, error) {
	if buf == nil || display == nil {
		return nil, errors.New("presenter requires a buffer and a display")
	}
	if cfg.RefreshRate <= 0 {
		return nil, fmt.Errorf("%w: refresh rate %d", ErrInvalidFrequency, cfg.RefreshRate)
	}
	handler := cfg.ErrorHandler
	if handler == nil {
		handler = DefaultErrorHandler
	}
	fonts := cfg.Fonts
	if fonts == nil {
		fonts = NewFontManager()
	}

	p := &Presenter{
		buf:          buf,
		display:      display,
		clock:        NewFrameClock(),
		stats:        NewPresentStats(),
		fonts:        fonts,
		refreshRate:  cfg.RefreshRate,
		errorHandler: handler,
	}
	p.showFPS.Store(cfg.ShowFPS)
	return p, nil
}

// Start launches the loop on its own goroutine. The loop runs until ctx is
// cancelled, Stop is called or the display reports ErrDisplayClosed.
func (p *Presenter) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.done != nil {
		select {
		case <-p.done:
		default:
			return ErrAlreadyRunning
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})
	p.clock.Reset()
	go p.run(ctx, p.done)
	return nil
}

// Stop cancels the loop and waits for it to exit.
func (p *Presenter) Stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Running reports whether the loop is active.
func (p *Presenter) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.done == nil {
		return false
	}
	select {
	case <-p.done:
		return false
	default:
		return true
	}
}

// Done returns a channel closed when the current loop exits, or nil if the
// presenter was never started.
func (p *Presenter) Done() <-chan struct{} {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done
}

// SetShowFPS toggles the frame rate readout.
func (p *Presenter) SetShowFPS(on bool) { p.showFPS.Store(on) }

// ShowFPS reports whether the frame rate readout is on.
func (p *Presenter) ShowFPS() bool { return p.showFPS.Load() }

// RefreshRate returns the pacing rate in Hz.
func (p *Presenter) RefreshRate() int { return p.refreshRate }

// FPS returns the latest frame rate sample.
func (p *Presenter) FPS() int { return p.stats.FPS() }

// Frames returns the number of frames presented so far.
func (p *Presenter) Frames() int64 { return p.stats.Frames() }

// Failures returns the number of failed iterations so far.
func (p *Presenter) Failures() int64 { return p.stats.Failures() }

// Stats returns the live presentation statistics.
func (p *Presenter) Stats() *PresentStats { return p.stats }

func (p *Presenter) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	var last time.Time
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if err := p.PresentFrame(); err != nil {
			if errors.Is(err, ErrDisplayClosed) {
				return
			}
			p.stats.RecordFailure()
			p.report(err)
		}

		// refreshRate is validated positive by NewPresenter.
		_ = p.clock.Tick(p.refreshRate)

		now := time.Now()
		if !last.IsZero() {
			p.stats.RecordInterval(now.Sub(last))
		}
		last = now
	}
}

// PresentFrame runs one unpaced presentation iteration: acquire a frame,
// composite under the buffer lock, present. The frame is released on every
// path and a panic while drawing is returned as an error.
func (p *Presenter) PresentFrame() (err error) {
	frame, err := p.display.Acquire()
	if err != nil {
		return fmt.Errorf("acquire frame: %w", err)
	}
	defer frame.Release()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("presenter panic: %v", r)
		}
	}()

	p.compose(frame.Target())

	if err := frame.Present(); err != nil {
		return fmt.Errorf("present frame: %w", err)
	}
	p.stats.RecordPresent()
	return nil
}

func (p *Presenter) compose(dst draw.Image) {
	p.buf.Lock()
	defer p.buf.Unlock()

	p.buf.Composite(dst)
	if p.showFPS.Load() {
		p.drawFPS(dst)
	}
}

// drawFPS draws the readout at the bottom-left. The buffer lock is held,
// which also serializes use of the shared font faces.
func (p *Presenter) drawFPS(dst draw.Image) {
	face, err := p.fonts.Face(FamilySansSerif, FontStyleRegular, DefaultFontSize, true)
	if err != nil {
		p.report(err)
		return
	}
	b := dst.Bounds()
	x := b.Min.X + int(float64(b.Dx())*0.05)
	DrawText(dst, face, x, b.Max.Y, fmt.Sprintf("FPS - %d", p.stats.FPS()), fpsColor)
}

func (p *Presenter) report(err error) {
	defer func() {
		// A failing handler must not take the loop down with it.
		_ = recover()
	}()
	p.errorHandler(err)
}
