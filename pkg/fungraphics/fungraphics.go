package fungraphics

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/opd-ai/go-fungraphics/internal/render"
)

// Errors of the drawing engine, re-exported for errors.Is.
var (
	ErrInvalidSize      = render.ErrInvalidSize
	ErrInvalidFrequency = render.ErrInvalidFrequency
	ErrDisplayClosed    = render.ErrDisplayClosed
	ErrAlreadyRunning   = render.ErrAlreadyRunning
	ErrDecodeImage      = render.ErrDecodeImage
)

var white = color.RGBA{R: 255, G: 255, B: 255, A: 255}

// FunGraphics is a double-buffered drawing surface presented by a
// background goroutine. It is safe for concurrent use: every drawing call
// holds the frame-composition lock, which the presenter also takes while
// it composites a frame.
type FunGraphics struct {
	opts Options

	buf     *render.DoubleBuffer
	front   *render.Painter
	back    *render.Painter
	fonts   *render.FontManager
	bitmaps *render.BitmapCache
	input   *render.Input
	canvas  *Canvas

	display   render.Display
	presenter *render.Presenter
	logic     *render.FrameClock

	logger       Logger
	metrics      *Metrics
	errorHandler ErrorHandler
	checkBounds  atomic.Bool

	mu        sync.Mutex
	cancel    context.CancelFunc
	closed    bool
	closeOnce sync.Once
}

var (
	_ Graphics          = (*FunGraphics)(nil)
	_ DualLayerGraphics = (*FunGraphics)(nil)
)

// New creates a drawing surface. The front layer starts white with a black
// pen; the presenter is created but not started, see Start.
func New(opts Options) (*FunGraphics, error) {
	cfg := opts.renderConfig()
	if err := cfg.Validate(); err != nil {
		return nil, NewCategorizedError(fmt.Errorf("invalid options: %w", err), ErrorCategoryConfig, SeverityCritical)
	}

	fg := &FunGraphics{
		opts:         opts,
		fonts:        render.NewFontManager(),
		bitmaps:      render.NewBitmapCache(),
		input:        render.NewInput(),
		logic:        render.NewFrameClock(),
		logger:       opts.Logger,
		metrics:      opts.Metrics,
		errorHandler: opts.ErrorHandler,
	}
	if fg.logger == nil {
		fg.logger = NopLogger()
	}
	if fg.metrics == nil {
		fg.metrics = DefaultMetrics()
	}
	fg.checkBounds.Store(cfg.CheckBounds)
	fg.canvas = &Canvas{fg: fg}

	buf, err := render.NewDoubleBuffer(cfg.Width, cfg.Height, cfg.BackgroundColor)
	if err != nil {
		return nil, NewCategorizedError(err, ErrorCategoryConfig, SeverityCritical)
	}
	fg.buf = buf
	fg.front = render.NewPainter(buf.Front(), fg.fonts, cfg.HighQuality)
	fg.back = render.NewPainter(buf.Back(), fg.fonts, cfg.HighQuality)

	buf.Front().SetBackground(white)
	buf.Front().Clear()
	fg.front.SetColor(color.Black)
	fg.back.SetColor(color.Black)

	display, detect, err := fg.openDisplay(cfg)
	if err != nil {
		return nil, NewCategorizedError(err, ErrorCategoryRender, SeverityCritical)
	}
	fg.display = display

	rate, err := render.ResolveRefreshRate(cfg.RefreshRate, detect)
	if err != nil {
		fg.logger.Warn("could not detect refresh rate, using default", "rate", rate, "error", err)
	}

	fg.presenter, err = render.NewPresenter(buf, display, render.PresenterConfig{
		RefreshRate:  rate,
		ShowFPS:      cfg.ShowFPS,
		ErrorHandler: fg.presentError,
		Fonts:        fg.fonts,
	})
	if err != nil {
		display.Close()
		return nil, NewCategorizedError(err, ErrorCategoryConfig, SeverityCritical)
	}

	fg.logger.Debug("surface created", "width", cfg.Width, "height", cfg.Height, "refresh_rate", rate)
	return fg, nil
}

// openDisplay picks the presentation target. Only windows detect the
// refresh rate; the other targets default to 50 Hz.
func (fg *FunGraphics) openDisplay(cfg render.Config) (render.Display, func() (int, error), error) {
	switch {
	case fg.opts.Display != nil:
		return fg.opts.Display, nil, nil
	case fg.opts.Headless:
		return render.NewMemoryDisplay(cfg.Width, cfg.Height), nil, nil
	case fg.opts.Terminal:
		td, err := render.NewTerminalDisplay(cfg.Width, cfg.Height, fg.input)
		return td, nil, err
	default:
		w, err := render.NewWindow(cfg, fg.input)
		return w, render.DetectRefreshRate, err
	}
}

// presentError categorizes and forwards a presenter failure.
func (fg *FunGraphics) presentError(err error) {
	fg.metrics.IncrementPresentFailures()
	fg.report(NewCategorizedError(err, ErrorCategoryRender, SeverityWarning))
}

// report logs err, counts it and hands it to the error handler.
func (fg *FunGraphics) report(err error) {
	fg.metrics.RecordError(err)
	fg.logger.Error("fungraphics error", "error", err, "category", CategoryOf(err).String())
	deliver(fg.errorHandler, err)
}

// Start launches the presenter. The presenter stops when ctx is cancelled,
// Stop or Close is called, or the display goes away.
func (fg *FunGraphics) Start(ctx context.Context) error {
	fg.mu.Lock()
	defer fg.mu.Unlock()
	if fg.closed {
		return ErrClosed
	}

	ctx, cancel := context.WithCancel(ctx)
	if w, ok := fg.display.(*render.Window); ok {
		w.SetContext(ctx)
	}
	if err := fg.presenter.Start(ctx); err != nil {
		cancel()
		return err
	}
	if fg.cancel != nil {
		fg.cancel()
	}
	fg.cancel = cancel
	fg.metrics.IncrementStarts()
	fg.metrics.SetRunning(true)
	fg.logger.Info("presenter started", "refresh_rate", fg.presenter.RefreshRate())
	return nil
}

// Stop halts the presenter and waits for its goroutine to exit. The
// surface stays usable and can be started again.
func (fg *FunGraphics) Stop() {
	fg.mu.Lock()
	cancel := fg.cancel
	fg.cancel = nil
	fg.mu.Unlock()

	fg.presenter.Stop()
	if cancel == nil {
		return
	}
	cancel()
	fg.metrics.IncrementStops()
	fg.metrics.SetRunning(false)
	fg.logger.Info("presenter stopped", "frames", fg.presenter.Frames(), "failures", fg.presenter.Failures())
}

// Run blocks until the display goes away. For a window it runs the event
// loop and must be called from the main goroutine. For a terminal it waits
// for the user to quit or the presenter to stop. For other displays it
// waits for the presenter to exit, returning immediately if it was never
// started.
func (fg *FunGraphics) Run() error {
	switch d := fg.display.(type) {
	case *render.Window:
		return d.Run()
	case *render.TerminalDisplay:
		select {
		case <-d.Done():
		case <-fg.presenter.Done():
		}
		fg.Stop()
		return nil
	}
	if done := fg.presenter.Done(); done != nil {
		<-done
	}
	return nil
}

// Close stops the presenter and releases the display. Drawing calls remain
// valid afterwards but are no longer presented.
func (fg *FunGraphics) Close() error {
	var err error
	fg.closeOnce.Do(func() {
		fg.mu.Lock()
		fg.closed = true
		fg.mu.Unlock()

		fg.Stop()
		err = fg.display.Close()
		fg.bitmaps.Clear()
		fg.logger.Debug("surface closed")
	})
	return err
}

// WithFrontLock runs fn holding the frame-composition lock, so every
// drawing operation fn performs on g is presented together or not at all.
// g is only valid during the call; calling methods of fg from fn deadlocks.
func (fg *FunGraphics) WithFrontLock(fn func(g Graphics)) {
	fg.buf.Lock()
	defer fg.buf.Unlock()
	fn(fg.canvas)
}

// SyncGameLogic paces the caller's logic loop to hz iterations per
// second. The clock is separate from the presenter's.
func (fg *FunGraphics) SyncGameLogic(hz int) error {
	if err := fg.logic.Tick(hz); err != nil {
		return err
	}
	fg.metrics.IncrementLogicTicks()
	fg.metrics.SetFPS(fg.presenter.FPS())
	return nil
}

// DrawBackground implements DualLayerGraphics.
func (fg *FunGraphics) DrawBackground() {
	fg.buf.Lock()
	defer fg.buf.Unlock()
	fg.buf.SwitchToBackground()
}

// DrawForeground implements DualLayerGraphics.
func (fg *FunGraphics) DrawForeground() {
	fg.buf.Lock()
	defer fg.buf.Unlock()
	fg.buf.SwitchToForeground()
}

// ActiveLayer returns the layer drawing calls currently target.
func (fg *FunGraphics) ActiveLayer() Layer {
	fg.buf.Lock()
	defer fg.buf.Unlock()
	return fg.buf.ActiveLayer()
}

// SetBackgroundColor sets the clear color of the active layer. It takes
// effect at the next Clear.
func (fg *FunGraphics) SetBackgroundColor(c color.Color) {
	fg.buf.Lock()
	defer fg.buf.Unlock()
	fg.buf.Active().SetBackground(c)
}

// SetCheckBounds toggles out-of-frame diagnostics.
func (fg *FunGraphics) SetCheckBounds(on bool) { fg.checkBounds.Store(on) }

// SetFont sets the font of DrawString on both layers.
func (fg *FunGraphics) SetFont(style TextStyle) {
	fg.buf.Lock()
	defer fg.buf.Unlock()
	fg.front.SetFont(style)
	fg.back.SetFont(style)
}

// LoadFont registers a TrueType or OpenType font file under family and
// style, making it available to SetFont and DrawStringStyled.
func (fg *FunGraphics) LoadFont(family string, style FontStyle, path string) error {
	fg.buf.Lock()
	defer fg.buf.Unlock()
	if err := fg.fonts.LoadFontFromFile(family, style, path); err != nil {
		return NewCategorizedError(err, ErrorCategoryAsset, SeverityError).WithContext("path", path)
	}
	return nil
}

// MeasureString returns the pixel extent of s drawn in style.
func (fg *FunGraphics) MeasureString(s string, style TextStyle) (width, height int, err error) {
	fg.buf.Lock()
	defer fg.buf.Unlock()
	return fg.front.MeasureString(s, style)
}

// DrawTransformedPictureFile is DrawTransformedPicture for an image file.
// Decoded files are cached, so calling it every frame is cheap.
func (fg *FunGraphics) DrawTransformedPictureFile(x, y int, angle, scale float64, path string) error {
	b, err := fg.bitmaps.Load(path)
	if err != nil {
		return NewCategorizedError(err, ErrorCategoryAsset, SeverityError).WithContext("path", path)
	}
	fg.DrawTransformedPicture(x, y, angle, scale, b)
	return nil
}

// SaveAsPNG writes the foreground layer to path as PNG, appending the
// .png extension when missing.
func (fg *FunGraphics) SaveAsPNG(path string) error {
	if !strings.EqualFold(filepath.Ext(path), ".png") {
		path += ".png"
	}

	fg.buf.Lock()
	img := fg.buf.Front().Snapshot()
	fg.buf.Unlock()

	if err := render.SavePNG(path, img); err != nil {
		return NewCategorizedError(fmt.Errorf("%w: %w", ErrScreenshot, err), ErrorCategoryIO, SeverityError).
			WithContext("path", path)
	}
	fg.metrics.IncrementScreenshots()
	fg.logger.Info("screenshot saved", "path", path)
	return nil
}

// PresentedFrame returns a copy of the last presented frame of a headless
// surface, or nil for other displays.
func (fg *FunGraphics) PresentedFrame() *image.RGBA {
	if d, ok := fg.display.(*render.MemoryDisplay); ok {
		return d.Snapshot()
	}
	return nil
}

// PresentFrame composites and presents one frame synchronously. It is
// meant for headless use while the presenter is stopped.
func (fg *FunGraphics) PresentFrame() error {
	err := fg.presenter.PresentFrame()
	if err != nil && !errors.Is(err, render.ErrDisplayClosed) {
		fg.presentError(err)
	}
	return err
}

// DisplayFPS toggles the frame rate readout.
func (fg *FunGraphics) DisplayFPS(on bool) { fg.presenter.SetShowFPS(on) }

// FPS returns the latest frame rate sample of the presenter.
func (fg *FunGraphics) FPS() int { return fg.presenter.FPS() }

// RefreshRate returns the presentation rate in Hz.
func (fg *FunGraphics) RefreshRate() int { return fg.presenter.RefreshRate() }

// Running reports whether the presenter is active.
func (fg *FunGraphics) Running() bool { return fg.presenter.Running() }

// Frames returns the number of frames presented so far.
func (fg *FunGraphics) Frames() int64 { return fg.presenter.Frames() }

// Failures returns the number of failed presenter iterations.
func (fg *FunGraphics) Failures() int64 { return fg.presenter.Failures() }

// Metrics returns the metrics collector in use.
func (fg *FunGraphics) Metrics() *Metrics { return fg.metrics }

// Logger returns the logger in use.
func (fg *FunGraphics) Logger() Logger { return fg.logger }

// AddKeyListener registers l for keyboard events.
func (fg *FunGraphics) AddKeyListener(l KeyListener) { fg.input.AddKeyListener(l) }

// AddMouseListener registers l for mouse button events.
func (fg *FunGraphics) AddMouseListener(l MouseListener) { fg.input.AddMouseListener(l) }

// AddMouseMotionListener registers l for mouse movement events.
func (fg *FunGraphics) AddMouseMotionListener(l MouseMotionListener) {
	fg.input.AddMouseMotionListener(l)
}

// Graphics implementation: lock, then delegate to the canvas.

func (fg *FunGraphics) Clear() {
	fg.buf.Lock()
	defer fg.buf.Unlock()
	fg.canvas.Clear()
}

func (fg *FunGraphics) ClearColor(c color.Color) {
	fg.buf.Lock()
	defer fg.buf.Unlock()
	fg.canvas.ClearColor(c)
}

func (fg *FunGraphics) SetColor(c color.Color) {
	fg.buf.Lock()
	defer fg.buf.Unlock()
	fg.canvas.SetColor(c)
}

func (fg *FunGraphics) Color() color.RGBA {
	fg.buf.Lock()
	defer fg.buf.Unlock()
	return fg.canvas.Color()
}

func (fg *FunGraphics) SetPenWidth(w float64) {
	fg.buf.Lock()
	defer fg.buf.Unlock()
	fg.canvas.SetPenWidth(w)
}

func (fg *FunGraphics) PenWidth() float64 {
	fg.buf.Lock()
	defer fg.buf.Unlock()
	return fg.canvas.PenWidth()
}

func (fg *FunGraphics) SetPixel(x, y int) {
	fg.buf.Lock()
	defer fg.buf.Unlock()
	fg.canvas.SetPixel(x, y)
}

func (fg *FunGraphics) SetPixelColor(x, y int, c color.Color) {
	fg.buf.Lock()
	defer fg.buf.Unlock()
	fg.canvas.SetPixelColor(x, y, c)
}

func (fg *FunGraphics) GetPixel(x, y int) color.RGBA {
	fg.buf.Lock()
	defer fg.buf.Unlock()
	return fg.canvas.GetPixel(x, y)
}

func (fg *FunGraphics) DrawLine(x1, y1, x2, y2 int) {
	fg.buf.Lock()
	defer fg.buf.Unlock()
	fg.canvas.DrawLine(x1, y1, x2, y2)
}

func (fg *FunGraphics) DrawRect(x, y, width, height int) {
	fg.buf.Lock()
	defer fg.buf.Unlock()
	fg.canvas.DrawRect(x, y, width, height)
}

func (fg *FunGraphics) DrawFillRect(x, y, width, height int) {
	fg.buf.Lock()
	defer fg.buf.Unlock()
	fg.canvas.DrawFillRect(x, y, width, height)
}

func (fg *FunGraphics) DrawCircle(x, y, diameter int) {
	fg.buf.Lock()
	defer fg.buf.Unlock()
	fg.canvas.DrawCircle(x, y, diameter)
}

func (fg *FunGraphics) DrawFilledCircle(x, y, diameter int) {
	fg.buf.Lock()
	defer fg.buf.Unlock()
	fg.canvas.DrawFilledCircle(x, y, diameter)
}

func (fg *FunGraphics) DrawOval(x, y, width, height int) {
	fg.buf.Lock()
	defer fg.buf.Unlock()
	fg.canvas.DrawOval(x, y, width, height)
}

func (fg *FunGraphics) DrawFilledOval(x, y, width, height int) {
	fg.buf.Lock()
	defer fg.buf.Unlock()
	fg.canvas.DrawFilledOval(x, y, width, height)
}

func (fg *FunGraphics) DrawPolygon(pts []image.Point) {
	fg.buf.Lock()
	defer fg.buf.Unlock()
	fg.canvas.DrawPolygon(pts)
}

func (fg *FunGraphics) DrawFilledPolygon(pts []image.Point, c color.Color) {
	fg.buf.Lock()
	defer fg.buf.Unlock()
	fg.canvas.DrawFilledPolygon(pts, c)
}

func (fg *FunGraphics) DrawString(x, y int, s string) {
	fg.buf.Lock()
	defer fg.buf.Unlock()
	fg.canvas.DrawString(x, y, s)
}

func (fg *FunGraphics) DrawStringStyled(x, y int, s string, c color.Color, style TextStyle) {
	fg.buf.Lock()
	defer fg.buf.Unlock()
	fg.canvas.DrawStringStyled(x, y, s, c, style)
}

func (fg *FunGraphics) DrawFancyString(x, y int, s string, c color.Color, size float64) {
	fg.buf.Lock()
	defer fg.buf.Unlock()
	fg.canvas.DrawFancyString(x, y, s, c, size)
}

func (fg *FunGraphics) DrawPicture(x, y int, b *Bitmap) {
	fg.buf.Lock()
	defer fg.buf.Unlock()
	fg.canvas.DrawPicture(x, y, b)
}

func (fg *FunGraphics) DrawTransformedPicture(x, y int, angle, scale float64, b *Bitmap) {
	fg.buf.Lock()
	defer fg.buf.Unlock()
	fg.canvas.DrawTransformedPicture(x, y, angle, scale, b)
}

func (fg *FunGraphics) DrawMirroredPicture(x, y int, angle float64, b *Bitmap) {
	fg.buf.Lock()
	defer fg.buf.Unlock()
	fg.canvas.DrawMirroredPicture(x, y, angle, b)
}

// FrameWidth returns the drawable width in pixels.
func (fg *FunGraphics) FrameWidth() int { return fg.buf.Width() }

// FrameHeight returns the drawable height in pixels.
func (fg *FunGraphics) FrameHeight() int { return fg.buf.Height() }
