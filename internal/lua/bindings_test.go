package lua

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	rt "github.com/arnodel/golua/runtime"

	"github.com/opd-ai/go-fungraphics/pkg/fungraphics"
)

var (
	white = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	red   = color.RGBA{R: 255, A: 255}
	green = color.RGBA{G: 255, A: 255}
	blue  = color.RGBA{B: 255, A: 255}
)

func newTestSurface(t *testing.T, w, h int) *fungraphics.FunGraphics {
	t.Helper()
	opts := fungraphics.DefaultOptions()
	opts.Width, opts.Height = w, h
	opts.Headless = true
	opts.HighQuality = false
	opts.CheckBounds = false
	opts.Metrics = fungraphics.NewMetrics()
	fg, err := fungraphics.New(opts)
	if err != nil {
		t.Fatalf("fungraphics.New() error = %v", err)
	}
	t.Cleanup(func() { fg.Close() })
	return fg
}

func newTestBindings(t *testing.T, w, h int) (*Runtime, *Bindings, *fungraphics.FunGraphics) {
	t.Helper()
	fg := newTestSurface(t, w, h)
	runtime := newTestRuntime(t)
	b, err := NewBindings(runtime, fg)
	if err != nil {
		t.Fatalf("NewBindings() error = %v", err)
	}
	return runtime, b, fg
}

func writePNG(t *testing.T, path string, w, h int, c color.Color) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func TestNewBindingsValidation(t *testing.T) {
	fg := newTestSurface(t, 4, 4)
	if _, err := NewBindings(nil, fg); !errors.Is(err, ErrNilRuntime) {
		t.Errorf("expected ErrNilRuntime, got %v", err)
	}
	if _, err := NewBindings(newTestRuntime(t), nil); !errors.Is(err, ErrNilGraphics) {
		t.Errorf("expected ErrNilGraphics, got %v", err)
	}
}

func TestSurfaceSizeBindings(t *testing.T) {
	runtime, _, _ := newTestBindings(t, 32, 24)
	result, err := runtime.ExecuteString("size", "return fg_width() * 1000 + fg_height()")
	if err != nil {
		t.Fatalf("ExecuteString() error = %v", err)
	}
	if got, ok := rt.ToInt(result); !ok || got != 32024 {
		t.Errorf("size = %v, want 32024", result)
	}
}

func TestDrawingBindings(t *testing.T) {
	tests := []struct {
		name string
		code string
		x, y int
		want color.RGBA
	}{
		{"named pixel", `fg_pixel(1, 1, "red")`, 1, 1, red},
		{"rgb pixel", `fg_pixel(2, 2, 0, 0, 255)`, 2, 2, blue},
		{"pen pixel", `fg_set_color("green") fg_pixel(3, 3)`, 3, 3, green},
		{"fill rect", `fg_set_color(0, 255, 0) fg_fill_rect(4, 4, 4, 4)`, 5, 5, green},
		{"line", `fg_set_color("#0000ff") fg_line(0, 10, 31, 10)`, 15, 10, blue},
		{"filled circle", `fg_set_color("red") fg_fill_circle(10, 10, 10)`, 15, 15, red},
		{"filled oval", `fg_set_color("blue") fg_fill_oval(0, 20, 12, 8)`, 6, 24, blue},
		{"filled polygon", `fg_fill_polygon({20, 20, 30, 20, 30, 30, 20, 30}, "green")`, 25, 25, green},
		{"clear with color", `fg_clear("red")`, 31, 31, red},
		{"clear", `fg_pixel(0, 0, "red") fg_clear()`, 0, 0, white},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runtime, _, fg := newTestBindings(t, 32, 32)
			if _, err := runtime.ExecuteString(tt.name, tt.code); err != nil {
				t.Fatalf("ExecuteString() error = %v", err)
			}
			if got := fg.GetPixel(tt.x, tt.y); got != tt.want {
				t.Errorf("pixel (%d,%d) = %v, want %v", tt.x, tt.y, got, tt.want)
			}
		})
	}
}

func TestColorAndPenQueries(t *testing.T) {
	runtime, _, _ := newTestBindings(t, 8, 8)

	tests := []struct {
		name string
		code string
		want string
	}{
		{"get color", `fg_set_color(10, 20, 30) local r, g, b, a = fg_get_color() return string.format("%d,%d,%d,%d", r, g, b, a)`, "10,20,30,255"},
		{"clamped color", `fg_set_color(300, -5, 0, 128) local r, g, b, a = fg_get_color() return string.format("%d,%d,%d,%d", r, g, b, a)`, "255,0,0,128"},
		{"get pixel", `fg_pixel(3, 3, "blue") local r, g, b = fg_get_pixel(3, 3) return string.format("%d,%d,%d", r, g, b)`, "0,0,255"},
		{"pen width", `return string.format("%g", fg_pen_width(3))`, "3"},
		{"pen width query", `return string.format("%g", fg_pen_width())`, "3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := runtime.ExecuteString(tt.name, tt.code)
			if err != nil {
				t.Fatalf("ExecuteString() error = %v", err)
			}
			if got, ok := result.TryString(); !ok || got != tt.want {
				t.Errorf("result = %v, want %q", result, tt.want)
			}
		})
	}
}

func TestBindingArgumentErrors(t *testing.T) {
	tests := []struct {
		name string
		code string
	}{
		{"non-numeric coordinate", `fg_pixel("a", 1)`},
		{"unknown color", `fg_set_color("no-such-color")`},
		{"missing line argument", `fg_line(1, 2, 3)`},
		{"polygon not a table", `fg_polygon(5)`},
		{"odd polygon coordinates", `fg_polygon({1, 2, 3})`},
		{"image not userdata", `fg_image(5, 1, 1)`},
		{"bad font style", `fg_font("SansSerif", "wobbly")`},
		{"text without string", `fg_text(1, 1, {})`},
	}

	runtime, _, _ := newTestBindings(t, 8, 8)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := runtime.ExecuteString(tt.name, tt.code); err == nil {
				t.Errorf("expected error for %s", tt.code)
			}
		})
	}
}

func TestTextBindings(t *testing.T) {
	runtime, _, _ := newTestBindings(t, 64, 32)
	code := `
		fg_set_color("red")
		fg_text(2, 12, "Hi")
		fg_font("Monospaced", "bold", 14)
		fg_text(2, 28, "Go")
		fg_font()
		fg_fancy_text(30, 20, "!", 16, "blue")
	`
	if _, err := runtime.ExecuteString("text", code); err != nil {
		t.Fatalf("ExecuteString() error = %v", err)
	}
}

func TestImageBindings(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "dot.png"), 4, 4, red)

	runtime, b, fg := newTestBindings(t, 32, 32)
	b.SetBaseDir(dir)

	result, err := runtime.ExecuteString("image", `
		local img = assert(fg_load_image("dot.png"))
		local w, h = fg_image_size(img)
		fg_image(img, 16, 16)
		fg_image(img, 8, 8, 0.5, 2)
		fg_mirrored_image(img, 24, 24)
		return w * 10 + h
	`)
	if err != nil {
		t.Fatalf("ExecuteString() error = %v", err)
	}
	if got, ok := rt.ToInt(result); !ok || got != 44 {
		t.Errorf("image size = %v, want 44", result)
	}
	for _, p := range []image.Point{{16, 16}, {8, 8}, {24, 24}} {
		if got := fg.GetPixel(p.X, p.Y); got != red {
			t.Errorf("pixel %v = %v, want red", p, got)
		}
	}

	result, err = runtime.ExecuteString("missing", `
		local img, msg = fg_load_image("none.png")
		return img == nil and type(msg) == "string"
	`)
	if err != nil {
		t.Fatalf("ExecuteString() error = %v", err)
	}
	if ok, _ := result.TryBool(); !ok {
		t.Error("expected nil and a message for a missing image")
	}

	b.ClearImages()
}

func TestLayerBindings(t *testing.T) {
	runtime, _, fg := newTestBindings(t, 8, 8)

	if _, err := runtime.ExecuteString("bg", `fg_background() fg_pixel(0, 0, "red")`); err != nil {
		t.Fatalf("ExecuteString() error = %v", err)
	}
	if fg.ActiveLayer() != fungraphics.LayerBackground {
		t.Fatal("fg_background() did not switch layers")
	}
	if got := fg.GetPixel(0, 0); got != red {
		t.Errorf("background pixel = %v, want red", got)
	}

	if _, err := runtime.ExecuteString("fg", `fg_foreground()`); err != nil {
		t.Fatalf("ExecuteString() error = %v", err)
	}
	if fg.ActiveLayer() != fungraphics.LayerForeground {
		t.Error("fg_foreground() did not switch layers")
	}
}

func TestSetTarget(t *testing.T) {
	runtime, b, first := newTestBindings(t, 8, 8)
	second := newTestSurface(t, 8, 8)

	prev := b.SetTarget(second)
	if prev != fungraphics.Graphics(first) {
		t.Error("SetTarget did not return the previous surface")
	}
	if _, err := runtime.ExecuteString("draw", `fg_pixel(1, 1, "red")`); err != nil {
		t.Fatalf("ExecuteString() error = %v", err)
	}
	if got := second.GetPixel(1, 1); got != red {
		t.Errorf("second surface pixel = %v, want red", got)
	}
	if got := first.GetPixel(1, 1); got == red {
		t.Error("first surface was drawn on after SetTarget")
	}
}
