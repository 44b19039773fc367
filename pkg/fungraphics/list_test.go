package fungraphics

import (
	"image/color"
	"sync"
	"testing"
)

// dot is a one-pixel drawable.
type dot struct {
	x, y int
	c    color.Color
}

func (d *dot) Draw(g Graphics) {
	g.SetPixelColor(d.x, d.y, d.c)
}

func TestListGraphicsRepaint(t *testing.T) {
	fg, _ := newHeadless(t, headlessOptions(8, 8))
	list := NewListGraphics(fg)

	a := &dot{1, 1, red}
	b := &dot{1, 1, blue}
	c := &dot{5, 5, green}
	list.AddDrawable(a)
	list.AddDrawable(b)
	list.AddDrawable(c)
	if list.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", list.Len())
	}

	fg.SetPixelColor(7, 7, red)
	list.Repaint()

	if fg.GetPixel(1, 1) != blue {
		t.Errorf("later drawables should paint on top, got %v", fg.GetPixel(1, 1))
	}
	if fg.GetPixel(5, 5) != green {
		t.Error("drawable not painted")
	}
	if fg.GetPixel(7, 7) != white {
		t.Error("Repaint should clear first")
	}

	if !list.RemoveDrawable(b) {
		t.Fatal("RemoveDrawable() = false for a listed drawable")
	}
	if list.RemoveDrawable(b) {
		t.Error("RemoveDrawable() = true for a removed drawable")
	}
	list.Repaint()
	if fg.GetPixel(1, 1) != red {
		t.Errorf("after removal pixel = %v, want red", fg.GetPixel(1, 1))
	}

	list.RemoveAll()
	list.Repaint()
	if list.Len() != 0 || fg.GetPixel(5, 5) != white {
		t.Error("RemoveAll should leave an empty frame")
	}
}

func TestListGraphicsBackgroundColor(t *testing.T) {
	fg, _ := newHeadless(t, headlessOptions(4, 4))
	list := NewListGraphics(fg)
	list.SetBackgroundColor(blue)
	list.Repaint()

	if fg.GetPixel(2, 2) != blue {
		t.Errorf("Repaint cleared to %v, want blue", fg.GetPixel(2, 2))
	}
	if list.Surface() != fg {
		t.Error("Surface() should return the wrapped surface")
	}
}

func TestListGraphicsConcurrentEdits(t *testing.T) {
	fg, _ := newHeadless(t, headlessOptions(16, 16))
	list := NewListGraphics(fg)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				d := &dot{i, j % 16, red}
				list.AddDrawable(d)
				list.RemoveDrawable(d)
			}
		}(i)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				list.Repaint()
			}
		}()
	}
	wg.Wait()

	if list.Len() != 0 {
		t.Errorf("Len() = %d, want 0", list.Len())
	}
}
