package render

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
)

// Snapshot returns a copy of the surface pixels. The owning buffer's lock
// must be held; the copy may be used after the lock is released.
func (s *Surface) Snapshot() *image.RGBA {
	cp := image.NewRGBA(s.img.Rect)
	copy(cp.Pix, s.img.Pix)
	return cp
}

// EncodePNG writes img to w as PNG.
func EncodePNG(w io.Writer, img image.Image) error {
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("failed to encode PNG: %w", err)
	}
	return nil
}

// SavePNG writes img to filename as PNG. A partially written file is removed.
func SavePNG(filename string, img image.Image) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", filename, err)
	}

	if err := EncodePNG(file, img); err != nil {
		file.Close()
		os.Remove(filename)
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", filename, err)
	}
	return nil
}
