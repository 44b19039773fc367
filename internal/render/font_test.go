package render

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"golang.org/x/image/font/gofont/gomono"
)

func TestFontStyleString(t *testing.T) {
	tests := []struct {
		style    FontStyle
		expected string
	}{
		{FontStyleRegular, "regular"},
		{FontStyleBold, "bold"},
		{FontStyleItalic, "italic"},
		{FontStyleBoldItalic, "bold-italic"},
		{FontStyle(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.style.String(); got != tt.expected {
				t.Errorf("FontStyle.String() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestParseFontStyle(t *testing.T) {
	tests := []struct {
		input    string
		expected FontStyle
		wantErr  bool
	}{
		{"regular", FontStyleRegular, false},
		{"plain", FontStyleRegular, false},
		{"", FontStyleRegular, false},
		{"BOLD", FontStyleBold, false},
		{"Italic", FontStyleItalic, false},
		{"bold_italic", FontStyleBoldItalic, false},
		{"oblique", FontStyleRegular, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFontStyle(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFontStyle(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.expected {
				t.Errorf("ParseFontStyle(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestFontManagerFamilies(t *testing.T) {
	fm := NewFontManager()
	want := []string{FamilyMonospaced, FamilySansSerif}
	if got := fm.Families(); !reflect.DeepEqual(got, want) {
		t.Errorf("Families() = %v, want %v", got, want)
	}
}

func TestFontManagerFaceCached(t *testing.T) {
	fm := NewFontManager()

	a, err := fm.Face(FamilySansSerif, FontStyleBold, 20, true)
	if err != nil {
		t.Fatalf("Face() error = %v", err)
	}
	b, err := fm.Face(FamilySansSerif, FontStyleBold, 20, true)
	if err != nil {
		t.Fatalf("Face() error = %v", err)
	}
	if a != b {
		t.Error("Face() should return the cached face for identical requests")
	}

	c, err := fm.Face(FamilySansSerif, FontStyleBold, 20, false)
	if err != nil {
		t.Fatalf("Face() error = %v", err)
	}
	if a == c {
		t.Error("anti-aliased and hinted faces should be cached separately")
	}
}

func TestFontManagerFallback(t *testing.T) {
	fm := NewFontManager()

	unknown, err := fm.Face("Comic", FontStyleRegular, 12, true)
	if err != nil {
		t.Fatalf("Face(unknown family) error = %v", err)
	}
	sans, _ := fm.Face(FamilySansSerif, FontStyleRegular, 12, true)
	if unknown != sans {
		t.Error("unknown family should fall back to SansSerif")
	}

	// Monospaced has no italic; it falls back to regular.
	italic, err := fm.Face(FamilyMonospaced, FontStyleItalic, 12, true)
	if err != nil {
		t.Fatalf("Face(missing style) error = %v", err)
	}
	regular, _ := fm.Face(FamilyMonospaced, FontStyleRegular, 12, true)
	if italic != regular {
		t.Error("missing style should fall back to regular")
	}
}

func TestFontManagerDefaultSize(t *testing.T) {
	fm := NewFontManager()
	zero, err := fm.Face(FamilySansSerif, FontStyleRegular, 0, true)
	if err != nil {
		t.Fatalf("Face() error = %v", err)
	}
	def, _ := fm.Face(FamilySansSerif, FontStyleRegular, DefaultFontSize, true)
	if zero != def {
		t.Error("size 0 should use DefaultFontSize")
	}
}

func TestFontManagerLoadFontFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mono.ttf")
	if err := os.WriteFile(path, gomono.TTF, 0o644); err != nil {
		t.Fatal(err)
	}

	fm := NewFontManager()
	if err := fm.LoadFontFromFile("Custom", FontStyleRegular, path); err != nil {
		t.Fatalf("LoadFontFromFile() error = %v", err)
	}
	if _, err := fm.Face("Custom", FontStyleRegular, 14, true); err != nil {
		t.Errorf("Face(Custom) error = %v", err)
	}

	found := false
	for _, f := range fm.Families() {
		if f == "Custom" {
			found = true
		}
	}
	if !found {
		t.Error("Families() should include a loaded family")
	}
}

func TestFontManagerLoadErrors(t *testing.T) {
	fm := NewFontManager()
	if err := fm.LoadFontFromFile("X", FontStyleRegular, filepath.Join(t.TempDir(), "missing.ttf")); err == nil {
		t.Error("LoadFontFromFile(missing) expected error")
	}
	if err := fm.LoadFontFromData("X", FontStyleRegular, []byte("not a font")); err == nil {
		t.Error("LoadFontFromData(garbage) expected error")
	}
}
