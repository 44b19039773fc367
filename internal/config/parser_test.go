package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
)

func newTestParser(t *testing.T) *Parser {
	t.Helper()
	p, err := NewParser()
	if err != nil {
		t.Fatalf("NewParser failed: %v", err)
	}
	t.Cleanup(func() { p.Close() })
	return p
}

func TestParserParse(t *testing.T) {
	p := newTestParser(t)
	t.Setenv("TEST_FG_TITLE", "From Env")

	cfg, err := p.Parse([]byte(`
-- fungraphics.config = { width = 1 } is only a comment
fungraphics.config = {
    width = 200,
    title = '${TEST_FG_TITLE}',
}
`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if cfg.Window.Width != 200 {
		t.Errorf("width = %d, want 200", cfg.Window.Width)
	}
	if cfg.Window.Title != "From Env" {
		t.Errorf("title = %q, want expanded value", cfg.Window.Title)
	}
}

func TestParserRejectsUnknownFormat(t *testing.T) {
	p := newTestParser(t)
	_, err := p.Parse([]byte("width = 200\n"))
	if err == nil || !strings.Contains(err.Error(), "fungraphics.config") {
		t.Errorf("expected format error, got %v", err)
	}
}

func TestIsLuaConfig(t *testing.T) {
	tests := []struct {
		content string
		want    bool
	}{
		{"fungraphics.config = {}", true},
		{"  fungraphics.config={}", true},
		{"local x = 1\nfungraphics.config = {}", true},
		{"-- fungraphics.config = {}", false},
		{"app.config = {}", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := isLuaConfig([]byte(tt.content)); got != tt.want {
			t.Errorf("isLuaConfig(%q) = %v, want %v", tt.content, got, tt.want)
		}
	}
}

func TestParserParseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "demo.lua")
	content := `
fungraphics.config = {
    scene = 'scenes/bounce.lua',
    fonts = {
        { family = 'Mono', path = 'mono.ttf' },
        { family = 'Abs', path = '/usr/share/fonts/abs.ttf' },
    },
}
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	p := newTestParser(t)
	cfg, err := p.ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile failed: %v", err)
	}
	if want := filepath.Join(dir, "scenes", "bounce.lua"); cfg.Scene.Script != want {
		t.Errorf("script = %q, want %q", cfg.Scene.Script, want)
	}
	if want := filepath.Join(dir, "mono.ttf"); cfg.Fonts[0].Path != want {
		t.Errorf("font path = %q, want %q", cfg.Fonts[0].Path, want)
	}
	if cfg.Fonts[1].Path != "/usr/share/fonts/abs.ttf" {
		t.Errorf("absolute font path changed: %q", cfg.Fonts[1].Path)
	}
}

func TestParserParseFileNotFound(t *testing.T) {
	p := newTestParser(t)
	if _, err := p.ParseFile(filepath.Join(t.TempDir(), "missing.lua")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestParserParseFromFS(t *testing.T) {
	fsys := fstest.MapFS{
		"configs/demo.lua": &fstest.MapFile{Data: []byte("fungraphics.config = { scene = 'a.lua', height = 90 }")},
	}
	p := newTestParser(t)

	cfg, err := p.ParseFromFS(fsys, "configs/demo.lua")
	if err != nil {
		t.Fatalf("ParseFromFS failed: %v", err)
	}
	if cfg.Window.Height != 90 || cfg.Scene.Script != "a.lua" {
		t.Errorf("cfg = %+v", cfg)
	}
	if _, err := p.ParseFromFS(fsys, "nope.lua"); err == nil {
		t.Error("expected error for missing FS file")
	}
}

func TestParserParseReader(t *testing.T) {
	p := newTestParser(t)
	cfg, err := p.ParseReader(strings.NewReader("fungraphics.config = { output = 'headless' }"))
	if err != nil {
		t.Fatalf("ParseReader failed: %v", err)
	}
	if cfg.Display.Output != OutputHeadless {
		t.Errorf("output = %v, want headless", cfg.Display.Output)
	}
}
