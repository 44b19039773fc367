package config

import "testing"

func TestParseOutput(t *testing.T) {
	tests := []struct {
		in      string
		want    Output
		wantErr bool
	}{
		{"", OutputWindow, false},
		{"window", OutputWindow, false},
		{"Terminal", OutputTerminal, false},
		{"tty", OutputTerminal, false},
		{" headless ", OutputHeadless, false},
		{"none", OutputHeadless, false},
		{"printer", OutputWindow, true},
	}
	for _, tt := range tests {
		got, err := ParseOutput(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseOutput(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseOutput(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestOutputString(t *testing.T) {
	for o, want := range map[Output]string{
		OutputWindow:   "window",
		OutputTerminal: "terminal",
		OutputHeadless: "headless",
		Output(42):     "unknown",
	} {
		if got := o.String(); got != want {
			t.Errorf("Output(%d).String() = %q, want %q", o, got, want)
		}
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Window.Width != DefaultWidth || cfg.Window.Height != DefaultHeight {
		t.Errorf("size = %dx%d", cfg.Window.Width, cfg.Window.Height)
	}
	if cfg.Window.X != -1 || cfg.Window.Y != -1 {
		t.Errorf("window should be centered, got (%d,%d)", cfg.Window.X, cfg.Window.Y)
	}
	if !cfg.Display.HighQuality || !cfg.Display.CheckBounds {
		t.Errorf("display = %+v", cfg.Display)
	}
	if cfg.Scene.LogicRate != DefaultLogicRate {
		t.Errorf("logic rate = %d", cfg.Scene.LogicRate)
	}
}
