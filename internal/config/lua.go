package config

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/arnodel/golua/lib"
	rt "github.com/arnodel/golua/runtime"

	"github.com/opd-ai/go-fungraphics/internal/render"
)

// LuaConfigParser parses Lua configuration files. The file assigns a table
// to fungraphics.config; the parser executes it and reads the table back.
type LuaConfigParser struct {
	runtime *rt.Runtime
	cleanup func()
	mu      sync.Mutex
}

// NewLuaConfigParser creates a new LuaConfigParser with a fresh Lua runtime.
func NewLuaConfigParser() (*LuaConfigParser, error) {
	return NewLuaConfigParserWithOutput(io.Discard)
}

// NewLuaConfigParserWithOutput creates a LuaConfigParser whose print output
// goes to stdout.
func NewLuaConfigParserWithOutput(stdout io.Writer) (*LuaConfigParser, error) {
	if stdout == nil {
		stdout = os.Stdout
	}

	runtime := rt.New(stdout)
	cleanup := lib.LoadAll(runtime)

	return &LuaConfigParser{
		runtime: runtime,
		cleanup: cleanup,
	}, nil
}

// Parse executes the Lua configuration in content and extracts
// fungraphics.config.
func (p *LuaConfigParser) Parse(content []byte) (*Config, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cleanup == nil {
		return nil, fmt.Errorf("parser is closed")
	}

	p.initGlobal()

	closure, err := p.runtime.CompileAndLoadLuaChunk(
		"config",
		content,
		rt.TableValue(p.runtime.GlobalEnv()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to compile Lua configuration: %w", err)
	}

	ctx := rt.RuntimeContextDef{
		HardLimits: rt.RuntimeResources{
			Cpu:    DefaultCPULimit,
			Memory: DefaultMemoryLimit,
		},
	}
	p.runtime.PushContext(ctx)
	defer p.runtime.PopContext()

	if err := p.call(closure); err != nil {
		return nil, fmt.Errorf("failed to execute Lua configuration: %w", err)
	}

	return p.extractConfig()
}

// call runs closure on the main thread. The runtime panics when a hard
// limit is exceeded; that panic is returned as an error.
func (p *LuaConfigParser) call(closure *rt.Closure) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("resource limit exceeded: %v", r)
		}
	}()
	_, err = rt.Call1(p.runtime.MainThread(), rt.FunctionValue(closure))
	return err
}

// initGlobal installs an empty fungraphics.config table.
func (p *LuaConfigParser) initGlobal() {
	root := rt.NewTable()
	root.Set(rt.StringValue("config"), rt.TableValue(rt.NewTable()))
	p.runtime.GlobalEnv().Set(rt.StringValue("fungraphics"), rt.TableValue(root))
}

func (p *LuaConfigParser) extractConfig() (*Config, error) {
	cfg := DefaultConfig()

	rootVal := p.runtime.GlobalEnv().Get(rt.StringValue("fungraphics"))
	if rootVal == rt.NilValue {
		return &cfg, nil
	}
	root, ok := rootVal.TryTable()
	if !ok {
		return nil, fmt.Errorf("fungraphics is not a table")
	}

	configVal := root.Get(rt.StringValue("config"))
	if configVal == rt.NilValue {
		return &cfg, nil
	}
	table, ok := configVal.TryTable()
	if !ok {
		return nil, fmt.Errorf("fungraphics.config is not a table")
	}
	if err := extractConfigTable(&cfg, table); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func extractConfigTable(cfg *Config, table *rt.Table) error {
	// Window
	if val := getTableInt(table, "width"); val != nil {
		cfg.Window.Width = *val
	}
	if val := getTableInt(table, "height"); val != nil {
		cfg.Window.Height = *val
	}
	for _, f := range []struct {
		key    string
		target *int
	}{
		{"x", &cfg.Window.X},
		{"y", &cfg.Window.Y},
	} {
		v, err := getTableOffset(table, f.key)
		if err != nil {
			return err
		}
		if v != nil {
			*f.target = *v
		}
	}
	if val := getTableString(table, "title"); val != nil {
		cfg.Window.Title = *val
	}

	// Display
	if val := getTableBool(table, "high_quality"); val != nil {
		cfg.Display.HighQuality = *val
	}
	if val := getTableBool(table, "check_bounds"); val != nil {
		cfg.Display.CheckBounds = *val
	}
	if val := getTableBool(table, "show_fps"); val != nil {
		cfg.Display.ShowFPS = *val
	}
	if val := getTableInt(table, "refresh_rate"); val != nil {
		cfg.Display.RefreshRate = *val
	}
	if val := getTableString(table, "background"); val != nil {
		c, err := render.ParseColor(*val)
		if err != nil {
			return fmt.Errorf("invalid background: %w", err)
		}
		cfg.Display.Background = c
	}
	if val := getTableString(table, "output"); val != nil {
		o, err := ParseOutput(*val)
		if err != nil {
			return fmt.Errorf("invalid output: %w", err)
		}
		cfg.Display.Output = o
	}

	// Scene
	if val := getTableString(table, "scene"); val != nil {
		cfg.Scene.Script = *val
	}
	if val := getTableInt(table, "logic_hz"); val != nil {
		cfg.Scene.LogicRate = *val
	}
	if val := getTableBool(table, "watch"); val != nil {
		cfg.Scene.Watch = *val
	}
	if val := getTableInt(table, "frames"); val != nil {
		cfg.Scene.Frames = *val
	}

	// Sandbox
	if val := getTableInt(table, "lua_cpu_limit"); val != nil {
		if *val < 0 {
			return fmt.Errorf("invalid lua_cpu_limit: %d", *val)
		}
		cfg.Lua.CPULimit = uint64(*val)
	}
	if val := getTableInt(table, "lua_memory_limit"); val != nil {
		if *val < 0 {
			return fmt.Errorf("invalid lua_memory_limit: %d", *val)
		}
		cfg.Lua.MemoryLimit = uint64(*val)
	}

	return extractFonts(cfg, table)
}

// extractFonts reads the fonts array: { {family=..., style=..., path=...}, ... }.
func extractFonts(cfg *Config, table *rt.Table) error {
	val := table.Get(rt.StringValue("fonts"))
	if val == rt.NilValue {
		return nil
	}
	fonts, ok := val.TryTable()
	if !ok {
		return fmt.Errorf("fonts is not a table")
	}

	for i := int64(1); ; i++ {
		entry := fonts.Get(rt.IntValue(i))
		if entry == rt.NilValue {
			return nil
		}
		t, ok := entry.TryTable()
		if !ok {
			return fmt.Errorf("fonts[%d] is not a table", i)
		}
		var fc FontConfig
		if s := getTableString(t, "family"); s != nil {
			fc.Family = *s
		}
		if s := getTableString(t, "style"); s != nil {
			fc.Style = *s
		}
		if s := getTableString(t, "path"); s != nil {
			fc.Path = *s
		}
		cfg.Fonts = append(cfg.Fonts, fc)
	}
}

// Close releases resources associated with the parser's Lua runtime.
func (p *LuaConfigParser) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cleanup != nil {
		p.cleanup()
		p.cleanup = nil
	}
	return nil
}

// getTableOffset reads a window offset: a number or the string "centered".
func getTableOffset(table *rt.Table, key string) (*int, error) {
	if n := getTableInt(table, key); n != nil {
		return n, nil
	}
	if s := getTableString(table, key); s != nil {
		if strings.EqualFold(strings.TrimSpace(*s), "centered") {
			c := centered
			return &c, nil
		}
		return nil, fmt.Errorf("invalid %s: %q", key, *s)
	}
	return nil, nil
}

// getTableBool retrieves a boolean value from a Lua table.
// Returns nil if the key doesn't exist or is not a boolean.
func getTableBool(table *rt.Table, key string) *bool {
	val := table.Get(rt.StringValue(key))
	if val == rt.NilValue {
		return nil
	}

	if b, ok := val.TryBool(); ok {
		return &b
	}

	// "yes"/"no" strings are accepted too
	if s, ok := val.TryString(); ok {
		b := parseBool(s)
		return &b
	}

	return nil
}

// getTableString retrieves a string value from a Lua table.
// Returns nil if the key doesn't exist or is not a string.
func getTableString(table *rt.Table, key string) *string {
	val := table.Get(rt.StringValue(key))
	if val == rt.NilValue {
		return nil
	}

	if s, ok := val.TryString(); ok {
		return &s
	}

	return nil
}

// getTableInt retrieves an int value from a Lua table.
// Returns nil if the key doesn't exist or is not a number.
func getTableInt(table *rt.Table, key string) *int {
	val := table.Get(rt.StringValue(key))
	if val == rt.NilValue {
		return nil
	}

	if n, ok := val.TryInt(); ok {
		i := int(n)
		return &i
	}

	// Floats truncate
	if f, ok := val.TryFloat(); ok {
		i := int(f)
		return &i
	}

	return nil
}

func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "true", "on", "1":
		return true
	default:
		return false
	}
}
