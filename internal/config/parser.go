package config

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
)

// Parser reads scene runner configuration files.
type Parser struct {
	luaParser *LuaConfigParser
}

// NewParser creates a new Parser.
func NewParser() (*Parser, error) {
	luaParser, err := NewLuaConfigParser()
	if err != nil {
		return nil, fmt.Errorf("failed to create Lua parser: %w", err)
	}

	return &Parser{luaParser: luaParser}, nil
}

// ParseFile reads and parses a configuration file. A relative scene path
// is resolved against the directory of path.
func (p *Parser) ParseFile(path string) (*Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	cfg, err := p.Parse(content)
	if err != nil {
		return nil, err
	}
	resolvePaths(cfg, filepath.Dir(path))
	return cfg, nil
}

// Parse parses configuration content and expands environment variables.
func (p *Parser) Parse(content []byte) (*Config, error) {
	if !isLuaConfig(content) {
		return nil, fmt.Errorf("no fungraphics.config assignment found")
	}
	cfg, err := p.luaParser.Parse(content)
	if err != nil {
		return nil, err
	}
	ExpandEnvConfig(cfg)
	return cfg, nil
}

// luaConfigPattern matches "fungraphics.config =" at the start of a line,
// so a commented mention does not count.
var luaConfigPattern = regexp.MustCompile(`(?m)^\s*fungraphics\.config\s*=`)

func isLuaConfig(content []byte) bool {
	return luaConfigPattern.Match(content)
}

// ParseFromFS reads and parses a configuration file from fsys. Paths are
// left as written.
func (p *Parser) ParseFromFS(fsys fs.FS, path string) (*Config, error) {
	content, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config from FS %s: %w", path, err)
	}

	return p.Parse(content)
}

// ParseReader parses configuration from an io.Reader.
func (p *Parser) ParseReader(r io.Reader) (*Config, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	return p.Parse(content)
}

// Close releases resources associated with the parser.
func (p *Parser) Close() error {
	if p.luaParser != nil {
		return p.luaParser.Close()
	}
	return nil
}

func resolvePaths(cfg *Config, dir string) {
	if cfg.Scene.Script != "" && !filepath.IsAbs(cfg.Scene.Script) {
		cfg.Scene.Script = filepath.Join(dir, cfg.Scene.Script)
	}
	for i := range cfg.Fonts {
		if cfg.Fonts[i].Path != "" && !filepath.IsAbs(cfg.Fonts[i].Path) {
			cfg.Fonts[i].Path = filepath.Join(dir, cfg.Fonts[i].Path)
		}
	}
}
