// Package config loads the gosym configuration file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
	"gopkg.in/yaml.v3"

	"github.com/CWBudde/gosym-lsp/internal/workspace"
)

// FileName is the name of the configuration file looked up in a workspace root.
const FileName = ".gosym.yaml"

// Config holds the settings shared by the language server and the MCP server.
type Config struct {
	Log   LogConfig   `yaml:"log"`
	Index IndexConfig `yaml:"index"`
	LSP   LSPConfig   `yaml:"lsp"`
}

// LogConfig controls log verbosity and destination.
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// IndexConfig limits workspace indexing.
type IndexConfig struct {
	MaxDepth    int      `yaml:"max_depth"`
	MaxFiles    int      `yaml:"max_files"`
	ExcludeDirs []string `yaml:"exclude_dirs"`
	IndexTests  *bool    `yaml:"index_tests"`
}

// LSPConfig holds language server transport and reporting options.
type LSPConfig struct {
	TCP         bool `yaml:"tcp"`
	Port        int  `yaml:"port"`
	MaxProblems int  `yaml:"max_problems"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	opts := workspace.DefaultOptions()
	indexTests := opts.IndexTests

	return &Config{
		Log: LogConfig{Level: "error"},
		Index: IndexConfig{
			MaxDepth:    opts.MaxDepth,
			MaxFiles:    opts.MaxFiles,
			ExcludeDirs: opts.ExcludeDirs,
			IndexTests:  &indexTests,
		},
		LSP: LSPConfig{
			Port:        8765,
			MaxProblems: 100,
		},
	}
}

// Load reads a configuration file. Keys missing from the file keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}

	return cfg, nil
}

// LoadWorkspace reads FileName from root, falling back to the defaults when the file does not
// exist.
func LoadWorkspace(root string) (*Config, error) {
	cfg, err := Load(filepath.Join(root, FileName))
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}

	return cfg, err
}

// Clone returns a deep copy of c.
func (c *Config) Clone() *Config {
	out := *c

	if c.Index.ExcludeDirs != nil {
		out.Index.ExcludeDirs = append([]string(nil), c.Index.ExcludeDirs...)
	}

	if c.Index.IndexTests != nil {
		indexTests := *c.Index.IndexTests
		out.Index.IndexTests = &indexTests
	}

	return &out
}

// Validate checks the values that have no sensible interpretation.
func (c *Config) Validate() error {
	if _, ok := verbosities[strings.ToLower(c.Log.Level)]; !ok {
		return fmt.Errorf("unknown log level %q", c.Log.Level)
	}

	if c.Index.MaxDepth < 0 || c.Index.MaxFiles < 0 {
		return errors.New("index limits must not be negative")
	}

	if c.LSP.Port < 0 || c.LSP.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.LSP.Port)
	}

	return nil
}

// IndexOptions converts the index section into indexer options.
func (c *Config) IndexOptions() workspace.Options {
	opts := workspace.DefaultOptions()

	if c.Index.MaxDepth > 0 {
		opts.MaxDepth = c.Index.MaxDepth
	}

	if c.Index.MaxFiles > 0 {
		opts.MaxFiles = c.Index.MaxFiles
	}

	if c.Index.ExcludeDirs != nil {
		opts.ExcludeDirs = c.Index.ExcludeDirs
	}

	if c.Index.IndexTests != nil {
		opts.IndexTests = *c.Index.IndexTests
	}

	return opts
}

// commonlog verbosity per level name
var verbosities = map[string]int{
	"":         -2,
	"none":     -4,
	"off":      -4,
	"critical": -3,
	"error":    -2,
	"warn":     -1,
	"warning":  -1,
	"notice":   0,
	"info":     1,
	"debug":    2,
}

// Verbosity returns the commonlog verbosity for a level name. Unknown names map to errors only.
func Verbosity(level string) int {
	if v, ok := verbosities[strings.ToLower(level)]; ok {
		return v
	}

	return -2
}

// ConfigureLogging applies the log section to commonlog, writing to the log file when one is
// set and to stderr otherwise.
func (c *Config) ConfigureLogging() {
	var path *string
	if c.Log.File != "" {
		file := c.Log.File
		path = &file
	}

	commonlog.Configure(Verbosity(c.Log.Level), path)
}
