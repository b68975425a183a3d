package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/DevSymphony/symkt/internal/linter"
)

const (
	symDir      = ".sym"
	projectFile = "kotlin.yml"

	// DefaultTimeout bounds a single tool invocation.
	DefaultTimeout = 2 * time.Minute
)

// KnownTools lists the tools the config file may name, in display order.
var KnownTools = []string{"detekt", "ktlint", "ktfmt"}

// Config represents the .sym/kotlin.yml structure
type Config struct {
	// ToolsDir is where `symkt install` puts tools. "~" is expanded.
	ToolsDir string `yaml:"toolsDir,omitempty"`

	// Timeout bounds a single tool invocation (e.g. "2m").
	Timeout time.Duration `yaml:"timeout,omitempty"`

	// Tools holds per-tool settings keyed by tool name.
	Tools map[string]ToolConfig `yaml:"tools,omitempty"`
}

// ToolConfig is the per-tool section as written in the file. Unset
// booleans fall back to the tool's defaults.
type ToolConfig struct {
	Enable         *bool    `yaml:"enable,omitempty"`
	Version        string   `yaml:"version,omitempty"`
	ExecutablePath string   `yaml:"executablePath,omitempty"`
	Args           []string `yaml:"args,omitempty"`
	RunOnSave      *bool    `yaml:"runOnSave,omitempty"`
	FormatOnSave   *bool    `yaml:"formatOnSave,omitempty"`
}

// ToolSettings are the resolved settings of one tool.
type ToolSettings struct {
	Name           string
	Enable         bool
	Version        string
	ExecutablePath string
	Args           []string
	RunOnSave      bool
	FormatOnSave   bool
}

// errUnknownTool is returned when the config names a tool symkt does not know.
type errUnknownTool struct {
	Name string
}

func (e *errUnknownTool) Error() string {
	return fmt.Sprintf("unknown tool %q in config (known: detekt, ktlint, ktfmt)", e.Name)
}

var errNegativeTimeout = errors.New("timeout must not be negative")

// Path returns the config file path under root.
func Path(root string) string {
	return filepath.Join(root, symDir, projectFile)
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Timeout: DefaultTimeout,
		Tools:   map[string]ToolConfig{},
	}
}

// Load reads the config file at path. A missing file yields Default().
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	if cfg.Tools == nil {
		cfg.Tools = map[string]ToolConfig{}
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}

	return cfg, nil
}

// Save writes cfg to path, creating the parent directory.
func Save(path string, cfg *Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create %s directory: %w", filepath.Dir(path), err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// Exists checks if a config file exists at path.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Validate checks tool names and the timeout.
func (c *Config) Validate() error {
	if c.Timeout < 0 {
		return errNegativeTimeout
	}
	names := make([]string, 0, len(c.Tools))
	for name := range c.Tools {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if !isKnown(name) {
			return &errUnknownTool{Name: name}
		}
	}
	return nil
}

// Tool resolves the settings of one tool, applying defaults and the
// SYMKT_<TOOL>_PATH environment fallback for the executable.
func (c *Config) Tool(name string) ToolSettings {
	tc := c.Tools[name]

	s := ToolSettings{
		Name:           name,
		Enable:         boolOr(tc.Enable, true),
		Version:        tc.Version,
		ExecutablePath: tc.ExecutablePath,
		Args:           append([]string(nil), tc.Args...),
		// ktfmt is a pure formatter: it only acts on save when formatOnSave is set.
		RunOnSave:    boolOr(tc.RunOnSave, name != "ktfmt"),
		FormatOnSave: boolOr(tc.FormatOnSave, false),
	}

	if s.ExecutablePath == "" {
		s.ExecutablePath = linter.EnvOverride(name)
	}
	s.ExecutablePath = linter.ExpandHome(s.ExecutablePath)

	return s
}

// EnabledTools returns the enabled tools in KnownTools order.
func (c *Config) EnabledTools() []string {
	var names []string
	for _, name := range KnownTools {
		if c.Tool(name).Enable {
			names = append(names, name)
		}
	}
	return names
}

// SetTool stores settings for a tool.
func (c *Config) SetTool(name string, tc ToolConfig) {
	if c.Tools == nil {
		c.Tools = map[string]ToolConfig{}
	}
	c.Tools[name] = tc
}

// Settings returns the project-wide settings handed to every tool.
func (c *Config) Settings() linter.Settings {
	toolsDir := linter.DefaultToolsDir()
	if c.ToolsDir != "" {
		toolsDir = linter.ExpandHome(c.ToolsDir)
	}
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	versions := make(map[string]string)
	for name, tc := range c.Tools {
		if tc.Version != "" {
			versions[name] = tc.Version
		}
	}
	return linter.Settings{ToolsDir: toolsDir, Timeout: timeout, Versions: versions}
}

// Bool returns a pointer to b, for building ToolConfig values.
func Bool(b bool) *bool {
	return &b
}

func boolOr(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}

func isKnown(name string) bool {
	for _, k := range KnownTools {
		if k == name {
			return true
		}
	}
	return false
}
