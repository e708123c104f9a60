// Package config handles joy.toml runtime configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"joy/pkg/lexer"
	"joy/pkg/vm"
)

// FileName is the configuration file looked up by FindAndLoad.
const FileName = "joy.toml"

// Config represents a joy.toml configuration.
type Config struct {
	VM       VM       `toml:"vm"`
	Compiler Compiler `toml:"compiler"`
	Log      Log      `toml:"log"`

	// Path is the file the configuration was read from (set at load time).
	Path string `toml:"-"`
}

// VM configures execution limits.
type VM struct {
	MaxSteps     int `toml:"max-steps"`
	MaxCallDepth int `toml:"max-call-depth"`
}

// Compiler configures the source front end.
type Compiler struct {
	MaxScan int `toml:"max-scan"`
}

// Log configures diagnostics output.
type Log struct {
	Verbose bool `toml:"verbose"`
	NoColor bool `toml:"no-color"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		VM: VM{
			MaxSteps:     vm.DefaultMaxSteps,
			MaxCallDepth: vm.DefaultMaxCallDepth,
		},
		Compiler: Compiler{
			MaxScan: lexer.DefaultMaxScan,
		},
	}
}

// Load parses the file at path. Keys missing from the file keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	c := Default()
	if err := toml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", path, err)
	}

	c.Path = path
	return c, nil
}

// FindAndLoad walks up from startDir to find a joy.toml file and loads it.
// Returns the defaults if no file is found.
func FindAndLoad(startDir string) (*Config, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return Default(), nil
		}
		dir = parent
	}
}

// Validate rejects negative limits. Zero disables a limit.
func (c *Config) Validate() error {
	switch {
	case c.VM.MaxSteps < 0:
		return fmt.Errorf("vm.max-steps must not be negative, got %d", c.VM.MaxSteps)
	case c.VM.MaxCallDepth < 0:
		return fmt.Errorf("vm.max-call-depth must not be negative, got %d", c.VM.MaxCallDepth)
	case c.Compiler.MaxScan < 0:
		return fmt.Errorf("compiler.max-scan must not be negative, got %d", c.Compiler.MaxScan)
	}

	return nil
}

// VMOptions returns the VM options matching the configured limits.
func (c *Config) VMOptions() []vm.Option {
	return []vm.Option{
		vm.WithMaxSteps(c.VM.MaxSteps),
		vm.WithMaxCallDepth(c.VM.MaxCallDepth),
	}
}
