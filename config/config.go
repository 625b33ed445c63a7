// Copyright (c) 2020-2023 Ozan Hacıbekiroğlu.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

// Package config handles neoc.toml configuration.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// FileName is the name of the configuration file looked up by FindAndLoad.
const FileName = "neoc.toml"

// Config represents a neoc.toml configuration.
type Config struct {
	Compiler Compiler `toml:"compiler"`
	VM       VM       `toml:"vm"`
	Log      Log      `toml:"log"`

	// Path is the file the configuration was loaded from, empty for
	// defaults.
	Path string `toml:"-"`
}

// Compiler configures compilation.
type Compiler struct {
	// ResultValue keeps the value of the last expression statement.
	ResultValue bool `toml:"result-value"`
	// Trace prints the emitted instructions.
	Trace bool `toml:"trace"`
	// Output is the artifact path written by the compile command.
	Output string `toml:"output"`
}

// VM configures script execution.
type VM struct {
	MaxSteps     int           `toml:"max-steps"`
	MaxStackSize int           `toml:"max-stack-size"`
	Timeout      time.Duration `toml:"timeout"`
	Trace        bool          `toml:"trace"`
}

// Log configures logging.
type Log struct {
	// Verbosity 0 logs errors and warnings, 1 info, 2 debug. Negative
	// disables logging.
	Verbosity int `toml:"verbosity"`
	// File receives the log instead of stderr when set.
	File string `toml:"file"`
}

// Default returns the configuration used when no file is found.
func Default() *Config {
	return &Config{
		Compiler: Compiler{ResultValue: true},
		VM: VM{
			MaxSteps:     1 << 22,
			MaxStackSize: 2048,
			Timeout:      10 * time.Second,
		},
	}
}

// Parse decodes data over the defaults.
func Parse(data []byte) (*Config, error) {
	c := Default()
	md, err := toml.Decode(string(data), c)
	if err != nil {
		return nil, err
	}
	if keys := md.Undecoded(); len(keys) > 0 {
		return nil, fmt.Errorf("unknown key %q", keys[0].String())
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Load parses the configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	c.Path = path
	return c, nil
}

// FindAndLoad walks up from startDir to find a neoc.toml file and loads
// it. Defaults are returned if no file is found.
func FindAndLoad(startDir string) (*Config, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}
	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return Default(), nil
		}
		dir = parent
	}
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.VM.MaxStackSize < 0 {
		return errors.New("vm.max-stack-size must not be negative")
	}
	if c.VM.Timeout < 0 {
		return errors.New("vm.timeout must not be negative")
	}
	if c.Log.Verbosity > 2 {
		return fmt.Errorf("log.verbosity %d out of range", c.Log.Verbosity)
	}
	return nil
}
