// Package config holds interpreter options and loads them from lox.toml or
// lox.yaml files.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// File names FindAndLoad looks for, in order.
var FileNames = []string{"lox.toml", "lox.yaml", "lox.yml"}

// Options configures the interpreter and its driver.
type Options struct {
	// Debug enables per-instruction tracing.
	Debug bool `toml:"debug" yaml:"debug"`
	// PrintTokens dumps the token stream before compiling.
	PrintTokens bool   `toml:"print-tokens" yaml:"print_tokens"`
	FilePath    string `toml:"file" yaml:"file"`
	// Color is "auto", "always" or "never".
	Color     string `toml:"color" yaml:"color"`
	Verbosity int    `toml:"verbosity" yaml:"verbosity"`
	MaxStack  int    `toml:"max-stack" yaml:"max_stack"`
	// InstructionLimit caps instructions per run; 0 is unlimited.
	InstructionLimit int `toml:"instruction-limit" yaml:"instruction_limit"`
	// Encoding of source files: "utf-8" or "shift_jis".
	Encoding string `toml:"encoding" yaml:"encoding"`

	// Path is the file the options were loaded from, if any.
	Path string `toml:"-" yaml:"-"`
}

// Default returns the options used when nothing is configured.
func Default() *Options {
	return &Options{
		Color:    "auto",
		MaxStack: 1024,
		Encoding: "utf-8",
	}
}

// Load reads options from a TOML or YAML file, chosen by extension.
// Unset keys keep their defaults.
func Load(path string) (*Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	opts := Default()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		if err := toml.Unmarshal(data, opts); err != nil {
			return nil, fmt.Errorf("parse error in %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, opts); err != nil {
			return nil, fmt.Errorf("parse error in %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format %q for %s", ext, path)
	}

	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	opts.Path = path
	return opts, nil
}

// FindAndLoad walks up from startDir looking for a config file. It returns
// nil, nil when none is found.
func FindAndLoad(startDir string) (*Options, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		for _, name := range FileNames {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				return Load(path)
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, nil
		}
		dir = parent
	}
}

// Validate rejects option values the interpreter cannot honour.
func (o *Options) Validate() error {
	switch o.Color {
	case "", "auto", "always", "never":
	default:
		return fmt.Errorf("invalid color mode %q", o.Color)
	}
	switch strings.ToLower(o.Encoding) {
	case "", "utf-8", "utf8", "shift_jis", "sjis":
	default:
		return fmt.Errorf("unsupported encoding %q", o.Encoding)
	}
	if o.MaxStack < 0 {
		return fmt.Errorf("max-stack must not be negative")
	}
	if o.InstructionLimit < 0 {
		return fmt.Errorf("instruction-limit must not be negative")
	}
	return nil
}
