// Package project finds and decodes the substrace configuration of a
// project: substrace.toml (or .substrace.yaml) in the unit's directory or
// any parent.
package project

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"substrace/internal/docs"
	"substrace/internal/lint"
	"substrace/internal/lints"
	"substrace/internal/lints/storageiter"
)

// Config is the decoded configuration file.
type Config struct {
	// Path of the file the config was read from, empty for defaults.
	Path string `toml:"-" yaml:"-"`

	Lints   map[string]lint.Level `toml:"lints" yaml:"lints"`
	Storage StorageConfig         `toml:"storage" yaml:"storage"`
	Docs    DocsConfig            `toml:"docs" yaml:"docs"`
	Panics  PanicsConfig          `toml:"panics" yaml:"panics"`
	Check   CheckConfig           `toml:"check" yaml:"check"`

	// Undecoded lists keys present in the file that no field consumed.
	Undecoded []string `toml:"-" yaml:"-"`
}

type StorageConfig struct {
	Report storageiter.Policy `toml:"report" yaml:"report"`
}

type DocsConfig struct {
	MixedRaw docs.MixedRaw `toml:"mixed_raw" yaml:"mixed_raw"`
}

type PanicsConfig struct {
	Required []string `toml:"required" yaml:"required"`
}

// CheckConfig holds defaults for `substrace check` flags.
type CheckConfig struct {
	Jobs           int    `toml:"jobs" yaml:"jobs"`
	MaxDiagnostics int    `toml:"max_diagnostics" yaml:"max_diagnostics"`
	Format         string `toml:"format" yaml:"format"`
	Cache          *bool  `toml:"cache" yaml:"cache"`
}

// ErrUnknownLint reports a [lints] key naming no registered lint.
var ErrUnknownLint = errors.New("unknown lint")

// Default returns the configuration used when no file is found.
func Default() *Config {
	return &Config{Lints: map[string]lint.Level{}}
}

// Load decodes the file at path by its extension.
func Load(path string) (*Config, error) {
	// #nosec G304 -- path comes from FindConfig or the command line
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := Default()
	cfg.Path = path
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%s: failed to parse YAML: %w", path, err)
		}
	default:
		meta, err := toml.Decode(string(data), cfg)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
		}
		for _, key := range meta.Undecoded() {
			cfg.Undecoded = append(cfg.Undecoded, key.String())
		}
		sort.Strings(cfg.Undecoded)
	}
	if cfg.Lints == nil {
		cfg.Lints = map[string]lint.Level{}
	}
	return cfg, nil
}

// Discover finds the config above startDir and loads it; without a file it
// returns Default and ok=false.
func Discover(startDir string) (cfg *Config, ok bool, err error) {
	path, ok, err := FindConfig(startDir)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return Default(), false, nil
	}
	cfg, err = Load(path)
	if err != nil {
		return nil, true, err
	}
	return cfg, true, nil
}

// Validate checks lint names against reg and normalises them to bare names.
func (c *Config) Validate(reg *lint.Registry) error {
	normalised := make(map[string]lint.Level, len(c.Lints))
	var unknown []string
	for name, lvl := range c.Lints {
		l, ok := reg.Lookup(name)
		if !ok {
			unknown = append(unknown, name)
			continue
		}
		normalised[l.Name] = lvl
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return fmt.Errorf("%s: %w: %s", c.source(), ErrUnknownLint, strings.Join(unknown, ", "))
	}
	c.Lints = normalised
	return nil
}

func (c *Config) source() string {
	if c.Path == "" {
		return "config"
	}
	return c.Path
}

// LintOptions converts the pass settings.
func (c *Config) LintOptions() lints.Options {
	return lints.Options{
		StoragePolicy:      c.Storage.Report,
		MixedRaw:           c.Docs.MixedRaw,
		RequiredPanicLints: c.Panics.Required,
	}
}

// EngineOptions converts the level overrides.
func (c *Config) EngineOptions() lint.Options {
	levels := make(map[string]lint.Level, len(c.Lints))
	for k, v := range c.Lints {
		levels[k] = v
	}
	return lint.Options{Levels: levels}
}

// Fingerprint hashes every setting that changes analysis results.
func (c *Config) Fingerprint() Digest {
	var b strings.Builder
	names := make([]string, 0, len(c.Lints))
	for name := range c.Lints {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(&b, "lint %s=%s\n", name, c.Lints[name])
	}
	fmt.Fprintf(&b, "storage.report=%s\ndocs.mixed_raw=%s\npanics.required=%s\n",
		c.Storage.Report, c.Docs.MixedRaw, strings.Join(c.Panics.Required, ","))
	return Sum([]byte(b.String()))
}

// Clone returns a copy that can be validated or overridden independently.
func (c *Config) Clone() *Config {
	out := *c
	out.Lints = make(map[string]lint.Level, len(c.Lints))
	for k, v := range c.Lints {
		out.Lints[k] = v
	}
	out.Panics.Required = append([]string(nil), c.Panics.Required...)
	out.Undecoded = append([]string(nil), c.Undecoded...)
	return &out
}
