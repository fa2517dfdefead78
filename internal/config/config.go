// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

// Package config defines the configuration of the jframe command-line tool.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/creachadair/jframe"
)

// Config is the configuration for the jframe tool. The zero value is not
// valid; start from Default.
type Config struct {
	AllowComments bool   `toml:"allow_comments"`
	UseNumber     bool   `toml:"use_number"`
	MaxFrameSize  int    `toml:"max_frame_size"`
	SkipMalformed bool   `toml:"skip_malformed"`
	Format        string `toml:"format"`     // json or yaml
	Schema        string `toml:"schema"`     // path of a JSON Schema file
	Decompress    string `toml:"decompress"` // none, auto, gzip, or zstd
	Listen        string `toml:"listen"`     // TCP listen address
	LogLevel      string `toml:"log_level"`  // debug, info, warn, error
	LogFormat     string `toml:"log_format"` // text or json
}

// Default returns a new Config with default values.
func Default() *Config {
	return &Config{
		MaxFrameSize: 16 << 20,
		Format:       "json",
		Decompress:   "auto",
		LogLevel:     "info",
		LogFormat:    "text",
	}
}

// Load reads a TOML configuration file from path. Fields not set in the file
// keep their default values. Unknown keys are reported as errors.
func Load(path string) (*Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if keys := md.Undecoded(); len(keys) != 0 {
		ks := make([]string, len(keys))
		for i, k := range keys {
			ks[i] = k.String()
		}
		return nil, fmt.Errorf("load config: unknown keys: %s", strings.Join(ks, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// Validate reports an error if c has invalid settings.
func (c *Config) Validate() error {
	var errs []error
	if c.MaxFrameSize < 0 {
		errs = append(errs, fmt.Errorf("invalid max_frame_size %d", c.MaxFrameSize))
	}
	if !slices.Contains([]string{"json", "yaml"}, c.Format) {
		errs = append(errs, fmt.Errorf("invalid format %q", c.Format))
	}
	if !slices.Contains([]string{"none", "auto", "gzip", "zstd"}, c.Decompress) {
		errs = append(errs, fmt.Errorf("invalid decompress %q", c.Decompress))
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if !slices.Contains([]string{"text", "json"}, c.LogFormat) {
		errs = append(errs, fmt.Errorf("invalid log_format %q", c.LogFormat))
	}
	return errors.Join(errs...)
}

// Options returns framing options matching c.
func (c *Config) Options() *jframe.Options {
	return &jframe.Options{
		AllowComments: c.AllowComments,
		UseNumber:     c.UseNumber,
		MaxFrameSize:  c.MaxFrameSize,
	}
}

// NewLogger returns a logger that writes to w with the level and format
// from c.
func (c *Config) NewLogger(w io.Writer) (*slog.Logger, error) {
	level, err := parseLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}
	hopts := &slog.HandlerOptions{Level: level}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, hopts)), nil
	}
	return slog.New(slog.NewTextHandler(w, hopts)), nil
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid log_level %q", s)
	}
	return level, nil
}
