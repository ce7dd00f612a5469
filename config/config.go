// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package config loads renderer defaults from TOML files.
//
// Example file:
//
//	workers = 4
//	cache_size = 64
//	pixel_format = "rgba8"
//	interpolation = "lanczos"
//	strict_source_size = false
//	log_level = "debug"
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/gogpu/imgtex"
)

// Config holds renderer defaults.
type Config struct {
	Workers          int    `koanf:"workers"`            // render workers, 0 = shared GOMAXPROCS pool
	CacheSize        int    `koanf:"cache_size"`         // frames kept for UseCache requests, at least 1
	PixelFormat      string `koanf:"pixel_format"`       // "rgba8", "bgra8", "rgba8-premul", "bgra8-premul"
	Interpolation    string `koanf:"interpolation"`      // "nearest", "bilinear", "bicubic", "lanczos"
	StrictSourceSize bool   `koanf:"strict_source_size"` // reject images whose size differs from the declared one
	LogLevel         string `koanf:"log_level"`          // "debug", "info", "warn", "error"
}

// Default returns the configuration used when no file sets a key.
func Default() *Config {
	return &Config{
		CacheSize:     imgtex.DefaultCacheSize,
		PixelFormat:   imgtex.FormatBGRAPremul.String(),
		Interpolation: imgtex.InterpBicubic.String(),
		LogLevel:      "info",
	}
}

// Load reads the given files in order, later files overriding earlier ones.
// Missing files are skipped. With no paths, DefaultPaths is used.
func Load(paths ...string) (*Config, error) {
	if len(paths) == 0 {
		paths = DefaultPaths()
	}

	k := koanf.New(".")
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, fmt.Errorf("config: load %s: %w", path, err)
		}
	}
	return unmarshal(k)
}

// LoadFile reads a single file, which must exist.
func LoadFile(path string) (*Config, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
		return nil, fmt.Errorf("config: load %s: %w", path, err)
	}
	return unmarshal(k)
}

func unmarshal(k *koanf.Koanf) (*Config, error) {
	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DefaultPaths returns the files Load reads by default, lowest priority
// first: ~/.config/imgtex/config.toml, then ./imgtex.toml.
func DefaultPaths() []string {
	var paths []string
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "imgtex", "config.toml"))
	}
	return append(paths, "imgtex.toml")
}

// Validate checks every key.
func (c *Config) Validate() error {
	var errs []error
	if c.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers must not be negative, got %d", c.Workers))
	}
	if c.CacheSize <= 0 {
		errs = append(errs, fmt.Errorf("cache_size must be positive, got %d", c.CacheSize))
	}
	if _, err := imgtex.ParsePixelFormat(c.PixelFormat); err != nil {
		errs = append(errs, err)
	}
	if _, err := imgtex.ParseInterpolation(c.Interpolation); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.Level(); err != nil {
		errs = append(errs, err)
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// Level returns the slog level named by LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("log_level: %w", err)
	}
	return level, nil
}

// Options returns the renderer options for the configured pixel format,
// interpolation, source size policy and frame cache. The config must be
// valid.
func (c *Config) Options() []imgtex.Option {
	format, _ := imgtex.ParsePixelFormat(c.PixelFormat)
	interp, _ := imgtex.ParseInterpolation(c.Interpolation)

	opts := []imgtex.Option{
		imgtex.WithPixelFormat(format),
		imgtex.WithInterpolation(interp),
		imgtex.WithStrictSourceSize(c.StrictSourceSize),
	}
	if c.CacheSize != imgtex.DefaultCacheSize {
		opts = append(opts, imgtex.WithFrameCache(imgtex.NewFrameCache(c.CacheSize)))
	}
	return opts
}

// WorkerPool returns a dedicated pool when Workers is set, or nil to use
// the shared one. The caller closes it after disposing its renderers.
func (c *Config) WorkerPool() *imgtex.WorkerPool {
	if c.Workers <= 0 {
		return nil
	}
	return imgtex.NewWorkerPool(c.Workers)
}
