// ABOUTME: TOML configuration for the heaproot command
// ABOUTME: Defaults, file loading and validation; flags override file values

package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/prateek/heaproot/heapdump"
)

type config struct {
	Log   logConfig   `toml:"log"`
	Paths pathsConfig `toml:"paths"`
	Dump  dumpConfig  `toml:"dump"`
}

type logConfig struct {
	Level string `toml:"level"`
}

type pathsConfig struct {
	Max int `toml:"max"`
}

type dumpConfig struct {
	Format string `toml:"format"`
}

func defaultConfig() *config {
	return &config{
		Log:   logConfig{Level: "info"},
		Paths: pathsConfig{Max: 10},
		Dump:  dumpConfig{Format: "json"},
	}
}

// loadConfig reads path over the defaults. An empty path returns the defaults.
func loadConfig(path string) (*config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c *config) validate() error {
	if _, err := c.level(); err != nil {
		return err
	}
	if c.Paths.Max <= 0 {
		return fmt.Errorf("paths.max must be positive, got %d", c.Paths.Max)
	}
	if _, ok := heapdump.Lookup(c.Dump.Format); !ok {
		return fmt.Errorf("dump.format %q is not one of %s", c.Dump.Format, strings.Join(heapdump.Formats(), ", "))
	}
	return nil
}

func (c *config) level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}
