// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package config holds the process-wide, read-only tunables named in
// spec §6 and §9 ("Global state"): the two autonext debounce durations and
// the PreserveUnsyncedPlayingSegmentContents deployment flag. They are kept
// in a single struct, loaded once per process, the way internal/config
// loads xg2g's FileConfig from YAML.
package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the tunable-constants module called for in spec §9.
type Config struct {
	// AutonextTakeDebounce is the minimum time-to-autonext below which a
	// manual take is rejected with TakeCloseToAutonext (§4.H.2).
	AutonextTakeDebounce time.Duration `yaml:"autonextTakeDebounce"`
	// AutonextUpdateDebounce is carried, loaded and validated as a tunable
	// (§6); no code in this module reads it.
	AutonextUpdateDebounce time.Duration `yaml:"autonextUpdateDebounce"`
	// PreserveUnsyncedPlayingSegmentContents governs §4.H.5 orphan cleanup:
	// when true, a deleted part-instance whose segment is itself orphaned is
	// left untouched rather than reset. The current and next part-instances
	// are never reset by that cleanup, whatever this flag says.
	PreserveUnsyncedPlayingSegmentContents bool `yaml:"preserveUnsyncedPlayingSegmentContents"`
}

// Default returns the literal values spec §6 specifies.
func Default() Config {
	return Config{
		AutonextTakeDebounce:                   1000 * time.Millisecond,
		AutonextUpdateDebounce:                 5000 * time.Millisecond,
		PreserveUnsyncedPlayingSegmentContents: true,
	}
}

// Validate rejects configurations that would make the timing gates of
// §4.H.2 meaningless or inverted.
func (c Config) Validate() error {
	if c.AutonextTakeDebounce < 0 {
		return fmt.Errorf("config: autonextTakeDebounce must be >= 0, got %s", c.AutonextTakeDebounce)
	}
	if c.AutonextUpdateDebounce < 0 {
		return fmt.Errorf("config: autonextUpdateDebounce must be >= 0, got %s", c.AutonextUpdateDebounce)
	}
	return nil
}

// Load parses a YAML tunables file, starting from Default() so any field
// the document omits keeps its spec-literal value.
func Load(data []byte) (Config, error) {
	cfg := Default()
	if len(data) == 0 {
		return cfg, nil
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse tunables: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
