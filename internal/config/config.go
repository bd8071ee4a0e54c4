// Package config loads partsim settings from a TOML file.
//
// Example:
//
//	capacity_mib = 32
//	reserved_mib = 2.0
//	overhead_mib = 0.2
//	state_path   = "/var/tmp/partsim.db"
//	session      = "lab"
//
//	[log]
//	enabled = true
//	level   = "debug"
//
//	[[program]]
//	name         = "Postgres"
//	segments_mib = [1.5, 0.5]
//
// Keys that are absent keep their defaults. Any [[program]] table replaces
// the whole default catalog.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml"

	"github.com/joshuapare/partsim/internal/logger"
	"github.com/joshuapare/partsim/internal/store"
	"github.com/joshuapare/partsim/mem/ledger"
	"github.com/joshuapare/partsim/mem/place"
	"github.com/joshuapare/partsim/sim"
)

// ErrInvalidConfig is returned for values that cannot configure a session.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config is the effective configuration.
type Config struct {
	CapacityMiB float64         `toml:"capacity_mib"`
	ReservedMiB float64         `toml:"reserved_mib"`
	OverheadMiB float64         `toml:"overhead_mib"`
	StatePath   string          `toml:"state_path"`
	Session     string          `toml:"session"`
	Log         LogConfig       `toml:"log"`
	Programs    []ProgramConfig `toml:"program,omitempty"`
}

// LogConfig mirrors logger.Options.
type LogConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
	Level   string `toml:"level"`
}

// ProgramConfig is one catalog entry.
type ProgramConfig struct {
	Name        string    `toml:"name"`
	SegmentsMiB []float64 `toml:"segments_mib"`
}

// Default returns the built-in configuration. StatePath is left empty when
// the home directory cannot be determined.
func Default() Config {
	return Config{
		CapacityMiB: sim.DefaultCapacity.MiBs(),
		ReservedMiB: sim.DefaultReserved.MiBs(),
		OverheadMiB: place.DefaultOverhead.MiBs(),
		StatePath:   defaultStatePath(),
		Session:     store.DefaultSession,
		Log:         LogConfig{Level: "info"},
	}
}

func defaultStatePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".partsim", "state.db")
}

// Load reads path over the defaults. A missing file is not an error and
// yields Default().
func Load(path string) (Config, error) {
	cfg := Default()

	tree, err := toml.LoadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("failed to load TOML: %s: %w", path, err)
	}

	if err := cfg.apply(tree); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse reads a configuration from TOML text over the defaults.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	tree, err := toml.LoadBytes(data)
	if err != nil {
		return Config{}, fmt.Errorf("failed to parse TOML: %w", err)
	}
	if err := cfg.apply(tree); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// apply copies the keys present in tree. Numbers may be written as
// integers or floats.
func (c *Config) apply(tree *toml.Tree) error {
	for key, dst := range map[string]*float64{
		"capacity_mib": &c.CapacityMiB,
		"reserved_mib": &c.ReservedMiB,
		"overhead_mib": &c.OverheadMiB,
	} {
		if !tree.Has(key) {
			continue
		}
		v, err := number(tree.Get(key))
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalidConfig, key, err)
		}
		*dst = v
	}

	for key, dst := range map[string]*string{
		"state_path": &c.StatePath,
		"session":    &c.Session,
		"log.dir":    &c.Log.Dir,
		"log.level":  &c.Log.Level,
	} {
		if !tree.Has(key) {
			continue
		}
		s, ok := tree.Get(key).(string)
		if !ok {
			return fmt.Errorf("%w: %s: want a string", ErrInvalidConfig, key)
		}
		*dst = s
	}

	if tree.Has("log.enabled") {
		b, ok := tree.Get("log.enabled").(bool)
		if !ok {
			return fmt.Errorf("%w: log.enabled: want a boolean", ErrInvalidConfig)
		}
		c.Log.Enabled = b
	}

	if !tree.Has("program") {
		return nil
	}
	tables, ok := tree.Get("program").([]*toml.Tree)
	if !ok {
		return fmt.Errorf("%w: program: want an array of tables", ErrInvalidConfig)
	}
	c.Programs = c.Programs[:0]
	for i, t := range tables {
		p := ProgramConfig{}
		p.Name, _ = t.Get("name").(string)
		raw, _ := t.Get("segments_mib").([]interface{})
		for _, r := range raw {
			v, err := number(r)
			if err != nil {
				return fmt.Errorf("%w: program[%d].segments_mib: %w", ErrInvalidConfig, i, err)
			}
			p.SegmentsMiB = append(p.SegmentsMiB, v)
		}
		c.Programs = append(c.Programs, p)
	}
	return nil
}

func number(v interface{}) (float64, error) {
	switch n := v.(type) {
	case int64:
		return float64(n), nil
	case float64:
		return n, nil
	default:
		return 0, fmt.Errorf("want a number, got %T", v)
	}
}

// Validate checks that the sizes describe a usable address space.
func (c Config) Validate() error {
	for _, size := range []struct {
		key string
		v   float64
	}{
		{"capacity_mib", c.CapacityMiB},
		{"reserved_mib", c.ReservedMiB},
		{"overhead_mib", c.OverheadMiB},
	} {
		if _, err := ledger.ParseMiB(size.v); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalidConfig, size.key, err)
		}
	}
	if c.CapacityMiB <= 0 {
		return fmt.Errorf("%w: capacity_mib must be positive", ErrInvalidConfig)
	}
	if c.ReservedMiB <= 0 || c.ReservedMiB >= c.CapacityMiB {
		return fmt.Errorf("%w: reserved_mib must be positive and below capacity_mib", ErrInvalidConfig)
	}
	if c.OverheadMiB < 0 {
		return fmt.Errorf("%w: overhead_mib must not be negative", ErrInvalidConfig)
	}
	if strings.TrimSpace(c.Session) == "" {
		return fmt.Errorf("%w: session must not be empty", ErrInvalidConfig)
	}
	for i, p := range c.Programs {
		if strings.TrimSpace(p.Name) == "" || len(p.SegmentsMiB) == 0 {
			return fmt.Errorf("%w: program[%d] needs a name and segments", ErrInvalidConfig, i)
		}
		for _, s := range p.SegmentsMiB {
			if _, err := ledger.ParseMiB(s); err != nil {
				return fmt.Errorf("%w: program %q: %w", ErrInvalidConfig, p.Name, err)
			}
			if s <= 0 {
				return fmt.Errorf("%w: program %q has a non-positive segment", ErrInvalidConfig, p.Name)
			}
		}
	}
	return nil
}

// SimOptions converts the sizes and catalog to session options.
func (c Config) SimOptions() sim.Options {
	opts := sim.Options{
		Capacity: ledger.FromMiB(c.CapacityMiB),
		Reserved: ledger.FromMiB(c.ReservedMiB),
		Overhead: sim.OverheadOf(ledger.FromMiB(c.OverheadMiB)),
	}
	for _, p := range c.Programs {
		prog := sim.Program{Name: p.Name}
		for _, s := range p.SegmentsMiB {
			prog.Segments = append(prog.Segments, ledger.FromMiB(s))
		}
		opts.Catalog = append(opts.Catalog, prog)
	}
	return opts
}

// LoggerOptions converts the [log] table to logger options.
func (c Config) LoggerOptions() logger.Options {
	return logger.Options{
		Enabled: c.Log.Enabled,
		LogDir:  c.Log.Dir,
		Level:   logger.ParseLevel(c.Log.Level),
	}
}

// Encode renders c as TOML.
func (c Config) Encode() ([]byte, error) {
	return toml.Marshal(c)
}
