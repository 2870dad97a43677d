package config

import (
	"errors"
	"fmt"
	"sort"
)

var ErrUnknownPreset = errors.New("config: unknown preset")

// Presets are built from the defaults so every profile validates.
var Presets = map[string]func(*Config){
	"drift": func(c *Config) {},
	"fullbleed": func(c *Config) {
		c.Boundary.MarginX = 0
		c.Boundary.MarginY = 0
	},
	"brisk": func(c *Config) {
		c.Field.Governor = GovernorCeiling
		c.Field.Current = 0.0004
		c.Bodies.SpawnSpeed = 4
	},
	"still": func(c *Config) {
		c.Field.Governor = GovernorNone
		c.Field.Current = 0
		c.Bodies.SpawnSpeed = 0
	},
}

func GetPreset(name string) (*Config, error) {
	apply, ok := Presets[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPreset, name)
	}
	cfg := DefaultConfig()
	cfg.Profile = name
	apply(cfg)
	return cfg, nil
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
