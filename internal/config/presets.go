package config

import (
	"sort"

	"github.com/san-kum/swervesim/internal/curve"
	"github.com/san-kum/swervesim/internal/swerve"
)

// Presets are complete configurations keyed by name. Every preset uses the
// 11.5 in module offsets of the real robots.
var Presets = map[string]func() *Config{
	"competition": DefaultConfig,
	"practice": func() *Config {
		cfg := DefaultConfig()
		cfg.Sim.Integrator = "euler"
		cfg.Logging.Level = "debug"
		return cfg
	},
	"kinematic": func() *Config {
		cfg := DefaultConfig()
		cfg.Sim.Strategy = swerve.StrategyKinematic
		return cfg
	},
	"gentle": func() *Config {
		cfg := DefaultConfig()
		cfg.Operator.Translation = curve.PiecewiseConfig{XStart: 0.05, XMiddle: 0.7, YStart: 0.05, YMiddle: 0.25, YMax: 0.5}
		cfg.Operator.Rotation = curve.PiecewiseConfig{XStart: 0.05, XMiddle: 0.7, YStart: 0.05, YMiddle: 0.3, YMax: 0.6}
		cfg.Robot.MaxAngularRate = DefaultMaxAngularRate / 2
		return cfg
	},
}

// GetPreset returns a fresh copy of the named preset, or nil.
func GetPreset(name string) *Config {
	build, ok := Presets[name]
	if !ok {
		return nil
	}
	return build()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
