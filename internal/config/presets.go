package config

import (
	"sort"

	"github.com/san-kum/chaser/internal/pose"
)

func preset(edit func(c *Config)) *Config {
	c := DefaultConfig()
	edit(c)
	return c
}

var Presets = map[string]*Config{
	"turtlesim": preset(func(c *Config) {
		c.Controller.SpeedGain = Float(1)
		c.Sim.Target = MotionConfig{Motion: "static", Center: pose.Pose{X: 5.5, Y: 5.5}}
		c.Sim.Duration = 10
	}),
	"gentle": preset(func(c *Config) {
		c.Controller.SpeedGain = Float(0.5)
		c.Controller.AngularGain = 2
		c.Sim.Target = MotionConfig{Motion: "circle", Center: pose.Pose{X: 5.5, Y: 5.5}, Radius: 2, Speed: 0.3}
	}),
	"aggressive": preset(func(c *Config) {
		c.Controller.SpeedGain = Float(2.5)
		c.Controller.AngularGain = 8
		c.Controller.DistanceTolerance = 0.5
		c.Sim.Target = MotionConfig{Motion: "circle", Center: pose.Pose{X: 5.5, Y: 5.5}, Radius: 3, Speed: 0.8}
	}),
	"evasive": preset(func(c *Config) {
		c.Controller.SpeedGain = Float(1)
		c.Sim.Duration = 60
		c.Sim.Seed = 7
		c.Sim.Target = MotionConfig{Motion: "wander", Center: pose.Pose{X: 5.5, Y: 5.5}, Speed: 1.5, Turn: 3}
	}),
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
