package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/chaser/internal/pose"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, DefaultRate, cfg.Rate)
	assert.Nil(t, cfg.Controller.SpeedGain, "speed gain has no default")
	assert.Equal(t, pose.Pose{X: 4, Y: 4}, cfg.Initial.Agent)
	assert.Equal(t, pose.Pose{X: 5.5, Y: 5.5}, cfg.Initial.Target)
	assert.False(t, cfg.StopOnExit)
	assert.False(t, cfg.Controller.WrapHeading)
}

func TestValidate_MissingSpeedGain(t *testing.T) {
	err := DefaultConfig().Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingParam)
	assert.Contains(t, err.Error(), "speed_gain")
}

func TestValidate_Invalid(t *testing.T) {
	tests := []struct {
		name string
		edit func(c *Config)
	}{
		{"zero rate", func(c *Config) { c.Rate = 0 }},
		{"nan rate", func(c *Config) { c.Rate = math.NaN() }},
		{"negative speed gain", func(c *Config) { c.Controller.SpeedGain = Float(-1) }},
		{"inf angular gain", func(c *Config) { c.Controller.AngularGain = math.Inf(1) }},
		{"negative tolerance", func(c *Config) { c.Controller.DistanceTolerance = -0.1 }},
		{"nan initial pose", func(c *Config) { c.Initial.Target.X = math.NaN() }},
		{"zero read buffer", func(c *Config) { c.Transport.ReadBuffer = 0 }},
		{"zero duration", func(c *Config) { c.Sim.Duration = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Controller.SpeedGain = Float(1)
			tt.edit(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidParam)
		})
	}
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chaser.yaml")
	data := []byte(`
rate: 10
controller:
  speed_gain: 1.5
initial:
  target: {x: 7, y: 2, theta: 0.5}
`)
	require.NoError(t, os.WriteFile(path, data, 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 10.0, cfg.Rate)
	require.NotNil(t, cfg.Controller.SpeedGain)
	assert.Equal(t, 1.5, *cfg.Controller.SpeedGain)
	assert.Equal(t, DefaultAngularGain, cfg.Controller.AngularGain)
	assert.Equal(t, pose.Pose{X: 7, Y: 2, Theta: 0.5}, cfg.Initial.Target)
	assert.Equal(t, pose.Pose{X: 4, Y: 4}, cfg.Initial.Agent)
	assert.Equal(t, DefaultPoseAddr, cfg.Transport.PoseAddr)
}

func TestLoadRejectsNonNumeric(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("controller:\n  speed_gain: fast\n"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")
	cfg := GetPreset("aggressive")
	require.NotNil(t, cfg)
	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestGains(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Controller.SpeedGain = Float(2)
	cfg.Controller.WrapHeading = true

	g := cfg.Gains()
	assert.Equal(t, 2.0, g.Speed)
	assert.Equal(t, DefaultAngularGain, g.Angular)
	assert.Equal(t, DefaultTolerance, g.Tolerance)
	assert.True(t, g.WrapHeading)
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("turtlesim")
	require.NotNil(t, cfg)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 1.0, *cfg.Controller.SpeedGain)
	assert.Equal(t, "static", cfg.Sim.Target.Motion)

	// callers get a copy
	*cfg.Controller.SpeedGain = 99
	assert.Equal(t, 1.0, *GetPreset("turtlesim").Controller.SpeedGain)
}

func TestGetPreset_NotFound(t *testing.T) {
	assert.Nil(t, GetPreset("nonexistent"))
}

func TestListPresets(t *testing.T) {
	names := ListPresets()
	assert.Equal(t, []string{"aggressive", "evasive", "gentle", "turtlesim"}, names)
	for _, name := range names {
		assert.NoError(t, GetPreset(name).Validate(), name)
	}
}
