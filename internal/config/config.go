package config

import (
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/chaser/internal/control"
	"github.com/san-kum/chaser/internal/pose"
)

var (
	ErrMissingParam = errors.New("config: missing required parameter")
	ErrInvalidParam = errors.New("config: invalid parameter")
)

const (
	DefaultRate        = 20.0
	DefaultAngularGain = 5.0
	DefaultTolerance   = 1.0
	DefaultPoseAddr    = ":9870"
	DefaultReadBuffer  = 2048
	DefaultDuration    = 30.0
	DefaultIntegrator  = "rk4"
	DefaultArena       = 11.0889
	DefaultDataDir     = ".chaser"
)

type Config struct {
	Rate       float64          `yaml:"rate"`
	Controller ControllerConfig `yaml:"controller"`
	Initial    InitialConfig    `yaml:"initial"`
	StopOnExit bool             `yaml:"stop_on_exit"`
	Transport  TransportConfig  `yaml:"transport"`
	Sim        SimConfig        `yaml:"sim"`
	Storage    StorageConfig    `yaml:"storage"`
}

// ControllerConfig holds the gains. SpeedGain has no default and must be
// set by the file, a preset or a flag.
type ControllerConfig struct {
	SpeedGain         *float64 `yaml:"speed_gain"`
	AngularGain       float64  `yaml:"angular_gain"`
	DistanceTolerance float64  `yaml:"distance_tolerance"`
	WrapHeading       bool     `yaml:"wrap_heading"`
}

// InitialConfig is what the store assumes before any observation.
type InitialConfig struct {
	Agent  pose.Pose `yaml:"agent"`
	Target pose.Pose `yaml:"target"`
}

type TransportConfig struct {
	PoseAddr    string `yaml:"pose_addr"`
	CommandAddr string `yaml:"command_addr"`
	ReadBuffer  int    `yaml:"read_buffer"`
}

type SimConfig struct {
	Duration       float64      `yaml:"duration"`
	Integrator     string       `yaml:"integrator"`
	NormalizeTheta bool         `yaml:"normalize_theta"`
	Seed           int64        `yaml:"seed"`
	Arena          float64      `yaml:"arena"`
	Target         MotionConfig `yaml:"target"`
}

// MotionConfig selects how the simulated target moves. Speed is angular for
// circle and linear for line and wander.
type MotionConfig struct {
	Motion  string    `yaml:"motion"`
	Center  pose.Pose `yaml:"center"`
	Radius  float64   `yaml:"radius"`
	Speed   float64   `yaml:"speed"`
	Heading float64   `yaml:"heading"`
	Turn    float64   `yaml:"turn"`
}

type StorageConfig struct {
	DataDir string `yaml:"data_dir"`
	TickDB  string `yaml:"tick_db"`
}

func Float(v float64) *float64 { return &v }

func DefaultConfig() *Config {
	return &Config{
		Rate: DefaultRate,
		Controller: ControllerConfig{
			AngularGain:       DefaultAngularGain,
			DistanceTolerance: DefaultTolerance,
		},
		Initial: InitialConfig{
			Agent:  pose.Pose{X: 4, Y: 4},
			Target: pose.Pose{X: 5.5, Y: 5.5},
		},
		Transport: TransportConfig{
			PoseAddr:   DefaultPoseAddr,
			ReadBuffer: DefaultReadBuffer,
		},
		Sim: SimConfig{
			Duration:       DefaultDuration,
			Integrator:     DefaultIntegrator,
			NormalizeTheta: true,
			Arena:          DefaultArena,
			Target: MotionConfig{
				Motion: "circle",
				Center: pose.Pose{X: 5.5, Y: 5.5},
				Radius: 2,
				Speed:  0.5,
			},
		},
		Storage: StorageConfig{
			DataDir: DefaultDataDir,
		},
	}
}

// Load reads a YAML file on top of DefaultConfig. It does not validate.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	if c.Controller.SpeedGain != nil {
		out.Controller.SpeedGain = Float(*c.Controller.SpeedGain)
	}
	return &out
}

// Validate reports the first startup error. These are fatal: the loop must
// not start on an invalid configuration.
func (c *Config) Validate() error {
	if !finite(c.Rate) || c.Rate <= 0 {
		return fmt.Errorf("%w: rate must be positive, got %v", ErrInvalidParam, c.Rate)
	}
	if c.Controller.SpeedGain == nil {
		return fmt.Errorf("%w: controller.speed_gain", ErrMissingParam)
	}
	if k := *c.Controller.SpeedGain; !finite(k) || k < 0 {
		return fmt.Errorf("%w: controller.speed_gain must be finite and non-negative, got %v", ErrInvalidParam, k)
	}
	if !finite(c.Controller.AngularGain) {
		return fmt.Errorf("%w: controller.angular_gain must be finite, got %v", ErrInvalidParam, c.Controller.AngularGain)
	}
	if tol := c.Controller.DistanceTolerance; !finite(tol) || tol < 0 {
		return fmt.Errorf("%w: controller.distance_tolerance must be finite and non-negative, got %v", ErrInvalidParam, tol)
	}
	for name, p := range map[string]pose.Pose{"initial.agent": c.Initial.Agent, "initial.target": c.Initial.Target} {
		if !p.IsValid() {
			return fmt.Errorf("%w: %s is not finite", ErrInvalidParam, name)
		}
	}
	if c.Transport.ReadBuffer <= 0 {
		return fmt.Errorf("%w: transport.read_buffer must be positive, got %d", ErrInvalidParam, c.Transport.ReadBuffer)
	}
	if !finite(c.Sim.Duration) || c.Sim.Duration <= 0 {
		return fmt.Errorf("%w: sim.duration must be positive, got %v", ErrInvalidParam, c.Sim.Duration)
	}
	if !finite(c.Sim.Arena) || c.Sim.Arena < 0 {
		return fmt.Errorf("%w: sim.arena must be non-negative, got %v", ErrInvalidParam, c.Sim.Arena)
	}
	return nil
}

// Gains converts the controller section. Call Validate first.
func (c *Config) Gains() control.Gains {
	g := control.Gains{
		Angular:     c.Controller.AngularGain,
		Tolerance:   c.Controller.DistanceTolerance,
		WrapHeading: c.Controller.WrapHeading,
	}
	if c.Controller.SpeedGain != nil {
		g.Speed = *c.Controller.SpeedGain
	}
	return g
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
