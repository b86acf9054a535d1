package automation

import (
	"context"
	"fmt"
	"io"
	"log"
	"math/rand"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/chaser/internal/config"
	"github.com/san-kum/chaser/internal/control"
	"github.com/san-kum/chaser/internal/experiment"
	"github.com/san-kum/chaser/internal/kinematics"
	"github.com/san-kum/chaser/internal/metrics"
	"github.com/san-kum/chaser/internal/pose"
	"github.com/san-kum/chaser/internal/sim"
)

// Scenario scripts where the target is at which time, on top of a preset.
type Scenario struct {
	Name        string                `yaml:"name"`
	Description string                `yaml:"description"`
	Preset      string                `yaml:"preset"`
	Rate        float64               `yaml:"rate"`
	Duration    float64               `yaml:"duration"`
	Integrator  string                `yaml:"integrator"`
	Gains       map[string]float64    `yaml:"gains"`
	Initial     *config.InitialConfig `yaml:"initial"`
	Events      []kinematics.Waypoint `yaml:"events"`
	Expect      Expectations          `yaml:"expect"`
}

// Expectations are checked against the finished run. Zero values are not
// checked.
type Expectations struct {
	Captured       *bool   `yaml:"captured"`
	MaxCaptureTime float64 `yaml:"max_capture_time"`
	MinHoldRatio   float64 `yaml:"min_hold_ratio"`
}

type Check struct {
	Name   string
	Pass   bool
	Detail string
}

type ScenarioResult struct {
	Scenario *Scenario
	Config   *config.Config
	Result   *sim.Result
	Checks   []Check
}

// Passed reports whether every expectation held.
func (r *ScenarioResult) Passed() bool {
	for _, c := range r.Checks {
		if !c.Pass {
			return false
		}
	}
	return true
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}

	return &scenario, nil
}

// Config resolves the scenario into a full configuration.
func (s *Scenario) Config() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if s.Preset != "" {
		cfg = config.GetPreset(s.Preset)
		if cfg == nil {
			return nil, fmt.Errorf("%w: unknown preset %q", config.ErrInvalidParam, s.Preset)
		}
	}
	if s.Rate > 0 {
		cfg.Rate = s.Rate
	}
	if s.Duration > 0 {
		cfg.Sim.Duration = s.Duration
	}
	if s.Integrator != "" {
		cfg.Sim.Integrator = s.Integrator
	}
	if s.Initial != nil {
		cfg.Initial = *s.Initial
	}
	for name, v := range s.Gains {
		if err := applyGain(cfg, name, v); err != nil {
			return nil, err
		}
	}
	cfg.Sim.Target.Motion = "scripted"
	return cfg, nil
}

func applyGain(cfg *config.Config, name string, v float64) error {
	switch name {
	case control.ParamSpeedGain:
		cfg.Controller.SpeedGain = config.Float(v)
	case control.ParamAngularGain:
		cfg.Controller.AngularGain = v
	case control.ParamTolerance:
		cfg.Controller.DistanceTolerance = v
	default:
		return fmt.Errorf("%w: %s", control.ErrUnknownParam, name)
	}
	return nil
}

// Runner executes scenarios and sweeps offline.
type Runner struct {
	reg    *experiment.Registry
	logger *log.Logger
}

func NewRunner(reg *experiment.Registry, logger *log.Logger) *Runner {
	if reg == nil {
		reg = experiment.NewRegistry()
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Runner{reg: reg, logger: logger}
}

// RunScenario plays the scenario events as the target motion. Before the
// first event the target stays at its initial pose.
func (r *Runner) RunScenario(ctx context.Context, sc *Scenario) (*ScenarioResult, error) {
	cfg, err := sc.Config()
	if err != nil {
		return nil, err
	}

	motion := kinematics.NewPiecewise(cfg.Initial.Target, sc.Events)
	exp := experiment.New(cfg, r.reg)
	if err := exp.SetupWithMotion(motion, metrics.Standard()); err != nil {
		return nil, fmt.Errorf("scenario %s setup: %w", sc.Name, err)
	}

	r.logger.Printf("scenario %s: %d events over %.1fs", sc.Name, len(sc.Events), cfg.Sim.Duration)
	res, err := exp.Run(ctx)
	if err != nil {
		return nil, fmt.Errorf("scenario %s run: %w", sc.Name, err)
	}

	out := &ScenarioResult{Scenario: sc, Config: cfg, Result: res}
	out.Checks = sc.Expect.check(res)
	for _, c := range out.Checks {
		r.logger.Printf("scenario %s: %s pass=%v %s", sc.Name, c.Name, c.Pass, c.Detail)
	}
	return out, nil
}

func (e Expectations) check(res *sim.Result) []Check {
	var checks []Check
	captureTime := res.Metrics["capture_time"]

	if e.Captured != nil {
		got := res.Captured()
		checks = append(checks, Check{
			Name:   "captured",
			Pass:   got == *e.Captured,
			Detail: fmt.Sprintf("want %v, got %v", *e.Captured, got),
		})
	}
	if e.MaxCaptureTime > 0 {
		checks = append(checks, Check{
			Name:   "max_capture_time",
			Pass:   captureTime != metrics.NotCaptured && captureTime <= e.MaxCaptureTime,
			Detail: fmt.Sprintf("want <= %.2fs, got %.2fs", e.MaxCaptureTime, captureTime),
		})
	}
	if e.MinHoldRatio > 0 {
		ratio := res.Metrics["hold_ratio"]
		checks = append(checks, Check{
			Name:   "min_hold_ratio",
			Pass:   ratio >= e.MinHoldRatio,
			Detail: fmt.Sprintf("want >= %.2f, got %.2f", e.MinHoldRatio, ratio),
		})
	}
	return checks
}

// ParameterSweep varies one controller parameter over an even grid.
type ParameterSweep struct {
	Base      *config.Config
	ParamName string
	ParamMin  float64
	ParamMax  float64
	NumSteps  int
}

type SweepResult struct {
	ParamValue float64
	Metrics    map[string]float64
	Captured   bool
}

func (r *Runner) RunSweep(ctx context.Context, sweep *ParameterSweep) ([]SweepResult, error) {
	if sweep.NumSteps < 2 {
		return nil, fmt.Errorf("%w: sweep needs at least 2 steps", config.ErrInvalidParam)
	}

	results := make([]SweepResult, 0, sweep.NumSteps)
	paramStep := (sweep.ParamMax - sweep.ParamMin) / float64(sweep.NumSteps-1)

	for i := 0; i < sweep.NumSteps; i++ {
		paramVal := sweep.ParamMin + float64(i)*paramStep

		cfg := sweep.Base.Clone()
		if err := applyGain(cfg, sweep.ParamName, paramVal); err != nil {
			return nil, err
		}

		exp := experiment.New(cfg, r.reg)
		if err := exp.Setup(metrics.Standard()); err != nil {
			return nil, err
		}

		result, err := exp.Run(ctx)
		if err != nil {
			return nil, err
		}

		results = append(results, SweepResult{
			ParamValue: paramVal,
			Metrics:    result.Metrics,
			Captured:   result.Captured(),
		})

		r.logger.Printf("sweep %d/%d: %s=%.4f", i+1, sweep.NumSteps, sweep.ParamName, paramVal)
	}

	return results, nil
}

// MonteCarloConfig perturbs the agent's starting pose between trials.
type MonteCarloConfig struct {
	Base         *config.Config
	Perturbation float64
	NumTrials    int
	Seed         int64
}

type MonteCarloResult struct {
	TrialID     int
	Start       pose.Pose
	Captured    bool
	CaptureTime float64
}

func (r *Runner) RunMonteCarlo(ctx context.Context, mc *MonteCarloConfig) ([]MonteCarloResult, error) {
	results := make([]MonteCarloResult, 0, mc.NumTrials)

	rng := rand.New(rand.NewSource(mc.Seed))
	if mc.Seed == 0 {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	for trial := 0; trial < mc.NumTrials; trial++ {
		cfg := mc.Base.Clone()
		start := cfg.Initial.Agent
		start.X += (rng.Float64() - 0.5) * 2 * mc.Perturbation
		start.Y += (rng.Float64() - 0.5) * 2 * mc.Perturbation
		start.Theta += (rng.Float64() - 0.5) * 2 * mc.Perturbation
		cfg.Initial.Agent = start

		exp := experiment.New(cfg, r.reg)
		if err := exp.Setup(metrics.Standard()); err != nil {
			return nil, err
		}

		result, err := exp.Run(ctx)
		if err != nil {
			return nil, err
		}

		results = append(results, MonteCarloResult{
			TrialID:     trial,
			Start:       start,
			Captured:    result.Captured(),
			CaptureTime: result.Metrics["capture_time"],
		})

		if (trial+1)%10 == 0 {
			r.logger.Printf("monte carlo: %d/%d trials complete", trial+1, mc.NumTrials)
		}
	}

	return results, nil
}

// MonteCarloStats counts captured and escaped trials.
func MonteCarloStats(results []MonteCarloResult) (captured int, escaped int) {
	for _, r := range results {
		if r.Captured {
			captured++
		} else {
			escaped++
		}
	}
	return
}
