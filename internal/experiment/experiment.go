package experiment

import (
	"context"
	"fmt"

	"github.com/san-kum/chaser/internal/config"
	"github.com/san-kum/chaser/internal/control"
	"github.com/san-kum/chaser/internal/kinematics"
	"github.com/san-kum/chaser/internal/pose"
	"github.com/san-kum/chaser/internal/sim"
	"github.com/san-kum/chaser/internal/storage"
)

// Experiment wires one offline pursuit run from a configuration.
type Experiment struct {
	cfg       *config.Config
	reg       *Registry
	store     *pose.Store
	motion    kinematics.Motion
	simulator *sim.Simulator
}

func New(cfg *config.Config, reg *Registry) *Experiment {
	if reg == nil {
		reg = NewRegistry()
	}
	return &Experiment{cfg: cfg, reg: reg}
}

// Setup validates the configuration and builds the target motion it names.
func (e *Experiment) Setup(metrics []sim.Metric) error {
	motion, err := e.reg.GetMotion(e.cfg.Sim.Target, MotionEnv{Bounds: e.Bounds(), Seed: e.cfg.Sim.Seed})
	if err != nil {
		return err
	}
	return e.SetupWithMotion(motion, metrics)
}

// SetupWithMotion is Setup with the target motion supplied by the caller.
func (e *Experiment) SetupWithMotion(motion kinematics.Motion, metrics []sim.Metric) error {
	if err := e.cfg.Validate(); err != nil {
		return err
	}
	integ, err := e.reg.GetIntegrator(e.cfg.Sim.Integrator)
	if err != nil {
		return err
	}

	e.motion = motion
	e.store = pose.NewStore(e.cfg.Initial.Agent, e.cfg.Initial.Target)
	world := sim.NewWorld(sim.WorldConfig{
		Agent:          e.cfg.Initial.Agent,
		Target:         motion,
		Integrator:     integ,
		Bounds:         e.Bounds(),
		NormalizeTheta: e.cfg.Sim.NormalizeTheta,
	})

	e.simulator = sim.New(world, e.store, control.NewPursuit(e.cfg.Gains()))
	for _, m := range metrics {
		e.simulator.AddMetric(m)
	}
	return nil
}

func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	if e.simulator == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	return e.simulator.Run(ctx, e.SimConfig())
}

func (e *Experiment) SimConfig() sim.Config {
	return sim.Config{
		Rate:          e.cfg.Rate,
		Duration:      e.cfg.Sim.Duration,
		ValidateState: true,
	}
}

func (e *Experiment) Bounds() kinematics.Bounds {
	if e.cfg.Sim.Arena <= 0 {
		return kinematics.Bounds{}
	}
	return kinematics.Bounds{MaxX: e.cfg.Sim.Arena, MaxY: e.cfg.Sim.Arena}
}

func (e *Experiment) Simulator() *sim.Simulator { return e.simulator }
func (e *Experiment) Store() *pose.Store         { return e.store }
func (e *Experiment) Motion() kinematics.Motion  { return e.motion }
func (e *Experiment) Config() *config.Config     { return e.cfg }

// Metadata describes a finished run for the run store.
func (e *Experiment) Metadata(kind, name string, res *sim.Result) storage.RunMetadata {
	g := e.cfg.Gains()
	meta := storage.RunMetadata{
		Kind:       kind,
		Name:       name,
		Seed:       e.cfg.Sim.Seed,
		Rate:       e.cfg.Rate,
		Duration:   e.cfg.Sim.Duration,
		Integrator: e.cfg.Sim.Integrator,
		Motion:     e.cfg.Sim.Target.Motion,
		Gains: storage.GainsMeta{
			SpeedGain:         g.Speed,
			AngularGain:       g.Angular,
			DistanceTolerance: g.Tolerance,
			WrapHeading:       g.WrapHeading,
		},
	}
	if res != nil {
		meta.Captured = res.Captured()
		meta.Metrics = res.Metrics
	}
	return meta
}
