package sim

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/san-kum/chaser/internal/control"
)

// PoseStore is what the simulator needs from a pose store: the loop reads
// snapshots from it and the world publishes into it.
type PoseStore interface {
	PoseReader
	PoseWriter
}

// Simulator closes the loop offline in virtual time. Each step runs one
// control tick against the store, then advances the world by one period and
// publishes the new poses. The first tick therefore sees whatever the store
// was seeded with.
type Simulator struct {
	world *World
	store PoseStore
	loop  *Loop
}

func New(world *World, store PoseStore, law *control.Pursuit) *Simulator {
	return &Simulator{
		world: world,
		store: store,
		loop: &Loop{
			reader:    store,
			law:       law,
			sink:      world,
			cfg:       DefaultLoopConfig(),
			metrics:   make([]Metric, 0),
			observers: make([]Observer, 0),
		},
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.loop.AddMetric(m) }
func (s *Simulator) AddObserver(o Observer) { s.loop.AddObserver(o) }
func (s *Simulator) World() *World          { return s.world }
func (s *Simulator) Law() *control.Pursuit  { return s.loop.Law() }

// Step runs one tick and advances the world by dt.
func (s *Simulator) Step(dt float64) (Tick, error) {
	elapsed := time.Duration(s.world.Time() * float64(time.Second))
	tick := s.loop.Step(elapsed)
	s.world.Advance(dt)
	return tick, s.world.Publish(s.store)
}

func (s *Simulator) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := s.validateConfig(cfg); err != nil {
		return nil, err
	}

	steps := int(math.Round(cfg.Duration * cfg.Rate))
	dt := 1 / cfg.Rate
	result := &Result{
		Ticks:   make([]Tick, 0, steps),
		Metrics: make(map[string]float64),
		Errors:  make([]error, 0),
	}

	for _, m := range s.loop.metrics {
		m.Reset()
	}

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		tick, err := s.Step(dt)
		result.Ticks = append(result.Ticks, tick)
		result.StepsTaken++
		if err != nil {
			result.Errors = append(result.Errors, err)
		}

		if cfg.ValidateState && !s.world.Agent().IsValid() {
			result.Errors = append(result.Errors, SimError{Time: tick.Time(), Step: i, Message: "invalid agent pose (NaN/Inf)"})
			break
		}
		if cfg.StopOnCapture && tick.Mode == control.Holding {
			break
		}
	}

	for _, m := range s.loop.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	return result, nil
}

// RunWithCallback steps until the duration elapses or callback returns false.
func (s *Simulator) RunWithCallback(ctx context.Context, cfg Config, callback func(Tick) bool) error {
	if err := s.validateConfig(cfg); err != nil {
		return err
	}

	dt := 1 / cfg.Rate
	end := s.world.Time() + cfg.Duration
	for s.world.Time() < end {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		tick, err := s.Step(dt)
		if err != nil {
			return err
		}
		if !callback(tick) {
			return nil
		}
		if cfg.ValidateState && !s.world.Agent().IsValid() {
			return fmt.Errorf("invalid agent pose at t=%.4f", s.world.Time())
		}
	}

	return nil
}

func (s *Simulator) validateConfig(cfg Config) error {
	if cfg.Rate <= 0 {
		return fmt.Errorf("%w: rate must be positive, got %f", ErrInvalidConfig, cfg.Rate)
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("%w: duration must be positive, got %f", ErrInvalidConfig, cfg.Duration)
	}
	return nil
}
