package sim

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/san-kum/chaser/internal/control"
	"github.com/san-kum/chaser/internal/pose"
)

var ErrInvalidConfig = errors.New("sim: invalid configuration")

// PoseReader is the read side of the pose store.
type PoseReader interface {
	Snapshot() (agent, target pose.Pose)
}

// PoseWriter is the write side of the pose store.
type PoseWriter interface {
	Update(b pose.Body, p pose.Pose) error
}

// Sink accepts one velocity command per tick.
type Sink interface {
	Send(cmd control.Command) error
}

type SinkFunc func(cmd control.Command) error

func (f SinkFunc) Send(cmd control.Command) error { return f(cmd) }

// Tee sends every command to all of its sinks, even when one fails.
type Tee []Sink

func (t Tee) Send(cmd control.Command) error {
	var errs []error
	for _, s := range t {
		if err := s.Send(cmd); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Tick records one read-compute-emit cycle.
type Tick struct {
	Seq     uint64
	Elapsed time.Duration
	Agent   pose.Pose
	Target  pose.Pose
	control.Evaluation
	SendErr error
}

// Time is Elapsed in seconds.
func (t Tick) Time() float64 { return t.Elapsed.Seconds() }

type Observer interface {
	OnTick(t Tick)
}

type ObserverFunc func(t Tick)

func (f ObserverFunc) OnTick(t Tick) { f(t) }

type Metric interface {
	Name() string
	Observe(t Tick)
	Value() float64
	Reset()
}

// LoopConfig configures the real-time control loop.
type LoopConfig struct {
	Rate       float64 // ticks per second
	StopOnExit bool    // send a final stop command on shutdown
	MaxTicks   uint64  // 0 runs until the context ends
}

func DefaultLoopConfig() LoopConfig {
	return LoopConfig{Rate: 20}
}

func (c LoopConfig) Period() time.Duration {
	return time.Duration(float64(time.Second) / c.Rate)
}

func (c LoopConfig) validate() error {
	if c.Rate <= 0 || math.IsNaN(c.Rate) || math.IsInf(c.Rate, 0) {
		return fmt.Errorf("%w: rate must be positive, got %v", ErrInvalidConfig, c.Rate)
	}
	return nil
}

// Config configures an offline, virtual-time simulation.
type Config struct {
	Rate          float64
	Duration      float64
	StopOnCapture bool
	ValidateState bool
}

func DefaultConfig() Config {
	return Config{
		Rate:          20,
		Duration:      30,
		ValidateState: true,
	}
}

type Result struct {
	Ticks      []Tick
	Metrics    map[string]float64
	StepsTaken int
	Errors     []error
}

// Captured reports whether any tick was in the holding region.
func (r *Result) Captured() bool {
	for _, t := range r.Ticks {
		if t.Mode == control.Holding {
			return true
		}
	}
	return false
}

type SimError struct {
	Time    float64
	Step    int
	Message string
}

func (e SimError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %s", e.Step, e.Time, e.Message)
}
