package sim

import (
	"sync"

	"github.com/san-kum/chaser/internal/control"
	"github.com/san-kum/chaser/internal/integrators"
	"github.com/san-kum/chaser/internal/kinematics"
	"github.com/san-kum/chaser/internal/pose"
)

type WorldConfig struct {
	Agent          pose.Pose
	Target         kinematics.Motion
	Integrator     integrators.Integrator
	Bounds         kinematics.Bounds
	NormalizeTheta bool
}

// World stands in for the turtlesim node: it drives a unicycle agent with
// the last command it was sent and moves the target along its motion.
// World is a Sink.
type World struct {
	mu        sync.Mutex
	sys       kinematics.System
	integ     integrators.Integrator
	agent     pose.Pose
	target    kinematics.Motion
	bounds    kinematics.Bounds
	normalize bool
	cmd       control.Command
	t         float64
}

func NewWorld(cfg WorldConfig) *World {
	integ := cfg.Integrator
	if integ == nil {
		integ = integrators.NewExact()
	}
	target := cfg.Target
	if target == nil {
		target = kinematics.Static{Pose: cfg.Agent}
	}
	return &World{
		sys:       kinematics.NewUnicycle(),
		integ:     integ,
		agent:     cfg.Agent,
		target:    target,
		bounds:    cfg.Bounds,
		normalize: cfg.NormalizeTheta,
	}
}

func (w *World) Send(cmd control.Command) error {
	w.mu.Lock()
	w.cmd = cmd
	w.mu.Unlock()
	return nil
}

// Advance integrates the agent over dt holding the last command.
func (w *World) Advance(dt float64) {
	w.mu.Lock()
	defer w.mu.Unlock()

	next := w.integ.Step(w.sys, w.agent, w.cmd, dt)
	next = w.bounds.Clamp(next)
	if w.normalize {
		next.Theta = kinematics.NormalizeAngle(next.Theta)
	}
	w.agent = next
	w.t += dt
}

// Publish writes the current agent and target poses to dst.
func (w *World) Publish(dst PoseWriter) error {
	agent, target := w.Poses()
	if err := dst.Update(pose.Agent, agent); err != nil {
		return err
	}
	return dst.Update(pose.Target, target)
}

func (w *World) Poses() (agent, target pose.Pose) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.agent, w.target.At(w.t)
}

func (w *World) Agent() pose.Pose {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.agent
}

func (w *World) Time() float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.t
}

func (w *World) Command() control.Command {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.cmd
}
