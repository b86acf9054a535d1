package integrators

import (
	"github.com/san-kum/chaser/internal/control"
	"github.com/san-kum/chaser/internal/kinematics"
	"github.com/san-kum/chaser/internal/pose"
)

// Exact uses the closed-form step of systems that provide one and falls
// back to RK4 otherwise.
type Exact struct {
	fallback RK4
}

func NewExact() *Exact {
	return &Exact{}
}

func (e *Exact) Step(sys kinematics.System, p pose.Pose, u control.Command, dt float64) pose.Pose {
	if arc, ok := sys.(kinematics.ArcSystem); ok {
		return arc.Arc(p, u, dt)
	}
	return e.fallback.Step(sys, p, u, dt)
}
