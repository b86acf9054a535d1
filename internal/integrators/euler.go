package integrators

import (
	"github.com/san-kum/chaser/internal/control"
	"github.com/san-kum/chaser/internal/kinematics"
	"github.com/san-kum/chaser/internal/pose"
)

// Integrator advances a system over one step with the input held constant.
type Integrator interface {
	Step(sys kinematics.System, p pose.Pose, u control.Command, dt float64) pose.Pose
}

type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Step(sys kinematics.System, p pose.Pose, u control.Command, dt float64) pose.Pose {
	d := sys.Derive(p, u)
	return pose.Pose{
		X:     p.X + dt*d.X,
		Y:     p.Y + dt*d.Y,
		Theta: p.Theta + dt*d.Theta,
	}
}
