package integrators

import (
	"github.com/san-kum/chaser/internal/control"
	"github.com/san-kum/chaser/internal/kinematics"
	"github.com/san-kum/chaser/internal/pose"
)

type RK4 struct{}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) Step(sys kinematics.System, p pose.Pose, u control.Command, dt float64) pose.Pose {
	k1 := sys.Derive(p, u)
	k2 := sys.Derive(offset(p, k1, dt*0.5), u)
	k3 := sys.Derive(offset(p, k2, dt*0.5), u)
	k4 := sys.Derive(offset(p, k3, dt), u)

	dt6 := dt / 6.0
	return pose.Pose{
		X:     p.X + dt6*(k1.X+2*k2.X+2*k3.X+k4.X),
		Y:     p.Y + dt6*(k1.Y+2*k2.Y+2*k3.Y+k4.Y),
		Theta: p.Theta + dt6*(k1.Theta+2*k2.Theta+2*k3.Theta+k4.Theta),
	}
}

func offset(p, d pose.Pose, h float64) pose.Pose {
	return pose.Pose{X: p.X + h*d.X, Y: p.Y + h*d.Y, Theta: p.Theta + h*d.Theta}
}
