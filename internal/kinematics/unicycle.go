package kinematics

import (
	"math"

	"github.com/san-kum/chaser/internal/control"
	"github.com/san-kum/chaser/internal/pose"
)

// System is a first-order model driven by a velocity command. Derive
// returns the pose rates (dx/dt, dy/dt, dtheta/dt) packed in a Pose.
type System interface {
	Derive(p pose.Pose, u control.Command) pose.Pose
}

// ArcSystem can be advanced in closed form over a step with constant input.
type ArcSystem interface {
	System
	Arc(p pose.Pose, u control.Command, dt float64) pose.Pose
}

// Unicycle is the differential-drive model of a turtlesim turtle.
type Unicycle struct{}

func NewUnicycle() *Unicycle {
	return &Unicycle{}
}

func (u *Unicycle) Derive(p pose.Pose, cmd control.Command) pose.Pose {
	sin, cos := math.Sincos(p.Theta)
	return pose.Pose{
		X:     cmd.Linear * cos,
		Y:     cmd.Linear * sin,
		Theta: cmd.Angular,
	}
}

// Arc integrates exactly: a straight segment when the turn rate is
// negligible, otherwise a circular arc of radius v/w.
func (u *Unicycle) Arc(p pose.Pose, cmd control.Command, dt float64) pose.Pose {
	v, w := cmd.Linear, cmd.Angular
	if math.Abs(w) < 1e-9 {
		sin, cos := math.Sincos(p.Theta)
		return pose.Pose{X: p.X + v*dt*cos, Y: p.Y + v*dt*sin, Theta: p.Theta}
	}
	theta := p.Theta + w*dt
	r := v / w
	return pose.Pose{
		X:     p.X + r*(math.Sin(theta)-math.Sin(p.Theta)),
		Y:     p.Y - r*(math.Cos(theta)-math.Cos(p.Theta)),
		Theta: theta,
	}
}

// NormalizeAngle maps rad into (-pi, pi], the range turtlesim reports.
func NormalizeAngle(rad float64) float64 {
	return control.WrapAngle(rad)
}

// Bounds is an axis-aligned box bodies are clamped to. The zero value means
// unbounded.
type Bounds struct {
	MinX, MinY, MaxX, MaxY float64
}

func (b Bounds) IsZero() bool {
	return b == Bounds{}
}

func (b Bounds) Clamp(p pose.Pose) pose.Pose {
	if b.IsZero() {
		return p
	}
	p.X = math.Min(math.Max(p.X, b.MinX), b.MaxX)
	p.Y = math.Min(math.Max(p.Y, b.MinY), b.MaxY)
	return p
}
