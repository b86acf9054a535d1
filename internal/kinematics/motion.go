package kinematics

import (
	"math"
	"math/rand"
	"sort"
	"sync"

	"github.com/san-kum/chaser/internal/pose"
)

// Motion gives the pose of a body at time t (seconds since start).
type Motion interface {
	At(t float64) pose.Pose
}

type Static struct {
	Pose pose.Pose
}

func (s Static) At(float64) pose.Pose { return s.Pose }

// Line moves at constant velocity from Start.
type Line struct {
	Start  pose.Pose
	VX, VY float64
}

func (l Line) At(t float64) pose.Pose {
	theta := l.Start.Theta
	if l.VX != 0 || l.VY != 0 {
		theta = math.Atan2(l.VY, l.VX)
	}
	return pose.Pose{X: l.Start.X + l.VX*t, Y: l.Start.Y + l.VY*t, Theta: theta}
}

// Circle orbits Center counter-clockwise for positive Omega.
type Circle struct {
	Center pose.Pose
	Radius float64
	Omega  float64
	Phase  float64
}

func (c Circle) At(t float64) pose.Pose {
	a := c.Phase + c.Omega*t
	sin, cos := math.Sincos(a)
	heading := a + math.Pi/2
	if c.Omega < 0 {
		heading = a - math.Pi/2
	}
	return pose.Pose{
		X:     c.Center.X + c.Radius*cos,
		Y:     c.Center.Y + c.Radius*sin,
		Theta: NormalizeAngle(heading),
	}
}

// Wander drives forward at Speed while its heading random-walks. The path is
// fully determined by Seed. Calls to At must use non-decreasing t.
type Wander struct {
	speed  float64
	turn   float64
	bounds Bounds
	rng    *rand.Rand
	cur    pose.Pose
	t      float64
}

const wanderStep = 0.05

func NewWander(start pose.Pose, speed, turn float64, bounds Bounds, seed int64) *Wander {
	return &Wander{
		speed:  speed,
		turn:   turn,
		bounds: bounds,
		rng:    rand.New(rand.NewSource(seed)),
		cur:    start,
	}
}

func (w *Wander) At(t float64) pose.Pose {
	for w.t+wanderStep <= t {
		w.cur.Theta = NormalizeAngle(w.cur.Theta + (w.rng.Float64()*2-1)*w.turn*wanderStep)
		sin, cos := math.Sincos(w.cur.Theta)
		next := pose.Pose{
			X:     w.cur.X + w.speed*wanderStep*cos,
			Y:     w.cur.Y + w.speed*wanderStep*sin,
			Theta: w.cur.Theta,
		}
		clamped := w.bounds.Clamp(next)
		if clamped != next {
			// bounce off the wall
			clamped.Theta = NormalizeAngle(clamped.Theta + math.Pi)
		}
		w.cur = clamped
		w.t += wanderStep
	}
	return w.cur
}

// Manual is driven from outside, e.g. keyboard teleop. Safe for concurrent use.
type Manual struct {
	mu sync.RWMutex
	p  pose.Pose
}

func NewManual(p pose.Pose) *Manual {
	return &Manual{p: p}
}

func (m *Manual) At(float64) pose.Pose {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.p
}

func (m *Manual) Set(p pose.Pose) {
	m.mu.Lock()
	m.p = p
	m.mu.Unlock()
}

// Nudge moves forward along the current heading and then turns.
func (m *Manual) Nudge(forward, turn float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sin, cos := math.Sincos(m.p.Theta)
	m.p.X += forward * cos
	m.p.Y += forward * sin
	m.p.Theta = NormalizeAngle(m.p.Theta + turn)
}

// Waypoint places a body at Pose from time At onwards.
type Waypoint struct {
	At   float64   `yaml:"at"`
	Pose pose.Pose `yaml:"pose"`
}

// Piecewise holds Initial until the first waypoint, then jumps from one
// waypoint to the next.
type Piecewise struct {
	initial pose.Pose
	points  []Waypoint
}

func NewPiecewise(initial pose.Pose, points []Waypoint) *Piecewise {
	sorted := make([]Waypoint, len(points))
	copy(sorted, points)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].At < sorted[j].At })
	return &Piecewise{initial: initial, points: sorted}
}

func (p *Piecewise) At(t float64) pose.Pose {
	i := sort.Search(len(p.points), func(i int) bool { return p.points[i].At > t })
	if i == 0 {
		return p.initial
	}
	return p.points[i-1].Pose
}
