package kinematics

import (
	"math"
	"testing"

	"github.com/san-kum/chaser/internal/control"
	"github.com/san-kum/chaser/internal/pose"
)

func TestUnicycleDerive(t *testing.T) {
	u := NewUnicycle()
	d := u.Derive(pose.Pose{Theta: math.Pi / 2}, control.Command{Linear: 2, Angular: 0.5})

	if math.Abs(d.X) > 1e-12 {
		t.Errorf("expected dx ~0, got %f", d.X)
	}
	if math.Abs(d.Y-2) > 1e-12 {
		t.Errorf("expected dy 2, got %f", d.Y)
	}
	if d.Theta != 0.5 {
		t.Errorf("expected dtheta 0.5, got %f", d.Theta)
	}
}

func TestUnicycleArcStraight(t *testing.T) {
	u := NewUnicycle()
	p := u.Arc(pose.Pose{X: 1, Y: 1}, control.Command{Linear: 3}, 2)
	if math.Abs(p.X-7) > 1e-12 || math.Abs(p.Y-1) > 1e-12 {
		t.Errorf("expected (7, 1), got %v", p)
	}
}

func TestUnicycleArcQuarterTurn(t *testing.T) {
	u := NewUnicycle()
	// radius 1 circle, quarter turn from the origin heading +x
	p := u.Arc(pose.Pose{}, control.Command{Linear: 1, Angular: 1}, math.Pi/2)
	if math.Abs(p.X-1) > 1e-9 || math.Abs(p.Y-1) > 1e-9 {
		t.Errorf("expected (1, 1), got %v", p)
	}
	if math.Abs(p.Theta-math.Pi/2) > 1e-12 {
		t.Errorf("expected heading pi/2, got %f", p.Theta)
	}
}

func TestBoundsClamp(t *testing.T) {
	b := Bounds{MaxX: 11, MaxY: 11}
	got := b.Clamp(pose.Pose{X: -1, Y: 12, Theta: 2})
	if got != (pose.Pose{X: 0, Y: 11, Theta: 2}) {
		t.Errorf("unexpected clamp result %v", got)
	}

	var none Bounds
	p := pose.Pose{X: -100, Y: 100}
	if none.Clamp(p) != p {
		t.Error("zero bounds must not clamp")
	}
}

func TestMotions(t *testing.T) {
	line := Line{Start: pose.Pose{X: 1, Y: 2}, VX: 1, VY: 0}
	if got := line.At(3); got.X != 4 || got.Y != 2 || got.Theta != 0 {
		t.Errorf("line at 3: got %v", got)
	}

	circle := Circle{Center: pose.Pose{X: 5, Y: 5}, Radius: 2, Omega: 1}
	for _, tt := range []float64{0, 0.7, 2.1, 10} {
		p := circle.At(tt)
		r := math.Hypot(p.X-5, p.Y-5)
		if math.Abs(r-2) > 1e-9 {
			t.Errorf("circle at %v: radius %f", tt, r)
		}
	}

	static := Static{Pose: pose.Pose{X: 3}}
	if static.At(100) != (pose.Pose{X: 3}) {
		t.Error("static motion moved")
	}
}

func TestWanderDeterministic(t *testing.T) {
	b := Bounds{MaxX: 10, MaxY: 10}
	a := NewWander(pose.Pose{X: 5, Y: 5}, 1, 2, b, 42)
	c := NewWander(pose.Pose{X: 5, Y: 5}, 1, 2, b, 42)

	for _, tt := range []float64{0.5, 1, 3, 20} {
		pa, pc := a.At(tt), c.At(tt)
		if pa != pc {
			t.Fatalf("same seed diverged at t=%v: %v vs %v", tt, pa, pc)
		}
		if pa.X < 0 || pa.X > 10 || pa.Y < 0 || pa.Y > 10 {
			t.Fatalf("wander left bounds: %v", pa)
		}
	}
}

func TestManualNudge(t *testing.T) {
	m := NewManual(pose.Pose{X: 1, Y: 1})
	m.Nudge(2, math.Pi/2)
	p := m.At(0)
	if math.Abs(p.X-3) > 1e-12 || math.Abs(p.Y-1) > 1e-12 {
		t.Errorf("expected (3, 1), got %v", p)
	}
	if math.Abs(p.Theta-math.Pi/2) > 1e-12 {
		t.Errorf("expected heading pi/2, got %f", p.Theta)
	}

	m.Set(pose.Pose{X: -2})
	if m.At(5) != (pose.Pose{X: -2}) {
		t.Error("Set did not replace the pose")
	}
}

func TestPiecewise(t *testing.T) {
	pw := NewPiecewise(pose.Pose{X: 5.5, Y: 5.5}, []Waypoint{
		{At: 3, Pose: pose.Pose{X: 4, Y: 4}},
		{At: 1, Pose: pose.Pose{X: 1, Y: 1}},
	})

	tests := []struct {
		t    float64
		want pose.Pose
	}{
		{0, pose.Pose{X: 5.5, Y: 5.5}},
		{0.99, pose.Pose{X: 5.5, Y: 5.5}},
		{1, pose.Pose{X: 1, Y: 1}},
		{2.5, pose.Pose{X: 1, Y: 1}},
		{3, pose.Pose{X: 4, Y: 4}},
		{99, pose.Pose{X: 4, Y: 4}},
	}
	for _, tt := range tests {
		if got := pw.At(tt.t); got != tt.want {
			t.Errorf("At(%v) = %v, want %v", tt.t, got, tt.want)
		}
	}
}
