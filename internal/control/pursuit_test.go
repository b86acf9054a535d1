package control

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/san-kum/chaser/internal/pose"
)

const eps = 1e-9

var approx = cmpopts.EquateApprox(0, 1e-4)

func TestPursuitTurtlesimScenario(t *testing.T) {
	law := NewPursuit(Gains{Speed: 1, Angular: 5, Tolerance: 1})
	agent := pose.Pose{X: 4, Y: 4, Theta: 0}
	target := pose.Pose{X: 5.5, Y: 5.5, Theta: 0}

	got := law.Evaluate(agent, target)
	want := Evaluation{
		Distance:     2.1213,
		Bearing:      0.7854,
		HeadingError: 0.7854,
		Mode:         Approaching,
		Command:      Command{Linear: 2.1213, Angular: 3.9270},
	}
	if diff := cmp.Diff(want, got, approx); diff != "" {
		t.Errorf("evaluation mismatch (-want +got):\n%s", diff)
	}

	got = law.Evaluate(agent, pose.Pose{X: 4, Y: 4, Theta: 0})
	if got.Command != Stop {
		t.Errorf("coincident target should stop, got %v", got.Command)
	}
	if got.Mode != Holding {
		t.Errorf("expected HOLDING, got %v", got.Mode)
	}
}

func TestPursuitWithinToleranceStops(t *testing.T) {
	law := NewPursuit(Gains{Speed: 2, Angular: 5, Tolerance: 1.5})
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 1000; i++ {
		agent := pose.Pose{X: rng.Float64()*20 - 10, Y: rng.Float64()*20 - 10, Theta: rng.Float64()*20 - 10}
		r := rng.Float64() * 1.4999
		a := rng.Float64() * 2 * math.Pi
		target := pose.Pose{X: agent.X + r*math.Cos(a), Y: agent.Y + r*math.Sin(a)}

		if Distance(agent, target) >= 1.5 {
			continue
		}
		if cmd := law.Compute(agent, target); cmd != Stop {
			t.Fatalf("agent %v target %v: expected stop, got %v", agent, target, cmd)
		}
	}
}

func TestPursuitOutsideToleranceIsProportional(t *testing.T) {
	gains := Gains{Speed: 0.7, Angular: 5, Tolerance: 0.5}
	law := NewPursuit(gains)
	rng := rand.New(rand.NewSource(11))

	for i := 0; i < 1000; i++ {
		agent := pose.Pose{X: rng.Float64()*20 - 10, Y: rng.Float64()*20 - 10, Theta: rng.Float64()*12 - 6}
		target := pose.Pose{X: rng.Float64()*20 - 10, Y: rng.Float64()*20 - 10}
		dx, dy := target.X-agent.X, target.Y-agent.Y
		dist := math.Sqrt(dx*dx + dy*dy)
		if dist < gains.Tolerance {
			continue
		}

		cmd := law.Compute(agent, target)
		wantLinear := gains.Speed * dist
		wantAngular := gains.Angular * (math.Atan2(dy, dx) - agent.Theta)
		if math.Abs(cmd.Linear-wantLinear) > eps {
			t.Fatalf("linear = %v, want %v", cmd.Linear, wantLinear)
		}
		if math.Abs(cmd.Angular-wantAngular) > eps {
			t.Fatalf("angular = %v, want %v", cmd.Angular, wantAngular)
		}
	}
}

func TestPursuitBoundaryIsApproaching(t *testing.T) {
	law := NewPursuit(Gains{Speed: 1, Angular: 5, Tolerance: 5})
	ev := law.Evaluate(pose.Pose{}, pose.Pose{X: 3, Y: 4})

	if ev.Distance != 5 {
		t.Fatalf("expected distance exactly 5, got %v", ev.Distance)
	}
	if ev.Mode != Approaching {
		t.Errorf("distance == tolerance must approach, got %v", ev.Mode)
	}
	if ev.Command.Linear != 5 {
		t.Errorf("expected linear 5, got %v", ev.Command.Linear)
	}
}

func TestPursuitIdempotent(t *testing.T) {
	law := NewPursuit(Gains{Speed: 1, Angular: 5, Tolerance: 1})
	agent := pose.Pose{X: 1, Y: 2, Theta: 0.3}
	target := pose.Pose{X: -4, Y: 7}

	first := law.Compute(agent, target)
	for i := 0; i < 10; i++ {
		if got := law.Compute(agent, target); got != first {
			t.Fatalf("tick %d: command changed from %v to %v", i, first, got)
		}
	}
}

func TestPursuitHeadingErrorUnwrapped(t *testing.T) {
	law := NewPursuit(Gains{Speed: 1, Angular: 5, Tolerance: 0.1})
	// Target straight behind-left, heading just past the seam.
	agent := pose.Pose{X: 0, Y: 0, Theta: -3}
	target := pose.Pose{X: -1, Y: 0.01}

	ev := law.Evaluate(agent, target)
	want := math.Atan2(0.01, -1) + 3
	if math.Abs(ev.HeadingError-want) > eps {
		t.Errorf("heading error = %v, want unwrapped %v", ev.HeadingError, want)
	}
	if ev.HeadingError <= math.Pi {
		t.Errorf("expected heading error beyond pi, got %v", ev.HeadingError)
	}
}

func TestPursuitWrapHeadingOptIn(t *testing.T) {
	law := NewPursuit(Gains{Speed: 1, Angular: 5, Tolerance: 0.1, WrapHeading: true})
	agent := pose.Pose{X: 0, Y: 0, Theta: -3}
	target := pose.Pose{X: -1, Y: 0.01}

	ev := law.Evaluate(agent, target)
	if ev.HeadingError <= -math.Pi || ev.HeadingError > math.Pi {
		t.Errorf("wrapped heading error out of range: %v", ev.HeadingError)
	}
	if math.Abs(ev.Command.Angular-5*ev.HeadingError) > eps {
		t.Errorf("angular should use wrapped error, got %v", ev.Command.Angular)
	}
}

func TestWrapAngle(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{math.Pi, math.Pi},
		{-math.Pi, math.Pi},
		{3 * math.Pi / 2, -math.Pi / 2},
		{-3 * math.Pi / 2, math.Pi / 2},
		{7, 7 - 2*math.Pi},
	}
	for _, tt := range tests {
		if got := WrapAngle(tt.in); math.Abs(got-tt.want) > eps {
			t.Errorf("WrapAngle(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestPursuitSetParam(t *testing.T) {
	law := NewPursuit(Gains{Speed: 1, Angular: 5, Tolerance: 1})

	if err := law.SetParam(ParamSpeedGain, 2); err != nil {
		t.Fatalf("set speed gain: %v", err)
	}
	if err := law.SetParam(ParamTolerance, 0.25); err != nil {
		t.Fatalf("set tolerance: %v", err)
	}
	want := map[string]float64{ParamSpeedGain: 2, ParamAngularGain: 5, ParamTolerance: 0.25}
	if diff := cmp.Diff(want, law.Params()); diff != "" {
		t.Errorf("params mismatch (-want +got):\n%s", diff)
	}

	if err := law.SetParam("kp", 1); !errors.Is(err, ErrUnknownParam) {
		t.Errorf("expected ErrUnknownParam, got %v", err)
	}
	if err := law.SetParam(ParamTolerance, -1); !errors.Is(err, ErrInvalidParam) {
		t.Errorf("expected ErrInvalidParam for negative tolerance, got %v", err)
	}
	if err := law.SetParam(ParamAngularGain, math.NaN()); !errors.Is(err, ErrInvalidParam) {
		t.Errorf("expected ErrInvalidParam for NaN, got %v", err)
	}
}

func TestModeRoundTrip(t *testing.T) {
	for _, m := range []Mode{Approaching, Holding} {
		got, err := ParseMode(m.String())
		if err != nil || got != m {
			t.Errorf("ParseMode(%q) = %v, %v", m.String(), got, err)
		}
	}
	if _, err := ParseMode("SEARCH"); err == nil {
		t.Error("expected error for unknown mode")
	}
}
