package control

import (
	"fmt"
	"math"

	"github.com/san-kum/chaser/internal/pose"
)

const (
	ParamSpeedGain   = "speed_gain"
	ParamAngularGain = "angular_gain"
	ParamTolerance   = "distance_tolerance"
)

type Pursuit struct {
	gains Gains
}

func NewPursuit(g Gains) *Pursuit {
	return &Pursuit{gains: g}
}

func (p *Pursuit) Gains() Gains { return p.gains }

// Evaluate runs the law once for the given snapshots.
func (p *Pursuit) Evaluate(agent, target pose.Pose) Evaluation {
	dist := Distance(agent, target)
	bearing := Bearing(agent, target)
	headingErr := bearing - agent.Theta
	if p.gains.WrapHeading {
		headingErr = WrapAngle(headingErr)
	}

	ev := Evaluation{
		Distance:     dist,
		Bearing:      bearing,
		HeadingError: headingErr,
	}

	if dist >= p.gains.Tolerance {
		ev.Mode = Approaching
		ev.Command = Command{
			Linear:  p.gains.Speed * dist,
			Angular: p.gains.Angular * headingErr,
		}
	} else {
		ev.Mode = Holding
		ev.Command = Stop
	}
	return ev
}

// Compute returns only the command of Evaluate.
func (p *Pursuit) Compute(agent, target pose.Pose) Command {
	return p.Evaluate(agent, target).Command
}

// Params returns tunable parameters for live adjustment.
func (p *Pursuit) Params() map[string]float64 {
	return map[string]float64{
		ParamSpeedGain:   p.gains.Speed,
		ParamAngularGain: p.gains.Angular,
		ParamTolerance:   p.gains.Tolerance,
	}
}

// ParamNames lists the tunable parameters in a stable order.
func ParamNames() []string {
	return []string{ParamSpeedGain, ParamAngularGain, ParamTolerance}
}

// SetParam adjusts one parameter. Values must be finite; the tolerance must
// not be negative.
func (p *Pursuit) SetParam(name string, value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return fmt.Errorf("%w: %s=%v", ErrInvalidParam, name, value)
	}
	switch name {
	case ParamSpeedGain:
		p.gains.Speed = value
	case ParamAngularGain:
		p.gains.Angular = value
	case ParamTolerance:
		if value < 0 {
			return fmt.Errorf("%w: %s=%v", ErrInvalidParam, name, value)
		}
		p.gains.Tolerance = value
	default:
		return fmt.Errorf("%w: %s", ErrUnknownParam, name)
	}
	return nil
}

// Distance is the planar Euclidean distance from a to b.
func Distance(a, b pose.Pose) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}

// Bearing is the absolute angle from a to b in (-pi, pi].
func Bearing(a, b pose.Pose) float64 {
	return math.Atan2(b.Y-a.Y, b.X-a.X)
}

// WrapAngle maps an angle into (-pi, pi].
func WrapAngle(rad float64) float64 {
	w := math.Atan2(math.Sin(rad), math.Cos(rad))
	if w == -math.Pi {
		return math.Pi
	}
	return w
}
