package pose

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/floats/scalar"
)

// Precision is the number of decimal digits kept on X and Y at ingestion.
const Precision = 4

var ErrUnknownBody = errors.New("pose: unknown body")

// Pose is the planar state of a rigid body. Theta is in radians and is
// never normalised here.
type Pose struct {
	X     float64 `yaml:"x" json:"x"`
	Y     float64 `yaml:"y" json:"y"`
	Theta float64 `yaml:"theta" json:"theta"`
}

func (p Pose) String() string {
	return fmt.Sprintf("(%.4f, %.4f, %.4f)", p.X, p.Y, p.Theta)
}

func (p Pose) IsValid() bool {
	for _, v := range []float64{p.X, p.Y, p.Theta} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Round limits X and Y to Precision decimal digits, half away from zero.
// Theta is returned unchanged.
func Round(p Pose) Pose {
	return Pose{
		X:     scalar.Round(p.X, Precision),
		Y:     scalar.Round(p.Y, Precision),
		Theta: p.Theta,
	}
}

// Body identifies one of the two tracked bodies.
type Body int

const (
	Agent Body = iota
	Target

	numBodies = 2
)

func (b Body) String() string {
	switch b {
	case Agent:
		return "agent"
	case Target:
		return "target"
	default:
		return fmt.Sprintf("Body(%d)", int(b))
	}
}

func (b Body) valid() bool {
	return b >= 0 && b < numBodies
}

// ParseBody accepts the body names used on the wire. "chaser" and "victim"
// are kept as aliases for agent and target.
func ParseBody(name string) (Body, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "agent", "chaser":
		return Agent, nil
	case "target", "victim":
		return Target, nil
	default:
		return Agent, fmt.Errorf("%w: %q", ErrUnknownBody, name)
	}
}
