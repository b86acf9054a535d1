package control

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownParam = errors.New("control: unknown parameter")
	ErrInvalidParam = errors.New("control: invalid parameter value")
)

// Command is a velocity command: linear speed along the agent heading and
// angular speed about its vertical axis.
type Command struct {
	Linear  float64 `json:"linear"`
	Angular float64 `json:"angular"`
}

// Stop is the full stop command.
var Stop = Command{}

func (c Command) String() string {
	return fmt.Sprintf("(%.4f, %.4f)", c.Linear, c.Angular)
}

type Mode int

const (
	Approaching Mode = iota + 1
	Holding
)

func (m Mode) String() string {
	switch m {
	case Approaching:
		return "APPROACHING"
	case Holding:
		return "HOLDING"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode is the inverse of Mode.String.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "APPROACHING":
		return Approaching, nil
	case "HOLDING":
		return Holding, nil
	default:
		return 0, fmt.Errorf("control: unknown mode %q", s)
	}
}

// Gains bundles the fixed parameters of the law.
type Gains struct {
	Speed       float64
	Angular     float64
	Tolerance   float64
	WrapHeading bool
}

// Evaluation is everything one evaluation of the law produced.
type Evaluation struct {
	Distance     float64
	Bearing      float64
	HeadingError float64
	Mode         Mode
	Command      Command
}
