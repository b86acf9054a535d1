package transport

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/san-kum/chaser/internal/control"
	"github.com/san-kum/chaser/internal/pose"
)

var ErrMalformed = errors.New("transport: malformed datagram")

// PoseMessage is one observation of one body.
type PoseMessage struct {
	Body pose.Body
	Pose pose.Pose
}

// ParsePoseMessage decodes "body,x,y,theta". The turtlesim shape with two
// trailing velocity fields is accepted and the velocities are ignored.
func ParsePoseMessage(b []byte) (PoseMessage, error) {
	s := strings.TrimSpace(string(b))
	if s == "" {
		return PoseMessage{}, fmt.Errorf("%w: empty payload", ErrMalformed)
	}

	parts := strings.Split(s, ",")
	if len(parts) != 4 && len(parts) != 6 {
		return PoseMessage{}, fmt.Errorf("%w: expected 4 or 6 fields, got %d", ErrMalformed, len(parts))
	}

	body, err := pose.ParseBody(parts[0])
	if err != nil {
		return PoseMessage{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	var vals [3]float64
	for i := range vals {
		vals[i], err = parseF64(parts[i+1])
		if err != nil {
			return PoseMessage{}, fmt.Errorf("%w: field %d: %v", ErrMalformed, i+1, err)
		}
	}

	p := pose.Pose{X: vals[0], Y: vals[1], Theta: vals[2]}
	if !p.IsValid() {
		return PoseMessage{}, fmt.Errorf("%w: non-finite pose %v", ErrMalformed, p)
	}
	return PoseMessage{Body: body, Pose: p}, nil
}

// FormatPoseMessage is the inverse of ParsePoseMessage.
func FormatPoseMessage(m PoseMessage) []byte {
	return []byte(strings.Join([]string{
		m.Body.String(),
		strconv.FormatFloat(m.Pose.X, 'f', -1, 64),
		strconv.FormatFloat(m.Pose.Y, 'f', -1, 64),
		strconv.FormatFloat(m.Pose.Theta, 'f', -1, 64),
	}, ","))
}

// FormatCommand writes "linear,angular".
func FormatCommand(cmd control.Command) []byte {
	return []byte(fmt.Sprintf("%.4f,%.4f", cmd.Linear, cmd.Angular))
}

func ParseCommand(b []byte) (control.Command, error) {
	parts := strings.Split(strings.TrimSpace(string(b)), ",")
	if len(parts) != 2 {
		return control.Command{}, fmt.Errorf("%w: expected 2 fields, got %d", ErrMalformed, len(parts))
	}
	linear, err := parseF64(parts[0])
	if err != nil {
		return control.Command{}, fmt.Errorf("%w: linear: %v", ErrMalformed, err)
	}
	angular, err := parseF64(parts[1])
	if err != nil {
		return control.Command{}, fmt.Errorf("%w: angular: %v", ErrMalformed, err)
	}
	return control.Command{Linear: linear, Angular: angular}, nil
}

func parseF64(value string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(value), 64)
}
