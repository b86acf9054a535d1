package metrics

import (
	"github.com/san-kum/chaser/internal/control"
	"github.com/san-kum/chaser/internal/sim"
)

// NotCaptured is the CaptureTime value of a run that never reached the
// target. It is negative so it survives JSON encoding.
const NotCaptured = -1.0

// CaptureTime is the elapsed time of the first holding tick.
type CaptureTime struct {
	name     string
	at       float64
	captured bool
}

func NewCaptureTime() *CaptureTime {
	return &CaptureTime{
		name: "capture_time",
		at:   NotCaptured,
	}
}

func (c *CaptureTime) Name() string { return c.name }

func (c *CaptureTime) Observe(t sim.Tick) {
	if c.captured || t.Mode != control.Holding {
		return
	}
	c.captured = true
	c.at = t.Time()
}

func (c *CaptureTime) Value() float64 { return c.at }

func (c *CaptureTime) Reset() {
	c.at = NotCaptured
	c.captured = false
}
