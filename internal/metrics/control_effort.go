package metrics

import (
	"math"

	"github.com/san-kum/chaser/internal/sim"
)

// ControlEffort integrates |linear| + |angular| over time. Each command is
// held until the next tick, so the last tick of a run adds nothing.
type ControlEffort struct {
	name   string
	total  float64
	prev   float64
	prevAt float64
	seen   bool
}

func NewControlEffort() *ControlEffort {
	return &ControlEffort{name: "control_effort"}
}

func (c *ControlEffort) Name() string { return c.name }

func (c *ControlEffort) Observe(t sim.Tick) {
	now := t.Time()
	if c.seen {
		c.total += c.prev * (now - c.prevAt)
	}
	c.prev = math.Abs(t.Command.Linear) + math.Abs(t.Command.Angular)
	c.prevAt = now
	c.seen = true
}

func (c *ControlEffort) Value() float64 { return c.total }

func (c *ControlEffort) Reset() {
	*c = ControlEffort{name: c.name}
}
