package metrics

import (
	"github.com/san-kum/chaser/internal/control"
	"github.com/san-kum/chaser/internal/sim"
)

// HoldRatio is the fraction of ticks spent inside the tolerance radius.
type HoldRatio struct {
	name    string
	holding int
	samples int
}

func NewHoldRatio() *HoldRatio {
	return &HoldRatio{
		name: "hold_ratio",
	}
}

func (h *HoldRatio) Name() string {
	return h.name
}

func (h *HoldRatio) Observe(t sim.Tick) {
	h.samples++
	if t.Mode == control.Holding {
		h.holding++
	}
}

func (h *HoldRatio) Value() float64 {
	if h.samples == 0 {
		return 0
	}
	return float64(h.holding) / float64(h.samples)
}

func (h *HoldRatio) Reset() {
	h.holding = 0
	h.samples = 0
}
