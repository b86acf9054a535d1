package metrics

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/chaser/internal/sim"
)

type MeanDistance struct {
	name  string
	dists []float64
}

func NewMeanDistance() *MeanDistance {
	return &MeanDistance{
		name: "mean_distance",
	}
}

func (m *MeanDistance) Name() string { return m.name }

func (m *MeanDistance) Observe(t sim.Tick) {
	m.dists = append(m.dists, t.Distance)
}

func (m *MeanDistance) Value() float64 {
	if len(m.dists) == 0 {
		return 0
	}
	return stat.Mean(m.dists, nil)
}

func (m *MeanDistance) Reset() {
	m.dists = m.dists[:0]
}

// PeakAngular is the largest |angular| command issued.
type PeakAngular struct {
	name  string
	rates []float64
}

func NewPeakAngular() *PeakAngular {
	return &PeakAngular{
		name: "peak_angular",
	}
}

func (p *PeakAngular) Name() string { return p.name }

func (p *PeakAngular) Observe(t sim.Tick) {
	p.rates = append(p.rates, math.Abs(t.Command.Angular))
}

func (p *PeakAngular) Value() float64 {
	if len(p.rates) == 0 {
		return 0
	}
	return floats.Max(p.rates)
}

func (p *PeakAngular) Reset() {
	p.rates = p.rates[:0]
}
