package export

import (
	"errors"
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/san-kum/chaser/internal/sim"
)

var ErrNoTicks = errors.New("export: no ticks to plot")

var (
	agentColor  = color.RGBA{R: 0x00, G: 0x99, B: 0xff, A: 0xff}
	targetColor = color.RGBA{R: 0xff, G: 0x44, B: 0x44, A: 0xff}
	accentColor = color.RGBA{R: 0x99, G: 0x99, B: 0x99, A: 0xff}
)

// Trajectory plots the agent and target paths in the plane.
func Trajectory(ticks []sim.Tick, title string) (*plot.Plot, error) {
	if len(ticks) == 0 {
		return nil, ErrNoTicks
	}

	agentPts := make(plotter.XYs, len(ticks))
	targetPts := make(plotter.XYs, len(ticks))
	for i, t := range ticks {
		agentPts[i] = plotter.XY{X: t.Agent.X, Y: t.Agent.Y}
		targetPts[i] = plotter.XY{X: t.Target.X, Y: t.Target.Y}
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "x"
	p.Y.Label.Text = "y"
	p.Add(plotter.NewGrid())

	agentLine, err := plotter.NewLine(agentPts)
	if err != nil {
		return nil, fmt.Errorf("agent path: %w", err)
	}
	agentLine.Color = agentColor
	agentLine.Width = vg.Points(1.5)

	targetLine, err := plotter.NewLine(targetPts)
	if err != nil {
		return nil, fmt.Errorf("target path: %w", err)
	}
	targetLine.Color = targetColor
	targetLine.Width = vg.Points(1)
	targetLine.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}

	start, err := plotter.NewScatter(plotter.XYs{agentPts[0], targetPts[0]})
	if err != nil {
		return nil, fmt.Errorf("start markers: %w", err)
	}
	start.Shape = draw.CircleGlyph{}
	start.Color = accentColor

	p.Add(agentLine, targetLine, start)
	p.Legend.Add("agent", agentLine)
	p.Legend.Add("target", targetLine)
	p.Legend.Top = true
	equalAspect(p)
	return p, nil
}

// Distance plots agent-target distance over time with the tolerance radius.
func Distance(ticks []sim.Tick, tolerance float64, title string) (*plot.Plot, error) {
	if len(ticks) == 0 {
		return nil, ErrNoTicks
	}

	pts := make(plotter.XYs, len(ticks))
	for i, t := range ticks {
		pts[i] = plotter.XY{X: t.Time(), Y: t.Distance}
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "time (s)"
	p.Y.Label.Text = "distance"
	p.Add(plotter.NewGrid())

	line, err := plotter.NewLine(pts)
	if err != nil {
		return nil, err
	}
	line.Color = agentColor
	line.Width = vg.Points(1.5)
	p.Add(line)
	p.Legend.Add("distance", line)

	if tolerance > 0 {
		tol := plotter.NewFunction(func(float64) float64 { return tolerance })
		tol.Color = targetColor
		tol.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
		p.Add(tol)
		p.Legend.Add("tolerance", tol)
	}
	p.Y.Min = 0
	return p, nil
}

// Commands plots linear and angular commands over time.
func Commands(ticks []sim.Tick, title string) (*plot.Plot, error) {
	if len(ticks) == 0 {
		return nil, ErrNoTicks
	}

	linear := make(plotter.XYs, len(ticks))
	angular := make(plotter.XYs, len(ticks))
	for i, t := range ticks {
		linear[i] = plotter.XY{X: t.Time(), Y: t.Command.Linear}
		angular[i] = plotter.XY{X: t.Time(), Y: t.Command.Angular}
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "time (s)"
	p.Y.Label.Text = "command"
	p.Add(plotter.NewGrid())

	ll, err := plotter.NewLine(linear)
	if err != nil {
		return nil, err
	}
	ll.Color = agentColor
	al, err := plotter.NewLine(angular)
	if err != nil {
		return nil, err
	}
	al.Color = targetColor

	p.Add(ll, al)
	p.Legend.Add("linear", ll)
	p.Legend.Add("angular", al)
	return p, nil
}

// Save renders p; the format follows the file extension (png, svg, pdf).
func Save(p *plot.Plot, path string) error {
	return p.Save(8*vg.Inch, 6*vg.Inch, path)
}

// equalAspect widens the shorter axis so both axes span the same range.
func equalAspect(p *plot.Plot) {
	dx := p.X.Max - p.X.Min
	dy := p.Y.Max - p.Y.Min
	span := math.Max(dx, dy)
	if span == 0 {
		span = 1
	}
	cx := (p.X.Max + p.X.Min) / 2
	cy := (p.Y.Max + p.Y.Min) / 2
	p.X.Min, p.X.Max = cx-span/2, cx+span/2
	p.Y.Min, p.Y.Max = cy-span/2, cy+span/2
}
