package optim

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/chaser/internal/experiment"
	"github.com/san-kum/chaser/internal/sim"
)

var ErrNoCandidates = errors.New("optim: no parameter combinations")

type Trial struct {
	Params map[string]float64
	Value  float64
}

type Outcome struct {
	Best      map[string]float64
	BestValue float64
	Trials    []Trial
}

// GridSearch evaluates every combination of the given parameter values and
// keeps the one with the lowest metric. Negative and NaN metric values
// (e.g. a capture time for a target never caught) rank last.
type GridSearch struct {
	paramNames []string
	ranges     [][]float64
	workers    int
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// SetWorkers bounds the number of simulations run at once; 0 uses every CPU.
func (g *GridSearch) SetWorkers(n int) { g.workers = n }

func (g *GridSearch) Search(
	ctx context.Context,
	buildExperiment func(params map[string]float64) (*experiment.Experiment, error),
	metricName string,
) (*Outcome, error) {
	if len(g.paramNames) != len(g.ranges) {
		return nil, fmt.Errorf("optim: %d parameter names for %d ranges", len(g.paramNames), len(g.ranges))
	}

	combos := make([]map[string]float64, 0)
	g.searchRecursive(0, make(map[string]float64), &combos)
	if len(combos) == 0 {
		return nil, ErrNoCandidates
	}

	jobs := make([]sim.Job, len(combos))
	for i, params := range combos {
		exp, err := buildExperiment(params)
		if err != nil {
			return nil, fmt.Errorf("optim: build %v: %w", params, err)
		}
		jobs[i] = sim.Job{
			Name:   fmt.Sprint(params),
			Build:  func() (*sim.Simulator, error) { return exp.Simulator(), nil },
			Config: exp.SimConfig(),
		}
	}

	results, err := sim.NewEnsemble(g.workers).Run(ctx, jobs)
	if err != nil {
		return nil, err
	}

	out := &Outcome{BestValue: math.Inf(1), Trials: make([]Trial, len(combos))}
	for i, res := range results {
		val, ok := res.Metrics[metricName]
		if !ok {
			return nil, fmt.Errorf("optim: metric %q not recorded", metricName)
		}
		out.Trials[i] = Trial{Params: combos[i], Value: val}

		score := rank(val)
		if out.Best == nil || score < rank(out.BestValue) {
			out.BestValue = val
			out.Best = combos[i]
		}
	}

	sort.SliceStable(out.Trials, func(i, j int) bool {
		return rank(out.Trials[i].Value) < rank(out.Trials[j].Value)
	})
	return out, nil
}

func rank(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return math.Inf(1)
	}
	return v
}

func (g *GridSearch) searchRecursive(depth int, current map[string]float64, out *[]map[string]float64) {
	if depth == len(g.paramNames) {
		*out = append(*out, current)
		return
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		g.searchRecursive(depth+1, newParams, out)
	}
}

// Linspace returns n evenly spaced values from lo to hi inclusive.
func Linspace(lo, hi float64, n int) []float64 {
	if n <= 1 {
		return []float64{lo}
	}
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	return out
}
