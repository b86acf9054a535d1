package experiment

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/chaser/internal/config"
	"github.com/san-kum/chaser/internal/integrators"
	"github.com/san-kum/chaser/internal/kinematics"
	"github.com/san-kum/chaser/internal/metrics"
	"github.com/san-kum/chaser/internal/sim"
)

var (
	ErrUnknownIntegrator = errors.New("experiment: unknown integrator")
	ErrUnknownMotion     = errors.New("experiment: unknown motion")
)

// MotionEnv carries what a motion factory may need beyond its own config.
type MotionEnv struct {
	Bounds kinematics.Bounds
	Seed   int64
}

type MotionFactory func(mc config.MotionConfig, env MotionEnv) kinematics.Motion

type Registry struct {
	integrators map[string]func() integrators.Integrator
	motions     map[string]MotionFactory
}

func NewRegistry() *Registry {
	r := &Registry{
		integrators: make(map[string]func() integrators.Integrator),
		motions:     make(map[string]MotionFactory),
	}

	r.integrators["euler"] = func() integrators.Integrator { return integrators.NewEuler() }
	r.integrators["rk4"] = func() integrators.Integrator { return integrators.NewRK4() }
	r.integrators["exact"] = func() integrators.Integrator { return integrators.NewExact() }

	r.motions["static"] = func(mc config.MotionConfig, _ MotionEnv) kinematics.Motion {
		return kinematics.Static{Pose: mc.Center}
	}
	r.motions["line"] = func(mc config.MotionConfig, _ MotionEnv) kinematics.Motion {
		sin, cos := math.Sincos(mc.Heading)
		return kinematics.Line{Start: mc.Center, VX: mc.Speed * cos, VY: mc.Speed * sin}
	}
	r.motions["circle"] = func(mc config.MotionConfig, _ MotionEnv) kinematics.Motion {
		return kinematics.Circle{Center: mc.Center, Radius: mc.Radius, Omega: mc.Speed, Phase: mc.Heading}
	}
	r.motions["wander"] = func(mc config.MotionConfig, env MotionEnv) kinematics.Motion {
		return kinematics.NewWander(mc.Center, mc.Speed, mc.Turn, env.Bounds, env.Seed)
	}
	r.motions["manual"] = func(mc config.MotionConfig, _ MotionEnv) kinematics.Motion {
		return kinematics.NewManual(mc.Center)
	}

	return r
}

func (r *Registry) GetIntegrator(name string) (integrators.Integrator, error) {
	fn, ok := r.integrators[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownIntegrator, name)
	}
	return fn(), nil
}

func (r *Registry) GetMotion(mc config.MotionConfig, env MotionEnv) (kinematics.Motion, error) {
	fn, ok := r.motions[mc.Motion]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMotion, mc.Motion)
	}
	return fn(mc, env), nil
}

func (r *Registry) ListIntegrators() []string { return sortedKeys(r.integrators) }
func (r *Registry) ListMotions() []string     { return sortedKeys(r.motions) }

func (r *Registry) DefaultMetrics() []sim.Metric {
	return metrics.Standard()
}

func sortedKeys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
