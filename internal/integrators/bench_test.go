package integrators

import (
	"testing"

	"github.com/san-kum/chaser/internal/control"
	"github.com/san-kum/chaser/internal/kinematics"
	"github.com/san-kum/chaser/internal/pose"
)

func benchmarkIntegrator(b *testing.B, integrator Integrator) {
	sys := kinematics.NewUnicycle()
	u := control.Command{Linear: 1, Angular: 0.5}
	p := pose.Pose{}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		p = integrator.Step(sys, p, u, 0.01)
	}
}

func BenchmarkEuler(b *testing.B) { benchmarkIntegrator(b, NewEuler()) }
func BenchmarkRK4(b *testing.B)   { benchmarkIntegrator(b, NewRK4()) }
func BenchmarkExact(b *testing.B) { benchmarkIntegrator(b, NewExact()) }
