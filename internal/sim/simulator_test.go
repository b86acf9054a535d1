package sim_test

import (
	"context"
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/chaser/internal/control"
	"github.com/san-kum/chaser/internal/integrators"
	"github.com/san-kum/chaser/internal/kinematics"
	"github.com/san-kum/chaser/internal/pose"
	"github.com/san-kum/chaser/internal/sim"
)

type countingMetric struct{ n int }

func (c *countingMetric) Name() string     { return "count" }
func (c *countingMetric) Observe(sim.Tick) { c.n++ }
func (c *countingMetric) Value() float64   { return float64(c.n) }
func (c *countingMetric) Reset()           { c.n = 0 }

func newTurtlesim(target kinematics.Motion, gains control.Gains) *sim.Simulator {
	agent := pose.Pose{X: 4, Y: 4}
	world := sim.NewWorld(sim.WorldConfig{
		Agent:      agent,
		Target:     target,
		Integrator: integrators.NewExact(),
		Bounds:     kinematics.Bounds{MaxX: 11.0889, MaxY: 11.0889},
	})
	store := pose.NewStore(agent, pose.Pose{X: 5.5, Y: 5.5})
	return sim.New(world, store, control.NewPursuit(gains))
}

var _ = Describe("World", func() {
	It("drives the agent with the last command", func() {
		w := sim.NewWorld(sim.WorldConfig{Agent: pose.Pose{X: 1, Y: 1}})
		Expect(w.Send(control.Command{Linear: 2})).To(Succeed())
		w.Advance(0.5)
		w.Advance(0.5)

		Expect(w.Agent().X).To(BeNumerically("~", 3, 1e-12))
		Expect(w.Agent().Y).To(BeNumerically("~", 1, 1e-12))
		Expect(w.Time()).To(BeNumerically("~", 1, 1e-12))
	})

	It("publishes both poses to the store", func() {
		w := sim.NewWorld(sim.WorldConfig{
			Agent:  pose.Pose{X: 1.23456, Y: 2},
			Target: kinematics.Static{Pose: pose.Pose{X: 9, Y: 9}},
		})
		store := pose.NewStore(pose.Pose{}, pose.Pose{})
		Expect(w.Publish(store)).To(Succeed())

		agent, target := store.Snapshot()
		Expect(agent.X).To(Equal(1.2346))
		Expect(target).To(Equal(pose.Pose{X: 9, Y: 9}))
	})
})

var _ = Describe("Simulator", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	It("captures a static target", func() {
		s := newTurtlesim(kinematics.Static{Pose: pose.Pose{X: 5.5, Y: 5.5}}, turtlesimGains)
		m := &countingMetric{}
		s.AddMetric(m)

		res, err := s.Run(ctx, sim.Config{Rate: 20, Duration: 10, ValidateState: true})
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Errors).To(BeEmpty())
		Expect(res.StepsTaken).To(Equal(200))
		Expect(res.Captured()).To(BeTrue())
		Expect(res.Metrics["count"]).To(Equal(200.0))

		last := res.Ticks[len(res.Ticks)-1]
		Expect(last.Mode).To(Equal(control.Holding))
		Expect(last.Command).To(Equal(control.Stop))
	})

	It("starts from the assumed target pose", func() {
		s := newTurtlesim(kinematics.Static{Pose: pose.Pose{X: 1, Y: 1}}, turtlesimGains)
		res, err := s.Run(ctx, sim.Config{Rate: 20, Duration: 0.1})
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Ticks[0].Target).To(Equal(pose.Pose{X: 5.5, Y: 5.5}))
		Expect(res.Ticks[1].Target).To(Equal(pose.Pose{X: 1, Y: 1}))
	})

	It("ends early on capture when asked", func() {
		s := newTurtlesim(kinematics.Static{Pose: pose.Pose{X: 5.5, Y: 5.5}}, turtlesimGains)
		res, err := s.Run(ctx, sim.Config{Rate: 20, Duration: 30, StopOnCapture: true})
		Expect(err).NotTo(HaveOccurred())
		Expect(res.StepsTaken).To(BeNumerically("<", 600))
		Expect(res.Ticks[len(res.Ticks)-1].Mode).To(Equal(control.Holding))
	})

	It("never stops for a target that outruns it", func() {
		fast := kinematics.Line{Start: pose.Pose{X: 5.5, Y: 5.5}, VX: 50}
		s := newTurtlesim(fast, control.Gains{Speed: 0.1, Angular: 5, Tolerance: 1})
		res, err := s.Run(ctx, sim.Config{Rate: 20, Duration: 2})
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Captured()).To(BeFalse())
	})

	It("rejects invalid configs", func() {
		s := newTurtlesim(nil, turtlesimGains)
		_, err := s.Run(ctx, sim.Config{Rate: 0, Duration: 1})
		Expect(err).To(MatchError(sim.ErrInvalidConfig))
		_, err = s.Run(ctx, sim.Config{Rate: 20, Duration: -1})
		Expect(err).To(MatchError(sim.ErrInvalidConfig))
	})

	It("stops on cancellation", func() {
		s := newTurtlesim(nil, turtlesimGains)
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		res, err := s.Run(cctx, sim.Config{Rate: 20, Duration: 1})
		Expect(err).To(MatchError(context.Canceled))
		Expect(res.StepsTaken).To(BeZero())
	})

	It("lets the callback end the run", func() {
		s := newTurtlesim(kinematics.Static{Pose: pose.Pose{X: 5.5, Y: 5.5}}, turtlesimGains)
		seen := 0
		err := s.RunWithCallback(ctx, sim.Config{Rate: 20, Duration: 5}, func(t sim.Tick) bool {
			seen++
			return t.Seq < 10
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(seen).To(Equal(10))
	})
})

var _ = Describe("Ensemble", func() {
	It("runs every job and keeps job order", func() {
		speeds := []float64{0.5, 1, 2, 4}
		jobs := make([]sim.Job, len(speeds))
		for i, k := range speeds {
			gains := control.Gains{Speed: k, Angular: 5, Tolerance: 1}
			jobs[i] = sim.Job{
				Name: fmt.Sprintf("k=%v", k),
				Build: func() (*sim.Simulator, error) {
					return newTurtlesim(kinematics.Static{Pose: pose.Pose{X: 5.5, Y: 5.5}}, gains), nil
				},
				Config: sim.Config{Rate: 20, Duration: 1},
			}
		}

		results, err := sim.NewEnsemble(2).Run(context.Background(), jobs)
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(4))
		for i, r := range results {
			Expect(r.Ticks[0].Command.Linear).To(BeNumerically("~", speeds[i]*2.1213, 1e-3))
		}
	})

	It("fails when a job cannot be built", func() {
		jobs := []sim.Job{{
			Name:   "broken",
			Build:  func() (*sim.Simulator, error) { return nil, fmt.Errorf("nope") },
			Config: sim.DefaultConfig(),
		}}
		_, err := sim.NewEnsemble(1).Run(context.Background(), jobs)
		Expect(err).To(MatchError(ContainSubstring("broken")))
	})
})
