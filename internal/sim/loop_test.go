package sim_test

import (
	"context"
	"errors"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/chaser/internal/control"
	"github.com/san-kum/chaser/internal/pose"
	"github.com/san-kum/chaser/internal/sim"
)

type recordingSink struct {
	mu   sync.Mutex
	cmds []control.Command
}

func (r *recordingSink) Send(cmd control.Command) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cmds = append(r.cmds, cmd)
	return nil
}

func (r *recordingSink) Commands() []control.Command {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]control.Command, len(r.cmds))
	copy(out, r.cmds)
	return out
}

var turtlesimGains = control.Gains{Speed: 1, Angular: 5, Tolerance: 1}

var _ = Describe("Loop", func() {
	var (
		store *pose.Store
		sink  *recordingSink
		loop  *sim.Loop
	)

	BeforeEach(func() {
		store = pose.NewStore(pose.Pose{X: 4, Y: 4}, pose.Pose{X: 5.5, Y: 5.5})
		sink = &recordingSink{}
		var err error
		loop, err = sim.NewLoop(store, control.NewPursuit(turtlesimGains), sink, sim.DefaultLoopConfig())
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("Step", func() {
		It("chases the assumed target and stops once it is reached", func() {
			tick := loop.Step(0)
			Expect(tick.Seq).To(Equal(uint64(1)))
			Expect(tick.Mode).To(Equal(control.Approaching))
			Expect(tick.Distance).To(BeNumerically("~", 2.1213, 1e-4))
			Expect(tick.Command.Linear).To(BeNumerically("~", 2.1213, 1e-4))
			Expect(tick.Command.Angular).To(BeNumerically("~", 3.9270, 1e-4))

			Expect(store.Update(pose.Target, pose.Pose{X: 4, Y: 4})).To(Succeed())

			tick = loop.Step(50 * time.Millisecond)
			Expect(tick.Mode).To(Equal(control.Holding))
			Expect(tick.Command).To(Equal(control.Stop))
			Expect(sink.Commands()).To(HaveLen(2))
		})

		It("emits the same command while the poses do not change", func() {
			first := loop.Step(0)
			for i := 0; i < 50; i++ {
				tick := loop.Step(0)
				Expect(tick.Command).To(Equal(first.Command))
			}
			Expect(loop.Ticks()).To(Equal(uint64(51)))
		})

		It("keeps ticking on the last known target when it goes stale", func() {
			Expect(store.Update(pose.Target, pose.Pose{X: 8, Y: 4})).To(Succeed())
			for i := 0; i < 20; i++ {
				Expect(store.Update(pose.Agent, pose.Pose{X: 4 + float64(i)*0.1, Y: 4})).To(Succeed())
				tick := loop.Step(0)
				Expect(tick.Target).To(Equal(pose.Pose{X: 8, Y: 4}))
				Expect(tick.Mode).To(Equal(control.Approaching))
			}
			Expect(sink.Commands()).To(HaveLen(20))
		})

		It("records sink failures without stopping", func() {
			boom := errors.New("boom")
			calls := 0
			failing := sim.SinkFunc(func(control.Command) error {
				calls++
				if calls == 1 {
					return boom
				}
				return nil
			})
			l, err := sim.NewLoop(store, control.NewPursuit(turtlesimGains), failing, sim.DefaultLoopConfig())
			Expect(err).NotTo(HaveOccurred())

			Expect(l.Step(0).SendErr).To(MatchError(boom))
			Expect(l.Step(0).SendErr).NotTo(HaveOccurred())
			Expect(calls).To(Equal(2))
		})

		It("feeds metrics and observers once per tick", func() {
			rec := sim.NewRecorder()
			loop.AddObserver(rec)
			for i := 0; i < 3; i++ {
				loop.Step(0)
			}
			Expect(rec.Len()).To(Equal(3))
			Expect(rec.Ticks()[2].Seq).To(Equal(uint64(3)))
		})
	})

	Describe("Run", func() {
		It("stops after MaxTicks", func() {
			l, err := sim.NewLoop(store, control.NewPursuit(turtlesimGains), sink, sim.LoopConfig{Rate: 1000, MaxTicks: 5})
			Expect(err).NotTo(HaveOccurred())
			Expect(l.Run(context.Background())).To(Succeed())
			Expect(sink.Commands()).To(HaveLen(5))
		})

		It("sends a final stop when configured", func() {
			l, err := sim.NewLoop(store, control.NewPursuit(turtlesimGains), sink,
				sim.LoopConfig{Rate: 1000, MaxTicks: 3, StopOnExit: true})
			Expect(err).NotTo(HaveOccurred())
			Expect(l.Run(context.Background())).To(Succeed())

			cmds := sink.Commands()
			Expect(cmds).To(HaveLen(4))
			Expect(cmds[3]).To(Equal(control.Stop))
		})

		It("runs an overrunning tick late without bursting to catch up", func() {
			var (
				mu    sync.Mutex
				stamp []time.Time
			)
			slow := sim.SinkFunc(func(control.Command) error {
				mu.Lock()
				stamp = append(stamp, time.Now())
				n := len(stamp)
				mu.Unlock()
				if n == 2 {
					time.Sleep(55 * time.Millisecond)
				}
				return nil
			})

			l, err := sim.NewLoop(store, control.NewPursuit(turtlesimGains), slow, sim.LoopConfig{Rate: 100, MaxTicks: 6})
			Expect(err).NotTo(HaveOccurred())
			Expect(l.Run(context.Background())).To(Succeed())

			mu.Lock()
			defer mu.Unlock()
			Expect(stamp).To(HaveLen(6))
			Expect(stamp[2].Sub(stamp[1])).To(BeNumerically(">=", 55*time.Millisecond))
			for i := 3; i < len(stamp); i++ {
				Expect(stamp[i].Sub(stamp[i-1])).To(BeNumerically(">=", 7*time.Millisecond),
					"gap before tick %d", i+1)
			}
		})

		It("returns cleanly when the context is cancelled", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
			defer cancel()

			l, err := sim.NewLoop(store, control.NewPursuit(turtlesimGains), sink, sim.LoopConfig{Rate: 100})
			Expect(err).NotTo(HaveOccurred())
			Expect(l.Run(ctx)).To(Succeed())
			Expect(len(sink.Commands())).To(BeNumerically(">=", 1))
		})

		It("does not tick at all on an already cancelled context", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			l, err := sim.NewLoop(store, control.NewPursuit(turtlesimGains), sink, sim.LoopConfig{Rate: 20})
			Expect(err).NotTo(HaveOccurred())
			Expect(l.Run(ctx)).To(Succeed())
			Expect(sink.Commands()).To(BeEmpty())
		})
	})

	It("rejects a non-positive rate", func() {
		_, err := sim.NewLoop(store, control.NewPursuit(turtlesimGains), sink, sim.LoopConfig{Rate: 0})
		Expect(err).To(MatchError(sim.ErrInvalidConfig))
	})
})

var _ = Describe("Tee", func() {
	It("sends to every sink and joins errors", func() {
		a, b := &recordingSink{}, &recordingSink{}
		boom := errors.New("boom")
		tee := sim.Tee{a, sim.SinkFunc(func(control.Command) error { return boom }), b}

		err := tee.Send(control.Command{Linear: 1})
		Expect(err).To(MatchError(boom))
		Expect(a.Commands()).To(HaveLen(1))
		Expect(b.Commands()).To(HaveLen(1))
	})
})
