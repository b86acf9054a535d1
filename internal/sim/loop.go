package sim

import (
	"context"
	"log"
	"time"

	"github.com/san-kum/chaser/internal/control"
)

// Loop is the fixed-rate pursuit control loop. Each tick reads one pose
// snapshot, evaluates the law once and sends one command. A Loop is not
// safe for concurrent use; Step and Run must not overlap.
type Loop struct {
	reader    PoseReader
	law       *control.Pursuit
	sink      Sink
	cfg       LoopConfig
	metrics   []Metric
	observers []Observer
	logger    *log.Logger
	seq       uint64
}

func NewLoop(reader PoseReader, law *control.Pursuit, sink Sink, cfg LoopConfig) (*Loop, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Loop{
		reader:    reader,
		law:       law,
		sink:      sink,
		cfg:       cfg,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
	}, nil
}

func (l *Loop) AddMetric(m Metric)       { l.metrics = append(l.metrics, m) }
func (l *Loop) AddObserver(o Observer)   { l.observers = append(l.observers, o) }
func (l *Loop) SetLogger(lg *log.Logger) { l.logger = lg }
func (l *Loop) Law() *control.Pursuit    { return l.law }
func (l *Loop) Ticks() uint64            { return l.seq }

// Step runs one tick. elapsed is stamped on the returned Tick.
func (l *Loop) Step(elapsed time.Duration) Tick {
	agent, target := l.reader.Snapshot()
	ev := l.law.Evaluate(agent, target)
	l.seq++

	tick := Tick{
		Seq:        l.seq,
		Elapsed:    elapsed,
		Agent:      agent,
		Target:     target,
		Evaluation: ev,
	}
	if err := l.sink.Send(ev.Command); err != nil {
		tick.SendErr = err
		l.logf("tick %d: send %v: %v", tick.Seq, ev.Command, err)
	}

	for _, m := range l.metrics {
		m.Observe(tick)
	}
	for _, o := range l.observers {
		o.OnTick(tick)
	}
	return tick
}

// Run ticks at the configured rate until ctx ends or MaxTicks is reached.
// A tick that overruns its period makes the next one start late; missed
// deadlines are not made up with extra ticks. Shutdown is not an error.
func (l *Loop) Run(ctx context.Context) error {
	period := l.cfg.Period()
	start := time.Now()
	next := start

	timer := time.NewTimer(period)
	defer timer.Stop()

	var n uint64
	for {
		select {
		case <-ctx.Done():
			l.shutdown()
			return nil
		default:
		}

		l.Step(time.Since(start))
		n++
		if l.cfg.MaxTicks > 0 && n >= l.cfg.MaxTicks {
			l.shutdown()
			return nil
		}

		next = next.Add(period)
		wait := time.Until(next)
		if wait <= 0 {
			next = time.Now()
			continue
		}

		timer.Reset(wait)
		select {
		case <-ctx.Done():
			l.shutdown()
			return nil
		case <-timer.C:
		}
	}
}

func (l *Loop) shutdown() {
	if !l.cfg.StopOnExit {
		return
	}
	if err := l.sink.Send(control.Stop); err != nil {
		l.logf("final stop: %v", err)
	}
}

func (l *Loop) logf(format string, args ...any) {
	if l.logger != nil {
		l.logger.Printf(format, args...)
	}
}
