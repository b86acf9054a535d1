package sim

import (
	"log"
	"sync"
)

// Recorder keeps every tick it observes.
type Recorder struct {
	mu    sync.Mutex
	ticks []Tick
}

func NewRecorder() *Recorder {
	return &Recorder{ticks: make([]Tick, 0, 256)}
}

func (r *Recorder) OnTick(t Tick) {
	r.mu.Lock()
	r.ticks = append(r.ticks, t)
	r.mu.Unlock()
}

func (r *Recorder) Ticks() []Tick {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Tick, len(r.ticks))
	copy(out, r.ticks)
	return out
}

func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.ticks)
}

// LogObserver prints every nth tick, and every mode change.
func LogObserver(lg *log.Logger, every uint64) Observer {
	if every == 0 {
		every = 1
	}
	var last Tick
	return ObserverFunc(func(t Tick) {
		changed := last.Seq != 0 && last.Mode != t.Mode
		last = t
		if t.Seq%every != 0 && !changed && t.Seq != 1 {
			return
		}
		lg.Printf("tick %d %s agent=%s target=%s d=%.4f cmd=%s",
			t.Seq, t.Mode, t.Agent, t.Target, t.Distance, t.Command)
	})
}
