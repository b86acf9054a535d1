package sim

import (
	"context"
	"fmt"
	"runtime"
	"sync"
)

// Job builds a fresh simulator for one run. Simulators are not shared
// between goroutines, so each job constructs its own.
type Job struct {
	Name   string
	Build  func() (*Simulator, error)
	Config Config
}

type Ensemble struct {
	workers int
}

func NewEnsemble(workers int) *Ensemble {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Ensemble{workers: workers}
}

// Run executes jobs with at most workers in flight. Results are returned in
// job order.
func (e *Ensemble) Run(ctx context.Context, jobs []Job) ([]*Result, error) {
	results := make([]*Result, len(jobs))
	errs := make([]error, len(jobs))
	sem := make(chan struct{}, e.workers)

	var wg sync.WaitGroup
	for i := range jobs {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				errs[idx] = ctx.Err()
				return
			}
			defer func() { <-sem }()

			job := jobs[idx]
			s, err := job.Build()
			if err != nil {
				errs[idx] = fmt.Errorf("job %q: %w", job.Name, err)
				return
			}
			results[idx], errs[idx] = s.Run(ctx, job.Config)
		}(i)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return results, nil
}
