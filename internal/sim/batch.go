package sim

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Job builds a fresh simulator for one run of a batch.
type Job struct {
	Name  string
	Build func() (*Simulator, Config, error)
}

// RunBatch runs independent jobs concurrently and returns their results in
// job order. The first error cancels the remaining jobs.
func RunBatch(ctx context.Context, jobs []Job) ([]*Result, error) {
	results := make([]*Result, len(jobs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, job := range jobs {
		g.Go(func() error {
			s, cfg, err := job.Build()
			if err != nil {
				return err
			}
			res, err := s.Run(ctx, cfg)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
