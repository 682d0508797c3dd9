// Package workerpool runs the coordinator's blocking pipeline stages
// (header parse, body parse, canonicalize, solve) on a bounded number of
// goroutines. Submission never blocks the coordinator: each job acquires
// its semaphore permit on its own goroutine, so a job that cannot acquire
// one yet simply waits its turn behind other jobs.
package workerpool

import (
	"context"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// Pool bounds concurrent execution of submitted jobs to a fixed weight.
type Pool struct {
	sem *semaphore.Weighted
	grp *errgroup.Group
	ctx context.Context
}

// New creates a Pool that runs at most parallelism jobs at once, all
// tracked by an errgroup rooted at ctx so Wait can join every job and
// report the first returned error. A job that panics is not recovered.
func New(ctx context.Context, parallelism int) *Pool {
	grp, gctx := errgroup.WithContext(ctx)
	return &Pool{
		sem: semaphore.NewWeighted(int64(parallelism)),
		grp: grp,
		ctx: gctx,
	}
}

// Submit runs fn on a pool goroutine once a permit is available. It
// returns immediately; the caller learns of fn's outcome only by calling
// Wait (typically at load's very end) or by fn's own side effects (for
// this coordinator, emitting a bus message).
func (p *Pool) Submit(fn func(ctx context.Context) error) {
	p.grp.Go(func() error {
		if err := p.sem.Acquire(p.ctx, 1); err != nil {
			return err
		}
		defer p.sem.Release(1)
		return fn(p.ctx)
	})
}

// Wait blocks until every submitted job has returned, surfacing the first
// error (including a panic recovered into an error by fn itself).
func (p *Pool) Wait() error {
	return p.grp.Wait()
}
