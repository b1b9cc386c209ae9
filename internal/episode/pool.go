package episode

import (
	"context"
	"log/slog"
	"sync"

	"github.com/tonypeng1/moomoo/internal/recognize"
	"github.com/tonypeng1/moomoo/internal/variant"
)

// fanOut runs every variant × recognizer pair through a bounded
// worker pool and reassembles results in job order, so the hit slice
// (and with it finding provenance) is deterministic regardless of
// which worker finishes first. A recognizer failure contributes zero
// hits and a warning, never a cycle failure.
func (c *Controller) fanOut(ctx context.Context, variants []variant.Variant) []recognize.Hit {
	type job struct {
		idx int
		v   variant.Variant
		r   recognize.Recognizer
	}

	jobs := make([]job, 0, len(variants)*len(c.recognizer))
	for _, v := range variants {
		for _, r := range c.recognizer {
			jobs = append(jobs, job{idx: len(jobs), v: v, r: r})
		}
	}
	if len(jobs) == 0 {
		return nil
	}

	workers := min(c.opts.Concurrency, len(jobs))
	jobCh := make(chan job)
	results := make([][]recognize.Hit, len(jobs))

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobCh {
				hits, err := j.r.Recognize(ctx, j.v, c.opts.Terms)
				if err != nil {
					slog.Warn("recognizer failed",
						"kind", j.r.Kind(), "variant", j.v.Name, "error", err)
					continue
				}
				results[j.idx] = hits
			}
		}()
	}
	for _, j := range jobs {
		jobCh <- j
	}
	close(jobCh)
	wg.Wait()

	var hits []recognize.Hit
	for _, r := range results {
		hits = append(hits, r...)
	}
	return hits
}
