package sim

import (
	"context"
	"sync"
)

// Builder creates an independent simulator for one ensemble member.
type Builder func(seed uint64) (*Simulator, error)

// Ensemble runs independent simulations, one goroutine each, differing only
// in their seed. Each member owns its own particle system.
type Ensemble struct {
	build     Builder
	numRuns   int
	seedStart uint64
}

func NewEnsemble(build Builder, numRuns int, seedStart uint64) *Ensemble {
	return &Ensemble{build: build, numRuns: numRuns, seedStart: seedStart}
}

// Run executes every member headless for cfg and returns results in seed
// order.
func (e *Ensemble) Run(ctx context.Context, cfg RunConfig) ([]*Result, error) {
	results := make([]*Result, e.numRuns)
	errs := make([]error, e.numRuns)

	var wg sync.WaitGroup
	for i := 0; i < e.numRuns; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			s, err := e.build(e.seedStart + uint64(idx))
			if err != nil {
				errs[idx] = err
				return
			}
			results[idx], errs[idx] = s.Run(ctx, Discard, cfg)
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
