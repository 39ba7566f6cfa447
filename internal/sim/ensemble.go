package sim

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// Ensemble runs independent worlds side by side, one goroutine each. No
// entity may be shared between the worlds.
type Ensemble struct {
	worlds  []*World
	metrics func() []Metric
	log     *slog.Logger
}

// NewEnsemble prepares a run over worlds. metrics, if non-nil, builds a
// fresh metric set for each world.
func NewEnsemble(worlds []*World, metrics func() []Metric, log *slog.Logger) *Ensemble {
	if log == nil {
		log = slog.Default()
	}
	return &Ensemble{worlds: worlds, metrics: metrics, log: log}
}

// Run returns one Result per world, in the order the worlds were given.
func (e *Ensemble) Run(ctx context.Context, cfg Config) ([]*Result, error) {
	results := make([]*Result, len(e.worlds))
	errs := make([]error, len(e.worlds))

	var wg sync.WaitGroup
	for i, w := range e.worlds {
		wg.Add(1)
		go func(idx int, w *World) {
			defer wg.Done()

			r := NewRunner(w, e.log.With("world", idx))
			if e.metrics != nil {
				for _, m := range e.metrics() {
					r.AddMetric(m)
				}
			}
			results[idx], errs[idx] = r.Run(ctx, cfg)
		}(i, w)
	}

	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("world %d: %w", i, err)
		}
	}

	return results, nil
}
