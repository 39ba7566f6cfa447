package sim

import (
	"context"
	"testing"
)

func TestEnsembleRun(t *testing.T) {
	worlds := []*World{freeFallWorld(), freeFallWorld(), freeFallWorld()}
	e := NewEnsemble(worlds, func() []Metric { return []Metric{&testMetric{}} }, quietLogger())

	results, err := e.Run(context.Background(), Config{IntervalMs: 10, Duration: 0.5})
	if err != nil {
		t.Fatalf("ensemble failed: %v", err)
	}
	if len(results) != len(worlds) {
		t.Fatalf("expected %d results, got %d", len(worlds), len(results))
	}
	for i, res := range results {
		if res.Ticks != 50 {
			t.Errorf("world %d: expected 50 ticks, got %d", i, res.Ticks)
		}
		if _, ok := res.Metrics["test"]; !ok {
			t.Errorf("world %d: metric missing", i)
		}
	}

	first := worlds[0].Balls()[0].Position()
	for i, w := range worlds[1:] {
		if got := w.Balls()[0].Position(); got != first {
			t.Errorf("world %d diverged: %v vs %v", i+1, got, first)
		}
	}
}

func TestEnsembleInvalidConfig(t *testing.T) {
	e := NewEnsemble([]*World{NewWorld()}, nil, quietLogger())
	if _, err := e.Run(context.Background(), Config{}); err == nil {
		t.Error("expected error for zero config")
	}
}
