package metrics

import (
	"log/slog"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Stats summarises a series of samples.
type Stats struct {
	N      int
	Mean   float64
	StdDev float64
	Min    float64
	Max    float64
}

// Summary computes descriptive statistics of values. An empty series gives
// the zero Stats.
func Summary(values []float64) Stats {
	if len(values) == 0 {
		return Stats{}
	}
	mean, std := stat.MeanStdDev(values, nil)
	if len(values) == 1 {
		std = 0
	}
	return Stats{
		N:      len(values),
		Mean:   mean,
		StdDev: std,
		Min:    floats.Min(values),
		Max:    floats.Max(values),
	}
}

// LogValue implements slog.LogValuer.
func (s Stats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("n", s.N),
		slog.Float64("mean", s.Mean),
		slog.Float64("stddev", s.StdDev),
		slog.Float64("min", s.Min),
		slog.Float64("max", s.Max),
	)
}
