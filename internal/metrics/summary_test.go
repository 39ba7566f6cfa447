package metrics

import (
	"math"
	"testing"
)

func TestSummary(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   Stats
	}{
		{"empty", nil, Stats{}},
		{"single", []float64{3}, Stats{N: 1, Mean: 3, Min: 3, Max: 3}},
		{"four", []float64{4, 1, 3, 2}, Stats{N: 4, Mean: 2.5, StdDev: math.Sqrt(5.0 / 3), Min: 1, Max: 4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Summary(tt.values)
			if got.N != tt.want.N || got.Min != tt.want.Min || got.Max != tt.want.Max {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
			if math.Abs(got.Mean-tt.want.Mean) > 1e-12 || math.Abs(got.StdDev-tt.want.StdDev) > 1e-12 {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}
