package storage

import (
	"sync"

	"github.com/san-kum/trampball/internal/sim"
)

// TraceRow is one ball's state at the end of one tick.
type TraceRow struct {
	Tick     int     `csv:"tick" json:"tick"`
	Time     float64 `csv:"time" json:"time"`
	Ball     int     `csv:"ball" json:"ball"`
	X        float64 `csv:"x" json:"x"`
	Y        float64 `csv:"y" json:"y"`
	VX       float64 `csv:"vx" json:"vx"`
	VY       float64 `csv:"vy" json:"vy"`
	Driven   bool    `csv:"driven" json:"driven"`
	SubSteps int     `csv:"sub_steps" json:"sub_steps"`
}

// Recorder is a sim.Observer that keeps a trace row per ball for every
// Every-th tick.
type Recorder struct {
	Every int

	mu   sync.Mutex
	rows []TraceRow
}

func NewRecorder(every int) *Recorder {
	if every < 1 {
		every = 1
	}
	return &Recorder{Every: every}
}

func (r *Recorder) OnTick(w *sim.World, tick int, t float64, stats sim.TickStats) {
	if tick%r.Every != 0 {
		return
	}
	balls := w.Balls()

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range balls {
		s := b.Snapshot()
		r.rows = append(r.rows, TraceRow{
			Tick:     tick,
			Time:     t,
			Ball:     int(s.ID),
			X:        s.Position.X,
			Y:        s.Position.Y,
			VX:       s.Velocity.X,
			VY:       s.Velocity.Y,
			Driven:   s.Driven,
			SubSteps: stats.SubSteps,
		})
	}
}

// Rows returns a copy of the recorded trace.
func (r *Recorder) Rows() []TraceRow {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]TraceRow(nil), r.rows...)
}

// Series extracts one ball's height and the matching times from rows.
func Series(rows []TraceRow, ball int) (times, heights []float64) {
	for _, row := range rows {
		if row.Ball == ball {
			times = append(times, row.Time)
			heights = append(heights, row.Y)
		}
	}
	return times, heights
}
