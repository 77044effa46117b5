package session

import (
	"context"
	"reflect"
	"time"
)

// System is one stage of a frame.
type System interface {
	Execute(frame *Frame)
}

// Frame carries the per-tick data handed to every system.
type Frame struct {
	// DeltaTime is the simulated time since the previous frame, in seconds.
	DeltaTime float64
	// Index counts frames from zero.
	Index int64
}

// SchedulerStats provides statistics about scheduler execution.
type SchedulerStats struct {
	Frames          int64
	TotalExecutions int64
	Systems         []SystemStats
}

// SystemStats provides execution statistics for a single system.
type SystemStats struct {
	Name           string
	ExecutionCount int64
	MinDuration    time.Duration
	MaxDuration    time.Duration
	AvgDuration    time.Duration
	LastDuration   time.Duration
	TotalDuration  time.Duration
}

type systemTiming struct {
	name  string
	count int64
	min   time.Duration
	max   time.Duration
	total time.Duration
	last  time.Duration
}

func (st *systemTiming) observe(d time.Duration) {
	st.count++
	st.last = d
	st.total += d
	st.min = min(st.min, d)
	st.max = max(st.max, d)
}

// Scheduler runs its systems in registration order, once per frame.
type Scheduler struct {
	systems []System
	timings []*systemTiming
	frames  int64
}

func NewScheduler() *Scheduler {
	return &Scheduler{}
}

// Register appends a system. Its stats are reported under the system's type
// name.
func (s *Scheduler) Register(system System) {
	t := reflect.TypeOf(system)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	s.systems = append(s.systems, system)
	s.timings = append(s.timings, &systemTiming{
		name: t.Name(),
		min:  time.Duration(1<<63 - 1),
	})
}

// Once executes all registered systems once with the given delta time.
func (s *Scheduler) Once(dt float64) {
	frame := &Frame{DeltaTime: dt, Index: s.frames}
	for i, system := range s.systems {
		start := time.Now()
		system.Execute(frame)
		s.timings[i].observe(time.Since(start))
	}
	s.frames++
}

// Run executes all systems at the given wall-clock interval until the context
// is cancelled. Intervals below one nanosecond run at one nanosecond.
func (s *Scheduler) Run(ctx context.Context, interval time.Duration) {
	interval = max(interval, time.Nanosecond)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			dt := now.Sub(last).Seconds()
			last = now
			s.Once(dt)
		}
	}
}

func (s *Scheduler) Stats() *SchedulerStats {
	stats := &SchedulerStats{
		Frames:  s.frames,
		Systems: make([]SystemStats, len(s.timings)),
	}
	for i, st := range s.timings {
		var avg time.Duration
		minimum := st.min
		if st.count > 0 {
			avg = st.total / time.Duration(st.count)
		} else {
			minimum = 0
		}
		stats.Systems[i] = SystemStats{
			Name:           st.name,
			ExecutionCount: st.count,
			MinDuration:    minimum,
			MaxDuration:    st.max,
			AvgDuration:    avg,
			LastDuration:   st.last,
			TotalDuration:  st.total,
		}
		stats.TotalExecutions += st.count
	}
	return stats
}
