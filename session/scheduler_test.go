package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/plus3/tetrisrl/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSystem struct {
	name   string
	log    *[]string
	deltas []float64
	frames []int64
}

func (r *recordingSystem) Execute(frame *session.Frame) {
	*r.log = append(*r.log, r.name)
	r.deltas = append(r.deltas, frame.DeltaTime)
	r.frames = append(r.frames, frame.Index)
}

type CountingSystem struct {
	Count int
}

func (c *CountingSystem) Execute(*session.Frame) { c.Count++ }

func TestScheduler(t *testing.T) {
	t.Run("registration order", func(t *testing.T) {
		var order []string
		s := session.NewScheduler()
		first := &recordingSystem{name: "first", log: &order}
		second := &recordingSystem{name: "second", log: &order}
		s.Register(first)
		s.Register(second)

		s.Once(0.5)
		s.Once(0.25)

		assert.Equal(t, []string{"first", "second", "first", "second"}, order)
		assert.Equal(t, []float64{0.5, 0.25}, second.deltas)
		assert.Equal(t, []int64{0, 1}, first.frames)
	})

	t.Run("stats", func(t *testing.T) {
		s := session.NewScheduler()
		counter := &CountingSystem{}
		s.Register(counter)
		s.Register(&CountingSystem{})

		empty := s.Stats()
		require.Len(t, empty.Systems, 2)
		assert.Zero(t, empty.Systems[0].MinDuration)
		assert.Zero(t, empty.Frames)

		for range 5 {
			s.Once(1)
		}

		stats := s.Stats()
		assert.Equal(t, 5, counter.Count)
		assert.Equal(t, int64(5), stats.Frames)
		assert.Equal(t, int64(10), stats.TotalExecutions)
		for _, sys := range stats.Systems {
			assert.Equal(t, "CountingSystem", sys.Name)
			assert.Equal(t, int64(5), sys.ExecutionCount)
			assert.LessOrEqual(t, sys.MinDuration, sys.AvgDuration)
			assert.LessOrEqual(t, sys.AvgDuration, sys.MaxDuration)
		}
	})

	t.Run("run stops on cancellation", func(t *testing.T) {
		s := session.NewScheduler()
		counter := &CountingSystem{}
		s.Register(counter)

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		go func() {
			s.Run(ctx, time.Millisecond)
			close(done)
		}()

		time.Sleep(20 * time.Millisecond)
		cancel()

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("scheduler did not stop after context cancellation")
		}
		assert.Positive(t, counter.Count)
	})
}
