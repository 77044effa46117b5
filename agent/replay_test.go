package agent_test

import (
	"math/rand/v2"
	"testing"

	"github.com/plus3/tetrisrl/agent"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed*31+7))
}

func filledBuffer(n int) *agent.ReplayBuffer {
	b := agent.NewReplayBuffer()
	for i := range n {
		b.Add(agent.Play{Reward: float64(i)})
	}
	return b
}

func TestReplayBufferAdd(t *testing.T) {
	b := filledBuffer(5)
	assert.Equal(t, 5, b.Len())
	for i := range 5 {
		assert.Equal(t, float64(i), b.At(i).Reward)
	}
}

func TestReplayBufferSample(t *testing.T) {
	rng := newRand(1)

	t.Run("distinct plays", func(t *testing.T) {
		b := filledBuffer(100)
		for range 100 {
			batch := b.Sample(rng, 32)
			require.Len(t, batch, 32)
			seen := map[float64]bool{}
			for _, p := range batch {
				assert.False(t, seen[p.Reward], "play %v sampled twice", p.Reward)
				seen[p.Reward] = true
			}
		}
	})

	t.Run("clamped to history", func(t *testing.T) {
		b := filledBuffer(3)
		assert.Len(t, b.Sample(rng, 10), 3)
		assert.Nil(t, agent.NewReplayBuffer().Sample(rng, 4))
		assert.Nil(t, b.Sample(rng, 0))
	})

	t.Run("read only", func(t *testing.T) {
		b := filledBuffer(50)
		for range 20 {
			b.Sample(rng, 10)
		}
		assert.Equal(t, 50, b.Len())
		for i := range 50 {
			assert.Equal(t, float64(i), b.At(i).Reward)
		}
	})

	t.Run("uniform order", func(t *testing.T) {
		const size, rounds = 8, 40000
		b := filledBuffer(size)
		first := make([]int, size)
		for range rounds {
			batch := b.Sample(rng, size)
			first[int(batch[0].Reward)]++
		}
		for i, n := range first {
			assert.InEpsilon(t, float64(rounds)/size, float64(n), 0.08, "index %d leads the batch", i)
		}
	})

	t.Run("uniform over the whole history", func(t *testing.T) {
		const size, batch, rounds = 40, 8, 20000
		b := filledBuffer(size)
		counts := make([]int, size)
		for range rounds {
			for _, p := range b.Sample(rng, batch) {
				counts[int(p.Reward)]++
			}
		}
		want := float64(rounds*batch) / size
		for i, n := range counts {
			assert.InEpsilon(t, want, float64(n), 0.08, "index %d", i)
		}
	})
}
