package agent

import (
	"math/rand/v2"

	"github.com/kamstrup/intmap"
	"github.com/plus3/tetrisrl/tetris"
)

// Play is one recorded decision.
type Play struct {
	Previous tetris.Features
	Next     tetris.Features
	Reward   float64
	Action   tetris.ComposedAction
}

// Memory stores plays for replay. Implementations decide their own retention
// policy; the agent only appends and samples.
type Memory interface {
	Add(p Play)
	Len() int
	// Sample returns up to n distinct plays chosen uniformly at random.
	Sample(rng *rand.Rand, n int) []Play
}

// ReplayBuffer is an unbounded Memory. Plays are kept in insertion order for
// the lifetime of the buffer and sampling never removes them.
type ReplayBuffer struct {
	plays []Play
}

func NewReplayBuffer() *ReplayBuffer {
	return &ReplayBuffer{}
}

func (b *ReplayBuffer) Add(p Play) {
	b.plays = append(b.plays, p)
}

func (b *ReplayBuffer) Len() int {
	return len(b.plays)
}

// At returns the i-th play in insertion order.
func (b *ReplayBuffer) At(i int) Play {
	return b.plays[i]
}

// Sample draws min(n, Len) plays without replacement over the whole history
// using Floyd's algorithm, so the cost depends on n rather than Len. The
// batch is returned in random order.
func (b *ReplayBuffer) Sample(rng *rand.Rand, n int) []Play {
	total := len(b.plays)
	n = min(n, total)
	if n <= 0 {
		return nil
	}

	chosen := intmap.New[int, struct{}](n)
	out := make([]Play, 0, n)
	for j := total - n; j < total; j++ {
		idx := rng.IntN(j + 1)
		if _, taken := chosen.Get(idx); taken {
			idx = j
		}
		chosen.Put(idx, struct{}{})
		out = append(out, b.plays[idx])
	}
	rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}
