package session

import (
	"github.com/kamstrup/intmap"
	"github.com/plus3/tetrisrl/tetris"
)

// Episode summarises one finished game.
type Episode struct {
	Number int
	Score  int
	Lines  int
	Pieces int
	Frames int64
}

// Stats accumulates training progress across episodes.
type Stats struct {
	Episodes  []Episode
	Decisions int
	Locks     int

	cleared *intmap.Map[int, int]
	kinds   *intmap.Map[int, int]
}

func newStats() *Stats {
	return &Stats{
		cleared: intmap.New[int, int](5),
		kinds:   intmap.New[int, int](tetris.NumKinds),
	}
}

func (s *Stats) recordLock(rows int) {
	s.Locks++
	n, _ := s.cleared.Get(rows)
	s.cleared.Put(rows, n+1)
}

func (s *Stats) recordSpawn(k tetris.Kind) {
	n, _ := s.kinds.Get(int(k))
	s.kinds.Put(int(k), n+1)
}

// Cleared returns how many locks cleared exactly rows rows.
func (s *Stats) Cleared(rows int) int {
	n, _ := s.cleared.Get(rows)
	return n
}

// Spawned returns how many pieces of kind k became active.
func (s *Stats) Spawned(k tetris.Kind) int {
	n, _ := s.kinds.Get(int(k))
	return n
}

// BestScore is the highest score over finished episodes.
func (s *Stats) BestScore() int {
	best := 0
	for _, e := range s.Episodes {
		best = max(best, e.Score)
	}
	return best
}

// MeanScore averages the last window finished episodes, or all of them when
// window is not positive.
func (s *Stats) MeanScore(window int) float64 {
	eps := s.Episodes
	if window > 0 && len(eps) > window {
		eps = eps[len(eps)-window:]
	}
	if len(eps) == 0 {
		return 0
	}
	total := 0
	for _, e := range eps {
		total += e.Score
	}
	return float64(total) / float64(len(eps))
}

// TotalLines sums the rows cleared over finished episodes.
func (s *Stats) TotalLines() int {
	total := 0
	for _, e := range s.Episodes {
		total += e.Lines
	}
	return total
}
