package tetris_test

import (
	"testing"

	"github.com/plus3/tetrisrl/tetris"
	"github.com/stretchr/testify/assert"
)

func TestBagPermutations(t *testing.T) {
	bag := tetris.NewBag(newRand(3))

	for window := range 50 {
		seen := map[tetris.Kind]int{}
		for range tetris.NumKinds {
			k := bag.Next()
			assert.True(t, k.Valid())
			seen[k]++
		}
		assert.Len(t, seen, tetris.NumKinds, "window %d", window)
		for k, n := range seen {
			assert.Equal(t, 1, n, "kind %s in window %d", k, window)
		}
	}
}

func TestBagRepetitionBound(t *testing.T) {
	bag := tetris.NewBag(newRand(4))
	last := map[tetris.Kind]int{}

	for i := range 7 * 200 {
		k := bag.Next()
		if prev, ok := last[k]; ok {
			assert.LessOrEqual(t, i-prev, 2*tetris.NumKinds-1)
		}
		last[k] = i
	}
}

func TestBagSeeded(t *testing.T) {
	a := tetris.NewBag(newRand(5))
	b := tetris.NewBag(newRand(5))
	for range 30 {
		assert.Equal(t, a.Next(), b.Next())
	}
}
