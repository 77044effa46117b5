package tetris

import "math/rand/v2"

// Bag deals piece kinds from shuffled permutations of all seven kinds. Every
// bag-aligned window of seven draws holds each kind exactly once.
type Bag struct {
	rng    *rand.Rand
	kinds  [NumKinds]Kind
	cursor int
}

// NewBag returns a bag with a freshly shuffled permutation.
func NewBag(rng *rand.Rand) *Bag {
	b := &Bag{rng: rng}
	for i := range b.kinds {
		b.kinds[i] = Kind(i + 1)
	}
	b.shuffle()
	return b
}

func (b *Bag) shuffle() {
	b.rng.Shuffle(len(b.kinds), func(i, j int) {
		b.kinds[i], b.kinds[j] = b.kinds[j], b.kinds[i]
	})
	b.cursor = 0
}

// Next returns the kind under the cursor and advances it, reshuffling once
// the permutation is exhausted.
func (b *Bag) Next() Kind {
	k := b.kinds[b.cursor]
	b.cursor++
	if b.cursor == len(b.kinds) {
		b.shuffle()
	}
	return k
}
