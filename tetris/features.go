package tetris

// FeatureLength is the size of the vector fed to the value network.
const FeatureLength = 4

// Vector is the network input: mean height, bumpiness, total holes and a
// constant bias of 1.
type Vector [FeatureLength]float64

// Features describes a board. Only Vector is consumed by the learner; the
// per-column statistics are kept for inspection.
type Features struct {
	Heights     [Width]int
	HeightDiffs [Width - 1]int
	MaxHeight   int
	MeanHeight  float64
	Holes       [Width]int
	TotalHoles  int
	Bumpiness   int

	// Terminal is set when the board could not host the next piece.
	Terminal bool
}

// BuildFeatures computes the features of b. It is a pure function of the grid.
func BuildFeatures(b Board) Features {
	var f Features
	total := 0
	for x := range Width {
		occupied := false
		for y := Height - 1; y >= 0; y-- {
			switch {
			case b.cells[y][x] != 0:
				if !occupied {
					f.Heights[x] = y + 1
					occupied = true
				}
			case occupied:
				f.Holes[x]++
			}
		}
		f.TotalHoles += f.Holes[x]
		total += f.Heights[x]
		f.MaxHeight = max(f.MaxHeight, f.Heights[x])

		if x > 0 {
			d := f.Heights[x] - f.Heights[x-1]
			if d < 0 {
				d = -d
			}
			f.HeightDiffs[x-1] = d
			f.Bumpiness += d
		}
	}
	f.MeanHeight = float64(total) / Width
	return f
}

// Vector returns the network input for f.
func (f Features) Vector() Vector {
	return Vector{f.MeanHeight, float64(f.Bumpiness), float64(f.TotalHoles), 1}
}

// Slice is Vector as a freshly allocated slice.
func (v Vector) Slice() []float64 {
	s := make([]float64, FeatureLength)
	copy(s, v[:])
	return s
}
