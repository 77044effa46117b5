package tetris

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// wellGame returns a game whose bottom rows are full except for the rightmost
// column, with a vertical I piece hovering over that well.
func wellGame(rows int) *Game {
	g := NewGame(rand.New(rand.NewPCG(1, 2)))
	for y := range rows {
		for x := range Width - 1 {
			g.board = g.board.With(x, y, uint8(KindZ))
		}
	}
	g.active = NewPiece(KindI).Apply(ComposedAction{Rotation: 1, Shift: 4})
	return g
}

func TestScoring(t *testing.T) {
	tests := []struct {
		name  string
		rows  int
		cmd   Command
		score int
	}{
		{"hard drop single", 1, CommandDown, 1},
		{"hard drop tetris", 4, CommandDown, 14},
		{"gravity single", 1, CommandNone, 11},
		{"gravity double", 2, CommandNone, 22},
		{"gravity tetris", 4, CommandNone, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := wellGame(tt.rows)
			res := g.Step(tt.cmd)
			for res == StepNormal {
				res = g.Step(tt.cmd)
			}
			require.Equal(t, StepNewPiece, res)
			assert.Equal(t, tt.score, g.score)
			assert.Equal(t, tt.rows, g.Lines())
			assert.Equal(t, tt.rows, g.LastCleared())
			assert.Equal(t, 1, g.Pieces())
			for y := range Height {
				assert.False(t, g.board.IsRowFull(y))
			}
		})
	}
}

func TestGameOver(t *testing.T) {
	g := NewGame(rand.New(rand.NewPCG(3, 4)))
	for y := Height - 4; y < Height; y++ {
		for x := range Width - 1 {
			g.board = g.board.With(x, y, uint8(KindT))
		}
	}
	g.active = NewPiece(KindI).Apply(ComposedAction{Rotation: 1, Shift: 4})
	require.True(t, g.board.IsValid(g.active))

	next := g.next
	assert.Equal(t, StepGameOver, g.Step(CommandDown))
	assert.Equal(t, next, g.next, "next piece is not promoted on game over")
}

func TestTerminalCandidate(t *testing.T) {
	g := NewGame(rand.New(rand.NewPCG(5, 6)))
	// a single cell inside the O spawn footprint that no placement can clear
	g.board = Board{}.With(4, Height-2, uint8(KindS))
	g.active = NewPiece(KindI)
	g.next = NewPiece(KindO)

	candidates := g.PossibleActions()
	require.NotEmpty(t, candidates)
	for _, c := range candidates {
		assert.True(t, c.Features.Terminal, "action %s", c.Action)
		assert.Equal(t, TerminalReward, c.Reward)
	}
}

func TestPossibleActionCounts(t *testing.T) {
	tests := []struct {
		kind Kind
		want int
	}{
		{KindI, 7 + 10 + 7 + 10},
		{KindO, 9},
		{KindT, 8 + 9 + 8 + 9},
		{KindS, 8 + 9 + 8 + 9},
	}

	for _, tt := range tests {
		g := NewGame(rand.New(rand.NewPCG(7, 8)))
		g.active = NewPiece(tt.kind)
		assert.Len(t, g.PossibleActions(), tt.want, "kind %s", tt.kind)
	}
}
