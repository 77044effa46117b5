package tetris

import (
	"math"
	"math/rand/v2"
)

// StepResult reports what a single tick did.
type StepResult uint8

const (
	// StepNormal means nothing locked this tick.
	StepNormal StepResult = iota
	// StepNewPiece means a piece locked and the next piece became active.
	StepNewPiece
	// StepGameOver means the next piece cannot be placed at spawn.
	StepGameOver
)

func (r StepResult) String() string {
	switch r {
	case StepNormal:
		return "Normal"
	case StepNewPiece:
		return "NewPiece"
	case StepGameOver:
		return "GameOver"
	default:
		return "Unknown"
	}
}

// TerminalReward replaces the shaped reward of a candidate whose resulting
// board cannot host the next piece.
const TerminalReward = -5.0

// Candidate is one enumerated macro-action with its one-step reward and the
// features of the board it leads to.
type Candidate struct {
	Action   ComposedAction
	Reward   float64
	Features Features
}

// Game is the puzzle state machine.
type Game struct {
	board  Board
	active Piece
	next   Piece
	score  int
	bag    *Bag

	lines   int
	locked  int
	cleared int
}

// NewGame returns a game on an empty board with the first two pieces drawn
// from a bag seeded by rng.
func NewGame(rng *rand.Rand) *Game {
	bag := NewBag(rng)
	return &Game{
		active: NewPiece(bag.Next()),
		next:   NewPiece(bag.Next()),
		bag:    bag,
	}
}

func (g *Game) Board() Board  { return g.board }
func (g *Game) Active() Piece { return g.active }
func (g *Game) Next() Piece   { return g.next }
func (g *Game) Score() int    { return g.score }

// Lines is the total number of rows cleared so far.
func (g *Game) Lines() int { return g.lines }

// Pieces is the number of pieces locked so far.
func (g *Game) Pieces() int { return g.locked }

// LastCleared is the number of rows the most recent lock cleared.
func (g *Game) LastCleared() int { return g.cleared }

// Level grows by one every ten points.
func (g *Game) Level() int {
	return g.score/10 + 1
}

// FallInterval is the gravity period in seconds for a level.
func FallInterval(level int) float64 {
	return 0.1 * math.Exp(float64(1-level)/3)
}

// Snapshot returns the board with the active piece drawn in. The game's own
// board is untouched.
func (g *Game) Snapshot() Board {
	return g.board.Integrate(g.active)
}

// Step applies one command. Moves that would collide are dropped silently.
func (g *Game) Step(c Command) StepResult {
	switch c {
	case CommandNone:
		p := g.active.Simulate(CommandDown)
		if g.board.IsValid(p) {
			g.active = p
			return StepNormal
		}
		rows := g.lock(g.active)
		g.score += rows + (rows%4)*10
		return g.promote()

	case CommandDown:
		rows := g.lock(g.board.HardDrop(g.active))
		g.score += rows + (rows/4)*10
		return g.promote()

	case CommandLeft, CommandRight, CommandRotate:
		if p := g.active.Simulate(c); g.board.IsValid(p) {
			g.active = p
		}
	}
	return StepNormal
}

func (g *Game) lock(p Piece) int {
	var rows int
	g.active = p
	g.board, rows = g.board.Integrate(p).ClearFullRows()
	g.lines += rows
	g.locked++
	g.cleared = rows
	return rows
}

func (g *Game) promote() StepResult {
	if !g.board.IsValid(g.next) {
		return StepGameOver
	}
	g.active = g.next
	g.next = NewPiece(g.bag.Next())
	return StepNewPiece
}

// PossibleActions enumerates every macro-action that can legally place the
// active piece, in rotation-ascending then shift-ascending order.
func (g *Game) PossibleActions() []Candidate {
	before := BuildFeatures(g.board)
	var out []Candidate
	for rotation := range g.active.NumRotations() {
		box := g.active.BoundingBox(g.active.rotation + rotation)
		lo := -g.active.column - box.MinX
		hi := Width - 1 - g.active.column - box.MaxX()
		for shift := lo; shift <= hi; shift++ {
			action := ComposedAction{Rotation: rotation, Shift: shift}
			if c, ok := g.simulate(action, before.MeanHeight); ok {
				out = append(out, c)
			}
		}
	}
	return out
}

func (g *Game) simulate(action ComposedAction, meanHeight float64) (Candidate, bool) {
	p := g.active.Apply(action)
	if !g.board.IsValid(p) {
		return Candidate{}, false
	}
	board, rows := g.board.Integrate(g.board.HardDrop(p)).ClearFullRows()
	f := BuildFeatures(board)
	reward := float64(rows) + meanHeight - f.MeanHeight
	if !board.IsValid(g.next) {
		f.Terminal = true
		reward = TerminalReward
	}
	return Candidate{Action: action, Reward: reward, Features: f}, true
}
