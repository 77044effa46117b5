package session

import (
	"github.com/plus3/tetrisrl/tetris"
	"github.com/sirupsen/logrus"
)

// DecisionSystem asks the agent for a placement when a new piece is waiting
// for one.
type DecisionSystem struct {
	Session *Session
}

func (d *DecisionSystem) Execute(frame *Frame) {
	s := d.Session
	if !s.pending {
		return
	}
	s.pending = false

	g := s.game
	action, err := s.agent.TDLearning(tetris.BuildFeatures(g.Board()), g.PossibleActions())
	if err != nil {
		s.log.WithError(err).WithField("piece", g.Active().Kind().String()).Warn("no placement for active piece")
		s.action = tetris.ComposedAction{}
		return
	}
	s.action = action
	s.stats.Decisions++

	a := s.agent
	s.log.WithFields(logrus.Fields{
		"frame":       frame.Index,
		"piece":       g.Active().Kind().String(),
		"action":      action.String(),
		"exploration": a.ExplorationRate(),
		"learning":    a.LearningRate(),
		"iteration":   a.Iteration(),
	}).Debug("decision")
}

// ControlSystem plays the pending macro-action one command per frame. Once
// the macro-action is spent it steps with CommandNone, pulling the piece down
// a row each frame.
type ControlSystem struct {
	Session *Session
}

func (c *ControlSystem) Execute(frame *Frame) {
	s := c.Session
	cmd, rest := s.action.Decompose()
	s.action = rest
	s.apply(s.game.Step(cmd), frame)
}

// GravitySystem accumulates frame time and pulls the active piece down one
// row each time the level's fall interval elapses.
type GravitySystem struct {
	Session *Session
}

func (g *GravitySystem) Execute(frame *Frame) {
	s := g.Session
	s.fall += frame.DeltaTime
	if s.fall < tetris.FallInterval(s.game.Level()) {
		return
	}
	s.fall = 0
	s.apply(s.game.Step(tetris.CommandNone), frame)
}
