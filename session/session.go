// Package session drives a Game with an Agent in simulated real time. A
// Scheduler runs the decision, control and gravity systems once per frame and
// the session restarts the game whenever it ends, so training runs for as
// many episodes as the caller asks for.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/plus3/tetrisrl/agent"
	"github.com/plus3/tetrisrl/tetris"
	"github.com/sirupsen/logrus"
)

// ErrInvalidConfig is returned by Config.Validate.
var ErrInvalidConfig = errors.New("session: invalid config")

// minFrameDelta is one nanosecond, the finest tick a realtime run can pace.
const minFrameDelta = 1e-9

type Config struct {
	// FrameDelta is the simulated time per frame in seconds.
	FrameDelta float64
	Agent      agent.Config
}

func DefaultConfig() Config {
	return Config{
		FrameDelta: 1.0 / 60,
		Agent:      agent.DefaultConfig(),
	}
}

func (c Config) Validate() error {
	if !(c.FrameDelta >= minFrameDelta) || math.IsInf(c.FrameDelta, 1) {
		return fmt.Errorf("%w: frame delta %v must be at least %v", ErrInvalidConfig, c.FrameDelta, minFrameDelta)
	}
	return c.Agent.Validate()
}

// Option customises a Session.
type Option func(*Session)

// WithLogger sets the logger. Sessions are silent by default.
func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Session) { s.log = l }
}

// Session owns one agent and the game it is currently playing. It is not safe
// for concurrent use.
type Session struct {
	id        uuid.UUID
	cfg       Config
	rng       *rand.Rand
	log       logrus.FieldLogger
	agent     *agent.Agent
	game      *tetris.Game
	scheduler *Scheduler
	stats     *Stats

	action       tetris.ComposedAction
	pending      bool
	fall         float64
	episodeStart int64
}

// New builds a session with a fresh agent. All randomness, for the agent and
// for every game it plays, comes from rng.
func New(cfg Config, rng *rand.Rand, opts ...Option) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	a, err := agent.New(cfg.Agent, rng)
	if err != nil {
		return nil, err
	}

	discard := logrus.New()
	discard.SetOutput(io.Discard)

	s := &Session{
		id:        uuid.New(),
		cfg:       cfg,
		rng:       rng,
		log:       discard,
		agent:     a,
		scheduler: NewScheduler(),
		stats:     newStats(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.WithField("run", s.id.String())

	s.scheduler.Register(&DecisionSystem{Session: s})
	s.scheduler.Register(&ControlSystem{Session: s})
	s.scheduler.Register(&GravitySystem{Session: s})
	s.reset(0)
	return s, nil
}

func (s *Session) ID() uuid.UUID                 { return s.id }
func (s *Session) Config() Config                { return s.cfg }
func (s *Session) Agent() *agent.Agent           { return s.agent }
func (s *Session) Game() *tetris.Game            { return s.game }
func (s *Session) Scheduler() *Scheduler         { return s.scheduler }
func (s *Session) Stats() *Stats                 { return s.stats }
func (s *Session) Action() tetris.ComposedAction { return s.action }

// Pending reports whether the active piece still waits for a decision.
func (s *Session) Pending() bool { return s.pending }

// Step advances one frame of FrameDelta seconds.
func (s *Session) Step() {
	s.scheduler.Once(s.cfg.FrameDelta)
}

// RunFrames advances n frames or until ctx is done.
func (s *Session) RunFrames(ctx context.Context, n int) error {
	for range n {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.Step()
	}
	return nil
}

// RunEpisodes advances until n more episodes have finished or ctx is done.
func (s *Session) RunEpisodes(ctx context.Context, n int) error {
	target := len(s.stats.Episodes) + n
	for len(s.stats.Episodes) < target {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.Step()
	}
	return nil
}

// RunRealtime steps on a wall-clock ticker until ctx is done. Frame deltas
// are measured rather than taken from the config.
func (s *Session) RunRealtime(ctx context.Context, interval time.Duration) {
	s.scheduler.Run(ctx, interval)
}

// apply reacts to the result of a game step taken during frame.
func (s *Session) apply(res tetris.StepResult, frame *Frame) {
	switch res {
	case tetris.StepNewPiece:
		s.stats.recordLock(s.game.LastCleared())
		s.stats.recordSpawn(s.game.Active().Kind())
		s.action = tetris.ComposedAction{}
		s.pending = true
	case tetris.StepGameOver:
		s.stats.recordLock(s.game.LastCleared())
		s.finishEpisode(frame)
	}
}

func (s *Session) finishEpisode(frame *Frame) {
	e := Episode{
		Number: len(s.stats.Episodes) + 1,
		Score:  s.game.Score(),
		Lines:  s.game.Lines(),
		Pieces: s.game.Pieces(),
		Frames: frame.Index - s.episodeStart + 1,
	}
	s.stats.Episodes = append(s.stats.Episodes, e)
	s.log.WithFields(logrus.Fields{
		"episode": e.Number,
		"score":   e.Score,
		"lines":   e.Lines,
		"pieces":  e.Pieces,
		"frames":  e.Frames,
	}).Info("episode finished")
	s.reset(frame.Index + 1)
}

// reset starts a new game whose first frame is start.
func (s *Session) reset(start int64) {
	s.game = tetris.NewGame(s.rng)
	s.action = tetris.ComposedAction{}
	s.pending = true
	s.fall = 0
	s.episodeStart = start
	s.stats.recordSpawn(s.game.Active().Kind())
}
