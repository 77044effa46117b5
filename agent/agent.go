// Package agent implements the TD(0) learner that plays the puzzle: it scores
// enumerated placements with a value network, picks one epsilon-greedily,
// records the transition and trains on replayed batches against a lagged
// target network.
package agent

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/plus3/tetrisrl/nn"
	"github.com/plus3/tetrisrl/tetris"
)

var (
	// ErrNoCandidates is returned when action selection is asked to choose
	// from an empty candidate list.
	ErrNoCandidates = errors.New("agent: no candidate actions")

	// ErrInvalidConfig is returned by Config.Validate.
	ErrInvalidConfig = errors.New("agent: invalid config")
)

const (
	explorationDecay = 0.99
	explorationFloor = 0.01

	learningRateDecay = 0.999
	learningRateFloor = 0.00001
)

// Config holds the starting hyperparameters.
type Config struct {
	LearningRate    float64
	DiscountFactor  float64
	ExplorationRate float64

	// BatchSize is both the replay size needed before training starts and
	// the number of plays replayed per training step.
	BatchSize int
	// TargetSyncInterval is the number of training steps between hard
	// copies of the primary network into the target network.
	TargetSyncInterval int
	HiddenSize         int

	// ErrorClip bounds the magnitude of the TD error used in an update.
	// Zero disables it.
	ErrorClip float64
	// GradientClip bounds the L2 norm of the gradients of one update.
	// Zero disables it.
	GradientClip float64
}

func DefaultConfig() Config {
	return Config{
		LearningRate:       0.001,
		DiscountFactor:     0.9,
		ExplorationRate:    0.5,
		BatchSize:          32,
		TargetSyncInterval: 10,
		HiddenSize:         32,
		ErrorClip:          1,
		GradientClip:       10,
	}
}

func (c Config) Validate() error {
	switch {
	case c.LearningRate <= 0:
		return fmt.Errorf("%w: learning rate %v must be positive", ErrInvalidConfig, c.LearningRate)
	case c.DiscountFactor < 0 || c.DiscountFactor > 1:
		return fmt.Errorf("%w: discount factor %v outside [0, 1]", ErrInvalidConfig, c.DiscountFactor)
	case c.ExplorationRate < 0 || c.ExplorationRate > 1:
		return fmt.Errorf("%w: exploration rate %v outside [0, 1]", ErrInvalidConfig, c.ExplorationRate)
	case c.BatchSize <= 0:
		return fmt.Errorf("%w: batch size %d must be positive", ErrInvalidConfig, c.BatchSize)
	case c.TargetSyncInterval <= 0:
		return fmt.Errorf("%w: target sync interval %d must be positive", ErrInvalidConfig, c.TargetSyncInterval)
	case c.HiddenSize <= 0:
		return fmt.Errorf("%w: hidden size %d must be positive", ErrInvalidConfig, c.HiddenSize)
	case c.ErrorClip < 0 || math.IsNaN(c.ErrorClip):
		return fmt.Errorf("%w: error clip %v must not be negative", ErrInvalidConfig, c.ErrorClip)
	case c.GradientClip < 0 || math.IsNaN(c.GradientClip):
		return fmt.Errorf("%w: gradient clip %v must not be negative", ErrInvalidConfig, c.GradientClip)
	}
	return nil
}

// Option customises an Agent.
type Option func(*Agent)

// WithMemory replaces the default unbounded ReplayBuffer.
func WithMemory(m Memory) Option {
	return func(a *Agent) { a.memory = m }
}

// Agent owns the primary and target networks, the replay memory and the
// decaying hyperparameters. It is not safe for concurrent use.
type Agent struct {
	rng    *rand.Rand
	model  *nn.Network
	target *nn.Network
	memory Memory

	batchSize   int
	syncEvery   int
	errorClip   float64
	gradClip    float64
	learning    float64
	discount    float64
	exploration float64
	iteration   int
}

// New builds an agent with freshly initialised networks. The target network
// starts as a copy of the primary one.
func New(cfg Config, rng *rand.Rand, opts ...Option) (*Agent, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	model := nn.New(tetris.FeatureLength, cfg.HiddenSize, rng)
	a := &Agent{
		rng:         rng,
		model:       model,
		target:      model.Clone(),
		memory:      NewReplayBuffer(),
		batchSize:   cfg.BatchSize,
		syncEvery:   cfg.TargetSyncInterval,
		errorClip:   cfg.ErrorClip,
		gradClip:    cfg.GradientClip,
		learning:    cfg.LearningRate,
		discount:    cfg.DiscountFactor,
		exploration: cfg.ExplorationRate,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

func (a *Agent) LearningRate() float64    { return a.learning }
func (a *Agent) DiscountFactor() float64  { return a.discount }
func (a *Agent) ExplorationRate() float64 { return a.exploration }
func (a *Agent) Iteration() int           { return a.iteration }
func (a *Agent) Memory() Memory           { return a.memory }
func (a *Agent) Model() *nn.Network       { return a.model }
func (a *Agent) Target() *nn.Network      { return a.target }

// ActionValues estimates reward + discount * V(next) for every candidate
// using the primary network.
func (a *Agent) ActionValues(candidates []tetris.Candidate) []float64 {
	values := make([]float64, len(candidates))
	for i, c := range candidates {
		v := c.Features.Vector()
		values[i] = c.Reward + a.discount*a.model.Evaluate(v[:])
	}
	return values
}

// SelectAction picks an index epsilon-greedily. Exploitation returns the
// leftmost maximum.
func (a *Agent) SelectAction(values []float64) (int, error) {
	if len(values) == 0 {
		return 0, ErrNoCandidates
	}
	if a.rng.Float64() < a.exploration {
		return a.rng.IntN(len(values)), nil
	}
	best := 0
	for i := 1; i < len(values); i++ {
		if values[i] > values[best] {
			best = i
		}
	}
	return best, nil
}

// TDLearning chooses one of the candidates for the board described by
// current, records the transition and runs a training step once the memory
// holds at least a batch.
func (a *Agent) TDLearning(current tetris.Features, candidates []tetris.Candidate) (tetris.ComposedAction, error) {
	idx, err := a.SelectAction(a.ActionValues(candidates))
	if err != nil {
		return tetris.ComposedAction{}, err
	}
	chosen := candidates[idx]
	a.memory.Add(Play{
		Previous: current,
		Next:     chosen.Features,
		Reward:   chosen.Reward,
		Action:   chosen.Action,
	})

	if a.memory.Len() >= a.batchSize {
		a.train()
	}
	return chosen.Action, nil
}

// TDError is reward - V(previous) plus discount * V_target(next) when the
// play did not end the game. The returned activations belong to the primary
// network's pass over the previous state.
func (a *Agent) TDError(p Play) (float64, *nn.Activations) {
	prev := p.Previous.Vector()
	value, act := a.model.Forward(prev[:])
	err := p.Reward - value
	if !p.Next.Terminal {
		next := p.Next.Vector()
		err += a.discount * a.target.Evaluate(next[:])
	}
	return err, act
}

func (a *Agent) train() {
	for _, p := range a.memory.Sample(a.rng, a.batchSize) {
		tdErr, act := a.TDError(p)
		a.update(tdErr, act)
	}
	a.decay()
}

// update moves V(previous) towards the TD target: each weight changes by
// learningRate * tdErr * dV/dw, with the error and the gradient norm clipped
// when configured.
func (a *Agent) update(tdErr float64, act *nn.Activations) {
	if a.errorClip > 0 {
		tdErr = max(-a.errorClip, min(tdErr, a.errorClip))
	}
	grads := a.model.Backward(1, act)
	step := a.learning * tdErr
	if norm := grads.Norm(); a.gradClip > 0 && norm > a.gradClip {
		step *= a.gradClip / norm
	}
	a.model.Update(step, grads)
}

func (a *Agent) decay() {
	a.exploration = max(a.exploration*explorationDecay, explorationFloor)
	a.learning = max(a.learning*learningRateDecay, learningRateFloor)

	a.iteration++
	if a.iteration%a.syncEvery == 0 {
		a.target.CopyFrom(a.model)
	}
}
