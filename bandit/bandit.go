// Package bandit implements the n-armed bandit: a fixed set of actions with hidden gaussian
// values, played under an epsilon-greedy policy. A Bandit is single-threaded; populations
// of bandits share nothing and may be played on separate goroutines, each with its own Sampler.
package bandit

import (
	"github.com/pkg/errors"
)

// DefaultActions is the number of levers of the classic testbed.
const DefaultActions = 10

// Sampler is the random source a Bandit draws from. Errors returned by Normal are treated as
// fatal and surface as ErrRandomSource.
type Sampler interface {
	Normal(mu, sigma float64) (float64, error)
	IntN(n int) int
}

// Option configures a Bandit at construction.
type Option func(*Bandit)

// WithDistribution sets the N(mu, sigma) that action values are drawn from. Sigma is also the
// spread of each action's rewards around its value.
func WithDistribution(mu, sigma float64) Option {
	return func(b *Bandit) {
		b.mu = mu
		b.sigma = sigma
	}
}

// Bandit is a simulated agent with several actions, each yielding a stochastic reward.
type Bandit struct {
	src     Sampler
	mu      float64
	sigma   float64
	actions []*Action
	// The action with the highest true value, fixed at construction.
	optimal *Action
	last    *Action
	// One entry per play: the reward received, and whether the optimal action was played.
	rewards    []float64
	optimalLog []bool
}

// New creates a bandit with @numActions actions whose values are drawn from @src.
func New(numActions int, src Sampler, opts ...Option) (*Bandit, error) {
	if numActions < 1 {
		return nil, errors.Wrapf(ErrInvalidConfiguration, "bandit needs at least one action, got %d", numActions)
	}
	if src == nil {
		return nil, errors.Wrap(ErrInvalidConfiguration, "nil sampler")
	}

	b := &Bandit{
		src:   src,
		mu:    0,
		sigma: 1,
	}
	for _, opt := range opts {
		opt(b)
	}

	if err := b.createActions(numActions); err != nil {
		return nil, err
	}
	return b, nil
}

// createActions builds all actions, then records the optimal one. Ties go to the first created.
func (b *Bandit) createActions(numActions int) error {
	actions := make([]*Action, 0, numActions)
	for i := 0; i < numActions; i++ {
		action, err := newAction(b, i, b.mu, b.sigma)
		if err != nil {
			return err
		}
		actions = append(actions, action)
	}

	optimal := actions[0]
	for _, action := range actions[1:] {
		if action.value > optimal.value {
			optimal = action
		}
	}

	b.actions = actions
	b.optimal = optimal
	return nil
}

// Actions returns the bandit's actions in creation order.
func (b *Bandit) Actions() []*Action {
	actions := make([]*Action, len(b.actions))
	copy(actions, b.actions)
	return actions
}

// OptimalAction returns the action with the highest true value.
func (b *Bandit) OptimalAction() *Action {
	return b.optimal
}

// LastAction returns the most recently played action, or nil before any play.
func (b *Bandit) LastAction() *Action {
	return b.last
}

// Rewards returns the reward received on each play.
func (b *Bandit) Rewards() []float64 {
	rewards := make([]float64, len(b.rewards))
	copy(rewards, b.rewards)
	return rewards
}

// OptimalLog returns, per play, whether the optimal action was played.
func (b *Bandit) OptimalLog() []bool {
	log := make([]bool, len(b.optimalLog))
	copy(log, b.optimalLog)
	return log
}

// Plays is the number of plays so far.
func (b *Bandit) Plays() int {
	return len(b.rewards)
}

// Greedy returns the action with the greatest estimated value, the first one on ties.
// It is recomputed on every call since estimates move with each play.
func (b *Bandit) Greedy() *Action {
	greedy := b.actions[0]
	best := greedy.EstimatedValue()
	for _, action := range b.actions[1:] {
		if est := action.EstimatedValue(); est > best {
			greedy = action
			best = est
		}
	}
	return greedy
}

// Exploit plays the greedy action.
func (b *Bandit) Exploit() error {
	return b.Greedy().Play()
}

// Explore plays an action chosen uniformly among all but the greedy one.
func (b *Bandit) Explore() error {
	if len(b.actions) < 2 {
		return errors.Wrap(ErrInvalidConfiguration, "cannot explore a single-action bandit")
	}

	greedy := b.Greedy()
	candidates := make([]*Action, 0, len(b.actions)-1)
	for _, action := range b.actions {
		if action != greedy {
			candidates = append(candidates, action)
		}
	}
	return candidates[b.src.IntN(len(candidates))].Play()
}

// PlayEpsilonGreedy exploits or explores, mixing the two at the exact rational ratio of
// epsilon rounded to @precision decimals.
func (b *Bandit) PlayEpsilonGreedy(epsilon float64, precision int) error {
	mixture, err := NewMixture(epsilon, precision)
	if err != nil {
		return err
	}

	if mixture.Choose(b.src.IntN) == Explore {
		return b.Explore()
	}
	return b.Exploit()
}

// recordPlay is called by an action after each play.
func (b *Bandit) recordPlay(action *Action) {
	b.last = action
	b.rewards = append(b.rewards, action.lastReward())
	b.optimalLog = append(b.optimalLog, action == b.optimal)
}
