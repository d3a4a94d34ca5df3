package bandit

import (
	"fmt"
)

// Action is one lever of a Bandit. Its true value is hidden from the policy, which only
// sees the estimate built from the rewards observed so far.
type Action struct {
	parent *Bandit
	index  int
	mu     float64
	sigma  float64
	value  float64
	// History of rewards. The first entry is a 0.0 sentinel standing for "no plays yet"; it
	// counts toward the estimate, biasing it toward zero until real plays dilute it.
	rewards []float64
	// Running sum of rewards, so the estimate is O(1).
	sum float64
}

// newAction draws the action's true value from N(mu, sigma).
func newAction(parent *Bandit, index int, mu, sigma float64) (*Action, error) {
	value, err := parent.src.Normal(mu, sigma)
	if err != nil {
		return nil, sourceFailure(err, fmt.Sprintf("sample true value of action %d", index))
	}

	return &Action{
		parent:  parent,
		index:   index,
		mu:      mu,
		sigma:   sigma,
		value:   value,
		rewards: []float64{0},
	}, nil
}

// Value is the true expected reward of the action.
func (a *Action) Value() float64 {
	return a.value
}

// Index is the action's position among its bandit's actions.
func (a *Action) Index() int {
	return a.index
}

// EstimatedValue returns the mean of the reward history, sentinel included.
func (a *Action) EstimatedValue() float64 {
	return a.sum / float64(len(a.rewards))
}

// Rewards returns a copy of the reward history, beginning with the sentinel.
func (a *Action) Rewards() []float64 {
	rewards := make([]float64, len(a.rewards))
	copy(rewards, a.rewards)
	return rewards
}

// Play samples a reward from N(value, sigma), records it, and notifies the parent bandit.
func (a *Action) Play() error {
	reward, err := a.parent.src.Normal(a.value, a.sigma)
	if err != nil {
		return sourceFailure(err, fmt.Sprintf("sample reward of action %d", a.index))
	}

	a.rewards = append(a.rewards, reward)
	a.sum += reward
	a.parent.recordPlay(a)
	return nil
}

func (a *Action) lastReward() float64 {
	return a.rewards[len(a.rewards)-1]
}

func (a *Action) String() string {
	return fmt.Sprintf("action (%v)", a.value)
}
