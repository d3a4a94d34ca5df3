package experiment

import (
	"sync/atomic"

	"testbed/atomic_float"
	"testbed/bandit"
)

// Trial is what one bandit leaves behind after its game: the per-play logs and the true value
// of its optimal action. The bandit itself is discarded.
type Trial struct {
	Index        int
	Rewards      []float64
	Optimal      []bool
	OptimalValue float64
}

// Tally accumulates trials of one game into per-play sums. A single aggregator calls Add;
// any number of readers may take snapshots concurrently. A snapshot taken during Add may
// include part of the trial being added.
type Tally struct {
	Epsilon float64
	Mixture bandit.Mixture
	Bandits int
	Plays   int

	rewardSums      []*atomic_float.AtomicFloat64
	optimalCounts   []*atomic_float.AtomicFloat64
	optimalValueSum *atomic_float.AtomicFloat64
	completed       atomic.Int64
}

// NewTally returns an empty tally for @bandits trials of @plays plays each.
func NewTally(epsilon float64, mixture bandit.Mixture, bandits, plays int) *Tally {
	return &Tally{
		Epsilon:         epsilon,
		Mixture:         mixture,
		Bandits:         bandits,
		Plays:           plays,
		rewardSums:      atomic_float.Slice(plays),
		optimalCounts:   atomic_float.Slice(plays),
		optimalValueSum: atomic_float.NewAtomicFloat64(0),
	}
}

// Add folds one trial into the sums. Logs longer than Plays are truncated.
func (t *Tally) Add(trial *Trial) {
	for i, reward := range trial.Rewards {
		if i >= t.Plays {
			break
		}
		t.rewardSums[i].Add(reward)
	}
	for i, optimal := range trial.Optimal {
		if i >= t.Plays {
			break
		}
		if optimal {
			t.optimalCounts[i].Add(1)
		}
	}
	t.optimalValueSum.Add(trial.OptimalValue)
	t.completed.Add(1)
}

// Completed is the number of trials added so far.
func (t *Tally) Completed() int {
	return int(t.completed.Load())
}

// AverageRewards is the reward per play index averaged over the completed trials.
func (t *Tally) AverageRewards() []float64 {
	return t.average(t.rewardSums, 1)
}

// OptimalPercents is, per play index, the percentage of completed trials that played
// their optimal action.
func (t *Tally) OptimalPercents() []float64 {
	return t.average(t.optimalCounts, 100)
}

// MeanOptimalValue is the average over completed trials of each bandit's best true value,
// the level the average reward approaches as play goes on.
func (t *Tally) MeanOptimalValue() float64 {
	n := t.Completed()
	if n == 0 {
		return 0
	}
	return t.optimalValueSum.AtomicRead() / float64(n)
}

func (t *Tally) average(sums []*atomic_float.AtomicFloat64, scale float64) []float64 {
	n := t.Completed()
	avgs := atomic_float.Snapshot(sums)
	if n == 0 {
		return avgs
	}
	for i := range avgs {
		avgs[i] = avgs[i] / float64(n) * scale
	}
	return avgs
}

// Progress is a point-in-time summary of a tally, suitable for publishing to views.
type Progress struct {
	Epsilon   float64 `json:"epsilon"`
	Completed int     `json:"completed"`
	Total     int     `json:"total"`
	// Average reward and optimal percentage at the final play index, so far.
	FinalReward      float64 `json:"finalReward"`
	FinalOptimal     float64 `json:"finalOptimal"`
	MeanOptimalValue float64 `json:"meanOptimalValue"`
}

// Progress snapshots the tally.
func (t *Tally) Progress() Progress {
	p := Progress{
		Epsilon:          t.Epsilon,
		Completed:        t.Completed(),
		Total:            t.Bandits,
		MeanOptimalValue: t.MeanOptimalValue(),
	}
	if t.Plays > 0 {
		p.FinalReward = t.AverageRewards()[t.Plays-1]
		p.FinalOptimal = t.OptimalPercents()[t.Plays-1]
	}
	return p
}
