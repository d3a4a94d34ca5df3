// Package experiment plays populations of bandits under epsilon-greedy and tallies how they fare.
// A game is one epsilon over every bandit; a run is a sweep of games over the configured epsilons.
package experiment

import (
	"context"
	"fmt"
	"time"

	"testbed/bandit"
	"testbed/gaussian"
	"testbed/logging"

	channerics "github.com/niceyeti/channerics/channels"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// GameConfig holds the parameters shared by every game of a run.
type GameConfig struct {
	Plays     int
	Bandits   int
	Actions   int
	Precision int
	Mu        float64
	Sigma     float64
	Seed      uint64
	Workers   int

	// sampler overrides the per-bandit random source, for tests.
	sampler func(gameIndex, index int) bandit.Sampler
}

// Validate checks the testbed dimensions.
func (g GameConfig) Validate() error {
	switch {
	case g.Plays < 1:
		return errors.Wrapf(bandit.ErrInvalidConfiguration, "plays must be positive, got %d", g.Plays)
	case g.Bandits < 1:
		return errors.Wrapf(bandit.ErrInvalidConfiguration, "bandits must be positive, got %d", g.Bandits)
	case g.Actions < 1:
		return errors.Wrapf(bandit.ErrInvalidConfiguration, "actions must be positive, got %d", g.Actions)
	case g.Workers < 1:
		return errors.Wrapf(bandit.ErrInvalidConfiguration, "workers must be positive, got %d", g.Workers)
	case g.Precision < 0 || g.Precision > bandit.MaxPrecision:
		return errors.Wrapf(bandit.ErrInvalidConfiguration, "precision must be in [0, %d], got %d", bandit.MaxPrecision, g.Precision)
	}
	return nil
}

// validateEpsilon rejects an epsilon that could not be played on these bandits.
func (g GameConfig) validateEpsilon(epsilon float64) error {
	mixture, err := bandit.NewMixture(epsilon, g.Precision)
	if err != nil {
		return err
	}
	if g.Actions == 1 && mixture.Explore > 0 {
		return errors.Wrapf(bandit.ErrInvalidConfiguration, "epsilon %v explores, but bandits have a single action", epsilon)
	}
	return nil
}

func (g GameConfig) newSampler(gameIndex, index int) bandit.Sampler {
	if g.sampler != nil {
		return g.sampler(gameIndex, index)
	}
	return gaussian.NewStream(g.Seed+uint64(gameIndex), uint64(index))
}

// ProgressFunc is a callback by which a game lends its progress, once per completed bandit.
// It is synchronous and should complete quickly.
type ProgressFunc func(context.Context, *Tally)

// Outcome is the per-play average reward and optimal-action percentage of one game.
type Outcome struct {
	Epsilon          float64
	Mixture          bandit.Mixture
	AverageRewards   []float64
	OptimalPercents  []float64
	MeanOptimalValue float64
	Elapsed          time.Duration
}

// playTrial plays one fresh bandit @g.Plays times and returns its logs.
func playTrial(g GameConfig, gameIndex, index int, epsilon float64) (*Trial, error) {
	b, err := bandit.New(
		g.Actions,
		g.newSampler(gameIndex, index),
		bandit.WithDistribution(g.Mu, g.Sigma))
	if err != nil {
		return nil, err
	}

	for i := 0; i < g.Plays; i++ {
		if err = b.PlayEpsilonGreedy(epsilon, g.Precision); err != nil {
			return nil, errors.Wrapf(err, "play %d", i)
		}
	}

	return &Trial{
		Index:        index,
		Rewards:      b.Rewards(),
		Optimal:      b.OptimalLog(),
		OptimalValue: b.OptimalAction().Value(),
	}, nil
}

// Game plays @g.Bandits fresh bandits at @epsilon and averages their logs per play.
// Bandits are striped over g.Workers goroutines whose trials are fanned in to a single
// aggregator; the first failure cancels the rest and is returned.
func Game(
	ctx context.Context,
	g GameConfig,
	gameIndex int,
	epsilon float64,
	progressFn ProgressFunc,
) (*Outcome, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	if err := g.validateEpsilon(epsilon); err != nil {
		return nil, err
	}
	mixture, err := bandit.NewMixture(epsilon, g.Precision)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	tally := NewTally(epsilon, mixture, g.Bandits, g.Plays)
	group, groupCtx := errgroup.WithContext(ctx)

	trialWorker := func(offset int) <-chan *Trial {
		trials := make(chan *Trial)
		group.Go(func() error {
			defer close(trials)
			for i := offset; i < g.Bandits; i += g.Workers {
				trial, err := playTrial(g, gameIndex, i, epsilon)
				if err != nil {
					return errors.Wrapf(err, "bandit %d", i)
				}

				select {
				case trials <- trial:
				case <-groupCtx.Done():
					return groupCtx.Err()
				}
			}
			return nil
		})
		return trials
	}

	nworkers := g.Workers
	if nworkers > g.Bandits {
		nworkers = g.Bandits
	}
	workers := []<-chan *Trial{}
	for i := 0; i < nworkers; i++ {
		workers = append(workers, trialWorker(i))
	}

	for trial := range channerics.Merge(groupCtx.Done(), workers...) {
		tally.Add(trial)
		if progressFn != nil {
			progressFn(ctx, tally)
		}
	}

	if err = group.Wait(); err != nil {
		return nil, errors.Wrapf(err, "game at epsilon %v", epsilon)
	}
	// A cancellation that lands after the last trial was sent still abandons the game.
	if err = ctx.Err(); err != nil {
		return nil, errors.Wrapf(err, "game at epsilon %v", epsilon)
	}

	return &Outcome{
		Epsilon:          epsilon,
		Mixture:          mixture,
		AverageRewards:   tally.AverageRewards(),
		OptimalPercents:  tally.OptimalPercents(),
		MeanOptimalValue: tally.MeanOptimalValue(),
		Elapsed:          time.Since(start),
	}, nil
}

// Prepare validates @cfg and returns the empty report that playing it will fill.
func Prepare(cfg *Config) (*Report, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return NewReport(cfg.Game(), cfg.Epsilons), nil
}

// Play plays one game per epsilon, in order, adding each outcome to the report.
func (r *Report) Play(ctx context.Context, progressFn ProgressFunc) error {
	g := r.Game
	logging.Infof("run %s: %d bandits x %d plays x %d actions, epsilons %v, %d workers",
		r.RunID, g.Bandits, g.Plays, g.Actions, r.Epsilons, g.Workers)

	start := time.Now()
	for gameIndex, epsilon := range r.Epsilons {
		var outcome *Outcome
		_, err := Timed(fmt.Sprintf("game(epsilon=%v)", epsilon), func() (err error) {
			outcome, err = Game(ctx, g, gameIndex, epsilon, progressFn)
			return
		})
		if err != nil {
			return err
		}
		r.Add(outcome)
	}
	r.Elapsed = time.Since(start)
	logging.Infof("run %s finished in %v", r.RunID, r.Elapsed)
	return nil
}

// Run validates @cfg and plays it.
func Run(
	ctx context.Context,
	cfg *Config,
	progressFn ProgressFunc,
) (*Report, error) {
	report, err := Prepare(cfg)
	if err != nil {
		return nil, err
	}
	if err = report.Play(ctx, progressFn); err != nil {
		return nil, err
	}
	return report, nil
}
