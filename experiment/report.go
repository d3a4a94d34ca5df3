package experiment

import (
	"fmt"
	"io"
	"time"

	"testbed/logging"
	"testbed/results"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/stat"
)

// Report collects the outcomes of a run into the two result figures.
type Report struct {
	RunID    string
	Game     GameConfig
	Epsilons []float64
	// Rewards and OptimalActions hold one series per epsilon, labeled by EpsilonLabel.
	Rewards        *results.Result
	OptimalActions *results.Result
	Outcomes       []*Outcome
	Elapsed        time.Duration
}

// NewReport returns an empty report for games of @g at each of @epsilons, under a fresh run id.
func NewReport(g GameConfig, epsilons []float64) *Report {
	return &Report{
		RunID:          uuid.New().String(),
		Game:           g,
		Epsilons:       epsilons,
		Rewards:        results.NewResult("Average rewards", "average_rewards"),
		OptimalActions: results.NewResult("Percentage of optimal value", "optimal_action"),
	}
}

// Add records @outcome. A repeated epsilon replaces the earlier series.
func (r *Report) Add(outcome *Outcome) {
	label := results.EpsilonLabel(outcome.Epsilon)
	r.Rewards.Set(label, outcome.AverageRewards)
	r.OptimalActions.Set(label, outcome.OptimalPercents)
	r.Outcomes = append(r.Outcomes, outcome)
}

// Results returns the report's figures in display order.
func (r *Report) Results() []*results.Result {
	return []*results.Result{r.Rewards, r.OptimalActions}
}

// Draw writes a fixture and a chart for each figure, returning the chart paths.
func (r *Report) Draw(fixturesDir, chartsDir string) ([]string, error) {
	paths := []string{}
	for _, result := range r.Results() {
		path, err := results.Draw(fixturesDir, chartsDir, result, r.RunID)
		if err != nil {
			return nil, err
		}
		logging.Infof("The chart %s has been saved", path)
		paths = append(paths, path)
	}
	return paths, nil
}

// Summary prints one line per game: the final average reward and optimal percentage, and the
// mean over the last tenth of the plays.
func (r *Report) Summary(w io.Writer) {
	au := logging.Colors()
	fmt.Fprintf(w, "%s %s\n", au.Bold("run"), r.RunID)
	for _, outcome := range r.Outcomes {
		n := len(outcome.AverageRewards)
		if n == 0 {
			continue
		}
		tail := n - n/10 - 1
		fmt.Fprintf(w, "  epsilon %-6s %s reward %.3f (tail mean %.3f, optimal value %.3f)  %s optimal %.1f%% (tail mean %.1f%%)  in %v\n",
			results.EpsilonLabel(outcome.Epsilon),
			au.Cyan("|"),
			outcome.AverageRewards[n-1],
			stat.Mean(outcome.AverageRewards[tail:], nil),
			outcome.MeanOptimalValue,
			au.Cyan("|"),
			outcome.OptimalPercents[n-1],
			stat.Mean(outcome.OptimalPercents[tail:], nil),
			outcome.Elapsed.Round(time.Millisecond))
	}
}
