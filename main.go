/*
Testbed is the classic 10-armed bandit experiment: a population of bandits, each with ten levers
of hidden gaussian value, is played under epsilon-greedy at several exploration rates, and the
average reward and percentage of optimal plays are charted against the number of plays.
*/

package main

import (
	"os"

	"testbed/logging"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		logging.Errorf("%v", err)
		os.Exit(1)
	}
}
