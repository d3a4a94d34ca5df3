package main

import (
	"context"
	"os"
	"os/signal"
	"runtime"

	"testbed/experiment"
	"testbed/logging"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var (
	configPath string
	dbg        bool
	noColor    bool
	nworkers   int
	seed       uint64
	plays      int
	bandits    int
	actions    int
	epsilons   []float64
	host       string
	port       string
	noRun      bool

	rootCmd = &cobra.Command{
		Use:           "testbed",
		Short:         "Plays the n-armed bandit testbed under epsilon-greedy",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetColors(!noColor)
		},
	}

	runCmd = &cobra.Command{
		Use:   "run",
		Short: "Play every configured epsilon, then save fixtures and charts",
		RunE:  runExperiment, // Defined in cmd_run.go
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Serve saved charts and the live progress of a run",
		RunE:  runServe, // Defined in cmd_serve.go
	}

	gaussianCmd = &cobra.Command{
		Use:   "gaussian",
		Short: "Chart normal distributions of several deviations, for reference",
		RunE:  runGaussian, // Defined in cmd_gaussian.go
	}
)

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "config.yaml", "experiment config file")
	flags.BoolVar(&dbg, "debug", false, "debug mode: a small, quick testbed")
	flags.BoolVar(&noColor, "no-color", false, "disable colored output")
	flags.IntVar(&nworkers, "nworkers", runtime.NumCPU(), "number of worker routines playing bandits")
	flags.Uint64Var(&seed, "seed", 0, "random seed, overriding the config")
	flags.IntVar(&plays, "plays", 0, "plays per bandit, overriding the config")
	flags.IntVar(&bandits, "bandits", 0, "bandits per epsilon, overriding the config")
	flags.IntVar(&actions, "actions", 0, "actions per bandit, overriding the config")
	flags.Float64SliceVar(&epsilons, "epsilons", nil, "epsilons to play, overriding the config")

	serveCmd.Flags().StringVar(&host, "host", "", "The host ip")
	serveCmd.Flags().StringVar(&port, "port", "8080", "The host port")
	serveCmd.Flags().BoolVar(&noRun, "no-run", false, "only serve saved charts")

	rootCmd.AddCommand(runCmd, serveCmd, gaussianCmd)
}

// loadConfig reads the config file, falling back to the default testbed when the default file
// is absent, then applies flag overrides.
func loadConfig(cmd *cobra.Command) (*experiment.Config, error) {
	cfg := experiment.DefaultConfig()
	if _, err := os.Stat(configPath); err == nil {
		if cfg, err = experiment.FromYaml(configPath); err != nil {
			return nil, err
		}
	} else if cmd.Flags().Changed("config") {
		return nil, errors.Wrapf(err, "config %s", configPath)
	} else {
		logging.Warnf("no %s, playing the default testbed", configPath)
	}

	if dbg {
		cfg.SetHyperParam(experiment.ParamPlays, 100)
		cfg.SetHyperParam(experiment.ParamBandits, 200)
	}

	flags := cmd.Flags()
	if flags.Changed("nworkers") || cfg.Workers < 1 {
		cfg.Workers = nworkers
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("plays") {
		cfg.SetHyperParam(experiment.ParamPlays, float64(plays))
	}
	if flags.Changed("bandits") {
		cfg.SetHyperParam(experiment.ParamBandits, float64(bandits))
	}
	if flags.Changed("actions") {
		cfg.SetHyperParam(experiment.ParamActions, float64(actions))
	}
	if flags.Changed("epsilons") {
		cfg.Epsilons = epsilons
	}
	return cfg, nil
}

// appContext is cancelled on interrupt.
func appContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}
