package main

import (
	"os"

	"testbed/experiment"
	"testbed/logging"

	"github.com/spf13/cobra"
)

// runExperiment plays the configured sweep and saves its fixtures and charts.
func runExperiment(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	appCtx, appCancel := appContext()
	defer appCancel()

	trainingCtx, cancel, err := cfg.WithTrainingDeadline(appCtx)
	if err != nil {
		return err
	}
	defer cancel()

	var report *experiment.Report
	if _, err = experiment.Timed("run", func() (runErr error) {
		report, runErr = experiment.Run(trainingCtx, cfg, nil)
		return
	}); err != nil {
		return err
	}

	if _, err = report.Draw(cfg.Output.Fixtures, cfg.Output.Charts); err != nil {
		return err
	}
	report.Summary(os.Stdout)
	logging.Highlightf("run %s done", report.RunID)
	return nil
}
