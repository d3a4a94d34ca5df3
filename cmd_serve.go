package main

import (
	"context"
	"net"

	"testbed/experiment"
	"testbed/logging"
	"testbed/server"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// runServe serves the saved charts and, unless disabled, plays a run whose progress is pushed
// to connected pages. Its charts are saved when it finishes; serving continues until interrupted.
func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	appCtx, appCancel := appContext()
	defer appCancel()

	monitor := server.NewMonitor()
	srv, err := server.NewServer(appCtx, net.JoinHostPort(host, port), cfg.Output.Fixtures, monitor)
	if err != nil {
		return err
	}

	group, groupCtx := errgroup.WithContext(appCtx)
	group.Go(srv.Serve)
	if !noRun {
		group.Go(func() error {
			playServed(groupCtx, cfg, monitor)
			return nil
		})
	}
	return group.Wait()
}

// playServed plays the sweep under the monitor. Failures are reported to the page and logged
// rather than stopping the server.
func playServed(ctx context.Context, cfg *experiment.Config, monitor *server.Monitor) {
	trainingCtx, cancel, err := cfg.WithTrainingDeadline(ctx)
	if err != nil {
		monitor.Finish(err)
		logging.Errorf("%v", err)
		return
	}
	defer cancel()

	report, err := experiment.Prepare(cfg)
	if err == nil {
		monitor.Start(report.RunID)
		if err = report.Play(trainingCtx, monitor.Track); err == nil {
			_, err = report.Draw(cfg.Output.Fixtures, cfg.Output.Charts)
		}
	}
	monitor.Finish(err)
	if err != nil {
		logging.Errorf("%v", err)
		return
	}
	logging.Highlightf("run %s done, charts saved", report.RunID)
}
