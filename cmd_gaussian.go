package main

import (
	"testbed/gaussian"
	"testbed/logging"
	"testbed/results"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// runGaussian charts the reference normal curves over [-4, 4).
func runGaussian(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	curves := gaussian.Curves(gaussian.ReferenceSigmas, -4, 4, 0.01)
	path, err := results.Draw(
		cfg.Output.Fixtures,
		cfg.Output.Charts,
		results.GaussianResult(curves),
		uuid.New().String())
	if err != nil {
		return err
	}
	logging.Infof("The chart %s has been saved", path)
	return nil
}
