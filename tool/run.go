// Copyright (c) 2026 The tenet authors
//
// Use of this software is governed by the GNU General Public License v3
// included in the LICENSE file and at www.gnu.org/licenses/gpl-3.0.html.

package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/latticeworks/tenet/common/diagnostics"
	"github.com/latticeworks/tenet/sim"
)

var RunCmd = cli.Command{
	Action:    diagnostics.WrapAction(doRun, &diagnosticsFlag, &cpuProfileFlag, &traceFlag),
	Name:      "run",
	Usage:     "execute a simulation described by a YAML run file",
	ArgsUsage: "<run file>",
}

func doRun(context *cli.Context) error {
	if context.Args().Len() != 1 {
		return fmt.Errorf("missing run file parameter")
	}
	config, err := sim.LoadConfig(context.Args().Get(0))
	if err != nil {
		return err
	}
	return runAndReport(context, config)
}

// runAndReport executes the configured run and prints its summary.
func runAndReport(context *cli.Context, config sim.Config) error {
	runner, err := sim.NewRunner(config, sim.RunnerOptions{})
	if err != nil {
		return err
	}
	summary, err := runner.Run(context.Context)
	if err != nil {
		return err
	}
	fmt.Printf("run:       %s\n", summary.RunID)
	fmt.Printf("steps:     %d\n", summary.Steps)
	if summary.Time != 0 {
		fmt.Printf("time:      %g\n", summary.Time)
	}
	fmt.Printf("energy:    %.12g\n", summary.Energy)
	fmt.Printf("converged: %t\n", summary.Converged)
	fmt.Printf("max chi:   %d\n", summary.MaxBondDim)
	return nil
}
