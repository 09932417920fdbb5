// Copyright (c) 2026 The tenet authors
//
// Use of this software is governed by the GNU General Public License v3
// included in the LICENSE file and at www.gnu.org/licenses/gpl-3.0.html.

package main

import (
	"github.com/urfave/cli/v2"

	"github.com/latticeworks/tenet/common/diagnostics"
)

var (
	startFlag = cli.StringFlag{
		Name:  "start",
		Usage: "initial product state, ferromagnet or neel",
		Value: "neel",
	}
	operatorFlag = cli.StringFlag{
		Name:  "operator",
		Usage: "per-site operator measured along the run, sx, sy, sz, or empty",
		Value: "sz",
	}
	measureEveryFlag = cli.IntFlag{
		Name:  "measure-every",
		Usage: "number of steps between measurements, 0 disables them",
		Value: 1,
	}
	resultsFlag = cli.StringFlag{
		Name:  "results",
		Usage: "SQLite file collecting measurements, disabled if empty",
		Value: "",
	}
	checkpointFlag = cli.StringFlag{
		Name:  "checkpoint",
		Usage: "snapshot backend, memory, file or ldb, disabled if empty",
		Value: "",
	}
	checkpointDirFlag = cli.StringFlag{
		Name:  "checkpoint-dir",
		Usage: "directory holding the snapshots of the file and ldb backends",
		Value: "",
	}
	checkpointEveryFlag = cli.IntFlag{
		Name:  "checkpoint-every",
		Usage: "number of steps between snapshots, 0 keeps only the final one",
		Value: 0,
	}
)

var EvolveCmd = cli.Command{
	Action: diagnostics.WrapAction(doEvolve, &diagnosticsFlag, &cpuProfileFlag, &traceFlag),
	Name:   "evolve",
	Usage:  "evolve a product state in real time by TEBD or TDVP",
	Flags: []cli.Flag{
		&modelFlag,
		&lengthFlag,
		&boundaryFlag,
		&couplingFlag,
		&fieldFlag,
		&staggerFlag,
		&engineFlag,
		&dtFlag,
		&stepsFlag,
		&chiMaxFlag,
		&epsFlag,
		&startFlag,
		&operatorFlag,
		&measureEveryFlag,
		&resultsFlag,
		&checkpointFlag,
		&checkpointDirFlag,
		&checkpointEveryFlag,
	},
}

func doEvolve(context *cli.Context) error {
	config := simConfigFromFlags(context)
	config.Run.Start = context.String(startFlag.Name)
	if !context.IsSet(engineFlag.Name) {
		config.Engine.Name = "tebd2"
	}
	config.Measure.SiteOperator = context.String(operatorFlag.Name)
	config.Schedule.MeasureEvery = context.Int(measureEveryFlag.Name)
	return runAndReport(context, config)
}
