// Copyright (c) 2026 The tenet authors
//
// Use of this software is governed by the GNU General Public License v3
// included in the LICENSE file and at www.gnu.org/licenses/gpl-3.0.html.

package main

import (
	"github.com/urfave/cli/v2"

	"github.com/latticeworks/tenet/common/diagnostics"
	"github.com/latticeworks/tenet/sim"
)

var (
	modelFlag = cli.StringFlag{
		Name:  "model",
		Usage: "spin chain model, tfi or xx",
		Value: "tfi",
	}
	lengthFlag = cli.IntFlag{
		Name:  "length",
		Usage: "number of sites, the unit cell size for infinite chains",
		Value: 16,
	}
	boundaryFlag = cli.StringFlag{
		Name:  "boundary",
		Usage: "boundary condition, finite or infinite",
		Value: "finite",
	}
	couplingFlag = cli.Float64Flag{
		Name:  "j",
		Usage: "nearest neighbor coupling strength",
		Value: 1,
	}
	fieldFlag = cli.Float64Flag{
		Name:  "g",
		Usage: "transverse field strength of the tfi model",
		Value: 1.5,
	}
	staggerFlag = cli.Float64Flag{
		Name:  "hs",
		Usage: "staggered field strength of the xx model",
		Value: 0,
	}
	engineFlag = cli.StringFlag{
		Name:  "engine",
		Usage: "simulation engine name, like dmrg2 or tebd2",
		Value: "dmrg2",
	}
	dtFlag = cli.Float64Flag{
		Name:  "dt",
		Usage: "step size for evolution engines",
		Value: 0.05,
	}
	stepsFlag = cli.IntFlag{
		Name:  "steps",
		Usage: "maximum number of sweeps or evolution steps",
		Value: 100,
	}
	chiMaxFlag = cli.IntFlag{
		Name:  "chi-max",
		Usage: "largest bond dimension kept after truncation, 0 for unbounded",
		Value: 64,
	}
	epsFlag = cli.Float64Flag{
		Name:  "eps",
		Usage: "smallest Schmidt value kept after truncation",
		Value: 1e-12,
	}
	toleranceFlag = cli.Float64Flag{
		Name:  "tolerance",
		Usage: "energy change per sweep below which a search stops",
		Value: 1e-10,
	}
)

var GroundStateCmd = cli.Command{
	Action: diagnostics.WrapAction(doGroundState, &diagnosticsFlag, &cpuProfileFlag, &traceFlag),
	Name:   "ground-state",
	Usage:  "find the ground state of a spin chain by DMRG or imaginary time evolution",
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
		&toleranceFlag,
		&resultsFlag,
		&checkpointFlag,
		&checkpointDirFlag,
		&checkpointEveryFlag,
	},
}

func doGroundState(context *cli.Context) error {
	config := simConfigFromFlags(context)
	// Evolution engines cool the state with exp(-dt*H) steps.
	config.Engine.ImaginaryTime = true
	return runAndReport(context, config)
}

// simConfigFromFlags translates the command line into a run description,
// leaving everything not covered by a flag at its default.
func simConfigFromFlags(context *cli.Context) sim.Config {
	config := sim.DefaultConfig()
	config.Run.Steps = context.Int(stepsFlag.Name)
	config.Model.Kind = context.String(modelFlag.Name)
	config.Model.Length = context.Int(lengthFlag.Name)
	config.Model.Boundary = context.String(boundaryFlag.Name)
	config.Model.J = context.Float64(couplingFlag.Name)
	config.Model.G = context.Float64(fieldFlag.Name)
	config.Model.Hs = context.Float64(staggerFlag.Name)
	config.Engine.Name = context.String(engineFlag.Name)
	config.Engine.Dt = context.Float64(dtFlag.Name)
	config.Engine.ChiMax = context.Int(chiMaxFlag.Name)
	config.Engine.Eps = context.Float64(epsFlag.Name)
	config.Engine.Tolerance = context.Float64(toleranceFlag.Name)
	config.Results.Database = context.String(resultsFlag.Name)
	config.Checkpoint.Backend = context.String(checkpointFlag.Name)
	config.Checkpoint.Directory = context.String(checkpointDirFlag.Name)
	config.Schedule.CheckpointEvery = context.Int(checkpointEveryFlag.Name)
	return config
}
