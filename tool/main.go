// Copyright (c) 2026 The tenet authors
//
// Use of this software is governed by the GNU General Public License v3
// included in the LICENSE file and at www.gnu.org/licenses/gpl-3.0.html.

package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/latticeworks/tenet/common/logging"
)

// Run using
//  go run ./tool <command> <flags>

var (
	logLevelFlag = cli.StringFlag{
		Name:    "log-level",
		Usage:   "sets the log level: trace, debug, info, warn, or error",
		Value:   "info",
		EnvVars: []string{"LOG_LEVEL"},
	}
	diagnosticsFlag = cli.IntFlag{
		Name:  "diagnostic-port",
		Usage: "enable hosting of a realtime diagnostic server by providing a port",
		Value: 0,
	}
	cpuProfileFlag = cli.StringFlag{
		Name:  "cpuprofile",
		Usage: "sets the target file for storing CPU profiles to, disabled if empty",
		Value: "",
	}
	traceFlag = cli.StringFlag{
		Name:  "tracefile",
		Usage: "sets the target file for traces to, disabled if empty",
		Value: "",
	}
)

var commands = []*cli.Command{
	&RunCmd,
	&GroundStateCmd,
	&EvolveCmd,
	&InfoCmd,
	&VerifyCmd,
}

func main() {
	app := &cli.App{
		Name:      "tenet",
		Usage:     "matrix product state simulation toolbox",
		Copyright: "(c) 2026 The tenet authors",
		Flags: []cli.Flag{
			&logLevelFlag,
			&diagnosticsFlag,
			&cpuProfileFlag,
			&traceFlag,
		},
		Before: func(context *cli.Context) error {
			return logging.Setup(context.String(logLevelFlag.Name), true)
		},
		Commands: commands,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
