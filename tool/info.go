// Copyright (c) 2026 The tenet authors
//
// Use of this software is governed by the GNU General Public License v3
// included in the LICENSE file and at www.gnu.org/licenses/gpl-3.0.html.

package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/pbnjay/memory"
	"github.com/urfave/cli/v2"

	"github.com/latticeworks/tenet/checkpoint"
)

var (
	backendFlag = cli.StringFlag{
		Name:  "backend",
		Usage: "snapshot backend holding the directory, file or ldb",
		Value: "file",
	}
	runFlag = cli.StringFlag{
		Name:     "run",
		Usage:    "id of the run to inspect",
		Required: true,
	}
	stepFlag = cli.Uint64Flag{
		Name:  "step",
		Usage: "snapshot step to inspect, the latest one if not set",
	}
)

var InfoCmd = cli.Command{
	Action:    doInfo,
	Name:      "info",
	Usage:     "inspect the snapshots a run left behind",
	ArgsUsage: "<snapshot directory>",
	Flags: []cli.Flag{
		&backendFlag,
		&runFlag,
		&stepFlag,
	},
}

func doInfo(context *cli.Context) (err error) {
	store, run, err := openSnapshotStore(context)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, store.Close())
	}()

	steps, err := store.Steps(run)
	if err != nil {
		return err
	}
	if len(steps) == 0 {
		return fmt.Errorf("no snapshots stored for run %s", run)
	}

	step := context.Uint64(stepFlag.Name)
	if !context.IsSet(stepFlag.Name) {
		step = steps[len(steps)-1]
	}
	snapshot, err := store.Load(run, step)
	if err != nil {
		return err
	}

	psi := snapshot.Psi
	entropies, err := psi.EntanglementEntropies()
	if err != nil {
		return err
	}
	fmt.Printf("run:           %s\n", run)
	fmt.Printf("stored steps:  %v\n", steps)
	fmt.Printf("snapshot:      step %d at time %g\n", snapshot.Step, snapshot.Time)
	fmt.Printf("sites:         %d, %s chain\n", psi.Len(), psi.Boundary())
	fmt.Printf("chi profile:   %v\n", psi.BondDims())
	fmt.Printf("entropies:     %s\n", formatFloats(entropies))
	fmt.Printf("state memory:  %d bytes\n", psi.MemoryFootprint().Total())
	fmt.Printf("system memory: %d bytes total, %d bytes free\n", memory.TotalMemory(), memory.FreeMemory())
	return nil
}

func formatFloats(values []float64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprintf("%.6f", v)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// openSnapshotStore opens the store named by the backend flag on the
// directory argument and parses the run flag.
func openSnapshotStore(context *cli.Context) (checkpoint.Store, uuid.UUID, error) {
	if context.Args().Len() != 1 {
		return nil, uuid.UUID{}, fmt.Errorf("missing snapshot directory parameter")
	}
	run, err := uuid.Parse(context.String(runFlag.Name))
	if err != nil {
		return nil, uuid.UUID{}, fmt.Errorf("failed to parse run id: %w", err)
	}
	dir := context.Args().Get(0)
	switch backend := context.String(backendFlag.Name); backend {
	case "file":
		store, err := checkpoint.NewFileStore(dir)
		if err != nil {
			return nil, uuid.UUID{}, err
		}
		return store, run, nil
	case "ldb":
		store, err := checkpoint.NewLevelDbStore(dir)
		if err != nil {
			return nil, uuid.UUID{}, err
		}
		return store, run, nil
	default:
		return nil, uuid.UUID{}, fmt.Errorf("unknown snapshot backend %q, want file or ldb", backend)
	}
}
