// Copyright (c) 2026 The tenet authors
//
// Use of this software is governed by the GNU General Public License v3
// included in the LICENSE file and at www.gnu.org/licenses/gpl-3.0.html.

package main

import (
	"errors"
	"fmt"

	"github.com/urfave/cli/v2"
)

var canonicalTolFlag = cli.Float64Flag{
	Name:  "canonical-tol",
	Usage: "largest accepted deviation from the canonical form",
	Value: 1e-8,
}

var VerifyCmd = cli.Command{
	Action:    doVerify,
	Name:      "verify",
	Usage:     "check the integrity and canonical form of every stored snapshot of a run",
	ArgsUsage: "<snapshot directory>",
	Flags: []cli.Flag{
		&backendFlag,
		&runFlag,
		&canonicalTolFlag,
	},
}

func doVerify(context *cli.Context) (err error) {
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

	tol := context.Float64(canonicalTolFlag.Name)
	for _, step := range steps {
		// Load decodes the record and rejects it if the integrity digest
		// does not match.
		snapshot, err := store.Load(run, step)
		if err != nil {
			return fmt.Errorf("snapshot %d is damaged: %w", step, err)
		}
		if err := snapshot.Psi.CheckCanonical(tol); err != nil {
			return fmt.Errorf("snapshot %d is not in canonical form: %w", step, err)
		}
		fmt.Printf("snapshot %d at time %g: ok\n", step, snapshot.Time)
	}
	fmt.Printf("verified %d snapshots of run %s\n", len(steps), run)
	return nil
}
