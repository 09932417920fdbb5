// Copyright (c) 2026 The tenet authors
//
// Use of this software is governed by the GNU General Public License v3
// included in the LICENSE file and at www.gnu.org/licenses/gpl-3.0.html.

package main

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/latticeworks/tenet/checkpoint"
	"github.com/latticeworks/tenet/mps"
)

// seedSnapshots stores two snapshots of a fresh run in a file store under
// the given directory and returns the run id.
func seedSnapshots(t *testing.T, dir string) uuid.UUID {
	t.Helper()
	store, err := checkpoint.NewFileStore(dir)
	require.NoError(t, err)
	run := uuid.New()
	psi, err := mps.NewFerromagnet(4, mps.Finite)
	require.NoError(t, err)
	require.NoError(t, store.Save(checkpoint.Snapshot{RunID: run, Step: 1, Time: 0.1, Psi: psi}))
	require.NoError(t, store.Save(checkpoint.Snapshot{RunID: run, Step: 3, Time: 0.3, Psi: psi}))
	require.NoError(t, store.Close())
	return run
}

func TestInfo_InspectsStoredSnapshots(t *testing.T) {
	require := require.New(t)
	dir := t.TempDir()
	run := seedSnapshots(t, dir)

	app := &cli.App{
		Commands: []*cli.Command{&InfoCmd},
	}
	err := app.Run([]string{"tenet", "info", "--run=" + run.String(), dir})
	require.NoError(err)

	err = app.Run([]string{"tenet", "info", "--run=" + run.String(), "--step=1", dir})
	require.NoError(err)
}

func TestInfo_ReportsUnknownRun(t *testing.T) {
	app := &cli.App{
		Commands: []*cli.Command{&InfoCmd},
	}
	err := app.Run([]string{"tenet", "info", "--run=" + uuid.NewString(), t.TempDir()})
	require.ErrorContains(t, err, "no snapshots stored")
}

func TestInfo_RejectsUnknownBackend(t *testing.T) {
	app := &cli.App{
		Commands: []*cli.Command{&InfoCmd},
	}
	err := app.Run([]string{"tenet", "info", "--run=" + uuid.NewString(), "--backend=tape", t.TempDir()})
	require.ErrorContains(t, err, "unknown snapshot backend")
}

func TestInfo_RequiresDirectoryArgument(t *testing.T) {
	app := &cli.App{
		Commands: []*cli.Command{&InfoCmd},
	}
	err := app.Run([]string{"tenet", "info", "--run=" + uuid.NewString()})
	require.ErrorContains(t, err, "missing snapshot directory parameter")
}
