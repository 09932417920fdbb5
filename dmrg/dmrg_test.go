// Copyright (c) 2026 The tenet authors
//
// Use of this software is governed by the GNU General Public License v3
// included in the LICENSE file and at www.gnu.org/licenses/gpl-3.0.html.

package dmrg

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/latticeworks/tenet/exact"
	"github.com/latticeworks/tenet/model"
	"github.com/latticeworks/tenet/mps"
)

func TestNew_Validation(t *testing.T) {
	short, err := model.NewTFIChain(2, 1, 1, mps.Finite)
	require.NoError(t, err)
	chain, err := model.NewTFIChain(4, 1, 1, mps.Finite)
	require.NoError(t, err)
	shortPsi, err := mps.NewFerromagnet(2, mps.Finite)
	require.NoError(t, err)
	longPsi, err := mps.NewFerromagnet(6, mps.Finite)
	require.NoError(t, err)
	cellPsi, err := mps.NewFerromagnet(4, mps.Infinite)
	require.NoError(t, err)

	tests := map[string]struct {
		m    model.Model
		psi  *mps.MPS
		want string
	}{
		"single bond":       {m: short, psi: shortPsi, want: "at least two bonds"},
		"length mismatch":   {m: chain, psi: longPsi, want: "does not match model"},
		"boundary mismatch": {m: chain, psi: cellPsi, want: "does not match model"},
	}
	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			require := require.New(t)
			eng, err := New(test.m, test.psi, Options{})
			require.Error(err)
			require.Nil(eng)
			require.Contains(err.Error(), test.want)
		})
	}
}

func TestEngine_FindsTransverseIsingGroundState(t *testing.T) {
	require := require.New(t)
	m, err := model.NewTFIChain(8, 1, 1.5, mps.Finite)
	require.NoError(err)
	psi, err := mps.NewFerromagnet(8, mps.Finite)
	require.NoError(err)
	eng, err := New(m, psi, Options{Truncation: mps.Truncation{ChiMax: 16, Eps: 1e-12}})
	require.NoError(err)

	res, err := eng.Run(context.Background(), 30, 1e-12)
	require.NoError(err)
	require.True(res.Converged)

	want, _, err := exact.FiniteGroundState(m)
	require.NoError(err)
	require.InDelta(want, res.Energy, 1e-8)
	require.GreaterOrEqual(res.Energy, want-1e-9, "variational energy may not undercut the true ground state")
	require.NoError(psi.CheckCanonical(1e-5))
}

func TestEngine_FindsXXGroundState(t *testing.T) {
	tests := map[string]struct {
		hs float64
	}{
		"uniform":   {hs: 0},
		"staggered": {hs: 0.3},
	}
	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			require := require.New(t)
			m, err := model.NewXXChain(8, 1, test.hs, mps.Finite)
			require.NoError(err)
			psi, err := mps.NewNeelState(8, mps.Finite)
			require.NoError(err)
			eng, err := New(m, psi, Options{Truncation: mps.Truncation{ChiMax: 16, Eps: 1e-12}})
			require.NoError(err)

			res, err := eng.Run(context.Background(), 40, 1e-11)
			require.NoError(err)
			require.True(res.Converged)
			require.InDelta(exact.XXGroundStateEnergy(8, test.hs, mps.Finite), res.Energy, 1e-8)
		})
	}
}

func TestEngine_InfiniteChainEnergyPerSite(t *testing.T) {
	require := require.New(t)
	m, err := model.NewTFIChain(2, 1, 1.5, mps.Infinite)
	require.NoError(err)
	psi, err := mps.NewFerromagnet(2, mps.Infinite)
	require.NoError(err)
	eng, err := New(m, psi, Options{Truncation: mps.Truncation{ChiMax: 20, Eps: 1e-10}})
	require.NoError(err)

	res, err := eng.Run(context.Background(), 100, 1e-8)
	require.NoError(err)
	require.True(res.Converged)
	require.InDelta(exact.InfiniteTFIEnergy(1, 1.5), res.Energy, 1e-5)

	// The paramagnetic phase is gapped, so correlations decay on a finite
	// length and every cut carries modest entanglement.
	xi, err := psi.CorrelationLength()
	require.NoError(err)
	require.Greater(xi, 0.0)
	require.Less(xi, 20.0)
	entropies, err := psi.EntanglementEntropies()
	require.NoError(err)
	for _, s := range entropies {
		require.Greater(s, 0.0)
		require.Less(s, math.Ln2)
	}
}

func TestEngine_TruncationStatistics(t *testing.T) {
	require := require.New(t)
	m, err := model.NewTFIChain(8, 1, 1, mps.Finite)
	require.NoError(err)
	psi, err := mps.NewFerromagnet(8, mps.Finite)
	require.NoError(err)
	eng, err := New(m, psi, Options{Truncation: mps.Truncation{ChiMax: 4, Eps: 1e-14}})
	require.NoError(err)

	res, err := eng.Run(context.Background(), 10, 1e-9)
	require.NoError(err)

	stats := eng.Stats()
	require.Greater(stats.Sweeps, 0)
	require.Equal(4, stats.MaxBondDim)
	require.Greater(stats.DiscardedWeight, 0.0, "a capped bond dimension must discard weight at criticality")

	want, _, err := exact.FiniteGroundState(m)
	require.NoError(err)
	require.Greater(res.Energy, want-1e-9)
	require.InDelta(want, res.Energy, 0.01)
}

func TestEngine_RunHonorsSweepBudget(t *testing.T) {
	require := require.New(t)
	m, err := model.NewTFIChain(4, 1, 2, mps.Finite)
	require.NoError(err)
	psi, err := mps.NewFerromagnet(4, mps.Finite)
	require.NoError(err)
	eng, err := New(m, psi, Options{Truncation: mps.Truncation{ChiMax: 8, Eps: 1e-12}})
	require.NoError(err)

	res, err := eng.Run(context.Background(), 1, 0)
	require.NoError(err)
	require.False(res.Converged)
	require.Equal(1, res.Sweeps)
	require.Equal(1, eng.Stats().Sweeps)
}

func TestEngine_ContextCancellation(t *testing.T) {
	require := require.New(t)
	m, err := model.NewTFIChain(4, 1, 1.5, mps.Finite)
	require.NoError(err)
	psi, err := mps.NewFerromagnet(4, mps.Finite)
	require.NoError(err)
	eng, err := New(m, psi, Options{Truncation: mps.Truncation{ChiMax: 8, Eps: 1e-12}})
	require.NoError(err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(eng.Sweep(ctx), context.Canceled)
	_, err = eng.Run(ctx, 5, 1e-9)
	require.ErrorIs(err, context.Canceled)
}
