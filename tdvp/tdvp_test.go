// Copyright (c) 2026 The tenet authors
//
// Use of this software is governed by the GNU General Public License v3
// included in the LICENSE file and at www.gnu.org/licenses/gpl-3.0.html.

package tdvp

import (
	"context"
	"math/cmplx"
	"testing"

	"github.com/latticeworks/tenet/dmrg"
	"github.com/latticeworks/tenet/exact"
	"github.com/latticeworks/tenet/model"
	"github.com/latticeworks/tenet/mps"
	"github.com/stretchr/testify/require"
)

func TestNew_ValidatesArguments(t *testing.T) {
	finite, err := model.NewTFIChain(4, 1, 1, mps.Finite)
	require.NoError(t, err)
	infinite, err := model.NewTFIChain(2, 1, 1, mps.Infinite)
	require.NoError(t, err)
	ring, err := mps.NewFerromagnet(2, mps.Infinite)
	require.NoError(t, err)
	single, err := mps.NewFerromagnet(1, mps.Finite)
	require.NoError(t, err)
	long, err := mps.NewFerromagnet(6, mps.Finite)
	require.NoError(t, err)

	tests := map[string]struct {
		m    model.Model
		psi  *mps.MPS
		want string
	}{
		"infinite chain":  {infinite, ring, "finite chains only"},
		"single site":     {finite, single, "at least two sites"},
		"length mismatch": {finite, long, "does not match model"},
	}
	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			require := require.New(t)
			one, err := NewOneSite(test.m, test.psi, complex(0, 0.1), Options{})
			require.Error(err)
			require.Nil(one)
			require.Contains(err.Error(), test.want)
			two, err := NewTwoSite(test.m, test.psi, complex(0, 0.1), Options{})
			require.Error(err)
			require.Nil(two)
			require.Contains(err.Error(), test.want)
		})
	}
}

// groundStateAtChi prepares the ground state of the given model as a start
// for quench dynamics, capped at the given bond dimension. A cap of zero
// keeps every Schmidt value, which on a short chain fills the bonds to the
// maximal rank.
func groundStateAtChi(t *testing.T, m model.Model, chiMax int) *mps.MPS {
	t.Helper()
	require := require.New(t)
	psi, err := mps.NewFerromagnet(m.Len(), mps.Finite)
	require.NoError(err)
	opt, err := dmrg.New(m, psi, dmrg.Options{Truncation: mps.Truncation{ChiMax: chiMax}})
	require.NoError(err)
	res, err := opt.Run(context.Background(), 30, 1e-12)
	require.NoError(err)
	require.True(res.Converged)
	return psi
}

// energyExpectation measures <v|H|v> on a full state vector, independent of
// any stored Schmidt values.
func energyExpectation(t *testing.T, m model.Model, v []complex128) float64 {
	t.Helper()
	op, err := exact.HamiltonianOperator(m)
	require.NoError(t, err)
	dst := make([]complex128, len(v))
	op.Apply(dst, v)
	return real(exact.Overlap(v, dst))
}

func TestEngine_OneSiteMatchesExactEvolution(t *testing.T) {
	require := require.New(t)
	initial, err := model.NewTFIChain(5, 1, 1.5, mps.Finite)
	require.NoError(err)
	psi := groundStateAtChi(t, initial, 0)

	quench, err := model.NewTFIChain(5, 1, 0.5, mps.Finite)
	require.NoError(err)
	start, err := exact.StateFromMPS(psi)
	require.NoError(err)

	steps, dt := 12, 0.05
	engine, err := NewOneSite(quench, psi, complex(0, dt), Options{})
	require.NoError(err)
	require.NoError(engine.Run(context.Background(), steps))

	elapsed := float64(steps) * dt
	evolved, err := exact.EvolveState(quench, start, complex(0, -elapsed))
	require.NoError(err)
	fromTDVP, err := exact.StateFromMPS(engine.State())
	require.NoError(err)
	require.InDelta(1, cmplx.Abs(exact.Overlap(fromTDVP, evolved)), 1e-6,
		"with every bond at maximal rank the integrator reproduces the exact propagator")
	require.Equal(steps, engine.Stats().Steps)
	require.NoError(psi.CheckCanonical(1e-8))
}

func TestEngine_OneSiteConservesEnergyAndNorm(t *testing.T) {
	require := require.New(t)
	initial, err := model.NewTFIChain(8, 1, 1.5, mps.Finite)
	require.NoError(err)
	psi := groundStateAtChi(t, initial, 4)
	require.Equal(4, psi.MaxBondDim())

	quench, err := model.NewTFIChain(8, 1, 0.7, mps.Finite)
	require.NoError(err)
	start, err := exact.StateFromMPS(psi)
	require.NoError(err)
	before := energyExpectation(t, quench, start)

	engine, err := NewOneSite(quench, psi, complex(0, 0.05), Options{})
	require.NoError(err)
	require.NoError(engine.Run(context.Background(), 20))

	after, err := exact.StateFromMPS(psi)
	require.NoError(err)
	require.InDelta(before, energyExpectation(t, quench, after), 1e-7,
		"the projected flow conserves energy even on a heavily truncated chain")
	require.InDelta(1, real(exact.Overlap(after, after)), 1e-10)
	require.Equal(4, psi.MaxBondDim(), "one-site sweeps may not grow bonds")
	require.Equal(4, engine.Stats().MaxBondDim)
	require.NoError(psi.CheckCanonical(1e-8))
}

func TestEngine_TwoSiteMatchesExactEvolution(t *testing.T) {
	require := require.New(t)
	m, err := model.NewXXChain(6, 1, 0, mps.Finite)
	require.NoError(err)
	psi, err := mps.NewNeelState(6, mps.Finite)
	require.NoError(err)
	start, err := exact.StateFromMPS(psi)
	require.NoError(err)

	steps, dt := 12, 0.05
	engine, err := NewTwoSite(m, psi, complex(0, dt), Options{
		Truncation: mps.Truncation{ChiMax: 32, Eps: 1e-12},
	})
	require.NoError(err)
	require.NoError(engine.Run(context.Background(), steps))

	elapsed := float64(steps) * dt
	evolved, err := exact.EvolveState(m, start, complex(0, -elapsed))
	require.NoError(err)
	fromTDVP, err := exact.StateFromMPS(engine.State())
	require.NoError(err)
	require.InDelta(1, cmplx.Abs(exact.Overlap(fromTDVP, evolved)), 1e-6)

	// The quench builds entanglement from nothing; pair updates must have
	// opened the bonds far beyond the product state they started from.
	require.Equal(8, engine.Stats().MaxBondDim)
	require.Equal(8, psi.MaxBondDim())
	entropy, err := psi.EntanglementEntropy(3)
	require.NoError(err)
	require.Greater(entropy, 0.1)
	require.Equal(steps, engine.Stats().Steps)
	require.NoError(psi.CheckCanonical(1e-8))
}

func TestEngine_ContextCancellation(t *testing.T) {
	require := require.New(t)
	m, err := model.NewTFIChain(4, 1, 1.2, mps.Finite)
	require.NoError(err)
	psi, err := mps.NewFerromagnet(4, mps.Finite)
	require.NoError(err)
	engine, err := NewOneSite(m, psi, complex(0, 0.1), Options{})
	require.NoError(err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(engine.Step(ctx), context.Canceled)
	require.ErrorIs(engine.Run(ctx, 3), context.Canceled)
	require.Equal(0, engine.Stats().Steps)
}
