// Copyright (c) 2026 The tenet authors
//
// Use of this software is governed by the GNU General Public License v3
// included in the LICENSE file and at www.gnu.org/licenses/gpl-3.0.html.

package tebd

import (
	"context"
	"math/cmplx"
	"testing"

	"github.com/latticeworks/tenet/exact"
	"github.com/latticeworks/tenet/model"
	"github.com/latticeworks/tenet/mps"
	"github.com/latticeworks/tenet/tensor"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestCalcUBonds_ZeroStepIsIdentity(t *testing.T) {
	require := require.New(t)
	m, err := model.NewTFIChain(4, 1, 1, mps.Finite)
	require.NoError(err)
	us, err := CalcUBonds(m, 0)
	require.NoError(err)
	require.Len(us, 3)
	eye := tensor.Eye(4)
	for _, u := range us {
		flat := u.Reshape(4, 4)
		for i := 0; i < 4; i++ {
			for j := 0; j < 4; j++ {
				diff := cmplx.Abs(flat.At(i, j) - eye.At(i, j))
				require.LessOrEqual(diff, 1e-12)
			}
		}
	}
}

func TestCalcUBonds_RealTimeGatesAreUnitary(t *testing.T) {
	require := require.New(t)
	m, err := model.NewXXChain(4, 1, 0.3, mps.Finite)
	require.NoError(err)
	us, err := CalcUBonds(m, complex(0, 0.2))
	require.NoError(err)
	for _, u := range us {
		flat := u.Reshape(4, 4)
		gram := tensor.Contract(flat, flat.Conj(), []int{1}, []int{1})
		for i := 0; i < 4; i++ {
			for j := 0; j < 4; j++ {
				want := complex128(0)
				if i == j {
					want = 1
				}
				require.LessOrEqual(cmplx.Abs(gram.At(i, j)-want), 1e-12)
			}
		}
	}
}

func TestNew_ValidatesArguments(t *testing.T) {
	m, err := model.NewTFIChain(4, 1, 1, mps.Finite)
	require.NoError(t, err)
	psi, err := mps.NewFerromagnet(4, mps.Finite)
	require.NoError(t, err)

	_, err = New(m, psi, 0.1, Options{Order: 3})
	require.ErrorContains(t, err, "unsupported trotter order")

	short, err := mps.NewFerromagnet(3, mps.Finite)
	require.NoError(t, err)
	_, err = New(m, short, 0.1, Options{})
	require.ErrorContains(t, err, "does not match")
}

func TestEngine_RealTimeMatchesExactEvolution(t *testing.T) {
	require := require.New(t)
	m, err := model.NewXXChain(6, 1, 0, mps.Finite)
	require.NoError(err)
	psi, err := mps.NewNeelState(6, mps.Finite)
	require.NoError(err)
	start, err := exact.StateFromMPS(psi)
	require.NoError(err)

	steps, dt := 12, 0.05
	engine, err := New(m, psi, complex(0, dt), Options{Truncation: mps.Truncation{ChiMax: 32}})
	require.NoError(err)
	require.NoError(engine.Run(context.Background(), steps))

	elapsed := float64(steps) * dt
	evolved, err := exact.EvolveState(m, start, complex(0, -elapsed))
	require.NoError(err)
	fromTEBD, err := exact.StateFromMPS(psi)
	require.NoError(err)
	require.Greater(cmplx.Abs(exact.Overlap(fromTEBD, evolved)), 0.999)

	wantEntropy, err := exact.XXTimeEvolvedEntropies(6, 0, []float64{elapsed})
	require.NoError(err)
	gotEntropy, err := psi.EntanglementEntropy(3)
	require.NoError(err)
	require.InDelta(wantEntropy[0], gotEntropy, 5e-3)
}

func TestEngine_ParallelMatchesSequential(t *testing.T) {
	require := require.New(t)
	m, err := model.NewXXChain(7, 1, 0.2, mps.Finite)
	require.NoError(err)
	base, err := mps.NewNeelState(7, mps.Finite)
	require.NoError(err)
	sequential := base.Copy()
	parallel := base.Copy()

	trunc := mps.Truncation{ChiMax: 16, Eps: 1e-12}
	seqEngine, err := New(m, sequential, complex(0, 0.1), Options{Truncation: trunc})
	require.NoError(err)
	parEngine, err := New(m, parallel, complex(0, 0.1), Options{Truncation: trunc, Parallel: true})
	require.NoError(err)

	require.NoError(seqEngine.Run(context.Background(), 5))
	require.NoError(parEngine.Run(context.Background(), 5))

	for i := 0; i < 7; i++ {
		require.InDeltaSlice(sequential.S(i), parallel.S(i), 1e-12, "schmidt values of site %d", i)
		seqData := sequential.B(i).Data()
		parData := parallel.B(i).Data()
		require.Len(parData, len(seqData))
		for k := range seqData {
			require.LessOrEqual(cmplx.Abs(seqData[k]-parData[k]), 1e-12)
		}
	}
}

func TestEngine_StatsTrackTruncation(t *testing.T) {
	require := require.New(t)
	m, err := model.NewTFIChain(10, 1, 1, mps.Finite)
	require.NoError(err)
	psi, err := mps.NewFerromagnet(10, mps.Finite)
	require.NoError(err)

	engine, err := New(m, psi, complex(0.05, 0), Options{Truncation: mps.Truncation{ChiMax: 4, Eps: 1e-12}})
	require.NoError(err)
	require.NoError(engine.Run(context.Background(), 40))

	stats := engine.Stats()
	require.Equal(40, stats.Steps)
	require.Greater(stats.MaxBondDim, 1)
	require.LessOrEqual(stats.MaxBondDim, 4)
	require.Greater(stats.DiscardedWeight, 0.0, "the capped bond must discard weight")
}

func TestEngine_ReportsFailedSplit(t *testing.T) {
	require := require.New(t)
	m, err := model.NewTFIChain(4, 1, 1, mps.Finite)
	require.NoError(err)
	psi, err := mps.NewFerromagnet(4, mps.Finite)
	require.NoError(err)

	engine, err := New(m, psi, complex(0.1, 0), Options{Truncation: mps.Truncation{ChiMax: 4, Eps: 2}})
	require.NoError(err)
	err = engine.Step(context.Background())
	require.ErrorIs(err, mps.ErrAllTruncated)
	require.ErrorContains(err, "failed to split bond")
}

func TestEngine_HonorsContextCancellation(t *testing.T) {
	require := require.New(t)
	m, err := model.NewTFIChain(4, 1, 1, mps.Finite)
	require.NoError(err)
	psi, err := mps.NewFerromagnet(4, mps.Finite)
	require.NoError(err)
	engine, err := New(m, psi, complex(0.1, 0), Options{})
	require.NoError(err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(engine.Step(ctx), context.Canceled)
}
