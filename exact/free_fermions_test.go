// Copyright (c) 2026 The tenet authors
//
// Use of this software is governed by the GNU General Public License v3
// included in the LICENSE file and at www.gnu.org/licenses/gpl-3.0.html.

package exact

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/latticeworks/tenet/mps"
	"github.com/stretchr/testify/require"
)

func TestHoppingMatrix_BuildsExpectedEntries(t *testing.T) {
	require := require.New(t)
	h := HoppingMatrix(4, 1.5, 0.25, mps.Finite)
	require.Equal(4, h.SymmetricDim())
	require.Equal(-1.5, h.At(0, 1))
	require.Equal(-1.5, h.At(2, 1))
	require.Equal(0.0, h.At(0, 2))
	require.Equal(0.0, h.At(0, 3), "open chain has no wrap bond")
	require.Equal(0.25, h.At(0, 0))
	require.Equal(-0.25, h.At(1, 1))

	ring := HoppingMatrix(4, 1.5, 0, mps.Infinite)
	require.Equal(-1.5, ring.At(0, 3))
}

func TestChargeDensityWave_OccupiesOddSites(t *testing.T) {
	require := require.New(t)
	c := ChargeDensityWave(4)
	for i := 0; i < 4; i++ {
		want := complex128(0)
		if i%2 == 1 {
			want = 1
		}
		require.Equal(want, c.At(i, i))
	}
	require.Equal(complex128(0), c.At(0, 1))
}

func TestXXGroundStateEnergy_MatchesClosedForms(t *testing.T) {
	tests := map[string]struct {
		l    int
		want float64
	}{
		// Two sites: the singlet-like bond state has energy -2.
		"two sites": {l: 2, want: -2},
		// Three sites: one filled mode at -2 sqrt(2).
		"three sites": {l: 3, want: -2 * math.Sqrt2},
	}
	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			got := XXGroundStateEnergy(test.l, 0, mps.Finite)
			require.InDelta(t, test.want, got, 1e-12)
		})
	}
}

func TestXXGroundStateEnergy_StaggeredFieldLowersEnergy(t *testing.T) {
	plain := XXGroundStateEnergy(8, 0, mps.Finite)
	staggered := XXGroundStateEnergy(8, 0.5, mps.Finite)
	require.Less(t, staggered, plain)
}

func TestHoppingEvolution_PreservesParticleNumber(t *testing.T) {
	require := require.New(t)
	l := 6
	evolution, err := NewHoppingEvolution(HoppingMatrix(l, 2, 0, mps.Finite), ChargeDensityWave(l))
	require.NoError(err)

	for _, time := range []float64{0, 0.3, 1.7} {
		c := evolution.CorrelationsAt(time)
		trace := complex128(0)
		for i := 0; i < l; i++ {
			trace += c.At(i, i)
		}
		require.InDelta(float64(l)/2, real(trace), 1e-10, "t=%g", time)
		require.InDelta(0.0, imag(trace), 1e-10, "t=%g", time)
		// Correlation matrices stay Hermitian under evolution.
		for i := 0; i < l; i++ {
			for j := 0; j < l; j++ {
				diff := cmplx.Abs(c.At(i, j) - cmplx.Conj(c.At(j, i)))
				require.LessOrEqual(diff, 1e-10)
			}
		}
	}
}

func TestHoppingEvolution_RejectsMismatchedShapes(t *testing.T) {
	_, err := NewHoppingEvolution(HoppingMatrix(4, 2, 0, mps.Finite), ChargeDensityWave(6))
	require.ErrorContains(t, err, "does not match")
}

func TestCorrelationEntropy_VanishesForProductState(t *testing.T) {
	entropy, err := CorrelationEntropy(ChargeDensityWave(6), 3)
	require.NoError(t, err)
	require.InDelta(t, 0.0, entropy, 1e-10)
}

func TestCorrelationEntropy_ValidatesBond(t *testing.T) {
	_, err := CorrelationEntropy(ChargeDensityWave(6), 0)
	require.ErrorContains(t, err, "outside the chain")
	_, err = CorrelationEntropy(ChargeDensityWave(6), 6)
	require.ErrorContains(t, err, "outside the chain")
}

func TestXXTimeEvolvedEntropies_GrowFromZero(t *testing.T) {
	require := require.New(t)
	entropies, err := XXTimeEvolvedEntropies(8, 0, []float64{0, 0.25, 0.5})
	require.NoError(err)
	require.Len(entropies, 3)
	require.InDelta(0.0, entropies[0], 1e-10)
	require.Greater(entropies[1], 0.05, "quench generates entanglement")
	require.Greater(entropies[2], entropies[1])
}

func TestXXTimeEvolvedEntropies_RequiresEvenChain(t *testing.T) {
	_, err := XXTimeEvolvedEntropies(5, 0, []float64{0})
	require.ErrorContains(t, err, "even chain")
}
