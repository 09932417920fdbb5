// Copyright (c) 2026 The tenet authors
//
// Use of this software is governed by the GNU General Public License v3
// included in the LICENSE file and at www.gnu.org/licenses/gpl-3.0.html.

package tensor

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestContract_MatrixProduct(t *testing.T) {
	require := require.New(t)

	a := FromData([]complex128{1, 2, 3, 4, 5, 6}, 2, 3)
	b := FromData([]complex128{7, 8, 9, 10, 11, 12}, 3, 2)

	c := Contract(a, b, []int{1}, []int{0})
	require.Equal([]int{2, 2}, c.Shape())
	require.Equal(complex128(58), c.At(0, 0))
	require.Equal(complex128(64), c.At(0, 1))
	require.Equal(complex128(139), c.At(1, 0))
	require.Equal(complex128(154), c.At(1, 1))
}

func TestContract_AgreesWithExplicitSum(t *testing.T) {
	require := require.New(t)

	// out[j, k] = sum_i a[i, j] * b[k, i]
	a := New(2, 3)
	b := New(4, 2)
	for i := 0; i < 2; i++ {
		for j := 0; j < 3; j++ {
			a.Set(complex(float64(1+i+2*j), float64(i-j)), i, j)
		}
	}
	for k := 0; k < 4; k++ {
		for i := 0; i < 2; i++ {
			b.Set(complex(float64(k-i), float64(2*k+i)), k, i)
		}
	}

	out := Contract(a, b, []int{0}, []int{1})
	require.Equal([]int{3, 4}, out.Shape())
	for j := 0; j < 3; j++ {
		for k := 0; k < 4; k++ {
			var want complex128
			for i := 0; i < 2; i++ {
				want += a.At(i, j) * b.At(k, i)
			}
			require.InDelta(real(want), real(out.At(j, k)), 1e-13)
			require.InDelta(imag(want), imag(out.At(j, k)), 1e-13)
		}
	}
}

func TestContract_MultipleAxes(t *testing.T) {
	require := require.New(t)

	// out[i, l] = sum_{j,k} a[i, j, k] * b[k, j, l], contracting two leg pairs
	// in permuted order.
	a := New(2, 3, 4)
	b := New(4, 3, 2)
	for i := range a.Data() {
		a.Data()[i] = complex(float64(i%7), float64(i%5))
	}
	for i := range b.Data() {
		b.Data()[i] = complex(float64(i%3), float64(-(i % 4)))
	}

	out := Contract(a, b, []int{1, 2}, []int{1, 0})
	require.Equal([]int{2, 2}, out.Shape())
	for i := 0; i < 2; i++ {
		for l := 0; l < 2; l++ {
			var want complex128
			for j := 0; j < 3; j++ {
				for k := 0; k < 4; k++ {
					want += a.At(i, j, k) * b.At(k, j, l)
				}
			}
			require.InDelta(real(want), real(out.At(i, l)), 1e-12)
			require.InDelta(imag(want), imag(out.At(i, l)), 1e-12)
		}
	}
}

func TestContract_WithIdentityLeavesTensorUnchanged(t *testing.T) {
	require := require.New(t)

	x := New(3, 2, 2)
	for i := range x.Data() {
		x.Data()[i] = complex(float64(i), float64(2*i))
	}
	out := Contract(Eye(3), x, []int{1}, []int{0})
	require.Equal(x.Shape(), out.Shape())
	require.Equal(x.Data(), out.Data())
}

func TestContract_FullContractionYieldsSquaredNorm(t *testing.T) {
	require := require.New(t)

	x := New(2, 3, 2)
	for i := range x.Data() {
		x.Data()[i] = complex(float64(i%4), float64(-i%3))
	}
	out := Contract(x.Conj(), x, []int{0, 1, 2}, []int{0, 1, 2})
	require.Equal(0, out.Rank())
	norm := x.Norm()
	require.InDelta(norm*norm, real(out.At()), 1e-12)
	require.InDelta(0, imag(out.At()), 1e-12)
}

func TestContract_IsAssociativeForMatrices(t *testing.T) {
	require := require.New(t)

	a := FromData([]complex128{1 + 1i, 2, 0, -1i, 3, 1}, 2, 3)
	b := FromData([]complex128{1, 0, 2i, 1, -1, 1}, 3, 2)
	c := FromData([]complex128{2, 1i, 0, 1}, 2, 2)

	left := Contract(Contract(a, b, []int{1}, []int{0}), c, []int{1}, []int{0})
	right := Contract(a, Contract(b, c, []int{1}, []int{0}), []int{1}, []int{0})
	require.Equal(left.Shape(), right.Shape())
	for i := range left.Data() {
		require.InDelta(real(right.Data()[i]), real(left.Data()[i]), 1e-12)
		require.InDelta(imag(right.Data()[i]), imag(left.Data()[i]), 1e-12)
	}
}

func TestContract_RejectsMismatchedAxes(t *testing.T) {
	a := New(2, 3)
	b := New(3, 2)
	require.Panics(t, func() { Contract(a, b, []int{0}, []int{0, 1}) })
	require.Panics(t, func() { Contract(a, b, []int{0}, []int{0}) })
	require.Panics(t, func() { Contract(a, b, []int{5}, []int{0}) })
	require.Panics(t, func() { Contract(a, b, []int{0, 0}, []int{1, 1}) })
}

func TestKron_PauliMatrices(t *testing.T) {
	require := require.New(t)

	sigmaX := FromData([]complex128{0, 1, 1, 0}, 2, 2)
	sigmaZ := FromData([]complex128{1, 0, 0, -1}, 2, 2)

	out := Kron(sigmaX, sigmaZ)
	require.Equal([]int{4, 4}, out.Shape())
	want := []complex128{
		0, 0, 1, 0,
		0, 0, 0, -1,
		1, 0, 0, 0,
		0, -1, 0, 0,
	}
	require.Equal(want, out.Data())
}

func TestKron_RejectsHigherRankOperands(t *testing.T) {
	require.Panics(t, func() { Kron(New(2, 2, 2), New(2, 2)) })
}

func TestMulDiagLeft_ScalesFirstLeg(t *testing.T) {
	require := require.New(t)

	x := FromData([]complex128{1, 1, 1, 1}, 2, 2)
	out := MulDiagLeft([]float64{2, 3}, x)
	require.Equal([]complex128{2, 2, 3, 3}, out.Data())
	// input unchanged
	require.Equal(complex128(1), x.At(0, 0))
}

func TestMulDiagRight_ScalesLastLeg(t *testing.T) {
	require := require.New(t)

	x := FromData([]complex128{1, 1, 1, 1}, 2, 2)
	out := MulDiagRight(x, []float64{2, 3})
	require.Equal([]complex128{2, 3, 2, 3}, out.Data())
}

func TestMulDiag_RejectsMismatchedLength(t *testing.T) {
	x := New(2, 2)
	require.Panics(t, func() { MulDiagLeft([]float64{1, 2, 3}, x) })
	require.Panics(t, func() { MulDiagRight(x, []float64{1}) })
}
