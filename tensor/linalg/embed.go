// Copyright (c) 2026 The tenet authors
//
// Use of this software is governed by the GNU General Public License v3
// included in the LICENSE file and at www.gnu.org/licenses/gpl-3.0.html.

// Package linalg provides the matrix factorizations needed by tensor network
// algorithms (singular value decomposition, Hermitian eigendecomposition,
// matrix exponentials) for complex matrices.
//
// gonum's LAPACK-backed factorizations operate on real matrices only, so all
// routines here work on the real embedding of a complex matrix M = A + iB,
// the block matrix [[A, -B], [B, A]]. The embedding represents M and conj(M)
// simultaneously: every singular value of M appears twice in the embedding,
// and every eigenvalue of M is accompanied by its conjugate. The helpers in
// this file build embeddings and map factors of the embedding back to complex
// factors of M.
package linalg

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/cmplxs"
	"gonum.org/v1/gonum/mat"

	"github.com/latticeworks/tenet/tensor"
)

// ErrFactorizationFailed indicates that the underlying LAPACK routine did not
// converge on the given matrix.
var ErrFactorizationFailed = errors.New("matrix factorization failed")

// relative spread below which neighboring singular or eigenvalues are treated
// as one degenerate group during back-mapping
const degeneracyTol = 1e-10

// threshold for discarding a Gram-Schmidt residual as numerical noise
const residualTol = 1e-6

// embed builds the real embedding [[A, -B], [B, A]] of the rank-2 tensor
// m = A + iB.
func embed(m *tensor.Dense) *mat.Dense {
	r, c := m.Dim(0), m.Dim(1)
	out := mat.NewDense(2*r, 2*c, nil)
	data := m.Data()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v := data[i*c+j]
			out.Set(i, j, real(v))
			out.Set(i, j+c, -imag(v))
			out.Set(i+r, j, imag(v))
			out.Set(i+r, j+c, real(v))
		}
	}
	return out
}

// embedHermitian builds the symmetric real embedding of a Hermitian matrix.
// Tiny deviations from Hermiticity, as produced by chains of floating point
// contractions, are removed by averaging m with its conjugate transpose.
func embedHermitian(m *tensor.Dense) *mat.SymDense {
	n := m.Dim(0)
	data := m.Data()
	out := mat.NewSymDense(2*n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			v := (data[i*n+j] + cmplx.Conj(data[j*n+i])) / 2
			out.SetSym(i, j, real(v))
			out.SetSym(i+n, j+n, real(v))
			// the off-diagonal blocks hold -B and B with B[i][j] = imag(v);
			// SetSym writes the (i, j+n) and mirrored (j, i+n) entries
			out.SetSym(i, j+n, -imag(v))
			if i != j {
				out.SetSym(j, i+n, imag(v))
			}
		}
	}
	return out
}

// column extracts column col of a stacked real matrix as the complex vector
// u = top + i*bottom, where top and bottom are the first and last n rows.
func column(m *mat.Dense, n, col int) []complex128 {
	u := make([]complex128, n)
	for i := 0; i < n; i++ {
		u[i] = complex(m.At(i, col), m.At(i+n, col))
	}
	return u
}

// groupRanges splits a sorted slice of values into maximal runs of
// near-degenerate entries. scale sets the absolute degeneracy threshold.
func groupRanges(values []float64, scale float64) [][2]int {
	tol := scale * degeneracyTol
	var groups [][2]int
	lo := 0
	for i := 1; i <= len(values); i++ {
		if i == len(values) || math.Abs(values[i]-values[i-1]) > tol {
			groups = append(groups, [2]int{lo, i})
			lo = i
		}
	}
	return groups
}

// orthonormalize runs a complex Gram-Schmidt over the primary candidate
// vectors of one degenerate group, accepting vectors until want linearly
// independent ones are found. If secondary candidates are given, the same
// elimination coefficients are applied to them in lockstep so that existing
// pairings (such as M v = sigma u) survive the basis change. Accepted
// vectors are normalized; paired secondaries are normalized independently.
func orthonormalize(primary, secondary [][]complex128, want int) ([][]complex128, [][]complex128, error) {
	paired := secondary != nil
	accP := make([][]complex128, 0, want)
	accS := make([][]complex128, 0, want)
	for t := 0; t < len(primary) && len(accP) < want; t++ {
		u := cloneVector(primary[t])
		var v []complex128
		if paired {
			v = cloneVector(secondary[t])
		}
		// a second elimination pass keeps the result orthogonal even when
		// the first pass cancels most of the candidate
		for pass := 0; pass < 2; pass++ {
			for j := range accP {
				coef := dotc(accP[j], u)
				cmplxs.AddScaled(u, -coef, accP[j])
				if paired {
					cmplxs.AddScaled(v, -coef, accS[j])
				}
			}
		}
		norm := vectorNorm(u)
		if norm < residualTol {
			continue
		}
		cmplxs.Scale(complex(1/norm, 0), u)
		if paired {
			vNorm := vectorNorm(v)
			if vNorm < residualTol {
				continue
			}
			cmplxs.Scale(complex(1/vNorm, 0), v)
			accS = append(accS, v)
		}
		accP = append(accP, u)
	}
	if len(accP) < want {
		return nil, nil, fmt.Errorf("%w: could not recover %d orthonormal vectors from a degenerate group of %d candidates",
			ErrFactorizationFailed, want, len(primary))
	}
	return accP, accS, nil
}

func dotc(a, b []complex128) complex128 {
	var sum complex128
	for i := range a {
		sum += cmplx.Conj(a[i]) * b[i]
	}
	return sum
}

func vectorNorm(v []complex128) float64 {
	sum := 0.0
	for _, z := range v {
		sum += real(z)*real(z) + imag(z)*imag(z)
	}
	return math.Sqrt(sum)
}

func cloneVector(v []complex128) []complex128 {
	out := make([]complex128, len(v))
	copy(out, v)
	return out
}

func checkMatrix(m *tensor.Dense) {
	if m.Rank() != 2 {
		panic(fmt.Sprintf("linalg: expected a rank-2 tensor, got rank %d", m.Rank()))
	}
}

func checkSquare(m *tensor.Dense) {
	checkMatrix(m)
	if m.Dim(0) != m.Dim(1) {
		panic(fmt.Sprintf("linalg: expected a square matrix, got %v", m.Shape()))
	}
}
