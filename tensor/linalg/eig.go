// Copyright (c) 2026 The tenet authors
//
// Use of this software is governed by the GNU General Public License v3
// included in the LICENSE file and at www.gnu.org/licenses/gpl-3.0.html.

package linalg

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/latticeworks/tenet/tensor"
)

// EigH computes the eigendecomposition of a Hermitian matrix. It returns the
// eigenvalues in ascending order and a matrix whose column t is the
// normalized eigenvector for values[t], so that m = V * diag(values) * V^H.
// Tiny non-Hermitian perturbations of m are projected away before the
// decomposition.
func EigH(m *tensor.Dense) (values []float64, vectors *tensor.Dense, err error) {
	checkSquare(m)
	n := m.Dim(0)

	var eig mat.EigenSym
	if ok := eig.Factorize(embedHermitian(m), true); !ok {
		return nil, nil, fmt.Errorf("%w: eigendecomposition of a %dx%d Hermitian matrix did not converge",
			ErrFactorizationFailed, n, n)
	}
	embedded := eig.Values(nil)
	var bigV mat.Dense
	eig.VectorsTo(&bigV)

	// Every eigenvalue of m appears twice among the 2n embedded values; per
	// degenerate group, half of the embedded eigenvectors map to an
	// orthonormal complex set.
	scale := 0.0
	for _, v := range embedded {
		scale = math.Max(scale, math.Abs(v))
	}
	groups := groupRanges(embedded, scale)
	values = make([]float64, 0, n)
	vecs := make([][]complex128, 0, n)
	for _, g := range groups {
		lo, hi := g[0], g[1]
		if len(vecs) >= n {
			break
		}
		want := min((hi-lo)/2, n-len(vecs))
		if want == 0 {
			break
		}
		cand := make([][]complex128, 0, hi-lo)
		for t := lo; t < hi; t++ {
			cand = append(cand, column(&bigV, n, t))
		}
		acc, _, err := orthonormalize(cand, nil, want)
		if err != nil {
			return nil, nil, err
		}
		vecs = append(vecs, acc...)
		for t := 0; t < want; t++ {
			values = append(values, embedded[lo+2*t])
		}
	}
	if len(vecs) != n {
		// pathological grouping, treat the whole spectrum as one group
		cand := make([][]complex128, 0, 2*n)
		for t := 0; t < 2*n; t++ {
			cand = append(cand, column(&bigV, n, t))
		}
		vecs, _, err = orthonormalize(cand, nil, n)
		if err != nil {
			return nil, nil, err
		}
		values = values[:0]
		for t := 0; t < n; t++ {
			values = append(values, embedded[min(2*t, 2*n-1)])
		}
	}

	vectors = tensor.New(n, n)
	for t := 0; t < n; t++ {
		for i := 0; i < n; i++ {
			vectors.Set(vecs[t][i], i, t)
		}
	}
	return values, vectors, nil
}

// EigenvaluesGeneral computes the eigenvalues of a general complex square
// matrix. The result has twice the matrix dimension: the embedding pairs
// every eigenvalue with its complex conjugate, and no attempt is made to
// deduplicate. Callers interested in moduli, such as transfer matrix
// spectra, can rely on every modulus appearing an even number of times.
func EigenvaluesGeneral(m *tensor.Dense) ([]complex128, error) {
	checkSquare(m)
	n := m.Dim(0)

	var eig mat.Eigen
	if ok := eig.Factorize(embed(m), mat.EigenNone); !ok {
		return nil, fmt.Errorf("%w: eigendecomposition of a %dx%d matrix did not converge",
			ErrFactorizationFailed, n, n)
	}
	return eig.Values(nil), nil
}
