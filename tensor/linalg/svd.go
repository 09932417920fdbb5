// Copyright (c) 2026 The tenet authors
//
// Use of this software is governed by the GNU General Public License v3
// included in the LICENSE file and at www.gnu.org/licenses/gpl-3.0.html.

package linalg

import (
	"fmt"
	"math/cmplx"

	"gonum.org/v1/gonum/mat"

	"github.com/latticeworks/tenet/tensor"
)

// SVD computes the thin singular value decomposition m = U * diag(s) * Vh of
// a rank-2 tensor of shape (r, c). It returns U of shape (r, k), the k
// singular values in descending order, and Vh of shape (k, c), with
// k = min(r, c). U has orthonormal columns and Vh orthonormal rows.
func SVD(m *tensor.Dense) (u *tensor.Dense, s []float64, vh *tensor.Dense, err error) {
	checkMatrix(m)
	r, c := m.Dim(0), m.Dim(1)
	k := min(r, c)

	var svd mat.SVD
	if ok := svd.Factorize(embed(m), mat.SVDThin); !ok {
		return nil, nil, nil, fmt.Errorf("%w: SVD of a %dx%d matrix did not converge", ErrFactorizationFailed, r, c)
	}
	values := svd.Values(nil)
	var bigU, bigV mat.Dense
	svd.UTo(&bigU)
	svd.VTo(&bigV)

	// Each singular value of m appears twice among the 2k embedded values.
	// Per degenerate group, half of the embedded singular vector pairs map
	// to an orthonormal set of complex pairs.
	scale := 0.0
	if len(values) > 0 {
		scale = values[0]
	}
	us, vs, sOut, err := recoverPairs(values, &bigU, &bigV, r, c, k, scale)
	if err != nil {
		return nil, nil, nil, err
	}

	u = tensor.New(r, k)
	vh = tensor.New(k, c)
	for t := 0; t < k; t++ {
		for i := 0; i < r; i++ {
			u.Set(us[t][i], i, t)
		}
		for j := 0; j < c; j++ {
			vh.Set(cmplx.Conj(vs[t][j]), t, j)
		}
	}
	return u, sOut, vh, nil
}

func recoverPairs(values []float64, bigU, bigV *mat.Dense, r, c, k int, scale float64) (us, vs [][]complex128, s []float64, err error) {
	groups := groupRanges(values, scale)
	us = make([][]complex128, 0, k)
	vs = make([][]complex128, 0, k)
	s = make([]float64, 0, k)
	for _, g := range groups {
		lo, hi := g[0], g[1]
		if len(us) >= k {
			break
		}
		want := min((hi-lo)/2, k-len(us))
		if want == 0 {
			// a group of odd size means the degeneracy detection split a
			// duplicated pair; fall back to one global group below
			break
		}
		candU := make([][]complex128, 0, hi-lo)
		candV := make([][]complex128, 0, hi-lo)
		for t := lo; t < hi; t++ {
			candU = append(candU, column(bigU, r, t))
			candV = append(candV, column(bigV, c, t))
		}
		var accU, accV [][]complex128
		if values[lo] <= scale*degeneracyTol {
			// null space: the pairing between left and right vectors is
			// void, both sides are orthonormalized independently
			accU, _, err = orthonormalize(candU, nil, want)
			if err == nil {
				accV, _, err = orthonormalize(candV, nil, want)
			}
		} else {
			accU, accV, err = orthonormalize(candU, candV, want)
		}
		if err != nil {
			return nil, nil, nil, err
		}
		us = append(us, accU...)
		vs = append(vs, accV...)
		for t := 0; t < want; t++ {
			s = append(s, values[lo+2*t])
		}
	}
	if len(us) == k {
		return us, vs, s, nil
	}

	// Fallback for pathological degeneracy grouping: treat all embedded
	// vectors as one group. Vectors of distinct singular values are already
	// orthogonal, so a global Gram-Schmidt remains valid.
	candU := make([][]complex128, 0, len(values))
	candV := make([][]complex128, 0, len(values))
	for t := range values {
		candU = append(candU, column(bigU, r, t))
		candV = append(candV, column(bigV, c, t))
	}
	accU, accV, err := orthonormalize(candU, candV, k)
	if err != nil {
		return nil, nil, nil, err
	}
	s = make([]float64, 0, k)
	for t := 0; t < k; t++ {
		s = append(s, values[min(2*t, len(values)-1)])
	}
	return accU, accV, s, nil
}
