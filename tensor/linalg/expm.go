// Copyright (c) 2026 The tenet authors
//
// Use of this software is governed by the GNU General Public License v3
// included in the LICENSE file and at www.gnu.org/licenses/gpl-3.0.html.

package linalg

import (
	"math/cmplx"

	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/cblas128"
	"gonum.org/v1/gonum/mat"

	"github.com/latticeworks/tenet/tensor"
)

// ExpM computes exp(z*h) for a Hermitian matrix h through its
// eigendecomposition: with h = V * diag(w) * V^H the result is
// V * diag(exp(z*w)) * V^H. Typical arguments are z = -dt for an imaginary
// time step and z = -i*dt for real time evolution.
func ExpM(h *tensor.Dense, z complex128) (*tensor.Dense, error) {
	values, vectors, err := EigH(h)
	if err != nil {
		return nil, err
	}
	n := h.Dim(0)

	// scale the columns of V by exp(z*w) and multiply by V^H
	scaled := vectors.Clone()
	data := scaled.Data()
	for t := 0; t < n; t++ {
		factor := cmplx.Exp(z * complex(values[t], 0))
		for i := 0; i < n; i++ {
			data[i*n+t] *= factor
		}
	}
	adjoint := vectors.Conj().Transpose(1, 0)

	out := mat.NewCDense(n, n, nil)
	cblas128.Gemm(blas.NoTrans, blas.NoTrans, 1,
		mat.NewCDense(n, n, scaled.Data()).RawCMatrix(),
		mat.NewCDense(n, n, adjoint.Data()).RawCMatrix(),
		0, out.RawCMatrix())
	return tensor.FromData(out.RawCMatrix().Data, n, n), nil
}
