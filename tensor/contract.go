// Copyright (c) 2026 The tenet authors
//
// Use of this software is governed by the GNU General Public License v3
// included in the LICENSE file and at www.gnu.org/licenses/gpl-3.0.html.

package tensor

import (
	"fmt"

	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/cblas128"
	"gonum.org/v1/gonum/mat"
)

// Contract contracts the legs axesA of a with the legs axesB of b, pairing
// axesA[k] with axesB[k]. The result carries a's free legs in their original
// order followed by b's free legs. Contracting all legs of both tensors
// yields a rank-0 tensor.
//
// Internally both operands are permuted into matrix form and multiplied via
// gonum, so a contraction costs one complex matrix product plus up to two
// transposes.
func Contract(a, b *Dense, axesA, axesB []int) *Dense {
	if len(axesA) != len(axesB) {
		panic(fmt.Sprintf("tensor: mismatched contraction axes %v and %v", axesA, axesB))
	}
	freeA := freeAxes(a.Rank(), axesA)
	freeB := freeAxes(b.Rank(), axesB)
	for k := range axesA {
		if a.shape[axesA[k]] != b.shape[axesB[k]] {
			panic(fmt.Sprintf("tensor: contracted dimensions disagree: shape %v axes %v vs shape %v axes %v",
				a.shape, axesA, b.shape, axesB))
		}
	}

	// Bring a into (free, contracted) and b into (contracted, free) layout.
	// Operands are only read, so an already fitting layout is used as is.
	permA := append(append([]int{}, freeA...), axesA...)
	permB := append(append([]int{}, axesB...), freeB...)
	aT, bT := a, b
	if !isIdentityPerm(permA) {
		aT = a.Transpose(permA...)
	}
	if !isIdentityPerm(permB) {
		bT = b.Transpose(permB...)
	}

	m, k, n := 1, 1, 1
	outShape := make([]int, 0, len(freeA)+len(freeB))
	for _, ax := range freeA {
		m *= a.shape[ax]
		outShape = append(outShape, a.shape[ax])
	}
	for _, ax := range axesA {
		k *= a.shape[ax]
	}
	for _, ax := range freeB {
		n *= b.shape[ax]
		outShape = append(outShape, b.shape[ax])
	}

	product := mat.NewCDense(m, n, nil)
	cblas128.Gemm(blas.NoTrans, blas.NoTrans, 1,
		mat.NewCDense(m, k, aT.data).RawCMatrix(),
		mat.NewCDense(k, n, bT.data).RawCMatrix(),
		0, product.RawCMatrix())
	return &Dense{shape: outShape, data: product.RawCMatrix().Data}
}

// Kron returns the Kronecker product of two rank-2 tensors: for a of shape
// (m, n) and b of shape (p, q) the result has shape (m*p, n*q) with
// out[i*p+k, j*q+l] = a[i, j] * b[k, l].
func Kron(a, b *Dense) *Dense {
	if a.Rank() != 2 || b.Rank() != 2 {
		panic(fmt.Sprintf("tensor: Kron requires rank-2 operands, got ranks %d and %d", a.Rank(), b.Rank()))
	}
	m, n := a.shape[0], a.shape[1]
	p, q := b.shape[0], b.shape[1]
	out := New(m*p, n*q)
	for i := 0; i < m; i++ {
		for j := 0; j < n; j++ {
			av := a.data[i*n+j]
			if av == 0 {
				continue
			}
			for k := 0; k < p; k++ {
				rowBase := (i*p + k) * n * q
				for l := 0; l < q; l++ {
					out.data[rowBase+j*q+l] = av * b.data[k*q+l]
				}
			}
		}
	}
	return out
}

// MulDiagLeft multiplies a diagonal matrix into the first leg of t, returning
// out[a, ...] = d[a] * t[a, ...] as a new tensor.
func MulDiagLeft(d []float64, t *Dense) *Dense {
	if t.Rank() < 1 || t.shape[0] != len(d) {
		panic(fmt.Sprintf("tensor: diagonal of length %d does not fit first leg of shape %v", len(d), t.shape))
	}
	out := t.Clone()
	block := len(t.data) / len(d)
	for a, f := range d {
		z := complex(f, 0)
		for i := a * block; i < (a+1)*block; i++ {
			out.data[i] *= z
		}
	}
	return out
}

// MulDiagRight multiplies a diagonal matrix into the last leg of t, returning
// out[..., c] = t[..., c] * d[c] as a new tensor.
func MulDiagRight(t *Dense, d []float64) *Dense {
	last := t.Rank() - 1
	if last < 0 || t.shape[last] != len(d) {
		panic(fmt.Sprintf("tensor: diagonal of length %d does not fit last leg of shape %v", len(d), t.shape))
	}
	out := t.Clone()
	for i := range out.data {
		out.data[i] *= complex(d[i%len(d)], 0)
	}
	return out
}

func freeAxes(rank int, contracted []int) []int {
	used := make([]bool, rank)
	for _, ax := range contracted {
		if ax < 0 || ax >= rank {
			panic(fmt.Sprintf("tensor: contraction axis %d out of range for rank %d", ax, rank))
		}
		if used[ax] {
			panic(fmt.Sprintf("tensor: duplicate contraction axis %d", ax))
		}
		used[ax] = true
	}
	free := make([]int, 0, rank-len(contracted))
	for ax := 0; ax < rank; ax++ {
		if !used[ax] {
			free = append(free, ax)
		}
	}
	return free
}
