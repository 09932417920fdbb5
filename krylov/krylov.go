// Copyright (c) 2026 The tenet authors
//
// Use of this software is governed by the GNU General Public License v3
// included in the LICENSE file and at www.gnu.org/licenses/gpl-3.0.html.

// Package krylov implements iterative Krylov space methods for Hermitian
// linear operators that are only available through their action on a vector:
// Lanczos ground state search and the evaluation of exp(z*H) applied to a
// vector. Both are the workhorses behind variational sweeps and time
// evolution, where the operator is an effective Hamiltonian whose dense form
// would be too large to build.
package krylov

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/cmplxs"
	"gonum.org/v1/gonum/mat"
)

// Operator is a Hermitian linear map on complex vectors of a fixed dimension.
type Operator interface {
	// Dim returns the dimension of the vector space the operator acts on.
	Dim() int
	// Apply computes dst = H * src. Implementations may assume that dst and
	// src do not alias and that both have length Dim.
	Apply(dst, src []complex128)
}

// Options tune the iteration. The zero value selects defaults.
type Options struct {
	// MaxIterations caps the Krylov space dimension; default 200. The space
	// never grows beyond the operator dimension.
	MaxIterations int
	// Tolerance is the relative accuracy target; default 1e-12.
	Tolerance float64
}

const (
	defaultMaxIterations = 200
	defaultTolerance     = 1e-12
)

// ErrNotConverged is returned when the iteration cap is reached before the
// tolerance is met. The best approximation found is still returned.
var ErrNotConverged = errors.New("krylov iteration did not converge")

// ErrZeroStart is returned by GroundState when the start vector has no norm.
var ErrZeroStart = errors.New("krylov start vector has zero norm")

func (o Options) withDefaults() Options {
	if o.MaxIterations <= 0 {
		o.MaxIterations = defaultMaxIterations
	}
	if o.Tolerance <= 0 {
		o.Tolerance = defaultTolerance
	}
	return o
}

// GroundState computes the lowest eigenvalue of op and its eigenvector using
// the Lanczos iteration with full reorthogonalization, starting from the
// given vector. The start vector must have a nonzero overlap with the ground
// state for the result to be the true ground state; a generic start vector
// satisfies this. The returned vector is normalized.
func GroundState(op Operator, start []complex128, opts Options) (float64, []complex128, error) {
	opts = opts.withDefaults()
	n := op.Dim()
	if len(start) != n {
		panic(fmt.Sprintf("krylov: start vector length %d does not match operator dimension %d", len(start), n))
	}
	v := cloneVector(start)
	norm := vectorNorm(v)
	if norm == 0 {
		return 0, nil, ErrZeroStart
	}
	cmplxs.Scale(complex(1/norm, 0), v)

	basis := [][]complex128{v}
	var alphas, betas []float64
	w := make([]complex128, n)
	steps := min(opts.MaxIterations, n)
	for k := 0; k < steps; k++ {
		op.Apply(w, basis[k])
		alpha := real(dotc(basis[k], w))
		alphas = append(alphas, alpha)
		cmplxs.AddScaled(w, complex(-alpha, 0), basis[k])
		if k > 0 {
			cmplxs.AddScaled(w, complex(-betas[k-1], 0), basis[k-1])
		}
		reorthogonalize(w, basis)
		beta := vectorNorm(w)

		value, coeffs, err := lowestTridiagonal(alphas, betas)
		if err != nil {
			return 0, nil, err
		}
		residual := beta * math.Abs(coeffs[len(coeffs)-1])
		converged := residual <= opts.Tolerance*math.Max(1, math.Abs(value))
		breakdown := beta <= breakdownTolerance(alphas, betas)
		if converged || breakdown || k == steps-1 {
			psi := assembleReal(basis, coeffs)
			if converged || breakdown {
				return value, psi, nil
			}
			return value, psi, fmt.Errorf("%w: residual %.2e after %d iterations", ErrNotConverged, residual, k+1)
		}

		cmplxs.Scale(complex(1/beta, 0), w)
		basis = append(basis, cloneVector(w))
		betas = append(betas, beta)
	}
	return 0, nil, ErrNotConverged
}

// Evolve computes exp(z*op) applied to the given vector by evaluating the
// exponential on a growing Krylov subspace. For purely imaginary z, the
// evolution is unitary and the result is rescaled to the exact input norm. A
// zero input evolves to zero.
func Evolve(op Operator, start []complex128, z complex128, opts Options) ([]complex128, error) {
	opts = opts.withDefaults()
	n := op.Dim()
	if len(start) != n {
		panic(fmt.Sprintf("krylov: start vector length %d does not match operator dimension %d", len(start), n))
	}
	norm := vectorNorm(start)
	if norm == 0 || z == 0 {
		return cloneVector(start), nil
	}
	v := cloneVector(start)
	cmplxs.Scale(complex(1/norm, 0), v)

	basis := [][]complex128{v}
	var alphas, betas []float64
	w := make([]complex128, n)
	steps := min(opts.MaxIterations, n)
	for k := 0; k < steps; k++ {
		op.Apply(w, basis[k])
		alpha := real(dotc(basis[k], w))
		alphas = append(alphas, alpha)
		cmplxs.AddScaled(w, complex(-alpha, 0), basis[k])
		if k > 0 {
			cmplxs.AddScaled(w, complex(-betas[k-1], 0), basis[k-1])
		}
		reorthogonalize(w, basis)
		beta := vectorNorm(w)

		y, err := exponentialTridiagonal(alphas, betas, z, norm)
		if err != nil {
			return nil, err
		}
		tail := cmplx.Abs(y[len(y)-1])
		converged := tail <= opts.Tolerance*vectorNorm(y)
		breakdown := beta <= breakdownTolerance(alphas, betas)
		if converged || breakdown || k == steps-1 {
			psi := assembleComplex(basis, y)
			if real(z) == 0 {
				// unitary evolution preserves the norm exactly
				psiNorm := vectorNorm(psi)
				if psiNorm > 0 {
					cmplxs.Scale(complex(norm/psiNorm, 0), psi)
				}
			}
			if converged || breakdown {
				return psi, nil
			}
			return psi, fmt.Errorf("%w: tail weight %.2e after %d iterations", ErrNotConverged, tail, k+1)
		}

		cmplxs.Scale(complex(1/beta, 0), w)
		basis = append(basis, cloneVector(w))
		betas = append(betas, beta)
	}
	return nil, ErrNotConverged
}

// lowestTridiagonal returns the smallest eigenvalue of the symmetric
// tridiagonal matrix with the given diagonal and off-diagonal, together with
// its eigenvector.
func lowestTridiagonal(alphas, betas []float64) (float64, []float64, error) {
	k := len(alphas)
	m := mat.NewSymDense(k, nil)
	for i := 0; i < k; i++ {
		m.SetSym(i, i, alphas[i])
		if i+1 < k {
			m.SetSym(i, i+1, betas[i])
		}
	}
	var eig mat.EigenSym
	if ok := eig.Factorize(m, true); !ok {
		return 0, nil, fmt.Errorf("failed to diagonalize %dx%d tridiagonal matrix", k, k)
	}
	var vecs mat.Dense
	eig.VectorsTo(&vecs)
	coeffs := make([]float64, k)
	for i := 0; i < k; i++ {
		coeffs[i] = vecs.At(i, 0)
	}
	return eig.Values(nil)[0], coeffs, nil
}

// exponentialTridiagonal computes scale * exp(z*T) * e_1 for the symmetric
// tridiagonal matrix T defined by alphas and betas.
func exponentialTridiagonal(alphas, betas []float64, z complex128, scale float64) ([]complex128, error) {
	k := len(alphas)
	m := mat.NewSymDense(k, nil)
	for i := 0; i < k; i++ {
		m.SetSym(i, i, alphas[i])
		if i+1 < k {
			m.SetSym(i, i+1, betas[i])
		}
	}
	var eig mat.EigenSym
	if ok := eig.Factorize(m, true); !ok {
		return nil, fmt.Errorf("failed to diagonalize %dx%d tridiagonal matrix", k, k)
	}
	var vecs mat.Dense
	eig.VectorsTo(&vecs)
	values := eig.Values(nil)

	y := make([]complex128, k)
	for t := 0; t < k; t++ {
		weight := cmplx.Exp(z*complex(values[t], 0)) * complex(vecs.At(0, t)*scale, 0)
		for j := 0; j < k; j++ {
			y[j] += complex(vecs.At(j, t), 0) * weight
		}
	}
	return y, nil
}

// breakdownTolerance is the beta threshold below which the Krylov space is
// treated as invariant and the current approximation as exact.
func breakdownTolerance(alphas, betas []float64) float64 {
	scale := 0.0
	for _, a := range alphas {
		scale = math.Max(scale, math.Abs(a))
	}
	for _, b := range betas {
		scale = math.Max(scale, math.Abs(b))
	}
	return 1e-14 * math.Max(scale, 1)
}

func reorthogonalize(w []complex128, basis [][]complex128) {
	for pass := 0; pass < 2; pass++ {
		for _, b := range basis {
			coef := dotc(b, w)
			cmplxs.AddScaled(w, -coef, b)
		}
	}
}

func assembleReal(basis [][]complex128, coeffs []float64) []complex128 {
	psi := make([]complex128, len(basis[0]))
	for i, c := range coeffs {
		cmplxs.AddScaled(psi, complex(c, 0), basis[i])
	}
	norm := vectorNorm(psi)
	if norm > 0 {
		cmplxs.Scale(complex(1/norm, 0), psi)
	}
	return psi
}

func assembleComplex(basis [][]complex128, y []complex128) []complex128 {
	psi := make([]complex128, len(basis[0]))
	for i, c := range y {
		cmplxs.AddScaled(psi, c, basis[i])
	}
	return psi
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
