// Copyright (c) 2026 The tenet authors
//
// Use of this software is governed by the GNU General Public License v3
// included in the LICENSE file and at www.gnu.org/licenses/gpl-3.0.html.

package exact

import (
	"fmt"

	"github.com/latticeworks/tenet/krylov"
	"github.com/latticeworks/tenet/model"
	"github.com/latticeworks/tenet/mps"
	"github.com/latticeworks/tenet/tensor"
	"golang.org/x/exp/rand"
)

// hamiltonianOperator applies the bond terms of a model to a full state
// vector without materializing the Hamiltonian matrix. Site 0 owns the most
// significant digit of the basis index.
type hamiltonianOperator struct {
	m       model.Model
	dim     int
	strides []int
}

// HamiltonianOperator presents a finite model as a matrix-free operator on
// the full many-body Hilbert space, suitable for the Lanczos routines.
func HamiltonianOperator(m model.Model) (krylov.Operator, error) {
	if m.Boundary() != mps.Finite {
		return nil, fmt.Errorf("exact diagonalization needs a finite chain, got %s", m.Boundary())
	}
	l, d := m.Len(), m.PhysDim()
	dim := 1
	strides := make([]int, l)
	for i := l - 1; i >= 0; i-- {
		strides[i] = dim
		dim *= d
	}
	return &hamiltonianOperator{m: m, dim: dim, strides: strides}, nil
}

func (h *hamiltonianOperator) Dim() int {
	return h.dim
}

func (h *hamiltonianOperator) Apply(dst, src []complex128) {
	for i := range dst {
		dst[i] = 0
	}
	d := h.m.PhysDim()
	for bond := 0; bond < h.m.NumBonds(); bond++ {
		op := h.m.BondOperator(bond)
		si, sj := h.strides[bond], h.strides[bond+1]
		for n, amp := range src {
			if amp == 0 {
				continue
			}
			qi := (n / si) % d
			qj := (n / sj) % d
			base := n - qi*si - qj*sj
			for pi := 0; pi < d; pi++ {
				for pj := 0; pj < d; pj++ {
					v := op.At(pi, pj, qi, qj)
					if v == 0 {
						continue
					}
					dst[base+pi*si+pj*sj] += v * amp
				}
			}
		}
	}
}

// FiniteGroundState computes the ground state energy and vector of a finite
// model by Lanczos iteration on the full Hilbert space. Feasible up to
// roughly 16 sites for spin one half chains.
func FiniteGroundState(m model.Model) (float64, []complex128, error) {
	op, err := HamiltonianOperator(m)
	if err != nil {
		return 0, nil, err
	}
	start := randomState(op.Dim(), 1)
	energy, state, err := krylov.GroundState(op, start, krylov.Options{})
	if err != nil {
		return 0, nil, fmt.Errorf("failed to converge ground state: %w", err)
	}
	return energy, state, nil
}

// EvolveState propagates a full state vector by exp(z H) under the model
// Hamiltonian.
func EvolveState(m model.Model, state []complex128, z complex128) ([]complex128, error) {
	op, err := HamiltonianOperator(m)
	if err != nil {
		return nil, err
	}
	if len(state) != op.Dim() {
		return nil, fmt.Errorf("state vector of length %d does not match hilbert space of %d", len(state), op.Dim())
	}
	return krylov.Evolve(op, state, z, krylov.Options{})
}

// StateFromMPS contracts a finite matrix product state into the full state
// vector, with site 0 as the most significant digit. Feasible only for
// short chains.
func StateFromMPS(psi *mps.MPS) ([]complex128, error) {
	if psi.Boundary() != mps.Finite {
		return nil, fmt.Errorf("only finite states have a full state vector, got %s", psi.Boundary())
	}
	// Grow the joint tensor site by site: (1, d, ..., d, chi).
	acc := psi.Theta1(0)
	for i := 1; i < psi.Len(); i++ {
		acc = tensor.Contract(acc, psi.B(i), []int{acc.Rank() - 1}, []int{0})
	}
	dim := 1
	for i := 0; i < psi.Len(); i++ {
		dim *= psi.PhysDim(i)
	}
	return append([]complex128(nil), acc.Reshape(dim).Data()...), nil
}

// Overlap returns the inner product <a|b> of two state vectors.
func Overlap(a, b []complex128) complex128 {
	if len(a) != len(b) {
		panic(fmt.Sprintf("exact: overlap of vectors with lengths %d and %d", len(a), len(b)))
	}
	sum := complex128(0)
	for i := range a {
		sum += complex(real(a[i]), -imag(a[i])) * b[i]
	}
	return sum
}

// randomState draws a reproducible random start vector. A fixed seed keeps
// reference energies identical across runs.
func randomState(dim int, seed uint64) []complex128 {
	rng := rand.New(rand.NewSource(seed))
	state := make([]complex128, dim)
	for i := range state {
		state[i] = complex(rng.NormFloat64(), rng.NormFloat64())
	}
	return state
}
