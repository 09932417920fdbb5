// Copyright (c) 2026 The tenet authors
//
// Use of this software is governed by the GNU General Public License v3
// included in the LICENSE file and at www.gnu.org/licenses/gpl-3.0.html.

// Package model defines one-dimensional quantum lattice models in the two
// forms the simulation engines consume: as a list of two-site bond operators
// for Trotterized time evolution, and as a matrix product operator for
// variational sweeps. Both forms describe the same Hamiltonian; tests verify
// their energies agree.
package model

import (
	"fmt"

	"github.com/latticeworks/tenet/mps"
	"github.com/latticeworks/tenet/tensor"
)

// Model is a Hamiltonian over a chain of identical sites, presented both as
// bond operators and as a matrix product operator. The returned tensors are
// shared and must not be modified by callers.
type Model interface {
	// Len returns the number of sites (the unit cell size for infinite
	// chains).
	Len() int
	// PhysDim returns the local Hilbert space dimension of a single site.
	PhysDim() int
	// Boundary returns the boundary condition of the chain.
	Boundary() mps.BoundaryCondition
	// NumBonds returns the number of nearest neighbor bonds.
	NumBonds() int
	// BondOperator returns the two-site Hamiltonian term of bond i with
	// legs (p_i, p_j, p_i*, p_j*). On-site terms are distributed onto the
	// adjacent bonds, so the bond operators sum to the full Hamiltonian.
	BondOperator(i int) *tensor.Dense
	// MPO returns the matrix product operator tensor of site i with legs
	// (wL, wR, p, p*).
	MPO(i int) *tensor.Dense
	// MPOBondDim returns the virtual bond dimension of the MPO.
	MPOBondDim() int
}

// SigmaX returns the Pauli X matrix.
func SigmaX() *tensor.Dense {
	return tensor.FromData([]complex128{0, 1, 1, 0}, 2, 2)
}

// SigmaY returns the Pauli Y matrix.
func SigmaY() *tensor.Dense {
	return tensor.FromData([]complex128{0, -1i, 1i, 0}, 2, 2)
}

// SigmaZ returns the Pauli Z matrix.
func SigmaZ() *tensor.Dense {
	return tensor.FromData([]complex128{1, 0, 0, -1}, 2, 2)
}

// Identity returns the 2x2 identity matrix.
func Identity() *tensor.Dense {
	return tensor.Eye(2)
}

// BondOperators collects the bond operators of all bonds.
func BondOperators(m Model) []*tensor.Dense {
	ops := make([]*tensor.Dense, m.NumBonds())
	for i := range ops {
		ops[i] = m.BondOperator(i)
	}
	return ops
}

// Energy evaluates the energy of a state under the model by summing bond
// expectation values. For infinite chains the result is the energy of one
// unit cell. The state must live on the model's chain.
func Energy(m Model, psi *mps.MPS) float64 {
	checkCompatible(m, psi)
	total := 0.0
	for _, value := range psi.BondExpectations(BondOperators(m)) {
		total += value
	}
	return total
}

// EnergyPerSite evaluates the energy density of a state under the model.
func EnergyPerSite(m Model, psi *mps.MPS) float64 {
	return Energy(m, psi) / float64(m.Len())
}

func checkCompatible(m Model, psi *mps.MPS) {
	if psi.Len() != m.Len() || psi.Boundary() != m.Boundary() {
		panic(fmt.Sprintf("model: state of %d %s sites does not match model of %d %s sites",
			psi.Len(), psi.Boundary(), m.Len(), m.Boundary()))
	}
	if psi.PhysDim(0) != m.PhysDim() {
		panic(fmt.Sprintf("model: state with local dimension %d does not match model with local dimension %d",
			psi.PhysDim(0), m.PhysDim()))
	}
}

// numBonds is shared by the concrete chain models.
func numBonds(l int, bc mps.BoundaryCondition) int {
	if bc == mps.Finite {
		return l - 1
	}
	return l
}

// bondWeights returns the weights with which an on-site term at the left and
// right site of bond i enters the bond operator. In the bulk each site shares
// its term between its two adjacent bonds; at the open ends of a finite
// chain the full term goes to the only bond that touches the site.
func bondWeights(i, l int, bc mps.BoundaryCondition) (left, right float64) {
	left, right = 0.5, 0.5
	if bc == mps.Finite {
		if i == 0 {
			left = 1
		}
		if i+1 == l-1 {
			right = 1
		}
	}
	return left, right
}
