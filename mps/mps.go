// Copyright (c) 2026 The tenet authors
//
// Use of this software is governed by the GNU General Public License v3
// included in the LICENSE file and at www.gnu.org/licenses/gpl-3.0.html.

// Package mps implements matrix product states in right-canonical form, the
// state representation shared by all simulation engines of this module.
//
// A state over L sites is stored as L site tensors B[0] .. B[L-1] with legs
// (vL, p, vR) and L Schmidt vectors S[0] .. S[L-1], where S[i] holds the
// Schmidt values of the bond left of site i. All B tensors are right
// isometries, so the contraction diag(S[i]) * B[i] is the one-site wave
// function in the Schmidt basis. For finite boundary conditions the first and
// last virtual legs have dimension one and S[0] is the trivial [1]; for
// infinite boundary conditions the chain of tensors repeats periodically and
// every bond carries Schmidt values.
package mps

import (
	"errors"
	"fmt"
	"math"
	"unsafe"

	"github.com/latticeworks/tenet/common"
	"github.com/latticeworks/tenet/tensor"
)

// BoundaryCondition selects between a finite chain and an infinite,
// translation invariant chain represented by a repeating unit cell.
type BoundaryCondition int

const (
	// Finite marks a chain with open ends.
	Finite BoundaryCondition = iota
	// Infinite marks a repeating unit cell.
	Infinite
)

func (bc BoundaryCondition) String() string {
	switch bc {
	case Finite:
		return "finite"
	case Infinite:
		return "infinite"
	default:
		return fmt.Sprintf("BoundaryCondition(%d)", int(bc))
	}
}

// ParseBoundaryCondition converts the names "finite" and "infinite" into a
// BoundaryCondition.
func ParseBoundaryCondition(s string) (BoundaryCondition, error) {
	switch s {
	case "finite":
		return Finite, nil
	case "infinite":
		return Infinite, nil
	default:
		return 0, fmt.Errorf("unknown boundary condition %q", s)
	}
}

// ErrNotNormalized indicates Schmidt values that have drifted away from unit
// norm, which signals a bug in whatever algorithm produced the state.
var ErrNotNormalized = errors.New("schmidt values are not normalized")

// MPS is a matrix product state in right-canonical form.
type MPS struct {
	bs []*tensor.Dense
	ss [][]float64
	bc BoundaryCondition
}

// New assembles a state from site tensors and Schmidt vectors, taking
// ownership of the slices. It validates leg shapes and bond consistency, but
// not the canonical form itself; see CheckCanonical for that.
func New(bs []*tensor.Dense, ss [][]float64, bc BoundaryCondition) (*MPS, error) {
	if len(bs) == 0 {
		return nil, fmt.Errorf("a matrix product state needs at least one site")
	}
	if len(bs) != len(ss) {
		return nil, fmt.Errorf("got %d site tensors but %d schmidt vectors", len(bs), len(ss))
	}
	l := len(bs)
	for i, b := range bs {
		if b.Rank() != 3 {
			return nil, fmt.Errorf("site tensor %d has rank %d, want 3", i, b.Rank())
		}
		if len(ss[i]) != b.Dim(0) {
			return nil, fmt.Errorf("schmidt vector %d has %d values, want %d", i, len(ss[i]), b.Dim(0))
		}
		next := (i + 1) % l
		if bc == Finite && next == 0 {
			continue
		}
		if b.Dim(2) != bs[next].Dim(0) {
			return nil, fmt.Errorf("bond between sites %d and %d disagrees: %d vs %d", i, next, b.Dim(2), bs[next].Dim(0))
		}
	}
	if bc == Finite {
		if bs[0].Dim(0) != 1 || bs[l-1].Dim(2) != 1 {
			return nil, fmt.Errorf("finite chains must terminate in bond dimension one")
		}
	}
	return &MPS{bs: bs, ss: ss, bc: bc}, nil
}

// NewProductState creates the product state with the given local basis state
// on each site. All bond dimensions are one.
func NewProductState(d int, states []int, bc BoundaryCondition) (*MPS, error) {
	if d < 2 {
		return nil, fmt.Errorf("local dimension must be at least 2, got %d", d)
	}
	bs := make([]*tensor.Dense, len(states))
	ss := make([][]float64, len(states))
	for i, s := range states {
		if s < 0 || s >= d {
			return nil, fmt.Errorf("state %d out of range for local dimension %d at site %d", s, d, i)
		}
		b := tensor.New(1, d, 1)
		b.Set(1, 0, s, 0)
		bs[i] = b
		ss[i] = []float64{1}
	}
	return New(bs, ss, bc)
}

// NewFerromagnet creates the spin-1/2 product state with all spins up.
func NewFerromagnet(l int, bc BoundaryCondition) (*MPS, error) {
	if l < 1 {
		return nil, fmt.Errorf("chain length must be positive, got %d", l)
	}
	return NewProductState(2, make([]int, l), bc)
}

// NewNeelState creates the spin-1/2 product state with alternating spins,
// starting with up on site zero.
func NewNeelState(l int, bc BoundaryCondition) (*MPS, error) {
	if l < 1 {
		return nil, fmt.Errorf("chain length must be positive, got %d", l)
	}
	states := make([]int, l)
	for i := range states {
		states[i] = i % 2
	}
	return NewProductState(2, states, bc)
}

// Len returns the number of sites (the unit cell size for infinite chains).
func (m *MPS) Len() int {
	return len(m.bs)
}

// Boundary returns the boundary condition.
func (m *MPS) Boundary() BoundaryCondition {
	return m.bc
}

// NumBonds returns the number of nontrivial bonds: L-1 for finite chains and
// L for infinite chains.
func (m *MPS) NumBonds() int {
	if m.bc == Finite {
		return len(m.bs) - 1
	}
	return len(m.bs)
}

// PhysDim returns the physical dimension of the given site.
func (m *MPS) PhysDim(i int) int {
	return m.bs[i].Dim(1)
}

// B returns the right-canonical tensor of site i with legs (vL, p, vR).
func (m *MPS) B(i int) *tensor.Dense {
	return m.bs[i]
}

// SetB replaces the tensor of site i, taking ownership.
func (m *MPS) SetB(i int, b *tensor.Dense) {
	m.bs[i] = b
}

// S returns the Schmidt values on the bond left of site i.
func (m *MPS) S(i int) []float64 {
	return m.ss[i]
}

// SetS replaces the Schmidt values on the bond left of site i, taking
// ownership.
func (m *MPS) SetS(i int, s []float64) {
	m.ss[i] = s
}

// Copy returns a deep copy of the state.
func (m *MPS) Copy() *MPS {
	bs := make([]*tensor.Dense, len(m.bs))
	ss := make([][]float64, len(m.ss))
	for i := range m.bs {
		bs[i] = m.bs[i].Clone()
		ss[i] = append([]float64(nil), m.ss[i]...)
	}
	return &MPS{bs: bs, ss: ss, bc: m.bc}
}

// BondDims returns the bond dimension to the right of each site.
func (m *MPS) BondDims() []int {
	dims := make([]int, m.NumBonds())
	for i := range dims {
		dims[i] = m.bs[i].Dim(2)
	}
	return dims
}

// MaxBondDim returns the largest bond dimension of the state.
func (m *MPS) MaxBondDim() int {
	max := 1
	for _, b := range m.bs {
		if b.Dim(2) > max {
			max = b.Dim(2)
		}
		if b.Dim(0) > max {
			max = b.Dim(0)
		}
	}
	return max
}

// Theta1 returns the one-site wave function diag(S[i]) * B[i] with legs
// (vL, p, vR).
func (m *MPS) Theta1(i int) *tensor.Dense {
	return tensor.MulDiagLeft(m.ss[i], m.bs[i])
}

// Theta2 returns the two-site wave function on the bond between site i and
// its right neighbor, with legs (vL, p_i, p_j, vR).
func (m *MPS) Theta2(i int) *tensor.Dense {
	j := (i + 1) % len(m.bs)
	return tensor.Contract(m.Theta1(i), m.bs[j], []int{2}, []int{0})
}

// SiteExpectations measures a local operator on every site and returns the
// per-site expectation values. The operator must be Hermitian with shape
// (d, d); its expectation values are real.
func (m *MPS) SiteExpectations(op *tensor.Dense) []float64 {
	result := make([]float64, len(m.bs))
	for i := range m.bs {
		theta := m.Theta1(i) // vL p vR
		// apply the operator to the physical leg
		opTheta := tensor.Contract(op, theta, []int{1}, []int{1}) // p vL vR
		result[i] = real(tensor.Dot(theta, opTheta.Transpose(1, 0, 2)))
	}
	return result
}

// BondExpectations measures one two-site operator per bond and returns the
// per-bond expectation values. Each operator must be Hermitian with legs
// (p_i, p_j, p_i*, p_j*).
func (m *MPS) BondExpectations(ops []*tensor.Dense) []float64 {
	if len(ops) != m.NumBonds() {
		panic(fmt.Sprintf("mps: got %d bond operators for %d bonds", len(ops), m.NumBonds()))
	}
	result := make([]float64, len(ops))
	for i := range ops {
		theta := m.Theta2(i) // vL i j vR
		opTheta := tensor.Contract(ops[i], theta, []int{2, 3}, []int{1, 2}) // i j vL vR
		result[i] = real(tensor.Dot(theta, opTheta.Transpose(2, 0, 1, 3)))
	}
	return result
}

// EntanglementEntropy returns the von Neumann entanglement entropy across
// the bond left of site i.
func (m *MPS) EntanglementEntropy(i int) (float64, error) {
	s := m.ss[i]
	norm := 0.0
	for _, v := range s {
		norm += v * v
	}
	if math.Abs(math.Sqrt(norm)-1) > 1e-8 {
		return 0, fmt.Errorf("%w: bond %d has norm %g", ErrNotNormalized, i, math.Sqrt(norm))
	}
	entropy := 0.0
	for _, v := range s {
		if v < 1e-20 {
			continue
		}
		s2 := v * v
		entropy -= s2 * math.Log(s2)
	}
	return entropy, nil
}

// EntanglementEntropies returns the entanglement entropy of every
// nontrivial bond: bonds 1 to L-1 for finite chains, bonds 0 to L-1 for
// infinite chains.
func (m *MPS) EntanglementEntropies() ([]float64, error) {
	first := 0
	if m.bc == Finite {
		first = 1
	}
	result := make([]float64, 0, len(m.bs)-first)
	for i := first; i < len(m.bs); i++ {
		entropy, err := m.EntanglementEntropy(i)
		if err != nil {
			return nil, err
		}
		result = append(result, entropy)
	}
	return result, nil
}

// CheckCanonical verifies the right-canonical form: every site tensor must
// be a right isometry and every Schmidt vector normalized, up to the given
// tolerance. It reports the first violation found.
func (m *MPS) CheckCanonical(tol float64) error {
	for i, b := range m.bs {
		// sum_{p, vR} B[a, p, vR] * conj(B[b, p, vR]) must be the identity
		gram := tensor.Contract(b, b.Conj(), []int{1, 2}, []int{1, 2})
		chi := b.Dim(0)
		for a := 0; a < chi; a++ {
			for c := 0; c < chi; c++ {
				want := complex128(0)
				if a == c {
					want = 1
				}
				if d := gram.At(a, c) - want; math.Hypot(real(d), imag(d)) > tol {
					return fmt.Errorf("site %d is not a right isometry: deviation %g at (%d, %d)",
						i, math.Hypot(real(d), imag(d)), a, c)
				}
			}
		}
		norm := 0.0
		for _, v := range m.ss[i] {
			norm += v * v
		}
		if math.Abs(math.Sqrt(norm)-1) > tol {
			return fmt.Errorf("%w: bond %d has norm %g", ErrNotNormalized, i, math.Sqrt(norm))
		}
	}
	return nil
}

// MemoryFootprint returns the memory used by the state.
func (m *MPS) MemoryFootprint() *common.MemoryFootprint {
	footprint := common.NewMemoryFootprint(unsafe.Sizeof(*m))
	tensors := common.NewMemoryFootprint(0)
	for _, b := range m.bs {
		tensors.AddChild(fmt.Sprintf("%p", b), b.MemoryFootprint())
	}
	schmidt := uintptr(0)
	for _, s := range m.ss {
		schmidt += uintptr(cap(s)) * unsafe.Sizeof(float64(0))
	}
	footprint.AddChild("tensors", tensors)
	footprint.AddChild("schmidt", common.NewMemoryFootprint(schmidt))
	return footprint
}
