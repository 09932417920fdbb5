// Copyright (c) 2026 The tenet authors
//
// Use of this software is governed by the GNU General Public License v3
// included in the LICENSE file and at www.gnu.org/licenses/gpl-3.0.html.

// Package tensor implements dense complex tensors of arbitrary rank, the
// common currency of all matrix-product-state code in this module. Tensors
// are stored row-major; reshaping is a free metadata operation while
// transposing materializes a new layout. Pairwise contractions are delegated
// to gonum's complex matrix multiplication.
//
// Following gonum's mat package, shape mismatches and invalid axes are
// programming errors and panic. Operations whose failure depends on runtime
// data return errors instead; those live in the linalg sub-package.
package tensor

import (
	"fmt"
	"math"
	"math/cmplx"
	"unsafe"

	"gonum.org/v1/gonum/cmplxs"

	"github.com/latticeworks/tenet/common"
)

// Dense is a dense complex tensor. The zero value is not usable; create
// instances through New, FromData, or Eye.
type Dense struct {
	shape []int
	data  []complex128
}

// New creates a zero-initialized tensor of the given shape. A call without
// dimensions produces a rank-0 tensor holding a single element. All
// dimensions must be positive.
func New(shape ...int) *Dense {
	return &Dense{
		shape: checkShape(shape),
		data:  make([]complex128, sizeOf(shape)),
	}
}

// FromData wraps the given backing slice into a tensor of the given shape
// without copying. The slice length must match the shape's size. Ownership of
// the slice passes to the tensor.
func FromData(data []complex128, shape ...int) *Dense {
	if len(data) != sizeOf(shape) {
		panic(fmt.Sprintf("tensor: data length %d does not match shape %v", len(data), shape))
	}
	return &Dense{shape: checkShape(shape), data: data}
}

// Eye creates the rank-2 identity tensor of the given dimension.
func Eye(n int) *Dense {
	t := New(n, n)
	for i := 0; i < n; i++ {
		t.data[i*n+i] = 1
	}
	return t
}

// Shape returns a copy of the tensor's dimensions.
func (t *Dense) Shape() []int {
	shape := make([]int, len(t.shape))
	copy(shape, t.shape)
	return shape
}

// Rank returns the number of tensor legs.
func (t *Dense) Rank() int {
	return len(t.shape)
}

// Dim returns the size of the given leg.
func (t *Dense) Dim(i int) int {
	return t.shape[i]
}

// Size returns the total number of elements.
func (t *Dense) Size() int {
	return len(t.data)
}

// At returns the element at the given multi-index.
func (t *Dense) At(idx ...int) complex128 {
	return t.data[t.offset(idx)]
}

// Set stores a value at the given multi-index.
func (t *Dense) Set(v complex128, idx ...int) {
	t.data[t.offset(idx)] = v
}

// Data exposes the backing slice in row-major order. Mutations are visible to
// all tensors sharing the storage.
func (t *Dense) Data() []complex128 {
	return t.data
}

// Clone returns a deep copy of the tensor.
func (t *Dense) Clone() *Dense {
	data := make([]complex128, len(t.data))
	copy(data, t.data)
	return &Dense{shape: checkShape(t.shape), data: data}
}

// Reshape returns a tensor of the given shape sharing this tensor's storage.
// The new shape must cover the same number of elements.
func (t *Dense) Reshape(shape ...int) *Dense {
	if sizeOf(shape) != len(t.data) {
		panic(fmt.Sprintf("tensor: cannot reshape %v to %v", t.shape, shape))
	}
	return &Dense{shape: checkShape(shape), data: t.data}
}

// Transpose returns a new tensor with legs reordered such that leg k of the
// result is leg perm[k] of the input.
func (t *Dense) Transpose(perm ...int) *Dense {
	rank := len(t.shape)
	if len(perm) != rank {
		panic(fmt.Sprintf("tensor: permutation %v does not match rank %d", perm, rank))
	}
	seen := make([]bool, rank)
	outShape := make([]int, rank)
	for k, a := range perm {
		if a < 0 || a >= rank || seen[a] {
			panic(fmt.Sprintf("tensor: invalid permutation %v", perm))
		}
		seen[a] = true
		outShape[k] = t.shape[a]
	}
	if isIdentityPerm(perm) {
		return t.Clone()
	}

	outStrides := stridesOf(outShape)
	// contribution[a] is the output offset gained by advancing input leg a.
	contribution := make([]int, rank)
	for k, a := range perm {
		contribution[a] = outStrides[k]
	}

	out := make([]complex128, len(t.data))
	idx := make([]int, rank)
	off := 0
	for i, v := range t.data {
		out[off] = v
		if i == len(t.data)-1 {
			break
		}
		for a := rank - 1; a >= 0; a-- {
			idx[a]++
			off += contribution[a]
			if idx[a] < t.shape[a] {
				break
			}
			idx[a] = 0
			off -= contribution[a] * t.shape[a]
		}
	}
	return &Dense{shape: outShape, data: out}
}

// Conj returns the element-wise complex conjugate as a new tensor.
func (t *Dense) Conj() *Dense {
	out := make([]complex128, len(t.data))
	for i, v := range t.data {
		out[i] = cmplx.Conj(v)
	}
	return &Dense{shape: checkShape(t.shape), data: out}
}

// Scale multiplies all elements by z in place and returns the tensor.
func (t *Dense) Scale(z complex128) *Dense {
	cmplxs.Scale(z, t.data)
	return t
}

// Add accumulates the elements of o into t in place and returns t. Shapes
// must match exactly.
func (t *Dense) Add(o *Dense) *Dense {
	if !sameShape(t.shape, o.shape) {
		panic(fmt.Sprintf("tensor: cannot add shape %v to %v", o.shape, t.shape))
	}
	cmplxs.Add(t.data, o.data)
	return t
}

// Norm returns the Frobenius norm.
func (t *Dense) Norm() float64 {
	sum := 0.0
	for _, v := range t.data {
		sum += real(v)*real(v) + imag(v)*imag(v)
	}
	return math.Sqrt(sum)
}

// Dot returns the inner product of two tensors of identical shape, with the
// elements of a conjugated. Dot(t, t) equals the squared Frobenius norm.
func Dot(a, b *Dense) complex128 {
	if !sameShape(a.shape, b.shape) {
		panic(fmt.Sprintf("tensor: cannot dot shape %v with %v", a.shape, b.shape))
	}
	var sum complex128
	for i, v := range a.data {
		sum += cmplx.Conj(v) * b.data[i]
	}
	return sum
}

// MemoryFootprint returns the memory used by this tensor.
func (t *Dense) MemoryFootprint() *common.MemoryFootprint {
	size := unsafe.Sizeof(*t)
	size += uintptr(cap(t.shape)) * unsafe.Sizeof(int(0))
	size += uintptr(cap(t.data)) * unsafe.Sizeof(complex128(0))
	return common.NewMemoryFootprint(size)
}

func (t *Dense) offset(idx []int) int {
	if len(idx) != len(t.shape) {
		panic(fmt.Sprintf("tensor: index %v does not match rank %d", idx, len(t.shape)))
	}
	off := 0
	for a, i := range idx {
		if i < 0 || i >= t.shape[a] {
			panic(fmt.Sprintf("tensor: index %v out of range for shape %v", idx, t.shape))
		}
		off = off*t.shape[a] + i
	}
	return off
}

func checkShape(shape []int) []int {
	out := make([]int, len(shape))
	for i, d := range shape {
		if d <= 0 {
			panic(fmt.Sprintf("tensor: non-positive dimension in shape %v", shape))
		}
		out[i] = d
	}
	return out
}

func sizeOf(shape []int) int {
	size := 1
	for _, d := range shape {
		size *= d
	}
	return size
}

func stridesOf(shape []int) []int {
	strides := make([]int, len(shape))
	stride := 1
	for a := len(shape) - 1; a >= 0; a-- {
		strides[a] = stride
		stride *= shape[a]
	}
	return strides
}

func sameShape(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func isIdentityPerm(perm []int) bool {
	for k, a := range perm {
		if k != a {
			return false
		}
	}
	return true
}
