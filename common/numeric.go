// Copyright (c) 2026 The tenet authors
//
// Use of this software is governed by the GNU General Public License v3
// included in the LICENSE file and at www.gnu.org/licenses/gpl-3.0.html.

package common

import "golang.org/x/exp/constraints"

// Clamp limits v to the closed interval [lo, hi].
func Clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// SumSquares returns the sum of the squared entries of vs. Applied to a
// Schmidt spectrum it yields the weight carried by those states.
func SumSquares[T constraints.Float](vs []T) T {
	var sum T
	for _, v := range vs {
		sum += v * v
	}
	return sum
}
