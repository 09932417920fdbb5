// Copyright (c) 2026 The tenet authors
//
// Use of this software is governed by the GNU General Public License v3
// included in the LICENSE file and at www.gnu.org/licenses/gpl-3.0.html.

package result

// Result bundles a value with an error so that the outcome of an operation
// can travel through a channel or container as a single item. Callers must go
// through Get and thus cannot ignore the error.
type Result[T any] struct {
	value T
	err   error
}

// Ok wraps a successful outcome.
func Ok[T any](value T) Result[T] {
	return Result[T]{value: value}
}

// Err wraps a failed outcome.
func Err[T any](err error) Result[T] {
	return Result[T]{err: err}
}

// Get unpacks the Result into its value and error.
func (r Result[T]) Get() (T, error) {
	return r.value, r.err
}
