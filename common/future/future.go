// Copyright (c) 2026 The tenet authors
//
// Use of this software is governed by the GNU General Public License v3
// included in the LICENSE file and at www.gnu.org/licenses/gpl-3.0.html.

// Package future provides a channel-backed Promise/Future pair for handing
// results of background work to a waiting caller.
//
// The measurement recorder uses it to acknowledge flush requests: the caller
// obtains a Future, the worker goroutine fulfills the Promise once all queued
// writes reached the database.
//
//	promise, future := future.Create[error]()
//	worker.enqueue(syncRequest{done: promise})
//	return future.Await()
//
// A Future must be consumed at most once.
package future

// Promise is the producer-side handle used to fulfill a Future.
type Promise[T any] struct {
	C chan<- T
}

// Future is a placeholder for a value produced asynchronously. Await blocks
// until the paired Promise has been fulfilled.
type Future[T any] struct {
	C <-chan T
}

// Create returns a linked Promise/Future pair.
func Create[T any]() (Promise[T], Future[T]) {
	ch := make(chan T, 1)
	return Promise[T]{C: ch}, Future[T]{C: ch}
}

// Immediate returns a Future that already holds the given value, for code
// paths where no asynchronous work is needed.
func Immediate[T any](value T) Future[T] {
	ch := make(chan T, 1)
	ch <- value
	close(ch)
	return Future[T]{C: ch}
}

// Fulfill resolves the paired Future with the given value. It must be called
// at most once per Promise.
func (p Promise[T]) Fulfill(value T) {
	p.C <- value
	close(p.C)
}

// Forward fulfills this Promise with whatever value the given Future
// eventually produces.
func (p Promise[T]) Forward(f Future[T]) {
	go func() {
		p.C <- <-f.C
		close(p.C)
	}()
}

// Await blocks until the value is available and returns it.
func (f Future[T]) Await() T {
	return <-f.C
}

// Then derives a new Future by applying transform to the result of f once it
// becomes available.
func Then[A, B any](f Future[A], transform func(A) B) Future[B] {
	promise, future := Create[B]()
	go func() {
		promise.Fulfill(transform(f.Await()))
	}()
	return future
}
