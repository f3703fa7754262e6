// Package limiter provides a FIFO task queue with bounded parallelism.
package limiter

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/semaphore"
)

// minLimit keeps at least one slot so queued tasks can never starve.
const minLimit = 1

// Limiter runs submitted tasks with at most Limit of them in flight.
// Waiting tasks are dispatched in submission order. A task's failure or
// panic settles only its own Future.
type Limiter struct {
	limit int
	sem   *semaphore.Weighted

	mu      sync.Mutex
	queue   []job
	running int
}

// job runs a task and returns the function that settles its future.
type job func() (settle func())

// Stats is a snapshot of limiter state.
type Stats struct {
	Limit   int
	Running int
	Pending int
}

// New creates a Limiter. Limits below 1 are raised to 1.
func New(limit int) *Limiter {
	limit = max(minLimit, limit)
	return &Limiter{
		limit: limit,
		sem:   semaphore.NewWeighted(int64(limit)),
	}
}

// Limit returns the maximum number of concurrently running tasks.
func (l *Limiter) Limit() int { return l.limit }

// Stats returns the current limit, running and pending counts.
func (l *Limiter) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return Stats{Limit: l.limit, Running: l.running, Pending: len(l.queue)}
}

// Run enqueues task on l and returns a Future for its result.
// The task starts as soon as a slot is free and every task submitted
// before it has started.
func Run[T any](l *Limiter, task func() (T, error)) *Future[T] {
	f := newFuture[T]()
	l.enqueue(func() func() {
		v, err := call(task)
		return func() { f.settle(v, err) }
	})
	return f
}

// Go is Run for tasks that only report an error.
func (l *Limiter) Go(task func() error) *Future[struct{}] {
	return Run(l, func() (struct{}, error) {
		return struct{}{}, task()
	})
}

func (l *Limiter) enqueue(j job) {
	l.mu.Lock()
	l.queue = append(l.queue, j)
	l.mu.Unlock()
	l.dispatch()
}

// dispatch starts queued jobs from the head while slots are free.
func (l *Limiter) dispatch() {
	l.mu.Lock()
	defer l.mu.Unlock()

	for len(l.queue) > 0 && l.sem.TryAcquire(1) {
		j := l.queue[0]
		l.queue[0] = nil
		l.queue = l.queue[1:]
		l.running++
		go l.execute(j)
	}
}

func (l *Limiter) execute(j job) {
	settle := j()

	l.mu.Lock()
	l.running--
	l.mu.Unlock()
	l.sem.Release(1)

	settle()
	l.dispatch()
}

// call runs task, turning a panic into an error.
func call[T any](task func() (T, error)) (v T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task panicked: %v", r)
		}
	}()
	return task()
}

// Future is the pending result of a task submitted to a Limiter.
type Future[T any] struct {
	done chan struct{}
	val  T
	err  error
}

func newFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

func (f *Future[T]) settle(v T, err error) {
	f.val, f.err = v, err
	close(f.done)
}

// Done is closed once the task has settled.
func (f *Future[T]) Done() <-chan struct{} { return f.done }

// Wait blocks until the task settles or ctx is done.
func (f *Future[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// WaitAll waits for every future and returns their values in order.
// Task errors are joined; the values of failed tasks are zero.
func WaitAll[T any](ctx context.Context, futures []*Future[T]) ([]T, error) {
	values := make([]T, len(futures))
	var errs []error
	for i, f := range futures {
		v, err := f.Wait(ctx)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return values, ctxErr
			}
			errs = append(errs, err)
			continue
		}
		values[i] = v
	}
	return values, errors.Join(errs...)
}
