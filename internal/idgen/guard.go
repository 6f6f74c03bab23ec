package idgen

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// Guard admits a single holder at a time. Waiters are served in arrival order.
type Guard struct {
	sem *semaphore.Weighted
}

// NewGuard returns an independent guard. Generators sharing a store must share
// a guard, so production code should use SharedGuard.
func NewGuard() *Guard {
	return &Guard{sem: semaphore.NewWeighted(1)}
}

var sharedGuard = NewGuard()

// SharedGuard returns the process-wide guard used by generators built without WithGuard.
func SharedGuard() *Guard {
	return sharedGuard
}

// Acquire blocks until the guard is free or ctx is done.
func (g *Guard) Acquire(ctx context.Context) error {
	return g.sem.Acquire(ctx, 1)
}

func (g *Guard) Release() {
	g.sem.Release(1)
}
