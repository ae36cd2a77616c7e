package download

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// Gate is a counting admission gate bounding the number of simultaneously
// in-flight downloads across all story processors. A caller that would
// exceed the ceiling blocks in Acquire until a slot frees.
type Gate struct {
	sem      *semaphore.Weighted
	capacity int64
}

// NewGate creates a gate admitting at most maxInFlight concurrent holders.
func NewGate(maxInFlight int) *Gate {
	return &Gate{
		sem:      semaphore.NewWeighted(int64(maxInFlight)),
		capacity: int64(maxInFlight),
	}
}

// Acquire blocks until a slot is available or ctx is cancelled.
func (g *Gate) Acquire(ctx context.Context) error {
	return g.sem.Acquire(ctx, 1)
}

// Release frees a slot acquired with Acquire.
func (g *Gate) Release() {
	g.sem.Release(1)
}

// Capacity returns the gate's admission ceiling.
func (g *Gate) Capacity() int {
	return int(g.capacity)
}
