package queue

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// slots is a counting permit set. A queue keeps one for open slots (room to
// push) and one for full slots (items to pop).
type slots interface {
	// Acquire blocks until a permit is available or ctx is done.
	Acquire(ctx context.Context) error

	// TryAcquire takes a permit without blocking and reports success.
	TryAcquire() bool

	// Release returns one permit.
	Release()
}

// weightedSlots is a capacity-bounded permit set backed by a weighted semaphore.
type weightedSlots struct {
	sem *semaphore.Weighted
}

// newOpenSlots returns capacity permits, all available.
func newOpenSlots(capacity int) *weightedSlots {
	return &weightedSlots{sem: semaphore.NewWeighted(int64(capacity))}
}

// newFullSlots returns capacity permits, none available. Each push releases
// one and each pop acquires one, so the held count never drops below zero.
func newFullSlots(capacity int) *weightedSlots {
	sem := semaphore.NewWeighted(int64(capacity))
	sem.TryAcquire(int64(capacity))
	return &weightedSlots{sem: sem}
}

func (w *weightedSlots) Acquire(ctx context.Context) error {
	return w.sem.Acquire(ctx, 1)
}

func (w *weightedSlots) TryAcquire() bool {
	return w.sem.TryAcquire(1)
}

func (w *weightedSlots) Release() {
	w.sem.Release(1)
}

// unlimitedSlots never blocks. It stands in for open slots on an unbounded queue.
type unlimitedSlots struct{}

func (unlimitedSlots) Acquire(context.Context) error { return nil }
func (unlimitedSlots) TryAcquire() bool              { return true }
func (unlimitedSlots) Release()                      {}

// countingSlots is an uncapped counting semaphore. It tracks full slots on an
// unbounded queue, where no fixed weight exists to size a semaphore.Weighted.
// Waiters are served in arrival order.
type countingSlots struct {
	mu        sync.Mutex
	available int
	waiters   []chan struct{}
}

func newCountingSlots() *countingSlots {
	return &countingSlots{}
}

func (c *countingSlots) Acquire(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	c.mu.Lock()
	// Fast path: permit available immediately
	if c.available > 0 {
		c.available--
		c.mu.Unlock()
		return nil
	}

	// Slow path: need to wait
	ready := make(chan struct{})
	c.waiters = append(c.waiters, ready)
	c.mu.Unlock()

	select {
	case <-ready:
		return nil
	case <-ctx.Done():
		c.mu.Lock()
		removed := c.removeWaiterLocked(ready)
		c.mu.Unlock()
		if !removed {
			// Granted while we were being canceled; hand the permit on.
			c.Release()
		}
		return ctx.Err()
	}
}

func (c *countingSlots) TryAcquire() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.available > 0 {
		c.available--
		return true
	}
	return false
}

func (c *countingSlots) Release() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.waiters) > 0 {
		ready := c.waiters[0]
		c.waiters[0] = nil
		c.waiters = c.waiters[1:]
		close(ready)
		return
	}
	c.available++
}

// removeWaiterLocked drops ready from the wait list and reports whether it was
// still waiting. Must be called with c.mu held.
func (c *countingSlots) removeWaiterLocked(ready chan struct{}) bool {
	for i, w := range c.waiters {
		if w == ready {
			c.waiters = append(c.waiters[:i], c.waiters[i+1:]...)
			return true
		}
	}
	return false
}
