package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
)

// blockingQueue implements Queue with two permit sets around a ring buffer.
// The lock is held only while the ring is mutated, never while waiting for
// a permit.
type blockingQueue[T any] struct {
	name     string
	capacity int

	mu  sync.Locker
	rmu sync.Locker
	buf ring[T]
	// closed is guarded by mu.
	closed bool

	open slots
	full slots

	// life is canceled by Close to wake goroutines waiting for permits.
	life context.Context
	kill context.CancelFunc

	logger  *slog.Logger
	metrics *queueMetrics

	pushes  atomic.Int64
	pops    atomic.Int64
	blocked atomic.Int64
}

func newBlockingQueue[T any](config Config) *blockingQueue[T] {
	q := &blockingQueue[T]{
		name:     config.Name,
		capacity: config.Capacity,
		mu:       config.Locker,
		rmu:      readLocker(config.Locker),
		logger:   config.Logger.With("component", "queue", "queue", config.Name),
		metrics:  newQueueMetrics(config.Metrics, config.Name),
	}
	q.life, q.kill = context.WithCancel(context.Background())

	if config.Capacity == Unbounded {
		q.buf = newRing[T](config.InitialSize, true)
		q.open = unlimitedSlots{}
		q.full = newCountingSlots()
	} else {
		q.buf = newRing[T](config.Capacity, false)
		q.open = newOpenSlots(config.Capacity)
		q.full = newFullSlots(config.Capacity)
	}

	q.metrics.setCapacity(config.Capacity)
	return q
}

// Push implements Queue.Push.
func (q *blockingQueue[T]) Push(ctx context.Context, item T) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if q.life.Err() != nil {
		return ErrClosed
	}

	if !q.open.TryAcquire() {
		q.blocked.Add(1)
		q.metrics.blockedPush()
		if err := q.wait(ctx, q.open); err != nil {
			return err
		}
	}

	if !q.insert(item) {
		q.open.Release()
		return ErrClosed
	}
	return nil
}

// TryPush implements Queue.TryPush.
func (q *blockingQueue[T]) TryPush(item T) bool {
	if q.life.Err() != nil || !q.open.TryAcquire() {
		return false
	}
	if !q.insert(item) {
		q.open.Release()
		return false
	}
	return true
}

// Pop implements Queue.Pop.
func (q *blockingQueue[T]) Pop(ctx context.Context) (T, error) {
	var zero T
	if ctx == nil {
		ctx = context.Background()
	}

	if !q.full.TryAcquire() {
		if q.life.Err() != nil {
			return zero, ErrClosed
		}
		if err := q.wait(ctx, q.full); err != nil {
			if !errors.Is(err, ErrClosed) {
				return zero, err
			}
			// Woken by Close: anything pushed before it is still ours to hand out.
			if !q.full.TryAcquire() {
				return zero, ErrClosed
			}
		}
	}
	return q.remove(), nil
}

// TryPop implements Queue.TryPop.
func (q *blockingQueue[T]) TryPop() (T, bool) {
	if !q.full.TryAcquire() {
		var zero T
		return zero, false
	}
	return q.remove(), true
}

// Peek implements Queue.Peek.
func (q *blockingQueue[T]) Peek(i int) (T, error) {
	q.rmu.Lock()
	defer q.rmu.Unlock()

	if i < 0 || i >= q.buf.len() {
		var zero T
		return zero, fmt.Errorf("%w: index %d, len %d", ErrOutOfRange, i, q.buf.len())
	}
	return q.buf.at(i), nil
}

// Len implements Queue.Len.
func (q *blockingQueue[T]) Len() int {
	q.rmu.Lock()
	defer q.rmu.Unlock()
	return q.buf.len()
}

// IsEmpty implements Queue.IsEmpty.
func (q *blockingQueue[T]) IsEmpty() bool {
	return q.Len() == 0
}

// Cap implements Queue.Cap.
func (q *blockingQueue[T]) Cap() int {
	return q.capacity
}

// Close implements Queue.Close.
func (q *blockingQueue[T]) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	q.mu.Unlock()

	q.kill()
}

// Closed implements Queue.Closed.
func (q *blockingQueue[T]) Closed() bool {
	return q.life.Err() != nil
}

// Drain implements Queue.Drain.
func (q *blockingQueue[T]) Drain() []T {
	q.Close()

	var items []T
	for {
		item, ok := q.TryPop()
		if !ok {
			return items
		}
		items = append(items, item)
	}
}

// Dispose implements Queue.Dispose.
func (q *blockingQueue[T]) Dispose() error {
	q.Close()

	if pending := q.Len(); pending > 0 {
		err := &NotDrainedError{Queue: q.name, Pending: pending}
		q.logger.Error("queue disposed before it was drained", "pending", pending)
		return err
	}
	return nil
}

// Stats implements Queue.Stats.
func (q *blockingQueue[T]) Stats() Stats {
	return Stats{
		Name:          q.name,
		Len:           q.Len(),
		Cap:           q.capacity,
		Pushes:        q.pushes.Load(),
		Pops:          q.pops.Load(),
		BlockedPushes: q.blocked.Load(),
		Closed:        q.Closed(),
	}
}

// insert writes item at the tail and publishes it as a full slot. The full
// permit is released under the lock so Close never races a half-finished push.
// It reports false if the queue was closed after the open permit was taken.
func (q *blockingQueue[T]) insert(item T) bool {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return false
	}
	q.buf.put(item)
	q.full.Release()
	depth := q.buf.len()
	q.mu.Unlock()

	q.pushes.Add(1)
	q.metrics.push(depth)
	return true
}

// remove takes the head item. The caller must hold a full-slot permit.
func (q *blockingQueue[T]) remove() T {
	q.mu.Lock()
	item := q.buf.take()
	depth := q.buf.len()
	q.mu.Unlock()

	q.open.Release()
	q.pops.Add(1)
	q.metrics.pop(depth)
	return item
}

// wait acquires a permit from s, giving up when ctx ends or the queue closes.
func (q *blockingQueue[T]) wait(ctx context.Context, s slots) error {
	waitCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(q.life, cancel)
	defer stop()

	if err := s.Acquire(waitCtx); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return ErrClosed
	}
	return nil
}
