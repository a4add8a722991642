/*
Package queue provides a generic blocking FIFO queue with optional backpressure.

A bounded queue (capacity >= 1) guards a fixed-size ring buffer with two
counting permit sets: open slots, which a producer must take before it
writes, and full slots, which a consumer must take before it reads. The ring
itself is protected by a lock that is held only for the O(1) cursor update.
Producers block while the queue is full and consumers block while it is
empty.

An unbounded queue (capacity Unbounded) keeps the same interface, but Push
never blocks and the ring grows on demand.

Basic usage:

	q, err := queue.New[string](100)
	if err != nil {
		return err
	}

	go func() {
		for _, line := range lines {
			if err := q.Push(ctx, line); err != nil {
				return
			}
		}
		q.Close()
	}()

	for {
		line, err := q.Pop(ctx)
		if errors.Is(err, queue.ErrClosed) {
			break
		}
		process(line)
	}

Lifecycle:

Close stops new pushes and wakes any blocked producer with ErrClosed.
Consumers keep receiving items pushed before Close, then get ErrClosed.
Dispose releases the queue and reports a *NotDrainedError if items are still
inside, since that usually means a consumer exited too early. Drain removes
whatever is left.

Lock Policies:

Config.Locker accepts any sync.Locker. ExclusiveLock (the default) and
SharedLock are safe for concurrent use. NoLock is for a queue owned by a
single goroutine. NewWithLock fixes the policy at compile time:

	q, _ := queue.NewWithLock[int, sync.RWMutex](16)

Thread Safety:

With ExclusiveLock or SharedLock, all operations are safe for concurrent use.
Len, IsEmpty, Peek and Stats are snapshots that may be stale by the time
they return.
*/
package queue
