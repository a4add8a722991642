package queue

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	tperrors "github.com/vnykmshr/taskpool/pkg/common/errors"
	"github.com/vnykmshr/taskpool/pkg/common/validation"
	"github.com/vnykmshr/taskpool/pkg/metrics"
)

// Unbounded is the capacity value for a queue that never blocks producers.
const Unbounded = 0

var (
	// ErrClosed is returned by Push after Close, and by Pop once a closed
	// queue has been drained.
	ErrClosed = fmt.Errorf("queue: %w", tperrors.ErrClosed)

	// ErrOutOfRange is returned by Peek for an index outside [0, Len).
	ErrOutOfRange = fmt.Errorf("queue: %w", tperrors.ErrOutOfRange)

	// ErrNotDrained is matched by the error Dispose returns for a non-empty queue.
	ErrNotDrained = fmt.Errorf("queue: %w", tperrors.ErrNotDrained)
)

// NotDrainedError reports a queue disposed while still holding items.
type NotDrainedError struct {
	Queue   string
	Pending int
}

func (e *NotDrainedError) Error() string {
	return fmt.Sprintf("queue %q disposed with %d pending items", e.Queue, e.Pending)
}

func (e *NotDrainedError) Unwrap() error {
	return ErrNotDrained
}

// Queue is a FIFO handoff between any number of producer and consumer
// goroutines. A bounded queue blocks producers while full; an unbounded one
// only blocks consumers.
type Queue[T any] interface {
	// Push blocks until a slot is open, then appends item at the tail.
	// It returns ErrClosed once the queue is closed, or ctx.Err() if ctx
	// ends first.
	Push(ctx context.Context, item T) error

	// TryPush appends item only if a slot is open right now.
	TryPush(item T) bool

	// Pop blocks until an item is available and removes it from the head.
	// Items pushed before Close are still returned; after that Pop returns
	// ErrClosed.
	Pop(ctx context.Context) (T, error)

	// TryPop removes the head item if one is available right now.
	TryPop() (T, bool)

	// Peek returns the i-th item from the head without removing it.
	Peek(i int) (T, error)

	// Len returns the number of items held. The value may be stale as soon
	// as it is returned.
	Len() int

	// IsEmpty reports whether Len is zero, with the same caveat.
	IsEmpty() bool

	// Cap returns the fixed capacity, or Unbounded.
	Cap() int

	// Close stops accepting pushes and wakes blocked producers. Consumers
	// keep receiving the remaining items. Close is idempotent.
	Close()

	// Closed reports whether Close has been called.
	Closed() bool

	// Drain closes the queue and removes every remaining item.
	Drain() []T

	// Dispose closes the queue and verifies it is empty. A queue disposed
	// with items still inside returns a *NotDrainedError.
	Dispose() error

	// Stats returns a point-in-time snapshot of the queue.
	Stats() Stats
}

// Stats holds counters and state for a queue.
type Stats struct {
	Name          string
	Len           int
	Cap           int
	Pushes        int64
	Pops          int64
	BlockedPushes int64
	Closed        bool
}

// Config holds configuration for a Queue.
type Config struct {
	// Name labels log records and metrics. Defaults to "queue".
	Name string

	// Capacity is the maximum number of held items. Unbounded (0) disables
	// backpressure.
	Capacity int

	// InitialSize is the starting slot count of an unbounded queue.
	InitialSize int

	// Locker guards the ring buffer. Defaults to ExclusiveLock().
	Locker sync.Locker

	// Logger receives diagnostics. Defaults to slog.Default().
	Logger *slog.Logger

	// Metrics enables Prometheus instrumentation when non-nil.
	Metrics *metrics.Registry
}

// DefaultConfig returns a configuration for a bounded queue of 64 items.
func DefaultConfig() Config {
	return Config{
		Name:     "queue",
		Capacity: 64,
	}
}

// New creates a queue with the given capacity and default settings.
func New[T any](capacity int) (Queue[T], error) {
	config := DefaultConfig()
	config.Capacity = capacity
	return NewWithConfig[T](config)
}

// NewWithLock creates a queue whose lock policy is fixed at compile time,
// for example NewWithLock[int, sync.RWMutex](8).
func NewWithLock[T any, L any, PL interface {
	*L
	sync.Locker
}](capacity int) (Queue[T], error) {
	config := DefaultConfig()
	config.Capacity = capacity
	config.Locker = PL(new(L))
	return NewWithConfig[T](config)
}

// NewWithConfig creates a queue with the specified configuration.
func NewWithConfig[T any](config Config) (Queue[T], error) {
	if err := validation.ValidateNonNegative("queue", "capacity", config.Capacity); err != nil {
		return nil, err
	}
	if err := validation.ValidateNonNegative("queue", "initial_size", config.InitialSize); err != nil {
		return nil, err
	}

	if config.Name == "" {
		config.Name = "queue"
	}
	if config.Locker == nil {
		config.Locker = ExclusiveLock()
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	return newBlockingQueue[T](config), nil
}
