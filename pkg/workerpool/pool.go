package workerpool

import (
	"context"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/coder/quartz"
	"github.com/google/uuid"

	"github.com/vnykmshr/taskpool/pkg/metrics"
	"github.com/vnykmshr/taskpool/pkg/queue"
)

// fallbackWorkerCount is used when the runtime cannot report a CPU count.
const fallbackWorkerCount = 8

// Task represents a unit of work that can be executed by a worker.
type Task interface {
	// Invoke runs the task. The pool calls it exactly once. ctx is canceled
	// when TaskTimeout elapses or ShutdownWithTimeout gives up waiting.
	Invoke(ctx context.Context)
}

// TaskFunc is a function type that implements the Task interface.
type TaskFunc func(ctx context.Context)

// Invoke implements the Task interface for TaskFunc.
func (f TaskFunc) Invoke(ctx context.Context) {
	f(ctx)
}

// Result describes one finished task. It is passed to OnTaskComplete.
type Result struct {
	// Task is the original task that was executed
	Task Task

	// Error is the error the task returned, or a *future.PanicError
	Error error

	// Panicked is set when the task panicked instead of returning
	Panicked bool

	// Duration is how long the task took to execute
	Duration time.Duration

	// QueueWait is how long the task waited between submission and pickup
	QueueWait time.Duration

	// WorkerID identifies which worker executed the task
	WorkerID int
}

// Config holds configuration options for creating a worker pool.
type Config struct {
	// Name labels log records, metrics and report snapshots.
	Name string

	// WorkerCount is the number of workers in the pool.
	// Zero selects DefaultWorkerCount().
	WorkerCount int

	// QueueCapacity is the maximum number of tasks that can wait for a worker.
	// Submitters block while the queue is full. queue.Unbounded (0) never blocks.
	QueueCapacity int

	// TaskTimeout bounds the context handed to each task. Zero means no timeout.
	TaskTimeout time.Duration

	// Logger receives diagnostics. Defaults to slog.Default().
	Logger *slog.Logger

	// Metrics enables Prometheus instrumentation of the pool and its queue.
	Metrics *metrics.Registry

	// Clock drives shutdown deadlines and task timing. Defaults to the real clock.
	Clock quartz.Clock

	// PanicHandler is called when a task panics, after the panic has been
	// recovered and recorded. If nil, panics are logged at ERROR level.
	PanicHandler func(task Task, recovered interface{})

	// OnWorkerStart is called on the worker goroutine before it takes tasks.
	// An error aborts pool construction and stops the workers already started.
	OnWorkerStart func(workerID int) error

	// OnWorkerStop is called when a worker that started successfully exits.
	OnWorkerStop func(workerID int)

	// OnTaskStart is called before a task begins execution.
	OnTaskStart func(workerID int, task Task)

	// OnTaskComplete is called after a task completes (success or failure).
	OnTaskComplete func(workerID int, result Result)
}

// DefaultConfig returns a configuration with one worker per CPU and a
// bounded queue holding 128 tasks.
func DefaultConfig() Config {
	return Config{
		Name:          "workerpool",
		WorkerCount:   DefaultWorkerCount(),
		QueueCapacity: 128,
	}
}

// DefaultWorkerCount returns the number of CPUs, or 8 if that cannot be
// determined.
func DefaultWorkerCount() int {
	if n := runtime.NumCPU(); n > 0 {
		return n
	}
	return fallbackWorkerCount
}

// Stats is a point-in-time view of a pool.
type Stats struct {
	ID             string
	Name           string
	Workers        int
	ActiveWorkers  int
	QueueSize      int
	QueueCapacity  int
	TotalSubmitted int64
	TotalCompleted int64
	TotalFailed    int64
	TotalPanicked  int64
	Closed         bool
	Queue          queue.Stats
}

// job is a queued task together with its submission time.
type job struct {
	task     Task
	enqueued time.Time
}

// Pool runs submitted tasks on a fixed set of worker goroutines that share
// one blocking queue.
type Pool struct {
	config  Config
	id      string
	queue   queue.Queue[job]
	clock   quartz.Clock
	logger  *slog.Logger
	metrics *poolMetrics

	// taskCtx is the parent of every context handed to a task.
	taskCtx     context.Context
	cancelTasks context.CancelFunc

	mu           sync.RWMutex
	isShutdown   bool
	shutdownOnce sync.Once
	done         chan struct{}
	// disposeErr is written before done is closed.
	disposeErr error

	workerWg sync.WaitGroup

	activeWorkers  atomic.Int32
	totalSubmitted atomic.Int64
	totalCompleted atomic.Int64
	totalFailed    atomic.Int64
	totalPanicked  atomic.Int64
}

// New creates a worker pool with the given number of workers and queue capacity.
func New(workerCount, queueCapacity int) (*Pool, error) {
	config := DefaultConfig()
	config.WorkerCount = workerCount
	config.QueueCapacity = queueCapacity
	return NewWithConfig(config)
}

// NewWithConfig creates a worker pool and starts its workers. It returns once
// every worker has run OnWorkerStart.
func NewWithConfig(config Config) (*Pool, error) {
	config, err := config.normalize()
	if err != nil {
		return nil, err
	}

	p := &Pool{
		config:  config,
		id:      uuid.NewString(),
		clock:   config.Clock,
		logger:  config.Logger.With("component", "workerpool", "pool", config.Name),
		metrics: newPoolMetrics(config.Metrics, config.Name),
		done:    make(chan struct{}),
	}

	p.queue, err = queue.NewWithConfig[job](queue.Config{
		Name:     config.Name,
		Capacity: config.QueueCapacity,
		Logger:   config.Logger,
		Metrics:  config.Metrics,
	})
	if err != nil {
		return nil, err
	}
	p.taskCtx, p.cancelTasks = context.WithCancel(context.Background())

	if err := p.startWorkers(); err != nil {
		return nil, err
	}

	p.metrics.setSize(config.WorkerCount)
	p.logger.Debug("pool started",
		"id", p.id,
		"workers", config.WorkerCount,
		"queue_capacity", config.QueueCapacity)
	return p, nil
}

func (c Config) normalize() (Config, error) {
	if c.WorkerCount == 0 {
		c.WorkerCount = DefaultWorkerCount()
	}
	if err := c.validate(); err != nil {
		return c, err
	}
	if c.Name == "" {
		c.Name = "workerpool"
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.Clock == nil {
		c.Clock = quartz.NewReal()
	}
	return c, nil
}

// startWorkers launches the workers and waits for each OnWorkerStart. On the
// first failure it stops and joins the workers that did start.
func (p *Pool) startWorkers() error {
	ready := make(chan error, p.config.WorkerCount)
	for i := 0; i < p.config.WorkerCount; i++ {
		p.workerWg.Add(1)
		go p.runWorker(i, ready)
	}

	var firstErr error
	for i := 0; i < p.config.WorkerCount; i++ {
		if err := <-ready; err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if firstErr == nil {
		return nil
	}

	p.mu.Lock()
	p.isShutdown = true
	p.mu.Unlock()
	p.queue.Close()
	p.workerWg.Wait()
	p.cancelTasks()
	_ = p.queue.Dispose()
	close(p.done)

	p.logger.Error("pool failed to start", "error", firstErr)
	return firstErr
}
