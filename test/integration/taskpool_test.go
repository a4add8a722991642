package integration

import (
	"context"
	"errors"
	"sort"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/vnykmshr/taskpool/internal/testutil"
	"github.com/vnykmshr/taskpool/pkg/future"
	"github.com/vnykmshr/taskpool/pkg/metrics"
	"github.com/vnykmshr/taskpool/pkg/queue"
	"github.com/vnykmshr/taskpool/pkg/report"
	"github.com/vnykmshr/taskpool/pkg/workerpool"
)

// TestQueueProducersConsumers moves items through a small bounded queue with
// several producers and consumers and checks every item arrives exactly once.
func TestQueueProducersConsumers(t *testing.T) {
	const (
		producers   = 4
		consumers   = 3
		perProducer = 2500
	)

	q, err := queue.New[int](8)
	require.NoError(t, err)

	ctx, cancel := testutil.WithTimeout(t)
	defer cancel()

	results := make(chan []int, consumers)
	var cg errgroup.Group
	for c := 0; c < consumers; c++ {
		cg.Go(func() error {
			var got []int
			for {
				v, err := q.Pop(ctx)
				if errors.Is(err, queue.ErrClosed) {
					results <- got
					return nil
				}
				if err != nil {
					return err
				}
				got = append(got, v)
			}
		})
	}

	var pg errgroup.Group
	for p := 0; p < producers; p++ {
		p := p
		pg.Go(func() error {
			for i := 0; i < perProducer; i++ {
				if err := q.Push(ctx, p*perProducer+i); err != nil {
					return err
				}
			}
			return nil
		})
	}
	require.NoError(t, pg.Wait())

	q.Close()
	require.NoError(t, cg.Wait())
	close(results)
	require.NoError(t, q.Dispose())

	var all []int
	for got := range results {
		all = append(all, got...)
	}
	require.Len(t, all, producers*perProducer)
	sort.Ints(all)
	for i, v := range all {
		require.Equal(t, i, v)
	}

	stats := q.Stats()
	assert.Equal(t, int64(producers*perProducer), stats.Pushes)
	assert.Equal(t, stats.Pushes, stats.Pops)
}

// TestPoolEndToEnd runs a metered pool fed by concurrent producers, reports
// its statistics and shuts it down.
func TestPoolEndToEnd(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewRegistry(reg)
	logger, logs := testutil.NewLogger()

	pool, err := workerpool.NewWithConfig(workerpool.Config{
		Name:          "e2e",
		WorkerCount:   4,
		QueueCapacity: 16,
		Logger:        logger,
		Metrics:       m,
	})
	require.NoError(t, err)

	errOdd := errors.New("odd input")
	const producers, perProducer = 4, 200

	var sum, failures atomic.Int64
	g, ctx := errgroup.WithContext(context.Background())
	for p := 0; p < producers; p++ {
		p := p
		g.Go(func() error {
			futures := make([]*future.Future[int], 0, perProducer)
			for i := 0; i < perProducer; i++ {
				n := p*perProducer + i
				f, err := workerpool.SubmitContext(ctx, pool, func(ctx context.Context) (int, error) {
					if n%2 == 1 {
						return 0, errOdd
					}
					return n, nil
				})
				if err != nil {
					return err
				}
				futures = append(futures, f)
			}
			for _, f := range futures {
				v, err := f.Get()
				switch {
				case errors.Is(err, errOdd):
					failures.Add(1)
				case err != nil:
					return err
				default:
					sum.Add(int64(v))
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	const total = producers * perProducer
	// Sum of the even numbers below total.
	assert.Equal(t, int64((total/2)*(total/2-1)), sum.Load())
	assert.Equal(t, int64(total/2), failures.Load())

	var snap report.Snapshot
	capture := report.ReporterFunc(func(ctx context.Context, s report.Snapshot) error {
		snap = s
		return nil
	})
	require.NoError(t, report.ReportAll(context.Background(), report.Collect(pool, time.Now()),
		capture, report.NewLogReporter(logger)))
	assert.Equal(t, "e2e", snap.Pool.Name)
	assert.Equal(t, int64(total), snap.Pool.TotalSubmitted)
	assert.Contains(t, logs.String(), "pool stats")

	require.NoError(t, pool.Close())

	assert.Equal(t, int64(total), pool.TotalCompleted())
	assert.Equal(t, int64(total/2), pool.TotalFailed())
	assert.Equal(t, float64(total/2), promtest.ToFloat64(m.TasksCompleted.WithLabelValues("e2e")))
	assert.Equal(t, float64(total/2), promtest.ToFloat64(m.TasksFailed.WithLabelValues("e2e")))
	assert.Equal(t, float64(total), promtest.ToFloat64(m.QueuePushes.WithLabelValues("e2e")))
	assert.Equal(t, 0.0, promtest.ToFloat64(m.QueueDepth.WithLabelValues("e2e")))
}

// TestUnboundedPoolNeverBlocksSubmitters queues far more tasks than workers
// while every worker is busy.
func TestUnboundedPoolNeverBlocksSubmitters(t *testing.T) {
	pool, err := workerpool.New(2, queue.Unbounded)
	require.NoError(t, err)

	release := make(chan struct{})
	var done atomic.Int32
	for i := 0; i < 500; i++ {
		_, err := workerpool.Go(pool, func(ctx context.Context) error {
			<-release
			done.Add(1)
			return nil
		})
		require.NoError(t, err)
	}
	assert.GreaterOrEqual(t, pool.QueueSize(), 498)

	close(release)
	require.NoError(t, pool.Close())
	assert.Equal(t, int32(500), done.Load())
	assert.Equal(t, int64(0), pool.Stats().Queue.BlockedPushes)
}
